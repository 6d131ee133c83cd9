// Package spotify reads track, album and playlist metadata through the
// client-credentials flow. Spotify never provides audio here; its tracks are
// matched against YouTube before they enter the library.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrSpotifyResolveFailed = errors.New("failed to resolve spotify resource")

const tokenEndpoint = "https://accounts.spotify.com/api/token"
const apiBase = "https://api.spotify.com/v1"
const pageSize = 50

// Track is the slim view the importer needs: enough to build a YouTube
// search query.
type Track struct {
	Name    string
	Artists []string
}

func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, " ")
}

type ResourceKind string

const (
	KindTrack    ResourceKind = "track"
	KindAlbum    ResourceKind = "album"
	KindPlaylist ResourceKind = "playlist"
)

type Resource struct {
	Kind ResourceKind
	ID   string
}

type Client struct {
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve fetches the track list behind any supported Spotify input along
// with a display name for it (track title, album title, playlist title).
func (c *Client) Resolve(ctx context.Context, input string) (string, []Track, error) {
	res, ok := ExtractResource(input)
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported spotify input", ErrSpotifyResolveFailed)
	}

	switch res.Kind {
	case KindTrack:
		track, err := c.fetchTrack(ctx, res.ID)
		if err != nil {
			return "", nil, err
		}
		return track.Name, []Track{track}, nil
	case KindAlbum:
		return c.fetchAlbum(ctx, res.ID)
	case KindPlaylist:
		return c.fetchPlaylist(ctx, res.ID)
	default:
		return "", nil, fmt.Errorf("%w: unsupported spotify input", ErrSpotifyResolveFailed)
	}
}

func (c *Client) fetchTrack(ctx context.Context, trackID string) (Track, error) {
	var payload trackPayload
	if err := c.getJSON(ctx, apiBase+"/tracks/"+trackID, &payload); err != nil {
		return Track{}, err
	}
	return payload.toTrack(), nil
}

func (c *Client) fetchAlbum(ctx context.Context, albumID string) (string, []Track, error) {
	var album struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	}
	if err := c.getJSON(ctx, apiBase+"/albums/"+albumID, &album); err != nil {
		return "", nil, err
	}

	albumArtists := make([]string, 0, len(album.Artists))
	for _, a := range album.Artists {
		if a.Name != "" {
			albumArtists = append(albumArtists, a.Name)
		}
	}

	var tracks []Track
	next := fmt.Sprintf("%s/albums/%s/tracks?limit=%d", apiBase, albumID, pageSize)
	for next != "" {
		var page struct {
			Next  string `json:"next"`
			Items []struct {
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
			} `json:"items"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			return "", nil, err
		}

		for _, item := range page.Items {
			track := Track{Name: item.Name}
			for _, a := range item.Artists {
				if a.Name != "" {
					track.Artists = append(track.Artists, a.Name)
				}
			}
			if len(track.Artists) == 0 {
				track.Artists = albumArtists
			}
			tracks = append(tracks, track)
		}

		next = page.Next
	}

	return album.Name, tracks, nil
}

func (c *Client) fetchPlaylist(ctx context.Context, playlistID string) (string, []Track, error) {
	var playlist struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, apiBase+"/playlists/"+playlistID+"?fields=name", &playlist); err != nil {
		return "", nil, err
	}

	var tracks []Track
	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", apiBase, playlistID, pageSize)
	for next != "" {
		var page struct {
			Next  string `json:"next"`
			Items []struct {
				Track *trackPayload `json:"track"`
			} `json:"items"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			return "", nil, err
		}

		for _, item := range page.Items {
			// Local files and removed tracks come back null.
			if item.Track == nil || item.Track.Name == "" {
				continue
			}
			tracks = append(tracks, item.Track.toTrack())
		}

		next = page.Next
	}

	return playlist.Name, tracks, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify api status %d", ErrSpotifyResolveFailed, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.ClientID == "" || c.ClientSecret == "" {
		return "", fmt.Errorf("%w: missing spotify client credentials", ErrSpotifyResolveFailed)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.ClientID, c.ClientSecret))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token status %d", ErrSpotifyResolveFailed, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrSpotifyResolveFailed)
	}

	c.accessToken = payload.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn-30) * time.Second)

	return c.accessToken, nil
}

// ExtractResource recognizes open.spotify.com URLs and spotify: URIs for
// tracks, albums and playlists.
func ExtractResource(input string) (Resource, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Resource{}, false
	}

	for _, kind := range []ResourceKind{KindTrack, KindAlbum, KindPlaylist} {
		if id, ok := strings.CutPrefix(input, "spotify:"+string(kind)+":"); ok && id != "" {
			return Resource{Kind: kind, ID: id}, true
		}
	}

	u, err := url.Parse(input)
	if err != nil || !strings.Contains(strings.ToLower(u.Host), "spotify.com") {
		return Resource{}, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		switch ResourceKind(parts[i]) {
		case KindTrack, KindAlbum, KindPlaylist:
			if parts[i+1] != "" {
				return Resource{Kind: ResourceKind(parts[i]), ID: parts[i+1]}, true
			}
		}
	}

	return Resource{}, false
}

func basicAuth(clientID, clientSecret string) string {
	raw := clientID + ":" + clientSecret
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

type trackPayload struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

func (t trackPayload) toTrack() Track {
	track := Track{Name: t.Name}
	for _, a := range t.Artists {
		if a.Name != "" {
			track.Artists = append(track.Artists, a.Name)
		}
	}
	return track
}
