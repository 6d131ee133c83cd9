package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

const fallbackTitle = "YouTube Video"
const fallbackArtist = "Unknown Artist"

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FetchMetadata resolves title and channel name for a video through the
// oEmbed endpoint, which needs no API key. On failure it still returns a
// usable placeholder song alongside the error, so callers choose whether a
// failed fetch blocks them (metadata refresh) or not (queueing a new song).
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (player.Song, error) {
	song := player.Song{
		YouTubeID: videoID,
		Title:     fallbackTitle,
		Artist:    fallbackArtist,
		Thumbnail: ThumbnailURL(videoID),
	}

	watchURL := "https://www.youtube.com/watch?v=" + videoID
	endpoint := oembedEndpoint + "?format=json&url=" + url.QueryEscape(watchURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return song, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return song, fmt.Errorf("oembed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return song, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	var meta oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return song, fmt.Errorf("oembed returned invalid json: %w", err)
	}

	if title := strings.TrimSpace(meta.Title); title != "" {
		song.Title = title
	}
	if author := strings.TrimSpace(meta.AuthorName); author != "" {
		song.Artist = author
	}
	if meta.ThumbnailURL != "" {
		song.Thumbnail = meta.ThumbnailURL
	}

	return song, nil
}

// Client talks to YouTube's public endpoints. The API key is only required
// for search and playlist listing; oEmbed metadata works without one.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return fmt.Errorf("youtube api key not configured")
	}
	return nil
}
