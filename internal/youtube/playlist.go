package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

const playlistsEndpoint = "https://www.googleapis.com/youtube/v3/playlists"
const playlistItemsEndpoint = "https://www.googleapis.com/youtube/v3/playlistItems"
const playlistPageSize = 50

type PlaylistDetails struct {
	Title string
	Songs []player.Song
}

type playlistsResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title           string `json:"title"`
			VideoOwnerTitle string `json:"videoOwnerChannelTitle"`
			ResourceID      struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
			Thumbnails struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchPlaylist resolves a playlist's title and drains every page of its
// items. Private and deleted entries keep their placeholder titles in the
// API response and are skipped.
func (c *Client) FetchPlaylist(ctx context.Context, playlistID string) (PlaylistDetails, error) {
	if err := c.requireKey(); err != nil {
		return PlaylistDetails{}, err
	}

	title, err := c.fetchPlaylistTitle(ctx, playlistID)
	if err != nil {
		return PlaylistDetails{}, err
	}

	details := PlaylistDetails{Title: title}

	pageToken := ""
	for {
		page, err := c.fetchPlaylistPage(ctx, playlistID, pageToken)
		if err != nil {
			return PlaylistDetails{}, err
		}

		for _, item := range page.Items {
			snippet := item.Snippet
			if snippet.ResourceID.VideoID == "" {
				continue
			}
			if snippet.Title == "Private video" || snippet.Title == "Deleted video" {
				continue
			}

			thumbnail := snippet.Thumbnails.Medium.URL
			if thumbnail == "" {
				thumbnail = ThumbnailURL(snippet.ResourceID.VideoID)
			}

			artist := snippet.VideoOwnerTitle
			if artist == "" {
				artist = fallbackArtist
			}

			details.Songs = append(details.Songs, player.Song{
				YouTubeID: snippet.ResourceID.VideoID,
				Title:     snippet.Title,
				Artist:    artist,
				Thumbnail: thumbnail,
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return details, nil
}

func (c *Client) fetchPlaylistTitle(ctx context.Context, playlistID string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", playlistID)
	params.Set("key", c.apiKey)

	var body playlistsResponse
	if err := c.getJSON(ctx, playlistsEndpoint+"?"+params.Encode(), &body); err != nil {
		return "", err
	}

	if len(body.Items) == 0 {
		return "", fmt.Errorf("playlist %s not found", playlistID)
	}

	return body.Items[0].Snippet.Title, nil
}

func (c *Client) fetchPlaylistPage(ctx context.Context, playlistID, pageToken string) (playlistItemsResponse, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", fmt.Sprintf("%d", playlistPageSize))
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var body playlistItemsResponse
	if err := c.getJSON(ctx, playlistItemsEndpoint+"?"+params.Encode(), &body); err != nil {
		return playlistItemsResponse{}, err
	}

	return body, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("youtube api returned invalid json: %w", err)
	}

	return nil
}
