package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

const searchEndpoint = "https://www.googleapis.com/youtube/v3/search"
const searchLimit = 10
const searchCacheTTL = 5 * time.Minute

type searchCacheEntry struct {
	results   []player.Song
	expiresAt time.Time
}

var searchCache = struct {
	mu   sync.RWMutex
	data map[string]searchCacheEntry
}{
	data: make(map[string]searchCacheEntry),
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search runs a Data API video search biased toward music results. The query
// gets a " music" suffix and results are restricted to the music category.
func (c *Client) Search(ctx context.Context, query string) ([]player.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	key := strings.ToLower(query)
	if cached, ok := getCachedResults(key); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("videoCategoryId", "10")
	params.Set("maxResults", fmt.Sprintf("%d", searchLimit))
	params.Set("q", query+" music")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("youtube search returned invalid json: %w", err)
	}

	results := make([]player.Song, 0, len(body.Items))
	for _, item := range body.Items {
		if item.ID.VideoID == "" {
			continue
		}

		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = ThumbnailURL(item.ID.VideoID)
		}

		results = append(results, player.Song{
			YouTubeID: item.ID.VideoID,
			Title:     item.Snippet.Title,
			Artist:    item.Snippet.ChannelTitle,
			Thumbnail: thumbnail,
		})
	}

	setCachedResults(key, results)
	return results, nil
}

func getCachedResults(key string) ([]player.Song, bool) {
	searchCache.mu.RLock()
	entry, ok := searchCache.data[key]
	searchCache.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		searchCache.mu.Lock()
		delete(searchCache.data, key)
		searchCache.mu.Unlock()
		return nil, false
	}
	return entry.results, true
}

func setCachedResults(key string, results []player.Song) {
	searchCache.mu.Lock()
	searchCache.data[key] = searchCacheEntry{
		results:   results,
		expiresAt: time.Now().Add(searchCacheTTL),
	}
	searchCache.mu.Unlock()
}
