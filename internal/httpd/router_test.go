package httpd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Koziky/lucid-tune-hub/internal/notify"
	"github.com/Koziky/lucid-tune-hub/internal/player"
	"github.com/Koziky/lucid-tune-hub/internal/ws"
)

func newTestServer(t *testing.T) (*httptest.Server, *player.Engine) {
	t.Helper()

	notifier := notify.New()
	engine := player.NewEngine(player.Options{Notifier: notifier})

	handler := NewRouter(&Server{
		Engine: engine,
		Hub:    ws.NewHub(notifier),
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server, engine
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decodeState(t *testing.T, resp *http.Response) player.State {
	t.Helper()

	var state player.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestQueueEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, server.URL+"/api/queue", player.Song{
			ID:        fmt.Sprintf("song-%d", i),
			YouTubeID: fmt.Sprintf("video%05d_", i),
			Title:     fmt.Sprintf("Song %d", i),
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add to queue: status %d", resp.StatusCode)
		}
	}

	resp, err := http.Get(server.URL + "/api/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer resp.Body.Close()

	state := decodeState(t, resp)
	if len(state.Queue) != 3 {
		t.Fatalf("expected 3 queued songs, got %d", len(state.Queue))
	}
	if state.CurrentIndex != 0 {
		t.Fatalf("expected index 0, got %d", state.CurrentIndex)
	}

	resp = postJSON(t, server.URL+"/api/queue/reorder", map[string]int{
		"oldIndex": 0, "newIndex": 2,
	})
	state = decodeState(t, resp)
	if state.Queue[2].ID != "song-0" {
		t.Fatalf("expected song-0 at the end, got %s", state.Queue[2].ID)
	}

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/queue/99", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out-of-range remove: status %d, want 400", resp.StatusCode)
	}
}

func TestPlayerEndpoints(t *testing.T) {
	server, engine := newTestServer(t)

	if err := engine.AddToQueue(player.Song{ID: "song-1", YouTubeID: "aaaaaaaaaaa"}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	resp := postJSON(t, server.URL+"/api/player/volume", map[string]int{"volume": 150})
	state := decodeState(t, resp)
	if state.Volume != 100 {
		t.Fatalf("expected clamped volume 100, got %d", state.Volume)
	}

	resp = postJSON(t, server.URL+"/api/player/repeat", nil)
	state = decodeState(t, resp)
	if state.RepeatMode != player.RepeatAll {
		t.Fatalf("expected repeat all, got %s", state.RepeatMode)
	}

	resp = postJSON(t, server.URL+"/api/player/play", nil)
	state = decodeState(t, resp)
	if !state.IsPlaying {
		t.Fatal("expected playing after /play")
	}
}

func TestSleepTimerEndpointValidation(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/player/sleep", map[string]int{"minutes": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero minutes: status %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/api/player/sleep", map[string]interface{}{"endOfTrack": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end of track: status %d, want 200", resp.StatusCode)
	}
}
