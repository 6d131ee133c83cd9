package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Koziky/lucid-tune-hub/internal/notify"
	"github.com/Koziky/lucid-tune-hub/internal/player"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(notify.New())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWidget))
	t.Cleanup(server.Close)

	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func waitEvent(t *testing.T, hub *Hub, want player.WidgetEventType) player.WidgetEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-hub.Events():
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestHubPumpsWidgetEvents(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)

	if err := conn.WriteJSON(map[string]interface{}{"type": "ready", "duration": 212.0}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev := waitEvent(t, hub, player.EventReady)
	if ev.Duration != 212 {
		t.Fatalf("got duration %v, want 212", ev.Duration)
	}

	if err := conn.WriteJSON(map[string]interface{}{
		"type": "time", "currentTime": 42.5, "duration": 212.0,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev = waitEvent(t, hub, player.EventTime)
	if ev.CurrentTime != 42.5 {
		t.Fatalf("got currentTime %v, want 42.5", ev.CurrentTime)
	}
}

func TestHubRoutesTransportActions(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)

	actions := map[string]player.WidgetEventType{
		"next":     player.EventNextRequest,
		"previous": player.EventPreviousRequest,
		"play":     player.EventPlayRequest,
		"pause":    player.EventPauseRequest,
	}

	for action, want := range actions {
		if err := conn.WriteJSON(map[string]interface{}{"type": "transport", "action": action}); err != nil {
			t.Fatalf("write %s: %v", action, err)
		}
		waitEvent(t, hub, want)
	}
}

func TestHubSendsCommandsToWidget(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)

	// The connection registers asynchronously in the handler.
	waitConnected(t, hub)

	if err := hub.Load("dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var frame map[string]interface{}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}

	if frame["type"] != "load" || frame["videoId"] != "dQw4w9WgXcQ" {
		t.Fatalf("got frame %v", frame)
	}
}

func TestHubReplacementResetsBridge(t *testing.T) {
	hub, server := newTestHub(t)
	dial(t, server)
	waitConnected(t, hub)

	dial(t, server)
	waitEvent(t, hub, player.EventReset)
}

func TestHubCommandsWithoutWidget(t *testing.T) {
	hub := NewHub(notify.New())

	if err := hub.Play(); !errors.Is(err, ErrNoWidget) {
		t.Fatalf("expected ErrNoWidget, got %v", err)
	}
}

func waitConnected(t *testing.T, hub *Hub) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		connected := hub.conn != nil
		hub.mu.Unlock()
		if connected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("widget never connected")
}
