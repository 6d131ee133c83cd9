// Package ws carries the widget transport: a single websocket connection to
// the page hosting the embedded player. Commands go out as JSON frames,
// widget state reports come back in and are pumped into the bridge's event
// channel.
package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Koziky/lucid-tune-hub/internal/notify"
	"github.com/Koziky/lucid-tune-hub/internal/player"
)

var ErrNoWidget = errors.New("no widget connected")

const eventBuffer = 64

// outFrame is every command shape the page understands. Unused fields are
// omitted per frame type.
type outFrame struct {
	Type    string  `json:"type"`
	VideoID string  `json:"videoId,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`

	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Artwork string `json:"artwork,omitempty"`

	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

type inFrame struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Action      string  `json:"action"`
}

// Hub owns the widget connection. It implements the bridge's Widget,
// MediaSession and KeepAlive contracts over the same socket. At most one
// widget is connected; a new connection replaces the old one and resets the
// bridge.
type Hub struct {
	upgrader websocket.Upgrader
	notifier *notify.Notifier

	mu     sync.Mutex
	conn   *websocket.Conn
	events chan player.WidgetEvent
}

func NewHub(notifier *notify.Notifier) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		notifier: notifier,
		events:   make(chan player.WidgetEvent, eventBuffer),
	}
}

// Events is the channel the bridge drains.
func (h *Hub) Events() <-chan player.WidgetEvent {
	return h.events
}

// ServeWidget upgrades the request and takes over as the current widget
// connection. The previous connection, if any, is closed.
func (h *Hub) ServeWidget(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	old := h.conn
	h.conn = conn
	h.mu.Unlock()

	if old != nil {
		_ = old.Close()
		h.push(player.WidgetEvent{Type: player.EventReset})
	}

	log.Printf("ws: widget connected from %s", r.RemoteAddr)
	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		current := h.conn == conn
		if current {
			h.conn = nil
		}
		h.mu.Unlock()

		_ = conn.Close()
		if current {
			h.push(player.WidgetEvent{Type: player.EventReset})
			log.Print("ws: widget disconnected")
		}
	}()

	for {
		var frame inFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read failed: %v", err)
			}
			return
		}

		ev, ok := decodeFrame(frame)
		if !ok {
			log.Printf("ws: unknown frame type %q", frame.Type)
			continue
		}
		h.push(ev)
	}
}

func decodeFrame(frame inFrame) (player.WidgetEvent, bool) {
	switch frame.Type {
	case "ready":
		return player.WidgetEvent{Type: player.EventReady, Duration: frame.Duration}, true
	case "playing":
		return player.WidgetEvent{Type: player.EventPlaying}, true
	case "paused":
		return player.WidgetEvent{Type: player.EventPaused}, true
	case "ended":
		return player.WidgetEvent{Type: player.EventEnded}, true
	case "time":
		return player.WidgetEvent{
			Type:        player.EventTime,
			CurrentTime: frame.CurrentTime,
			Duration:    frame.Duration,
		}, true
	case "transport":
		switch frame.Action {
		case "next":
			return player.WidgetEvent{Type: player.EventNextRequest}, true
		case "previous":
			return player.WidgetEvent{Type: player.EventPreviousRequest}, true
		case "play":
			return player.WidgetEvent{Type: player.EventPlayRequest}, true
		case "pause":
			return player.WidgetEvent{Type: player.EventPauseRequest}, true
		}
		return player.WidgetEvent{}, false
	default:
		return player.WidgetEvent{}, false
	}
}

// push hands an event to the bridge, dropping instead of blocking when the
// bridge has fallen behind.
func (h *Hub) push(ev player.WidgetEvent) {
	select {
	case h.events <- ev:
	default:
		log.Printf("ws: event buffer full, dropping %s", ev.Type)
	}
}

func (h *Hub) send(frame outFrame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return ErrNoWidget
	}
	return h.conn.WriteJSON(frame)
}

// Widget commands.

func (h *Hub) Load(videoID string) error {
	return h.send(outFrame{Type: "load", VideoID: videoID})
}

func (h *Hub) Play() error {
	return h.send(outFrame{Type: "play"})
}

func (h *Hub) Pause() error {
	return h.send(outFrame{Type: "pause"})
}

func (h *Hub) Seek(seconds float64) error {
	return h.send(outFrame{Type: "seek", Seconds: seconds})
}

func (h *Hub) PollTime() error {
	return h.send(outFrame{Type: "poll"})
}

// MediaSession.

func (h *Hub) Publish(title, artist, artwork string) error {
	return h.send(outFrame{
		Type:    "mediasession",
		Title:   title,
		Artist:  artist,
		Artwork: artwork,
	})
}

// KeepAlive. The page owns the inaudible audio element; these frames only
// toggle it. Failures here are tolerated by the bridge.

func (h *Hub) Start() error {
	return h.send(outFrame{Type: "keepalive", Enabled: true})
}

func (h *Hub) Stop() error {
	return h.send(outFrame{Type: "keepalive"})
}

// Run forwards notifications to the page until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	notices, cancel := h.notifier.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case notice := <-notices:
			err := h.send(outFrame{
				Type:     "notice",
				Severity: string(notice.Severity),
				Title:    notice.Title,
				Message:  notice.Message,
			})
			if err != nil && !errors.Is(err, ErrNoWidget) {
				log.Printf("ws: notice delivery failed: %v", err)
			}
		}
	}
}
