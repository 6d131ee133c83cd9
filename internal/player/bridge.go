package player

import (
	"context"
	"log"
	"time"
)

// Widget is the embedded media player the bridge drives. Commands are
// one-way; results and state changes come back as WidgetEvents. PollTime
// requests a position sample, answered by an EventTime.
type Widget interface {
	Load(videoID string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	PollTime() error
}

type WidgetEventType string

const (
	// Widget state reports.
	EventReady   WidgetEventType = "ready"
	EventPlaying WidgetEventType = "playing"
	EventPaused  WidgetEventType = "paused"
	EventEnded   WidgetEventType = "ended"
	EventTime    WidgetEventType = "time"
	// EventReset arrives when the widget transport is torn down or replaced;
	// the bridge drops back to uninitialized and forgets what was loaded.
	EventReset WidgetEventType = "reset"

	// OS media-transport requests (hardware keys, lock-screen controls).
	// These route through the same engine entry points as in-app controls so
	// there is exactly one playback authority.
	EventNextRequest     WidgetEventType = "next"
	EventPreviousRequest WidgetEventType = "previous"
	EventPlayRequest     WidgetEventType = "play"
	EventPauseRequest    WidgetEventType = "pause"
)

type WidgetEvent struct {
	Type        WidgetEventType
	CurrentTime float64
	Duration    float64
}

// MediaSession mirrors now-playing metadata to the platform's media surface.
type MediaSession interface {
	Publish(title, artist, artwork string) error
}

// KeepAlive holds open an inaudible audio channel so the host keeps invoking
// playback callbacks while the page is unfocused. Start/Stop failures are
// tolerated: losing the keep-alive degrades background playback, nothing else.
type KeepAlive interface {
	Start() error
	Stop() error
}

type bridgeMode int

const (
	bridgeUninitialized bridgeMode = iota
	bridgeReady
)

// Bridge adapts the engine to the external widget. It is the only component
// that talks to the widget; the engine never does. It drains typed widget
// events from a channel rather than reacting inside transport callbacks, so
// "ready" and a pending "load" can never race.
type Bridge struct {
	engine *Engine
	widget Widget
	events <-chan WidgetEvent

	media     MediaSession
	keepAlive KeepAlive

	pollInterval time.Duration

	mode          bridgeMode
	lastLoaded    string
	lastPublished string
	widgetPlaying bool
}

type BridgeOptions struct {
	MediaSession MediaSession
	KeepAlive    KeepAlive
	PollInterval time.Duration
}

func NewBridge(engine *Engine, widget Widget, events <-chan WidgetEvent, opts BridgeOptions) *Bridge {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Bridge{
		engine:       engine,
		widget:       widget,
		events:       events,
		media:        opts.MediaSession,
		keepAlive:    opts.KeepAlive,
		pollInterval: interval,
	}
}

// Run drives the bridge until ctx is cancelled. All teardown paths release
// the poll ticker and the keep-alive channel.
func (b *Bridge) Run(ctx context.Context) {
	if b.keepAlive != nil {
		if err := b.keepAlive.Start(); err != nil {
			log.Printf("keep-alive start failed: %v", err)
		}
		defer func() {
			if err := b.keepAlive.Stop(); err != nil {
				log.Printf("keep-alive stop failed: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-b.events:
			if !ok {
				return
			}
			b.handleEvent(ev)

		case <-b.engine.Wake():
			b.reconcile()

		case cmd := <-b.engine.Commands():
			b.handleCommand(cmd)

		case <-ticker.C:
			// Position sampling is poll-based: the widget has no time-update
			// event. Sample only while playing.
			if b.mode == bridgeReady && b.widgetPlaying {
				b.command("poll", b.widget.PollTime)
			}
		}
	}
}

func (b *Bridge) handleEvent(ev WidgetEvent) {
	switch ev.Type {
	case EventReady:
		b.mode = bridgeReady
		b.lastLoaded = ""
		if ev.Duration > 0 {
			b.engine.setDuration(ev.Duration)
		}
		b.reconcile()

	case EventPlaying:
		b.widgetPlaying = true
		b.engine.SetPlaying(true)

	case EventPaused:
		b.widgetPlaying = false
		b.engine.SetPlaying(false)

	case EventEnded:
		b.widgetPlaying = false
		b.engine.HandleTrackEnded()

	case EventTime:
		b.engine.setProgress(ev.CurrentTime, ev.Duration)

	case EventReset:
		b.mode = bridgeUninitialized
		b.lastLoaded = ""
		b.lastPublished = ""
		b.widgetPlaying = false

	case EventNextRequest:
		b.engine.PlayNext()

	case EventPreviousRequest:
		b.engine.PlayPrevious()

	case EventPlayRequest:
		b.engine.SetPlaying(true)

	case EventPauseRequest:
		b.engine.SetPlaying(false)

	default:
		// Unrecognized widget states are ignored.
	}
}

func (b *Bridge) handleCommand(cmd Command) {
	if b.mode != bridgeReady {
		return
	}
	switch cmd {
	case CommandRestart:
		b.command("seek", func() error { return b.widget.Seek(0) })
		b.command("play", b.widget.Play)
	case CommandPause:
		b.command("pause", b.widget.Pause)
	case CommandSeek:
		b.command("seek", func() error { return b.widget.Seek(b.engine.takePendingSeek()) })
	}
}

// reconcile pushes engine state at the widget: load on identity change, then
// align play/pause. Loads are gated on Ready and skipped when the requested
// video is already loaded, so unrelated state changes cannot trigger reload
// loops.
func (b *Bridge) reconcile() {
	if b.mode != bridgeReady {
		return
	}

	state := b.engine.Snapshot()
	song := state.CurrentSong
	if song == nil {
		if b.widgetPlaying {
			b.command("pause", b.widget.Pause)
		}
		return
	}

	if song.YouTubeID != b.lastLoaded {
		if !b.command("load", func() error { return b.widget.Load(song.YouTubeID) }) {
			return
		}
		b.lastLoaded = song.YouTubeID
		b.widgetPlaying = false
		if state.IsPlaying {
			b.command("play", b.widget.Play)
		}
	} else if state.IsPlaying != b.widgetPlaying {
		if state.IsPlaying {
			b.command("play", b.widget.Play)
		} else {
			b.command("pause", b.widget.Pause)
		}
	}

	b.publishNowPlaying(*song)
}

func (b *Bridge) publishNowPlaying(song Song) {
	if b.media == nil || song.YouTubeID == b.lastPublished {
		return
	}
	if err := b.media.Publish(song.Title, song.Artist, song.Thumbnail); err != nil {
		log.Printf("media session publish failed: %v", err)
		return
	}
	b.lastPublished = song.YouTubeID
}

// command runs a widget call, logging instead of propagating failures. The
// bridge degrades to doing nothing on a bad tick rather than crashing the
// session.
func (b *Bridge) command(name string, fn func() error) bool {
	if err := fn(); err != nil {
		log.Printf("widget %s failed: %v", name, err)
		return false
	}
	return true
}
