package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrQueueFull    = errors.New("queue is full")
	ErrQueueEmpty   = errors.New("queue is empty")
	ErrInvalidIndex = errors.New("index out of range")
)

const persistTimeout = 5 * time.Second

// Library is the slice of the persistence adapter the engine needs. Calls
// are fire-and-forget: the in-memory transition always wins and a store
// failure only surfaces as a notification.
type Library interface {
	UpsertSong(ctx context.Context, song Song) (Song, error)
	RecordPlay(ctx context.Context, userID, songID string) error
}

// Notifier is the single transient-notification channel all user-visible
// outcomes go through.
type Notifier interface {
	Info(title, message string)
	Success(title, message string)
	Error(title, message string)
}

// Command is an explicit instruction from the engine to the playback bridge,
// for the cases a plain state reconcile cannot express.
type Command int

const (
	// CommandRestart seeks the current track back to zero (repeat-one).
	CommandRestart Command = iota
	// CommandPause forces the widget to pause (sleep timer expiry).
	CommandPause
	// CommandSeek moves the widget to the position staged by SeekTo.
	CommandSeek
)

// Engine owns the playback queue, current index, shuffle/repeat state,
// volume, and the sleep timer. It is the only component allowed to mutate
// them; the bridge and the HTTP surface go through its operation set.
//
// Queue operations are synchronous and in-memory. Persistence side effects
// run in the background and never roll the queue back on failure.
type Engine struct {
	mu sync.Mutex

	queue     *Queue
	isPlaying bool
	volume    int
	repeat    RepeatMode

	currentTime float64
	duration    float64
	pendingSeek float64

	sleep sleepState

	rng      *rand.Rand
	maxQueue int

	library  Library
	notifier Notifier

	wakeCh chan struct{}
	cmdCh  chan Command
}

type Options struct {
	Library      Library
	Notifier     Notifier
	Volume       int
	MaxQueueSize int
	Rand         *rand.Rand
}

func NewEngine(opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	volume := opts.Volume
	if volume < 0 || volume > 100 {
		volume = 50
	}
	maxQueue := opts.MaxQueueSize
	if maxQueue < 1 {
		maxQueue = 500
	}

	return &Engine{
		queue:    NewQueue(),
		volume:   volume,
		repeat:   RepeatOff,
		rng:      rng,
		maxQueue: maxQueue,
		library:  opts.Library,
		notifier: opts.Notifier,
		wakeCh:   make(chan struct{}, 1),
		cmdCh:    make(chan Command, 4),
	}
}

// Wake signals that engine state changed and the bridge should reconcile.
func (e *Engine) Wake() <-chan struct{} {
	return e.wakeCh
}

// Commands carries explicit bridge instructions (restart, forced pause).
func (e *Engine) Commands() <-chan Command {
	return e.cmdCh
}

func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := State{
		Queue:        e.queue.Songs(),
		CurrentIndex: e.queue.CurrentIndex(),
		IsPlaying:    e.isPlaying,
		Volume:       e.volume,
		IsShuffle:    e.queue.IsShuffled(),
		RepeatMode:   e.repeat,
		CurrentTime:  e.currentTime,
		Duration:     e.duration,
		SleepMode:    e.sleep.mode,
		SleepSeconds: e.sleep.remaining,
	}
	if song, ok := e.queue.Current(); ok {
		state.CurrentSong = &song
	}
	return state
}

// CurrentSong returns the derived queue[currentIndex], if any.
func (e *Engine) CurrentSong() (Song, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Current()
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isPlaying
}

// AddToQueue appends a song. The current pointer never moves; repeated calls
// append duplicates, which is allowed. Persisting the song (de-duplicated by
// YouTube id) happens in the background.
func (e *Engine) AddToQueue(song Song) error {
	e.mu.Lock()
	if e.queue.Len() >= e.maxQueue {
		e.mu.Unlock()
		return ErrQueueFull
	}
	e.queue.Append(song)
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.Success("Added to queue", fmt.Sprintf("%s by %s", song.Title, song.Artist))
	}
	e.persistSong(song)
	e.signalWake()
	return nil
}

// RemoveFromQueue removes the song at index. Removing a slot before the
// current one shifts the pointer down so the playing track is unchanged;
// removing the current slot makes whatever now occupies it current, which
// the bridge detects as an identity change and reloads.
func (e *Engine) RemoveFromQueue(index int) error {
	e.mu.Lock()
	if !e.queue.RemoveAt(index) {
		e.mu.Unlock()
		return ErrInvalidIndex
	}
	if e.queue.Len() == 0 {
		e.isPlaying = false
	}
	e.mu.Unlock()

	e.signalWake()
	return nil
}

// ReorderQueue moves the song at oldIndex to newIndex.
func (e *Engine) ReorderQueue(oldIndex, newIndex int) error {
	e.mu.Lock()
	if !e.queue.Move(oldIndex, newIndex) {
		e.mu.Unlock()
		return ErrInvalidIndex
	}
	e.mu.Unlock()

	e.signalWake()
	return nil
}

// PlayNext advances playback. With repeat-one the index is untouched and the
// bridge is told to restart from zero. At the end of the queue, repeat-all
// wraps to the start; repeat-off stops playback but keeps the index so the
// track can be replayed.
func (e *Engine) PlayNext() {
	e.mu.Lock()

	if e.queue.Len() == 0 {
		e.mu.Unlock()
		return
	}

	if e.repeat == RepeatOne {
		e.currentTime = 0
		e.mu.Unlock()
		e.sendCommand(CommandRestart)
		return
	}

	idx := e.queue.CurrentIndex()
	switch {
	case idx < e.queue.Len()-1:
		e.queue.JumpTo(idx + 1)
		e.currentTime = 0
	case e.repeat == RepeatAll:
		e.queue.JumpTo(0)
		e.currentTime = 0
	default:
		e.isPlaying = false
	}

	e.recordPlayLocked()
	e.mu.Unlock()
	e.signalWake()
}

// PlayPrevious steps back one track. No wraparound: at the head of the queue
// it is a no-op.
func (e *Engine) PlayPrevious() {
	e.mu.Lock()
	idx := e.queue.CurrentIndex()
	if idx > 0 {
		e.queue.JumpTo(idx - 1)
		e.currentTime = 0
		e.recordPlayLocked()
	}
	e.mu.Unlock()
	e.signalWake()
}

// PlayAt jumps to the given queue slot and starts playback.
func (e *Engine) PlayAt(index int) error {
	e.mu.Lock()
	if !e.queue.JumpTo(index) {
		e.mu.Unlock()
		return ErrInvalidIndex
	}
	e.currentTime = 0
	e.isPlaying = true
	e.recordPlayLocked()
	e.mu.Unlock()

	e.signalWake()
	return nil
}

// ToggleShuffle flips shuffle. Turning it on snapshots the order and puts the
// current song first; turning it off restores the snapshot and relocates the
// current song in it by identity.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	var on bool
	if e.queue.IsShuffled() {
		e.queue.Unshuffle()
		on = false
	} else {
		e.queue.Shuffle(e.rng)
		on = true
	}
	e.mu.Unlock()

	e.signalWake()
	return on
}

// ToggleRepeat cycles off -> all -> one -> off.
func (e *Engine) ToggleRepeat() RepeatMode {
	e.mu.Lock()
	switch e.repeat {
	case RepeatOff:
		e.repeat = RepeatAll
	case RepeatAll:
		e.repeat = RepeatOne
	default:
		e.repeat = RepeatOff
	}
	mode := e.repeat
	e.mu.Unlock()
	return mode
}

func (e *Engine) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
	e.signalWake()
}

func (e *Engine) SetPlaying(playing bool) {
	e.mu.Lock()
	changed := e.isPlaying != playing
	e.isPlaying = playing
	if changed && playing {
		e.recordPlayLocked()
	}
	e.mu.Unlock()

	if changed {
		e.signalWake()
	}
}

// ReplaceQueue swaps in a whole new queue (playlist load, "play all",
// "play liked") and starts from the top.
func (e *Engine) ReplaceQueue(songs []Song) error {
	if len(songs) == 0 {
		return ErrQueueEmpty
	}

	e.mu.Lock()
	if len(songs) > e.maxQueue {
		songs = songs[:e.maxQueue]
	}
	e.queue.Replace(songs)
	e.currentTime = 0
	e.isPlaying = true
	e.recordPlayLocked()
	e.mu.Unlock()

	e.signalWake()
	return nil
}

// HandleTrackEnded is the bridge's entry point for the widget's ended event.
// A sleep timer armed for end-of-track stops playback here instead of
// advancing.
func (e *Engine) HandleTrackEnded() {
	e.mu.Lock()
	if e.sleep.mode == SleepModeEndOfTrack {
		e.sleep = sleepState{mode: SleepModeOff}
		e.isPlaying = false
		e.mu.Unlock()

		if e.notifier != nil {
			e.notifier.Info("Sleep timer", "Playback stopped at the end of the track")
		}
		e.sendCommand(CommandPause)
		e.signalWake()
		return
	}
	e.mu.Unlock()

	e.PlayNext()
}

// SeekTo stages a scrub to the given position and tells the bridge to apply
// it. The staged value is also published as currentTime immediately so the UI
// does not snap back while waiting for the next poll.
func (e *Engine) SeekTo(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}

	e.mu.Lock()
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.currentTime = seconds
	e.pendingSeek = seconds
	e.mu.Unlock()

	e.sendCommand(CommandSeek)
}

// takePendingSeek reads the position staged by SeekTo.
func (e *Engine) takePendingSeek() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingSeek
}

// setProgress publishes the sampled playback position (bridge polling).
func (e *Engine) setProgress(currentTime, duration float64) {
	e.mu.Lock()
	e.currentTime = currentTime
	if duration > 0 {
		e.duration = duration
	}
	e.mu.Unlock()
}

func (e *Engine) setDuration(duration float64) {
	e.mu.Lock()
	if duration > 0 {
		e.duration = duration
	}
	e.mu.Unlock()
}

// recordPlayLocked appends the playing track to the history log in the
// background. Caller must hold e.mu.
func (e *Engine) recordPlayLocked() {
	if e.library == nil || !e.isPlaying {
		return
	}
	song, ok := e.queue.Current()
	if !ok || song.ID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := e.library.RecordPlay(ctx, song.UserID, song.ID); err != nil {
			log.Printf("record play failed for %s: %v", song.ID, err)
		}
	}()
}

// persistSong upserts the song in the background. The queue already holds
// its transient copy; a store failure is reported but never rolled back.
func (e *Engine) persistSong(song Song) {
	if e.library == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := e.library.UpsertSong(ctx, song); err != nil {
			log.Printf("persist song %q failed: %v", song.YouTubeID, err)
			if e.notifier != nil {
				e.notifier.Error("Save failed", "The song stayed in your queue but could not be saved")
			}
		}
	}()
}

func (e *Engine) signalWake() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

func (e *Engine) sendCommand(cmd Command) {
	select {
	case e.cmdCh <- cmd:
	default:
		log.Printf("bridge command channel full, dropping command %d", cmd)
	}
}
