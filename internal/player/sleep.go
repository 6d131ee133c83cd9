package player

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSleepDuration = errors.New("sleep timer duration must be positive")

type sleepState struct {
	mode      SleepMode
	remaining int
	cancel    chan struct{}
}

// SetSleepTimer arms a countdown that forces playback to pause when it hits
// zero. Only one timer can be active: arming a new one replaces the old.
func (e *Engine) SetSleepTimer(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidSleepDuration
	}

	e.mu.Lock()
	e.cancelSleepLocked()
	cancel := make(chan struct{})
	e.sleep = sleepState{
		mode:      SleepModeCountdown,
		remaining: minutes * 60,
		cancel:    cancel,
	}
	e.mu.Unlock()

	go e.sleepCountdown(cancel)

	if e.notifier != nil {
		e.notifier.Info("Sleep timer set", fmt.Sprintf("Music will stop in %d minutes", minutes))
	}
	return nil
}

// SetSleepTimerEndOfTrack arms the un-timed variant: no countdown runs, and
// the bridge's ended handling stops playback instead of advancing.
func (e *Engine) SetSleepTimerEndOfTrack() {
	e.mu.Lock()
	e.cancelSleepLocked()
	e.sleep = sleepState{mode: SleepModeEndOfTrack}
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.Info("Sleep timer set", "Music will stop after the current track")
	}
}

// CancelSleepTimer clears any armed timer immediately. Playback is not
// touched.
func (e *Engine) CancelSleepTimer() {
	e.mu.Lock()
	active := e.sleep.mode != SleepModeOff
	e.cancelSleepLocked()
	e.sleep = sleepState{mode: SleepModeOff}
	e.mu.Unlock()

	if active && e.notifier != nil {
		e.notifier.Info("Sleep timer cancelled", "")
	}
}

// SleepRemaining reports the countdown in seconds, or 0 when no countdown is
// running.
func (e *Engine) SleepRemaining() (SleepMode, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sleep.mode, e.sleep.remaining
}

// cancelSleepLocked stops a running countdown goroutine. Caller holds e.mu.
func (e *Engine) cancelSleepLocked() {
	if e.sleep.cancel != nil {
		close(e.sleep.cancel)
		e.sleep.cancel = nil
	}
}

func (e *Engine) sleepCountdown(cancel chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		if e.sleep.cancel != cancel {
			// Replaced by a newer timer while we slept.
			e.mu.Unlock()
			return
		}

		e.sleep.remaining--
		if e.sleep.remaining > 0 {
			e.mu.Unlock()
			continue
		}

		e.sleep = sleepState{mode: SleepModeOff}
		e.isPlaying = false
		e.mu.Unlock()

		if e.notifier != nil {
			e.notifier.Info("Sleep timer", "Playback paused")
		}
		e.sendCommand(CommandPause)
		e.signalWake()
		return
	}
}
