package player

import (
	"testing"
	"time"
)

func TestSetSleepTimerValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetSleepTimer(0); err != ErrInvalidSleepDuration {
		t.Errorf("SetSleepTimer(0) = %v, want ErrInvalidSleepDuration", err)
	}
	if err := e.SetSleepTimer(-5); err != ErrInvalidSleepDuration {
		t.Errorf("SetSleepTimer(-5) = %v, want ErrInvalidSleepDuration", err)
	}
}

func TestCancelSleepTimerClearsWithoutPausing(t *testing.T) {
	e, _ := newTestEngine(t)
	fillQueue(t, e, "a")
	e.SetPlaying(true)

	if err := e.SetSleepTimer(1); err != nil {
		t.Fatal(err)
	}
	if mode, remaining := e.SleepRemaining(); mode != SleepModeCountdown || remaining != 60 {
		t.Fatalf("sleep state = %s/%d, want countdown/60", mode, remaining)
	}

	e.CancelSleepTimer()
	if mode, remaining := e.SleepRemaining(); mode != SleepModeOff || remaining != 0 {
		t.Errorf("sleep state = %s/%d after cancel, want off/0", mode, remaining)
	}

	// Give a stale countdown goroutine a chance to misfire; it must not.
	time.Sleep(1200 * time.Millisecond)
	if !e.Snapshot().IsPlaying {
		t.Error("cancelled sleep timer paused playback")
	}
}

func TestSleepTimerExpiryPausesPlayback(t *testing.T) {
	e, _ := newTestEngine(t)
	fillQueue(t, e, "a")
	e.SetPlaying(true)
	drainCommands(e)

	// Arm a countdown and shrink it to one second so the test does not wait
	// a full minute.
	if err := e.SetSleepTimer(1); err != nil {
		t.Fatal(err)
	}
	e.mu.Lock()
	e.sleep.remaining = 1
	e.mu.Unlock()

	waitFor(t, "sleep expiry", func() bool { return !e.Snapshot().IsPlaying })

	if mode, _ := e.SleepRemaining(); mode != SleepModeOff {
		t.Errorf("sleep mode = %s after expiry, want off", mode)
	}

	select {
	case cmd := <-e.Commands():
		if cmd != CommandPause {
			t.Errorf("bridge command = %d, want CommandPause", cmd)
		}
	case <-time.After(time.Second):
		t.Error("no pause command sent to the bridge")
	}
}

func TestNewSleepTimerReplacesOld(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.SetSleepTimer(5); err != nil {
		t.Fatal(err)
	}
	e.SetSleepTimerEndOfTrack()

	if mode, remaining := e.SleepRemaining(); mode != SleepModeEndOfTrack || remaining != 0 {
		t.Errorf("sleep state = %s/%d, want end_of_track/0", mode, remaining)
	}

	if err := e.SetSleepTimer(2); err != nil {
		t.Fatal(err)
	}
	if mode, remaining := e.SleepRemaining(); mode != SleepModeCountdown || remaining != 120 {
		t.Errorf("sleep state = %s/%d, want countdown/120", mode, remaining)
	}
}

func TestEndOfTrackSleepStopsInsteadOfAdvancing(t *testing.T) {
	e, _ := newTestEngine(t)
	fillQueue(t, e, "a", "b")
	e.SetPlaying(true)
	e.SetSleepTimerEndOfTrack()

	e.HandleTrackEnded()

	state := e.Snapshot()
	if state.IsPlaying {
		t.Error("IsPlaying = true, want stopped at end of track")
	}
	if state.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0 (no advance)", state.CurrentIndex)
	}
	if state.SleepMode != SleepModeOff {
		t.Errorf("SleepMode = %s, want off", state.SleepMode)
	}
}

func TestTrackEndedAdvancesWithoutSleepTimer(t *testing.T) {
	e, _ := newTestEngine(t)
	fillQueue(t, e, "a", "b")
	e.SetPlaying(true)

	e.HandleTrackEnded()

	state := e.Snapshot()
	if state.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", state.CurrentIndex)
	}
	if !state.IsPlaying {
		t.Error("IsPlaying = false, want playing to continue")
	}
}
