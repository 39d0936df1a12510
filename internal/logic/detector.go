package logic

import "time"

// Detector tracks the button line and detects debounced transitions.
type Detector struct {
	debounceDuration time.Duration
	button           ChannelState
}

// NewDetector creates a new transition detector with the given debounce duration.
func NewDetector(debounceDuration time.Duration) *Detector {
	return &Detector{debounceDuration: debounceDuration}
}

// Process takes a new input sample and returns the event that should be
// emitted, if any. Events are only returned after baseline is established and
// on debounced state transitions, so a bouncing contact yields a single event
// and a button held down at startup does not fire a phantom press.
func (d *Detector) Process(pressed bool, now time.Time) *ButtonEvent {
	newState := boolToState(pressed)
	ch := &d.button

	// First samples establish the baseline
	if !ch.Baselined {
		if ch.Pending == "" {
			// Start observing
			ch.Pending = newState
			ch.PendingSince = now
			return nil
		}

		if ch.Pending != newState {
			// State changed during baseline, restart
			ch.Pending = newState
			ch.PendingSince = now
			return nil
		}

		// Check if debounce period has passed
		if now.Sub(ch.PendingSince) >= d.debounceDuration {
			ch.Stable = newState
			ch.Baselined = true
			ch.Pending = ""
		}
		return nil
	}

	// Already baselined - detect transitions
	if newState == ch.Stable {
		// No change from stable state, clear any pending
		ch.Pending = ""
		return nil
	}

	// State differs from stable
	if ch.Pending != newState {
		// New pending state
		ch.Pending = newState
		ch.PendingSince = now
		return nil
	}

	// Same pending state, check debounce
	if now.Sub(ch.PendingSince) >= d.debounceDuration {
		ch.Stable = newState
		ch.Pending = ""
		ev := ButtonEvent{Timestamp: now, Type: EventReleased}
		if newState == StatePressed {
			ev.Type = EventPressed
		}
		return &ev
	}

	return nil
}

func boolToState(b bool) ButtonState {
	if b {
		return StatePressed
	}
	return StateReleased
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.button.Baselined
}

// CurrentState returns the current stable button state.
func (d *Detector) CurrentState() ButtonState {
	return d.button.Stable
}
