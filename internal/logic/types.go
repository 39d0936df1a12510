// Package logic contains pure business logic for button and show state
// tracking. This package has NO external dependencies (no GPIO, audio, MQTT,
// OS, or time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// ButtonState represents the logical state of the push button.
type ButtonState string

const (
	StatePressed  ButtonState = "PRESSED"
	StateReleased ButtonState = "RELEASED"
)

// ShowState represents the show runner state.
type ShowState string

const (
	StateIdle    ShowState = "IDLE"
	StateRunning ShowState = "RUNNING"
)

// ButtonEventType represents a debounced button transition.
type ButtonEventType string

const (
	EventPressed  ButtonEventType = "PRESSED"
	EventReleased ButtonEventType = "RELEASED"
)

// ButtonEvent represents a debounced button transition.
type ButtonEvent struct {
	Timestamp time.Time
	Type      ButtonEventType
}

// ShowEventType represents a show lifecycle event.
type ShowEventType string

const (
	EventShowStart    ShowEventType = "SHOW_START"
	EventShowEnd      ShowEventType = "SHOW_END"
	EventPressIgnored ShowEventType = "PRESS_IGNORED"
)

// EndReason records what ended a show.
type EndReason string

const (
	ReasonDeadline   EndReason = "deadline"
	ReasonAudioDone  EndReason = "audio_done"
	ReasonAudioError EndReason = "audio_error"
	ReasonShutdown   EndReason = "shutdown"
)

// ShowEvent represents a show lifecycle transition to be acted on and
// published. Show is the 1-based sequence number of the show it belongs to.
type ShowEvent struct {
	Timestamp time.Time
	Type      ShowEventType
	Show      int
	State     ShowState
	Reason    EndReason // only set for SHOW_END
}

// ChannelState tracks debounce state for the button line.
type ChannelState struct {
	// Current stable (debounced) state
	Stable ButtonState
	// Pending state during debounce
	Pending ButtonState
	// Time when pending state was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Counts tracks event totals since startup.
type Counts struct {
	Presses        int
	PressesIgnored int
	ShowsStarted   int
	ShowsEnded     int
	AudioFailures  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	State     ShowState
	Counts    Counts
}
