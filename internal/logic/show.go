package logic

import "time"

// Machine owns the Idle/Running show state. A press while Idle starts a show
// with a fixed deadline; the show ends at the first of deadline expiry, audio
// completion (or failure), or shutdown. Presses while Running are counted and
// ignored, never queued. Like Detector, the machine performs no I/O itself:
// callers act on the returned ShowEvents.
type Machine struct {
	duration time.Duration

	state    ShowState
	deadline time.Time
	show     int

	counts        Counts
	startTime     time.Time
	lastHeartbeat time.Time
	lastShowStart time.Time
	lastShowEnd   time.Time
}

// NewMachine creates a show machine with the given show duration.
// The startTime is used for calculating uptime in heartbeat events.
func NewMachine(duration time.Duration, startTime time.Time) *Machine {
	return &Machine{
		duration:      duration,
		state:         StateIdle,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Press handles a debounced (or software-injected) button press.
// Idle: starts a show and returns SHOW_START. Running: returns PRESS_IGNORED.
func (m *Machine) Press(now time.Time) *ShowEvent {
	m.counts.Presses++

	if m.state == StateRunning {
		m.counts.PressesIgnored++
		return &ShowEvent{
			Timestamp: now,
			Type:      EventPressIgnored,
			Show:      m.show,
			State:     m.state,
		}
	}

	m.state = StateRunning
	m.deadline = now.Add(m.duration)
	m.show++
	m.counts.ShowsStarted++
	m.lastShowStart = now
	return &ShowEvent{
		Timestamp: now,
		Type:      EventShowStart,
		Show:      m.show,
		State:     m.state,
	}
}

// Tick checks the deadline. Returns SHOW_END with reason deadline when the
// running show has used up its duration, nil otherwise.
func (m *Machine) Tick(now time.Time) *ShowEvent {
	if m.state != StateRunning {
		return nil
	}
	if now.Before(m.deadline) {
		return nil
	}
	return m.end(now, ReasonDeadline)
}

// AudioDone handles the end of audio playback for the running show. A nil err
// is a clean completion; anything else counts as an audio failure. Either way
// the show ends so the relay-off path always runs. Completions that arrive
// after the show already ended (the player was killed at the deadline) are
// dropped.
func (m *Machine) AudioDone(now time.Time, err error) *ShowEvent {
	if m.state != StateRunning {
		return nil
	}
	reason := ReasonAudioDone
	if err != nil {
		reason = ReasonAudioError
		m.counts.AudioFailures++
	}
	return m.end(now, reason)
}

// Shutdown ends the running show, if any, so cleanup can run before exit.
func (m *Machine) Shutdown(now time.Time) *ShowEvent {
	if m.state != StateRunning {
		return nil
	}
	return m.end(now, ReasonShutdown)
}

func (m *Machine) end(now time.Time, reason EndReason) *ShowEvent {
	m.state = StateIdle
	m.deadline = time.Time{}
	m.counts.ShowsEnded++
	m.lastShowEnd = now
	return &ShowEvent{
		Timestamp: now,
		Type:      EventShowEnd,
		Show:      m.show,
		State:     m.state,
		Reason:    reason,
	}
}

// State returns the current show state.
func (m *Machine) State() ShowState {
	return m.state
}

// Counts returns the event totals since startup.
func (m *Machine) Counts() Counts {
	return m.counts
}

// LastShow returns when the most recent show started and ended. Zero times
// mean no show yet; a zero end with a non-zero start means a show is running.
func (m *Machine) LastShow() (start, end time.Time) {
	return m.lastShowStart, m.lastShowEnd
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (m *Machine) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}

	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(m.startTime),
		State:     m.state,
		Counts:    m.counts,
	}
}
