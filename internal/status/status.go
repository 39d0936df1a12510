// Package status provides a thread-safe status tracker for the push-disco daemon.
// It is designed to be read by HTTP handlers without touching the run loop.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/push-disco/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	DurationMs  int64
	HeartbeatMs int64
	ButtonPin   int
	RelayPin    int
	AudioFile   string
	Volume      float64
	Player      string
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         logic.ShowState
	Baselined     bool
	Counts        logic.Counts
	LastShowStart time.Time
	LastShowEnd   time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets show state, baseline status, event counts and last show times.
// Called from the run loop on every tick.
func (t *Tracker) Update(state logic.ShowState, baselined bool, counts logic.Counts, lastStart, lastEnd time.Time) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.snap.LastShowStart = lastStart
	t.snap.LastShowEnd = lastEnd
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
