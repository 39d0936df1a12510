// Package mqtt provides MQTT publishing with abstraction for testing.
// Publishing is optional: the daemon runs with the nop publisher when no
// broker is configured.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/push-disco/internal/logic"
)

// Topic is the MQTT topic for show events.
const Topic = "home/pushdisco/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/pushdisco/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a show event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.ShowEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string        // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string        // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config     *SystemConfig // effective configuration (startup only)
	RawPayload []byte        // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool          // Whether the message should be retained by the broker
}

// SystemConfig carries the effective configuration in STARTUP events.
type SystemConfig struct {
	PollMs     int     `json:"poll_ms"`
	DebounceMs int     `json:"debounce_ms"`
	DurationMs int     `json:"duration_ms"`
	ButtonPin  int     `json:"button_pin"`
	RelayPin   int     `json:"relay_pin"`
	AudioFile  string  `json:"audio_file"`
	Volume     float64 `json:"volume"`
	Broker     string  `json:"broker,omitempty"`
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Disco DiscoPayload `json:"disco"`
}

// DiscoPayload contains the show event details.
type DiscoPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Show      int    `json:"show"`
	State     string `json:"state"`
	Reason    string `json:"reason,omitempty"`
}

// FormatPayload creates the JSON payload for a show event.
func FormatPayload(event logic.ShowEvent) ([]byte, error) {
	payload := Payload{
		Disco: DiscoPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Show:      event.Show,
			State:     string(event.State),
			Reason:    string(event.Reason),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string        `json:"timestamp"`
	Event     string        `json:"event"`
	Reason    string        `json:"reason,omitempty"`
	Config    *SystemConfig `json:"config,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
		},
	}
	return json.Marshal(payload)
}
