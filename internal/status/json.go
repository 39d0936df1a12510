package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	State         string        `json:"state"`
	Ready         bool          `json:"ready"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	LastShow      *LastShowJSON `json:"last_show,omitempty"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses        int `json:"presses"`
	PressesIgnored int `json:"presses_ignored"`
	ShowsStarted   int `json:"shows_started"`
	ShowsEnded     int `json:"shows_ended"`
	AudioFailures  int `json:"audio_failures"`
}

// LastShowJSON is the JSON representation of the most recent show.
type LastShowJSON struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64   `json:"poll_ms"`
	DebounceMs  int64   `json:"debounce_ms"`
	DurationMs  int64   `json:"duration_ms"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	ButtonPin   int     `json:"button_pin"`
	RelayPin    int     `json:"relay_pin"`
	AudioFile   string  `json:"audio_file"`
	Volume      float64 `json:"volume"`
	Player      string  `json:"player"`
	Broker      string  `json:"broker"`
	HTTPAddr    string  `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:         state,
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:        snap.Counts.Presses,
			PressesIgnored: snap.Counts.PressesIgnored,
			ShowsStarted:   snap.Counts.ShowsStarted,
			ShowsEnded:     snap.Counts.ShowsEnded,
			AudioFailures:  snap.Counts.AudioFailures,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			DurationMs:  snap.Config.DurationMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			ButtonPin:   snap.Config.ButtonPin,
			RelayPin:    snap.Config.RelayPin,
			AudioFile:   snap.Config.AudioFile,
			Volume:      snap.Config.Volume,
			Player:      snap.Config.Player,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}

	if !snap.LastShowStart.IsZero() {
		ls := &LastShowJSON{Start: snap.LastShowStart.UTC().Format(time.RFC3339)}
		if !snap.LastShowEnd.IsZero() {
			ls.End = snap.LastShowEnd.UTC().Format(time.RFC3339)
		}
		inner.LastShow = ls
	}

	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
