// Package config holds the daemon settings and loads the optional TOML
// config file. Flag handling stays in the binaries; the file covers the
// same settings for systemd deployments where editing a unit file per
// option gets old.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/push-disco/internal/audio"
	"github.com/sweeney/push-disco/internal/gpio"
)

// Settings holds every tunable of the daemon.
type Settings struct {
	ButtonPin int
	RelayPin  int
	Duration  time.Duration
	AudioFile string
	Volume    float64
	Poll      time.Duration
	Debounce  time.Duration
	Player    string
	Broker    string
	Heartbeat time.Duration
	HTTPAddr  string
}

// Defaults returns the stock configuration: button on GPIO17, relay on
// GPIO27, a 15 second show at volume 0.8.
func Defaults() Settings {
	return Settings{
		ButtonPin: gpio.PinButton,
		RelayPin:  gpio.PinRelay,
		Duration:  15 * time.Second,
		AudioFile: "audio.mp3",
		Volume:    0.8,
		Poll:      10 * time.Millisecond,
		Debounce:  50 * time.Millisecond,
		Player:    audio.DefaultPlayer,
		Broker:    "",
		Heartbeat: 15 * time.Minute,
		HTTPAddr:  "",
	}
}

// duration adds TOML text unmarshalling ("15s", "50ms") to time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// fileSettings mirrors Settings with pointer fields so absent keys leave
// the existing value alone.
type fileSettings struct {
	ButtonPin *int      `toml:"button_pin"`
	RelayPin  *int      `toml:"relay_pin"`
	Duration  *duration `toml:"duration"`
	AudioFile *string   `toml:"audio"`
	Volume    *float64  `toml:"volume"`
	Poll      *duration `toml:"poll"`
	Debounce  *duration `toml:"debounce"`
	Player    *string   `toml:"player"`
	Broker    *string   `toml:"broker"`
	Heartbeat *duration `toml:"heartbeat"`
	HTTPAddr  *string   `toml:"http"`
}

// LoadFile merges the TOML file at path into s. Keys not present in the
// file keep their current values.
func LoadFile(path string, s *Settings) error {
	var f fileSettings
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	if f.ButtonPin != nil {
		s.ButtonPin = *f.ButtonPin
	}
	if f.RelayPin != nil {
		s.RelayPin = *f.RelayPin
	}
	if f.Duration != nil {
		s.Duration = f.Duration.Duration
	}
	if f.AudioFile != nil {
		s.AudioFile = *f.AudioFile
	}
	if f.Volume != nil {
		s.Volume = *f.Volume
	}
	if f.Poll != nil {
		s.Poll = f.Poll.Duration
	}
	if f.Debounce != nil {
		s.Debounce = f.Debounce.Duration
	}
	if f.Player != nil {
		s.Player = *f.Player
	}
	if f.Broker != nil {
		s.Broker = *f.Broker
	}
	if f.Heartbeat != nil {
		s.Heartbeat = f.Heartbeat.Duration
	}
	if f.HTTPAddr != nil {
		s.HTTPAddr = *f.HTTPAddr
	}
	return nil
}

// Validate rejects settings the daemon cannot run with.
func (s Settings) Validate() error {
	if s.Volume < 0 || s.Volume > 1 {
		return fmt.Errorf("volume %v out of range 0.0-1.0", s.Volume)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration %v must be positive", s.Duration)
	}
	if s.Poll <= 0 {
		return fmt.Errorf("poll %v must be positive", s.Poll)
	}
	if s.Debounce <= 0 {
		return fmt.Errorf("debounce %v must be positive", s.Debounce)
	}
	if s.Heartbeat < 0 {
		return fmt.Errorf("heartbeat %v must not be negative", s.Heartbeat)
	}
	if s.ButtonPin < 0 || s.RelayPin < 0 {
		return fmt.Errorf("pin numbers must not be negative")
	}
	if s.ButtonPin == s.RelayPin {
		return fmt.Errorf("button and relay cannot share pin %d", s.ButtonPin)
	}
	if s.AudioFile == "" {
		return fmt.Errorf("audio file not set")
	}
	if s.Player == "" {
		return fmt.Errorf("player command not set")
	}
	return nil
}
