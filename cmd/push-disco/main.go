// Command push-disco turns a big arcade button into a party switch: a press
// fires the relay (disco lights) and the show audio for a fixed window, then
// everything settles back to idle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/push-disco/internal/audio"
	"github.com/sweeney/push-disco/internal/config"
	"github.com/sweeney/push-disco/internal/daemon"
	"github.com/sweeney/push-disco/internal/gpio"
	"github.com/sweeney/push-disco/internal/mqtt"
	"github.com/sweeney/push-disco/internal/status"
	"github.com/sweeney/push-disco/internal/web"
)

type flags struct {
	settings   config.Settings
	configPath string
	once       bool
	printState bool
}

// parseFlags reads flags and the optional config file. Precedence: built-in
// defaults, then the file, then flags given on the command line.
func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	defaults := config.Defaults()
	var f flags

	buttonPin := fs.Int("button-pin", defaults.ButtonPin, "BCM pin number for the button")
	relayPin := fs.Int("relay-pin", defaults.RelayPin, "BCM pin number for the relay")
	duration := fs.Duration("duration", defaults.Duration, "Show length")
	audioFile := fs.String("audio", defaults.AudioFile, "Audio file played during the show")
	volume := fs.Float64("volume", defaults.Volume, "Playback volume (0.0-1.0)")
	poll := fs.Duration("poll", defaults.Poll, "Button polling interval")
	debounce := fs.Duration("debounce", defaults.Debounce, "Debounce duration")
	player := fs.String("player", defaults.Player, "Audio player command")
	broker := fs.String("broker", defaults.Broker, "MQTT broker address (empty to disable)")
	heartbeat := fs.Duration("heartbeat", defaults.Heartbeat, "Heartbeat interval (0 to disable)")
	httpAddr := fs.String("http", defaults.HTTPAddr, "HTTP status address (empty to disable)")
	fs.BoolVar(&f.once, "once", false, "Exit after the first completed show")
	fs.BoolVar(&f.printState, "print-state", false, "Print current button state and exit")
	fs.StringVar(&f.configPath, "config", "", "TOML config file")

	if err := fs.Parse(args); err != nil {
		return f, err
	}

	f.settings = defaults
	if f.configPath != "" {
		if err := config.LoadFile(f.configPath, &f.settings); err != nil {
			return f, err
		}
	}

	// Flags given explicitly win over the file.
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "button-pin":
			f.settings.ButtonPin = *buttonPin
		case "relay-pin":
			f.settings.RelayPin = *relayPin
		case "duration":
			f.settings.Duration = *duration
		case "audio":
			f.settings.AudioFile = *audioFile
		case "volume":
			f.settings.Volume = *volume
		case "poll":
			f.settings.Poll = *poll
		case "debounce":
			f.settings.Debounce = *debounce
		case "player":
			f.settings.Player = *player
		case "broker":
			f.settings.Broker = *broker
		case "heartbeat":
			f.settings.Heartbeat = *heartbeat
		case "http":
			f.settings.HTTPAddr = *httpAddr
		}
	})

	return f, nil
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := f.settings.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(f.settings, f.once, f.printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Settings, once, printState bool) error {
	// Initialize GPIO
	pins, err := gpio.NewRealPins(cfg.ButtonPin, cfg.RelayPin)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("init gpio (run as root or add the user to the gpio group): %w", err)
		}
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pins.Close()

	// Print state mode
	if printState {
		pressed, err := pins.Read()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		fmt.Println(stateString(pressed))
		return nil
	}

	// No show without its soundtrack.
	if _, err := os.Stat(cfg.AudioFile); err != nil {
		return fmt.Errorf("audio file: %w", err)
	}

	player := audio.NewExecPlayer(cfg.Player)
	defer player.Close()

	// Initialize MQTT (optional)
	var publisher mqtt.Publisher = mqtt.NewNopPublisher()
	var connStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = real
		connStatus = real
	} else {
		log.Printf("mqtt disabled")
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		DurationMs:  cfg.Duration.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		ButtonPin:   cfg.ButtonPin,
		RelayPin:    cfg.RelayPin,
		AudioFile:   cfg.AudioFile,
		Volume:      cfg.Volume,
		Player:      cfg.Player,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish the effective configuration on the retained system topic
	startupEvent := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Retained:  true,
		Config: &mqtt.SystemConfig{
			PollMs:     int(cfg.Poll.Milliseconds()),
			DebounceMs: int(cfg.Debounce.Milliseconds()),
			DurationMs: int(cfg.Duration.Milliseconds()),
			ButtonPin:  cfg.ButtonPin,
			RelayPin:   cfg.RelayPin,
			AudioFile:  cfg.AudioFile,
			Volume:     cfg.Volume,
			Broker:     cfg.Broker,
		},
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else if cfg.Broker != "" {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: button=GPIO%d relay=GPIO%d duration=%v audio=%s volume=%.2f poll=%v debounce=%v",
		cfg.ButtonPin, cfg.RelayPin, cfg.Duration, cfg.AudioFile, cfg.Volume, cfg.Poll, cfg.Debounce)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	maxShows := 0
	if once {
		maxShows = 1
	}

	runner := &daemon.Runner{
		Button:    pins,
		Relay:     pins,
		Player:    player,
		Publisher: publisher,
		MQTT:      connStatus,
		Tracker:   tracker,
		Network:   readNetworkInfo,
	}
	return runner.Run(daemon.Config{
		Debounce:  cfg.Debounce,
		Duration:  cfg.Duration,
		Heartbeat: cfg.Heartbeat,
		AudioFile: cfg.AudioFile,
		Volume:    cfg.Volume,
		MaxShows:  maxShows,
	}, time.Now, ticker.C, sigCh)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
