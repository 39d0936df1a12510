// Command push-disco-sim runs one press-show-idle cycle with simulated
// hardware: the relay and player log transitions instead of touching GPIO
// or a sound card. Useful on a dev machine to watch the show sequence end
// to end before deploying to the Pi.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/push-disco/internal/audio"
	"github.com/sweeney/push-disco/internal/daemon"
	"github.com/sweeney/push-disco/internal/gpio"
	"github.com/sweeney/push-disco/internal/mqtt"
)

// Compressed timings so the whole cycle fits in a couple of seconds.
const (
	simPoll     = 10 * time.Millisecond
	simDebounce = 30 * time.Millisecond
)

func main() {
	duration := flag.Duration("duration", time.Second, "Show length")
	audioFile := flag.String("audio", "audio.mp3", "Audio file named in the playback log")
	volume := flag.Float64("volume", 0.8, "Playback volume (0.0-1.0)")
	flag.Parse()

	if err := run(*duration, *audioFile, *volume); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(duration time.Duration, audioFile string, volume float64) error {
	// Scripted button: held released long enough to baseline, then one
	// press that outlasts the debounce window, then released again.
	samples := make([]bool, 0, 15)
	for i := 0; i < 8; i++ {
		samples = append(samples, false)
	}
	for i := 0; i < 6; i++ {
		samples = append(samples, true)
	}
	samples = append(samples, false)
	button := gpio.NewFakeButton(samples)

	relay := gpio.NewSimRelay()
	defer relay.Close()

	player := audio.NewSimPlayer()
	defer player.Close()

	publisher := mqtt.NewNopPublisher()
	defer publisher.Close()

	log.Printf("sim: press scheduled, show duration %v", duration)

	ticker := time.NewTicker(simPoll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	runner := &daemon.Runner{
		Button:    button,
		Relay:     relay,
		Player:    player,
		Publisher: publisher,
	}
	return runner.Run(daemon.Config{
		Debounce:  simDebounce,
		Duration:  duration,
		AudioFile: audioFile,
		Volume:    volume,
		MaxShows:  1,
	}, time.Now, ticker.C, sigCh)
}
