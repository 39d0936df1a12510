// Package daemon runs the push-disco control loop: poll the button, debounce
// presses, and drive the relay and audio player through show lifecycles. The
// loop is shared by the real binary and the simulator.
package daemon

import (
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/push-disco/internal/audio"
	"github.com/sweeney/push-disco/internal/gpio"
	"github.com/sweeney/push-disco/internal/logic"
	"github.com/sweeney/push-disco/internal/mqtt"
	"github.com/sweeney/push-disco/internal/status"
)

// Config holds the loop parameters.
type Config struct {
	Debounce  time.Duration
	Duration  time.Duration
	Heartbeat time.Duration // 0 disables heartbeats
	AudioFile string
	Volume    float64
	MaxShows  int // exit after this many completed shows (0 = run forever)
}

// Runner bundles the loop's collaborators. Button, Relay, Player and
// Publisher are required; MQTT, Tracker and Network may be nil.
type Runner struct {
	Button    gpio.Button
	Relay     gpio.Relay
	Player    audio.Player
	Publisher mqtt.Publisher
	MQTT      mqtt.ConnectionStatus
	Tracker   *status.Tracker
	Network   func() *status.NetworkInfo // re-read on heartbeat
}

// Run drives the control loop until a shutdown signal arrives, the show
// quota is reached, or the button becomes unreadable. The time source and
// channels are injected so tests can drive the loop deterministically.
func (r *Runner) Run(cfg Config, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	l := &loop{
		cfg:      cfg,
		r:        r,
		detector: logic.NewDetector(cfg.Debounce),
		machine:  logic.NewMachine(cfg.Duration, now()),
	}

	for {
		select {
		case s := <-sig:
			t := now()
			if s == syscall.SIGHUP {
				// Software press, same path as the physical button.
				log.Printf("received SIGHUP, treating as button press")
				l.applyShow(l.machine.Press(t), t)
				l.updateTracker()
				if l.finished(t) {
					return nil
				}
				continue
			}
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.applyShow(l.machine.Shutdown(t), t)
			l.updateTracker()
			l.publishShutdown(t, signalName)
			return nil

		case err := <-l.audioDone:
			t := now()
			l.audioDone = nil
			if err != nil {
				log.Printf("audio playback error: %v", err)
			}
			l.applyShow(l.machine.AudioDone(t, err), t)
			l.updateTracker()
			if l.finished(t) {
				return nil
			}

		case <-tick:
			t := now()
			pressed, err := l.r.Button.Read()
			if err != nil {
				// A dead button means the daemon cannot do its job.
				// End any running show so the relay is off before we bail.
				l.applyShow(l.machine.Shutdown(t), t)
				return fmt.Errorf("button read: %w", err)
			}

			if ev := l.detector.Process(pressed, t); ev != nil && ev.Type == logic.EventPressed {
				l.applyShow(l.machine.Press(t), t)
			}

			l.applyShow(l.machine.Tick(t), t)
			l.heartbeat(t)
			l.updateTracker()
			if l.finished(t) {
				return nil
			}
		}
	}
}

// loop holds the mutable state of one Run invocation.
type loop struct {
	cfg       Config
	r         *Runner
	detector  *logic.Detector
	machine   *logic.Machine
	audioDone <-chan error // nil while no show audio is playing
	completed int
}

// applyShow acts on a show transition: relay, audio, MQTT. An audio start
// failure ends the show it just started, so keep going until the follow-up
// event is nil.
func (l *loop) applyShow(ev *logic.ShowEvent, t time.Time) {
	for ev != nil {
		var next *logic.ShowEvent

		switch ev.Type {
		case logic.EventShowStart:
			log.Printf("show %d: started (duration %v)", ev.Show, l.cfg.Duration)
			if err := l.r.Relay.Set(true); err != nil {
				log.Printf("relay on error: %v", err)
			}
			l.publish(*ev)
			done, err := l.r.Player.Play(l.cfg.AudioFile, l.cfg.Volume)
			if err != nil {
				log.Printf("audio start error: %v", err)
				next = l.machine.AudioDone(t, err)
			} else {
				l.audioDone = done
			}

		case logic.EventPressIgnored:
			log.Printf("show %d: press ignored, show already running", ev.Show)

		case logic.EventShowEnd:
			l.r.Player.Stop()
			l.audioDone = nil
			if err := l.r.Relay.Set(false); err != nil {
				log.Printf("relay off error: %v", err)
			}
			log.Printf("show %d: ended (%s)", ev.Show, ev.Reason)
			l.publish(*ev)
			l.completed++
		}

		ev = next
	}
}

func (l *loop) publish(ev logic.ShowEvent) {
	if err := l.r.Publisher.Publish(ev); err != nil {
		log.Printf("publish error: %v", err)
	}
}

// finished reports whether the show quota is reached, publishing the final
// SHUTDOWN event when it is.
func (l *loop) finished(t time.Time) bool {
	if l.cfg.MaxShows == 0 || l.completed < l.cfg.MaxShows {
		return false
	}
	log.Printf("completed %d show(s), exiting", l.completed)
	l.publishShutdown(t, "COMPLETED")
	return true
}

func (l *loop) heartbeat(t time.Time) {
	hb := l.machine.CheckHeartbeat(t, l.cfg.Heartbeat)
	if hb == nil {
		return
	}
	log.Printf("heartbeat: uptime=%v state=%s presses=%d ignored=%d shows=%d audio_failures=%d",
		hb.Uptime, hb.State, hb.Counts.Presses, hb.Counts.PressesIgnored, hb.Counts.ShowsEnded, hb.Counts.AudioFailures)

	event := mqtt.SystemEvent{
		Timestamp: hb.Timestamp,
		Event:     "HEARTBEAT",
	}
	if l.r.Tracker != nil {
		if l.r.MQTT != nil {
			l.r.Tracker.SetMQTTConnected(l.r.MQTT.IsConnected())
		}
		// Refresh network info for heartbeat
		if l.r.Network != nil {
			if net := l.r.Network(); net != nil {
				l.r.Tracker.SetNetwork(net)
			}
		}
		l.updateTrackerState()
		snap := l.r.Tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := l.r.Publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (l *loop) publishShutdown(t time.Time, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if l.r.Tracker != nil {
		if l.r.MQTT != nil {
			l.r.Tracker.SetMQTTConnected(l.r.MQTT.IsConnected())
		}
		l.updateTrackerState()
		snap := l.r.Tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := l.r.Publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// updateTracker pushes current state to the HTTP status consumers.
func (l *loop) updateTracker() {
	if l.r.Tracker == nil {
		return
	}
	l.updateTrackerState()
	if l.r.MQTT != nil {
		l.r.Tracker.SetMQTTConnected(l.r.MQTT.IsConnected())
	}
}

func (l *loop) updateTrackerState() {
	start, end := l.machine.LastShow()
	l.r.Tracker.Update(l.machine.State(), l.detector.IsBaselined(), l.machine.Counts(), start, end)
}
