package daemon

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/push-disco/internal/audio"
	"github.com/sweeney/push-disco/internal/gpio"
	"github.com/sweeney/push-disco/internal/logic"
	"github.com/sweeney/push-disco/internal/mqtt"
	"github.com/sweeney/push-disco/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from Run's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of sample.
func repeat(sample bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// faultButton wraps a FakeButton and returns errors for a range of Read() calls.
// No shared mutable state — the fault range is fixed at construction.
type faultButton struct {
	inner      *gpio.FakeButton
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (b *faultButton) Read() (bool, error) {
	i := b.call
	b.call++
	if i >= b.faultStart && i < b.faultEnd {
		return false, errors.New("gpio fault")
	}
	return b.inner.Read()
}

func (b *faultButton) Close() error { return b.inner.Close() }

// testDeps holds the fakes for one Run invocation.
type testDeps struct {
	button *gpio.FakeButton
	relay  *gpio.FakeRelay
	player *audio.FakePlayer
	pub    *mqtt.FakePublisher
}

func newTestDeps(samples []bool) *testDeps {
	return &testDeps{
		button: gpio.NewFakeButton(samples),
		relay:  gpio.NewFakeRelay(),
		player: audio.NewFakePlayer(),
		pub:    mqtt.NewFakePublisher(),
	}
}

func (d *testDeps) runner() *Runner {
	return &Runner{
		Button:    d.button,
		Relay:     d.relay,
		Player:    d.player,
		Publisher: d.pub,
		MQTT:      d.pub,
	}
}

// testConfig uses compressed timings: 10ms ticks, 50ms debounce, 100ms shows.
// A press needs 6 pressed ticks to debounce (pending at tick N, stable once
// 50ms have elapsed at tick N+5), same for the baseline at startup.
func testConfig() Config {
	return Config{
		Debounce:  50 * time.Millisecond,
		Duration:  100 * time.Millisecond,
		AudioFile: "audio.mp3",
		Volume:    0.8,
	}
}

func startLoop(t *testing.T, r *Runner, cfg Config, clock func() time.Time) (chan time.Time, chan os.Signal, chan error) {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(cfg, clock, tick, sig)
	}()
	return tick, sig, errCh
}

func driveTicks(t *testing.T, tick chan time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		tick <- time.Time{}
	}
}

// runShowLoop drives Run with nTicks ticks and then the given signal,
// returning the loop's error.
func runShowLoop(t *testing.T, r *Runner, cfg Config, clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	tick, sig, errCh := startLoop(t, r, cfg, clock)
	driveTicks(t, tick, nTicks)
	sig <- signal
	return <-errCh
}

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRunLoopNoShowWithoutPress(t *testing.T) {
	// 8 released ticks establish the baseline, nothing else happens.
	d := newTestDeps(repeat(false, 8))
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, 8, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 0 {
		t.Errorf("expected 0 show events, got %d", len(d.pub.Events))
	}
	if len(d.relay.Transitions) != 0 {
		t.Errorf("expected no relay writes, got %v", d.relay.Transitions)
	}
	if len(d.player.Plays) != 0 {
		t.Errorf("expected no audio, got %d plays", len(d.player.Plays))
	}

	// Should have exactly one system event: SHUTDOWN
	if len(d.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(d.pub.SystemEvents))
	}
	if d.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", d.pub.SystemEvents[0].Event)
	}
}

func TestRunLoopPressStartsShow(t *testing.T) {
	// 8 released (baseline) + 6 pressed (press debounces at tick 14, t=140ms).
	samples := append(repeat(false, 8), repeat(true, 6)...)
	d := newTestDeps(samples)
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	start := d.pub.Events[0]
	if start.Type != logic.EventShowStart {
		t.Errorf("event 0: expected SHOW_START, got %s", start.Type)
	}
	if start.Show != 1 {
		t.Errorf("show number: got %d, want 1", start.Show)
	}
	if !start.Timestamp.Equal(testStart.Add(140 * time.Millisecond)) {
		t.Errorf("show start time: got %v", start.Timestamp)
	}

	// The shutdown signal ends the running show before the loop exits.
	end := d.pub.Events[1]
	if end.Type != logic.EventShowEnd {
		t.Errorf("event 1: expected SHOW_END, got %s", end.Type)
	}
	if end.Reason != logic.ReasonShutdown {
		t.Errorf("end reason: got %s, want shutdown", end.Reason)
	}

	if len(d.player.Plays) != 1 {
		t.Fatalf("expected 1 play, got %d", len(d.player.Plays))
	}
	if d.player.Plays[0].Path != "audio.mp3" {
		t.Errorf("play path: got %q", d.player.Plays[0].Path)
	}
	if d.player.Plays[0].Volume != 0.8 {
		t.Errorf("play volume: got %v", d.player.Plays[0].Volume)
	}
	if d.player.Stops == 0 {
		t.Error("expected the shutdown to stop playback")
	}

	want := []bool{true, false}
	if len(d.relay.Transitions) != len(want) {
		t.Fatalf("relay transitions: got %v, want %v", d.relay.Transitions, want)
	}
	for i := range want {
		if d.relay.Transitions[i] != want[i] {
			t.Fatalf("relay transitions: got %v, want %v", d.relay.Transitions, want)
		}
	}
	if d.relay.On {
		t.Error("relay left on after shutdown")
	}
}

func TestRunLoopShowEndsAtDeadline(t *testing.T) {
	// Press debounces at t=140ms, show deadline is t=240ms (tick 24).
	samples := append(append(repeat(false, 8), repeat(true, 6)...), repeat(false, 16)...)
	d := newTestDeps(samples)
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	end := d.pub.Events[1]
	if end.Type != logic.EventShowEnd {
		t.Fatalf("event 1: expected SHOW_END, got %s", end.Type)
	}
	if end.Reason != logic.ReasonDeadline {
		t.Errorf("end reason: got %s, want deadline", end.Reason)
	}
	if !end.Timestamp.Equal(testStart.Add(240 * time.Millisecond)) {
		t.Errorf("show end time: got %v, want start+240ms", end.Timestamp)
	}
	if end.State != logic.StateIdle {
		t.Errorf("state after end: got %s, want IDLE", end.State)
	}

	if d.relay.On {
		t.Error("relay still on after deadline")
	}
}

func TestRunLoopPressWhileRunningIgnored(t *testing.T) {
	// First press debounces at t=140ms and starts a 300ms show (deadline
	// t=440ms). A second press debounces at t=260ms, mid-show, and must not
	// start or extend anything.
	samples := append(repeat(false, 8), repeat(true, 6)...)
	samples = append(samples, repeat(false, 6)...)
	samples = append(samples, repeat(true, 6)...)
	samples = append(samples, repeat(false, 20)...)
	d := newTestDeps(samples)
	tracker := status.NewTracker(testStart, status.Config{})
	r := d.runner()
	r.Tracker = tracker
	cfg := testConfig()
	cfg.Duration = 300 * time.Millisecond
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, r, cfg, clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	if d.pub.Events[0].Type != logic.EventShowStart {
		t.Errorf("event 0: got %s", d.pub.Events[0].Type)
	}
	end := d.pub.Events[1]
	if end.Reason != logic.ReasonDeadline {
		t.Errorf("end reason: got %s, want deadline", end.Reason)
	}
	// Deadline unchanged by the ignored press.
	if !end.Timestamp.Equal(testStart.Add(440 * time.Millisecond)) {
		t.Errorf("show end time: got %v, want start+440ms", end.Timestamp)
	}

	snap := tracker.Snapshot()
	if snap.Counts.Presses != 2 {
		t.Errorf("presses: got %d, want 2", snap.Counts.Presses)
	}
	if snap.Counts.PressesIgnored != 1 {
		t.Errorf("presses ignored: got %d, want 1", snap.Counts.PressesIgnored)
	}
	if snap.Counts.ShowsStarted != 1 {
		t.Errorf("shows started: got %d, want 1", snap.Counts.ShowsStarted)
	}

	// Exactly one on/off pair despite two presses.
	if len(d.relay.Transitions) != 2 {
		t.Errorf("relay transitions: got %v, want [true false]", d.relay.Transitions)
	}
	if len(d.player.Plays) != 1 {
		t.Errorf("plays: got %d, want 1", len(d.player.Plays))
	}
}

func TestRunLoopAudioDoneEndsShowEarly(t *testing.T) {
	// Track finishes well before the 10s deadline; the show must end with it.
	samples := append(repeat(false, 8), repeat(true, 7)...)
	d := newTestDeps(samples)
	cfg := testConfig()
	cfg.Duration = 10 * time.Second
	cfg.MaxShows = 1
	clock := fakeClock(testStart, 10*time.Millisecond)

	tick, _, errCh := startLoop(t, d.runner(), cfg, clock)
	// 14 ticks start the show; one more fences so Play has been called
	// before Finish touches the fake.
	driveTicks(t, tick, 15)
	d.player.Finish(nil)

	if err := <-errCh; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	end := d.pub.Events[1]
	if end.Type != logic.EventShowEnd {
		t.Fatalf("event 1: expected SHOW_END, got %s", end.Type)
	}
	if end.Reason != logic.ReasonAudioDone {
		t.Errorf("end reason: got %s, want audio_done", end.Reason)
	}
	if d.relay.On {
		t.Error("relay still on after audio finished")
	}

	// MaxShows exit publishes a final SHUTDOWN.
	last := d.pub.SystemEvents[len(d.pub.SystemEvents)-1]
	if last.Event != "SHUTDOWN" || last.Reason != "COMPLETED" {
		t.Errorf("final system event: got %s/%s, want SHUTDOWN/COMPLETED", last.Event, last.Reason)
	}
}

func TestRunLoopAudioErrorEndsShow(t *testing.T) {
	samples := append(repeat(false, 8), repeat(true, 7)...)
	d := newTestDeps(samples)
	tracker := status.NewTracker(testStart, status.Config{})
	r := d.runner()
	r.Tracker = tracker
	cfg := testConfig()
	cfg.Duration = 10 * time.Second
	cfg.MaxShows = 1
	clock := fakeClock(testStart, 10*time.Millisecond)

	tick, _, errCh := startLoop(t, r, cfg, clock)
	driveTicks(t, tick, 15)
	d.player.Finish(errors.New("decoder died"))

	if err := <-errCh; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	end := d.pub.Events[len(d.pub.Events)-1]
	if end.Type != logic.EventShowEnd {
		t.Fatalf("last event: expected SHOW_END, got %s", end.Type)
	}
	if end.Reason != logic.ReasonAudioError {
		t.Errorf("end reason: got %s, want audio_error", end.Reason)
	}
	if d.relay.On {
		t.Error("relay still on after audio error")
	}
	if got := tracker.Snapshot().Counts.AudioFailures; got != 1 {
		t.Errorf("audio failures: got %d, want 1", got)
	}
}

func TestRunLoopAudioStartFailureEndsShowImmediately(t *testing.T) {
	samples := append(repeat(false, 8), repeat(true, 6)...)
	d := newTestDeps(samples)
	d.player.PlayError = errors.New("mpg321: not found")
	cfg := testConfig()
	cfg.Duration = 10 * time.Second
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), cfg, clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	start, end := d.pub.Events[0], d.pub.Events[1]
	if start.Type != logic.EventShowStart || end.Type != logic.EventShowEnd {
		t.Fatalf("expected SHOW_START then SHOW_END, got %s then %s", start.Type, end.Type)
	}
	if end.Reason != logic.ReasonAudioError {
		t.Errorf("end reason: got %s, want audio_error", end.Reason)
	}
	// Same tick: the failed start ends the show it began.
	if !end.Timestamp.Equal(start.Timestamp) {
		t.Errorf("start %v and end %v should share a timestamp", start.Timestamp, end.Timestamp)
	}
	if d.relay.On {
		t.Error("relay left on after failed audio start")
	}
}

func TestRunLoopButtonReadErrorExits(t *testing.T) {
	// Reads fail mid-show (call 14, 0-based, is the 15th tick).
	samples := append(repeat(false, 8), repeat(true, 6)...)
	d := newTestDeps(samples)
	button := &faultButton{inner: d.button, faultStart: 14, faultEnd: 15}
	r := d.runner()
	r.Button = button
	cfg := testConfig()
	cfg.Duration = 10 * time.Second
	clock := fakeClock(testStart, 10*time.Millisecond)

	tick, _, errCh := startLoop(t, r, cfg, clock)
	driveTicks(t, tick, 15)

	err := <-errCh
	if err == nil {
		t.Fatal("expected an error from Run")
	}
	if !strings.Contains(err.Error(), "button read") {
		t.Errorf("error: got %q, want button read context", err)
	}

	// The running show was ended before bailing out.
	end := d.pub.Events[len(d.pub.Events)-1]
	if end.Type != logic.EventShowEnd {
		t.Fatalf("last event: expected SHOW_END, got %s", end.Type)
	}
	if end.Reason != logic.ReasonShutdown {
		t.Errorf("end reason: got %s, want shutdown", end.Reason)
	}
	if d.relay.On {
		t.Error("relay left on after read error")
	}
}

func TestRunLoopMaxShowsExitsAfterDeadline(t *testing.T) {
	// One full press-show-idle cycle, then the loop exits on its own.
	samples := append(append(repeat(false, 8), repeat(true, 6)...), repeat(false, 10)...)
	d := newTestDeps(samples)
	cfg := testConfig()
	cfg.MaxShows = 1
	clock := fakeClock(testStart, 10*time.Millisecond)

	tick, _, errCh := startLoop(t, d.runner(), cfg, clock)
	driveTicks(t, tick, 24) // deadline hits at tick 24 (t=240ms)

	if err := <-errCh; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	if d.pub.Events[1].Reason != logic.ReasonDeadline {
		t.Errorf("end reason: got %s, want deadline", d.pub.Events[1].Reason)
	}
	if len(d.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(d.pub.SystemEvents))
	}
	se := d.pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" || se.Reason != "COMPLETED" {
		t.Errorf("system event: got %s/%s, want SHUTDOWN/COMPLETED", se.Event, se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
}

func TestRunLoopSIGHUPTriggersShow(t *testing.T) {
	// No ticks at all: the software press bypasses the debouncer.
	d := newTestDeps(nil)
	clock := fakeClock(testStart, 10*time.Millisecond)

	_, sig, errCh := startLoop(t, d.runner(), testConfig(), clock)
	sig <- syscall.SIGHUP
	sig <- syscall.SIGTERM

	if err := <-errCh; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	if d.pub.Events[0].Type != logic.EventShowStart {
		t.Errorf("event 0: got %s, want SHOW_START", d.pub.Events[0].Type)
	}
	if d.pub.Events[1].Reason != logic.ReasonShutdown {
		t.Errorf("end reason: got %s, want shutdown", d.pub.Events[1].Reason)
	}
	if len(d.player.Plays) != 1 {
		t.Errorf("plays: got %d, want 1", len(d.player.Plays))
	}
	if d.relay.On {
		t.Error("relay left on")
	}
}

func TestRunLoopBounceRejected(t *testing.T) {
	// Two pressed ticks (20ms) never reach the 50ms debounce threshold.
	samples := append(append(repeat(false, 8), repeat(true, 2)...), repeat(false, 8)...)
	d := newTestDeps(samples)
	tracker := status.NewTracker(testStart, status.Config{})
	r := d.runner()
	r.Tracker = tracker
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, r, testConfig(), clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.Events) != 0 {
		t.Errorf("expected 0 show events (bounce rejected), got %d", len(d.pub.Events))
	}
	if len(d.relay.Transitions) != 0 {
		t.Errorf("expected no relay writes, got %v", d.relay.Transitions)
	}
	if len(d.player.Plays) != 0 {
		t.Errorf("expected no plays, got %d", len(d.player.Plays))
	}
	if got := tracker.Snapshot().Counts.Presses; got != 0 {
		t.Errorf("presses: got %d, want 0", got)
	}
}

func TestRunLoopRelayErrorNotFatal(t *testing.T) {
	samples := append(repeat(false, 8), repeat(true, 6)...)
	d := newTestDeps(samples)
	d.relay.SetError = errors.New("line busy")
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// The show still ran: start published, audio started.
	if len(d.pub.Events) != 2 {
		t.Fatalf("expected 2 show events, got %d", len(d.pub.Events))
	}
	if len(d.player.Plays) != 1 {
		t.Errorf("plays: got %d, want 1", len(d.player.Plays))
	}
}

func TestRunLoopPublishErrorNotFatal(t *testing.T) {
	samples := append(repeat(false, 8), repeat(true, 6)...)
	d := newTestDeps(samples)
	d.pub.PublishError = errors.New("broker unavailable")
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// Events are not recorded (publish failed) but the show ran regardless.
	if len(d.pub.Events) != 0 {
		t.Errorf("expected 0 recorded events, got %d", len(d.pub.Events))
	}
	if len(d.player.Plays) != 1 {
		t.Errorf("plays: got %d, want 1", len(d.player.Plays))
	}
	if d.relay.On {
		t.Error("relay left on")
	}

	found := false
	for _, se := range d.pub.SystemEvents {
		if se.Event == "SHUTDOWN" {
			found = true
		}
	}
	if !found {
		t.Error("expected SHUTDOWN system event despite publish errors")
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	d := newTestDeps(repeat(false, 4))
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, 4, syscall.SIGINT)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(d.pub.SystemEvents))
	}
	se := d.pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", se.Event)
	}
	if se.Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
}

func TestRunLoopShutdownSIGTERM(t *testing.T) {
	d := newTestDeps(repeat(false, 4))
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(d.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(d.pub.SystemEvents))
	}
	se := d.pub.SystemEvents[0]
	if se.Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", se.Reason)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// 10ms ticks with a 100ms heartbeat interval: heartbeats fire at tick 10
	// (t=100ms) and tick 20 (t=200ms).
	d := newTestDeps(repeat(false, 25))
	tracker := status.NewTracker(testStart, status.Config{})
	r := d.runner()
	r.Tracker = tracker
	cfg := testConfig()
	cfg.Heartbeat = 100 * time.Millisecond
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, r, cfg, clock, 25, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var heartbeats, shutdowns int
	for _, se := range d.pub.SystemEvents {
		switch se.Event {
		case "HEARTBEAT":
			heartbeats++
			if len(se.RawPayload) == 0 {
				t.Error("HEARTBEAT event missing status payload")
			} else if !strings.Contains(string(se.RawPayload), `"state":"IDLE"`) {
				t.Errorf("HEARTBEAT payload missing state: %s", se.RawPayload)
			}
		case "SHUTDOWN":
			shutdowns++
		}
	}
	if heartbeats != 2 {
		t.Errorf("expected 2 HEARTBEAT events, got %d", heartbeats)
	}
	if shutdowns != 1 {
		t.Errorf("expected 1 SHUTDOWN event, got %d", shutdowns)
	}
}

func TestRunLoopHeartbeatDisabled(t *testing.T) {
	d := newTestDeps(repeat(false, 25))
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, d.runner(), testConfig(), clock, 25, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, se := range d.pub.SystemEvents {
		if se.Event == "HEARTBEAT" {
			t.Error("heartbeat fired with interval 0")
		}
	}
}

func TestRunLoopHeartbeatRefreshesNetwork(t *testing.T) {
	d := newTestDeps(repeat(false, 12))
	tracker := status.NewTracker(testStart, status.Config{})
	r := d.runner()
	r.Tracker = tracker
	r.Network = func() *status.NetworkInfo {
		return &status.NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "HomeNet"}
	}
	cfg := testConfig()
	cfg.Heartbeat = 100 * time.Millisecond
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, r, cfg, clock, 12, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	snap := tracker.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected network info on tracker after heartbeat")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("network IP: got %q", snap.Network.IP)
	}
}

func TestRunLoopTrackerFollowsShowLifecycle(t *testing.T) {
	samples := append(append(repeat(false, 8), repeat(true, 6)...), repeat(false, 16)...)
	d := newTestDeps(samples)
	d.pub.Connected = true
	tracker := status.NewTracker(testStart, status.Config{})
	r := d.runner()
	r.Tracker = tracker
	clock := fakeClock(testStart, 10*time.Millisecond)

	err := runShowLoop(t, r, testConfig(), clock, len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	snap := tracker.Snapshot()
	if snap.State != logic.StateIdle {
		t.Errorf("state: got %s, want IDLE", snap.State)
	}
	if !snap.Baselined {
		t.Error("expected baselined")
	}
	if snap.Counts.Presses != 1 || snap.Counts.ShowsStarted != 1 || snap.Counts.ShowsEnded != 1 {
		t.Errorf("counts: got %+v", snap.Counts)
	}
	if !snap.LastShowStart.Equal(testStart.Add(140 * time.Millisecond)) {
		t.Errorf("last show start: got %v", snap.LastShowStart)
	}
	if !snap.LastShowEnd.Equal(testStart.Add(240 * time.Millisecond)) {
		t.Errorf("last show end: got %v", snap.LastShowEnd)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTT connected (fake reports true)")
	}
}
