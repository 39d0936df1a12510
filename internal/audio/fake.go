package audio

// PlayCall records one Play invocation.
type PlayCall struct {
	Path   string
	Volume float64
}

// FakePlayer is a test double that records play calls. The test controls
// when playback finishes via Finish.
type FakePlayer struct {
	// Plays records every Play call in order.
	Plays []PlayCall

	// PlayError, if set, will be returned by Play() (start failure).
	PlayError error

	// Stops counts Stop calls.
	Stops int

	// Closed tracks if Close was called.
	Closed bool

	done chan error
}

// NewFakePlayer creates a FakePlayer.
func NewFakePlayer() *FakePlayer {
	return &FakePlayer{}
}

// Play records the call and hands out a completion channel.
func (f *FakePlayer) Play(path string, volume float64) (<-chan error, error) {
	if f.PlayError != nil {
		return nil, f.PlayError
	}
	f.Plays = append(f.Plays, PlayCall{Path: path, Volume: volume})
	f.done = make(chan error, 1)
	return f.done, nil
}

// Finish completes the active playback with the given result.
// No-op when nothing is playing.
func (f *FakePlayer) Finish(err error) {
	if f.done == nil {
		return
	}
	f.done <- err
	f.done = nil
}

// Stop counts the call. Whether and how playback completes afterwards
// stays under test control via Finish.
func (f *FakePlayer) Stop() error {
	f.Stops++
	return nil
}

// Close marks the player as closed.
func (f *FakePlayer) Close() error {
	f.Closed = true
	return nil
}
