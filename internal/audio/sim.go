package audio

import "log"

// SimPlayer is the dry-run player: it logs instead of spawning a player
// process. The simulated track keeps playing until stopped, so a dry-run
// show runs its full duration exactly like the production flow.
type SimPlayer struct {
	Plays []PlayCall

	done chan error
}

// NewSimPlayer creates a SimPlayer.
func NewSimPlayer() *SimPlayer {
	return &SimPlayer{}
}

// Play logs and records the call.
func (s *SimPlayer) Play(path string, volume float64) (<-chan error, error) {
	log.Printf("sim: playing %s (volume %.2f)", path, volume)
	s.Plays = append(s.Plays, PlayCall{Path: path, Volume: volume})
	s.done = make(chan error, 1)
	return s.done, nil
}

// Stop logs and completes the simulated playback.
func (s *SimPlayer) Stop() error {
	if s.done != nil {
		log.Printf("sim: audio stopped")
		s.done <- nil
		s.done = nil
	}
	return nil
}

// Close stops playback.
func (s *SimPlayer) Close() error {
	return s.Stop()
}
