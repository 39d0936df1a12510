package gpio

import "log"

// SimRelay is the dry-run relay: it logs every transition instead of driving
// a pin, and records them like FakeRelay so harnesses can assert on the
// sequence.
type SimRelay struct {
	On          bool
	Transitions []bool
	Closed      bool
}

// NewSimRelay creates a SimRelay in the off state.
func NewSimRelay() *SimRelay {
	return &SimRelay{}
}

// Set logs and records the transition.
func (s *SimRelay) Set(on bool) error {
	if on {
		log.Printf("sim: relay ON")
	} else {
		log.Printf("sim: relay OFF")
	}
	s.On = on
	s.Transitions = append(s.Transitions, on)
	return nil
}

// Close forces the relay off and marks it closed.
func (s *SimRelay) Close() error {
	if s.On {
		log.Printf("sim: relay OFF")
	}
	s.On = false
	s.Closed = true
	return nil
}
