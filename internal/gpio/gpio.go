// Package gpio provides button input and relay output with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake and sim implementations allow testing and dry runs without
// hardware.
package gpio

// Button reads the push button state.
type Button interface {
	// Read returns the logical button state: true = pressed.
	// The button is wired active-low (pull-up, pressed shorts to ground);
	// the inversion happens inside the implementation.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Relay drives the relay output.
type Relay interface {
	// Set drives the relay: true = energized (lights on).
	Set(on bool) error

	// Close forces the relay off and releases GPIO resources.
	// The relay must never be left energized at process exit.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinButton = 17
	PinRelay  = 27
)
