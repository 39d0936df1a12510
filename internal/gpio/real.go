//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPins drives actual hardware using the Linux GPIO character device.
// It implements both Button and Relay over a single chip handle.
type RealPins struct {
	chip      *gpiocdev.Chip
	buttonPin *gpiocdev.Line
	relayPin  *gpiocdev.Line
}

// NewRealPins requests the button and relay lines on actual Raspberry Pi
// hardware. The button is an input with the internal pull-up enabled
// (pressed = line low); the relay is an output driven low.
func NewRealPins(pinButton, pinRelay int) (*RealPins, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	buttonLine, err := chip.RequestLine(pinButton, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pinButton, err)
	}

	// Initial value 0 keeps the relay de-energized from the moment the
	// line is requested.
	relayLine, err := chip.RequestLine(pinRelay, gpiocdev.AsOutput(0))
	if err != nil {
		buttonLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pinRelay, err)
	}

	return &RealPins{
		chip:      chip,
		buttonPin: buttonLine,
		relayPin:  relayLine,
	}, nil
}

// Read returns the logical button state.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (r *RealPins) Read() (bool, error) {
	raw, err := r.buttonPin.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return raw == 0, nil
}

// Set drives the relay line.
func (r *RealPins) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.relayPin.SetValue(v); err != nil {
		return fmt.Errorf("set relay pin: %w", err)
	}
	return nil
}

// Close forces the relay low, reconfigures both pins to inputs (matching Pi
// boot defaults) and releases them. Driving the relay low first means the
// lights cannot be left on across a restart or shutdown.
func (r *RealPins) Close() error {
	var errs []error

	if r.relayPin != nil {
		if err := r.relayPin.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("relay off: %w", err))
		}
		if err := r.relayPin.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure relay pin: %w", err))
		}
		if err := r.relayPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay pin: %w", err))
		}
	}
	if r.buttonPin != nil {
		if err := r.buttonPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := r.buttonPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
