// Package audio provides show audio playback with hardware abstraction.
// The real implementation shells out to an MP3 player binary (mpg321 by
// default). The fake and sim implementations allow testing and dry runs
// without a sound device.
package audio

import "math"

// Player starts and stops show audio.
type Player interface {
	// Play starts playback of the file without blocking. The returned
	// channel delivers exactly one value when playback ends: nil on clean
	// completion, an error otherwise. The immediate error covers start
	// failures (player binary missing, file unreadable).
	Play(path string, volume float64) (<-chan error, error)

	// Stop interrupts playback. A pending completion is delivered
	// promptly. No-op when nothing is playing.
	Stop() error

	// Close stops playback and releases resources.
	Close() error
}

// Gain converts a 0.0-1.0 volume to the 0-100 gain scale the player
// binary expects. Out-of-range volumes are clamped.
func Gain(volume float64) int {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 100
	}
	return int(math.Round(volume * 100))
}
