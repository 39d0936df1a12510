// Command disco-tune writes a disco-flavoured WAV file so a freshly imaged
// device has something to play before the owner drops in a real track:
// four-on-the-floor kick, offbeat hats, an ascending synth line and a bass
// line. Plain 44.1 kHz mono 16-bit PCM.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
)

const sampleRate = 44100

// 120 BPM: one beat every half second.
const beat = 0.5

// note is one step of a melodic line.
type note struct {
	freq float64 // Hz
	dur  float64 // seconds
}

var melody = []note{
	{262, 0.25}, // C4
	{294, 0.25}, // D4
	{330, 0.25}, // E4
	{349, 0.25}, // F4
	{392, 0.5},  // G4
	{440, 0.25}, // A4
	{494, 0.25}, // B4
	{523, 0.5},  // C5
}

var bassline = []note{
	{110, 0.5}, // A2
	{123, 0.5}, // B2
	{147, 1.0}, // D3
	{165, 0.5}, // E3
}

func main() {
	out := flag.String("out", "audio.wav", "Output WAV file")
	seconds := flag.Float64("seconds", 15, "Track length")
	flag.Parse()

	if err := run(*out, *seconds); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(out string, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("seconds %v must be positive", seconds)
	}
	samples := synthesize(seconds)
	if err := writeWAV(out, samples); err != nil {
		return err
	}
	log.Printf("wrote %s (%.1fs, %d samples)", out, seconds, len(samples))
	return nil
}

func synthesize(seconds float64) []float64 {
	mix := make([]float64, int(seconds*sampleRate))
	rng := rand.New(rand.NewSource(1))

	addKicks(mix)
	addHats(mix, rng)
	addLine(mix, melody, 0.25, true)
	addLine(mix, bassline, 0.15, false)
	normalize(mix, 0.95)

	return mix
}

// addKicks lays a 60 Hz kick on every beat, 150ms with a fast decay.
func addKicks(mix []float64) {
	kickLen := int(0.15 * sampleRate)
	for start := 0; start+kickLen <= len(mix); start += int(beat * sampleRate) {
		for i := 0; i < kickLen; i++ {
			t := float64(i) / sampleRate
			env := math.Exp(-2 * t / 0.15)
			mix[start+i] += 0.3 * math.Sin(2*math.Pi*60*t) * env
		}
	}
}

// addHats puts a short noisy hat on the offbeats (2 and 4).
func addHats(mix []float64, rng *rand.Rand) {
	hatLen := int(0.1 * sampleRate)
	for start := int(beat * sampleRate); start+hatLen <= len(mix); start += int(2 * beat * sampleRate) {
		for i := 0; i < hatLen; i++ {
			t := float64(i) / sampleRate
			env := math.Exp(-5 * t / 0.1)
			tone := 0.15 * math.Sin(2*math.Pi*150*t)
			noise := 0.2 * rng.NormFloat64() * 0.1
			mix[start+i] += (tone + noise) * env
		}
	}
}

// addLine repeats a note pattern across the track. Shaped notes get the
// ADSR envelope; the bass plays flat.
func addLine(mix []float64, line []note, amp float64, shaped bool) {
	pos := 0.0
	total := float64(len(mix)) / sampleRate
	for pos < total {
		for _, nt := range line {
			if pos >= total {
				break
			}
			start := int(pos * sampleRate)
			end := int((pos + nt.dur) * sampleRate)
			if end > len(mix) {
				end = len(mix)
			}
			for i := start; i < end; i++ {
				t := float64(i-start) / sampleRate
				v := amp * math.Sin(2*math.Pi*nt.freq*t)
				if shaped {
					v *= adsr(t, nt.dur)
				}
				mix[i] += v
			}
			pos += nt.dur
		}
	}
}

// adsr shapes a note: 50ms attack, 100ms decay to a 0.7 sustain, 100ms release.
func adsr(t, dur float64) float64 {
	const (
		attack  = 0.05
		decay   = 0.1
		sustain = 0.7
		release = 0.1
	)
	switch {
	case t < attack:
		return t / attack
	case t < attack+decay:
		return 1 - (1-sustain)*(t-attack)/decay
	case t > dur-release:
		left := (dur - t) / release
		if left < 0 {
			left = 0
		}
		return sustain * left
	default:
		return sustain
	}
}

// normalize scales the mix so its peak sits at the given level.
func normalize(mix []float64, peak float64) {
	max := 0.0
	for _, v := range mix {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	if max == 0 {
		return
	}
	for i := range mix {
		mix[i] = mix[i] / max * peak
	}
}

// writeWAV writes mono 16-bit PCM with a standard 44-byte RIFF header.
func writeWAV(path string, samples []float64) error {
	data := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(int16(v*32767)))
	}

	var header [44]byte
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+len(data)))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:], 1)  // mono
	binary.LittleEndian.PutUint32(header[24:], sampleRate)
	binary.LittleEndian.PutUint32(header[28:], sampleRate*2) // byte rate
	binary.LittleEndian.PutUint16(header[32:], 2)            // block align
	binary.LittleEndian.PutUint16(header[34:], 16)           // bits per sample
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(len(data)))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(header[:]); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
