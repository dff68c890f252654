// SPDX-License-Identifier: MIT

// Package audio synthesizes the bell cue track for breathing sessions.
package audio

import "math"

// Harmonic ratios over the fundamental and their relative strengths for one
// bell strike.
var (
	bellHarmonics = [...]float64{1, 2, 2.8, 3.5, 4.5}
	bellStrengths = [...]float64{0.5, 0.75, 0.33, 0.14, 0.05}
)

// decayRate is the exponent of the strike's fade-out envelope.
const decayRate = 3.0

// Bell synthesizes a single bell strike as 16-bit PCM. The strike rings for
// the whole duration, decaying exponentially, and is peak-normalized to full
// scale. A non-positive duration yields no samples.
func Bell(fundamentalHz, durationSeconds float64, sampleRate int) []int16 {
	n := int(durationSeconds * float64(sampleRate))
	if n <= 0 {
		return nil
	}
	step := durationSeconds / float64(n)

	samples := make([]float64, n)
	peak := 0.0
	for k := range samples {
		t := float64(k) * step
		var s float64
		for i, ratio := range bellHarmonics {
			s += bellStrengths[i] * math.Sin(2*math.Pi*ratio*fundamentalHz*t)
		}
		s *= math.Exp(-decayRate * t)
		samples[k] = s
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}

	out := make([]int16, n)
	if peak == 0 {
		return out
	}
	for k, s := range samples {
		out[k] = int16(s / peak * 32767)
	}
	return out
}
