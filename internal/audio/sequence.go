// SPDX-License-Identifier: MIT

package audio

import (
	"github.com/danibene/respiring/internal/pattern"
)

// Sequencer lays out bell cues along a breathing pattern. The inhale bell
// rings through the inhale phase, the exhale bell through the exhale phase,
// and holds stay silent.
type Sequencer struct {
	Pattern    pattern.Pattern
	InhaleHz   float64
	ExhaleHz   float64
	SampleRate int
}

// Track synthesizes the cue track for a session of the given length. Whole
// cycles are laid out back to back; the remainder is silence so the track
// always spans the full session.
func (s Sequencer) Track(seconds int) []int16 {
	total := seconds * s.SampleRate
	if total <= 0 {
		return nil
	}
	out := make([]int16, 0, total)

	if cycle := s.Pattern.Cycle(); cycle > 0 {
		inhale := Bell(s.InhaleHz, s.Pattern.Inhale, s.SampleRate)
		exhale := Bell(s.ExhaleHz, s.Pattern.Exhale, s.SampleRate)
		holdIn := make([]int16, silentSamples(s.Pattern.HoldIn, s.SampleRate))
		holdOut := make([]int16, silentSamples(s.Pattern.HoldOut, s.SampleRate))

		for c := 0; c < int(float64(seconds)/cycle); c++ {
			out = append(out, inhale...)
			out = append(out, holdIn...)
			out = append(out, exhale...)
			out = append(out, holdOut...)
		}
	}
	if len(out) > total {
		out = out[:total]
	}
	return append(out, make([]int16, total-len(out))...)
}

func silentSamples(seconds float64, sampleRate int) int {
	n := int(seconds * float64(sampleRate))
	if n < 0 {
		return 0
	}
	return n
}
