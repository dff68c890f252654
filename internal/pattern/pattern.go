// SPDX-License-Identifier: MIT

// Package pattern models breathing patterns: the phase durations of one
// breathing cycle and the animation envelope derived from them.
package pattern

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadPattern reports a pattern that cannot describe a breathing cycle.
var ErrBadPattern = errors.New("invalid breathing pattern")

// Cycle length bounds in seconds. One breath per two minutes is already
// extreme slow breathing; anything outside this window is a typo.
const (
	MinCycleSeconds = 1
	MaxCycleSeconds = 120
)

// Phase identifies one segment of the breathing cycle.
type Phase uint8

//go:generate stringer -type=Phase -trimprefix=Phase

const (
	PhaseInhale Phase = iota
	PhaseHoldIn
	PhaseExhale
	PhaseHoldOut
)

// Pattern holds the four phase durations of one breathing cycle, in seconds.
// HoldIn and HoldOut may be zero; Inhale and Exhale must be positive.
type Pattern struct {
	Inhale  float64
	HoldIn  float64
	Exhale  float64
	HoldOut float64
}

// FromBPM derives a symmetric pattern from a breaths-per-minute rate: the
// cycle lasts 60/bpm seconds, split evenly between inhale and exhale.
func FromBPM(bpm int) (Pattern, error) {
	if bpm < 1 || bpm > 60 {
		return Pattern{}, fmt.Errorf("%w: bpm %d outside 1..60", ErrBadPattern, bpm)
	}
	cycle := 60.0 / float64(bpm)
	return Pattern{Inhale: cycle / 2, Exhale: cycle / 2}, nil
}

// Cycle returns the total cycle duration in seconds.
func (p Pattern) Cycle() float64 {
	return p.Inhale + p.HoldIn + p.Exhale + p.HoldOut
}

// Validate checks that the pattern describes a usable breathing cycle.
func (p Pattern) Validate() error {
	for _, v := range [...]float64{p.Inhale, p.HoldIn, p.Exhale, p.HoldOut} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: durations must be finite", ErrBadPattern)
		}
	}
	if p.Inhale <= 0 || p.Exhale <= 0 {
		return fmt.Errorf("%w: inhale and exhale must be positive", ErrBadPattern)
	}
	if p.HoldIn < 0 || p.HoldOut < 0 {
		return fmt.Errorf("%w: hold durations must not be negative", ErrBadPattern)
	}
	if c := p.Cycle(); c < MinCycleSeconds || c > MaxCycleSeconds {
		return fmt.Errorf("%w: cycle %.2fs outside %d..%ds", ErrBadPattern, c, MinCycleSeconds, MaxCycleSeconds)
	}
	return nil
}

// PhaseAt maps a time offset to the active phase and the progress through it.
// Progress is in [0,1). Zero-length phases are skipped; t wraps around the
// cycle, so any non-negative offset is valid.
func (p Pattern) PhaseAt(t float64) (Phase, float64) {
	cycle := p.Cycle()
	if cycle <= 0 {
		return PhaseInhale, 0
	}
	u := math.Mod(t, cycle)
	if u < 0 {
		u += cycle
	}
	segments := [...]struct {
		phase Phase
		dur   float64
	}{
		{PhaseInhale, p.Inhale},
		{PhaseHoldIn, p.HoldIn},
		{PhaseExhale, p.Exhale},
		{PhaseHoldOut, p.HoldOut},
	}
	for _, seg := range segments {
		if seg.dur <= 0 {
			continue
		}
		if u < seg.dur {
			return seg.phase, u / seg.dur
		}
		u -= seg.dur
	}
	// Rounding in Mod can land exactly on the cycle boundary.
	return PhaseInhale, 0
}

// Amplitude returns the animation envelope at time t: 0 is fully exhaled,
// 1 fully inhaled. The circle radius scales linearly with this value.
func (p Pattern) Amplitude(t float64) float64 {
	phase, progress := p.PhaseAt(t)
	switch phase {
	case PhaseInhale:
		return progress
	case PhaseHoldIn:
		return 1
	case PhaseExhale:
		return 1 - progress
	default:
		return 0
	}
}

// String renders the pattern in its canonical comma-separated form, e.g.
// "4,7,8,0". The output round-trips through Parse.
func (p Pattern) String() string {
	parts := [...]float64{p.Inhale, p.HoldIn, p.Exhale, p.HoldOut}
	out := make([]string, len(parts))
	for i, v := range parts {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(out, ",")
}
