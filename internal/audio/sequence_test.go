// SPDX-License-Identifier: MIT

package audio

import (
	"testing"

	"github.com/danibene/respiring/internal/pattern"
)

func allZero(chunk []int16) bool {
	for _, s := range chunk {
		if s != 0 {
			return false
		}
	}
	return true
}

func TestTrackSpansFullSession(t *testing.T) {
	seq := Sequencer{
		Pattern:    pattern.Pattern{Inhale: 5, Exhale: 5},
		InhaleHz:   220,
		ExhaleHz:   110,
		SampleRate: 44100,
	}
	track := seq.Track(60)
	if len(track) != 60*44100 {
		t.Errorf("len = %d, want %d", len(track), 60*44100)
	}
}

func TestTrackHoldsAreSilent(t *testing.T) {
	seq := Sequencer{
		Pattern:    pattern.Pattern{Inhale: 4, HoldIn: 4, Exhale: 4, HoldOut: 4},
		InhaleHz:   220,
		ExhaleHz:   110,
		SampleRate: 1000,
	}
	track := seq.Track(16)
	if len(track) != 16000 {
		t.Fatalf("len = %d, want 16000", len(track))
	}

	if allZero(track[:4000]) {
		t.Error("inhale window is silent, expected a bell")
	}
	if !allZero(track[4000:8000]) {
		t.Error("hold-in window is not silent")
	}
	if allZero(track[8000:12000]) {
		t.Error("exhale window is silent, expected a bell")
	}
	if !allZero(track[12000:16000]) {
		t.Error("hold-out window is not silent")
	}
}

func TestTrackPadsPartialCycle(t *testing.T) {
	seq := Sequencer{
		Pattern:    pattern.Pattern{Inhale: 3.5, Exhale: 3.5},
		InhaleHz:   220,
		ExhaleHz:   110,
		SampleRate: 1000,
	}
	// One full 7s cycle fits in 10s; the rest must be silence.
	track := seq.Track(10)
	if len(track) != 10000 {
		t.Fatalf("len = %d, want 10000", len(track))
	}
	if !allZero(track[7000:]) {
		t.Error("tail after the last full cycle is not silent")
	}
	if allZero(track[:3500]) {
		t.Error("first inhale window is silent, expected a bell")
	}
}

func TestTrackZeroSeconds(t *testing.T) {
	seq := Sequencer{
		Pattern:    pattern.Pattern{Inhale: 5, Exhale: 5},
		SampleRate: 44100,
	}
	if track := seq.Track(0); len(track) != 0 {
		t.Errorf("len = %d, want 0", len(track))
	}
}
