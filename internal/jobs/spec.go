// SPDX-License-Identifier: MIT

// Package jobs builds breathing videos: it synthesizes the cue track,
// streams rendered frames into the encoder, and runs queued builds on a
// worker pool in service mode.
package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/pattern"
	"github.com/danibene/respiring/internal/validate"
	"github.com/google/uuid"
)

// BuildSpec fully describes one video to generate. Pattern carries the
// breathing timing; BPM is provenance only, recorded when the spec came
// from a breaths-per-minute request.
type BuildSpec struct {
	Pattern         pattern.Pattern
	BPM             *int
	DurationSeconds int
	FPS             int
	Width           int
	Height          int
	InhaleHz        float64
	ExhaleHz        float64
	SampleRate      int
}

// SpecFromDefaults seeds a BuildSpec with the configured video defaults.
// The pattern is left zero for the caller to fill.
func SpecFromDefaults(d config.VideoDefaults) BuildSpec {
	return BuildSpec{
		DurationSeconds: d.DurationSeconds,
		FPS:             d.FPS,
		Width:           d.Width,
		Height:          d.Height,
		InhaleHz:        d.InhaleFreq,
		ExhaleHz:        d.ExhaleFreq,
		SampleRate:      d.SampleRate,
	}
}

// Validate checks the spec against the encoder's and synthesizer's limits.
func (s BuildSpec) Validate() error {
	if err := s.Pattern.Validate(); err != nil {
		return err
	}

	v := validate.New()
	v.Range("durationSeconds", s.DurationSeconds, 1, 3600)
	v.Range("fps", s.FPS, 1, 120)
	v.Range("width", s.Width, 16, 4096)
	v.Range("height", s.Height, 16, 4096)
	v.Even("width", s.Width)
	v.Even("height", s.Height)
	v.Range("sampleRate", s.SampleRate, 8000, 192000)

	nyquist := float64(s.SampleRate) / 2
	if s.InhaleHz <= 0 || s.InhaleHz > nyquist {
		v.AddError("inhaleFreq", fmt.Sprintf("frequency must be in (0, %g], got %g", nyquist, s.InhaleHz), s.InhaleHz)
	}
	if s.ExhaleHz <= 0 || s.ExhaleHz > nyquist {
		v.AddError("exhaleFreq", fmt.Sprintf("frequency must be in (0, %g], got %g", nyquist, s.ExhaleHz), s.ExhaleHz)
	}

	return v.Err()
}

// Hash returns the canonical spec fingerprint: sha256 over the normalized
// parameter tuple, hex encoded. Requests that produce identical videos share
// a hash regardless of input spelling; BPM is excluded because the pattern
// already carries the timing it encodes.
func (s BuildSpec) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "v1|%s|%d|%d|%dx%d|%g|%g|%d",
		s.Pattern.String(), s.DurationSeconds, s.FPS, s.Width, s.Height,
		s.InhaleHz, s.ExhaleHz, s.SampleRate)
	return hex.EncodeToString(h.Sum(nil))
}

// Record materializes the catalog row for a queued build of this spec.
func (s BuildSpec) Record(id string, now time.Time) catalog.Video {
	return catalog.Video{
		ID:              id,
		Pattern:         s.Pattern.String(),
		BPM:             s.BPM,
		DurationSeconds: s.DurationSeconds,
		FPS:             s.FPS,
		Width:           s.Width,
		Height:          s.Height,
		InhaleHz:        s.InhaleHz,
		ExhaleHz:        s.ExhaleHz,
		SampleRate:      s.SampleRate,
		SpecHash:        s.Hash(),
		Status:          catalog.StatusQueued,
		CreatedAt:       now,
	}
}

// NewVideoID returns a time-ordered unique video ID. UUIDv7 embeds a
// timestamp, so catalog IDs sort chronologically.
func NewVideoID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("vid-%d", time.Now().UnixNano())
	}
	return id.String()
}

// ArtifactName derives the MP4 file name for a build: the slugged pattern
// plus a short ID suffix keeps names readable and collision free.
func ArtifactName(spec BuildSpec, id string) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("breathing-%s-%s.mp4", Slugify(spec.Pattern.String()), suffix)
}
