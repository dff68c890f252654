// SPDX-License-Identifier: MIT

// Package catalog persists metadata about generated videos.
package catalog

import (
	"errors"
	"time"
)

// Status tracks a video through its build lifecycle.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusBuilding Status = "building"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
)

var (
	// ErrNotFound is returned when no video matches the lookup.
	ErrNotFound = errors.New("video not found")
	// ErrDuplicateSpec is returned when a video with the same spec hash is
	// already cataloged.
	ErrDuplicateSpec = errors.New("video with identical spec already cataloged")
)

// Video is one catalog record. Path, SizeBytes and SHA256 are filled when the
// build completes; Error when it fails.
type Video struct {
	ID              string     `json:"id"`
	Pattern         string     `json:"pattern"`
	BPM             *int       `json:"bpm,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	FPS             int        `json:"fps"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	InhaleHz        float64    `json:"inhale_freq"`
	ExhaleHz        float64    `json:"exhale_freq"`
	SampleRate      int        `json:"sample_rate"`
	Path            string     `json:"-"`
	SizeBytes       int64      `json:"size_bytes"`
	SHA256          string     `json:"sha256,omitempty"`
	SpecHash        string     `json:"spec_hash"`
	Status          Status     `json:"status"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}
