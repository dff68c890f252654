// SPDX-License-Identifier: MIT

package log

// Canonical field names used across the daemon. Using these constants keeps
// log output consistent and greppable.
const (
	// Correlation.
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldEvent     = "event"

	// Files and media.
	FieldPath       = "path"
	FieldOutput     = "output"
	FieldDuration   = "duration"
	FieldFPS        = "fps"
	FieldResolution = "resolution"
	FieldSampleRate = "sample_rate"
	FieldPattern    = "pattern"
	FieldVideoID    = "video_id"

	// Process and transport.
	FieldPID     = "pid"
	FieldArgs    = "args"
	FieldMethod  = "method"
	FieldURL     = "url"
	FieldStatus  = "status"
	FieldAddr    = "addr"
	FieldError   = "error"
	FieldElapsed = "elapsed"
)
