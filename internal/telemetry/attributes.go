// SPDX-License-Identifier: MIT

package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Build attributes
	BuildPatternKey    = "build.pattern"
	BuildDurationKey   = "build.duration_seconds"
	BuildFPSKey        = "build.fps"
	BuildResolutionKey = "build.resolution"
	BuildSpecHashKey   = "build.spec_hash"

	// Encode attributes
	EncodePresetKey = "encode.preset"
	EncodeCRFKey    = "encode.crf"

	// Job attributes
	JobStatusKey   = "job.status"
	JobDurationKey = "job.duration_ms"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// BuildAttributes creates build-related span attributes.
func BuildAttributes(pattern, specHash string, durationSeconds, fps, width, height int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(BuildPatternKey, pattern),
		attribute.String(BuildSpecHashKey, specHash),
		attribute.Int(BuildDurationKey, durationSeconds),
		attribute.Int(BuildFPSKey, fps),
		attribute.String(BuildResolutionKey, fmt.Sprintf("%dx%d", width, height)),
	}
}

// EncodeAttributes creates encoder-related span attributes.
func EncodeAttributes(preset string, crf int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(EncodePresetKey, preset),
		attribute.Int(EncodeCRFKey, crf),
	}
}

// JobAttributes creates job-related span attributes.
func JobAttributes(status string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobStatusKey, status),
		attribute.Int64(JobDurationKey, durationMS),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
