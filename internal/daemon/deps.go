// SPDX-License-Identifier: MIT

package daemon

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Deps contains the dependencies the daemon Manager needs. Keeping them in a
// struct allows clean injection and easier testing.
type Deps struct {
	// Logger is the structured logger for the daemon.
	Logger zerolog.Logger

	// APIHandler serves the main API listener.
	APIHandler http.Handler

	// MetricsHandler serves Prometheus metrics on a separate listener when
	// MetricsAddr is set.
	MetricsHandler http.Handler

	// MetricsAddr is the metrics listen address. Empty disables the metrics
	// server.
	MetricsAddr string
}

// Validate checks that the required dependencies are present.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
