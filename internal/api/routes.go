// SPDX-License-Identifier: MIT

package api

import (
	"time"

	"github.com/danibene/respiring/internal/log"
	"github.com/go-chi/chi/v5"
)

// Router assembles the middleware stack and route table. Order matters:
// recovery is outermost, correlation before logging, rate limiting after
// observability so rejected requests still show up in metrics and logs.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestID)
	r.Use(securityHeaders)
	r.Use(metricsMiddleware)
	if s.cfg.Telemetry.Enabled {
		r.Use(otelHTTP("respiring-api"))
	}
	r.Use(log.Middleware())
	if s.cfg.API.RateLimit.Enabled {
		r.Use(rateLimit(s.cfg.API.RateLimit.PerMinute, time.Minute))
	}

	// Probes stay outside the authenticated tree so orchestrators can reach
	// them without credentials.
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/presets", s.handlePresets)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", s.handleListVideos)
			if s.cfg.API.RateLimit.Enabled {
				// Builds are expensive; POST gets its own tight per-IP budget.
				r.With(rateLimit(s.cfg.API.RateLimit.Burst, time.Minute)).
					Post("/", s.handleCreateVideo)
			} else {
				r.Post("/", s.handleCreateVideo)
			}
			r.Get("/{id}", s.handleGetVideo)
			r.Delete("/{id}", s.handleDeleteVideo)
			r.Get("/{id}/file", s.handleVideoFile)
			r.Head("/{id}/file", s.handleVideoFile)
		})
	})

	return r
}
