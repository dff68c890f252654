// SPDX-License-Identifier: MIT

// Package api provides the HTTP service surface for respiring: build
// submission, catalog access and artifact downloads.
package api

import (
	"fmt"
	"time"

	"github.com/danibene/respiring/internal/cache"
	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/health"
	"github.com/danibene/respiring/internal/jobs"
	"github.com/danibene/respiring/internal/pattern"
)

// Server holds the handler dependencies. Construct with New and mount
// Router on an http.Server.
type Server struct {
	cfg     config.AppConfig
	store   *catalog.Store
	pool    *jobs.Pool
	cache   cache.Cache
	health  *health.Manager
	presets []pattern.Preset

	startTime time.Time
}

// New assembles the API server. The preset table is resolved once at
// startup so a bad configured pattern fails boot instead of a request.
func New(cfg config.AppConfig, store *catalog.Store, pool *jobs.Pool, c cache.Cache, hm *health.Manager) (*Server, error) {
	presets, err := cfg.BreathingPresets()
	if err != nil {
		return nil, fmt.Errorf("resolve breathing presets: %w", err)
	}

	return &Server{
		cfg:       cfg,
		store:     store,
		pool:      pool,
		cache:     c,
		health:    hm,
		presets:   presets,
		startTime: time.Now(),
	}, nil
}
