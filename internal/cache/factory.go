// SPDX-License-Identifier: MIT
package cache

import (
	"fmt"
	"time"
)

// Backend names accepted in configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendNone   = "none"
)

// Config selects and parameterizes a cache backend.
type Config struct {
	Backend         string
	TTL             time.Duration
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BadgerPath string
}

// New builds the backend named by cfg.Backend. An empty name selects the
// in-process memory cache.
func New(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(cfg.CleanupInterval), nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("cache backend %q requires a redis address", cfg.Backend)
		}
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendBadger:
		if cfg.BadgerPath == "" {
			return nil, fmt.Errorf("cache backend %q requires a path", cfg.Backend)
		}
		return NewBadger(cfg.BadgerPath)
	case BackendNone:
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
