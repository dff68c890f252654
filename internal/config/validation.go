// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"strings"

	"github.com/danibene/respiring/internal/pattern"
	"github.com/danibene/respiring/internal/validate"
)

// x264Presets are the encoder presets libx264 accepts.
var x264Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow",
}

var cacheBackends = []string{"memory", "redis", "badger", "none"}

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", err.Error(), cfg.LogLevel)
	}
	v.NotEmpty("dataDir", cfg.DataDir)
	v.NotEmpty("outputDir", cfg.OutputDir)

	v.Range("defaults.durationSeconds", cfg.Defaults.DurationSeconds, 1, 3600)
	v.Range("defaults.fps", cfg.Defaults.FPS, 1, 120)
	v.Range("defaults.width", cfg.Defaults.Width, 16, 4096)
	v.Range("defaults.height", cfg.Defaults.Height, 16, 4096)
	v.Even("defaults.width", cfg.Defaults.Width)
	v.Even("defaults.height", cfg.Defaults.Height)
	v.Range("defaults.sampleRate", cfg.Defaults.SampleRate, 8000, 192000)

	// Bell tones must be below the Nyquist limit to be representable
	nyquist := float64(cfg.Defaults.SampleRate) / 2
	if cfg.Defaults.InhaleFreq <= 0 || cfg.Defaults.InhaleFreq > nyquist {
		v.AddError("defaults.inhaleFreq",
			fmt.Sprintf("frequency must be in (0, %g], got %g", nyquist, cfg.Defaults.InhaleFreq),
			cfg.Defaults.InhaleFreq)
	}
	if cfg.Defaults.ExhaleFreq <= 0 || cfg.Defaults.ExhaleFreq > nyquist {
		v.AddError("defaults.exhaleFreq",
			fmt.Sprintf("frequency must be in (0, %g], got %g", nyquist, cfg.Defaults.ExhaleFreq),
			cfg.Defaults.ExhaleFreq)
	}

	v.OneOf("ffmpeg.preset", cfg.FFmpeg.Preset, x264Presets)
	v.Range("ffmpeg.crf", cfg.FFmpeg.CRF, 0, 51)

	for name, value := range cfg.Presets {
		if strings.TrimSpace(name) == "" {
			v.AddError("presets", "preset name cannot be empty", name)
			continue
		}
		if _, err := pattern.Parse(value); err != nil {
			v.AddError("presets."+name, err.Error(), value)
		}
	}

	v.HostPort("api.listenAddr", cfg.API.ListenAddr)
	if cfg.API.RateLimit.Enabled {
		v.Positive("api.rateLimit.perMinute", cfg.API.RateLimit.PerMinute)
		v.Positive("api.rateLimit.burst", cfg.API.RateLimit.Burst)
	}

	v.Range("jobs.workers", cfg.Jobs.Workers, 1, 64)
	v.Range("jobs.queueSize", cfg.Jobs.QueueSize, 1, 1024)
	v.NonNegative("jobs.buildsPerMinute", cfg.Jobs.BuildsPerMinute)

	if cfg.Metrics.Enabled {
		v.HostPort("metrics.listenAddr", cfg.Metrics.ListenAddr)
	}

	v.OneOf("cache.backend", cfg.Cache.Backend, cacheBackends)
	switch cfg.Cache.Backend {
	case "redis":
		v.NotEmpty("cache.redis.addr", cfg.Cache.RedisAddr)
	case "badger":
		v.NotEmpty("cache.path", cfg.Cache.Path)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.protocol", cfg.Telemetry.Protocol, []string{"grpc", "http"})
		v.HostPort("telemetry.endpoint", cfg.Telemetry.Endpoint)
	}
	v.FloatRange("telemetry.sampleRatio", cfg.Telemetry.SampleRatio, 0, 1)

	return v.Err()
}
