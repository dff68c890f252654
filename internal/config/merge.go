// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"time"
)

// mergeFileConfig applies non-empty file values over the defaults.
func (l *Loader) mergeFileConfig(cfg *AppConfig, fc *FileConfig) error {
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}

	if fc.FFmpeg != nil {
		if fc.FFmpeg.Bin != "" {
			cfg.FFmpeg.Bin = fc.FFmpeg.Bin
		}
		if fc.FFmpeg.FFprobeBin != "" {
			cfg.FFmpeg.FFprobeBin = fc.FFmpeg.FFprobeBin
		}
		if fc.FFmpeg.Preset != "" {
			cfg.FFmpeg.Preset = fc.FFmpeg.Preset
		}
		if fc.FFmpeg.CRF != nil {
			cfg.FFmpeg.CRF = *fc.FFmpeg.CRF
		}
	}

	if fc.Defaults != nil {
		if fc.Defaults.DurationSeconds != nil {
			cfg.Defaults.DurationSeconds = *fc.Defaults.DurationSeconds
		}
		if fc.Defaults.FPS != nil {
			cfg.Defaults.FPS = *fc.Defaults.FPS
		}
		if fc.Defaults.Width != nil {
			cfg.Defaults.Width = *fc.Defaults.Width
		}
		if fc.Defaults.Height != nil {
			cfg.Defaults.Height = *fc.Defaults.Height
		}
		if fc.Defaults.InhaleFreq != nil {
			cfg.Defaults.InhaleFreq = *fc.Defaults.InhaleFreq
		}
		if fc.Defaults.ExhaleFreq != nil {
			cfg.Defaults.ExhaleFreq = *fc.Defaults.ExhaleFreq
		}
		if fc.Defaults.SampleRate != nil {
			cfg.Defaults.SampleRate = *fc.Defaults.SampleRate
		}
	}

	for name, value := range fc.Presets {
		cfg.Presets[name] = value
	}

	if fc.API != nil {
		if fc.API.Token != "" {
			cfg.API.Token = fc.API.Token
		}
		if fc.API.ListenAddr != "" {
			cfg.API.ListenAddr = fc.API.ListenAddr
		}
		if fc.API.RateLimit != nil {
			if fc.API.RateLimit.Enabled != nil {
				cfg.API.RateLimit.Enabled = *fc.API.RateLimit.Enabled
			}
			if fc.API.RateLimit.PerMinute != nil {
				cfg.API.RateLimit.PerMinute = *fc.API.RateLimit.PerMinute
			}
			if fc.API.RateLimit.Burst != nil {
				cfg.API.RateLimit.Burst = *fc.API.RateLimit.Burst
			}
		}
	}

	if fc.Jobs != nil {
		if fc.Jobs.Workers != nil {
			cfg.Jobs.Workers = *fc.Jobs.Workers
		}
		if fc.Jobs.QueueSize != nil {
			cfg.Jobs.QueueSize = *fc.Jobs.QueueSize
		}
		if fc.Jobs.BuildsPerMinute != nil {
			cfg.Jobs.BuildsPerMinute = *fc.Jobs.BuildsPerMinute
		}
	}

	if fc.Cache != nil {
		if fc.Cache.Backend != "" {
			cfg.Cache.Backend = fc.Cache.Backend
		}
		if fc.Cache.TTL != "" {
			d, err := time.ParseDuration(fc.Cache.TTL)
			if err != nil {
				return fmt.Errorf("cache.ttl: %w", err)
			}
			cfg.Cache.TTL = d
		}
		if fc.Cache.CleanupInterval != "" {
			d, err := time.ParseDuration(fc.Cache.CleanupInterval)
			if err != nil {
				return fmt.Errorf("cache.cleanupInterval: %w", err)
			}
			cfg.Cache.CleanupInterval = d
		}
		if fc.Cache.Path != "" {
			cfg.Cache.Path = fc.Cache.Path
		}
		if fc.Cache.Redis != nil {
			if fc.Cache.Redis.Addr != "" {
				cfg.Cache.RedisAddr = fc.Cache.Redis.Addr
			}
			if fc.Cache.Redis.Password != "" {
				cfg.Cache.RedisPassword = fc.Cache.Redis.Password
			}
			if fc.Cache.Redis.DB != nil {
				cfg.Cache.RedisDB = *fc.Cache.Redis.DB
			}
		}
	}

	if fc.Metrics != nil {
		if fc.Metrics.Enabled != nil {
			cfg.Metrics.Enabled = *fc.Metrics.Enabled
		}
		if fc.Metrics.ListenAddr != "" {
			cfg.Metrics.ListenAddr = fc.Metrics.ListenAddr
		}
	}

	if fc.Telemetry != nil {
		if fc.Telemetry.Enabled != nil {
			cfg.Telemetry.Enabled = *fc.Telemetry.Enabled
		}
		if fc.Telemetry.Endpoint != "" {
			cfg.Telemetry.Endpoint = fc.Telemetry.Endpoint
		}
		if fc.Telemetry.Protocol != "" {
			cfg.Telemetry.Protocol = fc.Telemetry.Protocol
		}
		if fc.Telemetry.SampleRatio != nil {
			cfg.Telemetry.SampleRatio = *fc.Telemetry.SampleRatio
		}
	}

	return nil
}

// mergeEnvConfig applies RESPIRING_* environment variables over the
// defaults and file values.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DataDir = ParseString("RESPIRING_DATA_DIR", cfg.DataDir)
	cfg.OutputDir = ParseString("RESPIRING_OUTPUT_DIR", cfg.OutputDir)
	cfg.LogLevel = ParseString("RESPIRING_LOG_LEVEL", cfg.LogLevel)

	cfg.FFmpeg.Bin = ParseString("RESPIRING_FFMPEG_BIN", cfg.FFmpeg.Bin)
	cfg.FFmpeg.FFprobeBin = ParseString("RESPIRING_FFPROBE_BIN", cfg.FFmpeg.FFprobeBin)
	cfg.FFmpeg.Preset = ParseString("RESPIRING_FFMPEG_PRESET", cfg.FFmpeg.Preset)
	cfg.FFmpeg.CRF = ParseInt("RESPIRING_FFMPEG_CRF", cfg.FFmpeg.CRF)

	cfg.Defaults.DurationSeconds = ParseInt("RESPIRING_DEFAULT_DURATION", cfg.Defaults.DurationSeconds)
	cfg.Defaults.FPS = ParseInt("RESPIRING_DEFAULT_FPS", cfg.Defaults.FPS)
	cfg.Defaults.Width = ParseInt("RESPIRING_DEFAULT_WIDTH", cfg.Defaults.Width)
	cfg.Defaults.Height = ParseInt("RESPIRING_DEFAULT_HEIGHT", cfg.Defaults.Height)
	cfg.Defaults.InhaleFreq = ParseFloat("RESPIRING_DEFAULT_INHALE_FREQ", cfg.Defaults.InhaleFreq)
	cfg.Defaults.ExhaleFreq = ParseFloat("RESPIRING_DEFAULT_EXHALE_FREQ", cfg.Defaults.ExhaleFreq)
	cfg.Defaults.SampleRate = ParseInt("RESPIRING_DEFAULT_SAMPLE_RATE", cfg.Defaults.SampleRate)

	cfg.API.Token = ParseString("RESPIRING_API_TOKEN", cfg.API.Token)
	cfg.API.ListenAddr = ParseString("RESPIRING_LISTEN_ADDR", cfg.API.ListenAddr)
	cfg.API.RateLimit.Enabled = ParseBool("RESPIRING_RATE_LIMIT_ENABLED", cfg.API.RateLimit.Enabled)
	cfg.API.RateLimit.PerMinute = ParseInt("RESPIRING_RATE_LIMIT_PER_MINUTE", cfg.API.RateLimit.PerMinute)
	cfg.API.RateLimit.Burst = ParseInt("RESPIRING_RATE_LIMIT_BURST", cfg.API.RateLimit.Burst)

	cfg.Jobs.Workers = ParseInt("RESPIRING_WORKERS", cfg.Jobs.Workers)
	cfg.Jobs.QueueSize = ParseInt("RESPIRING_QUEUE_SIZE", cfg.Jobs.QueueSize)
	cfg.Jobs.BuildsPerMinute = ParseInt("RESPIRING_BUILDS_PER_MINUTE", cfg.Jobs.BuildsPerMinute)

	cfg.Cache.Backend = ParseString("RESPIRING_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = ParseDuration("RESPIRING_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.CleanupInterval = ParseDuration("RESPIRING_CACHE_CLEANUP_INTERVAL", cfg.Cache.CleanupInterval)
	cfg.Cache.Path = ParseString("RESPIRING_CACHE_PATH", cfg.Cache.Path)
	cfg.Cache.RedisAddr = ParseString("RESPIRING_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = ParseString("RESPIRING_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = ParseInt("RESPIRING_REDIS_DB", cfg.Cache.RedisDB)

	cfg.Metrics.Enabled = ParseBool("RESPIRING_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = ParseString("RESPIRING_METRICS_ADDR", cfg.Metrics.ListenAddr)

	cfg.Telemetry.Enabled = ParseBool("RESPIRING_OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = ParseString("RESPIRING_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Protocol = ParseString("RESPIRING_OTEL_PROTOCOL", cfg.Telemetry.Protocol)
	cfg.Telemetry.SampleRatio = ParseFloat("RESPIRING_OTEL_SAMPLE_RATIO", cfg.Telemetry.SampleRatio)
}
