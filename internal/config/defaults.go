// SPDX-License-Identifier: MIT
package config

import "time"

// Default video parameters. A bare build request produces a one minute
// 640x480 clip at 24 fps with 220 Hz inhale and 110 Hz exhale bells.
const (
	DefaultDurationSeconds = 60
	DefaultFPS             = 24
	DefaultWidth           = 640
	DefaultHeight          = 480
	DefaultInhaleFreq      = 220.0
	DefaultExhaleFreq      = 110.0
	DefaultSampleRate      = 44100
)

const (
	defaultDataDir     = "./data"
	defaultLogLevel    = "info"
	defaultListenAddr  = ":8080"
	defaultMetricsAddr = ":9090"

	defaultFFmpegPreset = "medium"
	defaultFFmpegCRF    = 23

	defaultWorkers         = 2
	defaultQueueSize       = 16
	defaultBuildsPerMinute = 6

	defaultRateLimitPerMinute = 60
	defaultRateLimitBurst     = 10

	defaultCacheBackend         = "memory"
	defaultCacheTTL             = 24 * time.Hour
	defaultCacheCleanupInterval = 10 * time.Minute

	defaultTelemetryProtocol    = "grpc"
	defaultTelemetryEndpoint    = "localhost:4317"
	defaultTelemetrySampleRatio = 1.0
)

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.DataDir = defaultDataDir
	cfg.LogLevel = defaultLogLevel

	cfg.FFmpeg = FFmpegConfig{
		Preset: defaultFFmpegPreset,
		CRF:    defaultFFmpegCRF,
	}

	cfg.Defaults = VideoDefaults{
		DurationSeconds: DefaultDurationSeconds,
		FPS:             DefaultFPS,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		InhaleFreq:      DefaultInhaleFreq,
		ExhaleFreq:      DefaultExhaleFreq,
		SampleRate:      DefaultSampleRate,
	}

	cfg.Presets = map[string]string{}

	cfg.API = APIConfig{
		ListenAddr: defaultListenAddr,
		RateLimit: RateLimitConfig{
			Enabled:   true,
			PerMinute: defaultRateLimitPerMinute,
			Burst:     defaultRateLimitBurst,
		},
	}

	cfg.Jobs = JobsConfig{
		Workers:         defaultWorkers,
		QueueSize:       defaultQueueSize,
		BuildsPerMinute: defaultBuildsPerMinute,
	}

	cfg.Cache = CacheConfig{
		Backend:         defaultCacheBackend,
		TTL:             defaultCacheTTL,
		CleanupInterval: defaultCacheCleanupInterval,
	}

	cfg.Metrics = MetricsConfig{
		Enabled:    true,
		ListenAddr: defaultMetricsAddr,
	}

	cfg.Telemetry = TelemetryConfig{
		Endpoint:    defaultTelemetryEndpoint,
		Protocol:    defaultTelemetryProtocol,
		SampleRatio: defaultTelemetrySampleRatio,
	}
}
