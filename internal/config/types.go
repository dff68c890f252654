// SPDX-License-Identifier: MIT

// Package config provides configuration management for respiring with
// precedence ENV > file > defaults.
package config

import "time"

// FileConfig represents the YAML configuration structure.
// Optional scalar fields use pointers to distinguish "not set" from an
// explicit zero value.
type FileConfig struct {
	DataDir   string `yaml:"dataDir,omitempty"`
	OutputDir string `yaml:"outputDir,omitempty"`
	LogLevel  string `yaml:"logLevel,omitempty"`

	FFmpeg   *FFmpegFileConfig   `yaml:"ffmpeg,omitempty"`
	Defaults *DefaultsFileConfig `yaml:"defaults,omitempty"`
	Presets  map[string]string   `yaml:"presets,omitempty"`

	API       *APIFileConfig       `yaml:"api,omitempty"`
	Jobs      *JobsFileConfig      `yaml:"jobs,omitempty"`
	Cache     *CacheFileConfig     `yaml:"cache,omitempty"`
	Metrics   *MetricsFileConfig   `yaml:"metrics,omitempty"`
	Telemetry *TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// FFmpegFileConfig holds ffmpeg binary and encoder settings.
type FFmpegFileConfig struct {
	Bin        string `yaml:"bin,omitempty"`
	FFprobeBin string `yaml:"ffprobeBin,omitempty"`
	Preset     string `yaml:"preset,omitempty"`
	CRF        *int   `yaml:"crf,omitempty"`
}

// DefaultsFileConfig holds the video parameters applied when a build
// request leaves them unset.
type DefaultsFileConfig struct {
	DurationSeconds *int     `yaml:"durationSeconds,omitempty"`
	FPS             *int     `yaml:"fps,omitempty"`
	Width           *int     `yaml:"width,omitempty"`
	Height          *int     `yaml:"height,omitempty"`
	InhaleFreq      *float64 `yaml:"inhaleFreq,omitempty"`
	ExhaleFreq      *float64 `yaml:"exhaleFreq,omitempty"`
	SampleRate      *int     `yaml:"sampleRate,omitempty"`
}

// APIFileConfig holds API server configuration.
type APIFileConfig struct {
	Token      string               `yaml:"token,omitempty"`
	ListenAddr string               `yaml:"listenAddr,omitempty"`
	RateLimit  *RateLimitFileConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitFileConfig holds rate limiting settings.
type RateLimitFileConfig struct {
	Enabled   *bool `yaml:"enabled,omitempty"`
	PerMinute *int  `yaml:"perMinute,omitempty"`
	Burst     *int  `yaml:"burst,omitempty"`
}

// JobsFileConfig holds build worker pool settings.
type JobsFileConfig struct {
	Workers         *int `yaml:"workers,omitempty"`
	QueueSize       *int `yaml:"queueSize,omitempty"`
	BuildsPerMinute *int `yaml:"buildsPerMinute,omitempty"`
}

// CacheFileConfig holds result cache settings.
type CacheFileConfig struct {
	Backend         string           `yaml:"backend,omitempty"`
	TTL             string           `yaml:"ttl,omitempty"`             // e.g. "24h"
	CleanupInterval string           `yaml:"cleanupInterval,omitempty"` // e.g. "10m"
	Path            string           `yaml:"path,omitempty"`
	Redis           *RedisFileConfig `yaml:"redis,omitempty"`
}

// RedisFileConfig holds redis connection settings.
type RedisFileConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       *int   `yaml:"db,omitempty"`
}

// MetricsFileConfig holds Prometheus metrics configuration.
type MetricsFileConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// TelemetryFileConfig holds OpenTelemetry trace export settings.
type TelemetryFileConfig struct {
	Enabled     *bool    `yaml:"enabled,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"`
	Protocol    string   `yaml:"protocol,omitempty"` // "grpc" or "http"
	SampleRatio *float64 `yaml:"sampleRatio,omitempty"`
}

// AppConfig holds all resolved runtime configuration.
type AppConfig struct {
	Version   string
	DataDir   string
	OutputDir string
	LogLevel  string

	FFmpeg   FFmpegConfig
	Defaults VideoDefaults
	Presets  map[string]string

	API       APIConfig
	Jobs      JobsConfig
	Cache     CacheConfig
	Metrics   MetricsConfig
	Telemetry TelemetryConfig
}

// FFmpegConfig holds the resolved encoder settings.
type FFmpegConfig struct {
	Bin        string
	FFprobeBin string
	Preset     string
	CRF        int
}

// VideoDefaults holds the video parameters used when a request omits them.
type VideoDefaults struct {
	DurationSeconds int
	FPS             int
	Width           int
	Height          int
	InhaleFreq      float64
	ExhaleFreq      float64
	SampleRate      int
}

// APIConfig holds the resolved API server settings.
type APIConfig struct {
	Token      string
	ListenAddr string
	RateLimit  RateLimitConfig
}

// RateLimitConfig holds the resolved rate limit settings.
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int
	Burst     int
}

// JobsConfig holds the resolved worker pool settings.
type JobsConfig struct {
	Workers         int
	QueueSize       int
	BuildsPerMinute int // 0 disables pacing
}

// CacheConfig holds the resolved cache settings.
type CacheConfig struct {
	Backend         string
	TTL             time.Duration
	CleanupInterval time.Duration
	Path            string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// MetricsConfig holds the resolved metrics settings.
type MetricsConfig struct {
	Enabled    bool
	ListenAddr string
}

// TelemetryConfig holds the resolved trace export settings.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	Protocol    string
	SampleRatio float64
}
