// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/version"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "dump":
		return runConfigDump(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  respiring config validate [--file|-f config.yaml]")
	fmt.Fprintln(os.Stderr, "  respiring config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("respiring config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required (no default config.yaml found in the data dir)")
		return 2
	}

	loader := config.NewLoader(configPath, version.Version)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Printf("%s is valid\n", configPath)
	return 0
}

// runConfigDump prints the effective configuration (defaults + file + env)
// with secrets redacted.
func runConfigDump(args []string) int {
	fs := flag.NewFlagSet("respiring config dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var format string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}

	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error:\n  %v\n", err)
		return 1
	}

	fileCfg := fileConfigFromAppConfig(cfg)
	redactFileConfigSecrets(&fileCfg)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

// fileConfigFromAppConfig maps the resolved runtime configuration back onto
// the file schema so the dump round-trips through the loader.
func fileConfigFromAppConfig(cfg config.AppConfig) config.FileConfig {
	crf := cfg.FFmpeg.CRF

	duration := cfg.Defaults.DurationSeconds
	fps := cfg.Defaults.FPS
	width := cfg.Defaults.Width
	height := cfg.Defaults.Height
	inhale := cfg.Defaults.InhaleFreq
	exhale := cfg.Defaults.ExhaleFreq
	sampleRate := cfg.Defaults.SampleRate

	rlEnabled := cfg.API.RateLimit.Enabled
	rlPerMinute := cfg.API.RateLimit.PerMinute
	rlBurst := cfg.API.RateLimit.Burst

	workers := cfg.Jobs.Workers
	queueSize := cfg.Jobs.QueueSize
	buildsPerMinute := cfg.Jobs.BuildsPerMinute

	redisDB := cfg.Cache.RedisDB
	metricsEnabled := cfg.Metrics.Enabled
	otelEnabled := cfg.Telemetry.Enabled
	sampleRatio := cfg.Telemetry.SampleRatio

	return config.FileConfig{
		DataDir:   cfg.DataDir,
		OutputDir: cfg.OutputDir,
		LogLevel:  cfg.LogLevel,
		FFmpeg: &config.FFmpegFileConfig{
			Bin:        cfg.FFmpeg.Bin,
			FFprobeBin: cfg.FFmpeg.FFprobeBin,
			Preset:     cfg.FFmpeg.Preset,
			CRF:        &crf,
		},
		Defaults: &config.DefaultsFileConfig{
			DurationSeconds: &duration,
			FPS:             &fps,
			Width:           &width,
			Height:          &height,
			InhaleFreq:      &inhale,
			ExhaleFreq:      &exhale,
			SampleRate:      &sampleRate,
		},
		Presets: cfg.Presets,
		API: &config.APIFileConfig{
			Token:      cfg.API.Token,
			ListenAddr: cfg.API.ListenAddr,
			RateLimit: &config.RateLimitFileConfig{
				Enabled:   &rlEnabled,
				PerMinute: &rlPerMinute,
				Burst:     &rlBurst,
			},
		},
		Jobs: &config.JobsFileConfig{
			Workers:         &workers,
			QueueSize:       &queueSize,
			BuildsPerMinute: &buildsPerMinute,
		},
		Cache: &config.CacheFileConfig{
			Backend:         cfg.Cache.Backend,
			TTL:             cfg.Cache.TTL.String(),
			CleanupInterval: cfg.Cache.CleanupInterval.String(),
			Path:            cfg.Cache.Path,
			Redis: &config.RedisFileConfig{
				Addr:     cfg.Cache.RedisAddr,
				Password: cfg.Cache.RedisPassword,
				DB:       &redisDB,
			},
		},
		Metrics: &config.MetricsFileConfig{
			Enabled:    &metricsEnabled,
			ListenAddr: cfg.Metrics.ListenAddr,
		},
		Telemetry: &config.TelemetryFileConfig{
			Enabled:     &otelEnabled,
			Endpoint:    cfg.Telemetry.Endpoint,
			Protocol:    cfg.Telemetry.Protocol,
			SampleRatio: &sampleRatio,
		},
	}
}

func redactFileConfigSecrets(cfg *config.FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.API != nil && cfg.API.Token != "" {
		cfg.API.Token = "***"
	}
	if cfg.Cache != nil && cfg.Cache.Redis != nil && cfg.Cache.Redis.Password != "" {
		cfg.Cache.Redis.Password = "***"
	}
}
