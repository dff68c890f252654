// SPDX-License-Identifier: MIT

// Package daemon provides daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danibene/respiring/internal/api"
	"github.com/danibene/respiring/internal/cache"
	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/health"
	"github.com/danibene/respiring/internal/jobs"
	"github.com/danibene/respiring/internal/log"
	"github.com/danibene/respiring/internal/media/ffmpeg"
	"github.com/danibene/respiring/internal/telemetry"
	"github.com/danibene/respiring/internal/version"
)

// Container is the production composition root output.
type Container struct {
	Config  config.AppConfig
	Holder  *config.Holder
	Logger  zerolog.Logger
	Server  *api.Server
	Manager Manager
	App     *App
}

// Bootstrap builds the production dependency graph and returns a runnable
// container. The config path may be empty, in which case configuration comes
// from environment variables and defaults only.
func Bootstrap(ctx context.Context, configPath string) (*Container, error) {
	if ctx == nil {
		return nil, fmt.Errorf("bootstrap context is nil")
	}

	log.Configure(log.Config{
		Level:   "info",
		Service: "respiring",
		Version: version.Version,
	})
	logger := log.WithComponent("bootstrap")

	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	// Re-apply logging with the loaded level now that config is available.
	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "respiring",
		Version: cfg.Version,
	})
	logger = log.WithComponent("bootstrap")

	if configPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", configPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if configBytes, marshalErr := json.Marshal(cfg); marshalErr == nil {
		hash := sha256.Sum256(configBytes)
		logger.Info().
			Str("event", "config.snapshot").
			Str("sha256", fmt.Sprintf("%x", hash)).
			Msg("configuration snapshot fingerprint")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return nil, fmt.Errorf("startup checks failed: %w", err)
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("addr", cfg.API.ListenAddr).
		Str("data_dir", cfg.DataDir).
		Str("output_dir", cfg.OutputDir).
		Msg("starting respiring")
	if strings.TrimSpace(cfg.API.Token) != "" {
		logger.Info().Str("event", "auth.configured").Msg("API token configured")
	} else {
		logger.Warn().Str("event", "auth.open").Msg("no API token configured, API is unauthenticated")
	}

	// Tracing failures never block startup.
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "respiring",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Protocol,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
		provider = nil
	}

	store, err := catalog.NewStore(filepath.Join(cfg.DataDir, "catalog.db"))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	specCache, err := cache.New(cache.Config{
		Backend:         cfg.Cache.Backend,
		TTL:             cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		BadgerPath:      cfg.Cache.Path,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initialize spec cache: %w", err)
	}

	adapter := ffmpeg.NewAdapter(cfg.FFmpeg.Bin, cfg.FFmpeg.FFprobeBin, log.WithComponent("ffmpeg"))
	builder := jobs.NewBuilder(adapter, jobs.EncodeSettings{
		Preset: cfg.FFmpeg.Preset,
		CRF:    cfg.FFmpeg.CRF,
	})

	pool := jobs.NewPool(builder, store, specCache, jobs.PoolConfig{
		Workers:         cfg.Jobs.Workers,
		QueueSize:       cfg.Jobs.QueueSize,
		BuildsPerMinute: cfg.Jobs.BuildsPerMinute,
		OutputDir:       cfg.OutputDir,
		CacheTTL:        cfg.Cache.TTL,
	})

	ffmpegBin := strings.TrimSpace(cfg.FFmpeg.Bin)
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewDirChecker("output_dir", cfg.OutputDir))
	hm.RegisterChecker(health.NewBinaryChecker("ffmpeg", ffmpegBin))
	hm.RegisterChecker(health.NewPingChecker("catalog", false, store.Ping))

	srv, err := api.New(cfg, store, pool, specCache, hm)
	if err != nil {
		_ = specCache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("initialize api server: %w", err)
	}

	pool.Start()

	metricsAddr := ""
	if cfg.Metrics.Enabled {
		metricsAddr = strings.TrimSpace(cfg.Metrics.ListenAddr)
		if metricsAddr == "" {
			metricsAddr = ":9090"
		}
	}

	mgr, err := NewManager(DefaultServerConfig(cfg.API.ListenAddr), Deps{
		Logger:         logger,
		APIHandler:     srv.Router(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    metricsAddr,
	})
	if err != nil {
		pool.Stop()
		_ = specCache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("create daemon manager: %w", err)
	}

	// Hooks run LIFO, so register in reverse of the desired order: the pool
	// stops first so nothing writes to the catalog or cache while they close,
	// and the tracer flushes last.
	if provider != nil {
		mgr.RegisterShutdownHook("tracer", provider.Shutdown)
	}
	mgr.RegisterShutdownHook("spec_cache", func(context.Context) error {
		return specCache.Close()
	})
	mgr.RegisterShutdownHook("catalog", func(context.Context) error {
		return store.Close()
	})
	mgr.RegisterShutdownHook("ffmpeg_processes", func(context.Context) error {
		adapter.StopAll()
		return nil
	})
	mgr.RegisterShutdownHook("build_pool", func(context.Context) error {
		pool.Stop()
		return nil
	})

	holder := config.NewHolder(cfg, loader, configPath)
	app := NewApp(logger, mgr, holder)

	return &Container{
		Config:  cfg,
		Holder:  holder,
		Logger:  logger,
		Server:  srv,
		Manager: mgr,
		App:     app,
	}, nil
}
