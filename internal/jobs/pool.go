// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/danibene/respiring/internal/cache"
	"github.com/danibene/respiring/internal/log"
	"github.com/danibene/respiring/internal/metrics"
	"golang.org/x/time/rate"
)

var (
	// ErrQueueFull is returned by Enqueue when the build queue cannot accept
	// more work.
	ErrQueueFull = errors.New("build queue full")
	// ErrDuplicateBuild is returned by Enqueue when an identical spec is
	// already queued or building.
	ErrDuplicateBuild = errors.New("identical build already in flight")
)

// failureRecordTimeout bounds catalog bookkeeping for failed builds. The
// writes run on a detached context so they complete during shutdown.
const failureRecordTimeout = 5 * time.Second

// Catalog is the subset of the catalog store the pool records build
// lifecycle transitions into.
type Catalog interface {
	MarkBuilding(ctx context.Context, id string) error
	MarkReady(ctx context.Context, id, path string, sizeBytes int64, sha256 string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, errMsg string, completedAt time.Time) error
}

// PoolConfig sizes the build worker pool.
type PoolConfig struct {
	Workers   int
	QueueSize int
	// BuildsPerMinute paces encoder spawns across all workers; 0 disables
	// pacing.
	BuildsPerMinute int
	// OutputDir receives artifacts for requests that carry no explicit
	// output path.
	OutputDir string
	// CacheTTL is applied when warming the spec cache after a build.
	CacheTTL time.Duration
}

// Pool executes queued builds on a fixed set of workers. Identical specs are
// deduplicated while in flight, and every accepted request terminates in a
// ready or failed catalog state, including during shutdown.
type Pool struct {
	builder *Builder
	store   Catalog
	cache   cache.Cache

	outputDir string
	cacheTTL  time.Duration

	jobs    chan BuildRequest
	workers int
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	once     sync.Once
	stopOnce sync.Once

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewPool creates a stopped pool; call Start to launch the workers.
func NewPool(builder *Builder, store Catalog, c cache.Cache, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}

	var limiter *rate.Limiter
	if cfg.BuildsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.BuildsPerMinute)/60.0), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		builder:   builder,
		store:     store,
		cache:     c,
		outputDir: cfg.OutputDir,
		cacheTTL:  cfg.CacheTTL,
		jobs:      make(chan BuildRequest, cfg.QueueSize),
		workers:   cfg.Workers,
		limiter:   limiter,
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[string]struct{}),
	}
}

// Start launches the worker goroutines. It is safe to call more than once.
func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				for req := range p.jobs {
					p.handle(p.ctx, req)
				}
			}()
		}
		log.WithComponent("pool").Info().
			Int("workers", p.workers).
			Int("queue_size", cap(p.jobs)).
			Msg("build worker pool started")
	})
}

// Stop cancels in-flight builds, drains the queue and waits for the workers
// to exit. Queued requests are recorded as failed so no catalog row is left
// dangling in queued state.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		close(p.jobs)
		p.wg.Wait()
	})
}

// Enqueue adds a build request to the queue. It fails fast with
// ErrDuplicateBuild when an identical spec is already in flight and with
// ErrQueueFull when the queue has no room.
func (p *Pool) Enqueue(ctx context.Context, req BuildRequest) error {
	hash := req.Spec.Hash()

	p.inflightMu.Lock()
	if _, ok := p.inflight[hash]; ok {
		p.inflightMu.Unlock()
		return ErrDuplicateBuild
	}
	p.inflight[hash] = struct{}{}
	p.inflightMu.Unlock()

	select {
	case <-ctx.Done():
		p.clearInflight(hash)
		return ctx.Err()
	case p.jobs <- req:
		metrics.SetQueueDepth(len(p.jobs))
		return nil
	default:
		p.clearInflight(hash)
		metrics.IncQueueReject()
		return ErrQueueFull
	}
}

func (p *Pool) handle(ctx context.Context, req BuildRequest) {
	hash := req.Spec.Hash()
	defer p.clearInflight(hash)
	defer metrics.SetQueueDepth(len(p.jobs))

	jobCtx := log.ContextWithJobID(ctx, req.ID)
	logger := log.WithComponentFromContext(jobCtx, "pool")

	// Drain fast during shutdown: accepted requests still get a terminal
	// catalog state instead of staying queued forever.
	select {
	case <-ctx.Done():
		p.recordFailure(jobCtx, req.ID, fmt.Errorf("build canceled: %w", ctx.Err()))
		return
	default:
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(jobCtx); err != nil {
			p.recordFailure(jobCtx, req.ID, fmt.Errorf("build canceled: %w", err))
			return
		}
	}

	if err := p.store.MarkBuilding(jobCtx, req.ID); err != nil {
		logger.Error().Err(err).
			Str("event", "build.catalog_error").
			Str(log.FieldVideoID, req.ID).
			Msg("failed to mark build as building")
		return
	}

	if req.OutputPath == "" {
		req.OutputPath = filepath.Join(p.outputDir, ArtifactName(req.Spec, req.ID))
	}

	res, err := p.builder.Build(jobCtx, req)
	if err != nil {
		p.recordFailure(jobCtx, req.ID, err)
		return
	}

	if err := p.store.MarkReady(jobCtx, req.ID, res.Path, res.SizeBytes, res.SHA256, time.Now().UTC()); err != nil {
		logger.Error().Err(err).
			Str("event", "build.catalog_error").
			Str(log.FieldVideoID, req.ID).
			Msg("failed to mark build as ready")
		return
	}

	p.cache.Set(hash, req.ID, p.cacheTTL)
	logger.Info().
		Str("event", "build.cataloged").
		Str(log.FieldVideoID, req.ID).
		Str(log.FieldOutput, res.Path).
		Msg("build cataloged")
}

func (p *Pool) recordFailure(ctx context.Context, id string, buildErr error) {
	bkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureRecordTimeout)
	defer cancel()

	if err := p.store.MarkFailed(bkCtx, id, buildErr.Error(), time.Now().UTC()); err != nil {
		log.WithComponentFromContext(ctx, "pool").Error().Err(err).
			Str("event", "build.catalog_error").
			Str(log.FieldVideoID, id).
			Msg("failed to mark build as failed")
	}
}

func (p *Pool) clearInflight(hash string) {
	p.inflightMu.Lock()
	delete(p.inflight, hash)
	p.inflightMu.Unlock()
}
