// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danibene/respiring/internal/cache"
	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/health"
	"github.com/danibene/respiring/internal/jobs"
	"github.com/danibene/respiring/internal/media/ffmpeg"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// stubEncoder stands in for ffmpeg: it drains the frame stream and writes a
// fixed artifact. A gate channel holds the build open for tests that need an
// in-flight state; fail makes the encode error out.
type stubEncoder struct {
	mu      sync.Mutex
	gate    chan struct{}
	fail    error
	content []byte
}

func (e *stubEncoder) Mux(ctx context.Context, spec ffmpeg.MuxSpec, frames io.Reader, onProgress ffmpeg.ProgressFunc) error {
	if _, err := io.Copy(io.Discard, frames); err != nil {
		return err
	}

	e.mu.Lock()
	gate, fail, content := e.gate, e.fail, e.content
	e.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail != nil {
		return fail
	}
	if len(content) == 0 {
		content = []byte("mp4 test bytes")
	}
	if onProgress != nil {
		onProgress(1)
	}
	return os.WriteFile(spec.OutputPath, content, 0o600)
}

type envOpts struct {
	encoder          *stubEncoder
	queueSize        int
	leavePoolStopped bool
	mutateCfg        func(*config.AppConfig)
}

type testEnv struct {
	srv    *Server
	router *chi.Mux
	store  *catalog.Store
	pool   *jobs.Pool
	cache  cache.Cache
	cfg    config.AppConfig
	enc    *stubEncoder
}

func newTestEnv(t *testing.T, opts envOpts) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.AppConfig{
		DataDir:   dir,
		OutputDir: filepath.Join(dir, "videos"),
		Defaults: config.VideoDefaults{
			DurationSeconds: 2,
			FPS:             4,
			Width:           32,
			Height:          32,
			InhaleFreq:      220,
			ExhaleFreq:      110,
			SampleRate:      8000,
		},
		Cache: config.CacheConfig{TTL: time.Minute},
	}
	if opts.mutateCfg != nil {
		opts.mutateCfg(&cfg)
	}
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o750))

	store, err := catalog.NewStore(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	specCache := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = specCache.Close() })

	enc := opts.encoder
	if enc == nil {
		enc = &stubEncoder{}
	}
	queueSize := opts.queueSize
	if queueSize == 0 {
		queueSize = 4
	}

	pool := jobs.NewPool(jobs.NewBuilder(enc, jobs.EncodeSettings{}), store, specCache, jobs.PoolConfig{
		Workers:   1,
		QueueSize: queueSize,
		OutputDir: cfg.OutputDir,
		CacheTTL:  time.Minute,
	})
	if !opts.leavePoolStopped {
		pool.Start()
	}
	t.Cleanup(pool.Stop)

	srv, err := New(cfg, store, pool, specCache, health.NewManager("test"))
	require.NoError(t, err)

	return &testEnv{
		srv:    srv,
		router: srv.Router(),
		store:  store,
		pool:   pool,
		cache:  specCache,
		cfg:    cfg,
		enc:    enc,
	}
}

// doJSON performs a request with a JSON-encoded body (nil for none).
func (e *testEnv) doJSON(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if e.cfg.API.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.API.Token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doRaw(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if e.cfg.API.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.API.Token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doRawWithHeader(t *testing.T, method, target, header, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if e.cfg.API.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.API.Token)
	}
	req.Header.Set(header, value)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// waitStatus polls the catalog until the video reaches the wanted status.
func (e *testEnv) waitStatus(t *testing.T, id string, want catalog.Status) *catalog.Video {
	t.Helper()
	var v *catalog.Video
	require.Eventually(t, func() bool {
		var err error
		v, err = e.store.GetByID(context.Background(), id)
		return err == nil && v.Status == want
	}, 5*time.Second, 10*time.Millisecond, "video %s never reached status %s", id, want)
	return v
}

func decodeVideo(t *testing.T, w *httptest.ResponseRecorder) catalog.Video {
	t.Helper()
	var v catalog.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), "body: %s", w.Body.String())
	return e
}
