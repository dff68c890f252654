// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/jobs"
	"github.com/danibene/respiring/internal/log"
	"github.com/danibene/respiring/internal/metrics"
	"github.com/danibene/respiring/internal/pattern"
	"github.com/go-chi/chi/v5"
)

// maxRequestBody bounds JSON request bodies. Build requests are a handful
// of numbers; anything larger is abuse.
const maxRequestBody = 64 << 10

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// createVideoRequest is the POST /videos payload. Pattern accepts a preset
// name or a comma-separated phase list; BPM derives an even inhale/exhale
// split. Unset optional fields fall back to the configured defaults.
type createVideoRequest struct {
	Pattern         string   `json:"pattern,omitempty"`
	BPM             *int     `json:"bpm,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	FPS             *int     `json:"fps,omitempty"`
	Width           *int     `json:"width,omitempty"`
	Height          *int     `json:"height,omitempty"`
	InhaleFreq      *float64 `json:"inhale_freq,omitempty"`
	ExhaleFreq      *float64 `json:"exhale_freq,omitempty"`
	SampleRate      *int     `json:"sample_rate,omitempty"`
}

type listVideosResponse struct {
	Videos []catalog.Video `json:"videos"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "api")

	var req createVideoRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body: "+err.Error())
		return
	}

	spec, err := s.specFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	hash := spec.Hash()

	// Fast path: the spec cache points at an already rendered artifact.
	if id, ok := s.cache.Get(hash); ok {
		if v, err := s.store.GetByID(ctx, id); err == nil && v.Status == catalog.StatusReady {
			metrics.RecordCacheLookup(true)
			logger.Debug().
				Str("event", "video.cache_hit").
				Str(log.FieldVideoID, v.ID).
				Msg("serving cataloged video from spec cache")
			writeJSON(w, http.StatusOK, v)
			return
		}
		// The record vanished or regressed; drop the stale pointer.
		s.cache.Delete(hash)
	}
	metrics.RecordCacheLookup(false)

	// The catalog is the source of truth for known specs. The unique index
	// on spec_hash serializes concurrent identical requests.
	existing, err := s.store.GetBySpecHash(ctx, hash)
	switch {
	case err == nil && existing.Status == catalog.StatusReady:
		s.cache.Set(hash, existing.ID, s.cfg.Cache.TTL)
		writeJSON(w, http.StatusOK, existing)
		return
	case err == nil && (existing.Status == catalog.StatusQueued || existing.Status == catalog.StatusBuilding):
		w.Header().Set("Location", "/api/v1/videos/"+existing.ID)
		writeError(w, http.StatusConflict, "build_in_flight",
			"an identical video is already being built: "+existing.ID)
		return
	case err == nil:
		// Failed earlier. Requesting the same spec again means retry:
		// replace the failed record with a fresh queued one.
		if err := s.store.Delete(ctx, existing.ID); err != nil && !errors.Is(err, catalog.ErrNotFound) {
			logger.Error().Err(err).
				Str("event", "video.catalog_error").
				Str(log.FieldVideoID, existing.ID).
				Msg("failed to clear failed record for retry")
			writeInternalError(w)
			return
		}
		logger.Info().
			Str("event", "video.retry").
			Str(log.FieldVideoID, existing.ID).
			Msg("replacing failed build with fresh request")
	case !errors.Is(err, catalog.ErrNotFound):
		logger.Error().Err(err).Str("event", "video.catalog_error").Msg("spec lookup failed")
		writeInternalError(w)
		return
	}

	id := jobs.NewVideoID()
	rec := spec.Record(id, time.Now().UTC())
	if err := s.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSpec) {
			// Lost the insert race against an identical concurrent request.
			writeError(w, http.StatusConflict, "build_in_flight",
				"an identical video is already being built")
			return
		}
		logger.Error().Err(err).Str("event", "video.catalog_error").Msg("insert failed")
		writeInternalError(w)
		return
	}

	if err := s.pool.Enqueue(ctx, jobs.BuildRequest{ID: id, Spec: spec}); err != nil {
		// The row must not stay queued with nothing building it.
		if delErr := s.store.Delete(ctx, id); delErr != nil {
			logger.Error().Err(delErr).
				Str("event", "video.catalog_error").
				Str(log.FieldVideoID, id).
				Msg("failed to remove record after enqueue rejection")
		}
		switch {
		case errors.Is(err, jobs.ErrQueueFull):
			w.Header().Set("Retry-After", "30")
			writeError(w, http.StatusTooManyRequests, "queue_full",
				"build queue is full, retry later")
		case errors.Is(err, jobs.ErrDuplicateBuild):
			writeError(w, http.StatusConflict, "build_in_flight",
				"an identical video is already being built")
		default:
			logger.Error().Err(err).Str("event", "video.enqueue_error").Msg("enqueue failed")
			writeInternalError(w)
		}
		return
	}

	logger.Info().
		Str("event", "video.enqueued").
		Str(log.FieldVideoID, id).
		Str(log.FieldPattern, spec.Pattern.String()).
		Int(log.FieldDuration, spec.DurationSeconds).
		Msg("build request accepted")

	w.Header().Set("Location", "/api/v1/videos/"+id)
	writeJSON(w, http.StatusAccepted, rec)
}

// specFromRequest merges the request onto the configured defaults. Exactly
// one of pattern or bpm selects the breathing timing.
func (s *Server) specFromRequest(req createVideoRequest) (jobs.BuildSpec, error) {
	spec := jobs.SpecFromDefaults(s.cfg.Defaults)

	switch {
	case req.Pattern != "" && req.BPM != nil:
		return spec, errors.New("pattern and bpm are mutually exclusive")
	case req.Pattern != "":
		p, err := pattern.Resolve(s.presets, req.Pattern)
		if err != nil {
			return spec, err
		}
		spec.Pattern = p
	case req.BPM != nil:
		p, err := pattern.FromBPM(*req.BPM)
		if err != nil {
			return spec, err
		}
		spec.Pattern = p
		spec.BPM = req.BPM
	default:
		return spec, errors.New("either pattern or bpm is required")
	}

	if req.DurationSeconds != nil {
		spec.DurationSeconds = *req.DurationSeconds
	}
	if req.FPS != nil {
		spec.FPS = *req.FPS
	}
	if req.Width != nil {
		spec.Width = *req.Width
	}
	if req.Height != nil {
		spec.Height = *req.Height
	}
	if req.InhaleFreq != nil {
		spec.InhaleHz = *req.InhaleFreq
	}
	if req.ExhaleFreq != nil {
		spec.ExhaleHz = *req.ExhaleFreq
	}
	if req.SampleRate != nil {
		spec.SampleRate = *req.SampleRate
	}

	return spec, nil
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	videos, total, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
			Str("event", "video.catalog_error").Msg("list failed")
		writeInternalError(w)
		return
	}
	if videos == nil {
		videos = []catalog.Video{}
	}

	writeJSON(w, http.StatusOK, listVideosResponse{
		Videos: videos,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFound(w)
			return
		}
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
			Str("event", "video.catalog_error").
			Str(log.FieldVideoID, id).
			Msg("lookup failed")
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := log.WithComponentFromContext(ctx, "api")

	v, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFound(w)
			return
		}
		logger.Error().Err(err).Str("event", "video.catalog_error").Msg("lookup failed")
		writeInternalError(w)
		return
	}

	// A build in flight still writes to the catalog and the artifact path;
	// deleting under it would leave orphaned state.
	if v.Status == catalog.StatusQueued || v.Status == catalog.StatusBuilding {
		writeError(w, http.StatusConflict, "build_in_flight",
			"video is still being built, retry after it completes")
		return
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFound(w)
			return
		}
		logger.Error().Err(err).Str("event", "video.catalog_error").Msg("delete failed")
		writeInternalError(w)
		return
	}

	s.cache.Delete(v.SpecHash)

	if v.Path != "" {
		if err := os.Remove(v.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).
				Str(log.FieldPath, v.Path).
				Msg("failed to remove artifact file")
		}
	}

	logger.Info().
		Str("event", "video.deleted").
		Str(log.FieldVideoID, id).
		Msg("video removed from catalog")

	w.WriteHeader(http.StatusNoContent)
}

type presetJSON struct {
	Name         string  `json:"name"`
	Pattern      string  `json:"pattern"`
	CycleSeconds float64 `json:"cycle_seconds"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make([]presetJSON, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, presetJSON{
			Name:         p.Name,
			Pattern:      p.Pattern.String(),
			CycleSeconds: p.Pattern.Cycle(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": out})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
