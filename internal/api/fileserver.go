// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/log"
	"github.com/go-chi/chi/v5"
)

var (
	errArtifactMissing = errors.New("artifact file missing")
	errPathEscape      = errors.New("artifact path escapes output directory")
)

// handleVideoFile streams the finished MP4. The path comes from the catalog,
// never from the URL, and is still confined to the output directory before
// anything is opened: a tampered database row must not turn into an
// arbitrary file read.
func (s *Server) handleVideoFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "api")
	id := chi.URLParam(r, "id")

	v, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFound(w)
			return
		}
		logger.Error().Err(err).
			Str("event", "file_req.catalog_error").
			Str(log.FieldVideoID, id).
			Msg("lookup failed")
		writeInternalError(w)
		return
	}

	if v.Status != catalog.StatusReady {
		writeError(w, http.StatusConflict, "not_ready",
			"video artifact is not ready, status is "+string(v.Status))
		return
	}

	realPath, err := s.confinedArtifactPath(v.Path)
	switch {
	case errors.Is(err, errArtifactMissing):
		logger.Warn().
			Str("event", "file_req.missing").
			Str(log.FieldVideoID, id).
			Str(log.FieldPath, v.Path).
			Msg("cataloged artifact missing on disk")
		writeError(w, http.StatusNotFound, "not_found", "artifact file missing")
		return
	case errors.Is(err, errPathEscape):
		logger.Warn().
			Str("event", "file_req.denied").
			Str(log.FieldVideoID, id).
			Str(log.FieldPath, v.Path).
			Msg("artifact path escapes output directory")
		writeError(w, http.StatusForbidden, "forbidden", "")
		return
	case err != nil:
		logger.Error().Err(err).
			Str("event", "file_req.internal_error").
			Str(log.FieldVideoID, id).
			Msg("artifact path resolution failed")
		writeInternalError(w)
		return
	}

	// #nosec G304 -- realPath is confined to the output directory above
	f, err := os.Open(realPath)
	if err != nil {
		logger.Error().Err(err).
			Str("event", "file_req.internal_error").
			Str(log.FieldPath, realPath).
			Msg("could not open artifact")
		writeInternalError(w)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		logger.Error().Err(err).
			Str("event", "file_req.internal_error").
			Str(log.FieldPath, realPath).
			Msg("could not stat artifact")
		writeInternalError(w)
		return
	}
	if info.IsDir() {
		writeError(w, http.StatusForbidden, "forbidden", "")
		return
	}

	// Artifacts are content addressed, so the catalog fingerprint makes a
	// strong validator. Fall back to a weak one if the hash is absent.
	etag := fmt.Sprintf("%q", v.SHA256)
	if v.SHA256 == "" {
		etag = fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size())
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", info.Name()))

	logger.Info().
		Str("event", "file_req.allowed").
		Str(log.FieldVideoID, id).
		Str(log.FieldPath, realPath).
		Msg("serving artifact")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// confinedArtifactPath resolves stored against the output directory and
// rejects anything that lands outside it after symlink evaluation.
func (s *Server) confinedArtifactPath(stored string) (string, error) {
	if stored == "" {
		return "", errArtifactMissing
	}

	absRoot, err := filepath.Abs(s.cfg.OutputDir)
	if err != nil {
		return "", err
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(stored)
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errArtifactMissing
		}
		return "", err
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", errPathEscape
	}
	return realPath, nil
}
