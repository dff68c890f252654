// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// Store provides SQLite persistence for the video catalog.
type Store struct {
	db *sql.DB
}

// NewStore opens the catalog database and runs migrations.
// busy_timeout avoids "database locked" errors under concurrent writers.
func NewStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		pattern TEXT NOT NULL,
		bpm INTEGER,
		duration_seconds INTEGER NOT NULL,
		fps INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		inhale_freq REAL NOT NULL,
		exhale_freq REAL NOT NULL,
		sample_rate INTEGER NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		sha256 TEXT NOT NULL DEFAULT '',
		spec_hash TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'queued' CHECK(status IN ('queued', 'building', 'ready', 'failed')),
		error TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_videos_created ON videos(created_at);
	CREATE INDEX IF NOT EXISTS idx_videos_status ON videos(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Insert records a new video. The spec hash is unique across the catalog;
// inserting a second video for the same spec returns ErrDuplicateSpec.
func (s *Store) Insert(ctx context.Context, v Video) error {
	query := `
	INSERT INTO videos (id, pattern, bpm, duration_seconds, fps, width, height,
		inhale_freq, exhale_freq, sample_rate, path, size_bytes, sha256,
		spec_hash, status, error, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var bpm sql.NullInt64
	if v.BPM != nil {
		bpm = sql.NullInt64{Int64: int64(*v.BPM), Valid: true}
	}
	var completed sql.NullString
	if v.CompletedAt != nil {
		completed = sql.NullString{String: v.CompletedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	status := v.Status
	if status == "" {
		status = StatusQueued
	}

	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Pattern, bpm, v.DurationSeconds, v.FPS, v.Width, v.Height,
		v.InhaleHz, v.ExhaleHz, v.SampleRate, v.Path, v.SizeBytes, v.SHA256,
		v.SpecHash, string(status), v.Error,
		v.CreatedAt.UTC().Format(time.RFC3339), completed,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateSpec, v.SpecHash)
		}
		return err
	}
	return nil
}

// MarkBuilding transitions a video to the building state.
func (s *Store) MarkBuilding(ctx context.Context, id string) error {
	return s.update(ctx, `UPDATE videos SET status = ?, error = '' WHERE id = ?`,
		string(StatusBuilding), id)
}

// MarkReady records a finished artifact.
func (s *Store) MarkReady(ctx context.Context, id, path string, sizeBytes int64, sha256 string, completedAt time.Time) error {
	return s.update(ctx,
		`UPDATE videos SET status = ?, path = ?, size_bytes = ?, sha256 = ?, error = '', completed_at = ? WHERE id = ?`,
		string(StatusReady), path, sizeBytes, sha256, completedAt.UTC().Format(time.RFC3339), id)
}

// MarkFailed records a failed build together with its error message.
func (s *Store) MarkFailed(ctx context.Context, id, errMsg string, completedAt time.Time) error {
	return s.update(ctx,
		`UPDATE videos SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(StatusFailed), errMsg, completedAt.UTC().Format(time.RFC3339), id)
}

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const videoColumns = `id, pattern, bpm, duration_seconds, fps, width, height,
	inhale_freq, exhale_freq, sample_rate, path, size_bytes, sha256,
	spec_hash, status, error, created_at, completed_at`

// GetByID retrieves a single video.
func (s *Store) GetByID(ctx context.Context, id string) (*Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	return scanVideo(row)
}

// GetBySpecHash retrieves the video generated for a spec, if any.
func (s *Store) GetBySpecHash(ctx context.Context, specHash string) (*Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE spec_hash = ?`, specHash)
	return scanVideo(row)
}

// List returns videos newest first, plus the total count for pagination.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Video, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
	SELECT ` + videoColumns + `
	FROM videos
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var videos []Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, *v)
	}
	return videos, total, rows.Err()
}

// Delete removes a catalog record.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.update(ctx, `DELETE FROM videos WHERE id = ?`, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*Video, error) {
	var (
		v            Video
		bpm          sql.NullInt64
		status       string
		createdStr   string
		completedStr sql.NullString
	)

	err := row.Scan(
		&v.ID, &v.Pattern, &bpm, &v.DurationSeconds, &v.FPS, &v.Width, &v.Height,
		&v.InhaleHz, &v.ExhaleHz, &v.SampleRate, &v.Path, &v.SizeBytes, &v.SHA256,
		&v.SpecHash, &status, &v.Error, &createdStr, &completedStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if bpm.Valid {
		b := int(bpm.Int64)
		v.BPM = &b
	}
	v.Status = Status(status)
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if completedStr.Valid {
		if t, err := time.Parse(time.RFC3339, completedStr.String); err == nil {
			v.CompletedAt = &t
		}
	}
	return &v, nil
}
