// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danibene/respiring/internal/audio"
	"github.com/danibene/respiring/internal/log"
	"github.com/google/renameio/v2"
)

// writeWAV publishes the cue track atomically: samples are encoded into a
// pending file and renamed into place only when fully written, so a crash
// mid-write never leaves a truncated WAV behind.
func writeWAV(ctx context.Context, path string, samples []int16, sampleRate int) error {
	logger := log.FromContext(ctx)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending WAV file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending WAV file")
		}
	}()

	if err := audio.WriteWAV(pending, samples, sampleRate); err != nil {
		return fmt.Errorf("write WAV data: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace WAV file: %w", err)
	}
	return nil
}

// fileDigest returns the sha256 hex digest and size of the file at path.
func fileDigest(path string) (digest string, size int64, err error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// audioPathFor places the cue track next to the video artifact, swapping the
// extension for .wav.
func audioPathFor(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".wav"
}
