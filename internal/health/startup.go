// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the daemon starts
// serving: the artifact directory must be writable and ffmpeg resolvable.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := ensureWritableDir(logger, cfg.OutputDir); err != nil {
		return fmt.Errorf("output directory check failed: %w", err)
	}
	if err := checkFFmpeg(logger, cfg.FFmpeg.Bin); err != nil {
		return fmt.Errorf("ffmpeg check failed: %w", err)
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func ensureWritableDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}

	probe := filepath.Join(path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	_ = os.Remove(probe)

	logger.Info().Str(log.FieldPath, path).Msg("output directory is writable")
	return nil
}

func checkFFmpeg(logger zerolog.Logger, bin string) error {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		bin = "ffmpeg"
	}

	if strings.ContainsRune(bin, os.PathSeparator) {
		info, err := os.Stat(bin)
		if err != nil {
			return fmt.Errorf("ffmpeg binary not found: %s: %w", bin, err)
		}
		if info.IsDir() || info.Mode()&0o111 == 0 {
			return fmt.Errorf("ffmpeg path is not an executable: %s", bin)
		}
		logger.Info().Str(log.FieldPath, bin).Msg("ffmpeg binary available")
		return nil
	}

	resolved, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("ffmpeg binary not found (%s): %w", bin, err)
	}
	logger.Info().Str(log.FieldPath, resolved).Msg("ffmpeg binary available")
	return nil
}
