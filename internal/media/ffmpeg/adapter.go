// SPDX-License-Identifier: MIT

// Package ffmpeg drives external ffmpeg/ffprobe processes to mux rendered
// frames and the bell track into an MP4.
package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/danibene/respiring/internal/media/ffmpeg/watchdog"
)

// Encoder settings.
const (
	videoCodec    = "libx264"
	audioCodec    = "aac"
	audioBitrate  = "128k"
	fastStartFlag = "+faststart"

	defaultPreset = "medium"
	defaultCRF    = 23

	// stopGrace is how long an interrupted encoder may take to finalize
	// before it is killed.
	stopGrace = 5 * time.Second

	// durationTolerance is the accepted deviation between requested and
	// probed output duration, in seconds.
	durationTolerance = 0.5

	// defaultStartGrace bounds the wait for the encoder's first progress
	// report, defaultStallGrace the quiet time between reports.
	defaultStartGrace = time.Minute
	defaultStallGrace = 2 * time.Minute
)

// MuxSpec describes one encode: raw RGB frames on stdin, a WAV file as the
// second input, an MP4 as output.
type MuxSpec struct {
	Width     int
	Height    int
	FPS       int
	AudioPath string
	// OutputPath is the final artifact location. The encoder writes to a
	// pending file in the same directory and renames it into place only
	// after the output verifies.
	OutputPath string
	// Duration is the expected output length in seconds. It scales progress
	// reports and bounds the verification probe; zero disables both.
	Duration float64
	Preset   string
	CRF      int
}

func (s MuxSpec) withDefaults() MuxSpec {
	if s.Preset == "" {
		s.Preset = defaultPreset
	}
	if s.CRF <= 0 {
		s.CRF = defaultCRF
	}
	return s
}

func (s MuxSpec) validate() error {
	if s.Width < 2 || s.Height < 2 {
		return fmt.Errorf("canvas %dx%d too small", s.Width, s.Height)
	}
	// yuv420p subsamples chroma 2x2, so libx264 needs even dimensions.
	if s.Width%2 != 0 || s.Height%2 != 0 {
		return fmt.Errorf("canvas %dx%d must have even dimensions", s.Width, s.Height)
	}
	if s.FPS < 1 {
		return fmt.Errorf("fps %d must be at least 1", s.FPS)
	}
	if s.AudioPath == "" {
		return fmt.Errorf("audio path missing")
	}
	if s.OutputPath == "" {
		return fmt.Errorf("output path missing")
	}
	return nil
}

// ProgressFunc receives encode progress as a fraction in [0,1].
type ProgressFunc func(fraction float64)

// Adapter runs local ffmpeg processes and tracks them for shutdown.
type Adapter struct {
	BinPath   string
	ProbePath string
	Logger    zerolog.Logger

	// StartGrace and StallGrace override the watchdog timeouts; zero keeps
	// the defaults.
	StartGrace time.Duration
	StallGrace time.Duration

	mu     sync.Mutex
	active map[int]*exec.Cmd
}

// NewAdapter creates an adapter around the given binaries. Empty paths fall
// back to PATH lookup of "ffmpeg" and "ffprobe".
func NewAdapter(binPath, probePath string, logger zerolog.Logger) *Adapter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if probePath == "" {
		probePath = "ffprobe"
	}
	return &Adapter{
		BinPath:   binPath,
		ProbePath: probePath,
		Logger:    logger,
		active:    make(map[int]*exec.Cmd),
	}
}

// BuildArgs assembles the ffmpeg argument list for a mux run writing to
// outputPath. The pending file carries no .mp4 suffix, so the container
// format is pinned explicitly.
func BuildArgs(spec MuxSpec, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", strconv.Itoa(spec.FPS),
		"-i", "pipe:0",
		"-i", spec.AudioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", videoCodec,
		"-preset", spec.Preset,
		"-crf", strconv.Itoa(spec.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-movflags", fastStartFlag,
		"-progress", "pipe:2",
		"-nostats",
		"-f", "mp4",
		outputPath,
	}
}

// Mux encodes raw RGB24 frames from the reader together with the WAV at
// spec.AudioPath into spec.OutputPath. It blocks until the encoder exits and
// publishes the artifact atomically after verifying its duration. A partial
// output never reaches the final path.
func (a *Adapter) Mux(ctx context.Context, spec MuxSpec, frames io.Reader, onProgress ProgressFunc) error {
	spec = spec.withDefaults()
	if err := spec.validate(); err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(spec.OutputPath)
	if err != nil {
		return fmt.Errorf("create pending output: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			a.Logger.Debug().Err(err).Msg("cleanup pending output")
		}
	}()

	args := BuildArgs(spec, pending.Name())
	cmd := exec.CommandContext(ctx, a.BinPath, args...) // #nosec G204
	cmd.Stdin = frames
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGrace

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", a.BinPath, err)
	}
	pid := cmd.Process.Pid
	a.track(pid, cmd)
	defer a.untrack(pid)

	a.Logger.Debug().
		Int("pid", pid).
		Str("output", spec.OutputPath).
		Msg("encoder started")

	wd := watchdog.New(a.startGrace(), a.stallGrace())
	wdCtx, stopWatchdog := context.WithCancel(ctx)
	defer stopWatchdog()

	stalled := make(chan error, 1)
	go func() {
		if err := wd.Run(wdCtx); err != nil {
			stalled <- err
			a.Logger.Warn().Int("pid", pid).Err(err).Msg("interrupting quiet encoder")
			if cmd.Process != nil {
				_ = cmd.Process.Signal(os.Interrupt)
			}
		}
	}()

	diagnostics := scanProgress(stderr, spec.Duration, onProgress, wd.Observe)

	waitErr := cmd.Wait()
	stopWatchdog()
	if waitErr != nil {
		select {
		case werr := <-stalled:
			return fmt.Errorf("ffmpeg: %w", werr)
		default:
		}
		if ctx.Err() != nil {
			return fmt.Errorf("encode interrupted: %w", ctx.Err())
		}
		if len(diagnostics) > 0 {
			return fmt.Errorf("ffmpeg: %w: %s", waitErr, strings.Join(diagnostics, "; "))
		}
		return fmt.Errorf("ffmpeg: %w", waitErr)
	}

	if spec.Duration > 0 {
		probed, err := a.ProbeDuration(ctx, pending.Name())
		if err != nil {
			return fmt.Errorf("verify output: %w", err)
		}
		if diff := math.Abs(probed - spec.Duration); diff > durationTolerance {
			return fmt.Errorf("output duration %.2fs deviates %.2fs from requested %.2fs", probed, diff, spec.Duration)
		}
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}

	a.Logger.Info().
		Int("pid", pid).
		Str("output", spec.OutputPath).
		Dur("elapsed", time.Since(start)).
		Msg("encode finished")
	return nil
}

// StopAll asks every active encoder to finish. Encoders also die with their
// contexts; this sweep covers shutdown paths that keep contexts alive.
func (a *Adapter) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for pid, cmd := range a.active {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(os.Interrupt)
		}
		a.Logger.Debug().Int("pid", pid).Msg("interrupted encoder")
	}
}

// ActiveCount reports how many encoders are currently running.
func (a *Adapter) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}

func (a *Adapter) startGrace() time.Duration {
	if a.StartGrace > 0 {
		return a.StartGrace
	}
	return defaultStartGrace
}

func (a *Adapter) stallGrace() time.Duration {
	if a.StallGrace > 0 {
		return a.StallGrace
	}
	return defaultStallGrace
}

func (a *Adapter) track(pid int, cmd *exec.Cmd) {
	a.mu.Lock()
	a.active[pid] = cmd
	a.mu.Unlock()
}

func (a *Adapter) untrack(pid int) {
	a.mu.Lock()
	delete(a.active, pid)
	a.mu.Unlock()
}
