// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danibene/respiring/internal/audio"
	"github.com/danibene/respiring/internal/log"
	"github.com/danibene/respiring/internal/media/ffmpeg"
	"github.com/danibene/respiring/internal/metrics"
	"github.com/danibene/respiring/internal/render"
	"github.com/danibene/respiring/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Encoder muxes rendered frames and the cue track into an MP4 artifact.
// *ffmpeg.Adapter satisfies it.
type Encoder interface {
	Mux(ctx context.Context, spec ffmpeg.MuxSpec, frames io.Reader, onProgress ffmpeg.ProgressFunc) error
}

// EncodeSettings carries the encoder tunables from config. Zero values fall
// back to the adapter defaults.
type EncodeSettings struct {
	Preset string
	CRF    int
}

// BuildRequest binds a spec to its artifact destination.
type BuildRequest struct {
	ID         string
	Spec       BuildSpec
	OutputPath string
	// AudioPath overrides where the cue track is written. Empty derives it
	// from OutputPath.
	AudioPath string
	// KeepAudio retains the cue track after the encode instead of removing it.
	KeepAudio  bool
	OnProgress ffmpeg.ProgressFunc
}

// Result describes a finished artifact.
type Result struct {
	ID        string
	Path      string
	AudioPath string // set only when the cue track was kept
	Frames    int
	SizeBytes int64
	SHA256    string
	Elapsed   time.Duration
}

// Builder generates one video end to end: cue track synthesis, frames
// streamed into the encoder while it runs, and artifact fingerprinting.
type Builder struct {
	Encoder  Encoder
	Settings EncodeSettings
}

// NewBuilder creates a Builder around the given encoder.
func NewBuilder(enc Encoder, settings EncodeSettings) *Builder {
	return &Builder{Encoder: enc, Settings: settings}
}

// Build runs the full pipeline for req. The encoder publishes the MP4
// atomically, so on failure nothing reaches req.OutputPath; the cue track is
// removed unless req.KeepAudio is set.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*Result, error) {
	if err := req.Spec.Validate(); err != nil {
		return nil, err
	}
	if req.OutputPath == "" {
		return nil, errors.New("output path missing")
	}
	spec := req.Spec

	if req.ID != "" {
		ctx = log.ContextWithJobID(ctx, req.ID)
	}
	logger := log.WithComponentFromContext(ctx, "jobs")

	tracer := telemetry.Tracer("respiring.jobs")
	ctx, span := tracer.Start(ctx, "respiring.build",
		trace.WithAttributes(telemetry.BuildAttributes(spec.Pattern.String(), spec.Hash(),
			spec.DurationSeconds, spec.FPS, spec.Width, spec.Height)...))
	defer span.End()

	start := time.Now()
	logger.Info().
		Str("event", "build.start").
		Str(log.FieldPattern, spec.Pattern.String()).
		Int(log.FieldDuration, spec.DurationSeconds).
		Int(log.FieldFPS, spec.FPS).
		Str(log.FieldResolution, fmt.Sprintf("%dx%d", spec.Width, spec.Height)).
		Str(log.FieldOutput, req.OutputPath).
		Msg("building video")

	audioPath := req.AudioPath
	if audioPath == "" {
		audioPath = audioPathFor(req.OutputPath)
	}

	stageStart := time.Now()
	aCtx, aSpan := tracer.Start(ctx, "respiring.build.audio")
	seq := audio.Sequencer{
		Pattern:    spec.Pattern,
		InhaleHz:   spec.InhaleHz,
		ExhaleHz:   spec.ExhaleHz,
		SampleRate: spec.SampleRate,
	}
	if err := writeWAV(aCtx, audioPath, seq.Track(spec.DurationSeconds), spec.SampleRate); err != nil {
		err = fmt.Errorf("synthesize: %w", err)
		endStage(aSpan, err)
		return nil, b.fail(ctx, span, start, err)
	}
	endStage(aSpan, nil)
	metrics.ObserveBuildStage(metrics.StageAudio, time.Since(stageStart).Seconds())

	if !req.KeepAudio {
		defer func() {
			if err := os.Remove(audioPath); err != nil {
				logger.Debug().Err(err).Str(log.FieldPath, audioPath).Msg("remove cue track")
			}
		}()
	}

	stageStart = time.Now()
	eCtx, eSpan := tracer.Start(ctx, "respiring.build.encode",
		trace.WithAttributes(telemetry.EncodeAttributes(b.Settings.Preset, b.Settings.CRF)...))

	renderer, err := render.New(spec.Pattern, spec.Width, spec.Height)
	if err != nil {
		err = fmt.Errorf("render: %w", err)
		endStage(eSpan, err)
		return nil, b.fail(ctx, span, start, err)
	}

	muxSpec := ffmpeg.MuxSpec{
		Width:      spec.Width,
		Height:     spec.Height,
		FPS:        spec.FPS,
		AudioPath:  audioPath,
		OutputPath: req.OutputPath,
		Duration:   float64(spec.DurationSeconds),
		Preset:     b.Settings.Preset,
		CRF:        b.Settings.CRF,
	}

	// Renderer and encoder run concurrently over a pipe. Closing each end
	// on exit unblocks the other side, so a failure in either stage cannot
	// wedge the pipeline.
	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(eCtx)
	g.Go(func() error {
		err := render.Stream(gctx, renderer, spec.FPS, spec.DurationSeconds, pw)
		pw.CloseWithError(err)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer func() { _ = pr.Close() }()
		metrics.IncActiveEncodes()
		defer metrics.DecActiveEncodes()
		if err := b.Encoder.Mux(gctx, muxSpec, pr, req.OnProgress); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		endStage(eSpan, err)
		return nil, b.fail(ctx, span, start, err)
	}
	endStage(eSpan, nil)
	metrics.ObserveBuildStage(metrics.StageEncode, time.Since(stageStart).Seconds())

	stageStart = time.Now()
	_, pSpan := tracer.Start(ctx, "respiring.build.publish")
	digest, size, err := fileDigest(req.OutputPath)
	if err != nil {
		err = fmt.Errorf("fingerprint artifact: %w", err)
		endStage(pSpan, err)
		return nil, b.fail(ctx, span, start, err)
	}
	endStage(pSpan, nil)
	metrics.ObserveBuildStage(metrics.StagePublish, time.Since(stageStart).Seconds())

	elapsed := time.Since(start)
	metrics.IncBuild(metrics.OutcomeSuccess)
	metrics.ObserveBuildDuration(elapsed.Seconds())
	metrics.AddVideoSeconds(spec.DurationSeconds)
	span.SetStatus(codes.Ok, "")

	res := &Result{
		ID:        req.ID,
		Path:      req.OutputPath,
		Frames:    spec.FPS * spec.DurationSeconds,
		SizeBytes: size,
		SHA256:    digest,
		Elapsed:   elapsed,
	}
	if req.KeepAudio {
		res.AudioPath = audioPath
	}

	logger.Info().
		Str("event", "build.success").
		Str(log.FieldOutput, req.OutputPath).
		Int64("size_bytes", size).
		Dur(log.FieldElapsed, elapsed).
		Msg("video built")
	return res, nil
}

func (b *Builder) fail(ctx context.Context, span trace.Span, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	outcome := metrics.OutcomeFailure
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = metrics.OutcomeCanceled
	}
	metrics.IncBuild(outcome)

	log.WithComponentFromContext(ctx, "jobs").Error().
		Err(err).
		Str("event", "build.failed").
		Dur(log.FieldElapsed, time.Since(start)).
		Msg("build failed")
	return err
}

func endStage(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
