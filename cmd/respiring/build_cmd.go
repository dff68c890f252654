// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/jobs"
	"github.com/danibene/respiring/internal/log"
	"github.com/danibene/respiring/internal/media/ffmpeg"
	"github.com/danibene/respiring/internal/pattern"
	"github.com/danibene/respiring/internal/version"
)

const (
	// defaultOutputName matches the historical artifact name so existing
	// scripts keep working.
	defaultOutputName = "breathing_instruction_with_sound.mp4"

	// cueTrackName is the intermediate WAV written next to the output file.
	cueTrackName = "breathing_bells.wav"

	// defaultBPM applies when neither --pattern nor --bpm is given.
	defaultBPM = 6
)

type buildOptions struct {
	pattern   string
	bpm       int
	duration  int
	fps       int
	size      string
	out       string
	keepAudio bool
}

func runBuild(args []string) int {
	fs := flag.NewFlagSet("respiring build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts buildOptions
	var verbose, trace bool
	fs.StringVar(&opts.pattern, "pattern", "", `breathing pattern "inhale,hold,exhale[,hold]" or a preset name`)
	fs.IntVar(&opts.bpm, "bpm", 0, "breaths per minute (1..60), mutually exclusive with --pattern")
	fs.IntVar(&opts.duration, "duration", 0, "video duration in seconds")
	fs.IntVar(&opts.fps, "fps", 0, "frames per second")
	fs.StringVar(&opts.size, "size", "", "resolution as WIDTHxHEIGHT, e.g. 640x480")
	fs.StringVar(&opts.out, "out", defaultOutputName, "output MP4 path")
	fs.BoolVar(&opts.keepAudio, "keep-audio", false, "keep the intermediate cue track WAV")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&trace, "vv", false, "trace logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if trace {
		level = "trace"
	}
	log.Configure(log.Config{
		Level:   level,
		Output:  os.Stderr,
		Service: "respiring",
		Version: version.Version,
	})

	cfg, err := config.NewLoader("", version.Version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	req, err := buildRequestFromOptions(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := ffmpeg.NewAdapter(cfg.FFmpeg.Bin, cfg.FFmpeg.FFprobeBin, log.WithComponent("ffmpeg"))
	builder := jobs.NewBuilder(adapter, jobs.EncodeSettings{
		Preset: cfg.FFmpeg.Preset,
		CRF:    cfg.FFmpeg.CRF,
	})

	spec := req.Spec
	fmt.Printf("Building video (pattern %s, %ds at %d fps, %dx%d)\n",
		spec.Pattern.String(), spec.DurationSeconds, spec.FPS, spec.Width, spec.Height)

	res, err := builder.Build(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(res.Path)
	if res.AudioPath != "" {
		fmt.Printf("Cue track kept at %s\n", res.AudioPath)
	}
	return 0
}

// buildRequestFromOptions turns CLI flags into a validated build request.
// Pattern and bpm are mutually exclusive; without either, a symmetric
// pattern at the default rate is used.
func buildRequestFromOptions(cfg config.AppConfig, opts buildOptions) (jobs.BuildRequest, error) {
	spec := jobs.SpecFromDefaults(cfg.Defaults)

	switch {
	case opts.pattern != "" && opts.bpm != 0:
		return jobs.BuildRequest{}, fmt.Errorf("--pattern and --bpm are mutually exclusive")
	case opts.pattern != "":
		presets, err := cfg.BreathingPresets()
		if err != nil {
			return jobs.BuildRequest{}, err
		}
		p, err := pattern.Resolve(presets, opts.pattern)
		if err != nil {
			return jobs.BuildRequest{}, err
		}
		spec.Pattern = p
	default:
		bpm := opts.bpm
		if bpm == 0 {
			bpm = defaultBPM
		}
		p, err := pattern.FromBPM(bpm)
		if err != nil {
			return jobs.BuildRequest{}, err
		}
		spec.Pattern = p
		spec.BPM = &bpm
	}

	if opts.duration != 0 {
		spec.DurationSeconds = opts.duration
	}
	if opts.fps != 0 {
		spec.FPS = opts.fps
	}
	if opts.size != "" {
		w, h, err := parseSize(opts.size)
		if err != nil {
			return jobs.BuildRequest{}, err
		}
		spec.Width = w
		spec.Height = h
	}

	if err := spec.Validate(); err != nil {
		return jobs.BuildRequest{}, err
	}

	out := opts.out
	if out == "" {
		out = defaultOutputName
	}

	return jobs.BuildRequest{
		Spec:       spec,
		OutputPath: out,
		AudioPath:  filepath.Join(filepath.Dir(out), cueTrackName),
		KeepAudio:  opts.keepAudio,
	}, nil
}

func parseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	width, err = strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	height, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return width, height, nil
}
