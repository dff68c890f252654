// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danibene/respiring/internal/config"
)

func testAppConfig() config.AppConfig {
	return config.AppConfig{
		Defaults: config.VideoDefaults{
			DurationSeconds: 60,
			FPS:             24,
			Width:           640,
			Height:          480,
			InhaleFreq:      220,
			ExhaleFreq:      110,
			SampleRate:      44100,
		},
		Presets: map[string]string{"slow": "7,0,11"},
	}
}

func TestBuildRequestFromOptionsDefaults(t *testing.T) {
	req, err := buildRequestFromOptions(testAppConfig(), buildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := req.Spec.Pattern.String(); got != "5,0,5,0" {
		t.Errorf("pattern = %s, want 5,0,5,0", got)
	}
	if req.Spec.BPM == nil || *req.Spec.BPM != defaultBPM {
		t.Errorf("bpm = %v, want %d", req.Spec.BPM, defaultBPM)
	}
	if req.Spec.DurationSeconds != 60 || req.Spec.FPS != 24 {
		t.Errorf("duration/fps = %d/%d, want 60/24", req.Spec.DurationSeconds, req.Spec.FPS)
	}
	if req.Spec.Width != 640 || req.Spec.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", req.Spec.Width, req.Spec.Height)
	}
	if req.OutputPath != defaultOutputName {
		t.Errorf("output = %s, want %s", req.OutputPath, defaultOutputName)
	}
	if req.AudioPath != cueTrackName {
		t.Errorf("audio path = %s, want %s", req.AudioPath, cueTrackName)
	}
	if req.KeepAudio {
		t.Error("keep audio should default to false")
	}
}

func TestBuildRequestFromOptions(t *testing.T) {
	tests := []struct {
		name        string
		opts        buildOptions
		wantPattern string
		wantBPM     int // 0 means BPM must be nil
		wantErr     string
	}{
		{
			name:        "explicit bpm",
			opts:        buildOptions{bpm: 4},
			wantPattern: "7.5,0,7.5,0",
			wantBPM:     4,
		},
		{
			name:    "pattern and bpm are mutually exclusive",
			opts:    buildOptions{pattern: "box", bpm: 6},
			wantErr: "mutually exclusive",
		},
		{
			name:        "builtin preset",
			opts:        buildOptions{pattern: "box"},
			wantPattern: "4,4,4,4",
		},
		{
			name:        "configured preset",
			opts:        buildOptions{pattern: "slow"},
			wantPattern: "7,0,11,0",
		},
		{
			name:        "pattern literal",
			opts:        buildOptions{pattern: "4,7,8"},
			wantPattern: "4,7,8,0",
		},
		{
			name:    "unknown preset is not a literal either",
			opts:    buildOptions{pattern: "zen-master"},
			wantErr: "pattern",
		},
		{
			name:    "bpm out of range",
			opts:    buildOptions{bpm: 61},
			wantErr: "1..60",
		},
		{
			name:    "odd width rejected",
			opts:    buildOptions{size: "641x480"},
			wantErr: "width",
		},
		{
			name:    "malformed size",
			opts:    buildOptions{size: "large"},
			wantErr: "invalid size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildRequestFromOptions(testAppConfig(), tt.opts)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := req.Spec.Pattern.String(); got != tt.wantPattern {
				t.Errorf("pattern = %s, want %s", got, tt.wantPattern)
			}
			if tt.wantBPM == 0 {
				if req.Spec.BPM != nil {
					t.Errorf("bpm = %d, want nil", *req.Spec.BPM)
				}
			} else if req.Spec.BPM == nil || *req.Spec.BPM != tt.wantBPM {
				t.Errorf("bpm = %v, want %d", req.Spec.BPM, tt.wantBPM)
			}
		})
	}
}

func TestBuildRequestFromOptionsOverrides(t *testing.T) {
	opts := buildOptions{
		duration:  120,
		fps:       30,
		size:      "1280x720",
		out:       filepath.Join("out", "session.mp4"),
		keepAudio: true,
	}

	req, err := buildRequestFromOptions(testAppConfig(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Spec.DurationSeconds != 120 {
		t.Errorf("duration = %d, want 120", req.Spec.DurationSeconds)
	}
	if req.Spec.FPS != 30 {
		t.Errorf("fps = %d, want 30", req.Spec.FPS)
	}
	if req.Spec.Width != 1280 || req.Spec.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", req.Spec.Width, req.Spec.Height)
	}
	if req.OutputPath != opts.out {
		t.Errorf("output = %s, want %s", req.OutputPath, opts.out)
	}
	if want := filepath.Join("out", cueTrackName); req.AudioPath != want {
		t.Errorf("audio path = %s, want %s", req.AudioPath, want)
	}
	if !req.KeepAudio {
		t.Error("keep audio flag not carried")
	}
}

func TestRunBuildPrintsBanner(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESPIRING_DATA_DIR", dir)
	// A binary that cannot exist makes the encode fail after the banner.
	t.Setenv("RESPIRING_FFMPEG_BIN", filepath.Join(dir, "ffmpeg-missing"))

	out := filepath.Join(dir, "session.mp4")

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	rc := runBuild([]string{"--pattern", "6, 0, 6", "--duration", "2", "--out", out})

	os.Stdout = orig
	_ = w.Close()
	captured, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}

	if rc != 1 {
		t.Errorf("exit code = %d, want 1", rc)
	}
	if !strings.Contains(string(captured), "Building video (pattern 6,0,6,0") {
		t.Errorf("stdout = %q, want the Building video line", string(captured))
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("no artifact may exist after a failed build, stat err = %v", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in         string
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{in: "640x480", wantWidth: 640, wantHeight: 480},
		{in: "1920X1080", wantWidth: 1920, wantHeight: 1080},
		{in: " 1280x720 ", wantWidth: 1280, wantHeight: 720},
		{in: "640", wantErr: true},
		{in: "x480", wantErr: true},
		{in: "640x", wantErr: true},
		{in: "0x480", wantErr: true},
		{in: "640x-2", wantErr: true},
		{in: "axb", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseSize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSize(%q) expected error, got %dx%d", tt.in, w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSize(%q) unexpected error: %v", tt.in, err)
			}
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
