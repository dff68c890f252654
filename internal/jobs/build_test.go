// SPDX-License-Identifier: MIT
package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danibene/respiring/internal/media/ffmpeg"
	"github.com/danibene/respiring/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder stands in for the ffmpeg adapter. It drains the frame stream,
// optionally blocks on gate, and on success writes content to the output
// path the way the real adapter publishes an artifact.
type fakeEncoder struct {
	gate     chan struct{}
	fail     error
	failFast bool
	content  []byte

	mu      sync.Mutex
	called  bool
	drained int64
	spec    ffmpeg.MuxSpec
}

func (f *fakeEncoder) Mux(ctx context.Context, spec ffmpeg.MuxSpec, frames io.Reader, onProgress ffmpeg.ProgressFunc) error {
	f.mu.Lock()
	f.called = true
	f.spec = spec
	f.mu.Unlock()

	if f.failFast {
		return f.fail
	}

	n, err := io.Copy(io.Discard, frames)
	f.mu.Lock()
	f.drained = n
	f.mu.Unlock()
	if err != nil {
		return err
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.fail != nil {
		return f.fail
	}
	if onProgress != nil {
		onProgress(1)
	}
	return os.WriteFile(spec.OutputPath, f.content, 0o600)
}

func smallSpec(t *testing.T) BuildSpec {
	t.Helper()
	return BuildSpec{
		Pattern:         pattern.Pattern{Inhale: 1, Exhale: 1},
		DurationSeconds: 2,
		FPS:             4,
		Width:           32,
		Height:          32,
		InhaleHz:        220,
		ExhaleHz:        110,
		SampleRate:      8000,
	}
}

func TestBuilderBuild(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "calm.mp4")
	content := []byte("mp4 bytes")
	fake := &fakeEncoder{content: content}

	var progress float64
	b := NewBuilder(fake, EncodeSettings{Preset: "medium", CRF: 23})
	res, err := b.Build(context.Background(), BuildRequest{
		ID:         "vid-1",
		Spec:       smallSpec(t),
		OutputPath: out,
		OnProgress: func(fraction float64) { progress = fraction },
	})
	require.NoError(t, err)

	assert.Equal(t, "vid-1", res.ID)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, 8, res.Frames)
	assert.Equal(t, int64(len(content)), res.SizeBytes)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.SHA256)
	assert.Equal(t, float64(1), progress)

	// Every frame reached the encoder: fps*seconds frames of rgb24 pixels.
	assert.Equal(t, int64(32*32*3*8), fake.drained)
	assert.Equal(t, out, fake.spec.OutputPath)
	assert.Equal(t, 4, fake.spec.FPS)
	assert.Equal(t, "medium", fake.spec.Preset)
	assert.Equal(t, 23, fake.spec.CRF)
	assert.InDelta(t, 2.0, fake.spec.Duration, 0.001)

	// The cue track is temporary unless the caller keeps it.
	assert.Empty(t, res.AudioPath)
	_, statErr := os.Stat(audioPathFor(out))
	assert.True(t, os.IsNotExist(statErr), "cue track should be removed")
}

func TestBuilderBuildKeepAudio(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "calm.mp4")
	wav := filepath.Join(dir, "bells.wav")
	fake := &fakeEncoder{content: []byte("x")}

	b := NewBuilder(fake, EncodeSettings{})
	res, err := b.Build(context.Background(), BuildRequest{
		Spec:       smallSpec(t),
		OutputPath: out,
		AudioPath:  wav,
		KeepAudio:  true,
	})
	require.NoError(t, err)
	require.Equal(t, wav, res.AudioPath)
	assert.Equal(t, wav, fake.spec.AudioPath)

	data, err := os.ReadFile(wav)
	require.NoError(t, err)
	require.Greater(t, len(data), 44, "WAV shorter than its header")
	assert.Equal(t, "RIFF", string(data[:4]))
}

func TestBuilderBuildEncoderFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "calm.mp4")
	fake := &fakeEncoder{fail: errors.New("boom")}

	b := NewBuilder(fake, EncodeSettings{})
	_, err := b.Build(context.Background(), BuildRequest{
		Spec:       smallSpec(t),
		OutputPath: out,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode: boom")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "failed build must not leave an artifact")
	_, statErr = os.Stat(audioPathFor(out))
	assert.True(t, os.IsNotExist(statErr), "failed build must not leave a cue track")
}

func TestBuilderBuildEncoderFailsBeforeDraining(t *testing.T) {
	// An encoder that exits without reading the pipe must not wedge the
	// renderer; closing the read end unblocks it.
	dir := t.TempDir()
	fake := &fakeEncoder{fail: errors.New("boom"), failFast: true}

	b := NewBuilder(fake, EncodeSettings{})
	_, err := b.Build(context.Background(), BuildRequest{
		Spec:       smallSpec(t),
		OutputPath: filepath.Join(dir, "calm.mp4"),
	})
	require.Error(t, err)
}

func TestBuilderBuildInvalidSpec(t *testing.T) {
	fake := &fakeEncoder{}
	b := NewBuilder(fake, EncodeSettings{})

	spec := smallSpec(t)
	spec.DurationSeconds = 0
	_, err := b.Build(context.Background(), BuildRequest{Spec: spec, OutputPath: "x.mp4"})

	require.Error(t, err)
	assert.False(t, fake.called, "encoder must not run for an invalid spec")
}

func TestBuilderBuildMissingOutputPath(t *testing.T) {
	b := NewBuilder(&fakeEncoder{}, EncodeSettings{})

	_, err := b.Build(context.Background(), BuildRequest{Spec: smallSpec(t)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "output path")
}

func TestBuilderBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	b := NewBuilder(&fakeEncoder{content: []byte("x")}, EncodeSettings{})
	_, err := b.Build(ctx, BuildRequest{
		Spec:       smallSpec(t),
		OutputPath: filepath.Join(dir, "calm.mp4"),
	})
	require.Error(t, err)
}
