// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"testing"

	"github.com/danibene/respiring/internal/pattern"
)

func box() pattern.Pattern {
	return pattern.Pattern{Inhale: 4, HoldIn: 4, Exhale: 4, HoldOut: 4}
}

func pixelAt(img image.Image, x, y int) (r, g, b uint32) {
	pr, pg, pb, _ := img.At(x, y).RGBA()
	return pr >> 8, pg >> 8, pb >> 8
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(box(), 0, 480); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := New(box(), 640, -1); err == nil {
		t.Error("expected error for negative height")
	}
	if _, err := New(pattern.Pattern{}, 640, 480); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestFrameAtEnvelope(t *testing.T) {
	r, err := New(box(), 640, 480)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Inhale start: empty canvas.
	frame := r.FrameAt(0)
	if pr, pg, pb := pixelAt(frame, 320, 240); pr != 0 || pg != 0 || pb != 0 {
		t.Errorf("center at t=0 = (%d,%d,%d), want black", pr, pg, pb)
	}

	// Hold-in: circle at max radius, center fully white.
	frame = r.FrameAt(5)
	if pr, pg, pb := pixelAt(frame, 320, 240); pr != 255 || pg != 255 || pb != 255 {
		t.Errorf("center at t=5 = (%d,%d,%d), want white", pr, pg, pb)
	}
	// Corner stays black: max radius is min(w,h)/4 = 120.
	if pr, pg, pb := pixelAt(frame, 0, 0); pr != 0 || pg != 0 || pb != 0 {
		t.Errorf("corner at t=5 = (%d,%d,%d), want black", pr, pg, pb)
	}

	// Hold-out: empty canvas again.
	frame = r.FrameAt(13)
	if pr, pg, pb := pixelAt(frame, 320, 240); pr != 0 || pg != 0 || pb != 0 {
		t.Errorf("center at t=13 = (%d,%d,%d), want black", pr, pg, pb)
	}
}

func TestFrameDimensions(t *testing.T) {
	r, err := New(box(), 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bounds := r.FrameAt(0).Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 240 {
		t.Errorf("frame bounds %v, want 320x240", bounds)
	}
	w, h := r.Size()
	if w != 320 || h != 240 {
		t.Errorf("Size() = %dx%d, want 320x240", w, h)
	}
}
