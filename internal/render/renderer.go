// SPDX-License-Identifier: MIT

// Package render draws the breathing guide animation: a filled circle that
// follows the pattern's amplitude envelope.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/danibene/respiring/internal/pattern"
)

// Renderer draws frames for one breathing pattern on a fixed canvas. The
// circle sits at the canvas center and peaks at a quarter of the smaller
// canvas edge. A Renderer is not safe for concurrent use; it redraws into a
// single reused canvas.
type Renderer struct {
	width, height int
	maxRadius     float64
	pat           pattern.Pattern
	dc            *gg.Context
}

// New returns a renderer for the given pattern and canvas size.
func New(p pattern.Pattern, width, height int) (*Renderer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("canvas %dx%d must be at least 1x1", width, height)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	short := width
	if height < short {
		short = height
	}
	return &Renderer{
		width:     width,
		height:    height,
		maxRadius: float64(short) / 4,
		pat:       p,
		dc:        gg.NewContext(width, height),
	}, nil
}

// Size returns the canvas dimensions.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// FrameAt draws the frame for time offset t and returns the shared canvas
// image. The returned image is invalidated by the next FrameAt call.
func (r *Renderer) FrameAt(t float64) image.Image {
	r.dc.SetRGB(0, 0, 0)
	r.dc.Clear()

	if radius := r.maxRadius * r.pat.Amplitude(t); radius > 0 {
		r.dc.SetRGB(1, 1, 1)
		r.dc.DrawCircle(float64(r.width)/2, float64(r.height)/2, radius)
		r.dc.Fill()
	}
	return r.dc.Image()
}
