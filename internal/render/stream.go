// SPDX-License-Identifier: MIT

package render

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// frameBuffer bounds how far rendering may run ahead of the encoder.
const frameBuffer = 4

// Stream renders frames at t = k/fps for k in [0, fps*seconds) and writes
// their RGB24 bytes to sink in frame order. Rendering overlaps with sink
// writes through a bounded channel; the first error on either side cancels
// the other.
func Stream(ctx context.Context, r *Renderer, fps, seconds int, sink io.Writer) error {
	total := fps * seconds
	frames := make(chan []byte, frameBuffer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		for k := 0; k < total; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := float64(k) / float64(fps)
			buf := RGB24(r.FrameAt(t))
			select {
			case frames <- buf:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		n := 0
		for buf := range frames {
			if _, err := sink.Write(buf); err != nil {
				return fmt.Errorf("write frame %d: %w", n, err)
			}
			n++
		}
		return nil
	})

	return g.Wait()
}
