// SPDX-License-Identifier: MIT

// Package watchdog flags encoders whose progress stream has gone quiet.
package watchdog

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrStartTimeout reports an encoder that never produced progress.
	ErrStartTimeout = errors.New("no progress before start timeout")
	// ErrStalled reports an encoder whose progress stopped advancing.
	ErrStalled = errors.New("progress stalled")
)

// clock abstracts time so tests can drive the loop deterministically.
type clock interface {
	Now() time.Time
	NewTicker(d time.Duration) ticker
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) ticker {
	return &realTicker{time.NewTicker(d)}
}

type realTicker struct {
	*time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.Ticker.C }

// Watchdog tracks out_time readings from the -progress stream. An encode is
// alive only while those readings advance; a wedged ffmpeg keeps re-emitting
// the same values, and a deadlocked one emits nothing at all.
type Watchdog struct {
	startTimeout time.Duration
	stallTimeout time.Duration

	mu        sync.Mutex
	lastUs    int64
	last      time.Time
	advancing bool

	clock clock
}

// New creates a watchdog. startTimeout bounds the wait for the first advance,
// stallTimeout the quiet time between subsequent advances.
func New(startTimeout, stallTimeout time.Duration) *Watchdog {
	return &Watchdog{
		startTimeout: startTimeout,
		stallTimeout: stallTimeout,
		clock:        realClock{},
	}
}

// Observe feeds one out_time reading in microseconds. Repeated or backward
// readings do not count as liveness.
func (w *Watchdog) Observe(us int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if us <= w.lastUs {
		return
	}
	w.lastUs = us
	w.last = w.clock.Now()
	w.advancing = true
}

// Run blocks until the context is canceled or a timeout fires. It returns nil
// on cancellation, ErrStartTimeout or ErrStalled otherwise.
func (w *Watchdog) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.last.IsZero() {
		w.last = w.clock.Now()
	}
	w.mu.Unlock()

	tick := w.clock.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C():
			if err := w.check(); err != nil {
				return err
			}
		}
	}
}

func (w *Watchdog) check() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	quiet := w.clock.Now().Sub(w.last)
	if !w.advancing {
		if quiet > w.startTimeout {
			return ErrStartTimeout
		}
		return nil
	}
	if quiet > w.stallTimeout {
		return ErrStalled
	}
	return nil
}
