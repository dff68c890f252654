// SPDX-License-Identifier: MIT

package watchdog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock drives the watchdog loop by hand. Each advance moves the clock
// and delivers exactly one tick, so checks run at known instants.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	tick chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		tick: make(chan time.Time),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) ticker {
	return &fakeTicker{ch: c.tick}
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	c.tick <- now
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

func startWatchdog(t *testing.T, w *Watchdog) (chan error, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()
	return errCh, cancel
}

func waitResult(t *testing.T, errCh chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not return")
		return nil
	}
}

func TestWatchdogStartTimeout(t *testing.T) {
	fc := newFakeClock()
	w := New(10*time.Second, 30*time.Second)
	w.clock = fc

	errCh, cancel := startWatchdog(t, w)
	defer cancel()

	fc.advance(11 * time.Second)

	if err := waitResult(t, errCh); !errors.Is(err, ErrStartTimeout) {
		t.Errorf("Run = %v, want ErrStartTimeout", err)
	}
}

func TestWatchdogAdvancesKeepItQuiet(t *testing.T) {
	fc := newFakeClock()
	w := New(10*time.Second, 30*time.Second)
	w.clock = fc

	errCh, cancel := startWatchdog(t, w)

	w.Observe(1_000_000)
	fc.advance(20 * time.Second)
	w.Observe(2_000_000)
	fc.advance(25 * time.Second)

	cancel()
	if err := waitResult(t, errCh); err != nil {
		t.Errorf("Run = %v, want nil after cancel", err)
	}
}

func TestWatchdogStall(t *testing.T) {
	fc := newFakeClock()
	w := New(10*time.Second, 30*time.Second)
	w.clock = fc

	errCh, cancel := startWatchdog(t, w)
	defer cancel()

	w.Observe(1_000_000)
	fc.advance(31 * time.Second)

	if err := waitResult(t, errCh); !errors.Is(err, ErrStalled) {
		t.Errorf("Run = %v, want ErrStalled", err)
	}
}

func TestWatchdogRepeatedReadingIsNotLiveness(t *testing.T) {
	fc := newFakeClock()
	w := New(10*time.Second, 30*time.Second)
	w.clock = fc

	errCh, cancel := startWatchdog(t, w)
	defer cancel()

	w.Observe(5_000_000)
	fc.advance(20 * time.Second)
	// Same reading again: the encoder is emitting but not moving.
	w.Observe(5_000_000)
	fc.advance(15 * time.Second)

	if err := waitResult(t, errCh); !errors.Is(err, ErrStalled) {
		t.Errorf("Run = %v, want ErrStalled", err)
	}
}

func TestWatchdogCancelReturnsNil(t *testing.T) {
	fc := newFakeClock()
	w := New(10*time.Second, 30*time.Second)
	w.clock = fc

	errCh, cancel := startWatchdog(t, w)
	cancel()

	if err := waitResult(t, errCh); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}
