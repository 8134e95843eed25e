// Package throttle spaces out operations by a minimum interval.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Throttle enforces Interval between the completion of one operation
// and the start of the next.
type Throttle struct {
	Interval time.Duration
	Clock    Clock

	mu   sync.Mutex
	last time.Time
}

// New returns a throttle using the wall clock.
func New(interval time.Duration) *Throttle {
	return &Throttle{Interval: interval}
}

func (t *Throttle) clock() Clock {
	if t.Clock != nil {
		return t.Clock
	}
	return realClock{}
}

// Wait blocks until Interval has passed since the last Done or Settle.
// It returns immediately if there was none.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	last := t.last
	t.mu.Unlock()
	if last.IsZero() {
		return nil
	}
	c := t.clock()
	d := last.Add(t.Interval).Sub(c.Now())
	if d <= 0 {
		return nil
	}
	return c.Sleep(ctx, d)
}

// Done records a completed operation without blocking.
func (t *Throttle) Done() {
	t.mu.Lock()
	t.last = t.clock().Now()
	t.mu.Unlock()
}

// Settle records a completed operation and holds the caller for the full
// interval, so control returns only once the next operation may start.
func (t *Throttle) Settle(ctx context.Context) error {
	t.Done()
	return t.Wait(ctx)
}
