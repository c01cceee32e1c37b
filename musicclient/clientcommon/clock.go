package clientcommon

import (
	"context"
	"sync"
	"time"
)

// Clock is the time source used by every wait in the upstream clients.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ManualClock never blocks: Sleep advances the clock and records the duration.
// Tests use it to observe waits.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if d > 0 {
		c.now = c.now.Add(d)
	}
	c.slept = append(c.slept, d)

	return nil
}

// Slept returns a copy of every recorded sleep, in order.
func (c *ManualClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Duration, len(c.slept))
	copy(out, c.slept)

	return out
}

func (c *ManualClock) TotalSlept() time.Duration {
	var total time.Duration

	for _, d := range c.Slept() {
		total += d
	}

	return total
}
