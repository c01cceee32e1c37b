package clientcommon

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is the rate-limit budget shared by every request made with one credential.
// It combines a token bucket with a global backoff deadline set when the upstream answers 429.
type Limiter struct {
	bucket *rate.Limiter
	clock  Clock

	mu           sync.Mutex
	blockedUntil time.Time
}

// NewLimiter builds a limiter allowing requestsPerSecond with the given burst.
// A non-positive rate disables the token bucket and keeps only the backoff deadline.
func NewLimiter(requestsPerSecond float64, burst int, clock Clock) *Limiter {
	limit := rate.Limit(requestsPerSecond)

	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	if burst < 1 {
		burst = 1
	}

	if clock == nil {
		clock = RealClock()
	}

	return &Limiter{
		bucket: rate.NewLimiter(limit, burst),
		clock:  clock,
	}
}

// Wait blocks until the global backoff has elapsed and a token is available.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		remaining := l.BlockedFor()

		if remaining <= 0 {
			break
		}

		if err := l.clock.Sleep(ctx, remaining); err != nil {
			return err
		}
	}

	return l.bucket.Wait(ctx)
}

// Backoff pushes the global deadline at least d into the future. It never shortens it.
func (l *Limiter) Backoff(d time.Duration) {
	until := l.clock.Now().Add(d)

	l.mu.Lock()
	defer l.mu.Unlock()

	if until.After(l.blockedUntil) {
		l.blockedUntil = until
	}
}

func (l *Limiter) BlockedFor() time.Duration {
	l.mu.Lock()
	until := l.blockedUntil
	l.mu.Unlock()

	return until.Sub(l.clock.Now())
}
