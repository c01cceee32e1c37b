package clientcommon

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultMaxRetries  = 4
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultBackoffMax  = 30 * time.Second
	DefaultJitter      = 100 * time.Millisecond
)

// BackoffPolicy is the delay schedule applied between attempts on the same request.
// Attempts are counted from zero; MaxRetries bounds how many retries follow the first try.
type BackoffPolicy struct {
	Base       time.Duration
	Max        time.Duration
	Jitter     time.Duration
	MaxRetries int
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Base:       DefaultBackoffBase,
		Max:        DefaultBackoffMax,
		Jitter:     DefaultJitter,
		MaxRetries: DefaultMaxRetries,
	}
}

// Delay returns how long to wait before retrying after the given attempt.
// A server hint always wins, even above Max.
func (p BackoffPolicy) Delay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}

	if attempt < 0 {
		attempt = 0
	}

	delay := p.Base
	for i := 0; i < attempt && delay < p.Max; i++ {
		delay *= 2
	}

	if p.Max > 0 && delay > p.Max {
		delay = p.Max
	}

	return delay + p.Jitter
}

// Exhausted reports whether no retry is left after the given attempt.
func (p BackoffPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxRetries
}

// ParseRetryAfter reads a Retry-After header given either in seconds or as an HTTP date.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)

	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if wait := at.Sub(now); wait > 0 {
			return wait
		}
	}

	return 0
}
