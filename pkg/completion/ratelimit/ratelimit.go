// Package ratelimit provides the shared throttle placed in front of the
// completion service. All callers funnel through a single Limiter instance
// owned by the completion client, so a minimum interval is kept between
// consecutive upstream calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between consecutive Acquire calls.
// Waiters are served in lock-acquisition order.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// New creates a Limiter with the given minimum interval between calls.
// A zero or negative interval disables throttling.
func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Interval returns the configured minimum interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire blocks until at least the configured interval has elapsed since
// the previous successful Acquire. It returns early with the context error
// if ctx is cancelled while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	// The mutex is held for the whole wait so that concurrent callers are
	// serialized FIFO on the lock rather than racing for the next slot.
	l.mu.Lock()
	defer l.mu.Unlock()

	wait := l.interval - time.Since(l.last)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.last = time.Now()
	return nil
}
