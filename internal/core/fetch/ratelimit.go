package fetch

import (
	"context"
	"time"
)

// Limiter enforces a fixed-window rate ceiling: at most Limit calls per
// Window. A call that would exceed the ceiling waits out the remainder
// of the current window before proceeding. Each adapter owns its own
// limiter instance; the ceiling is a per-instance budget.
type Limiter struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time

	windowStart time.Time
	count       int
}

// NewLimiter returns a limiter allowing limit calls per 60-second window.
func NewLimiter(limit int) *Limiter {
	return &Limiter{Limit: limit, Window: time.Minute}
}

// Reserve accounts for one call and returns how long the caller must
// wait before issuing it. A zero duration means the call may proceed
// immediately. Not safe for concurrent use.
func (l *Limiter) Reserve() time.Duration {
	if l == nil || l.Limit <= 0 {
		return 0
	}

	window := l.Window
	if window <= 0 {
		window = time.Minute
	}

	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= window {
		l.windowStart = now
		l.count = 0
	}

	if l.count >= l.Limit {
		wait := window - now.Sub(l.windowStart)
		if wait < 0 {
			wait = 0
		}
		l.windowStart = now.Add(wait)
		l.count = 1
		return wait
	}

	l.count++
	return 0
}

// Wait blocks until the limiter admits one call or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	wait := l.Reserve()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *Limiter) now() time.Time {
	if l != nil && l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}
