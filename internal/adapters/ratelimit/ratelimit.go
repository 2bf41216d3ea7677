// Package ratelimit throttles requests to the record source.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Modes accepted by New.
const (
	ModeFixed = "fixed"
	ModeToken = "token"
)

// Limiter blocks the caller until the next request may start.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay spaces request starts at least delay apart. Concurrent callers
// are queued one slot after another.
type FixedDelay struct {
	mu    sync.Mutex
	delay time.Duration
	next  time.Time
	now   func() time.Time
}

// NewFixedDelay returns a limiter enforcing delay between request starts.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay, now: time.Now}
}

// Wait implements Limiter.
func (f *FixedDelay) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	now := f.now()
	slot := f.next
	if slot.Before(now) {
		slot = now
	}
	f.next = slot.Add(f.delay)
	f.mu.Unlock()

	wait := slot.Sub(now)
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

// TokenBucket allows bursts up to burst requests, refilled at rps per second.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket returns a token bucket limiter.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait implements Limiter.
func (t *TokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// New builds a limiter for mode. delay applies to ModeFixed; rps and burst to ModeToken.
func New(mode string, delay time.Duration, rps float64, burst int) (Limiter, error) {
	switch mode {
	case "", ModeFixed:
		if delay < 0 {
			return nil, fmt.Errorf("%w: negative delay %s", ErrInvalidLimit, delay)
		}
		return NewFixedDelay(delay), nil
	case ModeToken:
		if rps <= 0 {
			return nil, fmt.Errorf("%w: requests per second must be positive, got %v", ErrInvalidLimit, rps)
		}
		return NewTokenBucket(rps, burst), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
