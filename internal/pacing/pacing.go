// Package pacing spaces out remote calls to stay under API rate limits.
package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Strategies accepted by New.
const (
	StrategyFixed       = "fixed"
	StrategyTokenBucket = "token_bucket"
	StrategyNone        = "none"
)

// Pacer blocks until the next remote call may proceed.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Fixed sleeps for Interval on every Wait, without jitter.
type Fixed struct {
	Interval time.Duration
}

// Wait sleeps for the interval or until ctx is done.
func (f Fixed) Wait(ctx context.Context) error {
	if f.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(f.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TokenBucket allows bursts up to Burst and refills one token per interval.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket returns a bucket refilling one token every interval.
func NewTokenBucket(interval time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

// Wait takes one token, blocking until one is available.
func (b *TokenBucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// None never waits.
type None struct{}

// Wait returns immediately unless ctx is already done.
func (None) Wait(ctx context.Context) error { return ctx.Err() }

// New builds a pacer for the named strategy.
func New(strategy string, interval time.Duration, burst int) (Pacer, error) {
	switch strategy {
	case "", StrategyFixed:
		return Fixed{Interval: interval}, nil
	case StrategyTokenBucket:
		return NewTokenBucket(interval, burst), nil
	case StrategyNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("pacing: unknown strategy %q", strategy)
	}
}
