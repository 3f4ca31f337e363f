// Package ratelimit wraps golang.org/x/time/rate behind the two pacing
// primitives the scanner needs: a serialized minimum-interval gate and a
// soft inter-candidate pacer.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate serializes callers so that consecutive acquisitions are spaced at
// least interval apart, across all goroutines sharing the gate. It is the
// single global mutual-exclusion point for the sentiment client.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate with the given minimum spacing. Burst is pinned to
// one so a quiet period never accumulates credit for a request burst.
func NewGate(interval time.Duration) *Gate {
	return &Gate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the caller may proceed or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now without waiting.
func (g *Gate) Allow() bool {
	return g.limiter.Allow()
}

// Pacer spaces loop iterations by a fixed delay. It is a soft self-throttle
// against per-symbol endpoints, not a correctness bound; the first call
// returns immediately.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer with the given inter-iteration delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next iteration may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
