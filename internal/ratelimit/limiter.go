// Package ratelimit spaces out requests per source and retries rate-limited
// calls with exponential backoff.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinDelay is the minimum spacing between requests to one source.
const DefaultMinDelay = time.Second

// Limiter enforces per-source request spacing. Each source key gets its own
// token bucket so a slow source never throttles the others.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
}

// NewLimiter creates a limiter with the given spacing. Zero or negative
// delay falls back to DefaultMinDelay.
func NewLimiter(minDelay time.Duration) *Limiter {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// Wait blocks until the source's next request slot, or until ctx is done.
func (l *Limiter) Wait(ctx context.Context, sourceKey string) error {
	return l.forSource(sourceKey).Wait(ctx)
}

func (l *Limiter) forSource(sourceKey string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[sourceKey]
	if !ok {
		// Burst of 1: the first call is free, every later call waits out
		// the full interval.
		limiter = rate.NewLimiter(rate.Every(l.minDelay), 1)
		l.limiters[sourceKey] = limiter
	}
	return limiter
}
