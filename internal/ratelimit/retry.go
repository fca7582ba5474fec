package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryPolicy controls the backoff loop for rate-limited calls.
type RetryPolicy struct {
	MaxRetries    int
	BackoffFactor float64
	BaseDelay     time.Duration
}

// NewRetryPolicy returns the default policy: five retries, doubling delays.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:    5,
		BackoffFactor: 2.0,
		BaseDelay:     time.Second,
	}
}

// rateLimitPhrases mark errors worth retrying. Anything else fails fast.
var rateLimitPhrases = []string{
	"429",
	"rate limit",
	"too many requests",
	"too many searches",
	"slow down",
}

// IsRateLimited reports whether err looks like a rate-limit rejection.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range rateLimitPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// ParseRetryAfter interprets a Retry-After header value as either delay
// seconds or an HTTP date. Returns 0 when unparseable.
func ParseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}

// RetryAfterError carries a server-provided wait hint through the retry loop.
type RetryAfterError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string { return e.Err.Error() }

func (e *RetryAfterError) Unwrap() error { return e.Err }

// Execute runs fn, retrying rate-limited failures with exponential backoff.
// A RetryAfterError's hint overrides the computed delay. Non-rate-limit
// errors return immediately.
func (p *RetryPolicy) Execute(ctx context.Context, logger arbor.ILogger, sourceKey string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRateLimited(lastErr) {
			return lastErr
		}
		if attempt == p.MaxRetries {
			break
		}

		delay := p.backoff(attempt)
		if rae, ok := lastErr.(*RetryAfterError); ok && rae.RetryAfter > 0 {
			delay = rae.RetryAfter
		}

		logger.Debug().
			Str("source", sourceKey).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(lastErr).
			Msg("Rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	logger.Warn().
		Str("source", sourceKey).
		Int("max_retries", p.MaxRetries).
		Err(lastErr).
		Msg("Retry attempts exhausted")
	return lastErr
}

func (p *RetryPolicy) backoff(attempt int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.BackoffFactor
	}
	return time.Duration(delay)
}
