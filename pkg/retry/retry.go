// Package retry runs operations with bounded exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy bounds the number of attempts and the delay between them.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Retryable reports whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

// DefaultPolicy returns three attempts starting at 50ms and capped at 1s.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 50 * time.Millisecond,
		MaxDelay:  time.Second,
		Retryable: retryable,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted, or ctx is done.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := range attempts {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || (p.Retryable != nil && !p.Retryable(err)) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (p Policy) delay(attempt int) time.Duration {
	attempt = min(max(attempt, 0), 30)
	d := p.BaseDelay * time.Duration(1<<uint(attempt))

	// ±25% jitter
	jitter := time.Duration(rand.Float64() * float64(d) * 0.5)
	d = d + jitter - d/4

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
