// Package retry provides exponential backoff retry logic for API calls.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the total attempt budget, including the initial call.
	// MaxAttempts = 3 means one call plus up to two retries.
	MaxAttempts int
	// BackoffFactor seeds the delay sequence in seconds: factor, 2*factor,
	// 4*factor, ...
	BackoffFactor float64
	MaxDelay      time.Duration
	Jitter        bool
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		BackoffFactor: 0.3,
		MaxDelay:      10 * time.Second,
	}
}

// Do executes fn with exponential backoff. Only retryable errors
// (transient statuses and transport failures) trigger another attempt.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !slerrors.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := time.Duration(cfg.BackoffFactor * math.Pow(2, float64(attempt)) * float64(time.Second))
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		if cfg.Jitter {
			delay = time.Duration(float64(delay) * (0.5 + rand.Float64()*0.5))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
