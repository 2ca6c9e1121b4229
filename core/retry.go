package core

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures exponential-backoff-with-jitter retry.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig mirrors the checkpoint-store write policy: 5
// attempts, 100ms base delay doubling each attempt, jittered.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Retry executes fn, retrying on error with exponential backoff and
// optional jitter, honoring ctx cancellation between attempts.
func Retry(ctx context.Context, cfg *RetryConfig, fn func(attempt int) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(attempt); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		if attempt > 1 {
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		wait := delay
		if cfg.JitterEnabled {
			jitter := time.Duration(float64(delay) * 0.25 * rand.Float64())
			wait += jitter
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w: %v", cfg.MaxAttempts, ErrMaxRetriesExceeded, lastErr)
}

// BackoffDuration computes base * 2^attempt, used by the batched data
// accessor's residual-key retry (0.1 * 2^attempt seconds).
func BackoffDuration(base time.Duration, attempt int) time.Duration {
	return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
}
