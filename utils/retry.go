package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxElapsed  time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off until it succeeds, the attempts
// are exhausted, MaxElapsed passes or ctx is done.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	if r.BaseDelay > 0 {
		eb.InitialInterval = r.BaseDelay
	}
	eb.MaxElapsedTime = r.MaxElapsed

	var b backoff.BackOff = eb
	if r.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(r.MaxAttempts-1))
	}
	b = backoff.WithContext(b, ctx)

	attempt := 0
	err := backoff.RetryNotify(
		func() error {
			attempt++
			return fn()
		},
		b,
		func(err error, d time.Duration) {
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d): %v, retrying in %v",
					operationName, attempt, err, d)
			}
		},
	)
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempt, err)
	}
	return nil
}
