package httputil

import (
	"context"
	"errors"
	"time"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
)

// MaxRateLimitWait caps how long a single Retry-After hint may stall a retry.
const MaxRateLimitWait = 30 * time.Second

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// Only errors wrapped with [RetryableError] are retried. The delay doubles
// after each failed attempt unless the error carries a rate-limit hint.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			wait := delay
			if hint := retryAfter(err); hint > 0 {
				wait = min(hint, MaxRateLimitWait)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with 3 attempts and a 1 second initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

func retryAfter(err error) time.Duration {
	var rl *rlerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return time.Duration(rl.RetryAfter) * time.Second
	}
	return 0
}
