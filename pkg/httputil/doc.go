// Package httputil provides retry helpers shared by the repository host
// client and the oracle backends.
//
// [Retry] re-runs an operation only when its error is wrapped in
// [RetryableError]; everything else returns immediately. Wrap network
// failures, 5xx responses and 429 responses at the call site:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// A retryable error that also carries a rate-limit hint (see
// errors.RateLimitedError) waits for the advertised interval instead of the
// backoff delay, capped at [MaxRateLimitWait].
//
// Defaults: 3 attempts, 1 second initial delay, doubling each retry.
package httputil
