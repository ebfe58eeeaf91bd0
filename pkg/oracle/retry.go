package oracle

import (
	"context"
	"time"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/httputil"
)

// Retrying re-runs failed completions up to retries more times, doubling
// delay between attempts. Contract violations and cancellations are
// returned without retrying.
func Retrying(o Oracle, retries int, delay time.Duration) Oracle {
	if retries <= 0 {
		return o
	}
	return Func(func(ctx context.Context, prompt string) (string, error) {
		var out string
		err := httputil.Retry(ctx, retries+1, delay, func() error {
			text, err := o.Complete(ctx, prompt)
			if err == nil {
				out = text
				return nil
			}
			if ctx.Err() != nil || rlerrors.Is(err, rlerrors.ErrCodeOracleContract) {
				return err
			}
			return &httputil.RetryableError{Err: err}
		})
		if err != nil {
			return "", unwrapRetryable(err)
		}
		return out, nil
	})
}

func unwrapRetryable(err error) error {
	if r, ok := err.(*httputil.RetryableError); ok {
		return r.Err
	}
	return err
}
