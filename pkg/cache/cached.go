package cache

import (
	"context"
)

// Cached returns the value for (category, fullName, args), computing it with
// fn on a miss.
//
// A hit returns the stored value unchanged; a stored null yields the zero
// value. On a miss fn runs exactly once per key even under concurrent
// callers. Its result is stored on success; on failure an explicit null is
// stored so the failure is not retried until the entry expires, and the zero
// value is returned. Failures caused by ctx cancellation are not stored.
func Cached[T any](ctx context.Context, s *Store, category, fullName string, fn func(context.Context) (T, error), args ...string) T {
	key := Key(category, append([]string{fullName}, args...)...)

	v, _, _ := s.flight.Do(key, func() (any, error) {
		var stored *T
		if s.Get(ctx, key, &stored) {
			if stored == nil {
				var zero T
				return zero, nil
			}
			return *stored, nil
		}

		result, err := fn(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation is not a result worth remembering.
				var zero T
				return zero, nil
			}
			s.logger.Debug("cached call failed, storing null", "category", category, "repo", fullName, "err", err)
			s.Set(ctx, category, key, nil)
			var zero T
			return zero, nil
		}
		s.Set(ctx, category, key, result)
		return result, nil
	})
	out, _ := v.(T)
	return out
}
