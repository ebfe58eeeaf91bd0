// Package integrations provides the shared HTTP layer for remote API clients.
//
// # Overview
//
// The [Client] type wraps [net/http] with the behavior every remote client
// needs:
//
//   - default headers merged with per-request headers
//   - status mapping to [ErrNotFound], [ErrUnauthorized] and [ErrNetwork]
//   - rate-limit detection (429, or 403 with an exhausted quota) surfaced as
//     [errors.RateLimitedError] carrying the Retry-After hint
//   - automatic retries for transient failures via [httputil.RetryWithBackoff]
//   - request and response events through [observability.HTTP]
//
// Host-specific clients live in subpackages:
//
//   - [github]: repository listing, metadata, raw files and archives
//
// # Usage
//
//	c := integrations.NewClient(map[string]string{"Accept": "application/json"})
//	var out payload
//	if err := c.Get(ctx, url, &out); err != nil {
//	    if errors.Is(err, integrations.ErrNotFound) { ... }
//	}
//
// Caching is not done here. Callers wrap fetches with [cache.Cached] so
// cache keys carry the repository version.
//
// [github]: github.com/matzehuels/repolens/pkg/integrations/github
// [errors.RateLimitedError]: github.com/matzehuels/repolens/pkg/errors.RateLimitedError
// [httputil.RetryWithBackoff]: github.com/matzehuels/repolens/pkg/httputil.RetryWithBackoff
// [observability.HTTP]: github.com/matzehuels/repolens/pkg/observability.HTTP
// [cache.Cached]: github.com/matzehuels/repolens/pkg/cache.Cached
package integrations
