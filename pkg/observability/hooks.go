// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through small hook interfaces; the
// binary decides what (if anything) listens. Nothing here depends on a
// metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    observability.SetFingerprintHooks(&myFingerprintHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Fingerprint().OnBuildStart(ctx, "octo/demo")
//	// ... fetch, parse, extract ...
//	observability.Fingerprint().OnBuildComplete(ctx, "octo/demo", false, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Fingerprint Hooks
// =============================================================================

// FingerprintHooks receives events from the fingerprint builder.
type FingerprintHooks interface {
	// OnBuildStart is called before a repository is looked up or fetched.
	OnBuildStart(ctx context.Context, repo string)

	// OnStage is called as the builder enters each state.
	OnStage(ctx context.Context, repo, stage string)

	// OnBuildComplete is called once per build. cached is true when the
	// fingerprint came from the cache without any fetches.
	OnBuildComplete(ctx context.Context, repo string, cached bool, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, category string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, category string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, category string, size int)
}

// =============================================================================
// Oracle Hooks
// =============================================================================

// OracleHooks receives events from reasoning-oracle calls.
type OracleHooks interface {
	// OnOracleCall records a completed request to the oracle.
	OnOracleCall(ctx context.Context, provider string, promptBytes, responseBytes int, duration time.Duration, err error)

	// OnFallback records a result that was replaced by a fallback value.
	OnFallback(ctx context.Context, stage, reason string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFingerprintHooks is a no-op implementation of FingerprintHooks.
type NoopFingerprintHooks struct{}

func (NoopFingerprintHooks) OnBuildStart(context.Context, string)    {}
func (NoopFingerprintHooks) OnStage(context.Context, string, string) {}
func (NoopFingerprintHooks) OnBuildComplete(context.Context, string, bool, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopOracleHooks is a no-op implementation of OracleHooks.
type NoopOracleHooks struct{}

func (NoopOracleHooks) OnOracleCall(context.Context, string, int, int, time.Duration, error) {}
func (NoopOracleHooks) OnFallback(context.Context, string, string)                           {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	fingerprintHooks FingerprintHooks = NoopFingerprintHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	oracleHooks      OracleHooks      = NoopOracleHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetFingerprintHooks registers custom fingerprint hooks. Nil is ignored.
func SetFingerprintHooks(h FingerprintHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fingerprintHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetOracleHooks registers custom oracle hooks. Nil is ignored.
func SetOracleHooks(h OracleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		oracleHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Fingerprint returns the registered fingerprint hooks.
func Fingerprint() FingerprintHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fingerprintHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Oracle returns the registered oracle hooks.
func Oracle() OracleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return oracleHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	fingerprintHooks = NoopFingerprintHooks{}
	cacheHooks = NoopCacheHooks{}
	oracleHooks = NoopOracleHooks{}
	httpHooks = NoopHTTPHooks{}
}
