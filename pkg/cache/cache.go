// Package cache provides the byte-level cache backends and the category-aware
// [Store] used by every repolens component.
//
// # Backends
//
// A [Cache] stores opaque bytes with a TTL:
//   - [RedisCache]: shared store for multi-process deployments
//   - [MongoCache]: durable document store with a TTL index
//   - [SQLiteCache]: single-file durable store
//   - [FileCache]: JSON files under the user cache directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU with per-entry expiry
//   - [NullCache]: never stores anything
//
// # Store
//
// [Store] wraps a backend with JSON encoding, per-category TTLs and a
// never-raising contract: backend and decode failures are logged and turned
// into misses. When the backend fails, the Store falls back to an in-process
// [MemoryCache] so work is still done at most once per process.
//
// # Keys
//
// [Key] derives fixed-width keys of the form rl:<category>:<sha256>. The
// category selects the TTL through [TTLs].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-level key/value backend with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A missing or expired
	// key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Categories used by repolens components. Each maps to a TTL in [TTLs].
const (
	CategoryRepos        = "repos"
	CategoryTopics       = "topics"
	CategoryDependencies = "dependencies"
	CategoryLanguages    = "languages"
	CategoryReadme       = "readme"
	CategoryStructure    = "structure"
	CategoryFingerprint  = "fingerprint"
	CategoryScore        = "score"
	CategorySummary      = "summary"
	CategoryProjectBase  = "project_base"
	CategoryOracleRaw    = "oracle_raw"
)

// DefaultTTL applies to categories missing from the TTL table.
const DefaultTTL = 24 * time.Hour

// TTLs maps a category to its time-to-live.
type TTLs map[string]time.Duration

// DefaultTTLs returns the built-in TTL table.
func DefaultTTLs() TTLs {
	return TTLs{
		CategoryRepos:        24 * time.Hour,
		CategoryTopics:       24 * time.Hour,
		CategoryDependencies: 12 * time.Hour,
		CategoryLanguages:    7 * 24 * time.Hour,
		CategoryReadme:       24 * time.Hour,
		CategoryStructure:    24 * time.Hour,
		CategoryFingerprint:  7 * 24 * time.Hour,
		CategoryScore:        7 * 24 * time.Hour,
		CategorySummary:      7 * 24 * time.Hour,
		CategoryProjectBase:  30 * 24 * time.Hour,
		CategoryOracleRaw:    7 * 24 * time.Hour,
	}
}

// For returns the TTL for category, or [DefaultTTL] if unknown.
func (t TTLs) For(category string) time.Duration {
	if d, ok := t[category]; ok && d > 0 {
		return d
	}
	return DefaultTTL
}

// With returns a copy of t with overrides applied. Non-positive overrides
// are ignored.
func (t TTLs) With(overrides map[string]time.Duration) TTLs {
	out := make(TTLs, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}
