package cache

import (
	"context"
	"encoding/json"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/repolens/pkg/observability"
)

// StoreOptions configures a [Store]. Zero values select defaults.
type StoreOptions struct {
	// TTLs maps categories to lifetimes. Nil selects [DefaultTTLs].
	TTLs TTLs

	// Logger receives debug records for swallowed failures. Nil discards.
	Logger *log.Logger

	// FallbackEntries bounds the in-process fallback LRU.
	FallbackEntries int
}

// Store is the category-aware, never-raising cache façade. Values are JSON
// encoded. A failing backend degrades the Store to its in-process fallback
// for the failed operation; the next operation tries the backend again.
//
// A Store is safe for concurrent use.
type Store struct {
	backend  Cache
	fallback *MemoryCache
	ttls     TTLs
	logger   *log.Logger
	flight   singleflight.Group
	failures atomic.Int64
}

// NewStore wraps backend. A nil backend behaves like [NullCache].
func NewStore(backend Cache, opts StoreOptions) *Store {
	if backend == nil {
		backend = NewNullCache()
	}
	if opts.TTLs == nil {
		opts.TTLs = DefaultTTLs()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Store{
		backend:  backend,
		fallback: NewMemoryCache(opts.FallbackEntries),
		ttls:     opts.TTLs,
		logger:   opts.Logger,
	}
}

// NewMemoryStore returns a Store over a fresh [MemoryCache]. Handy in tests.
func NewMemoryStore() *Store {
	return NewStore(NewMemoryCache(0), StoreOptions{})
}

// Get decodes the value stored under key into v and reports whether it was
// found. Backend errors and undecodable entries are misses.
func (s *Store) Get(ctx context.Context, key string, v any) bool {
	category := CategoryOf(key)

	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.failures.Add(1)
		s.logger.Debug("cache backend get failed", "category", category, "err", err)
		ok = false
	}
	if !ok {
		data, ok, _ = s.fallback.Get(ctx, key)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, category)
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Debug("cache entry undecodable", "category", category, "err", err)
		observability.Cache().OnCacheMiss(ctx, category)
		return false
	}
	observability.Cache().OnCacheHit(ctx, category)
	return true
}

// Set encodes v and stores it under key with the TTL of category.
// Failures are logged and swallowed.
func (s *Store) Set(ctx context.Context, category, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Debug("cache value unencodable", "category", category, "err", err)
		return
	}
	ttl := s.ttls.For(category)

	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		s.failures.Add(1)
		s.logger.Debug("cache backend set failed, using fallback", "category", category, "err", err)
		_ = s.fallback.Set(ctx, key, data, ttl)
	}
	observability.Cache().OnCacheSet(ctx, category, len(data))
}

// Delete removes key from the backend and the fallback.
func (s *Store) Delete(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Debug("cache backend delete failed", "err", err)
	}
	_ = s.fallback.Delete(ctx, key)
}

// TTL returns the lifetime applied to category.
func (s *Store) TTL(category string) time.Duration {
	return s.ttls.For(category)
}

// BackendFailures returns how many backend operations have failed.
func (s *Store) BackendFailures() int64 { return s.failures.Load() }

// Backend returns the wrapped backend.
func (s *Store) Backend() Cache { return s.backend }

// Close closes the backend.
func (s *Store) Close() error {
	_ = s.fallback.Close()
	return s.backend.Close()
}
