package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds a [MemoryCache] created with size <= 0.
const DefaultMemoryEntries = 4096

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a bounded in-process LRU with per-entry expiry. The
// [Store] also uses one as its fallback when the configured backend fails.
type MemoryCache struct {
	lru *lru.Cache[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache creates an LRU holding at most size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	// lru.New only fails for non-positive sizes.
	l, _ := lru.New[string, memoryEntry](size)
	return &MemoryCache{lru: l, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *MemoryCache) Len() int { return c.lru.Len() }

// Purge drops every entry.
func (c *MemoryCache) Purge() { c.lru.Purge() }

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
