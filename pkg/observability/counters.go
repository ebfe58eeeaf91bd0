package observability

import (
	"context"
	"sync"
	"time"
)

// CacheCounters is a CacheHooks implementation that tallies hits, misses
// and writes per category. The CLI uses it to print a run summary.
type CacheCounters struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
	sets   map[string]int
}

// NewCacheCounters returns an empty counter set.
func NewCacheCounters() *CacheCounters {
	return &CacheCounters{
		hits:   map[string]int{},
		misses: map[string]int{},
		sets:   map[string]int{},
	}
}

func (c *CacheCounters) OnCacheHit(_ context.Context, category string) {
	c.mu.Lock()
	c.hits[category]++
	c.mu.Unlock()
}

func (c *CacheCounters) OnCacheMiss(_ context.Context, category string) {
	c.mu.Lock()
	c.misses[category]++
	c.mu.Unlock()
}

func (c *CacheCounters) OnCacheSet(_ context.Context, category string, _ int) {
	c.mu.Lock()
	c.sets[category]++
	c.mu.Unlock()
}

// Hits returns the hit count for category.
func (c *CacheCounters) Hits(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[category]
}

// Misses returns the miss count for category.
func (c *CacheCounters) Misses(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses[category]
}

// Sets returns the write count for category.
func (c *CacheCounters) Sets(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[category]
}

// Totals returns hit and miss counts summed over all categories.
func (c *CacheCounters) Totals() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.hits {
		hits += n
	}
	for _, n := range c.misses {
		misses += n
	}
	return hits, misses
}

// OracleCounters tallies oracle calls and fallbacks.
type OracleCounters struct {
	NoopOracleHooks
	mu        sync.Mutex
	calls     int
	failures  int
	fallbacks int
	elapsed   time.Duration
}

func (o *OracleCounters) OnOracleCall(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.elapsed += d
	if err != nil {
		o.failures++
	}
}

func (o *OracleCounters) OnFallback(context.Context, string, string) {
	o.mu.Lock()
	o.fallbacks++
	o.mu.Unlock()
}

// Snapshot returns call, failure and fallback counts.
func (o *OracleCounters) Snapshot() (calls, failures, fallbacks int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls, o.failures, o.fallbacks
}
