package oracle

import (
	"context"

	"github.com/matzehuels/repolens/pkg/cache"
)

// Cached memoizes successful responses of an Oracle by exact prompt.
// Failures are never stored.
type Cached struct {
	Oracle Oracle
	Store  *cache.Store

	// Namespace separates models so a provider switch does not reuse
	// answers. Usually "provider:model".
	Namespace string
}

// NewCached wraps o.
func NewCached(o Oracle, store *cache.Store, namespace string) *Cached {
	return &Cached{Oracle: o, Store: store, Namespace: namespace}
}

// Complete returns the stored response for prompt or asks the wrapped oracle.
func (c *Cached) Complete(ctx context.Context, prompt string) (string, error) {
	key := cache.Key(cache.CategoryOracleRaw, c.Namespace, prompt)
	var out string
	if c.Store.Get(ctx, key, &out) {
		return out, nil
	}
	out, err := c.Oracle.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.Store.Set(ctx, cache.CategoryOracleRaw, key, out)
	return out, nil
}
