// Package ristretto backs the cache.Cache contract with
// github.com/dgraph-io/ristretto/v2. The server's only cache consumer is
// the directory-search handler, which stores short-lived result slices
// keyed by "query:limit", so the presets here lean small.
package ristretto

import (
	"fmt"
	"time"

	ristr "github.com/dgraph-io/ristretto/v2"

	"github.com/ProphetRu/NovaChatServer/cache"
)

// Cache adapts a ristretto cache to cache.Cache for string keys.
type Cache[V any] struct {
	c *ristr.Cache[string, V]
}

var _ cache.Cache[string, any] = (*Cache[any])(nil)

// sizing maps a named preset to ristretto parameters. Counters track
// roughly 10x the expected live key count so admission stays accurate.
type sizing struct {
	counters int64
	maxCost  int64
	buffer   int64
}

var presets = map[string]sizing{
	"small":      {counters: 1e5, maxCost: 1 << 26, buffer: 64},  // 64 MiB; default for search results
	"medium":     {counters: 1e6, maxCost: 1 << 28, buffer: 128}, // 256 MiB
	"large":      {counters: 1e7, maxCost: 1 << 30, buffer: 256}, // 1 GiB
	"very-large": {counters: 4e7, maxCost: 1 << 32, buffer: 512}, // 4 GiB
}

// New builds a cache sized by one of the named presets: "small", "medium",
// "large", or "very-large". An unknown preset name is a construction error.
func New[V any](preset string) (cache.Cache[string, V], error) {
	params, ok := presets[preset]
	if !ok {
		return nil, fmt.Errorf("ristretto: unknown cache preset %q", preset)
	}

	inner, err := ristr.NewCache[string, V](&ristr.Config[string, V]{
		NumCounters: params.counters,
		MaxCost:     params.maxCost,
		BufferItems: params.buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: create cache: %w", err)
	}
	return &Cache[V]{c: inner}, nil
}

// Get returns the cached value for key, if present and not yet evicted.
func (rc *Cache[V]) Get(key string) (V, bool) {
	value, found := rc.c.Get(key)
	if !found {
		var zero V
		return zero, false
	}
	return value, true
}

// Set stores value under key with the given admission cost. Writes are
// applied asynchronously; a false return means the entry was dropped.
func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.c.Set(key, value, cost)
}

// SetWithTTL stores value under key, evicting it once ttl elapses. The
// search handler uses this to bound how stale a cached directory listing
// can get.
func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return rc.c.SetWithTTL(key, value, cost, ttl)
}
