// Package cache declares the cache contract the directory-search handler
// depends on, independent of whichever backend implements it.
package cache

import "time"

// Cache is the interface the search-results cache is wired against; the
// ristretto subpackage is the only implementation, but handlers never
// import it directly.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Set stores a value with cost, returning true if successful.
	Set(key K, value V, cost int64) bool

	// SetWithTTL stores a value with cost and TTL, returning true if
	// successful. The search cache uses this to bound how long a stale
	// directory listing can be served (handlers.SearchCacheTTL).
	SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool
}
