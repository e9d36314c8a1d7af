// Package cache provides the process-wide response cache. Values are
// stored as marshaled JSON so entries can be replayed to clients without
// re-encoding. Two backends exist: an in-memory store (default) and Redis
// (CACHE_TYPE=redis).
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Cache is the store shared by the response middleware, the vote service
// (invalidation on writes) and the diagnostics battery.
//
// Get returns (nil, nil) on a miss. Invalidate removes every key matching
// the glob pattern, where "*" expands to any run of characters and the
// match is unanchored.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
	Clear(ctx context.Context) error
	Close() error
}

// Key derives a cache key from an endpoint prefix and its query
// parameters. Parameters are sorted by name so semantically identical
// requests map to the same key regardless of parameter order.
func Key(prefix string, params map[string]string) string {
	if len(params) == 0 {
		return prefix + ":"
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	return prefix + ":" + strings.Join(pairs, "&")
}
