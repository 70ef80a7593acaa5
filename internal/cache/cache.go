package cache

import (
	"context"
	"time"
)

// Cache is a best-effort TTL key-value cache. It is never a source of
// correctness, only latency reduction: callers must treat every error as a
// miss and carry on.
type Cache interface {
	// Get unmarshals the cached value for key into dest, reporting whether
	// the key was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Del removes the given keys.
	Del(ctx context.Context, keys ...string) error

	// DelPattern removes every key matching a glob pattern, e.g.
	// "availability:acc:123:*".
	DelPattern(ctx context.Context, pattern string) error
}
