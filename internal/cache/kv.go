package cache

import (
	"context"
	"time"
)

// KeyValue is the backing-store contract both cache tiers sit on. Get returns
// sentinel.ErrNotFound for absent keys; every other error means the store is
// unhealthy and callers degrade to miss semantics.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining lifetime of a key: -2 when the key does not
	// exist, -1 when it exists without an expiry (Redis convention).
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Expire resets a key's TTL, reporting whether the key existed.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Keys returns keys matching a glob pattern (prefix* in practice).
	Keys(ctx context.Context, pattern string) ([]string, error)

	// DBSize returns the total key count in the backing store.
	DBSize(ctx context.Context) (int64, error)
}
