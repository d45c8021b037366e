package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"addresseligibility/internal/eligibility/models"
	"addresseligibility/internal/platform/metrics"
	"addresseligibility/pkg/sentinel"
)

const (
	resultPrefix = "eligibility:"
	lookupPrefix = "address:lookup:"
)

// AddressCache fronts the two cache tiers: the address-lookup cache (raw
// component JSON keyed by address text) and the eligibility result cache
// (full responses keyed by the street:city:state:zip tuple). Every operation
// is best-effort: a failing backing store is logged and behaves as a miss or
// no-op, never as a request failure.
type AddressCache struct {
	kv      KeyValue
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Stats aggregates cache statistics for the admin surface.
type Stats struct {
	EligibilityEntries int   `json:"eligibility_entries"`
	TotalDBSize        int64 `json:"total_db_size"`
}

// Option configures an AddressCache.
type Option func(*AddressCache)

// WithMetrics attaches hit/miss counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *AddressCache) { c.metrics = m }
}

// New creates an AddressCache over a key-value store with the given TTL.
func New(kv KeyValue, ttl time.Duration, logger *slog.Logger, opts ...Option) *AddressCache {
	c := &AddressCache{kv: kv, ttl: ttl, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached lookup result (serialized address components) for
// an address string, if present.
func (c *AddressCache) Get(ctx context.Context, address string) (string, bool) {
	val, err := c.kv.Get(ctx, lookupPrefix+address)
	if errors.Is(err, sentinel.ErrNotFound) {
		c.metrics.CacheMiss("lookup")
		return "", false
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "address lookup cache read failed", "address", address, "error", err)
		c.metrics.CacheMiss("lookup")
		return "", false
	}
	c.metrics.CacheHit("lookup")
	return val, true
}

// Set caches a lookup result (serialized address components) for an address.
func (c *AddressCache) Set(ctx context.Context, address, value string) {
	if err := c.kv.Set(ctx, lookupPrefix+address, value, c.ttl); err != nil {
		c.logger.ErrorContext(ctx, "address lookup cache write failed", "address", address, "error", err)
	}
}

// GetCachedEligibility returns a cached eligibility response, if present.
func (c *AddressCache) GetCachedEligibility(ctx context.Context, key string) (*models.Response, bool) {
	val, err := c.kv.Get(ctx, resultPrefix+key)
	if errors.Is(err, sentinel.ErrNotFound) {
		c.metrics.CacheMiss("result")
		return nil, false
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache read failed", "key", key, "error", err)
		c.metrics.CacheMiss("result")
		return nil, false
	}

	var resp models.Response
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode cached eligibility response", "key", key, "error", err)
		c.metrics.CacheMiss("result")
		return nil, false
	}
	c.metrics.CacheHit("result")
	return &resp, true
}

// CacheEligibility stores an eligibility response under the derived cache
// key with the configured TTL.
func (c *AddressCache) CacheEligibility(ctx context.Context, key string, resp *models.Response) {
	val, err := json.Marshal(resp)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to encode eligibility response for cache", "key", key, "error", err)
		return
	}
	if err := c.kv.Set(ctx, resultPrefix+key, string(val), c.ttl); err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache write failed", "key", key, "error", err)
	}
}

// Evict removes one eligibility entry.
func (c *AddressCache) Evict(ctx context.Context, key string) {
	if _, err := c.kv.Delete(ctx, resultPrefix+key); err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache evict failed", "key", key, "error", err)
	}
}

// ClearAll removes every eligibility entry and returns how many were deleted.
func (c *AddressCache) ClearAll(ctx context.Context) int64 {
	keys, err := c.kv.Keys(ctx, resultPrefix+"*")
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache key scan failed", "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	deleted, err := c.kv.Delete(ctx, keys...)
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache clear failed", "error", err)
		return 0
	}
	c.logger.InfoContext(ctx, "cleared eligibility cache entries", "count", deleted)
	return deleted
}

// IsCached reports whether an eligibility entry exists for the key.
func (c *AddressCache) IsCached(ctx context.Context, key string) bool {
	ok, err := c.kv.Exists(ctx, resultPrefix+key)
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache existence check failed", "key", key, "error", err)
		return false
	}
	return ok
}

// TTLRemaining returns the remaining TTL for an eligibility entry in
// seconds: -2 if the key does not exist, -1 if it has no expiry. Errors
// degrade to the missing-key sentinel.
func (c *AddressCache) TTLRemaining(ctx context.Context, key string) int64 {
	ttl, err := c.kv.TTL(ctx, resultPrefix+key)
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache TTL read failed", "key", key, "error", err)
		return -2
	}
	if ttl < 0 {
		return int64(ttl) // -2 / -1 sentinels pass through
	}
	return int64(ttl / time.Second)
}

// UpdateTTL resets the TTL of an eligibility entry, reporting success.
func (c *AddressCache) UpdateTTL(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := c.kv.Expire(ctx, resultPrefix+key, ttl)
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache TTL update failed", "key", key, "error", err)
		return false
	}
	return ok
}

// GetStats returns aggregate cache statistics. Failures yield zero stats.
func (c *AddressCache) GetStats(ctx context.Context) Stats {
	var stats Stats

	keys, err := c.kv.Keys(ctx, resultPrefix+"*")
	if err != nil {
		c.logger.ErrorContext(ctx, "eligibility cache key scan failed", "error", err)
		return stats
	}
	stats.EligibilityEntries = len(keys)

	size, err := c.kv.DBSize(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "cache dbsize read failed", "error", err)
		return stats
	}
	stats.TotalDBSize = size
	return stats
}
