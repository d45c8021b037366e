//go:build integration

package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"addresseligibility/internal/cache"
	"addresseligibility/internal/eligibility/models"
	"addresseligibility/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.AddressCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.cache = cache.New(cache.NewRedisKV(s.redis.Client), time.Hour, logger)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestEligibilityRoundTrip() {
	ctx := context.Background()

	resp := &models.Response{
		Eligible:        true,
		Reason:          "Address is eligible for service (Zone: bay, Confidence: 90.00%)",
		MatchedZones:    []string{"bay"},
		ConfidenceScore: 0.9,
		CheckedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	s.cache.CacheEligibility(ctx, "key", resp)

	got, ok := s.cache.GetCachedEligibility(ctx, "key")
	s.Require().True(ok)
	s.Equal(resp.Eligible, got.Eligible)
	s.Equal(resp.Reason, got.Reason)
	s.Equal(resp.MatchedZones, got.MatchedZones)
	s.Equal(resp.ConfidenceScore, got.ConfidenceScore)
}

func (s *RedisCacheSuite) TestLookupTier() {
	ctx := context.Background()

	_, ok := s.cache.Get(ctx, "1400 Park Ave")
	s.False(ok)

	s.cache.Set(ctx, "1400 Park Ave", `{"city":"Alameda"}`)

	val, ok := s.cache.Get(ctx, "1400 Park Ave")
	s.Require().True(ok)
	s.Equal(`{"city":"Alameda"}`, val)
}

func (s *RedisCacheSuite) TestAdminOperations() {
	ctx := context.Background()

	s.cache.CacheEligibility(ctx, "a", &models.Response{Eligible: true})
	s.cache.CacheEligibility(ctx, "b", &models.Response{})

	s.True(s.cache.IsCached(ctx, "a"))

	remaining := s.cache.TTLRemaining(ctx, "a")
	s.Greater(remaining, int64(3500))
	s.LessOrEqual(remaining, int64(3600))

	s.True(s.cache.UpdateTTL(ctx, "a", 2*time.Hour))
	s.Greater(s.cache.TTLRemaining(ctx, "a"), int64(3600))

	stats := s.cache.GetStats(ctx)
	s.Equal(2, stats.EligibilityEntries)
	s.Equal(int64(2), stats.TotalDBSize)

	s.cache.Evict(ctx, "a")
	s.False(s.cache.IsCached(ctx, "a"))

	s.Equal(int64(1), s.cache.ClearAll(ctx))
	s.Equal(int64(-2), s.cache.TTLRemaining(ctx, "b"))

	// A key persisted without expiry reports -1.
	s.Require().NoError(s.redis.Client.Set(ctx, "eligibility:pinned", "{}", 0).Err())
	s.Equal(int64(-1), s.cache.TTLRemaining(ctx, "pinned"))
}
