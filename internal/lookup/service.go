package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"addresseligibility/internal/geocode"
)

// Cache is the lookup-tier cache the service reads through. Both methods are
// best-effort; the implementation never surfaces errors.
type Cache interface {
	Get(ctx context.Context, address string) (string, bool)
	Set(ctx context.Context, address, value string)
}

// Service resolves address text to components, checking the cache before
// calling the geocoder and writing fresh results back through.
type Service struct {
	cache    Cache
	geocoder geocode.Geocoder
	logger   *slog.Logger
}

// NewService creates a lookup service.
func NewService(cache Cache, geocoder geocode.Geocoder, logger *slog.Logger) *Service {
	return &Service{cache: cache, geocoder: geocoder, logger: logger}
}

// Lookup resolves an address. Empty input and geocoder misses both report
// not-found; only geocoder hits are cached.
func (s *Service) Lookup(ctx context.Context, address string) (geocode.Components, bool) {
	if strings.TrimSpace(address) == "" {
		return nil, false
	}

	if cached, ok := s.cache.Get(ctx, address); ok {
		var comps geocode.Components
		if err := json.Unmarshal([]byte(cached), &comps); err == nil {
			return comps, true
		}
		s.logger.WarnContext(ctx, "discarding undecodable cached lookup", "address", address)
	}

	comps, ok := s.geocoder.Geocode(ctx, address)
	if !ok {
		return nil, false
	}

	if encoded, err := json.Marshal(comps); err == nil {
		s.cache.Set(ctx, address, string(encoded))
	}
	return comps, true
}
