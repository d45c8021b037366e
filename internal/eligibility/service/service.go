// Package service orchestrates eligibility checks: result cache, preloaded
// address book, stored verdicts, then the zone stores and rule engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"addresseligibility/internal/address"
	"addresseligibility/internal/eligibility/models"
	"addresseligibility/internal/eligibility/rules"
	"addresseligibility/internal/lookup"
	"addresseligibility/internal/platform/metrics"
	"addresseligibility/internal/zone"
	"addresseligibility/pkg/requestcontext"
	"addresseligibility/pkg/sentinel"
)

// ZoneStore is the subset of zone queries the check path needs.
type ZoneStore interface {
	ByZipCode(ctx context.Context, zip string) ([]*zone.Zone, error)
	ByCityState(ctx context.Context, city, state string) ([]*zone.Zone, error)
	ByCoordinates(ctx context.Context, lat, lon float64) ([]*zone.Zone, error)
}

// AddressStore persists checked addresses and their verdicts.
type AddressStore interface {
	Save(ctx context.Context, a *address.Address) (*address.Address, error)
	FindByIdentity(ctx context.Context, street, city, state, zip string) (*address.Address, error)
}

// ResultCache memoizes full responses by the derived cache key.
type ResultCache interface {
	GetCachedEligibility(ctx context.Context, key string) (*models.Response, bool)
	CacheEligibility(ctx context.Context, key string, resp *models.Response)
}

// PreloadedSource answers curated-address lookups by street text.
type PreloadedSource interface {
	Lookup(street string) (lookup.PreloadedAddress, bool)
}

// Service runs the full eligibility check pipeline.
type Service struct {
	zones     ZoneStore
	addresses AddressStore
	cache     ResultCache
	preloaded PreloadedSource
	engine    *rules.Engine
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches check counters and latency observation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New wires the check pipeline.
func New(zones ZoneStore, addresses AddressStore, cache ResultCache,
	preloaded PreloadedSource, engine *rules.Engine, logger *slog.Logger, opts ...Option) *Service {

	s := &Service{
		zones:     zones,
		addresses: addresses,
		cache:     cache,
		preloaded: preloaded,
		engine:    engine,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check runs one eligibility check. The request must already be validated
// and normalized by the transport layer.
func (s *Service) Check(ctx context.Context, req *models.Request) (*models.Response, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCheckDuration(time.Since(start)) }()

	key := req.CacheKey()

	if cached, ok := s.cache.GetCachedEligibility(ctx, key); ok {
		s.logger.DebugContext(ctx, "eligibility cache hit", "key", key)
		cached.CacheHit = true
		cached.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.recordOutcome(cached.Eligible, "cache")
		return cached, nil
	}

	if resp, ok := s.checkPreloaded(ctx, req, start); ok {
		s.cache.CacheEligibility(ctx, key, resp)
		s.recordOutcome(resp.Eligible, "preloaded")
		return resp, nil
	}

	existing, err := s.addresses.FindByIdentity(ctx,
		req.StreetAddress, req.City, req.State, req.ZipCode)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "address lookup failed, continuing with evaluation", "error", err)
	}
	if existing != nil && existing.HasVerdict() {
		s.logger.DebugContext(ctx, "reusing stored verdict", "address_id", existing.ID)
		resp := s.responseFromAddress(ctx, existing)
		resp.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.recordOutcome(resp.Eligible, "database")
		return resp, nil
	}

	result, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	saved := s.saveVerdict(ctx, req, existing, result)

	resp := s.buildResponse(ctx, req, result, saved)
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.cache.CacheEligibility(ctx, key, resp)
	s.recordOutcome(resp.Eligible, "engine")
	return resp, nil
}

// checkPreloaded serves curated addresses with an embedded verdict. These
// bypass zone scoring entirely and report full confidence.
func (s *Service) checkPreloaded(ctx context.Context, req *models.Request, start time.Time) (*models.Response, bool) {
	entry, ok := s.preloaded.Lookup(req.StreetAddress)
	if !ok || !entry.HasVerdict() {
		return nil, false
	}

	eligible := entry.IsEligible()
	s.logger.InfoContext(ctx, "preloaded address matched",
		"street", req.StreetAddress, "eligible", eligible)

	details := &models.AddressDetails{
		StreetAddress:  orDefault(entry.Street, req.StreetAddress),
		StreetAddress2: req.StreetAddress2,
		City:           orDefault(entry.City, req.City),
		State:          orDefault(entry.State, req.State),
		ZipCode:        orDefault(entry.Zip, req.ZipCode),
		Country:        orDefault(entry.Country, req.Country),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}
	details.FormattedAddress = formatDetails(details)

	var reason string
	var matched []string
	if eligible {
		reason = fmt.Sprintf("Address is in eligible region: %s County, %s", entry.County, entry.State)
		matched = []string{entry.County + ", " + entry.State}
	} else {
		reason = fmt.Sprintf("Address is not in an eligible region: %s County, %s", entry.County, entry.State)
	}

	return &models.Response{
		Eligible:         eligible,
		Reason:           reason,
		Address:          details,
		MatchedZones:     matched,
		ConfidenceScore:  1.0,
		CheckedAt:        requestcontext.Now(ctx),
		CacheHit:         false,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, true
}

// evaluate fans the three zone queries out concurrently, merges the matches
// in a fixed order and hands them to the engine.
func (s *Service) evaluate(ctx context.Context, req *models.Request) (rules.Result, error) {
	var byZip, byCity, byCoords []*zone.Zone

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byZip, err = s.zones.ByZipCode(gctx, req.ZipCode)
		return err
	})
	g.Go(func() error {
		var err error
		byCity, err = s.zones.ByCityState(gctx, req.City, req.State)
		return err
	})
	if req.CheckCoordinates && req.HasCoordinates() {
		g.Go(func() error {
			var err error
			byCoords, err = s.zones.ByCoordinates(gctx, *req.Latitude, *req.Longitude)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return rules.Result{}, fmt.Errorf("query eligibility zones: %w", err)
	}

	matched := make([]*zone.Zone, 0, len(byZip)+len(byCity)+len(byCoords))
	matched = append(matched, byZip...)
	matched = append(matched, byCity...)
	matched = append(matched, byCoords...)

	cand := rules.Candidate{
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	return s.engine.Evaluate(cand, matched), nil
}

// saveVerdict persists the decision on the address record. Failures are
// logged and the check continues; the response never depends on the write.
func (s *Service) saveVerdict(ctx context.Context, req *models.Request, existing *address.Address, result rules.Result) *address.Address {
	a := existing
	if a == nil {
		a = &address.Address{
			StreetAddress:  req.StreetAddress,
			StreetAddress2: req.StreetAddress2,
			City:           req.City,
			State:          req.State,
			ZipCode:        req.ZipCode,
			Country:        req.Country,
		}
	}
	eligible := result.Eligible
	a.IsEligible = &eligible
	a.EligibilityReason = result.Reason
	a.Latitude = req.Latitude
	a.Longitude = req.Longitude

	saved, err := s.addresses.Save(ctx, a)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to save address verdict", "error", err)
		return a
	}
	return saved
}

func (s *Service) buildResponse(ctx context.Context, req *models.Request, result rules.Result, a *address.Address) *models.Response {
	details := &models.AddressDetails{
		StreetAddress:  a.StreetAddress,
		StreetAddress2: a.StreetAddress2,
		City:           a.City,
		State:          a.State,
		ZipCode:        a.ZipCode,
		Country:        a.Country,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
	}
	details.FormattedAddress = formatDetails(details)

	var reason string
	if req.WantsReason() {
		reason = result.Reason
	}

	return &models.Response{
		Eligible:        result.Eligible,
		Reason:          reason,
		Address:         details,
		MatchedZones:    result.MatchedZoneNames,
		ConfidenceScore: result.ConfidenceScore,
		CheckedAt:       requestcontext.Now(ctx),
	}
}

// responseFromAddress reuses a stored verdict. It reports a hit because the
// answer came from state, not a fresh evaluation.
func (s *Service) responseFromAddress(ctx context.Context, a *address.Address) *models.Response {
	details := &models.AddressDetails{
		StreetAddress:  a.StreetAddress,
		StreetAddress2: a.StreetAddress2,
		City:           a.City,
		State:          a.State,
		ZipCode:        a.ZipCode,
		Country:        a.Country,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
	}
	details.FormattedAddress = formatDetails(details)

	return &models.Response{
		Eligible:  a.IsEligible != nil && *a.IsEligible,
		Reason:    a.EligibilityReason,
		Address:   details,
		CheckedAt: requestcontext.Now(ctx),
		CacheHit:  true,
	}
}

func (s *Service) recordOutcome(eligible bool, source string) {
	outcome := "ineligible"
	if eligible {
		outcome = "eligible"
	}
	s.metrics.IncrementCheck(outcome, source)
}

func formatDetails(d *models.AddressDetails) string {
	var b strings.Builder
	b.WriteString(d.StreetAddress)
	if d.StreetAddress2 != "" {
		b.WriteString(", " + d.StreetAddress2)
	}
	b.WriteString(", " + d.City)
	b.WriteString(", " + d.State)
	b.WriteString(" " + d.ZipCode)
	if d.Country != "" {
		b.WriteString(", " + d.Country)
	}
	return b.String()
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
