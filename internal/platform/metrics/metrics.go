package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service. A nil *Metrics is
// safe to call so unit tests can skip registration entirely.
type Metrics struct {
	// Eligibility checks by outcome ("eligible", "ineligible") and the
	// source that decided ("cache", "preloaded", "database", "engine").
	ChecksTotal *prometheus.CounterVec

	// Cache hits and misses by cache tier ("lookup", "result").
	CacheEvents *prometheus.CounterVec

	// Geocoder calls by result ("ok", "miss", "error").
	GeocodeRequests *prometheus.CounterVec

	// End-to-end eligibility check latency.
	CheckDuration prometheus.Histogram
}

// New creates and registers all collectors with the default registry.
func New() *Metrics {
	return &Metrics{
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eligibility_checks_total",
			Help: "Total eligibility checks by outcome and deciding source",
		}, []string{"outcome", "source"}),

		CacheEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eligibility_cache_events_total",
			Help: "Cache hits and misses by cache tier",
		}, []string{"tier", "event"}),

		GeocodeRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eligibility_geocode_requests_total",
			Help: "Geocoder calls by result",
		}, []string{"result"}),

		CheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "eligibility_check_duration_seconds",
			Help:    "Duration of full eligibility checks including lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementCheck records a completed eligibility check.
func (m *Metrics) IncrementCheck(outcome, source string) {
	if m != nil {
		m.ChecksTotal.WithLabelValues(outcome, source).Inc()
	}
}

// CacheHit records a hit on the given cache tier.
func (m *Metrics) CacheHit(tier string) {
	if m != nil {
		m.CacheEvents.WithLabelValues(tier, "hit").Inc()
	}
}

// CacheMiss records a miss on the given cache tier.
func (m *Metrics) CacheMiss(tier string) {
	if m != nil {
		m.CacheEvents.WithLabelValues(tier, "miss").Inc()
	}
}

// IncrementGeocode records a geocoder call result.
func (m *Metrics) IncrementGeocode(result string) {
	if m != nil {
		m.GeocodeRequests.WithLabelValues(result).Inc()
	}
}

// ObserveCheckDuration records the total check duration.
func (m *Metrics) ObserveCheckDuration(d time.Duration) {
	if m != nil {
		m.CheckDuration.Observe(d.Seconds())
	}
}
