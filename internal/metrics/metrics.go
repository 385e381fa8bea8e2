// Package metrics exposes Prometheus collectors for the calculation
// engine. Collectors register themselves at init; the daemon decides
// whether an exposition endpoint is actually served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheOps counts cache lookups by tier and outcome.
	// Labels: tier (hot, shared), outcome (hit, miss, expired, corrupt)
	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alchm",
		Subsystem: "cache",
		Name:      "ops_total",
		Help:      "Cache lookups by tier and outcome",
	}, []string{"tier", "outcome"})

	// cacheEvictions counts entries pushed out by the per-tier cap.
	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alchm",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Cache entries evicted by the LRU cap",
	}, []string{"tier"})

	// computeDuration measures full computations that missed every tier.
	// Labels: kind (recipe, moment, cuisine, baseline)
	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "alchm",
		Subsystem: "engine",
		Name:      "compute_seconds",
		Help:      "Duration of cache-missed computations",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"kind"})

	// positionFetches counts planetary-position lookups by serving tier.
	// Labels: tier (primary, secondary, cached, default), status (ok, error)
	positionFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alchm",
		Subsystem: "positions",
		Name:      "fetches_total",
		Help:      "Planetary position lookups by serving tier",
	}, []string{"tier", "status"})

	// breakerState reports each provider's circuit breaker state.
	// 0 closed, 1 open, 2 half-open.
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "alchm",
		Subsystem: "positions",
		Name:      "breaker_state",
		Help:      "Circuit breaker state per provider (0 closed, 1 open, 2 half-open)",
	}, []string{"provider"})

	// baselineAge reports seconds since the global baseline was refreshed.
	baselineAge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "alchm",
		Subsystem: "cuisine",
		Name:      "baseline_age_seconds",
		Help:      "Age of the global recipe baseline",
	})
)

// RecordCacheOp records one cache lookup outcome for a tier.
func RecordCacheOp(tier, outcome string) {
	cacheOps.WithLabelValues(tier, outcome).Inc()
}

// RecordCacheEviction records one evicted entry for a tier.
func RecordCacheEviction(tier string) {
	cacheEvictions.WithLabelValues(tier).Inc()
}

// ObserveCompute records a full computation's duration.
func ObserveCompute(kind string, d time.Duration) {
	computeDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordPositionFetch records one position lookup served by a tier.
func RecordPositionFetch(tier, status string) {
	positionFetches.WithLabelValues(tier, status).Inc()
}

// SetBreakerState publishes a provider's circuit breaker state.
func SetBreakerState(provider string, state float64) {
	breakerState.WithLabelValues(provider).Set(state)
}

// SetBaselineAge publishes the global baseline's age.
func SetBaselineAge(age time.Duration) {
	baselineAge.Set(age.Seconds())
}
