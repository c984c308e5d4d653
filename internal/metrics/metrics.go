// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the recommendation engine: per-endpoint request
// counters and latency, cache hit/miss per key family, Vector Store
// operation latency, errors and retries, and background-loop tick
// outcomes (§4.11).

var (
	// Recommendation Service metrics.
	RecommendationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by algorithm and outcome",
		},
		[]string{"algorithm", "cold_start", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	// Interaction Service metrics.
	InteractionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_recorded_total",
			Help: "Total number of interactions recorded, by type and outcome",
		},
		[]string{"interaction_type", "outcome"},
	)

	InteractionBulkImportSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interaction_bulk_import_size",
			Help:    "Number of records per bulk interaction import call",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
	)

	// Cache metrics, keyed by the key-family constants in internal/cache.
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total number of cache hits by key family",
		},
		[]string{"key_family"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total number of cache misses by key family",
		},
		[]string{"key_family"},
	)

	// Vector Store metrics.
	VectorStoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vectorstore_query_duration_seconds",
			Help:    "Duration of Vector Store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	VectorStoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectorstore_query_errors_total",
			Help: "Total number of Vector Store operation errors",
		},
		[]string{"operation"},
	)

	VectorStoreRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectorstore_retries_total",
			Help: "Total number of Vector Store operation retries",
		},
		[]string{"operation"},
	)

	// Model Updater background-loop metrics (§4.11).
	UpdaterTickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "updater_tick_duration_seconds",
			Help:    "Duration of a Model Updater loop tick in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"loop"},
	)

	UpdaterTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "updater_ticks_total",
			Help: "Total number of Model Updater loop ticks by outcome",
		},
		[]string{"loop", "outcome"},
	)

	UpdaterTenantReady = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "updater_tenant_ready",
			Help: "1 if the tenant's background refresh loops are healthy, 0 after 3 consecutive failures",
		},
		[]string{"tenant_id"},
	)
)

// RecordRecommendation records a completed recommendation request.
func RecordRecommendation(algorithm string, coldStart bool, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RecommendationRequestsTotal.WithLabelValues(algorithm, boolLabel(coldStart), outcome).Inc()
	RecommendationDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordInteraction records one recorded (or rejected) interaction.
func RecordInteraction(interactionType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	InteractionsRecordedTotal.WithLabelValues(interactionType, outcome).Inc()
}

// RecordCacheResult records a cache lookup outcome for keyFamily.
func RecordCacheResult(keyFamily string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(keyFamily).Inc()
		return
	}
	CacheMissesTotal.WithLabelValues(keyFamily).Inc()
}

// RecordVectorStoreQuery records one Vector Store operation's duration
// and, on error, increments the error counter.
func RecordVectorStoreQuery(operation string, duration time.Duration, err error) {
	VectorStoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		VectorStoreQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordVectorStoreRetry increments the retry counter for operation.
func RecordVectorStoreRetry(operation string) {
	VectorStoreRetries.WithLabelValues(operation).Inc()
}

// RecordUpdaterTick records one Model Updater loop tick.
func RecordUpdaterTick(loop string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpdaterTickDuration.WithLabelValues(loop).Observe(duration.Seconds())
	UpdaterTicksTotal.WithLabelValues(loop, outcome).Inc()
}

// SetTenantReady reflects the three-consecutive-failure readiness flip
// (§4.11) for tenantID.
func SetTenantReady(tenantID string, ready bool) {
	value := 0.0
	if ready {
		value = 1.0
	}
	UpdaterTenantReady.WithLabelValues(tenantID).Set(value)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
