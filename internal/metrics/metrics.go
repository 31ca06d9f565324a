// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph Store Metrics
	GraphQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neo4j_query_duration_seconds",
			Help:    "Duration of Neo4j queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode", "query"},
	)

	GraphQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neo4j_query_errors_total",
			Help: "Total number of Neo4j query errors",
		},
		[]string{"mode", "query", "error_type"}, // error_type: "resource_exhausted", "rejected", "other"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Ingestion Metrics
	IngestRowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_read_total",
			Help: "Total number of raw input rows read",
		},
		[]string{"source"},
	)

	IngestRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_dropped_total",
			Help: "Total number of input rows dropped before reaching the graph",
		},
		[]string{"source", "reason"},
	)

	IngestRecordsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_upserted_total",
			Help: "Total number of records sent to the graph in batch upserts",
		},
		[]string{"kind"},
	)

	IngestBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_duration_seconds",
			Help:    "Duration of a single batch upsert in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	IngestBatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_batch_errors_total",
			Help: "Total number of failed batch upserts",
		},
		[]string{"kind"},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total recommendation requests by outcome",
		},
		[]string{"outcome"}, // outcome: "success", "empty", "too_broad", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Number of candidates scored per request",
			Buckets: []float64{0, 5, 10, 25, 50, 75, 100, 250},
		},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Rating Metrics
	RatingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Total number of rating submissions",
		},
		[]string{"discovery"},
	)

	// GraphUp is maintained by the supervised health probe.
	GraphUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neo4j_up",
			Help: "Whether the last Neo4j health probe succeeded (1) or failed (0)",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordGraphQuery records one graph store round trip. errorType is empty on success.
func RecordGraphQuery(mode, query string, duration time.Duration, errorType string) {
	GraphQueryDuration.WithLabelValues(mode, query).Observe(duration.Seconds())
	if errorType != "" {
		GraphQueryErrors.WithLabelValues(mode, query, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBatch records one batch upsert of size records.
func RecordBatch(kind string, size int, duration time.Duration, err error) {
	IngestBatchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		IngestBatchErrors.WithLabelValues(kind).Inc()
		return
	}
	IngestRecordsUpserted.WithLabelValues(kind).Add(float64(size))
}

// RecordRecommendation records the outcome of a recommendation request.
func RecordRecommendation(outcome string, candidates int, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	RecommendCandidates.Observe(float64(candidates))
}
