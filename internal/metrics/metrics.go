// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package metrics holds the Prometheus collectors for Shikisai. Collectors are
// registered on the default registry through promauto and exposed by the API
// at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest outcomes used as the "outcome" label.
const (
	OutcomeAdded         = "added"
	OutcomeSkipped       = "skipped"
	OutcomeEncodeFailure = "encode_failure"
)

var (
	// Catalog Metrics
	CatalogTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_tracks",
			Help: "Number of tracks currently held in the vector catalog",
		},
	)

	CatalogIngestRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_ingest_records_total",
			Help: "Records offered to the catalog, by outcome",
		},
		[]string{"outcome"}, // "added", "skipped", "encode_failure"
	)

	CatalogPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_persist_duration_seconds",
			Help:    "Time spent rebuilding the index and writing catalog artifacts",
			Buckets: prometheus.DefBuckets,
		},
	)

	CatalogSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Latency of exact inner-product catalog searches",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	CatalogJournalPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_journal_pending",
			Help: "Catalog batches written to the journal but not yet confirmed",
		},
	)

	CatalogRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_repairs_total",
			Help: "Load-time repairs applied to persisted catalog artifacts",
		},
		[]string{"kind"}, // "dimension", "row_mismatch", "index_rebuild", "journal_replay"
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommendation requests served, by resolved intent",
		},
		[]string{"intent"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end latency of the filter, score and select pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Candidates surviving each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"stage"},
	)

	// Encoder Metrics
	EncoderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoder_requests_total",
			Help: "Calls to the text embedding server, by result",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	EncoderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encoder_request_duration_seconds",
			Help:    "Latency of text embedding requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	EncoderCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoder_cache_lookups_total",
			Help: "Prompt embedding cache lookups, by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "In-flight HTTP requests",
		},
	)
)

// RecordIngest adds one batch worth of outcomes.
func RecordIngest(added, skipped, encodeFailures int) {
	CatalogIngestRecords.WithLabelValues(OutcomeAdded).Add(float64(added))
	CatalogIngestRecords.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	CatalogIngestRecords.WithLabelValues(OutcomeEncodeFailure).Add(float64(encodeFailures))
}

// RecordRecommend records a finished request and its per-stage counts.
func RecordRecommend(intent string, duration time.Duration, stages map[string]int) {
	RecommendRequests.WithLabelValues(intent).Inc()
	RecommendDuration.Observe(duration.Seconds())
	for stage, n := range stages {
		RecommendCandidates.WithLabelValues(stage).Observe(float64(n))
	}
}

// RecordAPIRequest observes one HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
