// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics provides Prometheus instrumentation for the suggestion
// engine: job lifecycle, signal provider performance, upstream calls,
// cache efficiency and streaming clients.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job lifecycle metrics
	JobsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestion_jobs_enqueued_total",
			Help: "Total number of suggestion jobs enqueued",
		},
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_jobs_completed_total",
			Help: "Total number of suggestion jobs reaching a terminal state",
		},
		[]string{"status"}, // "succeeded", "failed"
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggestion_job_duration_seconds",
			Help:    "Duration of suggestion job execution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Signal provider metrics
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suggestion_provider_duration_seconds",
			Help:    "Duration of signal provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_provider_errors_total",
			Help: "Total number of provider failures degraded to empty results",
		},
		[]string{"provider"},
	)

	ProviderCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_provider_candidates_total",
			Help: "Total number of raw candidates emitted per provider",
		},
		[]string{"provider"},
	)

	SuggestionsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestions_persisted_total",
			Help: "Total number of suggestion rows written",
		},
	)

	CandidatesVetoed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestion_candidates_vetoed_total",
			Help: "Total number of candidates removed by the vibe-conflict filter",
		},
	)

	// Catalog upstream metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of catalog upstream requests",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "error"
	)

	GameCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "game_cache_hits_total",
			Help: "Total number of game cache hits",
		},
	)

	GameCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "game_cache_misses_total",
			Help: "Total number of game cache misses",
		},
	)

	// Circuit breaker metrics
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
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Client observation metrics
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "suggestion_streams_active",
			Help: "Current number of active status stream subscriptions",
		},
	)

	StreamTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestion_stream_timeouts_total",
			Help: "Total number of streams closed by poll timeout",
		},
	)

	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of connected websocket clients",
		},
	)
)
