// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package metrics provides Prometheus instrumentation for the dashboard
// server: query performance, result-cache efficiency, schema fallback depth,
// and database acquisition.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB mart queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"question"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"question"},
	)

	// Result-cache metrics
	ResultCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_result_cache_hits_total",
			Help: "Total number of memoized query results served",
		},
	)

	ResultCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_result_cache_misses_total",
			Help: "Total number of query executions caused by cache misses",
		},
	)

	// FallbackDepth observes how far down the template list the resolver had
	// to go before a variant returned rows. Depth 0 means the preferred
	// schema shape matched.
	FallbackDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "query_fallback_depth",
			Help:    "Index of the first query template variant that returned rows",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	FallbackExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_fallback_exhausted_total",
			Help: "Times every template variant for a question came back empty",
		},
	)

	// Acquisition metrics
	AcquisitionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_acquisition_attempts_total",
			Help: "Database acquisition attempts by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "success", "failure"
	)

	AcquisitionBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_acquisition_bytes_total",
			Help: "Total bytes downloaded while acquiring the database",
		},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
