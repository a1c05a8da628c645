// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package metrics provides Prometheus metrics for the query and assembly
// layers. Metrics are registered with the default registry and exposed via
// the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryDuration tracks entity query execution time.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "observatus_query_duration_seconds",
			Help:    "Entity query execution time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"entity"},
	)

	// QueryErrors counts failed entity queries.
	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observatus_query_errors_total",
			Help: "Total number of failed entity queries",
		},
		[]string{"entity", "kind"}, // kind: "not_found", "bad_request", "data_access"
	)

	// ValuesAssembled counts observation values assembled per value type.
	ValuesAssembled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observatus_values_assembled_total",
			Help: "Total number of observation values assembled",
		},
		[]string{"value_type"},
	)

	// ReferenceExpansions counts reference series that required boundary
	// value synthesis.
	ReferenceExpansions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "observatus_reference_expansions_total",
			Help: "Total number of reference series expanded to synthetic boundary values",
		},
	)

	// UnsupportedFilters counts filter expressions that fell through to the
	// always-true/always-false policy.
	UnsupportedFilters = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "observatus_unsupported_filters_total",
			Help: "Total number of filter expressions degraded by the unsupported-filter policy",
		},
	)

	// APIRequestsTotal counts API requests by route and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observatus_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// APIRequestDuration tracks API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "observatus_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)
