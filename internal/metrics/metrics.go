// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package metrics defines the Prometheus instrumentation for Palate.
// Collectors register on the default registry via promauto; the
// optional HTTP listener exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts protocol requests by command and outcome.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palate_requests_total",
		Help: "Total protocol requests processed, by command and status.",
	}, []string{"command", "status"})

	// RequestDuration observes per-request handling latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "palate_request_duration_seconds",
		Help:    "Protocol request handling duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	// PredictionsTotal counts rating predictions by resolved method.
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palate_predictions_total",
		Help: "Total rating predictions served, by method.",
	}, []string{"method"})

	// PredictionErrors counts predictions that hit the internal error
	// path and returned the low-confidence neutral estimate.
	PredictionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "palate_prediction_errors_total",
		Help: "Total predictions that failed internally and degraded to the neutral estimate.",
	})

	// FeedbackTotal counts persisted feedback interactions.
	FeedbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "palate_feedback_total",
		Help: "Total feedback interactions persisted.",
	})

	// ModelBuildsTotal counts model builds by outcome.
	ModelBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palate_model_builds_total",
		Help: "Total similarity model builds, by outcome.",
	}, []string{"status"})

	// ModelBuildDuration observes end-to-end model build latency.
	ModelBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "palate_model_build_duration_seconds",
		Help:    "Similarity model build duration in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	})

	// InteractionsStored tracks the interaction log size at last count.
	InteractionsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "palate_interactions_stored",
		Help: "Interaction rows in the store at the most recent count.",
	})

	// ModelUsers and ModelItems track the dimensions of the current model.
	ModelUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "palate_model_users",
		Help: "Distinct users in the current similarity model.",
	})
	ModelItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "palate_model_items",
		Help: "Distinct items in the current similarity model.",
	})
)

// Build outcome label values.
const (
	BuildSuccess    = "success"
	BuildDegenerate = "degenerate"
	BuildError      = "error"
)

// RequestOK and RequestError are the status label values for RequestsTotal.
const (
	RequestOK    = "ok"
	RequestError = "error"
)
