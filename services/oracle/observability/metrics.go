// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the oracle.
//
// # Description
//
// Metrics include:
//   - Analyses by detected generator kind
//   - Predicted values handed out
//   - Request latency by endpoint and status
//   - Errors by endpoint and error code
//
// # Integration
//
// Metrics are exposed via the oracle's /metrics endpoint. Collectors are
// registered on the Registerer passed to NewMetrics so tests can use an
// isolated prometheus.Registry.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
// Every method is a no-op on a nil *Metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "kittycracker"

const oracleSubsystem = "oracle"

// Metrics holds the oracle's collectors.
type Metrics struct {
	// AnalysesTotal counts completed analyses.
	// Labels: kind (affine_counter, linear_congruential, none)
	AnalysesTotal *prometheus.CounterVec

	// PredictionsTotal counts predicted OTPs returned to clients.
	PredictionsTotal prometheus.Counter

	// RequestDurationSeconds measures handler latency.
	// Labels: endpoint (analyze, predict), status (success, error)
	RequestDurationSeconds *prometheus.HistogramVec

	// ErrorsTotal counts failed requests.
	// Labels: endpoint, error_code (validation, unsupported_model, internal)
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// means prometheus.DefaultRegisterer.
//
// Registering twice on the same Registerer panics, as with promauto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: oracleSubsystem,
				Name:      "analyses_total",
				Help:      "Total number of analyses by detected generator kind",
			},
			[]string{"kind"},
		),

		PredictionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: oracleSubsystem,
				Name:      "predictions_total",
				Help:      "Total number of predicted OTPs returned",
			},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: oracleSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Handler latency in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"endpoint", "status"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: oracleSubsystem,
				Name:      "errors_total",
				Help:      "Total failed requests by endpoint and error code",
			},
			[]string{"endpoint", "error_code"},
		),
	}
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates a malformed body or invalid input.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeUnsupportedModel indicates a forecast of model None.
	ErrorCodeUnsupportedModel ErrorCode = "unsupported_model"

	// ErrorCodeInternal indicates an unexpected failure.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint labels an oracle route for metrics.
type Endpoint string

const (
	EndpointAnalyze Endpoint = "analyze"
	EndpointPredict Endpoint = "predict"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordAnalysis counts one analysis that detected kind.
func (m *Metrics) RecordAnalysis(kind string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(kind).Inc()
}

// RecordPredictions adds n predicted values.
func (m *Metrics) RecordPredictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PredictionsTotal.Add(float64(n))
}

// RecordError records a failed request.
//
// # Inputs
//
//   - endpoint: The endpoint where the error occurred.
//   - code: The error type code.
func (m *Metrics) RecordError(endpoint Endpoint, code ErrorCode) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// ObserveRequest records handler latency since start.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the request.
//   - start: When the handler began.
//   - success: Whether the request completed successfully.
func (m *Metrics) ObserveRequest(endpoint Endpoint, start time.Time, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestDurationSeconds.WithLabelValues(string(endpoint), status).Observe(time.Since(start).Seconds())
}
