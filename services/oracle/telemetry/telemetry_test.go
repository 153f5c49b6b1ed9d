// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "kittycracker-oracle", cfg.ServiceName)
	assert.Equal(t, "none", cfg.TraceExporter)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.OTLPInsecure)
}

func TestInit_NilContext(t *testing.T) {
	_, err := Init(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_NoExporters(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{TraceExporter: "none", MetricExporter: "none"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{TraceExporter: "zipkin", MetricExporter: "none"})
	assert.ErrorIs(t, err, ErrUnknownExporter)

	_, err = Init(context.Background(), Config{TraceExporter: "none", MetricExporter: "statsd"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_StdoutTraces(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "kittycracker-test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		TraceWriter:    &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "analyze-otps")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "analyze-otps")
	assert.Contains(t, buf.String(), "kittycracker-test")
}

func TestInit_OTLPTraces(t *testing.T) {
	// Nothing listens on the endpoint; the exporter connects lazily, so Init
	// succeeds and only the final flush can fail.
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "kittycracker-test",
		TraceExporter:  "otlp",
		MetricExporter: "none",
		OTLPEndpoint:   "127.0.0.1:1",
		OTLPInsecure:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "predict-otps")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestInit_StdoutMetrics(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "kittycracker-test",
		TraceExporter:  "none",
		MetricExporter: "stdout",
		MetricWriter:   &buf,
	})
	require.NoError(t, err)

	counter, err := otel.Meter("telemetry-test").Int64Counter("kittycracker_test_forecasts")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	// Shutdown collects and exports once more before stopping the reader.
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "kittycracker_test_forecasts")
	assert.Contains(t, buf.String(), "kittycracker-test")
}

func TestInit_PrometheusBridge(t *testing.T) {
	reg := prometheus.NewRegistry()
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "kittycracker-test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		Registerer:     reg,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	counter, err := otel.Meter("telemetry-test").Int64Counter("kittycracker_test_runs")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "kittycracker_test_runs") {
			found = true
			require.NotEmpty(t, mf.GetMetric())
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "bridged counter not gathered")
}
