// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/services/oracle/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testOracle struct {
	server *Server
	logs   *logging.BufferedExporter
}

func newTestOracle(t *testing.T) *testOracle {
	t.Helper()
	logs := logging.NewBufferedExporter(50)
	logger := logging.New(logging.Config{Level: logging.LevelInfo, Quiet: true, Exporter: logs})
	t.Cleanup(func() { _ = logger.Close() })

	return &testOracle{
		server: New(Config{
			Version:  "test",
			Logger:   logger,
			Logs:     logs,
			Registry: prometheus.NewRegistry(),
		}),
		logs: logs,
	}
}

func (o *testOracle) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	o.server.Handler().ServeHTTP(w, req)
	return w
}

type analyzeBody struct {
	AnalysisID  string            `json:"analysis_id"`
	Found       bool              `json:"found"`
	Family      string            `json:"family"`
	Model       map[string]string `json:"model"`
	Predictions []string          `json:"predictions"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

// =============================================================================
// Analyze
// =============================================================================

func TestAnalyze_UnboundedCounter(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/analyze", `{"otps":["5","8","11"],"predict":3}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[analyzeBody](t, w)
	assert.True(t, body.Found)
	assert.Equal(t, "Affine Counter", body.Family)
	assert.Equal(t, map[string]string{"kind": "affine_counter", "step": "3", "modulus": "unbounded"}, body.Model)
	assert.Equal(t, []string{"14", "17", "20"}, body.Predictions)
	assert.NotEmpty(t, body.AnalysisID)
}

func TestAnalyze_SuppliedModulus(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/analyze", `{"otps":["10","53","74"],"moduli":["97"],"derive":false,"predict":2}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[analyzeBody](t, w)
	assert.Equal(t, map[string]string{
		"kind":       "linear_congruential",
		"multiplier": "5",
		"increment":  "3",
		"modulus":    "97",
	}, body.Model)
	assert.Equal(t, []string{"82", "25"}, body.Predictions)

	assert.Equal(t, 1.0, testutil.ToFloat64(o.server.Metrics().AnalysesTotal.WithLabelValues("linear_congruential")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.server.Metrics().PredictionsTotal))
}

func TestAnalyze_NoModel(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/analyze", `{"otps":["7","13","20"],"predict":5}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[analyzeBody](t, w)
	assert.False(t, body.Found)
	assert.Equal(t, "none", body.Model["kind"])
	assert.NotNil(t, body.Predictions)
	assert.Empty(t, body.Predictions)
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"otps":`},
		{"two otps", `{"otps":["5","8"]}`},
		{"negative", `{"otps":["5","-8","11"]}`},
		{"bad modulus", `{"otps":["5","8","11"],"moduli":["0"]}`},
		{"predict too large", `{"otps":["5","8","11"],"predict":100000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(t)

			w := o.do(t, http.MethodPost, "/v1/analyze", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[map[string]string](t, w)
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), body["request_id"])
			assert.Equal(t, 1.0, testutil.ToFloat64(o.server.Metrics().ErrorsTotal.WithLabelValues("analyze", "validation")))
		})
	}
}

// =============================================================================
// Predict
// =============================================================================

func TestPredict_LCG(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/predict",
		`{"model":{"kind":"linear_congruential","multiplier":"5","increment":"3","modulus":"97"},"seed":"74","count":2}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "74", body["seed"])
	assert.Equal(t, []any{"82", "25"}, body["predictions"])
}

func TestPredict_PadsToWidth(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/predict",
		`{"model":{"kind":"affine_counter","step":"7","modulus":"1000000"},"seed":"999997","count":2,"width":6}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, []any{"000004", "000011"}, body["predictions"])
}

func TestPredict_NegativeStepWraps(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/predict",
		`{"model":{"kind":"affine_counter","step":"-1","modulus":"10"},"seed":"3","count":2}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, []any{"2", "1"}, body["predictions"])
}

func TestPredict_NegativeSeed(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/predict",
		`{"model":{"kind":"affine_counter","step":"-3"},"seed":"-1","count":2}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "-1", body["seed"])
	assert.Equal(t, []any{"-4", "-7"}, body["predictions"])
}

func TestPredict_NoneIsUnprocessable(t *testing.T) {
	o := newTestOracle(t)

	w := o.do(t, http.MethodPost, "/v1/predict", `{"model":{"kind":"none"},"seed":"74","count":2}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(o.server.Metrics().ErrorsTotal.WithLabelValues("predict", "unsupported_model")))
}

func TestPredict_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"multiplier not reduced", `{"model":{"kind":"linear_congruential","multiplier":"97","increment":"3","modulus":"97"},"seed":"74"}`},
		{"unknown kind", `{"model":{"kind":"xorshift"},"seed":"74"}`},
		{"missing seed", `{"model":{"kind":"none"}}`},
		{"modulus one", `{"model":{"kind":"affine_counter","step":"0","modulus":"1"},"seed":"0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(t)
			w := o.do(t, http.MethodPost, "/v1/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

// =============================================================================
// Metrics and Logs
// =============================================================================

func TestMetricsEndpoint(t *testing.T) {
	o := newTestOracle(t)
	o.do(t, http.MethodPost, "/v1/analyze", `{"otps":["5","8","11"]}`)

	w := o.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `kittycracker_oracle_analyses_total{kind="affine_counter"} 1`)
	assert.Contains(t, w.Body.String(), "kittycracker_oracle_request_duration_seconds")
}

func TestLogsEndpoint(t *testing.T) {
	o := newTestOracle(t)
	o.do(t, http.MethodPost, "/v1/analyze", `{"otps":["5","8","11"]}`)

	w := o.do(t, http.MethodGet, "/v1/logs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "analysis served")

	w = o.do(t, http.MethodGet, "/v1/logs?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, 1.0, body["count"])

	w = o.do(t, http.MethodGet, "/v1/logs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogsEndpoint_DisabledWithoutBuffer(t *testing.T) {
	s := New(Config{
		Logger:   logging.New(logging.Config{Quiet: true}),
		Registry: prometheus.NewRegistry(),
	})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/logs", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Serve
// =============================================================================

func TestServe_GracefulShutdown(t *testing.T) {
	o := newTestOracle(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.server.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRun_BadAddr(t *testing.T) {
	s := New(Config{
		Addr:     "256.0.0.1:bad",
		Logger:   logging.New(logging.Config{Quiet: true}),
		Registry: prometheus.NewRegistry(),
	})
	assert.Error(t, s.Run(context.Background()))
}
