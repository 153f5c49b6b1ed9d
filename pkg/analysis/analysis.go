// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analysis runs one detect-then-forecast pass over observed OTPs.
//
// It is the shared workflow behind the `kittycracker analyze` command and
// the oracle's POST /v1/analyze endpoint: validate input, pick candidate
// moduli, detect a generator, forecast, and format predictions the way the
// OTPs were typed.
//
//	OTP tokens ──► validation ──► detect.Detector ──► predict.Forecast ──► Result
//
// # Thread Safety
//
// Service is safe for concurrent use; each Run builds its own Detector.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/kittycracker/pkg/detect"
	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/model"
	"github.com/AleutianAI/kittycracker/pkg/predict"
	"github.com/AleutianAI/kittycracker/pkg/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// MaxPredict bounds the forecast a single analysis collects.
const MaxPredict = 1_000_000

var (
	// analysisTracer is the OpenTelemetry tracer for analysis runs.
	analysisTracer = otel.Tracer("kittycracker.analysis")

	analysisMeter = otel.Meter("kittycracker.analysis")

	// analysisRuns counts completed runs by detected kind. Creation only
	// fails for an invalid instrument name.
	analysisRuns, _ = analysisMeter.Int64Counter("kittycracker_analysis_runs",
		metric.WithDescription("Completed analyses by detected generator kind"))
)

// Request describes one analysis.
type Request struct {
	// OTPs are the observations as typed, oldest first.
	OTPs validation.OTPs

	// Candidates selects the moduli to try. The zero value tries the
	// built-in list without derived moduli; callers normally start from
	// modarith.DefaultCandidateConfig() or the config file.
	Candidates modarith.CandidateConfig

	// Predict is the number of future OTPs to generate when a model is found.
	Predict int
}

// Result is the outcome of a Run.
type Result struct {
	AnalysisID  string          `json:"analysis_id"`
	Observed    []string        `json:"observed"`
	Model       model.Candidate `json:"model"`
	Predictions []string        `json:"predictions"`
	DurationMs  int64           `json:"duration_ms"`
}

// Found reports whether a generator was identified.
func (r *Result) Found() bool {
	return r != nil && !model.IsNone(r.Model)
}

// Service runs analyses.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service. A nil logger discards output.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{logger: logger, now: time.Now}
}

// Run analyzes req.OTPs and, when a model is found, forecasts req.Predict
// values after the last observation.
//
// # Description
//
// Predictions are zero-padded to the observed width when every OTP was
// typed with the same number of digits and the model is bounded, so a
// six-digit code stays six digits. Unbounded counters are printed as-is.
//
// # Outputs
//
//   - *Result: always non-nil on success; Model is model.None when nothing
//     fits and Predictions is then empty.
//   - error: wraps model.ErrInvalidInput for bad observations or count.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := analysisTracer.Start(ctx, "analysis.Service.Run")
	defer span.End()

	start := s.now()
	id := uuid.NewString()
	span.SetAttributes(attribute.String("analysis.id", id))

	observed, err := req.OTPs.Observed()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid observations")
		return nil, err
	}
	if req.Predict < 0 || req.Predict > MaxPredict {
		err := fmt.Errorf("analysis: %w", &model.InvalidInputError{
			Field:  "predict",
			Reason: fmt.Sprintf("must be in [0, %d], got %d", MaxPredict, req.Predict),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid count")
		return nil, err
	}

	logger := s.logger.With("analysis_id", id)
	logger.Debug("analysis started", "observed", observed.String())

	detector := detect.New(detect.WithCandidateConfig(req.Candidates), detect.WithLogger(logger))
	span.SetAttributes(attribute.Int("analysis.candidate_moduli", len(detector.CandidateModuli(observed))))

	found := detector.Analyze(observed)
	span.SetAttributes(attribute.String("analysis.kind", string(found.Kind())))

	result := &Result{
		AnalysisID:  id,
		Observed:    req.OTPs.Tokens,
		Model:       found,
		Predictions: []string{},
	}

	if !model.IsNone(found) && req.Predict > 0 {
		forecast, err := predict.Predict(found, observed.Last(), req.Predict)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "forecast failed")
			return nil, err
		}
		result.Predictions = Format(forecast, req.OTPs.Width)
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	analysisRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(found.Kind()))))
	logger.Info("analysis complete",
		"kind", string(found.Kind()),
		"model", found.String(),
		"predictions", len(result.Predictions),
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// Format renders a forecast as strings, zero-padding to width when the
// forecast's model is bounded. width 0 disables padding.
func Format(f *predict.Forecast, width int) []string {
	if width == 0 || !Bounded(f.Model()) {
		return f.Strings()
	}
	out := make([]string, 0, f.Len())
	for v := range f.All() {
		out = append(out, validation.PadToWidth(v, width))
	}
	return out
}

// Bounded reports whether m reduces by a fixed modulus, so its outputs have
// a maximum width.
func Bounded(m model.Candidate) bool {
	switch g := m.(type) {
	case model.AffineCounter:
		return !g.Unbounded()
	case model.LinearCongruential:
		return true
	default:
		return false
	}
}
