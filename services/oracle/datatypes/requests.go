// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the oracle's request and response bodies.
package datatypes

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/model"
	"github.com/AleutianAI/kittycracker/pkg/validation"
	"github.com/go-playground/validator/v10"
)

// MaxForecast bounds the count a single request may ask for.
const MaxForecast = 1000

// =============================================================================
// Shared Validator Instance
// =============================================================================

// oracleValidate is the validator instance for oracle datatypes.
// Initialized in init() with custom validators.
var oracleValidate *validator.Validate

func init() {
	oracleValidate = validator.New()
	_ = oracleValidate.RegisterValidation("otp", validateOTP)
	_ = oracleValidate.RegisterValidation("modulus", validateModulus)
	_ = oracleValidate.RegisterValidation("seed", validateSeed)
}

// validateOTP accepts non-negative decimal strings of at most
// validation.MaxDigits digits.
func validateOTP(fl validator.FieldLevel) bool {
	return validation.ValidateOTP(fl.Field().String()) == nil
}

func validateModulus(fl validator.FieldLevel) bool {
	_, err := validation.ParseModulus(fl.Field().String())
	return err == nil
}

// validateSeed accepts signed decimal strings, since an unbounded counter
// can be forecast from below zero.
func validateSeed(fl validator.FieldLevel) bool {
	_, err := validation.ParseSeed(fl.Field().String())
	return err == nil
}

// =============================================================================
// Analyze
// =============================================================================

// AnalyzeRequest is the body of POST /v1/analyze.
//
// # Fields
//
//   - OTPs: Required. Exactly three observed OTPs, oldest first, as decimal
//     strings so leading zeros and values wider than 64 bits survive.
//   - Moduli: Optional. Replaces the built-in candidate list. An explicit
//     empty list disables it, leaving only derived moduli.
//   - Derive: Optional. Adds moduli inferred from the observations.
//     Defaults to true.
//   - Predict: Optional. Number of future OTPs to return (0-1000).
type AnalyzeRequest struct {
	OTPs    []string `json:"otps" validate:"len=3,dive,otp"`
	Moduli  []string `json:"moduli,omitempty" validate:"omitempty,max=64,dive,modulus"`
	Derive  *bool    `json:"derive,omitempty"`
	Predict int      `json:"predict" validate:"gte=0,lte=1000"`
}

// Validate validates the AnalyzeRequest fields.
func (r *AnalyzeRequest) Validate() error {
	return oracleValidate.Struct(r)
}

// ToAnalysis converts the body into an analysis.Request. Call Validate first.
func (r *AnalyzeRequest) ToAnalysis() (analysis.Request, error) {
	otps, err := validation.ParseOTPTokens(r.OTPs, model.ObservationCount)
	if err != nil {
		return analysis.Request{}, err
	}

	cfg := modarith.DefaultCandidateConfig()
	if r.Derive != nil {
		cfg.Derive = *r.Derive
	}
	if r.Moduli != nil {
		if cfg.Base, err = validation.ParseModuli(r.Moduli); err != nil {
			return analysis.Request{}, err
		}
	}

	return analysis.Request{OTPs: otps, Candidates: cfg, Predict: r.Predict}, nil
}

// AnalyzeResponse is the body returned by POST /v1/analyze.
type AnalyzeResponse struct {
	AnalysisID  string          `json:"analysis_id"`
	Found       bool            `json:"found"`
	Family      string          `json:"family"`
	Model       model.Candidate `json:"model"`
	Predictions []string        `json:"predictions"`
	DurationMs  int64           `json:"duration_ms"`
}

// NewAnalyzeResponse flattens an analysis result.
func NewAnalyzeResponse(res *analysis.Result) AnalyzeResponse {
	return AnalyzeResponse{
		AnalysisID:  res.AnalysisID,
		Found:       res.Found(),
		Family:      res.Model.Family(),
		Model:       res.Model,
		Predictions: res.Predictions,
		DurationMs:  res.DurationMs,
	}
}

// =============================================================================
// Predict
// =============================================================================

// PredictRequest is the body of POST /v1/predict.
//
// # Fields
//
//   - Model: Required. A model as returned by /v1/analyze, e.g.
//     {"kind":"linear_congruential","multiplier":"5","increment":"3","modulus":"97"}.
//   - Seed: Required. The last observed value. May be negative for
//     unbounded counters.
//   - Count: Number of values to forecast (0-1000).
//   - Width: Optional. Zero-pad bounded forecasts to this many digits.
type PredictRequest struct {
	Model json.RawMessage `json:"model" validate:"required"`
	Seed  string          `json:"seed" validate:"required,seed"`
	Count int             `json:"count" validate:"gte=0,lte=1000"`
	Width int             `json:"width,omitempty" validate:"gte=0,lte=256"`
}

// Validate validates the PredictRequest fields.
func (r *PredictRequest) Validate() error {
	return oracleValidate.Struct(r)
}

// Decode returns the model and seed. Errors wrap model.ErrInvalidInput.
func (r *PredictRequest) Decode() (model.Candidate, *big.Int, error) {
	m, err := model.DecodeCandidate(r.Model)
	if err != nil {
		return nil, nil, err
	}
	seed, err := validation.ParseSeed(r.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("decode seed: %w", err)
	}
	return m, seed, nil
}

// PredictResponse is the body returned by POST /v1/predict.
type PredictResponse struct {
	Model       model.Candidate `json:"model"`
	Seed        string          `json:"seed"`
	Predictions []string        `json:"predictions"`
}

// =============================================================================
// Errors
// =============================================================================

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
