// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"log/slog"
	"math/big"

	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/model"
)

// ModelDetector tests one generator family against three observations.
type ModelDetector interface {
	// Name identifies the detector in logs.
	Name() string

	// Detect returns a validated candidate or model.None.
	Detect(observed model.Observed) model.Candidate
}

// Option configures a Detector.
type Option func(*Detector)

// WithModuli replaces the fixed candidate moduli. Derived moduli are still
// added unless WithDerivedModuli(false) is also given.
func WithModuli(moduli ...*big.Int) Option {
	return func(d *Detector) {
		d.moduli.Base = append([]*big.Int{}, moduli...)
	}
}

// WithDerivedModuli toggles moduli inferred from the observations.
func WithDerivedModuli(enabled bool) Option {
	return func(d *Detector) {
		d.moduli.Derive = enabled
	}
}

// WithCandidateConfig sets the whole candidate configuration at once.
func WithCandidateConfig(cfg modarith.CandidateConfig) Option {
	return func(d *Detector) {
		d.moduli = cfg
	}
}

// WithLogger sets the logger used for Debug tracing of rejected moduli.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// Detector runs the family detectors in fixed priority order.
//
// # Thread Safety
//
// Safe for concurrent use; Analyze touches no shared mutable state.
type Detector struct {
	moduli    modarith.CandidateConfig
	logger    *slog.Logger
	detectors []ModelDetector
}

// New creates a Detector. With no options it uses
// modarith.DefaultCandidateConfig().
func New(opts ...Option) *Detector {
	d := &Detector{moduli: modarith.DefaultCandidateConfig()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = orDiscard(d.logger)
	d.detectors = []ModelDetector{
		NewAffineCounterDetector(d.moduli, d.logger),
		NewLinearCongruentialDetector(d.moduli, d.logger),
	}
	return d
}

// Analyze returns the first validated candidate, trying the affine counter
// before the general LCG, or model.None when neither fits.
func (d *Detector) Analyze(observed model.Observed) model.Candidate {
	for _, det := range d.detectors {
		c := det.Detect(observed)
		if !model.IsNone(c) {
			d.logger.Debug("model detected", "detector", det.Name(), "model", c.String())
			return c
		}
		d.logger.Debug("detector found nothing", "detector", det.Name())
	}
	return model.None{}
}

// AnalyzeValues validates raw values and analyzes them.
//
// # Outputs
//
//   - model.Candidate: as Analyze.
//   - error: wraps model.ErrInvalidInput when values is not exactly three
//     non-negative integers.
func (d *Detector) AnalyzeValues(values ...*big.Int) (model.Candidate, error) {
	observed, err := model.NewObserved(values...)
	if err != nil {
		return nil, err
	}
	return d.Analyze(observed), nil
}

// CandidateModuli exposes the moduli this detector would try for observed.
func (d *Detector) CandidateModuli(observed model.Observed) []*big.Int {
	return modarith.CandidateModuli(observed, d.moduli)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
