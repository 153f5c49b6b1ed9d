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

// AffineCounterDetector tests the constant-step model x_{n+1} = x_n + step,
// with or without wraparound.
type AffineCounterDetector struct {
	moduli modarith.CandidateConfig
	logger *slog.Logger
}

// NewAffineCounterDetector creates a detector over the given candidate moduli.
func NewAffineCounterDetector(cfg modarith.CandidateConfig, logger *slog.Logger) *AffineCounterDetector {
	return &AffineCounterDetector{moduli: cfg, logger: orDiscard(logger)}
}

// Name implements ModelDetector.
func (d *AffineCounterDetector) Name() string { return "affine_counter" }

// Detect returns an AffineCounter consistent with all three observations,
// or model.None.
//
// # Description
//
// Equal signed differences mean an unbounded arithmetic progression. Failing
// that, each candidate modulus m is tried with step = (x1 - x0) mod m and
// accepted when both transitions reproduce under reduction mod m.
func (d *AffineCounterDetector) Detect(observed model.Observed) model.Candidate {
	x0, x1, x2 := observed.At(0), observed.At(1), observed.At(2)

	d1 := new(big.Int).Sub(x1, x0)
	d2 := new(big.Int).Sub(x2, x1)
	if d1.Cmp(d2) == 0 {
		d.logger.Debug("arithmetic progression", "step", d1.String())
		return model.NewAffineCounter(d1, nil)
	}

	for _, m := range modarith.CandidateModuli(observed, d.moduli) {
		step := modarith.Mod(d1, m)
		if stepMod(x0, step, m).Cmp(x1) != 0 || stepMod(x1, step, m).Cmp(x2) != 0 {
			d.logger.Debug("wrapping counter rejected", "modulus", m.String())
			continue
		}
		d.logger.Debug("wrapping counter accepted", "modulus", m.String(), "step", step.String())
		return model.NewAffineCounter(step, m)
	}
	return model.None{}
}

// stepMod returns (x + step) mod m.
func stepMod(x, step, m *big.Int) *big.Int {
	v := new(big.Int).Add(x, step)
	return v.Mod(v, m)
}
