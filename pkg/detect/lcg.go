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

// LinearCongruentialDetector tests x_{n+1} = (a*x_n + c) mod m for each
// candidate modulus.
type LinearCongruentialDetector struct {
	moduli modarith.CandidateConfig
	logger *slog.Logger
}

// NewLinearCongruentialDetector creates a detector over the given candidate moduli.
func NewLinearCongruentialDetector(cfg modarith.CandidateConfig, logger *slog.Logger) *LinearCongruentialDetector {
	return &LinearCongruentialDetector{moduli: cfg, logger: orDiscard(logger)}
}

// Name implements ModelDetector.
func (d *LinearCongruentialDetector) Name() string { return "linear_congruential" }

// Detect solves for multiplier and increment under each candidate modulus,
// smallest first, and returns the first solution that reproduces x1 and x2.
//
// # Description
//
// Subtracting consecutive recurrences removes the increment:
//
//	x2 - x1 ≡ a * (x1 - x0)  (mod m)
//
// so a = delta1 * delta0^-1 and c = x1 - a*x0. A modulus is skipped when
// delta0 is zero or shares a factor with m, since a is then not uniquely
// determined by this method.
//
// # Outputs
//
//   - model.Candidate: LinearCongruential on success, model.None otherwise.
func (d *LinearCongruentialDetector) Detect(observed model.Observed) model.Candidate {
	x0, x1, x2 := observed.At(0), observed.At(1), observed.At(2)

	for _, m := range modarith.CandidateModuli(observed, d.moduli) {
		delta0 := modarith.Mod(new(big.Int).Sub(x1, x0), m)
		delta1 := modarith.Mod(new(big.Int).Sub(x2, x1), m)

		if modarith.IsZero(delta0) {
			d.logger.Debug("lcg modulus skipped", "modulus", m.String(), "reason", "zero difference")
			continue
		}

		inv, err := modarith.ModInverse(delta0, m)
		if err != nil {
			// modarith.ErrNotInvertible: delta0 shares a factor with m.
			d.logger.Debug("lcg modulus skipped", "modulus", m.String(), "reason", err.Error())
			continue
		}

		a := modarith.Mod(new(big.Int).Mul(delta1, inv), m)
		c := modarith.Mod(new(big.Int).Sub(x1, new(big.Int).Mul(a, x0)), m)

		if lcgStep(a, c, m, x0).Cmp(x1) != 0 || lcgStep(a, c, m, x1).Cmp(x2) != 0 {
			d.logger.Debug("lcg modulus rejected", "modulus", m.String())
			continue
		}

		d.logger.Debug("lcg accepted",
			"modulus", m.String(),
			"multiplier", a.String(),
			"increment", c.String(),
		)
		return model.LinearCongruential{Multiplier: a, Increment: c, Modulus: m}
	}
	return model.None{}
}

// lcgStep returns (a*x + c) mod m.
func lcgStep(a, c, m, x *big.Int) *big.Int {
	v := new(big.Int).Mul(a, x)
	v.Add(v, c)
	return v.Mod(v, m)
}
