// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package modarith

import (
	"math/big"
	"slices"

	"github.com/AleutianAI/kittycracker/pkg/model"
)

// CandidateConfig controls which moduli a detector may hypothesize.
type CandidateConfig struct {
	// Base is the fixed list of moduli. Nil means DefaultBaseModuli().
	// An empty non-nil slice disables the fixed list entirely.
	Base []*big.Int

	// Derive adds moduli inferred from the observations: the power of ten
	// with as many zeros as the largest observation has digits, and the
	// smallest power of two strictly greater than the largest observation.
	Derive bool
}

// DefaultCandidateConfig returns the default base list with derivation on.
func DefaultCandidateConfig() CandidateConfig {
	return CandidateConfig{Derive: true}
}

// DefaultBaseModuli returns the fixed moduli of common OTP and PRNG
// constructions: 16/31/32/48/64-bit word sizes and six/eight digit codes.
//
// Every entry is even. An odd prime such as 10^9+7 would make any triple
// with an odd first difference "fit" an LCG, since three points always
// solve once the modulus is fixed.
func DefaultBaseModuli() []*big.Int {
	return []*big.Int{
		pow(2, 16),
		pow(2, 31),
		pow(2, 32),
		pow(2, 48),
		pow(2, 64),
		pow(10, 6),
		pow(10, 8),
	}
}

// CandidateModuli returns the moduli to try for observed, in detection
// priority order.
//
// # Description
//
// The set is built fresh on every call. Moduli that cannot hold every
// observation as a residue (m <= max observed) or are <= 1 are dropped,
// duplicates are removed, and the rest are sorted ascending so the smallest
// modulus that validates wins.
//
// # Inputs
//
//   - observed: the three observations.
//   - cfg: base list and derivation switch.
//
// # Outputs
//
//   - []*big.Int: fresh values, safe for the caller to keep.
func CandidateModuli(observed model.Observed, cfg CandidateConfig) []*big.Int {
	base := cfg.Base
	if base == nil {
		base = DefaultBaseModuli()
	}

	maxObserved := observed.Max()
	all := make([]*big.Int, 0, len(base)+2)
	for _, m := range base {
		if m != nil {
			all = append(all, new(big.Int).Set(m))
		}
	}
	if cfg.Derive {
		all = append(all, DigitModulus(maxObserved), NextPowerOfTwo(maxObserved))
	}

	out := all[:0]
	for _, m := range all {
		if m.Cmp(one) > 0 && m.Cmp(maxObserved) > 0 {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b *big.Int) int { return a.Cmp(b) })
	return slices.CompactFunc(out, func(a, b *big.Int) bool { return a.Cmp(b) == 0 })
}

// DigitModulus returns 10^d where d is the number of decimal digits of v
// (v = 0 counts as one digit).
func DigitModulus(v *big.Int) *big.Int {
	digits := len(new(big.Int).Abs(v).String())
	return pow(10, int64(digits))
}

// NextPowerOfTwo returns the smallest power of two strictly greater than v
// (1 for negative v).
func NextPowerOfTwo(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Lsh(one, uint(v.BitLen()))
}

func pow(base, exp int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(base), big.NewInt(exp), nil)
}
