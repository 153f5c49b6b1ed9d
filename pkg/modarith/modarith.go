// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package modarith implements the modular arithmetic used to recover linear
// generator parameters: extended GCD, modular inverse, non-negative
// reduction, and the bounded list of moduli a detector is allowed to try.
//
// Every function is pure and operates on *big.Int without mutating its
// arguments.
package modarith

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNotInvertible is returned by ModInverse when gcd(a, m) != 1.
var ErrNotInvertible = errors.New("not invertible")

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// GCDExtended returns g = gcd(a, b) and Bézout coefficients x, y with
// a*x + b*y = g.
//
// # Inputs
//
//   - a: any integer.
//   - b: a non-negative integer.
//
// # Outputs
//
//   - g: the non-negative greatest common divisor.
//   - x, y: coefficients satisfying a*x + b*y = g.
//
// # Limitations
//
//   - Panics if b is negative; callers reduce first.
func GCDExtended(a, b *big.Int) (g, x, y *big.Int) {
	if b.Sign() < 0 {
		panic("modarith: GCDExtended requires b >= 0")
	}

	// Iterative form of the extended Euclidean algorithm:
	// invariant oldR = a*oldS + b*oldT and r = a*s + b*t.
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// Mod returns a mod m in [0, m) for any sign of a.
//
// big.Int.Mod already implements Euclidean modulus; Mod exists so callers
// never reach for Rem by accident and always get a fresh value.
func Mod(a, m *big.Int) *big.Int {
	return new(big.Int).Mod(a, m)
}

// ModInverse returns the unique r in [0, m) with a*r ≡ 1 (mod m).
//
// # Inputs
//
//   - a: any integer; reduced modulo m first.
//   - m: modulus, must be > 1.
//
// # Outputs
//
//   - *big.Int: the inverse.
//   - error: wraps ErrNotInvertible when gcd(a, m) != 1 or m <= 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Cmp(one) <= 0 {
		return nil, fmt.Errorf("inverse of %s mod %s: modulus must exceed 1: %w", a, m, ErrNotInvertible)
	}
	g, x, _ := GCDExtended(Mod(a, m), m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("inverse of %s mod %s: gcd is %s: %w", a, m, g, ErrNotInvertible)
	}
	return x.Mod(x, m), nil
}

// IsZero reports whether v == 0.
func IsZero(v *big.Int) bool {
	return v.Cmp(zero) == 0
}
