// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"math/big"
	"strings"
)

// ObservationCount is the number of consecutive outputs an analysis needs.
// Two unknowns (multiplier, increment) need two equations, i.e. three points.
const ObservationCount = 3

// Observed is an ordered run of exactly three OTP values interpreted as
// unsigned integer residues.
//
// # Description
//
// Observed copies its inputs on construction and hands out copies from its
// accessors, so a value can be shared between goroutines and reused across
// analyses without defensive cloning by the caller.
//
// # Thread Safety
//
// Observed is immutable after construction and safe for concurrent reads.
type Observed struct {
	values [ObservationCount]*big.Int
}

// NewObserved validates and captures three observations.
//
// # Inputs
//
//   - values: exactly three non-nil, non-negative integers in output order.
//
// # Outputs
//
//   - Observed: the captured sequence.
//   - error: wraps ErrInvalidInput on a wrong count, nil or negative value.
func NewObserved(values ...*big.Int) (Observed, error) {
	var o Observed
	if len(values) != ObservationCount {
		return o, invalid("observed", "need exactly %d values, got %d", ObservationCount, len(values))
	}
	for i, v := range values {
		if v == nil {
			return o, invalid("observed", "value %d is nil", i)
		}
		if v.Sign() < 0 {
			return o, invalid("observed", "value %d is negative (%s)", i, v)
		}
		o.values[i] = new(big.Int).Set(v)
	}
	return o, nil
}

// ObservedFromInt64 is a convenience constructor for small literals.
func ObservedFromInt64(x0, x1, x2 int64) (Observed, error) {
	return NewObserved(big.NewInt(x0), big.NewInt(x1), big.NewInt(x2))
}

// ParseObserved parses three base-10 integers.
func ParseObserved(tokens []string) (Observed, error) {
	values := make([]*big.Int, 0, len(tokens))
	for i, tok := range tokens {
		v, ok := new(big.Int).SetString(strings.TrimSpace(tok), 10)
		if !ok {
			return Observed{}, invalid("observed", "value %d (%q) is not an integer", i, tok)
		}
		values = append(values, v)
	}
	return NewObserved(values...)
}

// At returns a copy of the i-th observation (0, 1 or 2).
func (o Observed) At(i int) *big.Int {
	return new(big.Int).Set(o.values[i])
}

// Values returns copies of all three observations.
func (o Observed) Values() []*big.Int {
	out := make([]*big.Int, ObservationCount)
	for i := range o.values {
		out[i] = o.At(i)
	}
	return out
}

// Last returns a copy of the most recent observation, the usual forecast seed.
func (o Observed) Last() *big.Int {
	return o.At(ObservationCount - 1)
}

// Max returns a copy of the largest observation.
func (o Observed) Max() *big.Int {
	m := o.values[0]
	for _, v := range o.values[1:] {
		if v.Cmp(m) > 0 {
			m = v
		}
	}
	return new(big.Int).Set(m)
}

// IsZero reports whether o was never initialized by NewObserved.
func (o Observed) IsZero() bool {
	return o.values[0] == nil
}

// String renders the observations as "[x0, x1, x2]".
func (o Observed) String() string {
	if o.IsZero() {
		return "[]"
	}
	parts := make([]string, ObservationCount)
	for i, v := range o.values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
