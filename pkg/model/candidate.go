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
	"encoding/json"
	"fmt"
	"math/big"
)

// Kind identifies a generator family.
type Kind string

const (
	KindAffineCounter      Kind = "affine_counter"
	KindLinearCongruential Kind = "linear_congruential"
	KindNone               Kind = "none"
)

// UnboundedLabel is how an affine counter without wraparound is rendered.
const UnboundedLabel = "unbounded"

// Candidate is a hypothesized generator together with its parameters.
//
// The set of implementations is closed: AffineCounter, LinearCongruential
// and None. Callers switch on the concrete type or on Kind().
type Candidate interface {
	// Kind returns the generator family.
	Kind() Kind

	// Family returns a short display name ("Affine Counter", "LCG", "None").
	Family() string

	// Validate checks the variant's parameter invariants.
	Validate() error

	fmt.Stringer
	json.Marshaler

	candidate()
}

// =============================================================================
// AffineCounter
// =============================================================================

// AffineCounter models x_{n+1} = (x_n + Step) mod Modulus.
//
// A nil Modulus means no wraparound was observed. Step may be negative in
// either case.
type AffineCounter struct {
	Step    *big.Int
	Modulus *big.Int
}

// NewAffineCounter copies its arguments. Pass a nil modulus for unbounded.
func NewAffineCounter(step, modulus *big.Int) AffineCounter {
	ac := AffineCounter{Step: new(big.Int).Set(step)}
	if modulus != nil {
		ac.Modulus = new(big.Int).Set(modulus)
	}
	return ac
}

// Unbounded reports whether the counter has no modulus.
func (a AffineCounter) Unbounded() bool { return a.Modulus == nil }

func (a AffineCounter) Kind() Kind { return KindAffineCounter }
func (a AffineCounter) Family() string { return "Affine Counter" }
func (a AffineCounter) candidate() {}

// Validate checks Step is set and, when bounded, Modulus > 1. Step may be
// any integer; a negative step counts down and wraps.
func (a AffineCounter) Validate() error {
	if a.Step == nil {
		return invalid("step", "missing")
	}
	if a.Unbounded() {
		return nil
	}
	if a.Modulus.Cmp(big.NewInt(1)) <= 0 {
		return invalid("modulus", "must be greater than 1, got %s", a.Modulus)
	}
	return nil
}

func (a AffineCounter) String() string {
	return fmt.Sprintf("AffineCounter{step: %s, modulus: %s}", a.Step, modulusString(a.Modulus))
}

// MarshalJSON encodes integers as decimal strings.
func (a AffineCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCandidate{
		Kind:    KindAffineCounter,
		Step:    a.Step.String(),
		Modulus: modulusString(a.Modulus),
	})
}

// =============================================================================
// LinearCongruential
// =============================================================================

// LinearCongruential models x_{n+1} = (Multiplier*x_n + Increment) mod Modulus.
//
// The multiplier need not be invertible modulo Modulus; the model is only
// ever iterated forward.
type LinearCongruential struct {
	Multiplier *big.Int
	Increment  *big.Int
	Modulus    *big.Int
}

// NewLinearCongruential copies its arguments.
func NewLinearCongruential(multiplier, increment, modulus *big.Int) LinearCongruential {
	return LinearCongruential{
		Multiplier: new(big.Int).Set(multiplier),
		Increment:  new(big.Int).Set(increment),
		Modulus:    new(big.Int).Set(modulus),
	}
}

func (l LinearCongruential) Kind() Kind { return KindLinearCongruential }
func (l LinearCongruential) Family() string { return "LCG" }
func (l LinearCongruential) candidate() {}

// Validate checks Modulus > 1 and that both coefficients are reduced.
func (l LinearCongruential) Validate() error {
	if l.Multiplier == nil || l.Increment == nil || l.Modulus == nil {
		return invalid("linear_congruential", "multiplier, increment and modulus are required")
	}
	if l.Modulus.Cmp(big.NewInt(1)) <= 0 {
		return invalid("modulus", "must be greater than 1, got %s", l.Modulus)
	}
	if l.Multiplier.Sign() < 0 || l.Multiplier.Cmp(l.Modulus) >= 0 {
		return invalid("multiplier", "must be in [0, %s), got %s", l.Modulus, l.Multiplier)
	}
	if l.Increment.Sign() < 0 || l.Increment.Cmp(l.Modulus) >= 0 {
		return invalid("increment", "must be in [0, %s), got %s", l.Modulus, l.Increment)
	}
	return nil
}

func (l LinearCongruential) String() string {
	return fmt.Sprintf("LinearCongruential{multiplier: %s, increment: %s, modulus: %s}",
		l.Multiplier, l.Increment, l.Modulus)
}

// MarshalJSON encodes integers as decimal strings.
func (l LinearCongruential) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCandidate{
		Kind:       KindLinearCongruential,
		Multiplier: l.Multiplier.String(),
		Increment:  l.Increment.String(),
		Modulus:    l.Modulus.String(),
	})
}

// =============================================================================
// None
// =============================================================================

// None reports that no reversible linear model fits the observations.
type None struct{}

func (None) Kind() Kind { return KindNone }
func (None) Family() string { return "None" }
func (None) Validate() error { return nil }
func (None) String() string { return "None" }
func (None) candidate() {}

// MarshalJSON encodes {"kind":"none"}.
func (None) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCandidate{Kind: KindNone})
}

// IsNone reports whether c is nil or the None variant.
func IsNone(c Candidate) bool {
	if c == nil {
		return true
	}
	_, ok := c.(None)
	return ok
}

// =============================================================================
// Wire format
// =============================================================================

type wireCandidate struct {
	Kind       Kind   `json:"kind"`
	Step       string `json:"step,omitempty"`
	Multiplier string `json:"multiplier,omitempty"`
	Increment  string `json:"increment,omitempty"`
	Modulus    string `json:"modulus,omitempty"`
}

// DecodeCandidate parses the JSON produced by a Candidate's MarshalJSON and
// validates the result.
func DecodeCandidate(data []byte) (Candidate, error) {
	var w wireCandidate
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", &InvalidInputError{Field: "model", Reason: err.Error()})
	}

	var c Candidate
	switch w.Kind {
	case KindNone:
		return None{}, nil
	case KindAffineCounter:
		step, err := parseInt("step", w.Step)
		if err != nil {
			return nil, err
		}
		ac := AffineCounter{Step: step}
		if w.Modulus != "" && w.Modulus != UnboundedLabel {
			if ac.Modulus, err = parseInt("modulus", w.Modulus); err != nil {
				return nil, err
			}
		}
		c = ac
	case KindLinearCongruential:
		a, err := parseInt("multiplier", w.Multiplier)
		if err != nil {
			return nil, err
		}
		inc, err := parseInt("increment", w.Increment)
		if err != nil {
			return nil, err
		}
		m, err := parseInt("modulus", w.Modulus)
		if err != nil {
			return nil, err
		}
		c = LinearCongruential{Multiplier: a, Increment: inc, Modulus: m}
	default:
		return nil, invalid("kind", "unknown generator kind %q", w.Kind)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseInt(field, s string) (*big.Int, error) {
	if s == "" {
		return nil, invalid(field, "missing")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, invalid(field, "%q is not an integer", s)
	}
	return v, nil
}

func modulusString(m *big.Int) string {
	if m == nil {
		return UnboundedLabel
	}
	return m.String()
}
