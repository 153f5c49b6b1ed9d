// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package predict iterates a recovered generator forward to forecast OTPs.
//
// A Forecast is a finite, lazy, restartable sequence: ranging over All()
// recomputes the recurrence from the seed each time, so two traversals (or
// two Forecasts built from the same inputs) always yield the same values.
package predict

import (
	"errors"
	"fmt"
	"iter"
	"math/big"

	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/model"
)

// ErrUnsupportedModel is returned when there is no recurrence to iterate.
var ErrUnsupportedModel = errors.New("unsupported model")

// Forecast is count future values of a generator starting after seed.
type Forecast struct {
	model model.Candidate
	seed  *big.Int
	count int
	step  func(cur *big.Int) *big.Int
}

// Predict builds a forecast of count values following seed.
//
// # Inputs
//
//   - m: a validated AffineCounter or LinearCongruential.
//   - seed: the last observed value (x2).
//   - count: number of values, count >= 0. Values are produced on demand,
//     so callers that collect them should bound count themselves.
//
// # Outputs
//
//   - *Forecast: lazy sequence; nothing is computed until iterated.
//   - error: ErrUnsupportedModel for None or an unknown variant;
//     model.ErrInvalidInput for a nil seed, bad count or invalid parameters.
func Predict(m model.Candidate, seed *big.Int, count int) (*Forecast, error) {
	if model.IsNone(m) {
		return nil, fmt.Errorf("predict: %w: nothing to iterate", ErrUnsupportedModel)
	}
	if count < 0 {
		return nil, fmt.Errorf("predict: %w", &model.InvalidInputError{
			Field:  "count",
			Reason: fmt.Sprintf("must not be negative, got %d", count),
		})
	}
	if seed == nil {
		return nil, fmt.Errorf("predict: %w", &model.InvalidInputError{Field: "seed", Reason: "missing"})
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	step, err := stepper(m)
	if err != nil {
		return nil, err
	}
	return &Forecast{
		model: m,
		seed:  new(big.Int).Set(seed),
		count: count,
		step:  step,
	}, nil
}

// stepper returns the recurrence for m. Parameters are captured by value
// (copied) so later mutation of m's big.Ints cannot change the forecast.
func stepper(m model.Candidate) (func(cur *big.Int) *big.Int, error) {
	switch g := m.(type) {
	case model.AffineCounter:
		step := new(big.Int).Set(g.Step)
		if g.Unbounded() {
			return func(cur *big.Int) *big.Int {
				return new(big.Int).Add(cur, step)
			}, nil
		}
		mod := new(big.Int).Set(g.Modulus)
		step = modarith.Mod(step, mod)
		return func(cur *big.Int) *big.Int {
			next := new(big.Int).Add(cur, step)
			return next.Mod(next, mod)
		}, nil

	case model.LinearCongruential:
		a := new(big.Int).Set(g.Multiplier)
		c := new(big.Int).Set(g.Increment)
		mod := new(big.Int).Set(g.Modulus)
		return func(cur *big.Int) *big.Int {
			next := new(big.Int).Mul(a, cur)
			next.Add(next, c)
			return next.Mod(next, mod)
		}, nil

	default:
		return nil, fmt.Errorf("predict: %w: %s", ErrUnsupportedModel, m.Kind())
	}
}

// Model returns the generator being iterated.
func (f *Forecast) Model() model.Candidate { return f.model }

// Seed returns a copy of the starting value.
func (f *Forecast) Seed() *big.Int { return new(big.Int).Set(f.seed) }

// Len returns the number of values the forecast yields.
func (f *Forecast) Len() int { return f.count }

// All yields the forecast values in order. Each call restarts from the
// seed; every yielded *big.Int is freshly allocated and owned by the caller.
func (f *Forecast) All() iter.Seq[*big.Int] {
	return func(yield func(*big.Int) bool) {
		cur := f.seed
		for range f.count {
			cur = f.step(cur)
			if !yield(new(big.Int).Set(cur)) {
				return
			}
		}
	}
}

// Values collects the whole forecast.
func (f *Forecast) Values() []*big.Int {
	out := make([]*big.Int, 0, f.count)
	for v := range f.All() {
		out = append(out, v)
	}
	return out
}

// Strings collects the forecast as base-10 strings.
func (f *Forecast) Strings() []string {
	out := make([]string, 0, f.count)
	for v := range f.All() {
		out = append(out, v.String())
	}
	return out
}
