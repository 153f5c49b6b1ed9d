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
	"bytes"
	"log/slog"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func observed(t *testing.T, x0, x1, x2 int64) model.Observed {
	t.Helper()
	o, err := model.ObservedFromInt64(x0, x1, x2)
	require.NoError(t, err)
	return o
}

// step applies the recurrence of c to x.
func step(t *testing.T, c model.Candidate, x *big.Int) *big.Int {
	t.Helper()
	switch g := c.(type) {
	case model.AffineCounter:
		next := new(big.Int).Add(x, g.Step)
		if g.Unbounded() {
			return next
		}
		return next.Mod(next, g.Modulus)
	case model.LinearCongruential:
		next := new(big.Int).Mul(g.Multiplier, x)
		next.Add(next, g.Increment)
		return next.Mod(next, g.Modulus)
	}
	t.Fatalf("cannot step %v", c)
	return nil
}

// =============================================================================
// Scenario Tests
// =============================================================================

// TestAnalyze_ArithmeticProgression verifies [5, 8, 11] is an unbounded counter.
func TestAnalyze_ArithmeticProgression(t *testing.T) {
	got := New().Analyze(observed(t, 5, 8, 11))

	ac, ok := got.(model.AffineCounter)
	require.True(t, ok, "got %v", got)
	assert.True(t, ac.Unbounded())
	assert.Equal(t, "3", ac.Step.String())
}

// TestAnalyze_DecreasingProgression verifies negative steps stay signed.
func TestAnalyze_DecreasingProgression(t *testing.T) {
	got := New().Analyze(observed(t, 11, 8, 5))

	ac, ok := got.(model.AffineCounter)
	require.True(t, ok, "got %v", got)
	assert.True(t, ac.Unbounded())
	assert.Equal(t, "-3", ac.Step.String())
}

// TestAnalyze_ConstantSequence verifies a stuck generator is a zero-step counter.
func TestAnalyze_ConstantSequence(t *testing.T) {
	got := New().Analyze(observed(t, 42, 42, 42))

	ac, ok := got.(model.AffineCounter)
	require.True(t, ok, "got %v", got)
	assert.Equal(t, "0", ac.Step.String())
}

// TestAnalyze_SuppliedModulus verifies LCG recovery for m=97, a=5, c=3.
func TestAnalyze_SuppliedModulus(t *testing.T) {
	d := New(WithModuli(bi(97)))
	got := d.Analyze(observed(t, 10, 53, 74))

	lcg, ok := got.(model.LinearCongruential)
	require.True(t, ok, "got %v", got)
	assert.Equal(t, "5", lcg.Multiplier.String())
	assert.Equal(t, "3", lcg.Increment.String())
	assert.Equal(t, "97", lcg.Modulus.String())
}

// TestAnalyze_DefaultModuliPickSmallest verifies an LCG fit under the
// smallest derived modulus wins when the true modulus is not a candidate.
func TestAnalyze_DefaultModuliPickSmallest(t *testing.T) {
	got := New().Analyze(observed(t, 10, 53, 74))

	lcg, ok := got.(model.LinearCongruential)
	require.True(t, ok, "got %v", got)
	assert.Equal(t, "100", lcg.Modulus.String())
	assert.Equal(t, "47", lcg.Multiplier.String())
	assert.Equal(t, "83", lcg.Increment.String())
}

// TestAnalyze_NoModel verifies [7, 13, 20] has no fit among the defaults.
func TestAnalyze_NoModel(t *testing.T) {
	got := New().Analyze(observed(t, 7, 13, 20))
	assert.True(t, model.IsNone(got), "got %v", got)
	assert.Equal(t, model.KindNone, got.Kind())
}

// TestAnalyze_WrappingCounter verifies a six-digit counter that wrapped.
func TestAnalyze_WrappingCounter(t *testing.T) {
	got := New().Analyze(observed(t, 999990, 999997, 4))

	ac, ok := got.(model.AffineCounter)
	require.True(t, ok, "got %v", got)
	assert.False(t, ac.Unbounded())
	assert.Equal(t, "1000000", ac.Modulus.String())
	assert.Equal(t, "7", ac.Step.String())
}

// TestAnalyze_CounterBeatsLCG verifies the affine counter takes priority when
// an LCG with multiplier 1 would also fit.
func TestAnalyze_CounterBeatsLCG(t *testing.T) {
	// Counter mod 97 with step 50: 60 -> 13 -> 63.
	d := New(WithModuli(bi(97)), WithDerivedModuli(false))
	got := d.Analyze(observed(t, 60, 13, 63))

	assert.Equal(t, model.KindAffineCounter, got.Kind(), "got %v", got)

	// The LCG detector alone reports the same recurrence as a = 1.
	lcg := NewLinearCongruentialDetector(modarith.CandidateConfig{Base: []*big.Int{bi(97)}}, nil).
		Detect(observed(t, 60, 13, 63))
	require.Equal(t, model.KindLinearCongruential, lcg.Kind())
	assert.Equal(t, "1", lcg.(model.LinearCongruential).Multiplier.String())
}

// TestAnalyze_NonInvertibleSkipped verifies a modulus sharing a factor with
// the first difference is skipped, not fatal.
func TestAnalyze_NonInvertibleSkipped(t *testing.T) {
	// delta0 = 6 shares 2 with 32; 97 is tried next.
	d := New(WithModuli(bi(32), bi(97)), WithDerivedModuli(false))
	got := d.Analyze(observed(t, 1, 7, 20))

	lcg, ok := got.(model.LinearCongruential)
	require.True(t, ok, "got %v", got)
	assert.Equal(t, "97", lcg.Modulus.String())
}

// TestAnalyze_Deterministic verifies repeated calls agree.
func TestAnalyze_Deterministic(t *testing.T) {
	d := New()
	o := observed(t, 10, 53, 74)
	first := d.Analyze(o)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.String(), d.Analyze(o).String())
	}
}

// TestAnalyzeValues_InvalidInput verifies validation happens before detection.
func TestAnalyzeValues_InvalidInput(t *testing.T) {
	_, err := New().AnalyzeValues(bi(1), bi(2))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	c, err := New().AnalyzeValues(bi(5), bi(8), bi(11))
	require.NoError(t, err)
	assert.Equal(t, model.KindAffineCounter, c.Kind())
}

// TestAnalyze_LogsRejectedModuli verifies Debug tracing reaches the logger.
func TestAnalyze_LogsRejectedModuli(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(WithLogger(logger)).Analyze(observed(t, 7, 13, 20))

	out := buf.String()
	assert.True(t, strings.Contains(out, "lcg modulus skipped"), out)
	assert.True(t, strings.Contains(out, "detector found nothing"), out)
}

// =============================================================================
// Property Tests
// =============================================================================

var primes = []int64{2, 3, 5, 7, 97, 251, 65521, 1000003, 2147483647}

// TestProperty_LCGRoundTrip verifies that for random a, c, x0 under a prime
// modulus supplied as a candidate, the detected model reproduces x1 and x2,
// and that a == 1 yields the more specific affine counter.
func TestProperty_LCGRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(20250101))

	for i := 0; i < 2000; i++ {
		m := bi(primes[rng.Intn(len(primes))])
		a := new(big.Int).Rand(rng, m)
		if i%10 == 0 {
			a.SetInt64(1)
		}
		c := new(big.Int).Rand(rng, m)
		x0 := new(big.Int).Rand(rng, m)

		truth := model.LinearCongruential{Multiplier: a, Increment: c, Modulus: m}
		x1 := step(t, truth, x0)
		x2 := step(t, truth, x1)

		o, err := model.NewObserved(x0, x1, x2)
		require.NoError(t, err)

		got := New(WithModuli(m)).Analyze(o)
		require.False(t, model.IsNone(got), "m=%s a=%s c=%s x0=%s", m, a, c, x0)

		if a.Cmp(bi(1)) == 0 {
			assert.Equal(t, model.KindAffineCounter, got.Kind(), "a == 1 must be a counter: %v", got)
		}
		assert.Equal(t, x1.String(), step(t, got, x0).String(), "x1 for %v", got)
		assert.Equal(t, x2.String(), step(t, got, x1).String(), "x2 for %v", got)
	}
}

// TestProperty_ProgressionIsUnboundedCounter verifies every arithmetic
// progression is reported as an unbounded counter with step x1 - x0.
func TestProperty_ProgressionIsUnboundedCounter(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	limit := new(big.Int).Lsh(bi(1), 80)

	for i := 0; i < 500; i++ {
		x0 := new(big.Int).Rand(rng, limit)
		d := new(big.Int).Rand(rng, limit)
		if rng.Intn(2) == 0 && d.Cmp(x0) <= 0 {
			d.Neg(d)
			d.Quo(d, bi(2))
		}
		x1 := new(big.Int).Add(x0, d)
		x2 := new(big.Int).Add(x1, d)
		if x2.Sign() < 0 {
			continue
		}

		o, err := model.NewObserved(x0, x1, x2)
		require.NoError(t, err)

		got := New().Analyze(o)
		ac, ok := got.(model.AffineCounter)
		require.True(t, ok, "got %v", got)
		assert.True(t, ac.Unbounded())
		assert.Equal(t, d.String(), ac.Step.String())
	}
}

// TestProperty_ConcurrentAnalyze verifies a shared Detector is reentrant.
func TestProperty_ConcurrentAnalyze(t *testing.T) {
	d := New(WithModuli(bi(97)))
	o := observed(t, 10, 53, 74)
	want := d.Analyze(o).String()

	results := make(chan string, 16)
	for i := 0; i < cap(results); i++ {
		go func() { results <- d.Analyze(o).String() }()
	}
	for i := 0; i < cap(results); i++ {
		assert.Equal(t, want, <-results)
	}
}
