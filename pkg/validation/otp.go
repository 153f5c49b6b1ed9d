// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-typed OTPs and moduli before they reach the
// detection engine.
//
// Input arrives from a terminal prompt, command-line arguments, a config
// file or an HTTP body. Every path goes through the functions here so that
// the engine only ever sees non-negative decimal integers of bounded size.
package validation

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/AleutianAI/kittycracker/pkg/model"
)

// MaxDigits bounds a single OTP or modulus. Anything longer is almost
// certainly a paste error, and rejecting it keeps big.Int work bounded.
const MaxDigits = 256

// digitsPattern matches a non-empty run of ASCII decimal digits.
var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// signedPattern is digitsPattern with an optional leading minus.
var signedPattern = regexp.MustCompile(`^-?[0-9]+$`)

// separators splits on commas and any whitespace.
var separators = regexp.MustCompile(`[\s,]+`)

// OTPs is a parsed line of observed one-time passwords.
type OTPs struct {
	// Tokens are the trimmed inputs as typed.
	Tokens []string

	// Values are the parsed integers, same order as Tokens.
	Values []*big.Int

	// Width is the shared digit count when every token has the same
	// length, 0 otherwise. Forecasts are zero-padded to it.
	Width int
}

// Observed converts the tokens into the engine's observation type.
func (o OTPs) Observed() (model.Observed, error) {
	return model.ParseObserved(o.Tokens)
}

// SplitOTPs splits a line on commas and whitespace, dropping empty tokens.
//
// Example:
//
//	SplitOTPs("123456, 654321  000111") // ["123456" "654321" "000111"]
func SplitOTPs(line string) []string {
	var out []string
	for _, tok := range separators.Split(strings.TrimSpace(line), -1) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ValidateOTP checks that token is 1 to MaxDigits decimal digits.
func ValidateOTP(token string) error {
	if token == "" {
		return &model.InvalidInputError{Field: "otp", Reason: "cannot be empty"}
	}
	if len(token) > MaxDigits {
		return &model.InvalidInputError{Field: "otp", Reason: fmt.Sprintf("longer than %d digits", MaxDigits)}
	}
	if !digitsPattern.MatchString(token) {
		return &model.InvalidInputError{Field: "otp", Reason: fmt.Sprintf("%q is not a non-negative integer", token)}
	}
	return nil
}

// ParseSeed parses a forecast seed. Unlike an OTP a seed may be negative,
// since unbounded counters step below zero.
func ParseSeed(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &model.InvalidInputError{Field: "seed", Reason: "cannot be empty"}
	}
	if len(strings.TrimPrefix(s, "-")) > MaxDigits {
		return nil, &model.InvalidInputError{Field: "seed", Reason: fmt.Sprintf("longer than %d digits", MaxDigits)}
	}
	if !signedPattern.MatchString(s) {
		return nil, &model.InvalidInputError{Field: "seed", Reason: fmt.Sprintf("%q is not an integer", s)}
	}
	v, _ := new(big.Int).SetString(s, 10)
	return v, nil
}

// ParseOTPTokens validates each token and requires exactly want of them.
// All invalid tokens are reported together.
func ParseOTPTokens(tokens []string, want int) (OTPs, error) {
	if len(tokens) != want {
		return OTPs{}, &model.InvalidInputError{
			Field:  "otp",
			Reason: fmt.Sprintf("expected exactly %d OTPs, got %d", want, len(tokens)),
		}
	}

	var invalid []string
	out := OTPs{Tokens: make([]string, 0, want), Values: make([]*big.Int, 0, want)}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if err := ValidateOTP(tok); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", tok))
			continue
		}
		v, _ := new(big.Int).SetString(tok, 10)
		out.Tokens = append(out.Tokens, tok)
		out.Values = append(out.Values, v)
	}
	if len(invalid) > 0 {
		return OTPs{}, &model.InvalidInputError{
			Field:  "otp",
			Reason: "not non-negative integers: " + strings.Join(invalid, ", "),
		}
	}

	out.Width = commonWidth(out.Tokens)
	return out, nil
}

// ParseOTPs splits line and parses exactly want OTPs from it.
func ParseOTPs(line string, want int) (OTPs, error) {
	return ParseOTPTokens(SplitOTPs(line), want)
}

// commonWidth returns the shared token length, or 0 when lengths differ.
func commonWidth(tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	w := len(tokens[0])
	for _, tok := range tokens[1:] {
		if len(tok) != w {
			return 0
		}
	}
	return w
}

// PadToWidth left-pads v with zeros to width digits. Negative values and
// values already at least width digits long are returned unchanged.
func PadToWidth(v *big.Int, width int) string {
	s := v.String()
	if v.Sign() < 0 || len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// ParseModulus parses a decimal modulus, which must be greater than 1.
func ParseModulus(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if len(s) > MaxDigits || !digitsPattern.MatchString(s) {
		return nil, &model.InvalidInputError{Field: "modulus", Reason: fmt.Sprintf("%q is not a positive integer", s)}
	}
	m, _ := new(big.Int).SetString(s, 10)
	if m.Cmp(big.NewInt(1)) <= 0 {
		return nil, &model.InvalidInputError{Field: "modulus", Reason: fmt.Sprintf("%s must be greater than 1", s)}
	}
	return m, nil
}

// ParseModuli parses each modulus. An empty input yields an empty, non-nil
// slice.
func ParseModuli(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(values))
	for _, s := range values {
		m, err := ParseModulus(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
