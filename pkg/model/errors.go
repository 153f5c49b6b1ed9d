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
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when observations or forecast arguments are
// malformed. It is surfaced immediately and never produces a partial result.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError provides details about rejected input.
type InvalidInputError struct {
	// Field names the offending argument (e.g. "observed", "count").
	Field string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Unwrap returns the sentinel error.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// invalid is shorthand for constructing an *InvalidInputError.
func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
