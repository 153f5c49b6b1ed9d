// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model holds the value types shared by detection and prediction.
//
// Observed is the immutable three-value input of one analysis run.
// Candidate is the closed set of generator hypotheses a detector may return:
//
//	AffineCounter       x_{n+1} = (x_n + step) mod m     (m may be unbounded)
//	LinearCongruential  x_{n+1} = (a*x_n + c) mod m
//	None                no reversible linear model found
//
// All integers are *big.Int; OTP values and moduli routinely exceed 64 bits.
//
// # Thread Safety
//
// Values are never mutated after construction and may be shared freely.
package model
