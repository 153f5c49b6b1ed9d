// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package detect decides whether three observed OTPs came from a reversible
// linear generator and recovers its parameters.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                        Detection Flow                            │
//	├──────────────────────────────────────────────────────────────────┤
//	│                                                                  │
//	│  ┌────────────┐   ┌──────────────────┐   ┌─────────────────────┐ │
//	│  │ Observed   │──▶│ AffineCounter    │──▶│ LinearCongruential  │ │
//	│  │ [x0,x1,x2] │   │ Detector         │   │ Detector            │ │
//	│  └────────────┘   └──────────────────┘   └─────────────────────┘ │
//	│                          │ found                │ found / none   │
//	│                          ▼                      ▼                │
//	│                   ┌────────────────────────────────────┐         │
//	│                   │ model.Candidate                    │         │
//	│                   └────────────────────────────────────┘         │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Priority
//
// The affine counter runs first. It is the LCG with multiplier 1, so when
// both fit, reporting the counter keeps an LCG with a = 1 from masking it.
//
// # Identifiability
//
// Three points give two equations. Once a modulus is fixed they determine
// the multiplier and increment, but the modulus itself cannot be recovered
// from three outputs of an unknown-modulus LCG. Detection is therefore only
// as good as the candidate list (see modarith.CandidateModuli); the
// detectors never search outside it.
//
// # Thread Safety
//
// Detectors hold only immutable configuration. Analyze is safe for
// concurrent use.
package detect
