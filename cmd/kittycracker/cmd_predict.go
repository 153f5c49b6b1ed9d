// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/kittycracker/cmd/kittycracker/config"
	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/model"
	"github.com/AleutianAI/kittycracker/pkg/predict"
	"github.com/AleutianAI/kittycracker/pkg/ux"
	"github.com/AleutianAI/kittycracker/pkg/validation"
	"github.com/AleutianAI/kittycracker/services/oracle/datatypes"
	"github.com/spf13/cobra"
)

// predictOptions are the predict flags.
type predictOptions struct {
	Kind       string
	Multiplier string
	Increment  string
	Step       string
	Modulus    string
	Seed       string
	Count      int
	Width      int
	JSON       bool
}

func runPredict(cmd *cobra.Command, args []string) error {
	opts := predictOptions{
		Kind:       predictKind,
		Multiplier: predictMultiplier,
		Increment:  predictIncrement,
		Step:       predictStep,
		Modulus:    predictModulus,
		Seed:       predictSeed,
		Count:      predictCount,
		Width:      predictWidth,
		JSON:       predictJSON,
	}
	if !cmd.Flags().Changed("count") {
		opts.Count = config.Global.Forecast.Count
	}
	return executePredict(opts, ux.NewPrinter(), os.Stdout)
}

// executePredict builds the generator from opts and prints count values
// after the seed.
func executePredict(opts predictOptions, printer *ux.Printer, stdout io.Writer) error {
	start := time.Now()

	candidate, err := opts.candidate()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if opts.Width < 0 || opts.Width > validation.MaxDigits {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("--width must be in [0, %d]", validation.MaxDigits)}
	}
	if opts.Count > analysis.MaxPredict {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("--count must be at most %d", analysis.MaxPredict)}
	}
	seed, err := validation.ParseSeed(opts.Seed)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("--seed: %w", err)}
	}

	forecast, err := predict.Predict(candidate, seed, opts.Count)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	values := analysis.Format(forecast, opts.Width)
	cliLogger.Info("forecast generated", "model", candidate.String(), "count", len(values))

	if opts.JSON {
		return OutputResult(stdout, "predict", start, datatypes.PredictResponse{
			Model:       candidate,
			Seed:        seed.String(),
			Predictions: values,
		})
	}
	printer.Model(candidate)
	printer.Predictions(values)
	return nil
}

// candidate maps the flags onto the model wire format so that decoding
// applies the same validation as the oracle's /v1/predict.
func (o predictOptions) candidate() (model.Candidate, error) {
	wire := map[string]string{}
	switch strings.ToLower(o.Kind) {
	case "lcg", string(model.KindLinearCongruential):
		wire["kind"] = string(model.KindLinearCongruential)
		wire["multiplier"] = o.Multiplier
		wire["increment"] = o.Increment
		wire["modulus"] = o.Modulus
	case "affine", "counter", string(model.KindAffineCounter):
		wire["kind"] = string(model.KindAffineCounter)
		wire["step"] = o.Step
		wire["modulus"] = o.Modulus
	default:
		return nil, fmt.Errorf("--kind must be lcg or affine, got %q", o.Kind)
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	return model.DecodeCandidate(data)
}
