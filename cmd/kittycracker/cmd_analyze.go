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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AleutianAI/kittycracker/cmd/kittycracker/config"
	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/model"
	"github.com/AleutianAI/kittycracker/pkg/ux"
	"github.com/AleutianAI/kittycracker/pkg/validation"
	"github.com/spf13/cobra"
)

// errOTPArgsRequired is returned in JSON mode when no OTPs were given,
// since prompting would corrupt the JSON on stdout.
var errOTPArgsRequired = errors.New("OTPs must be passed as arguments with --json")

// analyzeOptions are the resolved analyze flags.
type analyzeOptions struct {
	Yes     bool
	Predict int
	JSON    bool
}

// analyzeSession is one run of the analyze command.
type analyzeSession struct {
	service    *analysis.Service
	prompter   ux.Prompter
	printer    *ux.Printer
	candidates modarith.CandidateConfig
	opts       analyzeOptions
	stdout     io.Writer
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	candidates, err := resolveCandidates(config.Global.Candidates, analyzeModuli, analyzeNoDerive)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	opts := analyzeOptions{
		Yes:     analyzeYes,
		Predict: analyzePredict,
		JSON:    analyzeJSON,
	}
	if opts.Predict < 0 {
		opts.Predict = config.Global.Forecast.Count
	}

	session := &analyzeSession{
		service:    analysis.NewService(cliLogger.Slog()),
		prompter:   ux.NewPrompter(),
		printer:    ux.NewPrinter(),
		candidates: candidates,
		opts:       opts,
		stdout:     os.Stdout,
	}
	return session.run(cmd.Context(), args)
}

// resolveCandidates applies --modulus and --no-derive over the config file.
// Moduli given on the command line replace the configured base list.
func resolveCandidates(cfg config.CandidatesConfig, moduli []string, noDerive bool) (modarith.CandidateConfig, error) {
	if len(moduli) > 0 {
		cfg.Base = moduli
	}
	if noDerive {
		cfg.Derive = false
	}
	return cfg.CandidateConfig()
}

// run reads the OTPs, analyzes them and reports the model and forecast.
//
// # Description
//
// OTPs come from args when given, otherwise from the prompter. In human
// output the analysis and the forecast each wait for a confirmation,
// which is skipped with --yes or when nobody is at the terminal.
//
// # Outputs
//
//   - error: nil when a model was found, an *ExitError with ExitNoModel
//     when none fits, and ExitFailure for invalid input.
func (s *analyzeSession) run(ctx context.Context, args []string) error {
	start := time.Now()

	otps, err := s.readOTPs(ctx, args)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if !s.opts.JSON {
		s.printer.Banner()
		if s.shouldConfirm() {
			ok, err := s.prompter.Confirm(ctx, "Proceed with analysis of these OTPs?")
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			if !ok {
				s.printer.Muted("Analysis cancelled.")
				return nil
			}
		}
	}

	result, err := s.service.Run(ctx, analysis.Request{
		OTPs:       otps,
		Candidates: s.candidates,
		Predict:    s.opts.Predict,
	})
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if s.opts.JSON {
		if err := OutputResult(s.stdout, "analyze", start, result); err != nil {
			return err
		}
		if !result.Found() {
			return &ExitError{Code: ExitNoModel}
		}
		return nil
	}

	s.printer.Model(result.Model)
	if !result.Found() {
		return &ExitError{Code: ExitNoModel}
	}
	if len(result.Predictions) == 0 {
		return nil
	}

	if s.shouldConfirm() {
		ok, err := s.prompter.Confirm(ctx, fmt.Sprintf("Generate %d future OTPs?", len(result.Predictions)))
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		if !ok {
			s.printer.Muted("Predictions skipped.")
			return nil
		}
	}
	s.printer.Predictions(result.Predictions)
	return nil
}

func (s *analyzeSession) readOTPs(ctx context.Context, args []string) (validation.OTPs, error) {
	if len(args) > 0 {
		return validation.ParseOTPTokens(args, model.ObservationCount)
	}
	if s.opts.JSON {
		return validation.OTPs{}, errOTPArgsRequired
	}
	return s.prompter.ReadOTPs(ctx, model.ObservationCount)
}

// shouldConfirm reports whether yes/no questions are asked.
func (s *analyzeSession) shouldConfirm() bool {
	return !s.opts.Yes && s.prompter.IsInteractive()
}
