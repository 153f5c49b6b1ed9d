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
	"fmt"

	"github.com/AleutianAI/kittycracker/cmd/kittycracker/config"
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/pkg/ux"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// --- Global Command Variables ---
var (
	configPath       string
	personalityLevel string // UX personality level (full/standard/minimal/machine)
	verbose          bool

	analyzeYes      bool
	analyzePredict  int
	analyzeModuli   []string
	analyzeNoDerive bool
	analyzeJSON     bool

	predictKind       string
	predictMultiplier string
	predictIncrement  string
	predictStep       string
	predictModulus    string
	predictSeed       string
	predictCount      int
	predictWidth      int
	predictJSON       bool

	serveAddr string

	// cliLogger is built by the root PersistentPreRunE from the logging section.
	cliLogger = logging.New(logging.Config{Quiet: true})

	rootCmd = &cobra.Command{
		Use:   "kittycracker",
		Short: "Recover the generator behind a stream of one-time passwords",
		Long: `kittycracker takes three consecutive OTPs, identifies whether they come
from an affine counter or a linear congruential generator, and predicts
the codes that follow.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(configPath); err != nil {
				return err
			}

			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality(config.Global.UI.Personality)
			}

			cliLogger = newCLILogger(config.Global.Logging, verbose)
			return nil
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [otp otp otp]",
		Short: "Identify the generator behind three consecutive OTPs",
		Long: `Identify the generator behind three consecutive OTPs, oldest first.

With no arguments the OTPs are read interactively. Exit status is 0 when a
model was found, 1 when none fits and 2 on invalid input.`,
		Aliases: []string{"a"},
		Args:    cobra.RangeArgs(0, 3),
		RunE:    runAnalyze,
	}

	predictCmd = &cobra.Command{
		Use:   "predict",
		Short: "Generate OTPs from known generator parameters",
		Example: `  kittycracker predict --kind lcg --multiplier 5 --increment 3 --modulus 97 --seed 74 --count 2
  kittycracker predict --kind affine --step 7 --modulus 1000000 --seed 999997 --width 6
  kittycracker predict --kind affine --step -1 --modulus 10 --seed 3 --count 2`,
		Args: cobra.NoArgs,
		RunE: runPredict,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the oracle HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the kittycracker version",
		Args:  cobra.NoArgs,
		// Overrides the root hook: version needs no config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "kittycracker", Version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.kittycracker/kittycracker.yaml, or $"+config.PathEnv+")")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full, standard, minimal, machine (default from config or $"+ux.PersonalityEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr as well as the log file")

	analyzeCmd.Flags().BoolVarP(&analyzeYes, "yes", "y", false, "Print predictions without asking")
	analyzeCmd.Flags().IntVarP(&analyzePredict, "predict", "n", -1, "Number of OTPs to predict (default from config)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeModuli, "modulus", "m", nil,
		"Candidate modulus to try instead of the configured list (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeNoDerive, "no-derive", false, "Do not derive moduli from the observations")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output the result as JSON")
	rootCmd.AddCommand(analyzeCmd)

	predictCmd.Flags().StringVar(&predictKind, "kind", "", "Generator kind: lcg or affine")
	predictCmd.Flags().StringVar(&predictMultiplier, "multiplier", "", "LCG multiplier")
	predictCmd.Flags().StringVar(&predictIncrement, "increment", "", "LCG increment")
	predictCmd.Flags().StringVar(&predictStep, "step", "", "Affine counter step")
	predictCmd.Flags().StringVar(&predictModulus, "modulus", "",
		"Modulus (required for lcg; omit for an unbounded affine counter)")
	predictCmd.Flags().StringVar(&predictSeed, "seed", "", "Last observed OTP (signed for unbounded counters)")
	predictCmd.Flags().IntVarP(&predictCount, "count", "n", 0, "Number of OTPs to generate (default from config)")
	predictCmd.Flags().IntVar(&predictWidth, "width", 0, "Zero-pad bounded outputs to this many digits")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Output the result as JSON")
	_ = predictCmd.MarkFlagRequired("kind")
	_ = predictCmd.MarkFlagRequired("seed")
	rootCmd.AddCommand(predictCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(versionCmd)
}

// newCLILogger logs to the configured file, and to stderr only when
// verbose so that command output stays clean.
func newCLILogger(cfg config.LoggingConfig, verbose bool) *logging.Logger {
	return logging.New(logging.Config{
		Level:   cfg.LogLevel(),
		LogDir:  cfg.Dir,
		Service: "kittycracker",
		JSON:    cfg.JSON,
		Quiet:   !verbose,
	})
}

// jsonMode reports whether the running command was asked for JSON output.
func jsonMode() bool {
	return analyzeJSON || predictJSON
}
