// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/kittycracker/pkg/model"
)

const (
	// ModelFoundTitle heads the report when a generator was recovered.
	ModelFoundTitle = "REVERSIBLE MODEL IDENTIFIED"

	// NoModelMessage is printed when no family fits the observations.
	NoModelMessage = "No reversible linear model identified."
)

const banner = `
 _    _ _   _                              _
| | _(_) |_| |_ _   _  ___ _ __ __ _  ___| | _____ _ __
| |/ / | __| __| | | |/ __| '__/ _' |/ __| |/ / _ \ '__|
|   <| | |_| |_| |_| | (__| | | (_| | (__|   <  __/ |
|_|\_\_|\__|\__|\__, |\___|_|  \__,_|\___|_|\_\___|_|
                |___/   OTP generator reversal
`

// Banner prints the ASCII banner when the personality allows it.
func (p *Printer) Banner() {
	if !GetPersonality().ShowBanner || GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(p.Out, Styles.Highlight.Render(strings.Trim(banner, "\n")))
}

// ModelParameters returns the "name: value" lines describing c, in a fixed
// order. None yields no lines.
func ModelParameters(c model.Candidate) [][2]string {
	switch g := c.(type) {
	case model.AffineCounter:
		modulus := model.UnboundedLabel
		if !g.Unbounded() {
			modulus = g.Modulus.String()
		}
		return [][2]string{{"step", g.Step.String()}, {"modulus", modulus}}
	case model.LinearCongruential:
		return [][2]string{
			{"multiplier", g.Multiplier.String()},
			{"increment", g.Increment.String()},
			{"modulus", g.Modulus.String()},
		}
	default:
		return nil
	}
}

// Model prints the analysis result.
//
// # Description
//
// Human modes print a boxed section titled ModelFoundTitle with the model
// family and its parameters, or NoModelMessage. Machine mode prints a
// single "model=<kind> key=value..." line so scripts can parse it.
func (p *Printer) Model(c model.Candidate) {
	params := ModelParameters(c)

	if GetPersonality().Level == PersonalityMachine {
		fields := []string{"model=" + string(c.Kind())}
		for _, kv := range params {
			fields = append(fields, kv[0]+"="+kv[1])
		}
		fmt.Fprintln(p.Out, strings.Join(fields, " "))
		return
	}

	if model.IsNone(c) {
		p.Warning(NoModelMessage)
		return
	}

	lines := []string{Styles.Label.Render("Model type:") + " " + Styles.Highlight.Render(c.Family())}
	for _, kv := range params {
		lines = append(lines, Styles.Label.Render(kv[0]+":")+" "+kv[1])
	}

	if GetPersonality().Level == PersonalityMinimal {
		p.Section(ModelFoundTitle, lines)
		return
	}
	title := Styles.Title.Render(fmt.Sprintf("%s %s", IconKey, ModelFoundTitle))
	fmt.Fprintln(p.Out, Styles.ResultBox.Render(title+"\n"+strings.Join(lines, "\n")))
}

// Predictions prints "OTP +i: value" lines, 1-based.
func (p *Printer) Predictions(values []string) {
	machine := GetPersonality().Level == PersonalityMachine
	if !machine {
		p.Title("Predicted OTPs")
	}
	for i, v := range values {
		if machine {
			fmt.Fprintf(p.Out, "OTP +%d: %s\n", i+1, v)
			continue
		}
		fmt.Fprintf(p.Out, "  %s %s\n", Styles.Muted.Render(fmt.Sprintf("OTP +%d:", i+1)), Styles.Highlight.Render(v))
	}
}
