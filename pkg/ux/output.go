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
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// kittycracker palette - phosphor greens with amber alerts
var (
	ColorPhosphor = lipgloss.Color("#39FF14") // Bright phosphor - highlights, success
	ColorTerminal = lipgloss.Color("#2FBF71") // Terminal green - titles
	ColorMoss     = lipgloss.Color("#1E7F4F") // Moss - borders
	ColorSlate    = lipgloss.Color("#5C6B73") // Slate - muted text

	ColorSuccess = ColorPhosphor
	ColorWarning = lipgloss.Color("#FFB000") // Amber
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Label     lipgloss.Style

	Box        lipgloss.Style
	ResultBox  lipgloss.Style
	WarningBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTerminal),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorPhosphor).Bold(true),
	Label:     lipgloss.NewStyle().Foreground(ColorSlate).Width(12),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMoss).
		Padding(0, 1),
	ResultBox: lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorPhosphor).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconKey     Icon = "⚷"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Printer writes personality-aware output. Results go to Out; machine-mode
// warnings and errors go to Err so that scripted stdout stays parseable.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter returns a Printer on stdout and stderr.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr}
}

// Title prints a styled title
func (p *Printer) Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(p.Out, Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.Out, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(p.Out, "%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Fprintf(p.Out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.Err, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(p.Out, "%s %s\n", IconWarning.Render(), text)
	default:
		fmt.Fprintf(p.Out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func (p *Printer) Error(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.Err, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(p.Out, "%s %s\n", IconError.Render(), text)
	default:
		fmt.Fprintf(p.Out, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func (p *Printer) Info(text string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintln(p.Out, text)
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text, suppressed in machine mode.
func (p *Printer) Muted(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(p.Out, Styles.Muted.Render(text))
}

// Section prints a titled block of lines. Machine mode prints the lines
// alone, one per row.
func (p *Printer) Section(title string, lines []string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		for _, line := range lines {
			fmt.Fprintln(p.Out, line)
		}
	case PersonalityMinimal:
		fmt.Fprintln(p.Out, title)
		for _, line := range lines {
			fmt.Fprintf(p.Out, "  %s\n", line)
		}
	default:
		fmt.Fprintln(p.Out, Styles.Box.Render(Styles.Title.Render(title)+"\n"+strings.Join(lines, "\n")))
	}
}

// Box prints text in a rounded box
func (p *Printer) Box(title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintf(p.Out, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.Out, Styles.Box.Render(Styles.Title.Render(title)+"\n"+content))
}

// WarningBox prints text in a warning-styled box
func (p *Printer) WarningBox(title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintf(p.Err, "WARN %s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.Out, Styles.WarningBox.Render(Styles.Warning.Bold(true).Render(title)+"\n"+content))
}

// truncate shortens s to maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
