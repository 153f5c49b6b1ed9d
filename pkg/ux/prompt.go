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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AleutianAI/kittycracker/pkg/validation"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrNonInteractive is returned when input is needed but no user is
	// attached to the terminal.
	ErrNonInteractive = errors.New("input required but running non-interactively")

	// ErrNoInput is returned when the input stream ends before a valid
	// answer was read.
	ErrNoInput = errors.New("no input")

	// ErrTooManyAttempts is returned after MaxAttempts invalid OTP lines.
	ErrTooManyAttempts = errors.New("too many invalid attempts")
)

// MaxAttempts bounds how often the OTP prompt is repeated.
const MaxAttempts = 5

// Prompter collects the observed OTPs and yes/no answers.
type Prompter interface {
	// ReadOTPs asks until exactly count valid OTPs are entered.
	ReadOTPs(ctx context.Context, count int) (validation.OTPs, error)

	// Confirm asks a yes/no question. The default answer is no.
	Confirm(ctx context.Context, message string) (bool, error)

	// IsInteractive reports whether a human is answering.
	IsInteractive() bool
}

// NewPrompter returns a huh form prompter when stdin and stdout are
// terminals, and a line prompter otherwise (piped input).
func NewPrompter() Prompter {
	if IsTerminal(os.Stdin) && IsTerminal(os.Stdout) && GetPersonality().Level != PersonalityMachine {
		return NewFormPrompter()
	}
	return NewInteractivePrompter()
}

func otpPrompt(count int) string {
	return fmt.Sprintf("Enter the %d most recent OTPs, oldest first (space or comma separated)", count)
}

// =============================================================================
// InteractivePrompter
// =============================================================================

// InteractivePrompter reads answers line by line.
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompter creates a prompter on stdin and stdout.
func NewInteractivePrompter() *InteractivePrompter {
	return NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
}

// NewInteractivePrompterWithIO creates a prompter on custom IO for testing.
func NewInteractivePrompterWithIO(r io.Reader, w io.Writer) *InteractivePrompter {
	return &InteractivePrompter{reader: bufio.NewReader(r), writer: w}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as-is; io.EOF is only returned when
// nothing was read.
func (p *InteractivePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadOTPs implements Prompter.
func (p *InteractivePrompter) ReadOTPs(ctx context.Context, count int) (validation.OTPs, error) {
	for range MaxAttempts {
		fmt.Fprintf(p.writer, "%s: ", otpPrompt(count))

		line, err := p.readLine(ctx)
		if errors.Is(err, io.EOF) {
			return validation.OTPs{}, ErrNoInput
		}
		if err != nil {
			return validation.OTPs{}, err
		}

		otps, err := validation.ParseOTPs(line, count)
		if err == nil {
			return otps, nil
		}
		fmt.Fprintf(p.writer, "%s %s\n", IconError, truncate(err.Error(), 120))
	}
	return validation.OTPs{}, ErrTooManyAttempts
}

// Confirm implements Prompter. Only "y" and "yes" (any case) are yes;
// EOF is treated as no.
func (p *InteractivePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(p.writer, "%s [y/N]: ", message)

	line, err := p.readLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// IsInteractive implements Prompter.
func (p *InteractivePrompter) IsInteractive() bool { return true }

// =============================================================================
// FormPrompter
// =============================================================================

// FormPrompter asks through huh forms on a terminal.
type FormPrompter struct {
	theme *huh.Theme
}

// NewFormPrompter creates a huh-backed prompter with the kittycracker theme.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{theme: kittyTheme()}
}

// ReadOTPs implements Prompter. The input field validates in place, so the
// form only returns once the line parses.
func (p *FormPrompter) ReadOTPs(ctx context.Context, count int) (validation.OTPs, error) {
	var line string
	input := huh.NewInput().
		Title(otpPrompt(count)).
		Placeholder("123456 654321 111111").
		Value(&line).
		Validate(func(s string) error {
			_, err := validation.ParseOTPs(s, count)
			return err
		})

	if err := huh.NewForm(huh.NewGroup(input)).WithTheme(p.theme).RunWithContext(ctx); err != nil {
		return validation.OTPs{}, formError(err)
	}
	return validation.ParseOTPs(line, count)
}

// Confirm implements Prompter.
func (p *FormPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := huh.NewForm(huh.NewGroup(confirm)).WithTheme(p.theme).RunWithContext(ctx); err != nil {
		return false, formError(err)
	}
	return ok, nil
}

// IsInteractive implements Prompter.
func (p *FormPrompter) IsInteractive() bool { return true }

// formError maps a user abort (ctrl-c) to ErrNoInput.
func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrNoInput
	}
	return err
}

// kittyTheme returns the huh theme matching Styles.
func kittyTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorMoss)
	t.Focused.Title = t.Focused.Title.Foreground(ColorTerminal).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorSlate)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorTerminal).Foreground(lipgloss.Color("#000000"))
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorSlate)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPhosphor)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(ColorSlate)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorPhosphor)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}

// =============================================================================
// NonInteractivePrompter
// =============================================================================

// NonInteractivePrompter answers without a user: OTPs must come from
// arguments, and Confirm returns AssumeYes or ErrNonInteractive.
type NonInteractivePrompter struct {
	// AssumeYes answers every confirmation with yes (the --yes flag).
	AssumeYes bool
}

// NewNonInteractivePrompter creates a prompter that refuses every question.
func NewNonInteractivePrompter() *NonInteractivePrompter {
	return &NonInteractivePrompter{}
}

// ReadOTPs implements Prompter; it always fails.
func (p *NonInteractivePrompter) ReadOTPs(ctx context.Context, count int) (validation.OTPs, error) {
	return validation.OTPs{}, ErrNonInteractive
}

// Confirm implements Prompter.
func (p *NonInteractivePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	return false, ErrNonInteractive
}

// IsInteractive implements Prompter.
func (p *NonInteractivePrompter) IsInteractive() bool { return false }

var (
	_ Prompter = (*InteractivePrompter)(nil)
	_ Prompter = (*FormPrompter)(nil)
	_ Prompter = (*NonInteractivePrompter)(nil)
)
