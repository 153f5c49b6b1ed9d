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
	"errors"
	"fmt"
	"io"
	"time"
)

// Exit codes for the kittycracker CLI.
const (
	ExitSuccess = 0 // A model was found, or the command completed
	ExitNoModel = 1 // Analysis completed but no model fits
	ExitFailure = 2 // Invalid input or failure
)

// APIVersion is stamped on every JSON result.
const APIVersion = "1.0"

// ExitError carries a process exit code out of a RunE. A nil Err exits
// silently with Code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode maps an Execute error onto a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CommandResult is the JSON envelope for --json output.
type CommandResult struct {
	APIVersion string    `json:"api_version"`
	Command    string    `json:"command"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Data       any       `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// OutputJSON writes data as indented JSON.
func OutputJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// OutputResult writes a successful CommandResult for cmd.
func OutputResult(w io.Writer, cmd string, start time.Time, data any) error {
	return OutputJSON(w, CommandResult{
		APIVersion: APIVersion,
		Command:    cmd,
		Timestamp:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
		Success:    true,
		Data:       data,
	})
}

// OutputError reports err on stderr, or as a failed CommandResult on stdout
// in JSON mode.
func OutputError(stdout, stderr io.Writer, jsonMode bool, err error) {
	if jsonMode {
		_ = OutputJSON(stdout, CommandResult{
			APIVersion: APIVersion,
			Timestamp:  time.Now(),
			Success:    false,
			Error:      err.Error(),
		})
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}
