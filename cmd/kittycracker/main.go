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
	"os"
)

func main() {
	err := rootCmd.ExecuteContext(context.Background())

	var exitErr *ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.Err != nil) {
		cliLogger.Error("command failed", "error", err)
		OutputError(os.Stdout, os.Stderr, jsonMode(), err)
	}
	_ = cliLogger.Close()
	os.Exit(exitCode(err))
}
