// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/checkpoint"
	"github.com/walteh/devcontainer-sync/pkg/operation"
)

func main() {
	cmd, ro := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(reportError(os.Stderr, err, ro.Verbose))
	}
}

// 💥 cliError is what the process reports on failure
type cliError struct {
	code       int
	err        error
	suggestion string
}

func newCLIError(err error) *cliError {
	var opErr *operation.Error
	if errors.As(err, &opErr) {
		return &cliError{code: opErr.Category.ExitCode(), err: err, suggestion: opErr.Suggestion}
	}
	return &cliError{code: 1, err: err}
}

// reportError prints err and returns the exit code. Paths a partial rollback
// could not restore are always listed; suggestions only in verbose mode.
func reportError(w io.Writer, err error, verbose bool) int {
	ce := newCLIError(err)
	fmt.Fprintf(w, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), ce.err.Error())

	var partial *checkpoint.PartialRollbackError
	if errors.As(err, &partial) {
		fmt.Fprintln(w, "These files could not be restored:")
		for _, p := range partial.Paths {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	}
	if verbose && ce.suggestion != "" {
		fmt.Fprintf(w, "%s %s\n", color.New(color.FgYellow).Sprint("Suggestion:"), ce.suggestion)
	}
	return ce.code
}
