// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/listdev/cmd/listdev/cli"
)

func main() {
	if err := run(); err != nil {
		code, silent := exitStatus(err)
		if !silent {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}

func run() error {
	return rootCommand(os.Stdout).Execute(os.Args[1:])
}

// exitStatus maps a command error to a process exit status. A command
// that already reported its outcome returns an ExitCode error and is
// not printed again.
func exitStatus(err error) (code int, silent bool) {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		return 2, false
	}
	return 1, false
}
