// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output; "listdev stat --check-empty" uses it to report a
// non-empty list as exit status 1.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface on
// returned errors to distinguish a handled non-zero exit from an
// unexpected error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// UsageError reports a malformed command line. main prints it and
// exits with status 2.
type UsageError struct {
	// Command is the full command path, e.g. "listdev cat".
	Command string
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s\n\nRun '%s --help' for usage.", e.Message, e.Command)
}
