// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the listdev CLI.
//
// A [Command] tree is dispatched by [Command.Execute]: the first
// positional argument selects a subcommand, flags are parsed with
// pflag, and unknown commands or flags get an edit-distance
// suggestion. [ExitError] lets a command set the exit status without
// an error message; command-line mistakes come back as [UsageError]. [JSONOutput] adds a --json flag.
package cli
