// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/listdev/cmd/listdev/cli"
	"github.com/bureau-foundation/listdev/lib/codec"
	"github.com/bureau-foundation/listdev/lib/liststream"
	"github.com/bureau-foundation/listdev/lib/listservice"
)

// insertCommand builds addf and addb. Positional arguments are joined
// with single spaces to form the record.
func insertCommand(stdout io.Writer, name string, verb liststream.Verb, summary string) *cli.Command {
	var conn connection
	var output cli.JSONOutput
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "listdev " + name + " [flags] <text>...",
		Examples: []cli.Example{
			{Description: summary, Command: "listdev " + name + " buy milk"},
			{Description: "Record text starting with a dash", Command: "listdev " + name + " -- -5 degrees"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			conn.addFlags(flagSet)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%s requires record text", name)
			}
			ctx, cancel := conn.context()
			defer cancel()

			result, err := conn.client().Apply(ctx, verb, []byte(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			_, err = output.EmitJSON(stdout, result)
			return err
		},
	}
}

// removeCommand builds delf and dela.
func removeCommand(stdout io.Writer, name string, verb liststream.Verb, summary string) *cli.Command {
	var conn connection
	var output cli.JSONOutput
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			conn.addFlags(flagSet)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%s takes no arguments (got %q)", name, args[0])
			}
			ctx, cancel := conn.context()
			defer cancel()

			result, err := conn.client().Apply(ctx, verb, nil)
			if err != nil {
				return err
			}
			_, err = output.EmitJSON(stdout, result)
			return err
		},
	}
}

// sendCommand writes a raw command line, the same bytes a shell
// redirect into the mounted file would deliver.
func sendCommand(stdout io.Writer) *cli.Command {
	var conn connection
	var output cli.JSONOutput
	var diagnose bool
	return &cli.Command{
		Name:    "send",
		Summary: "Send an unparsed command line to the daemon",
		Description: `Send an unparsed command line to the daemon.

The arguments are joined with single spaces and terminated with a
newline, then parsed by the daemon exactly as a write to the mounted
list file would be. Use it to exercise the command parser.`,
		Usage: "listdev send [flags] <verb> [text]...",
		Examples: []cli.Example{
			{Description: "Append a record", Command: "listdev send ADDB hello"},
			{Description: "Show the raw CBOR response", Command: "listdev send --diagnose BOGUS"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("send", pflag.ContinueOnError)
			conn.addFlags(flagSet)
			output.AddFlag(flagSet)
			flagSet.BoolVar(&diagnose, "diagnose", false, "print the response envelope in CBOR diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("send requires a command line")
			}
			line := []byte(strings.Join(args, " ") + "\n")
			ctx, cancel := conn.context()
			defer cancel()

			if diagnose {
				raw, err := conn.client().CallRaw(ctx, listservice.ActionWrite, map[string]any{"line": line})
				if err != nil {
					return err
				}
				notation, err := codec.Diagnose(raw)
				if err != nil {
					return fmt.Errorf("decoding response: %w", err)
				}
				fmt.Fprintln(stdout, notation)
				return nil
			}

			result, err := conn.client().Write(ctx, line)
			if err != nil {
				return err
			}
			_, err = output.EmitJSON(stdout, result)
			return err
		},
	}
}
