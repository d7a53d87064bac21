// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/listdev/cmd/listdev/cli"
	"github.com/bureau-foundation/listdev/lib/compress"
	"github.com/bureau-foundation/listdev/lib/listservice"
	"github.com/bureau-foundation/listdev/lib/viewhash"
)

func catCommand(stdout io.Writer) *cli.Command {
	var conn connection
	var chunk int
	var offset int64
	var compression string
	var verify bool
	return &cli.Command{
		Name:    "cat",
		Summary: "Stream the list view to stdout",
		Description: `Stream the list view to stdout.

The view is read through one handle in chunks of --chunk bytes, so a
concurrent mutation can show up partway through the output, as with
repeated reads of the mounted file. --verify compares the bytes read
against the daemon's view digest afterwards and fails if the list
changed while it was being read.`,
		Examples: []cli.Example{
			{Description: "Print the list", Command: "listdev cat"},
			{Description: "Print the list, failing if it changed mid-read", Command: "listdev cat --verify"},
			{Description: "Skip the first 10 bytes, reading zstd-compressed chunks", Command: "listdev cat --offset 10 --compression zstd"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cat", pflag.ContinueOnError)
			conn.addFlags(flagSet)
			flagSet.IntVar(&chunk, "chunk", listservice.DefaultReadSize, "bytes per read call")
			flagSet.Int64Var(&offset, "offset", 0, "byte offset to start from")
			flagSet.StringVar(&compression, "compression", "none", "chunk compression on the wire (none, lz4, zstd)")
			flagSet.BoolVar(&verify, "verify", false, "check the output against the view digest")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if chunk <= 0 || chunk > listservice.MaxReadSize {
				return fmt.Errorf("--chunk must be between 1 and %d", listservice.MaxReadSize)
			}
			if offset < 0 {
				return fmt.Errorf("--offset must not be negative")
			}
			algorithm, err := compress.Parse(compression)
			if err != nil {
				return err
			}

			if verify && offset != 0 {
				return fmt.Errorf("--verify reads the whole view and cannot be combined with --offset")
			}

			ctx, cancel := conn.context()
			defer cancel()
			client := conn.client()
			if !verify {
				return streamView(ctx, client, stdout, offset, chunk, algorithm)
			}

			var view bytes.Buffer
			if err := streamView(ctx, client, io.MultiWriter(stdout, &view), 0, chunk, algorithm); err != nil {
				return err
			}
			stat, err := client.Stat(ctx)
			if err != nil {
				return err
			}
			return verifyView(view.Bytes(), stat)
		},
	}
}

// streamView copies the view to w from offset through one handle.
func streamView(ctx context.Context, client *listservice.Client, w io.Writer, offset int64, chunk int, algorithm compress.Algorithm) error {
	handle, err := client.Open(ctx)
	if err != nil {
		return err
	}
	defer client.Close(context.WithoutCancel(ctx), handle)

	if offset > 0 {
		if _, err := client.Seek(ctx, handle, offset, io.SeekStart); err != nil {
			return err
		}
	}

	for {
		data, eof, err := client.Read(ctx, handle, chunk, algorithm)
		if err != nil {
			return err
		}
		if len(data) > 0 {
			if _, err := w.Write(data); err != nil {
				return err
			}
		}
		if eof {
			return nil
		}
	}
}

// verifyView reports whether data is the view stat describes.
func verifyView(data []byte, stat listservice.StatResult) error {
	expected, err := viewhash.Parse(stat.Digest)
	if err != nil {
		return fmt.Errorf("daemon returned a bad digest: %w", err)
	}
	if viewhash.Sum(data) != expected {
		return fmt.Errorf("list changed while reading: read %d bytes, view is now %d bytes at generation %d",
			len(data), stat.Size, stat.Generation)
	}
	return nil
}

func listCommand(stdout io.Writer) *cli.Command {
	var conn connection
	var output cli.JSONOutput
	return &cli.Command{
		Name:    "list",
		Summary: "Show the records",
		Description: `Show the records.

On a terminal each record is numbered from 1. Otherwise records are
printed one per line with nothing added, matching "listdev cat".`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			conn.addFlags(flagSet)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			ctx, cancel := conn.context()
			defer cancel()

			records, err := conn.client().List(ctx)
			if err != nil {
				return err
			}

			lines := make([]string, len(records))
			for index, record := range records {
				lines[index] = string(record)
			}
			if done, err := output.EmitJSON(stdout, lines); done {
				return err
			}

			numbered := cli.IsTerminal(stdout)
			for index, line := range lines {
				if numbered {
					fmt.Fprintf(stdout, "%4d  %s\n", index+1, line)
				} else {
					fmt.Fprintln(stdout, line)
				}
			}
			return nil
		},
	}
}

func statCommand(stdout io.Writer) *cli.Command {
	var conn connection
	var output cli.JSONOutput
	var checkEmpty bool
	return &cli.Command{
		Name:    "stat",
		Summary: "Show list size, generation, and digest",
		Examples: []cli.Example{
			{Description: "Fail in a script unless the list is empty", Command: "listdev stat --check-empty"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("stat", pflag.ContinueOnError)
			conn.addFlags(flagSet)
			output.AddFlag(flagSet)
			flagSet.BoolVar(&checkEmpty, "check-empty", false, "exit with status 1 if the list has records")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			ctx, cancel := conn.context()
			defer cancel()

			result, err := conn.client().Stat(ctx)
			if err != nil {
				return err
			}

			if done, err := output.EmitJSON(stdout, result); done {
				if err != nil {
					return err
				}
			} else {
				writeStat(stdout, result)
			}

			if checkEmpty && result.Count > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func writeStat(w io.Writer, result listservice.StatResult) {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "records:\t%d / %d\n", result.Count, result.Capacity)
	fmt.Fprintf(tw, "size:\t%d bytes\n", result.Size)
	fmt.Fprintf(tw, "generation:\t%d\n", result.Generation)
	fmt.Fprintf(tw, "modified:\t%s\n", result.Modified.Format(time.RFC3339))
	fmt.Fprintf(tw, "digest:\t%s\n", result.Digest)
	fmt.Fprintf(tw, "open handles:\t%d\n", result.OpenHandles)
	tw.Flush()
}
