// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/listdev/cmd/listdev/cli"
	"github.com/bureau-foundation/listdev/lib/config"
	"github.com/bureau-foundation/listdev/lib/liststream"
	"github.com/bureau-foundation/listdev/lib/listservice"
	"github.com/bureau-foundation/listdev/lib/version"
)

// socketEnvironmentVariable overrides the control socket path.
const socketEnvironmentVariable = "LISTDEV_SOCKET"

const defaultTimeout = 30 * time.Second

func rootCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "listdev",
		Summary: "Edit and read a listdev record list",
		Description: `Edit and read the record list served by listdev-daemon.

Mutations are applied in the order the daemon receives them. Reads
return the list view: every record followed by a newline, in list
order.`,
		Subcommands: []*cli.Command{
			insertCommand(stdout, "addf", liststream.VerbInsertFront, "Insert a record at the front of the list"),
			insertCommand(stdout, "addb", liststream.VerbInsertBack, "Append a record to the back of the list"),
			removeCommand(stdout, "delf", liststream.VerbRemoveFront, "Remove the first record"),
			removeCommand(stdout, "dela", liststream.VerbRemoveAll, "Remove every record"),
			sendCommand(stdout),
			catCommand(stdout),
			listCommand(stdout),
			statCommand(stdout),
			versionCommand(stdout),
		},
	}
}

// connection holds the flags shared by every command that talks to
// the daemon.
type connection struct {
	socketPath string
	timeout    time.Duration
}

func (c *connection) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.socketPath, "socket", defaultSocketPath(), "daemon control socket")
	flagSet.DurationVar(&c.timeout, "timeout", defaultTimeout, "deadline for the whole command")
}

func (c *connection) client() *listservice.Client {
	return listservice.NewClient(c.socketPath)
}

func (c *connection) context() (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.timeout)
}

// defaultSocketPath resolves the socket from the environment, falling
// back to the config file and then the built-in default.
func defaultSocketPath() string {
	if path := os.Getenv(socketEnvironmentVariable); path != "" {
		return config.ExpandPath(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		if cfg, err := config.Load(); err == nil && cfg.Socket.Path != "" {
			return cfg.Socket.Path
		}
	}
	cfg := config.Default()
	cfg.Expand()
	return cfg.Socket.Path
}

func versionCommand(stdout io.Writer) *cli.Command {
	var full bool
	return &cli.Command{
		Name:    "version",
		Summary: "Print the listdev version",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flagSet.BoolVar(&full, "full", false, "include Go version and platform")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if full {
				fmt.Fprintf(stdout, "listdev %s\n", version.Full())
			} else {
				fmt.Fprintf(stdout, "listdev %s\n", version.Info())
			}
			return nil
		},
	}
}
