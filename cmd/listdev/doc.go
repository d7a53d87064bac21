// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Listdev is the command-line client for listdev-daemon.
//
// Each subcommand makes one or more calls on the daemon's control
// socket:
//
//	listdev addb "buy milk"       append a record
//	listdev addf "urgent"         insert a record at the front
//	listdev delf                  remove the first record
//	listdev dela                  remove every record
//	listdev cat                   stream the list view to stdout
//	listdev list                  show records, numbered on a terminal
//	listdev stat                  show count, size, generation, digest
//	listdev send ADDB "raw line"  send an unparsed command line
//
// The socket defaults to $LISTDEV_SOCKET, then the socket path in the
// config file named by $LISTDEV_CONFIG, then
// ${XDG_RUNTIME_DIR:-/tmp}/listdev.sock.
package main
