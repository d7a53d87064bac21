// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Listdev-daemon holds one record list in memory and serves it on a
// unix control socket and, optionally, as a FUSE-mounted file.
//
// Writing a command line to the mounted file mutates the list:
//
//	echo "ADDB buy milk" > /mnt/listdev/list
//	echo "DELF" > /mnt/listdev/list
//	cat /mnt/listdev/list
//
// The listdev CLI talks to the control socket. Sending SIGUSR1 logs
// every record. The list lives only as long as the process; SIGINT
// or SIGTERM unmounts the file and discards it.
//
// Configuration comes from --config, else the file named by
// LISTDEV_CONFIG, else built-in defaults. --socket and --mountpoint
// override the corresponding config values.
package main
