// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package listfs exposes a [liststream.Session] as a single file in a
// FUSE filesystem, standing in for a character device.
//
// The mount contains one regular file (default name "list"). Each
// write(2) on it is one command line:
//
//	echo "ADDB hello" > /mnt/listdev/list
//	echo "DELF" > /mnt/listdev/list
//
// and read(2) returns the serialized record list from the file offset,
// so cat(1) prints every record, one per line. The kernel owns the
// per-descriptor offset; the file is opened with FOPEN_DIRECT_IO so
// every read reaches the session and never sees a stale page cache.
//
// Write offsets are ignored and truncation is a no-op, as on a
// character device: shell redirection truncates on open, and that must
// not clear the list. Clear it with "DELA".
//
// Session errors become errnos: an invalid command is EINVAL, a full
// list is ENOSPC, an exhausted byte budget is ENOMEM, and a closed
// session is EIO.
package listfs
