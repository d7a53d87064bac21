// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package liststream exposes a record list as a byte stream.
//
// A [Session] owns the one shared [recordlist.List] of a listdev
// process together with the mutex that guards it. Transports (the FUSE
// device file in lib/listfs, the socket actions in listdev-daemon)
// hold a pointer to the same Session and reach the list only through
// its two entry points:
//
//   - [Session.ApplyCommand] runs one of the four verbs ADDF, ADDB,
//     DELF, DELA against the list.
//   - [Session.ReadFrom] serializes the whole list and returns the
//     slice starting at a caller-supplied cursor.
//
// Every call holds the mutex for its full duration, reads included, so
// no caller ever observes a partially mutated list. The cursor belongs
// to the caller. [Handle] is a file-descriptor-like wrapper that keeps
// one: Read advances it, Seek moves it, Write applies one command.
//
// # Wire format
//
// A command line is at most [MaxLineLength] bytes including its
// terminator. [ParseCommand] splits it into a verb of at most four
// bytes and an argument running to the first newline:
//
//	ADDB deploy finished
//	DELF
//
// The serialized view is each record followed by a single newline,
// in list order.
package liststream
