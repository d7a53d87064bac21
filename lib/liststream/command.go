// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package liststream

import (
	"bytes"
	"fmt"
)

// MaxLineLength is the default longest accepted command line in bytes,
// including the line terminator.
const MaxLineLength = 255

// MinLineLength is the shortest configurable line limit: a verb, a
// separator, one byte of content and the terminator.
const MinLineLength = 7

// maxVerbLength is the longest verb token.
const maxVerbLength = 4

// Verb is a record list command.
type Verb string

const (
	// VerbInsertFront inserts its argument ahead of the first record.
	VerbInsertFront Verb = "ADDF"

	// VerbInsertBack appends its argument after the last record.
	VerbInsertBack Verb = "ADDB"

	// VerbRemoveFront removes the first record, if any.
	VerbRemoveFront Verb = "DELF"

	// VerbRemoveAll removes every record.
	VerbRemoveAll Verb = "DELA"
)

// Valid reports whether v is one of the four verbs.
func (v Verb) Valid() bool {
	switch v {
	case VerbInsertFront, VerbInsertBack, VerbRemoveFront, VerbRemoveAll:
		return true
	}
	return false
}

// TakesArgument reports whether v requires a non-empty argument.
// DELF and DELA require none.
func (v Verb) TakesArgument() bool {
	return v == VerbInsertFront || v == VerbInsertBack
}

// Command is a parsed command line.
type Command struct {
	Verb     Verb
	Argument []byte
}

// String formats the command the way it appears on the wire, without
// a terminator.
func (c Command) String() string {
	if len(c.Argument) == 0 {
		return string(c.Verb)
	}
	return string(c.Verb) + " " + string(c.Argument)
}

// ParseCommand splits a command line into verb and argument using the
// default MaxLineLength. The verb is not checked against the verb set
// and arity is not checked; ApplyCommand does both.
func ParseCommand(line []byte) (Command, error) {
	return parseCommand(line, MaxLineLength)
}

func parseCommand(line []byte, maxLength int) (Command, error) {
	if len(line) == 0 {
		return Command{}, fmt.Errorf("%w: empty command line", ErrInvalidCommand)
	}
	if len(line) > maxLength {
		return Command{}, fmt.Errorf("%w: command line is %d bytes, limit is %d",
			ErrInvalidCommand, len(line), maxLength)
	}
	if bytes.IndexByte(line, 0) >= 0 {
		return Command{}, fmt.Errorf("%w: command line contains a NUL byte", ErrInvalidCommand)
	}

	// Length was checked above, so these never index an empty slice.
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	line = bytes.TrimLeft(line, whitespace)
	if len(line) == 0 {
		return Command{}, fmt.Errorf("%w: blank command line", ErrInvalidCommand)
	}

	verbEnd := bytes.IndexAny(line, whitespace)
	if verbEnd < 0 {
		verbEnd = len(line)
	}
	if verbEnd > maxVerbLength {
		return Command{}, fmt.Errorf("%w: verb %q is longer than %d bytes",
			ErrInvalidCommand, line[:verbEnd], maxVerbLength)
	}

	command := Command{Verb: Verb(line[:verbEnd])}

	rest := bytes.TrimLeft(line[verbEnd:], whitespace)
	if newline := bytes.IndexByte(rest, '\n'); newline >= 0 {
		rest = rest[:newline]
	}
	if len(rest) > 0 {
		command.Argument = bytes.Clone(rest)
	}
	return command, nil
}

// whitespace is the separator set between verb and argument.
const whitespace = " \t\n\v\f\r"
