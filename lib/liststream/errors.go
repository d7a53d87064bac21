// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package liststream

import (
	"errors"

	"github.com/bureau-foundation/listdev/lib/recordlist"
)

var (
	// ErrInvalidCommand is returned for an unknown verb, a verb with
	// the wrong argument arity, or a malformed command line. The list
	// is not touched.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrCapacityExceeded is the list's capacity error, re-exported
	// so transports need not import recordlist.
	ErrCapacityExceeded = recordlist.ErrCapacityExceeded

	// ErrAllocationFailure is the list's byte budget error.
	ErrAllocationFailure = recordlist.ErrAllocationFailure

	// ErrInvalidCursor is returned by reads at a negative offset.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrClosed is returned by every call on a closed Session or
	// Handle.
	ErrClosed = errors.New("session closed")
)
