// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlist

import "errors"

var (
	// ErrCapacityExceeded is returned by an insert when the list
	// already holds its configured maximum number of records.
	ErrCapacityExceeded = errors.New("record capacity exceeded")

	// ErrAllocationFailure is returned by an insert when the record
	// would push the serialized size past the list's byte budget.
	ErrAllocationFailure = errors.New("record allocation failed")

	// ErrInvalidContent is returned by an insert when the content is
	// longer than MaxContentLength or contains a NUL byte.
	ErrInvalidContent = errors.New("invalid record content")
)
