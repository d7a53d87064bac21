// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for listdev packages.
//
// [SocketDir] creates a temporary directory in /tmp short enough for
// Unix domain socket paths.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls.
//
// [UniqueID] generates monotonically increasing identifiers, used for
// record content that must be distinguishable across goroutines.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
