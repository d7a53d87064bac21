// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package listservice serves a [liststream.Session] on the daemon's
// control socket and provides the typed client the CLI uses.
//
// Every request is one CBOR map with an "action" field, carried by
// [service.SocketServer]. The actions are:
//
//   - apply {verb, argument}: run one verb
//   - write {line}: parse and run one command line
//   - open: allocate a read handle with its own cursor
//   - read {handle, max_bytes, compression}: read at the handle's
//     cursor and advance it
//   - read_at {cursor, max_bytes, compression}: stateless read
//   - seek {handle, offset, whence}: move a handle's cursor
//   - close {handle}: release a handle
//   - stat: counters, modification time, and view digest
//   - list: every record as a separate item
//
// Handles are identified by UUIDv7 strings. The table is bounded, and
// a handle idle for longer than the configured timeout is closed by a
// timer, so callers that vanish without "close" do not leak.
//
// Read payloads may be compressed with lz4 or zstd at the caller's
// request; the response names the algorithm actually applied and the
// uncompressed size.
package listservice
