// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the control-socket scaffolding shared by
// the listdev daemon and CLI.
//
// [SocketServer] serves a CBOR request-response protocol on a Unix
// socket: one request and one response per connection, routed by the
// request's "action" field to a registered [ActionFunc]. Responses use
// the [Response] envelope {ok, error, data}. [Client] is the matching
// caller. [NewLogger] builds the daemon's structured logger.
//
// The socket is created mode 0600. Anyone who can open it can mutate
// the record list; there is no per-request authentication.
package service
