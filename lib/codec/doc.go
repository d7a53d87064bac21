// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration shared by the listdev
// socket protocol.
//
// Requests and responses on the daemon's control socket are CBOR
// values, one request and one response per connection. The encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items.
//
// For buffers:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For connections:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tags
//
// Protocol types carry `json` tags. fxamacker/cbor reads `json` tags
// when `cbor` tags are absent, so one tag names the field for both
// the socket (CBOR) and the CLI's --json output. Types that never
// leave the CBOR wire use `cbor` tags. Never put both on one field.
package codec
