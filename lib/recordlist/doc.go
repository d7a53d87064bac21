// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recordlist implements the ordered record collection behind
// the listdev stream device.
//
// A [List] is a singly linked, insertion-ordered sequence of short
// byte records. It supports four mutations (front insert, back insert,
// front removal, full clear) and one read (serialization into a
// newline-joined byte buffer). The list keeps a running total of its
// serialized length so readers can size a buffer without walking it.
//
// A List is not safe for concurrent use. The stream session in
// lib/liststream owns the single shared List and guards every call
// with its mutex.
//
// Capacity is enforced on both insert paths by default. Setting
// [Options].UnboundedFront restores the historical behavior where only
// [List.InsertBack] is bounded.
//
// This package depends on no other listdev packages.
package recordlist
