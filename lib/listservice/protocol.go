// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package listservice

import "time"

// Action names on the control socket.
const (
	ActionApply  = "apply"
	ActionWrite  = "write"
	ActionOpen   = "open"
	ActionRead   = "read"
	ActionReadAt = "read_at"
	ActionSeek   = "seek"
	ActionClose  = "close"
	ActionStat   = "stat"
	ActionList   = "list"
)

// DefaultReadSize is the read length used when a request omits
// max_bytes.
const DefaultReadSize = 4096

// MaxReadSize caps max_bytes so a response fits comfortably under the
// client's response size limit.
const MaxReadSize = 256 * 1024

// Record content and read payloads are byte strings on the wire:
// record content is not required to be UTF-8.

type applyRequest struct {
	Verb     string `cbor:"verb"`
	Argument []byte `cbor:"argument,omitempty"`
}

type writeRequest struct {
	Line []byte `cbor:"line"`
}

type handleRequest struct {
	Handle string `cbor:"handle"`
}

type readRequest struct {
	Handle      string `cbor:"handle"`
	MaxBytes    int    `cbor:"max_bytes"`
	Compression string `cbor:"compression"`
}

type readAtRequest struct {
	Cursor      int64  `cbor:"cursor"`
	MaxBytes    int    `cbor:"max_bytes"`
	Compression string `cbor:"compression"`
}

type seekRequest struct {
	Handle string `cbor:"handle"`
	Offset int64  `cbor:"offset"`
	Whence int    `cbor:"whence"`
}

// MutationResult reports the list state after a successful apply or
// write.
type MutationResult struct {
	Count      int    `cbor:"count" json:"count"`
	Size       int    `cbor:"size" json:"size"`
	Generation uint64 `cbor:"generation" json:"generation"`
}

// OpenResult identifies a newly opened handle.
type OpenResult struct {
	Handle string `cbor:"handle" json:"handle"`
}

// ReadResult is one chunk of the serialized view.
type ReadResult struct {
	// Data is the payload, encoded with Compression.
	Data []byte `cbor:"data" json:"data"`

	// Size is the uncompressed payload length.
	Size int `cbor:"size" json:"size"`

	// Compression is the algorithm applied to Data. It is "none" when
	// the caller asked for none or compression did not help.
	Compression string `cbor:"compression" json:"compression"`

	// Offset is the cursor after this read.
	Offset int64 `cbor:"offset" json:"offset"`

	// EOF is set when the read started at or past the end of the view.
	EOF bool `cbor:"eof" json:"eof"`
}

// SeekResult reports a handle's new cursor.
type SeekResult struct {
	Offset int64 `cbor:"offset" json:"offset"`
}

// StatResult describes the record list.
type StatResult struct {
	Count       int       `cbor:"count" json:"count"`
	Size        int       `cbor:"size" json:"size"`
	Capacity    int       `cbor:"capacity" json:"capacity"`
	Generation  uint64    `cbor:"generation" json:"generation"`
	Modified    time.Time `cbor:"modified" json:"modified"`
	Digest      string    `cbor:"digest" json:"digest"`
	OpenHandles int       `cbor:"open_handles" json:"open_handles"`
}

// ListResult holds every record in list order, without terminators.
type ListResult struct {
	Records [][]byte `cbor:"records" json:"records"`
}
