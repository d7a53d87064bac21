// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package viewhash computes digests of a serialized record view.
//
// A reader that fetches the record list in several partial reads can
// compare the digest reported before and after to tell whether the
// view changed underneath it. Digests are keyed BLAKE3 with a fixed
// domain key, so a view digest never collides with a BLAKE3 hash of
// the same bytes computed for another purpose.
package viewhash

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest of a serialized view.
type Digest [32]byte

// viewDomainKey is the ASCII domain name zero-padded to 32 bytes.
// Changing it changes every digest.
var viewDomainKey = [32]byte{
	'l', 'i', 's', 't', 'd', 'e', 'v', '.', 'v', 'i', 'e', 'w',
}

// Sum returns the view-domain digest of data.
func Sum(data []byte) Digest {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(viewDomainKey[:])
	if err != nil {
		panic("viewhash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Parse decodes a 64-character hex string into a Digest.
func Parse(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing view digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("view digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
