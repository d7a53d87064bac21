// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress encodes read payloads for the listdev socket
// protocol.
//
// A client names the algorithm it wants per request. The server falls
// back to [None] when the payload does not shrink, and always reports
// the algorithm actually used together with the uncompressed length,
// which bounds the decoder's allocation.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm names a payload encoding. The string values are part of
// the socket protocol.
type Algorithm string

const (
	// None sends the payload as is.
	None Algorithm = "none"

	// LZ4 uses LZ4 block compression. Cheap, modest ratio.
	LZ4 Algorithm = "lz4"

	// Zstd uses zstd at the default level. Better ratio on text.
	Zstd Algorithm = "zstd"
)

// Parse validates an algorithm name. The empty string means None.
func Parse(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "", None:
		return None, nil
	case LZ4:
		return LZ4, nil
	case Zstd:
		return Zstd, nil
	default:
		return "", fmt.Errorf("unknown compression algorithm: %q", name)
	}
}

// errIncompressible is returned internally when compression does not
// reduce the payload size.
var errIncompressible = errors.New("data is incompressible")

// Encode compresses data with the requested algorithm and returns the
// encoded bytes and the algorithm actually applied. Payloads that do
// not shrink are returned unchanged with None.
func Encode(data []byte, algorithm Algorithm) ([]byte, Algorithm, error) {
	var (
		encoded []byte
		err     error
	)
	switch algorithm {
	case "", None:
		return data, None, nil
	case LZ4:
		encoded, err = encodeLZ4(data)
	case Zstd:
		encoded, err = encodeZstd(data)
	default:
		return nil, "", fmt.Errorf("unsupported compression algorithm: %q", algorithm)
	}

	if errors.Is(err, errIncompressible) {
		return data, None, nil
	}
	if err != nil {
		return nil, "", err
	}
	return encoded, algorithm, nil
}

// Decode reverses Encode. size must equal the original payload
// length; a mismatch is an error.
func Decode(encoded []byte, algorithm Algorithm, size int) ([]byte, error) {
	switch algorithm {
	case "", None:
		if len(encoded) != size {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d",
				len(encoded), size)
		}
		return encoded, nil
	case LZ4:
		return decodeLZ4(encoded, size)
	case Zstd:
		return decodeZstd(encoded, size)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %q", algorithm)
	}
}

func encodeLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decodeLZ4(encoded []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(encoded, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}

// zstd encoders and decoders are safe for concurrent use and costly to
// construct, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

func encodeZstd(data []byte) ([]byte, error) {
	encoded := zstdEncoder.EncodeAll(data, nil)
	if len(encoded) >= len(data) {
		return nil, errIncompressible
	}
	return encoded, nil
}

func decodeZstd(encoded []byte, size int) ([]byte, error) {
	destination, err := zstdDecoder.DecodeAll(encoded, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(destination) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(destination), size)
	}
	return destination, nil
}
