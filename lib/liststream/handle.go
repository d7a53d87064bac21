// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package liststream

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Handle is one caller's open view of a Session, in the manner of a
// file descriptor: it owns a read cursor that Read advances and Seek
// moves. The cursor is an offset into whatever the serialized view is
// at the time of each read, so records inserted or removed between
// reads shift what the next read returns.
//
// A Handle is safe for concurrent use, though concurrent reads on one
// Handle race for the cursor just as they would on a shared fd.
type Handle struct {
	session *Session

	mu     sync.Mutex
	offset int64
	closed bool
}

var (
	_ io.ReadWriteSeeker = (*Handle)(nil)
	_ io.Closer          = (*Handle)(nil)
)

// Open returns a new Handle with its cursor at zero.
func (s *Session) Open() *Handle {
	return &Handle{session: s}
}

// Read fills p from the cursor and advances the cursor by the number
// of bytes returned. At the end of the view it returns 0, io.EOF.
func (h *Handle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	data, err := h.session.ReadFrom(h.offset, len(p))
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, data)
	h.offset += int64(n)
	return n, nil
}

// Write applies p as one command line. The cursor does not move.
func (h *Handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return 0, ErrClosed
	}
	if err := h.session.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Seek sets the cursor. io.SeekEnd is relative to the current
// serialized length. Seeking past the end is allowed; the next Read
// returns io.EOF.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = h.offset
	case io.SeekEnd:
		size, err := h.session.Size()
		if err != nil {
			return 0, err
		}
		base = int64(size)
	default:
		return 0, fmt.Errorf("%w: unknown whence %d", ErrInvalidCursor, whence)
	}

	target := base + offset
	if target < 0 {
		return 0, fmt.Errorf("%w: seek to %d", ErrInvalidCursor, target)
	}
	h.offset = target
	return target, nil
}

// Offset returns the current cursor.
func (h *Handle) Offset() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.offset
}

// Close releases the Handle. The Session is unaffected.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errors.New("handle already closed")
	}
	h.closed = true
	return nil
}
