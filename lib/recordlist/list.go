// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlist

import (
	"bytes"
	"fmt"
	"iter"
)

const (
	// DefaultCapacity is the maximum number of records a list holds
	// when Options.Capacity is zero.
	DefaultCapacity = 100

	// MaxContentLength is the default largest record content, in
	// bytes. One byte of the 255-byte line limit is reserved for the
	// line terminator.
	MaxContentLength = 254
)

// Options configures a List.
type Options struct {
	// Capacity is the maximum number of records. Zero uses
	// DefaultCapacity.
	Capacity int

	// MaxContentLength bounds a single record's content. Zero uses
	// the package MaxContentLength.
	MaxContentLength int

	// MaxBytes bounds the total serialized length (content plus one
	// newline per record). An insert that would exceed it fails with
	// ErrAllocationFailure. Zero means no budget.
	MaxBytes int

	// UnboundedFront exempts InsertFront from the capacity check,
	// matching the original device where only back inserts were
	// bounded.
	UnboundedFront bool
}

// record is one node of the list. The content slice is owned by the
// node and never handed out.
type record struct {
	content []byte
	next    *record
}

// List is an insertion-ordered singly linked list of records.
//
// Invariants, maintained by every mutation:
//
//	count == number of linked records
//	size  == sum of len(content)+1 over linked records
type List struct {
	head  *record
	tail  *record
	count int
	size  int

	capacity       int
	maxContent     int
	maxBytes       int
	unboundedFront bool
}

// New creates an empty list.
func New(options Options) *List {
	if options.Capacity <= 0 {
		options.Capacity = DefaultCapacity
	}
	if options.MaxContentLength <= 0 {
		options.MaxContentLength = MaxContentLength
	}
	return &List{
		capacity:       options.Capacity,
		maxContent:     options.MaxContentLength,
		maxBytes:       options.MaxBytes,
		unboundedFront: options.UnboundedFront,
	}
}

// Len returns the number of records.
func (l *List) Len() int { return l.count }

// Size returns the serialized length of the list in bytes.
func (l *List) Size() int { return l.size }

// Capacity returns the configured maximum record count.
func (l *List) Capacity() int { return l.capacity }

// InsertFront links a copy of content ahead of the current head.
func (l *List) InsertFront(content []byte) error {
	node, err := l.newRecord(content, !l.unboundedFront)
	if err != nil {
		return err
	}

	node.next = l.head
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.count++
	l.size += len(node.content) + 1
	return nil
}

// InsertBack links a copy of content after the current tail.
func (l *List) InsertBack(content []byte) error {
	node, err := l.newRecord(content, true)
	if err != nil {
		return err
	}

	if l.tail == nil {
		l.head = node
	} else {
		l.tail.next = node
	}
	l.tail = node
	l.count++
	l.size += len(node.content) + 1
	return nil
}

// newRecord validates an insert and builds a fully formed node. It
// never touches the list structure, so a failure leaves the list
// unchanged.
func (l *List) newRecord(content []byte, bounded bool) (*record, error) {
	if len(content) > l.maxContent {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit",
			ErrInvalidContent, len(content), l.maxContent)
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, fmt.Errorf("%w: content contains a NUL byte", ErrInvalidContent)
	}
	if bounded && l.count >= l.capacity {
		return nil, fmt.Errorf("%w: list holds %d of %d records",
			ErrCapacityExceeded, l.count, l.capacity)
	}
	if l.maxBytes > 0 && l.size+len(content)+1 > l.maxBytes {
		return nil, fmt.Errorf("%w: %d byte record exceeds the %d byte budget (%d in use)",
			ErrAllocationFailure, len(content)+1, l.maxBytes, l.size)
	}

	return &record{content: bytes.Clone(content)}, nil
}

// RemoveFront detaches the head record and returns its content length.
// The length is taken during the detach, before the node is dropped.
// Returns ok=false on an empty list.
func (l *List) RemoveFront() (removed int, ok bool) {
	node := l.head
	if node == nil {
		return 0, false
	}

	removed = len(node.content)
	l.head = node.next
	if l.head == nil {
		l.tail = nil
	}
	l.count--
	l.size -= removed + 1

	node.next = nil
	node.content = nil
	return removed, true
}

// RemoveAll clears the list. Calling it on an empty list is a no-op.
func (l *List) RemoveAll() {
	for {
		if _, ok := l.RemoveFront(); !ok {
			return
		}
	}
}

// Serialize returns a fresh buffer holding every record followed by a
// newline, head to tail. The result is exactly Size bytes long.
func (l *List) Serialize() []byte {
	return l.AppendTo(make([]byte, 0, l.size))
}

// AppendTo appends the serialized list to dst and returns the
// extended buffer.
func (l *List) AppendTo(dst []byte) []byte {
	for node := l.head; node != nil; node = node.next {
		dst = append(dst, node.content...)
		dst = append(dst, '\n')
	}
	return dst
}

// All iterates the records head to tail, yielding a copy of each
// record's content.
func (l *List) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for node := l.head; node != nil; node = node.next {
			if !yield(bytes.Clone(node.content)) {
				return
			}
		}
	}
}
