// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlist

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// checkInvariants verifies that the running totals match a full walk
// of the list.
func checkInvariants(t *testing.T, list *List) {
	t.Helper()

	count := 0
	size := 0
	var last *record
	for node := list.head; node != nil; node = node.next {
		count++
		size += len(node.content) + 1
		last = node
	}

	if count != list.Len() {
		t.Errorf("Len() = %d, walk counted %d", list.Len(), count)
	}
	if size != list.Size() {
		t.Errorf("Size() = %d, walk summed %d", list.Size(), size)
	}
	if last != list.tail {
		t.Errorf("tail pointer does not match the last linked record")
	}
	if serialized := list.Serialize(); len(serialized) != list.Size() {
		t.Errorf("len(Serialize()) = %d, Size() = %d", len(serialized), list.Size())
	}
}

func insertAll(t *testing.T, insert func([]byte) error, values ...string) {
	t.Helper()
	for _, value := range values {
		if err := insert([]byte(value)); err != nil {
			t.Fatalf("insert %q: %v", value, err)
		}
	}
}

func TestInsertBackPreservesOrder(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "a", "b", "c")

	if got := string(list.Serialize()); got != "a\nb\nc\n" {
		t.Errorf("Serialize() = %q, want %q", got, "a\nb\nc\n")
	}
	checkInvariants(t, list)
}

func TestInsertFrontReversesOrder(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertFront, "a", "b", "c")

	if got := string(list.Serialize()); got != "c\nb\na\n" {
		t.Errorf("Serialize() = %q, want %q", got, "c\nb\na\n")
	}
	checkInvariants(t, list)
}

func TestMixedInserts(t *testing.T) {
	list := New(Options{})
	if err := list.InsertBack([]byte("middle")); err != nil {
		t.Fatalf("InsertBack: %v", err)
	}
	if err := list.InsertFront([]byte("first")); err != nil {
		t.Fatalf("InsertFront: %v", err)
	}
	if err := list.InsertBack([]byte("last")); err != nil {
		t.Fatalf("InsertBack: %v", err)
	}

	want := "first\nmiddle\nlast\n"
	if got := string(list.Serialize()); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
	checkInvariants(t, list)
}

func TestRemoveFront(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "alpha", "be")

	removed, ok := list.RemoveFront()
	if !ok {
		t.Fatal("RemoveFront on non-empty list returned ok=false")
	}
	if removed != len("alpha") {
		t.Errorf("RemoveFront removed %d bytes, want %d", removed, len("alpha"))
	}
	if got := string(list.Serialize()); got != "be\n" {
		t.Errorf("Serialize() after RemoveFront = %q, want %q", got, "be\n")
	}
	checkInvariants(t, list)

	if _, ok := list.RemoveFront(); !ok {
		t.Fatal("second RemoveFront returned ok=false")
	}
	if list.head != nil || list.tail != nil {
		t.Error("head and tail should both be nil after removing the last record")
	}
	checkInvariants(t, list)
}

func TestRemoveFrontEmpty(t *testing.T) {
	list := New(Options{})

	removed, ok := list.RemoveFront()
	if ok {
		t.Error("RemoveFront on empty list returned ok=true")
	}
	if removed != 0 {
		t.Errorf("RemoveFront on empty list removed %d bytes", removed)
	}
	checkInvariants(t, list)
}

func TestRemoveAllIdempotent(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "x", "y", "z")

	list.RemoveAll()
	checkInvariants(t, list)
	if list.Len() != 0 || list.Size() != 0 {
		t.Fatalf("after RemoveAll: Len=%d Size=%d, want 0 0", list.Len(), list.Size())
	}

	list.RemoveAll()
	if list.Len() != 0 || list.Size() != 0 {
		t.Fatalf("after second RemoveAll: Len=%d Size=%d, want 0 0", list.Len(), list.Size())
	}

	// The list is reusable after a clear.
	insertAll(t, list.InsertBack, "again")
	if got := string(list.Serialize()); got != "again\n" {
		t.Errorf("Serialize() = %q, want %q", got, "again\n")
	}
	checkInvariants(t, list)
}

func TestCapacityBoundary(t *testing.T) {
	list := New(Options{Capacity: 2})
	insertAll(t, list.InsertBack, "one", "two")

	err := list.InsertBack([]byte("three"))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("third InsertBack error = %v, want ErrCapacityExceeded", err)
	}
	if list.Len() != 2 {
		t.Errorf("Len() = %d after rejected insert, want 2", list.Len())
	}
	if got := string(list.Serialize()); got != "one\ntwo\n" {
		t.Errorf("Serialize() = %q, want %q", got, "one\ntwo\n")
	}
	checkInvariants(t, list)
}

func TestCapacityFront(t *testing.T) {
	tests := []struct {
		name           string
		unboundedFront bool
		wantErr        error
		wantLen        int
	}{
		{name: "unified check rejects", unboundedFront: false, wantErr: ErrCapacityExceeded, wantLen: 2},
		{name: "legacy front is unbounded", unboundedFront: true, wantErr: nil, wantLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := New(Options{Capacity: 2, UnboundedFront: tt.unboundedFront})
			insertAll(t, list.InsertBack, "one", "two")

			err := list.InsertFront([]byte("zero"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("InsertFront error = %v, want %v", err, tt.wantErr)
			}
			if list.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", list.Len(), tt.wantLen)
			}
			// Back inserts stay bounded in both modes.
			if err := list.InsertBack([]byte("three")); !errors.Is(err, ErrCapacityExceeded) {
				t.Errorf("InsertBack error = %v, want ErrCapacityExceeded", err)
			}
			checkInvariants(t, list)
		})
	}
}

func TestDefaultCapacity(t *testing.T) {
	list := New(Options{})
	if list.Capacity() != DefaultCapacity {
		t.Fatalf("Capacity() = %d, want %d", list.Capacity(), DefaultCapacity)
	}

	for i := range DefaultCapacity {
		if err := list.InsertBack([]byte{'a' + byte(i%26)}); err != nil {
			t.Fatalf("InsertBack #%d: %v", i, err)
		}
	}
	if err := list.InsertBack([]byte("overflow")); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("InsertBack past default capacity: error = %v, want ErrCapacityExceeded", err)
	}
	checkInvariants(t, list)
}

func TestByteBudget(t *testing.T) {
	// "abc\n" + "de\n" = 7 bytes; an 8 byte budget leaves room for one
	// empty record only.
	list := New(Options{MaxBytes: 8})
	insertAll(t, list.InsertBack, "abc", "de")

	for _, insert := range []func([]byte) error{list.InsertBack, list.InsertFront} {
		if err := insert([]byte("f")); !errors.Is(err, ErrAllocationFailure) {
			t.Fatalf("insert over budget: error = %v, want ErrAllocationFailure", err)
		}
	}
	if got := string(list.Serialize()); got != "abc\nde\n" {
		t.Errorf("Serialize() = %q after rejected inserts", got)
	}

	if err := list.InsertBack(nil); err != nil {
		t.Fatalf("InsertBack of empty record within budget: %v", err)
	}
	if list.Size() != 8 {
		t.Errorf("Size() = %d, want 8", list.Size())
	}
	checkInvariants(t, list)
}

func TestInvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "too long", content: bytes.Repeat([]byte("x"), MaxContentLength+1)},
		{name: "embedded NUL", content: []byte("a\x00b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := New(Options{})
			if err := list.InsertBack(tt.content); !errors.Is(err, ErrInvalidContent) {
				t.Errorf("InsertBack error = %v, want ErrInvalidContent", err)
			}
			if err := list.InsertFront(tt.content); !errors.Is(err, ErrInvalidContent) {
				t.Errorf("InsertFront error = %v, want ErrInvalidContent", err)
			}
			if list.Len() != 0 {
				t.Errorf("Len() = %d after rejected inserts", list.Len())
			}
		})
	}
}

func TestMaxContentLengthAccepted(t *testing.T) {
	list := New(Options{})
	content := bytes.Repeat([]byte("y"), MaxContentLength)
	if err := list.InsertBack(content); err != nil {
		t.Fatalf("InsertBack of %d bytes: %v", MaxContentLength, err)
	}
	if list.Size() != MaxContentLength+1 {
		t.Errorf("Size() = %d, want %d", list.Size(), MaxContentLength+1)
	}
}

func TestInsertCopiesContent(t *testing.T) {
	list := New(Options{})
	buffer := []byte("original")
	if err := list.InsertBack(buffer); err != nil {
		t.Fatalf("InsertBack: %v", err)
	}
	copy(buffer, "tampered")

	if got := string(list.Serialize()); got != "original\n" {
		t.Errorf("list aliased the caller's buffer: Serialize() = %q", got)
	}
}

func TestContentWithNewline(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "two\nlines")

	if got := string(list.Serialize()); got != "two\nlines\n" {
		t.Errorf("Serialize() = %q, want %q", got, "two\nlines\n")
	}
	checkInvariants(t, list)
}

func TestSerializeFreshBuffer(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "stable")

	first := list.Serialize()
	first[0] = 'X'

	if got := string(list.Serialize()); got != "stable\n" {
		t.Errorf("Serialize() returned a shared buffer: %q", got)
	}
}

func TestAppendTo(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "a", "b")

	got := list.AppendTo([]byte("prefix:"))
	if string(got) != "prefix:a\nb\n" {
		t.Errorf("AppendTo = %q, want %q", got, "prefix:a\nb\n")
	}
}

func TestAll(t *testing.T) {
	list := New(Options{})
	insertAll(t, list.InsertBack, "one", "two", "three")

	var collected []string
	for content := range list.All() {
		collected = append(collected, string(content))
	}
	if joined := strings.Join(collected, ","); joined != "one,two,three" {
		t.Errorf("All() yielded %q, want %q", joined, "one,two,three")
	}

	// Early termination stops the walk.
	var first []string
	for content := range list.All() {
		first = append(first, string(content))
		break
	}
	if len(first) != 1 || first[0] != "one" {
		t.Errorf("All() with break yielded %v", first)
	}

	// Yielded slices are copies.
	for content := range list.All() {
		content[0] = 'X'
	}
	if got := string(list.Serialize()); got != "one\ntwo\nthree\n" {
		t.Errorf("All() exposed internal content: %q", got)
	}
}

// TestCountTracksOperations drives a fixed operation sequence and
// checks count against successful inserts minus successful removals.
func TestCountTracksOperations(t *testing.T) {
	list := New(Options{Capacity: 5})
	expected := 0

	operations := []string{
		"back", "back", "front", "remove", "back", "back", "back",
		"back", "front", "remove", "remove", "clear", "remove", "front",
	}
	for i, operation := range operations {
		switch operation {
		case "back":
			if err := list.InsertBack([]byte{'b', byte('0' + i%10)}); err == nil {
				expected++
			} else if !errors.Is(err, ErrCapacityExceeded) {
				t.Fatalf("step %d: InsertBack: %v", i, err)
			}
		case "front":
			if err := list.InsertFront([]byte{'f', byte('0' + i%10)}); err == nil {
				expected++
			} else if !errors.Is(err, ErrCapacityExceeded) {
				t.Fatalf("step %d: InsertFront: %v", i, err)
			}
		case "remove":
			if _, ok := list.RemoveFront(); ok {
				expected--
			}
		case "clear":
			list.RemoveAll()
			expected = 0
		}

		if list.Len() != expected {
			t.Fatalf("step %d (%s): Len() = %d, want %d", i, operation, list.Len(), expected)
		}
		if list.Len() > list.Capacity() {
			t.Fatalf("step %d: Len() = %d exceeds capacity %d", i, list.Len(), list.Capacity())
		}
		checkInvariants(t, list)
	}
}

func TestCustomMaxContentLength(t *testing.T) {
	list := New(Options{MaxContentLength: 4})
	if err := list.InsertBack([]byte("four")); err != nil {
		t.Fatalf("InsertBack at the limit: %v", err)
	}
	if err := list.InsertBack([]byte("fives")); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("InsertBack over the limit: error = %v, want ErrInvalidContent", err)
	}
}
