// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package listfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/bureau-foundation/listdev/lib/clock"
	"github.com/bureau-foundation/listdev/lib/liststream"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestNode(t *testing.T, options liststream.Options) (*fileNode, *liststream.Session, *clock.FakeClock) {
	t.Helper()
	fakeClock := clock.Fake(testEpoch)
	options.Clock = fakeClock
	session := liststream.New(options)
	t.Cleanup(func() { session.Close() })
	return newFileNode(session, testLogger()), session, fakeClock
}

func openHandle(t *testing.T, node *fileNode) *fileHandle {
	t.Helper()
	handle, flags, errno := node.Open(context.Background(), uint32(os.O_RDWR))
	if errno != 0 {
		t.Fatalf("Open: %v", errno)
	}
	if flags&fuse.FOPEN_DIRECT_IO == 0 {
		t.Errorf("Open flags %#x lack FOPEN_DIRECT_IO", flags)
	}
	return handle.(*fileHandle)
}

func readAt(t *testing.T, handle *fileHandle, size int, off int64) string {
	t.Helper()
	result, errno := handle.Read(context.Background(), make([]byte, size), off)
	if errno != 0 {
		t.Fatalf("Read(%d, %d): %v", size, off, errno)
	}
	data, status := result.Bytes(make([]byte, size))
	if !status.Ok() {
		t.Fatalf("ReadResult.Bytes: %v", status)
	}
	return string(data)
}

func writeLine(handle *fileHandle, line string) (uint32, syscall.Errno) {
	return handle.Write(context.Background(), []byte(line), 0)
}

func TestFileWriteThenRead(t *testing.T) {
	node, _, _ := newTestNode(t, liststream.Options{})
	handle := openHandle(t, node)

	for _, line := range []string{"ADDB a\n", "ADDB b\n", "ADDB c\n"} {
		written, errno := writeLine(handle, line)
		if errno != 0 {
			t.Fatalf("Write(%q): %v", line, errno)
		}
		if int(written) != len(line) {
			t.Errorf("Write(%q) = %d bytes", line, written)
		}
	}

	if got := readAt(t, handle, 4096, 0); got != "a\nb\nc\n" {
		t.Errorf("read = %q, want %q", got, "a\nb\nc\n")
	}
}

func TestFileReadAtOffsets(t *testing.T) {
	node, session, _ := newTestNode(t, liststream.Options{})
	if err := session.ApplyCommand(liststream.VerbInsertBack, []byte("abc")); err != nil {
		t.Fatalf("ApplyCommand: %v", err)
	}
	handle := openHandle(t, node)

	if got := readAt(t, handle, 2, 0); got != "ab" {
		t.Errorf("read(2, 0) = %q", got)
	}
	if got := readAt(t, handle, 100, 2); got != "c\n" {
		t.Errorf("read(100, 2) = %q", got)
	}
	if got := readAt(t, handle, 100, 4); got != "" {
		t.Errorf("read at end = %q, want empty", got)
	}
}

func TestFileWriteOffsetIgnored(t *testing.T) {
	node, _, _ := newTestNode(t, liststream.Options{})
	handle := openHandle(t, node)

	if _, errno := handle.Write(context.Background(), []byte("ADDB x\n"), 12345); errno != 0 {
		t.Fatalf("Write at offset: %v", errno)
	}
	if got := readAt(t, handle, 100, 0); got != "x\n" {
		t.Errorf("read = %q", got)
	}
}

func TestFileErrnoMapping(t *testing.T) {
	tests := []struct {
		name    string
		options liststream.Options
		setup   []string
		line    string
		want    syscall.Errno
	}{
		{name: "unknown verb", line: "FOO x\n", want: syscall.EINVAL},
		{name: "missing argument", line: "ADDB\n", want: syscall.EINVAL},
		{name: "empty write", line: "", want: syscall.EINVAL},
		{name: "full list", options: liststream.Options{Capacity: 1}, setup: []string{"ADDB a\n"}, line: "ADDB b\n", want: syscall.ENOSPC},
		{name: "byte budget", options: liststream.Options{MaxBytes: 3}, setup: []string{"ADDB a\n"}, line: "ADDB bb\n", want: syscall.ENOMEM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, _, _ := newTestNode(t, tt.options)
			handle := openHandle(t, node)
			for _, line := range tt.setup {
				if _, errno := writeLine(handle, line); errno != 0 {
					t.Fatalf("setup Write(%q): %v", line, errno)
				}
			}
			written, errno := writeLine(handle, tt.line)
			if errno != tt.want {
				t.Errorf("Write(%q) errno = %v, want %v", tt.line, errno, tt.want)
			}
			if written != 0 {
				t.Errorf("failed Write reported %d bytes", written)
			}
		})
	}
}

func TestToErrno(t *testing.T) {
	tests := []struct {
		err  error
		want syscall.Errno
	}{
		{nil, 0},
		{fmt.Errorf("wrapped: %w", liststream.ErrInvalidCommand), syscall.EINVAL},
		{liststream.ErrInvalidCursor, syscall.EINVAL},
		{liststream.ErrCapacityExceeded, syscall.ENOSPC},
		{liststream.ErrAllocationFailure, syscall.ENOMEM},
		{liststream.ErrClosed, syscall.EIO},
		{errors.New("anything else"), syscall.EIO},
	}
	for _, tt := range tests {
		if got := toErrno(tt.err); got != tt.want {
			t.Errorf("toErrno(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFileGetattr(t *testing.T) {
	node, session, fakeClock := newTestNode(t, liststream.Options{})

	fakeClock.Advance(time.Hour)
	if err := session.ApplyCommand(liststream.VerbInsertBack, []byte("hello")); err != nil {
		t.Fatalf("ApplyCommand: %v", err)
	}

	var out fuse.AttrOut
	if errno := node.Getattr(context.Background(), nil, &out); errno != 0 {
		t.Fatalf("Getattr: %v", errno)
	}
	if out.Mode != syscall.S_IFREG|0o666 {
		t.Errorf("Mode = %o", out.Mode)
	}
	if out.Size != uint64(len("hello\n")) {
		t.Errorf("Size = %d, want %d", out.Size, len("hello\n"))
	}
	if want := uint64(testEpoch.Add(time.Hour).Unix()); out.Mtime != want {
		t.Errorf("Mtime = %d, want %d", out.Mtime, want)
	}
}

func TestFileSetattrTruncateIsNoop(t *testing.T) {
	node, session, _ := newTestNode(t, liststream.Options{})
	if err := session.ApplyCommand(liststream.VerbInsertBack, []byte("keep")); err != nil {
		t.Fatalf("ApplyCommand: %v", err)
	}

	in := &fuse.SetAttrIn{}
	in.Valid = fuse.FATTR_SIZE
	in.Size = 0
	var out fuse.AttrOut
	if errno := node.Setattr(context.Background(), nil, in, &out); errno != 0 {
		t.Fatalf("Setattr: %v", errno)
	}
	if out.Size != uint64(len("keep\n")) {
		t.Errorf("Size after truncate = %d, want unchanged", out.Size)
	}

	stat, err := session.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stat.Count != 1 {
		t.Errorf("Count = %d after truncate, want 1", stat.Count)
	}
}

func TestFileClosedSession(t *testing.T) {
	node, session, _ := newTestNode(t, liststream.Options{})
	handle := openHandle(t, node)
	session.Close()

	if _, errno := handle.Read(context.Background(), make([]byte, 8), 0); errno != syscall.EIO {
		t.Errorf("Read errno = %v, want EIO", errno)
	}
	if _, errno := writeLine(handle, "ADDB x\n"); errno != syscall.EIO {
		t.Errorf("Write errno = %v, want EIO", errno)
	}
	var out fuse.AttrOut
	if errno := node.Getattr(context.Background(), nil, &out); errno != syscall.EIO {
		t.Errorf("Getattr errno = %v, want EIO", errno)
	}
}

func TestFileOpenRelease(t *testing.T) {
	node, _, _ := newTestNode(t, liststream.Options{})

	first := openHandle(t, node)
	second := openHandle(t, node)
	if first.id == second.id {
		t.Errorf("handles share id %d", first.id)
	}
	if got := node.openHandles.Load(); got != 2 {
		t.Errorf("open handles = %d, want 2", got)
	}

	first.Release(context.Background())
	first.Release(context.Background())
	if got := node.openHandles.Load(); got != 1 {
		t.Errorf("open handles after double release = %d, want 1", got)
	}
	second.Release(context.Background())
	if got := node.openHandles.Load(); got != 0 {
		t.Errorf("open handles = %d, want 0", got)
	}
}
