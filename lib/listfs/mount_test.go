// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package listfs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/bureau-foundation/listdev/lib/liststream"
)

// fuseAvailable skips tests that need a real FUSE mount when the
// device cannot be opened.
func fuseAvailable(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("skipping: /dev/fuse not available")
	}
}

// testMount mounts a fresh session and returns the device file path.
func testMount(t *testing.T, options liststream.Options) (string, *liststream.Session) {
	t.Helper()
	fuseAvailable(t)

	session := liststream.New(options)
	t.Cleanup(func() { session.Close() })

	mountpoint := filepath.Join(t.TempDir(), "mount")
	server, err := Mount(Options{
		Mountpoint: mountpoint,
		Session:    session,
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(func() {
		if err := server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
	})

	return filepath.Join(mountpoint, DefaultFileName), session
}

func writeCommand(path, line string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	_, writeErr := file.Write([]byte(line))
	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func TestMountRootListsDeviceFile(t *testing.T) {
	path, _ := testMount(t, liststream.Options{})

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != DefaultFileName {
		t.Errorf("root entries = %v, want only %q", entries, DefaultFileName)
	}
}

func TestMountShellStyleRoundTrip(t *testing.T) {
	path, _ := testMount(t, liststream.Options{})

	for _, line := range []string{"ADDB a\n", "ADDB b\n", "ADDF z\n"} {
		if err := writeCommand(path, line); err != nil {
			t.Fatalf("write %q: %v", line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "z\na\nb\n" {
		t.Errorf("contents = %q, want %q", data, "z\na\nb\n")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len("z\na\nb\n")) {
		t.Errorf("Size = %d", info.Size())
	}
}

func TestMountTruncateKeepsRecords(t *testing.T) {
	path, _ := testMount(t, liststream.Options{})

	if err := writeCommand(path, "ADDB keep\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "keep\n" {
		t.Errorf("contents after truncate = %q", data)
	}
}

func TestMountInvalidCommandErrno(t *testing.T) {
	path, _ := testMount(t, liststream.Options{Capacity: 1})

	err := writeCommand(path, "FOO bar\n")
	if !errors.Is(err, syscall.EINVAL) {
		t.Errorf("invalid command error = %v, want EINVAL", err)
	}

	if err := writeCommand(path, "ADDB one\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	err = writeCommand(path, "ADDB two\n")
	if !errors.Is(err, syscall.ENOSPC) {
		t.Errorf("over-capacity error = %v, want ENOSPC", err)
	}
}

func TestMountPartialReads(t *testing.T) {
	path, session := testMount(t, liststream.Options{})
	if err := session.ApplyCommand(liststream.VerbInsertBack, []byte(strings.Repeat("x", 100))); err != nil {
		t.Fatalf("ApplyCommand: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	var collected []byte
	buffer := make([]byte, 7)
	for {
		n, err := file.Read(buffer)
		collected = append(collected, buffer[:n]...)
		if err != nil {
			break
		}
	}
	if string(collected) != strings.Repeat("x", 100)+"\n" {
		t.Errorf("collected %d bytes: %q", len(collected), collected)
	}
}

func TestMountRequiresOptions(t *testing.T) {
	if _, err := Mount(Options{Session: liststream.New(liststream.Options{})}); err == nil {
		t.Error("Mount without mountpoint succeeded")
	}
	if _, err := Mount(Options{Mountpoint: t.TempDir()}); err == nil {
		t.Error("Mount without session succeeded")
	}
}
