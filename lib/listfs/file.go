// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package listfs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"syscall"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/bureau-foundation/listdev/lib/liststream"
)

// fileNode is the device file. Its size is the session's current
// serialized length and its mtime is the last mutation.
type fileNode struct {
	gofuse.Inode
	session *liststream.Session
	logger  *slog.Logger

	// openHandles counts handles between Open and Release.
	openHandles atomic.Int64
	nextHandle  atomic.Uint64
}

var _ gofuse.InodeEmbedder = (*fileNode)(nil)
var _ gofuse.NodeGetattrer = (*fileNode)(nil)
var _ gofuse.NodeSetattrer = (*fileNode)(nil)
var _ gofuse.NodeOpener = (*fileNode)(nil)

func newFileNode(session *liststream.Session, logger *slog.Logger) *fileNode {
	return &fileNode{session: session, logger: logger}
}

func (n *fileNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	stat, err := n.session.Stat()
	if err != nil {
		return toErrno(err)
	}
	out.Mode = syscall.S_IFREG | 0o666
	out.Size = uint64(stat.Size)
	out.Blocks = (out.Size + 511) / 512
	out.Uid = uint32(os.Getuid())
	out.Gid = uint32(os.Getgid())
	modified := stat.Modified
	out.SetTimes(&modified, &modified, &modified)
	return 0
}

// Setattr accepts every change and applies none of them. Truncation in
// particular is a no-op so that "> list" redirection does not clear
// the records.
func (n *fileNode) Setattr(ctx context.Context, f gofuse.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		n.logger.Debug("ignoring truncate on device file", "size", size)
	}
	return n.Getattr(ctx, f, out)
}

// Open ignores O_TRUNC and O_APPEND. Reads bypass the page cache.
func (n *fileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	handle := &fileHandle{
		node: n,
		id:   n.nextHandle.Add(1),
	}
	open := n.openHandles.Add(1)
	n.logger.Debug("device file opened", "handle", handle.id, "flags", flags, "open_handles", open)
	return handle, fuse.FOPEN_DIRECT_IO, 0
}

// fileHandle is one open of the device file.
type fileHandle struct {
	node     *fileNode
	id       uint64
	released atomic.Bool
}

var _ gofuse.FileReader = (*fileHandle)(nil)
var _ gofuse.FileWriter = (*fileHandle)(nil)
var _ gofuse.FileReleaser = (*fileHandle)(nil)

// Read returns the serialized list from off. An offset at or past the
// end returns no data, which read(2) reports as end of file.
func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := h.node.session.ReadAt(dest, off)
	if err != nil && !errors.Is(err, io.EOF) {
		h.node.logger.Debug("device read failed", "handle", h.id, "offset", off, "error", err)
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(dest[:n]), 0
}

// Write applies data as one command line. The offset is ignored.
func (h *fileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	if err := h.node.session.Write(data); err != nil {
		h.node.logger.Debug("device write rejected", "handle", h.id, "error", err)
		return 0, toErrno(err)
	}
	return uint32(len(data)), 0
}

func (h *fileHandle) Release(ctx context.Context) syscall.Errno {
	if h.released.Swap(true) {
		return 0
	}
	open := h.node.openHandles.Add(-1)
	h.node.logger.Debug("device file released", "handle", h.id, "open_handles", open)
	return 0
}
