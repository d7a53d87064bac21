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
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/listdev/lib/liststream"
)

// DefaultFileName is the device file's name when Options.FileName is
// empty.
const DefaultFileName = "list"

// devicePath is the kernel FUSE device Mount needs.
const devicePath = "/dev/fuse"

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted. It
	// is created if it does not exist.
	Mountpoint string

	// FileName is the name of the device file. Empty uses
	// DefaultFileName.
	FileName string

	// Session is the record list the file reads and writes.
	Session *liststream.Session

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, an error-level
	// stderr logger is used.
	Logger *slog.Logger
}

// Available reports whether the FUSE device can be opened for reading
// and writing by this process.
func Available() bool {
	return unix.Access(devicePath, unix.R_OK|unix.W_OK) == nil
}

// Mount mounts the filesystem at the configured mountpoint. The caller
// must call Unmount on the returned Server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if options.FileName == "" {
		options.FileName = DefaultFileName
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &rootNode{options: &options}

	// The file's size changes with every command, so attributes are
	// never cached. The single entry never changes.
	entryTimeout := 1 * time.Second
	attrTimeout := time.Duration(0)
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "listdev",
			Name:       "listdev",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("device file mounted",
		"mountpoint", options.Mountpoint,
		"file", options.FileName,
	)
	return server, nil
}

// rootNode is the filesystem root. Its only child is the device file.
type rootNode struct {
	gofuse.Inode
	options *Options
}

var _ gofuse.InodeEmbedder = (*rootNode)(nil)
var _ gofuse.NodeOnAdder = (*rootNode)(nil)
var _ gofuse.NodeGetattrer = (*rootNode)(nil)

func (r *rootNode) OnAdd(ctx context.Context) {
	file := r.NewPersistentInode(ctx, newFileNode(r.options.Session, r.options.Logger),
		gofuse.StableAttr{Mode: syscall.S_IFREG})
	r.AddChild(r.options.FileName, file, true)
}

func (r *rootNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFDIR | 0o755
	out.Uid = uint32(os.Getuid())
	out.Gid = uint32(os.Getgid())
	return 0
}

// toErrno maps session errors to the errno a character device would
// return for them.
func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, liststream.ErrInvalidCommand),
		errors.Is(err, liststream.ErrInvalidCursor):
		return syscall.EINVAL
	case errors.Is(err, liststream.ErrCapacityExceeded):
		return syscall.ENOSPC
	case errors.Is(err, liststream.ErrAllocationFailure):
		return syscall.ENOMEM
	default:
		return syscall.EIO
	}
}
