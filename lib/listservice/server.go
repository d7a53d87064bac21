// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package listservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/listdev/lib/clock"
	"github.com/bureau-foundation/listdev/lib/codec"
	"github.com/bureau-foundation/listdev/lib/compress"
	"github.com/bureau-foundation/listdev/lib/liststream"
	"github.com/bureau-foundation/listdev/lib/service"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultMaxHandles  = 64
	DefaultIdleTimeout = 10 * time.Minute
)

// Options configures a Server.
type Options struct {
	// Session is the record list to serve.
	Session *liststream.Session

	// MaxHandles bounds concurrently open handles. Zero uses
	// DefaultMaxHandles.
	MaxHandles int

	// IdleTimeout closes a handle unused for this long. Zero uses
	// DefaultIdleTimeout.
	IdleTimeout time.Duration

	// Clock drives idle expiry. Nil uses clock.Real().
	Clock clock.Clock

	// Logger receives request diagnostics. If nil, an error-level
	// stderr logger is used.
	Logger *slog.Logger
}

// Server implements the control socket actions for one Session.
type Server struct {
	session     *liststream.Session
	maxHandles  int
	idleTimeout time.Duration
	clock       clock.Clock
	logger      *slog.Logger

	mu      sync.Mutex
	handles map[string]*openHandle
}

// openHandle is a handle table entry.
type openHandle struct {
	handle   *liststream.Handle
	expiry   *clock.Timer
	lastUsed time.Time
}

// NewServer creates a Server. Register its actions on a socket server
// with Register.
func NewServer(options Options) *Server {
	if options.MaxHandles <= 0 {
		options.MaxHandles = DefaultMaxHandles
	}
	if options.IdleTimeout <= 0 {
		options.IdleTimeout = DefaultIdleTimeout
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	return &Server{
		session:     options.Session,
		maxHandles:  options.MaxHandles,
		idleTimeout: options.IdleTimeout,
		clock:       options.Clock,
		logger:      options.Logger,
		handles:     make(map[string]*openHandle),
	}
}

// Register installs every action on socketServer.
func (s *Server) Register(socketServer *service.SocketServer) {
	socketServer.Handle(ActionApply, s.handleApply)
	socketServer.Handle(ActionWrite, s.handleWrite)
	socketServer.Handle(ActionOpen, s.handleOpen)
	socketServer.Handle(ActionRead, s.handleRead)
	socketServer.Handle(ActionReadAt, s.handleReadAt)
	socketServer.Handle(ActionSeek, s.handleSeek)
	socketServer.Handle(ActionClose, s.handleClose)
	socketServer.Handle(ActionStat, s.handleStat)
	socketServer.Handle(ActionList, s.handleList)
}

// OpenHandles returns the number of handles in the table.
func (s *Server) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// CloseAll closes every open handle. The daemon calls it on shutdown
// after the socket has drained.
func (s *Server) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.handles {
		entry.expiry.Stop()
		entry.handle.Close()
		delete(s.handles, id)
	}
}

// LogRecords writes every record to the log at info level, in list
// order, followed by a summary line.
func (s *Server) LogRecords() error {
	records, err := s.session.Records()
	if err != nil {
		return err
	}
	for index, record := range records {
		s.logger.Info("record", "index", index, "content", string(record))
	}
	s.logger.Info("record list displayed", "count", len(records))
	return nil
}

func (s *Server) handleApply(ctx context.Context, raw []byte) (any, error) {
	var request applyRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid apply request: %w", err)
	}
	result, err := s.session.Apply(liststream.Verb(request.Verb), request.Argument)
	if err != nil {
		return nil, err
	}
	return mutationResult(result), nil
}

func (s *Server) handleWrite(ctx context.Context, raw []byte) (any, error) {
	var request writeRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid write request: %w", err)
	}
	result, err := s.session.Execute(request.Line)
	if err != nil {
		return nil, err
	}
	return mutationResult(result), nil
}

func mutationResult(result liststream.Result) *MutationResult {
	return &MutationResult{
		Count:      result.Count,
		Size:       result.Size,
		Generation: result.Generation,
	}
}

func (s *Server) handleOpen(ctx context.Context, raw []byte) (any, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating handle id: %w", err)
	}
	handleID := id.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.handles) >= s.maxHandles {
		return nil, fmt.Errorf("too many open handles (limit %d)", s.maxHandles)
	}
	s.handles[handleID] = &openHandle{
		handle:   s.session.Open(),
		expiry:   s.clock.AfterFunc(s.idleTimeout, func() { s.expire(handleID) }),
		lastUsed: s.clock.Now(),
	}
	s.logger.Debug("handle opened", "handle", handleID, "open_handles", len(s.handles))
	return &OpenResult{Handle: handleID}, nil
}

// expire closes a handle whose idle timer fired.
func (s *Server) expire(handleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.handles[handleID]
	if !exists {
		return
	}
	// A lookup that won the lock after the timer fired has already
	// re-armed it.
	if s.clock.Now().Sub(entry.lastUsed) < s.idleTimeout {
		return
	}
	entry.handle.Close()
	delete(s.handles, handleID)
	s.logger.Info("idle handle closed", "handle", handleID, "idle_timeout", s.idleTimeout)
}

// lookup returns the handle for id and restarts its idle timer.
func (s *Server) lookup(handleID string) (*liststream.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.handles[handleID]
	if !exists {
		return nil, fmt.Errorf("unknown handle %q", handleID)
	}
	entry.lastUsed = s.clock.Now()
	entry.expiry.Reset(s.idleTimeout)
	return entry.handle, nil
}

func (s *Server) handleRead(ctx context.Context, raw []byte) (any, error) {
	var request readRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid read request: %w", err)
	}
	algorithm, err := compress.Parse(request.Compression)
	if err != nil {
		return nil, err
	}
	maxBytes, err := readSize(request.MaxBytes)
	if err != nil {
		return nil, err
	}
	handle, err := s.lookup(request.Handle)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, maxBytes)
	n, err := handle.Read(buffer)
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		return nil, err
	}
	return encodeRead(buffer[:n], algorithm, handle.Offset(), eof)
}

func (s *Server) handleReadAt(ctx context.Context, raw []byte) (any, error) {
	var request readAtRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid read_at request: %w", err)
	}
	algorithm, err := compress.Parse(request.Compression)
	if err != nil {
		return nil, err
	}
	maxBytes, err := readSize(request.MaxBytes)
	if err != nil {
		return nil, err
	}

	data, err := s.session.ReadFrom(request.Cursor, maxBytes)
	if err != nil {
		return nil, err
	}
	return encodeRead(data, algorithm, request.Cursor+int64(len(data)), len(data) == 0)
}

// readSize applies the default and the cap to a requested read size.
func readSize(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("max_bytes must not be negative, got %d", requested)
	case requested == 0:
		return DefaultReadSize, nil
	case requested > MaxReadSize:
		return MaxReadSize, nil
	default:
		return requested, nil
	}
}

func encodeRead(data []byte, algorithm compress.Algorithm, offset int64, eof bool) (*ReadResult, error) {
	encoded, applied, err := compress.Encode(data, algorithm)
	if err != nil {
		return nil, err
	}
	return &ReadResult{
		Data:        encoded,
		Size:        len(data),
		Compression: string(applied),
		Offset:      offset,
		EOF:         eof,
	}, nil
}

func (s *Server) handleSeek(ctx context.Context, raw []byte) (any, error) {
	var request seekRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid seek request: %w", err)
	}
	handle, err := s.lookup(request.Handle)
	if err != nil {
		return nil, err
	}
	offset, err := handle.Seek(request.Offset, request.Whence)
	if err != nil {
		return nil, err
	}
	return &SeekResult{Offset: offset}, nil
}

func (s *Server) handleClose(ctx context.Context, raw []byte) (any, error) {
	var request handleRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid close request: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.handles[request.Handle]
	if !exists {
		return nil, fmt.Errorf("unknown handle %q", request.Handle)
	}
	entry.expiry.Stop()
	delete(s.handles, request.Handle)
	s.logger.Debug("handle closed", "handle", request.Handle, "open_handles", len(s.handles))
	return nil, entry.handle.Close()
}

func (s *Server) handleStat(ctx context.Context, raw []byte) (any, error) {
	stat, err := s.session.Stat()
	if err != nil {
		return nil, err
	}
	return &StatResult{
		Count:       stat.Count,
		Size:        stat.Size,
		Capacity:    stat.Capacity,
		Generation:  stat.Generation,
		Modified:    stat.Modified,
		Digest:      stat.Digest.String(),
		OpenHandles: s.OpenHandles(),
	}, nil
}

func (s *Server) handleList(ctx context.Context, raw []byte) (any, error) {
	records, err := s.session.Records()
	if err != nil {
		return nil, err
	}
	return &ListResult{Records: records}, nil
}
