// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package liststream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/listdev/lib/clock"
	"github.com/bureau-foundation/listdev/lib/recordlist"
	"github.com/bureau-foundation/listdev/lib/viewhash"
)

// Options configures a Session.
type Options struct {
	// Capacity is the maximum number of records. Zero uses
	// recordlist.DefaultCapacity.
	Capacity int

	// MaxLineLength is the longest accepted command line including
	// its terminator. Record content is limited to one byte less.
	// Zero uses MaxLineLength; values below MinLineLength are raised
	// to it.
	MaxLineLength int

	// MaxBytes is the byte budget for the serialized view. Zero means
	// no budget.
	MaxBytes int

	// UnboundedFront exempts ADDF from the capacity check.
	UnboundedFront bool

	// Clock stamps modification times. Nil uses clock.Real().
	Clock clock.Clock

	// Logger receives mutation diagnostics at debug level. If nil,
	// an error-level stderr logger is used.
	Logger *slog.Logger
}

// Stat describes the current state of a Session's record list.
type Stat struct {
	// Count is the number of records.
	Count int

	// Size is the serialized length in bytes.
	Size int

	// Capacity is the configured maximum record count.
	Capacity int

	// Generation increments on every mutation that changed the list.
	Generation uint64

	// Modified is when the list last changed. It is the construction
	// time for a list that never changed.
	Modified time.Time

	// Digest is the view digest of the serialized list.
	Digest viewhash.Digest
}

// Session binds one record list to one mutex. A process constructs
// exactly one Session and hands it to every transport. All methods are
// safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	records    *recordlist.List
	closed     bool
	generation uint64
	modified   time.Time

	maxLineLength int
	clock         clock.Clock
	logger        *slog.Logger
}

// New creates a Session with an empty record list.
func New(options Options) *Session {
	if options.MaxLineLength <= 0 {
		options.MaxLineLength = MaxLineLength
	}
	options.MaxLineLength = max(options.MaxLineLength, MinLineLength)
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	return &Session{
		records: recordlist.New(recordlist.Options{
			Capacity:         options.Capacity,
			MaxContentLength: options.MaxLineLength - 1,
			MaxBytes:         options.MaxBytes,
			UnboundedFront:   options.UnboundedFront,
		}),
		modified:      options.Clock.Now(),
		maxLineLength: options.MaxLineLength,
		clock:         options.Clock,
		logger:        options.Logger,
	}
}

// MaxLineLength returns the longest command line Write accepts.
func (s *Session) MaxLineLength() int { return s.maxLineLength }

// Result is the state of the list immediately after one mutation,
// captured under the same lock as the mutation.
type Result struct {
	Count      int
	Size       int
	Generation uint64
}

// ApplyCommand runs verb against the record list. ADDF and ADDB need a
// non-empty argument; DELF and DELA take none. An unknown verb or an
// arity mismatch fails with ErrInvalidCommand before the lock is
// taken. DELF and DELA on an empty list succeed without change.
func (s *Session) ApplyCommand(verb Verb, argument []byte) error {
	_, err := s.Apply(verb, argument)
	return err
}

// Apply is ApplyCommand returning the resulting counters.
func (s *Session) Apply(verb Verb, argument []byte) (Result, error) {
	if !verb.Valid() {
		return Result{}, fmt.Errorf("%w: unknown verb %q", ErrInvalidCommand, verb)
	}
	if verb.TakesArgument() && len(argument) == 0 {
		return Result{}, fmt.Errorf("%w: %s requires an argument", ErrInvalidCommand, verb)
	}
	if !verb.TakesArgument() && len(argument) != 0 {
		return Result{}, fmt.Errorf("%w: %s takes no argument", ErrInvalidCommand, verb)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrClosed
	}

	changed := true
	var err error
	switch verb {
	case VerbInsertFront:
		err = s.records.InsertFront(argument)
	case VerbInsertBack:
		err = s.records.InsertBack(argument)
	case VerbRemoveFront:
		_, changed = s.records.RemoveFront()
	case VerbRemoveAll:
		changed = s.records.Len() > 0
		s.records.RemoveAll()
	}
	if err != nil {
		s.logger.Debug("command rejected", "verb", verb, "error", err)
		if errors.Is(err, recordlist.ErrInvalidContent) {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		return Result{}, fmt.Errorf("%s: %w", verb, err)
	}

	if changed {
		s.generation++
		s.modified = s.clock.Now()
	}
	result := Result{
		Count:      s.records.Len(),
		Size:       s.records.Size(),
		Generation: s.generation,
	}
	s.logger.Debug("command applied",
		"verb", verb,
		"count", result.Count,
		"size", result.Size,
	)
	return result, nil
}

// Write parses one command line and applies it. This is the path a
// byte-oriented transport takes: the whole write buffer is one line.
func (s *Session) Write(line []byte) error {
	_, err := s.Execute(line)
	return err
}

// Execute is Write returning the resulting counters.
func (s *Session) Execute(line []byte) (Result, error) {
	command, err := parseCommand(line, s.maxLineLength)
	if err != nil {
		return Result{}, err
	}
	return s.Apply(command.Verb, command.Argument)
}

// ReadFrom serializes the list and returns at most maxBytes bytes
// starting at cursor. A cursor at or past the end yields an empty
// slice. The returned slice is owned by the caller.
func (s *Session) ReadFrom(cursor int64, maxBytes int) ([]byte, error) {
	if cursor < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCursor, cursor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	serialized := s.records.Serialize()
	if maxBytes <= 0 || cursor >= int64(len(serialized)) {
		return []byte{}, nil
	}

	n := min(int64(len(serialized))-cursor, int64(maxBytes))
	return serialized[cursor : cursor+n], nil
}

// ReadAt implements io.ReaderAt over ReadFrom. It returns io.EOF when
// fewer than len(p) bytes remain at off.
func (s *Session) ReadAt(p []byte, off int64) (int, error) {
	data, err := s.ReadFrom(off, len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the current serialized length.
func (s *Session) Size() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	return s.records.Size(), nil
}

// Stat returns counters, the modification time, and the view digest.
func (s *Session) Stat() (Stat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Stat{}, ErrClosed
	}
	return Stat{
		Count:      s.records.Len(),
		Size:       s.records.Size(),
		Capacity:   s.records.Capacity(),
		Generation: s.generation,
		Modified:   s.modified,
		Digest:     viewhash.Sum(s.records.Serialize()),
	}, nil
}

// Records returns a copy of every record in list order.
func (s *Session) Records() ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	records := make([][]byte, 0, s.records.Len())
	for content := range s.records.All() {
		records = append(records, content)
	}
	return records, nil
}

// Close clears the record list and rejects all further calls. Closing
// an already closed Session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	cleared := s.records.Len()
	s.records.RemoveAll()
	s.closed = true
	s.logger.Debug("session closed", "records_cleared", cleared)
	return nil
}
