// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package listservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bureau-foundation/listdev/lib/compress"
	"github.com/bureau-foundation/listdev/lib/liststream"
	"github.com/bureau-foundation/listdev/lib/service"
)

// Client is a typed client for the control socket.
type Client struct {
	service *service.Client
}

// NewClient returns a Client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{service: service.NewClient(socketPath)}
}

// Apply runs one verb. argument is nil for DELF and DELA.
func (c *Client) Apply(ctx context.Context, verb liststream.Verb, argument []byte) (MutationResult, error) {
	fields := map[string]any{"verb": string(verb)}
	if len(argument) > 0 {
		fields["argument"] = argument
	}
	var result MutationResult
	err := c.service.Call(ctx, ActionApply, fields, &result)
	return result, err
}

// Write sends one raw command line through the daemon's parser.
func (c *Client) Write(ctx context.Context, line []byte) (MutationResult, error) {
	var result MutationResult
	err := c.service.Call(ctx, ActionWrite, map[string]any{"line": line}, &result)
	return result, err
}

// Open allocates a read handle and returns its id.
func (c *Client) Open(ctx context.Context) (string, error) {
	var result OpenResult
	if err := c.service.Call(ctx, ActionOpen, nil, &result); err != nil {
		return "", err
	}
	return result.Handle, nil
}

// Read reads up to maxBytes at the handle's cursor and advances it.
// The returned data is decompressed. eof is set when nothing remained.
func (c *Client) Read(ctx context.Context, handle string, maxBytes int, algorithm compress.Algorithm) (data []byte, eof bool, err error) {
	var result ReadResult
	err = c.service.Call(ctx, ActionRead, map[string]any{
		"handle":      handle,
		"max_bytes":   maxBytes,
		"compression": string(algorithm),
	}, &result)
	if err != nil {
		return nil, false, err
	}
	data, err = decodeRead(result)
	return data, result.EOF, err
}

// ReadAt reads up to maxBytes at cursor without a handle.
func (c *Client) ReadAt(ctx context.Context, cursor int64, maxBytes int, algorithm compress.Algorithm) ([]byte, error) {
	var result ReadResult
	err := c.service.Call(ctx, ActionReadAt, map[string]any{
		"cursor":      cursor,
		"max_bytes":   maxBytes,
		"compression": string(algorithm),
	}, &result)
	if err != nil {
		return nil, err
	}
	return decodeRead(result)
}

func decodeRead(result ReadResult) ([]byte, error) {
	algorithm, err := compress.Parse(result.Compression)
	if err != nil {
		return nil, err
	}
	data, err := compress.Decode(result.Data, algorithm, result.Size)
	if err != nil {
		return nil, fmt.Errorf("decoding read payload: %w", err)
	}
	return data, nil
}

// Seek moves the handle's cursor. whence is io.SeekStart,
// io.SeekCurrent, or io.SeekEnd.
func (c *Client) Seek(ctx context.Context, handle string, offset int64, whence int) (int64, error) {
	var result SeekResult
	err := c.service.Call(ctx, ActionSeek, map[string]any{
		"handle": handle,
		"offset": offset,
		"whence": whence,
	}, &result)
	return result.Offset, err
}

// Close releases a handle.
func (c *Client) Close(ctx context.Context, handle string) error {
	return c.service.Call(ctx, ActionClose, map[string]any{"handle": handle}, nil)
}

// Stat returns the list's counters and view digest.
func (c *Client) Stat(ctx context.Context) (StatResult, error) {
	var result StatResult
	err := c.service.Call(ctx, ActionStat, nil, &result)
	return result, err
}

// List returns every record in order.
func (c *Client) List(ctx context.Context) ([][]byte, error) {
	var result ListResult
	if err := c.service.Call(ctx, ActionList, nil, &result); err != nil {
		return nil, err
	}
	return result.Records, nil
}

// ReadAll opens a handle, reads chunkSize bytes at a time until end of
// view, and closes the handle.
func (c *Client) ReadAll(ctx context.Context, chunkSize int, algorithm compress.Algorithm) ([]byte, error) {
	handle, err := c.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close(context.WithoutCancel(ctx), handle)

	var buffer bytes.Buffer
	for {
		chunk, eof, err := c.Read(ctx, handle, chunkSize, algorithm)
		if err != nil {
			return nil, err
		}
		if eof {
			return buffer.Bytes(), nil
		}
		buffer.Write(chunk)
	}
}

// CallRaw sends an arbitrary action and returns the encoded response
// envelope, for diagnostic output.
func (c *Client) CallRaw(ctx context.Context, action string, fields map[string]any) ([]byte, error) {
	return c.service.CallRaw(ctx, action, fields)
}
