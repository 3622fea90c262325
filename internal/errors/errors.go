package errors

import (
	"errors"
	"fmt"
)

// MuxprocError is the base interface for all muxproc errors.
type MuxprocError interface {
	error
	IsMuxprocError() bool
}

// Compile-time verification that all error types implement MuxprocError.
var (
	_ MuxprocError = (*HelperNotFoundError)(nil)
	_ MuxprocError = (*ConnectionError)(nil)
	_ MuxprocError = (*SinkError)(nil)
	_ MuxprocError = (*InputError)(nil)
	_ MuxprocError = (*FrameError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrForwardInput indicates a Forward input source was configured for a
	// blocking Run call. Forward input needs a caller that keeps feeding
	// chunks while the channel is drained, which Run does not provide.
	ErrForwardInput = errors.New("forward input source requires Spawn, not Run")

	// ErrChannelClosed indicates the channel reached EOF before an exit
	// frame was received. The helper died or the pipe was torn down; no
	// exit status is available.
	ErrChannelClosed = errors.New("channel closed before exit status")

	// ErrProcessClosed indicates the Process has been closed and its channel
	// can no longer be drained.
	ErrProcessClosed = errors.New("process closed: spawn a new one with Spawn()")

	// ErrDrained indicates Drain was already called on this Process.
	// A channel has exactly one logical consumer; results are not replayed.
	ErrDrained = errors.New("process already drained")

	// ErrFrameTooLarge indicates a frame payload exceeds the 2-byte length
	// prefix limit of 65535 bytes.
	ErrFrameTooLarge = errors.New("frame payload exceeds 65535 bytes")

	// ErrSinkFinalized indicates a chunk arrived at a sink after finalize.
	ErrSinkFinalized = errors.New("sink already finalized")
)

// HelperNotFoundError indicates the helper binary was not found.
type HelperNotFoundError struct {
	SearchedPaths []string
}

func (e *HelperNotFoundError) Error() string {
	return fmt.Sprintf("muxproc helper not found in: %v", e.SearchedPaths)
}

// IsMuxprocError implements MuxprocError.
func (e *HelperNotFoundError) IsMuxprocError() bool { return true }

// ConnectionError indicates failure to start or connect to the helper process.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to helper: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsMuxprocError implements MuxprocError.
func (e *ConnectionError) IsMuxprocError() bool { return true }

// SinkError indicates a sink failed to accept a chunk or to finalize.
// Sink failures are fatal to the whole call: the stream cannot be
// partially routed.
type SinkError struct {
	Stream string
	Op     string
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s sink %s: %v", e.Stream, e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// IsMuxprocError implements MuxprocError.
func (e *SinkError) IsMuxprocError() bool { return true }

// InputError indicates the input source could not be read or transmitted.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input source: %v", e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsMuxprocError implements MuxprocError.
func (e *InputError) IsMuxprocError() bool { return true }

// FrameError indicates a malformed frame arrived on the channel.
// This error preserves the raw payload that failed to decode.
type FrameError struct {
	Payload []byte
	Err     error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("failed to decode frame: %v", e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsMuxprocError implements MuxprocError.
func (e *FrameError) IsMuxprocError() bool { return true }
