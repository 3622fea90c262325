package muxproc

import "github.com/muxproc/muxproc/internal/errors"

// Re-export error types from internal package

// HelperNotFoundError indicates the muxproc helper binary was not found.
type HelperNotFoundError = errors.HelperNotFoundError

// ConnectionError indicates failure to start or connect to the helper.
type ConnectionError = errors.ConnectionError

// SinkError indicates a sink failed to accept a chunk or to finalize.
type SinkError = errors.SinkError

// InputError indicates the input source could not be read or transmitted.
type InputError = errors.InputError

// FrameError indicates a malformed frame arrived on the channel.
type FrameError = errors.FrameError

// MuxprocError is the base interface for all muxproc errors.
type MuxprocError = errors.MuxprocError

// Re-export sentinel errors from internal package.
var (
	// ErrForwardInput indicates a Forward input source was configured for a
	// blocking Run call.
	ErrForwardInput = errors.ErrForwardInput

	// ErrChannelClosed indicates the channel reached EOF before an exit
	// frame was received.
	ErrChannelClosed = errors.ErrChannelClosed

	// ErrProcessClosed indicates the Process has been closed.
	ErrProcessClosed = errors.ErrProcessClosed

	// ErrDrained indicates Drain was already called on this Process.
	ErrDrained = errors.ErrDrained

	// ErrSinkFinalized indicates a chunk arrived at a sink after finalize.
	ErrSinkFinalized = errors.ErrSinkFinalized
)
