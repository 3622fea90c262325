package muxproc

import (
	"github.com/muxproc/muxproc/internal/frame"
	"github.com/muxproc/muxproc/internal/launcher"
)

// Channel is the bidirectional, message-oriented connection to the helper
// process. Exactly one logical consumer drains a channel at any time: either
// Run's own receive loop, or the caller that performed a Spawn.
//
// The default implementation wraps the helper's stdio pipes with the 2-byte
// length-prefixed packet framing. Custom implementations can be injected via
// WithChannel for testing or alternative transports.
type Channel interface {
	// ReadFrame returns the next packet payload from the helper. It blocks
	// indefinitely until a packet arrives or the channel is torn down.
	ReadFrame() ([]byte, error)

	// WriteFrame sends one packet payload to the helper. A zero-length
	// payload is the end-of-input marker.
	WriteFrame(payload []byte) error

	// Close tears down the channel and releases the helper process.
	// Safe to call multiple times.
	Close() error
}

// Compile-time verification that the process-backed channel implements Channel.
var _ Channel = (*launcher.Channel)(nil)

// StreamKind identifies which output stream a chunk belongs to.
type StreamKind byte

const (
	// Stdout is the child's standard output stream.
	Stdout StreamKind = StreamKind(frame.TagStdout)
	// Stderr is the child's standard error stream.
	Stderr StreamKind = StreamKind(frame.TagStderr)
)

// String returns the stream name.
func (k StreamKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}
