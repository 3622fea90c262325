package muxproc

import (
	"bytes"
	"io"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/muxproc/muxproc/internal/errors"
)

// ForwardChunk is one tagged chunk delivered by a Forward sink to its
// target channel.
type ForwardChunk struct {
	// Token identifies the invocation the chunk came from, so one target
	// channel can serve several processes.
	Token string

	// Stream is the output stream the chunk belongs to.
	Stream StreamKind

	// Data is the raw chunk.
	Data []byte
}

// Sink is a configured destination for one output stream's chunks. The set
// of sinks is closed: Discard, Buffer, File, Path, Append, and Forward.
//
// Each of stdout and stderr has exactly one sink instance for the call's
// lifetime. Chunks are accepted in arrival order and finalize runs exactly
// once, when the child's exit status arrives.
type Sink interface {
	// accept routes one chunk into the sink. Failures are fatal to the
	// whole invocation.
	accept(stream StreamKind, chunk []byte) error

	// finalize converts the accumulated state into the result value and
	// releases any owned resources. Called exactly once.
	finalize() (FinalizedValue, error)
}

// DiscardSink returns a sink that absorbs and drops every chunk.
func DiscardSink() Sink {
	return &discardSink{}
}

type discardSink struct{}

func (s *discardSink) accept(StreamKind, []byte) error { return nil }

func (s *discardSink) finalize() (FinalizedValue, error) {
	return opaqueValue(), nil
}

// BufferSink returns a sink that accumulates chunks in memory, in arrival
// order, and finalizes into one contiguous byte sequence.
func BufferSink() Sink {
	return &bufferSink{}
}

type bufferSink struct {
	chunks    [][]byte
	finalized bool
}

func (s *bufferSink) accept(_ StreamKind, chunk []byte) error {
	if s.finalized {
		return errors.ErrSinkFinalized
	}

	// Copy: injected channels may reuse their payload buffers.
	s.chunks = append(s.chunks, bytes.Clone(chunk))

	return nil
}

func (s *bufferSink) finalize() (FinalizedValue, error) {
	if s.finalized {
		return FinalizedValue{}, errors.ErrSinkFinalized
	}

	s.finalized = true

	return bytesValue(bytes.Join(s.chunks, nil)), nil
}

// FileSink returns a sink that writes every chunk to the caller-owned
// writer. The sink never closes it; the caller manages its lifetime.
func FileSink(w io.Writer) Sink {
	return &fileSink{w: w}
}

type fileSink struct {
	w io.Writer
}

func (s *fileSink) accept(_ StreamKind, chunk []byte) error {
	_, err := s.w.Write(chunk)

	return err
}

func (s *fileSink) finalize() (FinalizedValue, error) {
	return opaqueValue(), nil
}

// PathSink returns a sink that opens path for writing on the first chunk
// (truncating any existing file) and closes it exactly once at finalize.
// A file that receives no chunks is never created.
func PathSink(path string) Sink {
	return &pathSink{path: path, flag: os.O_WRONLY | os.O_CREATE | os.O_TRUNC}
}

// AppendSink is PathSink opening in append mode.
func AppendSink(path string) Sink {
	return &pathSink{path: path, flag: os.O_WRONLY | os.O_CREATE | os.O_APPEND}
}

// pathSink is a two-state machine: unopened (file == nil) until the first
// chunk, then open until finalize.
type pathSink struct {
	path      string
	flag      int
	file      *os.File
	finalized bool
}

func (s *pathSink) accept(_ StreamKind, chunk []byte) error {
	if s.finalized {
		return errors.ErrSinkFinalized
	}

	if s.file == nil {
		f, err := os.OpenFile(s.path, s.flag, 0o644)
		if err != nil {
			return err
		}

		s.file = f
	}

	_, err := s.file.Write(chunk)

	return err
}

func (s *pathSink) finalize() (FinalizedValue, error) {
	if s.finalized {
		return FinalizedValue{}, errors.ErrSinkFinalized
	}

	s.finalized = true

	if s.file != nil {
		f := s.file
		s.file = nil

		if err := f.Close(); err != nil {
			return FinalizedValue{}, err
		}
	}

	return pathValue(s.path), nil
}

// ForwardSink returns a sink that delivers every chunk immediately to the
// target channel as a tagged ForwardChunk. Forwarding is stateless: nothing
// is accumulated and finalize performs no action beyond marking completion.
//
// Delivery blocks the receive loop while the target channel is unbuffered or
// full. Callers of the blocking Run cannot drain the channel on the same
// goroutine, so they must size the buffer for the expected output or drain
// it concurrently.
//
// If token is empty a ULID is generated, so chunks from this invocation
// remain distinguishable on a shared target channel.
func ForwardSink(target chan<- ForwardChunk, token string) Sink {
	if token == "" {
		token = ulid.Make().String()
	}

	return &forwardSink{target: target, token: token}
}

type forwardSink struct {
	target chan<- ForwardChunk
	token  string
}

func (s *forwardSink) accept(stream StreamKind, chunk []byte) error {
	s.target <- ForwardChunk{
		Token:  s.token,
		Stream: stream,
		Data:   bytes.Clone(chunk),
	}

	return nil
}

func (s *forwardSink) finalize() (FinalizedValue, error) {
	return opaqueValue(), nil
}
