package muxproc

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/muxproc/muxproc/internal/errors"
	"github.com/muxproc/muxproc/internal/frame"
)

// inputBlockSize is the block size for reader- and path-backed input
// sources. Inline byte sources are split only when a frame cannot hold them.
const inputBlockSize = 32 * 1024

// packetWriter is the slice of Channel an input source needs.
type packetWriter interface {
	WriteFrame(payload []byte) error
}

// InputSource is a configured origin for the child's standard input. The set
// of sources is closed: None, Bytes, Reader, Path, and Forward. A source is
// consumed monotonically and never replayed.
type InputSource interface {
	// transmit writes the source's entire content to the channel. It does
	// not send the end-of-input marker; the multiplexer does, always.
	transmit(ctx context.Context, log *slog.Logger, w packetWriter) error

	// forwards reports whether the source needs an external feeder while
	// the channel is drained (disallowed for blocking Run calls).
	forwards() bool
}

// NoInput returns an input source that sends nothing. The end-of-input
// marker is still sent; the helper blocks waiting for it.
func NoInput() InputSource {
	return noInput{}
}

type noInput struct{}

func (noInput) transmit(context.Context, *slog.Logger, packetWriter) error { return nil }

func (noInput) forwards() bool { return false }

// BytesInput returns an input source that sends the given bytes. Content up
// to one frame is pushed in a single write; larger buffers are split at the
// frame payload limit.
func BytesInput(data []byte) InputSource {
	return &bytesInput{data: data}
}

type bytesInput struct {
	data []byte
}

func (s *bytesInput) transmit(ctx context.Context, _ *slog.Logger, w packetWriter) error {
	for chunk := range chunked(s.data, frame.MaxPayload) {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := w.WriteFrame(chunk); err != nil {
			return err
		}
	}

	return nil
}

func (s *bytesInput) forwards() bool { return false }

// ReaderInput returns an input source that reads the caller-owned reader in
// fixed-size blocks until end of stream. The reader is never closed by the
// source.
func ReaderInput(r io.Reader) InputSource {
	return &readerInput{r: r}
}

type readerInput struct {
	r io.Reader
}

func (s *readerInput) transmit(ctx context.Context, log *slog.Logger, w packetWriter) error {
	return pumpReader(ctx, log, s.r, w)
}

func (s *readerInput) forwards() bool { return false }

// PathInput returns an input source that opens the file at path when
// transmission starts and streams it in fixed-size blocks.
func PathInput(path string) InputSource {
	return &pathInput{path: path}
}

type pathInput struct {
	path string
}

func (s *pathInput) transmit(ctx context.Context, log *slog.Logger, w packetWriter) error {
	f, err := os.Open(s.path)
	if err != nil {
		return &errors.InputError{Err: err}
	}
	defer f.Close()

	return pumpReader(ctx, log, f, w)
}

func (s *pathInput) forwards() bool { return false }

// ForwardInput returns an input source fed by another goroutine: every chunk
// received on the channel is written to the helper, until the channel is
// closed. Only Spawn supports it; Run rejects it before launching, since the
// feeder would deadlock against Run's own blocking loop.
func ForwardInput(chunks <-chan []byte) InputSource {
	return &forwardInput{chunks: chunks}
}

type forwardInput struct {
	chunks <-chan []byte
}

func (s *forwardInput) transmit(ctx context.Context, _ *slog.Logger, w packetWriter) error {
	for {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				return nil
			}

			for piece := range chunked(chunk, frame.MaxPayload) {
				if err := w.WriteFrame(piece); err != nil {
					return err
				}
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *forwardInput) forwards() bool { return true }

// pumpReader streams r to the channel in inputBlockSize blocks. A read error
// stops the feed for this source; it is not fatal to the invocation.
func pumpReader(ctx context.Context, log *slog.Logger, r io.Reader, w packetWriter) error {
	buf := make([]byte, inputBlockSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if werr := w.WriteFrame(buf[:n]); werr != nil {
				return werr
			}
		}

		if err == io.EOF {
			return nil
		}

		if err != nil {
			log.Warn("Input read error, stopping feed", "error", err)

			return nil
		}
	}
}

// chunked yields data in pieces of at most size bytes. Empty input yields
// nothing; the mandatory end-of-input marker is the multiplexer's job.
func chunked(data []byte, size int) func(yield func([]byte) bool) {
	return func(yield func([]byte) bool) {
		for len(data) > 0 {
			n := min(len(data), size)

			if !yield(data[:n]) {
				return
			}

			data = data[n:]
		}
	}
}
