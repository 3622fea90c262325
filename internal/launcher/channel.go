package launcher

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/muxproc/muxproc/internal/errors"
	"github.com/muxproc/muxproc/internal/frame"
)

// Channel is the process-backed packet channel: length-prefixed frames over
// the helper's stdin and stdout pipes. Exactly one logical reader drains it
// at a time; writes are serialized with a mutex.
type Channel struct {
	log    *slog.Logger
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *frame.Reader
	writer *frame.Writer

	mu          sync.Mutex // protects writes and close state
	closed      bool
	stdinClosed bool
}

// newChannel wires the frame codec onto the command's stdio pipes.
// The command must not have been started yet.
func newChannel(log *slog.Logger, cmd *exec.Cmd) (*Channel, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	return &Channel{
		log:    log.With("component", "channel"),
		cmd:    cmd,
		stdin:  stdin,
		reader: frame.NewReader(stdout),
		writer: frame.NewWriter(stdin),
	}, nil
}

// ReadFrame returns the next packet payload from the helper. It blocks until
// a packet arrives, the helper closes its stdout, or the launch context is
// cancelled (which kills the helper and surfaces as a read error).
func (c *Channel) ReadFrame() ([]byte, error) {
	return c.reader.ReadPacket()
}

// WriteFrame sends one packet payload to the helper. A zero-length payload
// is the end-of-input marker; after sending it the stdin pipe is closed so
// a helper that reads raw EOF also terminates its input.
func (c *Channel) WriteFrame(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.stdinClosed {
		return errors.ErrChannelClosed
	}

	if err := c.writer.WritePacket(payload); err != nil {
		return err
	}

	if len(payload) == 0 {
		c.log.Debug("End-of-input marker sent, closing stdin pipe")

		c.stdinClosed = true

		return c.stdin.Close()
	}

	return nil
}

// Close tears down the channel and reaps the helper process. It is safe to
// call multiple times and on an already-exited helper.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	if !c.stdinClosed {
		c.stdinClosed = true
		_ = c.stdin.Close()
	}

	if c.cmd.Process != nil {
		// Kill is a no-op error on an already-exited helper; Wait reaps it
		// either way.
		_ = c.cmd.Process.Kill()

		if err := c.cmd.Wait(); err != nil {
			c.log.Debug("Helper wait returned error", "error", err)
		}
	}

	return nil
}
