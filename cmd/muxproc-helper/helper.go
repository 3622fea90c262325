package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/muxproc/muxproc/internal/frame"
)

// statusStartFailed is reported when the target command cannot be started,
// matching the shell's command-not-found convention.
const statusStartFailed = 127

// readBlockSize is the buffer size for draining the target's output pipes.
// It stays below frame.MaxChunk so every read fits in one packet.
const readBlockSize = 32 * 1024

// frameSink serializes packet writes from the concurrent pump goroutines.
type frameSink struct {
	mu sync.Mutex
	w  *frame.Writer
}

func newFrameSink(w io.Writer) *frameSink {
	return &frameSink{w: frame.NewWriter(w)}
}

func (s *frameSink) writeData(tag byte, chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.WritePacket(frame.EncodeData(tag, chunk))
}

func (s *frameSink) writeExit(status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.WritePacket(frame.EncodeExit(status))
}

// resolveTag maps a redirect flag value for the stream normally tagged own
// onto (tag to emit, stream open). other is the merge token the flag may
// carry ("stdout" or "stderr").
func resolveTag(own byte, redirect, other string) (byte, bool, error) {
	switch redirect {
	case "":
		return own, true, nil
	case "null":
		return 0, false, nil
	case other:
		if own == frame.TagStdout {
			return frame.TagStderr, true, nil
		}

		return frame.TagStdout, true, nil
	default:
		return 0, false, fmt.Errorf("invalid redirect %q (want \"\", \"null\", or %q)", redirect, other)
	}
}

// run spawns the target command and pumps all three streams until the
// target exits, then emits the exit packet.
func run(log *slog.Logger, outRedirect, errRedirect, command string, args []string) error {
	outTag, outOpen, err := resolveTag(frame.TagStdout, outRedirect, "stderr")
	if err != nil {
		return fmt.Errorf("--out: %w", err)
	}

	errTag, errOpen, err := resolveTag(frame.TagStderr, errRedirect, "stdout")
	if err != nil {
		return fmt.Errorf("--err: %w", err)
	}

	sink := newFrameSink(os.Stdout)

	//nolint:gosec // G204: Running the caller's command is this binary's purpose
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	// A nil Stdout/Stderr on exec.Cmd connects the stream to the null device,
	// which is exactly the "suppress" redirect.
	var stdout, stderr io.ReadCloser

	if outOpen {
		if stdout, err = cmd.StdoutPipe(); err != nil {
			return fmt.Errorf("stdout pipe: %w", err)
		}
	}

	if errOpen {
		if stderr, err = cmd.StderrPipe(); err != nil {
			return fmt.Errorf("stderr pipe: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start target command", "command", command, "error", err)
		fmt.Fprintf(os.Stderr, "muxproc-helper: %s: %v\n", command, err)

		return sink.writeExit(statusStartFailed)
	}

	log.Debug("Target started", "command", command, "pid", cmd.Process.Pid)

	var g errgroup.Group

	g.Go(func() error {
		return pumpInput(log, os.Stdin, stdin)
	})

	if outOpen {
		g.Go(func() error {
			return pumpStream(stdout, outTag, sink)
		})
	}

	if errOpen {
		g.Go(func() error {
			return pumpStream(stderr, errTag, sink)
		})
	}

	pumpErr := g.Wait()

	status := 0

	if waitErr := cmd.Wait(); waitErr != nil {
		exitErr, ok := stderrors.AsType[*exec.ExitError](waitErr)
		if !ok {
			return fmt.Errorf("wait: %w", waitErr)
		}

		status = exitErr.ExitCode()
	}

	if pumpErr != nil {
		log.Warn("Stream pump ended with error", "error", pumpErr)
	}

	log.Debug("Target exited", "status", status)

	return sink.writeExit(status)
}

// pumpInput decodes packets from the caller and feeds their payloads to the
// target's stdin. The zero-length packet (or raw EOF) ends the input and
// closes the target's stdin.
func pumpInput(log *slog.Logger, from io.Reader, to io.WriteCloser) error {
	defer to.Close()

	r := frame.NewReader(from)

	for {
		payload, err := r.ReadPacket()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read input packet: %w", err)
		}

		if len(payload) == 0 {
			log.Debug("End-of-input marker received")

			return nil
		}

		if _, err := to.Write(payload); err != nil {
			// Target closed its stdin early; keep draining packets so the
			// caller's feed does not block, but stop writing.
			log.Debug("Target stdin closed early", "error", err)

			return drainInput(r)
		}
	}
}

// drainInput consumes remaining input packets up to the end-of-input marker
// after the target stopped reading.
func drainInput(r *frame.Reader) error {
	for {
		payload, err := r.ReadPacket()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return fmt.Errorf("drain input packet: %w", err)
		}

		if len(payload) == 0 {
			return nil
		}
	}
}

// pumpStream tags one output pipe's chunks and writes them as packets.
func pumpStream(from io.Reader, tag byte, sink *frameSink) error {
	buf := make([]byte, readBlockSize)

	for {
		n, err := from.Read(buf)
		if n > 0 {
			if werr := sink.writeData(tag, buf[:n]); werr != nil {
				return werr
			}
		}

		if err == io.EOF {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read %s: %w", string(tag), err)
		}
	}
}
