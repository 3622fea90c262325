package muxproc

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/muxproc/muxproc/internal/errors"
	"github.com/muxproc/muxproc/internal/frame"
)

// multiplexer owns a channel for the lifetime of one invocation. It feeds
// the input source into the channel, dispatches tagged data frames to the
// sinks, and stops at the exit frame.
type multiplexer struct {
	log    *slog.Logger
	ch     Channel
	stdin  InputSource
	stdout Sink
	stderr Sink
}

func newMultiplexer(log *slog.Logger, ch Channel, options *Options) *multiplexer {
	return &multiplexer{
		log:    log.With("component", "multiplexer"),
		ch:     ch,
		stdin:  options.Stdin,
		stdout: options.Stdout,
		stderr: options.Stderr,
	}
}

// run drives the channel to completion and returns the finalized Result.
//
// Input transmission runs concurrently with the receive loop so a child that
// interleaves reading and writing cannot deadlock the caller. The receive
// loop itself waits indefinitely for the next frame; the only way out is the
// exit frame, channel EOF (ErrChannelClosed), or teardown of the underlying
// process via the launch context.
func (m *multiplexer) run(ctx context.Context) (*Result, error) {
	feedCtx, cancelFeed := context.WithCancel(ctx)
	defer cancelFeed()

	var g errgroup.Group

	g.Go(func() error {
		err := m.feed(feedCtx)
		if err != nil {
			// A helper that lost its feed may never send an exit frame;
			// tear the channel down so the receive loop unblocks.
			_ = m.ch.Close()
		}

		return err
	})

	status, recvErr := m.receive()

	// The exit frame may arrive while input is still being fed; unblock the
	// feeder before collecting its error.
	cancelFeed()

	feedErr := g.Wait()

	if recvErr != nil {
		// Release lazily opened sink handles; the failure stands. The feed
		// error, when present, is the root cause of the dead channel.
		m.finalizeQuietly()

		if feedErr != nil && !stderrors.Is(feedErr, context.Canceled) {
			return nil, feedErr
		}

		return nil, recvErr
	}

	var inputErr *errors.InputError
	if stderrors.As(feedErr, &inputErr) {
		// The source itself failed to open or produce; the child only saw
		// truncated input, so its exit status is not trustworthy.
		m.finalizeQuietly()

		return nil, feedErr
	}

	if feedErr != nil {
		// The child exited without draining its input. The status is still
		// authoritative; broken-pipe style feed failures are expected here.
		m.log.Warn("Input feed ended with error after exit", "error", feedErr)
	}

	m.log.Debug("Child exited", "status", status)

	return m.collect(status)
}

// feed pushes the entire input source over the channel, then sends the
// zero-length end-of-input marker. The marker is mandatory even for empty
// or failed input: the helper blocks waiting for it.
func (m *multiplexer) feed(ctx context.Context) error {
	err := m.stdin.transmit(ctx, m.log, m.ch)
	if err == nil {
		m.log.Debug("Input transmitted, sending end-of-input marker")
	}

	if markerErr := m.ch.WriteFrame(nil); markerErr != nil && err == nil {
		err = markerErr
	}

	return err
}

// receive is the frame loop: Running until the exit frame flips the state to
// Exited(status). Data frames are dispatched as they arrive; no other frame
// kinds exist.
func (m *multiplexer) receive() (int, error) {
	for {
		payload, err := m.ch.ReadFrame()
		if err != nil {
			if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
				m.log.Error("Channel closed before exit status")

				return 0, errors.ErrChannelClosed
			}

			return 0, fmt.Errorf("read frame: %w", err)
		}

		f, err := frame.Decode(payload)
		if err != nil {
			return 0, err
		}

		switch f.Kind {
		case frame.KindData:
			if err := m.dispatch(f); err != nil {
				return 0, err
			}

		case frame.KindExit:
			return f.Status, nil
		}
	}
}

// dispatch routes one data frame to the sink matching its stream tag.
func (m *multiplexer) dispatch(f frame.Frame) error {
	kind := StreamKind(f.Stream)

	sink := m.stdout
	if kind == Stderr {
		sink = m.stderr
	}

	if err := sink.accept(kind, f.Data); err != nil {
		return &errors.SinkError{Stream: kind.String(), Op: "write", Err: err}
	}

	return nil
}

// collect finalizes both sinks and assembles the terminal result.
func (m *multiplexer) collect(status int) (*Result, error) {
	outVal, err := m.stdout.finalize()
	if err != nil {
		return nil, &errors.SinkError{Stream: Stdout.String(), Op: "finalize", Err: err}
	}

	errVal, err := m.stderr.finalize()
	if err != nil {
		return nil, &errors.SinkError{Stream: Stderr.String(), Op: "finalize", Err: err}
	}

	return &Result{
		ExitStatus: status,
		Stdout:     outVal,
		Stderr:     errVal,
	}, nil
}

// finalizeQuietly closes sink resources on the failure path, ignoring results.
func (m *multiplexer) finalizeQuietly() {
	if _, err := m.stdout.finalize(); err != nil {
		m.log.Debug("Stdout sink finalize failed during abort", "error", err)
	}

	if _, err := m.stderr.finalize(); err != nil {
		m.log.Debug("Stderr sink finalize failed during abort", "error", err)
	}
}
