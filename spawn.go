package muxproc

import (
	"context"
	"log/slog"
	"sync"

	"github.com/muxproc/muxproc/internal/errors"
)

// Process is a helper invocation started with Spawn. The caller owns the
// channel: nothing is read from it until Drain is called (or the caller
// consumes Channel() itself).
type Process struct {
	log     *slog.Logger
	ch      Channel
	options *Options

	mu      sync.Mutex
	drained bool
	closed  bool
}

// Spawn launches the helper for command and returns immediately, without
// running the receive loop. This is the mode for Forward sinks and Forward
// input: the owning goroutine calls Drain (or reads the channel itself)
// through its own loop while other goroutines feed input or consume
// forwarded chunks.
//
// The returned Process must be finished with Drain or released with Close;
// otherwise the helper process and any lazily opened sink handles leak.
func Spawn(ctx context.Context, command string, args []string, opts ...Option) (*Process, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "spawn")

	ch, err := openChannel(ctx, log, command, args, options)
	if err != nil {
		return nil, err
	}

	log.Info("Spawned command via helper", "command", command)

	return &Process{
		log:     log,
		ch:      ch,
		options: options,
	}, nil
}

// Channel returns the raw framed channel for callers that drain it
// themselves. The channel has exactly one logical consumer: once Drain has
// been called, reading from the channel directly corrupts the exchange.
func (p *Process) Channel() Channel {
	return p.ch
}

// Drain runs the full multiplexer loop to completion: feeds the input
// source, dispatches tagged frames to the configured sinks, and returns the
// finalized Result once the exit frame arrives. It is the same engine Run
// uses, so a Spawn caller does not have to replicate the protocol.
//
// Drain consumes the Process: a second call returns ErrDrained.
func (p *Process) Drain(ctx context.Context) (*Result, error) {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()

		return nil, errors.ErrProcessClosed
	}

	if p.drained {
		p.mu.Unlock()

		return nil, errors.ErrDrained
	}

	p.drained = true
	p.mu.Unlock()

	defer func() {
		if err := p.Close(); err != nil {
			p.log.Warn("Failed to close process", "error", err)
		}
	}()

	return newMultiplexer(p.log, p.ch, p.options).run(ctx)
}

// Close tears down the channel and reaps the helper. Safe to call multiple
// times. After Close the Process cannot be drained.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	return p.ch.Close()
}
