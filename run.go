package muxproc

import (
	"context"
	"log/slog"

	"github.com/muxproc/muxproc/internal/errors"
	"github.com/muxproc/muxproc/internal/launcher"
)

// Run executes command through the helper and blocks until the child exits,
// returning the finalized Result.
//
// Run owns the channel for the whole call: it feeds the configured input
// source, drains tagged output frames into the stdout and stderr sinks, and
// finalizes both sinks once the exit status arrives. The calling goroutine
// is suspended for the entire exchange; no timeout is imposed beyond ctx,
// so a hung child blocks the caller indefinitely.
//
// A Forward input source is rejected with ErrForwardInput before any
// process is spawned: its feeder would have to run while Run's own loop
// blocks. Use Spawn for that.
//
// Example:
//
//	res, err := muxproc.Run(ctx, "tr", []string{"a-z", "A-Z"},
//	    muxproc.WithStdin(muxproc.BytesInput([]byte("hello"))),
//	    muxproc.WithStderr(muxproc.DiscardSink()),
//	)
func Run(ctx context.Context, command string, args []string, opts ...Option) (*Result, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "run")

	// Precondition, checked before any launch.
	if options.Stdin.forwards() {
		log.Error("Forward input source configured for blocking Run")

		return nil, errors.ErrForwardInput
	}

	ch, err := openChannel(ctx, log, command, args, options)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := ch.Close(); err != nil {
			log.Warn("Failed to close channel", "error", err)
		}
	}()

	log.Info("Running command via helper", "command", command)

	return newMultiplexer(log, ch, options).run(ctx)
}

// openChannel returns the injected channel if one was configured, otherwise
// launches the helper for the given command.
func openChannel(
	ctx context.Context,
	log *slog.Logger,
	command string,
	args []string,
	options *Options,
) (Channel, error) {
	if options.Channel != nil {
		log.Debug("Using injected channel")

		return options.Channel, nil
	}

	l := launcher.New(log, &launcher.Config{
		HelperPath: options.HelperPath,
		Logger:     log,
	})

	return l.Launch(ctx, &launcher.Spec{
		Command: command,
		Args:    args,
		Out:     redirectFor(options.Stdout, options.MergeStdout, launcher.RedirectToStderr),
		Err:     redirectFor(options.Stderr, options.MergeStderr, launcher.RedirectToStdout),
		Env:     options.Env,
		Cwd:     options.Cwd,
	})
}

// redirectFor derives one stream's helper redirect flag value from its sink
// configuration: merge wins, a Discard sink suppresses the stream at the
// source, anything else leaves it open.
func redirectFor(sink Sink, merge bool, mergeTarget launcher.Redirect) launcher.Redirect {
	if merge {
		return mergeTarget
	}

	if _, ok := sink.(*discardSink); ok {
		return launcher.RedirectNull
	}

	return launcher.RedirectNone
}
