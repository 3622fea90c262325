// Package muxproc runs external commands through an intermediary helper
// process, exchanging stdin/stdout/stderr over a single multiplexed,
// length-framed channel.
//
// The helper tags every chunk of child output with its stream identity, so
// one pipe carries both streams plus the exit status, and the caller decides
// per stream where data goes: an in-memory buffer, a file, a lazily opened
// path, another goroutine, or nowhere.
//
// # Blocking calls
//
// For one-shot invocations, use Run:
//
//	ctx := context.Background()
//	res, err := muxproc.Run(ctx, "tr", []string{"a-z", "A-Z"},
//	    muxproc.WithStdin(muxproc.BytesInput([]byte("hello"))),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("exit=%d stdout=%q\n", res.ExitStatus, res.Stdout.Bytes())
//
// Run feeds the configured input source into the channel, drains tagged
// frames into the stdout and stderr sinks, and returns once the helper
// reports the child's exit status. It suspends the calling goroutine for the
// whole exchange; no timeout is imposed beyond the caller's context.
//
// # Non-blocking spawns
//
// Spawn launches the helper and returns immediately with a Process. The
// caller owns the channel and drains it when ready, typically with Forward
// sinks delivering chunks to its own loop:
//
//	chunks := make(chan muxproc.ForwardChunk, 64)
//	proc, err := muxproc.Spawn(ctx, "make", nil,
//	    muxproc.WithStdout(muxproc.ForwardSink(chunks, "build")),
//	    muxproc.WithStderr(muxproc.ForwardSink(chunks, "build")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	go func() {
//	    for c := range chunks {
//	        fmt.Printf("[%s/%s] %s", c.Token, c.Stream, c.Data)
//	    }
//	}()
//
//	res, err := proc.Drain(ctx)
//
// # Logging
//
// Logging is disabled by default. Pass a logger for operation tracking:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	res, err := muxproc.Run(ctx, "ls", nil, muxproc.WithLogger(logger))
//
// # Error handling
//
// The package provides typed errors for the failure scenarios:
//
//	res, err := muxproc.Run(ctx, "ls", nil)
//	if err != nil {
//	    if nfErr, ok := errors.AsType[*muxproc.HelperNotFoundError](err); ok {
//	        log.Fatalf("helper not installed, searched: %v", nfErr.SearchedPaths)
//	    }
//	    if errors.Is(err, muxproc.ErrChannelClosed) {
//	        log.Fatal("helper died before reporting an exit status")
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// The muxproc-helper binary must be installed and reachable via PATH, the
// MUXPROC_HELPER environment variable, or the WithHelperPath option.
package muxproc
