package muxproc

import "log/slog"

// Options holds the resolved configuration for one invocation.
// Use the functional Option helpers rather than constructing this directly.
type Options struct {
	// Logger receives debug, info, warn, and error messages.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// Stdin is the child's input origin. Defaults to NoInput().
	Stdin InputSource

	// Stdout is the sink for the child's standard output.
	// Defaults to BufferSink().
	Stdout Sink

	// Stderr is the sink for the child's standard error.
	// Defaults to BufferSink().
	Stderr Sink

	// MergeStderr makes the helper deliver stderr chunks as stdout.
	MergeStderr bool

	// MergeStdout makes the helper deliver stdout chunks as stderr.
	MergeStdout bool

	// HelperPath is an explicit path to the muxproc-helper binary,
	// skipping discovery.
	HelperPath string

	// Env holds additional environment variables for the helper process.
	Env map[string]string

	// Cwd is the helper's working directory. Empty means inherit.
	Cwd string

	// Channel injects a pre-built channel, skipping helper discovery and
	// launch entirely. For testing and custom transports.
	Channel Channel
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options and fills in defaults.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Stdin == nil {
		options.Stdin = NoInput()
	}

	if options.Stdout == nil {
		options.Stdout = BufferSink()
	}

	if options.Stderr == nil {
		options.Stderr = BufferSink()
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithStdin sets the child's input origin.
func WithStdin(src InputSource) Option {
	return func(o *Options) {
		o.Stdin = src
	}
}

// WithStdout sets the sink for the child's standard output.
func WithStdout(sink Sink) Option {
	return func(o *Options) {
		o.Stdout = sink
	}
}

// WithStderr sets the sink for the child's standard error.
func WithStderr(sink Sink) Option {
	return func(o *Options) {
		o.Stderr = sink
	}
}

// WithStderrToStdout merges the child's stderr into stdout at the helper.
// Every chunk then arrives tagged as stdout and the stderr sink stays empty.
func WithStderrToStdout() Option {
	return func(o *Options) {
		o.MergeStderr = true
	}
}

// WithStdoutToStderr merges the child's stdout into stderr at the helper.
func WithStdoutToStderr() Option {
	return func(o *Options) {
		o.MergeStdout = true
	}
}

// WithHelperPath sets the explicit path to the muxproc-helper binary.
// If not set, the helper is searched via MUXPROC_HELPER, PATH, and common
// installation directories.
func WithHelperPath(path string) Option {
	return func(o *Options) {
		o.HelperPath = path
	}
}

// WithEnv provides additional environment variables for the helper process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithCwd sets the working directory for the helper process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithChannel injects a pre-built channel, bypassing helper discovery and
// launch. Intended for tests and custom transports.
func WithChannel(ch Channel) Option {
	return func(o *Options) {
		o.Channel = ch
	}
}
