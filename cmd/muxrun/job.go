package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/muxproc/muxproc"
)

// StreamSpec describes where one output stream goes.
type StreamSpec struct {
	// Path writes the stream to this file, created lazily on first output.
	Path string `yaml:"path"`
	// Append opens Path in append mode instead of truncating.
	Append bool `yaml:"append"`
	// Discard drops the stream entirely.
	Discard bool `yaml:"discard"`
}

// sink maps the spec onto a muxproc sink. Without a path or discard the
// stream is buffered and printed by muxrun itself.
func (s StreamSpec) sink() muxproc.Sink {
	switch {
	case s.Discard:
		return muxproc.DiscardSink()
	case s.Path != "" && s.Append:
		return muxproc.AppendSink(s.Path)
	case s.Path != "":
		return muxproc.PathSink(s.Path)
	default:
		return muxproc.BufferSink()
	}
}

// buffered reports whether muxrun should print this stream after the run.
func (s StreamSpec) buffered() bool {
	return !s.Discard && s.Path == ""
}

// InputSpec describes where the child's stdin comes from.
type InputSpec struct {
	// Bytes feeds this literal string.
	Bytes string `yaml:"bytes"`
	// Path feeds the file at this path. Ignored when Bytes is set.
	Path string `yaml:"path"`
}

func (s InputSpec) source() muxproc.InputSource {
	switch {
	case s.Bytes != "":
		return muxproc.BytesInput([]byte(s.Bytes))
	case s.Path != "":
		return muxproc.PathInput(s.Path)
	default:
		return muxproc.NoInput()
	}
}

// Job is one muxrun invocation, either assembled from flags or loaded from a
// YAML job file.
type Job struct {
	// Command is the invocation string, split on spaces (no quoting).
	Command string `yaml:"command"`

	Stdin  InputSpec  `yaml:"stdin"`
	Stdout StreamSpec `yaml:"stdout"`
	Stderr StreamSpec `yaml:"stderr"`

	// MergeStderr delivers stderr as stdout at the helper.
	MergeStderr bool `yaml:"merge-stderr"`
	// MergeStdout delivers stdout as stderr at the helper.
	MergeStdout bool `yaml:"merge-stdout"`

	// Helper is an explicit muxproc-helper path.
	Helper string `yaml:"helper"`
	// Env holds extra environment variables for the helper.
	Env map[string]string `yaml:"env"`
	// Cwd is the helper's working directory.
	Cwd string `yaml:"cwd"`
}

// LoadJob reads a job file.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var job Job
	if err := yaml.UnmarshalStrict(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}

	return &job, nil
}

// Validate checks the job is runnable.
func (j *Job) Validate() error {
	if j.Command == "" {
		return fmt.Errorf("job has no command")
	}

	if j.MergeStderr && j.MergeStdout {
		return fmt.Errorf("merge-stderr and merge-stdout are mutually exclusive")
	}

	return nil
}

// Options translates the job into muxproc options.
func (j *Job) Options(log *slog.Logger) []muxproc.Option {
	opts := []muxproc.Option{
		muxproc.WithStdin(j.Stdin.source()),
		muxproc.WithStdout(j.Stdout.sink()),
		muxproc.WithStderr(j.Stderr.sink()),
	}

	if log != nil {
		opts = append(opts, muxproc.WithLogger(log))
	}

	if j.MergeStderr {
		opts = append(opts, muxproc.WithStderrToStdout())
	}

	if j.MergeStdout {
		opts = append(opts, muxproc.WithStdoutToStderr())
	}

	if j.Helper != "" {
		opts = append(opts, muxproc.WithHelperPath(j.Helper))
	}

	if len(j.Env) > 0 {
		opts = append(opts, muxproc.WithEnv(j.Env))
	}

	if j.Cwd != "" {
		opts = append(opts, muxproc.WithCwd(j.Cwd))
	}

	return opts
}
