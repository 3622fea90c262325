package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/muxproc/muxproc/internal/errors"
)

const (
	// HelperName is the binary name searched for in PATH.
	HelperName = "muxproc-helper"

	// helperPathEnv overrides discovery with an explicit helper path.
	helperPathEnv = "MUXPROC_HELPER"
)

// Redirect is the value of an --out or --err helper flag.
type Redirect string

const (
	// RedirectNone leaves the stream open normally.
	RedirectNone Redirect = ""
	// RedirectNull suppresses the stream at the helper.
	RedirectNull Redirect = "null"
	// RedirectToStdout merges the stream into stdout.
	RedirectToStdout Redirect = "stdout"
	// RedirectToStderr merges the stream into stderr.
	RedirectToStderr Redirect = "stderr"
)

// Config holds configuration for helper discovery.
type Config struct {
	// HelperPath is an explicit helper path that skips PATH search.
	// If empty, discovery will search the environment, PATH, and common
	// locations.
	HelperPath string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the muxproc helper binary.
type Discoverer interface {
	// Discover locates the helper binary.
	// Returns the path to the helper or HelperNotFoundError.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new helper discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the helper binary.
func (d *discoverer) Discover(_ context.Context) (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.HelperPath != "" {
		d.log.Debug("Using explicit helper path", "helper_path", d.cfg.HelperPath)

		if _, err := os.Stat(d.cfg.HelperPath); err == nil {
			return d.cfg.HelperPath, nil
		}

		return "", &errors.HelperNotFoundError{SearchedPaths: []string{d.cfg.HelperPath}}
	}

	searchedPaths := make([]string, 0, 5)

	// Environment override
	if envPath := os.Getenv(helperPathEnv); envPath != "" {
		searchedPaths = append(searchedPaths, envPath)
		d.log.Debug("Checking MUXPROC_HELPER path", "path", envPath)

		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// Search in PATH
	d.log.Debug("Searching for helper in PATH", "name", HelperName)

	if path, err := exec.LookPath(HelperName); err == nil {
		d.log.Debug("Found helper in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Check common locations
	commonPaths := []string{
		"/usr/local/bin/" + HelperName,
		"/usr/bin/" + HelperName,
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin", HelperName))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found helper at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Helper not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.HelperNotFoundError{SearchedPaths: searchedPaths}
}

// Spec describes one helper invocation: the target command plus the
// redirection flags derived from the caller's stream configuration.
type Spec struct {
	// Command is the target executable the helper will spawn.
	Command string

	// Args are the target command's arguments.
	Args []string

	// Out is the stdout redirect flag value.
	Out Redirect

	// Err is the stderr redirect flag value.
	Err Redirect

	// Env holds additional environment variables for the helper process.
	Env map[string]string

	// Cwd is the helper's working directory. Empty means inherit.
	Cwd string
}

// BuildArgs constructs the helper's argument vector:
// redirect flags, the "--" separator, then the target command and arguments.
// Both redirect flags are always emitted so the vector shape is stable.
func BuildArgs(spec *Spec) []string {
	args := []string{
		"--out", string(spec.Out),
		"--err", string(spec.Err),
		"--",
		spec.Command,
	}

	return append(args, spec.Args...)
}

// BuildEnvironment constructs the environment for the helper process.
func BuildEnvironment(spec *Spec) []string {
	// Start with current environment
	env := os.Environ()

	for key, value := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

// Launcher starts helper processes.
type Launcher struct {
	log *slog.Logger
	cfg *Config
}

// New creates a Launcher. The logger receives debug and error messages
// during discovery and process startup.
func New(log *slog.Logger, cfg *Config) *Launcher {
	if cfg == nil {
		cfg = &Config{}
	}

	if cfg.Logger == nil {
		cfg.Logger = log
	}

	return &Launcher{
		log: log.With("component", "launcher"),
		cfg: cfg,
	}
}

// Launch discovers the helper binary and starts it for the given spec,
// returning the framed channel connected to the helper's stdio.
//
// Returns HelperNotFoundError if the helper cannot be located (fatal, no
// retry), or ConnectionError if the process fails to start.
func (l *Launcher) Launch(ctx context.Context, spec *Spec) (*Channel, error) {
	discoverer := NewDiscoverer(l.cfg)

	helperPath, err := discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover helper: %w", err)
	}

	args := BuildArgs(spec)
	l.log.Debug("Built helper arguments", "helper", helperPath, "args", args)

	//nolint:gosec // G204: Subprocess launching with dynamic args is the point of this package
	cmd := exec.CommandContext(ctx, helperPath, args...)
	cmd.Env = BuildEnvironment(spec)
	cmd.Dir = spec.Cwd
	// The helper's own stderr is not part of the channel; pass it through
	// for diagnostics.
	cmd.Stderr = os.Stderr

	ch, err := newChannel(l.log, cmd)
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		l.log.Error("Failed to start helper process", "error", err)

		return nil, &errors.ConnectionError{Err: fmt.Errorf("start helper: %w", err)}
	}

	l.log.Info("Helper process started", "pid", cmd.Process.Pid, "command", spec.Command)

	return ch, nil
}
