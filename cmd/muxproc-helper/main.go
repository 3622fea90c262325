// Command muxproc-helper is the intermediary process the muxproc package
// launches. It spawns the target command given after "--", feeds it stdin
// decoded from length-prefixed packets on its own stdin, tags the target's
// stdout and stderr chunks into packets on its own stdout, and finishes with
// an exit-status packet.
//
// Usage:
//
//	muxproc-helper [--out <redirect>] [--err <redirect>] -- command [arg...]
//
// A redirect value is "" (stream open normally), "null" (suppress), or the
// name of the other stream (merge into it). Diagnostics go to stderr, which
// is not part of the packet channel.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	log := newLogger()

	flags := pflag.NewFlagSet("muxproc-helper", pflag.ExitOnError)
	outRedirect := flags.String("out", "", `stdout redirect: "", "null", or "stderr"`)
	errRedirect := flags.String("err", "", `stderr redirect: "", "null", or "stdout"`)

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Error("Failed to parse flags", "error", err)
		os.Exit(2)
	}

	args := flags.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "muxproc-helper: no target command after --")
		os.Exit(2)
	}

	if err := run(log, *outRedirect, *errRedirect, args[0], args[1:]); err != nil {
		log.Error("Helper failed", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the helper's stderr logger. MUXPROC_HELPER_LOG=debug
// enables debug output; the default stays quiet below warnings.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("MUXPROC_HELPER_LOG") == "debug" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
