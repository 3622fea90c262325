// Command muxrun runs a command through the muxproc helper from the shell.
//
// The invocation is given either as a single command string, split naively
// on spaces, or as a YAML job file:
//
//	muxrun "cat -n notes.txt"
//	muxrun --in "hello" --out-file upper.txt "tr a-z A-Z"
//	muxrun --job build.yml
//
// Buffered streams are printed once the command exits; muxrun's own exit
// code is the child's exit status.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/muxproc/muxproc"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "muxrun:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		jobPath    string
		inline     string
		inFile     string
		outFile    string
		outAppend  bool
		errFile    string
		errAppend  bool
		discardOut bool
		discardErr bool
		mergeErr   bool
		mergeOut   bool
		helper     string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "muxrun [flags] \"command arg...\"",
		Short:        "Run a command through the muxproc helper",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				job *Job
				err error
			)

			if jobPath != "" {
				if len(args) > 0 {
					return fmt.Errorf("--job and a command string are mutually exclusive")
				}

				if job, err = LoadJob(jobPath); err != nil {
					return err
				}
			} else {
				if len(args) == 0 {
					return fmt.Errorf("need a command string or --job")
				}

				job = &Job{
					Command:     args[0],
					Stdin:       InputSpec{Bytes: inline, Path: inFile},
					Stdout:      StreamSpec{Path: outFile, Append: outAppend, Discard: discardOut},
					Stderr:      StreamSpec{Path: errFile, Append: errAppend, Discard: discardErr},
					MergeStderr: mergeErr,
					MergeStdout: mergeOut,
					Helper:      helper,
				}
			}

			if err := job.Validate(); err != nil {
				return err
			}

			var log *slog.Logger
			if verbose {
				log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}

			return runJob(cmd, job, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&jobPath, "job", "", "YAML job file describing the invocation")
	flags.StringVar(&inline, "in", "", "feed this string to the child's stdin")
	flags.StringVar(&inFile, "in-file", "", "feed this file to the child's stdin")
	flags.StringVar(&outFile, "out-file", "", "write stdout to this file")
	flags.BoolVar(&outAppend, "out-append", false, "open --out-file in append mode")
	flags.StringVar(&errFile, "err-file", "", "write stderr to this file")
	flags.BoolVar(&errAppend, "err-append", false, "open --err-file in append mode")
	flags.BoolVar(&discardOut, "discard-out", false, "drop stdout")
	flags.BoolVar(&discardErr, "discard-err", false, "drop stderr")
	flags.BoolVar(&mergeErr, "merge-stderr", false, "deliver stderr as stdout")
	flags.BoolVar(&mergeOut, "merge-stdout", false, "deliver stdout as stderr")
	flags.StringVar(&helper, "helper", "", "explicit path to muxproc-helper")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runJob(cmd *cobra.Command, job *Job, log *slog.Logger) error {
	command, args := muxproc.SplitCommand(job.Command)

	res, err := muxproc.Run(cmd.Context(), command, args, job.Options(log)...)
	if err != nil {
		return err
	}

	if job.Stdout.buffered() {
		_, _ = os.Stdout.Write(res.Stdout.Bytes())
	}

	if job.Stderr.buffered() {
		_, _ = os.Stderr.Write(res.Stderr.Bytes())
	}

	if res.ExitStatus != 0 {
		os.Exit(res.ExitStatus)
	}

	return nil
}
