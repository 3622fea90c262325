package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoadJob tests YAML job parsing.
func TestLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yml")

	err := os.WriteFile(path, []byte(`
command: tr a-z A-Z
stdin:
  bytes: hello
stdout:
  path: /tmp/upper.txt
stderr:
  discard: true
merge-stdout: false
env:
  LC_ALL: C
`), 0o644)
	require.NoError(t, err)

	job, err := LoadJob(path)
	require.NoError(t, err)
	require.NoError(t, job.Validate())

	require.Equal(t, "tr a-z A-Z", job.Command)
	require.Equal(t, "hello", job.Stdin.Bytes)
	require.Equal(t, "/tmp/upper.txt", job.Stdout.Path)
	require.True(t, job.Stderr.Discard)
	require.Equal(t, "C", job.Env["LC_ALL"])
}

// TestLoadJob_UnknownField tests that typos in job files are rejected.
func TestLoadJob_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yml")

	err := os.WriteFile(path, []byte("command: ls\nstdoutt: {}\n"), 0o644)
	require.NoError(t, err)

	_, err = LoadJob(path)
	require.Error(t, err)
}

// TestJobValidate tests the runnability checks.
func TestJobValidate(t *testing.T) {
	require.Error(t, (&Job{}).Validate())
	require.Error(t, (&Job{Command: "ls", MergeStderr: true, MergeStdout: true}).Validate())
	require.NoError(t, (&Job{Command: "ls"}).Validate())
}

// TestStreamSpec_Buffered tests which stream configurations muxrun prints.
func TestStreamSpec_Buffered(t *testing.T) {
	require.True(t, StreamSpec{}.buffered())
	require.False(t, StreamSpec{Discard: true}.buffered())
	require.False(t, StreamSpec{Path: "x"}.buffered())
}
