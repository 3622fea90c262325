package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelperNotFoundError(t *testing.T) {
	err := &HelperNotFoundError{
		SearchedPaths: []string{"$PATH", "/usr/local/bin/muxproc-helper"},
	}

	require.Equal(
		t,
		"muxproc helper not found in: [$PATH /usr/local/bin/muxproc-helper]",
		err.Error(),
	)
	require.True(t, err.IsMuxprocError())
}

func TestConnectionError(t *testing.T) {
	root := errors.New("fork/exec failed")
	err := &ConnectionError{Err: root}

	require.Equal(t, "failed to connect to helper: fork/exec failed", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMuxprocError())
}

func TestSinkError(t *testing.T) {
	root := errors.New("disk full")
	err := &SinkError{Stream: "stdout", Op: "write", Err: root}

	require.Equal(t, "stdout sink write: disk full", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMuxprocError())
}

func TestInputError(t *testing.T) {
	root := errors.New("read: bad file descriptor")
	err := &InputError{Err: root}

	require.Equal(t, "input source: read: bad file descriptor", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMuxprocError())
}

func TestFrameError(t *testing.T) {
	root := errors.New("empty payload")
	err := &FrameError{Payload: nil, Err: root}

	require.Equal(t, "failed to decode frame: empty payload", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMuxprocError())
}
