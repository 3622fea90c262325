package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muxproc/muxproc/internal/frame"
)

// TestResolveTag covers the full redirect matrix for both streams.
func TestResolveTag(t *testing.T) {
	tag, open, err := resolveTag(frame.TagStdout, "", "stderr")
	require.NoError(t, err)
	require.True(t, open)
	require.Equal(t, frame.TagStdout, tag)

	_, open, err = resolveTag(frame.TagStdout, "null", "stderr")
	require.NoError(t, err)
	require.False(t, open)

	tag, open, err = resolveTag(frame.TagStdout, "stderr", "stderr")
	require.NoError(t, err)
	require.True(t, open)
	require.Equal(t, frame.TagStderr, tag)

	tag, open, err = resolveTag(frame.TagStderr, "stdout", "stdout")
	require.NoError(t, err)
	require.True(t, open)
	require.Equal(t, frame.TagStdout, tag)

	_, _, err = resolveTag(frame.TagStdout, "stdout", "stderr")
	require.Error(t, err)

	_, _, err = resolveTag(frame.TagStderr, "bogus", "stdout")
	require.Error(t, err)
}

// closeRecorder wraps a writer and counts Close calls.
type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++

	return nil
}

// TestPumpInput tests that payload packets reach the target stdin and the
// zero-length marker closes it.
func TestPumpInput(t *testing.T) {
	var from bytes.Buffer

	w := frame.NewWriter(&from)
	require.NoError(t, w.WritePacket([]byte("hel")))
	require.NoError(t, w.WritePacket([]byte("lo")))
	require.NoError(t, w.WritePacket([]byte{}))

	to := &closeRecorder{}

	err := pumpInput(slog.Default(), &from, to)
	require.NoError(t, err)
	require.Equal(t, "hello", to.String())
	require.Equal(t, 1, to.closed)
}

// TestPumpInput_EOFWithoutMarker tests that raw EOF also ends the input.
func TestPumpInput_EOFWithoutMarker(t *testing.T) {
	var from bytes.Buffer

	w := frame.NewWriter(&from)
	require.NoError(t, w.WritePacket([]byte("data")))

	to := &closeRecorder{}

	err := pumpInput(slog.Default(), &from, to)
	require.NoError(t, err)
	require.Equal(t, "data", to.String())
	require.Equal(t, 1, to.closed)
}

// TestPumpStream tests that output chunks are tagged and framed.
func TestPumpStream(t *testing.T) {
	var out bytes.Buffer

	sink := newFrameSink(&out)

	err := pumpStream(bytes.NewReader([]byte("chunky output")), frame.TagStderr, sink)
	require.NoError(t, err)

	r := frame.NewReader(&out)

	payload, err := r.ReadPacket()
	require.NoError(t, err)

	f, err := frame.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, frame.KindData, f.Kind)
	require.Equal(t, frame.TagStderr, f.Stream)
	require.Equal(t, []byte("chunky output"), f.Data)

	_, err = r.ReadPacket()
	require.ErrorIs(t, err, io.EOF)
}

// TestFrameSink_Exit tests exit packet emission.
func TestFrameSink_Exit(t *testing.T) {
	var out bytes.Buffer

	sink := newFrameSink(&out)
	require.NoError(t, sink.writeExit(7))

	payload, err := frame.NewReader(&out).ReadPacket()
	require.NoError(t, err)

	f, err := frame.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, frame.KindExit, f.Kind)
	require.Equal(t, 7, f.Status)
}
