package muxproc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muxproc/muxproc/internal/errors"
)

// TestBufferSink_Ordering tests that the finalized value is the exact
// concatenation of all chunks in arrival order.
func TestBufferSink_Ordering(t *testing.T) {
	sink := BufferSink()

	chunks := [][]byte{[]byte("one "), []byte("two "), []byte(""), []byte("three")}
	for _, c := range chunks {
		require.NoError(t, sink.accept(Stdout, c))
	}

	val, err := sink.finalize()
	require.NoError(t, err)
	require.True(t, val.Materialized())
	require.Equal(t, []byte("one two three"), val.Bytes())
}

// TestBufferSink_ChunksNotAliased tests that a buffer sink copies chunks, so
// a channel reusing its payload buffer cannot corrupt earlier data.
func TestBufferSink_ChunksNotAliased(t *testing.T) {
	sink := BufferSink()

	buf := []byte("aaaa")
	require.NoError(t, sink.accept(Stdout, buf))

	copy(buf, "bbbb")
	require.NoError(t, sink.accept(Stdout, buf))

	val, err := sink.finalize()
	require.NoError(t, err)
	require.Equal(t, []byte("aaaabbbb"), val.Bytes())
}

// TestBufferSink_FinalizeOnce tests that finalize runs exactly once.
func TestBufferSink_FinalizeOnce(t *testing.T) {
	sink := BufferSink()
	require.NoError(t, sink.accept(Stdout, []byte("x")))

	_, err := sink.finalize()
	require.NoError(t, err)

	_, err = sink.finalize()
	require.ErrorIs(t, err, errors.ErrSinkFinalized)

	require.ErrorIs(t, sink.accept(Stdout, []byte("late")), errors.ErrSinkFinalized)
}

// TestDiscardSink tests that chunks are dropped and the result is opaque.
func TestDiscardSink(t *testing.T) {
	sink := DiscardSink()

	require.NoError(t, sink.accept(Stdout, []byte("gone")))

	val, err := sink.finalize()
	require.NoError(t, err)
	require.False(t, val.Materialized())
	require.Nil(t, val.Bytes())
	require.Empty(t, val.Path())
}

// TestFileSink tests writing to a caller-owned writer; the sink never closes it.
func TestFileSink(t *testing.T) {
	var buf bytes.Buffer

	sink := FileSink(&buf)
	require.NoError(t, sink.accept(Stderr, []byte("a")))
	require.NoError(t, sink.accept(Stderr, []byte("b")))

	val, err := sink.finalize()
	require.NoError(t, err)
	require.False(t, val.Materialized())
	require.Equal(t, "ab", buf.String())

	// Still usable after finalize: the caller owns the writer.
	_, err = buf.WriteString("c")
	require.NoError(t, err)
}

// TestPathSink_Lifecycle tests the lazy open: no file before the first
// chunk, exact concatenation after finalize, handle closed exactly once.
func TestPathSink_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	sink := PathSink(path)

	// Untouched before the first chunk.
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, sink.accept(Stdout, []byte("first ")))

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, sink.accept(Stdout, []byte("second")))

	val, err := sink.finalize()
	require.NoError(t, err)
	require.True(t, val.Materialized())
	require.Equal(t, path, val.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first second", string(data))

	// Close happens exactly once; a second finalize is rejected.
	_, err = sink.finalize()
	require.ErrorIs(t, err, errors.ErrSinkFinalized)
}

// TestPathSink_NoChunks tests that a path sink that never receives a chunk
// never creates the file.
func TestPathSink_NoChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.log")

	sink := PathSink(path)

	val, err := sink.finalize()
	require.NoError(t, err)
	require.Equal(t, path, val.Path())

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

// TestAppendSink tests append mode against an existing file.
func TestAppendSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	sink := AppendSink(path)
	require.NoError(t, sink.accept(Stderr, []byte("new\n")))

	_, err := sink.finalize()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old\nnew\n", string(data))
}

// TestPathSink_Truncates tests that non-append mode truncates existing content.
func TestPathSink_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0o644))

	sink := PathSink(path)
	require.NoError(t, sink.accept(Stdout, []byte("new")))

	_, err := sink.finalize()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

// TestForwardSink tests immediate tagged delivery with no accumulation.
func TestForwardSink(t *testing.T) {
	target := make(chan ForwardChunk, 4)

	sink := ForwardSink(target, "job-1")
	require.NoError(t, sink.accept(Stdout, []byte("out")))
	require.NoError(t, sink.accept(Stderr, []byte("err")))

	c := <-target
	require.Equal(t, "job-1", c.Token)
	require.Equal(t, Stdout, c.Stream)
	require.Equal(t, []byte("out"), c.Data)

	c = <-target
	require.Equal(t, "job-1", c.Token)
	require.Equal(t, Stderr, c.Stream)
	require.Equal(t, []byte("err"), c.Data)

	val, err := sink.finalize()
	require.NoError(t, err)
	require.False(t, val.Materialized())
	require.Empty(t, target)
}

// TestForwardSink_GeneratedToken tests that an empty token gets a ULID.
func TestForwardSink_GeneratedToken(t *testing.T) {
	target := make(chan ForwardChunk, 1)

	sink := ForwardSink(target, "")
	require.NoError(t, sink.accept(Stdout, []byte("x")))

	c := <-target
	require.Len(t, c.Token, 26) // ULID string length
}

// TestFinalizedValue_String tests the log rendering of each value kind.
func TestFinalizedValue_String(t *testing.T) {
	require.Equal(t, "hello", bytesValue([]byte("hello")).String())
	require.Equal(t, "/tmp/x", pathValue("/tmp/x").String())
	require.Equal(t, "<not materialized>", opaqueValue().String())
}
