package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muxproc/muxproc/internal/errors"
)

// TestPacketRoundTrip tests that packets written by Writer are read back
// intact by Reader, including the zero-length end-of-input marker.
func TestPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf)
	require.NoError(t, w.WritePacket([]byte("hello")))
	require.NoError(t, w.WritePacket([]byte{}))
	require.NoError(t, w.WritePacket([]byte{0x00, 0xFF}))

	r := NewReader(&buf)

	p, err := r.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), p)

	p, err = r.ReadPacket()
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Empty(t, p)

	p, err = r.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xFF}, p)

	_, err = r.ReadPacket()
	require.ErrorIs(t, err, io.EOF)
}

// TestWritePacket_TooLarge tests the 2-byte length prefix limit.
func TestWritePacket_TooLarge(t *testing.T) {
	w := NewWriter(io.Discard)

	err := w.WritePacket(make([]byte, MaxPayload+1))
	require.ErrorIs(t, err, errors.ErrFrameTooLarge)

	require.NoError(t, w.WritePacket(make([]byte, MaxPayload)))
}

// TestReadPacket_Truncated tests that a stream ending mid-packet is reported
// as unexpected EOF, not a clean end.
func TestReadPacket_Truncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x05, 'h', 'i'}))

	_, err := r.ReadPacket()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// TestDecode_DataFrames tests stream tag parsing for both streams.
func TestDecode_DataFrames(t *testing.T) {
	f, err := Decode(EncodeData(TagStdout, []byte("out")))
	require.NoError(t, err)
	require.Equal(t, KindData, f.Kind)
	require.Equal(t, TagStdout, f.Stream)
	require.Equal(t, []byte("out"), f.Data)

	f, err = Decode(EncodeData(TagStderr, []byte("err")))
	require.NoError(t, err)
	require.Equal(t, KindData, f.Kind)
	require.Equal(t, TagStderr, f.Stream)
	require.Equal(t, []byte("err"), f.Data)

	// Empty chunk is a valid data frame.
	f, err = Decode(EncodeData(TagStdout, nil))
	require.NoError(t, err)
	require.Equal(t, KindData, f.Kind)
	require.Empty(t, f.Data)
}

// TestDecode_ExitFrame tests exit status encode/decode, including negative
// statuses, which must survive the signed 32-bit round trip.
func TestDecode_ExitFrame(t *testing.T) {
	for _, status := range []int{0, 7, 255, -1} {
		f, err := Decode(EncodeExit(status))
		require.NoError(t, err)
		require.Equal(t, KindExit, f.Kind)
		require.Equal(t, status, f.Status)
	}
}

// TestDecode_Malformed tests that empty payloads, unknown tags, and short
// exit frames produce FrameError.
func TestDecode_Malformed(t *testing.T) {
	for _, payload := range [][]byte{
		nil,
		{},
		{'z', 1, 2},
		{TagExit},
		{TagExit, 0, 0, 7},
		{TagExit, 0, 0, 0, 7, 9},
	} {
		_, err := Decode(payload)
		require.Error(t, err)

		var frameErr *errors.FrameError
		require.ErrorAs(t, err, &frameErr)
	}
}
