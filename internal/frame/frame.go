package frame

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/muxproc/muxproc/internal/errors"
)

// Stream tags carried as the first payload byte of helper packets.
const (
	TagStdout byte = 'o'
	TagStderr byte = 'e'
	TagExit   byte = 'x'
)

const (
	// MaxPayload is the largest packet payload representable with the
	// 2-byte length prefix.
	MaxPayload = 0xFFFF

	// MaxChunk is the largest data chunk that fits in one packet after
	// the stream tag byte.
	MaxChunk = MaxPayload - 1

	exitPayloadLen = 5 // tag + 4-byte status
)

// Kind identifies the two packet kinds the helper sends.
type Kind int

const (
	// KindData is a tagged stdout/stderr chunk.
	KindData Kind = iota
	// KindExit is the exit-status notification.
	KindExit
)

// Frame is one decoded helper packet.
type Frame struct {
	Kind   Kind
	Stream byte   // TagStdout or TagStderr; data frames only
	Data   []byte // chunk bytes; data frames only
	Status int    // exit status; exit frames only
}

// Decode parses a helper packet payload into a Frame.
func Decode(payload []byte) (Frame, error) {
	if len(payload) == 0 {
		return Frame{}, &errors.FrameError{
			Payload: payload,
			Err:     fmt.Errorf("empty payload"),
		}
	}

	switch payload[0] {
	case TagStdout, TagStderr:
		return Frame{
			Kind:   KindData,
			Stream: payload[0],
			Data:   payload[1:],
		}, nil

	case TagExit:
		if len(payload) != exitPayloadLen {
			return Frame{}, &errors.FrameError{
				Payload: payload,
				Err:     fmt.Errorf("exit frame is %d bytes, want %d", len(payload), exitPayloadLen),
			}
		}

		status := int32(binary.BigEndian.Uint32(payload[1:]))

		return Frame{Kind: KindExit, Status: int(status)}, nil

	default:
		return Frame{}, &errors.FrameError{
			Payload: payload,
			Err:     fmt.Errorf("unknown tag byte %#x", payload[0]),
		}
	}
}

// EncodeData builds a data packet payload for the given stream tag and chunk.
// The chunk must be at most MaxChunk bytes.
func EncodeData(stream byte, chunk []byte) []byte {
	payload := make([]byte, 1+len(chunk))
	payload[0] = stream
	copy(payload[1:], chunk)

	return payload
}

// EncodeExit builds an exit packet payload carrying the child's status.
func EncodeExit(status int) []byte {
	payload := make([]byte, exitPayloadLen)
	payload[0] = TagExit
	binary.BigEndian.PutUint32(payload[1:], uint32(int32(status)))

	return payload
}

// Reader reads length-prefixed packets from an underlying stream.
type Reader struct {
	r io.Reader
}

// NewReader wraps r in a packet reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadPacket reads the next packet payload. A zero-length packet returns an
// empty, non-nil slice so callers can distinguish it from EOF. Returns io.EOF
// when the stream ends cleanly on a packet boundary and io.ErrUnexpectedEOF
// when it ends mid-packet.
func (r *Reader) ReadPacket() ([]byte, error) {
	var prefix [2]byte

	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		return nil, err
	}

	length := int(binary.BigEndian.Uint16(prefix[:]))

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return payload, nil
}

// Writer writes length-prefixed packets to an underlying stream.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w in a packet writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WritePacket writes one packet with its length prefix in a single Write
// call. A zero-length payload is valid and produces the end-of-input marker.
func (w *Writer) WritePacket(payload []byte) error {
	if len(payload) > MaxPayload {
		return errors.ErrFrameTooLarge
	}

	buf := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(buf, uint16(len(payload)))
	copy(buf[2:], payload)

	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("write packet: %w", err)
	}

	return nil
}
