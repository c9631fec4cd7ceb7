package dumbws

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gbrlsnchs/dumbws/internal"
)

// MaxPayloadSize is the largest payload a single frame can carry.
// The 64-bit extended length form is not implemented.
const MaxPayloadSize = internal.MaxPayloadSize

const maxControlPayload = 125

// Frame is a single final frame. FIN is implied.
type Frame struct {
	Opcode  Opcode
	Masked  bool
	Mask    [4]byte
	Payload []byte
}

// Encode builds a masked client frame. A fresh mask is read from r.
//
// Layout: 0x80|opcode, 0x80|length (or 0x80|126 followed by a 16-bit
// big-endian length), mask, masked payload.
func Encode(r io.Reader, op Opcode, payload []byte) ([]byte, error) {
	if !op.isValid() {
		return nil, fmt.Errorf("%w 0x%X", ErrUnknownOpcode, uint8(op))
	}
	length := len(payload)
	switch {
	case length > MaxPayloadSize:
		return nil, fmt.Errorf("%w (got %d bytes)", ErrPayloadTooLarge, length)
	case op.isControl() && length > maxControlPayload:
		return nil, fmt.Errorf("%w (control frame with %d bytes)", ErrPayloadTooLarge, length)
	}

	b := make([]byte, 0, internal.ByteSize(payload))
	b = append(b, op.Byte())
	if length < 126 {
		b = append(b, maskBit|byte(length))
	} else {
		b = append(b, maskBit|126)
		b = binary.BigEndian.AppendUint16(b, uint16(length))
	}
	m, err := newMask(r)
	if err != nil {
		return nil, err
	}
	b = append(b, m[:]...)
	start := len(b)
	b = append(b, payload...)
	m.transform(b[start:])
	return b, nil
}

// Decode parses exactly one frame from the start of b.
//
// Server frames are unmasked and their payload is copied verbatim. A frame
// that does carry a mask is unmasked with its own key.
func Decode(b []byte) (*Frame, error) {
	f, _, err := decode(b)
	return f, err
}

// decode also returns how many bytes of b the frame used.
func decode(b []byte) (*Frame, int, error) {
	if len(b) < 1 {
		return nil, 0, ErrTruncated
	}
	if b[0]&finBit == 0 {
		return nil, 0, ErrNotFinalFrame
	}
	if b[0]&rsvBits != 0 {
		return nil, 0, fmt.Errorf("%w: reserved bits 0x%X", ErrUnknownOpcode, b[0]&rsvBits)
	}
	op, err := ParseOpcode(b[0])
	if err != nil {
		return nil, 0, err
	}
	if len(b) < 2 {
		return nil, 0, ErrTruncated
	}

	// 0 until 125 is the literal length.
	// 126 means the length is an unsigned 16-bit integer.
	// 127 would be an unsigned 64-bit integer, which is refused.
	masked, length, off := b[1]&maskBit != 0, int(b[1]&lengthBits), 2
	switch length {
	case 126:
		if len(b) < off+2 {
			return nil, 0, ErrTruncated
		}
		length = int(binary.BigEndian.Uint16(b[off:]))
		off += 2
	case 127:
		return nil, 0, ErrUnsupportedLength
	}

	f := &Frame{Opcode: op, Masked: masked}
	if masked {
		if len(b) < off+internal.MaskSize {
			return nil, 0, ErrTruncated
		}
		copy(f.Mask[:], b[off:])
		off += internal.MaskSize
	}
	if len(b)-off < length {
		return nil, 0, fmt.Errorf("%w (want %d payload bytes, have %d)", ErrTruncated, length, len(b)-off)
	}
	f.Payload = make([]byte, length)
	copy(f.Payload, b[off:off+length])
	if masked {
		mask(f.Mask).transform(f.Payload)
	}
	return f, off + length, nil
}
