package dumbws

import "fmt"

// Opcode is the closed set of frame types this client speaks.
// Text and continuation frames are not supported.
type Opcode uint8

const (
	OpcodeBinary Opcode = 0x2
	OpcodeClose  Opcode = 0x8
	OpcodePing   Opcode = 0x9
	OpcodePong   Opcode = 0xA
)

const (
	finBit     = 0x80
	rsvBits    = 0x70
	opcodeBits = 0x0F
	maskBit    = 0x80
	lengthBits = 0x7F
)

// ParseOpcode maps the first byte of a frame to its opcode.
// The FIN and RSV bits are ignored.
func ParseOpcode(b byte) (Opcode, error) {
	o := Opcode(b & opcodeBits)
	if !o.isValid() {
		return 0, fmt.Errorf("%w 0x%X", ErrUnknownOpcode, b&opcodeBits)
	}
	return o, nil
}

// Byte returns the first wire byte of a final frame carrying o.
func (o Opcode) Byte() byte {
	return finBit | byte(o)
}

func (o Opcode) String() string {
	switch o {
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	}
	return fmt.Sprintf("Opcode(0x%X)", uint8(o))
}

func (o Opcode) isControl() bool {
	return o >= OpcodeClose
}

func (o Opcode) isValid() bool {
	return o == OpcodeBinary || o >= OpcodeClose && o <= OpcodePong
}
