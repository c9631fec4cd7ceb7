package internal

import "math"

const (
	MaxPayloadSize = math.MaxUint16
	MaskSize       = 4
	MaxHeaderSize  = 4 + MaskSize // 16-bit extended length + mask
)

// HeaderSize returns the size of a masked client frame header, mask included.
func HeaderSize(length int) (size int) {
	size += 2 // FIN/opcode and mask/length indicator
	if length > 125 {
		size += 2 // 16-bit length value
	}
	return size + MaskSize
}

// ByteSize returns the wire size of a masked client frame.
func ByteSize(b []byte) int {
	return HeaderSize(len(b)) + len(b)
}
