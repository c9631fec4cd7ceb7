package dumbws

import (
	"io"

	"github.com/gbrlsnchs/dumbws/internal"
)

// controlFrameSize fits a masked control frame without payload.
const controlFrameSize = 2 + internal.MaskSize

// controlFrame is the complete wire form of an empty ping or close.
type controlFrame [controlFrameSize]byte

func newControlFrame(r io.Reader, op Opcode) (f controlFrame, err error) {
	f[0] = op.Byte()
	f[1] = maskBit // zero length
	var m mask
	if m, err = newMask(r); err != nil {
		return f, err
	}
	copy(f[2:], m[:])
	return f, nil
}
