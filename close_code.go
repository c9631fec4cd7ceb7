package dumbws

import (
	"encoding/binary"
	"math"
)

// CloseCode is the status a server may put in its close frame.
type CloseCode uint16

// CloseNoStatus stands for a close frame without a code.
const CloseNoStatus CloseCode = 1005

func parseCloseCode(payload []byte) CloseCode {
	if len(payload) < 2 {
		return CloseNoStatus
	}
	return CloseCode(binary.BigEndian.Uint16(payload))
}

func (cc CloseCode) isValid() bool {
	return cc >= 1000 && cc <= 1003 ||
		cc >= 1007 && cc <= 1011 ||
		cc >= 3000 && cc <= 5000 ||
		int(cc) == math.MaxUint16
}
