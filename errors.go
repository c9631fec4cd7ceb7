package dumbws

import (
	"errors"

	"github.com/gbrlsnchs/dumbws/internal"
)

// Resolution and connect errors. Both are fatal to the attempted connection.
var (
	ErrUnresolvedHost = errors.New("dumbws: could not resolve host")
	ErrConnectFailed  = errors.New("dumbws: could not connect")
)

// Handshake errors. The connection must be discarded after any of them.
var (
	ErrHandshakeEncode  = internal.ErrEncodeRequest
	ErrHandshakeSend    = internal.ErrSend
	ErrHandshakeReceive = internal.ErrReceive
	ErrRejected         = internal.ErrRejected
)

// Frame errors. A decode error leaves frame boundaries unknown.
var (
	ErrPayloadTooLarge   = errors.New("dumbws: payload length greater than 65535")
	ErrNotFinalFrame     = errors.New("dumbws: fragmented frames are not supported")
	ErrUnsupportedLength = errors.New("dumbws: 64-bit payload length is not supported")
	ErrTruncated         = errors.New("dumbws: truncated frame")
	ErrUnknownOpcode     = errors.New("dumbws: unknown opcode")
)

// ErrControlMismatch reports a server protocol violation during a ping or
// close exchange, as opposed to a network failure.
var ErrControlMismatch = errors.New("dumbws: unexpected control frame response")

// Transport and state errors.
var (
	ErrTransport    = errors.New("dumbws: transport failure")
	ErrClosed       = errors.New("dumbws: connection is closed")
	ErrBroken       = errors.New("dumbws: connection is unusable")
	ErrInvalidState = errors.New("dumbws: operation not valid in current state")
)

// ErrWantPoll is returned by a non-blocking receive that found no complete
// frame yet. It is not a failure; callers retry.
var ErrWantPoll = errors.New("dumbws: no data available yet")

// IsFrameError reports whether err came from the frame codec.
func IsFrameError(err error) bool {
	return errors.Is(err, ErrPayloadTooLarge) ||
		errors.Is(err, ErrNotFinalFrame) ||
		errors.Is(err, ErrUnsupportedLength) ||
		errors.Is(err, ErrTruncated) ||
		errors.Is(err, ErrUnknownOpcode)
}
