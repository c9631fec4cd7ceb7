package dumbws

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/gbrlsnchs/uuid"
	"github.com/rs/zerolog"

	"github.com/gbrlsnchs/dumbws/internal"
)

// State is the protocol state of a Conn.
type State uint8

const (
	StateClosed State = iota
	StateConnected
	StateNegotiated
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnected:
		return "connected"
	case StateNegotiated:
		return "negotiated"
	case StateClosing:
		return "closing"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// controlReadSize is enough for any control frame a server sends.
const controlReadSize = 2 + maxControlPayload

// Conn is a single client connection.
//
// A Conn is not safe for concurrent use. Its methods block for as long as the
// transport does, except Receive in non-blocking mode.
type Conn struct {
	tr          Transport
	host        string
	id          string
	state       State
	broken      bool
	nonblocking bool
	subprotocol string
	rand        io.Reader
	log         zerolog.Logger
	pending     []byte // bytes read past the last frame boundary
}

// NewConn wraps an already connected transport. The returned Conn is in the
// connected state and must be negotiated with Handshake before use. host is
// sent in the Host header.
func NewConn(tr Transport, host string) *Conn {
	return newConn(tr, host, zerolog.Nop())
}

func newConn(tr Transport, host string, log zerolog.Logger) *Conn {
	c := &Conn{
		tr:          tr,
		host:        host,
		state:       StateConnected,
		subprotocol: DefaultSubprotocol,
		rand:        defaultRand,
	}
	id, err := newID()
	c.id = id
	c.SetLogger(log)
	if err != nil {
		c.log.Debug().Err(err).Msg("Could not generate connection ID")
	}
	return c
}

var newID = func() (string, error) {
	guid, err := uuid.GenerateV4(nil)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(guid[:]), nil
}

func (c *Conn) ID() string           { return c.id }
func (c *Conn) State() State         { return c.state }
func (c *Conn) RemoteAddr() net.Addr { return c.tr.RemoteAddr() }

// SetLogger replaces the logger. Connection fields are added to it.
func (c *Conn) SetLogger(log zerolog.Logger) {
	ctx := log.With().Str("conn", c.id)
	if addr := c.tr.RemoteAddr(); addr != nil {
		ctx = ctx.Str("remote", addr.String())
	}
	c.log = ctx.Logger()
}

// SetNonblocking switches Receive between waiting for a frame and returning
// ErrWantPoll when none is complete yet.
func (c *Conn) SetNonblocking(nonblocking bool) { c.nonblocking = nonblocking }

// SetRandom replaces the source of masks and handshake keys.
func (c *Conn) SetRandom(r io.Reader) { c.rand = r }

// SetSubprotocol sets the Sec-WebSocket-Protocol value. Only effective before Handshake.
func (c *Conn) SetSubprotocol(proto string) { c.subprotocol = proto }

// Handshake upgrades the connection. On failure the Conn is unusable and
// should be discarded with Shutdown.
func (c *Conn) Handshake(path string) error {
	if err := c.expect(StateConnected); err != nil {
		return err
	}
	rest, err := internal.Negotiate(c.tr, c.rand, c.host, path, c.subprotocol)
	if err != nil {
		c.broken = true
		c.log.Debug().Err(err).Str("path", path).Msg("Handshake failed")
		return err
	}
	c.pending = append(c.pending[:0], rest...)
	c.state = StateNegotiated
	c.log.Debug().Str("path", path).Msg("Handshake complete")
	return nil
}

// Send writes payload as one binary frame and returns the number of bytes put
// on the wire, header and mask included.
func (c *Conn) Send(payload []byte) (int, error) {
	if err := c.expect(StateNegotiated); err != nil {
		return 0, err
	}
	b, err := Encode(c.rand, OpcodeBinary, payload)
	if err != nil {
		return 0, err
	}
	n, err := c.tr.Write(b)
	if err != nil {
		return n, c.fail(err)
	}
	c.log.Debug().Int("payload", len(payload)).Int("wire", n).Msg("Sent binary frame")
	return n, nil
}

// Receive reads the next binary message into buf and returns the payload
// length. A payload larger than buf is truncated, in which case the returned
// length exceeds len(buf).
//
// Pings from the server are answered and pongs are skipped. A close from the
// server is echoed, the transport shut down and ErrClosed returned.
func (c *Conn) Receive(buf []byte) (int, error) {
	if err := c.expect(StateNegotiated); err != nil {
		return 0, err
	}
	for {
		f, err := c.nextFrame(len(buf)+internal.MaxHeaderSize, !c.nonblocking)
		if err != nil {
			return 0, err
		}
		switch f.Opcode {
		case OpcodeBinary:
			if n := copy(buf, f.Payload); n < len(f.Payload) {
				c.log.Debug().Int("payload", len(f.Payload)).Int("buffer", len(buf)).Msg("Truncated payload")
			}
			c.log.Debug().Int("payload", len(f.Payload)).Msg("Received binary frame")
			return len(f.Payload), nil
		case OpcodePing:
			if err = c.reply(OpcodePong, f.Payload); err != nil {
				return 0, err
			}
		case OpcodePong: // no-op
		case OpcodeClose:
			cc := parseCloseCode(f.Payload)
			c.log.Debug().Uint16("code", uint16(cc)).Msg("Server initiated close")
			c.state = StateClosing
			err = c.reply(OpcodeClose, f.Payload)
			if serr := c.Shutdown(); err == nil {
				err = serr
			}
			switch {
			case err != nil:
				return 0, err
			case cc != CloseNoStatus && !cc.isValid():
				return 0, fmt.Errorf("%w: invalid close code %d", ErrClosed, cc)
			}
			return 0, fmt.Errorf("%w (code %d)", ErrClosed, cc)
		}
	}
}

// Ping sends an empty ping and waits for the response. Anything but a pong is
// ErrControlMismatch.
func (c *Conn) Ping() error {
	if err := c.expect(StateNegotiated); err != nil {
		return err
	}
	if err := c.control(OpcodePing, OpcodePong); err != nil {
		return err
	}
	c.log.Debug().Msg("Got pong")
	return nil
}

// Close sends an empty close frame and waits for the echo. The transport is
// shut down whether or not the echo is valid, so the Conn always ends closed.
func (c *Conn) Close() error {
	if err := c.expect(StateNegotiated); err != nil {
		return err
	}
	c.state = StateClosing
	err := c.control(OpcodeClose, OpcodeClose)
	if serr := c.Shutdown(); err == nil {
		err = serr
	}
	return err
}

// Shutdown releases the transport without any closing handshake. It is the
// way to discard a Conn that failed to negotiate or broke.
func (c *Conn) Shutdown() error {
	c.state = StateClosed
	c.pending = nil
	if err := c.tr.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.log.Debug().Msg("Transport shut down")
	return nil
}

func (c *Conn) expect(s State) error {
	switch {
	case c.state == StateClosed:
		return ErrClosed
	case c.broken:
		return ErrBroken
	case c.state != s:
		return fmt.Errorf("%w: %s", ErrInvalidState, c.state)
	}
	return nil
}

// fail marks the Conn unusable after a transport error.
func (c *Conn) fail(err error) error {
	c.broken = true
	c.log.Debug().Err(err).Msg("Transport failure")
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// control sends an empty control frame and checks the first byte of the reply.
func (c *Conn) control(op, want Opcode) error {
	f, err := newControlFrame(c.rand, op)
	if err != nil {
		return err
	}
	if _, err = c.tr.Write(f[:]); err != nil {
		return c.fail(err)
	}
	for len(c.pending) == 0 {
		if err = c.fill(controlReadSize, true); err != nil {
			return err
		}
	}
	if got := c.pending[0]; got != want.Byte() {
		c.log.Warn().Stringer("sent", op).Uint8("got", got).Msg("Unexpected control frame response")
		return fmt.Errorf("%w: sent %s, got first byte 0x%02X", ErrControlMismatch, op, got)
	}
	_, err = c.nextFrame(controlReadSize, true)
	return err
}

func (c *Conn) reply(op Opcode, payload []byte) error {
	b, err := Encode(c.rand, op, payload)
	if err != nil {
		return err
	}
	if _, err = c.tr.Write(b); err != nil {
		return c.fail(err)
	}
	return nil
}

// nextFrame returns the next complete frame, reading at most limit bytes per
// transport read. Bytes past the frame stay pending.
func (c *Conn) nextFrame(limit int, block bool) (*Frame, error) {
	for {
		if len(c.pending) > 0 {
			f, n, err := decode(c.pending)
			if err == nil {
				c.pending = append(c.pending[:0], c.pending[n:]...)
				return f, nil
			}
			if !errors.Is(err, ErrTruncated) {
				c.broken = true
				return nil, err
			}
		}
		if err := c.fill(limit, block); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) fill(limit int, block bool) error {
	buf := make([]byte, limit)
	var (
		n   int
		err error
	)
	if block {
		n, err = c.tr.Read(buf)
	} else {
		n, err = c.tr.TryRead(buf)
	}
	c.pending = append(c.pending, buf[:n]...)
	switch {
	case errors.Is(err, ErrWantPoll):
		if n > 0 {
			return nil
		}
		return ErrWantPoll
	case err != nil:
		return c.fail(err)
	}
	return nil
}
