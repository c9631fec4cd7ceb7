package dumbws

import (
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Transport is the byte stream under a Conn. A Conn owns its transport and
// is the only one allowed to use it once negotiated.
type Transport interface {
	io.ReadWriter
	// TryRead reads whatever is available without blocking and returns
	// ErrWantPoll when nothing is.
	TryRead(b []byte) (int, error)
	Shutdown() error
	RemoteAddr() net.Addr
}

// pollWait bounds TryRead on conns without raw socket access.
const pollWait = time.Millisecond

type netTransport struct {
	conn   net.Conn
	closed bool
}

// NewTransport wraps an established plain or TLS connection.
func NewTransport(conn net.Conn) Transport {
	return &netTransport{conn: conn}
}

func (t *netTransport) Read(b []byte) (int, error)    { return t.conn.Read(b) }
func (t *netTransport) Write(b []byte) (int, error)   { return t.conn.Write(b) }
func (t *netTransport) TryRead(b []byte) (int, error) { return tryRead(t.conn, b) }
func (t *netTransport) RemoteAddr() net.Addr          { return t.conn.RemoteAddr() }

func (t *netTransport) Shutdown() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

// deadlineRead emulates a non-blocking read with an almost expired deadline.
func deadlineRead(conn net.Conn, b []byte) (int, error) {
	if err := conn.SetReadDeadline(time.Now().Add(pollWait)); err != nil {
		return 0, err
	}
	n, err := conn.Read(b)
	if derr := conn.SetReadDeadline(time.Time{}); derr != nil && err == nil {
		err = derr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		if n == 0 {
			return 0, ErrWantPoll
		}
		err = nil
	}
	return n, err
}
