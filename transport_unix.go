//go:build unix

package dumbws

import (
	"errors"
	"io"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tryRead issues a single read(2) on the socket. The runtime already keeps
// the descriptor in non-blocking mode, so EAGAIN means nothing is buffered.
func tryRead(conn net.Conn, b []byte) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return deadlineRead(conn, b)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return deadlineRead(conn, b)
	}

	var (
		n    int
		rerr error
	)
	err = raw.Read(func(fd uintptr) bool {
		for {
			n, rerr = unix.Read(int(fd), b)
			if rerr != unix.EINTR {
				return true
			}
		}
	})
	switch {
	case err != nil:
		return 0, err
	case errors.Is(rerr, unix.EAGAIN), errors.Is(rerr, unix.EWOULDBLOCK):
		return 0, ErrWantPoll
	case rerr != nil:
		return 0, rerr
	case n == 0 && len(b) > 0:
		return 0, io.EOF
	}
	return n, nil
}
