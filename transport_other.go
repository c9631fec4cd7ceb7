//go:build !unix

package dumbws

import "net"

func tryRead(conn net.Conn, b []byte) (int, error) {
	return deadlineRead(conn, b)
}
