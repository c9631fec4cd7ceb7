package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	UpgradeHeader             = "websocket"
	ConnectionHeader          = "upgrade"
	SecWebSocketVersionHeader = "13"
	DefaultSubprotocol        = "dumb-ws"

	// MaxHandshakeSize bounds both the request and the single response read.
	// Longer responses are truncated.
	MaxHandshakeSize = 1024

	statusSwitching = "HTTP/1.1 101 Switching Protocols"
)

var (
	ErrEncodeRequest = errors.New("dumbws: could not encode handshake request")
	ErrSend          = errors.New("dumbws: could not send handshake request")
	ErrReceive       = errors.New("dumbws: could not receive handshake response")
	ErrRejected      = errors.New("dumbws: server rejected handshake")
)

// BuildRequest renders the upgrade request.
func BuildRequest(host, path, subprotocol, key string) ([]byte, error) {
	if host == "" || path == "" || path[0] != '/' {
		return nil, ErrEncodeRequest
	}
	for _, s := range [...]string{host, path, subprotocol, key} {
		if strings.ContainsAny(s, "\r\n") {
			return nil, ErrEncodeRequest
		}
	}
	var b bytes.Buffer
	b.Grow(MaxHandshakeSize)
	b.WriteString("GET " + path + " HTTP/1.1\r\n")
	b.WriteString("Host: " + host + "\r\n")
	b.WriteString("Upgrade: " + UpgradeHeader + "\r\n")
	b.WriteString("Connection: " + ConnectionHeader + "\r\n")
	b.WriteString("Sec-WebSocket-Key: " + key + "\r\n")
	b.WriteString("Sec-WebSocket-Protocol: " + subprotocol + "\r\n")
	b.WriteString("Sec-WebSocket-Version: " + SecWebSocketVersionHeader + "\r\n\r\n")
	if b.Len() > MaxHandshakeSize {
		return nil, ErrEncodeRequest
	}
	return b.Bytes(), nil
}

// ValidateResponse checks the status line only. Headers, including
// Sec-WebSocket-Accept, are not inspected, but the header block must end
// within b. Whatever follows it belongs to the framing layer and is returned
// as rest.
func ValidateResponse(b []byte) (rest []byte, err error) {
	if !bytes.HasPrefix(b, []byte(statusSwitching)) {
		return nil, ErrRejected
	}
	i := bytes.Index(b, []byte("\r\n\r\n"))
	if i < 0 {
		return nil, fmt.Errorf("%w: header block incomplete after %d bytes", ErrReceive, len(b))
	}
	return b[i+4:], nil
}

// Negotiate performs exactly one request write and one response read.
func Negotiate(rw io.ReadWriter, rand io.Reader, host, path, subprotocol string) ([]byte, error) {
	key, err := GenerateKey(rand)
	if err != nil {
		return nil, errors.Join(ErrEncodeRequest, err)
	}
	req, err := BuildRequest(host, path, subprotocol, key)
	if err != nil {
		return nil, err
	}
	if _, err = rw.Write(req); err != nil {
		return nil, errors.Join(ErrSend, err)
	}

	buf := make([]byte, MaxHandshakeSize)
	n, err := rw.Read(buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, errors.Join(ErrReceive, err)
		}
		return nil, ErrRejected
	}
	return ValidateResponse(buf[:n])
}
