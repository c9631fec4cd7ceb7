package dumbws

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type seqRand struct{ n byte }

func (r *seqRand) Read(b []byte) (int, error) {
	for i := range b {
		r.n++
		b[i] = r.n
	}
	return len(b), nil
}

func TestControlFrame(t *testing.T) {
	for _, op := range []Opcode{OpcodePing, OpcodeClose} {
		t.Run(op.String(), func(t *testing.T) {
			f, err := newControlFrame(&seqRand{}, op)
			if want, got := (error)(nil), err; want != got {
				t.Fatalf("want %v, got %v", want, got)
			}
			b, err := Encode(&seqRand{}, op, nil)
			if want, got := (error)(nil), err; want != got {
				t.Fatalf("want %v, got %v", want, got)
			}
			if want, got := b, f[:]; !bytes.Equal(want, got) {
				t.Errorf("want % X, got % X", want, got)
			}
		})
	}
}

func TestMaskTransform(t *testing.T) {
	m := mask{0x01, 0x02, 0x03, 0x04}
	b := []byte{0x10, 0x20, 0x30, 0x40, 0x50}
	m.transform(b)
	if want, got := []byte{0x11, 0x22, 0x33, 0x44, 0x51}, b; !bytes.Equal(want, got) {
		t.Fatalf("want % X, got % X", want, got)
	}
	m.transform(b)
	if want, got := []byte{0x10, 0x20, 0x30, 0x40, 0x50}, b; !bytes.Equal(want, got) {
		t.Errorf("want % X, got % X", want, got)
	}
}

func TestTryRead(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if want, got := (error)(nil), err; want != got {
		t.Fatalf("want %v, got %v", want, got)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if want, got := (error)(nil), err; want != got {
		t.Fatalf("want %v, got %v", want, got)
	}
	srv, ok := <-accepted
	if !ok {
		t.Fatal("accept failed")
	}
	defer srv.Close()

	client, server := net.Pipe()
	defer server.Close()

	for name, tr := range map[string]Transport{"tcp": NewTransport(conn), "pipe": NewTransport(client)} {
		t.Run(name, func(t *testing.T) {
			b := make([]byte, 8)
			if _, err := tr.TryRead(b); !errors.Is(err, ErrWantPoll) {
				t.Fatalf("want %v, got %v", ErrWantPoll, err)
			}
			peer := srv
			if name == "pipe" {
				peer = server
			}
			go peer.Write([]byte("ping"))

			deadline := time.Now().Add(5 * time.Second)
			for {
				n, err := tr.TryRead(b)
				if errors.Is(err, ErrWantPoll) && time.Now().Before(deadline) {
					time.Sleep(time.Millisecond)
					continue
				}
				if want, got := (error)(nil), err; want != got {
					t.Fatalf("want %v, got %v", want, got)
				}
				if want, got := "ping", string(b[:n]); want != got {
					t.Errorf("want %s, got %s", want, got)
				}
				break
			}
			if want, got := (error)(nil), tr.Shutdown(); want != got {
				t.Errorf("want %v, got %v", want, got)
			}
			if want, got := (error)(nil), tr.Shutdown(); want != got {
				t.Errorf("want %v, got %v", want, got)
			}
		})
	}
}

func TestCloseCode(t *testing.T) {
	testCases := []struct {
		payload []byte
		cc      CloseCode
		valid   bool
	}{
		{payload: nil, cc: CloseNoStatus},
		{payload: []byte{0x03}, cc: CloseNoStatus},
		{payload: []byte{0x03, 0xE8}, cc: 1000, valid: true},
		{payload: []byte{0x03, 0xF3, 'b', 'y', 'e'}, cc: 1011, valid: true},
		{payload: []byte{0x03, 0xEC}, cc: 1004},
		{payload: []byte{0x0F, 0xA0}, cc: 4000, valid: true},
	}
	for _, tc := range testCases {
		t.Run("", func(t *testing.T) {
			cc := parseCloseCode(tc.payload)
			if want, got := tc.cc, cc; want != got {
				t.Errorf("want %d, got %d", want, got)
			}
			if want, got := tc.valid, cc.isValid(); want != got {
				t.Errorf("want %t, got %t", want, got)
			}
		})
	}
}

func TestConnID(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConn(NewTransport(client), "localhost")
	if want, got := 32, len(c.ID()); want != got {
		t.Errorf("want %d, got %d", want, got)
	}

	t.Run("failure", func(t *testing.T) {
		defer func(fn func() (string, error)) { newID = fn }(newID)
		newID = func() (string, error) { return "", errors.New("entropy exhausted") }

		var logs bytes.Buffer
		c := newConn(NewTransport(client), "localhost", zerolog.New(&logs).Level(zerolog.DebugLevel))
		if want, got := "", c.ID(); want != got {
			t.Errorf("want %q, got %q", want, got)
		}
		if want, got := "Could not generate connection ID", logs.String(); !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("want log containing %q, got %q", want, got)
		}
	})
}
