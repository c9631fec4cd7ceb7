package echo_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	. "github.com/gbrlsnchs/dumbws/internal/echo"
)

func TestHandler(t *testing.T) {
	testCases := []struct {
		prefix string
		msg    string
		want   string
	}{
		{msg: "hello", want: "hello"},
		{prefix: "You said: ", msg: "hello", want: "You said: hello"},
	}
	for _, tc := range testCases {
		t.Run("", func(t *testing.T) {
			srv := httptest.NewServer(New(zerolog.Nop(), []byte(tc.prefix)))
			defer srv.Close()

			d := websocket.Dialer{Subprotocols: []string{"dumb-ws"}}
			conn, _, err := d.Dial("ws://"+strings.TrimPrefix(srv.URL, "http://"), nil)
			if want, got := (error)(nil), err; want != got {
				t.Fatalf("want %v, got %v", want, got)
			}
			defer conn.Close()
			if want, got := "dumb-ws", conn.Subprotocol(); want != got {
				t.Errorf("want %s, got %s", want, got)
			}

			if err = conn.WriteMessage(websocket.BinaryMessage, []byte(tc.msg)); err != nil {
				t.Fatalf("want %v, got %v", nil, err)
			}
			mt, msg, err := conn.ReadMessage()
			if want, got := (error)(nil), err; want != got {
				t.Fatalf("want %v, got %v", want, got)
			}
			if want, got := websocket.BinaryMessage, mt; want != got {
				t.Errorf("want %d, got %d", want, got)
			}
			if want, got := tc.want, string(msg); want != got {
				t.Errorf("want %s, got %s", want, got)
			}
		})
	}
}

func TestHandlerRejectsText(t *testing.T) {
	srv := httptest.NewServer(New(zerolog.Nop(), nil))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+strings.TrimPrefix(srv.URL, "http://"), nil)
	if want, got := (error)(nil), err; want != got {
		t.Fatalf("want %v, got %v", want, got)
	}
	defer conn.Close()

	if err = conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("want %v, got %v", nil, err)
	}
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseUnsupportedData) {
		t.Errorf("want close %d, got %v", websocket.CloseUnsupportedData, err)
	}
}
