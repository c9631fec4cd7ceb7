// Package echo is a reference WebSocket peer that sends binary messages back.
package echo

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gbrlsnchs/dumbws/internal"
)

var errTextMessage = errors.New("echo: text messages are not supported")

// Handler upgrades every request and echoes binary messages, prefixed with
// prefix when it is not empty. Pings and closes are answered by gorilla's
// default handlers.
type Handler struct {
	Log    zerolog.Logger
	Prefix []byte

	upgrader websocket.Upgrader
}

func New(log zerolog.Logger, prefix []byte) *Handler {
	return &Handler{
		Log:      log,
		Prefix:   prefix,
		upgrader: websocket.Upgrader{Subprotocols: []string{internal.DefaultSubprotocol}},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Upgrade failed")
		return
	}
	defer conn.Close()
	log := h.Log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Str("subprotocol", conn.Subprotocol()).Msg("Got a connection")

	for {
		mt, msg, err := conn.ReadMessage()
		switch {
		case websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure):
			log.Debug().Msg("Asked to close")
			return
		case err != nil:
			log.Debug().Err(err).Msg("Read failed")
			return
		case mt == websocket.TextMessage:
			log.Warn().Err(errTextMessage).Send()
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, ""))
			return
		}
		log.Debug().Int("length", len(msg)).Msg("Got message")
		if len(h.Prefix) > 0 {
			msg = append(append([]byte{}, h.Prefix...), msg...)
		}
		if err = conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			log.Debug().Err(err).Msg("Write failed")
			return
		}
	}
}
