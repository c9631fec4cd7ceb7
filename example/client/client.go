package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/rs/zerolog"

	"github.com/gbrlsnchs/dumbws"
)

const (
	shortMsg = `{"msg":"websockets are dumb"}`
	longMsg  = `{"name": "dave", "age": 9, "stuff": [1, 2, 3, 4, 5],` +
		` "more_stuff": { "ok": true },` +
		` "more_and_more": [ { "name": "maple" } ],` +
		` "date": "2020-06-18T12" }`
)

func main() {
	useTLS := getopt.Bool("t", false, "connect over TLS")
	insecure := getopt.Bool("k", false, "skip TLS certificate verification")
	host := getopt.String("h", "localhost", "host to connect to")
	port := getopt.String("p", "8000", "port to connect to")
	path := getopt.String("u", "/", "request path")
	verbose := getopt.Bool("v", false, "log protocol events")
	if err := getopt.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintDefaults()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	if err := run(log, *host, *port, *path, *useTLS, !*insecure); err != nil {
		log.Error().Err(err).Msg("Client failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger, host, port, path string, useTLS, verify bool) error {
	d := &dumbws.Dialer{Logger: &log, Timeout: 15 * time.Second}
	log.Info().Str("host", host).Str("port", port).Bool("tls", useTLS).Msg("Connecting")

	var (
		c   *dumbws.Conn
		err error
	)
	if useTLS {
		c, err = d.OpenTLS(context.Background(), host, port, verify)
	} else {
		c, err = d.Open(context.Background(), host, port)
	}
	if err != nil {
		return err
	}
	if err = c.Handshake(path); err != nil {
		c.Shutdown()
		return err
	}
	log.Info().Msg("Handshake complete")

	buf := make([]byte, 1024)
	for _, msg := range []string{shortMsg, longMsg} {
		n, err := c.Send([]byte(msg))
		if err != nil {
			c.Shutdown()
			return err
		}
		log.Info().Int("payload", len(msg)).Int("wire", n).Msg("Sent")
		if n, err = c.Receive(buf); err != nil {
			c.Shutdown()
			return err
		}
		log.Info().Int("payload", n).Msgf("Received: %s", buf[:min(n, len(buf))])
	}

	if err = c.Ping(); err != nil {
		c.Shutdown()
		return err
	}
	log.Info().Msg("Pinged and got a pong")

	if err = c.Close(); err != nil {
		return err
	}
	log.Info().Msg("Closed")
	return nil
}
