package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/rs/zerolog"

	"github.com/gbrlsnchs/dumbws/internal/echo"
)

func main() {
	useTLS := getopt.Bool("t", false, "serve TLS")
	prefix := getopt.Bool("e", false, `prefix echoed messages with "You said: "`)
	cert := getopt.String("c", "cert.pem", "TLS certificate")
	key := getopt.String("k", "key.pem", "TLS key")
	host := getopt.String("h", os.Getenv("HOST"), "host to listen on")
	port := getopt.String("p", os.Getenv("PORT"), "port to listen on")
	if err := getopt.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintDefaults()
		os.Exit(1)
	}
	if *port == "" {
		*port = "8000"
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger()

	var p []byte
	if *prefix {
		p = []byte("You said: ")
	}
	addr := net.JoinHostPort(*host, *port)
	srv := &http.Server{Addr: addr, Handler: echo.New(log, p)}
	log.Info().Str("addr", addr).Bool("tls", *useTLS).Msg("Starting server")

	var err error
	if *useTLS {
		err = srv.ListenAndServeTLS(filepath.Clean(*cert), filepath.Clean(*key))
	} else {
		err = srv.ListenAndServe()
	}
	log.Fatal().Err(err).Msg("Server stopped")
}
