package dumbws

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/gbrlsnchs/dumbws/internal"
)

// DefaultSubprotocol is sent in Sec-WebSocket-Protocol unless overridden.
const DefaultSubprotocol = internal.DefaultSubprotocol

// Dialer holds the options used to open a Conn. The zero value is usable.
type Dialer struct {
	// Resolver looks up the host. net.DefaultResolver when nil.
	Resolver *net.Resolver
	// Timeout bounds resolution, connect and the TLS handshake. Zero means no timeout.
	Timeout time.Duration
	// TLSConfig is cloned for TLS connections. ServerName defaults to the host.
	TLSConfig *tls.Config
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
	// Rand feeds masks and handshake keys. crypto/rand when nil.
	Rand io.Reader
	// Subprotocol defaults to DefaultSubprotocol.
	Subprotocol string
	// Nonblocking makes Receive return ErrWantPoll instead of waiting.
	Nonblocking bool
}

// DefaultDialer is used by Open and OpenTLS.
var DefaultDialer = &Dialer{}

// Open connects to host:port over plain TCP.
func Open(host, port string) (*Conn, error) {
	return DefaultDialer.Open(context.Background(), host, port)
}

// OpenTLS connects to host:port over TLS. When verify is false the server
// certificate is not checked.
func OpenTLS(host, port string, verify bool) (*Conn, error) {
	return DefaultDialer.OpenTLS(context.Background(), host, port, verify)
}

func (d *Dialer) Open(ctx context.Context, host, port string) (*Conn, error) {
	return d.open(ctx, host, port, nil)
}

func (d *Dialer) OpenTLS(ctx context.Context, host, port string, verify bool) (*Conn, error) {
	cfg := &tls.Config{}
	if d.TLSConfig != nil {
		cfg = d.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	cfg.InsecureSkipVerify = !verify
	return d.open(ctx, host, port, cfg)
}

func (d *Dialer) open(ctx context.Context, host, port string, cfg *tls.Config) (*Conn, error) {
	log := d.logger().With().Str("host", host).Str("port", port).Logger()
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	resolver := d.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupHost(ctx, host)
	if err == nil && len(addrs) == 0 {
		err = errors.New("no addresses")
	}
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnresolvedHost, host, err)
	}

	var (
		nd   net.Dialer
		conn net.Conn
	)
	for _, addr := range addrs {
		log.Debug().Str("addr", addr).Msg("Dialing")
		if conn, err = nd.DialContext(ctx, "tcp", net.JoinHostPort(addr, port)); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrConnectFailed, net.JoinHostPort(host, port), err)
	}

	if cfg != nil {
		tc := tls.Client(conn, cfg)
		if err = tc.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w to %s: tls: %w", ErrConnectFailed, net.JoinHostPort(host, port), err)
		}
		conn = tc
	}

	c := newConn(NewTransport(conn), host, log)
	if d.Rand != nil {
		c.rand = d.Rand
	}
	if d.Subprotocol != "" {
		c.subprotocol = d.Subprotocol
	}
	c.nonblocking = d.Nonblocking
	c.log.Debug().Bool("tls", cfg != nil).Msg("Connected")
	return c, nil
}

func (d *Dialer) logger() zerolog.Logger {
	if d.Logger == nil {
		return zerolog.Nop()
	}
	return *d.Logger
}

var defaultRand io.Reader = rand.Reader
