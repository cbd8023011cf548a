package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jongio/httpio/urlutil"
	"golang.org/x/net/idna"
)

const (
	// DefaultDialTimeout bounds connection setup when the context has no deadline.
	DefaultDialTimeout = 10 * time.Second
	// DefaultKeepAlive is the TCP keep-alive period for dialed connections.
	DefaultKeepAlive = 30 * time.Second
)

var errUnvalidatedURL = errors.New("URL has not been validated")

// Transport opens connections to validated URLs.
type Transport struct {
	// Dialer is used for the TCP connection. Nil means a default dialer.
	Dialer *net.Dialer
	// TLSConfig is cloned for every https connection. ServerName defaults to
	// the URL host.
	TLSConfig *tls.Config
}

// Dial connects to u's host and port, completing the TLS handshake for https.
func (t *Transport) Dial(ctx context.Context, u urlutil.HTTPURL) (net.Conn, error) {
	if u.IsZero() {
		return nil, errUnvalidatedURL
	}

	host, err := dialHost(u.Host())
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", u.Host(), err)
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(u.Port())))

	dialer := t.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: DefaultDialTimeout, KeepAlive: DefaultKeepAlive}
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if !u.IsTLS() {
		return conn, nil
	}

	var cfg *tls.Config
	if t.TLSConfig != nil {
		cfg = t.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
	}
	return tlsConn, nil
}

// dialHost returns the ASCII form of host. IP literals pass through; names are
// converted with IDNA lookup rules so internationalized hosts can be resolved.
func dialHost(host string) (string, error) {
	if net.ParseIP(host) != nil {
		return host, nil
	}
	return idna.Lookup.ToASCII(host)
}
