package syslog

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Kind selects the wire transport to the syslog peer.
type Kind int

const (
	// UDP sends each message as one datagram on a connected socket.
	UDP Kind = iota
	// TCP sends messages over a plain stream connection.
	TCP
	// TLS sends messages over a TLS-wrapped stream connection.
	TLS
)

// ParseKind parses a protocol configuration value ("udp", "tcp" or
// "ssl-tcp").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "udp":
		return UDP, nil
	case "tcp":
		return TCP, nil
	case "ssl-tcp":
		return TLS, nil
	default:
		return UDP, fmt.Errorf("syslog: unknown protocol %q", s)
	}
}

func (k Kind) String() string {
	switch k {
	case TCP:
		return "tcp"
	case TLS:
		return "ssl-tcp"
	default:
		return "udp"
	}
}

func (k Kind) network() string {
	if k == UDP {
		return "udp"
	}
	return "tcp"
}

// Penalty applied after a failed TLS handshake so a misbehaving peer is
// not hammered with immediate redials.
const tlsHandshakePenalty = 5 * time.Second

// TrustContext supplies ready-to-use client TLS configuration for the
// TLS transport. Implementations may return fresh configuration on each
// call (e.g. after reloading trust material).
type TrustContext interface {
	Config() *tls.Config
}

// Conn is a single live connection to the syslog peer. Close is
// idempotent and swallows errors from the underlying socket.
type Conn interface {
	Write(p []byte) error
	Close() error
}

// Transport dials connections of one Kind to a single syslog peer.
type Transport struct {
	kind  Kind
	addr  string
	trust TrustContext

	// handshakePenalty is tlsHandshakePenalty outside of tests.
	handshakePenalty time.Duration
}

// NewTransport creates a transport for the given peer. trust is required
// for TLS and ignored otherwise.
func NewTransport(kind Kind, host string, port int, trust TrustContext) *Transport {
	return &Transport{
		kind:             kind,
		addr:             net.JoinHostPort(host, strconv.Itoa(port)),
		trust:            trust,
		handshakePenalty: tlsHandshakePenalty,
	}
}

// Kind reports the transport kind.
func (t *Transport) Kind() Kind { return t.kind }

// Connect dials a new connection to the peer. A TLS handshake failure is
// logged and penalized with a fixed sleep before the error is surfaced.
func (t *Transport) Connect(ctx context.Context) (Conn, error) {
	if t.kind == TLS {
		return t.connectTLS(ctx)
	}

	var d net.Dialer
	c, err := d.DialContext(ctx, t.kind.network(), t.addr)
	if err != nil {
		return nil, fmt.Errorf("syslog: connect %s %s: %w", t.kind, t.addr, err)
	}
	return &conn{c: c}, nil
}

func (t *Transport) connectTLS(ctx context.Context) (Conn, error) {
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		// A refused TCP connection is not a handshake failure; no penalty.
		return nil, fmt.Errorf("syslog: connect ssl-tcp %s: %w", t.addr, err)
	}

	tc := tls.Client(raw, t.trust.Config())
	if err := tc.HandshakeContext(ctx); err != nil {
		raw.Close()
		slog.Warn("syslog: tls handshake failed", "addr", t.addr, "error", err)
		select {
		case <-time.After(t.handshakePenalty):
		case <-ctx.Done():
		}
		return nil, fmt.Errorf("syslog: tls handshake %s: %w", t.addr, err)
	}
	return &conn{c: tc}, nil
}

type conn struct {
	c    net.Conn
	once sync.Once
}

func (c *conn) Write(p []byte) error {
	_, err := c.c.Write(p)
	return err
}

func (c *conn) Close() error {
	c.once.Do(func() { _ = c.c.Close() })
	return nil
}
