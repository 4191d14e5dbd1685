// Package syslog provides the syslog delivery output: it renders each
// event into one framed message and writes it over a single persistent
// connection, reconnecting and resending on stream-transport failures.
package syslog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anynines/logstash-output-syslog/internal/config"
	"github.com/anynines/logstash-output-syslog/internal/model"
	protocol "github.com/anynines/logstash-output-syslog/internal/syslog"
	"github.com/anynines/logstash-output-syslog/internal/tlsconfig"
)

// dialer is the transport seam; *protocol.Transport outside of tests.
type dialer interface {
	Kind() protocol.Kind
	Connect(ctx context.Context) (protocol.Conn, error)
}

// Output sends one framed syslog message per event. It owns at most one
// live connection, created lazily on the first send and torn down on any
// stream write failure. Not safe for concurrent use; the pipeline drives
// it from a single goroutine.
type Output struct {
	transport dialer
	builder   protocol.Builder
	delimiter string
	reconnect time.Duration

	conn    protocol.Conn
	watcher *tlsconfig.Watcher
}

// New creates a syslog output from a validated configuration.
func New(cfg config.Config) (*Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind, _ := protocol.ParseKind(cfg.Protocol)
	framing, _ := protocol.ParseFraming(cfg.RFC)

	var trust *tlsconfig.Context
	var watcher *tlsconfig.Watcher
	if kind == protocol.TLS {
		var err error
		trust, err = tlsconfig.New(tlsconfig.Options{
			ServerName:  cfg.Host,
			Verify:      cfg.SSLVerify,
			CACert:      cfg.SSLCACert,
			CRL:         cfg.SSLCRL,
			CRLCheckAll: cfg.SSLCRLCheckAll,
		})
		if err != nil {
			return nil, err
		}
		if cfg.SSLReload {
			watcher, err = tlsconfig.Watch(trust)
			if err != nil {
				return nil, err
			}
		}
	}

	return &Output{
		transport: protocol.NewTransport(kind, cfg.Host, cfg.Port, trust),
		builder:   cfg.Builder(),
		delimiter: framing.Delimiter(),
		reconnect: cfg.ReconnectInterval,
		watcher:   watcher,
	}, nil
}

// Write renders the event and delivers it. An initial connect failure is
// returned to the caller; once connected, a UDP write failure drops the
// message, while a TCP/TLS write failure closes the connection and the
// same framed bytes are resent after the reconnect interval, for as long
// as it takes or until ctx is cancelled.
func (o *Output) Write(ctx context.Context, event model.Event) error {
	payload := []byte(o.builder.Build(event) + o.delimiter)
	return o.deliver(ctx, payload)
}

func (o *Output) deliver(ctx context.Context, payload []byte) error {
	for attempt := 0; ; attempt++ {
		if o.conn == nil {
			conn, err := o.transport.Connect(ctx)
			if err != nil {
				if attempt == 0 {
					return err
				}
				slog.Warn("syslog output: reconnect failed, retrying",
					"error", err, "interval", o.reconnect)
				if err := o.sleep(ctx); err != nil {
					return err
				}
				continue
			}
			o.conn = conn
		}

		err := o.conn.Write(payload)
		if err == nil {
			return nil
		}

		if o.transport.Kind() == protocol.UDP {
			// UDP has no reconnect concept; drop and carry on.
			slog.Warn("syslog output: udp write failed, message dropped", "error", err)
			return nil
		}

		slog.Warn("syslog output: write failed, reconnecting",
			"error", err, "interval", o.reconnect)
		o.conn.Close()
		o.conn = nil
		if err := o.sleep(ctx); err != nil {
			return err
		}
	}
}

func (o *Output) sleep(ctx context.Context) error {
	select {
	case <-time.After(o.reconnect):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears down the live connection, if any, and stops the trust
// material watcher.
func (o *Output) Close() error {
	var errs []error
	if o.conn != nil {
		errs = append(errs, o.conn.Close())
		o.conn = nil
	}
	if o.watcher != nil {
		errs = append(errs, o.watcher.Close())
	}
	return errors.Join(errs...)
}
