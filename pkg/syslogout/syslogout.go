package syslogout

import (
	"context"
	"fmt"
	"time"

	"github.com/anynines/logstash-output-syslog/internal/config"
	"github.com/anynines/logstash-output-syslog/internal/model"
	outsyslog "github.com/anynines/logstash-output-syslog/internal/output/syslog"
)

// Event is one log record to forward.
type Event struct {
	// Timestamp of the event. Zero means "now".
	Timestamp time.Time
	// Message body.
	Message string
	// Host the event originated on.
	Host string
	// Fields are free-form values available to %{name} templates.
	Fields map[string]any
}

// Sender forwards events to one syslog destination. Not safe for
// concurrent use.
type Sender struct {
	out *outsyslog.Output
}

// New creates a Sender for the given destination. The configuration is
// validated once here; no connection is made until the first Send.
func New(host string, port int, opts ...Option) (*Sender, error) {
	cfg := config.Default()
	cfg.Host = host
	cfg.Port = port
	for _, opt := range opts {
		opt(&cfg)
	}

	out, err := outsyslog.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("syslogout: %w", err)
	}
	return &Sender{out: out}, nil
}

// Send delivers one event, blocking through any reconnect retries until
// the message is sent, dropped (UDP failure) or ctx is cancelled.
func (s *Sender) Send(ctx context.Context, ev Event) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return s.out.Write(ctx, model.Event{
		Timestamp: ts,
		Message:   ev.Message,
		Host:      ev.Host,
		Fields:    ev.Fields,
	})
}

// Close tears down the connection. The Sender must not be used after
// Close.
func (s *Sender) Close() error {
	return s.out.Close()
}
