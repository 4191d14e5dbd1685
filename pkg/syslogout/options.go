package syslogout

import (
	"time"

	"github.com/anynines/logstash-output-syslog/internal/config"
)

// Option configures a Sender.
type Option func(*config.Config)

// WithProtocol selects the transport: "udp" (default), "tcp" or
// "ssl-tcp".
func WithProtocol(protocol string) Option {
	return func(c *config.Config) { c.Protocol = protocol }
}

// WithRFC selects the message framing: "rfc3164" (default), "rfc5424" or
// "rfc6587".
func WithRFC(rfc string) Option {
	return func(c *config.Config) { c.RFC = rfc }
}

// WithReconnectInterval sets the pause before a TCP/TLS reconnect
// attempt. Default: 1s.
func WithReconnectInterval(d time.Duration) Option {
	return func(c *config.Config) { c.ReconnectInterval = d }
}

// WithFacility sets the facility label template. Default: "user-level".
func WithFacility(facility string) Option {
	return func(c *config.Config) { c.Facility = facility }
}

// WithSeverity sets the severity label template. Default: "notice".
func WithSeverity(severity string) Option {
	return func(c *config.Config) { c.Severity = severity }
}

// WithNumericPriority disables facility/severity labels and takes the
// PRI value from the given template instead.
func WithNumericPriority(template string) Option {
	return func(c *config.Config) {
		c.UseLabels = false
		c.Priority = template
	}
}

// WithAppname sets the appname template. Default: "syslog-forward".
func WithAppname(appname string) Option {
	return func(c *config.Config) { c.Appname = appname }
}

// WithProcID sets the procid template. Default: "-".
func WithProcID(procid string) Option {
	return func(c *config.Config) { c.ProcID = procid }
}

// WithMsgID sets the msgid template. Default: "-".
func WithMsgID(msgid string) Option {
	return func(c *config.Config) { c.MsgID = msgid }
}

// WithStructuredData sets the RFC 5424 structured data template.
// Rejected at setup when combined with RFC 3164 framing.
func WithStructuredData(sd string) Option {
	return func(c *config.Config) { c.StructuredData = sd }
}

// WithMessageTemplate sets the message body template. Default:
// "%{message}".
func WithMessageTemplate(template string) Option {
	return func(c *config.Config) { c.Message = template }
}

// WithTLS configures peer verification for the ssl-tcp protocol: CA
// material (PEM bundle or directory), an optional CRL bundle, and
// whether revocation is checked for the whole chain or the leaf only.
func WithTLS(verify bool, cacert, crl string, crlCheckAll bool) Option {
	return func(c *config.Config) {
		c.SSLVerify = verify
		c.SSLCACert = cacert
		c.SSLCRL = crl
		c.SSLCRLCheckAll = crlCheckAll
	}
}
