// Package config defines the forwarder configuration surface and its
// validation rules.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/anynines/logstash-output-syslog/internal/syslog"
)

// Config holds all syslog-forward configuration. Field templates use
// %{name} placeholders resolved per event.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	Protocol          string        `mapstructure:"protocol"` // "udp", "tcp", "ssl-tcp"
	RFC               string        `mapstructure:"rfc"`      // "rfc3164", "rfc5424", "rfc6587"
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`

	SSLVerify      bool   `mapstructure:"ssl_verify"`
	SSLCACert      string `mapstructure:"ssl_cacert"`
	SSLCRL         string `mapstructure:"ssl_crl"`
	SSLCRLCheckAll bool   `mapstructure:"ssl_crl_check_all"`
	SSLReload      bool   `mapstructure:"ssl_reload"`

	UseLabels bool   `mapstructure:"use_labels"`
	Priority  string `mapstructure:"priority"`
	Facility  string `mapstructure:"facility"`
	Severity  string `mapstructure:"severity"`

	Sourcehost     string `mapstructure:"sourcehost"`
	Appname        string `mapstructure:"appname"`
	ProcID         string `mapstructure:"procid"`
	Message        string `mapstructure:"message"`
	MsgID          string `mapstructure:"msgid"`
	StructuredData string `mapstructure:"structured_data"`

	Charset string `mapstructure:"charset"`
}

// Default returns the configuration defaults. Host and Port have no
// default and must be supplied.
func Default() Config {
	return Config{
		Protocol:          "udp",
		RFC:               "rfc3164",
		ReconnectInterval: time.Second,
		UseLabels:         true,
		Priority:          "%{syslog_pri}",
		Facility:          "user-level",
		Severity:          "notice",
		Sourcehost:        "%{host}",
		Appname:           "syslog-forward",
		ProcID:            "-",
		Message:           "%{message}",
		MsgID:             "-",
		Charset:           "utf-8",
	}
}

// Validate checks the configuration once at setup, before any event is
// processed.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("config: host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if _, err := syslog.ParseKind(c.Protocol); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	framing, err := syslog.ParseFraming(c.RFC)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if framing == syslog.RFC3164 && c.StructuredData != "" {
		return errors.New("config: structured_data is not supported with rfc3164")
	}
	if c.ReconnectInterval < 0 {
		return fmt.Errorf("config: reconnect_interval %v must not be negative", c.ReconnectInterval)
	}
	return nil
}

// Builder returns the message builder for this configuration. Call only
// after Validate.
func (c Config) Builder() syslog.Builder {
	framing, _ := syslog.ParseFraming(c.RFC)
	return syslog.Builder{
		Framing:        framing,
		UseLabels:      c.UseLabels,
		Priority:       c.Priority,
		Facility:       c.Facility,
		Severity:       c.Severity,
		Sourcehost:     c.Sourcehost,
		Appname:        c.Appname,
		ProcID:         c.ProcID,
		MsgID:          c.MsgID,
		Message:        c.Message,
		StructuredData: c.StructuredData,
	}
}
