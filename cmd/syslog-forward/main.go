package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anynines/logstash-output-syslog/internal/config"
	"github.com/anynines/logstash-output-syslog/internal/input"
	"github.com/anynines/logstash-output-syslog/internal/logging"
	"github.com/anynines/logstash-output-syslog/internal/output"
	"github.com/anynines/logstash-output-syslog/internal/output/stdout"
	outsyslog "github.com/anynines/logstash-output-syslog/internal/output/syslog"
	"github.com/anynines/logstash-output-syslog/internal/pipeline"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile string
		dryRun     bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "syslog-forward",
		Short: "Forward log events to a syslog server",
		Long: `syslog-forward reads events from stdin (NDJSON or plain lines) and
sends each one as a syslog message over UDP, TCP or TLS, reconnecting
transparently when the connection is lost.

Field settings are %{name} templates resolved against each event.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				viper.SetConfigFile(configFile)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logging.Init(dryRun, logging.ParseLevel(logLevel))
			return run(cmd.Context(), cfg, dryRun)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml/toml/json)")
	flags.BoolVar(&dryRun, "dry-run", false, "print framed messages to stdout instead of sending")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flags.String("host", "", "syslog server host (required)")
	flags.Int("port", 0, "syslog server port (required)")
	flags.String("protocol", "udp", "transport: udp, tcp or ssl-tcp")
	flags.String("rfc", "rfc3164", "framing: rfc3164, rfc5424 or rfc6587")
	flags.Duration("reconnect-interval", time.Second, "pause before a tcp/tls reconnect attempt")
	flags.Bool("ssl-verify", false, "verify the server certificate")
	flags.String("ssl-cacert", "", "CA bundle file or directory (PEM)")
	flags.String("ssl-crl", "", "CRL bundle file (PEM)")
	flags.Bool("ssl-crl-check-all", false, "check the whole chain against the CRL, not just the leaf")
	flags.Bool("ssl-reload", false, "reload CA/CRL files when they change on disk")
	flags.Bool("use-labels", true, "compute PRI from facility/severity labels")
	flags.String("priority", "%{syslog_pri}", "numeric PRI template (when --use-labels=false)")
	flags.String("facility", "user-level", "facility label template")
	flags.String("severity", "notice", "severity label template")
	flags.String("sourcehost", "%{host}", "sourcehost template")
	flags.String("appname", "syslog-forward", "appname template")
	flags.String("procid", "-", "procid template")
	flags.String("message", "%{message}", "message body template")
	flags.String("msgid", "-", "msgid template")
	flags.String("structured-data", "", "RFC 5424 structured data template")
	flags.String("charset", "utf-8", "input charset")

	// Flag names use dashes, config keys underscores; env vars like
	// SYSLOG_FORWARD_SSL_CACERT map onto the underscore keys.
	for flagName, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("SYSLOG_FORWARD")
	viper.AutomaticEnv()

	return cmd
}

var flagKeys = map[string]string{
	"host":               "host",
	"port":               "port",
	"protocol":           "protocol",
	"rfc":                "rfc",
	"reconnect-interval": "reconnect_interval",
	"ssl-verify":         "ssl_verify",
	"ssl-cacert":         "ssl_cacert",
	"ssl-crl":            "ssl_crl",
	"ssl-crl-check-all":  "ssl_crl_check_all",
	"ssl-reload":         "ssl_reload",
	"use-labels":         "use_labels",
	"priority":           "priority",
	"facility":           "facility",
	"severity":           "severity",
	"sourcehost":         "sourcehost",
	"appname":            "appname",
	"procid":             "procid",
	"message":            "message",
	"msgid":              "msgid",
	"structured-data":    "structured_data",
	"charset":            "charset",
}

func run(ctx context.Context, cfg config.Config, dryRun bool) error {
	src, err := input.New(os.Stdin, cfg.Charset)
	if err != nil {
		return err
	}

	var out output.Output
	if dryRun {
		out = stdout.New(cfg.Builder())
	} else {
		out, err = outsyslog.New(cfg)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(src, out)
	defer p.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
