// Package input reads line-oriented events from a stream. JSON object
// lines become field maps; anything else becomes a plain message event.
package input

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/anynines/logstash-output-syslog/internal/model"
)

const maxLineSize = 1 << 20 // 1MB

// Source reads events from a reader, one line per event.
type Source struct {
	scanner  *bufio.Scanner
	hostname string
	now      func() time.Time
}

// New creates a source reading from r. The stream is transcoded to UTF-8
// from the given charset (IANA/WHATWG name, e.g. "utf-8", "iso-8859-1");
// an unknown charset is a setup error.
func New(r io.Reader, charset string) (*Source, error) {
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("input: unknown charset %q: %w", charset, err)
		}
		if enc != unicode.UTF8 {
			r = transform.NewReader(r, enc.NewDecoder())
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	return &Source{scanner: scanner, hostname: hostname, now: time.Now}, nil
}

// Next returns the next event. It returns io.EOF when the stream ends
// and skips blank lines.
func (s *Source) Next() (model.Event, error) {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return s.parse(line), nil
	}
	if err := s.scanner.Err(); err != nil {
		return model.Event{}, fmt.Errorf("input: %w", err)
	}
	return model.Event{}, io.EOF
}

// parse turns one line into an event. Lines that look like JSON objects
// are decoded into fields; everything else is a plain message.
func (s *Source) parse(line string) model.Event {
	ev := model.Event{
		Timestamp: s.now(),
		Message:   line,
		Host:      s.hostname,
	}

	if !strings.HasPrefix(line, "{") {
		return ev
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return ev
	}

	if v, ok := fields["@timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			ev.Timestamp = ts
		}
		delete(fields, "@timestamp")
	}
	if v, ok := fields["message"].(string); ok {
		ev.Message = v
		delete(fields, "message")
	}
	if v, ok := fields["host"].(string); ok {
		ev.Host = v
		delete(fields, "host")
	}
	ev.Fields = fields
	return ev
}
