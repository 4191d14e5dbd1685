package syslog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Framing selects the syslog message variant put on the wire.
type Framing int

const (
	// RFC3164 is the legacy BSD syslog format.
	RFC3164 Framing = iota
	// RFC5424 is the structured syslog format.
	RFC5424
	// RFC6587 is the RFC 5424 format with an octet-count prefix.
	RFC6587
)

// ParseFraming parses an rfc configuration value ("rfc3164", "rfc5424"
// or "rfc6587").
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(s) {
	case "rfc3164":
		return RFC3164, nil
	case "rfc5424":
		return RFC5424, nil
	case "rfc6587":
		return RFC6587, nil
	default:
		return RFC3164, fmt.Errorf("syslog: unknown rfc %q", s)
	}
}

func (f Framing) String() string {
	switch f {
	case RFC5424:
		return "rfc5424"
	case RFC6587:
		return "rfc6587"
	default:
		return "rfc3164"
	}
}

// Delimiter returns the byte sequence appended after each message on the
// wire. RFC 6587 messages are self-delimiting through the length prefix
// and carry no trailing delimiter.
func (f Framing) Delimiter() string {
	if f == RFC6587 {
		return ""
	}
	return "\n"
}

// Timestamp layouts. RFC 5424 timestamps use millisecond precision and an
// explicit numeric UTC offset, never "Z".
const (
	stampRFC3164 = "Jan 02 15:04:05"
	stampRFC5424 = "2006-01-02T15:04:05.000-07:00"
)

// Format assembles one complete syslog message for the given framing.
// The caller supplies fully resolved field values; empty structured data
// renders as "-" for RFC 5424/6587. The returned string carries no
// trailing delimiter.
func Format(f Framing, pri int, ts time.Time, sourcehost, appname, procid, msgid, structuredData, body string) string {
	body = NormalizeBody(body)

	if f == RFC3164 {
		return fmt.Sprintf("<%d>%s %s %s[%s]: %s",
			pri, ts.Format(stampRFC3164), sourcehost, appname, procid, body)
	}

	if structuredData == "" {
		structuredData = "-"
	}
	msg := fmt.Sprintf("<%d>1 %s %s %s %s %s %s %s",
		pri, ts.Format(stampRFC5424), sourcehost, appname, procid, msgid, structuredData, body)
	if f == RFC6587 {
		return strconv.Itoa(utf8.RuneCountInString(msg)) + " " + msg
	}
	return msg
}

// NormalizeBody prepares a message body for line-oriented framing: strip
// trailing whitespace, normalize CRLF to LF, then escape every remaining
// LF as the two characters `\n`. The result never contains a raw newline.
func NormalizeBody(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}
