package model

import (
	"fmt"
	"time"
)

// Event is one log record flowing through the forwarder.
type Event struct {
	Timestamp time.Time
	Message   string         // message body
	Host      string         // originating host
	Fields    map[string]any // free-form event fields
}

// Field returns the named field rendered as a string. The well-known
// names "message" and "host" resolve to the corresponding struct fields;
// everything else is looked up in Fields. Returns ("", false) when the
// field is absent.
func (e Event) Field(name string) (string, bool) {
	switch name {
	case "message":
		return e.Message, true
	case "host":
		return e.Host, true
	}
	v, ok := e.Fields[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
