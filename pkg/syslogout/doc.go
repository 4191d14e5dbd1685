// Package syslogout sends events to a syslog server over UDP, TCP or
// TLS, in RFC 3164, RFC 5424 or octet-counted RFC 6587 framing.
//
// Quick start:
//
//	s, err := syslogout.New("syslog.example.com", 514)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.Send(ctx, syslogout.Event{Message: "deploy finished", Host: "web-1"})
//
// The sender owns a single connection and delivers one event at a time;
// on a TCP/TLS failure it reconnects and resends until delivery succeeds
// or the context is cancelled. Create once and reuse; it is not safe for
// concurrent use.
package syslogout
