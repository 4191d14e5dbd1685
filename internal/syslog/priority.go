// Package syslog implements the syslog wire format (RFC 3164, RFC 5424
// and RFC 6587 octet-counted framing) and the UDP/TCP/TLS transports
// used to deliver it.
package syslog

import "strconv"

// FacilityLabels maps facility index to label, in wire order.
var FacilityLabels = []string{
	"kernel",
	"user-level",
	"mail",
	"daemon",
	"security/authorization",
	"syslogd",
	"line printer",
	"network news",
	"uucp",
	"clock",
	"ftp",
	"ntp",
	"log audit",
	"log alert",
	"local0",
	"local1",
	"local2",
	"local3",
	"local4",
	"local5",
	"local6",
	"local7",
}

// SeverityLabels maps severity index to label, in wire order.
var SeverityLabels = []string{
	"emergency",
	"alert",
	"critical",
	"error",
	"warning",
	"notice",
	"informational",
	"debug",
}

// Historical RFC 3164 defaults: user-level facility, notice severity,
// priority 13. Downstream consumers depend on the exact value 13.
const (
	defaultFacilityIndex = 1 // user-level
	defaultSeverityIndex = 5 // notice

	// DefaultPriority is the PRI substituted whenever a priority cannot
	// be resolved.
	DefaultPriority = 13

	maxPriority = 191
)

// PriorityMode selects how a message's PRI value is computed.
type PriorityMode int

const (
	// PriorityLabeled computes PRI from facility and severity labels.
	PriorityLabeled PriorityMode = iota
	// PriorityNumeric takes PRI from a raw integer string.
	PriorityNumeric
)

// ResolvePriority computes the syslog PRI value for a message. In labeled
// mode unknown labels fall back to user-level and notice respectively; in
// numeric mode unparsable or out-of-range values fall back to
// DefaultPriority. The result is always in [0, 191].
func ResolvePriority(mode PriorityMode, facility, severity, rawPriority string) int {
	if mode == PriorityNumeric {
		n, err := strconv.Atoi(rawPriority)
		if err != nil || n < 0 || n > maxPriority {
			return DefaultPriority
		}
		return n
	}
	return labelIndex(FacilityLabels, facility, defaultFacilityIndex)*8 +
		labelIndex(SeverityLabels, severity, defaultSeverityIndex)
}

func labelIndex(labels []string, label string, fallback int) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return fallback
}
