package syslog

import (
	"github.com/anynines/logstash-output-syslog/internal/model"
	"github.com/anynines/logstash-output-syslog/internal/template"
)

// Builder renders events into complete syslog messages. Every field is a
// %{name}-style template resolved against the event before formatting.
type Builder struct {
	Framing   Framing
	UseLabels bool

	Priority string // numeric PRI template, used when UseLabels is false
	Facility string
	Severity string

	Sourcehost     string
	Appname        string
	ProcID         string
	MsgID          string
	Message        string
	StructuredData string
}

// Build resolves the builder's templates against the event and formats
// one framed syslog message without the trailing delimiter. Field
// resolution and priority lookup never fail; unresolvable values degrade
// to the documented defaults.
func (b Builder) Build(ev model.Event) string {
	mode := PriorityNumeric
	if b.UseLabels {
		mode = PriorityLabeled
	}
	pri := ResolvePriority(mode,
		template.Resolve(b.Facility, ev),
		template.Resolve(b.Severity, ev),
		template.Resolve(b.Priority, ev))

	return Format(b.Framing, pri, ev.Timestamp,
		template.Resolve(b.Sourcehost, ev),
		template.Resolve(b.Appname, ev),
		template.Resolve(b.ProcID, ev),
		template.Resolve(b.MsgID, ev),
		template.Resolve(b.StructuredData, ev),
		template.Resolve(b.Message, ev))
}
