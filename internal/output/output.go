package output

import (
	"context"

	"github.com/anynines/logstash-output-syslog/internal/model"
)

// Output defines the interface for event destinations. Write blocks
// until the event is delivered or dropped; callers drive one event at a
// time.
type Output interface {
	Write(ctx context.Context, event model.Event) error
	Close() error
}
