package stdout

import (
	"context"
	"fmt"
	"os"

	"github.com/anynines/logstash-output-syslog/internal/model"
	protocol "github.com/anynines/logstash-output-syslog/internal/syslog"
)

// Output prints each framed syslog message to stdout instead of sending
// it, one message per line. Used for dry runs.
type Output struct {
	builder protocol.Builder
}

// New creates a stdout output rendering messages with the given builder.
func New(builder protocol.Builder) *Output {
	return &Output{builder: builder}
}

func (o *Output) Write(_ context.Context, event model.Event) error {
	if _, err := fmt.Fprintln(os.Stdout, o.builder.Build(event)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
