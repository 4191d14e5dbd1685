package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/anynines/logstash-output-syslog/internal/model"
	"github.com/anynines/logstash-output-syslog/internal/output"
)

// Source yields events one at a time; io.EOF ends the stream.
type Source interface {
	Next() (model.Event, error)
}

// Pipeline connects a source to an output. Events are processed strictly
// one at a time: an event is fully delivered, including any reconnect
// retries inside the output, before the next one is read. A stalled
// destination therefore backpressures intake naturally.
type Pipeline struct {
	source Source
	output output.Output
}

// New creates a Pipeline from the given components.
func New(src Source, out output.Output) *Pipeline {
	return &Pipeline{source: src, output: out}
}

// Run processes events until the source is exhausted or the context is
// cancelled. Delivery errors (e.g. a refused connect) are logged and the
// event is dropped; outer retry is this layer's responsibility, and it
// chooses to move on to the next event.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		event, err := p.source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}

		if err := p.output.Write(ctx, event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("pipeline: event dropped", "error", err)
		}
	}
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
