package alert

import (
	"context"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// Sink receives accepted alert events.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	// Deliver presents the event. It may block; it runs on a pool worker.
	Deliver(ctx context.Context, event *domain.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc struct {
	// SinkName is returned by Name.
	SinkName string
	// Fn is called by Deliver.
	Fn func(ctx context.Context, event *domain.Event) error
}

// Name returns the sink name.
func (s SinkFunc) Name() string {
	return s.SinkName
}

// Deliver calls Fn.
func (s SinkFunc) Deliver(ctx context.Context, event *domain.Event) error {
	return s.Fn(ctx, event)
}
