package sink

import (
	"context"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// Forwarder sends an event to another process.
type Forwarder interface {
	Deliver(ctx context.Context, event *domain.Event) error
}

// Remote forwards alerts to the relay.
type Remote struct {
	// forwarder is usually a relay client.
	forwarder Forwarder
}

// NewRemote creates the relay sink.
func NewRemote(forwarder Forwarder) *Remote {
	return &Remote{
		forwarder: forwarder,
	}
}

// Name returns the sink name.
func (r *Remote) Name() string {
	return "remote"
}

// Deliver forwards the event.
func (r *Remote) Deliver(ctx context.Context, event *domain.Event) error {
	return r.forwarder.Deliver(ctx, event)
}
