package ports

import (
	"context"

	"shopify-insights-core/internal/domain"
)

// Delivery is one in-flight message pulled from the queue. ID identifies the
// message to the broker for acknowledgment.
type Delivery struct {
	ID       string
	Envelope *domain.Envelope
}

// Publisher enqueues webhook envelopes durably. Implementations must persist
// the message before Publish returns.
type Publisher interface {
	Publish(ctx context.Context, env *domain.Envelope) error
}

// Consumer pulls envelopes from the durable queue with at-least-once
// semantics and exactly one message in flight per consumer. Ack removes the
// message; Reject moves it to the dead-letter path without requeueing, so a
// poison message can never loop in place.
type Consumer interface {
	Receive(ctx context.Context) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	Reject(ctx context.Context, d *Delivery) error
}
