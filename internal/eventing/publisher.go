package eventing

import (
	"context"
	"errors"

	"github.com/ju4700/ZKTecho-sub001/internal/eventing/eventbus"
)

// Publisher wraps events in envelopes before dispatching on the bus, so
// idempotent consumers can key on the event id.
type Publisher struct {
	bus eventbus.EventBus
}

// NewPublisher constructs a publisher.
func NewPublisher(bus eventbus.EventBus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish builds an envelope and dispatches the event.
func (p *Publisher) Publish(ctx context.Context, event any) error {
	if p == nil || p.bus == nil {
		return errors.New("eventing: nil bus")
	}
	env, err := BuildEnvelope(event, Meta{})
	if err != nil {
		return err
	}
	return p.bus.Publish(WithEnvelope(ctx, env), event)
}
