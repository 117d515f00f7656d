// Package event publishes transaction change events on an in-process
// bus. Subscribers (webhook forwarders, audit sinks) register against
// the status-changed topic and run sequentially per publication.
package event

import (
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// TopicStatusChanged is the bus topic for transaction status changes.
const TopicStatusChanged = "transaction:status_changed"

// Publisher implements platformrpc.EventPublisher over an EventBus.
type Publisher struct {
	bus EventBus.Bus
}

// NewPublisher creates a Publisher with its own bus.
func NewPublisher() *Publisher {
	return &Publisher{bus: EventBus.New()}
}

// PublishStatusChanged emits a status-changed event. The event id is
// assigned here; the transaction snapshot is the post-mutation record.
func (p *Publisher) PublishStatusChanged(evt platformrpc.TransactionEvent) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Type == "" {
		evt.Type = platformrpc.EventTypeTransactionStatusChanged
	}
	p.bus.Publish(TopicStatusChanged, evt)
}

// Subscribe registers a handler for status-changed events. Handlers
// execute sequentially in registration order.
func (p *Publisher) Subscribe(fn func(platformrpc.TransactionEvent)) error {
	return p.bus.Subscribe(TopicStatusChanged, fn)
}

// Unsubscribe removes a previously registered handler.
func (p *Publisher) Unsubscribe(fn func(platformrpc.TransactionEvent)) error {
	return p.bus.Unsubscribe(TopicStatusChanged, fn)
}

var _ platformrpc.EventPublisher = (*Publisher)(nil)
