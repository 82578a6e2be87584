// Package eventbus provides a simple publish/subscribe event bus. Caches
// publish to it so applications can react to credential changes, e.g. by
// restarting a replication that stopped for lack of a Persona assertion.
package eventbus

import "context"

// Handler processes a published message. Returned errors are logged.
type Handler func(ctx context.Context, msg *Message) error

// Message is a single delivery of a published event to one handler.
type Message struct {
	ID    string
	Topic string
	Data  any
}

// NewMessage returns a message for topic.
func NewMessage(id, topic string, data any) *Message {
	return &Message{ID: id, Topic: topic, Data: data}
}

// EventBus provides a simple publish/subscribe interface.
type EventBus interface {
	// Subscribe registers handler for topic. Handlers may be called
	// concurrently and should not assume any delivery order.
	Subscribe(topic string, handler Handler)

	// Publish sends data to every subscriber of topic without waiting for
	// them.
	Publish(topic string, data any)

	// Wait blocks until all published messages have been handled or ctx is
	// done.
	Wait(ctx context.Context) error
}
