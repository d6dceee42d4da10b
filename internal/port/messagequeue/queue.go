// Package messagequeue defines the message subscription port.
package messagequeue

import "context"

// Handler processes a message received from the bus.
type Handler func(ctx context.Context, subject string, data []byte) error

// Subscriber receives messages from the bus.
type Subscriber interface {
	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the connection.
	Close() error

	// IsConnected reports whether the bus is currently connected.
	IsConnected() bool
}

// Publisher sends messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
