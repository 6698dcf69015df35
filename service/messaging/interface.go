// Package messaging defines the queue abstraction that buffers events for a
// single subscriber.
package messaging

import (
	"context"
	"errors"
)

// ErrQueueClosed is returned by operations on a closed queue.
var ErrQueueClosed = errors.New("messaging: queue closed")

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available, ctx is done or the queue is closed.
	Consume(ctx context.Context) (Message[T], error)

	// Poll retrieves a message without blocking.
	Poll() (Message[T], bool)

	// Close releases the queue; pending messages are discarded.
	Close() error
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message identifier
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error
}
