package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viant/steward/internal/clock"
	"github.com/viant/steward/internal/idgen"
	"github.com/viant/steward/service/messaging"
)

// ErrAlreadyAcked is returned when a message is acknowledged twice.
var ErrAlreadyAcked = errors.New("memory: message already acknowledged")

// Config for memory queue implementation
type Config struct {
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		QueueBuffer: 100,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id        string
	payload   T
	mu        sync.Mutex
	acked     bool
	createdAt time.Time
}

// ID returns the message id
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// CreatedAt returns the publish time
func (m *Message[T]) CreatedAt() time.Time {
	return m.createdAt
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acked {
		return ErrAlreadyAcked
	}
	m.acked = true
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages  chan *Message[T]
	closed    chan struct{}
	closeOnce sync.Once
	config    Config
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		closed:   make(chan struct{}),
		config:   config,
	}
}

// Publish adds a new item to the queue, blocking while the buffer is full
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	select {
	case <-q.closed:
		return messaging.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		createdAt: clock.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-q.closed:
		return messaging.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case <-q.closed:
		return nil, messaging.ErrQueueClosed
	default:
	}
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-q.closed:
		return nil, messaging.ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Poll retrieves an item if one is buffered
func (q *Queue[T]) Poll() (messaging.Message[T], bool) {
	select {
	case <-q.closed:
		return nil, false
	default:
	}
	select {
	case msg := <-q.messages:
		return msg, true
	default:
		return nil, false
	}
}

// Close closes the queue; it is safe to call more than once
func (q *Queue[T]) Close() error {
	q.closeOnce.Do(func() { close(q.closed) })
	return nil
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
