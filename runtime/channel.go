package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/steward/host"
	"github.com/viant/steward/internal/idgen"
	"github.com/viant/steward/model/event"
	"github.com/viant/steward/service/messaging"
	"github.com/viant/steward/service/messaging/memory"
)

// subscription buffers events matching a pattern for a single consumer.
type subscription struct {
	id        string
	pattern   event.Pattern
	queue     *memory.Queue[*event.Event]
	engine    *engine
	mu        sync.Mutex
	stop      func() bool
	closeOnce sync.Once
}

func newSubscription(e *engine, pattern event.Pattern, buffer int) *subscription {
	return &subscription{
		id:      idgen.Prefixed("subscription"),
		pattern: pattern,
		queue:   memory.NewQueue[*event.Event](memory.Config{QueueBuffer: buffer}),
		engine:  e,
	}
}

func (s *subscription) setStop(stop func() bool) {
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

// Take returns the next buffered event, waiting if none is available.
func (s *subscription) Take(ctx context.Context) (*event.Event, error) {
	msg, err := s.queue.Consume(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, messaging.ErrQueueClosed) {
			return nil, host.ErrClosed
		}
		return nil, err
	}
	_ = msg.Ack()
	return *msg.T(), nil
}

// latest drains the buffer and returns the most recent event, if any.
func (s *subscription) latest() (*event.Event, bool) {
	var ret *event.Event
	for {
		msg, ok := s.queue.Poll()
		if !ok {
			return ret, ret != nil
		}
		_ = msg.Ack()
		ret = *msg.T()
	}
}

// Close unregisters the subscription; pending events are dropped.
func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.engine.subscriptions.Delete(s.id)
		_ = s.queue.Close()
		s.mu.Lock()
		stop := s.stop
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
	return nil
}
