package runtime

import (
	"context"
	"sync"

	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
	"github.com/viant/steward/tracing"
)

// Reducer folds an event into the state. It must return a new value rather
// than mutate shared data, since snapshots are handed to tasks as is.
type Reducer[S any] func(state S, evt *event.Event) S

// Scheduler is the reference host implementation over state S.
type Scheduler[S any] struct {
	*engine
	mu      sync.RWMutex
	state   S
	reducer Reducer[S]
}

// New creates a scheduler with initial state; reducer may be nil.
func New[S any](initial S, reducer Reducer[S], opts ...Option) *Scheduler[S] {
	return &Scheduler[S]{
		engine:  newEngine(opts),
		state:   initial,
		reducer: reducer,
	}
}

// Snapshot returns the current state.
func (s *Scheduler[S]) Snapshot(ctx context.Context) (S, error) {
	if ctx != nil && ctx.Err() != nil {
		var zero S
		return zero, ctx.Err()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

// Update replaces the state with fn(state).
func (s *Scheduler[S]) Update(fn func(state S) S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
}

// Dispatch reduces evt into the state, then delivers it to every matching
// subscription. It blocks while a subscriber buffer is full.
func (s *Scheduler[S]) Dispatch(ctx context.Context, evt *event.Event) error {
	if evt == nil {
		return ErrNilEvent
	}
	if s.isClosed() {
		return ErrShutdown
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "dispatch "+evt.Type, tracing.KindProducer)
	if s.reducer != nil {
		s.Update(func(state S) S { return s.reducer(state, evt) })
	}
	err := s.publish(ctx, evt)
	tracing.EndSpan(span, err)
	return err
}

var _ host.Host[int] = (*Scheduler[int])(nil)
