package host

import (
	"context"
	"time"

	"github.com/viant/steward/model/event"
)

// Channel is a persistent subscription to events matching a pattern.
// Events are buffered between Take calls, so none is missed while the
// subscriber is busy.
type Channel interface {
	// Take blocks until the next matching event, ctx is done, or the channel
	// is closed (ErrClosed).
	Take(ctx context.Context) (*event.Event, error)
	// Close releases the subscription.
	Close() error
}

// Scheduler exposes the task primitives supervision policies build upon.
type Scheduler interface {
	// Take suspends until an event matching pattern is dispatched.
	Take(ctx context.Context, pattern event.Pattern) (*event.Event, error)
	// Channel opens a subscription for pattern.
	Channel(ctx context.Context, pattern event.Pattern) (Channel, error)
	// Call runs task inline and returns its failure.
	Call(ctx context.Context, task Task, args Args) error
	// Fork starts task without waiting. The child is cancelled with ctx and
	// its failure is reported to the task owning ctx.
	Fork(ctx context.Context, task Task, args Args) Handle
	// Cancel cancels handle; nil or finished handles are ignored.
	Cancel(handle Handle)
	// TakeEvery forks task for each event matching pattern.
	TakeEvery(ctx context.Context, pattern event.Pattern, task Task, args Args) Handle
	// TakeLatest forks task for each event matching pattern, cancelling the
	// previous instance first.
	TakeLatest(ctx context.Context, pattern event.Pattern, task Task, args Args) Handle
	// Throttle forks task for matching events at most once per interval.
	Throttle(ctx context.Context, interval time.Duration, pattern event.Pattern, task Task, args Args) Handle
}

// StateReader exposes the current global state.
type StateReader[S any] interface {
	Snapshot(ctx context.Context) (S, error)
}

// Host is a scheduler with access to a typed global state.
type Host[S any] interface {
	Scheduler
	StateReader[S]
}
