package supervise

import (
	"context"
	"sync"

	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
)

// Selector derives the watched value from the host state. It must not have
// side effects.
type Selector[S, V any] func(state S) V

// Worker handles a changed value. evt is nil when the worker runs before any
// event was taken.
type Worker[V any] func(ctx context.Context, value V, evt *event.Event, args host.Args) error

// Watcher is a supersession loop restarting its worker only when the
// selected value changed since the last trigger.
type Watcher[S, V any] struct {
	*Supersession
	state    host.StateReader[S]
	selector Selector[S, V]
	equal    Equal

	mu       sync.Mutex
	last     V
	observed bool
}

// WatchLatest returns a watcher evaluating selector on every event matching
// pattern.
func WatchLatest[S, V any](h host.Host[S], pattern event.Pattern, selector Selector[S, V], worker Worker[V], args host.Args, opts ...Option) *Watcher[S, V] {
	return newWatcher("watchLatest", h, pattern, selector, worker, args, false, opts)
}

// RunAndWatchLatest is WatchLatest that also evaluates selector, and runs
// the worker, before waiting for the first event.
func RunAndWatchLatest[S, V any](h host.Host[S], pattern event.Pattern, selector Selector[S, V], worker Worker[V], args host.Args, opts ...Option) *Watcher[S, V] {
	return newWatcher("runAndWatchLatest", h, pattern, selector, worker, args, true, opts)
}

func newWatcher[S, V any](kind string, h host.Host[S], pattern event.Pattern, selector Selector[S, V], worker Worker[V], args host.Args, runImmediately bool, opts []Option) *Watcher[S, V] {
	o := newOptions(opts)
	task := host.Named(host.FuncName(worker), host.Func(func(ctx context.Context, args host.Args) error {
		value, _ := args[0].(V)
		evt, _ := args[1].(*event.Event)
		return worker(ctx, value, evt, args[2:])
	}))
	ret := &Watcher[S, V]{
		state:    h,
		selector: selector,
		equal:    o.equal,
	}
	ret.Supersession = newSupersession(kind, h, pattern, TryCatch(h, task, opts...), args, runImmediately)
	ret.Supersession.gate = ret.changed
	return ret
}

// changed selects the current value and reports whether it differs from the
// last observed one. An unset value never equals a selected one.
func (w *Watcher[S, V]) changed(ctx context.Context, evt *event.Event, extra host.Args) (host.Args, bool, error) {
	state, err := w.state.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	value := w.selector(state)
	w.mu.Lock()
	if w.observed && w.equal(w.last, value) {
		w.mu.Unlock()
		return nil, false, nil
	}
	w.last, w.observed = value, true
	w.mu.Unlock()
	return host.Args{value, evt}.With(extra...), true, nil
}

// Last returns the last observed value; ok is false before the first
// evaluation.
func (w *Watcher[S, V]) Last() (value V, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.observed
}
