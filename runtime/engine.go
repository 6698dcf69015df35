package runtime

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/viant/steward/host"
	"github.com/viant/steward/internal/idgen"
	"github.com/viant/steward/internal/store"
	"github.com/viant/steward/model/event"
	"github.com/viant/steward/progress"
	"github.com/viant/steward/service/messaging"
	"github.com/viant/steward/tracing"
	"go.uber.org/zap"
)

// ErrNilPattern is returned when subscribing without a pattern.
var ErrNilPattern = errors.New("runtime: nil pattern")

// engine runs tasks and routes events; it is independent of the state type.
type engine struct {
	*options
	tasks         *store.MemoryStore[string, task]
	subscriptions *store.MemoryStore[string, subscription]
	mu            sync.Mutex
	closed        bool
	wg            sync.WaitGroup
}

func newEngine(opts []Option) *engine {
	return &engine{
		options:       newOptions(opts),
		tasks:         store.NewMemoryStore[string, task](func(t *task) string { return t.id }),
		subscriptions: store.NewMemoryStore[string, subscription](func(s *subscription) string { return s.id }),
	}
}

func (e *engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *engine) newTask(ctx context.Context, fn host.Task) *task {
	if ctx == nil {
		ctx = context.Background()
	}
	parent := taskFromContext(ctx)
	if parent != nil && !parent.attach() {
		parent = nil
	}
	taskCtx, cancel := context.WithCancelCause(ctx)
	t := &task{
		id:     idgen.Prefixed("task"),
		name:   host.NameOf(fn),
		parent: parent,
		engine: e,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	taskCtx = context.WithValue(taskCtx, taskKey, t)
	t.ctx = progress.WithTracker(taskCtx, e.progress)
	e.tasks.Put(t)
	e.progress.Update(progress.Delta{Spawned: 1, Running: 1})
	return t
}

func (e *engine) run(t *task, fn host.Task, args host.Args, forked bool) error {
	ctx, span := tracing.StartSpan(t.ctx, t.name, tracing.KindInternal)
	span.WithAttributes(map[string]string{"task.id": t.id})
	runErr := e.invoke(ctx, t, fn, args)
	// a cancellation error counts as one only while the task context is done
	failed := runErr != nil && !(t.ctx.Err() != nil && host.IsCancellation(runErr))
	if failed {
		// a failed task takes its children down with it
		t.cancel(runErr)
	}
	t.join()
	status, err := t.finish(runErr, failed)
	if forked && status == host.StatusFailed {
		if t.parent != nil {
			span.AddEvent("failure propagated to " + t.parent.name)
			t.parent.fail(err)
		} else {
			e.unhandled(t, err)
		}
	}
	if status == host.StatusCancelled {
		tracing.EndCancelled(span)
	} else {
		tracing.EndSpan(span, err)
	}
	t.release()
	return err
}

func (e *engine) invoke(ctx context.Context, t *task, fn host.Task, args host.Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &host.PanicError{Task: t.name, Value: r, Stack: debug.Stack()}
		}
	}()
	return fn.Run(ctx, args)
}

func (e *engine) unhandled(t *task, err error) {
	e.logger.Error("unhandled task failure",
		zap.String("task", t.name),
		zap.String("id", t.id),
		zap.Error(err))
}

// Call runs fn inline and waits for it and its children.
func (e *engine) Call(ctx context.Context, fn host.Task, args host.Args) error {
	if e.isClosed() {
		return ErrShutdown
	}
	t := e.newTask(ctx, fn)
	return e.run(t, fn, args, false)
}

// Fork starts fn on its own goroutine as a child of the task owning ctx.
func (e *engine) Fork(ctx context.Context, fn host.Task, args host.Args) host.Handle {
	t := e.newTask(ctx, fn)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		t.cancel(ErrShutdown)
		t.finish(ErrShutdown, false)
		t.release()
		return t
	}
	e.wg.Add(1)
	e.mu.Unlock()
	e.logger.Debug("task forked", zap.String("task", t.name), zap.String("id", t.id))
	go func() {
		defer e.wg.Done()
		_ = e.run(t, fn, args, true)
	}()
	return t
}

// Cancel cancels handle; nil and finished handles are ignored.
func (e *engine) Cancel(handle host.Handle) {
	if handle == nil {
		return
	}
	handle.Cancel()
}

// Channel opens a subscription closed automatically when ctx is done.
func (e *engine) Channel(ctx context.Context, pattern event.Pattern) (host.Channel, error) {
	if pattern == nil {
		return nil, ErrNilPattern
	}
	sub := newSubscription(e, pattern, e.channelBuffer)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrShutdown
	}
	e.subscriptions.Put(sub)
	e.mu.Unlock()
	if ctx != nil {
		sub.setStop(context.AfterFunc(ctx, func() { _ = sub.Close() }))
	}
	return sub, nil
}

// Take waits for the next event matching pattern.
func (e *engine) Take(ctx context.Context, pattern event.Pattern) (*event.Event, error) {
	ch, err := e.Channel(ctx, pattern)
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	return ch.Take(ctx)
}

func (e *engine) publish(ctx context.Context, evt *event.Event) error {
	for _, sub := range e.subscriptions.List() {
		if !sub.pattern.Match(evt) {
			continue
		}
		if err := sub.queue.Publish(ctx, &evt); err != nil {
			if errors.Is(err, messaging.ErrQueueClosed) {
				continue
			}
			return err
		}
	}
	return nil
}

// Subscribers returns the number of open subscriptions.
func (e *engine) Subscribers() int {
	return e.subscriptions.Len()
}

// Running returns the number of live tasks.
func (e *engine) Running() int {
	return e.tasks.Len()
}

// Progress returns the task counters.
func (e *engine) Progress() *progress.Progress {
	return e.progress
}

// Shutdown cancels every live task, closes subscriptions and waits for
// forked goroutines or ctx.
func (e *engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	for _, t := range e.tasks.List() {
		t.cancel(ErrShutdown)
	}
	for _, sub := range e.subscriptions.List() {
		_ = sub.Close()
	}
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
