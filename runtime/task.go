package runtime

import (
	"context"
	"sync"

	"github.com/viant/steward/host"
	"github.com/viant/steward/progress"
	"go.uber.org/zap"
)

type taskKeyT struct{}

var taskKey taskKeyT

// task is the runtime node behind a host.Handle. A task is terminal once its
// Run returned and all its children are terminal.
type task struct {
	id       string
	name     string
	parent   *task
	engine   *engine
	ctx      context.Context
	cancel   context.CancelCauseFunc
	done     chan struct{}
	children sync.WaitGroup

	mu      sync.Mutex
	status  host.Status
	err     error
	failure error
	joining bool
}

func taskFromContext(ctx context.Context) *task {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(taskKey).(*task)
	return t
}

// ID returns the task id.
func (t *task) ID() string { return t.id }

// Name returns the task name.
func (t *task) Name() string { return t.name }

// Done returns a channel closed when the task finished.
func (t *task) Done() <-chan struct{} { return t.done }

// Status returns the task status.
func (t *task) Status() host.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the terminal error, if any.
func (t *task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Cancel requests cancellation of a running task.
func (t *task) Cancel() {
	t.mu.Lock()
	running := t.status == host.StatusRunning
	t.mu.Unlock()
	if running {
		t.cancel(context.Canceled)
	}
}

// attach registers a child; it reports false once the task stopped
// accepting children.
func (t *task) attach() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.joining {
		return false
	}
	t.children.Add(1)
	return true
}

// join waits for all children after Run returned.
func (t *task) join() {
	t.mu.Lock()
	t.joining = true
	t.mu.Unlock()
	t.children.Wait()
}

// fail records the failure of a forked child and cancels the task with it.
func (t *task) fail(err error) {
	t.mu.Lock()
	if t.failure == nil {
		t.failure = err
	}
	t.mu.Unlock()
	t.cancel(err)
}

// finish classifies the outcome once Run returned and children are done.
// failed reports whether runErr is a failure rather than a cancellation.
func (t *task) finish(runErr error, failed bool) (host.Status, error) {
	t.mu.Lock()
	var status host.Status
	var err error
	switch {
	case t.failure != nil:
		status, err = host.StatusFailed, t.failure
	case failed:
		status, err = host.StatusFailed, runErr
	case t.ctx.Err() != nil:
		status, err = host.StatusCancelled, t.ctx.Err()
		if cause := context.Cause(t.ctx); host.IsCancellation(cause) {
			err = cause
		}
	default:
		status = host.StatusDone
	}
	t.status, t.err = status, err
	t.mu.Unlock()

	t.engine.tasks.Delete(t.id)
	delta := progress.Delta{Running: -1}
	switch status {
	case host.StatusDone:
		delta.Completed = 1
	case host.StatusFailed:
		delta.Failed = 1
	case host.StatusCancelled:
		delta.Cancelled = 1
	}
	t.engine.progress.Update(delta)
	t.engine.logger.Debug("task finished",
		zap.String("task", t.name),
		zap.String("id", t.id),
		zap.Stringer("status", status),
		zap.Error(err))
	return status, err
}

// release frees the task context and detaches it from its parent.
func (t *task) release() {
	close(t.done)
	t.cancel(errReleased)
	if t.parent != nil {
		t.parent.children.Done()
	}
}
