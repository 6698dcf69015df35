package supervise

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
)

// fakeHost runs forked tasks inline and records every fork and cancel, so
// tests can assert the exact order of operations. Its state is the data of
// the last taken event.
type fakeHost struct {
	events chan *event.Event

	mu      sync.Mutex
	ops     []string
	handles []*fakeHandle
	state   string
	taken   int
}

func newFakeHost(initial string) *fakeHost {
	return &fakeHost{events: make(chan *event.Event), state: initial}
}

func (h *fakeHost) record(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)
}

func (h *fakeHost) Ops() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ops...)
}

func (h *fakeHost) Taken() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.taken
}

type fakeChannel struct {
	host *fakeHost
}

func (c *fakeChannel) Take(ctx context.Context) (*event.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case evt, ok := <-c.host.events:
		if !ok {
			return nil, host.ErrClosed
		}
		c.host.mu.Lock()
		c.host.taken++
		if data, ok := evt.Data.(string); ok {
			c.host.state = data
		}
		c.host.mu.Unlock()
		return evt, nil
	}
}

func (c *fakeChannel) Close() error { return nil }

func (h *fakeHost) Take(ctx context.Context, pattern event.Pattern) (*event.Event, error) {
	return (&fakeChannel{host: h}).Take(ctx)
}

func (h *fakeHost) Channel(ctx context.Context, pattern event.Pattern) (host.Channel, error) {
	h.record("channel")
	return &fakeChannel{host: h}, nil
}

func (h *fakeHost) Call(ctx context.Context, task host.Task, args host.Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &host.PanicError{Task: host.NameOf(task), Value: r}
		}
	}()
	return task.Run(ctx, args)
}

func (h *fakeHost) Fork(ctx context.Context, task host.Task, args host.Args) host.Handle {
	h.mu.Lock()
	handle := &fakeHandle{host: h, id: len(h.handles) + 1, args: args, status: host.StatusRunning, done: make(chan struct{})}
	h.handles = append(h.handles, handle)
	h.ops = append(h.ops, fmt.Sprintf("fork %d", handle.id))
	h.mu.Unlock()
	handle.finish(task.Run(ctx, args))
	return handle
}

func (h *fakeHost) Cancel(handle host.Handle) {
	if handle != nil {
		handle.Cancel()
	}
}

func (h *fakeHost) TakeEvery(ctx context.Context, pattern event.Pattern, task host.Task, args host.Args) host.Handle {
	return h.listen("takeEvery", task)
}

func (h *fakeHost) TakeLatest(ctx context.Context, pattern event.Pattern, task host.Task, args host.Args) host.Handle {
	return h.listen("takeLatest", task)
}

func (h *fakeHost) Throttle(ctx context.Context, interval time.Duration, pattern event.Pattern, task host.Task, args host.Args) host.Handle {
	return h.listen(fmt.Sprintf("throttle %v", interval), task)
}

func (h *fakeHost) listen(kind string, task host.Task) host.Handle {
	h.record(kind + " " + host.NameOf(task))
	return &fakeHandle{host: h, status: host.StatusRunning, done: make(chan struct{})}
}

func (h *fakeHost) Snapshot(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, nil
}

type fakeHandle struct {
	host   *fakeHost
	id     int
	args   host.Args
	mu     sync.Mutex
	status host.Status
	err    error
	done   chan struct{}
}

func (f *fakeHandle) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.status = host.StatusDone
	if err != nil {
		f.status = host.StatusFailed
	}
	close(f.done)
}

func (f *fakeHandle) ID() string            { return fmt.Sprint(f.id) }
func (f *fakeHandle) Name() string          { return "fake" }
func (f *fakeHandle) Done() <-chan struct{} { return f.done }

func (f *fakeHandle) Status() host.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeHandle) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeHandle) Cancel() {
	f.host.record(fmt.Sprintf("cancel %d", f.id))
}

var _ host.Host[string] = (*fakeHost)(nil)
