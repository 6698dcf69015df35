package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
	"github.com/viant/steward/tracing"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var spans = tracetest.NewInMemoryExporter()

func TestMain(m *testing.M) {
	if err := tracing.InitWithExporter("runtime-test", "0.0.1", spans); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

type counterState struct {
	Count int
	Last  string
}

func reduce(state counterState, evt *event.Event) counterState {
	return counterState{Count: state.Count + 1, Last: evt.Type}
}

func newTestScheduler(t *testing.T, opts ...Option) *Scheduler[counterState] {
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	sched := New(counterState{}, reduce, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, sched.Shutdown(ctx))
	})
	return sched
}

func blockUntilCancelled(ctx context.Context, _ host.Args) error {
	<-ctx.Done()
	return ctx.Err()
}

func waitDone(t *testing.T, handle host.Handle) {
	t.Helper()
	select {
	case <-handle.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("task %v did not finish", handle.Name())
	}
}

func waitSubscribers(t *testing.T, sched *Scheduler[counterState], count int) {
	t.Helper()
	require.Eventually(t, func() bool { return sched.Subscribers() == count }, 2*time.Second, time.Millisecond)
}

func TestScheduler_ForkAndCancel(t *testing.T) {
	sched := newTestScheduler(t)
	ctx := context.Background()

	handle := sched.Fork(ctx, host.Func(blockUntilCancelled), nil)
	assert.Equal(t, host.StatusRunning, handle.Status())
	assert.NotEmpty(t, handle.ID())
	assert.Equal(t, "runtime.blockUntilCancelled", handle.Name())

	sched.Cancel(handle)
	sched.Cancel(handle)
	waitDone(t, handle)
	assert.Equal(t, host.StatusCancelled, handle.Status())
	assert.ErrorIs(t, handle.Err(), context.Canceled)

	done := sched.Fork(ctx, host.Func(func(ctx context.Context, args host.Args) error { return nil }), nil)
	waitDone(t, done)
	sched.Cancel(done)
	sched.Cancel(nil)
	assert.Equal(t, host.StatusDone, done.Status())
	assert.NoError(t, done.Err())
}

func TestScheduler_Call(t *testing.T) {
	sched := newTestScheduler(t)
	ctx := context.Background()
	boom := errors.New("boom")

	testCases := []struct {
		name   string
		task   host.Func
		expect func(t *testing.T, err error)
	}{
		{
			name: "success with args",
			task: func(ctx context.Context, args host.Args) error {
				if len(args) != 2 || args[1] != "b" {
					return errors.New("unexpected args")
				}
				return nil
			},
			expect: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:   "failure",
			task:   func(ctx context.Context, args host.Args) error { return boom },
			expect: func(t *testing.T, err error) { assert.ErrorIs(t, err, boom) },
		},
		{
			name: "panic",
			task: func(ctx context.Context, args host.Args) error { panic("kaboom") },
			expect: func(t *testing.T, err error) {
				var panicErr *host.PanicError
				require.ErrorAs(t, err, &panicErr)
				assert.Equal(t, "kaboom", panicErr.Value)
				assert.NotEmpty(t, panicErr.Stack)
			},
		},
		{
			name: "forked child failure surfaces through call",
			task: func(ctx context.Context, args host.Args) error {
				sched.Fork(ctx, host.Func(func(ctx context.Context, args host.Args) error { return boom }), nil)
				return nil
			},
			expect: func(t *testing.T, err error) { assert.ErrorIs(t, err, boom) },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, sched.Call(ctx, tc.task, host.Args{"a", "b"}))
		})
	}
}

func TestScheduler_ChildFailureFailsParent(t *testing.T) {
	sched := newTestScheduler(t)
	boom := errors.New("boom")
	siblingCancelled := make(chan struct{})

	parent := sched.Fork(context.Background(), host.Func(func(ctx context.Context, args host.Args) error {
		sched.Fork(ctx, host.Func(func(ctx context.Context, args host.Args) error {
			<-ctx.Done()
			close(siblingCancelled)
			return ctx.Err()
		}), nil)
		sched.Fork(ctx, host.Func(func(ctx context.Context, args host.Args) error { return boom }), nil)
		<-ctx.Done()
		return ctx.Err()
	}), nil)

	waitDone(t, parent)
	assert.Equal(t, host.StatusFailed, parent.Status())
	assert.ErrorIs(t, parent.Err(), boom)
	select {
	case <-siblingCancelled:
	default:
		t.Fatal("sibling was not cancelled")
	}
}

func TestScheduler_ParentJoinsChildren(t *testing.T) {
	sched := newTestScheduler(t)
	release := make(chan struct{})
	var child host.Handle
	parent := sched.Fork(context.Background(), host.Func(func(ctx context.Context, args host.Args) error {
		child = sched.Fork(ctx, host.Func(func(ctx context.Context, args host.Args) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}), nil)
		return nil
	}), nil)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, host.StatusRunning, parent.Status())
	close(release)
	waitDone(t, parent)
	assert.Equal(t, host.StatusDone, parent.Status())
	assert.Equal(t, host.StatusDone, child.Status())

	// cancelling a parent cancels its children
	forked := make(chan host.Handle, 1)
	parent = sched.Fork(context.Background(), host.Func(func(ctx context.Context, args host.Args) error {
		forked <- sched.Fork(ctx, host.Func(blockUntilCancelled), nil)
		return nil
	}), nil)
	child = <-forked
	parent.Cancel()
	waitDone(t, parent)
	assert.Equal(t, host.StatusCancelled, parent.Status())
	assert.Equal(t, host.StatusCancelled, child.Status())
}

func TestScheduler_DispatchReducesBeforeTakers(t *testing.T) {
	sched := newTestScheduler(t)
	observed := make(chan counterState, 1)
	handle := sched.Fork(context.Background(), host.Func(func(ctx context.Context, args host.Args) error {
		evt, err := sched.Take(ctx, event.Type("increment"))
		if err != nil {
			return err
		}
		state, err := sched.Snapshot(ctx)
		if err != nil {
			return err
		}
		state.Last = evt.Type
		observed <- state
		return nil
	}), nil)
	waitSubscribers(t, sched, 1)

	require.NoError(t, sched.Dispatch(context.Background(), event.New("ignored", nil)))
	require.NoError(t, sched.Dispatch(context.Background(), event.New("increment", nil)))
	waitDone(t, handle)
	assert.Equal(t, counterState{Count: 2, Last: "increment"}, <-observed)
	assert.Equal(t, 0, sched.Subscribers())
	assert.ErrorIs(t, sched.Dispatch(context.Background(), nil), ErrNilEvent)

	sched.Update(func(state counterState) counterState { return counterState{Count: 10} })
	state, err := sched.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, state.Count)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sched.Snapshot(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_ChannelBuffersEvents(t *testing.T) {
	sched := newTestScheduler(t, WithChannelBuffer(8))
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := sched.Channel(ctx, event.Type("tick"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, sched.Dispatch(context.Background(), event.New("tick", i)))
	}
	for i := 0; i < 3; i++ {
		evt, err := ch.Take(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, evt.Data)
	}

	cancel()
	require.Eventually(t, func() bool { return sched.Subscribers() == 0 }, time.Second, time.Millisecond)
	_, err = ch.Take(context.Background())
	assert.ErrorIs(t, err, host.ErrClosed)

	_, err = sched.Channel(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilPattern)
}

func TestScheduler_TakeEveryFailsOnWorkerError(t *testing.T) {
	sched := newTestScheduler(t)
	boom := errors.New("boom")
	var mu sync.Mutex
	var received []interface{}
	worker := host.Func(func(ctx context.Context, args host.Args) error {
		evt := args[1].(*event.Event)
		mu.Lock()
		received = append(received, args[0], evt.Data)
		mu.Unlock()
		if evt.Data == "bad" {
			return boom
		}
		return nil
	})

	listener := sched.TakeEvery(context.Background(), event.Type("job"), worker, host.Args{"extra"})
	waitSubscribers(t, sched, 1)
	require.NoError(t, sched.Dispatch(context.Background(), event.New("job", "ok")))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, host.StatusRunning, listener.Status())

	require.NoError(t, sched.Dispatch(context.Background(), event.New("job", "bad")))
	waitDone(t, listener)
	assert.Equal(t, host.StatusFailed, listener.Status())
	assert.ErrorIs(t, listener.Err(), boom)
	assert.Equal(t, []interface{}{"extra", "ok", "extra", "bad"}, received)
}

func TestScheduler_TakeLatestCancelsPrevious(t *testing.T) {
	sched := newTestScheduler(t)
	handles := make(chan context.Context, 3)
	worker := host.Func(func(ctx context.Context, args host.Args) error {
		handles <- ctx
		<-ctx.Done()
		return ctx.Err()
	})
	listener := sched.TakeLatest(context.Background(), event.Type("query"), worker, nil)
	waitSubscribers(t, sched, 1)

	require.NoError(t, sched.Dispatch(context.Background(), event.New("query", "a")))
	first := <-handles
	require.NoError(t, sched.Dispatch(context.Background(), event.New("query", "b")))
	second := <-handles

	<-first.Done()
	assert.NoError(t, second.Err())
	listener.Cancel()
	waitDone(t, listener)
	assert.Error(t, second.Err())
	assert.Equal(t, host.StatusCancelled, listener.Status())
}

func TestScheduler_ThrottleCollapsesBursts(t *testing.T) {
	sched := newTestScheduler(t)
	received := make(chan interface{}, 10)
	worker := host.Func(func(ctx context.Context, args host.Args) error {
		received <- args[0].(*event.Event).Data
		return nil
	})
	listener := sched.Throttle(context.Background(), 200*time.Millisecond, event.Type("resize"), worker, nil)
	waitSubscribers(t, sched, 1)

	for i := 1; i <= 5; i++ {
		require.NoError(t, sched.Dispatch(context.Background(), event.New("resize", i)))
	}
	assert.Equal(t, 1, <-received)
	select {
	case v := <-received:
		assert.Equal(t, 5, v)
	case <-time.After(2 * time.Second):
		t.Fatal("throttled event was not delivered")
	}
	select {
	case v := <-received:
		t.Fatalf("unexpected delivery: %v", v)
	case <-time.After(300 * time.Millisecond):
	}
	listener.Cancel()
	waitDone(t, listener)
}

func TestScheduler_UnhandledRootFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	sched := New(counterState{}, nil, WithLogger(zap.New(core)))
	defer sched.Shutdown(context.Background())

	handle := sched.Fork(context.Background(), host.Named("failing", host.Func(func(ctx context.Context, args host.Args) error {
		return errors.New("boom")
	})), nil)
	waitDone(t, handle)

	entries := logs.FilterMessage("unhandled task failure").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "failing", entries[0].ContextMap()["task"])
}

func TestScheduler_Progress(t *testing.T) {
	sched := newTestScheduler(t)
	ctx := context.Background()
	_ = sched.Call(ctx, host.Func(func(ctx context.Context, args host.Args) error { return nil }), nil)
	_ = sched.Call(ctx, host.Func(func(ctx context.Context, args host.Args) error { return errors.New("x") }), nil)
	cancelled := sched.Fork(ctx, host.Func(blockUntilCancelled), nil)
	cancelled.Cancel()
	waitDone(t, cancelled)

	snapshot := sched.Progress().Snapshot()
	assert.Equal(t, 3, snapshot.SpawnedTasks)
	assert.Equal(t, 1, snapshot.CompletedTasks)
	assert.Equal(t, 1, snapshot.FailedTasks)
	assert.Equal(t, 1, snapshot.CancelledTasks)
	assert.Equal(t, 0, snapshot.RunningTasks)
	assert.Equal(t, 0, sched.Running())
}

func TestScheduler_Shutdown(t *testing.T) {
	sched := New(counterState{}, reduce, WithLogger(zap.NewNop()))
	ctx := context.Background()
	running := sched.Fork(ctx, host.Func(blockUntilCancelled), nil)
	listener := sched.TakeEvery(ctx, event.Any(), host.Func(blockUntilCancelled), nil)
	waitSubscribers(t, sched, 1)

	require.NoError(t, sched.Shutdown(ctx))
	assert.Equal(t, host.StatusCancelled, running.Status())
	assert.ErrorIs(t, running.Err(), ErrShutdown)
	assert.Equal(t, host.StatusCancelled, listener.Status())
	assert.Equal(t, 0, sched.Subscribers())

	late := sched.Fork(ctx, host.Func(blockUntilCancelled), nil)
	assert.Equal(t, host.StatusCancelled, late.Status())
	assert.ErrorIs(t, sched.Call(ctx, host.Func(blockUntilCancelled), nil), ErrShutdown)
	assert.ErrorIs(t, sched.Dispatch(ctx, event.New("x", nil)), ErrShutdown)
	_, err := sched.Channel(ctx, event.Any())
	assert.ErrorIs(t, err, ErrShutdown)
}

// timingOut fails with the deadline of its own inner context while its task
// context stays live.
func timingOut(ctx context.Context, _ host.Args) error {
	inner, cancel := context.WithTimeout(ctx, time.Millisecond)
	defer cancel()
	<-inner.Done()
	return inner.Err()
}

func TestScheduler_OwnTimeoutIsFailure(t *testing.T) {
	sched := newTestScheduler(t)
	ctx := context.Background()

	handle := sched.Fork(ctx, host.Func(timingOut), nil)
	waitDone(t, handle)
	assert.Equal(t, host.StatusFailed, handle.Status())
	assert.ErrorIs(t, handle.Err(), context.DeadlineExceeded)

	err := sched.Call(ctx, host.Func(func(ctx context.Context, args host.Args) error {
		sched.Fork(ctx, host.Func(timingOut), nil)
		return nil
	}), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	listener := sched.TakeEvery(ctx, event.Type("job"), host.Func(func(ctx context.Context, args host.Args) error {
		sched.Fork(ctx, host.Func(timingOut), nil)
		return nil
	}), nil)
	waitSubscribers(t, sched, 1)
	require.NoError(t, sched.Dispatch(ctx, event.New("job", nil)))
	waitDone(t, listener)
	assert.Equal(t, host.StatusFailed, listener.Status())
	assert.ErrorIs(t, listener.Err(), context.DeadlineExceeded)
}

func TestScheduler_ListenerSpans(t *testing.T) {
	spans.Reset()
	sched := newTestScheduler(t)
	boom := errors.New("boom")
	listener := sched.TakeEvery(context.Background(), event.Type("job"), host.Named("worker", host.Func(func(ctx context.Context, args host.Args) error {
		return boom
	})), nil)
	waitSubscribers(t, sched, 1)
	require.NoError(t, sched.Dispatch(context.Background(), event.New("job", nil)))
	waitDone(t, listener)

	var consumed, propagated bool
	for _, span := range spans.GetSpans() {
		if span.Name == "takeEvery(worker) job" && span.SpanKind == oteltrace.SpanKindConsumer {
			consumed = true
		}
		for _, spanEvent := range span.Events {
			if span.Name == "worker" && spanEvent.Name == "failure propagated to takeEvery(worker)" {
				propagated = true
			}
		}
	}
	assert.True(t, consumed, "consumer span per taken event")
	assert.True(t, propagated, "failure event on the worker span")
}
