// Package runtime provides the reference host scheduler.
//
// A Scheduler owns a typed global state folded from dispatched events by a
// reducer, delivers events to subscriptions, and runs tasks on goroutines.
// Tasks form a tree: a forked task's context derives from its parent's, so
// cancellation flows down, and a forked task's failure fails its parent.
// Use package supervise to contain those failures.
//
//	sched := runtime.New(State{}, reduce)
//	defer sched.Shutdown(ctx)
//	handle := sched.Fork(ctx, supervise.RunAndTakeLatest(sched, event.Type("query"), search, nil), nil)
//	_ = sched.Dispatch(ctx, event.New("query", "go"))
package runtime
