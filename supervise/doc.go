// Package supervise builds supervision policies on top of a host scheduler.
//
// The policies only contain failures and supersede running work; they never
// retry or restart a failed task:
//
//   - TryCatch wraps a task so its failure is reported to an ErrorHandler
//     instead of propagating to the caller.
//   - TakeEvery, TakeLatest and Throttle substitute a contained worker into
//     the host's native listeners, so a failing worker never stops the
//     listener.
//   - Parallel forks a fixed set of contained tasks without waiting for them.
//   - RunAndTakeLatest and TakeLatestLoop cancel the in-flight worker and
//     fork a new one on every matching event.
//   - WatchLatest and RunAndWatchLatest restart the worker only when a value
//     derived from the host state changes.
//
// Example:
//
//	sched := runtime.New(state, reduce)
//	watcher := supervise.RunAndWatchLatest(sched, event.Type("query.changed"),
//		func(s State) string { return s.Query },
//		func(ctx context.Context, query string, evt *event.Event, args host.Args) error {
//			return search(ctx, query)
//		}, nil)
//	handle := sched.Fork(ctx, watcher, nil)
//	defer handle.Cancel()
package supervise
