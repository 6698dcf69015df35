// Package steward provides supervision policies for cooperative tasks.
//
// Tasks run on a host scheduler that dispatches events, keeps a global state
// and forks, calls and cancels tasks. The repository ships:
//
//   - host      – the scheduler contract supervision builds upon
//   - runtime   – the reference scheduler with a reducer driven state
//   - supervise – error containment, triggered spawning, fan-out and
//     supersession loops
//
// End-users typically wire the scheduler through the Service façade
// exposed by the root package:
//
//	srv, _ := steward.New(State{}, reduce)
//	srv.Start(ctx, supervise.RunAndWatchLatest(srv.Scheduler(), event.Any(), selectQuery, search, nil))
//	_ = srv.Dispatch(ctx, event.New("query.changed", "go"))
//	defer srv.Shutdown(ctx)
//
// For more details see the individual sub-packages.
package steward
