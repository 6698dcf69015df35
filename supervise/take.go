package supervise

import (
	"context"
	"time"

	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
)

// TakeEvery forks a contained task for every event matching pattern. The task
// receives args followed by the event.
func TakeEvery(ctx context.Context, h host.Scheduler, pattern event.Pattern, task host.Task, args host.Args, opts ...Option) host.Handle {
	return h.TakeEvery(ctx, pattern, TryCatch(h, task, opts...), args)
}

// TakeLatest is TakeEvery where the host cancels the previous task before
// forking the next one.
func TakeLatest(ctx context.Context, h host.Scheduler, pattern event.Pattern, task host.Task, args host.Args, opts ...Option) host.Handle {
	return h.TakeLatest(ctx, pattern, TryCatch(h, task, opts...), args)
}

// Throttle is TakeEvery limited by the host to one fork per interval.
func Throttle(ctx context.Context, h host.Scheduler, interval time.Duration, pattern event.Pattern, task host.Task, args host.Args, opts ...Option) host.Handle {
	return h.Throttle(ctx, interval, pattern, TryCatch(h, task, opts...), args)
}
