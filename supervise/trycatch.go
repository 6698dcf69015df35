package supervise

import (
	"context"

	"github.com/viant/steward/host"
	"github.com/viant/steward/progress"
)

// Contained runs a task through the host and reports its failure instead of
// returning it.
type Contained struct {
	scheduler host.Scheduler
	task      host.Task
	handler   ErrorHandler
}

// TryCatch wraps task so its failures never reach the caller. Without
// WithErrorHandler failures are logged.
func TryCatch(h host.Scheduler, task host.Task, opts ...Option) *Contained {
	o := newOptions(opts)
	handler := o.handler
	if handler == nil {
		handler = LogHandler(o.logger, host.NameOf(task))
	}
	return &Contained{scheduler: h, task: task, handler: handler}
}

// Run calls the wrapped task with args. It returns nil on failure and the
// cancellation error when ctx was cancelled.
func (c *Contained) Run(ctx context.Context, args host.Args) error {
	err := c.scheduler.Call(ctx, c.task, args)
	if err == nil {
		return nil
	}
	if host.IsCancellation(err) && ctx.Err() != nil {
		return err
	}
	c.handler(err)
	progress.UpdateCtx(ctx, progress.Delta{Contained: 1})
	return nil
}

// Original returns the wrapped task. It is meant for diagnostics only.
func (c *Contained) Original() host.Task {
	return c.task
}

// TaskName implements host.Namer.
func (c *Contained) TaskName() string {
	return "tryCatch(" + host.NameOf(c.task) + ")"
}
