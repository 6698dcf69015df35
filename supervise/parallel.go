package supervise

import (
	"context"

	"github.com/viant/steward/host"
)

type parallel struct {
	scheduler host.Scheduler
	tasks     []*Contained
}

// Parallel returns a task forking every task, contained, in order. It returns
// once all forks are issued and does not wait for them.
func Parallel(h host.Scheduler, tasks []host.Task, opts ...Option) host.Task {
	ret := &parallel{scheduler: h, tasks: make([]*Contained, 0, len(tasks))}
	for _, task := range tasks {
		ret.tasks = append(ret.tasks, TryCatch(h, task, opts...))
	}
	return ret
}

func (p *parallel) Run(ctx context.Context, args host.Args) error {
	for _, task := range p.tasks {
		p.scheduler.Fork(ctx, task, args)
	}
	return nil
}

func (p *parallel) TaskName() string {
	return "parallel"
}
