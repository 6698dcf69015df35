package supervise

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
)

// gate decides whether evt triggers a restart and builds the task arguments.
type gate func(ctx context.Context, evt *event.Event, args host.Args) (host.Args, bool, error)

// Supersession is a task that keeps at most one contained worker alive,
// replacing it on every matching event. It runs until its context is
// cancelled or the host closes its channel.
type Supersession struct {
	name           string
	scheduler      host.Scheduler
	pattern        event.Pattern
	task           *Contained
	args           host.Args
	runImmediately bool
	gate           gate

	mu      sync.Mutex
	current host.Handle
}

// RunAndTakeLatest returns a supersession loop that forks task once right
// away with a nil event, then again on every event matching pattern.
func RunAndTakeLatest(h host.Scheduler, pattern event.Pattern, task host.Task, args host.Args, opts ...Option) *Supersession {
	return newSupersession("runAndTakeLatest", h, pattern, TryCatch(h, task, opts...), args, true)
}

// TakeLatestLoop returns a supersession loop that waits for the first event
// matching pattern before forking task.
func TakeLatestLoop(h host.Scheduler, pattern event.Pattern, task host.Task, args host.Args, opts ...Option) *Supersession {
	return newSupersession("takeLatestLoop", h, pattern, TryCatch(h, task, opts...), args, false)
}

func newSupersession(kind string, h host.Scheduler, pattern event.Pattern, task *Contained, args host.Args, runImmediately bool) *Supersession {
	return &Supersession{
		name:           kind + "(" + host.NameOf(task.Original()) + ")",
		scheduler:      h,
		pattern:        pattern,
		task:           task,
		args:           args,
		runImmediately: runImmediately,
	}
}

// Run drives the loop. Arguments passed to Run follow the constructor args.
func (s *Supersession) Run(ctx context.Context, args host.Args) error {
	ch, err := s.scheduler.Channel(ctx, s.pattern)
	if err != nil {
		return err
	}
	defer ch.Close()
	extra := s.args.With(args...)
	if s.runImmediately {
		if err = s.trigger(ctx, nil, extra); err != nil {
			return err
		}
	}
	for {
		evt, err := ch.Take(ctx)
		if err != nil {
			if errors.Is(err, host.ErrClosed) {
				return nil
			}
			return err
		}
		if err = s.trigger(ctx, evt, extra); err != nil {
			return err
		}
	}
}

func (s *Supersession) trigger(ctx context.Context, evt *event.Event, extra host.Args) error {
	taskArgs := extra.With(evt)
	if s.gate != nil {
		var ok bool
		var err error
		if taskArgs, ok, err = s.gate(ctx, evt, extra); err != nil || !ok {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.Cancel(s.current)
	s.current = s.scheduler.Fork(ctx, s.task, taskArgs)
	return nil
}

// Current returns the handle of the last forked worker, nil before the first
// trigger.
func (s *Supersession) Current() host.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TaskName implements host.Namer.
func (s *Supersession) TaskName() string {
	return s.name
}
