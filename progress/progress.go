package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change. Fields are signed.
type Delta struct {
	Spawned   int
	Running   int
	Completed int
	Failed    int
	Cancelled int
	Contained int
}

// Progress keeps aggregated task counters. It is safe for concurrent use.
type Progress struct {
	Name      string
	StartedAt time.Time

	SpawnedTasks   int
	RunningTasks   int
	CompletedTasks int
	FailedTasks    int
	CancelledTasks int
	// ContainedFailures counts failures intercepted by error containment.
	ContainedFailures int

	mu       sync.Mutex
	onChange func(Progress)
}

// New creates a tracker. onChange may be nil.
func New(name string, onChange func(Progress)) *Progress {
	return &Progress{Name: name, StartedAt: time.Now(), onChange: onChange}
}

// Update applies the supplied delta. The onChange callback, if any, is
// invoked with a copy outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.SpawnedTasks += d.Spawned
	p.RunningTasks += d.Running
	p.CompletedTasks += d.Completed
	p.FailedTasks += d.Failed
	p.CancelledTasks += d.Cancelled
	p.ContainedFailures += d.Contained
	snapshot := p.copy()
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		Name:              p.Name,
		StartedAt:         p.StartedAt,
		SpawnedTasks:      p.SpawnedTasks,
		RunningTasks:      p.RunningTasks,
		CompletedTasks:    p.CompletedTasks,
		FailedTasks:       p.FailedTasks,
		CancelledTasks:    p.CancelledTasks,
		ContainedFailures: p.ContainedFailures,
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds tracker in ctx.
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok && tr != nil
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
