package host

// Status represents the lifecycle state of a task.
type Status int

const (
	StatusRunning Status = iota
	StatusDone
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s != StatusRunning
}

// Handle is the ownership token of a forked task.
type Handle interface {
	// ID returns the task identifier.
	ID() string
	// Name returns the diagnostic task name.
	Name() string
	// Status returns the current lifecycle state.
	Status() Status
	// Done is closed once the task reached a terminal status.
	Done() <-chan struct{}
	// Err returns the failure or cancellation error once done, nil otherwise.
	Err() error
	// Cancel requests cooperative cancellation. It is a no-op once the task
	// finished and may be called any number of times.
	Cancel()
}
