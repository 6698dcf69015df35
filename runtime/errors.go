package runtime

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrShutdown is the cancellation cause of tasks stopped by Shutdown.
	ErrShutdown = fmt.Errorf("runtime: scheduler shut down: %w", context.Canceled)

	// ErrNilEvent is returned when dispatching a nil event.
	ErrNilEvent = errors.New("runtime: nil event")

	// errReleased cancels the context of a finished task with no live children.
	errReleased = errors.New("runtime: task released")
)
