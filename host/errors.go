package host

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned when waiting on a closed channel.
var ErrClosed = errors.New("host: channel closed")

// PanicError carries a value recovered from a panicking task.
type PanicError struct {
	Task  string
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %v panicked: %v", e.Task, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsCancellation reports whether err signals cooperative cancellation rather
// than a failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
