package host

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Args is the ordered list of trailing arguments passed to a task.
type Args []interface{}

// With returns a copy of args with values appended.
func (a Args) With(values ...interface{}) Args {
	ret := make(Args, 0, len(a)+len(values))
	ret = append(ret, a...)
	return append(ret, values...)
}

// Task is a unit of work run by the host. It observes cancellation through
// ctx and reports failure by returning a non-nil error.
type Task interface {
	Run(ctx context.Context, args Args) error
}

// Func adapts a function to a Task.
type Func func(ctx context.Context, args Args) error

// Run implements Task.
func (f Func) Run(ctx context.Context, args Args) error {
	return f(ctx, args)
}

// Namer is implemented by tasks that report their own name.
type Namer interface {
	TaskName() string
}

type named struct {
	name string
	task Task
}

func (n *named) Run(ctx context.Context, args Args) error { return n.task.Run(ctx, args) }

func (n *named) TaskName() string { return n.name }

// Named returns task reporting name for logging and tracing.
func Named(name string, task Task) Task {
	return &named{name: name, task: task}
}

// NameOf returns a diagnostic name of task.
func NameOf(task Task) string {
	switch actual := task.(type) {
	case nil:
		return "<nil>"
	case Namer:
		return actual.TaskName()
	case Func:
		return FuncName(actual)
	}
	return fmt.Sprintf("%T", task)
}

// FuncName returns the short symbol name of fn, or its type when fn is not
// a function.
func FuncName(fn interface{}) string {
	value := reflect.ValueOf(fn)
	if value.Kind() != reflect.Func || value.IsNil() {
		return fmt.Sprintf("%T", fn)
	}
	f := runtime.FuncForPC(value.Pointer())
	if f == nil {
		return fmt.Sprintf("%T", fn)
	}
	name := f.Name()
	if index := strings.LastIndex(name, "/"); index != -1 {
		name = name[index+1:]
	}
	return name
}
