package supervise

import (
	"errors"

	"github.com/viant/steward/host"
	"go.uber.org/zap"
)

// ErrorHandler receives the failure of a contained task. A panicking handler
// is not recovered here; the host reports it as a failure of the enclosing
// task.
type ErrorHandler func(err error)

// LogHandler returns a handler logging failures of the named task at error
// level.
func LogHandler(logger *zap.Logger, name string) ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error) {
		fields := []zap.Field{zap.String("task", name), zap.Error(err)}
		var panicErr *host.PanicError
		if errors.As(err, &panicErr) {
			fields = append(fields, zap.ByteString("stack", panicErr.Stack))
		}
		logger.Error("task failed", fields...)
	}
}
