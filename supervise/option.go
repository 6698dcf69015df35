package supervise

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/viant/steward/internal/logging"
	"go.uber.org/zap"
)

// Equal reports whether two selector values are the same.
type Equal func(x, y interface{}) bool

type options struct {
	handler ErrorHandler
	logger  *zap.Logger
	equal   Equal
}

// Option configures supervision policies.
type Option func(o *options)

// WithErrorHandler sets the handler receiving contained failures.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(o *options) {
		o.handler = handler
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEqual sets the comparison used by watchers to detect a change.
func WithEqual(equal Equal) Option {
	return func(o *options) {
		o.equal = equal
	}
}

// DeepEqual compares values structurally, unexported fields included.
func DeepEqual(x, y interface{}) bool {
	return cmp.Equal(x, y, cmp.Exporter(func(reflect.Type) bool { return true }))
}

func newOptions(opts []Option) *options {
	ret := &options{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = logging.Default()
	}
	if ret.equal == nil {
		ret.equal = DeepEqual
	}
	return ret
}
