package runtime

import (
	"github.com/viant/steward/internal/logging"
	"github.com/viant/steward/progress"
	"github.com/viant/steward/service/messaging/memory"
	"go.uber.org/zap"
)

type options struct {
	logger        *zap.Logger
	channelBuffer int
	progress      *progress.Progress
}

// Option configures a Scheduler.
type Option func(o *options)

// WithLogger sets the scheduler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithChannelBuffer sets the number of events buffered per subscription.
func WithChannelBuffer(size int) Option {
	return func(o *options) {
		o.channelBuffer = size
	}
}

// WithProgress sets the tracker receiving task counters.
func WithProgress(tracker *progress.Progress) Option {
	return func(o *options) {
		o.progress = tracker
	}
}

func newOptions(opts []Option) *options {
	ret := &options{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = logging.Default()
	}
	if ret.channelBuffer <= 0 {
		ret.channelBuffer = memory.DefaultConfig().QueueBuffer
	}
	if ret.progress == nil {
		ret.progress = progress.New("runtime", nil)
	}
	return ret
}
