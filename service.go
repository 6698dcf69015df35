package steward

import (
	"context"
	"fmt"

	"github.com/viant/steward/host"
	"github.com/viant/steward/internal/logging"
	"github.com/viant/steward/model/event"
	"github.com/viant/steward/progress"
	"github.com/viant/steward/runtime"
	"github.com/viant/steward/tracing"
	"go.uber.org/zap"
)

// Service wires logging, tracing and progress around a runtime scheduler
// holding state S.
type Service[S any] struct {
	config    *Config
	logger    *zap.Logger
	progress  *progress.Progress
	scheduler *runtime.Scheduler[S]
}

// New creates a service with initial state; reducer may be nil.
func New[S any](initial S, reducer runtime.Reducer[S], opts ...Option) (*Service[S], error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.config == nil {
		o.config = DefaultConfig()
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ret := &Service[S]{config: o.config, logger: o.logger}
	if ret.logger == nil {
		logger, err := logging.New(o.config.Logging)
		if err != nil {
			return nil, err
		}
		ret.logger = logger
		logging.SetDefault(logger)
	}
	if err := ret.initTracing(o); err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	ret.progress = progress.New(o.config.Tracing.ServiceName, o.onProgress)
	ret.scheduler = runtime.New(initial, reducer,
		runtime.WithLogger(ret.logger),
		runtime.WithChannelBuffer(o.config.Runtime.ChannelBuffer),
		runtime.WithProgress(ret.progress))
	return ret, nil
}

func (s *Service[S]) initTracing(o *options) error {
	cfg := o.config.Tracing
	switch {
	case o.exporter != nil:
		return tracing.InitWithExporter(cfg.ServiceName, cfg.ServiceVersion, o.exporter)
	case cfg.Enabled:
		return tracing.Init(cfg.ServiceName, cfg.ServiceVersion, cfg.OutputFile)
	}
	return nil
}

// Scheduler returns the underlying host scheduler.
func (s *Service[S]) Scheduler() *runtime.Scheduler[S] {
	return s.scheduler
}

// Config returns the effective configuration.
func (s *Service[S]) Config() *Config {
	return s.config
}

// Logger returns the service logger.
func (s *Service[S]) Logger() *zap.Logger {
	return s.logger
}

// Start forks every task as a root task and returns their handles.
func (s *Service[S]) Start(ctx context.Context, tasks ...host.Task) []host.Handle {
	handles := make([]host.Handle, 0, len(tasks))
	for _, task := range tasks {
		handle := s.scheduler.Fork(ctx, task, nil)
		s.logger.Info("root task started", zap.String("task", handle.Name()), zap.String("id", handle.ID()))
		handles = append(handles, handle)
	}
	return handles
}

// Dispatch delivers evt to the scheduler.
func (s *Service[S]) Dispatch(ctx context.Context, evt *event.Event) error {
	return s.scheduler.Dispatch(ctx, evt)
}

// Snapshot returns the current state.
func (s *Service[S]) Snapshot(ctx context.Context) (S, error) {
	return s.scheduler.Snapshot(ctx)
}

// Progress returns a copy of the task counters.
func (s *Service[S]) Progress() progress.Progress {
	return s.progress.Snapshot()
}

// Shutdown stops the scheduler and flushes the logger.
func (s *Service[S]) Shutdown(ctx context.Context) error {
	err := s.scheduler.Shutdown(ctx)
	_ = s.logger.Sync()
	return err
}
