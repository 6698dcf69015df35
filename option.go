package steward

import (
	"github.com/viant/steward/progress"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type options struct {
	config     *Config
	logger     *zap.Logger
	exporter   sdktrace.SpanExporter
	onProgress func(progress.Progress)
}

// Option configures a Service.
type Option func(o *options)

// WithConfig sets the service configuration; DefaultConfig is used otherwise.
func WithConfig(config *Config) Option {
	return func(o *options) {
		o.config = config
	}
}

// WithLogger sets the logger instead of building one from Config.Logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin. It takes precedence over
// Config.Tracing. The first successful initialisation wins.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exporter
	}
}

// WithProgressListener sets a callback invoked with a copy of the task
// counters on every change.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(o *options) {
		o.onProgress = listener
	}
}
