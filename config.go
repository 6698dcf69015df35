package steward

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/steward/internal/envexpr"
	"github.com/viant/steward/internal/logging"
	"github.com/viant/steward/service/messaging/memory"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. Keys
// missing from a loaded document keep their DefaultConfig values.
type Config struct {
	Runtime RuntimeConfig  `json:"runtime" yaml:"runtime"`
	Logging logging.Config `json:"logging" yaml:"logging"`
	Tracing TracingConfig  `json:"tracing" yaml:"tracing"`
}

// RuntimeConfig configures the scheduler.
type RuntimeConfig struct {
	// ChannelBuffer is the number of events buffered per subscription.
	ChannelBuffer int `json:"channelBuffer" yaml:"channelBuffer"`
}

// TracingConfig configures the OpenTelemetry stdout exporter. An empty
// OutputFile writes to stdout.
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{ChannelBuffer: memory.DefaultConfig().QueueBuffer},
		Logging: logging.Config{Level: "info"},
		Tracing: TracingConfig{ServiceName: "steward", ServiceVersion: "dev"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Runtime.ChannelBuffer <= 0 {
		errs = append(errs, fmt.Errorf("runtime.channelBuffer must be > 0"))
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("logging.level: %w", err))
		}
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = append(errs, fmt.Errorf("tracing.serviceName is required when tracing is enabled"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config from URL. ${env.KEY} expressions are
// expanded before decoding.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(envexpr.Expand(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
