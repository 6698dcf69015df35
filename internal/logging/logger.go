// Package logging builds the zap logger shared by the runtime and the
// default supervision error handler.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level       string `json:"level,omitempty" yaml:"level,omitempty"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty"`
}

// New builds a logger from config. An empty level means "info".
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}

var (
	mux           sync.RWMutex
	defaultLogger *zap.Logger
	initOnce      sync.Once
)

// Default returns the process logger. Unless SetDefault was called it is a
// production logger, or a no-op logger if that cannot be built.
func Default() *zap.Logger {
	initOnce.Do(func() {
		mux.Lock()
		defer mux.Unlock()
		if defaultLogger != nil {
			return
		}
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		defaultLogger = logger
	})
	mux.RLock()
	defer mux.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process logger. A nil logger installs a no-op one.
func SetDefault(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	initOnce.Do(func() {})
	mux.Lock()
	defaultLogger = logger
	mux.Unlock()
}
