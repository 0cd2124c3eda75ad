// Package log builds the zap loggers used by node components and carries
// request ids through contexts.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EncoderConsole writes human readable lines.
	EncoderConsole = "console"
	// EncoderJSON writes one json object per line.
	EncoderJSON = "json"
)

// where logs go by default.
var logWriter io.Writer = os.Stdout

// Config for the process logger.
type Config struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
	// Modules overrides the level for specific named loggers, e.g. {"gossip": "debug"}.
	Modules map[string]string `mapstructure:"modules"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Encoder: EncoderConsole,
	}
}

// New creates a logger writing to stdout with the given level and encoder.
func New(level zap.AtomicLevel, encoder string) (*zap.Logger, error) {
	return newWithWriter(zapcore.AddSync(logWriter), level, encoder)
}

func newWithWriter(w zapcore.WriteSyncer, level zap.AtomicLevel, encoder string) (*zap.Logger, error) {
	var enc zapcore.Encoder
	switch encoder {
	case EncoderConsole, "":
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case EncoderJSON:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log encoder %q", encoder)
	}
	return zap.New(zapcore.NewCore(enc, w, level)), nil
}

// FromConfig creates the process logger.
func FromConfig(cfg Config) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return New(lvl, cfg.Encoder)
}

// Named returns a child logger for the module, honoring per-module levels.
func Named(logger *zap.Logger, cfg Config, module string) *zap.Logger {
	named := logger.Named(module)
	lvl, ok := cfg.Modules[module]
	if !ok {
		return named
	}
	level, err := zapcore.ParseLevel(lvl)
	if err != nil {
		logger.Warn("invalid module log level", zap.String("module", module), zap.String("level", lvl))
		return named
	}
	return named.WithOptions(zap.IncreaseLevel(level))
}
