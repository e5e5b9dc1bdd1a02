// Package logging builds the zap logger and adapts it to the display core's Logger interface.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// New builds a logger from cfg. An unparseable level falls back to info.
func New(cfg Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	if cfg.Output != "" {
		config.OutputPaths = []string{cfg.Output}
	}

	return config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// Core adapts a zap logger to the display core's Logger interface.
type Core struct {
	s *zap.SugaredLogger
}

// NewCore wraps l. Caller annotations point at the core's call site rather than this adapter.
func NewCore(l *zap.Logger) *Core {
	return &Core{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (c *Core) Debug(msg string) { c.s.Debug(msg) }

func (c *Core) Debugf(format string, v ...any) { c.s.Debugf(format, v...) }

func (c *Core) Info(msg string) { c.s.Info(msg) }

func (c *Core) Infof(format string, v ...any) { c.s.Infof(format, v...) }

func (c *Core) Warnf(format string, v ...any) { c.s.Warnf(format, v...) }

func (c *Core) Errorf(format string, v ...any) { c.s.Errorf(format, v...) }
