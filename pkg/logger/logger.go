// Package logger constructs the structured loggers every other package in
// this module accepts by constructor injection. It wraps go.uber.org/zap,
// the logging library the teacher codebase standardizes on, rather than
// introducing a second logging convention.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured *zap.SugaredLogger tagged with the
// given service name, matching the engine's expectation of one logger per
// datefile session.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		// Fall back to a minimal logger rather than leave callers with a nil
		// pointer; this only happens if the process's stderr sink is broken.
		log = zap.NewNop()
	}

	return log.Sugar().Named(service)
}

// NewNop returns a logger that discards everything, for tests and for
// embedders who want the engine silent by default.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// NewDevelopment builds a human-readable, colorized logger suitable for a
// local CLI session, matching the verbosity a developer debugging add/search
// calls would want.
func NewDevelopment(service string) *zap.SugaredLogger {
	log, err := zap.NewDevelopment()
	if err != nil {
		return NewNop()
	}
	return log.Sugar().Named(service)
}
