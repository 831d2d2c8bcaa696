// Package logging builds the zap logger duscan threads through the
// walker and renderer, the way TFMV-stride's internal/walk package
// threads a *zap.Logger through its traversal instead of calling the
// log package directly.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level selects logging verbosity.
type Level int

const (
	// Normal logs warnings and above.
	Normal Level = iota
	// Verbose logs debug-level traversal detail.
	Verbose
	// Silent suppresses everything but errors.
	Silent
)

// New builds a console-encoded zap logger at the requested level,
// writing to stderr so stdout stays reserved for rendered output.
func New(level Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	switch level {
	case Verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case Silent:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	return cfg.Build()
}

// Nop returns a logger that discards everything, used by library
// callers and tests that don't want traversal chatter.
func Nop() *zap.Logger {
	return zap.NewNop()
}
