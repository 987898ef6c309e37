// logging.go — zap logger construction for the CLI and server binaries.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger, switched to debug level when verbose
// is set, mirroring the production/debug split the CLI tooling in the
// retrieved corpus uses for its own root command.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// NewNop returns a logger that discards everything, for tests and library
// callers that haven't configured logging.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
