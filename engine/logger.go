package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the engine package's logger, a no-op logger until
// SetLogger installs one.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the engine package's logger. Engines created
// afterwards without Config.Logger use it. Nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
