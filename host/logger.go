package host

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the host package's logger, a no-op logger until
// SetLogger installs one.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the logger for resolvers created afterwards
// without WithLogger. Nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
