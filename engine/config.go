package engine

import (
	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-sandbox/arena"
)

// Config holds configuration for engine creation
type Config struct {
	// Logger receives debug output for each call. Nil uses the package logger.
	Logger *zap.Logger

	// Limits bound every arena. MaxPages defaults to 1600 (100 MiB) and may
	// not exceed 65536 (4 GiB).
	Limits arena.Limits

	// Compiler selects wazero's compiler instead of the interpreter.
	// Only supported on amd64 and arm64.
	Compiler bool

	// CloseOnContextDone stops a running guest when the call's context is
	// cancelled or times out. The guest sees a trap.
	CloseOnContextDone bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Limits: arena.DefaultLimits(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return c.Limits.Validate()
}

func (c Config) runtimeConfig() wazero.RuntimeConfig {
	var rc wazero.RuntimeConfig
	if c.Compiler {
		rc = wazero.NewRuntimeConfigCompiler()
	} else {
		rc = wazero.NewRuntimeConfigInterpreter()
	}
	return rc.
		WithMemoryLimitPages(c.Limits.MaxPages).
		WithCloseOnContextDone(c.CloseOnContextDone)
}
