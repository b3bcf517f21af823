package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/host"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

// Request is one call: a guest binary, its inputs, the output capacity for
// buffer profiles, and the calling convention.
type Request struct {
	Module    []byte
	Inputs    [][]byte
	OutputLen uint32
	Profile   abi.Profile
}

// Validate checks the request against its profile.
func (r Request) Validate() error {
	if err := r.Profile.Validate(); err != nil {
		return err
	}
	if len(r.Inputs) != r.Profile.Inputs {
		return errors.InvalidInput(errors.PhaseExec,
			fmt.Sprintf("profile %s takes %d inputs, got %d", r.Profile.Name, r.Profile.Inputs, len(r.Inputs)))
	}
	if !r.Profile.WritesBuffer() && r.OutputLen != 0 {
		return errors.InvalidInput(errors.PhaseExec,
			fmt.Sprintf("profile %s returns a scalar, output length must be 0", r.Profile.Name))
	}
	return nil
}

// Engine executes guests. It holds only immutable configuration and is
// safe for concurrent use; every call gets its own runtime and arena.
type Engine struct {
	cfg      Config
	resolver *host.Resolver
	log      *zap.Logger
}

// New creates an engine. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Engine, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	log := c.Logger
	if log == nil {
		log = Logger()
	}
	return &Engine{
		cfg:      c,
		resolver: host.NewResolver(host.WithLogger(log)),
		log:      log,
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Execute runs one request through load, size, resolve, invoke and extract.
// The runtime, module, arena and instance are released before it returns,
// on every path.
func (e *Engine) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	rt := wazero.NewRuntimeWithConfig(ctx, e.cfg.runtimeConfig())
	defer rt.Close(context.WithoutCancel(ctx))

	res, err := e.execute(ctx, rt, req)
	if err != nil {
		e.log.Debug("execute failed",
			zap.Int("module_size", len(req.Module)),
			zap.String("entry", req.Profile.Entry),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	res.Duration = time.Since(start)
	e.log.Debug("execute",
		zap.Int("module_size", len(req.Module)),
		zap.Uint32("pages", res.Pages),
		zap.String("entry", req.Profile.Entry),
		zap.Stringer("result", res.Kind),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (e *Engine) execute(ctx context.Context, rt wazero.Runtime, req Request) (*Result, error) {
	mod, err := Load(ctx, rt, req.Module)
	if err != nil {
		return nil, err
	}

	layout, err := arena.Plan(e.cfg.Limits, arena.Lengths(req.Inputs), uint64(req.OutputLen))
	if err != nil {
		return nil, err
	}

	mem, err := e.resolver.Resolve(ctx, rt, mod.Imports(), layout.Pages)
	if err != nil {
		return nil, err
	}

	raw, err := Invoke(ctx, rt, mod, mem, layout, req.Inputs, req.Profile)
	if err != nil {
		return nil, err
	}

	res, err := Extract(mem, layout, raw, req.Profile)
	if err != nil {
		return nil, err
	}
	res.Pages = layout.Pages
	return res, nil
}

// Inspection describes a guest without running it.
type Inspection struct {
	// Resolve is the resolver's verdict on the imports, nil if they are
	// acceptable for an arena of the guest's minimum size.
	Resolve  error
	Imports  []wasmbin.Import
	Exports  []Export
	Size     int
	HasStart bool
}

// Inspect loads bin and reports its imports, exports and whether the
// resolver would accept it. No guest code runs.
func (e *Engine) Inspect(ctx context.Context, bin []byte) (*Inspection, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, e.cfg.runtimeConfig())
	defer rt.Close(context.WithoutCancel(ctx))

	mod, err := Load(ctx, rt, bin)
	if err != nil {
		return nil, err
	}

	pages := e.cfg.Limits.MinPages
	for _, imp := range mod.Imports() {
		if imp.Kind == wasmbin.ExternMemory && imp.Limits.Min > pages {
			pages = imp.Limits.Min
		}
	}

	return &Inspection{
		Resolve:  e.resolver.Check(mod.Imports(), pages),
		Imports:  mod.Imports(),
		Exports:  mod.Exports(),
		Size:     mod.Size(),
		HasStart: mod.HasStart(),
	}, nil
}
