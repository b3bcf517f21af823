package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

const (
	// Namespace is the import module name the arena is served under.
	Namespace = "env"
	// MemoryName is the import name of the arena memory.
	MemoryName = "memory"
)

// Resolver binds a guest's imports to host capabilities. The only
// capability served is the arena memory; any other import is refused.
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	caps   map[Key]Capability
	memory Key
	log    *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMemory serves the arena under a different import name.
func WithMemory(namespace, name string) Option {
	return func(r *Resolver) {
		r.memory = Key{Namespace: namespace, Name: name}
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver creates a resolver serving the arena at env.memory.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		memory: Key{Namespace: Namespace, Name: MemoryName},
		log:    Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.caps = map[Key]Capability{r.memory: ArenaMemory{}}
	return r
}

// MemoryKey returns where the arena is served.
func (r *Resolver) MemoryKey() Key {
	return r.memory
}

// Check validates imports against the capability table without
// instantiating anything.
func (r *Resolver) Check(imports []wasmbin.Import, pages uint32) error {
	var memory *wasmbin.Import
	for i := range imports {
		imp := &imports[i]
		key := Key{Namespace: imp.Module, Name: imp.Name}
		c, ok := r.caps[key]
		if !ok || c.Kind() != imp.Kind {
			return errors.UnknownImport(imp.Module, imp.Name, imp.Kind.String())
		}
		if key == r.memory {
			memory = imp
		}
	}
	if memory == nil {
		return errors.MissingImport(r.memory.Namespace, r.memory.Name)
	}
	return r.caps[r.memory].Check(*memory, pages)
}

// Resolve checks imports and instantiates, in rt, a module named after the
// memory namespace that exports an arena of exactly pages pages. The guest
// must be instantiated in the same runtime afterwards. No guest code runs
// here.
func (r *Resolver) Resolve(ctx context.Context, rt wazero.Runtime, imports []wasmbin.Import, pages uint32) (*arena.Arena, error) {
	if err := r.Check(imports, pages); err != nil {
		r.log.Debug("import resolution failed", zap.Error(err))
		return nil, err
	}

	compiled, err := rt.CompileModule(ctx, wasmbin.MemoryModule(r.memory.Name, pages))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInstantiation, err, "compile arena module")
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(r.memory.Namespace))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInstantiation, err, "instantiate arena module")
	}
	mem := mod.ExportedMemory(r.memory.Name)
	if mem == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInstantiation).
			Path(r.memory.Namespace, r.memory.Name).
			Detail("arena module exports no memory").
			Build()
	}

	r.log.Debug("arena bound",
		zap.Stringer("import", r.memory),
		zap.Uint32("pages", pages))
	return arena.New(mem), nil
}
