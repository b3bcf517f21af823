package engine

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

// Module is a validated, compiled guest. It belongs to the runtime it was
// compiled in and lives no longer than one call.
type Module struct {
	compiled wazero.CompiledModule
	info     *wasmbin.Info
	size     int
}

// Load decodes and validates bin. On failure nothing stays alive in rt.
// Load never touches host memory and never runs guest code.
func Load(ctx context.Context, rt wazero.Runtime, bin []byte) (*Module, error) {
	if len(bin) == 0 {
		return nil, errors.Malformed("empty module", nil)
	}

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.Malformed("compile module", err)
	}

	info, err := wasmbin.Scan(bin)
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Malformed("scan imports", err)
	}

	return &Module{compiled: compiled, info: info, size: len(bin)}, nil
}

// Imports returns every import the module declares.
func (m *Module) Imports() []wasmbin.Import {
	return m.info.Imports
}

// HasStart reports whether the module runs a start function on instantiation.
func (m *Module) HasStart() bool {
	return m.info.HasStart
}

// Size returns the binary size in bytes.
func (m *Module) Size() int {
	return m.size
}

// Entry returns the definition of an exported function.
func (m *Module) Entry(name string) (api.FunctionDefinition, bool) {
	def, ok := m.compiled.ExportedFunctions()[name]
	return def, ok
}

// Export describes one exported function.
type Export struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Exports lists exported functions sorted by name.
func (m *Module) Exports() []Export {
	defs := m.compiled.ExportedFunctions()
	out := make([]Export, 0, len(defs))
	for name, def := range defs {
		out = append(out, Export{Name: name, Params: def.ParamTypes(), Results: def.ResultTypes()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
