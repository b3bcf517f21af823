package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/errors"
)

// Raw is what the guest returned before extraction.
type Raw struct {
	Results []uint64
	Types   []api.ValueType
	Params  abi.InvocationParams
}

// Invoke instantiates mod against the arena already bound in rt, writes
// each input at its region, and calls the profile's entry function with
// the layout's (offset, length) pairs.
//
// The entry export and its signature are checked before the guest is
// instantiated, so a mismatched guest never runs. Guest traps and panics
// escaping the interpreter come back as exec trap errors.
func Invoke(ctx context.Context, rt wazero.Runtime, mod *Module, mem *arena.Arena, layout arena.Layout, inputs [][]byte, p abi.Profile) (*Raw, error) {
	if len(inputs) != len(layout.Inputs) {
		return nil, errors.InvalidInput(errors.PhaseExec,
			fmt.Sprintf("%d inputs for a layout of %d regions", len(inputs), len(layout.Inputs)))
	}

	def, ok := mod.Entry(p.Entry)
	if !ok {
		return nil, errors.MissingExport(p.Entry)
	}
	if err := p.CheckSignature(def.ParamTypes(), def.ResultTypes()); err != nil {
		return nil, err
	}

	inst, err := instantiate(ctx, rt, mod)
	if err != nil {
		return nil, err
	}
	defer inst.Close(ctx)

	// Inputs go in after instantiation so data segments cannot overwrite them.
	for i, in := range inputs {
		if err := mem.Write(layout.Inputs[i].Offset, in); err != nil {
			return nil, err
		}
	}

	fn := inst.ExportedFunction(p.Entry)
	if fn == nil {
		return nil, errors.MissingExport(p.Entry)
	}

	params := p.Params(layout)
	results, err := call(ctx, fn, params.Stack())
	if err != nil {
		return nil, err
	}

	if p.WritesBuffer() && len(results) == 1 {
		if status := api.DecodeI32(results[0]); status != 0 {
			return nil, errors.GuestStatus(p.Entry, status)
		}
	}

	return &Raw{Results: results, Types: def.ResultTypes(), Params: params}, nil
}

func instantiate(ctx context.Context, rt wazero.Runtime, mod *Module) (inst api.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst, err = nil, panicError(r)
		}
	}()

	// Anonymous, and no implicit _start call: only the module's own start
	// section runs here.
	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	inst, err = rt.InstantiateModule(ctx, mod.compiled, cfg)
	if err != nil {
		if mod.HasStart() && isTrap(err) {
			return nil, trapError(err)
		}
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInstantiation, err, "instantiate guest")
	}
	return inst, nil
}

func call(ctx context.Context, fn api.Function, params []uint64) (results []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, panicError(r)
		}
	}()

	results, err = fn.Call(ctx, params...)
	if err != nil {
		return nil, trapError(err)
	}
	return results, nil
}
