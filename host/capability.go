package host

import (
	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

// Key identifies an import by namespace and name.
type Key struct {
	Namespace string
	Name      string
}

func (k Key) String() string {
	return k.Namespace + "." + k.Name
}

// Capability is a host resource a guest may import.
type Capability interface {
	// Kind is the import kind the capability satisfies.
	Kind() wasmbin.ExternKind
	// Check reports whether the guest's declaration can be bound to an
	// arena of pages pages.
	Check(imp wasmbin.Import, pages uint32) error
}

// ArenaMemory binds a memory import to the per-call arena.
type ArenaMemory struct{}

func (ArenaMemory) Kind() wasmbin.ExternKind {
	return wasmbin.ExternMemory
}

func (ArenaMemory) Check(imp wasmbin.Import, pages uint32) error {
	l := imp.Limits
	if l.Shared {
		return errors.IncompatibleLimits(imp.Module, imp.Name, "shared memory cannot be bound to the arena")
	}
	if l.Min > pages {
		return errors.New(errors.PhaseResolve, errors.KindIncompatibleLimits).
			Path(imp.Module, imp.Name).
			Detail("guest minimum %d pages above arena size %d", l.Min, pages).
			Value(l.Min).
			Build()
	}
	if l.HasMax && l.Max < pages {
		return errors.New(errors.PhaseResolve, errors.KindIncompatibleLimits).
			Path(imp.Module, imp.Name).
			Detail("guest maximum %d pages below arena size %d", l.Max, pages).
			Value(l.Max).
			Build()
	}
	return nil
}
