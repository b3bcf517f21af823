package wasmbin

import (
	"slices"

	"github.com/tetratelabs/wazero/api"
)

// FuncType is a core function signature.
type FuncType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

func (f FuncType) equal(o FuncType) bool {
	return slices.Equal(f.Params, o.Params) && slices.Equal(f.Results, o.Results)
}

// Builder assembles small core modules: imports, one optional memory,
// functions with bodies, exports and a start function. Imports must be
// declared before functions so function indices stay stable.
type Builder struct {
	types   []FuncType
	imports []builderImport
	funcs   []builderFunc
	exports []builderExport
	memory  *Limits
	start   *uint32

	importedFuncs uint32
}

type builderImport struct {
	module  string
	name    string
	kind    ExternKind
	typeIdx uint32
	limits  Limits
	valType api.ValueType
	mutable bool
}

type builderFunc struct {
	typeIdx uint32
	locals  []api.ValueType
	body    []byte
}

type builderExport struct {
	name  string
	kind  ExternKind
	index uint32
}

// NewBuilder creates an empty module builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) typeIndex(ft FuncType) uint32 {
	for i, t := range b.types {
		if t.equal(ft) {
			return uint32(i)
		}
	}
	b.types = append(b.types, ft)
	return uint32(len(b.types) - 1)
}

// ImportMemory adds a memory import.
func (b *Builder) ImportMemory(module, name string, limits Limits) *Builder {
	b.imports = append(b.imports, builderImport{module: module, name: name, kind: ExternMemory, limits: limits})
	return b
}

// ImportFunc adds a function import and returns its function index.
func (b *Builder) ImportFunc(module, name string, ft FuncType) uint32 {
	b.imports = append(b.imports, builderImport{module: module, name: name, kind: ExternFunc, typeIdx: b.typeIndex(ft)})
	b.importedFuncs++
	return b.importedFuncs - 1
}

// ImportGlobal adds a global import.
func (b *Builder) ImportGlobal(module, name string, vt api.ValueType, mutable bool) *Builder {
	b.imports = append(b.imports, builderImport{module: module, name: name, kind: ExternGlobal, valType: vt, mutable: mutable})
	return b
}

// Memory defines a module-owned memory.
func (b *Builder) Memory(limits Limits) *Builder {
	b.memory = &limits
	return b
}

// Func defines a function and returns its index in the function space.
func (b *Builder) Func(ft FuncType, locals []api.ValueType, body *Code) uint32 {
	b.funcs = append(b.funcs, builderFunc{typeIdx: b.typeIndex(ft), locals: locals, body: body.Bytes()})
	return b.importedFuncs + uint32(len(b.funcs)-1)
}

// Export adds an export of the given kind and index.
func (b *Builder) Export(name string, kind ExternKind, index uint32) *Builder {
	b.exports = append(b.exports, builderExport{name: name, kind: kind, index: index})
	return b
}

// ExportFunc exports function idx as name.
func (b *Builder) ExportFunc(name string, idx uint32) *Builder {
	return b.Export(name, ExternFunc, idx)
}

// Start sets the start function.
func (b *Builder) Start(idx uint32) *Builder {
	b.start = &idx
	return b
}

// Build generates the WASM module bytes.
func (b *Builder) Build() []byte {
	var wasm []byte
	wasm = append(wasm, magic...)
	wasm = append(wasm, version...)

	if len(b.types) > 0 {
		wasm = append(wasm, section(sectionType, b.buildTypeSection())...)
	}
	if len(b.imports) > 0 {
		wasm = append(wasm, section(sectionImport, b.buildImportSection())...)
	}
	if len(b.funcs) > 0 {
		var fs []byte
		fs = append(fs, EncodeULEB128(uint32(len(b.funcs)))...)
		for _, f := range b.funcs {
			fs = append(fs, EncodeULEB128(f.typeIdx)...)
		}
		wasm = append(wasm, section(sectionFunction, fs)...)
	}
	if b.memory != nil {
		mem := EncodeULEB128(1)
		mem = append(mem, encodeLimits(*b.memory)...)
		wasm = append(wasm, section(sectionMemory, mem)...)
	}
	if len(b.exports) > 0 {
		exp := EncodeULEB128(uint32(len(b.exports)))
		for _, e := range b.exports {
			exp = append(exp, encodeName(e.name)...)
			exp = append(exp, byte(e.kind))
			exp = append(exp, EncodeULEB128(e.index)...)
		}
		wasm = append(wasm, section(sectionExport, exp)...)
	}
	if b.start != nil {
		wasm = append(wasm, section(sectionStart, EncodeULEB128(*b.start))...)
	}
	if len(b.funcs) > 0 {
		wasm = append(wasm, section(sectionCode, b.buildCodeSection())...)
	}
	return wasm
}

func (b *Builder) buildTypeSection() []byte {
	var s []byte
	s = append(s, EncodeULEB128(uint32(len(b.types)))...)
	for _, t := range b.types {
		s = append(s, 0x60)
		s = append(s, EncodeULEB128(uint32(len(t.Params)))...)
		for _, p := range t.Params {
			s = append(s, ValTypeToWasm(p))
		}
		s = append(s, EncodeULEB128(uint32(len(t.Results)))...)
		for _, r := range t.Results {
			s = append(s, ValTypeToWasm(r))
		}
	}
	return s
}

func (b *Builder) buildImportSection() []byte {
	var s []byte
	s = append(s, EncodeULEB128(uint32(len(b.imports)))...)
	for _, imp := range b.imports {
		s = append(s, encodeName(imp.module)...)
		s = append(s, encodeName(imp.name)...)
		s = append(s, byte(imp.kind))
		switch imp.kind {
		case ExternFunc:
			s = append(s, EncodeULEB128(imp.typeIdx)...)
		case ExternMemory:
			s = append(s, encodeLimits(imp.limits)...)
		case ExternGlobal:
			s = append(s, ValTypeToWasm(imp.valType))
			if imp.mutable {
				s = append(s, 0x01)
			} else {
				s = append(s, 0x00)
			}
		}
	}
	return s
}

func (b *Builder) buildCodeSection() []byte {
	var s []byte
	s = append(s, EncodeULEB128(uint32(len(b.funcs)))...)
	for _, f := range b.funcs {
		var body []byte
		groups := localGroups(f.locals)
		body = append(body, EncodeULEB128(uint32(len(groups)))...)
		for _, g := range groups {
			body = append(body, EncodeULEB128(g.count)...)
			body = append(body, ValTypeToWasm(g.typ))
		}
		body = append(body, f.body...)
		body = append(body, opEnd)
		s = append(s, EncodeULEB128(uint32(len(body)))...)
		s = append(s, body...)
	}
	return s
}

type localGroup struct {
	count uint32
	typ   api.ValueType
}

// localGroups run-length encodes consecutive locals of the same type.
func localGroups(locals []api.ValueType) []localGroup {
	var groups []localGroup
	for _, l := range locals {
		if n := len(groups); n > 0 && groups[n-1].typ == l {
			groups[n-1].count++
			continue
		}
		groups = append(groups, localGroup{count: 1, typ: l})
	}
	return groups
}
