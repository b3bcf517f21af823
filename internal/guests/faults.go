package guests

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

// scalar finishes b with an exec(in, len) -> i32 export running c.
func scalar(b *wasmbin.Builder, c *wasmbin.Code) []byte {
	fn := b.Func(sig(i32s(2), []api.ValueType{i32}), nil, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

func returnZero() *wasmbin.Code {
	return wasmbin.NewCode().I32Const(0)
}

// Unreachable traps on entry.
func Unreachable() []byte {
	return scalar(module(), wasmbin.NewCode().Unreachable())
}

// OutOfBounds loads far past any arena.
func OutOfBounds() []byte {
	return scalar(module(), wasmbin.NewCode().I32Const(0x7FFFFFF0).I32Load(0))
}

// DivideByZero divides its input length by zero.
func DivideByZero() []byte {
	return scalar(module(), wasmbin.NewCode().LocalGet(1).I32Const(0).I32DivS())
}

// Recursion calls itself until the call stack is exhausted.
func Recursion() []byte {
	// exec is the only function, so its index is 0.
	c := wasmbin.NewCode().LocalGet(0).LocalGet(1).Call(0).I32Const(1).I32Add()
	return scalar(module(), c)
}

// Spin never returns.
func Spin() []byte {
	c := wasmbin.NewCode().Loop().Br(0).End().I32Const(0)
	return scalar(module(), c)
}

// Grow tries to grow the arena by one page and returns memory.grow's
// result.
func Grow() []byte {
	return scalar(module(), wasmbin.NewCode().I32Const(1).MemoryGrow())
}

// ImportsFunc imports env.log next to the arena.
func ImportsFunc() []byte {
	b := module()
	b.ImportFunc("env", "log", sig(i32s(2), nil))
	return scalar(b, returnZero())
}

// ImportGlobal imports env.g next to the arena.
func ImportGlobal() []byte {
	b := module().ImportGlobal("env", "g", i32, false)
	return scalar(b, returnZero())
}

// MemoryAlias imports its memory from namespace.name instead of env.memory.
func MemoryAlias(namespace, name string) []byte {
	b := wasmbin.NewBuilder().ImportMemory(namespace, name, wasmbin.Limits{Min: 1})
	return scalar(b, returnZero())
}

// OwnMemory defines its own memory and imports nothing.
func OwnMemory() []byte {
	b := wasmbin.NewBuilder().Memory(wasmbin.Limits{Min: 1})
	return scalar(b, returnZero())
}

// NoMemory has no memory at all.
func NoMemory() []byte {
	return scalar(wasmbin.NewBuilder(), returnZero())
}

// MemoryLimits imports env.memory with the given limits and returns
// memory.size.
func MemoryLimits(l wasmbin.Limits) []byte {
	b := wasmbin.NewBuilder().ImportMemory("env", "memory", l)
	return scalar(b, wasmbin.NewCode().MemorySize())
}

// StartTrap has a start function that traps before exec can run.
func StartTrap() []byte {
	b := module()
	start := b.Func(sig(nil, nil), nil, wasmbin.NewCode().Unreachable())
	fn := b.Func(sig(i32s(2), []api.ValueType{i32}), nil, returnZero())
	return b.Start(start).ExportFunc(abi.DefaultEntry, fn).Build()
}

// WrongArity exports exec(i32) -> i32.
func WrongArity() []byte {
	b := module()
	fn := b.Func(sig(i32s(1), []api.ValueType{i32}), nil, returnZero())
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// WrongParamType exports exec(i64, i32) -> i32.
func WrongParamType() []byte {
	b := module()
	fn := b.Func(sig([]api.ValueType{api.ValueTypeI64, i32}, []api.ValueType{i32}), nil, returnZero())
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// ReturnsI64 exports exec(in, len) -> i64 returning len.
func ReturnsI64() []byte {
	b := module()
	c := wasmbin.NewCode().LocalGet(1).I64ExtendI32U()
	fn := b.Func(sig(i32s(2), []api.ValueType{api.ValueTypeI64}), nil, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// NoEntry exports run instead of exec.
func NoEntry() []byte {
	b := module()
	fn := b.Func(sig(i32s(2), []api.ValueType{i32}), nil, returnZero())
	return b.ExportFunc("run", fn).Build()
}
