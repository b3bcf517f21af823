package guests

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

// StatusTooSmall is returned by Echo and Concat when the output region
// cannot hold the payload.
const StatusTooSmall int32 = 1

// Echo copies its input into the output region:
// exec(in, len, out, cap) -> status.
func Echo() []byte {
	const (
		in, n, out, c uint32 = 0, 1, 2, 3
		i             uint32 = 4
	)
	code := wasmbin.NewCode()
	code.LocalGet(n).LocalGet(c).I32GtU().If().I32Const(StatusTooSmall).Return().End()
	copyBytes(code, out, in, n, i)
	code.I32Const(0)

	b := module()
	fn := b.Func(sig(i32s(4), []api.ValueType{i32}), []api.ValueType{i32}, code)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// EchoTerminated copies its input into the output region, then writes a
// zero byte followed by 0xFF: exec(in, len, out, cap) with no result.
func EchoTerminated() []byte {
	return echoTerminated(4)
}

// EchoUncapped is EchoTerminated for guests that are not told the output
// capacity: exec(in, len, out).
func EchoUncapped() []byte {
	return echoTerminated(3)
}

func echoTerminated(params int) []byte {
	const in, n, out uint32 = 0, 1, 2
	i := uint32(params)
	code := wasmbin.NewCode()
	copyBytes(code, out, in, n, i)
	code.LocalGet(out).LocalGet(n).I32Add().I32Const(0).I32Store8(0)
	code.LocalGet(out).LocalGet(n).I32Add().I32Const(0xFF).I32Store8(1)

	b := module()
	fn := b.Func(sig(i32s(params), nil), []api.ValueType{i32}, code)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// Concat writes the schema followed by the input into the output region:
// exec(in, len, schema, schema_len, out, cap) -> status.
func Concat() []byte {
	const (
		in, n, schema, sn, out, c uint32 = 0, 1, 2, 3, 4, 5
		i                         uint32 = 6
	)
	code := wasmbin.NewCode()
	code.LocalGet(n).LocalGet(sn).I32Add().LocalGet(c).I32GtU().If().I32Const(StatusTooSmall).Return().End()
	copyBytes(code, out, schema, sn, i)
	code.LocalGet(out).LocalGet(sn).I32Add().LocalSet(out)
	copyBytes(code, out, in, n, i)
	code.I32Const(0)

	b := module()
	fn := b.Func(sig(i32s(6), []api.ValueType{i32}), []api.ValueType{i32}, code)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// Status returns code without touching memory:
// exec(in, len, out, cap) -> code.
func Status(code int32) []byte {
	c := wasmbin.NewCode().I32Const(code)
	b := module()
	fn := b.Func(sig(i32s(4), []api.ValueType{i32}), nil, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// Probe writes every parameter it receives, as little-endian u32 words,
// at the start of its output region and returns 0. p must write a
// buffer; the output region needs 4 bytes per parameter.
func Probe(p abi.Profile) []byte {
	n := p.ParamCount()
	out := uint32(2 * p.Inputs)
	c := wasmbin.NewCode()
	for k := 0; k < n; k++ {
		c.LocalGet(out).LocalGet(uint32(k)).I32Store(uint32(4 * k))
	}
	c.I32Const(0)

	b := module()
	fn := b.Func(sig(i32s(n), []api.ValueType{i32}), nil, c)
	return b.ExportFunc(p.Entry, fn).Build()
}
