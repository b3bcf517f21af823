package guests

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

const (
	i32 = api.ValueTypeI32
	f32 = api.ValueTypeF32
	f64 = api.ValueTypeF64
)

// element width as a shift
const (
	shiftI32 int32 = 2
	shiftF64 int32 = 3
)

func sig(params, results []api.ValueType) wasmbin.FuncType {
	return wasmbin.FuncType{Params: params, Results: results}
}

func i32s(n int) []api.ValueType {
	t := make([]api.ValueType, n)
	for i := range t {
		t[i] = i32
	}
	return t
}

// module starts a builder that imports the arena the usual way.
func module() *wasmbin.Builder {
	return wasmbin.NewBuilder().ImportMemory("env", "memory", wasmbin.Limits{Min: 1})
}

// addr pushes base + (i + delta) << shift.
func addr(c *wasmbin.Code, base, i uint32, delta, shift int32) {
	c.LocalGet(base).LocalGet(i)
	if delta != 0 {
		c.I32Const(delta).I32Add()
	}
	c.I32Const(shift).I32Shl().I32Add()
}

// count sets n = length >> shift.
func count(c *wasmbin.Code, length, n uint32, shift int32) {
	c.LocalGet(length).I32Const(shift).I32ShrU().LocalSet(n)
}

// forEach emits: for i = 0; i < n; i++ { body }.
func forEach(c *wasmbin.Code, i, n uint32, body func(c *wasmbin.Code)) {
	c.I32Const(0).LocalSet(i)
	c.Block().Loop()
	c.LocalGet(i).LocalGet(n).I32GeU().BrIf(1)
	body(c)
	c.LocalGet(i).I32Const(1).I32Add().LocalSet(i)
	c.Br(0)
	c.End().End()
}

// loadF64 pushes element i of an i32 or f64 array as f64.
func loadF64(c *wasmbin.Code, base, i uint32, floats bool) {
	if floats {
		addr(c, base, i, 0, shiftF64)
		c.F64Load(0)
		return
	}
	addr(c, base, i, 0, shiftI32)
	c.I32Load(0).F64ConvertI32S()
}

// insertionSort sorts n elements at base in place. j and key are scratch
// locals; key must be i32 for integer arrays and f64 for float arrays.
func insertionSort(c *wasmbin.Code, base, n, i, j, key uint32, floats bool) {
	shift := shiftI32
	if floats {
		shift = shiftF64
	}
	load := func(c *wasmbin.Code) {
		if floats {
			c.F64Load(0)
		} else {
			c.I32Load(0)
		}
	}
	store := func(c *wasmbin.Code) {
		if floats {
			c.F64Store(0)
		} else {
			c.I32Store(0)
		}
	}

	c.I32Const(1).LocalSet(i)
	c.Block().Loop()
	c.LocalGet(i).LocalGet(n).I32GeU().BrIf(1)

	addr(c, base, i, 0, shift)
	load(c)
	c.LocalSet(key)
	c.LocalGet(i).LocalSet(j)

	c.Block().Loop()
	c.LocalGet(j).I32Eqz().BrIf(1)
	addr(c, base, j, -1, shift)
	load(c)
	c.LocalGet(key)
	if floats {
		c.F64Le()
	} else {
		c.I32LeS()
	}
	c.BrIf(1)
	// a[j] = a[j-1]
	addr(c, base, j, 0, shift)
	addr(c, base, j, -1, shift)
	load(c)
	store(c)
	c.LocalGet(j).I32Const(1).I32Sub().LocalSet(j)
	c.Br(0)
	c.End().End()

	addr(c, base, j, 0, shift)
	c.LocalGet(key)
	store(c)

	c.LocalGet(i).I32Const(1).I32Add().LocalSet(i)
	c.Br(0)
	c.End().End()
}

// copyBytes emits a byte copy of n bytes from src to dst.
func copyBytes(c *wasmbin.Code, dst, src, n, i uint32) {
	forEach(c, i, n, func(c *wasmbin.Code) {
		c.LocalGet(dst).LocalGet(i).I32Add()
		c.LocalGet(src).LocalGet(i).I32Add().I32Load8U(0)
		c.I32Store8(0)
	})
}
