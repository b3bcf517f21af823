package guests

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

// Parameter and local slots shared by the statistics guests.
const (
	pIn  uint32 = 0
	pLen uint32 = 1
	lN   uint32 = 2
	lI   uint32 = 3
)

// MeanInt returns the truncated mean of an i32 array as i32. An empty
// array yields 0.
func MeanInt() []byte {
	const sum uint32 = 4
	c := wasmbin.NewCode()
	count(c, pLen, lN, shiftI32)
	c.LocalGet(lN).I32Eqz().If().I32Const(0).Return().End()
	forEach(c, lI, lN, func(c *wasmbin.Code) {
		c.LocalGet(sum)
		addr(c, pIn, lI, 0, shiftI32)
		c.I32Load(0).I32Add().LocalSet(sum)
	})
	c.LocalGet(sum).LocalGet(lN).I32DivS()

	b := module()
	fn := b.Func(sig(i32s(2), []api.ValueType{i32}), []api.ValueType{i32, i32, i32}, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// MeanFloat returns the mean of an f64 array. An empty array yields 0.
func MeanFloat() []byte {
	const sum uint32 = 4
	c := wasmbin.NewCode()
	count(c, pLen, lN, shiftF64)
	c.LocalGet(lN).I32Eqz().If().F64Const(0).Return().End()
	forEach(c, lI, lN, func(c *wasmbin.Code) {
		c.LocalGet(sum)
		loadF64(c, pIn, lI, true)
		c.F64Add().LocalSet(sum)
	})
	c.LocalGet(sum).LocalGet(lN).F64ConvertI32S().F64Div()

	b := module()
	fn := b.Func(sig(i32s(2), []api.ValueType{f64}), []api.ValueType{i32, i32, f64}, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// MedianInt sorts an i32 array in place and returns its median. For an
// even count the two middle values are averaged with integer division.
func MedianInt() []byte {
	const (
		j    uint32 = 4
		key  uint32 = 5
		half uint32 = 6
	)
	c := wasmbin.NewCode()
	count(c, pLen, lN, shiftI32)
	c.LocalGet(lN).I32Eqz().If().I32Const(0).Return().End()
	insertionSort(c, pIn, lN, lI, j, key, false)
	c.LocalGet(lN).I32Const(1).I32ShrU().LocalSet(half)

	c.LocalGet(lN).I32Const(1).I32And().If()
	addr(c, pIn, half, 0, shiftI32)
	c.I32Load(0).Return()
	c.End()

	addr(c, pIn, half, -1, shiftI32)
	c.I32Load(0)
	addr(c, pIn, half, 0, shiftI32)
	c.I32Load(0)
	c.I32Add().I32Const(2).I32DivS()

	b := module()
	fn := b.Func(sig(i32s(2), []api.ValueType{i32}), []api.ValueType{i32, i32, i32, i32, i32}, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// MedianFloat sorts an f64 array in place and returns its median.
func MedianFloat() []byte {
	const (
		j    uint32 = 4
		half uint32 = 5
		key  uint32 = 6
	)
	c := wasmbin.NewCode()
	count(c, pLen, lN, shiftF64)
	c.LocalGet(lN).I32Eqz().If().F64Const(0).Return().End()
	insertionSort(c, pIn, lN, lI, j, key, true)
	c.LocalGet(lN).I32Const(1).I32ShrU().LocalSet(half)

	c.LocalGet(lN).I32Const(1).I32And().If()
	addr(c, pIn, half, 0, shiftF64)
	c.F64Load(0).Return()
	c.End()

	addr(c, pIn, half, -1, shiftF64)
	c.F64Load(0)
	addr(c, pIn, half, 0, shiftF64)
	c.F64Load(0)
	c.F64Add().F64Const(2).F64Div()

	b := module()
	fn := b.Func(sig(i32s(2), []api.ValueType{f64}), []api.ValueType{i32, i32, i32, i32, f64}, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// SDInt returns the sample standard deviation of an i32 array as f32.
func SDInt() []byte {
	return sd(false)
}

// SDFloat returns the sample standard deviation of an f64 array as f64.
func SDFloat() []byte {
	return sd(true)
}

// sd computes sqrt(sum((x - mean)^2) / (n - 1)) in f64. Fewer than two
// elements yield 0.
func sd(floats bool) []byte {
	const (
		sum  uint32 = 4
		mean uint32 = 5
		acc  uint32 = 6
		d    uint32 = 7
	)
	result := f32
	shift := shiftI32
	if floats {
		result = f64
		shift = shiftF64
	}
	zero := func(c *wasmbin.Code) {
		if floats {
			c.F64Const(0)
		} else {
			c.F32Const(0)
		}
	}

	c := wasmbin.NewCode()
	count(c, pLen, lN, shift)
	c.LocalGet(lN).I32Const(2).I32LtU().If()
	zero(c)
	c.Return().End()

	forEach(c, lI, lN, func(c *wasmbin.Code) {
		c.LocalGet(sum)
		loadF64(c, pIn, lI, floats)
		c.F64Add().LocalSet(sum)
	})
	c.LocalGet(sum).LocalGet(lN).F64ConvertI32S().F64Div().LocalSet(mean)

	forEach(c, lI, lN, func(c *wasmbin.Code) {
		c.LocalGet(acc)
		loadF64(c, pIn, lI, floats)
		c.LocalGet(mean).F64Sub().LocalTee(d).LocalGet(d).F64Mul()
		c.F64Add().LocalSet(acc)
	})
	c.LocalGet(acc)
	c.LocalGet(lN).I32Const(1).I32Sub().F64ConvertI32S()
	c.F64Div().F64Sqrt()
	if !floats {
		c.F32DemoteF64()
	}

	b := module()
	fn := b.Func(sig(i32s(2), []api.ValueType{result}), []api.ValueType{i32, i32, f64, f64, f64, f64}, c)
	return b.ExportFunc(abi.DefaultEntry, fn).Build()
}

// Append sums two i32 arrays through exec_append(a, a_len, b, b_len).
func Append() []byte {
	const (
		pPtr uint32 = 0
		pLn  uint32 = 1
		sum  uint32 = 4
	)
	inner := wasmbin.NewCode()
	count(inner, pLn, lN, shiftI32)
	forEach(inner, lI, lN, func(c *wasmbin.Code) {
		c.LocalGet(sum)
		addr(c, pPtr, lI, 0, shiftI32)
		c.I32Load(0).I32Add().LocalSet(sum)
	})
	inner.LocalGet(sum)

	b := module()
	sumFn := b.Func(sig(i32s(2), []api.ValueType{i32}), []api.ValueType{i32, i32, i32}, inner)

	outer := wasmbin.NewCode()
	outer.LocalGet(0).LocalGet(1).Call(sumFn)
	outer.LocalGet(2).LocalGet(3).Call(sumFn)
	outer.I32Add()
	fn := b.Func(sig(i32s(4), []api.ValueType{i32}), nil, outer)
	return b.ExportFunc(abi.AppendEntry, fn).Build()
}
