package abi

import (
	"math"
	"strconv"

	"github.com/tetratelabs/wazero/api"
)

// Value is a scalar returned by a guest: its core type and raw bits as
// they come off the interpreter's stack.
type Value struct {
	Type api.ValueType
	Bits uint64
}

func I32(v int32) Value { return Value{Type: api.ValueTypeI32, Bits: api.EncodeI32(v)} }
func I64(v int64) Value { return Value{Type: api.ValueTypeI64, Bits: api.EncodeI64(v)} }
func F32(v float32) Value { return Value{Type: api.ValueTypeF32, Bits: api.EncodeF32(v)} }
func F64(v float64) Value { return Value{Type: api.ValueTypeF64, Bits: api.EncodeF64(v)} }

// Typed accessors reinterpret Bits; they do not convert between types.
func (v Value) I32() int32 { return api.DecodeI32(v.Bits) }
func (v Value) I64() int64 { return int64(v.Bits) }
func (v Value) F32() float32 { return api.DecodeF32(v.Bits) }
func (v Value) F64() float64 { return api.DecodeF64(v.Bits) }

// Float returns the value widened to float64 whatever its type.
func (v Value) Float() float64 {
	switch v.Type {
	case api.ValueTypeI32:
		return float64(v.I32())
	case api.ValueTypeI64:
		return float64(v.I64())
	case api.ValueTypeF32:
		return float64(v.F32())
	case api.ValueTypeF64:
		return v.F64()
	default:
		return math.NaN()
	}
}

// Any returns the value as the matching Go type.
func (v Value) Any() any {
	switch v.Type {
	case api.ValueTypeI32:
		return v.I32()
	case api.ValueTypeI64:
		return v.I64()
	case api.ValueTypeF32:
		return v.F32()
	case api.ValueTypeF64:
		return v.F64()
	default:
		return v.Bits
	}
}

func (v Value) String() string {
	switch v.Type {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(v.I32()), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(v.I64(), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(v.F32()), 'g', -1, 32)
	case api.ValueTypeF64:
		return strconv.FormatFloat(v.F64(), 'g', -1, 64)
	default:
		return "0x" + strconv.FormatUint(v.Bits, 16)
	}
}
