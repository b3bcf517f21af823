package wasmbin

import (
	"encoding/binary"
	"math"
)

const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opElse        byte = 0x05
	opEnd         byte = 0x0b
	opBr          byte = 0x0c
	opBrIf        byte = 0x0d
	opReturn      byte = 0x0f
	opCall        byte = 0x10
	opDrop        byte = 0x1a
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opLocalTee    byte = 0x22

	opI32Load   byte = 0x28
	opF32Load   byte = 0x2a
	opF64Load   byte = 0x2b
	opI32Load8U byte = 0x2d
	opI32Store  byte = 0x36
	opF32Store  byte = 0x38
	opF64Store  byte = 0x39
	opI32Store8 byte = 0x3a
	opMemSize   byte = 0x3f
	opMemGrow   byte = 0x40

	opI32Const byte = 0x41
	opF32Const byte = 0x43
	opF64Const byte = 0x44

	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47
	opI32LtS byte = 0x48
	opI32LtU byte = 0x49
	opI32GtS byte = 0x4a
	opI32GtU byte = 0x4b
	opI32LeS byte = 0x4c
	opI32LeU byte = 0x4d
	opI32GeS byte = 0x4e
	opI32GeU byte = 0x4f

	opF64Lt byte = 0x63
	opF64Gt byte = 0x64
	opF64Le byte = 0x65

	opI32Add  byte = 0x6a
	opI32Sub  byte = 0x6b
	opI32Mul  byte = 0x6c
	opI32DivS byte = 0x6d
	opI32And  byte = 0x71
	opI32Shl  byte = 0x74
	opI32ShrU byte = 0x76

	opF64Sqrt byte = 0x9f
	opF64Add  byte = 0xa0
	opF64Sub  byte = 0xa1
	opF64Mul  byte = 0xa2
	opF64Div  byte = 0xa3

	opI64ExtendI32U  byte = 0xad
	opF32DemoteF64   byte = 0xb6
	opF64ConvertI32S byte = 0xb7
	opF64PromoteF32  byte = 0xbb

	blockTypeEmpty byte = 0x40
)

// memarg alignment as log2 of the access width
const (
	memArgAlignByte   uint32 = 0
	memArgAlignWord   uint32 = 2
	memArgAlignDouble uint32 = 3
)

// Code emits a function body one instruction at a time. The closing end of
// the function is added by the Builder.
type Code struct {
	buf []byte
}

// NewCode returns an empty instruction stream.
func NewCode() *Code {
	return &Code{}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	if c == nil {
		return nil
	}
	return c.buf
}

func (c *Code) op(b ...byte) *Code {
	c.buf = append(c.buf, b...)
	return c
}

func (c *Code) idx(op byte, i uint32) *Code {
	c.buf = append(c.buf, op)
	c.buf = append(c.buf, EncodeULEB128(i)...)
	return c
}

func (c *Code) mem(op byte, align, offset uint32) *Code {
	c.buf = append(c.buf, op)
	c.buf = append(c.buf, EncodeULEB128(align)...)
	c.buf = append(c.buf, EncodeULEB128(offset)...)
	return c
}

// Control flow

func (c *Code) Unreachable() *Code { return c.op(opUnreachable) }
func (c *Code) Block() *Code { return c.op(opBlock, blockTypeEmpty) }
func (c *Code) Loop() *Code { return c.op(opLoop, blockTypeEmpty) }
func (c *Code) If() *Code { return c.op(opIf, blockTypeEmpty) }
func (c *Code) Else() *Code { return c.op(opElse) }
func (c *Code) End() *Code { return c.op(opEnd) }
func (c *Code) Br(depth uint32) *Code { return c.idx(opBr, depth) }
func (c *Code) BrIf(depth uint32) *Code { return c.idx(opBrIf, depth) }
func (c *Code) Return() *Code { return c.op(opReturn) }
func (c *Code) Call(fn uint32) *Code { return c.idx(opCall, fn) }
func (c *Code) Drop() *Code { return c.op(opDrop) }

// Locals

func (c *Code) LocalGet(i uint32) *Code { return c.idx(opLocalGet, i) }
func (c *Code) LocalSet(i uint32) *Code { return c.idx(opLocalSet, i) }
func (c *Code) LocalTee(i uint32) *Code { return c.idx(opLocalTee, i) }

// Memory

func (c *Code) I32Load(offset uint32) *Code { return c.mem(opI32Load, memArgAlignWord, offset) }
func (c *Code) I32Load8U(offset uint32) *Code { return c.mem(opI32Load8U, memArgAlignByte, offset) }
func (c *Code) F32Load(offset uint32) *Code { return c.mem(opF32Load, memArgAlignWord, offset) }
func (c *Code) F64Load(offset uint32) *Code { return c.mem(opF64Load, memArgAlignDouble, offset) }
func (c *Code) I32Store(offset uint32) *Code { return c.mem(opI32Store, memArgAlignWord, offset) }
func (c *Code) I32Store8(offset uint32) *Code { return c.mem(opI32Store8, memArgAlignByte, offset) }
func (c *Code) F32Store(offset uint32) *Code { return c.mem(opF32Store, memArgAlignWord, offset) }
func (c *Code) F64Store(offset uint32) *Code { return c.mem(opF64Store, memArgAlignDouble, offset) }
func (c *Code) MemorySize() *Code { return c.op(opMemSize, 0x00) }
func (c *Code) MemoryGrow() *Code { return c.op(opMemGrow, 0x00) }

// Constants

func (c *Code) I32Const(v int32) *Code {
	c.buf = append(c.buf, opI32Const)
	c.buf = append(c.buf, EncodeSLEB128(v)...)
	return c
}

func (c *Code) F32Const(v float32) *Code {
	c.buf = append(c.buf, opF32Const)
	c.buf = binary.LittleEndian.AppendUint32(c.buf, math.Float32bits(v))
	return c
}

func (c *Code) F64Const(v float64) *Code {
	c.buf = append(c.buf, opF64Const)
	c.buf = binary.LittleEndian.AppendUint64(c.buf, math.Float64bits(v))
	return c
}

// Numeric

func (c *Code) I32Eqz() *Code { return c.op(opI32Eqz) }
func (c *Code) I32Eq() *Code { return c.op(opI32Eq) }
func (c *Code) I32Ne() *Code { return c.op(opI32Ne) }
func (c *Code) I32LtS() *Code { return c.op(opI32LtS) }
func (c *Code) I32LtU() *Code { return c.op(opI32LtU) }
func (c *Code) I32GtS() *Code { return c.op(opI32GtS) }
func (c *Code) I32GtU() *Code { return c.op(opI32GtU) }
func (c *Code) I32LeS() *Code { return c.op(opI32LeS) }
func (c *Code) I32LeU() *Code { return c.op(opI32LeU) }
func (c *Code) I32GeS() *Code { return c.op(opI32GeS) }
func (c *Code) I32GeU() *Code { return c.op(opI32GeU) }
func (c *Code) I32Add() *Code { return c.op(opI32Add) }
func (c *Code) I32Sub() *Code { return c.op(opI32Sub) }
func (c *Code) I32Mul() *Code { return c.op(opI32Mul) }
func (c *Code) I32DivS() *Code { return c.op(opI32DivS) }
func (c *Code) I32And() *Code { return c.op(opI32And) }
func (c *Code) I32Shl() *Code { return c.op(opI32Shl) }
func (c *Code) I32ShrU() *Code { return c.op(opI32ShrU) }

func (c *Code) F64Lt() *Code { return c.op(opF64Lt) }
func (c *Code) F64Gt() *Code { return c.op(opF64Gt) }
func (c *Code) F64Le() *Code { return c.op(opF64Le) }
func (c *Code) F64Add() *Code { return c.op(opF64Add) }
func (c *Code) F64Sub() *Code { return c.op(opF64Sub) }
func (c *Code) F64Mul() *Code { return c.op(opF64Mul) }
func (c *Code) F64Div() *Code { return c.op(opF64Div) }
func (c *Code) F64Sqrt() *Code { return c.op(opF64Sqrt) }

func (c *Code) I64ExtendI32U() *Code { return c.op(opI64ExtendI32U) }
func (c *Code) F32DemoteF64() *Code { return c.op(opF32DemoteF64) }
func (c *Code) F64ConvertI32S() *Code { return c.op(opF64ConvertI32S) }
func (c *Code) F64PromoteF32() *Code { return c.op(opF64PromoteF32) }
