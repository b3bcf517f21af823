package wasmbin

import (
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Section IDs used by the builder and the import scanner.
const (
	sectionCustom   byte = 0x00
	sectionType     byte = 0x01
	sectionImport   byte = 0x02
	sectionFunction byte = 0x03
	sectionMemory   byte = 0x05
	sectionExport   byte = 0x07
	sectionStart    byte = 0x08
	sectionCode     byte = 0x0a
)

var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

var errTruncated = errors.New("unexpected end of module")

// EncodeULEB128 encodes an unsigned value in LEB128 format.
func EncodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}

// EncodeSLEB128 encodes a signed value in LEB128 format.
func EncodeSLEB128[T int32 | int64](v T) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			result = append(result, b)
			break
		}
		result = append(result, b|0x80)
	}
	return result
}

// DecodeULEB128 decodes an unsigned 32-bit LEB128 value and returns the
// number of bytes consumed. Truncated or over-long encodings are errors.
func DecodeULEB128(data []byte) (uint32, int, error) {
	var result uint32
	var shift uint32
	for i, b := range data {
		if i == 5 {
			return 0, 0, fmt.Errorf("uleb128 longer than 5 bytes")
		}
		if i == 4 && b&0x70 != 0 {
			return 0, 0, fmt.Errorf("uleb128 overflows u32")
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errTruncated
}

// ValTypeToWasm converts a wazero value type to WASM encoding.
func ValTypeToWasm(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI32:
		return 0x7f
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, EncodeULEB128(uint32(len(content)))...)
	return append(out, content...)
}

func encodeName(s string) []byte {
	out := EncodeULEB128(uint32(len(s)))
	return append(out, s...)
}

func encodeLimits(l Limits) []byte {
	var flags byte
	if l.HasMax {
		flags |= 0x01
	}
	if l.Shared {
		flags |= 0x02
	}
	out := []byte{flags}
	out = append(out, EncodeULEB128(l.Min)...)
	if l.HasMax {
		out = append(out, EncodeULEB128(l.Max)...)
	}
	return out
}
