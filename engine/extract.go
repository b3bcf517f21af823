package engine

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/errors"
)

// Extract turns a raw invocation result into a Result according to the
// profile: the returned scalar for scalar profiles, otherwise a copy of
// the output region.
func Extract(mem *arena.Arena, layout arena.Layout, raw *Raw, p abi.Profile) (*Result, error) {
	switch p.Output {
	case abi.OutputScalar:
		if len(raw.Results) != 1 || len(raw.Types) != 1 {
			return nil, errors.TypeMismatch(abi.TypeName(p.Result), abi.FormatSignature(nil, raw.Types))
		}
		if raw.Types[0] != p.Result {
			return nil, errors.TypeMismatch(abi.TypeName(p.Result), abi.TypeName(raw.Types[0]))
		}
		return &Result{
			Kind:   ResultScalar,
			Scalar: abi.Value{Type: raw.Types[0], Bits: narrow(raw.Types[0], raw.Results[0])},
		}, nil

	case abi.OutputBuffer, abi.OutputTerminated:
		data, err := ExtractBuffer(mem, layout.Output, p.Output == abi.OutputTerminated)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultBuffer, Buffer: data}, nil
	}
	return nil, errors.InvalidInput(errors.PhaseExtract, "unknown output mode "+p.Output.String())
}

// ExtractBuffer copies the output region out of the arena. Reads past the
// arena fail with an extract out_of_bounds error. When terminated is set
// the payload ends at the first zero byte.
func ExtractBuffer(mem *arena.Arena, out arena.Region, terminated bool) ([]byte, error) {
	if !mem.Contains(out) {
		return nil, errors.OutOfBounds(errors.PhaseExtract, out.Offset, out.Length, mem.Size())
	}
	data, err := mem.Read(out.Offset, out.Length)
	if err != nil {
		return nil, err
	}
	if terminated {
		data = Terminate(data)
	}
	return data, nil
}

// Terminate cuts data at its first zero byte. Data without one is
// returned whole.
func Terminate(data []byte) []byte {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return data[:i]
	}
	return data
}

// narrow drops the upper bits wazero leaves in 32-bit stack slots.
func narrow(t api.ValueType, bits uint64) uint64 {
	switch t {
	case api.ValueTypeI32, api.ValueTypeF32:
		return bits & 0xffffffff
	default:
		return bits
	}
}
