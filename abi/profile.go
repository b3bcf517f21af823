package abi

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/errors"
)

const (
	// DefaultEntry is the entry function every guest exports.
	DefaultEntry = "exec"
	// AppendEntry is the entry function of two-input append guests.
	AppendEntry = "exec_append"
)

// Output says how a guest hands its result back.
type Output uint8

const (
	// OutputScalar: the entry function returns the result directly.
	OutputScalar Output = iota
	// OutputBuffer: the guest writes into the output region.
	OutputBuffer
	// OutputTerminated: like OutputBuffer, cut at the first zero byte.
	OutputTerminated
)

func (o Output) String() string {
	switch o {
	case OutputScalar:
		return "scalar"
	case OutputBuffer:
		return "buffer"
	case OutputTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("output(%d)", uint8(o))
	}
}

// Profile is a calling convention: which function to call, how many input
// regions it receives, and how the result comes back.
type Profile struct {
	Name   string
	Entry  string
	Inputs int
	Output Output
	// Result is the expected scalar type for OutputScalar.
	Result api.ValueType
	// Uncapped buffer profiles pass the output offset without its
	// capacity: exec(in, len, out).
	Uncapped bool
}

// Scalar is exec(in, len) -> t.
func Scalar(t api.ValueType) Profile {
	return Profile{Name: "scalar", Entry: DefaultEntry, Inputs: 1, Output: OutputScalar, Result: t}
}

// Buffer is exec(in, len, out, cap) with an optional i32 status result.
func Buffer() Profile {
	return Profile{Name: "buffer", Entry: DefaultEntry, Inputs: 1, Output: OutputBuffer}
}

// Terminated is Buffer with a zero-terminated payload.
func Terminated() Profile {
	return Profile{Name: "terminated", Entry: DefaultEntry, Inputs: 1, Output: OutputTerminated}
}

// WithoutCapacity returns a copy of a buffer profile whose guest receives
// only the output offset. Such guests cannot see the region size, so the
// payload is usually zero-terminated.
func (p Profile) WithoutCapacity() Profile {
	p.Uncapped = true
	p.Name += "-nocap"
	return p
}

// WithSchema is exec(in, len, schema, schema_len, out, cap).
func WithSchema() Profile {
	return Profile{Name: "schema", Entry: DefaultEntry, Inputs: 2, Output: OutputBuffer}
}

// Append is exec_append(a, a_len, b, b_len) -> t.
func Append(t api.ValueType) Profile {
	return Profile{Name: "append", Entry: AppendEntry, Inputs: 2, Output: OutputScalar, Result: t}
}

// Default returns the profile used when none is requested.
func Default() Profile {
	return Scalar(api.ValueTypeI32)
}

// ParseProfile builds a profile from its name. result is only used by
// scalar profiles.
func ParseProfile(name string, result api.ValueType) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "scalar":
		return Scalar(result), nil
	case "buffer":
		return Buffer(), nil
	case "terminated":
		return Terminated(), nil
	case "buffer-nocap":
		return Buffer().WithoutCapacity(), nil
	case "terminated-nocap":
		return Terminated().WithoutCapacity(), nil
	case "schema":
		return WithSchema(), nil
	case "append":
		return Append(result), nil
	}
	return Profile{}, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown profile %q", name))
}

// WithEntry returns a copy of p calling a different entry function.
func (p Profile) WithEntry(entry string) Profile {
	p.Entry = entry
	return p
}

// WritesBuffer reports whether the guest receives an output region.
func (p Profile) WritesBuffer() bool {
	return p.Output != OutputScalar
}

// ParamCount is the number of i32 parameters the entry function takes.
func (p Profile) ParamCount() int {
	n := 2 * p.Inputs
	switch {
	case p.WritesBuffer() && p.Uncapped:
		n++
	case p.WritesBuffer():
		n += 2
	}
	return n
}

// Validate checks that the profile can be invoked.
func (p Profile) Validate() error {
	if p.Entry == "" {
		return errors.InvalidInput(errors.PhaseConfig, "profile has no entry function")
	}
	if p.Inputs < 0 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("profile has %d inputs", p.Inputs))
	}
	if p.Output > OutputTerminated {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown output mode %s", p.Output))
	}
	if p.Output == OutputScalar && p.Uncapped {
		return errors.InvalidInput(errors.PhaseConfig, "scalar profile has no output capacity to drop")
	}
	if p.Output == OutputScalar {
		switch p.Result {
		case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64:
		default:
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unsupported result type %s", TypeName(p.Result)))
		}
	}
	return nil
}

// Signature describes the entry function the profile expects.
func (p Profile) Signature() string {
	params := make([]api.ValueType, p.ParamCount())
	for i := range params {
		params[i] = api.ValueTypeI32
	}
	if p.WritesBuffer() {
		return FormatSignature(params, nil) + " or " + FormatSignature(params, []api.ValueType{api.ValueTypeI32})
	}
	return FormatSignature(params, []api.ValueType{p.Result})
}

// CheckSignature verifies the entry function's shape before it is called.
// Scalar result types are not compared here; the extractor reports those
// as a type mismatch.
func (p Profile) CheckSignature(params, results []api.ValueType) error {
	ok := len(params) == p.ParamCount()
	for _, t := range params {
		if t != api.ValueTypeI32 {
			ok = false
		}
	}
	if ok {
		switch p.Output {
		case OutputScalar:
			ok = len(results) == 1
		default:
			ok = len(results) == 0 || (len(results) == 1 && results[0] == api.ValueTypeI32)
		}
	}
	if !ok {
		return errors.SignatureMismatch(p.Entry, p.Signature(), FormatSignature(params, results))
	}
	return nil
}

// Params computes the invocation parameters for a layout.
func (p Profile) Params(l arena.Layout) InvocationParams {
	regions := make([]arena.Region, 0, len(l.Inputs)+1)
	regions = append(regions, l.Inputs...)
	if p.WritesBuffer() {
		regions = append(regions, l.Output)
	}
	return InvocationParams{regions: regions, offsetOnly: p.WritesBuffer() && p.Uncapped}
}
