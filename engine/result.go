package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/errors"
)

// ResultKind tags a Result.
type ResultKind uint8

const (
	ResultScalar ResultKind = iota
	ResultBuffer
)

func (k ResultKind) String() string {
	switch k {
	case ResultScalar:
		return "scalar"
	case ResultBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("result(%d)", uint8(k))
	}
}

// Result is the outcome of one call: a scalar or a byte buffer owned by
// the caller.
type Result struct {
	Buffer   []byte
	Scalar   abi.Value
	Duration time.Duration
	Pages    uint32
	Kind     ResultKind
}

// DecodeJSON unmarshals a buffer result into v.
func (r *Result) DecodeJSON(v any) error {
	if r.Kind != ResultBuffer {
		return errors.TypeMismatch("buffer", r.Kind.String())
	}
	if err := json.Unmarshal(r.Buffer, v); err != nil {
		return errors.Wrap(errors.PhaseExtract, errors.KindMalformed, err, "decode JSON payload")
	}
	return nil
}

func (r *Result) String() string {
	if r.Kind == ResultScalar {
		return r.Scalar.String()
	}
	return fmt.Sprintf("%q", r.Buffer)
}
