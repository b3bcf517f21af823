package abi

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-sandbox/errors"
)

// ParseValueType maps a type name to the core value type it travels as.
// Core names (i32, i64, f32, f64) and WIT primitive names (s32, u32, s64,
// u64, f32, f64 and the narrower integers) are accepted.
func ParseValueType(name string) (api.ValueType, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "":
		return 0, errors.InvalidInput(errors.PhaseConfig, "empty value type")
	case "i32":
		return api.ValueTypeI32, nil
	case "i64":
		return api.ValueTypeI64, nil
	}

	t, err := wit.ParseType(name)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, fmt.Sprintf("parse value type %q", name))
	}
	switch t.(type) {
	case wit.Bool, wit.S8, wit.U8, wit.S16, wit.U16, wit.S32, wit.U32, wit.Char:
		return api.ValueTypeI32, nil
	case wit.S64, wit.U64:
		return api.ValueTypeI64, nil
	case wit.F32:
		return api.ValueTypeF32, nil
	case wit.F64:
		return api.ValueTypeF64, nil
	}
	return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("type %q is not a scalar", name))
}

// TypeName returns the core name of a value type.
func TypeName(t api.ValueType) string {
	return api.ValueTypeName(t)
}

func formatTypes(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = TypeName(t)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// FormatSignature renders params and results as "(i32, i32) -> (f64)".
func FormatSignature(params, results []api.ValueType) string {
	return formatTypes(params) + " -> " + formatTypes(results)
}
