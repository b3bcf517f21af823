package gate

import (
	"fmt"

	"github.com/wippyai/wasm-sandbox/errors"
)

// Status is the primitive result code returned across the gate.
type Status int32

const (
	Success Status = iota
	InvalidParameter
	Malformed
	TooLarge
	UnknownImport
	Trap
	SignatureMismatch
	OutOfBounds
	TypeMismatch
	Unexpected
)

var statusNames = [...]string{
	Success:           "success",
	InvalidParameter:  "invalid_parameter",
	Malformed:         "malformed",
	TooLarge:          "too_large",
	UnknownImport:     "unknown_import",
	Trap:              "trap",
	SignatureMismatch: "signature_mismatch",
	OutOfBounds:       "out_of_bounds",
	TypeMismatch:      "type_mismatch",
	Unexpected:        "unexpected",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// OK reports whether s is Success.
func (s Status) OK() bool {
	return s == Success
}

// StatusOf maps an engine error to a gate status. Errors that did not
// come from the engine are Unexpected.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	e, ok := errors.As(err)
	if !ok {
		return Unexpected
	}
	switch e.Kind {
	case errors.KindMalformed:
		return Malformed
	case errors.KindOverflow, errors.KindTooLarge:
		return TooLarge
	case errors.KindUnknownImport, errors.KindMissingImport, errors.KindIncompatibleLimits, errors.KindInstantiation:
		return UnknownImport
	case errors.KindTrap, errors.KindGuestStatus:
		return Trap
	case errors.KindSignatureMismatch, errors.KindMissingExport:
		return SignatureMismatch
	case errors.KindOutOfBounds, errors.KindMemoryWrite:
		return OutOfBounds
	case errors.KindTypeMismatch:
		return TypeMismatch
	case errors.KindInvalidInput:
		return InvalidParameter
	default:
		return Unexpected
	}
}
