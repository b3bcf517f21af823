package engine

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/wasm-sandbox/errors"
)

// Runtime error messages the interpreter reports, most specific first.
var trapReasons = []string{
	"stack overflow",
	"out of bounds memory access",
	"integer divide by zero",
	"integer overflow",
	"invalid conversion to integer",
	"invalid table access",
	"indirect call type mismatch",
	"unreachable",
}

const wasmErrorPrefix = "wasm error: "

// isTrap reports whether err came from guest execution rather than from
// linking or validation.
func isTrap(err error) bool {
	var exit *sys.ExitError
	if stderrors.As(err, &exit) {
		return true
	}
	return strings.Contains(err.Error(), wasmErrorPrefix)
}

// trapReason reduces a runtime error to a short stable reason.
func trapReason(err error) string {
	var exit *sys.ExitError
	if stderrors.As(err, &exit) {
		switch exit.ExitCode() {
		case sys.ExitCodeContextCanceled:
			return "context canceled"
		case sys.ExitCodeDeadlineExceeded:
			return "deadline exceeded"
		default:
			return fmt.Sprintf("exit code %d", exit.ExitCode())
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, wasmErrorPrefix); i >= 0 {
		msg = msg[i+len(wasmErrorPrefix):]
	}
	for _, reason := range trapReasons {
		if strings.HasPrefix(msg, reason) {
			return reason
		}
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

// trapError converts a guest failure into an exec trap.
func trapError(err error) *errors.Error {
	return errors.Trap(trapReason(err), err)
}

// panicError converts a panic recovered around the interpreter.
func panicError(r any) *errors.Error {
	if err, ok := r.(error); ok {
		return errors.Trap("panic: "+err.Error(), err)
	}
	return errors.Trap(fmt.Sprintf("panic: %v", r), nil)
}
