package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseLoad    Phase = "load"    // module decoding and validation
	PhaseSize    Phase = "size"    // arena sizing and layout
	PhaseResolve Phase = "resolve" // import resolution
	PhaseExec    Phase = "exec"    // input write, instantiation, guest call
	PhaseExtract Phase = "extract" // result extraction
	PhaseGate    Phase = "gate"    // call gate argument checks
	PhaseConfig  Phase = "config"  // engine and CLI configuration
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed          Kind = "malformed"
	KindOverflow           Kind = "overflow"
	KindTooLarge           Kind = "too_large"
	KindUnknownImport      Kind = "unknown_import"
	KindMissingImport      Kind = "missing_import"
	KindIncompatibleLimits Kind = "incompatible_limits"
	KindInstantiation      Kind = "instantiation"
	KindMemoryWrite        Kind = "memory_write"
	KindSignatureMismatch  Kind = "signature_mismatch"
	KindMissingExport      Kind = "missing_export"
	KindTrap               Kind = "trap"
	KindGuestStatus        Kind = "guest_status"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindTypeMismatch       Kind = "type_mismatch"
	KindInvalidInput       Kind = "invalid_input"
)

// Phase sentinels. errors.Is(err, ErrExec) holds for any exec-phase error.
var (
	ErrLoad    = &Error{Phase: PhaseLoad}
	ErrSize    = &Error{Phase: PhaseSize}
	ErrResolve = &Error{Phase: PhaseResolve}
	ErrExec    = &Error{Phase: PhaseExec}
	ErrExtract = &Error{Phase: PhaseExtract}
	ErrGate    = &Error{Phase: PhaseGate}
	ErrConfig  = &Error{Phase: PhaseConfig}
)

// Error is the structured error type used throughout the sandbox
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Kind matches on Phase alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Phase != t.Phase {
		return false
	}
	return t.Kind == "" || e.Kind == t.Kind
}

// As extracts the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the import or field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors, one per failure the pipeline reports

// Malformed creates a load error for bytes that are not a valid module
func Malformed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMalformed,
		Detail: detail,
		Cause:  cause,
	}
}

// Overflow creates a size error for arithmetic that wrapped
func Overflow(what string, value any) *Error {
	return &Error{
		Phase:  PhaseSize,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("%s overflows", what),
		Value:  value,
	}
}

// TooLarge creates a size error for a page count above the limit
func TooLarge(pages uint64, maxPages uint32) *Error {
	return &Error{
		Phase:  PhaseSize,
		Kind:   KindTooLarge,
		Detail: fmt.Sprintf("%d pages exceeds limit of %d", pages, maxPages),
		Value:  pages,
	}
}

// UnknownImport creates a resolve error for an import no capability serves
func UnknownImport(module, name, kind string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownImport,
		Path:   []string{module, name},
		Detail: fmt.Sprintf("no %s provided", kind),
	}
}

// MissingImport creates a resolve error for a required import the guest lacks
func MissingImport(module, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMissingImport,
		Path:   []string{module, name},
		Detail: "module does not import host memory",
	}
}

// IncompatibleLimits creates a resolve error for memory limits the arena cannot satisfy
func IncompatibleLimits(module, name, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindIncompatibleLimits,
		Path:   []string{module, name},
		Detail: detail,
	}
}

// MemoryWrite creates an exec error for an input that does not fit the arena
func MemoryWrite(offset, length, size uint32) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindMemoryWrite,
		Detail: fmt.Sprintf("write out of bounds: offset=%d, length=%d, size=%d", offset, length, size),
	}
}

// SignatureMismatch creates an exec error for an entry with the wrong shape
func SignatureMismatch(entry, want, got string) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindSignatureMismatch,
		Path:   []string{entry},
		Detail: fmt.Sprintf("want %s, got %s", want, got),
	}
}

// MissingExport creates an exec error for an absent entry function
func MissingExport(entry string) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindMissingExport,
		Path:   []string{entry},
		Detail: "function not exported",
	}
}

// Trap creates an exec error for a guest that faulted
func Trap(reason string, cause error) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindTrap,
		Detail: reason,
		Cause:  cause,
	}
}

// GuestStatus creates an exec error carrying a non-zero guest status code
func GuestStatus(entry string, code int32) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindGuestStatus,
		Path:   []string{entry},
		Detail: fmt.Sprintf("guest returned status %d", code),
		Value:  code,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("read out of bounds: offset=%d, length=%d, size=%d", offset, length, size),
		Value:  offset,
	}
}

// TypeMismatch creates an extract error for a result of the wrong type
func TypeMismatch(want, got string) *Error {
	return &Error{
		Phase:  PhaseExtract,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("want %s, got %s", want, got),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
