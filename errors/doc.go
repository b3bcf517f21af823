// Package errors provides structured error types for the wasm sandbox.
//
// Errors are categorized by Phase (the pipeline stage that failed) and Kind
// (the failure category). Callers can tell a bad module (load, resolve) from
// an input that is too large (size), a guest that crashed (exec), or output
// that could not be extracted (extract).
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindIncompatibleLimits).
//		Path("env", "memory").
//		Detail("guest minimum %d above arena size %d", min, pages).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TooLarge(pages, limits.MaxPages)
//	err := errors.Trap("unreachable", cause)
//
// Phase sentinels match any error of that phase:
//
//	if errors.Is(err, errors.ErrExec) { ... }
package errors
