// Package host resolves a guest's imports against what the host provides.
//
// The host provides exactly one thing: the per-call arena, imported as
// env.memory. Every other import is refused with an unknown_import error
// before any guest code runs, and a guest that does not import the arena
// is refused with missing_import. The guest's declared memory limits must
// admit the arena's page count.
package host
