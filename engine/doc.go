// Package engine runs one untrusted core module per call against a
// host-owned memory arena.
//
// # Pipeline
//
// Every Execute walks the same stages, each failing with its own error
// phase:
//
//	Load     compile and validate the binary, scan its imports   [load]
//	Plan     size the arena and lay out the regions              [size]
//	Resolve  bind env.memory to a fresh arena of exactly N pages [resolve]
//	Invoke   instantiate, write inputs, call the entry           [exec]
//	Extract  read the scalar or copy the output region           [extract]
//
// The wazero runtime is created per call and closed before Execute
// returns, so nothing outlives a call and an Engine needs no locking.
//
// # Calling convention
//
// Inputs are laid out back to back from offset 0, followed by the output
// region when the profile writes a buffer. The entry receives one
// (offset, length) i32 pair per region:
//
//	Scalar(t)    exec(in, len) -> t
//	Buffer       exec(in, len, out, cap) [-> status]
//	Terminated   exec(in, len, out, cap) [-> status], payload ends at the first 0
//	...-nocap    exec(in, len, out) [-> status], the guest is not told cap
//	WithSchema   exec(in, len, schema, schema_len, out, cap) [-> status]
//	Append(t)    exec_append(a, a_len, b, b_len) -> t
//
// A non-zero status is reported as an [exec] guest_status error.
//
// # Usage
//
//	e, err := engine.New(nil)
//	if err != nil {
//	    return err
//	}
//	res, err := e.Execute(ctx, engine.Request{
//	    Module:  bin,
//	    Inputs:  [][]byte{input},
//	    Profile: abi.Scalar(api.ValueTypeI32),
//	})
package engine
