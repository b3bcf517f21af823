// Package guests builds the reference guest modules used by tests, the
// call gate and the CLI. Every guest is assembled in-process with
// wasmbin.Builder, so no external toolchain is needed.
//
// Well-behaved guests import env.memory and export exec (or exec_append).
// Integer guests read little-endian i32 arrays, float guests read
// little-endian f64 arrays. The faulty guests each break one rule of the
// calling convention or trap in a specific way.
package guests
