// Package abi describes the calling conventions a guest may implement.
//
// Every entry function takes only i32 parameters: an (offset, length) pair
// per input region, then (offset, capacity) of the output region when the
// guest writes its result into the arena. Scalar profiles return the result
// directly; buffer profiles return nothing or an i32 status.
//
//	Scalar(t)     exec(in, len) -> t
//	Buffer()      exec(in, len, out, cap) [-> status]
//	Terminated()  as Buffer, payload ends at the first zero byte
//	WithSchema()  exec(in, len, schema, schema_len, out, cap) [-> status]
//	Append(t)     exec_append(a, a_len, b, b_len) -> t
package abi
