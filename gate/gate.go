// Package gate is the trust boundary in front of the engine. Calls take
// only byte slices, write primitive results through caller-provided
// pointers and return a Status instead of an error. Nothing is retained
// between calls.
package gate

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/engine"
	"github.com/wippyai/wasm-sandbox/errors"
)

// Gate wraps an engine with status-returning entry points.
type Gate struct {
	engine *engine.Engine
	log    *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used to report failed calls.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// New wraps e.
func New(e *engine.Engine, opts ...Option) *Gate {
	g := &Gate{engine: e, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGate = sync.OnceValues(func() (*Gate, error) {
	e, err := engine.New(nil)
	if err != nil {
		return nil, err
	}
	return New(e), nil
})

// Default returns a process-wide gate over an engine with default
// configuration.
func Default() (*Gate, error) {
	return defaultGate()
}

// check rejects nil arguments before anything reaches the engine.
func (g *Gate) check(call string, module []byte, nilOut bool) Status {
	var err error
	switch {
	case module == nil:
		err = errors.InvalidInput(errors.PhaseGate, "module is nil")
	case nilOut:
		err = errors.InvalidInput(errors.PhaseGate, "output is nil")
	default:
		return Success
	}
	g.log.Debug("gate call rejected", zap.String("call", call), zap.Error(err))
	return InvalidParameter
}

func (g *Gate) execute(ctx context.Context, call string, req engine.Request) (*engine.Result, Status) {
	res, err := g.engine.Execute(ctx, req)
	if err != nil {
		st := StatusOf(err)
		g.log.Debug("gate call failed",
			zap.String("call", call),
			zap.Stringer("status", st),
			zap.Error(err))
		return nil, st
	}
	return res, Success
}

func (g *Gate) scalar(ctx context.Context, call string, module []byte, inputs [][]byte, p abi.Profile) (abi.Value, Status) {
	res, st := g.execute(ctx, call, engine.Request{Module: module, Inputs: inputs, Profile: p})
	if st != Success {
		return abi.Value{}, st
	}
	return res.Scalar, Success
}

// ExecI32 calls exec(in, len) -> i32 and stores the result in out.
func (g *Gate) ExecI32(ctx context.Context, module, input []byte, out *int32) Status {
	if st := g.check("exec_i32", module, out == nil); st != Success {
		return st
	}
	v, st := g.scalar(ctx, "exec_i32", module, [][]byte{input}, abi.Scalar(api.ValueTypeI32))
	if st == Success {
		*out = v.I32()
	}
	return st
}

// ExecF32 calls exec(in, len) -> f32 and stores the result in out.
func (g *Gate) ExecF32(ctx context.Context, module, input []byte, out *float32) Status {
	if st := g.check("exec_f32", module, out == nil); st != Success {
		return st
	}
	v, st := g.scalar(ctx, "exec_f32", module, [][]byte{input}, abi.Scalar(api.ValueTypeF32))
	if st == Success {
		*out = v.F32()
	}
	return st
}

// ExecF64 calls exec(in, len) -> f64 and stores the result in out.
func (g *Gate) ExecF64(ctx context.Context, module, input []byte, out *float64) Status {
	if st := g.check("exec_f64", module, out == nil); st != Success {
		return st
	}
	v, st := g.scalar(ctx, "exec_f64", module, [][]byte{input}, abi.Scalar(api.ValueTypeF64))
	if st == Success {
		*out = v.F64()
	}
	return st
}

// outputLen converts a caller buffer length into an output region length.
// A buffer too large for a 32-bit arena is rejected, never truncated.
func outputLen(n int) (uint32, error) {
	if uint64(n) > math.MaxUint32 {
		return 0, errors.InvalidInput(errors.PhaseGate,
			fmt.Sprintf("output of %d bytes does not fit a 32-bit arena", n))
	}
	return uint32(n), nil
}

// buffer runs a buffer profile with the output region sized to out and
// copies the extracted payload into out.
func (g *Gate) buffer(ctx context.Context, call string, module []byte, inputs [][]byte, out []byte, p abi.Profile) (int, Status) {
	n, err := outputLen(len(out))
	if err != nil {
		g.log.Debug("gate call rejected", zap.String("call", call), zap.Error(err))
		return 0, InvalidParameter
	}
	res, st := g.execute(ctx, call, engine.Request{
		Module:    module,
		Inputs:    inputs,
		OutputLen: n,
		Profile:   p,
	})
	if st != Success {
		return 0, st
	}
	return copy(out, res.Buffer), Success
}

// ExecBuffer calls exec(in, len, out, cap) with cap = len(out) and copies
// the output region into out.
func (g *Gate) ExecBuffer(ctx context.Context, module, input, out []byte) Status {
	if st := g.check("exec_buffer", module, out == nil); st != Success {
		return st
	}
	_, st := g.buffer(ctx, "exec_buffer", module, [][]byte{input}, out, abi.Buffer())
	return st
}

// ExecWithData calls exec(in, len, out) for guests that are not told the
// output capacity. The payload ends at the first zero byte; it is copied
// into out and its length stored in n.
func (g *Gate) ExecWithData(ctx context.Context, module, input, out []byte, n *int) Status {
	if st := g.check("exec_with_data", module, out == nil || n == nil); st != Success {
		return st
	}
	written, st := g.buffer(ctx, "exec_with_data", module, [][]byte{input}, out, abi.Terminated().WithoutCapacity())
	if st == Success {
		*n = written
	}
	return st
}

// ExecWithSchema calls exec(in, len, schema, schema_len, out, cap) with
// cap = len(out) and copies the output region into out.
func (g *Gate) ExecWithSchema(ctx context.Context, module, input, schema, out []byte) Status {
	if st := g.check("exec_with_schema", module, out == nil); st != Success {
		return st
	}
	_, st := g.buffer(ctx, "exec_with_schema", module, [][]byte{input, schema}, out, abi.WithSchema())
	return st
}

// ExecAppend calls exec_append(a, a_len, b, b_len) -> i32 and stores the
// result in out.
func (g *Gate) ExecAppend(ctx context.Context, module, a, b []byte, out *int32) Status {
	if st := g.check("exec_append", module, out == nil); st != Success {
		return st
	}
	v, st := g.scalar(ctx, "exec_append", module, [][]byte{a, b}, abi.Append(api.ValueTypeI32))
	if st == Success {
		*out = v.I32()
	}
	return st
}
