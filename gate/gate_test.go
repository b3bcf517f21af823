package gate

import (
	"context"
	stderrors "errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wippyai/wasm-sandbox/engine"
	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/fixture"
	"github.com/wippyai/wasm-sandbox/internal/guests"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	e, err := engine.New(nil)
	require.NoError(t, err)
	return New(e, WithLogger(zaptest.NewLogger(t)))
}

func TestGate_Scalars(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()

	var mean int32
	require.Equal(t, Success, g.ExecI32(ctx, guests.MeanInt(), fixture.EncodeInts([]int32{8, 6, 8, 3, 7, 1, 9}), &mean))
	assert.Equal(t, int32(6), mean)

	var median float64
	require.Equal(t, Success, g.ExecF64(ctx, guests.MedianFloat(), fixture.EncodeFloats([]float64{5, 2, 3, 1, 7, 6, 4, 9}), &median))
	assert.Equal(t, 4.5, median)

	var sd float32
	require.Equal(t, Success, g.ExecF32(ctx, guests.SDInt(), fixture.EncodeInts([]int32{9, 6, 3, 3, 6, 9}), &sd))
	assert.InDelta(t, math.Sqrt(7.2), float64(sd), 1e-6)

	var sum int32
	require.Equal(t, Success, g.ExecAppend(ctx, guests.Append(),
		fixture.EncodeInts([]int32{1, 2, 3, 4, 5}),
		fixture.EncodeInts([]int32{6, 7, 8, 9, 10}), &sum))
	assert.Equal(t, int32(55), sum)
}

func TestGate_Buffers(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()

	out := make([]byte, 8)
	require.Equal(t, Success, g.ExecBuffer(ctx, guests.Echo(), []byte("abc"), out))
	assert.Equal(t, []byte("abc\x00\x00\x00\x00\x00"), out)

	out = make([]byte, 7)
	require.Equal(t, Success, g.ExecWithSchema(ctx, guests.Concat(), []byte("rows"), []byte("v1:"), out))
	assert.Equal(t, "v1:rows", string(out))

	assert.Equal(t, Trap, g.ExecBuffer(ctx, guests.Echo(), []byte("too long"), make([]byte, 2)))
}

func TestGate_WithData(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()

	out := make([]byte, 16)
	n := -1
	require.Equal(t, Success, g.ExecWithData(ctx, guests.EchoUncapped(), []byte(`{"mean":6}`), out, &n))
	assert.Equal(t, 10, n)
	assert.Equal(t, `{"mean":6}`, string(out[:n]))

	// a guest that expects the capacity parameter does not match
	assert.Equal(t, SignatureMismatch, g.ExecWithData(ctx, guests.EchoTerminated(), []byte("x"), out, &n))
	assert.Equal(t, InvalidParameter, g.ExecWithData(ctx, guests.EchoUncapped(), nil, out, nil))
}

func TestOutputLen(t *testing.T) {
	n, err := outputLen(64)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), n)

	n, err = outputLen(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutputLen_RejectsOversizedBuffer(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("slice lengths cannot exceed 4 GiB on 32-bit platforms")
	}
	limit := uint64(math.MaxUint32)
	n, err := outputLen(int(limit))
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), n)

	_, err = outputLen(int(limit + 1))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseGate, Kind: errors.KindInvalidInput}))
}

func TestGate_LeavesOutputOnFailure(t *testing.T) {
	g := newGate(t)
	out := int32(-1)
	st := g.ExecI32(context.Background(), guests.Unreachable(), nil, &out)
	assert.Equal(t, Trap, st)
	assert.Equal(t, int32(-1), out)
}

func TestGate_Statuses(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()
	input := fixture.EncodeInts([]int32{1, 2, 3})

	tests := []struct {
		name   string
		module []byte
		want   Status
	}{
		{"garbage", []byte("garbage"), Malformed},
		{"empty", []byte{}, Malformed},
		{"function import", guests.ImportsFunc(), UnknownImport},
		{"no memory", guests.NoMemory(), UnknownImport},
		{"trap", guests.DivideByZero(), Trap},
		{"start trap", guests.StartTrap(), Trap},
		{"wrong arity", guests.WrongArity(), SignatureMismatch},
		{"no entry", guests.NoEntry(), SignatureMismatch},
		{"type mismatch", guests.MeanFloat(), TypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out int32
			assert.Equal(t, tt.want, g.ExecI32(ctx, tt.module, input, &out))
		})
	}
}

func TestGate_InvalidParameter(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()
	bin := guests.MeanInt()

	var i32 int32
	var f32 float32
	var f64 float64
	assert.Equal(t, InvalidParameter, g.ExecI32(ctx, nil, nil, &i32))
	assert.Equal(t, InvalidParameter, g.ExecI32(ctx, bin, nil, nil))
	assert.Equal(t, InvalidParameter, g.ExecF32(ctx, bin, nil, nil))
	assert.Equal(t, InvalidParameter, g.ExecF32(ctx, nil, nil, &f32))
	assert.Equal(t, InvalidParameter, g.ExecF64(ctx, bin, nil, nil))
	assert.Equal(t, InvalidParameter, g.ExecF64(ctx, nil, nil, &f64))
	assert.Equal(t, InvalidParameter, g.ExecBuffer(ctx, bin, nil, nil))
	assert.Equal(t, InvalidParameter, g.ExecWithSchema(ctx, bin, nil, nil, nil))
	assert.Equal(t, InvalidParameter, g.ExecWithData(ctx, bin, nil, nil, nil))
	assert.Equal(t, InvalidParameter, g.ExecAppend(ctx, bin, nil, nil, nil))
}

func TestDefault(t *testing.T) {
	g1, err := Default()
	require.NoError(t, err)
	g2, err := Default()
	require.NoError(t, err)
	assert.Same(t, g1, g2)

	var out int32
	assert.Equal(t, Success, g1.ExecI32(context.Background(), guests.MeanInt(), fixture.EncodeInts([]int32{2, 4}), &out))
	assert.Equal(t, int32(3), out)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, Success},
		{stderrors.New("plain"), Unexpected},
		{errors.Malformed("bad", nil), Malformed},
		{errors.Overflow("length", 1), TooLarge},
		{errors.TooLarge(2000, 1600), TooLarge},
		{errors.UnknownImport("env", "log", "func"), UnknownImport},
		{errors.MissingImport("env", "memory"), UnknownImport},
		{errors.IncompatibleLimits("env", "memory", "shared"), UnknownImport},
		{errors.Trap("unreachable", nil), Trap},
		{errors.GuestStatus("exec", 2), Trap},
		{errors.SignatureMismatch("exec", "a", "b"), SignatureMismatch},
		{errors.MissingExport("exec"), SignatureMismatch},
		{errors.OutOfBounds(errors.PhaseExtract, 0, 1, 0), OutOfBounds},
		{errors.MemoryWrite(0, 1, 0), OutOfBounds},
		{errors.TypeMismatch("i32", "f64"), TypeMismatch},
		{errors.InvalidInput(errors.PhaseExec, "x"), InvalidParameter},
		{&errors.Error{Phase: errors.PhaseExec, Kind: "novel"}, Unexpected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), "StatusOf(%v)", tt.err)
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "signature_mismatch", SignatureMismatch.String())
	assert.Equal(t, "unexpected", Unexpected.String())
	assert.Equal(t, "status(42)", Status(42).String())
	assert.Equal(t, "status(-1)", Status(-1).String())
	assert.True(t, Success.OK())
	assert.False(t, Trap.OK())
	assert.Equal(t, int32(9), int32(Unexpected))
}
