package arena

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/wippyai/wasm-sandbox/errors"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []uint64
		outputLen uint64
		wantIn    []Region
		wantOut   Region
		wantPages uint32
	}{
		{
			name:      "scalar",
			inputs:    []uint64{28},
			wantIn:    []Region{{Offset: 0, Length: 28}},
			wantOut:   Region{Offset: 28, Length: 0},
			wantPages: 1,
		},
		{
			name:      "buffer",
			inputs:    []uint64{10},
			outputLen: 4,
			wantIn:    []Region{{Offset: 0, Length: 10}},
			wantOut:   Region{Offset: 10, Length: 4},
			wantPages: 1,
		},
		{
			name:      "schema",
			inputs:    []uint64{100, 20},
			outputLen: 65536,
			wantIn:    []Region{{Offset: 0, Length: 100}, {Offset: 100, Length: 20}},
			wantOut:   Region{Offset: 120, Length: 65536},
			wantPages: 2,
		},
		{
			name:      "empty inputs",
			inputs:    []uint64{0, 0},
			outputLen: 8,
			wantIn:    []Region{{Offset: 0, Length: 0}, {Offset: 0, Length: 0}},
			wantOut:   Region{Offset: 0, Length: 8},
			wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Plan(Limits{MaxPages: DefaultMaxPages}, tt.inputs, tt.outputLen)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if l.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", l.Pages, tt.wantPages)
			}
			if len(l.Inputs) != len(tt.wantIn) {
				t.Fatalf("got %d inputs, want %d", len(l.Inputs), len(tt.wantIn))
			}
			for i, r := range tt.wantIn {
				if l.Inputs[i] != r {
					t.Errorf("input %d = %v, want %v", i, l.Inputs[i], r)
				}
			}
			if l.Output != tt.wantOut {
				t.Errorf("output = %v, want %v", l.Output, tt.wantOut)
			}
			if l.Used() > l.Bytes() {
				t.Errorf("regions end at %d past capacity %d", l.Used(), l.Bytes())
			}
		})
	}
}

func TestPlan_SequentialNoGaps(t *testing.T) {
	l, err := Plan(DefaultLimits(), []uint64{3, 5, 7}, 11)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	var next uint64
	for i, r := range l.Inputs {
		if uint64(r.Offset) != next {
			t.Errorf("input %d starts at %d, want %d", i, r.Offset, next)
		}
		next = r.End()
	}
	if uint64(l.Output.Offset) != next {
		t.Errorf("output starts at %d, want %d", l.Output.Offset, next)
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []uint64
		outputLen uint64
		want      *errors.Error
	}{
		{"inputs overflow", []uint64{math.MaxUint64, 1}, 0, &errors.Error{Phase: errors.PhaseSize, Kind: errors.KindOverflow}},
		{"output overflow", []uint64{math.MaxUint64}, 1, &errors.Error{Phase: errors.PhaseSize, Kind: errors.KindOverflow}},
		{"too large", []uint64{DefaultMaxPages * PageSize}, 1, &errors.Error{Phase: errors.PhaseSize, Kind: errors.KindTooLarge}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(Limits{MaxPages: DefaultMaxPages}, tt.inputs, tt.outputLen)
			if !stderrors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlan_OffsetPastAddressSpace(t *testing.T) {
	// A 4 GiB input fits the page limit but not a 32-bit region length.
	_, err := Plan(Limits{MaxPages: MaxPagesLimit}, []uint64{1 << 32}, 0)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseSize, Kind: errors.KindOverflow}) {
		t.Errorf("error = %v, want [size] overflow", err)
	}
}

func TestLengths(t *testing.T) {
	got := Lengths([][]byte{nil, {1, 2}, make([]byte, 10)})
	want := []uint64{0, 2, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Lengths()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
