package arena

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/wippyai/wasm-sandbox/errors"
)

func TestSize(t *testing.T) {
	noFloor := Limits{MaxPages: DefaultMaxPages}

	tests := []struct {
		name      string
		limits    Limits
		inputLen  uint64
		outputLen uint64
		want      uint32
		wantKind  errors.Kind
	}{
		{"empty without floor", noFloor, 0, 0, 0, ""},
		{"empty with floor", DefaultLimits(), 0, 0, 1, ""},
		{"one byte", noFloor, 1, 0, 1, ""},
		{"exactly one page", noFloor, PageSize - 4, 4, 1, ""},
		{"one byte over a page", noFloor, PageSize, 1, 2, ""},
		{"output only", noFloor, 0, 3 * PageSize, 3, ""},
		{"floor above need", Limits{MinPages: 4, MaxPages: 10}, 10, 10, 4, ""},
		{"at max", noFloor, DefaultMaxPages * PageSize, 0, DefaultMaxPages, ""},
		{"one over max", noFloor, DefaultMaxPages*PageSize + 1, 0, 0, errors.KindTooLarge},
		{"far over max", noFloor, 1 << 40, 0, 0, errors.KindTooLarge},
		{"full address space", Limits{MaxPages: MaxPagesLimit}, 1 << 32, 0, MaxPagesLimit, ""},
		{"zero max clamps to address space", Limits{}, 1<<32 + 1, 0, 0, errors.KindTooLarge},
		{"overflow", noFloor, math.MaxUint64, 1, 0, errors.KindOverflow},
		{"overflow both large", noFloor, math.MaxUint64 / 2, math.MaxUint64/2 + 2, 0, errors.KindOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Size(tt.limits, tt.inputLen, tt.outputLen)
			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected %s error, got %d pages", tt.wantKind, got)
				}
				if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseSize, Kind: tt.wantKind}) {
					t.Errorf("error = %v, want [size] %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSize_Deterministic(t *testing.T) {
	l := DefaultLimits()
	for _, n := range []uint64{0, 1, 100, PageSize, 5 * PageSize / 2} {
		a, errA := Size(l, n, 16)
		b, errB := Size(l, n, 16)
		if a != b || (errA == nil) != (errB == nil) {
			t.Errorf("Size(%d) not deterministic: %d vs %d", n, a, b)
		}
	}
}

func TestSize_CapacityCoversRequest(t *testing.T) {
	l := Limits{MaxPages: DefaultMaxPages}
	for _, n := range []uint64{1, 7, 65535, 65536, 65537, 200000, 1 << 20} {
		pages, err := Size(l, n, n/3)
		if err != nil {
			t.Fatalf("Size(%d): %v", n, err)
		}
		need := n + n/3
		if uint64(pages)*PageSize < need {
			t.Errorf("Size(%d): %d pages cannot hold %d bytes", n, pages, need)
		}
		if pages > 0 && uint64(pages-1)*PageSize >= need {
			t.Errorf("Size(%d): %d pages is more than needed for %d bytes", n, pages, need)
		}
	}
}

func TestLimits_Validate(t *testing.T) {
	tests := []struct {
		name    string
		limits  Limits
		wantErr bool
	}{
		{"default", DefaultLimits(), false},
		{"no floor", Limits{MaxPages: 1}, false},
		{"max address space", Limits{MaxPages: MaxPagesLimit}, false},
		{"zero max", Limits{}, true},
		{"above address space", Limits{MaxPages: MaxPagesLimit + 1}, true},
		{"min above max", Limits{MinPages: 5, MaxPages: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.limits.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !stderrors.Is(err, errors.ErrConfig) {
				t.Errorf("error %v should be a config error", err)
			}
		})
	}
}
