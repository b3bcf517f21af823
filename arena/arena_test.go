package arena

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

func newTestArena(t *testing.T, pages uint32) *Arena {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.InstantiateWithConfig(ctx, wasmbin.MemoryModule("memory", pages), wazero.NewModuleConfig().WithName("env"))
	if err != nil {
		t.Fatalf("instantiate memory module: %v", err)
	}
	return New(mod.ExportedMemory("memory"))
}

func TestArena_RoundTrip(t *testing.T) {
	a := newTestArena(t, 1)

	if a.Pages() != 1 || a.Size() != PageSize {
		t.Fatalf("Pages=%d Size=%d, want 1 page", a.Pages(), a.Size())
	}

	tests := []struct {
		name   string
		offset uint32
		data   []byte
	}{
		{"start", 0, []byte("hello")},
		{"middle", 1000, []byte{0, 1, 2, 3, 255}},
		{"ends at boundary", PageSize - 3, []byte{7, 8, 9}},
		{"empty at end", PageSize, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.Write(tt.offset, tt.data); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := a.Read(tt.offset, uint32(len(tt.data)))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("Read = %v, want %v", got, tt.data)
			}
		})
	}
}

func TestArena_ReadReturnsCopy(t *testing.T) {
	a := newTestArena(t, 1)
	if err := a.Write(0, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	got, err := a.Read(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	got[0] = 99

	again, _ := a.Read(0, 1)
	if again[0] != 1 {
		t.Errorf("mutating a read result changed the arena: %d", again[0])
	}
}

func TestArena_Bounds(t *testing.T) {
	a := newTestArena(t, 1)

	readTests := []struct {
		name   string
		offset uint32
		length uint32
	}{
		{"one past end", PageSize - 1, 2},
		{"offset past end", PageSize + 1, 0},
		{"huge length", 0, ^uint32(0)},
		{"wraps u32", ^uint32(0), 2},
	}
	for _, tt := range readTests {
		t.Run("read "+tt.name, func(t *testing.T) {
			_, err := a.Read(tt.offset, tt.length)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseExtract, Kind: errors.KindOutOfBounds}) {
				t.Errorf("error = %v, want [extract] out_of_bounds", err)
			}
		})
	}

	if err := a.Write(PageSize-1, []byte{1, 2}); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseExec, Kind: errors.KindMemoryWrite}) {
		t.Errorf("write past end: error = %v, want [exec] memory_write", err)
	}
	if err := a.WriteU64(PageSize-4, 1); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseExec, Kind: errors.KindMemoryWrite}) {
		t.Errorf("WriteU64 past end: error = %v", err)
	}
	if _, err := a.ReadU32(PageSize - 2); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseExtract, Kind: errors.KindOutOfBounds}) {
		t.Errorf("ReadU32 past end: error = %v", err)
	}
}

func TestArena_Words(t *testing.T) {
	a := newTestArena(t, 1)

	if err := a.WriteU32(8, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := a.WriteU64(16, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	u32, err := a.ReadU32(8)
	if err != nil || u32 != 0xdeadbeef {
		t.Errorf("ReadU32 = %x, %v", u32, err)
	}
	u64, err := a.ReadU64(16)
	if err != nil || u64 != 0x0102030405060708 {
		t.Errorf("ReadU64 = %x, %v", u64, err)
	}
	raw, _ := a.Read(8, 4)
	if !bytes.Equal(raw, []byte{0xef, 0xbe, 0xad, 0xde}) {
		t.Errorf("words are not little endian: %x", raw)
	}
}

func TestArena_ZeroPages(t *testing.T) {
	a := newTestArena(t, 0)
	if a.Size() != 0 {
		t.Fatalf("Size = %d, want 0", a.Size())
	}
	if err := a.Write(0, nil); err != nil {
		t.Errorf("empty write to empty arena: %v", err)
	}
	if err := a.Write(0, []byte{1}); err == nil {
		t.Error("write to empty arena should fail")
	}
}

func TestArena_Contains(t *testing.T) {
	a := newTestArena(t, 2)
	if !a.Contains(Region{Offset: PageSize, Length: PageSize}) {
		t.Error("second page should be contained")
	}
	if a.Contains(Region{Offset: PageSize, Length: PageSize + 1}) {
		t.Error("region past the end should not be contained")
	}
}
