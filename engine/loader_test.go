package engine

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/internal/guests"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, DefaultConfig().runtimeConfig())
	defer rt.Close(ctx)

	bin := guests.Append()
	mod, err := Load(ctx, rt, bin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer mod.Close(ctx)

	if mod.Size() != len(bin) {
		t.Errorf("Size = %d, want %d", mod.Size(), len(bin))
	}
	if mod.HasStart() {
		t.Error("HasStart = true")
	}
	if imps := mod.Imports(); len(imps) != 1 || imps[0].Kind != wasmbin.ExternMemory {
		t.Errorf("Imports = %+v", imps)
	}
	if _, ok := mod.Entry("exec_append"); !ok {
		t.Error("exec_append not exported")
	}
	if _, ok := mod.Entry("exec"); ok {
		t.Error("unexpected exec export")
	}

	// The helper summing one array stays internal.
	if exps := mod.Exports(); len(exps) != 1 {
		t.Errorf("Exports = %+v", exps)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		bin  []byte
	}{
		{"empty", nil},
		{"bad magic", []byte{0x01, 0x02, 0x03, 0x04, 0x01, 0x00, 0x00, 0x00}},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}},
		{"truncated section", []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01, 0x10}},
		{"text", []byte("(module)")},
	}

	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, DefaultConfig().runtimeConfig())
	defer rt.Close(ctx)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := Load(ctx, rt, tt.bin)
			if mod != nil {
				t.Error("module returned on failure")
			}
			wantKind(t, err, errors.PhaseLoad, errors.KindMalformed)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Limits.MaxPages = 0
	if err := cfg.Validate(); err == nil {
		t.Error("MaxPages 0 accepted")
	}
}
