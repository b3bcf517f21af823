package wasmbin

import (
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestScan_Imports(t *testing.T) {
	b := NewBuilder()
	b.ImportMemory("env", "memory", Limits{Min: 1})
	b.ImportFunc("env", "log", FuncType{Params: []api.ValueType{api.ValueTypeI32}})
	b.ImportGlobal("env", "g", api.ValueTypeI64, true)
	b.ImportMemory("host", "shared", Limits{Min: 2, Max: 4, HasMax: true, Shared: true})
	bin := b.Build()

	info, err := Scan(bin)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if info.HasStart {
		t.Error("HasStart should be false")
	}

	want := []Import{
		{Module: "env", Name: "memory", Kind: ExternMemory, Limits: Limits{Min: 1}},
		{Module: "env", Name: "log", Kind: ExternFunc},
		{Module: "env", Name: "g", Kind: ExternGlobal},
		{Module: "host", Name: "shared", Kind: ExternMemory, Limits: Limits{Min: 2, Max: 4, HasMax: true, Shared: true}},
	}
	if len(info.Imports) != len(want) {
		t.Fatalf("got %d imports, want %d", len(info.Imports), len(want))
	}
	for i, w := range want {
		if info.Imports[i] != w {
			t.Errorf("import %d = %+v, want %+v", i, info.Imports[i], w)
		}
	}

	mem, ok := info.Memory()
	if !ok || mem.Name != "memory" {
		t.Errorf("Memory() = %+v, %v", mem, ok)
	}
}

func TestScan_NoImports(t *testing.T) {
	b := NewBuilder()
	fn := b.Func(FuncType{}, nil, NewCode())
	b.Start(fn)

	info, err := Scan(b.Build())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(info.Imports) != 0 {
		t.Errorf("got %d imports, want 0", len(info.Imports))
	}
	if !info.HasStart {
		t.Error("HasStart should be true")
	}
	if _, ok := info.Memory(); ok {
		t.Error("Memory() should report no memory import")
	}
}

func TestScan_Malformed(t *testing.T) {
	valid := NewBuilder().ImportMemory("env", "memory", Limits{Min: 1}).Build()

	tests := []struct {
		name    string
		input   []byte
		wantMsg string
	}{
		{"empty", nil, "unexpected end"},
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00}, "magic"},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, "version"},
		{"section past end", append(append([]byte{}, valid[:8]...), 0x02, 0x7f, 0x01), "section 0x02"},
		{"truncated import", valid[:len(valid)-1], "unexpected end"},
		{"unknown kind", append(append([]byte{}, magic...), append(version, 0x02, 0x05, 0x01, 0x00, 0x00, 0x09, 0x00)...), "unknown kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseImports(t *testing.T) {
	bin := NewBuilder().ImportMemory("env", "memory", Limits{Min: 1, Max: 3, HasMax: true}).Build()
	imports, err := ParseImports(bin)
	if err != nil {
		t.Fatalf("ParseImports: %v", err)
	}
	if len(imports) != 1 || imports[0].Limits.Max != 3 || !imports[0].Limits.HasMax {
		t.Errorf("unexpected imports %+v", imports)
	}
}

func TestExternKind_String(t *testing.T) {
	tests := map[ExternKind]string{
		ExternFunc:      "func",
		ExternTable:     "table",
		ExternMemory:    "memory",
		ExternGlobal:    "global",
		ExternTag:       "tag",
		ExternKind(0x7): "extern(0x07)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
