package wasmbin

import (
	"bytes"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestEncodeULEB128(t *testing.T) {
	tests := []struct {
		expected []byte
		input    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff},
	}

	for _, tt := range tests {
		result := EncodeULEB128(tt.input)
		if !bytes.Equal(result, tt.expected) {
			t.Errorf("EncodeULEB128(%d) = %x, want %x", tt.input, result, tt.expected)
		}
	}
}

func TestDecodeULEB128(t *testing.T) {
	tests := []struct {
		name          string
		input         []byte
		expected      uint32
		expectedBytes int
		wantErr       bool
	}{
		{"zero", []byte{0x00}, 0, 1, false},
		{"one byte", []byte{0x7f}, 127, 1, false},
		{"two bytes", []byte{0x80, 0x01}, 128, 2, false},
		{"three bytes", []byte{0xe5, 0x8e, 0x26}, 624485, 3, false},
		{"trailing data ignored", []byte{0x01, 0xff}, 1, 1, false},
		{"max u32", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff, 5, false},
		{"truncated", []byte{0x80, 0x80}, 0, 0, true},
		{"empty", nil, 0, 0, true},
		{"overflows u32", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, 0, 0, true},
		{"too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, n, err := DecodeULEB128(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", result)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected || n != tt.expectedBytes {
				t.Errorf("got (%d, %d), want (%d, %d)", result, n, tt.expected, tt.expectedBytes)
			}
		})
	}
}

func TestEncodeSLEB128(t *testing.T) {
	tests := []struct {
		expected []byte
		input    int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0x80, 0x7f}, -128},
	}

	for _, tt := range tests {
		result := EncodeSLEB128(tt.input)
		if !bytes.Equal(result, tt.expected) {
			t.Errorf("EncodeSLEB128(%d) = %x, want %x", tt.input, result, tt.expected)
		}
	}
}

func TestValTypeToWasm(t *testing.T) {
	tests := []struct {
		vt   api.ValueType
		want byte
	}{
		{api.ValueTypeI32, 0x7f},
		{api.ValueTypeI64, 0x7e},
		{api.ValueTypeF32, 0x7d},
		{api.ValueTypeF64, 0x7c},
	}
	for _, tt := range tests {
		if got := ValTypeToWasm(tt.vt); got != tt.want {
			t.Errorf("ValTypeToWasm(%s) = 0x%02x, want 0x%02x", api.ValueTypeName(tt.vt), got, tt.want)
		}
	}
}

func TestLocalGroups(t *testing.T) {
	groups := localGroups([]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeF64, api.ValueTypeI32})
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[0].count != 2 || groups[1].typ != api.ValueTypeF64 || groups[2].count != 1 {
		t.Errorf("unexpected groups %+v", groups)
	}
}
