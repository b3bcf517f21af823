package abi

import (
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/arena"
)

// InvocationParams are the (offset, length) pairs passed to the entry
// function: each input region in order, then the output region for
// buffer profiles. Uncapped profiles pass the output offset alone. They
// are fixed once computed.
type InvocationParams struct {
	regions    []arena.Region
	offsetOnly bool
}

// Regions returns a copy of the regions in parameter order.
func (ip InvocationParams) Regions() []arena.Region {
	return append([]arena.Region(nil), ip.regions...)
}

// Stack returns the parameters as raw i32 stack values.
func (ip InvocationParams) Stack() []uint64 {
	stack := make([]uint64, 0, 2*len(ip.regions))
	for _, r := range ip.regions {
		stack = append(stack, api.EncodeU32(r.Offset), api.EncodeU32(r.Length))
	}
	if ip.offsetOnly {
		stack = stack[:len(stack)-1]
	}
	return stack
}

func (ip InvocationParams) String() string {
	parts := make([]string, len(ip.regions))
	for i, r := range ip.regions {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}
