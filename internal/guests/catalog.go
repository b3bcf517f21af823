package guests

import (
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-sandbox/abi"
)

// Guest is a named reference guest together with how to call it.
type Guest struct {
	Name    string
	Profile abi.Profile
	// Floats is set when the guest reads f64 input instead of i32.
	Floats  bool
	Build   func() []byte
}

// Matches reports whether a fixture case is meant for g. Cases are named
// after the guest with a free-form suffix, e.g. mean_int_works.
func (g Guest) Matches(caseName string) bool {
	return caseName == g.Name || strings.HasPrefix(caseName, g.Name+"_")
}

var catalog = []Guest{
	{Name: "mean_int", Profile: abi.Scalar(api.ValueTypeI32), Build: MeanInt},
	{Name: "mean_float", Profile: abi.Scalar(api.ValueTypeF64), Floats: true, Build: MeanFloat},
	{Name: "median_int", Profile: abi.Scalar(api.ValueTypeI32), Build: MedianInt},
	{Name: "median_float", Profile: abi.Scalar(api.ValueTypeF64), Floats: true, Build: MedianFloat},
	{Name: "sd_int", Profile: abi.Scalar(api.ValueTypeF32), Build: SDInt},
	{Name: "sd_float", Profile: abi.Scalar(api.ValueTypeF64), Floats: true, Build: SDFloat},
}

// Catalog returns the single-input statistics guests.
func Catalog() []Guest {
	out := make([]Guest, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog guest by exact name.
func Lookup(name string) (Guest, bool) {
	for _, g := range catalog {
		if g.Name == name {
			return g, true
		}
	}
	return Guest{}, false
}

// ForCase finds the guest a fixture case is meant for. Longer names win,
// so median_int_x never resolves to a shorter prefix.
func ForCase(caseName string) (Guest, bool) {
	var best Guest
	found := false
	for _, g := range catalog {
		if g.Matches(caseName) && len(g.Name) > len(best.Name) {
			best, found = g, true
		}
	}
	return best, found
}
