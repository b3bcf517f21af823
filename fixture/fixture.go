// Package fixture reads JSON test data for the reference guests and
// encodes it into the little-endian arrays the guests consume.
//
// A fixture file is one object of named numeric arrays:
//
//	{"mean_int_works": [8, 6, 8, 3, 7, 1, 9]}
package fixture

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Set maps case names to their numbers.
type Set map[string][]json.Number

// Parse decodes a fixture document. Numbers keep their literal form until
// a case is read as ints or floats.
func Parse(data []byte) (Set, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	set := make(Set, len(raw))
	for name, msg := range raw {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var nums []json.Number
		if err := dec.Decode(&nums); err != nil {
			return nil, fmt.Errorf("parse fixture case %q: %w", name, err)
		}
		set[name] = nums
	}
	return set, nil
}

// Load reads and parses a fixture file.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Names returns the case names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ints returns a case as 32-bit integers.
func (s Set) Ints(name string) ([]int32, error) {
	nums, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("fixture case %q not found", name)
	}
	out := make([]int32, len(nums))
	for i, n := range nums {
		v, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("fixture case %q[%d]: %w", name, i, err)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("fixture case %q[%d]: %d does not fit in i32", name, i, v)
		}
		out[i] = int32(v)
	}
	return out, nil
}

// Floats returns a case as 64-bit floats.
func (s Set) Floats(name string) ([]float64, error) {
	nums, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("fixture case %q not found", name)
	}
	out := make([]float64, len(nums))
	for i, n := range nums {
		v, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("fixture case %q[%d]: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Encode returns a case encoded for a guest reading f64 (floats) or i32
// arrays.
func (s Set) Encode(name string, floats bool) ([]byte, error) {
	if floats {
		v, err := s.Floats(name)
		if err != nil {
			return nil, err
		}
		return EncodeFloats(v), nil
	}
	v, err := s.Ints(name)
	if err != nil {
		return nil, err
	}
	return EncodeInts(v), nil
}

// EncodeInts lays values out as little-endian i32.
func EncodeInts(values []int32) []byte {
	buf := make([]byte, 0, 4*len(values))
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}

// EncodeFloats lays values out as little-endian f64.
func EncodeFloats(values []float64) []byte {
	buf := make([]byte, 0, 8*len(values))
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}
