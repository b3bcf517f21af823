package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-sandbox/fixture"
)

// parseInput turns an --in argument into guest bytes. Arguments are
//
//	file:PATH      file contents (also the meaning of a bare PATH)
//	text:STRING    the literal string
//	hex:DIGITS     hex-decoded bytes
//	ints:1,2,3     little-endian i32 array
//	floats:1.5,2   little-endian f64 array
func parseInput(arg string) ([]byte, error) {
	kind, value, ok := strings.Cut(arg, ":")
	if !ok {
		kind, value = "file", arg
	}

	switch kind {
	case "file":
		data, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	case "text":
		return []byte(value), nil
	case "hex":
		data, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("hex input: %w", err)
		}
		return data, nil
	case "ints":
		v, err := parseInts(value)
		if err != nil {
			return nil, err
		}
		return fixture.EncodeInts(v), nil
	case "floats":
		v, err := parseFloats(value)
		if err != nil {
			return nil, err
		}
		return fixture.EncodeFloats(v), nil
	default:
		// a path that happens to contain a colon
		if _, err := os.Stat(arg); err == nil {
			return os.ReadFile(arg)
		}
		return nil, fmt.Errorf("unknown input kind %q", kind)
	}
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseInts(s string) ([]int32, error) {
	fields := splitList(s)
	out := make([]int32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("ints input: %w", err)
		}
		out[i] = int32(v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	fields := splitList(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("floats input: %w", err)
		}
		out[i] = v
	}
	return out, nil
}

func formatNumbers(ints []int32, floats []float64) string {
	parts := make([]string, 0, len(ints)+len(floats))
	for _, v := range ints {
		parts = append(parts, strconv.FormatInt(int64(v), 10))
	}
	for _, v := range floats {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}
