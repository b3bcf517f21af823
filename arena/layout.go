package arena

import (
	"fmt"
	"math"

	"github.com/wippyai/wasm-sandbox/errors"
)

// Region is a contiguous byte range inside an arena.
type Region struct {
	Offset uint32
	Length uint32
}

// End returns the first offset past the region.
func (r Region) End() uint64 {
	return uint64(r.Offset) + uint64(r.Length)
}

func (r Region) String() string {
	return fmt.Sprintf("[%d, %d)", r.Offset, r.End())
}

// Layout places input regions back to back from offset zero, followed by
// the output region, inside an arena of Pages pages.
type Layout struct {
	Inputs []Region
	Output Region
	Pages  uint32
}

// Bytes returns the arena capacity in bytes.
func (l Layout) Bytes() uint64 {
	return uint64(l.Pages) * PageSize
}

// Used returns the number of bytes covered by regions.
func (l Layout) Used() uint64 {
	return l.Output.End()
}

// Plan sizes an arena for the given input and output lengths and lays the
// regions out sequentially.
func Plan(l Limits, inputLens []uint64, outputLen uint64) (Layout, error) {
	var total uint64
	for i, n := range inputLens {
		next := total + n
		if next < total {
			return Layout{}, errors.Overflow(fmt.Sprintf("input %d length", i), n)
		}
		total = next
	}

	pages, err := Size(l, total, outputLen)
	if err != nil {
		return Layout{}, err
	}

	layout := Layout{
		Inputs: make([]Region, len(inputLens)),
		Pages:  pages,
	}
	var offset uint64
	for i, n := range inputLens {
		r, err := region(offset, n)
		if err != nil {
			return Layout{}, err
		}
		layout.Inputs[i] = r
		offset += n
	}
	out, err := region(offset, outputLen)
	if err != nil {
		return Layout{}, err
	}
	layout.Output = out
	return layout, nil
}

func region(offset, length uint64) (Region, error) {
	if offset > math.MaxUint32 {
		return Region{}, errors.Overflow(fmt.Sprintf("region offset %d", offset), offset)
	}
	if length > math.MaxUint32 {
		return Region{}, errors.Overflow(fmt.Sprintf("region length %d", length), length)
	}
	return Region{Offset: uint32(offset), Length: uint32(length)}, nil
}

// Lengths returns the lengths of the given byte slices.
func Lengths(bufs [][]byte) []uint64 {
	lens := make([]uint64, len(bufs))
	for i, b := range bufs {
		lens[i] = uint64(len(b))
	}
	return lens
}
