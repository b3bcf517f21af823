package arena

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	wasmsandbox "github.com/wippyai/wasm-sandbox"
	"github.com/wippyai/wasm-sandbox/errors"
)

// Arena is the host-owned linear memory handed to exactly one guest
// instance. Reads return copies; the guest cannot observe or retain
// host buffers.
type Arena struct {
	mem api.Memory
}

// New wraps a memory instance.
func New(mem api.Memory) *Arena {
	return &Arena{mem: mem}
}

// Memory returns the underlying memory.
func (a *Arena) Memory() api.Memory {
	return a.mem
}

// Size returns the arena size in bytes.
func (a *Arena) Size() uint32 {
	if a.mem == nil {
		return 0
	}
	return a.mem.Size()
}

// Pages returns the arena size in pages.
func (a *Arena) Pages() uint32 {
	return a.Size() / PageSize
}

// Contains reports whether r lies entirely inside the arena.
func (a *Arena) Contains(r Region) bool {
	return r.End() <= uint64(a.Size())
}

// Read copies length bytes starting at offset.
func (a *Arena) Read(offset uint32, length uint32) ([]byte, error) {
	if !a.Contains(Region{Offset: offset, Length: length}) {
		return nil, errors.OutOfBounds(errors.PhaseExtract, offset, length, a.Size())
	}
	if length == 0 {
		return []byte{}, nil
	}
	view, ok := a.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseExtract, offset, length, a.Size())
	}
	out := make([]byte, length)
	copy(out, view)
	return out, nil
}

// Write copies data into the arena at offset.
func (a *Arena) Write(offset uint32, data []byte) error {
	n := uint64(len(data))
	if uint64(offset)+n > uint64(a.Size()) {
		return errors.MemoryWrite(offset, uint32(min(n, math.MaxUint32)), a.Size())
	}
	if len(data) == 0 {
		return nil
	}
	if !a.mem.Write(offset, data) {
		return errors.MemoryWrite(offset, uint32(len(data)), a.Size())
	}
	return nil
}

func (a *Arena) ReadU32(offset uint32) (uint32, error) {
	val, ok := a.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseExtract, offset, 4, a.Size())
	}
	return val, nil
}

func (a *Arena) ReadU64(offset uint32) (uint64, error) {
	val, ok := a.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseExtract, offset, 8, a.Size())
	}
	return val, nil
}

func (a *Arena) WriteU32(offset uint32, value uint32) error {
	if !a.mem.WriteUint32Le(offset, value) {
		return errors.MemoryWrite(offset, 4, a.Size())
	}
	return nil
}

func (a *Arena) WriteU64(offset uint32, value uint64) error {
	if !a.mem.WriteUint64Le(offset, value) {
		return errors.MemoryWrite(offset, 8, a.Size())
	}
	return nil
}

// Compile-time check that Arena implements wasmsandbox.Memory and MemorySizer
var _ wasmsandbox.Memory = (*Arena)(nil)
var _ wasmsandbox.MemorySizer = (*Arena)(nil)
