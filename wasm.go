package wasmsandbox

// Memory represents the host-owned linear memory a guest runs against
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of the linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}
