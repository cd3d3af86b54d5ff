package scenebridge

// Memory represents the engine's shared linear memory.
// Read may return a slice aliasing the underlying buffer; writes through
// such a slice are visible to the engine. Growing the memory may relocate
// the buffer and detach previously returned slices; a growable Memory
// should also implement MemorySizer so holders of such slices can detect
// the growth and re-read.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of the shared memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates memory on the engine's native heap.
// Used both for the scratch arena backing region and for variable-length
// data (strings, index buffers) that must outlive a single call.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
