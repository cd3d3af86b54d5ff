package arena

import (
	"encoding/binary"
	"math"
	"testing"
)

// test helpers

type testMemory struct {
	data []byte
}

func newTestMemory(size int) *testMemory {
	return &testMemory{data: make([]byte, size)}
}

func (m *testMemory) Read(offset uint32, length uint32) ([]byte, error) {
	return m.data[offset : offset+length], nil
}

func (m *testMemory) Write(offset uint32, data []byte) error {
	copy(m.data[offset:], data)
	return nil
}

func (m *testMemory) ReadU8(offset uint32) (uint8, error) { return m.data[offset], nil }
func (m *testMemory) ReadU16(offset uint32) (uint16, error) {
	return binary.LittleEndian.Uint16(m.data[offset:]), nil
}
func (m *testMemory) ReadU32(offset uint32) (uint32, error) {
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}
func (m *testMemory) ReadU64(offset uint32) (uint64, error) {
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}
func (m *testMemory) WriteU8(offset uint32, value uint8) error {
	m.data[offset] = value
	return nil
}
func (m *testMemory) WriteU16(offset uint32, value uint16) error {
	binary.LittleEndian.PutUint16(m.data[offset:], value)
	return nil
}
func (m *testMemory) WriteU32(offset uint32, value uint32) error {
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}
func (m *testMemory) WriteU64(offset uint32, value uint64) error {
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}

type testAllocator struct {
	offset uint32
	allocs int
	frees  int
}

func (a *testAllocator) Alloc(size, align uint32) (uint32, error) {
	a.offset = (a.offset + align - 1) &^ (align - 1)
	addr := a.offset
	a.offset += size
	a.allocs++
	return addr, nil
}

func (a *testAllocator) Free(ptr, size, align uint32) {
	a.frees++
}

func newTestArena(t *testing.T) (*Arena, *testAllocator) {
	t.Helper()
	mem := newTestMemory(1 << 20)
	alloc := &testAllocator{offset: 16}
	return New(mem, alloc), alloc
}

func TestEnsureRoundsUpToChunk(t *testing.T) {
	a, alloc := newTestArena(t)

	if err := a.Ensure(1500); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if a.Cap() != 2048 {
		t.Errorf("cap = %d, want 2048", a.Cap())
	}
	if alloc.allocs != 1 {
		t.Errorf("allocs = %d, want 1", alloc.allocs)
	}

	// Fits already; no growth, no new generation.
	gen := a.Generation()
	if err := a.Ensure(2048); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if a.Generation() != gen {
		t.Errorf("generation advanced on non-growing ensure")
	}
	if alloc.allocs != 1 {
		t.Errorf("allocs = %d, want 1", alloc.allocs)
	}
}

func TestViewLengthsTrackCapacity(t *testing.T) {
	a, _ := newTestArena(t)
	if err := a.Ensure(1500); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	v := a.View()
	if v.Len8() != 2048 {
		t.Errorf("Len8 = %d, want 2048", v.Len8())
	}
	if v.Len16() != 1024 {
		t.Errorf("Len16 = %d, want 1024", v.Len16())
	}
	if v.Len32() != 512 {
		t.Errorf("Len32 = %d, want 512", v.Len32())
	}
}

func TestGrowthFreesOldRegion(t *testing.T) {
	a, alloc := newTestArena(t)
	if err := a.Ensure(100); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := a.Ensure(5000); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if a.Cap() != 5120 {
		t.Errorf("cap = %d, want 5120", a.Cap())
	}
	if alloc.frees != 1 {
		t.Errorf("frees = %d, want 1", alloc.frees)
	}
}

func TestStaleViewPanics(t *testing.T) {
	a, _ := newTestArena(t)
	if err := a.Ensure(100); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	v := a.View()
	v.PutU32(0, 42) // fine under current generation

	if err := a.Ensure(4096); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on stale view use")
		}
	}()
	_ = v.U32(0)
}

func TestOverlappingViews(t *testing.T) {
	a, _ := newTestArena(t)
	if err := a.Ensure(64); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	v := a.View()

	v.PutF32(2, 3.5)
	if got := v.U32(2); got != math.Float32bits(3.5) {
		t.Errorf("U32(2) = %#x, want float bits %#x", got, math.Float32bits(3.5))
	}

	v.PutU32(0, 0x01020304)
	if v.U8(0) != 0x04 || v.U8(3) != 0x01 {
		t.Errorf("little-endian byte layout wrong: % x", v.Bytes()[:4])
	}
	if v.U16(0) != 0x0304 {
		t.Errorf("U16(0) = %#x, want 0x0304", v.U16(0))
	}
}

// relocatingMemory reallocates its backing array on grow, the way a wasm
// linear memory detaches previously returned slices when the module grows it.
type relocatingMemory struct {
	testMemory
	size uint32
}

func (m *relocatingMemory) Size() uint32 { return m.size }

func (m *relocatingMemory) grow(pages uint32) {
	fresh := make([]byte, m.size+pages*65536)
	copy(fresh, m.data)
	m.data = fresh
	m.size += pages * 65536
}

func TestViewRemapsAfterMemoryGrowth(t *testing.T) {
	mem := &relocatingMemory{
		testMemory: testMemory{data: make([]byte, 1<<16)},
		size:       1 << 16,
	}
	alloc := &testAllocator{offset: 16}
	a := New(mem, alloc)

	if err := a.Ensure(64); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	v := a.View()
	v.PutU32(0, 0x11111111)

	// An engine-side allocation grows the module memory, relocating it and
	// detaching every slice handed out before the growth.
	mem.grow(1)

	v.PutU32(0, 0x22222222)
	got, err := mem.ReadU32(a.Base())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != 0x22222222 {
		t.Fatalf("memory at base = %#x, want 0x22222222; view wrote through detached backing", got)
	}
	if a.View().U32(0) != 0x22222222 {
		t.Error("fresh view does not see the staged value")
	}

	// Memory growth is not arena growth; the view stays valid.
	if a.Generation() != 1 {
		t.Errorf("generation = %d, want 1", a.Generation())
	}
}

func TestReleaseReturnsToEmpty(t *testing.T) {
	a, alloc := newTestArena(t)
	if err := a.Ensure(100); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	a.Release()
	if a.Cap() != 0 {
		t.Errorf("cap = %d after release, want 0", a.Cap())
	}
	if alloc.frees != 1 {
		t.Errorf("frees = %d, want 1", alloc.frees)
	}

	// Reusable after release.
	if err := a.Ensure(10); err != nil {
		t.Fatalf("ensure after release: %v", err)
	}
	if a.Cap() != ChunkSize {
		t.Errorf("cap = %d, want %d", a.Cap(), ChunkSize)
	}
}
