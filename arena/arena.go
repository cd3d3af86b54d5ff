package arena

import (
	"fmt"

	scenebridge "github.com/wippyai/scene-bridge"
	"github.com/wippyai/scene-bridge/errors"
)

// ChunkSize is the growth granularity in bytes. Requested sizes are rounded
// up to the next multiple to bound reallocation frequency.
const ChunkSize = 1024

// arenaAlign is the alignment of the backing region on the native heap.
// 8 covers every element width the views expose.
const arenaAlign = 8

// Arena is a growable staging buffer in the engine's shared memory.
// Not safe for concurrent use; the binding is single-threaded by design.
type Arena struct {
	mem   scenebridge.Memory
	sizer scenebridge.MemorySizer
	alloc scenebridge.Allocator
	buf   []byte
	base  uint32
	cap   uint32
	gen   uint32

	// memSize is the shared memory's size when buf was last mapped. Growing
	// a wasm linear memory relocates it and detaches every slice previously
	// returned by Read, so a size change means buf must be re-mapped.
	memSize uint32
}

// New creates an empty arena. No native memory is allocated until the first
// Ensure call.
//
// When mem reports its size (scenebridge.MemorySizer), views transparently
// re-map the backing slice after the memory grows; growth can happen inside
// any engine call that allocates. A memory that cannot report its size is
// assumed to have stable backing.
func New(mem scenebridge.Memory, alloc scenebridge.Allocator) *Arena {
	a := &Arena{mem: mem, alloc: alloc}
	a.sizer, _ = mem.(scenebridge.MemorySizer)
	return a
}

// Ensure guarantees the arena's capacity is at least size bytes, growing in
// ChunkSize multiples if needed. Growth obtains a fresh base address from the
// native allocator and invalidates all previously obtained views.
//
// Call before every use whose required size is not statically known to fit.
func (a *Arena) Ensure(size uint32) error {
	if size <= a.cap {
		return nil
	}

	newCap := (size + ChunkSize - 1) / ChunkSize * ChunkSize
	newBase, err := a.alloc.Alloc(newCap, arenaAlign)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseArena, newCap, err)
	}

	buf, err := a.mem.Read(newBase, newCap)
	if err != nil {
		return errors.Wrap(errors.PhaseArena, errors.KindOutOfBounds, err, "map arena backing region")
	}

	if a.cap > 0 {
		a.alloc.Free(a.base, a.cap, arenaAlign)
	}

	a.base = newBase
	a.cap = newCap
	a.buf = buf
	if a.sizer != nil {
		a.memSize = a.sizer.Size()
	}
	a.gen++
	return nil
}

// refresh re-maps the backing slice if the shared memory has grown since the
// last mapping. The arena's base offset stays valid across memory growth;
// only the Go-side slice detaches.
func (a *Arena) refresh() {
	if a.sizer == nil || a.cap == 0 {
		return
	}
	size := a.sizer.Size()
	if size == a.memSize {
		return
	}
	buf, err := a.mem.Read(a.base, a.cap)
	if err != nil {
		// The memory only grows; a region that mapped before growth always
		// maps after it.
		panic(fmt.Sprintf("arena: re-map backing region after memory growth: %v", err))
	}
	a.buf = buf
	a.memSize = size
}

// Base returns the arena's current base address in shared memory.
// Pass this (plus an offset) to native calls that read or fill the arena.
func (a *Arena) Base() uint32 {
	return a.base
}

// Cap returns the current capacity in bytes.
func (a *Arena) Cap() uint32 {
	return a.cap
}

// Generation returns the current growth generation. It advances exactly once
// per reallocation, so it doubles as a reallocation counter.
func (a *Arena) Generation() uint32 {
	return a.gen
}

// View returns the typed view over the arena's current base address.
// The view is invalid after any Ensure call that grows the arena;
// re-acquire after any Ensure whose outcome is not statically known.
func (a *Arena) View() View {
	return View{a: a, gen: a.gen}
}

// Release frees the backing region. The arena returns to its initial empty
// state and may be reused; any outstanding view is invalidated.
func (a *Arena) Release() {
	if a.cap == 0 {
		return
	}
	a.alloc.Free(a.base, a.cap, arenaAlign)
	a.base = 0
	a.cap = 0
	a.buf = nil
	a.gen++
}
