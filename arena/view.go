package arena

import (
	"encoding/binary"
	"fmt"
	"math"
)

// View is a borrow of the arena's backing region, valid for one generation.
// All accessors are little-endian and indexed in elements of the accessor's
// width, over the same base offset, mirroring overlapping typed views.
//
// Using a view after the arena has grown is a programming error and panics;
// the old base address no longer belongs to the arena.
type View struct {
	a   *Arena
	gen uint32
}

func (v View) check() {
	if v.gen != v.a.gen {
		panic(fmt.Sprintf("arena: stale view (generation %d, arena at %d); re-acquire after Ensure", v.gen, v.a.gen))
	}
	v.a.refresh()
}

// Len8 returns the view's length in bytes.
func (v View) Len8() int {
	v.check()
	return len(v.a.buf)
}

// Len16 returns the view's length in 16-bit elements.
func (v View) Len16() int {
	v.check()
	return len(v.a.buf) / 2
}

// Len32 returns the view's length in 32-bit elements. Shared by the
// integer and float32 accessors.
func (v View) Len32() int {
	v.check()
	return len(v.a.buf) / 4
}

// Bytes returns the raw backing slice. It aliases shared memory; the engine
// sees writes immediately. Do not retain across Ensure or across native
// calls; memory growth detaches the slice.
func (v View) Bytes() []byte {
	v.check()
	return v.a.buf
}

func (v View) U8(i int) uint8 {
	v.check()
	return v.a.buf[i]
}

func (v View) PutU8(i int, val uint8) {
	v.check()
	v.a.buf[i] = val
}

func (v View) U16(i int) uint16 {
	v.check()
	return binary.LittleEndian.Uint16(v.a.buf[i*2:])
}

func (v View) PutU16(i int, val uint16) {
	v.check()
	binary.LittleEndian.PutUint16(v.a.buf[i*2:], val)
}

func (v View) U32(i int) uint32 {
	v.check()
	return binary.LittleEndian.Uint32(v.a.buf[i*4:])
}

func (v View) PutU32(i int, val uint32) {
	v.check()
	binary.LittleEndian.PutUint32(v.a.buf[i*4:], val)
}

func (v View) I32(i int) int32 {
	return int32(v.U32(i))
}

func (v View) PutI32(i int, val int32) {
	v.PutU32(i, uint32(val))
}

func (v View) F32(i int) float32 {
	return math.Float32frombits(v.U32(i))
}

func (v View) PutF32(i int, val float32) {
	v.PutU32(i, math.Float32bits(val))
}
