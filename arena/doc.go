// Package arena implements the scratch arena used to stage structured
// arguments and results across the host/engine boundary without per-call
// allocation.
//
// The arena is one contiguous region of the engine's shared memory, allocated
// from the native heap and reinterpreted through same-offset typed views of
// widths 8/16/32 bits and float32. Capacity only grows, in fixed chunk
// multiples, and growth invalidates every previously obtained view: views
// carry the generation under which they were taken and panic on stale use.
//
// The arena is a single shared mutable resource with no reentrancy guard.
// Callers must fully consume a view before issuing another call that might
// trigger growth.
package arena
