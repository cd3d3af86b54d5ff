// Package scene provides the host-side object model over the engine's
// handle-indexed state: the runtime context, identity-cached entity wrappers,
// strided attribute accessors, and material parameter dispatch.
//
// A Context owns the scratch arena, the per-kind identity caches, the shader
// parameter tables, and the pending-load table. Everything it wraps holds only
// a handle; all behavior is expressed as boundary calls staged through the
// arena. Wrapping the same handle twice returns the same pointer, so host code
// can compare wrappers by identity.
//
// A Context and its wrappers must be driven from a single goroutine. Async
// load completions arrive through the engine's completion entry point on that
// same logical thread.
package scene
