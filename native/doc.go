// Package native defines the boundary contract between the binding and the
// engine runtime: the flat handle-based call surface, the handle namespaces,
// and the fixed-layout blocks exchanged through shared memory.
//
// The binding never synthesizes handles; they are only ever issued by the
// engine. A destroyed entity's handle may be recycled for a new entity, so
// host code must treat handles as weak references.
//
// Structured results (attribute descriptors, ray hits, parameter info) are
// offset-based fixed layouts, not self-describing; their version compatibility
// is the engine's responsibility. Encode/Decode helpers here are shared by the
// real wazero-backed engine and by in-memory test engines.
package native
