// Package wasmengine implements the native.Engine boundary over a scene
// engine compiled to WebAssembly, executed with wazero.
//
// Every boundary method maps to one exported function of the engine module;
// the shared memory is the module's linear memory, and the native heap is
// reached through the exported engine_alloc/engine_free pair. Async load
// completions are delivered by the engine through the "bridge" host module's
// load-complete entry point.
//
// The engine's exported ABI is validated at load time against an embedded
// WIT signature table, so a mismatched engine build fails fast instead of
// trapping mid-frame.
package wasmengine
