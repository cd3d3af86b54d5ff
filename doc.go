// Package scenebridge provides a Go binding layer for a native scene engine
// compiled to WebAssembly.
//
// The engine owns all authoritative simulation state (scene graph, components,
// meshes, materials, physics) inside its linear memory, addressed by integer
// handles. The binding never copies that state into Go; it wraps handles in
// thin value-like objects and stages structured arguments and results through
// a growable scratch arena in the shared memory.
//
// # Architecture Overview
//
//	scenebridge/         Root package with Memory and Allocator interfaces
//	├── scene/           Runtime context, entity wrappers, identity cache,
//	│                    attribute accessors, material parameter dispatch
//	├── arena/           Scratch arena with generation-checked typed views
//	├── native/          Boundary contract: the Engine call surface and
//	│                    fixed-layout result blocks
//	│   └── wasmengine/  wazero-backed Engine implementation
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Load an engine module and build a scene:
//
//	eng, err := wasmengine.Load(ctx, engineWasm)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	sc, err := scene.New(eng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	nodes, err := sc.CreateNodes(1, 0)
//	root := nodes[0]
//	root.SetPosition(0, 1, 0)
//
// # Memory Model
//
// The engine's linear memory can only grow, never shrink. The scratch arena
// follows the same rule: its capacity only grows, and growth invalidates every
// previously obtained view. Views carry a generation counter and panic on
// stale use rather than silently reading through a dead base address.
//
// # Thread Safety
//
// The binding is single-threaded by design. A Context and everything wrapped
// by it must be driven from one goroutine; there is no internal locking. Async
// load completions are delivered on the same logical thread via the engine's
// completion entry points.
package scenebridge
