package wasmengine

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	scenebridge "github.com/wippyai/scene-bridge"
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// hostModule is the namespace the engine imports its completion entry
// points from.
const hostModule = "bridge"

// Engine drives a scene engine compiled to WebAssembly through wazero.
// It implements native.Engine. Like the rest of the binding it is
// single-threaded: all calls must come from one goroutine.
type Engine struct {
	ctx     context.Context
	runtime wazero.Runtime
	mod     api.Module
	mem     *memory
	alloc   *allocator
	fns     map[string]api.Function
	onDone  native.CompletionFunc

	// scratch is a small fixed native-heap block for single-value results
	// (material-get-int), separate from the caller-owned arena.
	scratch uint32
}

const scratchSize = 16

var _ native.Engine = (*Engine)(nil)

// Load compiles and instantiates an engine module and validates its
// exported ABI. The returned Engine owns the wazero runtime; Close releases
// everything.
func Load(ctx context.Context, wasm []byte) (*Engine, error) {
	abi, err := parseABI()
	if err != nil {
		return nil, err
	}

	r := wazero.NewRuntime(ctx)
	e := &Engine{
		ctx:     ctx,
		runtime: r,
		fns:     make(map[string]api.Function, len(abi)),
	}

	_, err = r.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().WithFunc(e.loadComplete).Export("load_complete").
		Instantiate(ctx)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Load("register host module", err)
	}

	mod, err := r.Instantiate(ctx, wasm)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Instantiation(err)
	}
	e.mod = mod

	if err := validateExports(mod, abi); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	for name := range abi {
		e.fns[name] = mod.ExportedFunction(name)
	}

	if mod.Memory() == nil {
		_ = r.Close(ctx)
		return nil, errors.InvalidInput(errors.PhaseLoad, "engine module exports no memory")
	}
	e.mem = &memory{mem: mod.Memory()}
	e.alloc = &allocator{ctx: ctx, alloc: e.fns["engine_alloc"], free: e.fns["engine_free"]}

	e.scratch, err = e.alloc.Alloc(scratchSize, 8)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.AllocationFailed(errors.PhaseLoad, scratchSize, err)
	}

	Logger().Info("engine loaded",
		zap.Int("exports", len(e.fns)),
		zap.Uint32("memory_bytes", mod.Memory().Size()))
	return e, nil
}

func (e *Engine) Memory() scenebridge.Memory {
	return e.mem
}

func (e *Engine) Allocator() scenebridge.Allocator {
	return e.alloc
}

func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// call invokes an exported function. A trap inside the engine is a boundary
// contract violation; it is logged and surfaced as a zero result because
// most query entry points have no error channel.
func (e *Engine) call(name string, args ...uint64) uint64 {
	results, err := e.fns[name].Call(e.ctx, args...)
	if err != nil {
		Logger().Error("engine call trapped", zap.String("fn", name), zap.Error(err))
		return 0
	}
	if len(results) == 0 {
		return 0
	}
	return results[0]
}

func (e *Engine) callErr(name string, args ...uint64) error {
	if _, err := e.fns[name].Call(e.ctx, args...); err != nil {
		return errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, name)
	}
	return nil
}

// loadComplete is the completion entry point the engine calls back into.
func (e *Engine) loadComplete(_ context.Context, m api.Module, seq, handle, ok, reasonPtr, reasonLen uint32) {
	var reason string
	if reasonLen > 0 {
		if data, found := m.Memory().Read(reasonPtr, reasonLen); found {
			reason = string(data)
		}
	}
	if e.onDone == nil {
		Logger().Warn("completion with no handler registered", zap.Uint32("seq", seq))
		return
	}
	e.onDone(native.Completion{
		Seq:    seq,
		Handle: native.Handle(handle),
		OK:     ok != 0,
		Reason: reason,
	})
}

// Nodes.

func (e *Engine) NodesCreate(dst uint32, count, componentHint uint32) error {
	return e.callErr("nodes_create", uint64(dst), uint64(count), uint64(componentHint))
}

func (e *Engine) NodeDestroy(h native.Handle) {
	e.call("node_destroy", uint64(h))
}

func (e *Engine) NodeAlive(h native.Handle) bool {
	return e.call("node_alive", uint64(h)) != 0
}

func (e *Engine) NodeParent(h native.Handle) native.Handle {
	return native.Handle(e.call("node_parent", uint64(h)))
}

func (e *Engine) NodeSetParent(h, parent native.Handle) {
	e.call("node_set_parent", uint64(h), uint64(parent))
}

func (e *Engine) NodeChildCount(h native.Handle) uint32 {
	return uint32(e.call("node_child_count", uint64(h)))
}

func (e *Engine) NodeChildren(h native.Handle, dst uint32) error {
	return e.callErr("node_children", uint64(h), uint64(dst))
}

func (e *Engine) NodeActive(h native.Handle) bool {
	return e.call("node_active", uint64(h)) != 0
}

func (e *Engine) NodeSetActive(h native.Handle, active bool) {
	e.call("node_set_active", uint64(h), boolArg(active))
}

func (e *Engine) NodeTransform(h native.Handle, dst uint32) error {
	return e.callErr("node_transform", uint64(h), uint64(dst))
}

func (e *Engine) NodeSetTransform(h native.Handle, src uint32) error {
	return e.callErr("node_set_transform", uint64(h), uint64(src))
}

// Components.

func (e *Engine) ComponentGet(node native.Handle, kind native.Kind) native.Handle {
	return native.Handle(e.call("component_get", uint64(node), uint64(kind)))
}

func (e *Engine) ComponentAdd(node native.Handle, kind native.Kind) native.Handle {
	return native.Handle(e.call("component_add", uint64(node), uint64(kind)))
}

func (e *Engine) ComponentDestroy(kind native.Kind, h native.Handle) {
	e.call("component_destroy", uint64(kind), uint64(h))
}

func (e *Engine) ComponentNode(kind native.Kind, h native.Handle) native.Handle {
	return native.Handle(e.call("component_node", uint64(kind), uint64(h)))
}

func (e *Engine) ComponentActive(kind native.Kind, h native.Handle) bool {
	return e.call("component_active", uint64(kind), uint64(h)) != 0
}

func (e *Engine) ComponentSetActive(kind native.Kind, h native.Handle, active bool) {
	e.call("component_set_active", uint64(kind), uint64(h), boolArg(active))
}

func (e *Engine) KindRegister(namePtr, nameLen uint32) native.Kind {
	return native.Kind(e.call("kind_register", uint64(namePtr), uint64(nameLen)))
}

// Meshes.

func (e *Engine) NodeMesh(node native.Handle) native.Handle {
	return native.Handle(e.call("node_mesh", uint64(node)))
}

func (e *Engine) MeshVertexCount(mesh native.Handle) uint32 {
	return uint32(e.call("mesh_vertex_count", uint64(mesh)))
}

func (e *Engine) MeshAttribute(mesh native.Handle, attr native.Attribute, dst uint32) bool {
	return e.call("mesh_attribute", uint64(mesh), uint64(attr), uint64(dst)) != 0
}

func (e *Engine) MeshRead(mesh native.Handle, attr native.Attribute, first, count, dst uint32) error {
	return e.callErr("mesh_read", uint64(mesh), uint64(attr), uint64(first), uint64(count), uint64(dst))
}

func (e *Engine) MeshWrite(mesh native.Handle, attr native.Attribute, first, count, src uint32) error {
	return e.callErr("mesh_write", uint64(mesh), uint64(attr), uint64(first), uint64(count), uint64(src))
}

// Materials.

func (e *Engine) ComponentMaterial(h native.Handle) native.Handle {
	return native.Handle(e.call("component_material", uint64(h)))
}

func (e *Engine) MaterialDefinition(mat native.Handle) uint32 {
	return uint32(e.call("material_definition", uint64(mat)))
}

func (e *Engine) DefinitionParamCount(def uint32) uint32 {
	return uint32(e.call("definition_param_count", uint64(def)))
}

func (e *Engine) DefinitionParam(def uint32, index, dst, cap uint32) uint32 {
	return uint32(e.call("definition_param", uint64(def), uint64(index), uint64(dst), uint64(cap)))
}

func (e *Engine) MaterialGetFloats(mat native.Handle, index, dst, count uint32) bool {
	return e.call("material_get_floats", uint64(mat), uint64(index), uint64(dst), uint64(count)) != 0
}

func (e *Engine) MaterialSetFloats(mat native.Handle, index, src, count uint32) error {
	return e.callErr("material_set_floats", uint64(mat), uint64(index), uint64(src), uint64(count))
}

func (e *Engine) MaterialGetInt(mat native.Handle, index uint32) (int32, bool) {
	if e.call("material_get_int", uint64(mat), uint64(index), uint64(e.scratch)) == 0 {
		return 0, false
	}
	v, err := e.mem.ReadU32(e.scratch)
	if err != nil {
		Logger().Error("scratch read failed", zap.Error(err))
		return 0, false
	}
	return int32(v), true
}

func (e *Engine) MaterialSetInt(mat native.Handle, index uint32, value int32) error {
	return e.callErr("material_set_int", uint64(mat), uint64(index), uint64(uint32(value)))
}

func (e *Engine) MaterialGetSampler(mat native.Handle, index uint32) native.Handle {
	return native.Handle(e.call("material_get_sampler", uint64(mat), uint64(index)))
}

func (e *Engine) MaterialSetSampler(mat native.Handle, index uint32, tex native.Handle) error {
	return e.callErr("material_set_sampler", uint64(mat), uint64(index), uint64(tex))
}

// Skins and animations.

func (e *Engine) NodeSkin(node native.Handle) native.Handle {
	return native.Handle(e.call("node_skin", uint64(node)))
}

func (e *Engine) SkinJointCount(skin native.Handle) uint32 {
	return uint32(e.call("skin_joint_count", uint64(skin)))
}

func (e *Engine) NodeAnimationCount(node native.Handle) uint32 {
	return uint32(e.call("node_animation_count", uint64(node)))
}

func (e *Engine) NodeAnimation(node native.Handle, index uint32) native.Handle {
	return native.Handle(e.call("node_animation", uint64(node), uint64(index)))
}

func (e *Engine) AnimationDuration(anim native.Handle) float32 {
	return math.Float32frombits(uint32(e.call("animation_duration", uint64(anim))))
}

func (e *Engine) AnimationName(anim native.Handle, dst, cap uint32) uint32 {
	return uint32(e.call("animation_name", uint64(anim), uint64(dst), uint64(cap)))
}

// Physics.

func (e *Engine) Raycast(src, dst uint32) bool {
	return e.call("raycast", uint64(src), uint64(dst)) != 0
}

// Async loads.

func (e *Engine) SceneAppend(node native.Handle, pathPtr, pathLen, seq uint32) {
	e.call("scene_append", uint64(node), uint64(pathPtr), uint64(pathLen), uint64(seq))
}

func (e *Engine) TextureLoad(pathPtr, pathLen, seq uint32) {
	e.call("texture_load", uint64(pathPtr), uint64(pathLen), uint64(seq))
}

func (e *Engine) SetCompletionHandler(fn native.CompletionFunc) {
	e.onDone = fn
}

func boolArg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
