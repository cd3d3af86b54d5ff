package native

import (
	"context"

	scenebridge "github.com/wippyai/scene-bridge"
)

// Engine is the flat call surface the binding drives. Every method maps to
// one boundary crossing; structured arguments and results travel through
// shared memory at caller-provided offsets (typically inside the scratch
// arena).
//
// Calls against a destroyed or recycled handle are defined behavior on the
// engine side: queries return the Nil sentinel or zero values, mutations are
// no-ops. The binding layers its own fail-fast checks on top.
type Engine interface {
	// Memory returns the engine's shared linear memory.
	Memory() scenebridge.Memory

	// Allocator allocates on the engine's native heap. Used for the scratch
	// arena backing and for variable-length call data such as path strings.
	Allocator() scenebridge.Allocator

	// Close releases the engine. All wrappers are invalid afterwards.
	Close(ctx context.Context) error

	// Nodes.

	// NodesCreate creates count nodes, reserving storage for componentHint
	// components each, and writes count node handles at dst.
	NodesCreate(dst uint32, count, componentHint uint32) error
	NodeDestroy(h Handle)
	NodeAlive(h Handle) bool
	NodeParent(h Handle) Handle
	NodeSetParent(h, parent Handle)
	NodeChildCount(h Handle) uint32
	// NodeChildren writes NodeChildCount(h) child handles at dst.
	NodeChildren(h Handle, dst uint32) error
	NodeActive(h Handle) bool
	NodeSetActive(h Handle, active bool)
	// NodeTransform writes a TransformSize block at dst.
	NodeTransform(h Handle, dst uint32) error
	NodeSetTransform(h Handle, src uint32) error

	// Components.

	// ComponentGet returns the instance of kind on node, or Nil.
	ComponentGet(node Handle, kind Kind) Handle
	ComponentAdd(node Handle, kind Kind) Handle
	ComponentDestroy(kind Kind, h Handle)
	ComponentNode(kind Kind, h Handle) Handle
	ComponentActive(kind Kind, h Handle) bool
	// ComponentSetActive reorders per-kind native storage; it is idempotent,
	// so the host may skip redundant calls.
	ComponentSetActive(kind Kind, h Handle, active bool)
	// KindRegister resolves or creates a user-defined component kind by name.
	KindRegister(namePtr, nameLen uint32) Kind

	// Meshes.

	NodeMesh(node Handle) Handle
	MeshVertexCount(mesh Handle) uint32
	// MeshAttribute writes an AttributeInfoSize descriptor block at dst.
	// Returns false if the mesh does not carry the attribute.
	MeshAttribute(mesh Handle, attr Attribute, dst uint32) bool
	// MeshRead fills dst with count logical elements starting at first,
	// packed tightly (stride removed).
	MeshRead(mesh Handle, attr Attribute, first, count, dst uint32) error
	// MeshWrite scatters count tightly packed elements from src into the
	// vertex buffer starting at first.
	MeshWrite(mesh Handle, attr Attribute, first, count, src uint32) error

	// Materials.

	// ComponentMaterial returns the material of a mesh-renderer instance.
	ComponentMaterial(h Handle) Handle
	// MaterialDefinition returns the shader definition id for a material.
	// Definitions are shared across material instances.
	MaterialDefinition(mat Handle) uint32
	DefinitionParamCount(def uint32) uint32
	// DefinitionParam writes up to cap bytes of a ParamInfo block at dst and
	// returns the block's full encoded size, or 0 if the parameter does not
	// exist. Refetch with a larger reservation when the name did not fit.
	DefinitionParam(def uint32, index, dst, cap uint32) uint32
	// MaterialGetFloats reads count components into dst; false if the
	// parameter is currently unset.
	MaterialGetFloats(mat Handle, index, dst, count uint32) bool
	MaterialSetFloats(mat Handle, index, src, count uint32) error
	MaterialGetInt(mat Handle, index uint32) (int32, bool)
	MaterialSetInt(mat Handle, index uint32, value int32) error
	// MaterialGetSampler returns the bound texture handle, or Nil if unset.
	MaterialGetSampler(mat Handle, index uint32) Handle
	MaterialSetSampler(mat Handle, index uint32, tex Handle) error

	// Skins and animations.

	NodeSkin(node Handle) Handle
	SkinJointCount(skin Handle) uint32
	NodeAnimationCount(node Handle) uint32
	NodeAnimation(node Handle, index uint32) Handle
	AnimationDuration(anim Handle) float32
	// AnimationName writes up to cap name bytes at dst and returns the full
	// name length. Size the arena from a first call with cap 0 if needed.
	AnimationName(anim Handle, dst, cap uint32) uint32

	// Physics queries.

	// Raycast reads {origin 3xf32, direction 3xf32} at src and, on a hit,
	// writes a RayHitSize block at dst.
	Raycast(src, dst uint32) bool

	// Async loads. The engine resolves seq through the registered
	// completion handler; completions cannot be cancelled.

	// SceneAppend loads a scene file and appends its root under node.
	SceneAppend(node Handle, pathPtr, pathLen, seq uint32)
	// TextureLoad decodes an image file into a texture.
	TextureLoad(pathPtr, pathLen, seq uint32)
	// SetCompletionHandler registers the host entry point for async
	// completions. Must be set before the first async request.
	SetCompletionHandler(fn CompletionFunc)
}
