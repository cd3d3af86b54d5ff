package scene

import (
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Transform is the node transform block: position, rotation quaternion
// (x, y, z, w), scale.
type Transform struct {
	Position [3]float32
	Rotation [4]float32
	Scale    [3]float32
}

// Node wraps a scene graph node handle. Nodes hold no native-derived state;
// every accessor is a boundary call. After Destroy the wrapper is a dangling
// reference and all methods fail fast.
type Node struct {
	ctx *Context
	h   native.Handle
}

// Handle returns the underlying handle, or native.Nil after Destroy.
func (n *Node) Handle() native.Handle {
	return n.h
}

// Same reports whether both wrappers refer to the same node. Handle equality
// is the only defined equality.
func (n *Node) Same(other *Node) bool {
	return n != nil && other != nil && n.h != native.Nil && n.h == other.h
}

// Alive queries the engine for handle liveness. A destroyed-and-recycled
// handle reports alive for the new entity; held wrappers are not updated.
func (n *Node) Alive() bool {
	return n.h != native.Nil && n.ctx.eng.NodeAlive(n.h)
}

func (n *Node) check() error {
	if n.h == native.Nil {
		return errors.StaleHandle(errors.PhaseScene, "node")
	}
	return nil
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() (*Node, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	return n.ctx.wrapNode(n.ctx.eng.NodeParent(n.h)), nil
}

// SetParent reparents the node. A nil parent detaches it to the root.
func (n *Node) SetParent(parent *Node) error {
	if err := n.check(); err != nil {
		return err
	}
	ph := native.Nil
	if parent != nil {
		if err := parent.check(); err != nil {
			return err
		}
		ph = parent.h
	}
	n.ctx.eng.NodeSetParent(n.h, ph)
	return nil
}

// Children returns the node's direct children. The arena is sized from the
// count query before the fill call, per the boundary contract.
func (n *Node) Children() ([]*Node, error) {
	if err := n.check(); err != nil {
		return nil, err
	}

	count := n.ctx.eng.NodeChildCount(n.h)
	if count == 0 {
		return nil, nil
	}
	if err := n.ctx.ar.Ensure(count * 4); err != nil {
		return nil, err
	}
	if err := n.ctx.eng.NodeChildren(n.h, n.ctx.ar.Base()); err != nil {
		return nil, errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "list children")
	}

	v := n.ctx.ar.View()
	out := make([]*Node, count)
	for i := range out {
		out[i] = n.ctx.wrapNode(native.Handle(v.U32(i)))
	}
	return out, nil
}

// Active reports whether the node participates in per-frame evaluation.
func (n *Node) Active() (bool, error) {
	if err := n.check(); err != nil {
		return false, err
	}
	return n.ctx.eng.NodeActive(n.h), nil
}

// SetActive includes or excludes the node from per-frame evaluation. The
// call is forwarded unconditionally; the engine's activation op is
// idempotent, and the host holds no activity state to shortcut with.
func (n *Node) SetActive(active bool) error {
	if err := n.check(); err != nil {
		return err
	}
	n.ctx.eng.NodeSetActive(n.h, active)
	return nil
}

// Transform reads the node's local transform through the arena.
func (n *Node) Transform() (Transform, error) {
	if err := n.check(); err != nil {
		return Transform{}, err
	}
	if err := n.ctx.ar.Ensure(native.TransformSize); err != nil {
		return Transform{}, err
	}
	if err := n.ctx.eng.NodeTransform(n.h, n.ctx.ar.Base()); err != nil {
		return Transform{}, errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "read transform")
	}

	v := n.ctx.ar.View()
	var t Transform
	for i := range t.Position {
		t.Position[i] = v.F32(i)
	}
	for i := range t.Rotation {
		t.Rotation[i] = v.F32(3 + i)
	}
	for i := range t.Scale {
		t.Scale[i] = v.F32(7 + i)
	}
	return t, nil
}

// SetTransform writes the node's local transform through the arena.
func (n *Node) SetTransform(t Transform) error {
	if err := n.check(); err != nil {
		return err
	}
	if err := n.ctx.ar.Ensure(native.TransformSize); err != nil {
		return err
	}

	v := n.ctx.ar.View()
	for i, f := range t.Position {
		v.PutF32(i, f)
	}
	for i, f := range t.Rotation {
		v.PutF32(3+i, f)
	}
	for i, f := range t.Scale {
		v.PutF32(7+i, f)
	}
	if err := n.ctx.eng.NodeSetTransform(n.h, n.ctx.ar.Base()); err != nil {
		return errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "write transform")
	}
	return nil
}

// SetPosition updates only the position part of the transform.
func (n *Node) SetPosition(x, y, z float32) error {
	t, err := n.Transform()
	if err != nil {
		return err
	}
	t.Position = [3]float32{x, y, z}
	return n.SetTransform(t)
}

// Component returns the node's instance of kind, or nil if absent.
func (n *Node) Component(kind native.Kind) (Component, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	return n.ctx.wrapComponent(kind, n.ctx.eng.ComponentGet(n.h, kind)), nil
}

// AddComponent attaches a new instance of kind to the node.
func (n *Node) AddComponent(kind native.Kind) (Component, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	h := n.ctx.eng.ComponentAdd(n.h, kind)
	if h == native.Nil {
		return nil, errors.New(errors.PhaseScene, errors.KindInvalidData).
			Detail("engine refused component of kind %d", kind).
			Build()
	}
	return n.ctx.wrapComponent(kind, h), nil
}

// MeshRenderer returns the node's mesh renderer, or nil if absent.
func (n *Node) MeshRenderer() (*MeshRenderer, error) {
	comp, err := n.Component(native.KindMeshRenderer)
	if err != nil || comp == nil {
		return nil, err
	}
	return comp.(*MeshRenderer), nil
}

// Mesh returns the node's mesh, or nil if the node carries none.
func (n *Node) Mesh() (*Mesh, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	return n.ctx.wrapMesh(n.ctx.eng.NodeMesh(n.h)), nil
}

// Skin returns the node's skin, or nil.
func (n *Node) Skin() (*Skin, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	return n.ctx.wrapSkin(n.ctx.eng.NodeSkin(n.h)), nil
}

// Animations returns the animations attached to the node.
func (n *Node) Animations() ([]*Animation, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	count := n.ctx.eng.NodeAnimationCount(n.h)
	out := make([]*Animation, 0, count)
	for i := uint32(0); i < count; i++ {
		if a := n.ctx.wrapAnimation(n.ctx.eng.NodeAnimation(n.h, i)); a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// AppendScene asynchronously loads a scene file and appends its root under
// this node. fn is invoked exactly once on completion with the appended root
// or the load error. Completions cannot be cancelled.
func (n *Node) AppendScene(path string, fn func(*Node, error)) error {
	if err := n.check(); err != nil {
		return err
	}
	ptr, length, release, err := n.ctx.stageString(path)
	if err != nil {
		return err
	}
	defer release()

	ctx := n.ctx
	seq := ctx.register("append scene "+path, func(h native.Handle, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(ctx.wrapNode(h), nil)
	})
	ctx.eng.SceneAppend(n.h, ptr, length, seq)
	return nil
}

// Destroy releases the node back to the engine. Irreversible: the handle is
// cleared immediately so later calls fail fast instead of touching a
// recycled handle. The cache entry is left in place.
func (n *Node) Destroy() error {
	if err := n.check(); err != nil {
		return err
	}
	n.ctx.eng.NodeDestroy(n.h)
	n.h = native.Nil
	return nil
}
