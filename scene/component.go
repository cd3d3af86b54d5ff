package scene

import (
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Component is the common surface of every component wrapper. Concrete
// variants add typed behavior; the set of built-in kinds is closed, and user
// kinds are resolved through the factory registry.
type Component interface {
	Kind() native.Kind
	Handle() native.Handle
	// Node returns the owning node. The owning handle is resolved once and
	// cached on the wrapper, the only documented wrapper-side cache.
	Node() (*Node, error)
	Active() (bool, error)
	SetActive(active bool) error
	Destroy() error
}

// SameComponent reports whether two component wrappers refer to the same
// instance: same kind and same handle. This is the only defined equality.
func SameComponent(a, b Component) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Handle() != native.Nil && a.Kind() == b.Kind() && a.Handle() == b.Handle()
}

type base struct {
	ctx  *Context
	kind native.Kind
	h    native.Handle
	node native.Handle // lazily resolved owner
}

func (b *base) Kind() native.Kind {
	return b.kind
}

func (b *base) Handle() native.Handle {
	return b.h
}

func (b *base) check() error {
	if b.h == native.Nil {
		return errors.StaleHandle(errors.PhaseScene, "component")
	}
	return nil
}

func (b *base) Node() (*Node, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if b.node == native.Nil {
		b.node = b.ctx.eng.ComponentNode(b.kind, b.h)
	}
	return b.ctx.wrapNode(b.node), nil
}

func (b *base) Active() (bool, error) {
	if err := b.check(); err != nil {
		return false, err
	}
	return b.ctx.eng.ComponentActive(b.kind, b.h), nil
}

// SetActive forwards unconditionally. Activation reorders the engine's
// per-kind storage, but the native call is idempotent per the boundary
// contract, so no host-side fast path is needed for correctness.
func (b *base) SetActive(active bool) error {
	if err := b.check(); err != nil {
		return err
	}
	b.ctx.eng.ComponentSetActive(b.kind, b.h, active)
	return nil
}

func (b *base) Destroy() error {
	if err := b.check(); err != nil {
		return err
	}
	b.ctx.eng.ComponentDestroy(b.kind, b.h)
	b.h = native.Nil
	return nil
}

// MeshRenderer draws a mesh with a material.
type MeshRenderer struct {
	base
}

// Mesh returns the rendered mesh via the owning node.
func (r *MeshRenderer) Mesh() (*Mesh, error) {
	n, err := r.Node()
	if err != nil {
		return nil, err
	}
	return n.Mesh()
}

// Material returns the renderer's material, or nil if none is bound.
func (r *MeshRenderer) Material() (*Material, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.ctx.wrapMaterial(r.ctx.eng.ComponentMaterial(r.h)), nil
}

// Light is a light source component.
type Light struct {
	base
}

// Camera is a camera component.
type Camera struct {
	base
}

// RigidBody is a dynamic physics body.
type RigidBody struct {
	base
}

// Collider is a collision shape.
type Collider struct {
	base
}

// Animator plays animations on its node's hierarchy.
type Animator struct {
	base
}

// Generic is the wrapper for component kinds without a dedicated variant.
// User-defined component types embed it.
type Generic struct {
	base
}
