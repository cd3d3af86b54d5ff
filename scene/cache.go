package scene

import (
	"github.com/wippyai/scene-bridge/native"
)

// The identity caches guarantee one wrapper per live handle. They are a
// correctness mechanism, not an optimization: handles are recycled by the
// engine, and two references obtained from separate queries for the same
// entity must compare equal. Entries are created lazily and never evicted on
// destroy; a recycled handle overwrites the old wrapper's slot only through a
// fresh wrap call.

// wrapNode returns the stable wrapper for a node handle, creating it on
// first use. An existing wrapper is re-pointed to the given handle, which
// covers bulk-creation paths that legitimately reuse a wrapper slot.
func (c *Context) wrapNode(h native.Handle) *Node {
	if h == native.Nil {
		return nil
	}
	if n, ok := c.nodes[h]; ok {
		n.h = h
		return n
	}
	n := &Node{ctx: c, h: h}
	c.nodes[h] = n
	return n
}

// wrapComponent returns the stable wrapper for a component instance, or nil
// for the absent sentinel. The concrete variant is selected by kind: the
// closed built-in set first, then registered user kinds, then Generic.
func (c *Context) wrapComponent(kind native.Kind, h native.Handle) Component {
	if h == native.Nil {
		return nil
	}

	byHandle := c.comps[kind]
	if byHandle == nil {
		byHandle = make(map[native.Handle]Component)
		c.comps[kind] = byHandle
	}
	if comp, ok := byHandle[h]; ok {
		return comp
	}

	comp := c.newComponent(kind, h)
	byHandle[h] = comp
	return comp
}

func (c *Context) newComponent(kind native.Kind, h native.Handle) Component {
	base := base{ctx: c, kind: kind, h: h}
	switch kind {
	case native.KindMeshRenderer:
		return &MeshRenderer{base: base}
	case native.KindLight:
		return &Light{base: base}
	case native.KindCamera:
		return &Camera{base: base}
	case native.KindRigidBody:
		return &RigidBody{base: base}
	case native.KindCollider:
		return &Collider{base: base}
	case native.KindAnimator:
		return &Animator{base: base}
	}
	g := &Generic{base: base}
	if f, ok := c.factories[kind]; ok {
		return f(g)
	}
	return g
}

func (c *Context) wrapMesh(h native.Handle) *Mesh {
	if h == native.Nil {
		return nil
	}
	if m, ok := c.meshes[h]; ok {
		return m
	}
	m := &Mesh{ctx: c, h: h}
	c.meshes[h] = m
	return m
}

func (c *Context) wrapMaterial(h native.Handle) *Material {
	if h == native.Nil {
		return nil
	}
	if m, ok := c.materials[h]; ok {
		return m
	}
	m := &Material{ctx: c, h: h}
	c.materials[h] = m
	return m
}

func (c *Context) wrapTexture(h native.Handle) *Texture {
	if h == native.Nil {
		return nil
	}
	if t, ok := c.textures[h]; ok {
		return t
	}
	t := &Texture{ctx: c, h: h}
	c.textures[h] = t
	return t
}

func (c *Context) wrapSkin(h native.Handle) *Skin {
	if h == native.Nil {
		return nil
	}
	if s, ok := c.skins[h]; ok {
		return s
	}
	s := &Skin{ctx: c, h: h}
	c.skins[h] = s
	return s
}

func (c *Context) wrapAnimation(h native.Handle) *Animation {
	if h == native.Nil {
		return nil
	}
	if a, ok := c.anims[h]; ok {
		return a
	}
	a := &Animation{ctx: c, h: h}
	c.anims[h] = a
	return a
}
