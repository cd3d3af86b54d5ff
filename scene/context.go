package scene

import (
	"go.uber.org/zap"

	scenebridge "github.com/wippyai/scene-bridge"
	"github.com/wippyai/scene-bridge/arena"
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Context is the binding's runtime state: the scratch arena, the identity
// caches, the cached shader parameter tables, and the pending-load table.
// One Context per engine instance; created at init, torn down at Reset.
//
// Not safe for concurrent use.
type Context struct {
	eng  native.Engine
	mem  scenebridge.Memory
	heap scenebridge.Allocator
	ar   *arena.Arena
	log  *zap.Logger

	nodes     map[native.Handle]*Node
	comps     map[native.Kind]map[native.Handle]Component
	meshes    map[native.Handle]*Mesh
	materials map[native.Handle]*Material
	textures  map[native.Handle]*Texture
	skins     map[native.Handle]*Skin
	anims     map[native.Handle]*Animation
	defs      map[uint32]*paramTable

	factories map[native.Kind]Factory
	kindNames map[native.Kind]string

	pending map[uint32]pendingLoad
	seq     uint32
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the context's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Context) {
		c.log = log
	}
}

// New creates a Context over an engine and registers the completion entry
// point for async loads.
func New(eng native.Engine, opts ...Option) (*Context, error) {
	if eng == nil {
		return nil, errors.NotInitialized(errors.PhaseScene, "engine")
	}

	c := &Context{
		eng:  eng,
		mem:  eng.Memory(),
		heap: eng.Allocator(),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.ar = arena.New(c.mem, c.heap)
	c.initCaches()
	c.factories = make(map[native.Kind]Factory)
	c.kindNames = make(map[native.Kind]string)
	c.pending = make(map[uint32]pendingLoad)

	eng.SetCompletionHandler(c.complete)
	return c, nil
}

func (c *Context) initCaches() {
	c.nodes = make(map[native.Handle]*Node)
	c.comps = make(map[native.Kind]map[native.Handle]Component)
	c.meshes = make(map[native.Handle]*Mesh)
	c.materials = make(map[native.Handle]*Material)
	c.textures = make(map[native.Handle]*Texture)
	c.skins = make(map[native.Handle]*Skin)
	c.anims = make(map[native.Handle]*Animation)
	c.defs = make(map[uint32]*paramTable)
}

// Engine returns the underlying boundary surface.
func (c *Context) Engine() native.Engine {
	return c.eng
}

// Arena returns the scratch arena. Exposed for call sites that stage their
// own structured data; arena use must stay strictly sequential.
func (c *Context) Arena() *arena.Arena {
	return c.ar
}

// Reset clears the identity caches, parameter tables, and pending loads.
// The arena's backing memory is retained; only its contents are considered
// invalid. Wrappers obtained before Reset are dangling.
func (c *Context) Reset() {
	if n := len(c.pending); n > 0 {
		c.log.Warn("reset with pending loads", zap.Int("dropped", n))
	}
	c.initCaches()
	c.pending = make(map[uint32]pendingLoad)
}

// CreateNodes creates count nodes in one boundary crossing, reserving
// storage for componentHint components each, and returns their wrappers.
// Handles are written into the arena by the engine and wrapped in order.
func (c *Context) CreateNodes(count, componentHint int) ([]*Node, error) {
	if count <= 0 {
		return nil, errors.InvalidInput(errors.PhaseScene, "node count must be positive")
	}

	if err := c.ar.Ensure(uint32(count) * 4); err != nil {
		return nil, err
	}
	if err := c.eng.NodesCreate(c.ar.Base(), uint32(count), uint32(componentHint)); err != nil {
		return nil, errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "create nodes")
	}

	v := c.ar.View()
	out := make([]*Node, count)
	for i := range out {
		out[i] = c.wrapNode(native.Handle(v.U32(i)))
	}
	return out, nil
}

// Raycast casts a ray and returns the nearest hit, or ok=false on a miss.
func (c *Context) Raycast(origin, dir [3]float32) (Hit, bool, error) {
	const srcSize = 24 // origin + direction, 6xf32
	if err := c.ar.Ensure(srcSize + native.RayHitSize); err != nil {
		return Hit{}, false, err
	}

	v := c.ar.View()
	for i, f := range origin {
		v.PutF32(i, f)
	}
	for i, f := range dir {
		v.PutF32(3+i, f)
	}

	if !c.eng.Raycast(c.ar.Base(), c.ar.Base()+srcSize) {
		return Hit{}, false, nil
	}

	rh := native.DecodeRayHit(v.Bytes()[srcSize : srcSize+native.RayHitSize])
	return Hit{
		Node:     c.wrapNode(rh.Node),
		Point:    rh.Point,
		Normal:   rh.Normal,
		Distance: rh.Distance,
	}, true, nil
}

// Hit is the host-side raycast result.
type Hit struct {
	Node     *Node
	Point    [3]float32
	Normal   [3]float32
	Distance float32
}

// stageString copies s onto the native heap for a call whose data must live
// outside the arena. The returned release must be called after the boundary
// call; for async requests the engine copies the path before returning.
func (c *Context) stageString(s string) (ptr, length uint32, release func(), err error) {
	length = uint32(len(s))
	if length == 0 {
		return 0, 0, func() {}, nil
	}
	ptr, aerr := c.heap.Alloc(length, 1)
	if aerr != nil {
		return 0, 0, nil, errors.AllocationFailed(errors.PhaseNative, length, aerr)
	}
	if werr := c.mem.Write(ptr, []byte(s)); werr != nil {
		c.heap.Free(ptr, length, 1)
		return 0, 0, nil, errors.Wrap(errors.PhaseNative, errors.KindOutOfBounds, werr, "stage string")
	}
	return ptr, length, func() { c.heap.Free(ptr, length, 1) }, nil
}
