package scene

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	scenebridge "github.com/wippyai/scene-bridge"
	"github.com/wippyai/scene-bridge/native"
)

// fakeMemory is a flat byte slice standing in for the engine's linear memory.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size uint32) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return m.data[offset : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	return m.data[offset], nil
}

func (m *fakeMemory) ReadU16(offset uint32) (uint16, error) {
	return binary.LittleEndian.Uint16(m.data[offset:]), nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *fakeMemory) ReadU64(offset uint32) (uint64, error) {
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *fakeMemory) WriteU8(offset uint32, v uint8) error {
	m.data[offset] = v
	return nil
}

func (m *fakeMemory) WriteU16(offset uint32, v uint16) error {
	binary.LittleEndian.PutUint16(m.data[offset:], v)
	return nil
}

func (m *fakeMemory) WriteU32(offset uint32, v uint32) error {
	binary.LittleEndian.PutUint32(m.data[offset:], v)
	return nil
}

func (m *fakeMemory) WriteU64(offset uint32, v uint64) error {
	binary.LittleEndian.PutUint64(m.data[offset:], v)
	return nil
}

func (m *fakeMemory) Size() uint32 {
	return uint32(len(m.data))
}

// fakeAllocator is a bump allocator over the fake memory. It never reuses
// freed space, which is fine for test-sized workloads; it counts allocs and
// frees so tests can assert on arena growth.
type fakeAllocator struct {
	next   uint32
	allocs int
	frees  int
}

func (a *fakeAllocator) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	ptr := (a.next + align - 1) / align * align
	a.next = ptr + size
	a.allocs++
	return ptr, nil
}

func (a *fakeAllocator) Free(ptr, size, align uint32) {
	a.frees++
}

var _ scenebridge.Memory = (*fakeMemory)(nil)
var _ scenebridge.Allocator = (*fakeAllocator)(nil)

type fakeNode struct {
	parent    native.Handle
	children  []native.Handle
	active    bool
	transform [10]float32
	mesh      native.Handle
	skin      native.Handle
	anims     []native.Handle
}

type fakeComp struct {
	node   native.Handle
	active bool
}

type fakeAttr struct {
	info native.AttributeInfo
	data []byte // tightly packed elements
}

type fakeMesh struct {
	vertices uint32
	attrs    map[native.Attribute]*fakeAttr
}

type fakeMaterial struct {
	def      uint32
	floats   map[uint32][]float32
	ints     map[uint32]int32
	samplers map[uint32]native.Handle
}

type fakeAnim struct {
	name     string
	duration float32
}

type fakeRequest struct {
	op   string
	node native.Handle
	path string
	seq  uint32
}

// fakeEngine is an in-memory native.Engine with freelist handle recycling:
// destroyed node handles are reissued first, which is what makes the
// identity-cache tests meaningful.
type fakeEngine struct {
	mem  *fakeMemory
	heap *fakeAllocator

	nextNode  native.Handle
	freeNodes []native.Handle
	nodes     map[native.Handle]*fakeNode

	nextComp native.Handle
	comps    map[native.Kind]map[native.Handle]*fakeComp
	byNode   map[native.Handle]map[native.Kind]native.Handle

	meshes    map[native.Handle]*fakeMesh
	materials map[native.Handle]*fakeMaterial
	matByComp map[native.Handle]native.Handle
	defs      map[uint32][]native.ParamInfo
	paramCaps []uint32 // write capacity of each definition-param fetch

	skins map[native.Handle]uint32
	anims map[native.Handle]*fakeAnim

	kinds    map[string]native.Kind
	nextKind native.Kind

	rayHit *native.RayHit

	onDone   native.CompletionFunc
	requests []fakeRequest
}

var _ native.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		mem: newFakeMemory(1 << 20),
		// keep pointer 0 unused so it stays the null sentinel
		heap:      &fakeAllocator{next: 64},
		nextNode:  1,
		nodes:     make(map[native.Handle]*fakeNode),
		nextComp:  1,
		comps:     make(map[native.Kind]map[native.Handle]*fakeComp),
		byNode:    make(map[native.Handle]map[native.Kind]native.Handle),
		meshes:    make(map[native.Handle]*fakeMesh),
		materials: make(map[native.Handle]*fakeMaterial),
		matByComp: make(map[native.Handle]native.Handle),
		defs:      make(map[uint32][]native.ParamInfo),
		skins:     make(map[native.Handle]uint32),
		anims:     make(map[native.Handle]*fakeAnim),
		kinds:     make(map[string]native.Kind),
		nextKind:  native.KindUserBase,
	}
}

func (e *fakeEngine) Memory() scenebridge.Memory       { return e.mem }
func (e *fakeEngine) Allocator() scenebridge.Allocator { return e.heap }
func (e *fakeEngine) Close(context.Context) error      { return nil }

func (e *fakeEngine) issueNode() native.Handle {
	var h native.Handle
	if n := len(e.freeNodes); n > 0 {
		h = e.freeNodes[n-1]
		e.freeNodes = e.freeNodes[:n-1]
	} else {
		h = e.nextNode
		e.nextNode++
	}
	e.nodes[h] = &fakeNode{active: true, transform: [10]float32{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}}
	return h
}

func (e *fakeEngine) NodesCreate(dst uint32, count, componentHint uint32) error {
	for i := uint32(0); i < count; i++ {
		h := e.issueNode()
		binary.LittleEndian.PutUint32(e.mem.data[dst+i*4:], uint32(h))
	}
	return nil
}

func (e *fakeEngine) NodeDestroy(h native.Handle) {
	n, ok := e.nodes[h]
	if !ok {
		return
	}
	if p, ok := e.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(e.nodes, h)
	e.freeNodes = append(e.freeNodes, h)
}

func (e *fakeEngine) NodeAlive(h native.Handle) bool {
	_, ok := e.nodes[h]
	return ok
}

func (e *fakeEngine) NodeParent(h native.Handle) native.Handle {
	if n, ok := e.nodes[h]; ok {
		return n.parent
	}
	return native.Nil
}

func (e *fakeEngine) NodeSetParent(h, parent native.Handle) {
	n, ok := e.nodes[h]
	if !ok {
		return
	}
	if p, ok := e.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	n.parent = parent
	if p, ok := e.nodes[parent]; ok {
		p.children = append(p.children, h)
	}
}

func (e *fakeEngine) NodeChildCount(h native.Handle) uint32 {
	if n, ok := e.nodes[h]; ok {
		return uint32(len(n.children))
	}
	return 0
}

func (e *fakeEngine) NodeChildren(h native.Handle, dst uint32) error {
	n, ok := e.nodes[h]
	if !ok {
		return fmt.Errorf("unknown node %d", h)
	}
	for i, c := range n.children {
		binary.LittleEndian.PutUint32(e.mem.data[dst+uint32(i)*4:], uint32(c))
	}
	return nil
}

func (e *fakeEngine) NodeActive(h native.Handle) bool {
	if n, ok := e.nodes[h]; ok {
		return n.active
	}
	return false
}

func (e *fakeEngine) NodeSetActive(h native.Handle, active bool) {
	if n, ok := e.nodes[h]; ok {
		n.active = active
	}
}

func (e *fakeEngine) NodeTransform(h native.Handle, dst uint32) error {
	n, ok := e.nodes[h]
	if !ok {
		return fmt.Errorf("unknown node %d", h)
	}
	for i, f := range n.transform {
		binary.LittleEndian.PutUint32(e.mem.data[dst+uint32(i)*4:], math.Float32bits(f))
	}
	return nil
}

func (e *fakeEngine) NodeSetTransform(h native.Handle, src uint32) error {
	n, ok := e.nodes[h]
	if !ok {
		return fmt.Errorf("unknown node %d", h)
	}
	for i := range n.transform {
		n.transform[i] = math.Float32frombits(binary.LittleEndian.Uint32(e.mem.data[src+uint32(i)*4:]))
	}
	return nil
}

func (e *fakeEngine) ComponentGet(node native.Handle, kind native.Kind) native.Handle {
	return e.byNode[node][kind]
}

func (e *fakeEngine) ComponentAdd(node native.Handle, kind native.Kind) native.Handle {
	if _, ok := e.nodes[node]; !ok {
		return native.Nil
	}
	h := e.nextComp
	e.nextComp++
	if e.comps[kind] == nil {
		e.comps[kind] = make(map[native.Handle]*fakeComp)
	}
	e.comps[kind][h] = &fakeComp{node: node, active: true}
	if e.byNode[node] == nil {
		e.byNode[node] = make(map[native.Kind]native.Handle)
	}
	e.byNode[node][kind] = h
	return h
}

func (e *fakeEngine) ComponentDestroy(kind native.Kind, h native.Handle) {
	if c, ok := e.comps[kind][h]; ok {
		delete(e.byNode[c.node], kind)
		delete(e.comps[kind], h)
	}
}

func (e *fakeEngine) ComponentNode(kind native.Kind, h native.Handle) native.Handle {
	if c, ok := e.comps[kind][h]; ok {
		return c.node
	}
	return native.Nil
}

func (e *fakeEngine) ComponentActive(kind native.Kind, h native.Handle) bool {
	if c, ok := e.comps[kind][h]; ok {
		return c.active
	}
	return false
}

func (e *fakeEngine) ComponentSetActive(kind native.Kind, h native.Handle, active bool) {
	if c, ok := e.comps[kind][h]; ok {
		c.active = active
	}
}

func (e *fakeEngine) KindRegister(namePtr, nameLen uint32) native.Kind {
	name := string(e.mem.data[namePtr : namePtr+nameLen])
	if k, ok := e.kinds[name]; ok {
		return k
	}
	k := e.nextKind
	e.nextKind++
	e.kinds[name] = k
	return k
}

func (e *fakeEngine) NodeMesh(node native.Handle) native.Handle {
	if n, ok := e.nodes[node]; ok {
		return n.mesh
	}
	return native.Nil
}

func (e *fakeEngine) MeshVertexCount(mesh native.Handle) uint32 {
	if m, ok := e.meshes[mesh]; ok {
		return m.vertices
	}
	return 0
}

func (e *fakeEngine) MeshAttribute(mesh native.Handle, attr native.Attribute, dst uint32) bool {
	m, ok := e.meshes[mesh]
	if !ok {
		return false
	}
	a, ok := m.attrs[attr]
	if !ok {
		return false
	}
	a.info.Encode(e.mem.data[dst : dst+native.AttributeInfoSize])
	return true
}

func (e *fakeEngine) MeshRead(mesh native.Handle, attr native.Attribute, first, count, dst uint32) error {
	a, err := e.attr(mesh, attr)
	if err != nil {
		return err
	}
	es := a.info.Components * a.info.Format.Size()
	copy(e.mem.data[dst:], a.data[first*es:(first+count)*es])
	return nil
}

func (e *fakeEngine) MeshWrite(mesh native.Handle, attr native.Attribute, first, count, src uint32) error {
	a, err := e.attr(mesh, attr)
	if err != nil {
		return err
	}
	es := a.info.Components * a.info.Format.Size()
	copy(a.data[first*es:(first+count)*es], e.mem.data[src:])
	return nil
}

func (e *fakeEngine) attr(mesh native.Handle, attr native.Attribute) (*fakeAttr, error) {
	m, ok := e.meshes[mesh]
	if !ok {
		return nil, fmt.Errorf("unknown mesh %d", mesh)
	}
	a, ok := m.attrs[attr]
	if !ok {
		return nil, fmt.Errorf("mesh %d has no %s", mesh, attr)
	}
	return a, nil
}

func (e *fakeEngine) ComponentMaterial(h native.Handle) native.Handle {
	return e.matByComp[h]
}

func (e *fakeEngine) MaterialDefinition(mat native.Handle) uint32 {
	if m, ok := e.materials[mat]; ok {
		return m.def
	}
	return 0
}

func (e *fakeEngine) DefinitionParamCount(def uint32) uint32 {
	return uint32(len(e.defs[def]))
}

func (e *fakeEngine) DefinitionParam(def uint32, index, dst, cap uint32) uint32 {
	e.paramCaps = append(e.paramCaps, cap)
	params := e.defs[def]
	if index >= uint32(len(params)) {
		return 0
	}
	pi := params[index]
	full := pi.EncodedSize()
	block := make([]byte, full)
	pi.Encode(block)
	n := full
	if cap < n {
		n = cap
	}
	copy(e.mem.data[dst:dst+n], block[:n])
	return full
}

func (e *fakeEngine) MaterialGetFloats(mat native.Handle, index, dst, count uint32) bool {
	m, ok := e.materials[mat]
	if !ok {
		return false
	}
	vals, set := m.floats[index]
	if !set {
		return false
	}
	for i := uint32(0); i < count; i++ {
		binary.LittleEndian.PutUint32(e.mem.data[dst+i*4:], math.Float32bits(vals[i]))
	}
	return true
}

func (e *fakeEngine) MaterialSetFloats(mat native.Handle, index, src, count uint32) error {
	m, ok := e.materials[mat]
	if !ok {
		return fmt.Errorf("unknown material %d", mat)
	}
	vals := make([]float32, count)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(e.mem.data[src+uint32(i)*4:]))
	}
	m.floats[index] = vals
	return nil
}

func (e *fakeEngine) MaterialGetInt(mat native.Handle, index uint32) (int32, bool) {
	m, ok := e.materials[mat]
	if !ok {
		return 0, false
	}
	v, set := m.ints[index]
	return v, set
}

func (e *fakeEngine) MaterialSetInt(mat native.Handle, index uint32, value int32) error {
	m, ok := e.materials[mat]
	if !ok {
		return fmt.Errorf("unknown material %d", mat)
	}
	m.ints[index] = value
	return nil
}

func (e *fakeEngine) MaterialGetSampler(mat native.Handle, index uint32) native.Handle {
	if m, ok := e.materials[mat]; ok {
		return m.samplers[index]
	}
	return native.Nil
}

func (e *fakeEngine) MaterialSetSampler(mat native.Handle, index uint32, tex native.Handle) error {
	m, ok := e.materials[mat]
	if !ok {
		return fmt.Errorf("unknown material %d", mat)
	}
	m.samplers[index] = tex
	return nil
}

func (e *fakeEngine) NodeSkin(node native.Handle) native.Handle {
	if n, ok := e.nodes[node]; ok {
		return n.skin
	}
	return native.Nil
}

func (e *fakeEngine) SkinJointCount(skin native.Handle) uint32 {
	return e.skins[skin]
}

func (e *fakeEngine) NodeAnimationCount(node native.Handle) uint32 {
	if n, ok := e.nodes[node]; ok {
		return uint32(len(n.anims))
	}
	return 0
}

func (e *fakeEngine) NodeAnimation(node native.Handle, index uint32) native.Handle {
	if n, ok := e.nodes[node]; ok && index < uint32(len(n.anims)) {
		return n.anims[index]
	}
	return native.Nil
}

func (e *fakeEngine) AnimationDuration(anim native.Handle) float32 {
	if a, ok := e.anims[anim]; ok {
		return a.duration
	}
	return 0
}

func (e *fakeEngine) AnimationName(anim native.Handle, dst, cap uint32) uint32 {
	a, ok := e.anims[anim]
	if !ok {
		return 0
	}
	n := uint32(len(a.name))
	if cap < n {
		copy(e.mem.data[dst:], a.name[:cap])
	} else {
		copy(e.mem.data[dst:], a.name)
	}
	return n
}

func (e *fakeEngine) Raycast(src, dst uint32) bool {
	if e.rayHit == nil {
		return false
	}
	e.rayHit.Encode(e.mem.data[dst : dst+native.RayHitSize])
	return true
}

func (e *fakeEngine) SceneAppend(node native.Handle, pathPtr, pathLen, seq uint32) {
	e.requests = append(e.requests, fakeRequest{
		op:   "scene_append",
		node: node,
		path: string(e.mem.data[pathPtr : pathPtr+pathLen]),
		seq:  seq,
	})
}

func (e *fakeEngine) TextureLoad(pathPtr, pathLen, seq uint32) {
	e.requests = append(e.requests, fakeRequest{
		op:   "texture_load",
		path: string(e.mem.data[pathPtr : pathPtr+pathLen]),
		seq:  seq,
	})
}

func (e *fakeEngine) SetCompletionHandler(fn native.CompletionFunc) {
	e.onDone = fn
}

// finish delivers a completion for a previously recorded request.
func (e *fakeEngine) finish(seq uint32, h native.Handle, ok bool, reason string) {
	e.onDone(native.Completion{Seq: seq, Handle: h, OK: ok, Reason: reason})
}

// Scenario helpers.

// addMesh attaches a fresh mesh to a node and returns its handle. Attribute
// backing storage is sized from the declared element count.
func (e *fakeEngine) addMesh(node native.Handle, vertices uint32, attrs ...native.AttributeInfo) native.Handle {
	h := e.nextComp
	e.nextComp++
	m := &fakeMesh{vertices: vertices, attrs: make(map[native.Attribute]*fakeAttr)}
	for _, info := range attrs {
		m.attrs[info.Attr] = &fakeAttr{
			info: info,
			data: make([]byte, info.Count*info.Components*info.Format.Size()),
		}
	}
	e.meshes[h] = m
	if n, ok := e.nodes[node]; ok {
		n.mesh = h
	}
	return h
}

// addMaterial binds a new material of the given definition to a mesh
// renderer component and returns the material handle.
func (e *fakeEngine) addMaterial(comp native.Handle, def uint32) native.Handle {
	h := e.nextComp
	e.nextComp++
	e.materials[h] = &fakeMaterial{
		def:      def,
		floats:   make(map[uint32][]float32),
		ints:     make(map[uint32]int32),
		samplers: make(map[uint32]native.Handle),
	}
	e.matByComp[comp] = h
	return h
}

// addTexture issues a bare texture handle.
func (e *fakeEngine) addTexture() native.Handle {
	h := e.nextComp
	e.nextComp++
	return h
}

// addAnimation attaches a named animation to a node.
func (e *fakeEngine) addAnimation(node native.Handle, name string, duration float32) native.Handle {
	h := e.nextComp
	e.nextComp++
	e.anims[h] = &fakeAnim{name: name, duration: duration}
	if n, ok := e.nodes[node]; ok {
		n.anims = append(n.anims, h)
	}
	return h
}
