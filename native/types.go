package native

import (
	"encoding/binary"
	"math"
)

// Handle is an opaque reference to an engine entity within one namespace
// (node, component-by-kind, mesh, material, texture, skin, animation).
// Handle 0 is reserved and always means "absent".
type Handle uint32

// Nil is the absent-handle sentinel shared by every namespace.
const Nil Handle = 0

// Kind identifies a component manager. The built-in set is closed;
// user-defined kinds are assigned by the engine at registration time,
// starting at KindUserBase.
type Kind uint32

const (
	KindMeshRenderer Kind = iota + 1
	KindLight
	KindCamera
	KindRigidBody
	KindCollider
	KindAnimator
)

// KindUserBase is the first kind value the engine hands out for
// user-registered component managers.
const KindUserBase Kind = 64

// Attribute identifies one logical vertex array within a mesh buffer.
type Attribute uint32

const (
	AttrPosition Attribute = iota
	AttrNormal
	AttrTangent
	AttrUV
	AttrColor
	AttrJoints
	AttrWeights
)

func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrTangent:
		return "tangent"
	case AttrUV:
		return "uv"
	case AttrColor:
		return "color"
	case AttrJoints:
		return "joints"
	case AttrWeights:
		return "weights"
	}
	return "unknown"
}

// Format is the declared element format of an attribute. The accessor must
// not widen, narrow, or reinterpret across formats.
type Format uint32

const (
	FormatF32 Format = iota
	FormatU8
	FormatU16
	FormatU32
)

func (f Format) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatU8:
		return "u8"
	case FormatU16:
		return "u16"
	case FormatU32:
		return "u32"
	}
	return "unknown"
}

// Size returns the byte width of one component.
func (f Format) Size() uint32 {
	switch f {
	case FormatU8:
		return 1
	case FormatU16:
		return 2
	}
	return 4
}

// AttributeInfo is the strided attribute descriptor: how one logical array is
// packed in the engine's vertex buffer. Count reflects the mesh's logical
// length at acquisition time; reacquire if the mesh is resized.
type AttributeInfo struct {
	Attr       Attribute
	Format     Format
	Components uint32
	Offset     uint32
	Stride     uint32
	Count      uint32
}

// AttributeInfoSize is the encoded size of an AttributeInfo block.
const AttributeInfoSize = 24

// Encode writes the descriptor into b in its boundary layout.
func (ai AttributeInfo) Encode(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], uint32(ai.Attr))
	binary.LittleEndian.PutUint32(b[4:], uint32(ai.Format))
	binary.LittleEndian.PutUint32(b[8:], ai.Components)
	binary.LittleEndian.PutUint32(b[12:], ai.Offset)
	binary.LittleEndian.PutUint32(b[16:], ai.Stride)
	binary.LittleEndian.PutUint32(b[20:], ai.Count)
}

// DecodeAttributeInfo reads a descriptor block.
func DecodeAttributeInfo(b []byte) AttributeInfo {
	return AttributeInfo{
		Attr:       Attribute(binary.LittleEndian.Uint32(b[0:])),
		Format:     Format(binary.LittleEndian.Uint32(b[4:])),
		Components: binary.LittleEndian.Uint32(b[8:]),
		Offset:     binary.LittleEndian.Uint32(b[12:]),
		Stride:     binary.LittleEndian.Uint32(b[16:]),
		Count:      binary.LittleEndian.Uint32(b[20:]),
	}
}

// ParamType is the declared type of a material/shader parameter.
type ParamType uint32

const (
	ParamFloat ParamType = iota
	ParamInt
	ParamSampler
	ParamFont
)

func (p ParamType) String() string {
	switch p {
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	case ParamSampler:
		return "sampler"
	case ParamFont:
		return "font"
	}
	return "unknown"
}

// ParamInfo describes one entry of a shader definition's parameter table.
type ParamInfo struct {
	Type       ParamType
	Components uint32
	Name       string
}

// ParamInfoHeaderSize is the fixed prefix before the name bytes:
// {type u32, components u32, nameLen u32}.
const ParamInfoHeaderSize = 12

// EncodedSize returns the full block size including name bytes.
func (pi ParamInfo) EncodedSize() uint32 {
	return ParamInfoHeaderSize + uint32(len(pi.Name))
}

// Encode writes the parameter block into b.
func (pi ParamInfo) Encode(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], uint32(pi.Type))
	binary.LittleEndian.PutUint32(b[4:], pi.Components)
	binary.LittleEndian.PutUint32(b[8:], uint32(len(pi.Name)))
	copy(b[ParamInfoHeaderSize:], pi.Name)
}

// DecodeParamInfo reads a parameter block.
func DecodeParamInfo(b []byte) ParamInfo {
	nameLen := binary.LittleEndian.Uint32(b[8:])
	return ParamInfo{
		Type:       ParamType(binary.LittleEndian.Uint32(b[0:])),
		Components: binary.LittleEndian.Uint32(b[4:]),
		Name:       string(b[ParamInfoHeaderSize : ParamInfoHeaderSize+nameLen]),
	}
}

// RayHit is the fixed-layout raycast result block:
// {node u32, point 3xf32, normal 3xf32, distance f32}.
type RayHit struct {
	Node     Handle
	Point    [3]float32
	Normal   [3]float32
	Distance float32
}

// RayHitSize is the encoded size of a RayHit block.
const RayHitSize = 32

// Encode writes the hit block into b.
func (rh RayHit) Encode(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], uint32(rh.Node))
	for i, f := range rh.Point {
		binary.LittleEndian.PutUint32(b[4+i*4:], math.Float32bits(f))
	}
	for i, f := range rh.Normal {
		binary.LittleEndian.PutUint32(b[16+i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(b[28:], math.Float32bits(rh.Distance))
}

// DecodeRayHit reads a hit block.
func DecodeRayHit(b []byte) RayHit {
	var rh RayHit
	rh.Node = Handle(binary.LittleEndian.Uint32(b[0:]))
	for i := range rh.Point {
		rh.Point[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4+i*4:]))
	}
	for i := range rh.Normal {
		rh.Normal[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[16+i*4:]))
	}
	rh.Distance = math.Float32frombits(binary.LittleEndian.Uint32(b[28:]))
	return rh
}

// TransformSize is the node transform block: position 3xf32, rotation
// quaternion 4xf32, scale 3xf32.
const TransformSize = 40

// Completion is delivered by the engine when an async load finishes.
// Seq is the host-assigned sequence number registered before the request.
type Completion struct {
	Reason string
	Seq    uint32
	Handle Handle
	OK     bool
}

// CompletionFunc receives async load completions. It is invoked on the same
// logical thread that drives the engine; there is no internal concurrency.
type CompletionFunc func(Completion)
