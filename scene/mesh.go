package scene

import (
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Mesh wraps a mesh handle. Attribute data stays in the engine's vertex
// buffer; host access goes through typed accessors.
type Mesh struct {
	ctx *Context
	h   native.Handle
}

func (m *Mesh) Handle() native.Handle {
	return m.h
}

// VertexCount returns the mesh's current logical length.
func (m *Mesh) VertexCount() int {
	return int(m.ctx.eng.MeshVertexCount(m.h))
}

// describe fetches the strided descriptor for one attribute. The descriptor
// is valid until the mesh is resized; callers reacquire after that.
func (m *Mesh) describe(attr native.Attribute) (native.AttributeInfo, error) {
	if m.h == native.Nil {
		return native.AttributeInfo{}, errors.StaleHandle(errors.PhaseAttribute, "mesh")
	}
	if err := m.ctx.ar.Ensure(native.AttributeInfoSize); err != nil {
		return native.AttributeInfo{}, err
	}
	if !m.ctx.eng.MeshAttribute(m.h, attr, m.ctx.ar.Base()) {
		return native.AttributeInfo{}, errors.NotFound(errors.PhaseAttribute, "attribute", attr.String())
	}
	v := m.ctx.ar.View()
	return native.DecodeAttributeInfo(v.Bytes()[:native.AttributeInfoSize]), nil
}

// Acquire builds a typed accessor for one attribute. T must match the
// attribute's declared format exactly; the accessor never widens, narrows,
// or reinterprets across formats.
func Acquire[T Scalar](m *Mesh, attr native.Attribute) (*Accessor[T], error) {
	info, err := m.describe(attr)
	if err != nil {
		return nil, err
	}
	if info.Components < 1 {
		return nil, errors.New(errors.PhaseAttribute, errors.KindInvalidData).
			Path(attr.String()).
			Detail("descriptor declares %d components", info.Components).
			Build()
	}
	if want := formatOf[T](); want != info.Format {
		return nil, errors.TypeMismatch(errors.PhaseAttribute,
			[]string{attr.String()}, want.String(), info.Format.String())
	}
	return &Accessor[T]{ctx: m.ctx, mesh: m.h, info: info}, nil
}

// Positions returns the float32 position accessor.
func (m *Mesh) Positions() (*Accessor[float32], error) {
	return Acquire[float32](m, native.AttrPosition)
}

// Normals returns the float32 normal accessor.
func (m *Mesh) Normals() (*Accessor[float32], error) {
	return Acquire[float32](m, native.AttrNormal)
}

// UVs returns the float32 texture coordinate accessor.
func (m *Mesh) UVs() (*Accessor[float32], error) {
	return Acquire[float32](m, native.AttrUV)
}

// Colors returns the uint8 vertex color accessor.
func (m *Mesh) Colors() (*Accessor[uint8], error) {
	return Acquire[uint8](m, native.AttrColor)
}

// Joints returns the uint16 joint index accessor.
func (m *Mesh) Joints() (*Accessor[uint16], error) {
	return Acquire[uint16](m, native.AttrJoints)
}

// Weights returns the float32 joint weight accessor.
func (m *Mesh) Weights() (*Accessor[float32], error) {
	return Acquire[float32](m, native.AttrWeights)
}
