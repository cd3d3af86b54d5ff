package scene

import (
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Scalar is the set of element types an attribute can declare.
type Scalar interface {
	~float32 | ~uint8 | ~uint16 | ~uint32
}

// formatOf maps the accessor's element type onto the boundary format tag.
func formatOf[T Scalar]() native.Format {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return native.FormatU8
	case uint16:
		return native.FormatU16
	case uint32:
		return native.FormatU32
	}
	return native.FormatF32
}

// Accessor reads and writes one strided attribute of a mesh. Buffers passed
// to Get and Set cover whole logical elements: their length must be a
// positive multiple of the attribute's component count. Batching many
// elements per call amortizes the fixed boundary-crossing cost, which
// dominates in per-vertex loops.
//
// The accessor stages all I/O through the context's scratch arena; calls on
// one accessor must not interleave with other arena users.
type Accessor[T Scalar] struct {
	ctx  *Context
	mesh native.Handle
	info native.AttributeInfo
}

// Info returns the strided descriptor the accessor was built from.
func (a *Accessor[T]) Info() native.AttributeInfo {
	return a.info
}

// Components returns the per-element component count.
func (a *Accessor[T]) Components() int {
	return int(a.info.Components)
}

// Count returns the element count at descriptor acquisition time.
func (a *Accessor[T]) Count() int {
	return int(a.info.Count)
}

func (a *Accessor[T]) validate(n, index int) (elems int, err error) {
	comp := int(a.info.Components)
	if n == 0 || n%comp != 0 {
		return 0, errors.LengthNotMultiple(errors.PhaseAttribute, n, comp)
	}
	elems = n / comp
	if index < 0 || index+elems > int(a.info.Count) {
		return 0, errors.OutOfBounds(errors.PhaseAttribute,
			[]string{a.info.Attr.String()}, index, int(a.info.Count))
	}
	return elems, nil
}

// Get reads len(out)/Components consecutive elements starting at index into
// out and returns it. A nil out allocates a single-element buffer.
func (a *Accessor[T]) Get(index int, out []T) ([]T, error) {
	if out == nil {
		out = make([]T, a.info.Components)
	}
	elems, err := a.validate(len(out), index)
	if err != nil {
		return nil, err
	}

	if err := a.ctx.ar.Ensure(uint32(len(out)) * a.info.Format.Size()); err != nil {
		return nil, err
	}
	if err := a.ctx.eng.MeshRead(a.mesh, a.info.Attr, uint32(index), uint32(elems), a.ctx.ar.Base()); err != nil {
		return nil, errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "read attribute")
	}

	v := a.ctx.ar.View()
	switch a.info.Format {
	case native.FormatU8:
		for i := range out {
			out[i] = T(v.U8(i))
		}
	case native.FormatU16:
		for i := range out {
			out[i] = T(v.U16(i))
		}
	case native.FormatU32:
		for i := range out {
			out[i] = T(v.U32(i))
		}
	default:
		for i := range out {
			out[i] = T(v.F32(i))
		}
	}
	return out, nil
}

// Set writes len(values)/Components consecutive elements starting at index.
func (a *Accessor[T]) Set(index int, values []T) error {
	elems, err := a.validate(len(values), index)
	if err != nil {
		return err
	}

	if err := a.ctx.ar.Ensure(uint32(len(values)) * a.info.Format.Size()); err != nil {
		return err
	}

	v := a.ctx.ar.View()
	switch a.info.Format {
	case native.FormatU8:
		for i, val := range values {
			v.PutU8(i, uint8(val))
		}
	case native.FormatU16:
		for i, val := range values {
			v.PutU16(i, uint16(val))
		}
	case native.FormatU32:
		for i, val := range values {
			v.PutU32(i, uint32(val))
		}
	default:
		for i, val := range values {
			v.PutF32(i, float32(val))
		}
	}

	if err := a.ctx.eng.MeshWrite(a.mesh, a.info.Attr, uint32(index), uint32(elems), a.ctx.ar.Base()); err != nil {
		return errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "write attribute")
	}
	return nil
}
