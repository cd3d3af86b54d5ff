package scene

import (
	"fmt"

	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Material wraps a material handle. Named parameter access is resolved
// against the shader definition's parameter table; names the shader does not
// declare fall through to plain per-instance storage.
type Material struct {
	ctx   *Context
	table *paramTable
	extra map[string]any
	h     native.Handle
}

func (m *Material) Handle() native.Handle {
	return m.h
}

func (m *Material) resolve() (*paramTable, error) {
	if m.h == native.Nil {
		return nil, errors.StaleHandle(errors.PhaseMaterial, "material")
	}
	if m.table == nil {
		t, err := m.ctx.definitionTable(m.ctx.eng.MaterialDefinition(m.h))
		if err != nil {
			return nil, err
		}
		m.table = t
	}
	return m.table, nil
}

// Param returns the resolved parameter for name, if the shader declares it.
func (m *Material) Param(name string) (Param, bool, error) {
	t, err := m.resolve()
	if err != nil {
		return Param{}, false, err
	}
	p, ok := t.byName[name]
	return p, ok, nil
}

// Params returns the shader's declared parameters in table order.
func (m *Material) Params() ([]Param, error) {
	t, err := m.resolve()
	if err != nil {
		return nil, err
	}
	return t.params, nil
}

// Get reads a parameter by name. ok is false when the parameter is declared
// but currently unset — an absent result, not an error. Undeclared names
// read from the instance's fall-through storage.
func (m *Material) Get(name string) (value any, ok bool, err error) {
	t, err := m.resolve()
	if err != nil {
		return nil, false, err
	}

	p, declared := t.byName[name]
	if !declared {
		value, ok = m.extra[name]
		return value, ok, nil
	}

	switch p.Type {
	case native.ParamFloat:
		if err := m.ctx.ar.Ensure(p.Components * 4); err != nil {
			return nil, false, err
		}
		if !m.ctx.eng.MaterialGetFloats(m.h, p.Index, m.ctx.ar.Base(), p.Components) {
			return nil, false, nil
		}
		v := m.ctx.ar.View()
		if p.Components == 1 {
			return v.F32(0), true, nil
		}
		out := make([]float32, p.Components)
		for i := range out {
			out[i] = v.F32(i)
		}
		return out, true, nil

	case native.ParamInt:
		val, set := m.ctx.eng.MaterialGetInt(m.h, p.Index)
		if !set {
			return nil, false, nil
		}
		return val, true, nil

	case native.ParamSampler:
		h := m.ctx.eng.MaterialGetSampler(m.h, p.Index)
		if h == native.Nil {
			return nil, false, nil
		}
		return m.ctx.wrapTexture(h), true, nil
	}

	// Font parameters carry no host-readable value.
	return nil, false, nil
}

// Set writes a parameter by name, dispatching on the declared type tag.
// Undeclared names go to the instance's fall-through storage. Font
// parameters cannot be reassigned; that is an explicit error, never a
// silent no-op.
func (m *Material) Set(name string, value any) error {
	t, err := m.resolve()
	if err != nil {
		return err
	}

	p, declared := t.byName[name]
	if !declared {
		if m.extra == nil {
			m.extra = make(map[string]any)
		}
		m.extra[name] = value
		return nil
	}

	switch p.Type {
	case native.ParamFloat:
		return m.setFloats(p, value)
	case native.ParamInt:
		return m.setInt(p, value)
	case native.ParamSampler:
		return m.setSampler(p, value)
	case native.ParamFont:
		return errors.Unsupported(errors.PhaseMaterial,
			fmt.Sprintf("font parameter %q cannot be reassigned", name))
	}
	return errors.New(errors.PhaseMaterial, errors.KindInvalidData).
		Path(name).
		Detail("unknown parameter type tag %d", p.Type).
		Build()
}

// setFloats accepts a scalar for component count 1, or a slice whose length
// matches the declared count. A mismatched length is undefined behavior in
// the native call, so it is guarded here.
func (m *Material) setFloats(p Param, value any) error {
	var vals []float32
	switch v := value.(type) {
	case float32:
		vals = []float32{v}
	case float64:
		vals = []float32{float32(v)}
	case int:
		vals = []float32{float32(v)}
	case []float32:
		vals = v
	default:
		return errors.TypeMismatch(errors.PhaseMaterial,
			[]string{p.Name}, fmt.Sprintf("%T", value), "float32 or []float32")
	}

	if uint32(len(vals)) != p.Components {
		return errors.New(errors.PhaseMaterial, errors.KindLengthMultiple).
			Path(p.Name).
			Detail("float parameter wants %d components, got %d", p.Components, len(vals)).
			Build()
	}

	if err := m.ctx.ar.Ensure(p.Components * 4); err != nil {
		return err
	}
	v := m.ctx.ar.View()
	for i, f := range vals {
		v.PutF32(i, f)
	}
	if err := m.ctx.eng.MaterialSetFloats(m.h, p.Index, m.ctx.ar.Base(), p.Components); err != nil {
		return errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "set float parameter")
	}
	return nil
}

func (m *Material) setInt(p Param, value any) error {
	var val int32
	switch v := value.(type) {
	case int:
		val = int32(v)
	case int32:
		val = v
	case int64:
		val = int32(v)
	case uint32:
		val = int32(v)
	default:
		return errors.TypeMismatch(errors.PhaseMaterial,
			[]string{p.Name}, fmt.Sprintf("%T", value), "int")
	}
	if err := m.ctx.eng.MaterialSetInt(m.h, p.Index, val); err != nil {
		return errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "set int parameter")
	}
	return nil
}

// setSampler accepts a raw texture handle or a texture wrapper; anything
// else is a type error.
func (m *Material) setSampler(p Param, value any) error {
	var h native.Handle
	switch v := value.(type) {
	case native.Handle:
		h = v
	case *Texture:
		if v != nil {
			h = v.h
		}
	default:
		return errors.TypeMismatch(errors.PhaseMaterial,
			[]string{p.Name}, fmt.Sprintf("%T", value), "*Texture or native.Handle")
	}
	if err := m.ctx.eng.MaterialSetSampler(m.h, p.Index, h); err != nil {
		return errors.Wrap(errors.PhaseNative, errors.KindInvalidData, err, "set sampler parameter")
	}
	return nil
}
