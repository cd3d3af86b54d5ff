package scene

import (
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Param is one resolved entry of a shader definition's parameter table.
type Param struct {
	native.ParamInfo
	Index uint32
}

// paramTable is the name-to-parameter schema for one shader definition.
// Built once per distinct definition and shared read-only across every
// material instance of that definition.
type paramTable struct {
	byName map[string]Param
	params []Param
}

// definitionTable returns the cached parameter table for a definition,
// fetching and decoding it from the engine on first use.
func (c *Context) definitionTable(def uint32) (*paramTable, error) {
	if t, ok := c.defs[def]; ok {
		return t, nil
	}

	count := c.eng.DefinitionParamCount(def)
	t := &paramTable{
		byName: make(map[string]Param, count),
		params: make([]Param, 0, count),
	}

	for i := uint32(0); i < count; i++ {
		pi, err := c.fetchParam(def, i)
		if err != nil {
			return nil, err
		}
		p := Param{ParamInfo: pi, Index: i}
		t.byName[pi.Name] = p
		t.params = append(t.params, p)
	}

	c.defs[def] = t
	return t, nil
}

// fetchParam reads one parameter block. The name length is not known before
// the first read, so the block is fetched once at a default reservation and
// refetched larger if the name did not fit. The reservation is passed to the
// engine as the write capacity, so a long name truncates instead of running
// past the reserved block.
func (c *Context) fetchParam(def, index uint32) (native.ParamInfo, error) {
	size := uint32(native.ParamInfoHeaderSize + 64)
	for {
		if err := c.ar.Ensure(size); err != nil {
			return native.ParamInfo{}, err
		}
		need := c.eng.DefinitionParam(def, index, c.ar.Base(), c.ar.Cap())
		if need == 0 {
			return native.ParamInfo{}, errors.New(errors.PhaseMaterial, errors.KindNotFound).
				Detail("definition %d has no parameter %d", def, index).
				Build()
		}
		if need <= c.ar.Cap() {
			v := c.ar.View()
			return native.DecodeParamInfo(v.Bytes()[:need]), nil
		}
		size = need
	}
}
