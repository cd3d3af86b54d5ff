package wasmengine

import (
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/scene-bridge/errors"
)

// abiWIT declares the engine's required export surface. Function names are
// kebab-case here and snake_case in the core module's export section.
// Structured data travels through linear memory at u32 offsets.
const abiWIT = `
	engine-alloc: func(size: u32, align: u32) -> u32;
	engine-free: func(ptr: u32, size: u32, align: u32);

	nodes-create: func(dst: u32, count: u32, hint: u32);
	node-destroy: func(h: u32);
	node-alive: func(h: u32) -> u32;
	node-parent: func(h: u32) -> u32;
	node-set-parent: func(h: u32, parent: u32);
	node-child-count: func(h: u32) -> u32;
	node-children: func(h: u32, dst: u32);
	node-active: func(h: u32) -> u32;
	node-set-active: func(h: u32, active: u32);
	node-transform: func(h: u32, dst: u32);
	node-set-transform: func(h: u32, src: u32);

	component-get: func(node: u32, kind: u32) -> u32;
	component-add: func(node: u32, kind: u32) -> u32;
	component-destroy: func(kind: u32, h: u32);
	component-node: func(kind: u32, h: u32) -> u32;
	component-active: func(kind: u32, h: u32) -> u32;
	component-set-active: func(kind: u32, h: u32, active: u32);
	kind-register: func(name: u32, len: u32) -> u32;

	node-mesh: func(node: u32) -> u32;
	mesh-vertex-count: func(mesh: u32) -> u32;
	mesh-attribute: func(mesh: u32, attr: u32, dst: u32) -> u32;
	mesh-read: func(mesh: u32, attr: u32, first: u32, count: u32, dst: u32);
	mesh-write: func(mesh: u32, attr: u32, first: u32, count: u32, src: u32);

	component-material: func(h: u32) -> u32;
	material-definition: func(mat: u32) -> u32;
	definition-param-count: func(def: u32) -> u32;
	definition-param: func(def: u32, index: u32, dst: u32, cap: u32) -> u32;
	material-get-floats: func(mat: u32, index: u32, dst: u32, count: u32) -> u32;
	material-set-floats: func(mat: u32, index: u32, src: u32, count: u32);
	material-get-int: func(mat: u32, index: u32, dst: u32) -> u32;
	material-set-int: func(mat: u32, index: u32, value: s32);
	material-get-sampler: func(mat: u32, index: u32) -> u32;
	material-set-sampler: func(mat: u32, index: u32, tex: u32);

	node-skin: func(node: u32) -> u32;
	skin-joint-count: func(skin: u32) -> u32;
	node-animation-count: func(node: u32) -> u32;
	node-animation: func(node: u32, index: u32) -> u32;
	animation-duration: func(anim: u32) -> f32;
	animation-name: func(anim: u32, dst: u32, cap: u32) -> u32;

	raycast: func(src: u32, dst: u32) -> u32;

	scene-append: func(node: u32, path: u32, len: u32, seq: u32);
	texture-load: func(path: u32, len: u32, seq: u32);
`

type abiSignature struct {
	params  []wit.Type
	results []wit.Type
}

var abiFuncPattern = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseABI extracts the export signature table from abiWIT.
func parseABI() (map[string]*abiSignature, error) {
	funcs := make(map[string]*abiSignature)

	for _, match := range abiFuncPattern.FindAllStringSubmatch(abiWIT, -1) {
		name := match[1]
		sig := &abiSignature{}

		if params := strings.TrimSpace(match[2]); params != "" {
			for _, p := range strings.Split(params, ",") {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = p[idx+1:]
				}
				t, err := wit.ParseType(strings.TrimSpace(typStr))
				if err != nil {
					return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse ABI param type "+typStr)
				}
				sig.params = append(sig.params, t)
			}
		}

		if result := strings.TrimSpace(match[3]); result != "" {
			t, err := wit.ParseType(result)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse ABI result type "+result)
			}
			sig.results = []wit.Type{t}
		}

		funcs[exportName(name)] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty ABI signature table")
	}
	return funcs, nil
}

// exportName converts the WIT kebab-case name to the core export name.
func exportName(witName string) string {
	return strings.ReplaceAll(witName, "-", "_")
}

// coreValueType flattens a WIT scalar to its core WASM value type.
func coreValueType(t wit.Type) api.ValueType {
	switch t.(type) {
	case wit.F32:
		return api.ValueTypeF32
	case wit.F64:
		return api.ValueTypeF64
	case wit.U64, wit.S64:
		return api.ValueTypeI64
	}
	return api.ValueTypeI32
}

// validateExports checks every ABI function against the instantiated
// module's exports: present, and with the flattened core signature.
func validateExports(mod api.Module, abi map[string]*abiSignature) error {
	var missing []string
	for name, sig := range abi {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			missing = append(missing, name)
			continue
		}

		def := fn.Definition()
		if !matchTypes(def.ParamTypes(), sig.params) || !matchTypes(def.ResultTypes(), sig.results) {
			return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
				Path(name).
				Detail("export signature does not match engine ABI").
				Build()
		}
	}

	if len(missing) > 0 {
		return errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("engine module missing %d ABI exports: %s", len(missing), strings.Join(missing, ", ")).
			Build()
	}
	return nil
}

func matchTypes(core []api.ValueType, witTypes []wit.Type) bool {
	if len(core) != len(witTypes) {
		return false
	}
	for i, t := range witTypes {
		if core[i] != coreValueType(t) {
			return false
		}
	}
	return true
}
