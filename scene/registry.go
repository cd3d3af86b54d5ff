package scene

import (
	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// Factory builds a user component wrapper around the generic core. The
// returned Component is what wrapComponent caches, so a factory must return
// the same value for the same Generic.
type Factory func(g *Generic) Component

// RegisterKind resolves a user-defined component kind by name with the
// engine and associates a wrapper factory with it. Registering the same name
// twice returns the same kind; the factory is replaced.
func (c *Context) RegisterKind(name string, f Factory) (native.Kind, error) {
	if name == "" {
		return 0, errors.InvalidInput(errors.PhaseScene, "component kind name cannot be empty")
	}

	ptr, length, release, err := c.stageString(name)
	if err != nil {
		return 0, err
	}
	defer release()

	kind := c.eng.KindRegister(ptr, length)
	if kind < native.KindUserBase {
		return 0, errors.New(errors.PhaseNative, errors.KindInvalidData).
			Detail("engine returned reserved kind %d for %q", kind, name).
			Build()
	}

	if f != nil {
		c.factories[kind] = f
	}
	c.kindNames[kind] = name
	return kind, nil
}

// KindByName returns a previously registered kind.
func (c *Context) KindByName(name string) (native.Kind, bool) {
	for kind, n := range c.kindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}
