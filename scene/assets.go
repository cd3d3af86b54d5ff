package scene

import (
	"github.com/wippyai/scene-bridge/native"
)

// Texture wraps a texture handle.
type Texture struct {
	ctx *Context
	h   native.Handle
}

func (t *Texture) Handle() native.Handle {
	return t.h
}

// Skin wraps a skin handle.
type Skin struct {
	ctx *Context
	h   native.Handle
}

func (s *Skin) Handle() native.Handle {
	return s.h
}

// JointCount returns the number of joints in the skin.
func (s *Skin) JointCount() int {
	return int(s.ctx.eng.SkinJointCount(s.h))
}

// Animation wraps an animation handle.
type Animation struct {
	ctx *Context
	h   native.Handle
}

func (a *Animation) Handle() native.Handle {
	return a.h
}

// Duration returns the animation length in seconds.
func (a *Animation) Duration() float32 {
	return a.ctx.eng.AnimationDuration(a.h)
}

// Name reads the animation name. The engine reports the full length, so a
// first undersized call is retried with a large enough arena.
func (a *Animation) Name() (string, error) {
	size := uint32(64)
	for {
		if err := a.ctx.ar.Ensure(size); err != nil {
			return "", err
		}
		n := a.ctx.eng.AnimationName(a.h, a.ctx.ar.Base(), a.ctx.ar.Cap())
		if n <= a.ctx.ar.Cap() {
			v := a.ctx.ar.View()
			return string(v.Bytes()[:n]), nil
		}
		size = n
	}
}
