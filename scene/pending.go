package scene

import (
	"go.uber.org/zap"

	"github.com/wippyai/scene-bridge/errors"
	"github.com/wippyai/scene-bridge/native"
)

// pendingLoad is one outstanding async request. The record stays referenced
// until its completion fires; a request the engine never completes is a leak
// in this table, an accepted limitation since completions cannot be
// cancelled.
type pendingLoad struct {
	fn   func(native.Handle, error)
	what string
}

// register stores a completion callback under a fresh sequence number.
// Must be called before issuing the native request.
func (c *Context) register(what string, fn func(native.Handle, error)) uint32 {
	c.seq++
	c.pending[c.seq] = pendingLoad{fn: fn, what: what}
	return c.seq
}

// Pending returns the number of outstanding async loads.
func (c *Context) Pending() int {
	return len(c.pending)
}

// complete is the completion entry point the engine invokes. Runs on the
// same logical thread as all other binding code.
func (c *Context) complete(comp native.Completion) {
	p, ok := c.pending[comp.Seq]
	if !ok {
		c.log.Warn("completion for unknown sequence", zap.Uint32("seq", comp.Seq))
		return
	}
	delete(c.pending, comp.Seq)

	if !comp.OK {
		c.log.Debug("load rejected",
			zap.Uint32("seq", comp.Seq),
			zap.String("what", p.what),
			zap.String("reason", comp.Reason))
		p.fn(native.Nil, errors.LoadRejected(p.what, comp.Reason))
		return
	}

	c.log.Debug("load complete",
		zap.Uint32("seq", comp.Seq),
		zap.String("what", p.what),
		zap.Uint32("handle", uint32(comp.Handle)))
	p.fn(comp.Handle, nil)
}

// LoadTexture asynchronously decodes an image file into a texture. fn is
// invoked exactly once with the texture or the load error.
func (c *Context) LoadTexture(path string, fn func(*Texture, error)) error {
	ptr, length, release, err := c.stageString(path)
	if err != nil {
		return err
	}
	defer release()

	seq := c.register("load texture "+path, func(h native.Handle, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(c.wrapTexture(h), nil)
	})
	c.eng.TextureLoad(ptr, length, seq)
	return nil
}
