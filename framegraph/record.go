package framegraph

import "github.com/gan74/yave/driver"

// Recorder is passed to a pass's record callback. It exposes the
// concrete resources behind a pass's handles and the command buffer
// to record draw/dispatch/copy commands into (§4.4).
type Recorder struct {
	cb    driver.CmdBuffer
	graph *Graph
}

// CmdBuffer returns the command buffer the pass should record into.
func (r *Recorder) CmdBuffer() driver.CmdBuffer { return r.cb }

// Image resolves h to the concrete image the graph instantiated for
// it. It panics if h does not refer to an image resource, since that
// can only happen if the handle was fabricated outside the Builder
// API.
func (r *Recorder) Image(h Handle[ImageDesc]) driver.Image {
	return r.graph.resources[h.id].image
}

// Buffer resolves h to the concrete buffer the graph instantiated for
// it.
func (r *Recorder) Buffer(h Handle[BufferDesc]) driver.Buffer {
	return r.graph.resources[h.id].buffer
}

// Record executes every pass's record callback, in the linear order
// Compile computed, emitting the pass's synthesized barriers into cb
// immediately beforehand (§4.4 step 5). One command buffer is shared
// across the whole frame: the graph does not attempt multi-threaded
// recording, since ordering barriers correctly across command buffers
// would require cross-buffer semaphores the driver interface doesn't
// expose.
func (c *Compiled) Record(cb driver.CmdBuffer) error {
	if err := cb.Begin(); err != nil {
		return err
	}
	r := &Recorder{cb: cb, graph: c.graph}
	for pos, idx := range c.order {
		p := c.graph.passes[idx]
		if barriers := c.before[pos]; len(barriers) > 0 {
			cb.Transition(barriers)
		}
		if p.kind == Graphics {
			fb, rp, clear, err := c.graph.buildFramebuffer(p)
			if err != nil {
				return err
			}
			cb.BeginPass(rp, fb, clear)
			p.record(r)
			cb.EndPass()
			continue
		}
		p.record(r)
	}
	return cb.End()
}

// Order exposes the linearized pass order for diagnostics and tests.
func (c *Compiled) Order() []string {
	names := make([]string, len(c.order))
	for i, idx := range c.order {
		names[i] = c.graph.passes[idx].name
	}
	return names
}

// buildFramebuffer constructs the render pass and framebuffer for a
// Graphics pass's color/depth attachments (§4.4's framebuffer
// attachment rules). Attachment size agreement was already checked by
// validateAttachments during Compile.
func (g *Graph) buildFramebuffer(p *pass) (driver.Framebuf, driver.RenderPass, []driver.ClearValue, error) {
	atts := make([]driver.Attachment, 0, len(p.colorAttachments)+1)
	views := make([]driver.ImageView, 0, cap(atts))
	clear := make([]driver.ClearValue, 0, cap(atts))

	for _, ca := range p.colorAttachments {
		r := g.resources[ca.id]
		view, err := r.image.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			return nil, nil, nil, err
		}
		atts = append(atts, driver.Attachment{
			Format:  r.imageDesc.Format,
			Samples: max1(r.imageDesc.Samples),
			Load:    [2]driver.LoadOp{ca.load, driver.LDontCare},
			Store:   [2]driver.StoreOp{driver.SStore, driver.SDontCare},
		})
		views = append(views, view)
		clear = append(clear, driver.ClearValue{})
	}
	if p.depthAttachment != nil {
		r := g.resources[p.depthAttachment.id]
		view, err := r.image.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			return nil, nil, nil, err
		}
		atts = append(atts, driver.Attachment{
			Format:  r.imageDesc.Format,
			Samples: max1(r.imageDesc.Samples),
			Load:    [2]driver.LoadOp{p.depthAttachment.load, driver.LDontCare},
			Store:   [2]driver.StoreOp{driver.SStore, driver.SDontCare},
		})
		views = append(views, view)
		clear = append(clear, driver.ClearValue{})
	}

	subpass := driver.Subpass{Color: make([]int, len(p.colorAttachments))}
	for i := range subpass.Color {
		subpass.Color[i] = i
	}
	if p.depthAttachment != nil {
		subpass.DS = len(p.colorAttachments)
	} else {
		subpass.DS = -1
	}

	rp, err := g.gpu.NewRenderPass(atts, []driver.Subpass{subpass})
	if err != nil {
		return nil, nil, nil, err
	}
	w, h := 0, 0
	if len(p.colorAttachments) > 0 {
		sz := g.resources[p.colorAttachments[0].id].imageDesc.Size
		w, h = sz.Width, sz.Height
	} else if p.depthAttachment != nil {
		sz := g.resources[p.depthAttachment.id].imageDesc.Size
		w, h = sz.Width, sz.Height
	}
	fb, err := rp.NewFB(views, w, h, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	return fb, rp, clear, nil
}

func max1(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
