package lifetime_test

import "github.com/gan74/yave/driver"

// fakeGPU only implements what CmdBufferPool exercises: NewCmdBuffer.
// Every other method panics if called, since no test needs them.
type fakeGPU struct{ n int }

func (g *fakeGPU) Driver() driver.Driver         { panic("unused") }
func (g *fakeGPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	panic("unused")
}
func (g *fakeGPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	g.n++
	return &fakeCmdBuffer{id: g.n}, nil
}
func (g *fakeGPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	panic("unused")
}
func (g *fakeGPU) NewShaderCode(data []byte) (driver.ShaderCode, error)     { panic("unused") }
func (g *fakeGPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) { panic("unused") }
func (g *fakeGPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) { panic("unused") }
func (g *fakeGPU) NewPipeline(state any) (driver.Pipeline, error)              { panic("unused") }
func (g *fakeGPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	panic("unused")
}
func (g *fakeGPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	panic("unused")
}
func (g *fakeGPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) { panic("unused") }
func (g *fakeGPU) Limits() driver.Limits                                   { return driver.Limits{} }

// fakeCmdBuffer tracks reset/destroy calls for assertions; every other
// recording method is a no-op.
type fakeCmdBuffer struct {
	id        int
	resets    int
	destroyed bool
}

func (b *fakeCmdBuffer) Destroy()    { b.destroyed = true }
func (b *fakeCmdBuffer) Begin() error { return nil }
func (b *fakeCmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
}
func (b *fakeCmdBuffer) NextSubpass()                                                  {}
func (b *fakeCmdBuffer) EndPass()                                                      {}
func (b *fakeCmdBuffer) BeginWork(wait bool)                                           {}
func (b *fakeCmdBuffer) EndWork()                                                      {}
func (b *fakeCmdBuffer) BeginBlit(wait bool)                                           {}
func (b *fakeCmdBuffer) EndBlit()                                                      {}
func (b *fakeCmdBuffer) SetPipeline(pl driver.Pipeline)                                {}
func (b *fakeCmdBuffer) SetViewport(vp []driver.Viewport)                              {}
func (b *fakeCmdBuffer) SetScissor(sciss []driver.Scissor)                             {}
func (b *fakeCmdBuffer) SetBlendColor(r, g, bl, a float32)                             {}
func (b *fakeCmdBuffer) SetStencilRef(value uint32)                                    {}
func (b *fakeCmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64)      {}
func (b *fakeCmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {}
func (b *fakeCmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}
func (b *fakeCmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int)  {}
func (b *fakeCmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int)             {}
func (b *fakeCmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {}
func (b *fakeCmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int)                  {}
func (b *fakeCmdBuffer) CopyBuffer(param *driver.BufferCopy)                           {}
func (b *fakeCmdBuffer) CopyImage(param *driver.ImageCopy)                             {}
func (b *fakeCmdBuffer) CopyBufToImg(param *driver.BufImgCopy)                         {}
func (b *fakeCmdBuffer) CopyImgToBuf(param *driver.BufImgCopy)                         {}
func (b *fakeCmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64)     {}
func (b *fakeCmdBuffer) Barrier(bs []driver.Barrier)                                   {}
func (b *fakeCmdBuffer) Transition(t []driver.Transition)                              {}
func (b *fakeCmdBuffer) End() error { return nil }
func (b *fakeCmdBuffer) Reset() error {
	b.resets++
	return nil
}

// fakeHandle is a driver.Destroyer test double recording whether it
// was destroyed.
type fakeHandle struct{ destroyed bool }

func (h *fakeHandle) Destroy() { h.destroyed = true }
