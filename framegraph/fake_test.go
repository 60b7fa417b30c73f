package framegraph_test

import "github.com/gan74/yave/driver"

// fakeGPU is a minimal driver.GPU that allocates nothing real: every
// resource it hands back is a stub that only satisfies the interface,
// enough to drive Compile/Record without a real device.
type fakeGPU struct{}

func (fakeGPU) Driver() driver.Driver                                    { return nil }
func (fakeGPU) Commit(cb []driver.CmdBuffer, ch chan<- error)            { ch <- nil }
func (fakeGPU) NewCmdBuffer() (driver.CmdBuffer, error)                  { return &fakeCmdBuffer{}, nil }
func (fakeGPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	return &fakeRenderPass{}, nil
}
func (fakeGPU) NewShaderCode(data []byte) (driver.ShaderCode, error) { return fakeDestroyer{}, nil }
func (fakeGPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return nil, nil
}
func (fakeGPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	return nil, nil
}
func (fakeGPU) NewPipeline(state any) (driver.Pipeline, error) { return nil, nil }
func (fakeGPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	return &fakeBuffer{size: size, visible: visible}, nil
}
func (fakeGPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	return &fakeImage{}, nil
}
func (fakeGPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) { return nil, nil }
func (fakeGPU) Limits() driver.Limits                                   { return driver.Limits{} }

type fakeDestroyer struct{}

func (fakeDestroyer) Destroy() {}

type fakeImage struct{ fakeDestroyer }

func (*fakeImage) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	return fakeDestroyer{}, nil
}

type fakeBuffer struct {
	fakeDestroyer
	size    int64
	visible bool
}

func (b *fakeBuffer) Visible() bool  { return b.visible }
func (b *fakeBuffer) Bytes() []byte  { return nil }
func (b *fakeBuffer) Cap() int64     { return b.size }

type fakeRenderPass struct{ fakeDestroyer }

func (*fakeRenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	return fakeDestroyer{}, nil
}

// fakeCmdBuffer records nothing, it only needs to satisfy the
// interface and not panic when Record drives it.
type fakeCmdBuffer struct{ fakeDestroyer }

func (*fakeCmdBuffer) Begin() error                                               { return nil }
func (*fakeCmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
}
func (*fakeCmdBuffer) NextSubpass()                  {}
func (*fakeCmdBuffer) EndPass()                      {}
func (*fakeCmdBuffer) BeginWork(wait bool)            {}
func (*fakeCmdBuffer) EndWork()                       {}
func (*fakeCmdBuffer) BeginBlit(wait bool)            {}
func (*fakeCmdBuffer) EndBlit()                       {}
func (*fakeCmdBuffer) SetPipeline(pl driver.Pipeline)  {}
func (*fakeCmdBuffer) SetViewport(vp []driver.Viewport) {}
func (*fakeCmdBuffer) SetScissor(sciss []driver.Scissor) {}
func (*fakeCmdBuffer) SetBlendColor(r, g, b, a float32)  {}
func (*fakeCmdBuffer) SetStencilRef(value uint32)        {}
func (*fakeCmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {}
func (*fakeCmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {}
func (*fakeCmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}
func (*fakeCmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int)  {}
func (*fakeCmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int)                   {}
func (*fakeCmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int)     {}
func (*fakeCmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int)                        {}
func (*fakeCmdBuffer) CopyBuffer(param *driver.BufferCopy)                                {}
func (*fakeCmdBuffer) CopyImage(param *driver.ImageCopy)                                  {}
func (*fakeCmdBuffer) CopyBufToImg(param *driver.BufImgCopy)                              {}
func (*fakeCmdBuffer) CopyImgToBuf(param *driver.BufImgCopy)                              {}
func (*fakeCmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64)          {}
func (*fakeCmdBuffer) Barrier(b []driver.Barrier)                                         {}
func (*fakeCmdBuffer) Transition(t []driver.Transition)                                   {}
func (*fakeCmdBuffer) End() error                                                         { return nil }
func (*fakeCmdBuffer) Reset() error                                                       { return nil }
