package framegraph

import "github.com/gan74/yave/driver"

// Builder is passed to a pass's setup callback (§4.4). Every
// create/read/write call it records contributes to the dependency
// graph computed by Compile.
type Builder struct {
	graph *Graph
	pass  *pass
}

// Create reserves a virtual image resource. The returned handle has
// version 0 and an undefined last-op: reading it before any write is
// a compile-time failure (§4.4).
func Create(b *Builder, name string, desc ImageDesc) Handle[ImageDesc] {
	id := b.graph.newResource(name, kindImage, desc, BufferDesc{})
	return Handle[ImageDesc]{id: id}
}

// CreateBuffer reserves a virtual buffer resource, the buffer
// counterpart of Create.
func CreateBuffer(b *Builder, name string, desc BufferDesc) Handle[BufferDesc] {
	id := b.graph.newResource(name, kindBuffer, ImageDesc{}, desc)
	return Handle[BufferDesc]{id: id}
}

// Read marks the owning pass as a reader of h at the given stage. It
// is a compile-time fatal error for h to still be Undefined when
// Compile runs (§4.4).
func Read[T any](b *Builder, h Handle[T], stage Stage) Handle[T] {
	b.pass.touch(h.id, stage, driver.UShaderRead, opRead)
	return h
}

// Write marks the owning pass as a writer of h, bumping its version
// (§4.4).
func Write[T any](b *Builder, h Handle[T], stage Stage) Handle[T] {
	b.pass.touch(h.id, stage, driver.UShaderWrite, opWrite)
	h.version++
	return h
}

// RenderTo marks h as a color attachment of a Graphics pass, with the
// given load operation, and bumps its version the same way Write does
// (§4.4's framebuffer attachment rules).
func RenderTo(b *Builder, h Handle[ImageDesc], load driver.LoadOp) Handle[ImageDesc] {
	b.pass.touch(h.id, ColorAttachmentOutput, driver.URenderTarget, opWrite)
	b.pass.colorAttachments = append(b.pass.colorAttachments, colorAttachment{id: h.id, load: load})
	h.version++
	return h
}

// DepthAttachment marks h as the (single) depth attachment of a
// Graphics pass.
func DepthAttachment(b *Builder, h Handle[ImageDesc], load driver.LoadOp) Handle[ImageDesc] {
	b.pass.touch(h.id, ColorAttachmentOutput, driver.URenderTarget, opWrite)
	b.pass.depthAttachment = &colorAttachment{id: h.id, load: load}
	h.version++
	return h
}
