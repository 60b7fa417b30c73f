package framegraph_test

import (
	"errors"
	"testing"

	"github.com/gan74/yave/driver"
	"github.com/gan74/yave/framegraph"
)

func colorImageDesc() framegraph.ImageDesc {
	return framegraph.ImageDesc{
		Format: driver.FInternal,
		Size:   driver.Dim3D{Width: 640, Height: 480, Depth: 1},
		Usage:  driver.URenderTarget | driver.UShaderRead,
	}
}

func TestCompileLinearOrder(t *testing.T) {
	g := framegraph.New(fakeGPU{})

	var img framegraph.Handle[framegraph.ImageDesc]
	g.AddPass(framegraph.Graphics, "opaque", func(b *framegraph.Builder) {
		img = framegraph.Create(b, "color", colorImageDesc())
		img = framegraph.RenderTo(b, img, driver.LClear)
	}, func(r *framegraph.Recorder) {})

	g.AddPass(framegraph.Graphics, "post", func(b *framegraph.Builder) {
		framegraph.Read(b, img, framegraph.Fragment)
	}, func(r *framegraph.Recorder) {})

	compiled, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	order := compiled.Order()
	if len(order) != 2 || order[0] != "opaque" || order[1] != "post" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestCompileUninitializedRead(t *testing.T) {
	g := framegraph.New(fakeGPU{})

	var img framegraph.Handle[framegraph.ImageDesc]
	g.AddPass(framegraph.Graphics, "readonly", func(b *framegraph.Builder) {
		img = framegraph.Create(b, "color", colorImageDesc())
		framegraph.Read(b, img, framegraph.Fragment)
	}, func(r *framegraph.Recorder) {})

	_, err := g.Compile()
	if !errors.Is(err, framegraph.ErrUninitializedRead) {
		t.Fatalf("Compile: got %v, want ErrUninitializedRead", err)
	}
}

// Two passes touching disjoint resources have no inferred dependency
// between them; linearize must still produce a deterministic order,
// breaking the tie by registration order.
func TestCompileIndependentPassesKeepRegistrationOrder(t *testing.T) {
	g := framegraph.New(fakeGPU{})

	g.AddPass(framegraph.Graphics, "a", func(b *framegraph.Builder) {
		img := framegraph.Create(b, "a-color", colorImageDesc())
		framegraph.RenderTo(b, img, driver.LClear)
	}, func(r *framegraph.Recorder) {})

	g.AddPass(framegraph.Graphics, "b", func(b *framegraph.Builder) {
		img := framegraph.Create(b, "b-color", colorImageDesc())
		framegraph.RenderTo(b, img, driver.LClear)
	}, func(r *framegraph.Recorder) {})

	compiled, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	order := compiled.Order()
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestCompileMismatchedAttachmentSize(t *testing.T) {
	g := framegraph.New(fakeGPU{})

	g.AddPass(framegraph.Graphics, "bad", func(b *framegraph.Builder) {
		color := framegraph.Create(b, "color", colorImageDesc())
		color = framegraph.RenderTo(b, color, driver.LClear)

		depthDesc := colorImageDesc()
		depthDesc.Size = driver.Dim3D{Width: 320, Height: 240, Depth: 1}
		depth := framegraph.Create(b, "depth", depthDesc)
		framegraph.DepthAttachment(b, depth, driver.LClear)
		_ = color
	}, func(r *framegraph.Recorder) {})

	_, err := g.Compile()
	if !errors.Is(err, framegraph.ErrMismatchedAttachmentSize) {
		t.Fatalf("Compile: got %v, want ErrMismatchedAttachmentSize", err)
	}
}

func TestRecordRunsPassesInOrder(t *testing.T) {
	g := framegraph.New(fakeGPU{})

	var ran []string
	var img framegraph.Handle[framegraph.ImageDesc]
	g.AddPass(framegraph.Graphics, "opaque", func(b *framegraph.Builder) {
		img = framegraph.Create(b, "color", colorImageDesc())
		img = framegraph.RenderTo(b, img, driver.LClear)
	}, func(r *framegraph.Recorder) {
		ran = append(ran, "opaque")
	})
	g.AddPass(framegraph.Graphics, "post", func(b *framegraph.Builder) {
		framegraph.Read(b, img, framegraph.Fragment)
	}, func(r *framegraph.Recorder) {
		ran = append(ran, "post")
	})

	compiled, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cb := &fakeCmdBuffer{}
	if err := compiled.Record(cb); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(ran) != 2 || ran[0] != "opaque" || ran[1] != "post" {
		t.Fatalf("unexpected record order: %v", ran)
	}
}
