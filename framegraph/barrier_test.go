package framegraph_test

import (
	"testing"

	"github.com/gan74/yave/driver"
	"github.com/gan74/yave/framegraph"
)

// A pass that writes a color attachment followed by a pass that reads
// it as a fragment shader input must synthesize a barrier from
// color-attachment-write to shader-read, with a matching layout
// transition out of the attachment layout (§4.4).
func TestSynthesizedBarrierColorToShaderRead(t *testing.T) {
	var captured []driver.Transition
	cb := &recordingCmdBuffer{fakeCmdBuffer: fakeCmdBuffer{}}

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
	if err := compiled.Record(cb); err != nil {
		t.Fatalf("Record: %v", err)
	}
	captured = cb.transitions

	// one barrier preceding "opaque" (the initial Undefined->ColorTarget
	// transition) and one preceding "post" (ColorTarget->ShaderRead).
	if len(captured) < 2 {
		t.Fatalf("expected at least 2 transitions, got %d", len(captured))
	}
	post := captured[len(captured)-1]
	if post.AccessBefore != driver.AColorWrite {
		t.Errorf("AccessBefore = %v, want AColorWrite", post.AccessBefore)
	}
	if post.AccessAfter != driver.AShaderRead {
		t.Errorf("AccessAfter = %v, want AShaderRead", post.AccessAfter)
	}
	if post.LayoutBefore != driver.LColorTarget {
		t.Errorf("LayoutBefore = %v, want LColorTarget", post.LayoutBefore)
	}
	if post.LayoutAfter != driver.LShaderRead {
		t.Errorf("LayoutAfter = %v, want LShaderRead", post.LayoutAfter)
	}
}

// recordingCmdBuffer wraps fakeCmdBuffer to capture the transitions
// passed to it, so tests can inspect the barriers Compile synthesized.
type recordingCmdBuffer struct {
	fakeCmdBuffer
	transitions []driver.Transition
}

func (r *recordingCmdBuffer) Transition(t []driver.Transition) {
	r.transitions = append(r.transitions, t...)
}
