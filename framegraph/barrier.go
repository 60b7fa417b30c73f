package framegraph

import "github.com/gan74/yave/driver"

// touch is the (op, stage, usage) triple recorded against a resource
// at one point in the linear pass order, the minimal state barrier
// synthesis needs (§4.4 step 4).
type touch struct {
	op    op
	stage Stage
	usage driver.Usage
}

// syncScope maps a frame-graph Stage to the driver's synchronization
// scope bitmask.
func syncScope(s Stage) driver.Sync {
	switch s {
	case VertexInput:
		return driver.SVertexInput
	case Vertex:
		return driver.SVertexShading
	case Fragment:
		return driver.SFragmentShading
	case Compute:
		return driver.SComputeShading
	case ColorAttachmentOutput:
		return driver.SColorOutput
	case Transfer:
		return driver.SCopy
	case AllShaders:
		return driver.SVertexShading | driver.SFragmentShading | driver.SComputeShading
	case AllCommands:
		return driver.SAll
	default: // BeginOfPipe, Host, EndOfPipe
		return driver.SNone
	}
}

// srcAccess implements the "previous op -> srcAccess" table of §4.4.
func srcAccess(t touch) driver.Access {
	switch {
	case t.op == opWrite && t.usage&driver.URenderTarget != 0:
		return driver.AColorWrite
	case t.op == opWrite && t.usage&(driver.UShaderWrite) != 0 && t.stage == Transfer:
		return driver.ACopyWrite
	case t.op == opWrite && t.usage&driver.UShaderWrite != 0:
		return driver.AShaderWrite
	case t.op == opRead && t.stage == Transfer:
		return driver.ACopyRead
	case t.op == opRead:
		return driver.AShaderRead
	default:
		return driver.ANone
	}
}

// dstAccess implements the "next op -> dstAccess" table of §4.4.
func dstAccess(t touch) driver.Access {
	switch {
	case t.op == opRead && t.stage == Transfer:
		return driver.ACopyRead
	case t.op == opRead:
		return driver.AShaderRead
	case t.op == opWrite && t.usage&driver.URenderTarget != 0:
		return driver.AColorRead | driver.AColorWrite
	case t.op == opWrite && t.stage == Compute:
		return driver.AShaderRead | driver.AShaderWrite
	case t.op == opWrite:
		return driver.AShaderWrite
	default:
		return driver.ANone
	}
}

// imageLayout derives the image layout a touch requires, used both to
// instantiate the resource's initial layout and to detect layout
// changes between consecutive touches.
func imageLayout(t touch) driver.Layout {
	switch {
	case t.op == opUndefined:
		return driver.LUndefined
	case t.op == opWrite && t.usage&driver.URenderTarget != 0:
		return driver.LColorTarget
	case t.op == opWrite && t.stage == Transfer:
		return driver.LCopyDst
	case t.op == opRead && t.stage == Transfer:
		return driver.LCopySrc
	case t.op == opRead:
		return driver.LShaderRead
	default:
		return driver.LCommon
	}
}

// synthesizeBarrier builds the driver.Transition to insert between
// prev and next touches of the same resource (§4.4 step 4). For
// buffers (no layout concept) LayoutBefore/After are both LCommon and
// the caller is expected to ignore them. IView is left unset; the
// caller fills it in from the resource's instantiated view, since this
// function only knows about touches, not resources.
func synthesizeBarrier(prev, next touch) driver.Transition {
	return driver.Transition{
		Barrier: driver.Barrier{
			SyncBefore:   syncScope(prev.stage),
			SyncAfter:    syncScope(next.stage),
			AccessBefore: srcAccess(prev),
			AccessAfter:  dstAccess(next),
		},
		LayoutBefore: imageLayout(prev),
		LayoutAfter:  imageLayout(next),
	}
}
