package framegraph

import "github.com/gan74/yave/driver"

// PassKind distinguishes the four flavors of work a pass may record
// (§2: "Frame Graph — a DAG of passes").
type PassKind int

const (
	Graphics PassKind = iota
	ComputePass
	TransferPass
	External
)

func (k PassKind) String() string {
	switch k {
	case Graphics:
		return "Graphics"
	case ComputePass:
		return "Compute"
	case TransferPass:
		return "Transfer"
	case External:
		return "External"
	default:
		return "PassKind(?)"
	}
}

// access is one (handle, stage, usage, op) touch a pass declares
// against a resource during its setup callback.
type access struct {
	id    handleID
	stage Stage
	usage driver.Usage
	op    op
}

// colorAttachment is one render target a Graphics pass writes to,
// with its load operation (§4.4's framebuffer attachment rules).
type colorAttachment struct {
	id   handleID
	load driver.LoadOp
}

// pass is one node of the frame graph: its setup-time declared
// accesses, plus the record function to invoke once compiled.
type pass struct {
	name  string
	kind  PassKind
	index int

	accesses []access

	colorAttachments []colorAttachment
	depthAttachment  *colorAttachment

	record func(r *Recorder)

	// deps holds the indices of passes this one depends on, filled
	// in during dependency inference.
	deps []int
}

func (p *pass) touch(id handleID, stage Stage, usage driver.Usage, o op) {
	p.accesses = append(p.accesses, access{id: id, stage: stage, usage: usage, op: o})
}
