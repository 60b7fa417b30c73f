package framegraph

import "github.com/gan74/yave/driver"

// Stage identifies a point in the pipeline at which a resource is
// touched, drawn from the closed set named in §4.4.
type Stage int

const (
	BeginOfPipe Stage = iota
	VertexInput
	Vertex
	Fragment
	Compute
	ColorAttachmentOutput
	Transfer
	Host
	AllShaders
	AllCommands
	EndOfPipe
)

func (s Stage) String() string {
	switch s {
	case BeginOfPipe:
		return "BeginOfPipe"
	case VertexInput:
		return "VertexInput"
	case Vertex:
		return "Vertex"
	case Fragment:
		return "Fragment"
	case Compute:
		return "Compute"
	case ColorAttachmentOutput:
		return "ColorAttachmentOutput"
	case Transfer:
		return "Transfer"
	case Host:
		return "Host"
	case AllShaders:
		return "AllShaders"
	case AllCommands:
		return "AllCommands"
	case EndOfPipe:
		return "EndOfPipe"
	default:
		return "Stage(?)"
	}
}

// op classifies the kind of the last touch recorded against a
// resource (§4.4).
type op int

const (
	opUndefined op = iota
	opRead
	opWrite
)

// resourceKind distinguishes the two virtual resource flavors the
// graph instantiates during compilation.
type resourceKind int

const (
	kindImage resourceKind = iota
	kindBuffer
)

// ImageDesc describes the concrete image a handle instantiates to.
type ImageDesc struct {
	Format  driver.PixelFmt
	Size    driver.Dim3D
	Layers  int
	Levels  int
	Samples int
	Usage   driver.Usage
}

// BufferDesc describes the concrete buffer a handle instantiates to.
type BufferDesc struct {
	Size    int64
	Visible bool
	Usage   driver.Usage
}

// handleID is the process-unique identity of a virtual resource
// within one graph's lifetime.
type handleID int

// Handle is an opaque, typed reference to a virtual resource declared
// through Builder.Create (§4.4). It does not outlive the graph's
// compile+record+submit cycle (§9).
type Handle[T any] struct {
	id      handleID
	version int
}

// ID reports the handle's identity, for comparing two handles to the
// same resource irrespective of version.
func (h Handle[T]) ID() int { return int(h.id) }

// Version reports the handle's version at the point it was obtained:
// every write bumps the version (§4.4).
func (h Handle[T]) Version() int { return h.version }

// resourceState is the graph's bookkeeping for one virtual resource,
// shared by every handle version that refers to it. Per-frame touch
// history used for barrier synthesis lives in synthesizeBarriers'
// local state, not here: resourceState only holds what survives
// across the whole graph's lifetime.
type resourceState struct {
	kind resourceKind
	name string

	imageDesc  ImageDesc
	bufferDesc BufferDesc

	image  driver.Image
	buffer driver.Buffer
	view   driver.ImageView // whole-resource view, for barrier synthesis's IView (images only)
}
