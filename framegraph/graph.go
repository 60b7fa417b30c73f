package framegraph

import (
	"fmt"

	"github.com/gan74/yave/driver"
	"github.com/sirupsen/logrus"
)

// Graph owns one frame's worth of passes and the virtual resources
// they declare. It is built fresh every frame: call AddPass for each
// pass, then Compile once all passes are registered (§4.4).
type Graph struct {
	gpu driver.GPU

	resources []*resourceState
	passes    []*pass

	log *logrus.Entry
}

// New creates an empty graph bound to gpu, the device the compiled
// graph will instantiate transient resources on.
func New(gpu driver.GPU) *Graph {
	return &Graph{
		gpu: gpu,
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
}

// newResource registers a virtual resource and returns its handle
// identity. Called only from Builder.Create/CreateBuffer.
func (g *Graph) newResource(name string, kind resourceKind, imgDesc ImageDesc, bufDesc BufferDesc) handleID {
	id := handleID(len(g.resources))
	g.resources = append(g.resources, &resourceState{
		kind:       kind,
		name:       name,
		imageDesc:  imgDesc,
		bufferDesc: bufDesc,
	})
	return id
}

// AddPass registers a new pass of the given kind. setup is invoked
// immediately, recording the pass's resource accesses through the
// Builder it receives; record is stashed away and invoked later, once
// per frame, in the order Compile linearizes the graph into (§4.4:
// "The user constructs a graph by invoking add_pass(kind, name,
// setup, record)").
func (g *Graph) AddPass(kind PassKind, name string, setup func(b *Builder), record func(r *Recorder)) {
	p := &pass{
		name:   name,
		kind:   kind,
		index:  len(g.passes),
		record: record,
	}
	setup(&Builder{graph: g, pass: p})
	g.passes = append(g.passes, p)
}

// Compiled is the result of Compile: a linear pass order together
// with the barriers to emit immediately before each pass.
type Compiled struct {
	graph  *Graph
	order  []int
	before [][]driver.Transition
}

// Compile infers dependencies between passes from their declared
// resource accesses, linearizes them with Kahn's algorithm (ties
// broken by registration order), synthesizes the barriers required
// between consecutive touches of the same resource, and instantiates
// every virtual resource against the graph's device (§4.4 steps
// 1-4).
func (g *Graph) Compile() (*Compiled, error) {
	if err := g.checkUninitializedReads(); err != nil {
		return nil, err
	}
	g.inferDependencies()
	order, err := g.linearize()
	if err != nil {
		g.log.WithError(err).Error("frame graph compile failed")
		return nil, err
	}
	if err := g.instantiateResources(); err != nil {
		return nil, err
	}
	g.log.Debugf("compiled %d passes over %d resources", len(order), len(g.resources))
	before := g.synthesizeBarriers(order)
	if err := g.validateAttachments(); err != nil {
		return nil, err
	}
	return &Compiled{graph: g, order: order, before: before}, nil
}

// checkUninitializedReads rejects any pass that reads a handle before
// it, or any earlier pass, has written it.
func (g *Graph) checkUninitializedReads() error {
	written := make([]bool, len(g.resources))
	for _, p := range g.passes {
		for _, a := range p.accesses {
			if a.op == opRead && !written[a.id] {
				return fmt.Errorf("%w: pass %q reads %q before any write",
					ErrUninitializedRead, p.name, g.resources[a.id].name)
			}
			if a.op == opWrite {
				written[a.id] = true
			}
		}
	}
	return nil
}

// inferDependencies walks passes in registration order, and for every
// access a pass makes against a resource, makes that pass depend on
// whichever earlier pass last touched the same resource (§4.4 step
// 2). This is intentionally coarse: any two touches of the same
// resource, read or write, are ordered relative to each other, since
// even read-after-read may need a barrier on a stage change.
func (g *Graph) inferDependencies() {
	lastToucher := make([]int, len(g.resources))
	for i := range lastToucher {
		lastToucher[i] = -1
	}
	for _, p := range g.passes {
		seen := make(map[int]bool)
		for _, a := range p.accesses {
			if q := lastToucher[a.id]; q != -1 && q != p.index && !seen[q] {
				p.deps = append(p.deps, q)
				seen[q] = true
			}
			lastToucher[a.id] = p.index
		}
	}
}

// linearize runs Kahn's algorithm over the dependency edges inferDependencies
// filled in, breaking ties by ascending pass index so that two independent
// passes retain their registration order.
func (g *Graph) linearize() ([]int, error) {
	n := len(g.passes)
	indegree := make([]int, n)
	children := make([][]int, n)
	for _, p := range g.passes {
		for _, d := range p.deps {
			children[d] = append(children[d], p.index)
			indegree[p.index]++
		}
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		// smallest index first: registration order among ties.
		min := 0
		for i, idx := range ready {
			if idx < ready[min] {
				min = i
			}
		}
		idx := ready[min]
		ready = append(ready[:min], ready[min+1:]...)
		order = append(order, idx)
		for _, c := range children[idx] {
			indegree[c]--
			if indegree[c] == 0 {
				ready = append(ready, c)
			}
		}
	}

	if len(order) != n {
		return nil, ErrCyclicGraph
	}
	return order, nil
}

// instantiateResources allocates the concrete driver.Image/driver.Buffer
// backing every virtual resource declared this frame (§4.4 step 1).
func (g *Graph) instantiateResources() error {
	for _, r := range g.resources {
		switch r.kind {
		case kindImage:
			d := r.imageDesc
			layers, levels, samples := d.Layers, d.Levels, d.Samples
			if layers == 0 {
				layers = 1
			}
			if levels == 0 {
				levels = 1
			}
			if samples == 0 {
				samples = 1
			}
			img, err := g.gpu.NewImage(d.Format, d.Size, layers, levels, samples, d.Usage)
			if err != nil {
				return fmt.Errorf("framegraph: instantiate %q: %w", r.name, err)
			}
			r.image = img
			view, err := img.NewView(driver.IView2D, 0, layers, 0, levels)
			if err != nil {
				return fmt.Errorf("framegraph: view %q: %w", r.name, err)
			}
			r.view = view
		case kindBuffer:
			buf, err := g.gpu.NewBuffer(r.bufferDesc.Size, r.bufferDesc.Visible, r.bufferDesc.Usage)
			if err != nil {
				return fmt.Errorf("framegraph: instantiate %q: %w", r.name, err)
			}
			r.buffer = buf
		}
	}
	return nil
}

// synthesizeBarriers walks the linear order and, for every access a
// pass makes, emits a barrier against that resource's previously
// recorded touch (§4.4 step 4). The first touch of a resource
// transitions it out of its Undefined/Common initial state.
func (g *Graph) synthesizeBarriers(order []int) [][]driver.Transition {
	prevTouch := make([]touch, len(g.resources))
	for i := range prevTouch {
		prevTouch[i] = touch{op: opUndefined, stage: BeginOfPipe}
	}

	before := make([][]driver.Transition, len(order))
	for pos, idx := range order {
		p := g.passes[idx]
		var barriers []driver.Transition
		seen := make(map[handleID]bool)
		for _, a := range p.accesses {
			if seen[a.id] {
				continue
			}
			seen[a.id] = true
			next := touch{op: a.op, stage: a.stage, usage: a.usage}
			bar := synthesizeBarrier(prevTouch[a.id], next)
			if r := g.resources[a.id]; r.kind == kindImage {
				bar.IView = r.view
			}
			barriers = append(barriers, bar)
			prevTouch[a.id] = next
		}
		before[pos] = barriers
	}
	return before
}

// validateAttachments rejects a Graphics pass whose color/depth
// attachments don't share one width/height (§4.4).
func (g *Graph) validateAttachments() error {
	for _, p := range g.passes {
		if p.kind != Graphics {
			continue
		}
		var w, h int
		have := false
		check := func(id handleID) error {
			size := g.resources[id].imageDesc.Size
			if !have {
				w, h, have = size.Width, size.Height, true
				return nil
			}
			if size.Width != w || size.Height != h {
				return ErrMismatchedAttachmentSize
			}
			return nil
		}
		for _, a := range p.colorAttachments {
			if err := check(a.id); err != nil {
				return err
			}
		}
		if p.depthAttachment != nil {
			if err := check(p.depthAttachment.id); err != nil {
				return err
			}
		}
	}
	return nil
}
