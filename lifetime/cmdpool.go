package lifetime

import (
	"fmt"
	"sync"
	"time"

	"github.com/gan74/yave/driver"
)

// pooledBuffer is one command buffer owned by a CmdBufferPool,
// together with the fence of the last batch it was submitted under.
// A zero fence means the buffer has never been submitted and is free
// to use without any wait.
type pooledBuffer struct {
	cb    driver.CmdBuffer
	fence Fence
}

// CmdBufferPool recycles command buffers for one queue family. It is
// not bound to a thread: every goroutine that uses it shares it through
// its internal mutex. Allocation never blocks on the GPU: it reuses any
// buffer whose last fence has signalled, and only allocates a new one
// when none are free.
type CmdBufferPool struct {
	gpu    driver.GPU
	fences *Fences

	mu     sync.Mutex
	owned  []*pooledBuffer
	free   []*pooledBuffer
}

// NewCmdBufferPool creates a pool that allocates command buffers from
// gpu and recycles them according to fences.
func NewCmdBufferPool(gpu driver.GPU, fences *Fences) *CmdBufferPool {
	return &CmdBufferPool{gpu: gpu, fences: fences}
}

// Leased is a command buffer checked out of a pool. Release must be
// called exactly once, with the fence the buffer was stamped with if
// it was submitted, or InvalidFence if it was reset without ever being
// committed.
type Leased struct {
	pool *CmdBufferPool
	buf  *pooledBuffer
}

// InvalidFence marks a leased buffer that was never submitted to the
// GPU, so releasing it requires no wait.
const InvalidFence Fence = 0

// CmdBuffer returns the underlying command buffer to record into.
func (l Leased) CmdBuffer() driver.CmdBuffer { return l.buf.cb }

// Allocate returns a ready-to-record command buffer: one whose
// previous submission has signalled if any are free, otherwise a
// freshly created one. This never blocks on the GPU.
func (p *CmdBufferPool) Allocate() (Leased, error) {
	p.mu.Lock()
	for i, b := range p.free {
		if b.fence == InvalidFence || p.fences.Done(b.fence) {
			p.free = append(p.free[:i], p.free[i+1:]...)
			p.mu.Unlock()
			if err := b.cb.Reset(); err != nil {
				return Leased{}, err
			}
			return Leased{pool: p, buf: b}, nil
		}
	}
	p.mu.Unlock()

	cb, err := p.gpu.NewCmdBuffer()
	if err != nil {
		return Leased{}, err
	}
	b := &pooledBuffer{cb: cb}
	p.mu.Lock()
	p.owned = append(p.owned, b)
	p.mu.Unlock()
	return Leased{pool: p, buf: b}, nil
}

// Release returns a leased buffer to its pool, stamping it with the
// fence of the batch it was just submitted under (or InvalidFence if
// it was never submitted). The buffer becomes eligible for reuse once
// that fence signals.
func (l Leased) Release(fence Fence) {
	l.buf.fence = fence
	l.pool.mu.Lock()
	l.pool.free = append(l.pool.free, l.buf)
	l.pool.mu.Unlock()
}

// Destroy waits for every buffer the pool has ever allocated to finish
// any in-flight work, then destroys them all. poll controls how often
// the wait re-checks fence state; timeout bounds how long Destroy
// waits before concluding a fence will never signal.
//
// A fence that never signals within timeout means the device is
// wedged or a queue was abandoned with outstanding work: that is a
// programming error this package cannot recover from, so Destroy
// panics rather than leaking GPU memory silently.
func (p *CmdBufferPool) Destroy(poll, timeout time.Duration) {
	p.mu.Lock()
	owned := p.owned
	p.owned = nil
	p.free = nil
	p.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for _, b := range owned {
		for b.fence != InvalidFence && !p.fences.Done(b.fence) {
			if time.Now().After(deadline) {
				panic(fmt.Sprintf("lifetime: command buffer pool destroyed with fence %d still unsignalled after %s", b.fence, timeout))
			}
			time.Sleep(poll)
		}
	}
	for _, b := range owned {
		b.cb.Destroy()
	}
}
