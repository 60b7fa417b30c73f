package lifetime

import (
	"sync"
	"time"

	"github.com/gan74/yave/driver"
)

// Arena is the process-wide facade over fence tracking, deferred
// destruction and command-buffer recycling: the three pieces of state
// a renderer needs to stay ahead of the GPU without ever blocking a
// submitting thread.
//
// Command-buffer pools are keyed by queue family only, not by thread:
// goroutines have no stable identity to key a per-thread pool on, so
// callers that need the non-blocking allocate/release contract from
// multiple goroutines share one pool per family, synchronized
// internally.
type Arena struct {
	gpu    driver.GPU
	fences Fences
	queue  *Queue

	mu    sync.Mutex
	pools map[int]*CmdBufferPool
}

// NewArena creates an Arena backed by gpu and starts its collector
// goroutine, polling every interval.
func NewArena(gpu driver.GPU, collectInterval time.Duration) *Arena {
	a := &Arena{
		gpu:   gpu,
		pools: make(map[int]*CmdBufferPool),
	}
	a.queue = New(&a.fences)
	a.queue.StartCollector(collectInterval)
	return a
}

// Fences exposes the arena's fence tracker, e.g. for a submission path
// to stamp its command buffer.
func (a *Arena) Fences() *Fences { return &a.fences }

// DestroyLater defers destruction of handle until every command
// buffer submitted so far has completed (§4.3).
func (a *Arena) DestroyLater(handle driver.Destroyer) {
	a.queue.DestroyLater(a.fences.LastIssued(), handle)
}

// Pool returns the command-buffer pool for queueFamily, creating it on
// first use.
func (a *Arena) Pool(queueFamily int) *CmdBufferPool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pools[queueFamily]
	if !ok {
		p = NewCmdBufferPool(a.gpu, &a.fences)
		a.pools[queueFamily] = p
	}
	return p
}

// Shutdown stops the collector, drains every deferred handle
// synchronously and destroys every command-buffer pool. Callers must
// have already waited for all outstanding GPU work (e.g. via the
// driver's Commit completion channel) before calling Shutdown: it does
// not itself wait on any fence belonging to work it does not own.
func (a *Arena) Shutdown(poolDestroyPoll, poolDestroyTimeout time.Duration) {
	a.queue.Shutdown()

	a.mu.Lock()
	pools := a.pools
	a.pools = nil
	a.mu.Unlock()

	for _, p := range pools {
		p.Destroy(poolDestroyPoll, poolDestroyTimeout)
	}
}
