package lifetime

import (
	"sync"
	"time"

	"github.com/gan74/yave/driver"
	"github.com/sirupsen/logrus"
)

// entry is one handle waiting for its stamped fence to signal before
// it can be destroyed.
type entry struct {
	fence  Fence
	handle driver.Destroyer
}

// Queue is the global FIFO of handles awaiting destruction, plus the
// background collector that drains it. One Queue is shared by every
// resource kind (image, buffer, view, framebuffer, pipeline,
// descriptor heap/table, shader code, sampler): driver.Destroyer
// already erases the kind distinction the handle came from.
type Queue struct {
	fences *Fences

	mu      sync.Mutex
	entries []entry

	shuttingDown bool

	stop   chan struct{}
	done   chan struct{}
	log    *logrus.Entry
}

// New creates a Queue whose destroy_later calls are stamped against
// fences.
func New(fences *Fences) *Queue {
	return &Queue{
		fences: fences,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
}

// DestroyLater enqueues handle for destruction once fence has
// signalled. It never blocks on the GPU and is safe to call from any
// goroutine.
//
// If called after Shutdown has begun, handle is destroyed inline
// instead: by then nothing will ever drain the queue again, so
// deferring would leak it.
func (q *Queue) DestroyLater(fence Fence, handle driver.Destroyer) {
	q.mu.Lock()
	if q.shuttingDown {
		q.mu.Unlock()
		q.log.Warn("destroy_later called after shutdown, destroying inline")
		handle.Destroy()
		return
	}
	q.entries = append(q.entries, entry{fence: fence, handle: handle})
	q.mu.Unlock()
}

// Collect pops and destroys every handle at the head of the queue
// whose fence has signalled. It returns the number of handles
// destroyed.
func (q *Queue) Collect() int {
	q.mu.Lock()
	n := 0
	for n < len(q.entries) && q.fences.Done(q.entries[n].fence) {
		n++
	}
	ready := q.entries[:n]
	q.entries = append(q.entries[:0:0], q.entries[n:]...)
	q.mu.Unlock()

	for _, e := range ready {
		e.handle.Destroy()
	}
	return len(ready)
}

// StartCollector spawns the background goroutine that calls Collect
// every interval, until Shutdown is called.
func (q *Queue) StartCollector(interval time.Duration) {
	q.stop = make(chan struct{})
	q.done = make(chan struct{})
	go func() {
		defer close(q.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				q.Collect()
			case <-q.stop:
				return
			}
		}
	}()
}

// Shutdown stops the collector goroutine, marks the queue as shutting
// down (so any further DestroyLater call destroys inline instead of
// leaking), and drains every remaining entry synchronously regardless
// of fence state. Callers must have already waited for all
// outstanding GPU work before calling this, since Shutdown does not
// wait on any fence itself.
func (q *Queue) Shutdown() {
	if q.stop != nil {
		close(q.stop)
		<-q.done
	}

	q.mu.Lock()
	q.shuttingDown = true
	remaining := q.entries
	q.entries = nil
	q.mu.Unlock()

	for _, e := range remaining {
		e.handle.Destroy()
	}
}

// Len reports the number of handles currently waiting on a fence, for
// diagnostics and tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
