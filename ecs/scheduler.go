package ecs

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// workerPool implements the §5 concurrency model: a fixed pool of
// workers sized max(4, hardware_threads-1), sharing a single
// "scheduled task" slot guarded by a mutex and condition variable.
// Workers wait for a task, then cooperatively drain it by fetching
// chunks through an atomic counter; the submitter also works on the
// task and returns once every chunk has completed.
type workerPool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	task     *parallelTask
	quit     bool
	nworkers int
}

// parallelTask is the single shared unit of work a workerPool runs at
// a time: nchunk independent chunks of fn, fetched via an atomic
// counter and tracked to completion by another.
type parallelTask struct {
	fn       func(chunk int)
	nchunk   int32
	next     atomic.Int32
	done     atomic.Int32
	finished chan struct{}
}

func newWorkerPool() *workerPool {
	n := runtime.GOMAXPROCS(-1) - 1
	if n < 4 {
		n = 4
	}
	p := &workerPool{nworkers: n}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < n; i++ {
		go p.workerLoop()
	}
	return p
}

func (p *workerPool) workerLoop() {
	for {
		p.mu.Lock()
		for p.task == nil && !p.quit {
			p.cond.Wait()
		}
		if p.quit {
			p.mu.Unlock()
			return
		}
		t := p.task
		p.mu.Unlock()
		t.drain()
	}
}

// drain fetches and runs chunks until none remain. The caller (worker
// or submitter) participates the same way, so the submitter itself
// does a share of the work instead of idling.
func (t *parallelTask) drain() {
	for {
		i := t.next.Add(1) - 1
		if i >= t.nchunk {
			return
		}
		t.fn(int(i))
		if t.done.Add(1) == t.nchunk {
			close(t.finished)
		}
	}
}

// runParallel submits nchunk independent invocations of fn and blocks
// until all of them complete. It is safe to call with nchunk == 0.
func (p *workerPool) runParallel(nchunk int, fn func(chunk int)) {
	if nchunk <= 0 {
		return
	}
	t := &parallelTask{fn: fn, nchunk: int32(nchunk), finished: make(chan struct{})}
	p.mu.Lock()
	p.task = t
	p.mu.Unlock()
	p.cond.Broadcast()
	t.drain()
	<-t.finished
	p.mu.Lock()
	p.task = nil
	p.mu.Unlock()
}

// stop releases every worker goroutine. It must only be called once,
// when the World (and thus the scheduler) is being torn down.
func (p *workerPool) stop() {
	p.mu.Lock()
	p.quit = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// batchByConflict partitions systems into ordered batches such that,
// within a batch, no two systems declare overlapping writes, nor does
// one write a container another reads or writes (§5: "writers to the
// same component container run serially"). Batches themselves must
// run in order relative to each other for determinism, but the
// systems within a batch may run in parallel.
func batchByConflict(systems []registeredSystem) [][]registeredSystem {
	remaining := append([]registeredSystem(nil), systems...)
	var batches [][]registeredSystem
	for len(remaining) > 0 {
		var batch []registeredSystem
		var writes, touched []int // component type indices
		var next []registeredSystem
		for _, s := range remaining {
			if conflicts(s, writes, touched) {
				next = append(next, s)
				continue
			}
			batch = append(batch, s)
			for _, w := range s.writes {
				writes = append(writes, w.Index())
				touched = append(touched, w.Index())
			}
			for _, r := range s.reads {
				touched = append(touched, r.Index())
			}
		}
		batches = append(batches, batch)
		remaining = next
	}
	return batches
}

func conflicts(s registeredSystem, writes, touched []int) bool {
	for _, w := range s.writes {
		if containsInt(touched, w.Index()) {
			return true
		}
	}
	for _, r := range s.reads {
		if containsInt(writes, r.Index()) {
			return true
		}
	}
	return false
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
