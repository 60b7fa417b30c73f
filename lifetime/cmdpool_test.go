package lifetime_test

import (
	"testing"
	"time"

	"github.com/gan74/yave/lifetime"
)

func TestCmdBufferPoolAllocateReusesSignalledBuffer(t *testing.T) {
	var fences lifetime.Fences
	gpu := &fakeGPU{}
	pool := lifetime.NewCmdBufferPool(gpu, &fences)

	l1, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	fence := fences.Next()
	l1.Release(fence)

	if gpu.n != 1 {
		t.Fatalf("gpu.n = %d, want 1 before any reuse", gpu.n)
	}

	// not yet signalled: a second Allocate must create a new buffer
	// rather than block or reuse l1's.
	l2, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if gpu.n != 2 {
		t.Fatalf("gpu.n = %d, want 2 while first buffer's fence is unsignalled", gpu.n)
	}
	l2.Release(lifetime.InvalidFence)

	fences.Signal(fence)
	l3, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if gpu.n != 2 {
		t.Fatalf("gpu.n = %d, want 2: a signalled buffer should have been reused", gpu.n)
	}
	_ = l3
}

func TestCmdBufferPoolDestroyPanicsOnUnsignalledFence(t *testing.T) {
	var fences lifetime.Fences
	gpu := &fakeGPU{}
	pool := lifetime.NewCmdBufferPool(gpu, &fences)

	l, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	l.Release(fences.Next())

	defer func() {
		if recover() == nil {
			t.Error("Destroy did not panic on a buffer whose fence never signalled")
		}
	}()
	pool.Destroy(time.Millisecond, 10*time.Millisecond)
}
