package renderer

import (
	"sync/atomic"
	"testing"
)

func TestThreadPoolWaitFencesAllWork(t *testing.T) {
	pool := NewThreadPool(4)
	defer pool.Stop()

	var counter int64
	const n = 500
	for i := 0; i < n; i++ {
		pool.AssignWork(func() {
			atomic.AddInt64(&counter, 1)
		})
	}
	pool.Wait()

	if got := atomic.LoadInt64(&counter); got != n {
		t.Fatalf("expected all %d tasks to complete before Wait returns, got %d", n, got)
	}
}

func TestThreadPoolSupportsRepeatedFences(t *testing.T) {
	pool := NewThreadPool(2)
	defer pool.Stop()

	for round := 0; round < 3; round++ {
		var counter int64
		for i := 0; i < 50; i++ {
			pool.AssignWork(func() { atomic.AddInt64(&counter, 1) })
		}
		pool.Wait()
		if counter != 50 {
			t.Fatalf("round %d: expected 50, got %d", round, counter)
		}
	}
}

func TestThreadPoolSaturationDrainsActiveCounter(t *testing.T) {
	pool := NewThreadPool(8)
	defer pool.Stop()

	var executions int64
	const n = 10000
	for i := 0; i < n; i++ {
		pool.AssignWork(func() {
			atomic.AddInt64(&executions, 1)
		})
	}
	pool.Wait()

	if got := atomic.LoadInt64(&executions); got != n {
		t.Fatalf("expected each of %d tasks to run exactly once, got %d executions", n, got)
	}

	pool.mu.Lock()
	active := pool.numActiveTasks
	pool.mu.Unlock()
	if active != 0 {
		t.Fatalf("expected active-task counter to return to 0 after Wait, got %d", active)
	}
}

func TestImageBufferCorrectInto(t *testing.T) {
	src := NewImageBuffer(2, 2)
	src.Set(0, 0, 4, 4, 4) // /divisor=4 -> 1.0 pre-gamma, clamps at ceiling
	dst := NewImageBuffer(2, 2)

	CorrectInto(dst, src, 4)

	r, g, b := dst.At(0, 0)
	if r != 1 || g != 1 || b != 1 {
		t.Fatalf("expected fully saturated pixel, got (%v,%v,%v)", r, g, b)
	}
	r, _, _ = dst.At(1, 1)
	if r != 0 {
		t.Fatalf("expected untouched pixel to stay zero, got %v", r)
	}
}

func TestApplyCorrectionClampsNegative(t *testing.T) {
	if got := ApplyCorrection(-1); got != 0 {
		t.Fatalf("expected negative input clamped to 0, got %v", got)
	}
}

func TestDoubleBufferSwapPublishesBack(t *testing.T) {
	db := NewDoubleBuffer(4, 4)
	db.Back().Set(0, 0, 1, 2, 3)
	db.Swap()

	r, g, b := db.Front().At(0, 0)
	if r != 1 || g != 2 || b != 3 {
		t.Fatalf("expected swap to publish back buffer contents, got (%v,%v,%v)", r, g, b)
	}
}

func TestStopFlagObservableAcrossGoroutines(t *testing.T) {
	var sf StopFlag
	done := make(chan struct{})
	go func() {
		for !sf.IsSet() {
		}
		close(done)
	}()
	sf.Set()
	<-done
}
