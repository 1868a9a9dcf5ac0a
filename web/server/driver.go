// Package server hosts the live presenter: a progressive render loop
// driving one of the two Integrator variants, and a websocket endpoint
// streaming its front framebuffer to connected browsers.
package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kellandavis/lumenmlt/pkg/config"
	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"

	"github.com/kellandavis/lumenmlt/log"
)

var driverLog = log.New("web-driver")

// ProgressiveDriver owns the double-buffered presentation loop: render
// into the back buffer, swap, double the sample step each pass up to
// config.MaxSampleStep, and stop accumulating once the integrator reports
// config.MaxSamplesPerPixel samples per pixel. A camera move calls Reset,
// which stops the integrator, waits for the in-flight pass to return,
// resets it, and restarts the loop from a step size of one.
type ProgressiveDriver struct {
	mu         sync.Mutex
	sc         *scene.Scene
	integrator renderer.Integrator
	pool       *renderer.ThreadPool
	buffers    *renderer.DoubleBuffer

	resetting atomic.Bool
	restarted atomic.Bool
	running   atomic.Bool
}

// NewProgressiveDriver builds a driver over an already-constructed scene,
// integrator and thread pool.
func NewProgressiveDriver(sc *scene.Scene, integrator renderer.Integrator, pool *renderer.ThreadPool, width, height int) *ProgressiveDriver {
	return &ProgressiveDriver{
		sc:         sc,
		integrator: integrator,
		pool:       pool,
		buffers:    renderer.NewDoubleBuffer(width, height),
	}
}

// Run drives the progressive loop until stop is closed. It is meant to
// run in its own goroutine for the lifetime of the server.
func (d *ProgressiveDriver) Run(stop <-chan struct{}) {
	d.running.Store(true)
	defer d.running.Store(false)

	step := 1
	for {
		select {
		case <-stop:
			return
		default:
		}

		if d.resetting.Load() {
			time.Sleep(time.Millisecond)
			continue
		}

		if d.restarted.Swap(false) {
			step = 1
		}

		n := step
		if remaining := config.MaxSamplesPerPixel - int(d.integrator.NumSamplesPerPixel()); remaining < n {
			n = remaining
		}
		if n <= 0 {
			time.Sleep(time.Millisecond)
			continue
		}

		d.integrator.Accumulate(d.sc, n, d.pool)
		d.integrator.UpdateFrameBuffer(d.buffers.Back())
		d.buffers.Swap()

		if step < config.MaxSampleStep {
			step *= 2
		}
	}
}

// Front returns the buffer a websocket handler should encode and send.
func (d *ProgressiveDriver) Front() *renderer.ImageBuffer {
	return d.buffers.Front()
}

// Reset stops the integrator, waits for its current accumulate call to
// return, clears its state, and lets Run resume from a fresh step size.
// Called when an external move pushes a new camera onto the scene.
func (d *ProgressiveDriver) Reset() {
	d.resetting.Store(true)
	defer d.resetting.Store(false)

	d.integrator.Stop()
	d.pool.Wait()
	d.integrator.Reset()
	d.restarted.Store(true)
	driverLog.Notice("driver reset: camera moved, integrator restarted")
}
