package renderer

import (
	"sync/atomic"

	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// Integrator is the interface the driver uses to run either the path
// tracer or the MLT chain driver without knowing which.
type Integrator interface {
	Accumulate(sc *scene.Scene, numSamples int, pool *ThreadPool)
	UpdateFrameBuffer(dst *ImageBuffer)
	NumSamplesPerPixel() float64
	Reset()
	Stop()
	IsStopping() bool
}

// StopFlag is an atomically-observed cancellation signal shared between
// the driver and every worker task an accumulate() call spawns.
type StopFlag struct {
	v atomic.Bool
}

// Set raises the flag.
func (s *StopFlag) Set() { s.v.Store(true) }

// Clear lowers the flag, ready for the next accumulate.
func (s *StopFlag) Clear() { s.v.Store(false) }

// IsSet reports the flag's current value.
func (s *StopFlag) IsSet() bool { return s.v.Load() }

// DoubleBuffer holds a front and back ImageBuffer of identical size.
// Render into Back(), then Swap() to publish it; readers of Front()
// never see a half-swapped buffer because the swap is a single pointer
// store, not a pixel-by-pixel copy.
type DoubleBuffer struct {
	front atomic.Pointer[ImageBuffer]
	back  *ImageBuffer
}

// NewDoubleBuffer allocates both buffers at width x height.
func NewDoubleBuffer(width, height int) *DoubleBuffer {
	db := &DoubleBuffer{back: NewImageBuffer(width, height)}
	db.front.Store(NewImageBuffer(width, height))
	return db
}

// Back returns the buffer workers should render into.
func (db *DoubleBuffer) Back() *ImageBuffer { return db.back }

// Front returns the buffer a presenter should read. Safe to call
// concurrently with Swap; it returns either the old or the new buffer,
// never a torn one.
func (db *DoubleBuffer) Front() *ImageBuffer { return db.front.Load() }

// Swap publishes Back() as the new Front() and makes the previous front
// buffer the new Back(), to be reused for the next render.
func (db *DoubleBuffer) Swap() {
	prevFront := db.front.Swap(db.back)
	db.back = prevFront
}
