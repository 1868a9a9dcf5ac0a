package renderer

import "math"

// ImageBuffer is a 2D float HDR image. Integrators accumulate radiance
// into one of these and expose it through updateFrameBuffer.
type ImageBuffer struct {
	Width, Height int
	Pixels        []float32 // RGB-interleaved, len == Width*Height*3
}

// NewImageBuffer allocates a zeroed width x height RGB buffer.
func NewImageBuffer(width, height int) *ImageBuffer {
	return &ImageBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]float32, width*height*3),
	}
}

func (img *ImageBuffer) index(x, y int) int {
	return (y*img.Width + x) * 3
}

// At returns the RGB triple at (x, y).
func (img *ImageBuffer) At(x, y int) (r, g, b float32) {
	i := img.index(x, y)
	return img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2]
}

// Set writes the RGB triple at (x, y).
func (img *ImageBuffer) Set(x, y int, r, g, b float32) {
	i := img.index(x, y)
	img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2] = r, g, b
}

// Add accumulates an RGB triple into (x, y).
func (img *ImageBuffer) Add(x, y int, r, g, b float32) {
	i := img.index(x, y)
	img.Pixels[i] += r
	img.Pixels[i+1] += g
	img.Pixels[i+2] += b
}

// Clear zeroes every pixel.
func (img *ImageBuffer) Clear() {
	for i := range img.Pixels {
		img.Pixels[i] = 0
	}
}

const gammaExponent = 1.0 / 2.2

// ApplyCorrection clamps x to [0,1] and applies a 2.2 gamma curve, the
// tonemap every integrator runs before handing pixels to a presenter.
func ApplyCorrection(x float32) float32 {
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	return float32(math.Pow(float64(x), gammaExponent))
}

// CorrectInto writes applyCorrection(src/divisor) into dst, both assumed
// to be same-sized buffers. divisor <= 0 is treated as 1 (avoids a NaN
// framebuffer before the first sample completes).
func CorrectInto(dst, src *ImageBuffer, divisor float32) {
	if divisor <= 0 {
		divisor = 1
	}
	for i, v := range src.Pixels {
		dst.Pixels[i] = ApplyCorrection(v / divisor)
	}
}
