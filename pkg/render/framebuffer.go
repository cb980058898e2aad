// Package render rasterizes camera-space polygon meshes into a CPU
// framebuffer with flat, Gouraud or Phong shading and a depth buffer.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidFramebuffer is returned for non-positive dimensions or an
// unsupported channel count.
var ErrInvalidFramebuffer = errors.New("invalid framebuffer")

// farDepth is the depth buffer sentinel; any finite depth is nearer.
const farDepth = math.MaxFloat64

// Framebuffer is a row-major 8-bit color buffer with 1, 3 or 4 channels and
// an optional depth buffer. Smaller depth values are nearer the camera.
type Framebuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
	Depth    []float64 // nil when depth testing is disabled
}

// NewFramebuffer allocates a framebuffer cleared to black. With depth set,
// every depth sample starts at the far sentinel.
func NewFramebuffer(width, height, channels int, depth bool) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidFramebuffer, width, height)
	}
	switch channels {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFramebuffer, channels)
	}

	fb := &Framebuffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
	if channels == 4 {
		fb.Clear(ColorBlack)
	}
	if depth {
		fb.Depth = make([]float64, width*height)
		fb.ClearDepth()
	}
	return fb, nil
}

// HasDepth reports whether the framebuffer carries a depth buffer.
func (fb *Framebuffer) HasDepth() bool {
	return fb.Depth != nil
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// Set writes c at (x, y). Out-of-bounds writes are dropped. A single
// channel buffer stores the red component.
func (fb *Framebuffer) Set(x, y int, c Color) {
	if !fb.inBounds(x, y) {
		return
	}
	i := (y*fb.Width + x) * fb.Channels
	switch fb.Channels {
	case 1:
		fb.Pix[i] = c.R
	case 3:
		fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2] = c.R, c.G, c.B
	default:
		fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Get returns the color at (x, y). Gray buffers expand to R=G=B and
// buffers without alpha report 255. Out-of-bounds reads return opaque black.
func (fb *Framebuffer) Get(x, y int) Color {
	if !fb.inBounds(x, y) {
		return ColorBlack
	}
	i := (y*fb.Width + x) * fb.Channels
	switch fb.Channels {
	case 1:
		v := fb.Pix[i]
		return Color{R: v, G: v, B: v, A: 255}
	case 3:
		return Color{R: fb.Pix[i], G: fb.Pix[i+1], B: fb.Pix[i+2], A: 255}
	default:
		return Color{R: fb.Pix[i], G: fb.Pix[i+1], B: fb.Pix[i+2], A: fb.Pix[i+3]}
	}
}

// Clear fills every pixel with c.
func (fb *Framebuffer) Clear(c Color) {
	fb.Set(0, 0, c)
	fillDoubling(fb.Pix, fb.Channels)
}

// ClearDepth resets every depth sample to the far sentinel.
func (fb *Framebuffer) ClearDepth() {
	if len(fb.Depth) == 0 {
		return
	}
	fb.Depth[0] = farDepth
	fillDoubling(fb.Depth, 1)
}

// fillDoubling replicates the first n elements across s.
func fillDoubling[T any](s []T, n int) {
	for i := n; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

// DepthAt returns the stored depth, or the far sentinel when out of
// bounds or when depth is disabled.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if fb.Depth == nil || !fb.inBounds(x, y) {
		return farDepth
	}
	return fb.Depth[y*fb.Width+x]
}

// TestAndSetDepth records z and returns true when z is strictly nearer
// than the stored depth. Without a depth buffer every test passes; with
// one, out-of-bounds tests fail.
func (fb *Framebuffer) TestAndSetDepth(x, y int, z float64) bool {
	if fb.Depth == nil {
		return true
	}
	if !fb.inBounds(x, y) {
		return false
	}
	i := y*fb.Width + x
	if z < fb.Depth[i] {
		fb.Depth[i] = z
		return true
	}
	return false
}

// ToImage copies the color buffer into an *image.Gray, *image.RGBA or
// *image.NRGBA depending on the channel count.
func (fb *Framebuffer) ToImage() image.Image {
	rect := image.Rect(0, 0, fb.Width, fb.Height)
	switch fb.Channels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, fb.Pix)
		return img
	case 3:
		img := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(fb.Pix); i, j = i+3, j+4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], 255
		}
		return img
	default:
		img := image.NewNRGBA(rect)
		copy(img.Pix, fb.Pix)
		return img
	}
}
