package render

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
)

// Sampler returns a color for a texture coordinate. Coordinates outside
// [0, 1] are resolved by the sampler's wrap mode.
type Sampler interface {
	Sample(u, v float64) Color
}

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterBilinear FilterMode = iota // Bilinear interpolation (smooth)
	FilterNearest                    // Nearest-neighbor (pixelated)
)

// Texture is an RGBA image sampled with V=0 at the bottom row.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates a transparent texture that repeats and filters
// bilinearly.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// TextureFromImage copies img into a new texture.
func TextureFromImage(img image.Image) *Texture {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	tex := NewTexture(b.Dx(), b.Dy())
	for y := range tex.Height {
		row := rgba.Pix[y*rgba.Stride:]
		for x := range tex.Width {
			p := row[x*4 : x*4+4 : x*4+4]
			tex.Pixels[y*tex.Width+x] = Color{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
	}
	return tex
}

// NewCheckerTexture creates a checkerboard of size x size pixel squares.
func NewCheckerTexture(width, height, size int, c1, c2 Color) *Texture {
	size = max(size, 1)
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			c := c2
			if (x/size+y/size)%2 == 0 {
				c = c1
			}
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y), transparent black out of bounds.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample implements Sampler.
func (t *Texture) Sample(u, v float64) Color {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return ColorWhite
	}
	u = wrapCoord(u, t.WrapU)
	v = 1 - wrapCoord(v, t.WrapV) // image row 0 is the top

	if t.FilterMode == FilterNearest {
		x := min(int(u*float64(t.Width)), t.Width-1)
		y := min(int(v*float64(t.Height)), t.Height-1)
		return t.GetPixel(x, y)
	}
	return t.sampleBilinear(u, v)
}

func wrapCoord(c float64, mode WrapMode) float64 {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}

// sampleBilinear blends the four texels around (u, v), treating texel
// centers as sample points.
func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	x1 := wrapTexel(x0+1, t.Width, t.WrapU)
	y1 := wrapTexel(y0+1, t.Height, t.WrapV)
	x0 = wrapTexel(x0, t.Width, t.WrapU)
	y0 = wrapTexel(y0, t.Height, t.WrapV)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapTexel(x, size int, mode WrapMode) int {
	if mode == WrapClamp {
		return min(max(x, 0), size-1)
	}
	x %= size
	if x < 0 {
		x += size
	}
	return x
}

func lerpColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 { return toByte(float64(x) + (float64(y)-float64(x))*t) }
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// MultiplyColor scales the color channels by intensity, rounding and
// clamping each to [0, 255]. Alpha is kept.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: toByte(float64(c.R) * intensity),
		G: toByte(float64(c.G) * intensity),
		B: toByte(float64(c.B) * intensity),
		A: c.A,
	}
}
