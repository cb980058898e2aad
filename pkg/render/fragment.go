package render

import (
	"math"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// Interpolated per-vertex attributes, stored flat so every attribute goes
// through the same interpolation code.
const (
	attrIntensity = iota
	attrNX
	attrNY
	attrNZ
	attrPX
	attrPY
	attrPZ
	attrU
	attrV
	attrR
	attrG
	attrB
	numAttrs
)

type attrs [numAttrs]float64

// rasterVertex is a polygon vertex in pixel space.
type rasterVertex struct {
	X, Y  float64
	Depth float64 // distance along the view axis, smaller is nearer
	W     float64 // 1/Depth when perspective correcting, otherwise 1
	Attr  attrs
}

func (v *rasterVertex) setNormal(n math3d.Vec3) {
	v.Attr[attrNX], v.Attr[attrNY], v.Attr[attrNZ] = n.X, n.Y, n.Z
}

func (v *rasterVertex) setPosition(p math3d.Vec3) {
	v.Attr[attrPX], v.Attr[attrPY], v.Attr[attrPZ] = p.X, p.Y, p.Z
}

func (v *rasterVertex) setColor(c Color) {
	v.Attr[attrR], v.Attr[attrG], v.Attr[attrB] = float64(c.R), float64(c.G), float64(c.B)
}

// perspectiveT maps a screen-space parameter t between a and b to the
// parameter that interpolates attributes linearly in camera space.
func perspectiveT(t, wa, wb float64) float64 {
	if wa == wb {
		return t
	}
	den := (1-t)*wa + t*wb
	if den <= 0 {
		return t
	}
	return t * wb / den
}

// lerpVertex interpolates between a and b at screen-space parameter t.
// Attributes and depth take the perspective-corrected parameter, so equal
// endpoint values come through unchanged.
func lerpVertex(a, b *rasterVertex, t float64) rasterVertex {
	tp := perspectiveT(t, a.W, b.W)
	out := rasterVertex{
		X:     a.X + (b.X-a.X)*t,
		Y:     a.Y + (b.Y-a.Y)*t,
		Depth: a.Depth + (b.Depth-a.Depth)*tp,
		W:     a.W + (b.W-a.W)*t,
	}
	for k := range out.Attr {
		out.Attr[k] = a.Attr[k] + (b.Attr[k]-a.Attr[k])*tp
	}
	return out
}

// faceShader holds the shading state of one face. It is built once per
// face and evaluated for every covered pixel.
type faceShader struct {
	mode      Mode
	base      Color
	light     math3d.Vec3
	kd, ks    float64
	shininess float64
	flat      float64 // ModeFlat intensity
	tex       Sampler // nil for no texture
	colored   bool    // use interpolated vertex colors as the base
}

func (s *faceShader) intensity(a *attrs) float64 {
	switch s.mode {
	case ModeGouraud:
		return a[attrIntensity]
	case ModePhong:
		n := math3d.V3(a[attrNX], a[attrNY], a[attrNZ])
		view := math3d.V3(-a[attrPX], -a[attrPY], -a[attrPZ])
		return PhongIntensity(n, s.light, view, s.kd, s.ks, s.shininess)
	default:
		return s.flat
	}
}

func (s *faceShader) shade(a *attrs) Color {
	base := s.base
	switch {
	case s.tex != nil:
		base = s.tex.Sample(a[attrU], a[attrV])
	case s.colored:
		base = Color{R: toByte(a[attrR]), G: toByte(a[attrG]), B: toByte(a[attrB]), A: 255}
	}
	return MultiplyColor(base, s.intensity(a))
}

// plot depth-tests (x, y) and on success writes the shaded color.
func plot(fb *Framebuffer, x, y int, v *rasterVertex, sh *faceShader) bool {
	if !fb.inBounds(x, y) || !fb.TestAndSetDepth(x, y, v.Depth) {
		return false
	}
	fb.Set(x, y, sh.shade(&v.Attr))
	return true
}

// toByte rounds v to the nearest value in [0, 255].
func toByte(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
