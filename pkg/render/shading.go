package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// ErrAttributeMismatch is returned when parallel per-vertex inputs differ
// in length.
var ErrAttributeMismatch = errors.New("attribute length mismatch")

// Mode selects the shading strategy.
type Mode int

const (
	ModeFlat    Mode = iota // One intensity per face from the face normal
	ModeGouraud             // Per-vertex diffuse intensities, interpolated
	ModePhong               // Per-pixel normal and position, diffuse + specular
)

func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "flat"
	case ModeGouraud:
		return "gouraud"
	case ModePhong:
		return "phong"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name, case-insensitively, into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "lambert":
		return ModeFlat, nil
	case "gouraud":
		return ModeGouraud, nil
	case "phong":
		return ModePhong, nil
	}
	return 0, fmt.Errorf("unknown shading mode %q", s)
}

// ShadingParams are the lighting inputs of one render call. LightDir points
// from the surface toward the light and need not be normalized.
type ShadingParams struct {
	BaseColor Color
	Kd        float64
	Ks        float64
	Shininess float64
	LightDir  math3d.Vec3
}

// DefaultShadingParams returns a white surface lit from over the viewer's
// right shoulder.
func DefaultShadingParams() ShadingParams {
	return ShadingParams{
		BaseColor: ColorWhite,
		Kd:        0.7,
		Ks:        0.3,
		Shininess: 24,
		LightDir:  math3d.V3(0.3, 0.4, 1),
	}
}

// Lambert returns the diffuse term max(0, n̂·l̂).
func Lambert(n, l math3d.Vec3) float64 {
	return math.Max(0, n.Normalize().Dot(l.Normalize()))
}

// PhongIntensity returns clamp01(kd*diffuse + ks*specular), where the
// specular term reflects l about n and compares it with the view
// direction v.
func PhongIntensity(n, l, v math3d.Vec3, kd, ks, shininess float64) float64 {
	n = n.Normalize()
	l = l.Normalize()
	v = v.Normalize()

	nl := n.Dot(l)
	diffuse := math.Max(0, nl)
	r := n.Scale(2 * nl).Sub(l)
	specular := math.Pow(math.Max(0, r.Dot(v)), shininess)

	return clamp01(kd*diffuse + ks*specular)
}

// GouraudIntensities returns the Lambert intensity of each vertex normal.
// vertices only fixes the expected count.
func GouraudIntensities(vertices, normals []math3d.Vec3, l math3d.Vec3) ([]float64, error) {
	if len(vertices) != len(normals) {
		return nil, fmt.Errorf("%w: %d vertices, %d normals", ErrAttributeMismatch, len(vertices), len(normals))
	}
	out := make([]float64, len(normals))
	for i, n := range normals {
		out[i] = Lambert(n, l)
	}
	return out, nil
}

// clamp01 clamps v to [0, 1]; NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Min(1, v)
}
