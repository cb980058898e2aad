package models

import (
	"image"
	"image/color"
	"math"
)

// Material describes how a surface is lit and colored.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range

	Diffuse   float64 // kd
	Specular  float64 // ks
	Shininess float64

	// Metallic and Roughness are kept from PBR sources for reference.
	Metallic  float64
	Roughness float64

	BaseMap    image.Image // Optional base color texture
	HasTexture bool
}

// DefaultMaterial returns a white material with moderate specular.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float64{1, 1, 1, 1},
		Diffuse:   0.7,
		Specular:  0.3,
		Shininess: 24,
		Roughness: 0.5,
	}
}

// MaterialFromPBR approximates Phong coefficients from metallic-roughness
// factors. Smoother surfaces get a tighter, stronger highlight.
func MaterialFromPBR(name string, base [4]float64, metallic, roughness float64) Material {
	gloss := 1 - clamp01(roughness)
	metal := clamp01(metallic)
	return Material{
		Name:      name,
		BaseColor: base,
		Diffuse:   1 - 0.5*metal,
		Specular:  0.04 + 0.6*gloss*gloss + 0.3*metal,
		Shininess: 2 + 126*gloss*gloss,
		Metallic:  metal,
		Roughness: clamp01(roughness),
	}
}

// RGBA returns BaseColor as an 8-bit color.
func (m Material) RGBA() color.RGBA {
	to8 := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * 255)) }
	return color.RGBA{to8(m.BaseColor[0]), to8(m.BaseColor[1]), to8(m.BaseColor[2]), to8(m.BaseColor[3])}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
