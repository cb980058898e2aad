// Package config loads render settings from JSON or YAML files and merges
// command-line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/raster3d/pkg/render"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Mesh kinds understood by the scene builder.
const (
	MeshUVSphere   = "uvsphere"
	MeshIcosphere  = "icosphere"
	MeshCube       = "cube"
	MeshCubeSphere = "cubesphere"
	MeshGrid       = "grid"
	MeshWave       = "wave"
	MeshGLTF       = "gltf"
)

// TextureChecker selects the procedural checkerboard texture.
const TextureChecker = "checker"

// Config holds everything needed to render a scene.
type Config struct {
	// Output
	Width    int    `json:"width" yaml:"width"`
	Height   int    `json:"height" yaml:"height"`
	Channels int    `json:"channels" yaml:"channels"`
	Output   string `json:"output" yaml:"output"`
	Quality  int    `json:"quality" yaml:"quality"`
	Upscale  int    `json:"upscale" yaml:"upscale"`

	// Rendering
	Mode               string    `json:"mode" yaml:"mode"`
	Fill               string    `json:"fill" yaml:"fill"`
	Wireframe          bool      `json:"wireframe" yaml:"wireframe"`
	WireColor          *[3]uint8 `json:"wire_color" yaml:"wire_color"`
	PerspectiveCorrect *bool     `json:"perspective_correct" yaml:"perspective_correct"`
	NoCull             bool      `json:"no_cull" yaml:"no_cull"`
	Background         [3]uint8  `json:"background" yaml:"background"`

	Projection Projection `json:"projection" yaml:"projection"`
	Camera     Camera     `json:"camera" yaml:"camera"`
	Light      [3]float64 `json:"light" yaml:"light"`
	Material   Material   `json:"material" yaml:"material"`
	Mesh       Mesh       `json:"mesh" yaml:"mesh"`
	Texture    string     `json:"texture" yaml:"texture"`

	// Rotation is the model's Euler rotation in degrees.
	Rotation [3]float64 `json:"rotation" yaml:"rotation"`

	// Animation
	Frames  int `json:"frames" yaml:"frames"`
	Workers int `json:"workers" yaml:"workers"`
}

// Projection selects perspective or orthographic projection.
type Projection struct {
	Kind  string  `json:"kind" yaml:"kind"`
	FOV   float64 `json:"fov" yaml:"fov"` // degrees
	Near  float64 `json:"near" yaml:"near"`
	Far   float64 `json:"far" yaml:"far"`
	Scale float64 `json:"scale" yaml:"scale"` // orthographic only
}

// Camera places the viewer.
type Camera struct {
	Eye    [3]float64 `json:"eye" yaml:"eye"`
	Target [3]float64 `json:"target" yaml:"target"`
}

// Material describes the surface. Nil fields take defaults so that black
// and zero can be set explicitly.
type Material struct {
	Color     *[3]uint8 `json:"color" yaml:"color"`
	Kd        *float64  `json:"kd" yaml:"kd"`
	Ks        *float64  `json:"ks" yaml:"ks"`
	Shininess float64   `json:"shininess" yaml:"shininess"`
}

// Mesh selects a built-in primitive or a glTF file.
type Mesh struct {
	Kind      string  `json:"kind" yaml:"kind"`
	Path      string  `json:"path" yaml:"path"`
	Size      float64 `json:"size" yaml:"size"` // radius or edge length
	Detail    int     `json:"detail" yaml:"detail"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Output    string
	Mode      string
	Fill      string
	Wireframe bool
	Width     int
	Height    int
	Texture   string
	Mesh      string
	Frames    int
	Workers   int
	Quality   int
}

// Load reads a config file. The format follows the extension: .json,
// .yaml or .yml. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies CLI overrides, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Fill != "" {
		c.Fill = flags.Fill
	}
	if flags.Wireframe {
		c.Wireframe = true
	}
	if flags.Width > 0 && flags.Height > 0 {
		c.Width, c.Height = flags.Width, flags.Height
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.Mesh != "" {
		if ext := strings.ToLower(filepath.Ext(flags.Mesh)); ext == ".glb" || ext == ".gltf" {
			c.Mesh.Kind, c.Mesh.Path = MeshGLTF, flags.Mesh
		} else {
			c.Mesh.Kind = flags.Mesh
		}
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Quality > 0 {
		c.Quality = flags.Quality
	}

	c.applyDefaults()
}

func (c *Config) applyDefaults() {
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = 640, 480
	}
	if c.Channels == 0 {
		c.Channels = 3
	}
	if c.Output == "" {
		c.Output = "out.png"
	}
	if c.Quality <= 0 {
		c.Quality = 90
	}
	if c.Upscale <= 0 {
		c.Upscale = 1
	}
	if c.Mode == "" {
		c.Mode = render.ModePhong.String()
	}
	if c.Fill == "" {
		c.Fill = render.FillTriangles.String()
	}
	if c.WireColor == nil {
		c.WireColor = &[3]uint8{255, 255, 255}
	}

	p := &c.Projection
	if p.Kind == "" {
		p.Kind = "perspective"
	}
	if p.FOV == 0 {
		p.FOV = 60
	}
	if p.Near == 0 {
		p.Near = 0.1
	}
	if p.Far == 0 {
		p.Far = 100
	}
	if p.Scale == 0 {
		p.Scale = 0.5
	}

	if c.Camera.Eye == c.Camera.Target {
		c.Camera.Eye = [3]float64{0, 0, 4}
	}
	if c.Light == [3]float64{} {
		c.Light = [3]float64{0.3, 0.4, 1}
	}

	defaults := render.DefaultShadingParams()
	m := &c.Material
	if m.Color == nil {
		m.Color = &[3]uint8{defaults.BaseColor.R, defaults.BaseColor.G, defaults.BaseColor.B}
	}
	if m.Kd == nil {
		m.Kd = &defaults.Kd
	}
	if m.Ks == nil {
		m.Ks = &defaults.Ks
	}
	if m.Shininess == 0 {
		m.Shininess = defaults.Shininess
	}

	if c.Mesh.Kind == "" {
		c.Mesh.Kind = MeshIcosphere
		if c.Mesh.Path != "" {
			c.Mesh.Kind = MeshGLTF
		}
	}
	if c.Mesh.Size == 0 {
		c.Mesh.Size = 1
	}
	if c.Mesh.Detail == 0 {
		c.Mesh.Detail = 3
	}
	if c.Mesh.Amplitude == 0 {
		c.Mesh.Amplitude = 0.2
	}

	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Width <= 0 || c.Height <= 0 {
		bad("size %dx%d", c.Width, c.Height)
	}
	switch c.Channels {
	case 1, 3, 4:
	default:
		bad("channels %d", c.Channels)
	}
	if c.Quality < 1 || c.Quality > 100 {
		bad("quality %d", c.Quality)
	}
	if _, err := render.ParseMode(c.Mode); err != nil {
		bad("%v", err)
	}
	if _, err := render.ParseFillMode(c.Fill); err != nil {
		bad("%v", err)
	}

	switch c.Projection.Kind {
	case "perspective":
		if c.Projection.FOV <= 0 || c.Projection.FOV >= 180 {
			bad("fov %v", c.Projection.FOV)
		}
		if c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near {
			bad("clip range %v..%v", c.Projection.Near, c.Projection.Far)
		}
	case "orthographic":
		if c.Projection.Scale <= 0 {
			bad("orthographic scale %v", c.Projection.Scale)
		}
	default:
		bad("projection %q", c.Projection.Kind)
	}

	switch c.Mesh.Kind {
	case MeshUVSphere, MeshIcosphere, MeshCube, MeshCubeSphere, MeshGrid, MeshWave:
	case MeshGLTF:
		if c.Mesh.Path == "" {
			bad("gltf mesh needs a path")
		}
	default:
		bad("mesh kind %q", c.Mesh.Kind)
	}
	if c.Mesh.Size <= 0 {
		bad("mesh size %v", c.Mesh.Size)
	}
	if c.Mesh.Detail < 0 {
		bad("mesh detail %d", c.Mesh.Detail)
	}
	if c.Material.Color == nil || c.Material.Kd == nil || c.Material.Ks == nil || c.WireColor == nil {
		bad("colors and reflectance unset, call Resolve")
	}
	if c.Material.Kd != nil && *c.Material.Kd < 0 || c.Material.Ks != nil && *c.Material.Ks < 0 {
		bad("negative reflectance")
	}
	if c.Frames < 1 {
		bad("frames %d", c.Frames)
	}
	return errors.Join(errs...)
}
