// Package scene turns a config into a renderable scene: a model-space mesh,
// camera, projection, lighting and optional texture.
package scene

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/taigrr/raster3d/internal/config"
	"github.com/taigrr/raster3d/pkg/imageio"
	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/models"
	"github.com/taigrr/raster3d/pkg/render"
)

// Scene is everything needed to draw a frame. Draw only reads it, so one
// Scene may be drawn from several goroutines.
type Scene struct {
	Mesh       *models.Mesh // model space
	Texture    *render.Texture
	Camera     *render.Camera
	Projection render.Projector
	Shading    render.ShadingParams
	Options    render.Options
	Mode       render.Mode
	Wireframe  bool
	Rotation   math3d.Vec3 // Euler angles in radians
	Background render.Color
}

// Build creates a scene from a resolved config.
func Build(cfg config.Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := render.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	fill, err := render.ParseFillMode(cfg.Fill)
	if err != nil {
		return nil, err
	}

	mesh, embedded, err := buildMesh(cfg.Mesh)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Mesh:       mesh,
		Mode:       mode,
		Wireframe:  cfg.Wireframe,
		Rotation:   math3d.V3(radians(cfg.Rotation[0]), radians(cfg.Rotation[1]), radians(cfg.Rotation[2])),
		Background: rgb(cfg.Background),
		Shading: render.ShadingParams{
			BaseColor: rgb(*cfg.Material.Color),
			Kd:        *cfg.Material.Kd,
			Ks:        *cfg.Material.Ks,
			Shininess: cfg.Material.Shininess,
			LightDir:  vec3(cfg.Light),
		},
	}

	s.Texture, err = loadTexture(cfg.Texture, embedded)
	if err != nil {
		return nil, err
	}

	aspect := float64(cfg.Width) / float64(cfg.Height)
	s.Camera = render.NewCamera(aspect)
	s.Camera.Eye = vec3(cfg.Camera.Eye)
	s.Camera.Target = vec3(cfg.Camera.Target)

	perspective := cfg.Projection.Kind == "perspective"
	if perspective {
		s.Camera.FOV = radians(cfg.Projection.FOV)
		s.Camera.Near = cfg.Projection.Near
		s.Camera.Far = cfg.Projection.Far
		s.Projection = s.Camera.Projection()
	} else {
		s.Projection = &render.OrthographicProjection{Scale: cfg.Projection.Scale}
	}

	s.Options = render.Options{
		Fill:                   fill,
		PerspectiveCorrect:     perspective,
		DisableBackfaceCulling: cfg.NoCull,
		WireColor:              rgb(*cfg.WireColor),
	}
	if cfg.PerspectiveCorrect != nil {
		s.Options.PerspectiveCorrect = *cfg.PerspectiveCorrect
	}

	render.Logger().Info("scene built",
		"mesh", mesh.Name,
		"vertices", mesh.VertexCount(),
		"faces", mesh.FaceCount(),
		"mode", mode,
		"fill", fill,
		"textured", s.Texture != nil,
	)
	return s, nil
}

// buildMesh returns the configured mesh and, for glTF files, the first
// embedded base color texture.
func buildMesh(mc config.Mesh) (*models.Mesh, *render.Texture, error) {
	detail := mc.Detail
	switch mc.Kind {
	case config.MeshUVSphere:
		return models.NewUVSphere(detail*8, detail*16, mc.Size), nil, nil
	case config.MeshIcosphere:
		return models.NewIcosphere(detail, mc.Size), nil, nil
	case config.MeshCube:
		return models.NewCube(mc.Size), nil, nil
	case config.MeshCubeSphere:
		return models.NewCubeSphere(detail*4, mc.Size), nil, nil
	case config.MeshGrid:
		return models.NewGrid(detail*8, detail*8, mc.Size*2, mc.Size*2), nil, nil
	case config.MeshWave:
		return models.NewWaveSurface(detail*16, detail*16, mc.Size*2, mc.Size*2, mc.Amplitude), nil, nil
	case config.MeshGLTF:
		mesh, img, err := models.LoadGLBWithTexture(mc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
		var tex *render.Texture
		if img != nil {
			tex = render.TextureFromImage(img)
		}
		return fitToSize(mesh, mc.Size), tex, nil
	}
	return nil, nil, fmt.Errorf("%w: mesh kind %q", config.ErrInvalid, mc.Kind)
}

// fitToSize centers mesh at the origin and scales its largest extent to
// 2*size.
func fitToSize(mesh *models.Mesh, size float64) *models.Mesh {
	mesh.CalculateBounds()
	ext := mesh.Size()
	maxDim := math.Max(ext.X, math.Max(ext.Y, ext.Z))
	if maxDim <= 0 {
		return mesh
	}
	k := 2 * size / maxDim
	return mesh.Transformed(math3d.Scale(math3d.V3(k, k, k)).Mul(math3d.Translate(mesh.Center().Negate())))
}

// loadTexture resolves the texture setting: empty keeps any embedded
// texture, "checker" is procedural, "none" disables texturing, anything
// else is an image path.
func loadTexture(src string, embedded *render.Texture) (*render.Texture, error) {
	switch strings.ToLower(src) {
	case "":
		return embedded, nil
	case "none":
		return nil, nil
	case config.TextureChecker:
		return render.NewCheckerTexture(256, 256, 32, render.RGB(230, 230, 230), render.RGB(70, 70, 80)), nil
	}

	img, _, err := imageio.Open(src)
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}
	tex := render.TextureFromImage(img)
	render.Logger().Info("texture loaded", "path", filepath.Base(src), "width", tex.Width, "height", tex.Height)
	return tex, nil
}

// ModelMatrix returns the model rotation with an extra turn of angle
// radians about Y.
func (s *Scene) ModelMatrix(angle float64) math3d.Mat4 {
	return math3d.Euler(s.Rotation.X, s.Rotation.Y+angle, s.Rotation.Z)
}

// Draw clears fb and renders the scene turned by angle radians about Y.
// The mesh is moved into camera space before rendering; the scene's mesh
// is left untouched.
func (s *Scene) Draw(fb *render.Framebuffer, angle float64) (render.RenderStats, error) {
	if fb == nil {
		return render.RenderStats{}, errors.New("scene: nil framebuffer")
	}
	fb.Clear(s.Background)
	fb.ClearDepth()

	modelView := s.Camera.ViewMatrix().Mul(s.ModelMatrix(angle))
	camMesh := s.Mesh.Transformed(modelView)

	r := render.NewRenderer(s.Projection, s.Shading)
	r.Options = s.Options

	// a nil *Texture must not reach the renderer as a non-nil Sampler
	var tex render.Sampler
	if s.Texture != nil {
		tex = s.Texture
	}
	if err := r.Render(fb, camMesh, camMesh.Normals(), s.Mode, s.Wireframe, tex); err != nil {
		return r.Stats, fmt.Errorf("scene: render %s: %w", s.Mesh.Name, err)
	}
	return r.Stats, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func vec3(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func rgb(c [3]uint8) render.Color {
	return render.RGB(c[0], c[1], c[2])
}
