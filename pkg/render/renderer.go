package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/taigrr/raster3d/pkg/math3d"
)

var (
	// ErrInvalidMesh is returned when a face references a missing vertex.
	ErrInvalidMesh = errors.New("invalid mesh")
	// ErrNoProjection is returned when a Renderer has no Projector.
	ErrNoProjection = errors.New("no projection")
)

// Mesh is the read-only view of a camera-space polygon mesh the renderer
// consumes. Faces list vertex indices counter-clockwise as seen from
// their front side.
type Mesh interface {
	VertexCount() int
	FaceCount() int
	GetVertex(i int) (pos math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) []int
}

// TexturedMesh is a Mesh whose texture coordinates may be meaningful.
type TexturedMesh interface {
	Mesh
	HasTexCoords() bool
}

// ColoredMesh is a Mesh with per-vertex colors.
type ColoredMesh interface {
	Mesh
	GetColor(i int) color.RGBA
	HasVertexColors() bool
}

// BoundedMesh is a Mesh that reports its camera-space bounding box.
type BoundedMesh interface {
	Mesh
	GetBounds() (lo, hi math3d.Vec3)
}

// FillMode selects how face interiors are rasterized.
type FillMode int

const (
	FillTriangles FillMode = iota // Fan-triangulate, barycentric fill
	FillScanline                  // Scanline fill of the whole polygon
)

func (f FillMode) String() string {
	if f == FillScanline {
		return "scanline"
	}
	return "triangles"
}

// ParseFillMode converts "triangles" or "scanline" into a FillMode.
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "triangles", "barycentric":
		return FillTriangles, nil
	case "scanline":
		return FillScanline, nil
	}
	return 0, fmt.Errorf("unknown fill mode %q", s)
}

// Options tune a Renderer.
type Options struct {
	Fill                   FillMode
	PerspectiveCorrect     bool  // Interpolate in camera space rather than screen space
	DisableBackfaceCulling bool  // Draw faces whose normal points away from the camera
	CullScreenSpace        bool  // Also drop triangles wound clockwise on screen
	WireColor              Color // Outline color when drawing wireframes
}

// RenderStats counts what happened during the last Render call.
type RenderStats struct {
	Faces        int // Faces visited
	Culled       int // Back faces skipped
	Rejected     int // Faces with a vertex the projection rejected
	Degenerate   int // Faces with fewer than three vertices or no screen area
	Drawn        int // Faces rasterized
	Pixels       int // Pixels that passed the depth test
	MeshesCulled int // 1 when the whole mesh was outside the frustum
}

// Renderer draws camera-space meshes. It holds no framebuffer; each call
// borrows one.
type Renderer struct {
	Projection Projector
	Shading    ShadingParams
	Options    Options
	Stats      RenderStats
}

// NewRenderer creates a renderer. Perspective correction is enabled for
// *PerspectiveProjection.
func NewRenderer(proj Projector, params ShadingParams) *Renderer {
	_, persp := proj.(*PerspectiveProjection)
	return &Renderer{
		Projection: proj,
		Shading:    params,
		Options: Options{
			PerspectiveCorrect: persp,
			WireColor:          ColorWhite,
		},
	}
}

// Render draws every front-facing face of mesh into fb. normals holds one
// camera-space normal per vertex. tex may be nil; it is sampled only when
// the mesh carries texture coordinates. With wireframe set each face
// outline is drawn over its fill.
//
// Mismatched normals, out-of-range face indices, a nil framebuffer or a
// missing projection are reported as errors before anything is drawn.
// Faces with fewer than three vertices, zero area or a vertex the
// projection rejects are skipped.
func (r *Renderer) Render(fb *Framebuffer, mesh Mesh, normals []math3d.Vec3, mode Mode, wireframe bool, tex Sampler) error {
	if err := r.validate(fb, mesh, normals, mode); err != nil {
		return err
	}
	r.Stats = RenderStats{}

	if r.outsideFrustum(mesh) {
		r.Stats.MeshesCulled++
		Logger().Debug("mesh outside frustum")
		return nil
	}

	if t, ok := tex.(*Texture); ok && t == nil {
		tex = nil
	}
	if tm, ok := mesh.(TexturedMesh); tex != nil && ok && !tm.HasTexCoords() {
		tex = nil
	}
	colors, colored := mesh.(ColoredMesh)
	colored = colored && colors.HasVertexColors()

	sh := faceShader{
		mode:      mode,
		base:      r.Shading.BaseColor,
		light:     r.Shading.LightDir.Normalize(),
		kd:        r.Shading.Kd,
		ks:        r.Shading.Ks,
		shininess: r.Shading.Shininess,
		tex:       tex,
		colored:   colored,
	}

	var (
		pos   []math3d.Vec3
		norms []math3d.Vec3
		pix   []math3d.Vec2
		verts []rasterVertex
	)
	for f := range mesh.FaceCount() {
		r.Stats.Faces++
		idx := mesh.GetFace(f)
		if len(idx) < 3 {
			r.Stats.Degenerate++
			continue
		}

		pos, norms = pos[:0], norms[:0]
		for _, i := range idx {
			p, _ := mesh.GetVertex(i)
			pos = append(pos, p)
			norms = append(norms, normals[i])
		}

		faceNormal := math3d.NewellNormal(pos)
		if !r.Options.DisableBackfaceCulling && faceNormal.Dot(math3d.Forward()) >= 0 {
			r.Stats.Culled++
			continue
		}

		var ok bool
		verts, pix, ok = r.setupFace(fb, mesh, idx, pos, norms, verts[:0], pix[:0], &sh)
		if !ok {
			r.Stats.Rejected++
			continue
		}
		if !(polygonArea(pix) >= degenerateArea) {
			r.Stats.Degenerate++
			continue
		}
		sh.flat = Lambert(faceNormal, sh.light)

		if r.Options.Fill == FillScanline {
			r.Stats.Pixels += fillPolygon(fb, verts, &sh)
		} else {
			r.Stats.Pixels += fillFan(fb, verts, &sh, r.Options.CullScreenSpace)
		}
		if wireframe {
			fb.DrawPolygon(pix, r.Options.WireColor)
		}
		r.Stats.Drawn++
	}

	Logger().Debug("render",
		"mode", mode,
		"fill", r.Options.Fill,
		"faces", r.Stats.Faces,
		"drawn", r.Stats.Drawn,
		"culled", r.Stats.Culled,
		"rejected", r.Stats.Rejected,
		"pixels", r.Stats.Pixels,
	)
	return nil
}

func (r *Renderer) validate(fb *Framebuffer, mesh Mesh, normals []math3d.Vec3, mode Mode) error {
	switch {
	case fb == nil:
		return fmt.Errorf("%w: nil framebuffer", ErrInvalidFramebuffer)
	case mesh == nil:
		return fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	case r.Projection == nil:
		return ErrNoProjection
	case mode < ModeFlat || mode > ModePhong:
		return fmt.Errorf("unknown shading mode %v", mode)
	}

	n := mesh.VertexCount()
	if len(normals) != n {
		return fmt.Errorf("%w: %d vertices, %d normals", ErrAttributeMismatch, n, len(normals))
	}
	for f := range mesh.FaceCount() {
		for _, i := range mesh.GetFace(f) {
			if i < 0 || i >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidMesh, f, i, n)
			}
		}
	}
	return nil
}

// outsideFrustum reports whether a bounded mesh lies entirely outside the
// projection's frustum. Meshes with an empty box are never rejected, so
// bounds that were never computed do not hide geometry.
func (r *Renderer) outsideFrustum(mesh Mesh) bool {
	bounded, ok := mesh.(BoundedMesh)
	if !ok {
		return false
	}
	mp, ok := r.Projection.(interface{ Matrix() math3d.Mat4 })
	if !ok {
		return false
	}
	lo, hi := bounded.GetBounds()
	if lo == hi {
		return false
	}
	return !NewFrustumFromMatrix(mp.Matrix()).IntersectAABB(AABB{Min: lo, Max: hi})
}

// setupFace projects one face and fills in the attributes its shading
// mode needs. It returns false when any vertex cannot be projected.
func (r *Renderer) setupFace(fb *Framebuffer, mesh Mesh, idx []int, pos, norms []math3d.Vec3,
	verts []rasterVertex, pix []math3d.Vec2, sh *faceShader,
) ([]rasterVertex, []math3d.Vec2, bool) {
	var intensities []float64
	if sh.mode == ModeGouraud {
		// lengths match by construction
		intensities, _ = GouraudIntensities(pos, norms, sh.light)
	}
	colors, _ := mesh.(ColoredMesh)

	for k, i := range idx {
		ndc, ok := r.Projection.Project(pos[k])
		if !ok {
			return verts, pix, false
		}
		x, y := ndcToPixel(ndc, fb.Width, fb.Height)
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return verts, pix, false
		}

		v := rasterVertex{X: x, Y: y, Depth: -pos[k].Z, W: 1}
		if r.Options.PerspectiveCorrect {
			if v.Depth <= 0 {
				return verts, pix, false
			}
			v.W = 1 / v.Depth
		}

		switch sh.mode {
		case ModeGouraud:
			v.Attr[attrIntensity] = intensities[k]
		case ModePhong:
			v.setNormal(norms[k])
			v.setPosition(pos[k])
		}
		if sh.tex != nil {
			_, uv := mesh.GetVertex(i)
			v.Attr[attrU], v.Attr[attrV] = uv.X, uv.Y
		}
		if sh.colored {
			v.setColor(colors.GetColor(i))
		}

		verts = append(verts, v)
		pix = append(pix, math3d.V2(x, y))
	}
	return verts, pix, true
}
