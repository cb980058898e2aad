// Package models provides polygon meshes, materials, procedural primitives
// and glTF loading for the rasterizer.
package models

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// ErrInvalidFace is returned when a face references a vertex that does not exist.
var ErrInvalidFace = errors.New("invalid face")

// Mesh is an indexed polygon mesh. Faces may have any number of vertices;
// each face is assumed planar.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	HasNormals bool // Vertex normals were supplied by the source
	HasUVs     bool
	HasColors  bool

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Color    color.RGBA
}

// Face is an ordered list of vertex indices plus a material reference.
// Counter-clockwise order seen from outside marks the front side.
type Face struct {
	Indices  []int
	Material int // Index into Mesh.Materials, -1 for none
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex at p and returns its index.
func (m *Mesh) AddVertex(p math3d.Vec3) int {
	m.Vertices = append(m.Vertices, MeshVertex{Position: p, Color: color.RGBA{255, 255, 255, 255}})
	return len(m.Vertices) - 1
}

// AddFace appends a face with no material.
func (m *Mesh) AddFace(indices ...int) {
	m.Faces = append(m.Faces, Face{Indices: indices, Material: -1})
}

// Validate checks that every face index refers to an existing vertex.
func (m *Mesh) Validate() error {
	for fi, f := range m.Faces {
		for _, idx := range f.Indices {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidFace, fi, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// FaceNormal returns the unnormalized Newell normal of face i. Its length
// is twice the face area.
func (m *Mesh) FaceNormal(i int) math3d.Vec3 {
	f := m.Faces[i]
	pts := make([]math3d.Vec3, len(f.Indices))
	for k, idx := range f.Indices {
		pts[k] = m.Vertices[idx].Position
	}
	return math3d.NewellNormal(pts)
}

// VertexNormals computes smooth per-vertex normals by summing the
// area-weighted normals of the faces around each vertex. Vertices that
// belong to no face get a zero normal.
func (m *Mesh) VertexNormals() []math3d.Vec3 {
	normals := make([]math3d.Vec3, len(m.Vertices))
	for i, f := range m.Faces {
		if len(f.Indices) < 3 {
			continue
		}
		n := m.FaceNormal(i)
		for _, idx := range f.Indices {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// Normals returns the source normals when present, otherwise the
// computed smooth normals.
func (m *Mesh) Normals() []math3d.Vec3 {
	if !m.HasNormals {
		return m.VertexNormals()
	}
	normals := make([]math3d.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		normals[i] = v.Normal
	}
	return normals
}

// CalculateSmoothNormals stores VertexNormals on the vertices.
func (m *Mesh) CalculateSmoothNormals() {
	for i, n := range m.VertexNormals() {
		m.Vertices[i].Normal = n
	}
	m.HasNormals = true
}

// Transformed returns a copy of the mesh with every position mapped by mat
// and every stored normal by its normal matrix. The receiver is not modified.
func (m *Mesh) Transformed(mat math3d.Mat4) *Mesh {
	out := m.Clone()
	nm := mat.NormalMatrix()
	for i := range out.Vertices {
		v := &out.Vertices[i]
		v.Position = mat.MulPoint(v.Position)
		v.Normal = nm.MulDir(v.Normal).Normalize()
	}
	out.CalculateBounds()
	return out
}

// Clone creates a deep copy of the mesh. Material images are shared.
func (m *Mesh) Clone() *Mesh {
	out := *m
	out.Vertices = append([]MeshVertex(nil), m.Vertices...)
	out.Materials = append([]Material(nil), m.Materials...)
	out.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		out.Faces[i] = Face{Indices: append([]int(nil), f.Indices...), Material: f.Material}
	}
	return &out
}

// Triangulate returns a copy whose faces are fan-split into triangles.
func (m *Mesh) Triangulate() *Mesh {
	out := m.Clone()
	out.Faces = out.Faces[:0]
	for _, f := range m.Faces {
		for k := 1; k+1 < len(f.Indices); k++ {
			out.Faces = append(out.Faces, Face{
				Indices:  []int{f.Indices[0], f.Indices[k], f.Indices[k+1]},
				Material: f.Material,
			})
		}
	}
	return out
}

// GetVertex returns the position and texture coordinate of vertex i.
func (m *Mesh) GetVertex(i int) (pos math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.UV
}

// GetFace returns the vertex indices of face i.
func (m *Mesh) GetFace(i int) []int {
	return m.Faces[i].Indices
}

// HasTexCoords reports whether the vertices carry meaningful UVs.
func (m *Mesh) HasTexCoords() bool {
	return m.HasUVs
}

// GetColor returns the color of vertex i.
func (m *Mesh) GetColor(i int) color.RGBA {
	return m.Vertices[i].Color
}

// HasVertexColors reports whether the vertices carry meaningful colors.
func (m *Mesh) HasVertexColors() bool {
	return m.HasColors
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (lo, hi math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// GetFaceMaterial returns the material index for face i, -1 if none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i, or nil if out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

