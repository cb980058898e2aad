package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/raster3d/pkg/math3d"
)

func quadMesh() *Mesh {
	m := NewMesh("quad")
	a := m.AddVertex(math3d.V3(0, 0, 0))
	b := m.AddVertex(math3d.V3(2, 0, 0))
	c := m.AddVertex(math3d.V3(2, 1, 0))
	d := m.AddVertex(math3d.V3(0, 1, 0))
	m.AddFace(a, b, c, d)
	m.CalculateBounds()
	return m
}

func TestFaceNormalAreaWeighted(t *testing.T) {
	m := quadMesh()
	n := m.FaceNormal(0)
	if math.Abs(n.Z-4) > 1e-12 || n.X != 0 || n.Y != 0 {
		t.Errorf("FaceNormal() = %v, want (0,0,4)", n)
	}
}

func TestVertexNormals(t *testing.T) {
	m := quadMesh()
	for i, n := range m.VertexNormals() {
		if math.Abs(n.Z-1) > 1e-12 {
			t.Errorf("vertex %d normal = %v, want (0,0,1)", i, n)
		}
	}

	// an isolated vertex gets a zero normal
	m.AddVertex(math3d.V3(5, 5, 5))
	normals := m.VertexNormals()
	if normals[4] != (math3d.Vec3{}) {
		t.Errorf("isolated vertex normal = %v, want zero", normals[4])
	}
}

func TestNormalsPrefersStored(t *testing.T) {
	m := quadMesh()
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.V3(1, 0, 0)
	}
	if got := m.Normals()[0]; got.Z != 1 {
		t.Errorf("without HasNormals, Normals() should compute, got %v", got)
	}
	m.HasNormals = true
	if got := m.Normals()[0]; got.X != 1 {
		t.Errorf("with HasNormals, Normals() should return stored, got %v", got)
	}
}

func TestTransformedLeavesSourceUntouched(t *testing.T) {
	m := quadMesh()
	m.CalculateSmoothNormals()

	moved := m.Transformed(math3d.Translate(math3d.V3(0, 0, -5)).Mul(math3d.RotateY(math.Pi)))

	if m.Vertices[1].Position != math3d.V3(2, 0, 0) {
		t.Errorf("source mesh was mutated: %v", m.Vertices[1].Position)
	}
	if p := moved.Vertices[1].Position; math.Abs(p.X+2) > 1e-9 || math.Abs(p.Z+5) > 1e-9 {
		t.Errorf("transformed position = %v, want (-2,0,-5)", p)
	}
	if n := moved.Vertices[0].Normal; math.Abs(n.Z+1) > 1e-9 {
		t.Errorf("transformed normal = %v, want (0,0,-1)", n)
	}
	if moved.BoundsMax.Z > -4.9 {
		t.Errorf("bounds not recomputed: %v", moved.BoundsMax)
	}

	moved.Faces[0].Indices[0] = 3
	if m.Faces[0].Indices[0] != 0 {
		t.Error("Clone shares face index slices")
	}
}

func TestValidate(t *testing.T) {
	m := quadMesh()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	m.AddFace(0, 1, 7)
	if err := m.Validate(); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("Validate() = %v, want ErrInvalidFace", err)
	}
}

func TestTriangulate(t *testing.T) {
	m := quadMesh()
	tri := m.Triangulate()
	if tri.FaceCount() != 2 {
		t.Fatalf("FaceCount() = %d, want 2", tri.FaceCount())
	}
	want := [][]int{{0, 1, 2}, {0, 2, 3}}
	for i, f := range tri.Faces {
		for k := range f.Indices {
			if f.Indices[k] != want[i][k] {
				t.Errorf("face %d = %v, want %v", i, f.Indices, want[i])
			}
		}
	}
	if m.FaceCount() != 1 {
		t.Error("Triangulate mutated the source mesh")
	}
}

func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{Indices: []int{0, 1, 2}, Material: 0},
		{Indices: []int{3, 4, 5}, Material: -1},
	}

	if mesh.GetFaceMaterial(0) != 0 || mesh.GetFaceMaterial(1) != -1 {
		t.Errorf("unexpected face materials %d, %d", mesh.GetFaceMaterial(0), mesh.GetFaceMaterial(1))
	}
	if mat := mesh.GetMaterial(0); mat == nil || mat.Name != "red" {
		t.Errorf("GetMaterial(0) should return 'red' material")
	}
	if mesh.GetMaterial(-1) != nil || mesh.GetMaterial(99) != nil {
		t.Errorf("GetMaterial out of range should return nil")
	}
}

func TestMaterialFromPBR(t *testing.T) {
	rough := MaterialFromPBR("rough", [4]float64{1, 1, 1, 1}, 0, 1)
	smooth := MaterialFromPBR("smooth", [4]float64{1, 1, 1, 1}, 0, 0)

	if smooth.Shininess <= rough.Shininess {
		t.Errorf("smooth shininess %v should exceed rough %v", smooth.Shininess, rough.Shininess)
	}
	if smooth.Specular <= rough.Specular {
		t.Errorf("smooth specular %v should exceed rough %v", smooth.Specular, rough.Specular)
	}
	if c := (Material{BaseColor: [4]float64{1, 0.5, 0, 1}}).RGBA(); c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("RGBA() = %v", c)
	}
}
