package models

import (
	"math"
	"testing"
)

func TestPrimitivesFaceOutward(t *testing.T) {
	tests := []struct {
		name string
		mesh *Mesh
	}{
		{"uvsphere", NewUVSphere(8, 12, 1)},
		{"icosphere", NewIcosphere(2, 1)},
		{"cube", NewCube(2)},
		{"cubesphere", NewCubeSphere(4, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mesh.Validate(); err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			for i, f := range tt.mesh.Faces {
				n := tt.mesh.FaceNormal(i)
				if n.Len() < 1e-12 {
					continue // pole quads collapse to triangles or points
				}
				centroid := tt.mesh.Vertices[f.Indices[0]].Position
				for _, idx := range f.Indices[1:] {
					centroid = centroid.Add(tt.mesh.Vertices[idx].Position)
				}
				if n.Dot(centroid) <= 0 {
					t.Fatalf("face %d points inward: normal %v, centroid %v", i, n, centroid)
				}
			}
		})
	}
}

func TestPrimitiveCounts(t *testing.T) {
	tests := []struct {
		name            string
		mesh            *Mesh
		vertices, faces int
	}{
		{"uvsphere", NewUVSphere(4, 6, 1), 5 * 7, 4 * 6},
		{"uvsphere clamps", NewUVSphere(1, 1, 1), 3 * 4, 2 * 3},
		{"icosahedron", NewIcosphere(0, 1), 12, 20},
		{"icosphere", NewIcosphere(1, 1), 42, 80},
		{"cube", NewCube(1), 24, 6},
		{"grid", NewGrid(3, 2, 1, 1), 4 * 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mesh.VertexCount() != tt.vertices {
				t.Errorf("VertexCount() = %d, want %d", tt.mesh.VertexCount(), tt.vertices)
			}
			if tt.mesh.FaceCount() != tt.faces {
				t.Errorf("FaceCount() = %d, want %d", tt.mesh.FaceCount(), tt.faces)
			}
		})
	}
}

func TestSphereRadius(t *testing.T) {
	for _, m := range []*Mesh{NewUVSphere(6, 8, 2), NewIcosphere(2, 2), NewCubeSphere(3, 2)} {
		for i, v := range m.Vertices {
			if math.Abs(v.Position.Len()-2) > 1e-9 {
				t.Fatalf("%s vertex %d at distance %v, want 2", m.Name, i, v.Position.Len())
			}
		}
	}
}

func TestGridFacesUp(t *testing.T) {
	m := NewGrid(2, 2, 4, 4)
	for i := range m.Faces {
		if n := m.FaceNormal(i); n.Y <= 0 {
			t.Fatalf("face %d normal %v should point +Y", i, n)
		}
	}
	if m.BoundsMin.X != -2 || m.BoundsMax.Z != 2 {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
}

func TestWaveSurfaceColors(t *testing.T) {
	m := NewWaveSurface(10, 10, 10, 10, 2)
	if !m.HasColors {
		t.Fatal("wave surface should carry vertex colors")
	}
	lowest, highest := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices {
		if v.Position.Y < lowest.Position.Y {
			lowest = v
		}
		if v.Position.Y > highest.Position.Y {
			highest = v
		}
	}
	if lowest.Color.B >= highest.Color.B && lowest.Color.R >= highest.Color.R {
		t.Errorf("expected brighter color at peak, low %v high %v", lowest.Color, highest.Color)
	}
}
