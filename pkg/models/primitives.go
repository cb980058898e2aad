package models

import (
	"image/color"
	"math"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// NewUVSphere builds a latitude/longitude sphere of quads. rows is
// clamped to at least 2 and cols to at least 3. The seam column is
// duplicated so texture coordinates run from 0 to 1.
func NewUVSphere(rows, cols int, radius float64) *Mesh {
	rows = max(rows, 2)
	cols = max(cols, 3)
	m := NewMesh("uvsphere")

	for i := 0; i <= rows; i++ {
		v := float64(i) / float64(rows)
		sinT, cosT := math.Sincos(v * math.Pi)
		for j := 0; j <= cols; j++ {
			u := float64(j) / float64(cols)
			sinP, cosP := math.Sincos(u * 2 * math.Pi)
			idx := m.AddVertex(math3d.V3(radius*sinT*cosP, radius*cosT, radius*sinT*sinP))
			m.Vertices[idx].UV = math3d.V2(u, 1-v)
		}
	}

	at := func(i, j int) int { return i*(cols+1) + j }
	for i := range rows {
		for j := range cols {
			m.AddFace(at(i, j), at(i, j+1), at(i+1, j+1), at(i+1, j))
		}
	}

	m.HasUVs = true
	m.CalculateBounds()
	return m
}

// NewIcosphere builds a geodesic sphere by subdividing an icosahedron
// subdivisions times. Texture coordinates use a spherical mapping.
func NewIcosphere(subdivisions int, radius float64) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	pts := []math3d.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	tris := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for i := range pts {
		pts[i] = pts[i].Normalize()
	}

	for range max(subdivisions, 0) {
		cache := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if idx, ok := cache[key]; ok {
				return idx
			}
			pts = append(pts, pts[a].Add(pts[b]).Normalize())
			cache[key] = len(pts) - 1
			return len(pts) - 1
		}

		next := make([][3]int, 0, len(tris)*4)
		for _, tri := range tris {
			a := midpoint(tri[0], tri[1])
			b := midpoint(tri[1], tri[2])
			c := midpoint(tri[2], tri[0])
			next = append(next,
				[3]int{tri[0], a, c},
				[3]int{tri[1], b, a},
				[3]int{tri[2], c, b},
				[3]int{a, b, c},
			)
		}
		tris = next
	}

	m := NewMesh("icosphere")
	for _, p := range pts {
		idx := m.AddVertex(p.Scale(radius))
		m.Vertices[idx].UV = math3d.V2(0.5+math.Atan2(p.Z, p.X)/(2*math.Pi), 0.5+math.Asin(p.Y)/math.Pi)
	}
	for _, tri := range tris {
		m.AddFace(tri[0], tri[1], tri[2])
	}
	orientOutward(m)

	m.HasUVs = true
	m.CalculateBounds()
	return m
}

// cubeSide describes one face of the unit cube. u × v equals normal.
type cubeSide struct {
	normal, u, v math3d.Vec3
}

var cubeSides = [6]cubeSide{
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
}

// NewCube builds an axis-aligned cube of quads centered at the origin.
// Each side has its own vertices so it can carry a flat normal.
func NewCube(size float64) *Mesh {
	return buildCube("cube", 1, size/2, false)
}

// NewCubeSphere builds a sphere by projecting a subdivided cube onto a
// sphere of the given radius.
func NewCubeSphere(divisions int, radius float64) *Mesh {
	return buildCube("cubesphere", max(divisions, 1), radius, true)
}

func buildCube(name string, div int, scale float64, spherize bool) *Mesh {
	m := NewMesh(name)
	for _, side := range cubeSides {
		base := len(m.Vertices)
		for j := 0; j <= div; j++ {
			t := float64(j) / float64(div)
			for i := 0; i <= div; i++ {
				s := float64(i) / float64(div)
				p := side.normal.Add(side.u.Scale(2*s - 1)).Add(side.v.Scale(2*t - 1))
				if spherize {
					p = p.Normalize()
				}
				idx := m.AddVertex(p.Scale(scale))
				m.Vertices[idx].UV = math3d.V2(s, t)
			}
		}
		at := func(i, j int) int { return base + j*(div+1) + i }
		for j := range div {
			for i := range div {
				m.AddFace(at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1))
			}
		}
	}
	m.HasUVs = true
	m.CalculateBounds()
	return m
}

// NewGrid builds a flat cols x rows grid of quads in the XZ plane facing +Y.
func NewGrid(cols, rows int, width, depth float64) *Mesh {
	m := NewHeightField(cols, rows, width, depth, nil)
	m.Name = "grid"
	return m
}

// NewWaveSurface builds a height field y = amplitude * sin(0.3 i) * cos(0.2 j)
// over grid indices, colored from low to high.
func NewWaveSurface(cols, rows int, width, depth, amplitude float64) *Mesh {
	cols = max(cols, 1)
	rows = max(rows, 1)
	m := NewHeightField(cols, rows, width, depth, func(x, z float64) float64 {
		i := (z/depth + 0.5) * float64(rows)
		j := (x/width + 0.5) * float64(cols)
		return amplitude * math.Sin(i*0.3) * math.Cos(j*0.2)
	})
	m.Name = "wave"

	low := color.RGBA{40, 90, 200, 255}
	high := color.RGBA{240, 240, 255, 255}
	span := m.Size().Y
	for i := range m.Vertices {
		t := 0.5
		if span > 0 {
			t = (m.Vertices[i].Position.Y - m.BoundsMin.Y) / span
		}
		m.Vertices[i].Color = lerpRGBA(low, high, t)
	}
	m.HasColors = true
	return m
}

// NewHeightField builds a cols x rows grid centered at the origin in the
// XZ plane with y given by height. A nil height gives a flat grid.
func NewHeightField(cols, rows int, width, depth float64, height func(x, z float64) float64) *Mesh {
	cols = max(cols, 1)
	rows = max(rows, 1)
	m := NewMesh("heightfield")

	for i := 0; i <= rows; i++ {
		v := float64(i) / float64(rows)
		z := (v - 0.5) * depth
		for j := 0; j <= cols; j++ {
			u := float64(j) / float64(cols)
			x := (u - 0.5) * width
			var y float64
			if height != nil {
				y = height(x, z)
			}
			idx := m.AddVertex(math3d.V3(x, y, z))
			m.Vertices[idx].UV = math3d.V2(u, 1-v)
		}
	}

	at := func(i, j int) int { return i*(cols+1) + j }
	for i := range rows {
		for j := range cols {
			m.AddFace(at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1))
		}
	}

	m.HasUVs = true
	m.CalculateBounds()
	return m
}

// orientOutward flips faces of a closed mesh around the origin so that
// their normals point away from the center.
func orientOutward(m *Mesh) {
	for i, f := range m.Faces {
		var centroid math3d.Vec3
		for _, idx := range f.Indices {
			centroid = centroid.Add(m.Vertices[idx].Position)
		}
		if m.FaceNormal(i).Dot(centroid) < 0 {
			for a, b := 0, len(f.Indices)-1; a < b; a, b = a+1, b-1 {
				f.Indices[a], f.Indices[b] = f.Indices[b], f.Indices[a]
			}
		}
	}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}
