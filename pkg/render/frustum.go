package render

import "github.com/taigrr/raster3d/pkg/math3d"

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Distance returns the signed distance from the plane to p; positive on
// the side the normal points to.
func (p Plane) Distance(pt math3d.Vec3) float64 {
	return p.Normal.Dot(pt) + p.D
}

func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}

// Frustum holds six inward-facing planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts the clip planes of a projection (or
// view-projection) matrix with the Gribb/Hartmann method.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, wd := row(3)

	var f Frustum
	for axis := range 3 {
		r, rd := row(axis)
		f.Planes[axis*2] = Plane{Normal: w.Add(r), D: wd + rd}.normalized()
		f.Planes[axis*2+1] = Plane{Normal: w.Sub(r), D: wd - rd}.normalized()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// For each plane only the corner furthest along the normal is tested.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, p := range f.Planes {
		corner := box.Min
		if p.Normal.X >= 0 {
			corner.X = box.Max.X
		}
		if p.Normal.Y >= 0 {
			corner.Y = box.Max.Y
		}
		if p.Normal.Z >= 0 {
			corner.Z = box.Max.Z
		}
		if p.Distance(corner) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
