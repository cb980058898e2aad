package math3d

// NewellNormal returns the unnormalized normal of a planar polygon using
// Newell's method. Its length is twice the polygon area, which makes it
// suitable for area-weighted accumulation. Counter-clockwise winding seen
// from the front yields a normal pointing toward the viewer.
func NewellNormal(points []Vec3) Vec3 {
	var n Vec3
	for i, cur := range points {
		next := points[(i+1)%len(points)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}
