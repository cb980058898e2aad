package render

import (
	"math"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// DrawLine draws a line from (x0, y0) to (x1, y1) with Bresenham's
// algorithm. Lines ignore the depth buffer.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolyline connects consecutive pixel-space points.
func (fb *Framebuffer) DrawPolyline(pts []math3d.Vec2, c Color) {
	for i := 1; i < len(pts); i++ {
		fb.drawSegment(pts[i-1], pts[i], c)
	}
}

// DrawPolygon draws the closed outline through pixel-space points.
func (fb *Framebuffer) DrawPolygon(pts []math3d.Vec2, c Color) {
	if len(pts) < 2 {
		return
	}
	fb.DrawPolyline(pts, c)
	fb.drawSegment(pts[len(pts)-1], pts[0], c)
}

// DrawPoint sets the pixel nearest to p.
func (fb *Framebuffer) DrawPoint(p math3d.Vec2, c Color) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return
	}
	fb.Set(int(math.Round(p.X)), int(math.Round(p.Y)), c)
}

// DrawCircle draws a circle outline with the midpoint algorithm, plotting
// one octant and mirroring it into the other seven.
func (fb *Framebuffer) DrawCircle(cx, cy, radius int, c Color) {
	if radius < 0 {
		return
	}
	x, y := radius, 0
	err := 1 - x
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {-x, y}, {x, -y}, {-x, -y},
			{y, x}, {-y, x}, {y, -x}, {-y, -x},
		} {
			fb.Set(cx+p[0], cy+p[1], c)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

// QuadBezier flattens a quadratic Bézier curve into segments+1 points
// evenly spaced in t, starting at p0 and ending at p2.
func QuadBezier(p0, p1, p2 math3d.Vec2, segments int) []math3d.Vec2 {
	segments = max(segments, 1)
	pts := make([]math3d.Vec2, segments+1)
	for i := range pts {
		t := float64(i) / float64(segments)
		u := 1 - t
		pts[i] = p0.Scale(u * u).Add(p1.Scale(2 * u * t)).Add(p2.Scale(t * t))
	}
	return pts
}

// CubicBezier flattens a cubic Bézier curve into segments+1 points evenly
// spaced in t, starting at p0 and ending at p3.
func CubicBezier(p0, p1, p2, p3 math3d.Vec2, segments int) []math3d.Vec2 {
	segments = max(segments, 1)
	pts := make([]math3d.Vec2, segments+1)
	for i := range pts {
		t := float64(i) / float64(segments)
		u := 1 - t
		pts[i] = p0.Scale(u * u * u).
			Add(p1.Scale(3 * u * u * t)).
			Add(p2.Scale(3 * u * t * t)).
			Add(p3.Scale(t * t * t))
	}
	return pts
}

// DrawQuadBezier draws a quadratic Bézier curve as a polyline of the
// given number of segments.
func (fb *Framebuffer) DrawQuadBezier(p0, p1, p2 math3d.Vec2, segments int, c Color) {
	fb.DrawPolyline(QuadBezier(p0, p1, p2, segments), c)
}

// DrawCubicBezier draws a cubic Bézier curve as a polyline of the given
// number of segments.
func (fb *Framebuffer) DrawCubicBezier(p0, p1, p2, p3 math3d.Vec2, segments int, c Color) {
	fb.DrawPolyline(CubicBezier(p0, p1, p2, p3, segments), c)
}

// drawSegment rounds both endpoints to the nearest pixel. Endpoints that
// are not finite or lie far outside the buffer are skipped.
func (fb *Framebuffer) drawSegment(a, b math3d.Vec2, c Color) {
	limit := float64(4 * max(fb.Width, fb.Height))
	for _, v := range [4]float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.Abs(v) > limit {
			return
		}
	}
	fb.DrawLine(int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(b.X)), int(math.Round(b.Y)), c)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
