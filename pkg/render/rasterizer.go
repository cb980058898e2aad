package render

import "math"

// degenerateArea is the smallest twice-area, in square pixels, that a
// triangle needs to be rasterized.
const degenerateArea = 1e-12

// edgeCoeffs returns A, B, C with A*x + B*y + C equal to the signed
// parallelogram area of (p0, p1, (x, y)). Swapping p0 and p1 negates all
// three exactly, so a pixel on a shared edge is never missed by both
// neighbours.
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// pixelIndex converts a pixel coordinate to an int after clamping it to
// [-1, size], so far off-screen vertices cannot overflow the conversion.
func pixelIndex(v float64, size int) int {
	return int(math.Max(-1, math.Min(float64(size), v)))
}

// fillTriangle rasterizes one triangle by evaluating edge functions at
// pixel centers. A pixel is covered when all three normalized barycentric
// weights are non-negative. With cullCW set, triangles that are clockwise
// in NDC (counter-clockwise on screen, where y points down) are skipped.
// It returns the number of pixels written.
func fillTriangle(fb *Framebuffer, v0, v1, v2 *rasterVertex, sh *faceShader, cullCW bool) int {
	a0, b0, c0 := edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y)
	a1, b1, c1 := edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y)
	a2, b2, c2 := edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y)

	area := a0*v0.X + b0*v0.Y + c0
	if math.Abs(area) < degenerateArea || math.IsNaN(area) {
		return 0
	}
	if cullCW && area > 0 {
		return 0
	}
	inv := 1 / area

	minX := max(0, pixelIndex(math.Floor(min(v0.X, v1.X, v2.X)), fb.Width))
	maxX := min(fb.Width-1, pixelIndex(math.Ceil(max(v0.X, v1.X, v2.X)), fb.Width))
	minY := max(0, pixelIndex(math.Floor(min(v0.Y, v1.Y, v2.Y)), fb.Height))
	maxY := min(fb.Height-1, pixelIndex(math.Ceil(max(v0.Y, v1.Y, v2.Y)), fb.Height))

	written := 0
	var frag rasterVertex
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			w0 := (a0*px + b0*py + c0) * inv
			w1 := (a1*px + b1*py + c1) * inv
			w2 := (a2*px + b2*py + c2) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			// perspective-corrected weights; equal to w when all W match
			q0, q1, q2 := w0*v0.W, w1*v1.W, w2*v2.W
			sum := q0 + q1 + q2
			if !(sum > 0) {
				continue
			}
			k1, k2 := q1/sum, q2/sum

			frag.Depth = v0.Depth + k1*(v1.Depth-v0.Depth) + k2*(v2.Depth-v0.Depth)
			for k := range frag.Attr {
				frag.Attr[k] = v0.Attr[k] + k1*(v1.Attr[k]-v0.Attr[k]) + k2*(v2.Attr[k]-v0.Attr[k])
			}
			if plot(fb, x, y, &frag, sh) {
				written++
			}
		}
	}
	return written
}

// fillFan triangulates a convex polygon as (v0, vi, vi+1) and rasterizes
// each triangle.
func fillFan(fb *Framebuffer, verts []rasterVertex, sh *faceShader, cullCW bool) int {
	written := 0
	for i := 1; i+1 < len(verts); i++ {
		written += fillTriangle(fb, &verts[0], &verts[i], &verts[i+1], sh, cullCW)
	}
	return written
}
