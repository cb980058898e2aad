package render

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// fillPolygon scanline-fills a simple polygon with the even-odd rule.
// Scanline y samples at y+0.5 and an edge crosses it when exactly one
// endpoint lies at or above that line (half-open), so shared vertices are
// counted once. Pixels whose centers fall in [xL, xR) of a span are
// covered. It returns the number of pixels written.
func fillPolygon(fb *Framebuffer, verts []rasterVertex, sh *faceShader) int {
	n := len(verts)
	if n < 3 {
		return 0
	}

	minY, maxY := verts[0].Y, verts[0].Y
	for _, v := range verts[1:] {
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}
	if math.IsNaN(minY) || math.IsNaN(maxY) {
		return 0
	}
	yStart := max(0, pixelIndex(math.Ceil(minY-0.5), fb.Height))
	yEnd := min(fb.Height-1, pixelIndex(math.Ceil(maxY-0.5), fb.Height)-1)

	written := 0
	nodes := make([]rasterVertex, 0, n)
	for y := yStart; y <= yEnd; y++ {
		yc := float64(y) + 0.5

		nodes = nodes[:0]
		for i := range n {
			a, b := &verts[i], &verts[(i+1)%n]
			if (a.Y <= yc) == (b.Y <= yc) {
				continue
			}
			// walk every edge top to bottom so neighbours sharing it
			// compute bit-identical crossings
			if a.Y > b.Y {
				a, b = b, a
			}
			nodes = append(nodes, lerpVertex(a, b, (yc-a.Y)/(b.Y-a.Y)))
		}
		slices.SortFunc(nodes, func(p, q rasterVertex) int { return cmp.Compare(p.X, q.X) })

		for k := 0; k+1 < len(nodes); k += 2 {
			left, right := &nodes[k], &nodes[k+1]
			span := right.X - left.X
			if !(span > 0) {
				continue
			}
			xStart := max(0, pixelIndex(math.Ceil(left.X-0.5), fb.Width))
			xEnd := min(fb.Width-1, pixelIndex(math.Ceil(right.X-0.5), fb.Width)-1)
			for x := xStart; x <= xEnd; x++ {
				frag := lerpVertex(left, right, (float64(x)+0.5-left.X)/span)
				if plot(fb, x, y, &frag, sh) {
					written++
				}
			}
		}
	}
	return written
}

// polygonArea returns twice the unsigned shoelace area of a pixel-space
// polygon.
func polygonArea(pts []math3d.Vec2) float64 {
	var sum float64
	for i, p := range pts {
		sum += p.Cross(pts[(i+1)%len(pts)])
	}
	return math.Abs(sum)
}

// FillPolygonShaded fills a pixel-space polygon with per-vertex gray
// intensities in [0, 255] and per-vertex depths, interpolated linearly in
// screen space. Polygons with fewer than three vertices draw nothing.
func FillPolygonShaded(fb *Framebuffer, pts []math3d.Vec2, depths []float64, intensities []uint8) error {
	if len(depths) != len(pts) || len(intensities) != len(pts) {
		return fmt.Errorf("%w: %d points, %d depths, %d intensities",
			ErrAttributeMismatch, len(pts), len(depths), len(intensities))
	}
	if fb == nil || len(pts) < 3 {
		return nil
	}

	verts := make([]rasterVertex, len(pts))
	for i, p := range pts {
		verts[i] = rasterVertex{X: p.X, Y: p.Y, Depth: depths[i], W: 1}
		verts[i].Attr[attrIntensity] = float64(intensities[i]) / 255
	}
	sh := &faceShader{mode: ModeGouraud, base: ColorWhite}
	fillPolygon(fb, verts, sh)
	return nil
}
