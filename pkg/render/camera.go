package render

import (
	"math"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// Projector maps a camera-space point to normalized device coordinates.
// It reports false for points it cannot project, such as points behind
// the near plane; faces touching such points are skipped.
type Projector interface {
	Project(p math3d.Vec3) (math3d.Vec2, bool)
}

// ProjectorFunc adapts a function to the Projector interface.
type ProjectorFunc func(p math3d.Vec3) (math3d.Vec2, bool)

// Project implements Projector.
func (f ProjectorFunc) Project(p math3d.Vec3) (math3d.Vec2, bool) {
	return f(p)
}

// PerspectiveProjection is a pinhole projection looking down -Z.
type PerspectiveProjection struct {
	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64
	Far    float64
}

// NewPerspectiveProjection creates a projection with a 60° field of view.
func NewPerspectiveProjection(aspect float64) *PerspectiveProjection {
	return &PerspectiveProjection{
		FOV:    math.Pi / 3,
		Aspect: aspect,
		Near:   0.1,
		Far:    1000,
	}
}

// Matrix returns the projection matrix.
func (p *PerspectiveProjection) Matrix() math3d.Mat4 {
	return math3d.Perspective(p.FOV, p.Aspect, p.Near, p.Far)
}

// Project implements Projector. Points nearer than Near are rejected.
func (p *PerspectiveProjection) Project(v math3d.Vec3) (math3d.Vec2, bool) {
	if -v.Z < p.Near {
		return math3d.Vec2{}, false
	}
	clip := p.Matrix().MulVec4(math3d.Point(v))
	return math3d.V2(clip.X/clip.W, clip.Y/clip.W), true
}

// OrthographicProjection drops depth and scales x and y.
type OrthographicProjection struct {
	Scale float64
}

// Project implements Projector.
func (o *OrthographicProjection) Project(v math3d.Vec3) (math3d.Vec2, bool) {
	return math3d.V2(v.X*o.Scale, v.Y*o.Scale), true
}

// Camera places the viewer in world space. Its view matrix moves world
// geometry into camera space, where the renderer works.
type Camera struct {
	Eye    math3d.Vec3
	Target math3d.Vec3
	Up     math3d.Vec3

	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64
	Far    float64
}

// NewCamera creates a camera five units up +Z looking at the origin.
func NewCamera(aspect float64) *Camera {
	return &Camera{
		Eye:    math3d.V3(0, 0, 5),
		Target: math3d.V3(0, 0, 0),
		Up:     math3d.Up(),
		FOV:    math.Pi / 3,
		Aspect: aspect,
		Near:   0.1,
		Far:    1000,
	}
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Eye, c.Target, c.Up)
}

// Projection returns the perspective projection for this camera.
func (c *Camera) Projection() *PerspectiveProjection {
	return &PerspectiveProjection{FOV: c.FOV, Aspect: c.Aspect, Near: c.Near, Far: c.Far}
}

// Orbit moves the eye around the target by yaw and pitch (radians),
// keeping its distance. Pitch is clamped short of the poles.
func (c *Camera) Orbit(yaw, pitch float64) {
	offset := c.Eye.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}

	curYaw := math.Atan2(offset.X, offset.Z)
	curPitch := math.Asin(math.Max(-1, math.Min(1, offset.Y/dist)))

	const maxPitch = math.Pi/2 - 0.01
	y := curYaw + yaw
	p := math.Max(-maxPitch, math.Min(maxPitch, curPitch+pitch))

	sinY, cosY := math.Sincos(y)
	sinP, cosP := math.Sincos(p)
	c.Eye = c.Target.Add(math3d.V3(dist*cosP*sinY, dist*sinP, dist*cosP*cosY))
}

// ndcToPixel maps NDC to pixel coordinates with y pointing down.
func ndcToPixel(p math3d.Vec2, width, height int) (x, y float64) {
	return (p.X + 1) / 2 * float64(width), (1 - (p.Y+1)/2) * float64(height)
}
