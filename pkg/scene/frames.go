package scene

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/harmonica"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/raster3d/pkg/render"
)

// Turntable eases a model around the Y axis. The target advances by a
// fixed step each frame and the angle follows it on a critically damped
// spring, so motion starts gently and settles into a steady spin.
type Turntable struct {
	Angle    float64
	velocity float64
	target   float64
	step     float64
	spring   harmonica.Spring
}

// NewTurntable creates a turntable that advances step radians per frame at
// the given frame rate.
func NewTurntable(fps int, step float64) *Turntable {
	return &Turntable{
		step:   step,
		spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 6.0, 1.0),
	}
}

// Advance moves one frame forward and returns the new angle.
func (t *Turntable) Advance() float64 {
	t.target += t.step
	t.Angle, t.velocity = t.spring.Update(t.Angle, t.velocity, t.target)
	return t.Angle
}

// Nudge adds an impulse to the spin, in radians per frame.
func (t *Turntable) Nudge(v float64) {
	t.velocity += v
}

// Angles returns the angles of n frames covering one full turn. The
// first frame is the rest pose and the last sits one even step short of
// a full turn, so a looped sequence does not jump. The turntable's eased
// start is kept by scaling its curve onto that range.
func Angles(n, fps int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	tt := NewTurntable(fps, 2*math.Pi/float64(n))
	for i := 1; i < n; i++ {
		out[i] = tt.Advance()
	}

	last := out[n-1]
	if !(last > 0) {
		return out
	}
	scale := 2 * math.Pi * float64(n-1) / float64(n) / last
	for i := range out {
		out[i] *= scale
	}
	return out
}

// FrameOptions size the framebuffers of RenderFrames.
type FrameOptions struct {
	Frames   int
	Workers  int
	Width    int
	Height   int
	Channels int
	FPS      int
}

// RenderFrames draws a turntable sequence concurrently. Each frame gets
// its own framebuffer and is handed to emit, which may be called from
// several goroutines at once. At most Workers frames are in flight; the
// first error stops the rest.
func (s *Scene) RenderFrames(ctx context.Context, opts FrameOptions, emit func(i int, fb *render.Framebuffer) error) error {
	angles := Angles(opts.Frames, opts.FPS)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, angle := range angles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fb, err := render.NewFramebuffer(opts.Width, opts.Height, opts.Channels, true)
			if err != nil {
				return err
			}
			stats, err := s.Draw(fb, angle)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			render.Logger().Debug("frame rendered", "frame", i, "angle", angle, "pixels", stats.Pixels)
			return emit(i, fb)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// FramePath numbers path for frame i of n: "out.png" becomes "out_007.png".
// A single frame keeps path unchanged.
func FramePath(path string, i, n int) string {
	if n <= 1 {
		return path
	}
	digits := len(fmt.Sprint(n - 1))
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%0*d%s", strings.TrimSuffix(path, ext), max(digits, 3), i, ext)
}
