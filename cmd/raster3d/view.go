package main

import (
	"context"
	"fmt"
	"math"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/render"
	"github.com/taigrr/raster3d/pkg/scene"
)

// viewState is the interactive state of the terminal viewer.
type viewState struct {
	scene  *scene.Scene
	fb     *render.Framebuffer
	width  int
	height int
	dist   float64
}

// resize matches the framebuffer to the terminal. Each cell holds two
// pixel rows.
func (v *viewState) resize(width, height int) error {
	fb, err := render.NewFramebuffer(max(width, 1), max(height, 1)*2, 3, true)
	if err != nil {
		return err
	}
	v.fb, v.width, v.height = fb, width, height

	cam := v.scene.Camera
	cam.Aspect = float64(fb.Width) / float64(fb.Height)
	if _, ok := v.scene.Projection.(*render.PerspectiveProjection); ok {
		v.scene.Projection = cam.Projection()
	}
	return nil
}

func (v *viewState) zoom(delta float64) {
	v.dist = math.Max(1.2, math.Min(20, v.dist+delta))
	cam := v.scene.Camera
	dir := cam.Eye.Sub(cam.Target).Normalize()
	if dir == (math3d.Vec3{}) {
		dir = math3d.V3(0, 0, 1)
	}
	cam.Eye = cam.Target.Add(dir.Scale(v.dist))
}

// tilt orbits the camera vertically around its target.
func (v *viewState) tilt(pitch float64) {
	v.scene.Camera.Orbit(0, pitch)
}

func (v *viewState) cycleMode() {
	v.scene.Mode = (v.scene.Mode + 1) % (render.ModePhong + 1)
}

func (v *viewState) toggleFill() {
	if v.scene.Options.Fill == render.FillTriangles {
		v.scene.Options.Fill = render.FillScanline
	} else {
		v.scene.Options.Fill = render.FillTriangles
	}
}

func runView(ctx context.Context, s *scene.Scene, fps int) error {
	fps = max(fps, 1)
	// log lines would tear the alternate screen
	render.SetLogger(nil)
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	v := &viewState{scene: s, dist: s.Camera.Eye.Sub(s.Camera.Target).Len()}
	if err := v.resize(width, height); err != nil {
		return err
	}

	turntable := scene.NewTurntable(fps, 2*math.Pi/float64(fps*6))
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				term.Erase()
				term.Resize(ev.Width, ev.Height)
				if err := v.resize(ev.Width, ev.Height); err != nil {
					return err
				}
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					return nil
				case ev.MatchString("space"):
					turntable.Nudge(0.15)
				case ev.MatchString("m"):
					v.cycleMode()
				case ev.MatchString("f"):
					v.toggleFill()
				case ev.MatchString("x"):
					s.Wireframe = !s.Wireframe
				case ev.MatchString("+", "="):
					v.zoom(-0.5)
				case ev.MatchString("-", "_"):
					v.zoom(0.5)
				case ev.MatchString("up", "k"):
					v.tilt(0.1)
				case ev.MatchString("down", "j"):
					v.tilt(-0.1)
				}
			}

		case <-ticker.C:
			if _, err := s.Draw(v.fb, turntable.Advance()); err != nil {
				return err
			}
			v.fb.Draw(term, uv.Rect(0, 0, v.width, v.height))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
