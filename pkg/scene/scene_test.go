package scene

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/raster3d/internal/config"
	"github.com/taigrr/raster3d/pkg/imageio"
	"github.com/taigrr/raster3d/pkg/render"
)

func testConfig(modify func(*config.Config)) config.Config {
	cfg := config.Config{Width: 64, Height: 64, Background: [3]uint8{255, 0, 255}}
	if modify != nil {
		modify(&cfg)
	}
	cfg.Resolve(config.Flags{Workers: 2})
	return cfg
}

func newFramebuffer(t *testing.T) *render.Framebuffer {
	t.Helper()
	fb, err := render.NewFramebuffer(64, 64, 3, true)
	require.NoError(t, err)
	return fb
}

func TestBuildDefaults(t *testing.T) {
	s, err := Build(testConfig(nil))
	require.NoError(t, err)

	assert.Equal(t, "icosphere", s.Mesh.Name)
	assert.Equal(t, render.ModePhong, s.Mode)
	assert.Nil(t, s.Texture)
	assert.True(t, s.Options.PerspectiveCorrect)
	assert.IsType(t, &render.PerspectiveProjection{}, s.Projection)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := Build(testConfig(func(c *config.Config) { c.Mode = "toon" }))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestBuildMeshKinds(t *testing.T) {
	kinds := []string{
		config.MeshUVSphere, config.MeshIcosphere, config.MeshCube,
		config.MeshCubeSphere, config.MeshGrid, config.MeshWave,
	}
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			s, err := Build(testConfig(func(c *config.Config) {
				c.Mesh.Kind = kind
				c.Mesh.Detail = 1
				c.Rotation = [3]float64{30, 20, 0}
			}))
			require.NoError(t, err)
			assert.NoError(t, s.Mesh.Validate())

			_, err = s.Draw(newFramebuffer(t), 0)
			assert.NoError(t, err)
		})
	}
}

func TestBuildMissingModel(t *testing.T) {
	_, err := Build(testConfig(func(c *config.Config) {
		c.Mesh.Kind = config.MeshGLTF
		c.Mesh.Path = filepath.Join(t.TempDir(), "missing.glb")
	}))
	assert.ErrorContains(t, err, "load model")
}

func TestBuildTextures(t *testing.T) {
	s, err := Build(testConfig(func(c *config.Config) { c.Texture = "checker" }))
	require.NoError(t, err)
	require.NotNil(t, s.Texture)
	assert.Equal(t, 256, s.Texture.Width)

	path := filepath.Join(t.TempDir(), "tex.ppm")
	src := render.NewCheckerTexture(8, 4, 2, render.ColorWhite, render.ColorBlack)
	fb, err := render.NewFramebuffer(8, 4, 3, false)
	require.NoError(t, err)
	for y := range 4 {
		for x := range 8 {
			fb.Set(x, y, src.GetPixel(x, y))
		}
	}
	require.NoError(t, imageio.Save(path, fb.ToImage(), imageio.Options{}))

	s, err = Build(testConfig(func(c *config.Config) { c.Texture = path }))
	require.NoError(t, err)
	require.NotNil(t, s.Texture)
	assert.Equal(t, 8, s.Texture.Width)
	assert.Equal(t, src.Pixels, s.Texture.Pixels)

	_, err = Build(testConfig(func(c *config.Config) { c.Texture = filepath.Join(t.TempDir(), "nope.png") }))
	assert.ErrorContains(t, err, "load texture")
}

func TestDrawCoversCenter(t *testing.T) {
	s, err := Build(testConfig(nil))
	require.NoError(t, err)
	fb := newFramebuffer(t)

	stats, err := s.Draw(fb, 0.3)
	require.NoError(t, err)
	assert.Positive(t, stats.Drawn)
	assert.Positive(t, stats.Culled, "the far side of the sphere faces away")
	assert.NotEqual(t, render.ColorMagenta, fb.Get(32, 32))
	assert.Equal(t, render.ColorMagenta, fb.Get(0, 0), "corners show the background")
}

func TestDrawOrthographicWireframe(t *testing.T) {
	s, err := Build(testConfig(func(c *config.Config) {
		c.Projection.Kind = "orthographic"
		c.Mesh.Kind = config.MeshCube
		c.Wireframe = true
		c.WireColor = &[3]uint8{0, 255, 0}
		c.Rotation = [3]float64{25, 35, 0}
	}))
	require.NoError(t, err)
	assert.False(t, s.Options.PerspectiveCorrect)

	fb := newFramebuffer(t)
	_, err = s.Draw(fb, 0)
	require.NoError(t, err)

	green := 0
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.Get(x, y) == render.RGB(0, 255, 0) {
				green++
			}
		}
	}
	assert.Positive(t, green, "outline pixels")
}

func TestDrawLeavesSceneMeshUntouched(t *testing.T) {
	s, err := Build(testConfig(nil))
	require.NoError(t, err)
	before := s.Mesh.Vertices[0].Position

	_, err = s.Draw(newFramebuffer(t), 1.2)
	require.NoError(t, err)
	assert.Equal(t, before, s.Mesh.Vertices[0].Position)
}

func TestRenderFrames(t *testing.T) {
	s, err := Build(testConfig(nil))
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[int]bool{}
	err = s.RenderFrames(context.Background(), FrameOptions{
		Frames: 6, Workers: 3, Width: 32, Height: 32, Channels: 3, FPS: 24,
	}, func(i int, fb *render.Framebuffer) error {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = true
		assert.Equal(t, 32, fb.Width)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 6)
}

func TestRenderFramesStopsOnError(t *testing.T) {
	s, err := Build(testConfig(nil))
	require.NoError(t, err)

	err = s.RenderFrames(context.Background(), FrameOptions{
		Frames: 4, Workers: 1, Width: 16, Height: 16, Channels: 1,
	}, func(i int, fb *render.Framebuffer) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRenderFramesCanceled(t *testing.T) {
	s, err := Build(testConfig(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.RenderFrames(ctx, FrameOptions{Frames: 3, Width: 16, Height: 16, Channels: 3},
		func(int, *render.Framebuffer) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAngles(t *testing.T) {
	for _, n := range []int{2, 12, 36} {
		angles := Angles(n, 30)
		require.Len(t, angles, n)
		assert.Zero(t, angles[0])
		for i := 1; i < n; i++ {
			assert.Greater(t, angles[i], angles[i-1], "n=%d frame %d", n, i)
		}
		want := 2 * math.Pi * float64(n-1) / float64(n)
		assert.InDelta(t, want, angles[n-1], 1e-9, "n=%d ends one step short of a full turn", n)
	}
	assert.Equal(t, []float64{0}, Angles(1, 30))
	assert.Nil(t, Angles(0, 24))
}

func TestFramePath(t *testing.T) {
	assert.Equal(t, "out.png", FramePath("out.png", 0, 1))
	assert.Equal(t, "out_007.png", FramePath("out.png", 7, 12))
	assert.Equal(t, "dir/spin_0042.webp", FramePath("dir/spin.webp", 42, 1200))
}
