// raster3d - CPU software rasterizer
// Renders polygon meshes to image files or straight to the terminal with
// flat, Gouraud or Phong shading.
//
// Terminal controls (-view):
//
//	Space  - Spin faster
//	M      - Cycle shading mode
//	F      - Toggle triangle/scanline fill
//	X      - Toggle wireframe
//	+/-    - Zoom
//	Up/Down - Tilt camera
//	Esc/Q  - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/raster3d/internal/config"
	"github.com/taigrr/raster3d/pkg/imageio"
	"github.com/taigrr/raster3d/pkg/render"
	"github.com/taigrr/raster3d/pkg/scene"
)

var (
	configPath = flag.String("config", "", "Path to a JSON or YAML config file")
	outputPath = flag.String("o", "", "Output image (png, jpg, webp, bmp, tiff, ppm, tga)")
	modeFlag   = flag.String("mode", "", "Shading mode: flat, gouraud or phong")
	fillFlag   = flag.String("fill", "", "Fill strategy: triangles or scanline")
	wireFlag   = flag.Bool("wire", false, "Draw face outlines")
	sizeFlag   = flag.String("size", "", "Output size as WxH")
	texFlag    = flag.String("texture", "", "Texture image path, \"checker\" or \"none\"")
	meshFlag   = flag.String("mesh", "", "Primitive (icosphere, uvsphere, cube, cubesphere, grid, wave) or .glb path")
	framesFlag = flag.Int("frames", 0, "Number of turntable frames")
	workers    = flag.Int("workers", 0, "Frames rendered in parallel")
	quality    = flag.Int("quality", 0, "JPEG quality (1-100)")
	view       = flag.Bool("view", false, "Render interactively in the terminal")
	targetFPS  = flag.Int("fps", 30, "Target FPS for -view and turntable easing")
	convertDir = flag.String("convert", "", "Convert every PPM/PGM in a directory and exit")
	convertTo  = flag.String("to", "png", "Target format for -convert")
	deleteSrc  = flag.Bool("delete", false, "Delete PPM sources after -convert")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "raster3d - CPU software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: raster3d [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *convertDir != "" {
		to, err := imageio.ExtToFormat(*convertTo)
		if err != nil {
			return err
		}
		written, err := imageio.ConvertDir(*convertDir, to, *deleteSrc, imageio.Options{Quality: *quality})
		if err != nil {
			return err
		}
		render.Logger().Info("conversion done", "files", len(written))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	if *view {
		return runView(ctx, s, *targetFPS)
	}
	return renderToFiles(ctx, s, cfg)
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	flags := config.Flags{
		Output:    *outputPath,
		Mode:      *modeFlag,
		Fill:      *fillFlag,
		Wireframe: *wireFlag,
		Texture:   *texFlag,
		Mesh:      *meshFlag,
		Frames:    *framesFlag,
		Workers:   *workers,
		Quality:   *quality,
	}
	if *sizeFlag != "" {
		if _, err := fmt.Sscanf(*sizeFlag, "%dx%d", &flags.Width, &flags.Height); err != nil {
			return cfg, fmt.Errorf("%w: size %q: want WxH", config.ErrInvalid, *sizeFlag)
		}
	}
	cfg.Resolve(flags)
	return cfg, cfg.Validate()
}

func renderToFiles(ctx context.Context, s *scene.Scene, cfg config.Config) error {
	opts := scene.FrameOptions{
		Frames:   cfg.Frames,
		Workers:  cfg.Workers,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Channels: cfg.Channels,
		FPS:      *targetFPS,
	}
	save := imageio.Options{Quality: cfg.Quality}

	return s.RenderFrames(ctx, opts, func(i int, fb *render.Framebuffer) error {
		path := scene.FramePath(cfg.Output, i, cfg.Frames)
		img := imageio.Upscale(fb.ToImage(), cfg.Upscale)
		if err := imageio.Save(path, img, save); err != nil {
			return err
		}
		render.Logger().Info("saved", "path", path, "frame", i)
		return nil
	})
}
