package imageio

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/taigrr/raster3d/pkg/render"
)

// ConvertDir re-encodes every .ppm and .pgm file in dir to the given
// format, writing alongside the source with the new extension. With
// removeSrc set each source is deleted after a successful conversion.
// Failures are logged and skipped; the returned paths are the files
// written.
func ConvertDir(dir string, to Format, removeSrc bool, opts Options) ([]string, error) {
	if to == None || to == PPM {
		return nil, fmt.Errorf("imageio: convert to %v: %w", to, ErrUnknownFormat)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("imageio: read dir %s: %w", dir, err)
	}

	var written []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ppm" && ext != ".pgm" {
			continue
		}

		src := filepath.Join(dir, e.Name())
		dst := strings.TrimSuffix(src, filepath.Ext(src)) + "." + extFor(to)
		if err := convertFile(src, dst, opts); err != nil {
			render.Logger().Warn("convert failed", "src", src, "err", err)
			continue
		}
		written = append(written, dst)
		render.Logger().Info("converted", "src", src, "dst", dst)

		if removeSrc {
			if err := os.Remove(src); err != nil {
				render.Logger().Warn("remove failed", "src", src, "err", err)
			}
		}
	}
	slices.Sort(written)
	return written, nil
}

func convertFile(src, dst string, opts Options) error {
	img, _, err := Open(src)
	if err != nil {
		return err
	}
	return Save(dst, img, opts)
}

func extFor(f Format) string {
	if f == JPEG {
		return "jpg"
	}
	return f.String()
}
