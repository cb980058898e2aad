// Package imageio reads and writes rendered frames and texture images,
// choosing the codec from the file extension.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Format is an image file format.
type Format int

const (
	None Format = iota
	PNG
	JPEG
	BMP
	TIFF
	WebP
	PPM
	TGA
)

var formatNames = [...]string{"none", "png", "jpeg", "bmp", "tiff", "webp", "ppm", "tga"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ErrUnknownFormat is returned for extensions no codec handles.
var ErrUnknownFormat = errors.New("unknown image format")

// ExtToFormat returns the Format for a file extension, with or without
// the leading dot.
func ExtToFormat(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "webp":
		return WebP, nil
	case "ppm", "pgm", "pnm":
		return PPM, nil
	case "tga":
		return TGA, nil
	}
	return None, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

// Options control encoding.
type Options struct {
	Quality int // JPEG quality, 1-100; 0 selects 90
}

// Open decodes the image at path. Known extensions use their codec
// directly; anything else is sniffed by image.Decode.
func Open(path string) (image.Image, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, None, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	format, err := ExtToFormat(filepath.Ext(path))
	if err != nil {
		img, name, derr := image.Decode(bufio.NewReader(f))
		if derr != nil {
			return nil, None, fmt.Errorf("imageio: decode %s: %w", path, derr)
		}
		format, _ = ExtToFormat(name)
		return img, format, nil
	}

	img, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return nil, None, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return img, format, nil
}

// Read decodes r as the given format.
func Read(r io.Reader, format Format) (image.Image, error) {
	switch format {
	case PNG:
		return png.Decode(r)
	case JPEG:
		return jpeg.Decode(r)
	case BMP:
		return bmp.Decode(r)
	case TIFF:
		return tiff.Decode(r)
	case WebP:
		return webp.Decode(r)
	case PPM:
		return DecodePPM(r)
	case TGA:
		return tga.Decode(r)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// Save encodes img to path in the format implied by its extension.
func Save(path string, img image.Image, opts Options) error {
	format, err := ExtToFormat(filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("imageio: save %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, img, format, opts); err != nil {
		f.Close()
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	return f.Close()
}

// Write encodes img to w.
func Write(w io.Writer, img image.Image, format Format, opts Options) error {
	switch format {
	case PNG:
		return imgio.PNGEncoder()(w, img)
	case JPEG:
		q := opts.Quality
		if q <= 0 {
			q = 90
		}
		return imgio.JPEGEncoder(min(q, 100))(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case WebP:
		return nativewebp.Encode(w, img, nil)
	case PPM:
		return EncodePPM(w, img)
	case TGA:
		return tga.Encode(w, img)
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// Upscale enlarges img by an integer factor with nearest-neighbor
// sampling, keeping pixels crisp. Factors below 2 return img unchanged.
func Upscale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	return transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor)
}
