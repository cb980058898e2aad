package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
)

// ErrInvalidPPM is returned for malformed or unsupported PNM data.
var ErrInvalidPPM = errors.New("invalid ppm")

// maxPPMPixels caps the decoded image size at 256 megapixels.
const maxPPMPixels = 1 << 28

func init() {
	image.RegisterFormat("ppm", "P6", DecodePPM, DecodePPMConfig)
	image.RegisterFormat("pgm", "P5", DecodePPM, DecodePPMConfig)
}

// EncodePPM writes img as binary PNM: P5 for *image.Gray, P6 otherwise.
// Alpha is dropped.
func EncodePPM(w io.Writer, img image.Image) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)

	if gray, ok := img.(*image.Gray); ok {
		fmt.Fprintf(bw, "P5\n%d %d\n255\n", b.Dx(), b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := gray.PixOffset(b.Min.X, y)
			if _, err := bw.Write(gray.Pix[off : off+b.Dx()]); err != nil {
				return err
			}
		}
		return bw.Flush()
	}

	fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if _, err := bw.Write([]byte{c.R, c.G, c.B}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

type ppmHeader struct {
	magic         string
	width, height int
	maxVal        int
}

// readHeader parses "P5"/"P6", width, height and maxval, skipping
// whitespace and # comments, then consumes the single separator byte.
func readHeader(br *bufio.Reader) (ppmHeader, error) {
	var fields [4]string
	for i := range fields {
		tok, err := readToken(br)
		if err != nil {
			return ppmHeader{}, fmt.Errorf("%w: header: %w", ErrInvalidPPM, err)
		}
		fields[i] = tok
	}

	h := ppmHeader{magic: fields[0]}
	if h.magic != "P5" && h.magic != "P6" {
		return h, fmt.Errorf("%w: unsupported magic %q", ErrInvalidPPM, h.magic)
	}
	dims := [3]*int{&h.width, &h.height, &h.maxVal}
	for i, dst := range dims {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return h, fmt.Errorf("%w: %q is not a number", ErrInvalidPPM, fields[i+1])
		}
		*dst = v
	}
	if h.width <= 0 || h.height <= 0 || h.width > maxPPMPixels/h.height {
		return h, fmt.Errorf("%w: size %dx%d", ErrInvalidPPM, h.width, h.height)
	}
	if h.maxVal <= 0 || h.maxVal > 255 {
		return h, fmt.Errorf("%w: maxval %d", ErrInvalidPPM, h.maxVal)
	}
	return h, nil
}

func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case c == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

// DecodePPMConfig returns the dimensions and color model of a P5 or P6
// stream.
func DecodePPMConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	model := color.RGBAModel
	if h.magic == "P5" {
		model = color.GrayModel
	}
	return image.Config{ColorModel: model, Width: h.width, Height: h.height}, nil
}

// DecodePPM reads a binary P5 (*image.Gray) or P6 (*image.RGBA) image.
// Samples are rescaled to 0-255 when maxval is smaller.
func DecodePPM(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, h.width, h.height)
	channels := 3
	if h.magic == "P5" {
		channels = 1
	}
	raw := make([]byte, h.width*h.height*channels)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("%w: pixel data: %w", ErrInvalidPPM, err)
	}
	if h.maxVal != 255 {
		for i, v := range raw {
			raw[i] = uint8(min(255, int(v)*255/h.maxVal))
		}
	}

	if channels == 1 {
		img := image.NewGray(rect)
		copy(img.Pix, raw)
		return img, nil
	}
	img := image.NewRGBA(rect)
	for i, j := 0, 0; i < len(raw); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = raw[i], raw[i+1], raw[i+2], 255
	}
	return img, nil
}
