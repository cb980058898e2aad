package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer onto a terminal screen. Each cell shows two
// framebuffer rows with an upper half block: foreground is the top pixel
// and background the bottom one, so the framebuffer should be twice as
// tall as area.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		top := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.Get(x, top)),
					Bg: cellColor(fb.Get(x, top+1)),
				},
			})
		}
	}
}

// cellColor maps fully transparent pixels to the terminal default.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an 8-bit RGBA color.
type Color = color.RGBA

var (
	ColorBlack   = Color{R: 0, G: 0, B: 0, A: 255}
	ColorWhite   = Color{R: 255, G: 255, B: 255, A: 255}
	ColorMagenta = Color{R: 255, G: 0, B: 255, A: 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}
