// Package fbview paints a rendered framebuffer into a terminal as truecolor
// half blocks: each character cell shows two vertically stacked pixels via
// the upper-half-block glyph, foreground on top, background below. Pixels
// come out of the target through ReadPixel, so a tiled buffer is decoded by
// the same inverse address math the renderer blends through.
package fbview

import (
	"github.com/gdamore/tcell/v2"

	"thumbgrid/internal/render"
)

const halfBlock = '▀'

// Draw samples the target into the screen region rows y0..y1 (exclusive),
// using the full screen width. The framebuffer is point-sampled with a
// uniform scale that fits it into the region while keeping the pixel aspect
// ratio; unused terminal area stays untouched.
func Draw(s tcell.Screen, t *render.Target, y0, y1 int) {
	if s == nil || t == nil || y1 <= y0 {
		return
	}
	termW, _ := s.Size()
	if termW <= 0 {
		return
	}

	fbW := int(t.Width)
	fbH := int(t.Height)
	cols := termW
	rows := y1 - y0

	// Source pixels per terminal column and per half-block row.
	sx := (fbW + cols - 1) / cols
	sy := (fbH + 2*rows - 1) / (2 * rows)
	if sx < 1 {
		sx = 1
	}
	if sy < 1 {
		sy = 1
	}
	// Square-ish pixels: a character cell is about twice as tall as wide,
	// which the two stacked samples already absorb, so equalize the steps.
	if sx > sy {
		sy = sx
	} else {
		sx = sy
	}

	for cy := 0; cy < rows; cy++ {
		topY := cy * 2 * sy
		botY := topY + sy
		if topY >= fbH {
			break
		}
		for cx := 0; cx < cols; cx++ {
			px := cx * sx
			if px >= fbW {
				break
			}
			top := pixelColor(t, px, topY)
			bot := tcell.ColorBlack
			if botY < fbH {
				bot = pixelColor(t, px, botY)
			}
			style := tcell.StyleDefault.Foreground(top).Background(bot)
			s.SetContent(cx, y0+cy, halfBlock, nil, style)
		}
	}
}

// pixelColor reads one A8B8G8R8 pixel and converts it for tcell.
func pixelColor(t *render.Target, x, y int) tcell.Color {
	pix := t.ReadPixel(x, y)
	r := int32(pix & 0xFF)
	g := int32((pix >> 8) & 0xFF)
	b := int32((pix >> 16) & 0xFF)
	return tcell.NewRGBColor(r, g, b)
}
