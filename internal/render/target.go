// Package render draws the keyboard widget directly into console
// framebuffers. Targets may be linear or hardware macro-tiled; all
// primitives take the tiling into account and batch tiled writes in
// 8-pixel spans where alignment allows. Pixels are 32-bit A8B8G8R8.
package render

// TilingMode is the surface memory layout, matching the video-out buffer
// attribute values.
type TilingMode int32

const (
	TilingTile   TilingMode = 0 // 2D macro-tiled (the console default)
	TilingLinear TilingMode = 1
)

// RGB packs a color as A8B8G8R8 with full alpha.
func RGB(r, g, b uint8) uint32 {
	return 0xFF000000 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// BufferLen returns the required Pix length for a surface. Tiled surfaces
// round the height up to the 64-pixel macro-tile row so partial macro rows
// stay addressable.
func BufferLen(tiling TilingMode, pitch, height uint32) int {
	if tiling == TilingTile {
		height = (height + 63) &^ 63
	}
	return int(pitch) * int(height)
}

// Target is one drawable surface. It never owns Pix; the caller maps or
// allocates the backing memory (see BufferLen) and chooses the geometry.
type Target struct {
	Pix    []uint32
	Width  uint32
	Height uint32
	Pitch  uint32
	Tiling TilingMode

	// Opaque forces alpha fills to draw fully opaque. Set when re-drawing
	// over a frame that already carries the widget, so translucent fills
	// do not compound.
	Opaque bool
}

// PutPixel writes one pixel, ignoring out-of-bounds coordinates.
func (t *Target) PutPixel(x, y int, color uint32) {
	if x < 0 || y < 0 || uint32(x) >= t.Width || uint32(y) >= t.Height {
		return
	}
	if t.Tiling == TilingTile {
		t.Pix[TiledOffset(uint32(x), uint32(y), t.Pitch)] = color
	} else {
		t.Pix[uint32(y)*t.Pitch+uint32(x)] = color
	}
}

// ReadPixel returns the pixel at (x, y), or 0 out of bounds. It is the
// exact inverse of PutPixel in either tiling mode.
func (t *Target) ReadPixel(x, y int) uint32 {
	if x < 0 || y < 0 || uint32(x) >= t.Width || uint32(y) >= t.Height {
		return 0
	}
	if t.Tiling == TilingTile {
		return t.Pix[TiledOffset(uint32(x), uint32(y), t.Pitch)]
	}
	return t.Pix[uint32(y)*t.Pitch+uint32(x)]
}

// BlendPixel writes color at (x, y) blended over the existing pixel with
// the given alpha.
func (t *Target) BlendPixel(x, y int, color uint32, alpha uint8) {
	if alpha == 255 {
		t.PutPixel(x, y, color)
		return
	}
	if alpha == 0 {
		return
	}

	bg := t.ReadPixel(x, y)

	sr := color & 0xFF
	sg := (color >> 8) & 0xFF
	sb := (color >> 16) & 0xFF

	dr := bg & 0xFF
	dg := (bg >> 8) & 0xFF
	db := (bg >> 16) & 0xFF

	a := uint32(alpha)
	inv := 255 - a

	rr := (sr*a + dr*inv) / 255
	rg := (sg*a + dg*inv) / 255
	rb := (sb*a + db*inv) / 255

	t.PutPixel(x, y, 0xFF000000|rb<<16|rg<<8|rr)
}

// FillRect fills a rectangle, clamped to the surface. Tiled targets batch
// interior writes in aligned 8-pixel spans and fall back to per-pixel
// writes only at the unaligned edges.
func (t *Target) FillRect(x, y, w, h int, color uint32) {
	x0, y0 := x, y
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	x1, y1 := x+w, y+h
	if uint32(x1) > t.Width {
		x1 = int(t.Width)
	}
	if uint32(y1) > t.Height {
		y1 = int(t.Height)
	}
	if x0 >= x1 || y0 >= y1 {
		return
	}

	if t.Tiling != TilingTile {
		for row := y0; row < y1; row++ {
			dst := t.Pix[uint32(row)*t.Pitch+uint32(x0) : uint32(row)*t.Pitch+uint32(x1)]
			for i := range dst {
				dst[i] = color
			}
		}
		return
	}

	mtRow := t.Pitch >> 7
	for row := y0; row < y1; row++ {
		uy := uint32(row)
		pixY := microRowBits(uy & 7)
		mtY := uy >> 6

		col := x0
		for col < x1 && col&7 != 0 {
			t.PutPixel(col, row, color)
			col++
		}
		for col+8 <= x1 {
			base := spanOffset(uint32(col), uy, pixY, mtY, mtRow)
			t.Pix[base+0] = color
			t.Pix[base+1] = color
			t.Pix[base+2] = color
			t.Pix[base+3] = color
			t.Pix[base+8] = color
			t.Pix[base+9] = color
			t.Pix[base+10] = color
			t.Pix[base+11] = color
			col += 8
		}
		for col < x1 {
			t.PutPixel(col, row, color)
			col++
		}
	}
}

// FillRectAlpha fills a rectangle blended with alpha. Full alpha, or a
// target in opaque mode, takes the solid fast path.
func (t *Target) FillRectAlpha(x, y, w, h int, color uint32, alpha uint8) {
	if alpha == 255 || t.Opaque {
		t.FillRect(x, y, w, h, color)
		return
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			t.BlendPixel(col, row, color, alpha)
		}
	}
}
