package render

// Tiled surface addressing for AMD GCN 2D macro-tiled render targets
// (ARRAY_2D_TILED_THIN1, display micro-tile mode, 32bpp), as scanned out by
// the console display controller:
//
//	numPipes        = 8   (P8_32x32_16x16)
//	numBanks        = 16
//	bankWidth       = 1
//	bankHeight      = 1
//	macroTileAspect = 2
//
// Micro-tile pixel index (8x8 block, 32bpp display order):
//
//	bit0=x[0]  bit1=x[1]  bit2=y[0]  bit3=x[2]  bit4=y[1]  bit5=y[2]
//
// Pipe (3 bits):
//
//	pipe[0] = x[3] ^ y[3] ^ x[4]
//	pipe[1] = x[4] ^ y[4]
//	pipe[2] = x[5] ^ y[5]
//
// Bank (4 bits, from tx = x/64, ty = y/8):
//
//	bank[0] = x[6] ^ y[6]
//	bank[1] = x[7] ^ y[5] ^ y[6]
//	bank[2] = x[8] ^ y[4]
//	bank[3] = x[9] ^ y[3]
//
// A macro-tile covers 128x64 pixels (8192 elements); macro-tiles advance
// row-major with pitch/128 per row. The element offset is
//
//	offset = mt<<13 | bank<<9 | pipe<<6 | pix
//
// TiledOffset is the single point of truth for this layout; the span fast
// paths reuse its pipe/bank terms per 8-pixel run.

// TiledOffset returns the element offset of pixel (x, y) in a tiled surface
// with the given pitch in pixels. Pitch must be a multiple of 128.
func TiledOffset(x, y, pitch uint32) uint32 {
	lx := x & 7
	ly := y & 7

	pix := (lx & 3) |
		((ly & 1) << 2) |
		((lx & 4) << 1) |
		((ly & 2) << 3) |
		((ly & 4) << 3)

	pipe := ((x >> 3) ^ (y >> 3) ^ (x >> 4)) & 1
	pipe |= (((x >> 4) ^ (y >> 4)) & 1) << 1
	pipe |= (((x >> 5) ^ (y >> 5)) & 1) << 2

	bank := ((x >> 6) ^ (y >> 6)) & 1
	bank |= (((x >> 7) ^ (y >> 5) ^ (y >> 6)) & 1) << 1
	bank |= (((x >> 8) ^ (y >> 4)) & 1) << 2
	bank |= (((x >> 9) ^ (y >> 3)) & 1) << 3

	mtRow := pitch >> 7
	mt := (y>>6)*mtRow + (x >> 7)

	return mt<<13 | bank<<9 | pipe<<6 | pix
}

// microRowBits returns the y-derived bits of the micro-tile pixel index for
// a row. Constant across an 8-pixel span.
func microRowBits(ly uint32) uint32 {
	return ((ly & 1) << 2) | ((ly & 2) << 3) | ((ly & 4) << 3)
}

// spanOffset returns the base element offset of the 8-pixel span starting
// at x (which must be 8-aligned) on row y. Within the span, pipe, bank and
// macro-tile are constant; the 8 pixels live at base + {0,1,2,3,8,9,10,11}.
func spanOffset(x, y, pixY, mtY, mtRow uint32) uint32 {
	pipe := ((x >> 3) ^ (y >> 3) ^ (x >> 4)) & 1
	pipe |= (((x >> 4) ^ (y >> 4)) & 1) << 1
	pipe |= (((x >> 5) ^ (y >> 5)) & 1) << 2

	bank := ((x >> 6) ^ (y >> 6)) & 1
	bank |= (((x >> 7) ^ (y >> 5) ^ (y >> 6)) & 1) << 1
	bank |= (((x >> 8) ^ (y >> 4)) & 1) << 2
	bank |= (((x >> 9) ^ (y >> 3)) & 1) << 3

	mt := mtY*mtRow + (x >> 7)

	return mt<<13 | bank<<9 | pipe<<6 | pixY
}

// spanPixels maps span-relative pixel columns 0..7 to offsets from the span
// base: the low two x bits index elements 0..3 and x[2] adds 8.
var spanPixels = [8]uint32{0, 1, 2, 3, 8, 9, 10, 11}
