package render

import (
	"fmt"

	"thumbgrid/internal/charset"
	"thumbgrid/internal/grid"
	"thumbgrid/internal/session"
)

// Console dark palette, A8B8G8R8.
var (
	colBGDim       = RGB(58, 58, 58)
	colBorder      = RGB(30, 30, 30)
	colBorderSel   = RGB(200, 200, 200)
	colText        = RGB(200, 200, 200)
	colTextHi      = RGB(255, 255, 255)
	colTextSpecial = RGB(0, 186, 177)
	colTextBuf     = RGB(255, 255, 255)
	colBGBar       = RGB(20, 20, 20)
	colCursor      = RGB(0, 186, 177)
	colTitle       = RGB(160, 160, 160)
	colSelectBG    = RGB(40, 80, 120)
)

// DrawOverlay paints the complete widget into the target: title bar, text
// bar with cursor and selection tint, the 3x3 grid, and the status bar.
// There is no full backdrop fill; each bar and cell fills its own region,
// so the screen behind the widget stays visible between them.
func DrawOverlay(t *Target, g *grid.Grid, s *session.Session) {
	if t == nil || g == nil || s == nil {
		return
	}
	if t.Width == 0 || t.Height == 0 {
		return
	}

	baseX, baseY := g.Origin(int(t.Width), int(t.Height))
	page := g.Page()

	// Title bar. The buffer is UTF-16; the 8x8 font covers ASCII, so
	// anything above it renders as '?'.
	curY := baseY + 4
	if title := g.Title(); len(title) > 0 {
		ascii := make([]byte, len(title))
		for i, u := range title {
			if u < 128 {
				ascii[i] = byte(u)
			} else {
				ascii[i] = '?'
			}
		}
		t.DrawText(baseX+8, curY+10, string(ascii), colTitle, colBorder)
	}
	curY += grid.TitleBarH

	// Text display bar.
	textY := curY
	gridStartX := baseX + (grid.TotalW-grid.GridW)/2

	_, _, selectedAll := s.Selection()
	textBG := colBGBar
	if selectedAll {
		textBG = colSelectBG
	}
	t.FillRect(baseX+4, textY, grid.TotalW-8, grid.TextBarH, textBG)

	text := s.Text()
	tlen := len(text)
	cursor := s.Cursor()
	if cursor > tlen {
		cursor = tlen
	}

	// Scrolling window: 16 px per glyph at 2x, as many as fit in the bar.
	displayMax := (grid.TotalW - 48) / 16
	start := 0
	if cursor > displayMax {
		start = cursor - displayMax
	}
	end := tlen
	if end > start+displayMax {
		end = start + displayMax
	}

	textCharY := textY + (grid.TextBarH-16)/2
	t.DrawChar2x(baseX+8, textCharY, '>', colTextSpecial, textBG)

	tx := baseX + 32
	for i := start; i < end; i++ {
		if i == cursor {
			t.FillRect(tx, textY+4, 2, grid.TextBarH-8, colCursor)
			tx += 4
		}
		ch := text[i]
		t.DrawChar2x(tx, textCharY, charset.BaseLetter(ch), colTextBuf, textBG)
		if charset.IsAccented(ch) {
			accentMark2x(t, tx, textCharY, colTextSpecial)
		}
		tx += 16
	}
	if cursor >= end {
		t.FillRect(tx, textY+4, 2, grid.TextBarH-8, colCursor)
	}

	// Grid cells.
	gridY := textY + grid.TextBarH + 2
	for cell := 0; cell < charset.Cells; cell++ {
		row := cell / 3
		col := cell % 3
		cx := gridStartX + 1 + col*(grid.CellW+1)
		cy := gridY + 1 + row*(grid.CellH+1)
		selected := cell == g.SelectedCell

		t.FillRect(cx, cy, grid.CellW, grid.CellH, colBGDim)
		if selected {
			cellBorder(t, cx, cy, grid.CellW, grid.CellH, colBorderSel)
		}
		for btn := 0; btn < charset.ButtonsPerCell; btn++ {
			cellChar(t, cx, cy, btn, page.Chars[cell][btn], selected, g.AccentMode)
		}
	}

	// Status bar.
	pageY := gridY + grid.GridH + 2
	t.FillRect(baseX+4, pageY, grid.TotalW-8, grid.PageBarH, colBGBar)

	var status string
	if g.AccentMode {
		status = fmt.Sprintf("[%s] ACC  L3:a'  L2:shift  R2:done", page.Name)
	} else {
		status = fmt.Sprintf("[%s]  L3:a'  L2:shift  R2:done", page.Name)
	}
	t.DrawText(baseX+8, pageY+9, status, colText, colBGBar)
}

func cellBorder(t *Target, x, y, w, h int, color uint32) {
	t.FillRect(x, y, w, 2, color)
	t.FillRect(x, y+h-2, w, 2, color)
	t.FillRect(x, y, 2, h, color)
	t.FillRect(x+w-2, y, 2, h, color)
}

// cellChar draws one button glyph at its position within a cell: Triangle
// top-center, Circle right-middle, Cross bottom-center, Square left-middle.
// Special sentinels render their label in the accent color.
func cellChar(t *Target, cellX, cellY, btn int, ch byte, selected, accentMode bool) {
	spec := charset.IsSpecial(ch)
	cw := 16
	if spec {
		cw = 32
	}

	var ox, oy int
	switch btn {
	case charset.BtnTriangle:
		ox, oy = grid.CellW/2-cw/2, 10
	case charset.BtnCircle:
		ox, oy = grid.CellW-cw-12, grid.CellH/2-8
	case charset.BtnCross:
		ox, oy = grid.CellW/2-cw/2, grid.CellH-26
	case charset.BtnSquare:
		ox, oy = 12, grid.CellH/2-8
	default:
		return
	}

	px := cellX + ox
	py := cellY + oy

	fg := colText
	if spec {
		fg = colTextSpecial
	} else if selected {
		fg = colTextHi
	}

	if spec {
		t.DrawText2x(px, py, charset.Label(ch), fg, colBGDim)
		return
	}
	t.DrawChar2x(px, py, ch, fg, colBGDim)
	if accentMode && charset.IsAccentable(ch) {
		accentMark2x(t, px, py, colTextSpecial)
	}
}

// accentMark2x draws the acute mark as a 2 px diagonal above a 16x16 glyph.
func accentMark2x(t *Target, px, py int, color uint32) {
	t.PutPixel(px+11, py-3, color)
	t.PutPixel(px+12, py-3, color)
	t.PutPixel(px+9, py-2, color)
	t.PutPixel(px+10, py-2, color)
	t.PutPixel(px+7, py-1, color)
	t.PutPixel(px+8, py-1, color)
}
