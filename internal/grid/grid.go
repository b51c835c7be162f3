// Package grid implements the 3x3 cell selector driven by the analog sticks:
// which cell the left stick points at, which character page is active, and
// where the widget sits on screen. Character data comes from
// internal/charset; text state lives in internal/session.
package grid

import "thumbgrid/internal/charset"

// Widget geometry in pixels, sized for the 2x font (16x16 glyphs).
const (
	CellW     = 200
	CellH     = 110
	GridW     = CellW*3 + 4 // 604
	GridH     = CellH*3 + 4 // 334
	TitleBarH = 28
	TextBarH  = 40
	PageBarH  = 26
	TotalW    = GridW + 16                                      // 620
	TotalH    = TitleBarH + TextBarH + 2 + GridH + 2 + PageBarH + 8 // 440
)

// TitleMax is the title capacity in UTF-16 code units.
const TitleMax = 48

// Cell selection thresholds on the raw 0..255 stick axes. The dead zone
// between them maps to the middle row/column.
const (
	stickLow  = 78
	stickHigh = 178
)

// Widget movement keeps at least this many pixels of every edge on screen.
const positionMargin = 10

// Grid is the cell selector state. Fields are read directly by the renderer
// and the snapshot publisher; mutations go through the methods.
type Grid struct {
	SelectedCell int
	CurrentPage  int
	AccentMode   bool

	// Widget position offset from the default origin, moved by the right
	// stick.
	OffsetX int
	OffsetY int

	title    [TitleMax]uint16
	titleLen int
}

// New returns a grid in its initial state: center cell, lowercase page.
func New() *Grid {
	g := &Grid{}
	g.Reset()
	return g
}

// Reset restores the initial state and clears the title.
func (g *Grid) Reset() {
	g.SelectedCell = charset.CenterCell
	g.CurrentPage = 0
	g.AccentMode = false
	g.OffsetX = 0
	g.OffsetY = 0
	g.titleLen = 0
}

// SelectCell maps the left stick position to one of the 9 cells. Each axis
// splits into thirds; the wide center band means small deflections stay on
// the middle row and column.
func (g *Grid) SelectCell(stickX, stickY uint8) {
	var col, row int

	switch {
	case stickX < stickLow:
		col = 0
	case stickX > stickHigh:
		col = 2
	default:
		col = 1
	}

	switch {
	case stickY < stickLow:
		row = 0
	case stickY > stickHigh:
		row = 2
	default:
		row = 1
	}

	g.SelectedCell = row*3 + col
}

// CharAt returns the character at (cell, button) on the current page, or 0
// when any index is out of range.
func (g *Grid) CharAt(cell, button int) byte {
	if cell < 0 || cell >= charset.Cells {
		return 0
	}
	if button < 0 || button >= charset.ButtonsPerCell {
		return 0
	}
	if g.CurrentPage < 0 || g.CurrentPage >= charset.PageCount {
		return 0
	}
	return charset.Pages[g.CurrentPage].Chars[cell][button]
}

// Char returns the character under button on the selected cell.
func (g *Grid) Char(button int) byte {
	return g.CharAt(g.SelectedCell, button)
}

// IsSpecial reports whether button on the selected cell is a special
// function rather than a printable character.
func (g *Grid) IsSpecial(button int) bool {
	return charset.IsSpecial(g.Char(button))
}

// ShiftToggle swaps the lowercase and uppercase pages. The symbols page is
// unaffected; leave it with PageNext/PagePrev.
func (g *Grid) ShiftToggle() {
	switch g.CurrentPage {
	case 0:
		g.CurrentPage = 1
	case 1:
		g.CurrentPage = 0
	}
}

// ToggleSymbols switches between the letter pages and the symbols page.
// Leaving symbols always lands on lowercase, regardless of the letter page
// that was active before.
func (g *Grid) ToggleSymbols() {
	if g.CurrentPage == 2 {
		g.CurrentPage = 0
	} else {
		g.CurrentPage = 2
	}
}

// ToggleAccent flips accent mode.
func (g *Grid) ToggleAccent() {
	g.AccentMode = !g.AccentMode
}

// Page returns the active character page.
func (g *Grid) Page() *charset.Page {
	if g.CurrentPage < 0 || g.CurrentPage >= charset.PageCount {
		return &charset.Pages[0]
	}
	return &charset.Pages[g.CurrentPage]
}

// SetTitle stores the dialog title, truncated to TitleMax code units.
func (g *Grid) SetTitle(title []uint16) {
	if len(title) > TitleMax {
		title = title[:TitleMax]
	}
	g.titleLen = copy(g.title[:], title)
}

// Title returns the dialog title. The slice aliases grid storage.
func (g *Grid) Title() []uint16 { return g.title[:g.titleLen] }

// stickSpeed converts one right-stick axis into pixels per tick: a slow and
// a fast band per direction around a generous dead zone.
func stickSpeed(val uint8) int {
	switch {
	case val < 40:
		return -10
	case val < 108:
		return -4
	case val <= 148:
		return 0
	case val <= 216:
		return 4
	default:
		return 10
	}
}

// DefaultOrigin returns the widget origin with no user offset: centered
// horizontally, vertically centered on the lower-third line.
func DefaultOrigin(screenW, screenH int) (x, y int) {
	return (screenW - TotalW) / 2, screenH*2/3 - TotalH/2
}

// UpdatePosition moves the widget with the right stick and clamps the
// offsets so the widget keeps a small margin from every screen edge.
func (g *Grid) UpdatePosition(rstickX, rstickY uint8, screenW, screenH int) {
	dx := stickSpeed(rstickX)
	dy := stickSpeed(rstickY)
	if dx == 0 && dy == 0 {
		return
	}

	g.OffsetX += dx
	g.OffsetY += dy

	defX, defY := DefaultOrigin(screenW, screenH)
	bx := defX + g.OffsetX
	by := defY + g.OffsetY

	if bx < positionMargin {
		g.OffsetX = positionMargin - defX
	}
	if bx > screenW-TotalW-positionMargin {
		g.OffsetX = screenW - TotalW - positionMargin - defX
	}
	if by < positionMargin {
		g.OffsetY = positionMargin - defY
	}
	if by > screenH-TotalH-positionMargin {
		g.OffsetY = screenH - TotalH - positionMargin - defY
	}
}

// Origin returns the widget origin with the user offset applied, clamped to
// the screen. This is the clamp the renderer uses, so the widget never
// draws out of bounds even if offsets went stale across a resolution
// change.
func (g *Grid) Origin(screenW, screenH int) (x, y int) {
	defX, defY := DefaultOrigin(screenW, screenH)
	x = defX + g.OffsetX
	y = defY + g.OffsetY
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > screenW-TotalW {
		x = screenW - TotalW
	}
	if y > screenH-TotalH {
		y = screenH - TotalH
	}
	return x, y
}
