// Package ui lays out the native mirror of the thumbgrid snapshot.
package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"thumbgrid/cmd/thumbgrid-mirror/internal/theme"
	"thumbgrid/internal/charset"
	"thumbgrid/pkg/gridipc"
)

// Mirror renders whatever snapshot the engine last published.
type Mirror struct {
	theme *theme.Theme
}

// NewMirror builds the mirror component.
func NewMirror(t *theme.Theme) *Mirror {
	return &Mirror{theme: t}
}

// Layout renders one frame from the snapshot. ok reports whether the region
// delivered a consistent read; an inactive or unreadable snapshot shows the
// waiting placeholder instead.
func (m *Mirror) Layout(gtx layout.Context, snap *gridipc.Snapshot, ok bool) layout.Dimensions {
	paint.Fill(gtx.Ops, m.theme.Palette.Background)

	if !ok || snap == nil || !snap.Active {
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			l := material.Body1(m.theme.Theme, "waiting for a text session...")
			l.Color = m.theme.Palette.TextMuted
			return l.Layout(gtx)
		})
	}

	return layout.UniformInset(m.theme.Config.Padding).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(m.titleLine(snap)),
			layout.Rigid(layout.Spacer{Height: m.theme.Config.Spacing}.Layout),
			layout.Rigid(m.textLine(snap)),
			layout.Rigid(layout.Spacer{Height: m.theme.Config.Spacing}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return m.layoutGrid(gtx, snap)
			}),
			layout.Rigid(layout.Spacer{Height: m.theme.Config.Spacing}.Layout),
			layout.Rigid(m.statusLine(snap)),
		)
	})
}

func (m *Mirror) titleLine(snap *gridipc.Snapshot) layout.Widget {
	title := decodeUnits(snap.TitleUnits())
	if title == "" {
		title = "Text Entry"
	}
	return func(gtx layout.Context) layout.Dimensions {
		l := material.H6(m.theme.Theme, title)
		l.Color = m.theme.Palette.TextMuted
		l.TextSize = m.theme.Config.FontTitle
		return l.Layout(gtx)
	}
}

// textLine shows the buffer with the cursor as a pipe and the selected range
// bracketed, the closest a single label comes to the overlay's text bar.
func (m *Mirror) textLine(snap *gridipc.Snapshot) layout.Widget {
	var b strings.Builder
	b.WriteString("> ")
	text := snap.Text()
	cursor := int(snap.TextCursor)
	if cursor > len(text) {
		cursor = len(text)
	}
	selStart, selEnd := int(snap.SelStart), int(snap.SelEnd)
	if selStart > selEnd {
		selStart, selEnd = selEnd, selStart
	}
	hasSel := !snap.SelectedAll && selStart != selEnd

	for i := 0; i <= len(text); i++ {
		if hasSel && i == selStart {
			b.WriteByte('[')
		}
		if i == cursor {
			b.WriteByte('|')
		}
		if hasSel && i == selEnd {
			b.WriteByte(']')
		}
		if i < len(text) {
			b.WriteRune(decodeUnit(text[i]))
		}
	}

	bg := m.theme.Palette.Surface
	if snap.SelectedAll {
		bg = m.theme.Palette.Selection
	}
	line := b.String()
	return func(gtx layout.Context) layout.Dimensions {
		return m.panel(gtx, bg, func(gtx layout.Context) layout.Dimensions {
			l := material.Body1(m.theme.Theme, line)
			l.Color = m.theme.Palette.Text
			l.TextSize = m.theme.Config.FontBody
			return l.Layout(gtx)
		})
	}
}

func (m *Mirror) layoutGrid(gtx layout.Context, snap *gridipc.Snapshot) layout.Dimensions {
	rows := make([]layout.FlexChild, 0, 3)
	for row := 0; row < 3; row++ {
		row := row
		rows = append(rows, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			cols := make([]layout.FlexChild, 0, 3)
			for col := 0; col < 3; col++ {
				cell := row*3 + col
				cols = append(cols, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return m.layoutCell(gtx, snap, cell)
				}))
			}
			return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceEnd}.Layout(gtx, cols...)
		}))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, rows...)
}

// layoutCell draws one cell panel with its four button labels placed the way
// the face buttons sit: triangle up, square left, circle right, cross down.
func (m *Mirror) layoutCell(gtx layout.Context, snap *gridipc.Snapshot, cell int) layout.Dimensions {
	size := gtx.Dp(m.theme.Config.CellSize)
	gap := gtx.Dp(m.theme.Config.Spacing) / 2
	selected := int(snap.SelectedCell) == cell

	bg := m.theme.Palette.Panel
	rect := image.Rect(0, 0, size, size)
	rr := clip.UniformRRect(rect, int(gtx.Dp(m.theme.Config.CornerRadius)))
	paint.FillShape(gtx.Ops, bg, rr.Op(gtx.Ops))
	if selected {
		border := clip.Stroke{Path: rr.Path(gtx.Ops), Width: 3}.Op()
		paint.FillShape(gtx.Ops, m.theme.Palette.Primary, border)
	}

	gtx.Constraints.Min = image.Pt(size, size)
	gtx.Constraints.Max = image.Pt(size, size)
	layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, m.buttonLabel(snap, cell, charset.BtnTriangle, selected))
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(m.buttonLabel(snap, cell, charset.BtnSquare, selected)),
					layout.Flexed(1, layout.Spacer{}.Layout),
					layout.Rigid(m.buttonLabel(snap, cell, charset.BtnCircle, selected)),
				)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, m.buttonLabel(snap, cell, charset.BtnCross, selected))
			}),
		)
	})

	return layout.Dimensions{Size: image.Pt(size+gap, size+gap)}
}

func (m *Mirror) buttonLabel(snap *gridipc.Snapshot, cell, btn int, selected bool) layout.Widget {
	c := snap.Cells[cell][btn]
	text := string(rune(c))
	col := m.theme.Palette.Text
	switch {
	case charset.IsSpecial(c):
		text = charset.Label(c)
		col = m.theme.Palette.Accent
	case c == 0:
		text = " "
	case selected:
		col = m.theme.Palette.Primary
	}
	if snap.AccentMode && charset.IsAccentable(c) {
		if acc := charset.AccentLookup(c); acc != 0 {
			text = string(rune(acc))
		}
	}
	return func(gtx layout.Context) layout.Dimensions {
		l := material.Body1(m.theme.Theme, text)
		l.Color = col
		l.TextSize = m.theme.Config.FontCell
		return l.Layout(gtx)
	}
}

func (m *Mirror) statusLine(snap *gridipc.Snapshot) layout.Widget {
	var flags []string
	if snap.ShiftActive {
		flags = append(flags, "SHIFT")
	}
	if snap.AccentMode {
		flags = append(flags, "ACC")
	}
	if snap.SelectedAll {
		flags = append(flags, "SELECT-ALL")
	}
	status := fmt.Sprintf("[%s] cell %d  %s", pageName(snap), snap.SelectedCell,
		strings.Join(flags, " "))
	return func(gtx layout.Context) layout.Dimensions {
		l := material.Caption(m.theme.Theme, status)
		l.Color = m.theme.Palette.TextMuted
		l.TextSize = m.theme.Config.FontCaption
		return l.Layout(gtx)
	}
}

func (m *Mirror) panel(gtx layout.Context, bg color.NRGBA, w layout.Widget) layout.Dimensions {
	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
			rr := clip.UniformRRect(rect, int(gtx.Dp(m.theme.Config.CornerRadius)))
			paint.FillShape(gtx.Ops, bg, rr.Op(gtx.Ops))
			return layout.Dimensions{Size: gtx.Constraints.Min}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, w)
		},
	)
}

func pageName(snap *gridipc.Snapshot) string {
	for i, b := range snap.PageName {
		if b == 0 {
			return string(snap.PageName[:i])
		}
	}
	return string(snap.PageName[:])
}

func decodeUnits(units []uint16) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteRune(decodeUnit(u))
	}
	return b.String()
}

func decodeUnit(u uint16) rune {
	if u == 0 {
		return ' '
	}
	return rune(u)
}
