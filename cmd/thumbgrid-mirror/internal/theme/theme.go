package theme

import (
	"image/color"

	"gioui.org/unit"
	"gioui.org/widget/material"
)

// Palette holds the mirror colors, matching the console overlay's dark look.
type Palette struct {
	Background color.NRGBA
	Surface    color.NRGBA
	Panel      color.NRGBA
	Primary    color.NRGBA
	Accent     color.NRGBA
	Text       color.NRGBA
	TextMuted  color.NRGBA
	Border     color.NRGBA
	Selection  color.NRGBA
}

// Config holds the layout metrics.
type Config struct {
	CornerRadius unit.Dp
	Spacing      unit.Dp
	Padding      unit.Dp
	CellSize     unit.Dp
	FontTitle    unit.Sp
	FontBody     unit.Sp
	FontCell     unit.Sp
	FontCaption  unit.Sp
}

// Theme wraps the material theme with the mirror styling.
type Theme struct {
	*material.Theme
	Palette Palette
	Config  Config
}

// NewTheme builds the mirror theme over a material base.
func NewTheme(mtheme *material.Theme) *Theme {
	return &Theme{
		Theme: mtheme,
		Palette: Palette{
			Background: color.NRGBA{R: 0x14, G: 0x14, B: 0x14, A: 0xFF},
			Surface:    color.NRGBA{R: 0x1E, G: 0x1E, B: 0x1E, A: 0xFF},
			Panel:      color.NRGBA{R: 0x3A, G: 0x3A, B: 0x3A, A: 0xFF},
			Primary:    color.NRGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0xFF},
			Accent:     color.NRGBA{R: 0x00, G: 0xBA, B: 0xB1, A: 0xFF},
			Text:       color.NRGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0xFF},
			TextMuted:  color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
			Border:     color.NRGBA{R: 0x2A, G: 0x2A, B: 0x2A, A: 0xFF},
			Selection:  color.NRGBA{R: 0x28, G: 0x50, B: 0x78, A: 0xFF},
		},
		Config: Config{
			CornerRadius: 6,
			Spacing:      8,
			Padding:      16,
			CellSize:     120,
			FontTitle:    20,
			FontBody:     16,
			FontCell:     18,
			FontCaption:  12,
		},
	}
}
