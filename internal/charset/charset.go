// Package charset defines the static character pages for the 3x3 grid
// keyboard, the special-function markers embedded in them, and the accent
// tables used for Latin-1 input and display.
//
// Cell layout (left analog stick positions):
//
//	0(UL)  1(UC)  2(UR)     <- stick up
//	3(ML)  4(MC)  5(MR)     <- stick center
//	6(BL)  7(BC)  8(BR)     <- stick down
//
// Button order within a cell: [triangle, circle, cross, square]. The center
// cell is reserved for editing functions on every page.
package charset

// Grid dimensions.
const (
	Cells          = 9
	ButtonsPerCell = 4
	PageCount      = 3
	CenterCell     = 4
)

// Button indices for character lookup.
const (
	BtnTriangle = 0
	BtnCircle   = 1
	BtnCross    = 2
	BtnSquare   = 3
)

// Special function markers. Stored as chars in the page tables and in
// published cell maps, never displayed directly (see Label).
const (
	SpecialBackspace = 0x02
	SpecialSpace     = 0x03
	SpecialAccent    = 0x04
	SpecialSelectAll = 0x05
	SpecialExit      = 0x06
	SpecialCut       = 0x07
	SpecialCopy      = 0x08
	SpecialPaste     = 0x09
	SpecialCaps      = 0x0A
)

// Page is one character map: a name shown in the status bar and a character
// per cell per face button.
type Page struct {
	Name  string
	Chars [Cells][ButtonsPerCell]byte
}

// Pages holds the three character maps: lowercase, uppercase, symbols.
// The center cell (4) is Triangle=Space, Circle=Exit, Cross=SelectAll,
// Square=Backspace on every page.
var Pages = [PageCount]Page{
	{
		Name: "abc",
		Chars: [Cells][ButtonsPerCell]byte{
			{'a', 'b', 'c', 'd'},
			{'e', 'f', 'g', 'h'},
			{'i', 'j', 'k', 'l'},
			{'m', 'n', 'o', 'p'},
			{SpecialSpace, SpecialExit, SpecialSelectAll, SpecialBackspace},
			{'q', 'r', 's', 't'},
			{'u', 'v', 'w', 'x'},
			{'y', 'z', '.', ','},
			{'!', '?', '\'', '-'},
		},
	},
	{
		Name: "ABC",
		Chars: [Cells][ButtonsPerCell]byte{
			{'A', 'B', 'C', 'D'},
			{'E', 'F', 'G', 'H'},
			{'I', 'J', 'K', 'L'},
			{'M', 'N', 'O', 'P'},
			{SpecialSpace, SpecialExit, SpecialSelectAll, SpecialBackspace},
			{'Q', 'R', 'S', 'T'},
			{'U', 'V', 'W', 'X'},
			{'Y', 'Z', '.', ','},
			{'!', '?', '\'', '-'},
		},
	},
	{
		Name: "123",
		Chars: [Cells][ButtonsPerCell]byte{
			{'1', '2', '3', '+'},
			{'4', '5', '6', '='},
			{'7', '8', '9', '0'},
			{'@', '#', '$', '%'},
			{SpecialSpace, SpecialExit, SpecialSelectAll, SpecialBackspace},
			{'&', '*', '(', ')'},
			{'_', '/', '\\', '|'},
			{'[', ']', '{', '}'},
			{'<', '>', '"', '~'},
		},
	},
}

// IsSpecial reports whether c is one of the special function markers.
func IsSpecial(c byte) bool {
	return c >= SpecialBackspace && c <= SpecialCaps
}

// Label returns the display string for a special function marker.
func Label(c byte) string {
	switch c {
	case SpecialBackspace:
		return "Del"
	case SpecialSpace:
		return "Space"
	case SpecialAccent:
		return "AC"
	case SpecialSelectAll:
		return "Select"
	case SpecialExit:
		return "Exit"
	case SpecialCut:
		return "Cut"
	case SpecialCopy:
		return "Copy"
	case SpecialPaste:
		return "Paste"
	case SpecialCaps:
		return "CAPS"
	}
	return "?"
}

// AccentLookup maps a base letter to its acute-accented UTF-16 code point,
// or 0 when the letter has no accent variant.
func AccentLookup(base byte) uint16 {
	switch base {
	case 'a':
		return 0x00E1 // á
	case 'e':
		return 0x00E9 // é
	case 'i':
		return 0x00ED // í
	case 'o':
		return 0x00F3 // ó
	case 'u':
		return 0x00FA // ú
	case 'n':
		return 0x00F1 // ñ
	case 'A':
		return 0x00C1 // Á
	case 'E':
		return 0x00C9 // É
	case 'I':
		return 0x00CD // Í
	case 'O':
		return 0x00D3 // Ó
	case 'U':
		return 0x00DA // Ú
	case 'N':
		return 0x00D1 // Ñ
	}
	return 0
}

// IsAccentable reports whether AccentLookup has a mapping for c.
func IsAccentable(c byte) bool {
	return AccentLookup(c) != 0
}

// BaseLetter maps an accented Latin-1 code point back to its ASCII base
// letter for display through the 8x8 font. Plain ASCII passes through;
// unknown code points become '?'.
func BaseLetter(ch uint16) byte {
	if ch < 128 {
		return byte(ch)
	}
	switch ch {
	case 0x00C1, 0x00C0, 0x00C2, 0x00C3, 0x00C4:
		return 'A'
	case 0x00E1, 0x00E0, 0x00E2, 0x00E3, 0x00E4:
		return 'a'
	case 0x00C9, 0x00C8, 0x00CA, 0x00CB:
		return 'E'
	case 0x00E9, 0x00E8, 0x00EA, 0x00EB:
		return 'e'
	case 0x00CD, 0x00CC, 0x00CE, 0x00CF:
		return 'I'
	case 0x00ED, 0x00EC, 0x00EE, 0x00EF:
		return 'i'
	case 0x00D3, 0x00D2, 0x00D4, 0x00D5, 0x00D6:
		return 'O'
	case 0x00F3, 0x00F2, 0x00F4, 0x00F5, 0x00F6:
		return 'o'
	case 0x00DA, 0x00D9, 0x00DB, 0x00DC:
		return 'U'
	case 0x00FA, 0x00F9, 0x00FB, 0x00FC:
		return 'u'
	case 0x00D1:
		return 'N'
	case 0x00F1:
		return 'n'
	}
	return '?'
}

// IsAccented reports whether ch is an accented Latin-1 letter that
// BaseLetter can map, i.e. one that should be drawn with an accent mark.
func IsAccented(ch uint16) bool {
	return ch >= 0x00C0 && ch <= 0x00FF && BaseLetter(ch) != '?'
}
