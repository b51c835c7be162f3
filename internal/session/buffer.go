package session

import "unicode/utf16"

// MaxOutputLength is the hard capacity of every text buffer in the package.
// Individual sessions may impose a smaller limit.
const MaxOutputLength = 256

// Buffer is a fixed-capacity sequence of UTF-16 code units with bounds-checked
// editing primitives. The zero value is an empty buffer.
type Buffer struct {
	chars [MaxOutputLength]uint16
	n     int
}

// Len returns the number of code units stored.
func (b *Buffer) Len() int { return b.n }

// At returns the code unit at index i, or 0 when i is out of range.
func (b *Buffer) At(i int) uint16 {
	if i < 0 || i >= b.n {
		return 0
	}
	return b.chars[i]
}

// Chars returns the stored code units. The slice aliases the buffer and is
// valid until the next modification.
func (b *Buffer) Chars() []uint16 { return b.chars[:b.n] }

// String decodes the buffer contents as UTF-16.
func (b *Buffer) String() string {
	return string(utf16.Decode(b.chars[:b.n]))
}

// Set replaces the contents with src, truncated to capacity.
func (b *Buffer) Set(src []uint16) {
	b.n = copy(b.chars[:], src)
}

// Clear empties the buffer.
func (b *Buffer) Clear() { b.n = 0 }

// Insert places ch at pos, shifting later units right. pos is clamped to
// [0, Len]. It reports false when the buffer is full.
func (b *Buffer) Insert(pos int, ch uint16) bool {
	if b.n >= MaxOutputLength {
		return false
	}
	if pos < 0 {
		pos = 0
	} else if pos > b.n {
		pos = b.n
	}
	copy(b.chars[pos+1:b.n+1], b.chars[pos:b.n])
	b.chars[pos] = ch
	b.n++
	return true
}

// InsertSlice places src at pos, shifting later units right, inserting at
// most as many units as capacity allows. It returns the number inserted.
func (b *Buffer) InsertSlice(pos int, src []uint16) int {
	room := MaxOutputLength - b.n
	if room <= 0 || len(src) == 0 {
		return 0
	}
	if len(src) > room {
		src = src[:room]
	}
	if pos < 0 {
		pos = 0
	} else if pos > b.n {
		pos = b.n
	}
	copy(b.chars[pos+len(src):b.n+len(src)], b.chars[pos:b.n])
	copy(b.chars[pos:], src)
	b.n += len(src)
	return len(src)
}

// DeleteRange removes units in [start, end), shifting later units left.
// Bounds are clamped; an empty or inverted range is a no-op.
func (b *Buffer) DeleteRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > b.n {
		end = b.n
	}
	if start >= end {
		return
	}
	copy(b.chars[start:], b.chars[end:b.n])
	b.n -= end - start
}
