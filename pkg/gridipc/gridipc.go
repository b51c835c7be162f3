// Package gridipc publishes the keyboard state as a fixed-layout snapshot in
// a small shared-memory region, so observers in other processes can mirror
// the grid without talking to the engine.
//
// The record is little-endian at offset 0 of a 4096-byte region. A sequence
// word guards it seqlock-style: the writer bumps it to odd, rewrites the
// record, and bumps it to even; readers retry while it is odd or changes
// under them. There is exactly one writer.
package gridipc

import "encoding/binary"

// Record layout. Field offsets are fixed; readers in any language index the
// region with these.
const (
	offSequence     = 0
	offActive       = 4
	offSelectedCell = 8
	offCurrentPage  = 12
	offAccentMode   = 16
	offOutput       = 20
	offOutputLen    = 532
	offTextCursor   = 536
	offSelectedAll  = 540
	offSelStart     = 544
	offSelEnd       = 548
	offTitle        = 552
	offPageName     = 648
	offCells        = 656
	offOffsetX      = 692
	offOffsetY      = 696
	offShiftActive  = 700
)

const (
	// RecordSize is the encoded snapshot including the sequence word.
	RecordSize = 704
	// RegionSize is the shared region backing the record.
	RegionSize = 4096
	// DefaultPath is where the engine publishes unless configured otherwise.
	DefaultPath = "/tmp/thumbgrid_ipc.bin"
)

// Snapshot is the decoded record. Output holds UTF-16 code units; only the
// first OutputLen are meaningful, and likewise Title up to its first NUL.
type Snapshot struct {
	Active       bool
	SelectedCell int32
	CurrentPage  int32
	AccentMode   bool
	Output       [256]uint16
	OutputLen    uint32
	TextCursor   uint32
	SelectedAll  bool
	SelStart     uint32
	SelEnd       uint32
	Title        [48]uint16
	PageName     [8]byte
	Cells        [9][4]byte
	OffsetX      int32
	OffsetY      int32
	ShiftActive  bool
}

// Text returns the meaningful portion of Output.
func (s *Snapshot) Text() []uint16 {
	n := int(s.OutputLen)
	if n > len(s.Output) {
		n = len(s.Output)
	}
	return s.Output[:n]
}

// TitleUnits returns Title up to its first NUL.
func (s *Snapshot) TitleUnits() []uint16 {
	for i, u := range s.Title {
		if u == 0 {
			return s.Title[:i]
		}
	}
	return s.Title[:]
}

func bool32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// encode writes every record field except the sequence word.
func encode(buf []byte, s *Snapshot) {
	le := binary.LittleEndian

	le.PutUint32(buf[offActive:], bool32(s.Active))
	le.PutUint32(buf[offSelectedCell:], uint32(s.SelectedCell))
	le.PutUint32(buf[offCurrentPage:], uint32(s.CurrentPage))
	le.PutUint32(buf[offAccentMode:], bool32(s.AccentMode))
	for i, u := range s.Output {
		le.PutUint16(buf[offOutput+2*i:], u)
	}
	le.PutUint32(buf[offOutputLen:], s.OutputLen)
	le.PutUint32(buf[offTextCursor:], s.TextCursor)
	le.PutUint32(buf[offSelectedAll:], bool32(s.SelectedAll))
	le.PutUint32(buf[offSelStart:], s.SelStart)
	le.PutUint32(buf[offSelEnd:], s.SelEnd)
	for i, u := range s.Title {
		le.PutUint16(buf[offTitle+2*i:], u)
	}
	copy(buf[offPageName:offPageName+8], s.PageName[:])
	for cell := 0; cell < 9; cell++ {
		copy(buf[offCells+4*cell:offCells+4*cell+4], s.Cells[cell][:])
	}
	le.PutUint32(buf[offOffsetX:], uint32(s.OffsetX))
	le.PutUint32(buf[offOffsetY:], uint32(s.OffsetY))
	le.PutUint32(buf[offShiftActive:], bool32(s.ShiftActive))
}

// encodeActive rewrites only the active flag.
func encodeActive(buf []byte, active bool) {
	binary.LittleEndian.PutUint32(buf[offActive:], bool32(active))
}

// decode reads every record field except the sequence word.
func decode(buf []byte, s *Snapshot) {
	le := binary.LittleEndian

	s.Active = le.Uint32(buf[offActive:]) != 0
	s.SelectedCell = int32(le.Uint32(buf[offSelectedCell:]))
	s.CurrentPage = int32(le.Uint32(buf[offCurrentPage:]))
	s.AccentMode = le.Uint32(buf[offAccentMode:]) != 0
	for i := range s.Output {
		s.Output[i] = le.Uint16(buf[offOutput+2*i:])
	}
	s.OutputLen = le.Uint32(buf[offOutputLen:])
	s.TextCursor = le.Uint32(buf[offTextCursor:])
	s.SelectedAll = le.Uint32(buf[offSelectedAll:]) != 0
	s.SelStart = le.Uint32(buf[offSelStart:])
	s.SelEnd = le.Uint32(buf[offSelEnd:])
	for i := range s.Title {
		s.Title[i] = le.Uint16(buf[offTitle+2*i:])
	}
	copy(s.PageName[:], buf[offPageName:offPageName+8])
	for cell := 0; cell < 9; cell++ {
		copy(s.Cells[cell][:], buf[offCells+4*cell:offCells+4*cell+4])
	}
	s.OffsetX = int32(le.Uint32(buf[offOffsetX:]))
	s.OffsetY = int32(le.Uint32(buf[offOffsetY:]))
	s.ShiftActive = le.Uint32(buf[offShiftActive:]) != 0
}
