// Package session implements the text entry session: a bounded UTF-16 output
// buffer with cursor, selection and clipboard editing, plus the session
// lifecycle (active, confirming, cancelled) that a dialog host drives.
//
// All editing operations are no-ops unless the session is active; violated
// preconditions (full buffer, empty clipboard, empty selection) are silently
// ignored rather than reported as errors. Cancel is the one exception and
// works from any state.
//
// The package also retains the older cycling input model (a linear charset
// walked with left/right and confirmed per character, as on PSP-era entry
// screens). The grid engine does not drive it, but the surface stays for
// hosts that do.
package session

import "time"

// State is the session lifecycle state.
type State int32

const (
	StateInactive State = iota
	StateActive
	StateConfirming
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StateConfirming:
		return "confirming"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// PanelType selects the keyboard panel requested by the caller. Values match
// the host dialog ABI.
type PanelType int32

const (
	PanelDefault    PanelType = 0
	PanelBasicLatin PanelType = 1
	PanelURL        PanelType = 2
	PanelMail       PanelType = 3
	PanelNumber     PanelType = 4
)

// Cycling charsets, selected by panel type.
const (
	DefaultCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz" +
		"0123456789" +
		" .,!?'-:;@#$%&*()"
	NumericCharset = "0123456789.-+"
	URLCharset     = "abcdefghijklmnopqrstuvwxyz" +
		"0123456789" +
		".-_~:/?#[]@!$&'()*+,;=%"
)

func charsetForPanel(panel PanelType) string {
	switch panel {
	case PanelNumber:
		return NumericCharset
	case PanelURL, PanelMail:
		return URLCharset
	}
	return DefaultCharset
}

// CycleConfig holds the repeat timing for held cycling input.
type CycleConfig struct {
	InitialDelay   time.Duration
	RepeatInterval time.Duration
	AccelThreshold time.Duration
	AccelInterval  time.Duration
}

// Session is one text entry session. The zero value is inactive; Init starts
// a new session. Not safe for concurrent use.
type Session struct {
	state State
	panel PanelType

	output     Buffer
	maxOutput  int
	textCursor int

	selectedAll bool
	selStart    int
	selEnd      int

	// Clipboard survives Init so cut text carries across dialogs.
	clipboard Buffer

	// Caller-provided buffer that receives the text on submit.
	sink []uint16

	// Cycling input state.
	charset     string
	cursorIndex int
	cycle       CycleConfig
	dpadHeld    bool
	holdDir     int
	holdStart   time.Time
	lastCycle   time.Time
}

// Init starts a new active session, discarding any previous one. maxLength
// is clamped to [1, MaxOutputLength]; prefill is truncated to it and the
// cursor is placed after the prefill. sink, when non-nil, receives the final
// text on Submit. The clipboard is deliberately preserved.
func (s *Session) Init(panel PanelType, maxLength int, sink, prefill []uint16) {
	clip := s.clipboard
	*s = Session{
		state:     StateActive,
		panel:     panel,
		maxOutput: maxLength,
		sink:      sink,
		charset:   charsetForPanel(panel),
		clipboard: clip,
		cycle: CycleConfig{
			InitialDelay:   400 * time.Millisecond,
			RepeatInterval: 150 * time.Millisecond,
			AccelThreshold: 1500 * time.Millisecond,
			AccelInterval:  50 * time.Millisecond,
		},
	}
	if s.maxOutput < 1 {
		s.maxOutput = 1
	} else if s.maxOutput > MaxOutputLength {
		s.maxOutput = MaxOutputLength
	}
	if len(prefill) > s.maxOutput {
		prefill = prefill[:s.maxOutput]
	}
	s.output.Set(prefill)
	s.textCursor = s.output.Len()
}

// deleteSelected removes any active selection before new input.
func (s *Session) deleteSelected() {
	if s.selectedAll {
		s.output.Clear()
		s.textCursor = 0
		s.selectedAll = false
		s.selStart, s.selEnd = 0, 0
		return
	}
	if s.selStart != s.selEnd {
		s.DeleteSelection()
	}
}

// AddChar inserts a single ASCII character at the cursor.
func (s *Session) AddChar(c byte) bool {
	return s.AddChar16(uint16(c))
}

// AddChar16 inserts a UTF-16 code unit at the cursor. Any selection is
// replaced. It reports false when the session is inactive or the buffer is
// at its limit.
func (s *Session) AddChar16(c uint16) bool {
	if s.state != StateActive {
		return false
	}
	s.deleteSelected()
	if s.output.Len() >= s.maxOutput {
		return false
	}
	pos := s.textCursor
	if pos > s.output.Len() {
		pos = s.output.Len()
	}
	s.output.Insert(pos, c)
	s.textCursor = pos + 1
	return true
}

// Backspace deletes the selection if one is active, otherwise the code unit
// left of the cursor. It reports false when there was nothing to delete.
func (s *Session) Backspace() bool {
	if s.state != StateActive {
		return false
	}
	if s.selectedAll {
		s.output.Clear()
		s.textCursor = 0
		s.selectedAll = false
		s.selStart, s.selEnd = 0, 0
		return true
	}
	if s.selStart != s.selEnd {
		s.DeleteSelection()
		return true
	}
	if s.textCursor == 0 || s.output.Len() == 0 {
		return false
	}
	pos := s.textCursor - 1
	s.output.DeleteRange(pos, pos+1)
	s.textCursor = pos
	// Collapsed bounds carry no selection but could outlive the shrink and
	// point past the end, so drop them with the deleted unit.
	s.selStart, s.selEnd = 0, 0
	return true
}

// CursorLeft moves the cursor one unit left. Dropping any active selection,
// partial bounds included, is a side effect of every cursor motion.
func (s *Session) CursorLeft() {
	if s.state != StateActive {
		return
	}
	s.ClearSelection()
	if s.textCursor > 0 {
		s.textCursor--
	}
}

// CursorRight moves the cursor one unit right.
func (s *Session) CursorRight() {
	if s.state != StateActive {
		return
	}
	s.ClearSelection()
	if s.textCursor < s.output.Len() {
		s.textCursor++
	}
}

// CursorHome moves the cursor to the start of the text.
func (s *Session) CursorHome() {
	if s.state != StateActive {
		return
	}
	s.ClearSelection()
	s.textCursor = 0
}

// CursorEnd moves the cursor past the last code unit.
func (s *Session) CursorEnd() {
	if s.state != StateActive {
		return
	}
	s.ClearSelection()
	s.textCursor = s.output.Len()
}

// SetCursor places the cursor directly, clamped to the text. Unlike the
// cursor motion operations it leaves selection state alone, which is what
// selection-extending callers need.
func (s *Session) SetCursor(pos int) {
	if s.state != StateActive {
		return
	}
	if pos < 0 {
		pos = 0
	} else if pos > s.output.Len() {
		pos = s.output.Len()
	}
	s.textCursor = pos
}

// SetSelection selects [start, end), clamping to the text and swapping an
// inverted range. It replaces any select-all state.
func (s *Session) SetSelection(start, end int) {
	if s.state != StateActive {
		return
	}
	n := s.output.Len()
	if start < 0 {
		start = 0
	} else if start > n {
		start = n
	}
	if end < 0 {
		end = 0
	} else if end > n {
		end = n
	}
	if start > end {
		start, end = end, start
	}
	s.selStart, s.selEnd = start, end
	s.selectedAll = false
}

// ClearSelection drops any selection without touching the text. It works in
// every state and is idempotent.
func (s *Session) ClearSelection() {
	s.selStart, s.selEnd = 0, 0
	s.selectedAll = false
}

// DeleteSelection removes the selected range and moves the cursor to its
// start. No-op without a partial selection.
func (s *Session) DeleteSelection() {
	if s.state != StateActive {
		return
	}
	start, end := s.selStart, s.selEnd
	if start > end {
		start, end = end, start
	}
	if end > s.output.Len() {
		end = s.output.Len()
	}
	if start > s.output.Len() || start == end {
		return
	}
	s.output.DeleteRange(start, end)
	s.textCursor = start
	s.selStart, s.selEnd = 0, 0
	s.selectedAll = false
}

// SelectAll marks the whole text as selected and moves the cursor to the
// end. No-op when the text is empty.
func (s *Session) SelectAll() {
	if s.state != StateActive {
		return
	}
	if s.output.Len() == 0 {
		return
	}
	s.selectedAll = true
	s.selStart = 0
	s.selEnd = s.output.Len()
	s.textCursor = s.output.Len()
}

// Submit copies the text into the caller's sink buffer and moves the session
// to the confirming state.
func (s *Session) Submit() {
	if s.state != StateActive {
		return
	}
	if s.sink != nil {
		n := copy(s.sink, s.output.Chars())
		if n < len(s.sink) {
			s.sink[n] = 0
		}
	}
	s.state = StateConfirming
}

// Cancel abandons the session. Unlike every other operation it applies in
// any state: cancellation must always win.
func (s *Session) Cancel() {
	s.state = StateCancelled
}

// Terminate tears the session down to inactive after the caller has read its
// terminal state. The clipboard survives for the next session.
func (s *Session) Terminate() {
	s.state = StateInactive
	s.output.Clear()
	s.textCursor = 0
	s.selStart, s.selEnd = 0, 0
	s.selectedAll = false
	s.sink = nil
}

// Copy places the selected text on the clipboard. No-op without a selection.
func (s *Session) Copy() {
	if s.state != StateActive {
		return
	}
	var start, end int
	switch {
	case s.selectedAll:
		start, end = 0, s.output.Len()
	case s.selStart != s.selEnd:
		start, end = s.selStart, s.selEnd
		if start > end {
			start, end = end, start
		}
	default:
		return
	}
	s.clipboard.Set(s.output.Chars()[start:end])
}

// Cut copies the selected text and removes it.
func (s *Session) Cut() {
	if s.state != StateActive {
		return
	}
	s.Copy()
	if s.clipboard.Len() > 0 {
		if s.selectedAll {
			s.output.Clear()
			s.textCursor = 0
			s.selectedAll = false
			s.selStart, s.selEnd = 0, 0
		} else {
			s.DeleteSelection()
		}
	}
}

// Paste inserts the clipboard at the cursor, replacing any selection.
// Text beyond the session limit is silently dropped; the cursor lands after
// the inserted run.
func (s *Session) Paste() {
	if s.state != StateActive {
		return
	}
	if s.clipboard.Len() == 0 {
		return
	}
	s.deleteSelected()

	avail := s.maxOutput - s.output.Len()
	pasteLen := s.clipboard.Len()
	if pasteLen > avail {
		pasteLen = avail
	}
	if pasteLen <= 0 {
		return
	}
	pos := s.textCursor
	if pos > s.output.Len() {
		pos = s.output.Len()
	}
	s.output.InsertSlice(pos, s.clipboard.Chars()[:pasteLen])
	s.textCursor = pos + pasteLen
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Panel returns the panel type the session was opened with.
func (s *Session) Panel() PanelType { return s.panel }

// Text returns the current output. The slice aliases session storage and is
// valid until the next editing operation.
func (s *Session) Text() []uint16 { return s.output.Chars() }

// String returns the current output decoded as UTF-16.
func (s *Session) String() string { return s.output.String() }

// Len returns the output length in code units.
func (s *Session) Len() int { return s.output.Len() }

// MaxLen returns the effective output limit.
func (s *Session) MaxLen() int { return s.maxOutput }

// Cursor returns the text cursor position.
func (s *Session) Cursor() int { return s.textCursor }

// Selection returns the selected range and whether select-all is active.
// The range is empty (start == end) when nothing is selected.
func (s *Session) Selection() (start, end int, all bool) {
	return s.selStart, s.selEnd, s.selectedAll
}

// HasSelection reports whether any text is selected.
func (s *Session) HasSelection() bool {
	return s.selectedAll || s.selStart != s.selEnd
}

// ClipboardLen returns the number of code units on the clipboard.
func (s *Session) ClipboardLen() int { return s.clipboard.Len() }
