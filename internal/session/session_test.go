package session

import (
	"math/rand"
	"testing"
)

func newActive(t *testing.T, max int) *Session {
	t.Helper()
	s := &Session{}
	s.Init(PanelDefault, max, nil, nil)
	if s.State() != StateActive {
		t.Fatalf("state after Init = %v", s.State())
	}
	return s
}

func typeString(s *Session, str string) {
	for i := 0; i < len(str); i++ {
		s.AddChar(str[i])
	}
}

func checkInvariants(t *testing.T, s *Session) {
	t.Helper()
	if s.Cursor() < 0 || s.Cursor() > s.Len() {
		t.Fatalf("cursor %d outside [0,%d]", s.Cursor(), s.Len())
	}
	if s.Len() > s.MaxLen() {
		t.Fatalf("len %d exceeds max %d", s.Len(), s.MaxLen())
	}
	start, end, all := s.Selection()
	if start > end {
		t.Fatalf("selection inverted: [%d,%d)", start, end)
	}
	if end > s.Len() {
		t.Fatalf("selection end %d beyond len %d", end, s.Len())
	}
	if all && s.Len() == 0 {
		t.Fatal("select-all active on empty text")
	}
}

func TestInitClampsMaxLength(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1},
		{-5, 1},
		{1, 1},
		{100, 100},
		{MaxOutputLength, MaxOutputLength},
		{MaxOutputLength + 50, MaxOutputLength},
	}
	for _, tc := range cases {
		s := &Session{}
		s.Init(PanelDefault, tc.in, nil, nil)
		if s.MaxLen() != tc.want {
			t.Errorf("Init(max=%d): MaxLen = %d, want %d", tc.in, s.MaxLen(), tc.want)
		}
	}
}

func TestInitPrefill(t *testing.T) {
	s := &Session{}
	s.Init(PanelDefault, 4, nil, u16("hello"))
	if s.String() != "hell" {
		t.Errorf("prefill = %q, want truncation to %q", s.String(), "hell")
	}
	if s.Cursor() != 4 {
		t.Errorf("cursor = %d, want end of prefill", s.Cursor())
	}
}

func TestInitPreservesClipboard(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "keep")
	s.SelectAll()
	s.Copy()
	s.Submit()

	// A fresh dialog on the same session still pastes the old clipboard.
	s.Init(PanelDefault, 32, nil, nil)
	s.Paste()
	if s.String() != "keep" {
		t.Errorf("after re-init paste: %q, want %q", s.String(), "keep")
	}
}

func TestAddCharInsertsAtCursor(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "ac")
	s.CursorLeft()
	if !s.AddChar('b') {
		t.Fatal("AddChar failed")
	}
	if s.String() != "abc" {
		t.Errorf("got %q, want %q", s.String(), "abc")
	}
	if s.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", s.Cursor())
	}
}

func TestAddCharAtLimit(t *testing.T) {
	s := newActive(t, 3)
	typeString(s, "abcdef")
	if s.String() != "abc" {
		t.Errorf("got %q, want %q", s.String(), "abc")
	}
	if s.AddChar('x') {
		t.Error("AddChar succeeded at limit")
	}
}

func TestInputReplacesSelection(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abcdef")
	s.SetSelection(1, 4)
	if !s.AddChar('X') {
		t.Fatal("AddChar failed")
	}
	if s.String() != "aXef" {
		t.Errorf("got %q, want %q", s.String(), "aXef")
	}
	if s.Cursor() != 2 {
		t.Errorf("cursor = %d, want after inserted char", s.Cursor())
	}
	if s.HasSelection() {
		t.Error("selection survived replacement")
	}
}

func TestInputReplacesSelectAll(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abcdef")
	s.SelectAll()
	s.AddChar('X')
	if s.String() != "X" {
		t.Errorf("got %q, want %q", s.String(), "X")
	}
}

func TestInputAtLimitWithSelection(t *testing.T) {
	// Replacing a selection must succeed even at the length limit: the
	// deletion happens first.
	s := newActive(t, 4)
	typeString(s, "abcd")
	s.SetSelection(0, 2)
	if !s.AddChar('X') {
		t.Fatal("AddChar failed at limit with selection")
	}
	if s.String() != "Xcd" {
		t.Errorf("got %q, want %q", s.String(), "Xcd")
	}
}

func TestBackspaceThreeWay(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abcdef")

	s.SelectAll()
	if !s.Backspace() {
		t.Fatal("backspace on select-all failed")
	}
	if s.Len() != 0 || s.Cursor() != 0 {
		t.Errorf("select-all backspace: len=%d cursor=%d", s.Len(), s.Cursor())
	}

	typeString(s, "abcdef")
	s.SetSelection(2, 4)
	if !s.Backspace() {
		t.Fatal("backspace on selection failed")
	}
	if s.String() != "abef" || s.Cursor() != 2 {
		t.Errorf("selection backspace: %q cursor=%d", s.String(), s.Cursor())
	}

	if !s.Backspace() {
		t.Fatal("plain backspace failed")
	}
	if s.String() != "aef" || s.Cursor() != 1 {
		t.Errorf("plain backspace: %q cursor=%d", s.String(), s.Cursor())
	}

	s.CursorHome()
	if s.Backspace() {
		t.Error("backspace at position 0 reported success")
	}
	if s.String() != "aef" {
		t.Errorf("backspace at 0 modified text: %q", s.String())
	}
}

func TestCursorMotionBounds(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "ab")
	s.CursorLeft()
	s.CursorLeft()
	s.CursorLeft()
	if s.Cursor() != 0 {
		t.Errorf("cursor = %d after over-left", s.Cursor())
	}
	s.CursorRight()
	s.CursorRight()
	s.CursorRight()
	if s.Cursor() != 2 {
		t.Errorf("cursor = %d after over-right", s.Cursor())
	}
	s.CursorHome()
	if s.Cursor() != 0 {
		t.Errorf("home: cursor = %d", s.Cursor())
	}
	s.CursorEnd()
	if s.Cursor() != 2 {
		t.Errorf("end: cursor = %d", s.Cursor())
	}
}

func TestCursorMotionLeavesSelectAll(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abc")
	motions := []func(){s.CursorLeft, s.CursorRight, s.CursorHome, s.CursorEnd}
	for i, mv := range motions {
		s.SelectAll()
		mv()
		if _, _, all := s.Selection(); all {
			t.Errorf("motion %d left select-all active", i)
		}
	}
}

func TestCursorMotionDropsPartialSelection(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abc")
	motions := []func(){s.CursorLeft, s.CursorRight, s.CursorHome, s.CursorEnd}
	for i, mv := range motions {
		s.SetSelection(1, 3)
		mv()
		if start, end, _ := s.Selection(); start != 0 || end != 0 {
			t.Errorf("motion %d left bounds [%d,%d)", i, start, end)
		}
	}
	// A paste after motion must append, not replace the old range.
	s.SetSelection(0, 2)
	s.Copy()
	s.CursorEnd()
	s.Paste()
	if s.String() != "abcab" {
		t.Errorf("got %q, want %q", s.String(), "abcab")
	}
}

func TestBackspaceDropsCollapsedBounds(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "ab")
	s.SetSelection(2, 2)
	if !s.Backspace() {
		t.Fatal("backspace refused")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	start, end, _ := s.Selection()
	if start > s.Len() || end > s.Len() {
		t.Errorf("bounds [%d,%d) beyond len %d", start, end, s.Len())
	}
}

func TestSetSelectionClampsAndSwaps(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abcd")
	s.SetSelection(99, -1)
	start, end, all := s.Selection()
	if start != 0 || end != 4 || all {
		t.Errorf("got [%d,%d) all=%v, want [0,4) false", start, end, all)
	}
	s.SetSelection(3, 1)
	start, end, _ = s.Selection()
	if start != 1 || end != 3 {
		t.Errorf("inverted: got [%d,%d), want [1,3)", start, end)
	}
}

func TestClearSelectionAnyState(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abc")
	s.SelectAll()
	s.Cancel()
	s.ClearSelection()
	s.ClearSelection()
	if s.HasSelection() {
		t.Error("selection survived ClearSelection after cancel")
	}
}

func TestDeleteSelection(t *testing.T) {
	s := newActive(t, 16)
	typeString(s, "abcdef")
	s.SetSelection(2, 5)
	s.DeleteSelection()
	if s.String() != "abf" || s.Cursor() != 2 {
		t.Errorf("got %q cursor=%d", s.String(), s.Cursor())
	}
	before := s.String()
	s.DeleteSelection()
	if s.String() != before {
		t.Error("empty-selection delete modified text")
	}
}

func TestSelectAllEmptyIsNoop(t *testing.T) {
	s := newActive(t, 16)
	s.SelectAll()
	if s.HasSelection() {
		t.Error("select-all on empty text set a selection")
	}
}

func TestSubmitCopiesToSink(t *testing.T) {
	sink := make([]uint16, 8)
	for i := range sink {
		sink[i] = 0xFFFF
	}
	s := &Session{}
	s.Init(PanelDefault, 8, sink, nil)
	typeString(s, "hi")
	s.Submit()
	if s.State() != StateConfirming {
		t.Fatalf("state = %v, want confirming", s.State())
	}
	if sink[0] != 'h' || sink[1] != 'i' || sink[2] != 0 {
		t.Errorf("sink = %v", sink[:3])
	}
	// Further edits are rejected once confirming.
	if s.AddChar('x') {
		t.Error("AddChar succeeded after submit")
	}
}

func TestCancelFromAnyState(t *testing.T) {
	for _, from := range []State{StateInactive, StateActive, StateConfirming, StateCancelled} {
		s := &Session{}
		if from != StateInactive {
			s.Init(PanelDefault, 8, nil, nil)
		}
		if from == StateConfirming {
			s.Submit()
		}
		if from == StateCancelled {
			s.Cancel()
		}
		s.Cancel()
		if s.State() != StateCancelled {
			t.Errorf("cancel from %v: state = %v", from, s.State())
		}
	}
}

func TestCopyPasteRoundTrip(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "hello")
	s.SetSelection(1, 4) // "ell"
	s.Copy()
	if s.ClipboardLen() != 3 {
		t.Fatalf("clipboard len = %d", s.ClipboardLen())
	}
	if s.String() != "hello" {
		t.Errorf("copy modified text: %q", s.String())
	}
	s.CursorEnd()
	s.Paste()
	if s.String() != "helloell" {
		t.Errorf("got %q, want %q", s.String(), "helloell")
	}
	if s.Cursor() != 8 {
		t.Errorf("cursor = %d, want after pasted run", s.Cursor())
	}
}

func TestCutRemovesAndPasteRestores(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "abcdef")
	s.SetSelection(2, 4)
	s.Cut()
	if s.String() != "abef" || s.Cursor() != 2 {
		t.Fatalf("after cut: %q cursor=%d", s.String(), s.Cursor())
	}
	s.Paste()
	if s.String() != "abcdef" {
		t.Errorf("after paste: %q, want original", s.String())
	}
}

func TestCutSelectAll(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "abc")
	s.SelectAll()
	s.Cut()
	if s.Len() != 0 {
		t.Errorf("cut select-all left %q", s.String())
	}
	s.Paste()
	if s.String() != "abc" {
		t.Errorf("paste after cut-all: %q", s.String())
	}
}

func TestCopyWithoutSelectionKeepsClipboard(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "abc")
	s.SelectAll()
	s.Copy()
	s.ClearSelection()
	s.Copy() // nothing selected: clipboard untouched
	if s.ClipboardLen() != 3 {
		t.Errorf("clipboard len = %d after no-selection copy", s.ClipboardLen())
	}
}

func TestPasteEmptyClipboardIsNoop(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "abc")
	s.Paste()
	if s.String() != "abc" || s.Cursor() != 3 {
		t.Errorf("paste moved state: %q cursor=%d", s.String(), s.Cursor())
	}
}

func TestPasteOverflowTruncates(t *testing.T) {
	s := newActive(t, 8)
	typeString(s, "abcde")
	s.SelectAll()
	s.Copy() // clipboard: "abcde"
	s.ClearSelection()
	s.CursorEnd()
	s.Paste() // room for 3 of 5
	if s.String() != "abcdeabc" {
		t.Errorf("got %q, want %q", s.String(), "abcdeabc")
	}
	if s.Cursor() != 8 {
		t.Errorf("cursor = %d, want 8", s.Cursor())
	}
	// Full buffer: paste drops everything, silently.
	s.Paste()
	if s.String() != "abcdeabc" {
		t.Errorf("paste into full buffer changed text: %q", s.String())
	}
}

func TestPasteReplacesSelection(t *testing.T) {
	s := newActive(t, 32)
	typeString(s, "abcdef")
	s.SetSelection(0, 2)
	s.Copy() // "ab"
	s.SetSelection(3, 6)
	s.Paste()
	if s.String() != "abcab" {
		t.Errorf("got %q, want %q", s.String(), "abcab")
	}
}

func TestOperationsIgnoredWhenInactive(t *testing.T) {
	s := &Session{}
	if s.AddChar('a') || s.Backspace() {
		t.Error("editing succeeded on inactive session")
	}
	s.CursorLeft()
	s.CursorRight()
	s.CursorHome()
	s.CursorEnd()
	s.SetSelection(0, 5)
	s.SelectAll()
	s.DeleteSelection()
	s.Copy()
	s.Cut()
	s.Paste()
	s.Submit()
	if s.State() != StateInactive {
		t.Errorf("state = %v after ignored ops", s.State())
	}
	if s.Len() != 0 || s.Cursor() != 0 || s.HasSelection() {
		t.Error("inactive session state changed")
	}
}

// TestInvariantSweep drives a session through a long pseudo-random operation
// sequence and checks the structural invariants after every step.
func TestInvariantSweep(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := newActive(t, 64)
	for i := 0; i < 20000; i++ {
		switch rng.Intn(14) {
		case 0:
			s.AddChar(byte('a' + rng.Intn(26)))
		case 1:
			s.Backspace()
		case 2:
			s.CursorLeft()
		case 3:
			s.CursorRight()
		case 4:
			s.CursorHome()
		case 5:
			s.CursorEnd()
		case 6:
			s.SetSelection(rng.Intn(80)-8, rng.Intn(80)-8)
		case 7:
			s.ClearSelection()
		case 8:
			s.SelectAll()
		case 9:
			s.DeleteSelection()
		case 10:
			s.Copy()
		case 11:
			s.Cut()
		case 12:
			s.Paste()
		case 13:
			s.AddChar16(0x00E9)
		}
		checkInvariants(t, s)
	}
}
