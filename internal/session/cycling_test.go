package session

import (
	"testing"
	"time"
)

func TestCharsetForPanel(t *testing.T) {
	cases := []struct {
		panel PanelType
		want  string
	}{
		{PanelDefault, DefaultCharset},
		{PanelBasicLatin, DefaultCharset},
		{PanelNumber, NumericCharset},
		{PanelURL, URLCharset},
		{PanelMail, URLCharset},
	}
	for _, tc := range cases {
		s := &Session{}
		s.Init(tc.panel, 8, nil, nil)
		if s.Charset() != tc.want {
			t.Errorf("panel %d: charset %q", tc.panel, s.Charset()[:8])
		}
	}
}

func TestCycleWraps(t *testing.T) {
	s := newActive(t, 8)
	n := len(s.Charset())

	s.Cycle(-1)
	if s.CursorIndex() != n-1 {
		t.Errorf("cycle -1 from 0: index %d, want %d", s.CursorIndex(), n-1)
	}
	s.Cycle(1)
	if s.CursorIndex() != 0 {
		t.Errorf("cycle back: index %d, want 0", s.CursorIndex())
	}
	s.Cycle(n + 3)
	if s.CursorIndex() != 3 {
		t.Errorf("cycle n+3: index %d, want 3", s.CursorIndex())
	}
}

func TestConfirmCharAppendsAndResets(t *testing.T) {
	s := newActive(t, 8)
	s.Cycle(2)
	want := s.Charset()[2]
	if !s.ConfirmChar() {
		t.Fatal("ConfirmChar failed")
	}
	if s.Len() != 1 || byte(s.Text()[0]) != want {
		t.Errorf("output %q, want %c", s.String(), want)
	}
	if s.CursorIndex() != 0 {
		t.Errorf("index %d after confirm, want 0", s.CursorIndex())
	}
}

func TestConfirmCharAtLimit(t *testing.T) {
	s := newActive(t, 2)
	s.ConfirmChar()
	s.ConfirmChar()
	if s.ConfirmChar() {
		t.Error("ConfirmChar succeeded at limit")
	}
}

func TestNeighborsWrap(t *testing.T) {
	s := newActive(t, 8)
	cs := s.Charset()
	prev, next := s.Neighbors()
	if prev != cs[len(cs)-1] || next != cs[1] {
		t.Errorf("at 0: prev=%c next=%c", prev, next)
	}
	s.Cycle(-1)
	prev, next = s.Neighbors()
	if prev != cs[len(cs)-2] || next != cs[0] {
		t.Errorf("at end: prev=%c next=%c", prev, next)
	}
}

func TestHoldRepeatTiming(t *testing.T) {
	s := newActive(t, 8)
	s.SetCycleConfig(CycleConfig{
		InitialDelay:   400 * time.Millisecond,
		RepeatInterval: 150 * time.Millisecond,
		AccelThreshold: 1500 * time.Millisecond,
		AccelInterval:  50 * time.Millisecond,
	})

	start := time.Unix(100, 0)
	s.SetHold(1, start)

	// Before the initial delay nothing fires.
	s.UpdateTiming(start.Add(399 * time.Millisecond))
	if s.CursorIndex() != 0 {
		t.Fatalf("fired before initial delay: index %d", s.CursorIndex())
	}

	// First repeat at the delay boundary.
	s.UpdateTiming(start.Add(400 * time.Millisecond))
	if s.CursorIndex() != 1 {
		t.Fatalf("no repeat at initial delay: index %d", s.CursorIndex())
	}

	// Second repeat only after the repeat interval elapses.
	s.UpdateTiming(start.Add(500 * time.Millisecond))
	if s.CursorIndex() != 1 {
		t.Fatalf("repeated too early: index %d", s.CursorIndex())
	}
	s.UpdateTiming(start.Add(550 * time.Millisecond))
	if s.CursorIndex() != 2 {
		t.Fatalf("no repeat after interval: index %d", s.CursorIndex())
	}

	// Past the acceleration threshold the fast interval applies.
	s.UpdateTiming(start.Add(1600 * time.Millisecond))
	if s.CursorIndex() != 3 {
		t.Fatalf("no repeat at accel point: index %d", s.CursorIndex())
	}
	s.UpdateTiming(start.Add(1650 * time.Millisecond))
	if s.CursorIndex() != 4 {
		t.Fatalf("accelerated interval not applied: index %d", s.CursorIndex())
	}

	// Release stops repeats.
	s.ReleaseHold()
	s.UpdateTiming(start.Add(3 * time.Second))
	if s.CursorIndex() != 4 {
		t.Fatalf("repeat after release: index %d", s.CursorIndex())
	}
}
