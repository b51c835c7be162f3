package session

import "time"

// Cycling input: the charset is a ring walked left/right one position at a
// time; the highlighted character is committed separately. Hold-to-repeat
// accelerates after a threshold.

// Cycle moves the charset cursor by delta, wrapping in either direction.
func (s *Session) Cycle(delta int) {
	if s.state != StateActive || len(s.charset) == 0 {
		return
	}
	n := len(s.charset)
	idx := (s.cursorIndex + delta) % n
	if idx < 0 {
		idx += n
	}
	s.cursorIndex = idx
}

// ConfirmChar appends the highlighted charset character to the output and
// resets the charset cursor. It reports false when the session is inactive
// or the output is at its limit.
func (s *Session) ConfirmChar() bool {
	if s.state != StateActive {
		return false
	}
	if s.output.Len() >= s.maxOutput {
		return false
	}
	if s.cursorIndex >= len(s.charset) {
		return false
	}
	s.output.Insert(s.output.Len(), uint16(s.charset[s.cursorIndex]))
	s.cursorIndex = 0
	return true
}

// CurrentChar returns the highlighted charset character, or 0 when inactive.
func (s *Session) CurrentChar() byte {
	if s.state != StateActive || s.cursorIndex >= len(s.charset) {
		return 0
	}
	return s.charset[s.cursorIndex]
}

// Neighbors returns the characters adjacent to the highlight, wrapping
// around the charset ends.
func (s *Session) Neighbors() (prev, next byte) {
	if s.state != StateActive || len(s.charset) == 0 {
		return 0, 0
	}
	n := len(s.charset)
	return s.charset[(s.cursorIndex+n-1)%n], s.charset[(s.cursorIndex+1)%n]
}

// Charset returns the active cycling charset.
func (s *Session) Charset() string { return s.charset }

// CursorIndex returns the charset highlight position.
func (s *Session) CursorIndex() int { return s.cursorIndex }

// SetCycleConfig overrides the repeat timing.
func (s *Session) SetCycleConfig(c CycleConfig) { s.cycle = c }

// SetHold records that a cycle direction (-1 or +1) went down at now.
// The caller performs the initial Cycle on the press edge itself;
// UpdateTiming produces the repeats.
func (s *Session) SetHold(direction int, now time.Time) {
	if s.state != StateActive {
		return
	}
	s.dpadHeld = true
	s.holdDir = direction
	s.holdStart = now
	s.lastCycle = now
}

// ReleaseHold stops hold-to-repeat.
func (s *Session) ReleaseHold() {
	s.dpadHeld = false
	s.holdDir = 0
}

// UpdateTiming advances hold-to-repeat: after the initial delay the held
// direction cycles every repeat interval, switching to the accelerated
// interval once the hold outlasts the threshold.
func (s *Session) UpdateTiming(now time.Time) {
	if s.state != StateActive {
		return
	}
	if !s.dpadHeld || s.holdDir == 0 {
		return
	}

	held := now.Sub(s.holdStart)
	since := now.Sub(s.lastCycle)

	interval := s.cycle.RepeatInterval
	if held > s.cycle.AccelThreshold {
		interval = s.cycle.AccelInterval
	}

	if held < s.cycle.InitialDelay || since < interval {
		return
	}
	s.Cycle(s.holdDir)
	s.lastCycle = now
}
