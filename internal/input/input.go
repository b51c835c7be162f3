// Package input turns raw controller reads into edge-detected button state
// and a single prioritized action per tick. It knows nothing about text or
// the grid; the driver owns the meaning of each action.
package input

import "time"

// Buttons is a bitset of digital controller buttons. The bit positions
// follow the pad report layout.
type Buttons uint32

const (
	L3       Buttons = 0x00000002
	Options  Buttons = 0x00000008
	Up       Buttons = 0x00000010
	Right    Buttons = 0x00000020
	Down     Buttons = 0x00000040
	Left     Buttons = 0x00000080
	L2       Buttons = 0x00000100
	R2       Buttons = 0x00000200
	L1       Buttons = 0x00000400
	R1       Buttons = 0x00000800
	Triangle Buttons = 0x00001000
	Circle   Buttons = 0x00002000
	Cross    Buttons = 0x00004000
	Square   Buttons = 0x00008000
)

// Has reports whether every button in mask is set.
func (b Buttons) Has(mask Buttons) bool { return b&mask == mask }

// Sample is one point-in-time controller read. Stick axes are raw 0..255
// with 128 at center; L2/R2 are the analog trigger magnitudes.
type Sample struct {
	Buttons Buttons
	StickX  uint8
	StickY  uint8
	RStickX uint8
	RStickY uint8
	L2      uint8
	R2      uint8
}

// Neutral returns a sample with centered sticks and nothing pressed.
func Neutral() Sample {
	return Sample{StickX: 128, StickY: 128, RStickX: 128, RStickY: 128}
}

// Action is the single input event resolved from one tick.
type Action uint8

const (
	ActionNone Action = iota
	ActionFaceTriangle
	ActionFaceCircle
	ActionFaceCross
	ActionFaceSquare
	ActionSubmit
	ActionShift
	ActionCursorLeft
	ActionCursorRight
	ActionCursorHome
	ActionCursorEnd
	ActionPageNext
	ActionPagePrev
	ActionCancel
)

var actionNames = [...]string{
	ActionNone:         "none",
	ActionFaceTriangle: "triangle",
	ActionFaceCircle:   "circle",
	ActionFaceCross:    "cross",
	ActionFaceSquare:   "square",
	ActionSubmit:       "submit",
	ActionShift:        "shift",
	ActionCursorLeft:   "cursor-left",
	ActionCursorRight:  "cursor-right",
	ActionCursorHome:   "cursor-home",
	ActionCursorEnd:    "cursor-end",
	ActionPageNext:     "page-next",
	ActionPagePrev:     "page-prev",
	ActionCancel:       "cancel",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// actionPriority resolves one action per tick from the freshly pressed
// buttons, highest priority first. L2 (shift) and Cross are absent on
// purpose: L2 runs on the analog trigger and Cross through the
// hold-to-select machine, both in the driver.
var actionPriority = [...]struct {
	mask   Buttons
	action Action
}{
	{Options, ActionCancel},
	{R2, ActionSubmit},
	{Triangle, ActionFaceTriangle},
	{Circle, ActionFaceCircle},
	{Square, ActionFaceSquare},
	{Up, ActionCursorHome},
	{Down, ActionCursorEnd},
	{Left, ActionCursorLeft},
	{Right, ActionCursorRight},
	{R1, ActionPageNext},
	{L1, ActionPagePrev},
}

// State holds edge-detected button state across ticks. The zero value is
// ready to use; Update recomputes everything from each new sample.
type State struct {
	previous Buttons
	current  Buttons
	pressed  Buttons
	released Buttons
	sample   Sample
	when     time.Time
}

// Update folds one sample into the state, deriving press and release edges
// against the previous tick.
func (s *State) Update(sm Sample, now time.Time) {
	s.previous = s.current
	s.current = sm.Buttons
	s.pressed = sm.Buttons &^ s.previous
	s.released = s.previous &^ sm.Buttons
	s.sample = sm
	s.when = now
}

// Reset clears all state back to neutral with no edges pending.
func (s *State) Reset() {
	*s = State{sample: Neutral()}
}

// Action resolves the dominant action for this tick from the press edges.
func (s *State) Action() Action {
	for _, e := range actionPriority {
		if s.pressed&e.mask != 0 {
			return e.action
		}
	}
	return ActionNone
}

// JustPressed reports whether any button in mask went down this tick.
func (s *State) JustPressed(mask Buttons) bool { return s.pressed&mask != 0 }

// JustReleased reports whether any button in mask came up this tick.
func (s *State) JustReleased(mask Buttons) bool { return s.released&mask != 0 }

// Held reports whether any button in mask is currently down.
func (s *State) Held(mask Buttons) bool { return s.current&mask != 0 }

// Pressed returns this tick's press edges.
func (s *State) Pressed() Buttons { return s.pressed }

// Released returns this tick's release edges.
func (s *State) Released() Buttons { return s.released }

// Sample returns the most recent controller sample.
func (s *State) Sample() Sample { return s.sample }

// Time returns the timestamp of the most recent update.
func (s *State) Time() time.Time { return s.when }
