// Package simpad turns terminal key events into controller samples. A
// terminal only reports key presses (with autorepeat), never releases, so
// every key latches its button or stick deflection for a short hold window;
// autorepeat keeps refreshing the latch and a released key decays to neutral
// when its window expires. That approximates holds well enough to drive the
// hold-to-select and hold-to-repeat machines.
//
// Keymap:
//
//	arrow keys      left stick (cell selection)
//	w a s d         right stick (widget position)
//	i j k l         Triangle / Square / Cross / Circle (button diamond)
//	f               L2 trigger (temporary shift)
//	g               L3 (accent toggle)
//	[ ]             L1 / R1 (symbols page)
//	Home / End      D-pad up / down (cursor home / end)
//	, .             D-pad left / right
//	Enter           R2 (submit)
//	Esc             Options (cancel)
package simpad

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"thumbgrid/internal/input"
)

// holdWindow is how long one key event keeps its control engaged. Terminal
// autorepeat (typically ~30 Hz once it kicks in) refreshes the latch well
// inside this window.
const holdWindow = 550 * time.Millisecond

// stick deflection values for a latched direction.
const (
	deflectLow  = 20
	deflectHigh = 230
	center      = 128
)

// control identifies one latchable input.
type control int

const (
	ctlStickUp control = iota
	ctlStickDown
	ctlStickLeft
	ctlStickRight
	ctlRStickUp
	ctlRStickDown
	ctlRStickLeft
	ctlRStickRight
	ctlL2
	numControls
)

// Pad is the virtual controller. Safe for a single goroutine; the simulator
// feeds key events and reads samples from the same loop.
type Pad struct {
	now func() time.Time

	// Button latches carry the button mask directly.
	buttons map[input.Buttons]time.Time

	// Analog latches.
	analog [numControls]time.Time
}

// New returns a neutral pad. now defaults to time.Now.
func New(now func() time.Time) *Pad {
	if now == nil {
		now = time.Now
	}
	return &Pad{
		now:     now,
		buttons: make(map[input.Buttons]time.Time),
	}
}

// HandleKey latches the control mapped to ev. It reports whether the key was
// consumed; unmapped keys fall through to the simulator itself.
func (p *Pad) HandleKey(ev *tcell.EventKey) bool {
	expiry := p.now().Add(holdWindow)

	switch ev.Key() {
	case tcell.KeyUp:
		p.analog[ctlStickUp] = expiry
	case tcell.KeyDown:
		p.analog[ctlStickDown] = expiry
	case tcell.KeyLeft:
		p.analog[ctlStickLeft] = expiry
	case tcell.KeyRight:
		p.analog[ctlStickRight] = expiry
	case tcell.KeyHome:
		p.buttons[input.Up] = expiry
	case tcell.KeyEnd:
		p.buttons[input.Down] = expiry
	case tcell.KeyEnter:
		p.buttons[input.R2] = expiry
	case tcell.KeyEscape:
		p.buttons[input.Options] = expiry
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w':
			p.analog[ctlRStickUp] = expiry
		case 's':
			p.analog[ctlRStickDown] = expiry
		case 'a':
			p.analog[ctlRStickLeft] = expiry
		case 'd':
			p.analog[ctlRStickRight] = expiry
		case 'i':
			p.buttons[input.Triangle] = expiry
		case 'j':
			p.buttons[input.Square] = expiry
		case 'k':
			p.buttons[input.Cross] = expiry
		case 'l':
			p.buttons[input.Circle] = expiry
		case 'f':
			p.analog[ctlL2] = expiry
		case 'g':
			p.buttons[input.L3] = expiry
		case '[':
			p.buttons[input.L1] = expiry
		case ']':
			p.buttons[input.R1] = expiry
		case ',':
			p.buttons[input.Left] = expiry
		case '.':
			p.buttons[input.Right] = expiry
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// Release drops every latch back to neutral immediately.
func (p *Pad) Release() {
	clear(p.buttons)
	p.analog = [numControls]time.Time{}
}

// ReadState composes the current sample from the live latches. It never
// fails; the error sits in the signature for the pad source contract.
func (p *Pad) ReadState() (input.Sample, error) {
	now := p.now()
	s := input.Neutral()

	for mask, expiry := range p.buttons {
		if now.Before(expiry) {
			s.Buttons |= mask
		}
	}

	s.StickX = axis(now, p.analog[ctlStickLeft], p.analog[ctlStickRight])
	s.StickY = axis(now, p.analog[ctlStickUp], p.analog[ctlStickDown])
	s.RStickX = axis(now, p.analog[ctlRStickLeft], p.analog[ctlRStickRight])
	s.RStickY = axis(now, p.analog[ctlRStickUp], p.analog[ctlRStickDown])
	if now.Before(p.analog[ctlL2]) {
		s.L2 = 255
	}
	return s, nil
}

// axis resolves two opposing latches into one stick value. When both are
// live the later press wins.
func axis(now time.Time, low, high time.Time) uint8 {
	lowLive := now.Before(low)
	highLive := now.Before(high)
	switch {
	case lowLive && highLive:
		if high.After(low) {
			return deflectHigh
		}
		return deflectLow
	case lowLive:
		return deflectLow
	case highLive:
		return deflectHigh
	}
	return center
}
