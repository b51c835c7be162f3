package render

import (
	"fmt"
	"time"
)

// MaxBuffers is the number of absolute display-buffer slots a Surface tracks.
const MaxBuffers = 16

// flipWindow is how long after the last flip the client still counts as
// actively flipping. Past it the overlay repaints buffers itself.
const flipWindow = 100 * time.Millisecond

type slot struct {
	pix    []uint32
	width  uint32
	height uint32
	pitch  uint32
	tiling TilingMode
	ok     bool
}

// Surface tracks the display buffers a video-out client has registered and
// repaints them through a caller-supplied callback. Flip submissions drive
// the normal repaint path; the force-draw variants cover clients that have
// gone idle. Not safe for concurrent use; the poll loop owns the value.
type Surface struct {
	slots [MaxBuffers]slot
	cb    func(*Target)

	lastFlipped int
	lastFlip    time.Time
	rotor       int
}

func NewSurface() *Surface {
	return &Surface{lastFlipped: -1}
}

// Register captures a contiguous run of display buffers starting at the
// given absolute slot index. Every buffer must be large enough for the
// stated geometry.
func (s *Surface) Register(start int, bufs [][]uint32, width, height, pitch uint32, tiling TilingMode) error {
	if start < 0 || start+len(bufs) > MaxBuffers {
		return fmt.Errorf("render: buffer slots %d..%d out of range 0..%d",
			start, start+len(bufs)-1, MaxBuffers-1)
	}
	need := BufferLen(tiling, pitch, height)
	for i, buf := range bufs {
		if len(buf) < need {
			return fmt.Errorf("render: buffer %d holds %d pixels, geometry needs %d",
				start+i, len(buf), need)
		}
	}
	for i, buf := range bufs {
		s.slots[start+i] = slot{
			pix:    buf,
			width:  width,
			height: height,
			pitch:  pitch,
			tiling: tiling,
			ok:     true,
		}
	}
	return nil
}

// Reset forgets every registered buffer and the flip history.
func (s *Surface) Reset() {
	*s = Surface{cb: s.cb, lastFlipped: -1}
}

// SetDrawCallback installs the function invoked to paint a buffer. A nil
// callback detaches it.
func (s *Surface) SetDrawCallback(cb func(*Target)) {
	s.cb = cb
}

func (s *Surface) target(i int, opaque bool) *Target {
	sl := &s.slots[i]
	return &Target{
		Pix:    sl.pix,
		Width:  sl.width,
		Height: sl.height,
		Pitch:  sl.pitch,
		Tiling: sl.tiling,
		Opaque: opaque,
	}
}

// SubmitFlip paints the buffer about to be displayed and records it as the
// most recently flipped one.
func (s *Surface) SubmitFlip(idx int, now time.Time) error {
	if idx < 0 || idx >= MaxBuffers || !s.slots[idx].ok {
		return fmt.Errorf("render: flip on unregistered buffer %d", idx)
	}
	if s.cb != nil {
		s.cb(s.target(idx, false))
	}
	s.lastFlipped = idx
	s.lastFlip = now
	return nil
}

// ForceDraw repaints every registered buffer in opaque mode, overwriting
// whatever the client last rendered there.
func (s *Surface) ForceDraw() {
	if s.cb == nil {
		return
	}
	for i := range s.slots {
		if s.slots[i].ok {
			s.cb(s.target(i, true))
		}
	}
}

// ForceDrawSingle repaints one registered buffer per call, rotating through
// the slots. Spreads the full-repaint cost across ticks when the client has
// stopped flipping.
func (s *Surface) ForceDrawSingle() {
	if s.cb == nil {
		return
	}
	for n := 0; n < MaxBuffers; n++ {
		i := s.rotor
		s.rotor = (s.rotor + 1) % MaxBuffers
		if s.slots[i].ok {
			s.cb(s.target(i, true))
			return
		}
	}
}

// DrawLastFlipped repaints the buffer from the most recent flip.
func (s *Surface) DrawLastFlipped() {
	if s.cb == nil || s.lastFlipped < 0 || !s.slots[s.lastFlipped].ok {
		return
	}
	s.cb(s.target(s.lastFlipped, false))
}

// Active reports whether any buffer is registered.
func (s *Surface) Active() bool {
	for i := range s.slots {
		if s.slots[i].ok {
			return true
		}
	}
	return false
}

// Flipping reports whether a flip was submitted within the last 100 ms.
func (s *Surface) Flipping(now time.Time) bool {
	return !s.lastFlip.IsZero() && now.Sub(s.lastFlip) < flipWindow
}
