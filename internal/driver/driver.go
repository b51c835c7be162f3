// Package driver runs the per-tick interaction loop that ties the controller
// to the text session and the grid: edge detection, the modifier state
// machines (temporary shift, accent, hold-to-select, backspace repeat), action
// dispatch, and publication of the resulting state to the overlay renderer and
// the shared snapshot region.
//
// A Driver is the context object for one dialog host: it owns the Session,
// Grid and input State, and exposes the host-facing contract — Init, then
// Poll every tick until it reports Finished, then Result and Terminate.
// Everything runs on the caller's tick; nothing here blocks or spawns.
package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"thumbgrid/internal/charset"
	"thumbgrid/internal/grid"
	"thumbgrid/internal/input"
	"thumbgrid/internal/render"
	"thumbgrid/internal/session"
	"thumbgrid/pkg/gridipc"
)

// Status is what Poll reports to the dialog host.
type Status uint8

const (
	// StatusNone means no session has been initialized.
	StatusNone Status = iota
	// StatusRunning means the session is active and consuming input.
	StatusRunning
	// StatusFinished means the session reached a terminal state; the host
	// should fetch the result and terminate.
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// EndStatus is how the session ended, reported by Result.
type EndStatus uint8

const (
	// EndOK means the user submitted the text.
	EndOK EndStatus = iota
	// EndUserCancelled means the user backed out.
	EndUserCancelled
	// EndAborted means Result was read without a terminal state.
	EndAborted
)

func (e EndStatus) String() string {
	switch e {
	case EndOK:
		return "ok"
	case EndUserCancelled:
		return "user-cancelled"
	case EndAborted:
		return "aborted"
	}
	return "unknown"
}

// PadSource delivers one controller sample per call. A failed read is soft:
// the driver reuses the previous tick's sample.
type PadSource interface {
	ReadState() (input.Sample, error)
}

// Params describes one dialog invocation.
type Params struct {
	Panel     session.PanelType
	MaxLength int
	Title     []uint16
	// Prefill seeds the output buffer; the cursor lands after it.
	Prefill []uint16
	// Sink, when non-nil, receives the final text on submit.
	Sink []uint16
}

// Timing and threshold defaults.
const (
	// DefaultGrace absorbs the button release that opened the text field.
	DefaultGrace = 300 * time.Millisecond
	// DefaultBackspaceDelay is the hold time before backspace repeats.
	DefaultBackspaceDelay = 400 * time.Millisecond
	// DefaultBackspaceInterval is the repeat cadence after the delay.
	DefaultBackspaceInterval = 60 * time.Millisecond

	// L2 trigger hysteresis: engage above the high threshold, release below
	// the low one, so the page does not flicker at the boundary.
	shiftEngage  = 60
	shiftRelease = 40

	// Fallback notifications are rate limited and deduplicated.
	notifyInterval = 200 * time.Millisecond

	perfLogInterval = time.Second

	defaultScreenW = 1920
	defaultScreenH = 1080
)

// Options configures a Driver. Pad is required; everything else defaults.
type Options struct {
	Pad PadSource
	// Publisher receives a snapshot every tick when set.
	Publisher *gridipc.Writer
	// Surface, when set, gets the overlay draw callback attached for the
	// lifetime of each session.
	Surface *render.Surface
	// Notify receives the compact text fallback when no surface is active.
	Notify func(string)

	Log *slog.Logger
	Now func() time.Time

	Grace             time.Duration
	BackspaceDelay    time.Duration
	BackspaceInterval time.Duration
}

// Driver is the per-tick interaction state machine. Not safe for concurrent
// use; one logical thread drives Poll and any render callbacks.
type Driver struct {
	pad     PadSource
	pub     *gridipc.Writer
	surface *render.Surface
	notify  func(string)
	log     *slog.Logger
	now     func() time.Time

	grace      time.Duration
	bsDelay    time.Duration
	bsInterval time.Duration

	sess session.Session
	grid grid.Grid
	in   input.State

	active     bool
	start      time.Time
	lastSample input.Sample

	// Screen geometry for the position clamp, cached from the last draw.
	screenW int
	screenH int

	// Temporary shift from the L2 analog trigger. savedPage is -1 when
	// release should restore nothing (caps lock, or never engaged).
	l2Prev      uint8
	shiftActive bool
	savedPage   int

	// Cross hold-to-select machine.
	xHeld     bool
	xDpadUsed bool
	xAnchor   int

	// Backspace hold-to-repeat.
	bsHeld  bool
	bsStart time.Time
	bsLast  time.Time

	// Fallback notifier throttle.
	lastNotify time.Time
	lastHash   uint32

	// Poll statistics, logged once per second at debug.
	pollCount   int
	pollTotal   time.Duration
	pollMax     time.Duration
	lastPerfLog time.Time
}

// New builds a Driver from opts. The pad source is the one hard requirement.
func New(opts Options) (*Driver, error) {
	if opts.Pad == nil {
		return nil, errors.New("driver: pad source is required")
	}
	d := &Driver{
		pad:        opts.Pad,
		pub:        opts.Publisher,
		surface:    opts.Surface,
		notify:     opts.Notify,
		log:        opts.Log,
		now:        opts.Now,
		grace:      opts.Grace,
		bsDelay:    opts.BackspaceDelay,
		bsInterval: opts.BackspaceInterval,
		savedPage:  -1,
		screenW:    defaultScreenW,
		screenH:    defaultScreenH,
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.grace <= 0 {
		d.grace = DefaultGrace
	}
	if d.bsDelay <= 0 {
		d.bsDelay = DefaultBackspaceDelay
	}
	if d.bsInterval <= 0 {
		d.bsInterval = DefaultBackspaceInterval
	}
	d.grid.Reset()
	d.in.Reset()
	return d, nil
}

// Init starts a new session, replacing any previous one. The clipboard
// carries over; everything else resets. The grace window starts now.
func (d *Driver) Init(p Params) error {
	if d == nil {
		return errors.New("driver: Init on nil driver")
	}
	maxLen := p.MaxLength
	if maxLen <= 0 {
		maxLen = session.MaxOutputLength
	}

	d.sess.Init(p.Panel, maxLen, p.Sink, p.Prefill)
	if d.sess.State() != session.StateActive {
		return fmt.Errorf("driver: session init left state %v", d.sess.State())
	}

	d.grid.Reset()
	d.grid.SetTitle(p.Title)

	d.in.Reset()
	d.lastSample = input.Neutral()
	d.start = d.now()
	d.active = true

	d.l2Prev = 0
	d.shiftActive = false
	d.savedPage = -1
	d.xHeld = false
	d.xDpadUsed = false
	d.bsHeld = false
	d.lastNotify = time.Time{}
	d.lastHash = 0
	d.pollCount = 0
	d.pollTotal = 0
	d.pollMax = 0
	d.lastPerfLog = d.start

	if d.surface != nil {
		d.surface.SetDrawCallback(d.drawCallback)
	}

	d.log.Info("session started",
		"panel", p.Panel,
		"max_length", d.sess.MaxLen(),
		"prefill", len(p.Prefill))
	return nil
}

// Poll runs one interaction tick. It never blocks; timing behavior comes
// entirely from comparing the tick timestamp against stored deadlines.
func (d *Driver) Poll() Status {
	// Terminal states map immediately, before any input work.
	switch d.sess.State() {
	case session.StateConfirming, session.StateCancelled:
		return StatusFinished
	case session.StateInactive:
		return StatusNone
	}

	now := d.now()

	// Pad read failure is soft: log it and run the tick on the previous
	// sample so held buttons do not release spuriously.
	sample, err := d.pad.ReadState()
	if err != nil {
		d.log.Debug("pad read failed", "error", err)
		sample = d.lastSample
	}
	d.lastSample = sample

	// Edge detection and stick-derived state update every tick, grace
	// included, so the cell under the stick is already current when the
	// first action fires.
	d.in.Update(sample, now)
	d.grid.SelectCell(sample.StickX, sample.StickY)
	d.grid.UpdatePosition(sample.RStickX, sample.RStickY, d.screenW, d.screenH)

	// Grace window: the player is likely still holding whatever opened the
	// text field. Edges in here are swallowed, never queued. The L2 analog
	// level still tracks so the first post-grace tick sees no false
	// engage edge.
	if now.Sub(d.start) < d.grace {
		d.l2Prev = sample.L2
		d.maybeNotify(now)
		return StatusRunning
	}

	d.updateShift(sample.L2)

	// L3 click toggles accent mode.
	if d.in.JustPressed(input.L3) {
		d.grid.ToggleAccent()
		d.log.Debug("accent mode", "on", d.grid.AccentMode)
	}

	// While shift is held on the center cell the face buttons become
	// clipboard functions. Checked before every face dispatch.
	override := d.shiftActive && d.grid.SelectedCell == charset.CenterCell

	d.updateCrossHold(override)

	switch d.in.Action() {
	case input.ActionCancel:
		d.sess.Cancel()
		d.log.Info("session cancelled")
		return StatusFinished

	case input.ActionSubmit:
		d.sess.Submit()
		d.log.Info("session submitted", "chars", d.sess.Len())
		return StatusFinished

	case input.ActionFaceTriangle:
		if override {
			d.sess.Paste()
		} else {
			d.dispatchFace(charset.BtnTriangle)
		}

	case input.ActionFaceCircle:
		if override {
			// Caps lock: keep the shifted page and disarm the
			// restore so releasing L2 changes nothing.
			d.shiftActive = false
			d.savedPage = -1
			d.log.Debug("caps lock", "page", d.grid.CurrentPage)
		} else {
			d.dispatchFace(charset.BtnCircle)
		}

	case input.ActionFaceSquare:
		if override {
			d.sess.Copy()
		} else {
			d.dispatchFace(charset.BtnSquare)
		}

	case input.ActionCursorHome:
		if d.xHeld {
			d.extendSelection(0)
		} else {
			d.sess.ClearSelection()
			d.sess.CursorHome()
		}

	case input.ActionCursorEnd:
		if d.xHeld {
			d.extendSelection(d.sess.Len())
		} else {
			d.sess.ClearSelection()
			d.sess.CursorEnd()
		}

	case input.ActionCursorLeft:
		if d.xHeld {
			d.extendSelection(d.sess.Cursor() - 1)
		} else {
			d.sess.ClearSelection()
			d.sess.CursorLeft()
		}

	case input.ActionCursorRight:
		if d.xHeld {
			d.extendSelection(d.sess.Cursor() + 1)
		} else {
			d.sess.ClearSelection()
			d.sess.CursorRight()
		}

	case input.ActionPageNext, input.ActionPagePrev:
		d.grid.ToggleSymbols()
		d.log.Debug("symbols toggled", "page", d.grid.CurrentPage)
	}

	d.updateBackspaceRepeat(now)

	d.publish()
	d.keepPainted(now)
	d.perfTick(now)
	return StatusRunning
}

// updateShift runs the L2 analog hysteresis: engage swaps the letter pages
// and remembers the one to restore; release restores it unless caps lock
// disarmed the restore.
func (d *Driver) updateShift(l2 uint8) {
	if l2 >= shiftEngage && !d.shiftActive && d.l2Prev < shiftEngage {
		d.savedPage = d.grid.CurrentPage
		d.grid.ShiftToggle()
		d.shiftActive = true
	}
	if l2 < shiftRelease && d.l2Prev >= shiftRelease {
		if d.shiftActive && d.savedPage >= 0 {
			d.grid.CurrentPage = d.savedPage
		}
		d.shiftActive = false
		d.savedPage = -1
	}
	d.l2Prev = l2
}

// updateCrossHold advances the tap-versus-hold state machine on Cross. A
// press records the anchor; D-pad use while held turns the hold into
// selection (handled at dispatch); release without D-pad use performs the
// tap action instead. The two outcomes are mutually exclusive.
func (d *Driver) updateCrossHold(override bool) {
	if d.in.JustPressed(input.Cross) {
		d.xHeld = true
		d.xDpadUsed = false
		d.xAnchor = d.sess.Cursor()
	}
	if d.in.JustReleased(input.Cross) && d.xHeld {
		if !d.xDpadUsed {
			if override {
				d.sess.Cut()
			} else {
				d.dispatchFace(charset.BtnCross)
			}
		}
		// A selection made during the hold stays active.
		d.xHeld = false
	}
}

// extendSelection moves the cursor to pos and selects from the hold anchor,
// replacing the plain cursor motion the D-pad would otherwise perform.
func (d *Driver) extendSelection(pos int) {
	d.xDpadUsed = true
	if pos < 0 {
		pos = 0
	}
	if pos > d.sess.Len() {
		pos = d.sess.Len()
	}
	d.sess.SetSelection(d.xAnchor, pos)
	d.sess.SetCursor(pos)
}

// dispatchFace applies the character or special function under a face button
// on the selected cell.
func (d *Driver) dispatchFace(button int) {
	ch := d.grid.Char(button)
	if ch == 0 {
		return
	}
	if charset.IsSpecial(ch) {
		switch ch {
		case charset.SpecialBackspace:
			d.sess.Backspace()
		case charset.SpecialSpace:
			d.sess.AddChar(' ')
		case charset.SpecialAccent:
			d.grid.ToggleAccent()
		case charset.SpecialSelectAll:
			d.sess.SelectAll()
		case charset.SpecialExit:
			d.sess.Cancel()
			d.log.Info("session cancelled via exit cell")
		}
		return
	}
	if d.grid.AccentMode {
		if accented := charset.AccentLookup(ch); accented != 0 {
			d.sess.AddChar16(accented)
			return
		}
	}
	d.sess.AddChar(ch)
}

// updateBackspaceRepeat runs hold-to-repeat on the Square button, but only
// while the selected cell's Square slot actually is backspace. It is checked
// independently of the action result so repeats keep firing no matter what
// else the tick did. Leaving the cell or releasing the button resets the
// hold completely.
func (d *Driver) updateBackspaceRepeat(now time.Time) {
	held := d.in.Held(input.Square) &&
		d.grid.Char(charset.BtnSquare) == charset.SpecialBackspace

	if !held {
		d.bsHeld = false
		return
	}
	if !d.bsHeld {
		d.bsHeld = true
		d.bsStart = now
		d.bsLast = now
		return
	}
	if now.Sub(d.bsStart) < d.bsDelay {
		return
	}
	if now.Sub(d.bsLast) >= d.bsInterval {
		d.sess.Backspace()
		d.bsLast = now
	}
}

// publish writes the current state to the shared region, patching the center
// cell to the clipboard functions while shift is held, the same way the
// overlay presents it.
func (d *Driver) publish() {
	if d.pub == nil {
		return
	}
	var snap gridipc.Snapshot
	d.fillSnapshot(&snap)
	d.pub.Publish(&snap)
}

func (d *Driver) fillSnapshot(snap *gridipc.Snapshot) {
	page := d.grid.Page()

	snap.Active = true
	snap.SelectedCell = int32(d.grid.SelectedCell)
	snap.CurrentPage = int32(d.grid.CurrentPage)
	snap.AccentMode = d.grid.AccentMode
	copy(snap.Output[:], d.sess.Text())
	snap.OutputLen = uint32(d.sess.Len())
	snap.TextCursor = uint32(d.sess.Cursor())
	start, end, all := d.sess.Selection()
	snap.SelectedAll = all
	snap.SelStart = uint32(start)
	snap.SelEnd = uint32(end)
	copy(snap.Title[:], d.grid.Title())
	copy(snap.PageName[:], page.Name)
	for cell := 0; cell < charset.Cells; cell++ {
		snap.Cells[cell] = page.Chars[cell]
	}
	if d.shiftActive {
		snap.Cells[charset.CenterCell] = [4]byte{
			charset.BtnTriangle: charset.SpecialPaste,
			charset.BtnCircle:   charset.SpecialCaps,
			charset.BtnCross:    charset.SpecialCut,
			charset.BtnSquare:   charset.SpecialCopy,
		}
	}
	snap.OffsetX = int32(d.grid.OffsetX)
	snap.OffsetY = int32(d.grid.OffsetY)
	snap.ShiftActive = d.shiftActive
}

// keepPainted keeps the overlay visible when the display client has gone
// idle: one forced repaint per tick spreads the cost. Without any surface at
// all, the text fallback carries the state instead.
func (d *Driver) keepPainted(now time.Time) {
	if d.surface != nil && d.surface.Active() {
		if !d.surface.Flipping(now) {
			d.surface.ForceDrawSingle()
		}
		return
	}
	d.maybeNotify(now)
}

// drawCallback is installed on the surface for the session's lifetime. It
// caches the screen geometry for the position clamp and paints the overlay.
func (d *Driver) drawCallback(t *render.Target) {
	if t == nil {
		return
	}
	d.screenW = int(t.Width)
	d.screenH = int(t.Height)
	if !d.active || d.sess.State() != session.StateActive {
		return
	}
	render.DrawOverlay(t, &d.grid, &d.sess)
}

// Draw paints the overlay into an externally supplied target, for hosts that
// drive rendering directly instead of through a Surface.
func (d *Driver) Draw(t *render.Target) {
	d.drawCallback(t)
}

// maybeNotify emits the compact text fallback, throttled and deduplicated by
// a cheap state hash.
func (d *Driver) maybeNotify(now time.Time) {
	if d.notify == nil || d.sess.State() != session.StateActive {
		return
	}
	if !d.lastNotify.IsZero() && now.Sub(d.lastNotify) < notifyInterval {
		return
	}

	page := d.grid.Page()
	cell := d.grid.SelectedCell
	chars := page.Chars[cell]

	hash := uint32(cell) ^
		uint32(d.sess.Len())<<8 ^
		uint32(d.grid.CurrentPage)<<16 ^
		uint32(chars[charset.BtnTriangle])<<24
	if hash == d.lastHash {
		return
	}
	d.lastHash = hash
	d.lastNotify = now

	text := make([]byte, 0, 48)
	for i, u := range d.sess.Text() {
		if i == 40 {
			break
		}
		if u < 128 {
			text = append(text, byte(u))
		} else {
			text = append(text, '?')
		}
	}

	d.notify(fmt.Sprintf("[%s] Cell %d\n/\\=%s O=%s X=%s []=%s\n>%s_",
		page.Name, cell,
		notifyGlyph(chars[charset.BtnTriangle]),
		notifyGlyph(chars[charset.BtnCircle]),
		notifyGlyph(chars[charset.BtnCross]),
		notifyGlyph(chars[charset.BtnSquare]),
		text))
}

func notifyGlyph(c byte) string {
	switch c {
	case charset.SpecialBackspace:
		return "BS"
	case charset.SpecialSpace:
		return "SP"
	}
	if charset.IsSpecial(c) {
		return charset.Label(c)
	}
	return string(c)
}

// perfTick accumulates poll statistics and logs them once per second.
func (d *Driver) perfTick(start time.Time) {
	elapsed := d.now().Sub(start)
	d.pollCount++
	d.pollTotal += elapsed
	if elapsed > d.pollMax {
		d.pollMax = elapsed
	}
	if start.Sub(d.lastPerfLog) < perfLogInterval {
		return
	}
	avg := time.Duration(0)
	if d.pollCount > 0 {
		avg = d.pollTotal / time.Duration(d.pollCount)
	}
	d.log.Debug("poll stats",
		"polls", d.pollCount,
		"avg", avg,
		"max", d.pollMax)
	d.lastPerfLog = start
	d.pollCount = 0
	d.pollTotal = 0
	d.pollMax = 0
}

// Result reports how the session ended and the final text. Reading it in a
// non-terminal state reports EndAborted.
func (d *Driver) Result() (EndStatus, []uint16) {
	switch d.sess.State() {
	case session.StateConfirming:
		return EndOK, d.sess.Text()
	case session.StateCancelled:
		return EndUserCancelled, nil
	}
	d.log.Warn("result read in non-terminal state", "state", d.sess.State())
	return EndAborted, nil
}

// Terminate tears the session down: the draw callback detaches, the shared
// region flips inactive, and the session resets. Idempotent.
func (d *Driver) Terminate() {
	if d.surface != nil {
		d.surface.SetDrawCallback(nil)
	}
	if d.pub != nil {
		d.pub.PublishInactive()
	}
	d.sess.Terminate()
	d.in.Reset()
	d.active = false
	d.log.Info("session terminated")
}

// Session exposes the text session for read-only observers.
func (d *Driver) Session() *session.Session { return &d.sess }

// Grid exposes the grid state for read-only observers.
func (d *Driver) Grid() *grid.Grid { return &d.grid }
