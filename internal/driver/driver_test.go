package driver

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"thumbgrid/internal/charset"
	"thumbgrid/internal/input"
	"thumbgrid/pkg/gridipc"
)

// fakePad returns whatever sample the test last staged.
type fakePad struct {
	sample input.Sample
	err    error
}

func (p *fakePad) ReadState() (input.Sample, error) {
	return p.sample, p.err
}

// fakeClock advances only when the test says so.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

const tick = 16 * time.Millisecond

type harness struct {
	t     *testing.T
	d     *Driver
	pad   *fakePad
	clock *fakeClock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		pad:   &fakePad{sample: input.Neutral()},
		clock: &fakeClock{t: time.Unix(1000, 0)},
	}
	opts.Pad = h.pad
	opts.Now = h.clock.now
	opts.Log = slog.New(slog.DiscardHandler)
	d, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.d = d
	return h
}

func (h *harness) init(p Params) {
	h.t.Helper()
	if err := h.d.Init(p); err != nil {
		h.t.Fatalf("Init: %v", err)
	}
}

// poll advances one tick and runs Poll with the staged sample.
func (h *harness) poll(s input.Sample) Status {
	h.clock.advance(tick)
	h.pad.sample = s
	return h.d.Poll()
}

// skipGrace polls once past the grace deadline with a neutral pad.
func (h *harness) skipGrace() {
	h.t.Helper()
	h.clock.advance(DefaultGrace)
	h.pad.sample = input.Neutral()
	if got := h.d.Poll(); got != StatusRunning {
		h.t.Fatalf("post-grace poll = %v, want running", got)
	}
}

// press runs one poll with the buttons down and one with them released.
func (h *harness) press(s input.Sample) {
	h.t.Helper()
	h.poll(s)
	up := s
	up.Buttons = 0
	h.poll(up)
}

// stickFor returns a sample whose left stick points at the given cell.
func stickFor(cell int) input.Sample {
	s := input.Neutral()
	axis := [3]uint8{20, 128, 230}
	s.StickX = axis[cell%3]
	s.StickY = axis[cell/3]
	return s
}

func withButtons(s input.Sample, b input.Buttons) input.Sample {
	s.Buttons = b
	return s
}

func utf16Of(text string) []uint16 {
	out := make([]uint16, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = uint16(text[i])
	}
	return out
}

func TestTypingScenario(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 10})
	h.skipGrace()

	// h e l l o across cells 1, 1, 2, 2, 3 on the lowercase page.
	keys := []struct {
		cell int
		btn  input.Buttons
	}{
		{1, input.Square},   // h
		{1, input.Triangle}, // e
		{2, input.Square},   // l
		{2, input.Square},   // l
		{3, input.Cross},    // o
	}
	for _, k := range keys {
		h.press(withButtons(stickFor(k.cell), k.btn))
	}

	if got := h.d.Session().String(); got != "hello" {
		t.Fatalf("output = %q, want %q", got, "hello")
	}
	if got := h.d.Session().Cursor(); got != 5 {
		t.Fatalf("cursor = %d, want 5", got)
	}
}

func TestGracePeriodSwallowsEdges(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16})

	// Cancel held from the very first tick. Edges inside grace are
	// swallowed, and a button still down afterwards has no fresh edge.
	held := withButtons(input.Neutral(), input.Options)
	for i := 0; i < 10; i++ {
		if got := h.poll(held); got != StatusRunning {
			t.Fatalf("poll %d during grace = %v, want running", i, got)
		}
	}
	h.clock.advance(DefaultGrace)
	if got := h.d.Poll(); got != StatusRunning {
		t.Fatalf("held-over button after grace = %v, want running", got)
	}

	// A fresh press after the deadline cancels.
	h.poll(input.Neutral())
	if got := h.poll(held); got != StatusFinished {
		t.Fatalf("fresh cancel press after grace = %v, want finished", got)
	}
	if end, _ := h.d.Result(); end != EndUserCancelled {
		t.Fatalf("end status = %v, want user-cancelled", end)
	}
}

func TestHoldSelectThenBackspace(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 32, Prefill: utf16Of("hello world")})
	h.skipGrace()

	// Cursor home, then anchor a Cross hold there.
	h.press(withButtons(input.Neutral(), input.Up))
	if got := h.d.Session().Cursor(); got != 0 {
		t.Fatalf("cursor after home = %d, want 0", got)
	}

	h.poll(withButtons(input.Neutral(), input.Cross))
	for i := 0; i < 5; i++ {
		h.poll(withButtons(input.Neutral(), input.Cross|input.Right))
		h.poll(withButtons(input.Neutral(), input.Cross))
	}
	h.poll(input.Neutral()) // release; selection stays, no tap action

	start, end, all := h.d.Session().Selection()
	if all || start != 0 || end != 5 {
		t.Fatalf("selection = [%d,%d) all=%v, want [0,5) false", start, end, all)
	}

	// Backspace (Square on the center cell) deletes the selection.
	h.press(withButtons(stickFor(4), input.Square))
	if got := h.d.Session().String(); got != " world" {
		t.Fatalf("output = %q, want %q", got, " world")
	}
	if got := h.d.Session().Cursor(); got != 0 {
		t.Fatalf("cursor = %d, want 0", got)
	}
}

func TestCrossTapVersusHoldExclusive(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16, Prefill: utf16Of("ab")})
	h.skipGrace()

	// Tap without D-pad: the cell character goes in.
	h.press(withButtons(stickFor(0), input.Cross)) // 'c'
	if got := h.d.Session().String(); got != "abc" {
		t.Fatalf("after tap: output = %q, want %q", got, "abc")
	}

	// Hold with D-pad: selection only, no character on release.
	h.poll(withButtons(stickFor(0), input.Cross))
	h.poll(withButtons(stickFor(0), input.Cross|input.Left))
	h.poll(withButtons(stickFor(0), 0))
	if got := h.d.Session().String(); got != "abc" {
		t.Fatalf("after hold-select: output = %q, want %q", got, "abc")
	}
	start, end, _ := h.d.Session().Selection()
	if start != 2 || end != 3 {
		t.Fatalf("selection = [%d,%d), want [2,3)", start, end)
	}
}

func TestShiftHysteresis(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16})
	h.skipGrace()

	withL2 := func(v uint8) input.Sample {
		s := input.Neutral()
		s.L2 = v
		return s
	}

	h.poll(withL2(70))
	if got := h.d.Grid().CurrentPage; got != 1 {
		t.Fatalf("page after engage = %d, want 1", got)
	}

	// Between the thresholds nothing changes, in either direction.
	h.poll(withL2(50))
	h.poll(withL2(65))
	h.poll(withL2(45))
	if got := h.d.Grid().CurrentPage; got != 1 {
		t.Fatalf("page inside hysteresis band = %d, want 1", got)
	}

	h.poll(withL2(20))
	if got := h.d.Grid().CurrentPage; got != 0 {
		t.Fatalf("page after release = %d, want 0", got)
	}
}

func TestCapsLockDisarmsRestore(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16})
	h.skipGrace()

	// Engage shift and caps-lock it on the center cell.
	engaged := stickFor(4)
	engaged.L2 = 80
	h.poll(engaged)
	h.press(withButtons(engaged, input.Circle))
	if got := h.d.Grid().CurrentPage; got != 1 {
		t.Fatalf("page after caps = %d, want 1", got)
	}

	// Releasing the trigger restores nothing now.
	h.poll(input.Neutral())
	if got := h.d.Grid().CurrentPage; got != 1 {
		t.Fatalf("page after L2 release = %d, want 1 (caps locked)", got)
	}

	// The uppercase page is live for typing.
	h.press(withButtons(stickFor(0), input.Triangle))
	if got := h.d.Session().String(); got != "A" {
		t.Fatalf("output = %q, want %q", got, "A")
	}
}

func TestCenterOverrideClipboard(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16, Prefill: utf16Of("abc")})
	h.skipGrace()

	// Select all via the center Cross tap.
	h.press(withButtons(stickFor(4), input.Cross))
	if _, _, all := h.d.Session().Selection(); !all {
		t.Fatal("select-all not active")
	}

	// Shift + center Square = copy.
	engaged := stickFor(4)
	engaged.L2 = 80
	h.poll(engaged)
	h.press(withButtons(engaged, input.Square))
	if got := h.d.Session().ClipboardLen(); got != 3 {
		t.Fatalf("clipboard length = %d, want 3", got)
	}

	// Shift + center Triangle = paste, replacing the selection.
	h.press(withButtons(engaged, input.Triangle))
	if got := h.d.Session().String(); got != "abc" {
		t.Fatalf("output after paste-over-selection = %q, want %q", got, "abc")
	}

	// Shift + center Cross tap = cut.
	h.press(withButtons(stickFor(4), input.Cross)) // select all again (no shift)
	h.poll(engaged)
	h.press(withButtons(engaged, input.Cross))
	if got := h.d.Session().Len(); got != 0 {
		t.Fatalf("output length after cut = %d, want 0", got)
	}
	if got := h.d.Session().ClipboardLen(); got != 3 {
		t.Fatalf("clipboard length after cut = %d, want 3", got)
	}
}

func TestBackspaceHoldRepeat(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16, Prefill: utf16Of("aaaaaaaa")})
	h.skipGrace()

	held := withButtons(stickFor(4), input.Square)

	// The press edge deletes once through normal dispatch.
	h.poll(held)
	if got := h.d.Session().Len(); got != 7 {
		t.Fatalf("length after press = %d, want 7", got)
	}

	// Held inside the initial delay: no repeats.
	for h.clock.now().Sub(h.d.bsStart) < DefaultBackspaceDelay-tick {
		h.poll(held)
	}
	if got := h.d.Session().Len(); got != 7 {
		t.Fatalf("length during delay = %d, want 7", got)
	}

	// Past the delay, repeats fire on the interval.
	h.clock.advance(DefaultBackspaceDelay)
	h.pad.sample = held
	h.d.Poll()
	if got := h.d.Session().Len(); got != 6 {
		t.Fatalf("length after first repeat = %d, want 6", got)
	}
	h.clock.advance(DefaultBackspaceInterval)
	h.d.Poll()
	if got := h.d.Session().Len(); got != 5 {
		t.Fatalf("length after second repeat = %d, want 5", got)
	}

	// Leaving the cell resets the hold completely.
	h.poll(withButtons(stickFor(0), input.Square))
	if h.d.bsHeld {
		t.Fatal("hold state survived a cell change")
	}
}

func TestAccentTyping(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16})
	h.skipGrace()

	h.press(withButtons(input.Neutral(), input.L3))
	if !h.d.Grid().AccentMode {
		t.Fatal("accent mode not enabled by L3")
	}

	h.press(withButtons(stickFor(0), input.Triangle)) // 'a' -> a-acute
	h.press(withButtons(stickFor(0), input.Circle))   // 'b' has no accent
	text := h.d.Session().Text()
	if len(text) != 2 || text[0] != 0x00E1 || text[1] != 'b' {
		t.Fatalf("text = %v, want [0x00E1 'b']", text)
	}
}

func TestSymbolsToggle(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16})
	h.skipGrace()

	h.press(withButtons(input.Neutral(), input.R1))
	if got := h.d.Grid().CurrentPage; got != 2 {
		t.Fatalf("page after R1 = %d, want 2", got)
	}
	h.press(withButtons(stickFor(0), input.Triangle)) // '1'
	h.press(withButtons(input.Neutral(), input.L1))
	if got := h.d.Grid().CurrentPage; got != 0 {
		t.Fatalf("page after L1 = %d, want 0", got)
	}
	if got := h.d.Session().String(); got != "1" {
		t.Fatalf("output = %q, want %q", got, "1")
	}
}

func TestSubmitCopiesToSink(t *testing.T) {
	sink := make([]uint16, 16)
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16, Sink: sink, Prefill: utf16Of("ok")})
	h.skipGrace()

	if got := h.poll(withButtons(input.Neutral(), input.R2)); got != StatusFinished {
		t.Fatalf("poll after submit = %v, want finished", got)
	}
	end, text := h.d.Result()
	if end != EndOK {
		t.Fatalf("end status = %v, want ok", end)
	}
	if sink[0] != 'o' || sink[1] != 'k' || sink[2] != 0 {
		t.Fatalf("sink = %v, want 'o' 'k' 0...", sink[:3])
	}
	if len(text) != 2 {
		t.Fatalf("result text length = %d, want 2", len(text))
	}
}

func TestSnapshotPublish(t *testing.T) {
	region := gridipc.NewMemory()
	h := newHarness(t, Options{Publisher: gridipc.NewWriter(region)})
	h.init(Params{MaxLength: 16, Title: utf16Of("Name"), Prefill: utf16Of("hi")})
	h.skipGrace()

	engaged := stickFor(4)
	engaged.L2 = 80
	h.poll(engaged)

	var snap gridipc.Snapshot
	if !gridipc.NewReader(region).TryLoad(&snap) {
		t.Fatal("TryLoad failed on a quiescent region")
	}
	if !snap.Active || !snap.ShiftActive {
		t.Fatalf("flags = active %v shift %v, want both", snap.Active, snap.ShiftActive)
	}
	if snap.SelectedCell != int32(charset.CenterCell) {
		t.Fatalf("selected cell = %d, want %d", snap.SelectedCell, charset.CenterCell)
	}
	want := [4]byte{charset.SpecialPaste, charset.SpecialCaps, charset.SpecialCut, charset.SpecialCopy}
	if snap.Cells[charset.CenterCell] != want {
		t.Fatalf("center cell = %v, want override %v", snap.Cells[charset.CenterCell], want)
	}
	if text := snap.Text(); len(text) != 2 || text[0] != 'h' || text[1] != 'i' {
		t.Fatalf("snapshot text = %v, want 'hi'", snap.Text())
	}
	if title := snap.TitleUnits(); len(title) != 4 || title[0] != 'N' {
		t.Fatalf("title = %v, want 'Name'", title)
	}

	// Terminate clears only the active flag.
	h.d.Terminate()
	if !gridipc.NewReader(region).TryLoad(&snap) {
		t.Fatal("TryLoad after terminate failed")
	}
	if snap.Active {
		t.Fatal("snapshot still active after terminate")
	}
}

func TestReinitPreservesClipboard(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16, Prefill: utf16Of("keep")})
	h.skipGrace()

	h.press(withButtons(stickFor(4), input.Cross)) // select all
	engaged := stickFor(4)
	engaged.L2 = 80
	h.poll(engaged)
	h.press(withButtons(engaged, input.Square)) // copy
	h.d.Terminate()

	h.init(Params{MaxLength: 16})
	h.skipGrace()
	engaged.L2 = 80
	h.poll(engaged)
	h.press(withButtons(engaged, input.Triangle)) // paste
	if got := h.d.Session().String(); got != "keep" {
		t.Fatalf("output after cross-session paste = %q, want %q", got, "keep")
	}
}

func TestPadErrorReusesPreviousSample(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 16})
	h.skipGrace()

	h.poll(stickFor(8))
	if got := h.d.Grid().SelectedCell; got != 8 {
		t.Fatalf("selected cell = %d, want 8", got)
	}

	h.pad.err = errors.New("pad gone")
	h.clock.advance(tick)
	if got := h.d.Poll(); got != StatusRunning {
		t.Fatalf("poll with pad error = %v, want running", got)
	}
	if got := h.d.Grid().SelectedCell; got != 8 {
		t.Fatalf("selected cell after pad error = %d, want 8 (held)", got)
	}
}

func TestStatusLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	if got := h.d.Poll(); got != StatusNone {
		t.Fatalf("poll before init = %v, want none", got)
	}

	h.init(Params{MaxLength: 8})
	if got := h.d.Poll(); got != StatusRunning {
		t.Fatalf("poll after init = %v, want running", got)
	}

	h.skipGrace()
	h.poll(withButtons(input.Neutral(), input.Options))
	if got := h.d.Poll(); got != StatusFinished {
		t.Fatalf("poll after cancel = %v, want finished (sticky)", got)
	}

	h.d.Terminate()
	h.d.Terminate() // idempotent
	if got := h.d.Poll(); got != StatusNone {
		t.Fatalf("poll after terminate = %v, want none", got)
	}
}

func TestExitCellCancels(t *testing.T) {
	h := newHarness(t, Options{})
	h.init(Params{MaxLength: 8})
	h.skipGrace()

	h.press(withButtons(stickFor(4), input.Circle)) // center Circle = Exit
	if got := h.d.Poll(); got != StatusFinished {
		t.Fatalf("poll after exit cell = %v, want finished", got)
	}
	if end, _ := h.d.Result(); end != EndUserCancelled {
		t.Fatalf("end status = %v, want user-cancelled", end)
	}
}

func TestNotifyFallback(t *testing.T) {
	var got []string
	h := newHarness(t, Options{Notify: func(s string) { got = append(got, s) }})
	h.init(Params{MaxLength: 8})

	// During grace the fallback already reports state.
	h.poll(input.Neutral())
	if len(got) == 0 {
		t.Fatal("no notification during grace")
	}

	// Identical state is deduplicated even past the throttle window.
	n := len(got)
	h.clock.advance(time.Second)
	h.d.Poll()
	if len(got) != n {
		t.Fatalf("duplicate state re-notified: %d -> %d", n, len(got))
	}

	// A cell change re-notifies after the throttle.
	h.clock.advance(time.Second)
	h.poll(stickFor(0))
	if len(got) != n+1 {
		t.Fatalf("cell change not notified: %d -> %d", n, len(got))
	}
}
