// thumbgrid-sim drives the keyboard engine end to end in a terminal: the
// keyboard simulates a controller, the engine renders into a virtual tiled
// framebuffer, and the framebuffer is previewed as truecolor half blocks.
// With IPC enabled the snapshot region is published exactly as on the
// console, so thumbgrid-mirror and thumbgridctl work against the simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf16"

	"github.com/gdamore/tcell/v2"

	"thumbgrid/cmd/thumbgrid-sim/internal/fbview"
	"thumbgrid/cmd/thumbgrid-sim/internal/simpad"
	"thumbgrid/internal/config"
	"thumbgrid/internal/driver"
	"thumbgrid/internal/logging"
	"thumbgrid/internal/render"
	"thumbgrid/internal/session"
	"thumbgrid/pkg/gridipc"
)

var (
	configPath = flag.String("config", "", "path to config file")
	ipcPath    = flag.String("ipc", "", "shared region path (overrides config)")
	tilingFlag = flag.String("tiling", "", "tiled or linear (overrides config)")
	soundFlag  = flag.Bool("sound", false, "enable keystroke clicks")
	logLevel   = flag.String("log-level", "", "log level (overrides config)")
)

const dialogMaxLength = 64

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	// The terminal belongs to tcell, so logs default to a file.
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "thumbgrid-sim.log")
	}
	closer, err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   logFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	log := logging.Component("sim")

	if err := run(cfg, log); err != nil {
		log.Error("simulator failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ipc":
			cfg.IPC.Path = *ipcPath
			cfg.IPC.Enabled = *ipcPath != ""
		case "tiling":
			cfg.Screen.Tiling = *tilingFlag
		case "sound":
			cfg.Sound.Enabled = *soundFlag
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})
}

// sim owns everything the tick loop touches.
type sim struct {
	cfg     *config.Config
	pending *config.Config // applied at the next dialog
	log     *slog.Logger

	screen  tcell.Screen
	padOnce *simpad.Pad
	surface *render.Surface
	writer  *gridipc.Writer
	drv     *driver.Driver
	click   *clicker

	bufs  [2][]uint32
	frame int

	inModal   bool
	endStatus driver.EndStatus
	endText   string
	lastLen   int
}

func run(cfg *config.Config, log *slog.Logger) error {
	s := &sim{cfg: cfg, log: log}

	if cfg.IPC.Enabled {
		w, err := gridipc.Create(cfg.IPC.Path)
		if err != nil {
			// Soft failure: the engine runs fine without a region.
			log.Warn("shared region unavailable", "path", cfg.IPC.Path, "error", err)
		} else {
			s.writer = w
			defer w.Close()
			log.Info("publishing snapshots", "path", cfg.IPC.Path)
		}
	}

	if cfg.Sound.Enabled {
		c, err := newClicker(cfg.Sound.Volume)
		if err != nil {
			log.Warn("audio unavailable", "error", err)
		} else {
			s.click = c
		}
	}

	if err := s.buildEngine(cfg); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	s.screen = screen

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var updates <-chan *config.Config
	if *configPath != "" {
		updates, err = config.Watch(ctx, *configPath, log)
		if err != nil {
			log.Warn("config watch unavailable", "error", err)
		}
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	if err := s.openDialog(); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			quit, err := s.handleEvent(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case ncfg := <-updates:
			s.pending = ncfg
			s.log.Info("config staged for next dialog")

		case <-ticker.C:
			s.tick()
		}
	}
}

// buildEngine (re)creates the surface, buffers and driver for cfg.
func (s *sim) buildEngine(cfg *config.Config) error {
	tiling := cfg.TilingMode()
	w := uint32(cfg.Screen.Width)
	h := uint32(cfg.Screen.Height)
	pitch := uint32(cfg.Screen.Pitch)

	need := render.BufferLen(tiling, pitch, h)
	s.bufs[0] = make([]uint32, need)
	s.bufs[1] = make([]uint32, need)

	s.surface = render.NewSurface()
	if err := s.surface.Register(0, [][]uint32{s.bufs[0], s.bufs[1]}, w, h, pitch, tiling); err != nil {
		return err
	}

	drv, err := driver.New(driver.Options{
		Pad:               s.pad(),
		Publisher:         s.writer,
		Surface:           s.surface,
		Log:               logging.Component("driver"),
		Grace:             cfg.Grace(),
		BackspaceDelay:    cfg.BackspaceDelay(),
		BackspaceInterval: cfg.BackspaceInterval(),
	})
	if err != nil {
		return err
	}
	s.drv = drv
	s.cfg = cfg
	return nil
}

// pad returns the virtual pad, creating it on first use so rebuilds keep
// the same instance (and its latches) across config reloads.
func (s *sim) pad() *simpad.Pad {
	if s.padOnce == nil {
		s.padOnce = simpad.New(nil)
	}
	return s.padOnce
}

func (s *sim) openDialog() error {
	if s.pending != nil {
		// Timing and geometry changes need a fresh driver; the session
		// clipboard lives in the old one and is lost, which mirrors the
		// engine restarting on the console.
		cfg := s.pending
		s.pending = nil
		if err := s.buildEngine(cfg); err != nil {
			return err
		}
		s.log.Info("config applied", "tiling", cfg.Screen.Tiling, "poll_hz", cfg.Timing.PollHz)
	}

	err := s.drv.Init(driver.Params{
		Panel:     session.PanelDefault,
		MaxLength: dialogMaxLength,
		Title:     utf16.Encode([]rune("Enter text")),
	})
	if err != nil {
		return err
	}
	s.inModal = false
	s.lastLen = 0
	return nil
}

func (s *sim) handleEvent(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return true, nil
		}
		if s.inModal {
			switch ev.Rune() {
			case 'q':
				return true, nil
			case 'n':
				s.pad().Release()
				return false, s.openDialog()
			}
			return false, nil
		}
		if !s.pad().HandleKey(ev) && ev.Rune() == 'q' {
			return true, nil
		}
	}
	return false, nil
}

// tick runs one poll and redraws the terminal.
func (s *sim) tick() {
	if s.inModal {
		s.drawModal()
		return
	}

	switch s.drv.Poll() {
	case driver.StatusRunning:
		idx := s.frame % 2
		s.frame++
		if err := s.surface.SubmitFlip(idx, time.Now()); err != nil {
			s.log.Warn("flip failed", "error", err)
			return
		}
		if s.click != nil {
			if n := s.drv.Session().Len(); n != s.lastLen {
				s.click.Play()
				s.lastLen = n
			}
		}
		s.drawFrame(idx)

	case driver.StatusFinished:
		end, text := s.drv.Result()
		s.endStatus = end
		s.endText = string(utf16.Decode(text))
		s.drv.Terminate()
		s.inModal = true
		s.drawModal()
	}
}

func (s *sim) drawFrame(idx int) {
	_, termH := s.screen.Size()
	target := &render.Target{
		Pix:    s.bufs[idx],
		Width:  uint32(s.cfg.Screen.Width),
		Height: uint32(s.cfg.Screen.Height),
		Pitch:  uint32(s.cfg.Screen.Pitch),
		Tiling: s.cfg.TilingMode(),
	}
	fbview.Draw(s.screen, target, 0, termH-1)
	s.drawStatusBar(termH - 1)
	s.screen.Show()
}

func (s *sim) drawStatusBar(y int) {
	style := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(140, 140, 160)).
		Background(tcell.NewRGBColor(20, 20, 30))
	help := " arrows:cell  ijkl:buttons  f:shift  g:accent  []:symbols  ,./home/end:cursor  enter:done  esc:cancel  q:quit"
	w, _ := s.screen.Size()
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(help) {
			r = rune(help[x])
		}
		s.screen.SetContent(x, y, r, nil, style)
	}
}

func (s *sim) drawModal() {
	s.screen.Clear()
	w, h := s.screen.Size()
	lines := []string{
		fmt.Sprintf("session finished: %s", s.endStatus),
		fmt.Sprintf("text: %q", s.endText),
		"",
		"[n] new dialog    [q] quit",
	}
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 200, 200))
	for i, line := range lines {
		y := h/2 - len(lines)/2 + i
		x := (w - len(line)) / 2
		if x < 0 {
			x = 0
		}
		for j, r := range line {
			s.screen.SetContent(x+j, y, r, nil, style)
		}
	}
	s.screen.Show()
}
