// thumbgrid-mirror shows the shared thumbgrid snapshot in a native window,
// the way the console shell overlay mirrors the in-game keyboard. It only
// reads the region; the engine process keeps publishing regardless.
package main

import (
	"flag"
	"log/slog"
	"os"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"thumbgrid/cmd/thumbgrid-mirror/internal/theme"
	"thumbgrid/cmd/thumbgrid-mirror/internal/ui"
	"thumbgrid/internal/logging"
	"thumbgrid/pkg/gridipc"
)

var (
	ipcPath  = flag.String("ipc", gridipc.DefaultPath, "path to the shared snapshot region")
	logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

// pollInterval is how often the region is checked for a new sequence.
const pollInterval = 33 * time.Millisecond

// snapshotFeed is the poller-to-UI handoff: the poll goroutine stores the
// latest consistent snapshot, the frame handler copies it out.
type snapshotFeed struct {
	mu   sync.Mutex
	snap gridipc.Snapshot
	ok   bool
}

func (f *snapshotFeed) store(s *gridipc.Snapshot) {
	f.mu.Lock()
	f.snap = *s
	f.ok = true
	f.mu.Unlock()
}

func (f *snapshotFeed) load() (gridipc.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.ok
}

func main() {
	flag.Parse()

	closer, err := logging.Init(logging.Config{Level: *logLevel})
	if err != nil {
		slog.Error("logging setup failed", "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	log := logging.Component("mirror")

	feed := &snapshotFeed{}

	go func() {
		w := new(app.Window)
		w.Option(app.Title("ThumbGrid Mirror"))
		w.Option(app.Size(unit.Dp(460), unit.Dp(560)))

		go pollRegion(w, feed, log)

		if err := loop(w, feed); err != nil {
			log.Error("window loop failed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

// pollRegion watches the region and invalidates the window whenever the
// sequence advances. A missing region is retried; the UI keeps showing the
// waiting placeholder until the engine creates it.
func pollRegion(w *app.Window, feed *snapshotFeed, log *slog.Logger) {
	var reader *gridipc.Reader
	var lastSeq uint32

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		if reader == nil {
			r, err := gridipc.OpenReader(*ipcPath)
			if err != nil {
				continue
			}
			reader = r
			log.Info("region mapped", "path", *ipcPath)
		}

		seq := reader.Sequence()
		if seq == lastSeq {
			continue
		}
		var snap gridipc.Snapshot
		if !reader.TryLoad(&snap) {
			continue // writer mid-update, next tick gets it
		}
		lastSeq = seq
		feed.store(&snap)
		w.Invalidate()
	}
}

func loop(w *app.Window, feed *snapshotFeed) error {
	t := theme.NewTheme(material.NewTheme())
	mirror := ui.NewMirror(t)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			snap, ok := feed.load()
			mirror.Layout(gtx, &snap, ok)
			e.Frame(gtx.Ops)
		}
	}
}
