// thumbgridctl is the diagnostic CLI for the thumbgrid shared region.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thumbgrid/internal/charset"
	"thumbgrid/pkg/gridipc"
)

var (
	ipcPath = flag.String("ipc", gridipc.DefaultPath, "path to the shared snapshot region")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	switch cmd := flag.Arg(0); cmd {
	case "status":
		cmdStatus()
	case "watch":
		cmdWatch()
	case "path":
		fmt.Println(*ipcPath)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `thumbgridctl - Inspect the thumbgrid shared snapshot region

Usage: thumbgridctl [options] <command>

Commands:
  status    Decode and print the current snapshot once
  watch     Print a line on every snapshot change until interrupted
  path      Print the region path in use
  help      Show this help message

Options:
  -ipc <path>  Region path (default: ` + gridipc.DefaultPath + `)`)
}

func openReader() *gridipc.Reader {
	r, err := gridipc.OpenReader(*ipcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening region: %v\n", err)
		os.Exit(1)
	}
	return r
}

func cmdStatus() {
	r := openReader()
	defer r.Close()

	var snap gridipc.Snapshot
	if !r.Load(&snap, 10) {
		fmt.Println("region busy: no consistent snapshot after 10 attempts")
		os.Exit(1)
	}
	printSnapshot(&snap, r.Sequence())
}

func cmdWatch() {
	r := openReader()
	defer r.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var lastSeq uint32
	first := true
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			seq := r.Sequence()
			if !first && seq == lastSeq {
				continue
			}
			var snap gridipc.Snapshot
			if !r.TryLoad(&snap) {
				continue
			}
			lastSeq = seq
			first = false
			fmt.Printf("seq=%d active=%v page=%s cell=%d cursor=%d text=%q\n",
				seq, snap.Active, pageName(&snap), snap.SelectedCell,
				snap.TextCursor, asString(snap.Text()))
		}
	}
}

func printSnapshot(s *gridipc.Snapshot, seq uint32) {
	fmt.Printf("sequence:  %d\n", seq)
	fmt.Printf("active:    %v\n", s.Active)
	if !s.Active {
		return
	}
	fmt.Printf("title:     %q\n", asString(s.TitleUnits()))
	fmt.Printf("page:      %s (%d)\n", pageName(s), s.CurrentPage)
	fmt.Printf("cell:      %d\n", s.SelectedCell)
	fmt.Printf("accent:    %v\n", s.AccentMode)
	fmt.Printf("shift:     %v\n", s.ShiftActive)
	fmt.Printf("text:      %q (%d/%d units, cursor %d)\n",
		asString(s.Text()), s.OutputLen, len(s.Output), s.TextCursor)
	if s.SelectedAll {
		fmt.Printf("selection: all\n")
	} else if s.SelStart != s.SelEnd {
		fmt.Printf("selection: [%d,%d)\n", s.SelStart, s.SelEnd)
	} else {
		fmt.Printf("selection: none\n")
	}
	fmt.Printf("offset:    %+d%+d\n", s.OffsetX, s.OffsetY)
	fmt.Println("cells:")
	for cell := 0; cell < charset.Cells; cell++ {
		labels := make([]string, charset.ButtonsPerCell)
		for btn, c := range s.Cells[cell] {
			if charset.IsSpecial(c) {
				labels[btn] = charset.Label(c)
			} else {
				labels[btn] = string(rune(c))
			}
		}
		fmt.Printf("  %d: %s\n", cell, strings.Join(labels, " "))
	}
}

func pageName(s *gridipc.Snapshot) string {
	name := s.PageName[:]
	for i, b := range name {
		if b == 0 {
			return string(name[:i])
		}
	}
	return string(name)
}

func asString(units []uint16) string {
	var b strings.Builder
	for _, u := range units {
		if u < 128 {
			b.WriteByte(byte(u))
		} else {
			b.WriteRune(rune(u))
		}
	}
	return b.String()
}
