// Command winpane confines a PTY-hosted child process's output to a
// rectangular sub-region of the host terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/javanhut/winpane/internal/cellgrid"
	"github.com/javanhut/winpane/internal/hostterm"
	"github.com/javanhut/winpane/internal/multiplex"
	"github.com/javanhut/winpane/internal/ptyshell"
	"github.com/javanhut/winpane/internal/render"
	"github.com/javanhut/winpane/internal/screen"
	"github.com/javanhut/winpane/internal/vtparse"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winpane [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Confines a child process's terminal output to a sub-region of this terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  winpane -x 4 -y 2 -w 80 -h 24\n")
		fmt.Fprintf(os.Stderr, "  winpane -c /bin/bash -debug-log /tmp/winpane.log\n")
	}

	xFlag := flag.Int("x", 9, "window left column (1-based); negative counts from the right edge")
	yFlag := flag.Int("y", 9, "window top row (1-based); negative counts from the bottom edge")
	wFlag := flag.Int("w", -16, "window width; non-positive means host columns + value")
	hFlag := flag.Int("h", -16, "window height; non-positive means host rows + value")
	command := flag.String("c", "/bin/sh", "child command to run")
	debugLog := flag.String("debug-log", "", "write diagnostic logging to this file instead of discarding it")
	flag.Parse()

	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("winpane: open debug log: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}

	hostCols, hostRows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		log.Fatalf("winpane: get terminal size: %v", err)
	}

	geom, err := resolveGeometry(*xFlag, *yFlag, *wFlag, *hFlag, hostCols, hostRows)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sess, err := ptyshell.Start(*command, uint16(geom.width), uint16(geom.height))
	if err != nil {
		log.Fatalf("winpane: %v", err)
	}
	defer sess.Close()

	grid := cellgrid.New(geom.width, geom.height)
	renderer := render.New(os.Stdout, grid, geom.originY, geom.originX)
	scr := screen.New(grid, renderer)
	parser := vtparse.New(scr)

	origState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("winpane: set raw mode: %v", err)
	}
	restoreHost := func() {
		term.Restore(int(os.Stdin.Fd()), origState)
		hostterm.Restore(os.Stdout, hostRows, hostCols)
	}
	defer restoreHost()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		restoreHost()
		os.Exit(0)
	}()

	hostterm.Install(os.Stdout, hostterm.Viewport{
		OriginY: geom.originY, OriginX: geom.originX,
		Height: geom.height, Width: geom.width,
	})
	for r := 0; r < geom.height; r++ {
		renderer.DrawLine(r, 0, geom.width-1, 0, 0)
	}
	renderer.MoveTo(0, 0)

	if *debugLog == "" {
		log.SetOutput(io.Discard)
	}

	loop := &multiplex.Loop{
		StdinFd: int(os.Stdin.Fd()),
		PTYFd:   int(sess.Fd()),
		OnStdin: func(b []byte) { sess.Write(b) },
		OnPTY:   func(b []byte) { parser.Feed(b) },
		Done:    sess.HasExited,
	}
	if err := loop.Run(); err != nil {
		log.Printf("winpane: multiplex loop: %v", err)
	}
}

type geometry struct {
	originY, originX int
	height, width    int
}

// resolveGeometry mirrors the reference implementation's argument parsing:
// negative x/y count from the far edge, non-positive w/h are interpreted
// relative to the host's own size, and the result is validated to fit
// entirely within the host terminal.
func resolveGeometry(x, y, w, h, hostCols, hostRows int) (geometry, error) {
	if w <= 0 {
		w += hostCols
	}
	if h <= 0 {
		h += hostRows
	}
	if x < 0 {
		x += hostCols + 1
	}
	if y < 0 {
		y += hostRows + 1
	}

	if x < 1 || y < 1 || w < 1 || h < 1 ||
		x+w-1 > hostCols || y+h-1 > hostRows {
		return geometry{}, fmt.Errorf("winpane: invalid position or size: x=%d y=%d w=%d h=%d (terminal %dx%d)",
			x, y, w, h, hostCols, hostRows)
	}

	return geometry{originY: y - 1, originX: x - 1, height: h, width: w}, nil
}
