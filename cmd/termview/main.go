package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Temptress/internal/view"
)

func main() {
	var opts view.Options
	opts.Register(flag.CommandLine)
	period := flag.Duration("tick", 50*time.Millisecond, "time per engine tick")
	logPath := flag.String("log", "", "log file (default: discard)")
	flag.Parse()

	// The terminal owns stdout and stderr while the viewer runs.
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath) // #nosec G304 -- path comes from the command line
		if err != nil {
			fmt.Fprintf(os.Stderr, "termview: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	s, err := view.Build(opts, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	term := view.NewTerminal(screen, s.World, view.DefaultPalette(), s.Transcript, s.Log)
	term.Run(*period)
	screen.Fini()
	s.Log.WithField("tick", s.World.CurrentTick()).Info("viewer closed")
}
