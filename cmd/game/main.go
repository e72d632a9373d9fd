package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Temptress/internal/game"
	"github.com/Garsondee/Temptress/internal/view"
)

func main() {
	var opts view.Options
	opts.Register(flag.CommandLine)
	scale := flag.Int("scale", 3, "window scale")
	tps := flag.Int("tps", 20, "engine ticks per second")
	flag.Parse()

	s, err := view.Build(opts, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "temptress: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowTitle("Temptress")
	ebiten.SetWindowSize(game.ScreenWidth*(*scale), game.ScreenHeight*(*scale))
	ebiten.SetTPS(*tps)
	win := view.NewWindow(s.World, view.DefaultPalette(), s.Transcript, s.Log)
	if err := ebiten.RunGame(win); err != nil {
		s.Log.WithError(err).Fatal("window closed")
	}
}
