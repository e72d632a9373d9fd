package view

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Temptress/internal/game"
)

// Terminal size of the picture: each character cell shows a 4×8 pixel block
// as two half-block samples.
const (
	termCellW = 4
	termCellH = 8
	TermCols  = game.ScreenWidth / termCellW
	TermRows  = game.ScreenHeight / termCellH
)

// Terminal renders the world into a tcell screen with half-block characters
// and feeds mouse clicks to a Pointer.
type Terminal struct {
	screen     tcell.Screen
	world      *game.World
	frame      *Frame
	pointer    *Pointer
	transcript *Transcript
	log        logrus.FieldLogger
	paused     bool
	last       string
}

// NewTerminal wraps an initialised screen.
func NewTerminal(s tcell.Screen, w *game.World, p *Palette, transcript *Transcript, log logrus.FieldLogger) *Terminal {
	return &Terminal{
		screen:     s,
		world:      w,
		frame:      NewFrame(p),
		pointer:    NewPointer(),
		transcript: transcript,
		log:        log,
	}
}

func rgb(f *Frame, x, y int) tcell.Color {
	c := f.At(x, y)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Draw composes a frame and copies it to the screen, status lines below.
func (t *Terminal) Draw() {
	t.world.Render(t.frame)
	for cy := 0; cy < TermRows; cy++ {
		for cx := 0; cx < TermCols; cx++ {
			px, py := cx*termCellW+termCellW/2, cy*termCellH
			style := tcell.StyleDefault.
				Foreground(rgb(t.frame, px, py+termCellH/4)).
				Background(rgb(t.frame, px, py+termCellH*3/4))
			t.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
	status := fmt.Sprintf("T=%d room %d [%s] %s", t.world.CurrentTick(), t.world.Room(), t.pointer.Verb(), t.last)
	if t.paused {
		status += " (paused)"
	}
	t.putLine(TermRows, status)
	if t.transcript != nil {
		if l, ok := t.transcript.Last(); ok {
			t.putLine(TermRows+1, l.Text)
		}
	}
	t.screen.Show()
}

func (t *Terminal) putLine(row int, s string) {
	w, _ := t.screen.Size()
	col := 0
	for _, r := range s {
		if col >= w {
			break
		}
		t.screen.SetContent(col, row, r, nil, tcell.StyleDefault)
		col++
	}
	for ; col < w; col++ {
		t.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
	}
}

// Handle applies one input event and reports whether the viewer should keep
// running.
func (t *Terminal) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			return false
		case ev.Rune() == ' ':
			t.paused = !t.paused
		case ev.Rune() == 'v':
			t.pointer.NextVerb()
		}
	case *tcell.EventMouse:
		cx, cy := ev.Position()
		if cy >= TermRows {
			return true
		}
		x, y := cx*termCellW+termCellW/2, cy*termCellH+termCellH/2
		switch {
		case ev.Buttons()&tcell.Button1 != 0:
			what, err := t.pointer.Click(t.world, x, y)
			if err != nil {
				t.log.WithError(err).Warn("click ignored")
				return true
			}
			t.last = what
		case ev.Buttons()&tcell.Button2 != 0:
			t.pointer.NextVerb()
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

// Run ticks the world every period until quit is read from the keyboard.
func (t *Terminal) Run(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events, _ := t.pollEvents(done)

	for {
		select {
		case ev, ok := <-events:
			if !ok || !t.Handle(ev) {
				return
			}
		case <-ticker.C:
			if !t.paused {
				t.world.Tick()
			}
			t.Draw()
		}
	}
}

const termEventBuffer = 16

// pollEvents forwards screen events until the screen is finalised or done is
// closed. stopped is closed once the polling goroutine has returned.
func (t *Terminal) pollEvents(done <-chan struct{}) (events <-chan tcell.Event, stopped <-chan struct{}) {
	out := make(chan tcell.Event, termEventBuffer)
	exit := make(chan struct{})
	go func() {
		defer close(exit)
		defer close(out)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}()
	return out, exit
}
