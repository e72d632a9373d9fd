package view

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Temptress/internal/game"
)

// Window is the ebiten front end. It runs one world tick per ebiten update
// and shows the composed frame at the engine's native resolution.
type Window struct {
	world      *game.World
	frame      *Frame
	pix        []byte
	pointer    *Pointer
	transcript *Transcript
	log        logrus.FieldLogger

	paused   bool
	showHelp bool
	hover    string
	stats    game.FrameStats
}

// NewWindow wraps w. transcript may be nil when w shows messages elsewhere.
func NewWindow(w *game.World, p *Palette, transcript *Transcript, log logrus.FieldLogger) *Window {
	return &Window{
		world:      w,
		frame:      NewFrame(p),
		pointer:    NewPointer(),
		transcript: transcript,
		log:        log,
	}
}

// Update implements ebiten.Game.
func (v *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.showHelp = !v.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		v.log.Info("\n" + v.world.HotspotDebugReport(game.PlayerID, 120))
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.pointer.NextVerb()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		what, err := v.pointer.Click(v.world, x, y)
		if err != nil {
			v.log.WithError(err).Warn("click ignored")
		} else {
			v.log.WithFields(logrus.Fields{"x": x, "y": y}).Debug(what)
		}
	}
	v.hover = v.pointer.Hover(v.world, x, y)

	if !v.paused {
		v.world.Tick()
	}
	return nil
}

// Draw implements ebiten.Game.
func (v *Window) Draw(screen *ebiten.Image) {
	v.stats = v.world.Render(v.frame)
	v.pix = v.frame.RGBA(v.pix)
	screen.WritePixels(v.pix)
	ebitenutil.DebugPrint(screen, v.statusLine())
}

// Layout implements ebiten.Game.
func (v *Window) Layout(int, int) (int, int) {
	return game.ScreenWidth, game.ScreenHeight
}

func (v *Window) statusLine() string {
	s := fmt.Sprintf("T=%d room %d [%s] %s", v.world.CurrentTick(), v.world.Room(), v.pointer.Verb(), v.hover)
	if v.paused {
		s += " (paused)"
	}
	if v.transcript != nil {
		if l, ok := v.transcript.Last(); ok && v.world.CurrentTick()-l.Tick < 200 {
			s += "\n" + l.Text
		}
	}
	if v.showHelp {
		s += fmt.Sprintf("\nleft: walk/%s  right: next verb\nspace: pause  d: dump player  esc: quit\ncells: %d sprites: %d",
			v.pointer.Verb(), v.stats.EntityCells+v.stats.ForegroundCells+v.stats.BackgroundCells, v.stats.Sprites)
	}
	return s
}
