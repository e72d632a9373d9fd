package view

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Temptress/internal/game"
	"github.com/Garsondee/Temptress/internal/logger"
)

func demoWorld(t *testing.T, d game.Dialogue) *game.World {
	t.Helper()
	w, err := game.NewDemoWorld(game.Deps{Dialogue: d})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p[0] != ega[0] || p[15] != ega[15] {
		t.Fatal("palette should start with the EGA colours")
	}
	// Last shade of the first ramp is the full blue.
	if p[31] != ega[1] {
		t.Fatalf("expected ramp end %v, got %v", ega[1], p[31])
	}
	if len(p.Colors()) != 256 {
		t.Fatal("image palette should have 256 entries")
	}
}

func TestFrame_BlitAndExpand(t *testing.T) {
	f := NewFrame(DefaultPalette())
	src := game.NewSurface(game.ScreenWidth, game.ScreenHeight)
	src.Fill(game.Rect{X: 0, Y: 0, W: 32, H: 32}, 4)
	f.BlitRegion(src, 0, 0, 32, 32)
	f.BlitRegion(src, 300, 190, 64, 64) // clipped
	if f.Blits() != 2 || f.Blits() != 0 {
		t.Fatal("Blits should count and reset")
	}
	if f.Img.ColorIndexAt(31, 31) != 4 || f.Img.ColorIndexAt(32, 0) != 0 {
		t.Fatal("blit copied the wrong region")
	}
	pix := f.RGBA(nil)
	if len(pix) != game.ScreenWidth*game.ScreenHeight*4 {
		t.Fatalf("unexpected buffer size %d", len(pix))
	}
	if pix[0] != ega[4].R || pix[3] != 255 {
		t.Fatalf("first pixel %v", pix[:4])
	}
	if again := f.RGBA(pix); &again[0] != &pix[0] {
		t.Fatal("RGBA should reuse a big enough buffer")
	}
}

func TestFrame_RendersWorld(t *testing.T) {
	w := demoWorld(t, nil)
	f := NewFrame(DefaultPalette())
	stats := w.Render(f)
	if !stats.AllWrittenOnce() {
		t.Fatal("frame should be fully written")
	}
	// The hall floor starts at y=88.
	if f.Img.ColorIndexAt(30, 195) != 8 || f.Img.ColorIndexAt(5, 5) != 3 {
		t.Fatalf("unexpected hall colours %d/%d", f.Img.ColorIndexAt(30, 195), f.Img.ColorIndexAt(5, 5))
	}
}

func TestTranscript_KeepsLastLines(t *testing.T) {
	tick := 0
	tr := NewTranscript(DefaultStrings(), 2, func(id game.HotspotID) string {
		if id == game.PlayerID {
			return "player"
		}
		return ""
	})
	tr.Clock(func() int { return tick })
	tr.ShowMessage(game.PlayerID, game.MsgLocked)
	tick = 5
	tr.ShowMessage(game.PlayerID, 0x9999)
	tick = 9
	tr.StartConversation(1001, game.PlayerID, game.MsgNoReply)
	lines := tr.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines kept, got %d", len(lines))
	}
	if lines[0].Text != "player: <0x9999>" || lines[0].Tick != 5 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	last, _ := tr.Last()
	if last.Text != "1001 (to player): There's no reply." {
		t.Fatalf("unexpected last line %q", last.Text)
	}
}

func TestLoadStrings_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strings.yaml")
	if err := os.WriteFile(path, []byte("6: \"Bolted shut.\"\n0x8101: \"Evening.\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadStrings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Text(game.MsgLocked) != "Bolted shut." || s.Text(0x8101) != "Evening." {
		t.Fatalf("overrides not applied: %q %q", s.Text(game.MsgLocked), s.Text(0x8101))
	}
	if s.Text(game.MsgCantReach) != "I can't get there." {
		t.Fatal("defaults should survive")
	}
	if ids := s.SortedIDs(); ids[0] != game.MsgNothingHappens {
		t.Fatalf("ids not sorted: %v", ids[:3])
	}
}

func TestPointer_ClickWalksOrDispatches(t *testing.T) {
	w := demoWorld(t, nil)
	p := NewPointer()
	if p.Verb() != game.ActionLookAt {
		t.Fatal("pointer should start on look_at")
	}
	what, err := p.Click(w, 168, 150)
	if err != nil {
		t.Fatal(err)
	}
	if what != "walk to (160,150)" {
		t.Fatalf("unexpected click %q", what)
	}
	if w.Hotspot(game.PlayerID).Actions().TopKind() != game.ActionStartWalking {
		t.Fatal("player should be walking")
	}

	p.NextVerb()
	if got := p.Hover(w, 125, 65); got != "get fire" {
		t.Fatalf("unexpected hover %q", got)
	}
	if _, err := p.Click(w, 125, 65); err != nil {
		t.Fatal(err)
	}
	if w.Hotspot(game.PlayerID).Actions().TopKind() != game.ActionDispatch {
		t.Fatal("clicking a hotspot should dispatch")
	}
}

func TestTerminal_DrawAndInput(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(TermCols, TermRows+2)

	tr := NewTranscript(DefaultStrings(), 4, nil)
	w := demoWorld(t, tr)
	tr.Clock(w.CurrentTick)
	term := NewTerminal(s, w, DefaultPalette(), tr, logger.Discard())
	term.Draw()

	if r, _, _, _ := s.GetContent(0, 0); r != '▀' {
		t.Fatalf("expected half block, got %q", r)
	}
	var status strings.Builder
	for x := 0; x < 12; x++ {
		r, _, _, _ := s.GetContent(x, TermRows)
		status.WriteRune(r)
	}
	if !strings.HasPrefix(status.String(), "T=0 room 1") {
		t.Fatalf("unexpected status %q", status.String())
	}

	// Cell (42,18) is pixel (170,148).
	if !term.Handle(tcell.NewEventMouse(42, 18, tcell.Button1, tcell.ModNone)) {
		t.Fatal("click should keep the viewer running")
	}
	if w.Hotspot(game.PlayerID).Actions().TopKind() != game.ActionStartWalking {
		t.Fatal("click should send the player walking")
	}
	if term.Handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("q should quit")
	}
}

func TestTerminal_PollStopsWhenDone(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()

	tr := NewTranscript(DefaultStrings(), 4, nil)
	term := NewTerminal(s, demoWorld(t, tr), DefaultPalette(), tr, logger.Discard())
	done := make(chan struct{})
	events, stopped := term.pollEvents(done)

	// More events than the buffer holds, with nobody reading.
	for i := 0; i < termEventBuffer+2; i++ {
		s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	}
	close(done)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("event pump still running after done was closed")
	}
	n := 0
	for range events {
		n++
	}
	if n == 0 || n > termEventBuffer {
		t.Fatalf("expected between 1 and %d buffered events, got %d", termEventBuffer, n)
	}
}

func TestBuild_DemoWithTuning(t *testing.T) {
	var out strings.Builder
	s, err := Build(Options{Config: "../../configs/tuning.yaml", Seed: 4}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if s.World.Room() != 1 || s.World.Hotspot(game.PlayerID) == nil {
		t.Fatal("session should start in the player's room")
	}
	if s.Config.ForRoom(35).BlockedRetries != 10 {
		t.Fatal("tuning file not applied")
	}
	if !strings.Contains(out.String(), "world ready") {
		t.Fatalf("expected a startup log line, got %q", out.String())
	}

	if err := s.World.DispatchAction(game.PlayerID, game.ActionStatus, 0); err != nil {
		t.Fatal(err)
	}
	s.World.Run(10)
	last, ok := s.Transcript.Last()
	if !ok || last.Text != "player: I'm not carrying anything." {
		t.Fatalf("unexpected transcript %+v", last)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := Build(Options{Rooms: "does-not-exist.yaml"}, &strings.Builder{}); err == nil {
		t.Fatal("missing room file should fail")
	}
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Build(Options{Rooms: path}, &strings.Builder{}); err == nil {
		t.Fatal("a fixture file without rooms should fail")
	}
}
