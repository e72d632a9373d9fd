package game

import "testing"

// --- Invariant helpers ---

// checkFootprints verifies that every covered hotspot in room has its
// footprint marked on the room grid and that no other cell is. Cells shared
// by two footprints are skipped since the overlay does not count owners.
func checkFootprints(t *testing.T, w *World, room RoomID) {
	t.Helper()
	g := w.Grid(room)
	owners := make([]int, g.Cols()*g.Rows())
	for _, h := range w.registry.All() {
		if h.Room() != room || !h.covered {
			continue
		}
		if h.data.Character && h.footprint != h.FootprintCells() {
			t.Errorf("T=%d hotspot %d footprint %+v stale, standing on %+v",
				w.tick, h.ID(), h.footprint, h.FootprintCells())
		}
		fp := h.footprint
		for cx := max(fp.X, 0); cx < min(fp.X+fp.W, g.Cols()); cx++ {
			if fp.Y >= 0 && fp.Y < g.Rows() {
				owners[fp.Y*g.Cols()+cx]++
			}
		}
	}
	got := g.Occupancy()
	for i, n := range owners {
		if n > 1 {
			continue
		}
		if got[i] != (n == 1) {
			t.Errorf("T=%d room %d cell (%d,%d) occupied=%t, owners=%d",
				w.tick, room, i%g.Cols(), i/g.Cols(), got[i], n)
			return
		}
	}
}

// checkOnScreen verifies that every character's feet stay on the playfield.
func checkOnScreen(t *testing.T, w *World) {
	t.Helper()
	for _, h := range w.registry.All() {
		if !h.data.Character {
			continue
		}
		a := h.Anchor()
		if !screenRect.Contains(a.X, a.Y) || a.X+h.Width() > ScreenWidth {
			t.Errorf("T=%d hotspot %d off screen at %v", w.tick, h.ID(), a)
		}
	}
}

// checkFrame renders the room shown and verifies every cell was written once.
func checkFrame(t *testing.T, w *World) {
	t.Helper()
	b := NewRecordingBlitter()
	stats := w.Render(b)
	if !stats.AllWrittenOnce() {
		t.Errorf("T=%d frame of room %d wrote cells unevenly", w.tick, w.room)
	}
}

// checkStacks verifies that no stack grows without bound.
func checkStacks(t *testing.T, w *World, maxDepth int) {
	t.Helper()
	for _, h := range w.registry.All() {
		if n := h.actions.Len(); n > maxDepth {
			t.Errorf("T=%d hotspot %d stack depth %d: %s", w.tick, h.ID(), n, h.actions.String())
		}
	}
}

// --- Invariant scenarios ---

func TestInvariant_DemoRun(t *testing.T) {
	w, err := NewDemoWorld(Deps{Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2500; i++ {
		w.Tick()
		for room := range w.res.Rooms {
			checkFootprints(t, w, room)
		}
		checkOnScreen(t, w)
		checkStacks(t, w, 6)
		if i%50 == 0 {
			checkFrame(t, w)
		}
		if t.Failed() {
			t.Fatalf("invariant broken at T=%d\n%s", w.tick, w.HotspotDebugReport(DemoPorter, 200))
		}
	}
}

func TestInvariant_PlayerWanderingDemo(t *testing.T) {
	w, err := NewDemoWorld(Deps{Seed: 11})
	if err != nil {
		t.Fatal(err)
	}
	targets := []Point{{X: 250, Y: 180}, {X: 60, Y: 100}, {X: 300, Y: 150}, {X: 150, Y: 190}}
	for i := 0; i < 2000; i++ {
		if i%150 == 0 {
			p := targets[(i/150)%len(targets)]
			if err := w.RequestWalk(PlayerID, p.X, p.Y, 0); err != nil {
				t.Fatal(err)
			}
		}
		w.Tick()
		checkFootprints(t, w, w.Hotspot(PlayerID).Room())
		checkOnScreen(t, w)
		if i%25 == 0 {
			checkFrame(t, w)
		}
		if t.Failed() {
			t.Fatalf("invariant broken at T=%d\n%s", w.tick, w.HotspotDebugReport(PlayerID, 200))
		}
	}
}
