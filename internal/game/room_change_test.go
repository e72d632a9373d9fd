package game

import (
	"errors"
	"testing"
)

var (
	hallExit = RoomExit{Area: Rect{X: 304, Y: 96, W: 16, H: 104}, DestRoom: 2, DestX: 24, DestY: 150, Door: 2001, DestFacing: DirRight}
	backExit = RoomExit{Area: Rect{X: 0, Y: 96, W: 12, H: 104}, DestRoom: 1, DestX: 280, DestY: 150, Door: 2002, DestFacing: DirLeft}
	farExit  = RoomExit{Area: Rect{X: 304, Y: 112, W: 16, H: 56}, DestRoom: 35, DestX: 16, DestY: 140}
)

func twoRooms(extra ...WorldOption) []WorldOption {
	return append([]WorldOption{
		WithRoom(1, ""),
		WithRoom(2, ""),
		WithExit(1, hallExit),
		WithExit(2, backExit),
		WithJoin(ExitJoin{Doors: [2]HotspotID{2001, 2002}, DestFrame: [2]int{2, 2}}),
	}, extra...)
}

func TestExit_MovesPlayerAndSwapsRooms(t *testing.T) {
	tw := NewTestWorld(twoRooms(
		WithPlayer(1, 200, 150),
		WithHotspot(HotspotData{ID: 3001, Name: "fire", Room: 1, X: 120, Y: 60, Width: 16, Height: 16}),
		WithHotspot(HotspotData{ID: 3002, Name: "torch", Room: 2, X: 240, Y: 20, Width: 6, Height: 12}),
	)...)
	if tw.Hotspot(3001) == nil || tw.Hotspot(3002) != nil {
		t.Fatal("only the hall's hotspots should start active")
	}
	if err := tw.RequestWalk(PlayerID, 304, 150, 0); err != nil {
		t.Fatal(err)
	}
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Room() == 2 }, 100) < 0 {
		t.Fatalf("player never left the hall\n%s", tw.HotspotDebugReport(PlayerID, 100))
	}
	p := tw.MustHotspot(PlayerID)
	if p.Room() != 2 || p.Anchor() != (Point{X: 24, Y: 150}) {
		t.Fatalf("player at room %d %v", p.Room(), p.Anchor())
	}
	if p.Facing() != DirRight {
		t.Fatalf("player should face into the room, facing %s", p.Facing())
	}
	if !p.actions.Empty() {
		t.Fatalf("walk should be dropped on arrival, stack %s", p.actions.String())
	}
	if tw.Hotspot(3001) != nil || tw.Hotspot(3002) == nil {
		t.Fatal("room change should swap the active hotspots")
	}
	if !tw.Grid(2).IsOccupied(3, 18) || tw.Grid(1).OccupiedCount() != 0 {
		t.Fatal("occupancy should move with the player")
	}
	if !tw.Events().HasEntry("room", "change", "1 -> 2") {
		t.Fatal("expected room change event")
	}
}

func TestExit_ClosedDoorIgnored(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithRoom(2, ""),
		WithExit(1, hallExit),
		WithJoin(ExitJoin{Doors: [2]HotspotID{2001, 2002}, Blocked: true, DestFrame: [2]int{2, 2}}),
		WithPlayer(1, 200, 150),
	)
	if err := tw.RequestWalk(PlayerID, 304, 150, 0); err != nil {
		t.Fatal(err)
	}
	tw.RunUntil(func(tw *TestWorld) bool { return tw.Idle(PlayerID) }, 100)
	if tw.Room() != 1 {
		t.Fatal("a closed door should not let the player through")
	}
	if _, ok := tw.Route(1, 2); ok {
		t.Fatal("route should skip a closed door")
	}
	tw.JoinFor(2001).Blocked = false
	ex, ok := tw.Route(1, 2)
	if !ok || ex.Door != 2001 {
		t.Fatalf("expected the hall exit, got %+v %t", ex, ok)
	}
}

func TestRoute_MultiHop(t *testing.T) {
	tw := NewTestWorld(twoRooms(
		WithRoom(35, ""),
		WithExit(2, farExit),
	)...)
	ex, ok := tw.Route(1, 35)
	if !ok || ex.DestRoom != 2 {
		t.Fatalf("first hop from the hall should lead to the cellar, got %+v %t", ex, ok)
	}
	if ex, ok := tw.Route(2, 35); !ok || ex.DestRoom != 35 {
		t.Fatalf("cellar should exit straight to the corridor, got %+v", ex)
	}
	if _, ok := tw.Route(35, 1); ok {
		t.Fatal("the corridor has no way back")
	}
	if _, ok := tw.Route(1, 1); ok {
		t.Fatal("no route within the same room")
	}
}

func TestMaterialize_NudgesOffOccupant(t *testing.T) {
	tw := NewTestWorld(twoRooms(
		WithPlayer(1, 200, 150),
		WithNPC(1001, 2, 24, 150, 1),
		WithSchedule(1, ScheduleEntry{Action: NPCPause, Param: 1000}),
	)...)
	if err := tw.RequestWalk(PlayerID, 304, 150, 0); err != nil {
		t.Fatal(err)
	}
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Room() == 2 }, 100) < 0 {
		t.Fatal("player never changed room")
	}
	// +8 and -8 still overlap the occupant; +16 clears it.
	if x := tw.MustHotspot(PlayerID).X(); x != 40 {
		t.Fatalf("player materialized at x=%d, want 40", x)
	}
	if n := tw.Events().CountCategory("room", "materialize_nudge"); n != 3 {
		t.Fatalf("expected 3 nudges, got %d", n)
	}
}

func TestNPC_TravelsToScheduledRoom(t *testing.T) {
	tw := NewTestWorld(twoRooms(
		WithPlayer(1, 40, 150),
		WithNPC(1001, 1, 100, 150, 1),
		WithHotspot(HotspotData{ID: 3002, Name: "torch", Room: 2, X: 200, Y: 140, Width: 8, Height: 8, WalkX: 200, WalkY: 150}),
		WithSchedule(1,
			ScheduleEntry{Action: NPCSetRoomAndOffset, Param: 2},
			ScheduleEntry{Action: ActionGoTo, Target: 3002},
		),
	)...)
	npc := tw.MustHotspot(1001)
	arrived := func(tw *TestWorld) bool { return npc.Room() == 2 && npc.actions.Empty() }
	if tw.RunUntil(arrived, 1000) < 0 {
		t.Fatalf("npc never reached the cellar target\n%s", tw.HotspotDebugReport(1001, 1000))
	}
	if a := npc.Anchor(); a != (Point{X: 200, Y: 150}) {
		t.Fatalf("npc ended at %v", a)
	}
	if tw.Room() != 1 {
		t.Fatal("an npc leaving should not change the room shown")
	}
	if !tw.Events().HasEntry("room", "travel", "1 -> 2") {
		t.Fatal("expected travel event")
	}
	if tw.Grid(1).IsOccupied(12, 18) {
		t.Fatal("npc footprint left behind in the hall")
	}
}

func TestTravel_NoRouteDropsEntry(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithRoom(2, ""),
		WithPlayer(1, 100, 150),
		WithHotspot(HotspotData{ID: 3002, Name: "torch", Room: 2, X: 200, Y: 140, Width: 8, Height: 8}),
	)
	if err := tw.DispatchAction(PlayerID, ActionGet, 3002); err != nil {
		t.Fatal(err)
	}
	tw.RunTicks(1)
	if !tw.Events().HasEntry("room", "no_route", "1 -> 2") {
		t.Fatalf("expected no_route\n%s", tw.Events().Format())
	}
	if !tw.Idle(PlayerID) {
		t.Fatal("entry should be dropped")
	}
}

func TestExitScript_RunsInsteadOfMove(t *testing.T) {
	scripted := hallExit
	scripted.Script = 0x71
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithRoom(2, ""),
		WithExit(1, scripted),
		WithPlayer(1, 200, 150),
		WithScript(0x71, func(*World, ScriptCall) uint16 { return 0x8700 }),
	)
	if err := tw.RequestWalk(PlayerID, 304, 150, 0); err != nil {
		t.Fatal(err)
	}
	tw.RunUntil(func(tw *TestWorld) bool { return tw.Idle(PlayerID) }, 100)
	if tw.Room() != 1 {
		t.Fatal("script exit should not move the player itself")
	}
	if tw.Scripts.CallCount(0x71) != 1 || !tw.Dialogue.Has(PlayerID, 0x8700) {
		t.Fatalf("script calls=%d shown=%+v", tw.Scripts.CallCount(0x71), tw.Dialogue.Shown)
	}
}

func TestExitScript_MoveToRoom(t *testing.T) {
	scripted := hallExit
	scripted.Script = 0x70
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithRoom(2, ""),
		WithExit(1, scripted),
		WithPlayer(1, 200, 150),
		WithScript(0x70, func(w *World, c ScriptCall) uint16 {
			if err := w.MoveToRoom(c.Actor, 2, 160, 150); err != nil {
				panic(err)
			}
			return ScriptDone
		}),
	)
	if err := tw.RequestWalk(PlayerID, 304, 150, 0); err != nil {
		t.Fatal(err)
	}
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Room() == 2 }, 100) < 0 {
		t.Fatal("script should move the player")
	}
	if a := tw.MustHotspot(PlayerID).Anchor(); a != (Point{X: 160, Y: 150}) {
		t.Fatalf("player at %v", a)
	}
}

func TestRoomErrors(t *testing.T) {
	tw := NewTestWorld(WithRoom(1, ""), WithPlayer(1, 100, 150))
	if err := tw.EnterRoom(9); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom, got %v", err)
	}
	if err := tw.MoveToRoom(4242, 1, 0, 0); !errors.Is(err, ErrUnknownHotspot) {
		t.Fatalf("expected ErrUnknownHotspot, got %v", err)
	}
	if err := tw.MoveToRoom(PlayerID, 9, 0, 0); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom, got %v", err)
	}
}
