package game

import "testing"

func TestStandard_AnimScript(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithAnimScript(0x10,
			AnimOp{Op: OpFrame, A: 1},
			AnimOp{Op: OpTimeout, A: 2},
			AnimOp{Op: OpChangePos, A: 4},
			AnimOp{Op: OpTimeout, A: 1},
			AnimOp{Op: OpUnload},
		),
		WithHotspot(HotspotData{ID: 3001, Name: "smoke", Room: 1, X: 50, Y: 50, Width: 8, Height: 8, TickProc: TickStandard, ScriptOffset: 0x10}),
	)
	h := tw.MustHotspot(3001)
	tw.RunTicks(1)
	if h.Frame() != 1 {
		t.Fatalf("frame = %d after the first tick", h.Frame())
	}
	tw.RunTicks(1)
	if h.X() != 50 {
		t.Fatal("timeout should hold the script")
	}
	tw.RunTicks(1)
	if h.X() != 54 {
		t.Fatalf("x = %d, want 54", h.X())
	}
	tw.RunTicks(1)
	if tw.Hotspot(3001) != nil {
		t.Fatal("unload should deactivate the hotspot")
	}
	if !tw.Events().HasEntry("anim", "unload", "0x10") {
		t.Fatal("expected unload event")
	}
}

func TestStandard_RunawayJumpIsBounded(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithAnimScript(0x11, AnimOp{Op: OpFrame, A: 1}, AnimOp{Op: OpJump, A: 0}),
		WithHotspot(HotspotData{ID: 3001, Name: "spin", Room: 1, Width: 8, Height: 8, TickProc: TickStandard, ScriptOffset: 0x11}),
	)
	tw.RunTicks(3)
	if tw.MustHotspot(3001).Frame() != 1 {
		t.Fatal("script should still have run")
	}
}

func TestFire_CyclesFrames(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithAnimation(blockAnimation(5, 8, 8, 10, 4)),
		WithHotspot(HotspotData{ID: 3001, Name: "fire", Room: 1, Width: 8, Height: 8, TickProc: TickFire, Anim: 5, FrameSkip: 1, Layer: LayerFront}),
	)
	h := tw.MustHotspot(3001)
	var frames []int
	for i := 0; i < 8; i++ {
		tw.RunTicks(1)
		frames = append(frames, h.Frame())
	}
	want := []int{1, 1, 2, 2, 3, 3, 0, 0}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("frames %v, want %v", frames, want)
		}
	}
}

func TestDroppingTorch_FallsAndBurnsOut(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithHotspot(HotspotData{ID: 3002, Name: "torch", Room: 1, X: 240, Y: 20, Width: 6, Height: 12, TickProc: TickDroppingTorch, WalkY: 150}),
	)
	h := tw.MustHotspot(3002)
	landed := tw.RunUntil(func(tw *TestWorld) bool { return tw.Events().HasEntry("anim", "landed", "") }, 100)
	if landed != 30 {
		t.Fatalf("landed on tick %d, want 30", landed)
	}
	if h.Y()+h.Height() != 150 {
		t.Fatalf("torch should rest on the floor line, y=%d", h.Y())
	}
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Hotspot(3002) == nil }, 100) < 0 {
		t.Fatal("torch never burnt out")
	}
	if tw.Data(3002).Room != 0 {
		t.Fatal("burnt torch should not come back on re-entry")
	}
}

func TestWatcher_FacesPlayer(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithPlayer(1, 40, 150),
		WithHotspot(HotspotData{ID: 1002, Name: "cat", Room: 1, X: 100, Y: 140, Width: 16, Height: 12, TickProc: TickWatcher}),
	)
	cat := tw.MustHotspot(1002)
	tw.RunTicks(1)
	if cat.Facing() != DirLeft {
		t.Fatalf("cat faces %s, want left", cat.Facing())
	}
	tw.MustHotspot(PlayerID).setAnchor(Point{X: 200, Y: 150})
	tw.RunTicks(1)
	if cat.Facing() != DirRight {
		t.Fatalf("cat faces %s, want right", cat.Facing())
	}
}

func TestRoomExitDoor_OpensAndUncovers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DoorFrameTicks = 2
	tw := NewTestWorld(
		WithConfig(cfg),
		WithRoom(1, ""),
		WithHotspot(doorData()),
		WithJoin(ExitJoin{Doors: [2]HotspotID{testDoor, 2002}, Blocked: true, DestFrame: [2]int{2, 2}}),
	)
	door := tw.MustHotspot(testDoor)
	if door.Frame() != 2 || !door.covered {
		t.Fatalf("closed door should start shut and covered, frame=%d covered=%t", door.Frame(), door.covered)
	}
	tw.RunTicks(2)
	if door.Frame() != 2 {
		t.Fatal("a shut door should not move")
	}
	tw.JoinFor(testDoor).Blocked = false
	tw.RunTicks(1)
	if door.Frame() != 1 {
		t.Fatalf("frame = %d, want 1", door.Frame())
	}
	tw.RunTicks(1)
	if door.Frame() != 1 {
		t.Fatal("door frames should hold for door_frame_ticks")
	}
	tw.RunTicks(1)
	if door.Frame() != 0 || door.covered {
		t.Fatalf("door should be open and uncovered, frame=%d covered=%t", door.Frame(), door.covered)
	}
	if !tw.Events().HasEntry("door", "open", "frame 0") {
		t.Fatal("expected open event")
	}
	if tw.Grid(1).IsOccupied(35, 18) {
		t.Fatal("open door should free its footprint")
	}
}

func TestNewBehaviour_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	newBehaviour(TickProc(99))
}
