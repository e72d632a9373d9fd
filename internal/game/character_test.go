package game

import (
	"strings"
	"testing"
)

// wallArt is a full room with a solid wall down column col.
func wallArt(col int) string {
	row := strings.Repeat(".", col) + "#" + strings.Repeat(".", GridCols-col-1)
	return strings.Repeat(row+"\n", GridRows)
}

// lever is a plain hotspot across the wall from the left half of wallArt(20).
func lever() HotspotData {
	return HotspotData{ID: 3001, Name: "lever", Room: 1, X: 280, Y: 140, Width: 8, Height: 8, WalkX: 280, WalkY: 150}
}

func TestOutranks_PlayerThenLowerID(t *testing.T) {
	p, a, b := testHotspot(PlayerID), testHotspot(1001), testHotspot(1002)
	if !outranks(p, a) || outranks(a, p) {
		t.Fatal("player should outrank every NPC")
	}
	if !outranks(a, b) || outranks(b, a) {
		t.Fatal("lower id should win between NPCs")
	}
}

func TestBump_PlayerKeepsCourse(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithPlayer(1, 100, 150),
		WithNPC(1001, 1, 108, 150, 1),
		WithSchedule(1, ScheduleEntry{Action: NPCPause, Param: 500}),
	)
	if err := tw.RequestWalk(PlayerID, 200, 150, 0); err != nil {
		t.Fatal(err)
	}
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Events().CountCategory("bump", "pause") > 0 }, 20) < 0 {
		t.Fatalf("expected a bump\n%s", tw.Events().Format())
	}
	p, npc := tw.MustHotspot(PlayerID), tw.MustHotspot(1001)
	if _, pause, _ := p.Countdowns(); pause != tw.Config().BumpPauseTicks {
		t.Fatalf("player should pause %d ticks, got %d", tw.Config().BumpPauseTicks, pause)
	}
	if !tw.Events().HasEntry("bump", "redirect", "from 1000") {
		t.Fatalf("npc should be redirected\n%s", tw.Events().Format())
	}
	if npc.avoid != PlayerID || p.avoid != 1001 {
		t.Fatalf("avoid not set: player=%d npc=%d", p.avoid, npc.avoid)
	}

	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Idle(PlayerID) }, 300) < 0 {
		t.Fatalf("player never finished the walk\n%s", tw.HotspotDebugReport(PlayerID, 300))
	}
	if a := p.Anchor(); a.X != 200 || a.Y != 150 {
		t.Fatalf("player ended at %v", a)
	}
	if len(tw.Events().Filter("bump", "stuck")) != 0 {
		t.Fatal("a free room always has somewhere to send the loser")
	}
}

func TestBump_LoserWithoutFreeSpotPauses(t *testing.T) {
	art := strings.Repeat(strings.Repeat("#", GridCols)+"\n", 18) +
		strings.Repeat("#", 10) + "..." + strings.Repeat("#", GridCols-13) + "\n" +
		strings.Repeat(strings.Repeat("#", GridCols)+"\n", GridRows-19)
	tw := NewTestWorld(
		WithRoom(1, art),
		WithNPC(1001, 1, 80, 150, 0),
		WithNPC(1002, 1, 88, 150, 0),
	)
	a, b := tw.MustHotspot(1001), tw.MustHotspot(1002)
	b.actions.Push(ActionEntry{Kind: ActionWalking})
	tw.bump(b, a)

	cfg := tw.Config()
	if _, pause, _ := a.Countdowns(); pause != cfg.BumpPauseTicks {
		t.Fatalf("winner pause = %d, want %d", pause, cfg.BumpPauseTicks)
	}
	if _, pause, _ := b.Countdowns(); pause != cfg.BlockedPauseTicks {
		t.Fatalf("loser pause = %d, want %d", pause, cfg.BlockedPauseTicks)
	}
	if !b.actions.Empty() {
		t.Fatalf("loser walk should be popped, stack %s", b.actions.String())
	}
	if !tw.Events().HasEntry("bump", "stuck", "from 1001") {
		t.Fatalf("expected stuck event\n%s", tw.Events().Format())
	}
	if !tw.Events().HasEntry("walk", "no_random_dest", "") {
		t.Fatal("expected the random destination search to fail")
	}
}

func TestPlayerBlocked_RetriesThenGivesUp(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, wallArt(20)),
		WithPlayer(1, 80, 150),
	)
	if err := tw.RequestWalk(PlayerID, 240, 150, 0); err != nil {
		t.Fatal(err)
	}
	p := tw.MustHotspot(PlayerID)
	if tw.RunUntil(func(*TestWorld) bool { return p.Blocked() }, 500) < 0 {
		t.Fatalf("walk never gave up\n%s", tw.Events().Format())
	}
	retries := tw.Config().BlockedRetries
	if n := tw.Events().CountCategory("walk", "retry"); n != retries-1 {
		t.Fatalf("expected %d retries, got %d", retries-1, n)
	}
	if !p.actions.Empty() {
		t.Fatalf("player stack should be empty, got %s", p.actions.String())
	}
	if a := p.Anchor(); a.X != 80 || a.Y != 150 {
		t.Fatalf("player should stay put, at %v", a)
	}
	if tw.Events().HasEntry("hotspot", "activate", "puzzled") {
		t.Fatal("the player never shows a puzzled mark")
	}
}

func TestBlockedRetries_RoomOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoomOverrides = map[RoomID]RoomTuning{35: {BlockedRetries: 10, BlockedPauseTicks: 2}}
	tw := NewTestWorld(
		WithConfig(cfg),
		WithRoom(35, wallArt(20)),
		WithPlayer(35, 80, 150),
	)
	if err := tw.RequestWalk(PlayerID, 240, 150, 0); err != nil {
		t.Fatal(err)
	}
	p := tw.MustHotspot(PlayerID)
	if tw.RunUntil(func(*TestWorld) bool { return p.Blocked() }, 1000) < 0 {
		t.Fatal("walk never gave up")
	}
	if n := tw.Events().CountCategory("walk", "retry"); n != 9 {
		t.Fatalf("expected 9 retries in room 35, got %d", n)
	}
}

func TestNPCBlocked_ApproachesAndGivesUp(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, wallArt(20)),
		WithHotspot(lever()),
		WithNPC(1001, 1, 80, 150, 1),
		WithSchedule(1, ScheduleEntry{Action: ActionGoTo, Target: 3001}),
	)
	done := tw.RunUntil(func(tw *TestWorld) bool { return tw.Events().HasEntry("action", "excess", "") }, 3000)
	if done < 0 {
		t.Fatalf("npc never gave up\n%s", tw.HotspotDebugReport(1001, 3000))
	}
	ev := tw.Events()
	if !ev.HasEntry("walk", "approach", "right") {
		t.Fatalf("npc should walk the closest approach\n%s", ev.Format())
	}
	if !ev.HasEntry("hotspot", "activate", "puzzled") {
		t.Fatal("expected a puzzled mark")
	}
	if !tw.Dialogue.Has(1001, MsgTalkToSelf) {
		t.Fatal("expected the npc to talk to itself")
	}
	a := tw.MustHotspot(1001).Anchor()
	if a.X <= 80 || a.X > 144 {
		t.Fatalf("npc should end next to the wall, at %v", a)
	}
}

func TestNPCBlocked_JumpsToBlockedLabel(t *testing.T) {
	tw := NewTestWorld(
		WithRoom(1, wallArt(20)),
		WithHotspot(lever()),
		WithNPC(1001, 1, 80, 150, 1),
		WithSchedule(1,
			ScheduleEntry{Action: NPCSetRoomAndOffset, Param: 1, Goto: "stuck"},
			ScheduleEntry{Action: ActionGoTo, Target: 3001},
			ScheduleEntry{Label: "stuck", Action: NPCPause, Param: 5},
		),
	)
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Events().HasEntry("schedule", "blocked_jump", "stuck") }, 500) < 0 {
		t.Fatalf("expected jump to the blocked label\n%s", tw.Events().Format())
	}
	tw.RunTicks(20)
	if tw.Events().HasEntry("action", "excess", "") {
		t.Fatal("blocked label should replace the retry loop")
	}
	if !tw.Idle(1001) {
		t.Fatalf("schedule should have finished, stack %s", tw.MustHotspot(1001).actions.String())
	}
}

func TestNPC_FollowsOwner(t *testing.T) {
	follower := CharacterData(1002, "dog", 1, 40, 150)
	follower.Owner = PlayerID
	tw := NewTestWorld(
		WithRoom(1, ""),
		WithPlayer(1, 200, 150),
		WithHotspot(follower),
	)
	if tw.RunUntil(func(tw *TestWorld) bool { return tw.Events().HasEntry("walk", "arrive", "") }, 300) < 0 {
		t.Fatalf("follower never arrived\n%s", tw.Events().Format())
	}
	a := tw.MustHotspot(1002).Anchor()
	if a.X != 200-characterWidth-cellSize || a.Y != 150 {
		t.Fatalf("follower should stand to the owner's left, at %v", a)
	}
}

func TestWalk_FrameSkipSlowsSteps(t *testing.T) {
	d := CharacterData(PlayerID, "player", 1, 100, 150)
	d.FrameSkip = 1
	tw := NewTestWorld(WithRoom(1, ""), WithHotspot(d))
	if err := tw.RequestWalk(PlayerID, 140, 150, 0); err != nil {
		t.Fatal(err)
	}
	// One tick to plan, ten steps each followed by a skipped tick, one to arrive.
	took := tw.RunUntil(func(tw *TestWorld) bool { return tw.Idle(PlayerID) }, 100)
	if took != 1+10*2+1 {
		t.Fatalf("walk took %d ticks", took)
	}
}
