package game

import (
	"strings"
	"testing"
)

func TestHotspotDebugReport_Walking(t *testing.T) {
	tw := NewTestWorld(baseOpts()...)
	if err := tw.RequestWalk(PlayerID, 200, 150, 0); err != nil {
		t.Fatal(err)
	}
	tw.RunTicks(5)
	r := tw.HotspotDebugReport(PlayerID, 0)
	for _, want := range []string{
		"--- Temptress debug report ---",
		"tick_range=[0..5]",
		`name="player"`,
		"walk: dest=(200,150)",
		"walking",
		"totals: paths=1 walks=1",
	} {
		if !strings.Contains(r, want) {
			t.Errorf("report missing %q:\n%s", want, r)
		}
	}
}

func TestHotspotDebugReport_HeldAndUnknown(t *testing.T) {
	tw := NewTestWorld(baseOpts(WithHotspot(held(keyData())))...)
	r := tw.HotspotDebugReport(testKey, 10)
	if !strings.Contains(r, "active=false") || !strings.Contains(r, "held by 1000") {
		t.Fatalf("held item report:\n%s", r)
	}
	if r := tw.HotspotDebugReport(PlayerID, 10); !strings.Contains(r, "holding: key") {
		t.Fatalf("player report should list the key:\n%s", r)
	}
	if r := tw.HotspotDebugReport(9999, 10); !strings.Contains(r, "hotspot 9999: no record") {
		t.Fatalf("unknown hotspot report:\n%s", r)
	}
}

func TestSnapshot_TracksActiveHotspots(t *testing.T) {
	tw := NewTestWorld(baseOpts(WithNPC(testNPC, 1, 40, 150, 1))...)
	if err := tw.RequestWalk(PlayerID, 200, 150, 0); err != nil {
		t.Fatal(err)
	}
	tw.RunTicks(2)
	snap := tw.Snapshot()
	if snap.Tick != 2 || snap.Room != 1 || len(snap.Hotspots) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var player HotspotSnapshot
	for _, h := range snap.Hotspots {
		if h.ID == PlayerID {
			player = h
		}
	}
	if player.Top != ActionWalking || player.Depth < 1 || player.X <= 100 {
		t.Fatalf("player should be walking right: %+v", player)
	}
}
