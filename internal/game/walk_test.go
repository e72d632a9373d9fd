package game

import "testing"

func TestWalkSegment_StepsRoundUp(t *testing.T) {
	cases := []struct {
		seg  WalkSegment
		want int
	}{
		{WalkSegment{DirRight, 4}, 1},
		{WalkSegment{DirRight, 5}, 2},
		{WalkSegment{DirLeft, 40}, 10},
		{WalkSegment{DirUp, 1}, 1},
		{WalkSegment{DirDown, 3}, 2},
		{WalkSegment{DirDown, 16}, 8},
		{WalkSegment{DirNone, 16}, 0},
	}
	for _, c := range cases {
		if got := c.seg.Steps(); got != c.want {
			t.Errorf("%s: steps=%d want %d", c.seg, got, c.want)
		}
	}
}

func TestAppendSegment_MergesSameDirection(t *testing.T) {
	var segs []WalkSegment
	segs = appendSegment(segs, DirRight, 8)
	segs = appendSegment(segs, DirRight, 8)
	segs = appendSegment(segs, DirNone, 8)
	segs = appendSegment(segs, DirUp, 0)
	segs = appendSegment(segs, DirUp, 4)
	if got := FormatSegments(segs); got != "right:16 up:4" {
		t.Fatalf("got %q", got)
	}
	segs = prependSegment(segs, DirRight, 2)
	segs = prependSegment(segs, DirLeft, 3)
	if got := FormatSegments(segs); got != "left:3 right:18 up:4" {
		t.Fatalf("got %q", got)
	}
}

func TestWalkQueue_StepDeltas(t *testing.T) {
	var q walkQueue
	q.set([]WalkSegment{{DirRight, 6}, {DirDown, 3}})
	if q.remainingSteps() != 4 {
		t.Fatalf("expected 4 steps queued, got %d", q.remainingSteps())
	}
	want := []struct{ dx, dy int }{{4, 0}, {2, 0}, {0, 2}, {0, 1}}
	for i, w := range want {
		dx, dy, _, done := q.step()
		if done {
			t.Fatalf("step %d: queue drained early", i)
		}
		if dx != w.dx || dy != w.dy {
			t.Fatalf("step %d: delta (%d,%d) want (%d,%d)", i, dx, dy, w.dx, w.dy)
		}
	}
	if _, _, _, done := q.step(); !done {
		t.Fatal("expected queue to drain after the last step")
	}
	if !q.empty() || q.remainingSteps() != 0 {
		t.Fatal("drained queue should be empty")
	}
}

func TestWalkQueue_SetCopies(t *testing.T) {
	segs := []WalkSegment{{DirLeft, 8}}
	var q walkQueue
	q.set(segs)
	segs[0].Pixels = 100
	if q.segs[0].Pixels != 8 {
		t.Fatal("queue should not alias the caller's slice")
	}
}
