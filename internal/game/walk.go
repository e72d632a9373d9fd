package game

import (
	"fmt"
	"strings"
)

// WalkSegment is one straight leg of a resolved path, measured in pixels.
type WalkSegment struct {
	Dir    Direction
	Pixels int
}

// Steps returns the number of ticks the walker needs for the leg. Walk frames
// move 2px vertically and 4px horizontally, so vertical legs are halved and
// horizontal legs quartered, rounding up.
func (s WalkSegment) Steps() int {
	switch s.Dir {
	case DirUp, DirDown:
		return (s.Pixels + 1) >> 1
	case DirLeft, DirRight:
		return (s.Pixels + 3) >> 2
	default:
		return 0
	}
}

// stepSize is the pixel advance of one walk frame along the segment's axis.
func (s WalkSegment) stepSize() int {
	if s.Dir.Vertical() {
		return 2
	}
	return 4
}

func (s WalkSegment) String() string {
	return fmt.Sprintf("%s:%d", s.Dir, s.Pixels)
}

// appendSegment adds a leg to the end of segs, merging it with the last leg
// when both go the same way.
func appendSegment(segs []WalkSegment, dir Direction, px int) []WalkSegment {
	if px <= 0 || dir == DirNone {
		return segs
	}
	if n := len(segs); n > 0 && segs[n-1].Dir == dir {
		segs[n-1].Pixels += px
		return segs
	}
	return append(segs, WalkSegment{Dir: dir, Pixels: px})
}

// prependSegment adds a leg to the front of segs with the same merge rule.
func prependSegment(segs []WalkSegment, dir Direction, px int) []WalkSegment {
	if px <= 0 || dir == DirNone {
		return segs
	}
	if len(segs) > 0 && segs[0].Dir == dir {
		segs[0].Pixels += px
		return segs
	}
	return append([]WalkSegment{{Dir: dir, Pixels: px}}, segs...)
}

// TotalSteps sums the tick cost of a path.
func TotalSteps(segs []WalkSegment) int {
	n := 0
	for _, s := range segs {
		n += s.Steps()
	}
	return n
}

// FormatSegments renders a path as "right:40 up:16".
func FormatSegments(segs []WalkSegment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// walkQueue holds the legs a hotspot is currently consuming.
type walkQueue struct {
	segs    []WalkSegment
	stepCtr int
}

func (q *walkQueue) set(segs []WalkSegment) {
	q.segs = append(q.segs[:0], segs...)
	q.stepCtr = 0
}

func (q *walkQueue) clear() {
	q.segs = q.segs[:0]
	q.stepCtr = 0
}

func (q *walkQueue) empty() bool { return len(q.segs) == 0 }

// remainingSteps is the number of ticks left before the queue drains.
func (q *walkQueue) remainingSteps() int {
	if q.empty() {
		return 0
	}
	return TotalSteps(q.segs) - q.stepCtr
}

// step advances one walk frame. It returns the pixel delta to apply and done=true
// once the queue has drained (in which case the delta is zero).
func (q *walkQueue) step() (dx, dy int, dir Direction, done bool) {
	if q.empty() {
		return 0, 0, DirNone, true
	}
	if q.stepCtr >= q.segs[0].Steps() {
		q.segs = q.segs[1:]
		q.stepCtr = 0
		if q.empty() {
			return 0, 0, DirNone, true
		}
	}
	seg := q.segs[0]
	size := seg.stepSize()
	move := min(size, seg.Pixels-q.stepCtr*size)
	ux, uy := seg.Dir.Delta()
	q.stepCtr++
	return ux * move, uy * move, seg.Dir, false
}
