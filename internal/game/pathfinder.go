package game

import "fmt"

// PathResult is the outcome of a PathFinder.Process call.
type PathResult uint8

const (
	PathUnfinished   PathResult = iota // budget exhausted, call again next tick
	PathOK                             // route found
	PathDestOccupied                   // route found to a free cell next to an occupied destination
	PathNoPath                         // destination not connected to the origin
	PathNoWalk                         // origin and destination are the same position
)

func (r PathResult) String() string {
	switch r {
	case PathUnfinished:
		return "unfinished"
	case PathOK:
		return "ok"
	case PathDestOccupied:
		return "dest_occupied"
	case PathNoPath:
		return "no_path"
	case PathNoWalk:
		return "no_walk"
	default:
		return "unknown"
	}
}

// Terminal reports whether the result ends the search.
func (r PathResult) Terminal() bool { return r != PathUnfinished }

// Found reports whether the result carries a usable route.
func (r PathResult) Found() bool { return r == PathOK || r == PathDestOccupied }

// PathRequest describes one search. From and To are anchor pixels (the left
// edge of the walker's feet). Width is the walker's footprint in cells and
// Exclude is the walker's own overlay footprint, which is not an obstacle.
type PathRequest struct {
	From    Point
	To      Point
	Width   int
	Exclude CellRect
}

type pathState uint8

const (
	pathIdle pathState = iota
	pathPending
	pathInProgress
	pathDone
)

const (
	labelWall  = 0xffff
	labelEmpty = 0
)

// PathFinder is a resumable flood-fill search over a room grid. Labels spread
// out from the origin one sweep at a time; each call to Process visits cells
// until its budget is spent and then returns PathUnfinished, keeping its scan
// position so the next call carries on where this one stopped.
type PathFinder struct {
	budget    int
	setupCost int
	ringScan  int

	state  pathState
	result PathResult
	req    PathRequest

	cols, rows int
	stride     int
	layer      []uint16

	src, dst     int
	dstCX, dstCY int
	destOccupied bool
	substituted  bool

	xStart, xInc int
	yStart, yInc int
	xCtr, yCtr   int
	populated    bool
	countdown    int

	startNudge Point // walked before the route, back onto the clamped origin
	endNudge   Point // walked after the route, onto the exact destination pixel

	segs     []WalkSegment
	approach []WalkSegment
	calls    int
	visited  int
}

// NewPathFinder creates an idle finder. budget is the number of cell visits
// per Process call, setupCost is charged once on the first call of a search
// and ringScan bounds the substitute-cell search around an occupied destination.
func NewPathFinder(budget, setupCost, ringScan int) *PathFinder {
	return &PathFinder{budget: max(budget, 1), setupCost: setupCost, ringScan: ringScan}
}

// Reset discards any search in progress and queues a new one against g.
// The grid overlay is sampled now, so callers must clear their own stale
// footprint before calling or pass it in req.Exclude.
func (pf *PathFinder) Reset(g *Grid, req PathRequest) {
	pf.req = req
	pf.req.Width = max(req.Width, 1)
	pf.state = pathPending
	pf.result = PathUnfinished
	pf.segs = pf.segs[:0]
	pf.approach = pf.approach[:0]
	pf.calls = 0
	pf.visited = 0
	pf.substituted = false
	pf.destOccupied = false
	pf.buildLayer(g)
}

// Cancel drops the current search, leaving the finder idle.
func (pf *PathFinder) Cancel() {
	pf.state = pathIdle
	pf.result = PathUnfinished
	pf.segs = pf.segs[:0]
	pf.approach = pf.approach[:0]
}

// InProgress reports whether a search has been queued or started but not finished.
func (pf *PathFinder) InProgress() bool {
	return pf.state == pathPending || pf.state == pathInProgress
}

// Idle reports whether no search has been requested since the last Cancel.
func (pf *PathFinder) Idle() bool { return pf.state == pathIdle }

// Result returns the last terminal result, or PathUnfinished.
func (pf *PathFinder) Result() PathResult { return pf.result }

// Segments returns a copy of the resolved route.
func (pf *PathFinder) Segments() []WalkSegment {
	return append([]WalkSegment(nil), pf.segs...)
}

// Approach returns the partial route found for a PathNoPath result: the walk
// to the labelled cell nearest the destination along its row or column.
func (pf *PathFinder) Approach() []WalkSegment {
	return append([]WalkSegment(nil), pf.approach...)
}

// Calls is the number of Process calls spent on the current search.
func (pf *PathFinder) Calls() int { return pf.calls }

// Visited is the number of cells labelled or examined during the current search.
func (pf *PathFinder) Visited() int { return pf.visited }

// Target returns the destination cell actually searched for, which differs
// from the requested one when a substitute was chosen.
func (pf *PathFinder) Target() (cx, cy int) { return pf.dstCX, pf.dstCY }

func (pf *PathFinder) buildLayer(g *Grid) {
	pf.cols, pf.rows = g.Cols(), g.Rows()
	pf.stride = pf.cols + 2
	size := pf.stride * (pf.rows + 2)
	if cap(pf.layer) < size {
		pf.layer = make([]uint16, size)
	}
	pf.layer = pf.layer[:size]
	for i := range pf.layer {
		pf.layer[i] = labelWall
	}

	ex := pf.req.Exclude
	obstacle := func(cx, cy int) bool {
		if g.IsBlocked(cx, cy) {
			return true
		}
		if !g.IsOccupied(cx, cy) {
			return false
		}
		inOwn := cx >= ex.X && cx < ex.X+ex.W && cy >= ex.Y && cy < ex.Y+ex.H
		return !inOwn
	}

	w := pf.req.Width
	for cy := 0; cy < pf.rows; cy++ {
		for cx := 0; cx < pf.cols; cx++ {
			free := cx+w <= pf.cols
			for k := 0; free && k < w; k++ {
				if obstacle(cx+k, cy) {
					free = false
				}
			}
			if free {
				pf.layer[pf.index(cx, cy)] = labelEmpty
			}
		}
	}
}

func (pf *PathFinder) index(cx, cy int) int { return (cy+1)*pf.stride + cx + 1 }

func (pf *PathFinder) cellOf(idx int) (int, int) {
	return idx%pf.stride - 1, idx/pf.stride - 1
}

// anchorCell clamps an anchor pixel into the grid and returns its cell and
// the clamped pixel.
func (pf *PathFinder) anchorCell(p Point) (cx, cy int, in Point) {
	maxX := (pf.cols - pf.req.Width) * cellSize
	in.X = clamp(p.X, 0, max(maxX, 0))
	in.Y = clamp(p.Y, 0, pf.rows*cellSize-1)
	return in.X >> 3, in.Y >> 3, in
}

// Process runs one budgeted slice of the search.
func (pf *PathFinder) Process() PathResult {
	switch pf.state {
	case pathIdle:
		return PathNoWalk
	case pathDone:
		return pf.result
	}
	pf.calls++
	pf.countdown = pf.budget

	if pf.state == pathPending {
		pf.countdown -= pf.setupCost
		if res, done := pf.start(); done {
			return pf.finish(res)
		}
		pf.state = pathInProgress
		pf.yCtr, pf.xCtr = 0, 0
		pf.populated = false
	}

	for {
		for ; pf.yCtr < pf.rows; pf.yCtr++ {
			for ; pf.xCtr < pf.cols; pf.xCtr++ {
				cx := pf.xStart + pf.xCtr*pf.xInc
				cy := pf.yStart + pf.yCtr*pf.yInc
				pf.processCell(pf.index(cx, cy))
				if pf.countdown <= 0 {
					pf.xCtr++
					return PathUnfinished
				}
			}
			pf.xCtr = 0
		}
		pf.yCtr = 0

		if pf.layer[pf.dst] != labelEmpty {
			break
		}
		if !pf.populated {
			pf.approach = pf.closestApproach()
			return pf.finish(PathNoPath)
		}
		pf.populated = false
	}

	res := PathOK
	if pf.destOccupied {
		res = PathDestOccupied
	}
	pf.segs = pf.trace(pf.dst)
	pf.segs = prependNudge(pf.segs, pf.startNudge)
	pf.segs = appendNudge(pf.segs, pf.endNudge)
	return pf.finish(res)
}

func (pf *PathFinder) finish(res PathResult) PathResult {
	pf.state = pathDone
	pf.result = res
	return res
}

// start seeds the search. It returns done=true when no flood fill is needed.
func (pf *PathFinder) start() (PathResult, bool) {
	scx, scy, sIn := pf.anchorCell(pf.req.From)
	dcx, dcy, dIn := pf.anchorCell(pf.req.To)
	// Cell moves keep the origin's offset inside its cell. The end nudge
	// swaps it for the destination's offset and walks any clamped distance.
	pf.startNudge = Point{X: sIn.X - pf.req.From.X, Y: sIn.Y - pf.req.From.Y}
	pf.endNudge = Point{
		X: pf.req.To.X - dIn.X + dIn.X&7 - sIn.X&7,
		Y: pf.req.To.Y - dIn.Y + dIn.Y&7 - sIn.Y&7,
	}

	if scx == dcx && scy == dcy {
		dx := pf.req.To.X - pf.req.From.X
		dy := pf.req.To.Y - pf.req.From.Y
		if dx == 0 && dy == 0 {
			return PathNoWalk, true
		}
		pf.segs = appendNudge(pf.segs[:0], Point{X: dx})
		if dy < 0 {
			pf.segs = appendSegment(pf.segs, DirUp, -dy)
		} else {
			pf.segs = appendSegment(pf.segs, DirDown, dy)
		}
		return PathOK, true
	}

	pf.src = pf.index(scx, scy)
	pf.layer[pf.src] = 1

	dst := pf.index(dcx, dcy)
	if pf.layer[dst] != labelEmpty {
		pf.destOccupied = true
		sub, ok := pf.ringSubstitute(dcx, dcy)
		if !ok {
			return PathNoPath, true
		}
		pf.substituted = true
		dst = sub
		dcx, dcy = pf.cellOf(sub)
		// A substituted destination is a real cell; the nudge no longer applies.
		pf.endNudge = Point{}
	}
	pf.dst = dst
	pf.dstCX, pf.dstCY = dcx, dcy
	if pf.dst == pf.src {
		return PathNoWalk, true
	}

	// Sweep from the origin's side towards the destination so labels run with the scan.
	if scx >= dcx {
		pf.xInc, pf.xStart = -1, pf.cols-1
	} else {
		pf.xInc, pf.xStart = 1, 0
	}
	if scy >= dcy {
		pf.yInc, pf.yStart = -1, pf.rows-1
	} else {
		pf.yInc, pf.yStart = 1, 0
	}
	return PathUnfinished, false
}

// ringSubstitute scans rings of growing radius around (cx,cy) for the nearest
// free cell. Within a ring the cell closest in Manhattan distance wins.
func (pf *PathFinder) ringSubstitute(cx, cy int) (int, bool) {
	for r := 1; r <= pf.ringScan; r++ {
		best, bestDist := -1, 0
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				if max(abs(x-cx), abs(y-cy)) != r {
					continue
				}
				if x < 0 || y < 0 || x >= pf.cols || y >= pf.rows {
					continue
				}
				idx := pf.index(x, y)
				if pf.layer[idx] != labelEmpty && idx != pf.src {
					continue
				}
				d := abs(x-cx) + abs(y-cy)
				if best < 0 || d < bestDist {
					best, bestDist = idx, d
				}
			}
		}
		if best >= 0 {
			return best, true
		}
	}
	return 0, false
}

func (pf *PathFinder) processCell(idx int) {
	if pf.layer[idx] != labelEmpty {
		return
	}
	pf.countdown--
	pf.visited++
	v := uint16(labelWall)
	for _, n := range [4]int{idx - pf.stride, idx + pf.stride, idx - 1, idx + 1} {
		if l := pf.layer[n]; l != labelEmpty && l < v {
			v = l
		}
	}
	if v != labelWall {
		pf.layer[idx] = v + 1
		pf.populated = true
	}
}

// trace walks back from a labelled cell to the origin with both neighbour
// orderings and keeps the route with fewer direction changes.
func (pf *PathFinder) trace(from int) []WalkSegment {
	vertical := pf.traceOrder(from, true)
	horizontal := pf.traceOrder(from, false)
	if len(horizontal) < len(vertical) {
		return horizontal
	}
	return vertical
}

func (pf *PathFinder) traceOrder(from int, verticalFirst bool) []WalkSegment {
	type step struct {
		off int
		dir Direction
	}
	// Offsets point at the neighbour we came from; dir is the move out of it.
	vert := []step{{-pf.stride, DirDown}, {pf.stride, DirUp}}
	horz := []step{{1, DirLeft}, {-1, DirRight}}
	order := append(append([]step{}, vert...), horz...)
	if !verticalFirst {
		order = append(append([]step{}, horz...), vert...)
	}

	var dirs []Direction
	p := from
	for {
		v := pf.layer[p] - 1
		if v == 0 {
			break
		}
		moved := false
		for _, s := range order {
			if pf.layer[p+s.off] == v {
				dirs = append(dirs, s.dir)
				p += s.off
				moved = true
				break
			}
		}
		if !moved {
			panic(fmt.Sprintf("pathfinder: label %d at cell %d has no predecessor", v+1, p))
		}
	}

	var segs []WalkSegment
	for i := len(dirs) - 1; i >= 0; i-- {
		segs = appendSegment(segs, dirs[i], cellSize)
	}
	return segs
}

// closestApproach finds the labelled cell nearest the destination on its row
// or column and traces a route to it.
func (pf *PathFinder) closestApproach() []WalkSegment {
	best, bestDist := -1, 0
	scan := func(dx, dy int) {
		x, y := pf.dstCX+dx, pf.dstCY+dy
		for d := 1; x >= 0 && y >= 0 && x < pf.cols && y < pf.rows; d++ {
			l := pf.layer[pf.index(x, y)]
			if l != labelEmpty && l != labelWall {
				if best < 0 || d < bestDist {
					best, bestDist = pf.index(x, y), d
				}
				return
			}
			x += dx
			y += dy
		}
	}
	scan(-1, 0)
	scan(1, 0)
	scan(0, -1)
	scan(0, 1)
	if best < 0 || best == pf.src {
		return nil
	}
	return pf.trace(best)
}

// nudgeLegs splits a pixel offset into its horizontal and vertical legs.
func nudgeLegs(d Point) (hDir Direction, hPx int, vDir Direction, vPx int) {
	hDir, hPx = DirRight, d.X
	if d.X < 0 {
		hDir, hPx = DirLeft, -d.X
	}
	vDir, vPx = DirDown, d.Y
	if d.Y < 0 {
		vDir, vPx = DirUp, -d.Y
	}
	return hDir, hPx, vDir, vPx
}

func prependNudge(segs []WalkSegment, d Point) []WalkSegment {
	hDir, hPx, vDir, vPx := nudgeLegs(d)
	segs = prependLeg(segs, hDir, hPx)
	return prependLeg(segs, vDir, vPx)
}

func appendNudge(segs []WalkSegment, d Point) []WalkSegment {
	hDir, hPx, vDir, vPx := nudgeLegs(d)
	segs = appendLeg(segs, hDir, hPx)
	return appendLeg(segs, vDir, vPx)
}

// appendLeg adds a leg to the end of segs, shortening the last leg instead
// when the two point in opposite directions.
func appendLeg(segs []WalkSegment, dir Direction, px int) []WalkSegment {
	if n := len(segs); n > 0 && px > 0 && segs[n-1].Dir == dir.Opposite() {
		last := &segs[n-1]
		switch {
		case px < last.Pixels:
			last.Pixels -= px
			return segs
		case px == last.Pixels:
			return segs[:n-1]
		default:
			px -= last.Pixels
			segs = segs[:n-1]
		}
	}
	return appendSegment(segs, dir, px)
}

// prependLeg is appendLeg for the front of segs.
func prependLeg(segs []WalkSegment, dir Direction, px int) []WalkSegment {
	if len(segs) > 0 && px > 0 && segs[0].Dir == dir.Opposite() {
		first := &segs[0]
		switch {
		case px < first.Pixels:
			first.Pixels -= px
			return segs
		case px == first.Pixels:
			return segs[1:]
		default:
			px -= first.Pixels
			segs = segs[1:]
		}
	}
	return prependSegment(segs, dir, px)
}
