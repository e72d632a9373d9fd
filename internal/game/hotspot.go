package game

import "github.com/sirupsen/logrus"

// Hotspot is an active, positioned game object. Its persistent fields live in
// the shared HotspotData record; everything here is runtime state that is
// dropped on deactivation.
type Hotspot struct {
	data      *HotspotData
	handle    Handle
	behaviour Behaviour
	anim      *Animation

	actions ActionStack
	path    *PathFinder
	walk    walkQueue

	destX, destY int
	destHotspot  HotspotID

	grid      *Grid // grid the footprint is marked on
	footprint CellRect
	covered   bool

	frameCtr int // frame-skip countdown
	pauseCtr int // pause or bump delay
	voiceCtr int // talking

	walkFrame    int
	blockedTries int
	blocked      bool      // last walk gave up
	blockedLabel string    // schedule label jumped to when a walk gives up
	avoid        HotspotID // hotspot we were bumped against, ignored until apart
	unloading    bool
	lifetime     int
	log          logrus.FieldLogger
}

func newHotspot(data *HotspotData, anim *Animation, cfg Config, log logrus.FieldLogger) *Hotspot {
	return &Hotspot{
		data:      data,
		anim:      anim,
		behaviour: newBehaviour(data.TickProc),
		path:      NewPathFinder(cfg.PathBudget, cfg.PathSetupCost, cfg.RingScanRadius),
		log: log.WithFields(logrus.Fields{
			"hotspot": data.ID,
			"name":    data.Name,
		}),
	}
}

// ID returns the hotspot id.
func (h *Hotspot) ID() HotspotID { return h.data.ID }

// Data returns the persistent record backing the hotspot.
func (h *Hotspot) Data() *HotspotData { return h.data }

// Handle returns the registry handle, invalid once deactivated.
func (h *Hotspot) Handle() Handle { return h.handle }

func (h *Hotspot) Room() RoomID { return h.data.Room }
func (h *Hotspot) X() int { return h.data.X }
func (h *Hotspot) Y() int { return h.data.Y }
func (h *Hotspot) Width() int { return h.data.Width }
func (h *Hotspot) Height() int { return h.data.Height }
func (h *Hotspot) Layer() Layer { return h.data.Layer }
func (h *Hotspot) Frame() int { return h.data.Frame }
func (h *Hotspot) Facing() Direction { return h.data.Facing }

// Actions returns the hotspot's action stack.
func (h *Hotspot) Actions() *ActionStack { return &h.actions }

// Path returns the hotspot's path finder.
func (h *Hotspot) Path() *PathFinder { return h.path }

// Destination returns the pending walk target and the hotspot walked to, if any.
func (h *Hotspot) Destination() (x, y int, dest HotspotID) {
	return h.destX, h.destY, h.destHotspot
}

// Remaining returns the walk segments not yet consumed.
func (h *Hotspot) Remaining() []WalkSegment {
	return append([]WalkSegment(nil), h.walk.segs...)
}

// Blocked reports whether the last walk gave up.
func (h *Hotspot) Blocked() bool { return h.blocked }

// Countdowns returns the frame-skip, pause and voice counters.
func (h *Hotspot) Countdowns() (frame, pause, voice int) {
	return h.frameCtr, h.pauseCtr, h.voiceCtr
}

// feetY is the pixel row the hotspot stands on.
func (h *Hotspot) feetY() int {
	return h.data.Y + h.data.Height - 1 - h.data.YCorrection
}

// Anchor returns the left edge of the feet, the point walks are measured from.
func (h *Hotspot) Anchor() Point { return Point{X: h.data.X, Y: h.feetY()} }

// anchorToPos converts an anchor point to the hotspot's top-left position.
func (h *Hotspot) anchorToPos(p Point) (x, y int) {
	return p.X, p.Y - h.data.Height + 1 + h.data.YCorrection
}

// widthCells is the footprint width in grid cells.
func (h *Hotspot) widthCells() int {
	return max((h.data.Width+cellSize-1)/cellSize, 1)
}

// FootprintCells is the one-row band of cells under the hotspot's feet.
func (h *Hotspot) FootprintCells() CellRect {
	a := h.Anchor()
	return CellRect{X: a.X >> 3, Y: a.Y >> 3, W: h.widthCells(), H: 1}
}

// CollisionRect is the pixel band used by the impingement test: the hotspot's
// width by one cell of depth ending at its feet.
func (h *Hotspot) CollisionRect() Rect {
	fy := h.feetY()
	return Rect{X: h.data.X, Y: fy - cellSize + 1, W: h.data.Width, H: cellSize}
}

// Bounds is the sprite rectangle.
func (h *Hotspot) Bounds() Rect {
	return Rect{X: h.data.X, Y: h.data.Y, W: h.data.Width, H: h.data.Height}
}

// markOccupancy covers the footprint on g. A hotspot's footprint is only ever
// marked once, so marking again first clears the old band.
func (h *Hotspot) markOccupancy(g *Grid) {
	if h.covered {
		h.clearOccupancy()
	}
	if g == nil {
		return
	}
	h.grid = g
	h.footprint = h.FootprintCells()
	g.MarkOccupied(h.footprint)
	h.covered = true
}

// clearOccupancy releases the marked footprint, if any.
func (h *Hotspot) clearOccupancy() {
	if !h.covered {
		return
	}
	h.grid.ClearOccupied(h.footprint)
	h.covered = false
}

// setPosition moves the hotspot and keeps its occupancy in step.
func (h *Hotspot) setPosition(x, y int) {
	h.data.X, h.data.Y = x, y
	if h.covered {
		h.markOccupancy(h.grid)
	}
}

// setAnchor moves the hotspot so its feet start at p.
func (h *Hotspot) setAnchor(p Point) {
	x, y := h.anchorToPos(p)
	h.setPosition(x, y)
}

// faceTowards turns the hotspot to look at the point (x,y).
func (h *Hotspot) faceTowards(x, y int) {
	cx := h.data.X + h.data.Width/2
	cy := h.feetY()
	dx, dy := x-cx, y-cy
	if abs(dx) >= abs(dy) {
		if dx < 0 {
			h.setFacing(DirLeft)
		} else {
			h.setFacing(DirRight)
		}
		return
	}
	if dy < 0 {
		h.setFacing(DirUp)
	} else {
		h.setFacing(DirDown)
	}
}

// setFacing turns the hotspot and shows its standing frame for that direction.
func (h *Hotspot) setFacing(d Direction) {
	h.data.Facing = d
	if h.anim != nil && h.data.Character {
		h.data.Frame = h.anim.Stand[d]
	}
}

// advanceWalkFrame cycles the walking frames for direction d.
func (h *Hotspot) advanceWalkFrame(d Direction) {
	if h.data.Facing != d {
		h.walkFrame = 0
	}
	h.data.Facing = d
	if h.anim == nil {
		return
	}
	frames := h.anim.Walk[d]
	if len(frames) == 0 {
		return
	}
	h.data.Frame = frames[h.walkFrame%len(frames)]
	h.walkFrame++
}

// surface is the frame currently shown, or nil.
func (h *Hotspot) surface() *Surface {
	return h.anim.Frame(h.data.Frame)
}

// isWalking reports whether a walk is queued, computing or running.
func (h *Hotspot) isWalking() bool {
	switch h.actions.TopKind() {
	case ActionStartWalking, ActionProcessingPath, ActionWalking:
		return true
	}
	return false
}
