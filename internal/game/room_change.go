package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// EnterRoom makes room the one shown: hotspots placed in it are activated and
// the non-persistent hotspots of other rooms are deactivated. The player, if
// active, is expected to be in room already.
func (w *World) EnterRoom(room RoomID) error {
	if _, ok := w.res.Rooms[room]; !ok {
		return fmt.Errorf("enter room: %w: %d", ErrUnknownRoom, room)
	}
	prev := w.room
	for _, h := range w.registry.All() {
		if !h.data.Persistent && h.Room() != room {
			w.deactivate(h)
		}
	}
	w.room = room
	for _, id := range w.ids {
		d := w.data[id]
		if d.Room == room && w.registry.ByID(id) == nil {
			w.activate(d)
		}
	}
	w.worldEvent("room", "enter", fmt.Sprintf("%d -> %d", prev, room), float64(room))
	w.log.WithFields(logrus.Fields{"from": prev, "room": room, "active": w.registry.Len()}).Info("entered room")
	return nil
}

// MoveToRoom relocates hotspot id into room with its feet at (x,y), as an
// exit transition script does.
func (w *World) MoveToRoom(id HotspotID, room RoomID, x, y int) error {
	h := w.registry.ByID(id)
	if h == nil {
		return fmt.Errorf("move to room: %w: %d is not active", ErrUnknownHotspot, id)
	}
	if _, ok := w.res.Rooms[room]; !ok {
		return fmt.Errorf("move to room: %w: %d", ErrUnknownRoom, room)
	}
	w.moveToRoom(h, room, Point{X: x, Y: y}, DirNone)
	return nil
}

// checkExit fires the exit h is standing in, if any.
func (w *World) checkExit(h *Hotspot) {
	rd, ok := w.res.Rooms[h.Room()]
	if !ok {
		return
	}
	a := h.Anchor()
	for _, ex := range rd.Exits {
		if !ex.Area.Contains(a.X, a.Y) {
			continue
		}
		if j := w.joinFor(ex.Door); j != nil && j.Blocked {
			continue
		}
		if ex.Script != 0 {
			r := w.scripts.Execute(w, ScriptCall{Offset: ex.Script, Actor: h.ID(), Target: ex.Door, Tick: w.tick})
			w.event(h, "room", "exit_script", fmt.Sprintf("%#x -> %d", ex.Script, r), float64(r))
			if r >= ScriptMessageMin {
				w.showMessage(h, r)
			}
			return
		}
		w.moveToRoom(h, ex.DestRoom, Point{X: ex.DestX, Y: ex.DestY}, ex.DestFacing)
		return
	}
}

// moveToRoom moves h into room. Walks in progress are dropped; the entries
// they served resume in the new room.
func (w *World) moveToRoom(h *Hotspot, room RoomID, p Point, facing Direction) {
	from := h.Room()
	h.clearOccupancy()
	h.actions.PopWalks()
	h.walk.clear()
	h.path.Cancel()
	h.destHotspot = 0
	h.blocked = false
	if top := h.actions.Top(); top != nil && top.Kind == ActionDispatch {
		top.stage, top.retries = stagePrecheck, 0
	}

	h.data.Room = room
	h.setAnchor(p)
	if facing != DirNone {
		h.setFacing(facing)
	}
	if h.data.Character {
		w.materialize(h)
	}
	w.event(h, "room", "change", fmt.Sprintf("%d -> %d at (%d,%d)", from, room, h.X(), h.Y()), float64(room))
	h.log.WithFields(logrus.Fields{"from": from, "room": room}).Info("changed room")

	if h.ID() == PlayerID {
		if err := w.EnterRoom(room); err != nil {
			panic(fmt.Sprintf("player moved into %d: %v", room, err))
		}
	}
}

// materialize marks h on its new grid, first shuffling it sideways a cell at
// a time when it would land on someone else.
func (w *World) materialize(h *Hotspot) {
	g := w.grid(h.Room())
	start := h.X()
	for try := 0; try <= w.cfg.MaterializeNudgeTries; try++ {
		if w.landingClear(h, g) {
			break
		}
		if try == w.cfg.MaterializeNudgeTries {
			w.event(h, "room", "materialize_overlap", fmt.Sprintf("(%d,%d)", h.X(), h.Y()), 0)
			break
		}
		// Alternate right and left of the arrival point: +8, -8, +16, -16 ...
		step := (try/2 + 1) * cellSize
		if try%2 == 1 {
			step = -step
		}
		x := clamp(start+step, 0, ScreenWidth-h.Width())
		h.setPosition(x, h.Y())
		w.event(h, "room", "materialize_nudge", fmt.Sprintf("x=%d", x), float64(x))
	}
	h.markOccupancy(g)
}

// landingClear reports whether h can appear where it stands without
// overlapping another character.
func (w *World) landingClear(h *Hotspot, g *Grid) bool {
	r := h.CollisionRect()
	for _, o := range w.registry.All() {
		if o == h || !o.data.Character || o.Room() != h.Room() {
			continue
		}
		if r.Intersects(o.CollisionRect()) {
			return false
		}
	}
	fp := h.FootprintCells()
	return g.AreaFree(fp.X, fp.Y, fp.W)
}

// --- Travel between rooms ---

// Route returns the first exit of from on a shortest route to room to, over
// exits whose doors are not closed.
func (w *World) Route(from, to RoomID) (RoomExit, bool) {
	if from == to {
		return RoomExit{}, false
	}
	type hop struct {
		room  RoomID
		first int // index of the exit taken out of from
	}
	seen := map[RoomID]bool{from: true}
	queue := []hop{{room: from, first: -1}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		rd, ok := w.res.Rooms[cur.room]
		if !ok {
			continue
		}
		for i, ex := range rd.Exits {
			if seen[ex.DestRoom] {
				continue
			}
			if j := w.joinFor(ex.Door); j != nil && j.Blocked {
				continue
			}
			first := cur.first
			if first < 0 {
				first = i
			}
			if ex.DestRoom == to {
				return w.res.Rooms[from].Exits[first], true
			}
			seen[ex.DestRoom] = true
			queue = append(queue, hop{room: ex.DestRoom, first: first})
		}
	}
	return RoomExit{}, false
}

// travelTowards walks h to the exit leading towards room. When there is no
// route the entry is dropped.
func (w *World) travelTowards(h *Hotspot, room RoomID) {
	ex, ok := w.Route(h.Room(), room)
	if !ok {
		w.event(h, "room", "no_route", fmt.Sprintf("%d -> %d", h.Room(), room), float64(room))
		h.actions.Pop()
		return
	}
	top := h.actions.Top()
	top.retries++
	if top.retries > w.cfg.ActionRetryLimit+1 {
		w.event(h, "room", "travel_excess", fmt.Sprintf("%d -> %d", h.Room(), room), float64(room))
		h.actions.Pop()
		return
	}
	x := ex.Area.X + ex.Area.W/2 - h.Width()/2
	y := ex.Area.Y + ex.Area.H/2
	w.event(h, "room", "travel", fmt.Sprintf("%d -> %d via (%d,%d)", h.Room(), room, x, y), float64(ex.DestRoom))
	w.startWalk(h, Point{X: clamp(x, 0, ScreenWidth-h.Width()), Y: y}, ex.Door)
}
