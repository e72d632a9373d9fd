package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// characterTick is the shared core of the player and NPC handlers.
func (w *World) characterTick(h *Hotspot) {
	// Countdowns hold the stack still while an animation, pause or line plays out.
	if h.frameCtr > 0 {
		h.frameCtr--
		return
	}
	if h.pauseCtr > 0 {
		h.pauseCtr--
		return
	}
	if h.voiceCtr > 0 {
		h.voiceCtr--
		return
	}

	if other := w.impinging(h); other != nil {
		w.bump(h, other)
		return
	}

	top := h.actions.Top()
	if top == nil {
		return
	}
	switch top.Kind {
	case ActionKindNone:
		h.actions.Pop()
	case ActionDispatch:
		w.dispatchTick(h)
	case ActionExecScript:
		w.execScriptTick(h)
	case ActionStartWalking:
		w.startWalkingTick(h)
	case ActionProcessingPath:
		w.processPathTick(h)
	case ActionWalking:
		w.walkingTick(h)
	default:
		panic(fmt.Sprintf("hotspot %d: action kind %s has no handler", h.ID(), top.Kind))
	}
}

// --- Impingement ---

// impinging returns another character in the same room whose collision band
// overlaps h's, when h is the one moving.
func (w *World) impinging(h *Hotspot) *Hotspot {
	if h.actions.TopKind() != ActionWalking {
		return nil
	}
	r := h.CollisionRect()
	var hit *Hotspot
	for _, o := range w.registry.All() {
		if o == h || !o.data.Character || o.Room() != h.Room() || o.unloading {
			continue
		}
		if !r.Intersects(o.CollisionRect()) {
			if h.avoid == o.ID() {
				h.avoid = 0
			}
			if o.avoid == h.ID() {
				o.avoid = 0
			}
			continue
		}
		if h.avoid == o.ID() || o.avoid == h.ID() {
			continue
		}
		if hit == nil {
			hit = o
		}
	}
	return hit
}

// outranks reports whether a keeps its course when it bumps into b. The player
// has priority over everyone; between NPCs the lower id wins.
func outranks(a, b *Hotspot) bool {
	switch {
	case a.ID() == PlayerID:
		return true
	case b.ID() == PlayerID:
		return false
	default:
		return a.ID() < b.ID()
	}
}

// bump applies the collision recovery: the lower-priority hotspot is sent to a
// random free spot and the other pauses. Both ignore each other until apart.
func (w *World) bump(h, other *Hotspot) {
	winner, loser := h, other
	if !outranks(h, other) {
		winner, loser = other, h
	}
	tuning := w.cfg.ForRoom(h.Room())
	winner.pauseCtr = tuning.BumpPauseTicks
	winner.avoid = loser.ID()
	loser.avoid = winner.ID()

	loser.actions.PopWalks()
	loser.walk.clear()
	loser.path.Cancel()
	redirected := w.setRandomDest(loser)

	w.event(winner, "bump", "pause", fmt.Sprintf("by %d for %d", loser.ID(), tuning.BumpPauseTicks), float64(tuning.BumpPauseTicks))
	if redirected {
		x, y, _ := loser.Destination()
		w.event(loser, "bump", "redirect", fmt.Sprintf("from %d to (%d,%d)", winner.ID(), x, y), 0)
	} else {
		loser.pauseCtr = tuning.BlockedPauseTicks
		w.event(loser, "bump", "stuck", fmt.Sprintf("from %d", winner.ID()), 0)
	}
	h.log.WithFields(logrus.Fields{"winner": winner.ID(), "loser": loser.ID(), "room": h.Room()}).Debug("bump")
}

// --- Walking ---

// startWalk queues a walk towards anchor p, replacing any walk already on top.
func (w *World) startWalk(h *Hotspot, p Point, dest HotspotID) {
	h.actions.PopWalks()
	h.walk.clear()
	h.path.Cancel()
	h.destX, h.destY = clamp(p.X, 0, ScreenWidth-1), clamp(p.Y, 0, ScreenHeight-1)
	h.destHotspot = dest
	h.blockedTries = 0
	h.blocked = false
	h.actions.Push(ActionEntry{Kind: ActionStartWalking, Room: h.Room()})
	w.event(h, "walk", "request", fmt.Sprintf("(%d,%d) dest=%d", h.destX, h.destY, dest), 0)
}

// setRandomDest picks a free spot inside the room's walk bounds and walks
// there. It reports false when no free spot turned up.
func (w *World) setRandomDest(h *Hotspot) bool {
	bounds := screenRect
	if rd, ok := w.res.Rooms[h.Room()]; ok && !rd.WalkBounds.Empty() {
		bounds = rd.WalkBounds
	}
	g := w.grid(h.Room())
	wc := h.widthCells()
	for i := 0; i < w.cfg.RandomDestTries; i++ {
		x := bounds.X + w.rng.Intn(max(bounds.W-h.Width(), 1))
		y := bounds.Y + w.rng.Intn(max(bounds.H, 1))
		if !g.AreaFree(x>>3, y>>3, wc) {
			continue
		}
		w.startWalk(h, Point{X: x, Y: y}, 0)
		return true
	}
	w.event(h, "walk", "no_random_dest", fmt.Sprintf("%d tries", w.cfg.RandomDestTries), 0)
	return false
}

func (w *World) startWalkingTick(h *Hotspot) {
	g := w.grid(h.Room())
	// Our own footprint is not an obstacle; drop it while the layer is sampled.
	covered := h.covered
	own := h.FootprintCells()
	h.clearOccupancy()
	h.path.Reset(g, PathRequest{
		From:    h.Anchor(),
		To:      Point{X: h.destX, Y: h.destY},
		Width:   h.widthCells(),
		Exclude: own,
	})
	if covered {
		h.markOccupancy(g)
	}
	h.actions.Replace(ActionProcessingPath)
	w.processPathTick(h)
}

func (w *World) processPathTick(h *Hotspot) {
	res := h.path.Process()
	if res == PathUnfinished {
		return
	}
	segs := h.path.Segments()
	w.event(h, "path", "result", fmt.Sprintf("%s %s", res, FormatSegments(segs)), float64(h.path.Calls()))

	switch res {
	case PathOK, PathDestOccupied:
		h.walk.set(segs)
		h.actions.Replace(ActionWalking)
		h.blockedTries = 0
		w.event(h, "walk", "start", FormatSegments(segs), float64(TotalSteps(segs)))
	case PathNoWalk:
		w.arrive(h)
	case PathNoPath:
		w.pathBlocked(h)
	}
}

// pathBlocked handles a failed search: retry after a pause until the room's
// retry count runs out, then give up with the blocked signal set.
func (w *World) pathBlocked(h *Hotspot) {
	tuning := w.cfg.ForRoom(h.Room())
	h.blockedTries++
	if h.blockedTries < tuning.BlockedRetries {
		h.pauseCtr = tuning.BlockedPauseTicks
		h.actions.Replace(ActionStartWalking)
		w.event(h, "walk", "retry", fmt.Sprintf("%d/%d", h.blockedTries, tuning.BlockedRetries), float64(h.blockedTries))
		return
	}

	approach := h.path.Approach()
	h.path.Cancel()
	h.blocked = true
	h.blockedTries = 0
	w.event(h, "walk", "blocked", fmt.Sprintf("(%d,%d)", h.destX, h.destY), 0)
	h.log.WithFields(logrus.Fields{"x": h.destX, "y": h.destY, "room": h.Room()}).Debug("walk gave up")

	// NPCs get as close as they can; the player stays put.
	if h.ID() != PlayerID && len(approach) > 0 {
		h.walk.set(approach)
		h.actions.Replace(ActionWalking)
		w.event(h, "walk", "approach", FormatSegments(approach), float64(TotalSteps(approach)))
		return
	}
	h.actions.PopWalks()
	w.afterBlocked(h)
}

// afterBlocked lets a schedule react to a walk that gave up.
func (w *World) afterBlocked(h *Hotspot) {
	if h.ID() != PlayerID {
		w.spawnPuzzled(h)
	}
	top := h.actions.Top()
	if top == nil || top.Kind != ActionDispatch || h.blockedLabel == "" || top.Schedule.Set == nil {
		return
	}
	if idx := top.Schedule.Set.Find(h.blockedLabel); idx >= 0 {
		top.Schedule.Index = idx
		top.stage, top.retries = stagePrecheck, 0
		w.event(h, "schedule", "blocked_jump", h.blockedLabel, float64(idx))
	}
}

func (w *World) walkingTick(h *Hotspot) {
	dx, dy, dir, done := h.walk.step()
	if done {
		w.arrive(h)
		return
	}
	h.setPosition(h.X()+dx, h.Y()+dy)
	h.advanceWalkFrame(dir)
	h.frameCtr = h.data.FrameSkip
	w.eventVerbose(h, "walk", "step", fmt.Sprintf("%s (%d,%d)", dir, h.X(), h.Y()), 0)
	w.checkExit(h)
}

// arrive ends the walk on top of the stack.
func (w *World) arrive(h *Hotspot) {
	h.walk.clear()
	h.actions.PopWalks()
	if h.destHotspot != 0 {
		if d := w.data[h.destHotspot]; d != nil {
			h.faceTowards(d.X+d.Width/2, d.Y+d.Height-1)
		}
	} else {
		h.setFacing(h.Facing())
	}
	w.event(h, "walk", "arrive", fmt.Sprintf("(%d,%d)", h.X(), h.Y()), 0)
	if h.blocked {
		w.afterBlocked(h)
	}
}

// --- Scripts ---

func (w *World) execScriptTick(h *Hotspot) {
	script := h.actions.Top().Script
	r := w.scripts.Execute(w, ScriptCall{Offset: script, Actor: h.ID(), Tick: w.tick})
	switch {
	case r == ScriptContinue:
		return
	case r >= ScriptMessageMin:
		w.showMessage(h, r)
	}
	h.actions.Pop()
	w.event(h, "script", "done", fmt.Sprintf("%#x -> %d", script, r), float64(r))
}

// showMessage shows msg spoken by h.
func (w *World) showMessage(h *Hotspot, msg uint16) {
	w.dialogue.ShowMessage(h.ID(), msg)
	w.event(h, "action", "message", fmt.Sprintf("%d", msg), float64(msg))
}
