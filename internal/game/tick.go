package game

import "fmt"

// TickProc is the authored tick-handler selector of a hotspot. The numeric
// values are part of the resource format.
type TickProc uint16

const (
	TickNone          TickProc = 0
	TickStandard      TickProc = 1 // timed animation script
	TickPlayer        TickProc = 2
	TickCharacter     TickProc = 3 // NPC: schedule, follow or wander
	TickRoomExit      TickProc = 4 // door between two rooms
	TickVoiceBubble   TickProc = 5
	TickFire          TickProc = 6
	TickDroppingTorch TickProc = 7
	TickWatcher       TickProc = 8
	TickPuzzled       TickProc = 9
)

func (t TickProc) String() string {
	switch t {
	case TickNone:
		return "none"
	case TickStandard:
		return "standard"
	case TickPlayer:
		return "player"
	case TickCharacter:
		return "character"
	case TickRoomExit:
		return "room_exit"
	case TickVoiceBubble:
		return "voice_bubble"
	case TickFire:
		return "fire"
	case TickDroppingTorch:
		return "dropping_torch"
	case TickWatcher:
		return "watcher"
	case TickPuzzled:
		return "puzzled"
	default:
		return fmt.Sprintf("tick(%d)", uint16(t))
	}
}

// Behaviour is the per-frame handler of a hotspot. Each variant carries only
// the state it needs.
type Behaviour interface {
	Tick(w *World, h *Hotspot)
}

// newBehaviour builds the handler selected by id. An id outside the known
// set is corrupt authored data.
func newBehaviour(id TickProc) Behaviour {
	switch id {
	case TickNone:
		return defaultBehaviour{}
	case TickStandard:
		return &standardBehaviour{}
	case TickPlayer:
		return playerBehaviour{}
	case TickCharacter:
		return &characterBehaviour{}
	case TickRoomExit:
		return &roomExitBehaviour{}
	case TickVoiceBubble, TickPuzzled:
		return followBehaviour{}
	case TickFire:
		return fireBehaviour{}
	case TickDroppingTorch:
		return &droppingTorchBehaviour{}
	case TickWatcher:
		return watcherBehaviour{}
	}
	panic(fmt.Sprintf("hotspot tick proc %d has no handler", id))
}

// defaultBehaviour does nothing.
type defaultBehaviour struct{}

func (defaultBehaviour) Tick(*World, *Hotspot) {}

// standardBehaviour runs the hotspot's timed animation script.
type standardBehaviour struct {
	runner *animRunner
}

func (b *standardBehaviour) Tick(w *World, h *Hotspot) {
	if h.frameCtr > 0 {
		h.frameCtr--
		return
	}
	if b.runner == nil {
		ops := w.res.AnimScripts[h.data.ScriptOffset]
		b.runner = &animRunner{ops: ops, stopped: len(ops) == 0}
	}
	if b.runner.stopped {
		return
	}
	if b.runner.step(w, h) {
		w.event(h, "anim", "unload", fmt.Sprintf("script %#x", h.data.ScriptOffset), 0)
		w.unload(h)
	}
}

// playerBehaviour is the character core without schedules.
type playerBehaviour struct{}

func (playerBehaviour) Tick(w *World, h *Hotspot) {
	w.characterTick(h)
}

// characterBehaviour drives an NPC. With an empty stack it loads its
// schedule; without one it follows its owner or wanders.
type characterBehaviour struct {
	loaded bool
	idle   int
}

func (b *characterBehaviour) Tick(w *World, h *Hotspot) {
	if h.actions.Empty() && h.frameCtr == 0 && h.pauseCtr == 0 && h.voiceCtr == 0 {
		b.refill(w, h)
	}
	w.characterTick(h)
}

func (b *characterBehaviour) refill(w *World, h *Hotspot) {
	if !b.loaded && h.data.Schedule != 0 {
		b.loaded = true
		set, ok := w.res.Schedules[h.data.Schedule]
		if !ok {
			panic(fmt.Sprintf("hotspot %d: schedule %d not in resources", h.ID(), h.data.Schedule))
		}
		h.actions.Push(ActionEntry{
			Kind:     ActionDispatch,
			Room:     h.Room(),
			Schedule: ScheduleRef{Set: set},
		})
		w.event(h, "schedule", "load", fmt.Sprintf("%d", set.ID), float64(len(set.Entries)))
		return
	}

	if owner := w.registry.ByID(h.data.Owner); owner != nil && owner.Room() == h.Room() {
		oa, ha := owner.Anchor(), h.Anchor()
		if abs(oa.X-ha.X)+abs(oa.Y-ha.Y) > followDistance {
			// Stand to the owner's left, or right when there is no room.
			x := oa.X - h.Width() - cellSize
			if x < 0 {
				x = oa.X + owner.Width() + cellSize
			}
			w.startWalk(h, Point{X: x, Y: oa.Y}, owner.ID())
		}
		return
	}

	if h.data.Schedule != 0 {
		return // schedule done: stay put
	}
	if b.idle > 0 {
		b.idle--
		return
	}
	b.idle = wanderPauseMin + w.rng.Intn(wanderPauseSpread)
	w.setRandomDest(h)
}

const (
	followDistance    = 48
	wanderPauseMin    = 20
	wanderPauseSpread = 40
)

// roomExitBehaviour animates a door towards the state of its join: frames
// count up while closing and down while opening. A closed door covers its
// footprint so walkers route around it.
type roomExitBehaviour struct {
	wait int
}

func (b *roomExitBehaviour) Tick(w *World, h *Hotspot) {
	j := w.joinFor(h.ID())
	if j == nil {
		return
	}
	side := j.side(h.ID())
	if b.wait > 0 {
		b.wait--
		return
	}
	target := 0
	if j.Blocked {
		target = j.DestFrame[side]
	}
	cur := j.Frames[side]
	switch {
	case cur < target:
		cur++
	case cur > target:
		cur--
	default:
		b.syncOccupancy(w, h, j.Blocked)
		return
	}
	j.Frames[side] = cur
	h.data.Frame = cur
	b.wait = w.cfg.DoorFrameTicks - 1
	if cur == target {
		b.syncOccupancy(w, h, j.Blocked)
		state := "open"
		if j.Blocked {
			state = "closed"
		}
		w.event(h, "door", state, fmt.Sprintf("frame %d", cur), float64(cur))
	}
}

func (b *roomExitBehaviour) syncOccupancy(w *World, h *Hotspot, closed bool) {
	switch {
	case closed && !h.covered:
		h.markOccupancy(w.grid(h.Room()))
	case !closed && h.covered:
		h.clearOccupancy()
	}
}

// followBehaviour keeps a transient marker (voice bubble or puzzled mark)
// above its owner until its lifetime runs out.
type followBehaviour struct{}

func (followBehaviour) Tick(w *World, h *Hotspot) {
	owner := w.registry.ByID(h.data.Owner)
	if owner == nil || owner.Room() != h.Room() || h.lifetime <= 0 {
		w.unload(h)
		return
	}
	h.lifetime--
	x := owner.X() + (owner.Width()-h.Width())/2
	y := owner.Y() - h.Height() - 2
	h.setPosition(clamp(x, 0, ScreenWidth-h.Width()), max(y, 0))
}

// fireBehaviour loops through every frame of the animation.
type fireBehaviour struct{}

func (fireBehaviour) Tick(w *World, h *Hotspot) {
	if h.frameCtr > 0 {
		h.frameCtr--
		return
	}
	h.frameCtr = h.data.FrameSkip
	if h.anim == nil || len(h.anim.Frames) == 0 {
		return
	}
	h.data.Frame = (h.data.Frame + 1) % len(h.anim.Frames)
}

// droppingTorchBehaviour falls until it reaches the floor line in WalkY,
// flickers for a while and then burns out.
type droppingTorchBehaviour struct {
	landed bool
	burn   int
}

const (
	torchFallSpeed = 4
	torchBurnTicks = 30
)

func (b *droppingTorchBehaviour) Tick(w *World, h *Hotspot) {
	if !b.landed {
		floor := h.data.WalkY - h.Height()
		y := min(h.Y()+torchFallSpeed, floor)
		h.setPosition(h.X(), y)
		if y >= floor {
			b.landed = true
			b.burn = torchBurnTicks
			w.event(h, "anim", "landed", fmt.Sprintf("y=%d", y), float64(y))
		}
		return
	}
	if h.anim != nil && len(h.anim.Frames) > 0 {
		h.data.Frame = (h.data.Frame + 1) % len(h.anim.Frames)
	}
	b.burn--
	if b.burn <= 0 {
		w.event(h, "anim", "unload", "burnt out", 0)
		h.data.Room = 0
		w.unload(h)
	}
}

// watcherBehaviour turns to face the player whenever they share a room.
type watcherBehaviour struct{}

func (watcherBehaviour) Tick(w *World, h *Hotspot) {
	p := w.registry.ByID(PlayerID)
	if p == nil || p.Room() != h.Room() {
		return
	}
	pa := p.Anchor()
	before := h.Facing()
	h.faceTowards(pa.X+p.Width()/2, pa.Y)
	if h.anim != nil {
		h.data.Frame = h.anim.Stand[h.Facing()]
	}
	if h.Facing() != before {
		w.eventVerbose(h, "anim", "face", h.Facing().String(), 0)
	}
}
