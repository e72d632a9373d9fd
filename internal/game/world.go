package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Temptress/internal/logger"
)

// Deps are the collaborators a World is built with. Zero fields get defaults:
// the stock config, a discarding logger, a script runner that finishes
// every script at once, and a dialogue sink that drops messages.
type Deps struct {
	Config   Config
	Log      logrus.FieldLogger
	Scripts  ScriptRunner
	Dialogue Dialogue
	Events   *EventLog
	Seed     int64
}

// World owns every piece of mutable engine state: the hotspot records, the
// active registry, the per-room grids and compositors, and the tick counter.
type World struct {
	cfg      Config
	res      *Resources
	log      logrus.FieldLogger
	events   *EventLog
	rng      *rand.Rand
	scripts  ScriptRunner
	dialogue Dialogue

	registry    *Registry
	data        map[HotspotID]*HotspotData
	ids         []HotspotID
	joins       []*ExitJoin
	grids       map[RoomID]*Grid
	compositors map[RoomID]*Compositor

	room        RoomID
	tick        int
	nextDynamic HotspotID
	pending     []*Hotspot
}

// dynamicIDBase is the first id handed to hotspots spawned at run time.
const dynamicIDBase HotspotID = 0xf000

// NewWorld builds a world over res. Persistent hotspots placed in a room are
// activated at once; call EnterRoom to load the starting room.
func NewWorld(res *Resources, deps Deps) *World {
	if deps.Config.PathBudget == 0 {
		deps.Config = DefaultConfig()
	}
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if deps.Scripts == nil {
		deps.Scripts = NewScriptTable()
	}
	if deps.Dialogue == nil {
		deps.Dialogue = NopDialogue{}
	}
	if deps.Events == nil {
		deps.Events = NewEventLog(false)
	}
	// The world installs its own marker animations, so it works on a copy
	// and the caller's resources can back several worlds.
	own := *res
	own.Animations = make(map[AnimID]*Animation, len(res.Animations)+2)
	for id, a := range res.Animations {
		own.Animations[id] = a
	}
	res = &own
	w := &World{
		cfg:         deps.Config,
		res:         res,
		log:         deps.Log,
		events:      deps.Events,
		rng:         rand.New(rand.NewSource(deps.Seed)), // #nosec G404 -- gameplay randomness
		scripts:     deps.Scripts,
		dialogue:    deps.Dialogue,
		registry:    NewRegistry(),
		data:        make(map[HotspotID]*HotspotData, len(res.Hotspots)),
		grids:       make(map[RoomID]*Grid),
		compositors: make(map[RoomID]*Compositor),
		nextDynamic: dynamicIDBase,
	}
	for i := range res.Hotspots {
		d := res.Hotspots[i]
		if _, dup := w.data[d.ID]; dup {
			panic(fmt.Sprintf("resources: hotspot %d defined twice", d.ID))
		}
		w.data[d.ID] = &d
		w.ids = append(w.ids, d.ID)
	}
	sort.Slice(w.ids, func(i, j int) bool { return w.ids[i] < w.ids[j] })
	for i := range res.Joins {
		j := res.Joins[i]
		if j.Blocked && j.Frames == ([2]int{}) {
			j.Frames = j.DestFrame // authored closed: start fully shut
		}
		w.joins = append(w.joins, &j)
	}
	for _, id := range w.ids {
		if d := w.data[id]; d.Persistent && d.Room != 0 {
			w.activate(d)
		}
	}
	return w
}

// Config returns the tuning in use.
func (w *World) Config() Config { return w.cfg }

// Resources returns the resource set the world was built from.
func (w *World) Resources() *Resources { return w.res }

// Events returns the structured event log.
func (w *World) Events() *EventLog { return w.events }

// Registry returns the active hotspot registry.
func (w *World) Registry() *Registry { return w.registry }

// Room returns the room currently shown.
func (w *World) Room() RoomID { return w.room }

// CurrentTick returns the number of completed ticks.
func (w *World) CurrentTick() int { return w.tick }

// Hotspot returns the active hotspot with id, or nil.
func (w *World) Hotspot(id HotspotID) *Hotspot { return w.registry.ByID(id) }

// Data returns the persistent record of id, whether active or not, or nil.
func (w *World) Data(id HotspotID) *HotspotData { return w.data[id] }

// Handle returns a generation-checked handle to an active hotspot.
func (w *World) Handle(id HotspotID) (Handle, error) {
	h := w.registry.ByID(id)
	if h == nil {
		return Handle{}, fmt.Errorf("%w: %d is not active", ErrUnknownHotspot, id)
	}
	return h.Handle(), nil
}

// Get resolves a handle taken earlier.
func (w *World) Get(h Handle) (*Hotspot, error) { return w.registry.Get(h) }

// Grid returns the walkable grid of room, decoding it on first use.
func (w *World) Grid(room RoomID) *Grid { return w.grid(room) }

func (w *World) grid(room RoomID) *Grid {
	if g, ok := w.grids[room]; ok {
		return g
	}
	var g *Grid
	rd, ok := w.res.Rooms[room]
	if !ok {
		w.log.WithField("room", room).Warn("grid requested for unknown room, nothing is walkable")
		g = BlockedGrid(GridCols, GridRows)
	} else {
		var err error
		g, err = DecodeGrid(rd.Paths)
		if err != nil {
			w.log.WithField("room", room).WithError(err).Warn("walkable mask did not decode, nothing is walkable")
		}
	}
	w.grids[room] = g
	return g
}

func (w *World) compositor(room RoomID) *Compositor {
	if c, ok := w.compositors[room]; ok {
		return c
	}
	var layers []*Surface
	if rd, ok := w.res.Rooms[room]; ok {
		layers = rd.Layers
	}
	c, bad := NewCompositor(layers)
	if len(bad) > 0 {
		w.log.WithFields(logrus.Fields{"room": room, "layers": bad}).Warn("room layers with the wrong size skipped")
	}
	w.compositors[room] = c
	return c
}

// event records an event attributed to h.
func (w *World) event(h *Hotspot, category, key, value string, num float64) {
	w.events.Add(w.tick, h.ID(), h.Room(), category, key, value, num)
}

func (w *World) eventVerbose(h *Hotspot, category, key, value string, num float64) {
	w.events.AddVerbose(w.tick, h.ID(), h.Room(), category, key, value, num)
}

func (w *World) worldEvent(category, key, value string, num float64) {
	w.events.Add(w.tick, 0, w.room, category, key, value, num)
}

// --- Activation ---

func (w *World) activate(d *HotspotData) *Hotspot {
	var anim *Animation
	if d.Anim != 0 {
		var ok bool
		if anim, ok = w.res.Animations[d.Anim]; !ok {
			w.log.WithFields(logrus.Fields{"hotspot": d.ID, "anim": d.Anim}).Warn("animation missing, hotspot is not drawn")
		}
	}
	h := newHotspot(d, anim, w.cfg, w.log)
	w.registry.Activate(h)
	if d.Character {
		h.setFacing(d.Facing)
		h.markOccupancy(w.grid(d.Room))
	}
	if j := w.joinFor(d.ID); j != nil {
		side := j.side(d.ID)
		d.Frame = j.Frames[side]
		if j.Blocked {
			h.markOccupancy(w.grid(d.Room))
		}
	}
	w.event(h, "hotspot", "activate", d.Name, 0)
	return h
}

// Activate brings the hotspot id to life, as a script would.
func (w *World) Activate(id HotspotID) (*Hotspot, error) {
	if h := w.registry.ByID(id); h != nil {
		return h, nil
	}
	d, ok := w.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHotspot, id)
	}
	return w.activate(d), nil
}

// Deactivate removes the hotspot id from the registry at once.
func (w *World) Deactivate(id HotspotID) error {
	h := w.registry.ByID(id)
	if h == nil {
		return fmt.Errorf("%w: %d is not active", ErrUnknownHotspot, id)
	}
	w.deactivate(h)
	return nil
}

func (w *World) deactivate(h *Hotspot) {
	h.clearOccupancy()
	h.path.Cancel()
	w.event(h, "hotspot", "deactivate", h.data.Name, 0)
	if _, err := w.registry.Deactivate(h.Handle()); err != nil {
		panic(fmt.Sprintf("deactivate hotspot %d: %v", h.ID(), err))
	}
	if h.ID() >= dynamicIDBase {
		delete(w.data, h.ID())
	}
}

// unload schedules h for deactivation at the end of the tick.
func (w *World) unload(h *Hotspot) {
	if h.unloading {
		return
	}
	h.unloading = true
	w.pending = append(w.pending, h)
}

// Spawn activates a run-time hotspot such as a voice bubble. The id in d is
// replaced by a fresh dynamic id.
func (w *World) Spawn(d HotspotData) *Hotspot {
	d.ID = w.nextDynamic
	w.nextDynamic++
	rec := d
	w.data[rec.ID] = &rec
	return w.activate(&rec)
}

// --- Main loop ---

// Tick advances the world by one frame: every active hotspot's behaviour in
// activation order, then the deactivations requested during the frame.
func (w *World) Tick() {
	w.tick++
	for _, h := range w.registry.All() {
		if h.unloading || !h.Handle().Valid() {
			continue
		}
		h.behaviour.Tick(w, h)
	}
	pending := w.pending
	w.pending = nil
	for _, h := range pending {
		if h.Handle().Valid() {
			w.deactivate(h)
		}
	}
}

// Run ticks n times.
func (w *World) Run(n int) {
	for i := 0; i < n; i++ {
		w.Tick()
	}
}

// Sprites returns the draw requests for the current room.
func (w *World) Sprites() []Sprite {
	var out []Sprite
	for _, h := range w.registry.All() {
		if h.Room() != w.room || h.Layer() == LayerHidden || h.unloading {
			continue
		}
		s := h.surface()
		if s == nil {
			continue
		}
		out = append(out, Sprite{
			ID:      h.ID(),
			Surface: s,
			X:       h.X(),
			Y:       h.Y(),
			Layer:   h.Layer(),
			SortY:   h.feetY(),
		})
	}
	return out
}

// Render composes the current room into blit.
func (w *World) Render(blit Blitter) FrameStats {
	return w.compositor(w.room).Render(blit, w.Sprites())
}

// --- Entry points ---

// RequestWalk sends hotspot id walking so that its feet start at (x,y),
// optionally towards destHotspot. A player walk replaces whatever the player
// was doing; other hotspots keep the action the walk serves.
func (w *World) RequestWalk(id HotspotID, x, y int, destHotspot HotspotID) error {
	h := w.registry.ByID(id)
	if h == nil {
		return fmt.Errorf("request walk: %w: %d is not active", ErrUnknownHotspot, id)
	}
	if destHotspot != 0 {
		if _, ok := w.data[destHotspot]; !ok {
			return fmt.Errorf("request walk: %w: destination %d", ErrUnknownHotspot, destHotspot)
		}
	}
	if id == PlayerID {
		h.actions.Clear()
	}
	w.startWalk(h, Point{X: x, Y: y}, destHotspot)
	return nil
}

// DispatchAction queues action against target for hotspot id.
func (w *World) DispatchAction(id HotspotID, action Action, target HotspotID) error {
	return w.DispatchEntry(id, ScheduleEntry{Action: action, Target: target})
}

// DispatchEntry queues a full schedule entry, for actions that carry an item
// or other parameter.
func (w *World) DispatchEntry(id HotspotID, e ScheduleEntry) error {
	h := w.registry.ByID(id)
	if h == nil {
		return fmt.Errorf("dispatch %s: %w: actor %d is not active", e.Action, ErrUnknownHotspot, id)
	}
	room := h.Room()
	if e.Action.needsTarget() {
		t, ok := w.data[e.Target]
		if !ok {
			return fmt.Errorf("dispatch %s: %w: target %d", e.Action, ErrUnknownHotspot, e.Target)
		}
		if t.Room != 0 {
			room = t.Room
		}
	}
	if id == PlayerID {
		h.actions.Clear()
		h.walk.clear()
		h.path.Cancel()
	}
	h.actions.Push(ActionEntry{Kind: ActionDispatch, Room: room, Schedule: single(e)})
	w.event(h, "action", "dispatch", e.String(), 0)
	return nil
}

// Joins returns the exit join records.
func (w *World) Joins() []*ExitJoin { return w.joins }

// JoinFor returns the join that door belongs to, or nil.
func (w *World) JoinFor(door HotspotID) *ExitJoin { return w.joinFor(door) }

func (w *World) joinFor(door HotspotID) *ExitJoin {
	if door == 0 {
		return nil
	}
	for _, j := range w.joins {
		if j.Doors[0] == door || j.Doors[1] == door {
			return j
		}
	}
	return nil
}

// Holdings returns the ids of the items held by id, in id order.
func (w *World) Holdings(id HotspotID) []HotspotID {
	var out []HotspotID
	for _, hid := range w.ids {
		if d := w.data[hid]; d.HeldBy == id && d.Room == 0 {
			out = append(out, hid)
		}
	}
	return out
}

// HotspotAt returns the record of the hotspot drawn topmost at screen point
// (x,y) in the room shown, or nil. The player and run-time markers are never
// hit.
func (w *World) HotspotAt(x, y int) *HotspotData {
	var best *Hotspot
	for _, h := range w.registry.All() {
		if h.Room() != w.room || h.Layer() == LayerHidden || h.unloading {
			continue
		}
		if h.ID() == PlayerID || h.ID() >= dynamicIDBase || !h.Bounds().Contains(x, y) {
			continue
		}
		if best == nil || drawsOver(h, best) {
			best = h
		}
	}
	if best == nil {
		return nil
	}
	return best.data
}

// drawsOver reports whether a is composed after b.
func drawsOver(a, b *Hotspot) bool {
	if a.Layer() != b.Layer() {
		return layerOrder(a.Layer()) > layerOrder(b.Layer())
	}
	return a.feetY() > b.feetY()
}

func layerOrder(l Layer) int {
	switch l {
	case LayerBack:
		return 0
	case LayerMid:
		return 1
	default:
		return 2
	}
}
