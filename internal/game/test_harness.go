package game

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// TestWorld is a headless harness around World used by tests and the
// headless report. It builds resources from options, records everything the
// world shows or runs, and supports deterministic seeding.
type TestWorld struct {
	*World
	Res      *Resources
	Scripts  *ScriptTable
	Dialogue *RecordingDialogue

	cfg     Config
	log     logrus.FieldLogger
	seed    int64
	verbose bool
	start   RoomID
}

// worldOptionKind controls the pass in which an option is applied.
type worldOptionKind int

const (
	worldOptInfra   worldOptionKind = iota // seed, config, verbose
	worldOptRoom                           // rooms, exits, joins, schedules
	worldOptHotspot                        // hotspots, applied once rooms exist
)

// WorldOption is a builder function applied to a TestWorld during construction.
type WorldOption struct {
	kind worldOptionKind
	fn   func(*TestWorld)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) WorldOption {
	return WorldOption{worldOptInfra, func(tw *TestWorld) { tw.seed = seed }}
}

// WithConfig replaces the stock tuning.
func WithConfig(cfg Config) WorldOption {
	return WorldOption{worldOptInfra, func(tw *TestWorld) { tw.cfg = cfg }}
}

// WithLog routes the world's log output to log.
func WithLog(log logrus.FieldLogger) WorldOption {
	return WorldOption{worldOptInfra, func(tw *TestWorld) { tw.log = log }}
}

// WithVerbose enables per-step event logging.
func WithVerbose(v bool) WorldOption {
	return WorldOption{worldOptInfra, func(tw *TestWorld) { tw.verbose = v }}
}

// WithStartRoom sets the room entered once the world is built. By default it
// is the player's room, or the lowest room id.
func WithStartRoom(room RoomID) WorldOption {
	return WorldOption{worldOptInfra, func(tw *TestWorld) { tw.start = room }}
}

// WithRoom adds a room whose walkable mask is given as art (see ParseGridArt);
// empty art is a fully walkable room. Malformed art panics.
func WithRoom(id RoomID, art string) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		g := NewGrid(GridCols, GridRows)
		if strings.TrimSpace(art) != "" {
			var err error
			if g, err = ParseGridArt(art); err != nil {
				panic(fmt.Sprintf("WithRoom(%d): %v", id, err))
			}
		}
		tw.Res.Rooms[id] = &RoomData{ID: id, Name: fmt.Sprintf("room%d", id), Paths: EncodeGrid(g)}
	}}
}

// WithRoomData adds a fully built room record.
func WithRoomData(rd RoomData) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		r := rd
		tw.Res.Rooms[rd.ID] = &r
	}}
}

// WithLayers gives room its background and foreground layers.
func WithLayers(room RoomID, layers ...*Surface) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		tw.roomData(room).Layers = layers
	}}
}

// WithExit adds an exit zone to room.
func WithExit(room RoomID, ex RoomExit) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		rd := tw.roomData(room)
		rd.Exits = append(rd.Exits, ex)
	}}
}

// WithJoin adds a door join.
func WithJoin(j ExitJoin) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		tw.Res.Joins = append(tw.Res.Joins, j)
	}}
}

// WithSchedule adds a schedule set.
func WithSchedule(id ScheduleID, entries ...ScheduleEntry) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		tw.Res.Schedules[id] = &ScheduleSet{ID: id, Entries: entries}
	}}
}

// WithAnimation adds an animation.
func WithAnimation(a *Animation) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		tw.Res.Animations[a.ID] = a
	}}
}

// WithAnimScript adds a timed animation script at offset.
func WithAnimScript(offset uint16, ops ...AnimOp) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		tw.Res.AnimScripts[offset] = ops
	}}
}

// WithScript installs fn as the micro-script at offset.
func WithScript(offset uint16, fn ScriptFunc) WorldOption {
	return WorldOption{worldOptRoom, func(tw *TestWorld) {
		tw.Scripts.Scripts[offset] = fn
	}}
}

// WithHotspot adds a hotspot record.
func WithHotspot(d HotspotData) WorldOption {
	return WorldOption{worldOptHotspot, func(tw *TestWorld) {
		tw.Res.Hotspots = append(tw.Res.Hotspots, d)
	}}
}

// WithPlayer adds the player in room with its feet at (x,y).
func WithPlayer(room RoomID, x, y int) WorldOption {
	return WorldOption{worldOptHotspot, func(tw *TestWorld) {
		tw.Res.Hotspots = append(tw.Res.Hotspots, CharacterData(PlayerID, "player", room, x, y))
	}}
}

// WithNPC adds a non-player character with its feet at (x,y) running schedule
// (zero wanders).
func WithNPC(id HotspotID, room RoomID, x, y int, schedule ScheduleID) WorldOption {
	return WorldOption{worldOptHotspot, func(tw *TestWorld) {
		d := CharacterData(id, fmt.Sprintf("npc%d", id), room, x, y)
		d.TickProc = TickCharacter
		d.Schedule = schedule
		tw.Res.Hotspots = append(tw.Res.Hotspots, d)
	}}
}

// Character sprites in the harness and demo are 16×32 with no feet band.
const (
	characterWidth  = 16
	characterHeight = 32
)

// CharacterData returns a persistent character record with its feet at (x,y).
func CharacterData(id HotspotID, name string, room RoomID, x, y int) HotspotData {
	proc := TickCharacter
	if id == PlayerID {
		proc = TickPlayer
	}
	return HotspotData{
		ID:         id,
		Name:       name,
		Room:       room,
		X:          x,
		Y:          y - characterHeight + 1,
		Width:      characterWidth,
		Height:     characterHeight,
		Layer:      LayerMid,
		TickProc:   proc,
		Facing:     DirDown,
		Persistent: true,
		Character:  true,
	}
}

func (tw *TestWorld) roomData(id RoomID) *RoomData {
	rd, ok := tw.Res.Rooms[id]
	if !ok {
		panic(fmt.Sprintf("test world: room %d used before WithRoom", id))
	}
	return rd
}

// NewTestWorld constructs a TestWorld from the given options in ordered passes:
//  1. Infrastructure (seed, config, verbose)
//  2. Rooms, exits, joins, schedules and scripts
//  3. Hotspots
//  4. Build the World and enter the start room
func NewTestWorld(opts ...WorldOption) *TestWorld {
	tw := &TestWorld{
		Res:      NewResources(),
		Scripts:  NewScriptTable(),
		Dialogue: &RecordingDialogue{},
		cfg:      DefaultConfig(),
		seed:     1,
	}
	for _, kind := range []worldOptionKind{worldOptInfra, worldOptRoom, worldOptHotspot} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(tw)
			}
		}
	}
	tw.World = NewWorld(tw.Res, Deps{
		Config:   tw.cfg,
		Log:      tw.log,
		Scripts:  tw.Scripts,
		Dialogue: tw.Dialogue,
		Events:   NewEventLog(tw.verbose),
		Seed:     tw.seed,
	})
	if start := tw.startRoom(); start != 0 {
		if err := tw.EnterRoom(start); err != nil {
			panic(fmt.Sprintf("test world: %v", err))
		}
	}
	return tw
}

func (tw *TestWorld) startRoom() RoomID {
	if tw.start != 0 {
		return tw.start
	}
	for _, d := range tw.Res.Hotspots {
		if d.ID == PlayerID {
			return d.Room
		}
	}
	var lowest RoomID
	for id := range tw.Res.Rooms {
		if lowest == 0 || id < lowest {
			lowest = id
		}
	}
	return lowest
}

// RunTicks advances the world n ticks.
func (tw *TestWorld) RunTicks(n int) { tw.Run(n) }

// RunUntil advances the world up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (tw *TestWorld) RunUntil(predicate func(*TestWorld) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		tw.Tick()
		if predicate(tw) {
			return tw.CurrentTick()
		}
	}
	return -1
}

// MustHotspot returns the active hotspot id or panics.
func (tw *TestWorld) MustHotspot(id HotspotID) *Hotspot {
	h := tw.Hotspot(id)
	if h == nil {
		panic(fmt.Sprintf("test world: hotspot %d is not active", id))
	}
	return h
}

// Idle reports whether hotspot id has nothing left on its action stack.
func (tw *TestWorld) Idle(id HotspotID) bool {
	h := tw.Hotspot(id)
	return h != nil && h.actions.Empty()
}

// Snapshot captures a lightweight state summary.
type WorldSnapshot struct {
	Tick     int
	Room     RoomID
	Hotspots []HotspotSnapshot
}

// HotspotSnapshot is a lightweight copy of a hotspot's state at a tick.
type HotspotSnapshot struct {
	ID      HotspotID
	Name    string
	Room    RoomID
	X, Y    int
	Facing  Direction
	Top     ActionKind
	Depth   int
	Blocked bool
}

// Snapshot returns the current state of every active hotspot.
func (tw *TestWorld) Snapshot() WorldSnapshot {
	snap := WorldSnapshot{Tick: tw.CurrentTick(), Room: tw.Room()}
	for _, h := range tw.registry.All() {
		snap.Hotspots = append(snap.Hotspots, HotspotSnapshot{
			ID:      h.ID(),
			Name:    h.data.Name,
			Room:    h.Room(),
			X:       h.X(),
			Y:       h.Y(),
			Facing:  h.Facing(),
			Top:     h.actions.TopKind(),
			Depth:   h.actions.Len(),
			Blocked: h.blocked,
		})
	}
	return snap
}
