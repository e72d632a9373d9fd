package game

import (
	"encoding/binary"
	"fmt"
)

// HotspotID is the authored identifier of a hotspot.
type HotspotID uint16

// PlayerID is the hotspot id of the player character.
const PlayerID HotspotID = 1000

// AnimID identifies an animation frame table.
type AnimID uint16

// Layer is the z-order band a hotspot is drawn in.
type Layer uint8

const (
	LayerHidden Layer = 0 // not drawn
	LayerMid    Layer = 1 // depth-sorted by footprint bottom
	LayerFront  Layer = 2 // always on top (fire, overlays, bubbles)
	LayerBack   Layer = 3 // above the background, behind midground
)

func (l Layer) String() string {
	switch l {
	case LayerHidden:
		return "hidden"
	case LayerMid:
		return "mid"
	case LayerFront:
		return "front"
	case LayerBack:
		return "back"
	default:
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
}

// HotspotData is the persistent record of a hotspot. Resources carry the
// authored values; the World keeps a mutable copy per hotspot that survives
// activation and deactivation.
type HotspotData struct {
	ID          HotspotID
	Name        string
	Room        RoomID // 0 while held by a character or consumed
	HeldBy      HotspotID
	X, Y        int
	Width       int
	Height      int
	YCorrection int // depth of the feet band used for collisions
	Layer       Layer
	TickProc    TickProc
	Anim        AnimID
	Frame       int
	Facing      Direction

	// Actions maps an action to a script offset, or to a message id when ≥ 0x8000.
	Actions map[Action]uint16
	// WalkX/WalkY is where an actor stands to interact; zero means in front of the hotspot.
	WalkX, WalkY int

	ScriptOffset uint16     // animation script for timed-script hotspots
	Schedule     ScheduleID // initial NPC schedule
	Description  uint16     // message for look-at
	Examine      uint16     // message for examine, falls back to Description
	TalkMessage  uint16     // opening line for talk-to

	Persistent bool // survives room changes (player, NPCs)
	Character  bool
	Item       bool // can be picked up
	Drinkable  bool
	FrameSkip  int       // ticks skipped between walk steps
	Owner      HotspotID // for bubbles and puzzled marks: the hotspot followed
}

// RoomExit is a zone that moves a walker into another room.
type RoomExit struct {
	Area       Rect // tested against the walker's anchor
	DestRoom   RoomID
	DestX      int
	DestY      int
	Door       HotspotID // door hotspot whose join gates the exit; 0 for a plain zone
	Script     uint16    // transition script run instead of a direct move; 0 for none
	DestFacing Direction
}

// ExitJoin links the two door hotspots on either side of a doorway.
type ExitJoin struct {
	Doors     [2]HotspotID
	Blocked   bool // door closed
	Locked    bool
	Frames    [2]int // current door frame per side
	DestFrame [2]int // frame count when fully closed
}

// side returns the index of door in the join.
func (j *ExitJoin) side(door HotspotID) int {
	if j.Doors[1] == door {
		return 1
	}
	return 0
}

// RoomData describes one room as handed over by the resource loader.
type RoomData struct {
	ID          RoomID
	Name        string
	Paths       []byte // encoded walkable mask, see DecodeGrid
	Layers      []*Surface
	Exits       []RoomExit
	WalkBounds  Rect // area used for random destinations
	Description uint16
}

// MoveFrames lists the animation frames cycled while walking in each direction.
type MoveFrames [5][]int

// Animation is a hotspot frame table.
type Animation struct {
	ID     AnimID
	Frames []*Surface
	Walk   MoveFrames
	Stand  [5]int // standing frame per facing
}

// Frame returns frame n, or nil when the table has no such frame.
func (a *Animation) Frame(n int) *Surface {
	if a == nil || n < 0 || n >= len(a.Frames) {
		return nil
	}
	return a.Frames[n]
}

// Resources is the parsed resource set for a game.
type Resources struct {
	Rooms       map[RoomID]*RoomData
	Hotspots    []HotspotData
	Animations  map[AnimID]*Animation
	Schedules   map[ScheduleID]*ScheduleSet
	Joins       []ExitJoin
	AnimScripts map[uint16][]AnimOp
}

// NewResources returns an empty resource set.
func NewResources() *Resources {
	return &Resources{
		Rooms:       make(map[RoomID]*RoomData),
		Animations:  make(map[AnimID]*Animation),
		Schedules:   make(map[ScheduleID]*ScheduleSet),
		AnimScripts: make(map[uint16][]AnimOp),
	}
}

// --- External collaborators ---

// ScriptCall is the context handed to an authored micro-script.
type ScriptCall struct {
	Offset uint16
	Actor  HotspotID
	Target HotspotID
	Action Action
	Tick   int
}

// Script result codes.
const (
	ScriptDone       uint16 = 0
	ScriptContinue   uint16 = 1
	ScriptMessageMin uint16 = 0x8000
)

// ScriptRunner executes authored micro-scripts. The core treats it as a black box.
type ScriptRunner interface {
	Execute(w *World, call ScriptCall) uint16
}

// Dialogue receives the messages and conversations the core wants shown.
type Dialogue interface {
	ShowMessage(speaker HotspotID, msg uint16)
	StartConversation(speaker, listener HotspotID, msg uint16)
}

// Blitter copies the region (x,y,w,h) of src to the same place on the screen.
type Blitter interface {
	BlitRegion(src *Surface, x, y, w, h int)
}

// SurfaceDecoder converts raw resource bytes to a surface.
type SurfaceDecoder interface {
	DecodeSurface(raw []byte) (*Surface, error)
}

// RawSurfaceDecoder reads a little-endian width and height followed by one
// palette index per pixel.
type RawSurfaceDecoder struct{}

// DecodeSurface implements SurfaceDecoder.
func (RawSurfaceDecoder) DecodeSurface(raw []byte) (*Surface, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: %d byte header", ErrMalformedSurface, len(raw))
	}
	w := int(binary.LittleEndian.Uint16(raw[0:2]))
	h := int(binary.LittleEndian.Uint16(raw[2:4]))
	if len(raw)-4 != w*h {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, have %d", ErrMalformedSurface, w, h, w*h, len(raw)-4)
	}
	s := NewSurface(w, h)
	copy(s.Pix, raw[4:])
	return s, nil
}

// EncodeRawSurface is the inverse of RawSurfaceDecoder.DecodeSurface.
func EncodeRawSurface(s *Surface) []byte {
	out := make([]byte, 4, 4+len(s.Pix))
	binary.LittleEndian.PutUint16(out[0:2], uint16(s.W))
	binary.LittleEndian.PutUint16(out[2:4], uint16(s.H))
	return append(out, s.Pix...)
}

// NopDialogue discards everything.
type NopDialogue struct{}

func (NopDialogue) ShowMessage(HotspotID, uint16)                  {}
func (NopDialogue) StartConversation(HotspotID, HotspotID, uint16) {}

// ShownMessage is one message captured by RecordingDialogue.
type ShownMessage struct {
	Speaker  HotspotID
	Listener HotspotID
	Msg      uint16
	Talk     bool
}

// RecordingDialogue keeps every message it is asked to show.
type RecordingDialogue struct {
	Shown []ShownMessage
}

func (d *RecordingDialogue) ShowMessage(speaker HotspotID, msg uint16) {
	d.Shown = append(d.Shown, ShownMessage{Speaker: speaker, Msg: msg})
}

func (d *RecordingDialogue) StartConversation(speaker, listener HotspotID, msg uint16) {
	d.Shown = append(d.Shown, ShownMessage{Speaker: speaker, Listener: listener, Msg: msg, Talk: true})
}

// Has reports whether msg was shown by speaker.
func (d *RecordingDialogue) Has(speaker HotspotID, msg uint16) bool {
	for _, m := range d.Shown {
		if m.Speaker == speaker && m.Msg == msg {
			return true
		}
	}
	return false
}

// ScriptFunc is one entry of a ScriptTable.
type ScriptFunc func(w *World, call ScriptCall) uint16

// ScriptTable is an in-memory ScriptRunner keyed by offset.
type ScriptTable struct {
	Scripts map[uint16]ScriptFunc
	Calls   []ScriptCall
}

// NewScriptTable returns an empty table.
func NewScriptTable() *ScriptTable {
	return &ScriptTable{Scripts: make(map[uint16]ScriptFunc)}
}

// Execute implements ScriptRunner. Unknown offsets finish immediately.
func (t *ScriptTable) Execute(w *World, call ScriptCall) uint16 {
	t.Calls = append(t.Calls, call)
	if f, ok := t.Scripts[call.Offset]; ok {
		return f(w, call)
	}
	return ScriptDone
}

// CallCount returns how many times offset was executed.
func (t *ScriptTable) CallCount(offset uint16) int {
	n := 0
	for _, c := range t.Calls {
		if c.Offset == offset {
			n++
		}
	}
	return n
}
