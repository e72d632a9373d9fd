package game

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomFixtures is the YAML form of a resource set: rooms with their masks
// drawn as ASCII art, hotspots, joins and schedules. Sprites and layers are
// flat colour blocks, enough to drive the compositor and backends without
// graphics files.
type RoomFixtures struct {
	Rooms     []RoomFixture     `yaml:"rooms"`
	Hotspots  []HotspotFixture  `yaml:"hotspots"`
	Joins     []JoinFixture     `yaml:"joins"`
	Schedules []ScheduleFixture `yaml:"schedules"`
}

type RoomFixture struct {
	ID          RoomID         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description uint16         `yaml:"description"`
	Mask        string         `yaml:"mask"`
	WalkBounds  Rect           `yaml:"walk_bounds"`
	Background  byte           `yaml:"background"`
	Paint       []PaintFixture `yaml:"paint"`
	Exits       []ExitFixture  `yaml:"exits"`
}

// PaintFixture fills Rect of layer (0 is the background) with Colour.
type PaintFixture struct {
	Layer  int  `yaml:"layer"`
	Rect   Rect `yaml:"rect"`
	Colour byte `yaml:"colour"`
}

type ExitFixture struct {
	Area     Rect      `yaml:"area"`
	DestRoom RoomID    `yaml:"dest_room"`
	DestX    int       `yaml:"dest_x"`
	DestY    int       `yaml:"dest_y"`
	Door     HotspotID `yaml:"door"`
	Script   uint16    `yaml:"script"`
	Facing   string    `yaml:"facing"`
}

type HotspotFixture struct {
	ID           HotspotID         `yaml:"id"`
	Name         string            `yaml:"name"`
	Room         RoomID            `yaml:"room"`
	HeldBy       HotspotID         `yaml:"held_by"`
	X            int               `yaml:"x"`
	Y            int               `yaml:"y"`
	Width        int               `yaml:"width"`
	Height       int               `yaml:"height"`
	YCorrection  int               `yaml:"y_correction"`
	Layer        string            `yaml:"layer"`
	Tick         string            `yaml:"tick"`
	Facing       string            `yaml:"facing"`
	Colour       byte              `yaml:"colour"`
	Frames       int               `yaml:"frames"`
	Actions      map[string]uint16 `yaml:"actions"`
	WalkX        int               `yaml:"walk_x"`
	WalkY        int               `yaml:"walk_y"`
	ScriptOffset uint16            `yaml:"script_offset"`
	Schedule     ScheduleID        `yaml:"schedule"`
	Description  uint16            `yaml:"description"`
	Examine      uint16            `yaml:"examine"`
	TalkMessage  uint16            `yaml:"talk_message"`
	Persistent   bool              `yaml:"persistent"`
	Character    bool              `yaml:"character"`
	Item         bool              `yaml:"item"`
	Drinkable    bool              `yaml:"drinkable"`
	FrameSkip    int               `yaml:"frame_skip"`
	Owner        HotspotID         `yaml:"owner"`
}

type JoinFixture struct {
	Doors     [2]HotspotID `yaml:"doors"`
	Blocked   bool         `yaml:"blocked"`
	Locked    bool         `yaml:"locked"`
	DestFrame [2]int       `yaml:"dest_frame"`
}

type ScheduleFixture struct {
	ID      ScheduleID     `yaml:"id"`
	Entries []EntryFixture `yaml:"entries"`
}

type EntryFixture struct {
	Label  string    `yaml:"label"`
	Action string    `yaml:"action"`
	Target HotspotID `yaml:"target"`
	Param  int       `yaml:"param"`
	Goto   string    `yaml:"goto"`
}

// ParseRoomFixtures builds a resource set from YAML. Unknown keys, names and
// masks that are not a full grid are errors.
func ParseRoomFixtures(data []byte) (*Resources, error) {
	var rf RoomFixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("room fixtures: %w", err)
	}
	return rf.Resources()
}

// LoadRoomFixtures reads and parses a fixture file.
func LoadRoomFixtures(path string) (*Resources, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("room fixtures: %w", err)
	}
	return ParseRoomFixtures(data)
}

// Resources converts the fixtures.
func (rf RoomFixtures) Resources() (*Resources, error) {
	res := NewResources()
	for _, r := range rf.Rooms {
		rd, err := r.room()
		if err != nil {
			return nil, err
		}
		if _, dup := res.Rooms[rd.ID]; dup {
			return nil, fmt.Errorf("room fixtures: room %d defined twice", rd.ID)
		}
		res.Rooms[rd.ID] = rd
	}
	for _, h := range rf.Hotspots {
		d, anim, err := h.hotspot()
		if err != nil {
			return nil, err
		}
		if anim != nil {
			res.Animations[anim.ID] = anim
		}
		res.Hotspots = append(res.Hotspots, d)
	}
	for _, j := range rf.Joins {
		res.Joins = append(res.Joins, ExitJoin{Doors: j.Doors, Blocked: j.Blocked, Locked: j.Locked, DestFrame: j.DestFrame})
	}
	for _, s := range rf.Schedules {
		set := &ScheduleSet{ID: s.ID}
		for i, e := range s.Entries {
			a, ok := ParseAction(e.Action)
			if !ok {
				return nil, fmt.Errorf("room fixtures: schedule %d entry %d: unknown action %q", s.ID, i, e.Action)
			}
			set.Entries = append(set.Entries, ScheduleEntry{Label: e.Label, Action: a, Target: e.Target, Param: e.Param, Goto: e.Goto})
		}
		res.Schedules[s.ID] = set
	}
	return res, nil
}

func (r RoomFixture) room() (*RoomData, error) {
	g, err := ParseGridArt(r.Mask)
	if err != nil {
		return nil, fmt.Errorf("room fixtures: room %d mask: %w", r.ID, err)
	}
	if g.Cols() != GridCols || g.Rows() != GridRows {
		return nil, fmt.Errorf("room fixtures: room %d mask: %w: %dx%d, want %dx%d",
			r.ID, ErrMalformedGrid, g.Cols(), g.Rows(), GridCols, GridRows)
	}
	rd := &RoomData{
		ID:          r.ID,
		Name:        r.Name,
		Paths:       EncodeGrid(g),
		WalkBounds:  r.WalkBounds,
		Description: r.Description,
	}

	n := 1
	for _, p := range r.Paint {
		n = max(n, p.Layer+1)
	}
	rd.Layers = make([]*Surface, n)
	for i := range rd.Layers {
		rd.Layers[i] = NewSurface(ScreenWidth, ScreenHeight)
	}
	rd.Layers[0].Fill(screenRect, r.Background)
	for _, p := range r.Paint {
		if p.Layer < 0 {
			return nil, fmt.Errorf("room fixtures: room %d paints layer %d", r.ID, p.Layer)
		}
		rd.Layers[p.Layer].Fill(p.Rect, p.Colour)
	}

	for _, ex := range r.Exits {
		facing, err := parseDirection(ex.Facing)
		if err != nil {
			return nil, fmt.Errorf("room fixtures: room %d exit: %w", r.ID, err)
		}
		rd.Exits = append(rd.Exits, RoomExit{
			Area:       ex.Area,
			DestRoom:   ex.DestRoom,
			DestX:      ex.DestX,
			DestY:      ex.DestY,
			Door:       ex.Door,
			Script:     ex.Script,
			DestFacing: facing,
		})
	}
	return rd, nil
}

func (h HotspotFixture) hotspot() (HotspotData, *Animation, error) {
	fail := func(err error) (HotspotData, *Animation, error) {
		return HotspotData{}, nil, fmt.Errorf("room fixtures: hotspot %d: %w", h.ID, err)
	}
	layer, err := parseLayer(h.Layer)
	if err != nil {
		return fail(err)
	}
	proc, err := parseTickProc(h.Tick)
	if err != nil {
		return fail(err)
	}
	facing, err := parseDirection(h.Facing)
	if err != nil {
		return fail(err)
	}
	d := HotspotData{
		ID:           h.ID,
		Name:         h.Name,
		Room:         h.Room,
		HeldBy:       h.HeldBy,
		X:            h.X,
		Y:            h.Y,
		Width:        h.Width,
		Height:       h.Height,
		YCorrection:  h.YCorrection,
		Layer:        layer,
		TickProc:     proc,
		Facing:       facing,
		WalkX:        h.WalkX,
		WalkY:        h.WalkY,
		ScriptOffset: h.ScriptOffset,
		Schedule:     h.Schedule,
		Description:  h.Description,
		Examine:      h.Examine,
		TalkMessage:  h.TalkMessage,
		Persistent:   h.Persistent,
		Character:    h.Character,
		Item:         h.Item,
		Drinkable:    h.Drinkable,
		FrameSkip:    h.FrameSkip,
		Owner:        h.Owner,
	}
	if len(h.Actions) > 0 {
		d.Actions = make(map[Action]uint16, len(h.Actions))
		for name, v := range h.Actions {
			a, ok := ParseAction(name)
			if !ok {
				return fail(fmt.Errorf("unknown action %q", name))
			}
			d.Actions[a] = v
		}
	}

	if h.Colour == 0 || h.Width <= 0 || h.Height <= 0 {
		return d, nil, nil
	}
	d.Anim = AnimID(h.ID)
	return d, blockAnimation(d.Anim, h.Width, h.Height, h.Colour, max(h.Frames, 1)), nil
}

// blockAnimation builds frames solid blocks of colour, each frame one shade
// further along the palette. Every direction walks and stands on frame 0
// except that walks alternate the first two frames.
func blockAnimation(id AnimID, w, h int, colour byte, frames int) *Animation {
	a := &Animation{ID: id}
	for i := 0; i < frames; i++ {
		s := NewSurface(w, h)
		s.Fill(Rect{W: w, H: h}, colour+byte(i))
		// Top row marks the head so facing changes are visible.
		s.Fill(Rect{X: w / 4, W: w / 2, H: min(h/4, 4)}, colour+byte(frames))
		a.Frames = append(a.Frames, s)
	}
	walk := []int{0}
	if frames > 1 {
		walk = []int{0, 1}
	}
	for d := range a.Walk {
		a.Walk[d] = walk
	}
	return a
}

func parseLayer(name string) (Layer, error) {
	if name == "" {
		return LayerMid, nil
	}
	for l := LayerHidden; l <= LayerBack; l++ {
		if l.String() == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", name)
}

func parseTickProc(name string) (TickProc, error) {
	if name == "" {
		return TickNone, nil
	}
	for p := TickNone; p <= TickPuzzled; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown tick handler %q", name)
}

func parseDirection(name string) (Direction, error) {
	if name == "" {
		return DirNone, nil
	}
	for d := DirNone; d <= DirRight; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", name)
}
