package game

import (
	_ "embed"
	"fmt"
)

//go:embed demo_rooms.yaml
var demoRooms []byte

// Hotspot ids of the demo resources.
const (
	DemoPorter     HotspotID = 1001
	DemoCat        HotspotID = 1002
	DemoHallDoor   HotspotID = 2001
	DemoCellarDoor HotspotID = 2002
	DemoFire       HotspotID = 3001
	DemoTorch      HotspotID = 3002
	DemoKey        HotspotID = 4001
	DemoBottle     HotspotID = 4002
)

// Demo script offsets.
const (
	demoGreetScript uint16 = 0x10
	demoPetScript   uint16 = 0x20

	// MsgCatPurrs is what operating the cat says.
	MsgCatPurrs uint16 = 0x8201
)

// DemoResources returns the built-in three-room demo: hall, cellar and the
// corridor behind it.
func DemoResources() *Resources {
	res, err := ParseRoomFixtures(demoRooms)
	if err != nil {
		panic(fmt.Sprintf("demo resources: %v", err))
	}
	return res
}

// DemoScripts returns the micro-scripts the demo hotspots refer to.
func DemoScripts() *ScriptTable {
	t := NewScriptTable()
	t.Scripts[demoGreetScript] = func(*World, ScriptCall) uint16 { return ScriptDone }
	t.Scripts[demoPetScript] = func(*World, ScriptCall) uint16 { return MsgCatPurrs }
	return t
}

// NewDemoWorld builds the demo with the player in the hall.
func NewDemoWorld(deps Deps) (*World, error) {
	if deps.Scripts == nil {
		deps.Scripts = DemoScripts()
	}
	w := NewWorld(DemoResources(), deps)
	if err := w.EnterRoom(1); err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	return w, nil
}
