package game

import "fmt"

// Action is an interaction verb, either chosen by the player or read from an
// NPC schedule. The numeric values are part of the resource format.
type Action uint8

const (
	ActionNone        Action = 0
	ActionGet         Action = 1
	ActionPush        Action = 3
	ActionPull        Action = 4
	ActionOperate     Action = 5
	ActionOpen        Action = 6
	ActionClose       Action = 7
	ActionLock        Action = 8
	ActionUnlock      Action = 9
	ActionUse         Action = 10
	ActionGive        Action = 11
	ActionTalkTo      Action = 12
	ActionTell        Action = 13
	ActionLook        Action = 15
	ActionLookAt      Action = 16
	ActionLookThrough Action = 17
	ActionAsk         Action = 18
	ActionDrink       Action = 20
	ActionStatus      Action = 21
	ActionGoTo        Action = 22
	ActionBribe       Action = 24
	ActionExamine     Action = 25

	// NPC schedule meta-actions.
	NPCSetRoomAndOffset Action = 26
	NPCExecScript       Action = 28
	NPCSetRandomDest    Action = 30
	NPCPause            Action = 31
	NPCDispatch         Action = 34
	NPCJump             Action = 39
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionGet:           "get",
	ActionPush:          "push",
	ActionPull:          "pull",
	ActionOperate:       "operate",
	ActionOpen:          "open",
	ActionClose:         "close",
	ActionLock:          "lock",
	ActionUnlock:        "unlock",
	ActionUse:           "use",
	ActionGive:          "give",
	ActionTalkTo:        "talk_to",
	ActionTell:          "tell",
	ActionLook:          "look",
	ActionLookAt:        "look_at",
	ActionLookThrough:   "look_through",
	ActionAsk:           "ask",
	ActionDrink:         "drink",
	ActionStatus:        "status",
	ActionGoTo:          "go_to",
	ActionBribe:         "bribe",
	ActionExamine:       "examine",
	NPCSetRoomAndOffset: "npc_set_room",
	NPCExecScript:       "npc_exec_script",
	NPCSetRandomDest:    "npc_random_dest",
	NPCPause:            "npc_pause",
	NPCDispatch:         "npc_dispatch",
	NPCJump:             "npc_jump",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction looks an action up by its String form.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return ActionNone, false
}

// Meta reports whether the action only exists in NPC schedules.
func (a Action) Meta() bool { return a >= NPCSetRoomAndOffset }

// needsTarget reports whether the action acts on another hotspot.
func (a Action) needsTarget() bool {
	switch a {
	case ActionLook, ActionStatus:
		return false
	}
	return !a.Meta()
}

// ScheduleID identifies a schedule set in the resources.
type ScheduleID uint16

// ScheduleEntry is one step of a schedule. Param carries the action argument:
// the item for use/give/ask/bribe, the room for npc_set_room, the script
// offset for npc_exec_script, the tick count for npc_pause and the schedule
// id for npc_dispatch.
type ScheduleEntry struct {
	Label  string
	Action Action
	Target HotspotID
	Param  int
	Goto   string // label jumped to by npc_jump
}

func (e ScheduleEntry) String() string {
	switch e.Action {
	case NPCJump:
		return fmt.Sprintf("%s -> %s", e.Action, e.Goto)
	case ActionNone:
		return "none"
	}
	if e.Target == 0 {
		return fmt.Sprintf("%s(%d)", e.Action, e.Param)
	}
	return fmt.Sprintf("%s #%d(%d)", e.Action, e.Target, e.Param)
}

// ScheduleSet is an ordered list of entries owned by the resources.
type ScheduleSet struct {
	ID      ScheduleID
	Entries []ScheduleEntry
}

// Find returns the index of the entry with the given label, or -1.
func (s *ScheduleSet) Find(label string) int {
	for i, e := range s.Entries {
		if e.Label == label {
			return i
		}
	}
	return -1
}

// ScheduleRef points at one entry in a schedule set. The zero value refers to nothing.
type ScheduleRef struct {
	Set   *ScheduleSet
	Index int
}

// Valid reports whether the reference points at an existing entry.
func (r ScheduleRef) Valid() bool {
	return r.Set != nil && r.Index >= 0 && r.Index < len(r.Set.Entries)
}

// Entry returns the referenced entry.
func (r ScheduleRef) Entry() ScheduleEntry {
	if !r.Valid() {
		return ScheduleEntry{}
	}
	return r.Set.Entries[r.Index]
}

// Next returns the reference to the following entry. ok is false at the end of the set.
func (r ScheduleRef) Next() (ScheduleRef, bool) {
	n := ScheduleRef{Set: r.Set, Index: r.Index + 1}
	return n, n.Valid()
}

// single wraps a lone entry (typically a player command) in a one-entry set.
func single(e ScheduleEntry) ScheduleRef {
	return ScheduleRef{Set: &ScheduleSet{Entries: []ScheduleEntry{e}}}
}
