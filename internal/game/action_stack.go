package game

import (
	"fmt"
	"strings"
)

// ActionKind tags an entry on a hotspot's action stack.
type ActionKind uint8

const (
	ActionKindNone ActionKind = iota
	ActionStartWalking
	ActionProcessingPath
	ActionWalking
	ActionExecScript
	ActionDispatch
)

func (k ActionKind) String() string {
	switch k {
	case ActionKindNone:
		return "none"
	case ActionStartWalking:
		return "start_walking"
	case ActionProcessingPath:
		return "processing_path"
	case ActionWalking:
		return "walking"
	case ActionExecScript:
		return "exec_script"
	case ActionDispatch:
		return "dispatch"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// dispatchStage tracks how far a dispatch entry has got through its handler.
type dispatchStage uint8

const (
	stagePrecheck dispatchStage = iota // walk into range first
	stageFaced                         // turned to the target, fires next tick
	stageRunning                       // script returned "continue", re-invoke
)

// ActionEntry is one frame of a hotspot's behaviour stack.
type ActionEntry struct {
	Kind     ActionKind
	Room     RoomID
	Schedule ScheduleRef

	Script  uint16 // offset for ActionExecScript
	stage   dispatchStage
	retries int
}

func (e ActionEntry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Room != 0 {
		fmt.Fprintf(&sb, "@%d", e.Room)
	}
	if e.Schedule.Valid() {
		fmt.Fprintf(&sb, "[%s]", e.Schedule.Entry())
	}
	if e.Kind == ActionExecScript {
		fmt.Fprintf(&sb, "(%#x)", e.Script)
	}
	return sb.String()
}

// ActionStack is a LIFO of behaviour entries. The top entry is what the
// hotspot is doing right now; entries underneath resume when it pops.
type ActionStack struct {
	entries []ActionEntry
}

// Push adds an entry on top.
func (s *ActionStack) Push(e ActionEntry) { s.entries = append(s.entries, e) }

// Pop removes and returns the top entry. ok is false on an empty stack.
func (s *ActionStack) Pop() (ActionEntry, bool) {
	n := len(s.entries)
	if n == 0 {
		return ActionEntry{}, false
	}
	e := s.entries[n-1]
	s.entries = s.entries[:n-1]
	return e, true
}

// Top returns a pointer to the top entry, or nil on an empty stack.
func (s *ActionStack) Top() *ActionEntry {
	if len(s.entries) == 0 {
		return nil
	}
	return &s.entries[len(s.entries)-1]
}

// TopKind returns the kind of the top entry; an empty stack reports ActionKindNone.
func (s *ActionStack) TopKind() ActionKind {
	if t := s.Top(); t != nil {
		return t.Kind
	}
	return ActionKindNone
}

// Replace swaps the kind of the top entry in place, keeping its schedule and room.
// On an empty stack it pushes a fresh entry.
func (s *ActionStack) Replace(kind ActionKind) {
	if t := s.Top(); t != nil {
		t.Kind = kind
		return
	}
	s.Push(ActionEntry{Kind: kind})
}

// Len returns the number of entries.
func (s *ActionStack) Len() int { return len(s.entries) }

// Empty reports whether the stack holds nothing.
func (s *ActionStack) Empty() bool { return len(s.entries) == 0 }

// Clear drops every entry.
func (s *ActionStack) Clear() { s.entries = s.entries[:0] }

// PopWalks removes walking entries from the top of the stack, leaving whatever
// the walk was serving.
func (s *ActionStack) PopWalks() {
	for {
		switch s.TopKind() {
		case ActionStartWalking, ActionProcessingPath, ActionWalking:
			s.Pop()
		default:
			return
		}
	}
}

// Kinds lists the entries from bottom to top.
func (s *ActionStack) Kinds() []ActionKind {
	out := make([]ActionKind, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Kind
	}
	return out
}

func (s *ActionStack) String() string {
	if len(s.entries) == 0 {
		return "[]"
	}
	parts := make([]string, len(s.entries))
	for i, e := range s.entries {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
