package game

import "testing"

func TestActionStack_PushPopTop(t *testing.T) {
	var s ActionStack
	if s.Top() != nil || s.TopKind() != ActionKindNone {
		t.Fatal("empty stack should have no top")
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("pop on empty stack should fail")
	}
	s.Push(ActionEntry{Kind: ActionDispatch, Room: 3})
	s.Push(ActionEntry{Kind: ActionStartWalking})
	if s.Len() != 2 || s.TopKind() != ActionStartWalking {
		t.Fatalf("unexpected stack %s", s.String())
	}
	e, ok := s.Pop()
	if !ok || e.Kind != ActionStartWalking {
		t.Fatalf("popped %v", e)
	}
	if s.Top().Room != 3 {
		t.Fatal("entry underneath should resume")
	}
}

func TestActionStack_ReplaceKeepsEntry(t *testing.T) {
	var s ActionStack
	s.Push(ActionEntry{Kind: ActionStartWalking, Room: 7})
	s.Replace(ActionProcessingPath)
	if s.Len() != 1 {
		t.Fatalf("replace should not grow the stack, len=%d", s.Len())
	}
	if top := s.Top(); top.Kind != ActionProcessingPath || top.Room != 7 {
		t.Fatalf("unexpected top %s", top)
	}

	var empty ActionStack
	empty.Replace(ActionWalking)
	if empty.Len() != 1 || empty.TopKind() != ActionWalking {
		t.Fatal("replace on empty stack should push")
	}
}

func TestActionStack_PopWalksStopsAtDispatch(t *testing.T) {
	var s ActionStack
	s.Push(ActionEntry{Kind: ActionExecScript, Script: 0x40})
	s.Push(ActionEntry{Kind: ActionDispatch})
	s.Push(ActionEntry{Kind: ActionStartWalking})
	s.Push(ActionEntry{Kind: ActionProcessingPath})
	s.Push(ActionEntry{Kind: ActionWalking})
	s.PopWalks()
	kinds := s.Kinds()
	if len(kinds) != 2 || kinds[0] != ActionExecScript || kinds[1] != ActionDispatch {
		t.Fatalf("unexpected stack after PopWalks: %s", s.String())
	}
	s.PopWalks()
	if s.Len() != 2 {
		t.Fatal("PopWalks without walks on top should do nothing")
	}
	s.Clear()
	if !s.Empty() || s.String() != "[]" {
		t.Fatal("expected empty stack after Clear")
	}
}

func TestActionEntry_String(t *testing.T) {
	e := ActionEntry{Kind: ActionExecScript, Room: 2, Script: 0x40}
	if got := e.String(); got != "exec_script@2(0x40)" {
		t.Fatalf("got %q", got)
	}
}
