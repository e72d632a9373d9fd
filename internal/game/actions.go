package game

import (
	"fmt"
	"strings"
)

// Message ids shown by the action handlers themselves, outside any script.
const (
	MsgNothingHappens uint16 = 1
	MsgCantReach      uint16 = 2
	MsgAlreadyClosed  uint16 = 3
	MsgAlreadyOpen    uint16 = 4
	MsgNotHere        uint16 = 5
	MsgLocked         uint16 = 6
	MsgNotHolding     uint16 = 7
	MsgAlreadyHave    uint16 = 8
	MsgCantGet        uint16 = 9
	MsgNoReply        uint16 = 10
	MsgCarryNothing   uint16 = 11
	MsgCarrying       uint16 = 12
	MsgNotLocked      uint16 = 13
	MsgAlreadyLocked  uint16 = 14
	MsgCloseFirst     uint16 = 15
	MsgCantDrink      uint16 = 16
	MsgTalkToSelf     uint16 = 17
)

type precheckResult uint8

const (
	precheckExecute precheckResult = iota
	precheckWait
	precheckNotInRoom
	precheckExcess
)

func (r precheckResult) String() string {
	switch r {
	case precheckExecute:
		return "execute"
	case precheckWait:
		return "wait"
	case precheckNotInRoom:
		return "not_in_room"
	default:
		return "excess"
	}
}

// actionHandler runs one schedule entry once the actor is in place and facing
// its target. It must call endAction, or leave the entry for the next tick.
type actionHandler func(w *World, h *Hotspot, e ScheduleEntry)

func handlerFor(a Action) actionHandler {
	switch a {
	case ActionGet:
		return (*World).doGet
	case ActionPush, ActionPull, ActionOperate, ActionLookThrough, ActionAsk, ActionBribe, ActionUse:
		return (*World).doGeneric
	case ActionOpen:
		return (*World).doOpen
	case ActionClose:
		return (*World).doClose
	case ActionLock:
		return (*World).doLock
	case ActionUnlock:
		return (*World).doUnlock
	case ActionGive:
		return (*World).doGive
	case ActionTalkTo:
		return (*World).doTalkTo
	case ActionTell:
		return (*World).doTell
	case ActionLook:
		return (*World).doLook
	case ActionLookAt, ActionExamine:
		return (*World).doLookAt
	case ActionDrink:
		return (*World).doDrink
	case ActionStatus:
		return (*World).doStatus
	case ActionGoTo:
		return (*World).doGoTo
	}
	return nil
}

// dispatchTick advances the dispatch entry on top of h's stack by one step.
func (w *World) dispatchTick(h *Hotspot) {
	top := h.actions.Top()
	if !top.Schedule.Valid() {
		h.actions.Pop()
		return
	}
	e := top.Schedule.Entry()

	if e.Action.Meta() {
		w.doMeta(h, e)
		return
	}
	if top.Room != 0 && top.Room != h.Room() {
		w.travelTowards(h, top.Room)
		return
	}

	handler := handlerFor(e.Action)
	if handler == nil {
		panic(fmt.Sprintf("hotspot %d: action %s has no handler", h.ID(), e.Action))
	}

	if top.stage == stagePrecheck {
		if msg, rejected := w.quickReject(h, e); rejected {
			w.event(h, "action", "rejected", e.String(), float64(msg))
			w.showMessage(h, msg)
			w.endAction(h)
			return
		}
		switch res := w.precheck(h, top, e); res {
		case precheckWait:
			return
		case precheckNotInRoom:
			w.event(h, "action", "not_in_room", e.String(), 0)
			if h.ID() == PlayerID {
				w.showMessage(h, MsgNotHere)
			}
			w.endAction(h)
			return
		case precheckExcess:
			w.event(h, "action", "excess", e.String(), float64(top.retries))
			if h.ID() == PlayerID {
				w.showMessage(h, MsgCantReach)
			} else {
				w.talkToSelf(h)
			}
			w.endAction(h)
			return
		}
		if t := w.data[e.Target]; t != nil && e.Action.needsTarget() {
			h.faceTowards(t.X+t.Width/2, t.Y+t.Height-1)
		}
		top.stage = stageFaced
		return
	}
	handler(w, h, e)
}

// quickReject turns down actions whose outcome is already known without
// walking over: doors already in the requested state and missing items.
func (w *World) quickReject(h *Hotspot, e ScheduleEntry) (uint16, bool) {
	if j := w.joinFor(e.Target); j != nil {
		switch {
		case e.Action == ActionOpen && !j.Blocked:
			return MsgAlreadyOpen, true
		case e.Action == ActionClose && j.Blocked:
			return MsgAlreadyClosed, true
		case e.Action == ActionUnlock && !j.Locked:
			return MsgNotLocked, true
		case e.Action == ActionLock && j.Locked:
			return MsgAlreadyLocked, true
		}
	}
	switch e.Action {
	case ActionGive, ActionUse, ActionBribe:
		if !w.holds(h, e.Param) || (e.Action == ActionGive && e.Param == 0) {
			return MsgNotHolding, true
		}
	case ActionGet:
		if t := w.data[e.Target]; t != nil && t.HeldBy == h.ID() && t.Room == 0 {
			return MsgAlreadyHave, true
		}
	}
	return 0, false
}

// precheck gets the actor in range of the entry's target.
func (w *World) precheck(h *Hotspot, top *ActionEntry, e ScheduleEntry) precheckResult {
	if !e.Action.needsTarget() {
		return precheckExecute
	}
	t := w.target(h, e)
	if t.HeldBy == h.ID() && t.Room == 0 {
		return precheckExecute
	}
	if t.Room != h.Room() {
		return precheckNotInRoom
	}
	if !walksTo(e.Action) {
		return precheckExecute
	}
	stand := w.standPoint(h, t)
	a := h.Anchor()
	if abs(a.X-stand.X) <= w.cfg.WalkArriveTolerance && abs(a.Y-stand.Y) <= w.cfg.WalkArriveTolerance {
		return precheckExecute
	}
	// A walk towards t that finished without giving up got as close as the
	// room allows.
	if top.retries > 0 && h.destHotspot == t.ID && !h.blocked {
		return precheckExecute
	}
	top.retries++
	if top.retries > w.cfg.ActionRetryLimit {
		return precheckExcess
	}
	w.startWalk(h, stand, t.ID)
	return precheckWait
}

// walksTo reports whether the actor has to walk up to the target first.
func walksTo(a Action) bool {
	switch a {
	case ActionLookAt, ActionExamine, ActionLookThrough:
		return false
	}
	return true
}

// target resolves the entry's target record. A missing target is corrupt data.
func (w *World) target(h *Hotspot, e ScheduleEntry) *HotspotData {
	t, ok := w.data[e.Target]
	if !ok {
		panic(fmt.Sprintf("hotspot %d: %s targets unknown hotspot %d", h.ID(), e.Action, e.Target))
	}
	return t
}

// standPoint is the anchor an actor walks to before acting on t: its authored
// walk position, else just below its feet.
func (w *World) standPoint(h *Hotspot, t *HotspotData) Point {
	if t.WalkX != 0 || t.WalkY != 0 {
		return Point{X: t.WalkX, Y: t.WalkY}
	}
	x := t.X + (t.Width-h.Width())/2
	y := t.Y + t.Height - 1 - t.YCorrection
	if t.Character {
		// Stand beside a character, not on them.
		x = t.X - h.Width() - 2
		if x < 0 {
			x = t.X + t.Width + 2
		}
	} else {
		y += cellSize
	}
	return Point{X: clamp(x, 0, ScreenWidth-h.Width()), Y: clamp(y, 0, ScreenHeight-1)}
}

// endAction finishes the current dispatch entry: a schedule moves on to its
// next entry, a finished schedule pops.
func (w *World) endAction(h *Hotspot) {
	top := h.actions.Top()
	if top == nil || top.Kind != ActionDispatch {
		return
	}
	if next, ok := top.Schedule.Next(); ok {
		top.Schedule = next
		top.stage, top.retries = stagePrecheck, 0
		return
	}
	h.actions.Pop()
	w.event(h, "action", "end", "", 0)
}

// runSequence interprets an action-table value for e. It reports done when
// the action has finished and ok when it succeeded.
func (w *World) runSequence(h *Hotspot, e ScheduleEntry, seq uint16) (done, ok bool) {
	top := h.actions.Top()
	switch {
	case seq == 0:
		return true, true
	case seq >= ScriptMessageMin:
		w.showMessage(h, seq)
		return true, false
	}
	r := w.scripts.Execute(w, ScriptCall{Offset: seq, Actor: h.ID(), Target: e.Target, Action: e.Action, Tick: w.tick})
	w.event(h, "script", "result", fmt.Sprintf("%s %#x -> %d", e.Action, seq, r), float64(r))
	switch {
	case r == ScriptDone:
		return true, true
	case r == ScriptContinue:
		top.stage = stageRunning
		return false, false
	case r >= ScriptMessageMin:
		w.showMessage(h, r)
		return true, false
	}
	// Anything else asks for another go from the top.
	top.stage = stagePrecheck
	top.retries++
	if top.retries > w.cfg.ActionRetryLimit {
		return true, false
	}
	return false, false
}

// sequenceFor returns the target's action-table value for e.
func (w *World) sequenceFor(h *Hotspot, e ScheduleEntry) uint16 {
	if e.Target == 0 {
		return 0
	}
	return w.target(h, e).Actions[e.Action]
}

// holds reports whether h carries the item in e.Param (zero needs nothing).
func (w *World) holds(h *Hotspot, item int) bool {
	if item == 0 {
		return true
	}
	d, ok := w.data[HotspotID(item)]
	return ok && d.HeldBy == h.ID() && d.Room == 0
}

// --- Handlers ---

func (w *World) doGeneric(h *Hotspot, e ScheduleEntry) {
	if !w.holds(h, e.Param) {
		w.showMessage(h, MsgNotHolding)
		w.endAction(h)
		return
	}
	seq := w.sequenceFor(h, e)
	if seq == 0 {
		w.showMessage(h, MsgNothingHappens)
		w.endAction(h)
		return
	}
	if done, _ := w.runSequence(h, e, seq); done {
		w.endAction(h)
	}
}

func (w *World) doGet(h *Hotspot, e ScheduleEntry) {
	t := w.target(h, e)
	switch {
	case t.HeldBy == h.ID() && t.Room == 0:
		w.showMessage(h, MsgAlreadyHave)
		w.endAction(h)
		return
	case !t.Item:
		seq := t.Actions[ActionGet]
		if seq == 0 {
			w.showMessage(h, MsgCantGet)
			w.endAction(h)
			return
		}
		if done, _ := w.runSequence(h, e, seq); done {
			w.endAction(h)
		}
		return
	}
	done, ok := w.runSequence(h, e, t.Actions[ActionGet])
	if !done {
		return
	}
	if ok {
		w.take(h, t)
	}
	w.endAction(h)
}

// take moves item t into h's possession.
func (w *World) take(h *Hotspot, t *HotspotData) {
	if a := w.registry.ByID(t.ID); a != nil {
		w.unload(a)
	}
	t.Room = 0
	t.HeldBy = h.ID()
	w.event(h, "item", "get", t.Name, float64(t.ID))
}

func (w *World) doGive(h *Hotspot, e ScheduleEntry) {
	item := HotspotID(e.Param)
	if item == 0 || !w.holds(h, e.Param) {
		w.showMessage(h, MsgNotHolding)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, w.sequenceFor(h, e))
	if !done {
		return
	}
	if ok {
		w.data[item].HeldBy = e.Target
		w.event(h, "item", "give", fmt.Sprintf("%d to %d", item, e.Target), float64(item))
	}
	w.endAction(h)
}

func (w *World) doDrink(h *Hotspot, e ScheduleEntry) {
	t := w.target(h, e)
	if !t.Drinkable {
		w.showMessage(h, MsgCantDrink)
		w.endAction(h)
		return
	}
	if t.HeldBy != h.ID() {
		w.showMessage(h, MsgNotHolding)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, t.Actions[ActionDrink])
	if !done {
		return
	}
	if ok {
		t.HeldBy = 0
		w.event(h, "item", "drink", t.Name, float64(t.ID))
	}
	w.endAction(h)
}

func (w *World) doStatus(h *Hotspot, _ ScheduleEntry) {
	items := w.Holdings(h.ID())
	if len(items) == 0 {
		w.showMessage(h, MsgCarryNothing)
		w.endAction(h)
		return
	}
	names := make([]string, len(items))
	for i, id := range items {
		names[i] = w.data[id].Name
	}
	w.showMessage(h, MsgCarrying)
	w.event(h, "item", "status", strings.Join(names, ", "), float64(len(items)))
	w.endAction(h)
}

func (w *World) doOpen(h *Hotspot, e ScheduleEntry) {
	j := w.joinFor(e.Target)
	if j == nil {
		w.doGeneric(h, e)
		return
	}
	if !j.Blocked {
		w.showMessage(h, MsgAlreadyOpen)
		w.endAction(h)
		return
	}
	if j.Locked {
		w.showMessage(h, MsgLocked)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, w.sequenceFor(h, e))
	if !done {
		return
	}
	if ok {
		j.Blocked = false
		w.event(h, "door", "opening", fmt.Sprintf("%d", e.Target), 0)
	}
	w.endAction(h)
}

func (w *World) doClose(h *Hotspot, e ScheduleEntry) {
	j := w.joinFor(e.Target)
	if j == nil {
		w.doGeneric(h, e)
		return
	}
	if j.Blocked {
		w.showMessage(h, MsgAlreadyClosed)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, w.sequenceFor(h, e))
	if !done {
		return
	}
	if ok {
		j.Blocked = true
		w.event(h, "door", "closing", fmt.Sprintf("%d", e.Target), 0)
	}
	w.endAction(h)
}

func (w *World) doLock(h *Hotspot, e ScheduleEntry) {
	j := w.joinFor(e.Target)
	if j == nil {
		w.doGeneric(h, e)
		return
	}
	switch {
	case j.Locked:
		w.showMessage(h, MsgAlreadyLocked)
		w.endAction(h)
		return
	case !j.Blocked:
		w.showMessage(h, MsgCloseFirst)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, w.sequenceFor(h, e))
	if !done {
		return
	}
	if ok {
		j.Locked = true
		w.event(h, "door", "locked", fmt.Sprintf("%d", e.Target), 0)
	}
	w.endAction(h)
}

func (w *World) doUnlock(h *Hotspot, e ScheduleEntry) {
	j := w.joinFor(e.Target)
	if j == nil {
		w.doGeneric(h, e)
		return
	}
	if !j.Locked {
		w.showMessage(h, MsgNotLocked)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, w.sequenceFor(h, e))
	if !done {
		return
	}
	if ok {
		j.Locked = false
		w.event(h, "door", "unlocked", fmt.Sprintf("%d", e.Target), 0)
	}
	w.endAction(h)
}

func (w *World) doTalkTo(h *Hotspot, e ScheduleEntry) {
	t := w.target(h, e)
	if !t.Character || t.ID == h.ID() {
		w.talkToSelf(h)
		w.endAction(h)
		return
	}
	done, ok := w.runSequence(h, e, t.Actions[ActionTalkTo])
	if !done {
		return
	}
	if ok {
		w.dialogue.StartConversation(h.ID(), t.ID, t.TalkMessage)
		w.event(h, "action", "talk", fmt.Sprintf("to %d msg %d", t.ID, t.TalkMessage), float64(t.TalkMessage))
		w.speak(h)
		if listener := w.registry.ByID(t.ID); listener != nil {
			listener.pauseCtr = max(listener.pauseCtr, w.cfg.VoiceBubbleTicks)
			listener.faceTowards(h.X()+h.Width()/2, h.feetY())
		}
	}
	w.endAction(h)
}

func (w *World) doTell(h *Hotspot, e ScheduleEntry) {
	t := w.target(h, e)
	listener := w.registry.ByID(t.ID)
	if !t.Character || listener == nil {
		w.showMessage(h, MsgNoReply)
		w.endAction(h)
		return
	}
	set, ok := w.res.Schedules[ScheduleID(e.Param)]
	if !ok {
		panic(fmt.Sprintf("hotspot %d: tell %d to run unknown schedule %d", h.ID(), t.ID, e.Param))
	}
	done, ok := w.runSequence(h, e, t.Actions[ActionTell])
	if !done {
		return
	}
	if ok {
		listener.actions.Push(ActionEntry{Kind: ActionDispatch, Room: listener.Room(), Schedule: ScheduleRef{Set: set}})
		w.speak(h)
		w.event(h, "action", "tell", fmt.Sprintf("%d runs %d", t.ID, set.ID), float64(set.ID))
	}
	w.endAction(h)
}

func (w *World) doLook(h *Hotspot, _ ScheduleEntry) {
	if rd, ok := w.res.Rooms[h.Room()]; ok && rd.Description != 0 {
		w.showMessage(h, rd.Description)
	} else {
		w.showMessage(h, MsgNothingHappens)
	}
	w.endAction(h)
}

func (w *World) doLookAt(h *Hotspot, e ScheduleEntry) {
	t := w.target(h, e)
	if seq := t.Actions[e.Action]; seq != 0 {
		if done, _ := w.runSequence(h, e, seq); done {
			w.endAction(h)
		}
		return
	}
	msg := t.Description
	if e.Action == ActionExamine && t.Examine != 0 {
		msg = t.Examine
	}
	if msg == 0 {
		msg = MsgNothingHappens
	}
	w.showMessage(h, msg)
	w.endAction(h)
}

// doGoTo has nothing left to do once the precheck has walked the actor over.
func (w *World) doGoTo(h *Hotspot, _ ScheduleEntry) {
	w.endAction(h)
}

// --- NPC meta-actions ---

func (w *World) doMeta(h *Hotspot, e ScheduleEntry) {
	top := h.actions.Top()
	switch e.Action {
	case NPCSetRoomAndOffset:
		top.Room = RoomID(e.Param)
		h.blockedLabel = e.Goto
		w.event(h, "schedule", "set_room", fmt.Sprintf("%d offset=%s", e.Param, e.Goto), float64(e.Param))
		w.endAction(h)
	case NPCExecScript:
		w.endAction(h)
		h.actions.Push(ActionEntry{Kind: ActionExecScript, Room: h.Room(), Script: uint16(e.Param)})
	case NPCSetRandomDest:
		w.endAction(h)
		w.setRandomDest(h)
	case NPCPause:
		w.endAction(h)
		h.pauseCtr = e.Param
	case NPCDispatch:
		set, ok := w.res.Schedules[ScheduleID(e.Param)]
		if !ok {
			panic(fmt.Sprintf("hotspot %d: dispatch of unknown schedule %d", h.ID(), e.Param))
		}
		w.endAction(h)
		h.actions.Push(ActionEntry{Kind: ActionDispatch, Room: h.Room(), Schedule: ScheduleRef{Set: set}})
		w.event(h, "schedule", "dispatch", fmt.Sprintf("%d", set.ID), float64(set.ID))
	case NPCJump:
		idx := top.Schedule.Set.Find(e.Goto)
		if idx < 0 {
			panic(fmt.Sprintf("hotspot %d: jump to missing label %q", h.ID(), e.Goto))
		}
		top.Schedule.Index = idx
		top.stage, top.retries = stagePrecheck, 0
	default:
		panic(fmt.Sprintf("hotspot %d: meta action %s has no handler", h.ID(), e.Action))
	}
}

// --- Speech ---

const (
	bubbleAnim  AnimID = 0xfff0
	puzzledAnim AnimID = 0xfff1
)

// speak holds h still for a line of dialogue and shows a bubble above it.
func (w *World) speak(h *Hotspot) {
	h.voiceCtr = w.cfg.VoiceBubbleTicks
	w.spawnMarker(h, TickVoiceBubble, bubbleAnim, w.cfg.VoiceBubbleTicks)
}

// talkToSelf is the fallback when an action cannot go ahead.
func (w *World) talkToSelf(h *Hotspot) {
	w.dialogue.StartConversation(h.ID(), h.ID(), MsgTalkToSelf)
	w.event(h, "action", "talk_to_self", "", 0)
	w.speak(h)
}

// spawnPuzzled shows a question mark over h for half a bubble's lifetime.
func (w *World) spawnPuzzled(h *Hotspot) {
	w.spawnMarker(h, TickPuzzled, puzzledAnim, max(w.cfg.VoiceBubbleTicks/2, 1))
}

func (w *World) spawnMarker(h *Hotspot, proc TickProc, anim AnimID, life int) {
	if h.Room() != w.room {
		return // nobody to see it
	}
	w.markerAnims()
	a := w.res.Animations[anim]
	s := a.Frames[0]
	m := w.Spawn(HotspotData{
		Name:     proc.String(),
		Room:     h.Room(),
		X:        h.X() + (h.Width()-s.W)/2,
		Y:        max(h.Y()-s.H-2, 0),
		Width:    s.W,
		Height:   s.H,
		Layer:    LayerFront,
		TickProc: proc,
		Anim:     anim,
		Owner:    h.ID(),
	})
	m.lifetime = life
}

// markerAnims installs the built-in bubble and question mark frames.
func (w *World) markerAnims() {
	if _, ok := w.res.Animations[bubbleAnim]; !ok {
		s := NewSurface(16, 8)
		s.Fill(Rect{X: 1, W: 14, H: 7}, 15)
		s.Fill(Rect{X: 7, Y: 7, W: 2, H: 1}, 15)
		w.res.Animations[bubbleAnim] = &Animation{ID: bubbleAnim, Frames: []*Surface{s}}
	}
	if _, ok := w.res.Animations[puzzledAnim]; !ok {
		s := NewSurface(8, 8)
		s.Fill(Rect{X: 2, W: 4, H: 1}, 14)
		s.Fill(Rect{X: 5, Y: 1, W: 1, H: 2}, 14)
		s.Fill(Rect{X: 3, Y: 3, W: 2, H: 1}, 14)
		s.Fill(Rect{X: 3, Y: 4, W: 1, H: 2}, 14)
		s.Fill(Rect{X: 3, Y: 7, W: 1, H: 1}, 14)
		w.res.Animations[puzzledAnim] = &Animation{ID: puzzledAnim, Frames: []*Surface{s}}
	}
}
