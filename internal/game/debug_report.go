package game

import (
	"fmt"
	"strings"
)

// HotspotDebugReport dumps the state of hotspot id together with its events
// over the last lastTicks ticks.
func (w *World) HotspotDebugReport(id HotspotID, lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := w.tick
	fromTick := max(toTick-lastTicks+1, 0)

	var b strings.Builder
	fmt.Fprintf(&b, "--- Temptress debug report ---\n")
	fmt.Fprintf(&b, "tick_range=[%d..%d] ticks=%d room=%d active=%d\n",
		fromTick, toTick, toTick-fromTick+1, w.room, w.registry.Len())

	d := w.data[id]
	if d == nil {
		fmt.Fprintf(&b, "hotspot %d: no record\n", id)
		return b.String()
	}
	h := w.registry.ByID(id)
	fmt.Fprintf(&b, "hotspot=%d name=%q room=%d tick=%s active=%t\n\n", d.ID, d.Name, d.Room, d.TickProc, h != nil)

	if h == nil {
		if d.HeldBy != 0 {
			fmt.Fprintf(&b, "held by %d\n", d.HeldBy)
		}
	} else {
		writeHotspotState(&b, w, h)
	}

	events := w.events.FilterHotspot(id)
	b.WriteString("events:\n")
	n := 0
	for _, e := range events {
		if e.Tick < fromTick || e.Tick > toTick {
			continue
		}
		b.WriteString("  ")
		b.WriteString(e.String())
		b.WriteByte('\n')
		n++
	}
	if n == 0 {
		b.WriteString("  (none in range)\n")
	}
	stats := eventStats(events)
	fmt.Fprintf(&b, "totals: paths=%d walks=%d retries=%d blocked=%d bumps=%d rooms=%d messages=%d\n",
		stats.paths, stats.walks, stats.retries, stats.blocked, stats.bumps, stats.rooms, stats.messages)
	return b.String()
}

func writeHotspotState(b *strings.Builder, w *World, h *Hotspot) {
	a := h.Anchor()
	fmt.Fprintf(b, "pos=(%d,%d) size=%dx%d anchor=(%d,%d) facing=%s frame=%d layer=%s\n",
		h.X(), h.Y(), h.Width(), h.Height(), a.X, a.Y, h.Facing(), h.Frame(), h.Layer())
	frame, pause, voice := h.Countdowns()
	fmt.Fprintf(b, "countdowns: frame=%d pause=%d voice=%d lifetime=%d\n", frame, pause, voice, h.lifetime)

	fp := h.FootprintCells()
	fmt.Fprintf(b, "footprint: cells (%d,%d) w=%d covered=%t avoid=%d\n", fp.X, fp.Y, fp.W, h.covered, h.avoid)

	x, y, dest := h.Destination()
	fmt.Fprintf(b, "walk: dest=(%d,%d) hotspot=%d remaining=%s steps=%d blocked=%t tries=%d label=%q\n",
		x, y, dest, FormatSegments(h.Remaining()), h.walk.remainingSteps(), h.blocked, h.blockedTries, h.blockedLabel)

	pf := h.path
	tcx, tcy := pf.Target()
	fmt.Fprintf(b, "path: in_progress=%t result=%s calls=%d visited=%d target=(%d,%d)\n",
		pf.InProgress(), pf.Result(), pf.Calls(), pf.Visited(), tcx, tcy)

	b.WriteString("stack:\n")
	if h.actions.Empty() {
		b.WriteString("  (empty)\n")
	}
	for i := h.actions.Len() - 1; i >= 0; i-- {
		fmt.Fprintf(b, "  %02d) %s\n", i, h.actions.entries[i])
	}
	if held := w.Holdings(h.ID()); len(held) > 0 {
		names := make([]string, len(held))
		for i, id := range held {
			names[i] = w.data[id].Name
		}
		fmt.Fprintf(b, "holding: %s\n", strings.Join(names, ", "))
	}
	b.WriteByte('\n')
}

type hotspotEventStats struct {
	paths, walks, retries, blocked, bumps, rooms, messages int
}

func eventStats(events []EventLogEntry) hotspotEventStats {
	var s hotspotEventStats
	for _, e := range events {
		switch e.Category + "/" + e.Key {
		case "path/result":
			s.paths++
		case "walk/start":
			s.walks++
		case "walk/retry":
			s.retries++
		case "walk/blocked":
			s.blocked++
		case "bump/pause", "bump/redirect", "bump/stuck":
			s.bumps++
		case "room/change":
			s.rooms++
		case "action/message":
			s.messages++
		}
	}
	return s
}
