package game

import (
	"fmt"
	"sort"
	"strings"
)

// EventLogEntry is one recorded engine event.
type EventLogEntry struct {
	Tick     int
	Hotspot  HotspotID // 0 for world events
	Room     RoomID
	Category string  // path, walk, bump, room, action, script, door, anim
	Key      string  // specific event within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] 1000  r3  path     result          ok right:40
func (e EventLogEntry) String() string {
	who := "--"
	if e.Hotspot != 0 {
		who = fmt.Sprintf("%d", e.Hotspot)
	}
	return fmt.Sprintf("[T=%03d] %-5s r%-3d %-8s %-15s %s",
		e.Tick, who, e.Room, e.Category, e.Key, e.Value)
}

// EventLog collects structured events while the world ticks. It is
// unbounded and meant for tests, the headless report and debug dumps.
type EventLog struct {
	entries []EventLogEntry
	verbose bool
}

// NewEventLog creates an EventLog. If verbose is true, per-step walk entries
// are also recorded.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records a new entry.
func (el *EventLog) Add(tick int, hs HotspotID, room RoomID, category, key, value string, numVal float64) {
	el.entries = append(el.entries, EventLogEntry{
		Tick:     tick,
		Hotspot:  hs,
		Room:     room,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (el *EventLog) AddVerbose(tick int, hs HotspotID, room RoomID, category, key, value string, numVal float64) {
	if !el.verbose {
		return
	}
	el.Add(tick, hs, room, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (el *EventLog) Entries() []EventLogEntry {
	return el.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (el *EventLog) Filter(category, key string) []EventLogEntry {
	var out []EventLogEntry
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterHotspot returns entries for one hotspot.
func (el *EventLog) FilterHotspot(id HotspotID) []EventLogEntry {
	var out []EventLogEntry
	for _, e := range el.entries {
		if e.Hotspot == id {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (el *EventLog) FilterTickRange(fromTick, toTick int) []EventLogEntry {
	var out []EventLogEntry
	for _, e := range el.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (el *EventLog) CountCategory(category, key string) int {
	return len(el.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (el *EventLog) LastOf(category, key string) (EventLogEntry, bool) {
	entries := el.Filter(category, key)
	if len(entries) == 0 {
		return EventLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (el *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (el *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range el.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (el *EventLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range el.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable digest of the world at tick.
func (el *EventLog) Summary(tick int, hotspots []*Hotspot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	// Event counts per category.
	counts := map[string]int{}
	for _, e := range el.entries {
		counts[e.Category+"/"+e.Key]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-24s %d\n", k, counts[k])
	}

	// Where everyone is and what they are doing.
	for _, h := range hotspots {
		if !h.data.Character {
			continue
		}
		fmt.Fprintf(&sb, "%-5d %-10s r%d (%d,%d) %s\n",
			h.ID(), h.data.Name, h.Room(), h.X(), h.Y(), h.actions.String())
	}
	return sb.String()
}
