package view

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Temptress/internal/game"
)

// Strings is the text of the message ids the engine shows.
type Strings map[uint16]string

// DefaultStrings returns the stock messages the action handlers use.
func DefaultStrings() Strings {
	return Strings{
		game.MsgNothingHappens: "Nothing happens.",
		game.MsgCantReach:      "I can't get there.",
		game.MsgAlreadyClosed:  "It's already closed.",
		game.MsgAlreadyOpen:    "It's already open.",
		game.MsgNotHere:        "That isn't here.",
		game.MsgLocked:         "It's locked.",
		game.MsgNotHolding:     "I'm not holding that.",
		game.MsgAlreadyHave:    "I already have it.",
		game.MsgCantGet:        "I can't take that.",
		game.MsgNoReply:        "There's no reply.",
		game.MsgCarryNothing:   "I'm not carrying anything.",
		game.MsgCarrying:       "I'm carrying something.",
		game.MsgNotLocked:      "It isn't locked.",
		game.MsgAlreadyLocked:  "It's already locked.",
		game.MsgCloseFirst:     "I'd have to close it first.",
		game.MsgCantDrink:      "I can't drink that.",
		game.MsgTalkToSelf:     "Talking to myself again.",
		game.MsgCatPurrs:       "The cat purrs.",
	}
}

// LoadStrings reads a YAML map of message id to text over the defaults.
func LoadStrings(path string) (Strings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("strings: %w", err)
	}
	s := DefaultStrings()
	var extra map[uint16]string
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&extra); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("strings: %s: %w", path, err)
	}
	for id, text := range extra {
		s[id] = text
	}
	return s, nil
}

// Text returns the text of msg, or its id when there is none.
func (s Strings) Text(msg uint16) string {
	if t, ok := s[msg]; ok {
		return t
	}
	return fmt.Sprintf("<%#x>", msg)
}

// Line is one shown message.
type Line struct {
	Tick    int
	Speaker game.HotspotID
	Text    string
}

// Transcript is a game.Dialogue that keeps the last lines shown for a
// backend to draw. It is safe for use from the input and tick goroutines.
type Transcript struct {
	mu      sync.Mutex
	strings Strings
	names   func(game.HotspotID) string
	tick    func() int
	lines   []Line
	keep    int
}

// NewTranscript keeps up to keep lines, naming speakers with names.
func NewTranscript(s Strings, keep int, names func(game.HotspotID) string) *Transcript {
	return &Transcript{strings: s, names: names, keep: max(keep, 1)}
}

// Clock sets the tick source lines are stamped with.
func (t *Transcript) Clock(tick func() int) { t.tick = tick }

func (t *Transcript) add(speaker game.HotspotID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l := Line{Speaker: speaker, Text: text}
	if t.tick != nil {
		l.Tick = t.tick()
	}
	t.lines = append(t.lines, l)
	if len(t.lines) > t.keep {
		t.lines = t.lines[len(t.lines)-t.keep:]
	}
}

func (t *Transcript) name(id game.HotspotID) string {
	if t.names != nil {
		if n := t.names(id); n != "" {
			return n
		}
	}
	return fmt.Sprintf("%d", id)
}

// ShowMessage implements game.Dialogue.
func (t *Transcript) ShowMessage(speaker game.HotspotID, msg uint16) {
	t.add(speaker, fmt.Sprintf("%s: %s", t.name(speaker), t.strings.Text(msg)))
}

// StartConversation implements game.Dialogue.
func (t *Transcript) StartConversation(speaker, listener game.HotspotID, msg uint16) {
	t.add(speaker, fmt.Sprintf("%s (to %s): %s", t.name(speaker), t.name(listener), t.strings.Text(msg)))
}

// Lines returns a copy of the kept lines, oldest first.
func (t *Transcript) Lines() []Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Line(nil), t.lines...)
}

// Last returns the newest line, if any.
func (t *Transcript) Last() (Line, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == 0 {
		return Line{}, false
	}
	return t.lines[len(t.lines)-1], true
}

// SortedIDs returns the message ids of s in order.
func (s Strings) SortedIDs() []uint16 {
	ids := make([]uint16, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
