package view

import (
	"fmt"

	"github.com/Garsondee/Temptress/internal/game"
)

// DefaultVerbs is the verb cycle offered to the pointer.
var DefaultVerbs = []game.Action{
	game.ActionLookAt,
	game.ActionGet,
	game.ActionOpen,
	game.ActionClose,
	game.ActionOperate,
	game.ActionTalkTo,
	game.ActionDrink,
	game.ActionStatus,
}

// Pointer turns clicks on the screen into player requests: a click on empty
// floor walks there; a click on a hotspot applies the current verb to it.
type Pointer struct {
	Verbs []game.Action
	verb  int
}

// NewPointer returns a pointer over DefaultVerbs.
func NewPointer() *Pointer { return &Pointer{Verbs: DefaultVerbs} }

// Verb returns the current verb.
func (p *Pointer) Verb() game.Action {
	if len(p.Verbs) == 0 {
		return game.ActionLookAt
	}
	return p.Verbs[p.verb%len(p.Verbs)]
}

// NextVerb advances the verb cycle.
func (p *Pointer) NextVerb() {
	if len(p.Verbs) > 0 {
		p.verb = (p.verb + 1) % len(p.Verbs)
	}
}

// Hover names what a click at (x,y) would do.
func (p *Pointer) Hover(w *game.World, x, y int) string {
	if d := w.HotspotAt(x, y); d != nil {
		return fmt.Sprintf("%s %s", p.Verb(), d.Name)
	}
	return "walk"
}

// Click issues the request for a click at screen point (x,y) and describes it.
func (p *Pointer) Click(w *game.World, x, y int) (string, error) {
	player := w.Hotspot(game.PlayerID)
	if player == nil {
		return "", fmt.Errorf("click: no player")
	}
	if p.Verb() == game.ActionStatus {
		return "status", w.DispatchAction(game.PlayerID, game.ActionStatus, 0)
	}
	if d := w.HotspotAt(x, y); d != nil {
		verb := p.Verb()
		return fmt.Sprintf("%s %s", verb, d.Name), w.DispatchAction(game.PlayerID, verb, d.ID)
	}
	// The click point is where the middle of the feet ends up.
	fx := max(x-player.Width()/2, 0)
	return fmt.Sprintf("walk to (%d,%d)", fx, y), w.RequestWalk(game.PlayerID, fx, y, 0)
}
