package game

import "fmt"

// Handle refers to an active hotspot. A handle taken before the hotspot was
// deactivated stays invalid even if the slot is reused.
type Handle struct {
	slot int
	gen  uint32
}

// Valid reports whether the handle was ever issued.
func (h Handle) Valid() bool { return h.gen != 0 }

func (h Handle) String() string { return fmt.Sprintf("%d/%d", h.slot, h.gen) }

type registrySlot struct {
	gen uint32
	hs  *Hotspot
}

// Registry is the arena of active hotspots. Iteration follows activation order.
type Registry struct {
	slots []registrySlot
	free  []int
	order []int // slots in activation order
	byID  map[HotspotID]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[HotspotID]int)}
}

// Activate stores hs and returns its handle. Activating an id twice is an invariant violation.
func (r *Registry) Activate(hs *Hotspot) Handle {
	if _, ok := r.byID[hs.ID()]; ok {
		panic(fmt.Sprintf("registry: hotspot %d activated twice", hs.ID()))
	}
	var slot int
	if n := len(r.free); n > 0 {
		slot = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		slot = len(r.slots)
		r.slots = append(r.slots, registrySlot{})
	}
	s := &r.slots[slot]
	s.gen++
	s.hs = hs
	r.byID[hs.ID()] = slot
	r.order = append(r.order, slot)
	h := Handle{slot: slot, gen: s.gen}
	hs.handle = h
	return h
}

// Deactivate removes the hotspot behind h. It returns ErrStaleHandle when h is out of date.
func (r *Registry) Deactivate(h Handle) (*Hotspot, error) {
	hs, err := r.Get(h)
	if err != nil {
		return nil, err
	}
	s := &r.slots[h.slot]
	s.hs = nil
	s.gen++ // invalidate outstanding handles immediately
	delete(r.byID, hs.ID())
	for i, slot := range r.order {
		if slot == h.slot {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.free = append(r.free, h.slot)
	hs.handle = Handle{}
	return hs, nil
}

// Get resolves a handle.
func (r *Registry) Get(h Handle) (*Hotspot, error) {
	if h.slot < 0 || h.slot >= len(r.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := r.slots[h.slot]
	if s.hs == nil || s.gen != h.gen {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s.hs, nil
}

// ByID returns the active hotspot with the given id, or nil.
func (r *Registry) ByID(id HotspotID) *Hotspot {
	slot, ok := r.byID[id]
	if !ok {
		return nil
	}
	return r.slots[slot].hs
}

// All returns the active hotspots in activation order. The slice is a snapshot.
func (r *Registry) All() []*Hotspot {
	out := make([]*Hotspot, 0, len(r.order))
	for _, slot := range r.order {
		out = append(out, r.slots[slot].hs)
	}
	return out
}

// Len returns the number of active hotspots.
func (r *Registry) Len() int { return len(r.order) }
