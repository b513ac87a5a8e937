package engine

import "sort"

const (
	FacilitySlots = 3
	RouteSlots    = 2
)

// WaterBatch is water produced at one facility during one round.
type WaterBatch struct {
	Facility string        `json:"facility"`
	Tags     []string      `json:"tags,omitempty"`
	Impact   ImpactProfile `json:"impact"` // the facility's base profile
	Quantity int           `json:"quantity"`
	Round    int           `json:"round"`
}

// Player holds one baron's state.
type Player struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Coin       int                       `json:"coin"`
	Reputation int                       `json:"reputation"`
	Facilities [FacilitySlots]*Facility  `json:"facilities"`
	Routes     [RouteSlots]*Distribution `json:"routes"`
	Tech       []Upgrade                 `json:"tech,omitempty"`
	Impact     ImpactProfile             `json:"impact"`  // produced but not yet consolidated
	Emitted    ImpactProfile             `json:"emitted"` // everything ever consolidated
	Water      []WaterBatch              `json:"water,omitempty"`
	Futures    []FutureToken             `json:"futures,omitempty"`
	Options    []EventOption             `json:"options,omitempty"`
	RoutesUsed map[string]bool           `json:"routes_built,omitempty"`
	Blame      int                       `json:"blame"` // global events attributed to this player
	ExtraWhim  bool                      `json:"extra_whim"`
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Impact:     ImpactProfile{},
		Emitted:    ImpactProfile{},
		RoutesUsed: map[string]bool{},
	}
}

// WaterTotal is the number of water units held.
func (p *Player) WaterTotal() int {
	n := 0
	for _, b := range p.Water {
		n += b.Quantity
	}
	return n
}

// DistinctRoutes returns the names of every route type ever built, sorted.
func (p *Player) DistinctRoutes() []string {
	names := make([]string, 0, len(p.RoutesUsed))
	for n := range p.RoutesUsed {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FacilityCount counts occupied facility slots.
func (p *Player) FacilityCount() int {
	n := 0
	for _, f := range p.Facilities {
		if f != nil {
			n++
		}
	}
	return n
}

func (p *Player) facility(slot int) (*Facility, error) {
	if slot < 0 || slot >= FacilitySlots {
		return nil, ErrInvalidSlot
	}
	if p.Facilities[slot] == nil {
		return nil, ErrNoFacility
	}
	return p.Facilities[slot], nil
}

func (p *Player) route(slot int) (*Distribution, error) {
	if slot < 0 || slot >= RouteSlots {
		return nil, ErrInvalidSlot
	}
	if p.Routes[slot] == nil {
		return nil, ErrNoRoute
	}
	return p.Routes[slot], nil
}

func (p *Player) dropEmptyBatches() {
	kept := p.Water[:0]
	for _, b := range p.Water {
		if b.Quantity > 0 {
			kept = append(kept, b)
		}
	}
	p.Water = kept
}
