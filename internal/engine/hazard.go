package engine

import "fmt"

// Hazard is the mechanical side of a global event or a static track
// threshold effect. A hazard opts into game hooks by implementing any of
// the capability interfaces below.
type Hazard interface {
	Name() string
}

// Activator runs once when the event becomes active.
type Activator interface {
	Activate(g *Game)
}

// OutputModifier adjusts water produced at a facility.
type OutputModifier interface {
	ModifyOutput(g *Game, f *Facility, output int) int
}

// CostKind names the payments a CostModifier can adjust.
type CostKind int

const (
	CostBuildFacility CostKind = iota
	CostBuildRoute
	CostProduce
)

// CostModifier adjusts the price of building or producing.
type CostModifier interface {
	ModifyCost(g *Game, kind CostKind, card Card, cost int) int
}

// BuildBlocker forbids building certain cards.
type BuildBlocker interface {
	BlocksBuild(g *Game, card Card) bool
}

// SalesBlocker forbids all sales while active.
type SalesBlocker interface {
	BlocksSales(g *Game) bool
}

// SaleFilter refuses individual sales.
type SaleFilter interface {
	RefuseSale(g *Game, segment *DemandSegment, b WaterBatch, route *Distribution) bool
}

// RevenueModifier adjusts the revenue of one accepted sale.
type RevenueModifier interface {
	ModifyRevenue(g *Game, route *Distribution, quantity, revenue int) int
}

// DemandModifier adjusts segments at the start of the crowd phase.
type DemandModifier interface {
	ModifyDemand(g *Game)
}

// Recoverer reports when an active event should lift.
type Recoverer interface {
	Recovered(g *Game, e GlobalEvent) bool
}

// HazardRegistry maps event names and threshold effect keys to hazards.
type HazardRegistry struct {
	hazards map[string]Hazard
}

func NewHazardRegistry() *HazardRegistry {
	return &HazardRegistry{hazards: make(map[string]Hazard)}
}

func (r *HazardRegistry) Register(h Hazard) {
	r.hazards[h.Name()] = h
}

func (r *HazardRegistry) Get(name string) (Hazard, error) {
	h, ok := r.hazards[name]
	if !ok {
		return nil, fmt.Errorf("no hazard registered for %q", name)
	}
	return h, nil
}

// activeHazards lists hazards of active threshold effects (track order),
// then of active events (activation order).
func (g *Game) activeHazards() []Hazard {
	if g.Hazards == nil {
		return nil
	}
	var out []Hazard
	for _, key := range g.ActiveEffects {
		if h, err := g.Hazards.Get(key); err == nil {
			out = append(out, h)
		}
	}
	for _, e := range g.EventsActive {
		if h, err := g.Hazards.Get(e.Name); err == nil {
			out = append(out, h)
		}
	}
	return out
}

func (g *Game) outputFor(f *Facility) int {
	out := f.BaseOutput
	for _, h := range g.activeHazards() {
		if m, ok := h.(OutputModifier); ok {
			out = m.ModifyOutput(g, f, out)
		}
	}
	return max(out, 0)
}

func (g *Game) costFor(kind CostKind, card Card, base int) int {
	cost := base
	for _, h := range g.activeHazards() {
		if m, ok := h.(CostModifier); ok {
			cost = m.ModifyCost(g, kind, card, cost)
		}
	}
	return max(cost, 0)
}

func (g *Game) buildBlocked(card Card) (string, bool) {
	for _, h := range g.activeHazards() {
		if b, ok := h.(BuildBlocker); ok && b.BlocksBuild(g, card) {
			return h.Name(), true
		}
	}
	return "", false
}

func (g *Game) salesBlocked() (string, bool) {
	for _, h := range g.activeHazards() {
		if b, ok := h.(SalesBlocker); ok && b.BlocksSales(g) {
			return h.Name(), true
		}
	}
	return "", false
}

func (g *Game) saleRefused(seg *DemandSegment, b WaterBatch, route *Distribution) (string, bool) {
	for _, h := range g.activeHazards() {
		if f, ok := h.(SaleFilter); ok && f.RefuseSale(g, seg, b, route) {
			return h.Name(), true
		}
	}
	return "", false
}

func (g *Game) revenueFor(route *Distribution, quantity, revenue int) int {
	for _, h := range g.activeHazards() {
		if m, ok := h.(RevenueModifier); ok {
			revenue = m.ModifyRevenue(g, route, quantity, revenue)
		}
	}
	return max(revenue, 0)
}
