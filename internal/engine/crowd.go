package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidSale = errors.New("invalid sale")

// CrowdPhase reveals whims, runs sales, applies fallout, consolidates
// impact and evaporates unsold water.
func (g *Game) CrowdPhase(d DecisionProvider) {
	g.Phase = PhaseCrowd
	g.RoundSales = make(map[string][]string)

	revealed := g.CrowdDeck.Draw(len(g.Players) + 1)
	if len(revealed) == 0 {
		g.Logf("Crowd Deck is empty; no whims revealed")
	}
	for _, w := range revealed {
		g.Logf("Revealed whim: %s", w.Name)
		g.ApplyEffect(w.Pre, w.Name)
	}
	for _, h := range g.activeHazards() {
		if m, ok := h.(DemandModifier); ok {
			m.ModifyDemand(g)
		}
	}

	if by, blocked := g.salesBlocked(); blocked {
		g.Logf("No sales this round: %s", by)
	} else {
		for i, p := range g.Players {
			if p.WaterTotal() == 0 {
				continue
			}
			g.Current = i
			for _, s := range g.askSales(d, p, g.Opportunities()) {
				if err := g.applySale(p, s); err != nil {
					g.Logf("%s's sale to %s rejected: %v", p.Name, s.Segment, err)
				}
			}
			p.dropEmptyBatches()
		}
		g.Current = 0
	}

	for _, w := range revealed {
		g.ApplyEffect(w.Post, w.Name)
		g.WhimDiscard.Return(w)
	}
	g.Consolidate()
	g.evaporate()
}

// Opportunities lists segments that still have demand.
func (g *Game) Opportunities() []DemandOpportunity {
	var out []DemandOpportunity
	for _, s := range g.Segments {
		if s.Demand <= 0 {
			continue
		}
		out = append(out, DemandOpportunity{
			Segment:    s.Name,
			Demand:     s.Demand,
			Price:      s.Price,
			Rule:       s.Rule,
			PremiumTag: s.PremiumTag,
			Premium:    s.Premium,
			MaxImpact:  s.MaxImpact.Clone(),
		})
	}
	return out
}

func (g *Game) applySale(p *Player, s Sale) error {
	seg := g.Segment(s.Segment)
	if seg == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSegment, s.Segment)
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidSale, s.Quantity)
	}
	if s.Quantity > seg.Demand {
		return fmt.Errorf("%w: %s has %d demand left", ErrInvalidSale, seg.Name, seg.Demand)
	}
	if s.Batch < 0 || s.Batch >= len(p.Water) {
		return fmt.Errorf("%w: no batch %d", ErrInvalidSale, s.Batch)
	}
	batch := &p.Water[s.Batch]
	if batch.Quantity < s.Quantity {
		return fmt.Errorf("%w: batch holds %d", ErrInvalidSale, batch.Quantity)
	}
	route, err := p.route(s.RouteSlot)
	if err != nil {
		return err
	}
	if !route.Active {
		return fmt.Errorf("%w: %s is inactive", ErrInvalidSale, route.Name)
	}
	if ok, why := seg.Accepts(*batch, route); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidSale, why)
	}
	if by, refused := g.saleRefused(seg, *batch, route); refused {
		return fmt.Errorf("%w: refused under %s", ErrInvalidSale, by)
	}

	limit := s.Quantity * seg.UnitPrice(batch.Tags)
	revenue := s.Revenue
	if revenue <= 0 || revenue > limit {
		revenue = limit
	}
	revenue = g.revenueFor(route, s.Quantity, revenue)

	p.Coin += revenue
	seg.Demand -= s.Quantity
	batch.Quantity -= s.Quantity
	g.Logf("%s sold %d water from %s to %s via %s for %d", p.Name, s.Quantity, batch.Facility, seg.Name, route.Name, revenue)

	for _, m := range route.Modifiers {
		n := (s.Quantity / max(m.PerUnits, 1)) * m.Amount
		if n > 0 {
			p.Impact[m.Track] += n
			g.Logf("  %s adds %d %s", route.Name, n, m.Track.Label())
		}
	}
	for _, u := range route.Upgrades {
		e, ok := u.Effect.(SaleImpactRemoval)
		if !ok {
			continue
		}
		if p.Impact[e.Track] >= e.Amount {
			p.Impact[e.Track] -= e.Amount
			g.Logf("  %s removes %d %s", u.Name, e.Amount, e.Track.Label())
		} else {
			g.Logf("  %s has no %s to remove", u.Name, e.Track.Label())
		}
	}
	if route.Special == SpecialExtraWhim && !p.ExtraWhim {
		p.ExtraWhim = true
		g.Logf("  %s earns %s an extra whim pick next round", route.Name, p.Name)
	}
	g.markSale(seg.Name, p.ID)
	return nil
}

// Consolidate moves every player's stored impact onto the global tracks,
// seat by seat and track by track. The step that carries a track over an
// event threshold is blamed for that event.
func (g *Game) Consolidate() {
	g.Logf("Consolidating player impacts to global tracks")
	for _, p := range g.Players {
		for _, t := range AllTracks() {
			n := p.Impact[t]
			if n <= 0 {
				continue
			}
			p.Impact[t] = 0
			p.Emitted[t] += n
			g.Logf("  %s adds %d to %s", p.Name, n, t)
			g.AddGlobalImpact(t, n, p)
		}
	}
}

func (g *Game) evaporate() {
	for _, p := range g.Players {
		if n := p.WaterTotal(); n > 0 {
			g.Logf("%s's %d unsold water evaporated", p.Name, n)
		}
		p.Water = nil
	}
}
