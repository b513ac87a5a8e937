package engine

import (
	"fmt"
	"strings"
)

// OpsPhase gives every player, in seat order, their action slots.
func (g *Game) OpsPhase(d DecisionProvider) {
	g.Phase = PhaseOps
	for i, p := range g.Players {
		g.Current = i
		g.Logf("%s's turn (Ops)", p.Name)
		for n := 1; n <= g.Rules().ActionsPerTurn; n++ {
			g.askAction(d, p, n)
		}
	}
	g.Current = 0
}

func (g *Game) actor(playerID string) (*Player, error) {
	if g.Phase != PhaseOps {
		return nil, ErrWrongPhase
	}
	p := g.GetPlayer(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if g.Players[g.Current].ID != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

func (g *Game) reject(p *Player, action string, err error) error {
	name := "unknown player"
	if p != nil {
		name = p.Name
	}
	g.Logf("%s failed to %s: %v", name, action, err)
	return err
}

func (g *Game) pay(p *Player, cost int) error {
	if p.Coin < cost {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughCoin, cost, p.Coin)
	}
	p.Coin -= cost
	return nil
}

// BuildFacility moves a facility card from the facility deck into an empty
// slot.
func (g *Game) BuildFacility(playerID, cardID string, slot int) error {
	const action = "build facility"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	if slot < 0 || slot >= FacilitySlots {
		return g.reject(p, action, ErrInvalidSlot)
	}
	if p.Facilities[slot] != nil {
		return g.reject(p, action, ErrSlotOccupied)
	}
	card, ok := g.FacilityDeck.Find(cardID)
	if !ok {
		return g.reject(p, action, ErrCardNotFound)
	}
	if by, blocked := g.buildBlocked(card); blocked {
		return g.reject(p, action, fmt.Errorf("%w: %s", ErrBuildBlocked, by))
	}
	limit := card.BuildLimit()
	if limit > 0 && g.Counters[card.Name] >= limit {
		return g.reject(p, action, fmt.Errorf("%w: %s (%d)", ErrLimitReached, card.Name, limit))
	}
	cost := g.costFor(CostBuildFacility, card, card.Cost)
	if err := g.pay(p, cost); err != nil {
		return g.reject(p, action, err)
	}

	g.FacilityDeck.Take(cardID)
	p.Facilities[slot] = &card
	if limit > 0 {
		g.Counters[card.Name]++
	}
	g.Logf("%s built %s in slot %d for %d", p.Name, card.Name, slot+1, cost)
	return nil
}

// ProduceWater runs the facility in slot: pays any production cost, adds
// a water batch and stores the production impact.
func (g *Game) ProduceWater(playerID string, slot int) error {
	const action = "produce water"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	f, err := p.facility(slot)
	if err != nil {
		return g.reject(p, action, err)
	}
	cost := g.costFor(CostProduce, *f, 0)
	if err := g.pay(p, cost); err != nil {
		return g.reject(p, action, err)
	}

	output := g.outputFor(f)
	if output > 0 {
		p.Water = append(p.Water, WaterBatch{
			Facility: f.Name,
			Tags:     append([]string(nil), f.Tags...),
			Impact:   f.Impact.Clone(),
			Quantity: output,
			Round:    g.Round,
		})
	}

	impact := g.productionImpact(p, f)
	for _, t := range AllTracks() {
		if impact[t] > 0 {
			p.Impact[t] += impact[t]
		}
	}
	for t, m := range f.Mitigation {
		if m > 0 && p.Impact[t] > 0 {
			p.Impact[t] = max(p.Impact[t]-m, 0)
			g.Logf("  %s mitigates %d %s", f.Name, m, t.Label())
		}
	}
	g.Logf("%s activated %s, producing %d water (cost %d, impact %s)", p.Name, f.Name, output, cost, formatImpact(impact))
	return nil
}

// productionImpact is the facility's profile after its own upgrades and the
// owner's tag-based technologies, never below zero.
func (g *Game) productionImpact(p *Player, f *Facility) ImpactProfile {
	impact := f.Impact.Clone()
	reduce := func(t Track, n int) {
		impact[t] = max(impact[t]-n, 0)
	}
	for _, u := range f.Upgrades {
		switch e := u.Effect.(type) {
		case FlowImpactReduction:
			reduce(e.Track, e.Amount)
		case Noop:
			g.Logf("  %s has no usable effect (%s)", u.Name, e.Reason)
		}
	}
	for _, u := range p.Tech {
		if e, ok := u.Effect.(TagImpactReduction); ok && f.Matches(e.Tag) && impact[e.Track] > 0 {
			reduce(e.Track, e.Amount)
		}
	}
	return impact
}

// BuildDistribution moves a route card into an empty route slot.
func (g *Game) BuildDistribution(playerID, cardID string, slot int) error {
	const action = "build distribution"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	if slot < 0 || slot >= RouteSlots {
		return g.reject(p, action, ErrInvalidSlot)
	}
	if p.Routes[slot] != nil {
		return g.reject(p, action, ErrSlotOccupied)
	}
	card, ok := g.DistributionDeck.Find(cardID)
	if !ok {
		return g.reject(p, action, ErrCardNotFound)
	}
	if by, blocked := g.buildBlocked(card); blocked {
		return g.reject(p, action, fmt.Errorf("%w: %s", ErrBuildBlocked, by))
	}
	cost := g.costFor(CostBuildRoute, card, card.Cost)
	if err := g.pay(p, cost); err != nil {
		return g.reject(p, action, err)
	}

	g.DistributionDeck.Take(cardID)
	card.Active = true
	p.Routes[slot] = &card
	p.RoutesUsed[card.Name] = true
	g.Logf("%s built %s in route slot %d for %d", p.Name, card.Name, slot+1, cost)
	return nil
}

// TargetKind says where an upgrade is attached.
type TargetKind int

const (
	TargetFacility TargetKind = iota
	TargetRoute
	TargetTech
)

// UpgradeTarget names a facility slot, a route slot, or the player's
// technology list.
type UpgradeTarget struct {
	Kind TargetKind `json:"kind"`
	Slot int        `json:"slot"`
}

// AddUpgrade attaches an upgrade card from the upgrade deck.
func (g *Game) AddUpgrade(playerID, cardID string, target UpgradeTarget) error {
	const action = "add upgrade"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	card, ok := g.UpgradeDeck.Find(cardID)
	if !ok {
		return g.reject(p, action, ErrCardNotFound)
	}
	want := map[UpgradeKind]TargetKind{
		UpgradeFacility: TargetFacility,
		UpgradeTag:      TargetFacility,
		UpgradeRoute:    TargetRoute,
		UpgradeTech:     TargetTech,
	}
	if k, ok := want[card.Kind]; ok && k != target.Kind {
		return g.reject(p, action, fmt.Errorf("%w: %s is a %s", ErrInvalidTarget, card.Name, card.Kind))
	}

	var attach func()
	var where string
	switch target.Kind {
	case TargetFacility:
		f, err := p.facility(target.Slot)
		if err != nil {
			return g.reject(p, action, err)
		}
		attach = func() { f.Upgrades = append(f.Upgrades, card) }
		where = f.Name
	case TargetRoute:
		r, err := p.route(target.Slot)
		if err != nil {
			return g.reject(p, action, err)
		}
		attach = func() { r.Upgrades = append(r.Upgrades, card) }
		where = r.Name
	case TargetTech:
		attach = func() { p.Tech = append(p.Tech, card) }
		where = "R&D"
	default:
		return g.reject(p, action, ErrInvalidTarget)
	}
	if err := g.pay(p, card.Cost); err != nil {
		return g.reject(p, action, err)
	}

	g.UpgradeDeck.Take(cardID)
	attach()
	g.Logf("%s added %s to %s for %d", p.Name, card.Name, where, card.Cost)
	return nil
}

// SpinMarketing nudges one segment's demand up or down for this round.
func (g *Game) SpinMarketing(playerID, segment string, up bool) error {
	const action = "spin marketing"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	seg := g.Segment(segment)
	if seg == nil {
		return g.reject(p, action, fmt.Errorf("%w: %s", ErrUnknownSegment, segment))
	}
	if err := g.pay(p, g.Rules().MarketingFee); err != nil {
		return g.reject(p, action, err)
	}
	delta := -1
	if up {
		delta = 1
	}
	seg.Demand = max(seg.Demand+delta, 0)
	g.Logf("%s spun marketing: %s demand now %d", p.Name, seg.Name, seg.Demand)
	return nil
}

// Pass records a deliberately unused action.
func (g *Game) Pass(playerID string) error {
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, "pass", err)
	}
	g.Logf("%s passed", p.Name)
	return nil
}

func formatImpact(ip ImpactProfile) string {
	var parts []string
	for _, t := range AllTracks() {
		if ip[t] != 0 {
			parts = append(parts, fmt.Sprintf("%s+%d", t.Label(), ip[t]))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
