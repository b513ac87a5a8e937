package engine

import "log/slog"

// Sale is one proposed sale returned from SalesChoice.
type Sale struct {
	Segment   string `json:"segment"`
	Quantity  int    `json:"quantity"`
	Revenue   int    `json:"revenue"` // <= 0 lets the engine price the sale
	RouteSlot int    `json:"route_slot"`
	Batch     int    `json:"batch"`
}

// DecisionProvider supplies every player decision. Calls are synchronous;
// the phase engine resumes with whatever the provider returns.
type DecisionProvider interface {
	// DraftPick returns an index into options, or -1 to pass.
	DraftPick(p *Player, options []Whim, pick int) int
	// ActionChoice performs zero or more action operations on g for p.
	ActionChoice(g *Game, p *Player, action int)
	// SalesChoice proposes sales for p.
	SalesChoice(p *Player, batches []WaterBatch, opps []DemandOpportunity, levels map[Track]int) []Sale
}

// PassiveDecider passes every pick, takes no actions and sells nothing.
type PassiveDecider struct{}

func (PassiveDecider) DraftPick(*Player, []Whim, int) int { return -1 }
func (PassiveDecider) ActionChoice(*Game, *Player, int)   {}
func (PassiveDecider) SalesChoice(*Player, []WaterBatch, []DemandOpportunity, map[Track]int) []Sale {
	return nil
}

// recovered logs a panic from a decision provider. The caller falls back
// to its safe default.
func (g *Game) recovered(p *Player, what string) {
	if r := recover(); r != nil {
		g.Logf("Decision for %s failed during %s; using default", p.Name, what)
		slog.Error("decision provider panicked", "game", g.ID, "player", p.ID, "decision", what, "panic", r)
	}
}

func (g *Game) askDraftPick(d DecisionProvider, p *Player, options []Whim, pick int) (choice int) {
	choice = -1
	defer g.recovered(p, "draft pick")
	return d.DraftPick(p, options, pick)
}

func (g *Game) askAction(d DecisionProvider, p *Player, n int) {
	defer g.recovered(p, "action choice")
	d.ActionChoice(g, p, n)
}

func (g *Game) askSales(d DecisionProvider, p *Player, opps []DemandOpportunity) (sales []Sale) {
	defer g.recovered(p, "sales choice")
	batches := make([]WaterBatch, len(p.Water))
	for i, b := range p.Water {
		b.Impact = b.Impact.Clone()
		b.Tags = append([]string(nil), b.Tags...)
		batches[i] = b
	}
	return d.SalesChoice(p, batches, opps, g.TrackLevels())
}
