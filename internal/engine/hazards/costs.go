package hazards

import "waterbarons/internal/engine"

// EnergyCrisis (CO₂e 7): producing at energy-heavy facilities costs 1 more.
type EnergyCrisis struct{}

func (EnergyCrisis) Name() string { return "Energy Crisis" }

func (EnergyCrisis) ModifyCost(g *engine.Game, kind engine.CostKind, card engine.Card, cost int) int {
	return produceSurcharge(kind, card, tagHighEnergy, cost, 1)
}

// ToxicAlgaeBloom (TOX 7): coastal water needs extra filtering.
type ToxicAlgaeBloom struct{}

func (ToxicAlgaeBloom) Name() string { return "Toxic Algae Bloom" }

func (ToxicAlgaeBloom) ModifyCost(g *engine.Game, kind engine.CostKind, card engine.Card, cost int) int {
	return produceSurcharge(kind, card, tagCoastal, cost, 1)
}

// DustbowlProclamation (DEP 6): new wells cost 2 more.
type DustbowlProclamation struct{}

func (DustbowlProclamation) Name() string { return "Dustbowl Proclamation" }

func (DustbowlProclamation) ModifyCost(g *engine.Game, kind engine.CostKind, card engine.Card, cost int) int {
	if f, ok := facilityOf(card); ok && kind == engine.CostBuildFacility && isWell(g, f) {
		return cost + 2
	}
	return cost
}

func produceSurcharge(kind engine.CostKind, card engine.Card, tag string, cost, extra int) int {
	if f, ok := facilityOf(card); ok && kind == engine.CostProduce && f.HasTag(tag) {
		return cost + extra
	}
	return cost
}
