package hazards

import "waterbarons/internal/engine"

// CarbonLevel6: energy-heavy production costs 1 more.
type CarbonLevel6 struct{}

func (CarbonLevel6) Name() string { return "CO2_Level_6_Effect" }

func (CarbonLevel6) ModifyCost(g *engine.Game, kind engine.CostKind, card engine.Card, cost int) int {
	return produceSurcharge(kind, card, tagHighEnergy, cost, 1)
}

// DepletionLevel5: wells produce 1 less.
type DepletionLevel5 struct{}

func (DepletionLevel5) Name() string { return "DEP_Level_5_Effect" }

func (DepletionLevel5) ModifyOutput(g *engine.Game, f *engine.Facility, output int) int {
	if isWell(g, f) {
		return output - 1
	}
	return output
}

// ToxicityLevel7: Connoisseurs refuse all water.
type ToxicityLevel7 struct{}

func (ToxicityLevel7) Name() string { return "TOX_Level_7_Effect" }

func (ToxicityLevel7) RefuseSale(g *engine.Game, s *engine.DemandSegment, b engine.WaterBatch, r *engine.Distribution) bool {
	return s.Name == connoisseurs
}
