package hazards

import "waterbarons/internal/engine"

// HeatwaveFrenzy (CO₂e 9): demand doubles every crowd phase and every
// facility overheats for -1 output.
type HeatwaveFrenzy struct{}

func (HeatwaveFrenzy) Name() string { return "Heatwave Frenzy" }

func (HeatwaveFrenzy) ModifyDemand(g *engine.Game) {
	for _, s := range g.Segments {
		s.Demand *= 2
	}
	g.Logf("Heatwave Frenzy doubles demand in every segment")
}

func (HeatwaveFrenzy) ModifyOutput(g *engine.Game, f *engine.Facility, output int) int {
	return output - 1
}
