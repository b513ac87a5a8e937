package hazards

import "waterbarons/internal/engine"

// MicroplasticRevelation (μP 8): every active Plastic Bottles route dumps
// +3 μP and is flipped face down. No new Plastic Bottles while active.
type MicroplasticRevelation struct{}

func (MicroplasticRevelation) Name() string { return "Microplastic Revelation" }

func (MicroplasticRevelation) Activate(g *engine.Game) {
	for _, p := range g.Players {
		for _, r := range p.Routes {
			if r == nil || !r.Active || r.Name != plasticBottles {
				continue
			}
			r.Active = false
			g.Logf("%s's %s route is exposed and shut down", p.Name, r.Name)
			g.AddGlobalImpact(engine.TrackPink, 3, nil)
		}
	}
}

func (MicroplasticRevelation) BlocksBuild(g *engine.Game, card engine.Card) bool {
	d, ok := card.(engine.Distribution)
	return ok && d.Name == plasticBottles
}

// PlasticBlight (μP 6): plastic loses a coin per sale and plastic-tagged
// facilities lose a unit of output.
type PlasticBlight struct{}

func (PlasticBlight) Name() string { return "Plastic Blight" }

func (PlasticBlight) ModifyRevenue(g *engine.Game, route *engine.Distribution, quantity, revenue int) int {
	if route.Name == plasticBottles {
		return revenue - 1
	}
	return revenue
}

func (PlasticBlight) ModifyOutput(g *engine.Game, f *engine.Facility, output int) int {
	if f.HasTag(tagPlastic) {
		return output - 1
	}
	return output
}
