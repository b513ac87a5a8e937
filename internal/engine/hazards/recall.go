package hazards

import "waterbarons/internal/engine"

// MassRecall (TOX 10): all held water is destroyed and nothing sells while
// the recall stands.
type MassRecall struct{}

func (MassRecall) Name() string { return "Mass Recall" }

func (MassRecall) Activate(g *engine.Game) {
	for _, p := range g.Players {
		if n := p.WaterTotal(); n > 0 {
			g.Logf("Mass Recall destroys %d of %s's water", n, p.Name)
		}
		p.Water = nil
	}
}

func (MassRecall) BlocksSales(g *engine.Game) bool { return true }
