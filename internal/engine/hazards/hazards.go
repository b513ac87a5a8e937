// Package hazards implements the mechanical effects of global events and
// static track threshold effects.
package hazards

import "waterbarons/internal/engine"

const (
	plasticBottles = "Plastic Bottles"
	connoisseurs   = "Connoisseurs"

	tagHighEnergy = "HIGH_ENERGY"
	tagCoastal    = "COASTAL"
	tagPlastic    = "PLASTIC"
)

// NewRegistry returns a registry holding every hazard of the base game.
func NewRegistry() *engine.HazardRegistry {
	r := engine.NewHazardRegistry()
	Register(r)
	return r
}

// Register adds every base hazard to r.
func Register(r *engine.HazardRegistry) {
	r.Register(AquiferCollapse{})
	r.Register(HeatwaveFrenzy{})
	r.Register(MicroplasticRevelation{})
	r.Register(MassRecall{})
	r.Register(EnergyCrisis{})
	r.Register(PlasticBlight{})
	r.Register(DustbowlProclamation{})
	r.Register(ToxicAlgaeBloom{})
	r.Register(CarbonLevel6{})
	r.Register(DepletionLevel5{})
	r.Register(ToxicityLevel7{})
}

func isWell(g *engine.Game, f *engine.Facility) bool {
	return f.Matches(g.Rules().WellKind)
}

func facilityOf(card engine.Card) (*engine.Facility, bool) {
	f, ok := card.(engine.Facility)
	return &f, ok
}
