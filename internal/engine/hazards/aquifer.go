package hazards

import "waterbarons/internal/engine"

// AquiferCollapse (DEP 8): wells produce half and cannot be built until
// depletion falls back to the recovery level.
type AquiferCollapse struct{}

const aquiferRecovery = 6

func (AquiferCollapse) Name() string { return "Aquifer Collapse" }

func (AquiferCollapse) ModifyOutput(g *engine.Game, f *engine.Facility, output int) int {
	if isWell(g, f) {
		return output / 2
	}
	return output
}

func (AquiferCollapse) BlocksBuild(g *engine.Game, card engine.Card) bool {
	f, ok := facilityOf(card)
	return ok && isWell(g, f)
}

func (AquiferCollapse) Recovered(g *engine.Game, e engine.GlobalEvent) bool {
	at := e.RecoverAt
	if at == 0 {
		at = aquiferRecovery
	}
	return g.Tracks[e.Track].Level <= at
}
