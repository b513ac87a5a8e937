package engine

// PlayRound runs WhimDraft, Ops, Crowd, ThresholdCheck and RoundReset in
// order. When the round leaves the world uninhabitable the game is scored
// and ends.
func (g *Game) PlayRound(d DecisionProvider) error {
	if g.Phase == PhaseGameOver || g.Uninhabitable {
		return ErrGameOver
	}
	g.Logf("--- Round %d ---", g.Round)
	g.RoundStartLevels = g.TrackLevels()

	g.WhimDraftPhase(d)
	g.OpsPhase(d)
	g.CrowdPhase(d)
	g.ThresholdCheckPhase()
	g.ResetRound()
	return nil
}

// ResetRound restores every segment to its base values and advances the
// round counter, or ends the game if the world is uninhabitable.
func (g *Game) ResetRound() {
	g.Phase = PhaseRoundReset
	for _, s := range g.Segments {
		if base, ok := g.SegmentBases[s.Name]; ok {
			s.Demand, s.Price = base.Demand, base.Price
		}
	}
	g.Logf("Demand segments reset")

	if g.Uninhabitable {
		g.EndGame()
		return
	}
	g.Round++
}

// EndGame computes final scores and finishes the game. Calling it again
// does nothing.
func (g *Game) EndGame() {
	if g.Phase == PhaseGameOver {
		return
	}
	g.Logf("Game over after round %d", g.Round)
	g.Scores = g.CalculateScores()
	g.Phase = PhaseGameOver
}
