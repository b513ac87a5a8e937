package engine

import "sort"

// ScoreEntry holds scoring breakdown for one player.
type ScoreEntry struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	Coin           int    `json:"coin"`
	Reputation     int    `json:"reputation"`
	Base           int    `json:"base"`
	DiversityBonus int    `json:"diversity_bonus"`
	EventPenalty   int    `json:"event_penalty"`
	Total          int    `json:"total"`
	Impact         int    `json:"impact"` // total impact ever consolidated, lower wins ties
	Rank           int    `json:"rank"`
}

// CalculateScores computes final scores for all players, ranked best first.
func (g *Game) CalculateScores() []ScoreEntry {
	r := g.Rules()
	entries := make([]ScoreEntry, len(g.Players))

	for i, p := range g.Players {
		e := ScoreEntry{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Coin:       p.Coin,
			Reputation: p.Reputation,
			Base:       p.Coin + p.Reputation,
			Impact:     p.Emitted.Total(),
		}
		if len(p.RoutesUsed) >= r.DiversityRoutes {
			e.DiversityBonus = r.DiversityBonus
		}
		e.EventPenalty = p.Blame * r.EventPenalty
		e.Total = e.Base + e.DiversityBonus - e.EventPenalty
		entries[i] = e

		g.Logf("%s: %d coin + %d reputation = %d; diversity +%d (%d routes); events -%d (%d); total %d",
			p.Name, e.Coin, e.Reputation, e.Base, e.DiversityBonus, len(p.RoutesUsed),
			e.EventPenalty, p.Blame, e.Total)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Impact < entries[j].Impact
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if len(entries) > 0 {
		g.Logf("Winner: %s", entries[0].PlayerName)
	}
	return entries
}
