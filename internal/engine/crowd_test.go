package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterbarons/internal/engine"
)

// sellerGame gives Ann a Smart-Pipe Network in route slot 0, Plastic
// Bottles in route slot 1 and one batch of 4 well water.
func sellerGame(t *testing.T) *engine.Game {
	t.Helper()
	g := opsGame()
	g.GetPlayer("a").Coin = 30
	require.NoError(t, g.BuildFacility("a", "well-1", 0))
	require.NoError(t, g.BuildDistribution("a", "pipes-1", 0))
	require.NoError(t, g.BuildDistribution("a", "bottles-1", 1))
	require.NoError(t, g.ProduceWater("a", 0))
	return g
}

func sells(sales ...engine.Sale) script {
	return script{sell: func(*engine.Player, []engine.WaterBatch, []engine.DemandOpportunity) []engine.Sale {
		return sales
	}}
}

func TestSaleAtListPrice(t *testing.T) {
	g := sellerGame(t)
	ann := g.GetPlayer("a")
	coin := ann.Coin

	g.CrowdPhase(sells(engine.Sale{Segment: "Frugalists", Quantity: 3, RouteSlot: 0, Batch: 0}))

	assert.Equal(t, coin+3, ann.Coin)
	assert.Equal(t, 1, g.Segment("Frugalists").Demand)
	assert.Equal(t, []string{"a"}, g.RoundSales["Frugalists"])
	assert.Nil(t, ann.Water)
	assert.True(t, logged(g, "Ann's 1 unsold water evaporated"))
	assert.Equal(t, engine.PhaseCrowd, g.Phase)
}

func TestSaleRevenueProposal(t *testing.T) {
	tests := []struct {
		proposed int
		want     int
	}{
		{0, 3},
		{-4, 3},
		{2, 2},
		{3, 3},
		{9, 3},
	}
	for _, tt := range tests {
		g := sellerGame(t)
		ann := g.GetPlayer("a")
		coin := ann.Coin

		g.CrowdPhase(sells(engine.Sale{Segment: "Frugalists", Quantity: 3, Revenue: tt.proposed, RouteSlot: 0}))

		assert.Equal(t, coin+tt.want, ann.Coin, "proposed %d", tt.proposed)
	}
}

func TestInvalidSalesAreSkipped(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *engine.Game)
		sale  engine.Sale
	}{
		{"unknown segment", nil, engine.Sale{Segment: "Tourists", Quantity: 1}},
		{"zero quantity", nil, engine.Sale{Segment: "Frugalists", Quantity: 0}},
		{"over demand", nil, engine.Sale{Segment: "Frugalists", Quantity: 5}},
		{"no such batch", nil, engine.Sale{Segment: "Frugalists", Quantity: 1, Batch: 3}},
		{"over batch", func(g *engine.Game) { g.Segment("Frugalists").Demand = 10 }, engine.Sale{Segment: "Frugalists", Quantity: 5}},
		{"no such route", nil, engine.Sale{Segment: "Frugalists", Quantity: 1, RouteSlot: 2}},
		{"inactive route", func(g *engine.Game) { g.GetPlayer("a").Routes[0].Active = false }, engine.Sale{Segment: "Frugalists", Quantity: 1}},
		{"wrong route", nil, engine.Sale{Segment: "Convenientists", Quantity: 1, RouteSlot: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sellerGame(t)
			if tt.setup != nil {
				tt.setup(g)
			}
			ann := g.GetPlayer("a")
			coin := ann.Coin

			g.CrowdPhase(sells(tt.sale))

			assert.Equal(t, coin, ann.Coin)
			assert.Empty(t, g.RoundSales)
			assert.True(t, logged(g, "Ann's sale to "+tt.sale.Segment+" rejected"))
			assert.True(t, logged(g, "Ann's 4 unsold water evaporated"))
		})
	}
}

func TestLaterSalesSeeEarlierOnes(t *testing.T) {
	g := sellerGame(t)
	ann := g.GetPlayer("a")
	coin := ann.Coin

	g.CrowdPhase(sells(
		engine.Sale{Segment: "Frugalists", Quantity: 3},
		engine.Sale{Segment: "Frugalists", Quantity: 2},
		engine.Sale{Segment: "Eco-Elites", Quantity: 1},
	))

	assert.Equal(t, coin+3+3, ann.Coin)
	assert.True(t, logged(g, "Ann's sale to Frugalists rejected"))
	assert.Equal(t, 1, g.Segment("Eco-Elites").Demand)
}

func TestRouteModifierAddsImpact(t *testing.T) {
	g := sellerGame(t)
	ann := g.GetPlayer("a")
	coin := ann.Coin

	g.CrowdPhase(sells(engine.Sale{Segment: "Convenientists", Quantity: 3, RouteSlot: 1}))

	assert.Equal(t, coin+6, ann.Coin)
	assert.Equal(t, 1, g.Tracks[engine.TrackPink].Level, "one μP per two bottles")
	assert.Equal(t, 2, g.Tracks[engine.TrackBlue].Level)
	assert.Equal(t, 1, ann.Emitted[engine.TrackPink])
	assert.Zero(t, ann.Impact[engine.TrackPink])
}

func TestRouteUpgradeRemovesImpact(t *testing.T) {
	g := sellerGame(t)
	require.NoError(t, g.AddUpgrade("a", "seal-1", engine.UpgradeTarget{Kind: engine.TargetRoute, Slot: 1}))

	g.CrowdPhase(sells(engine.Sale{Segment: "Convenientists", Quantity: 2, RouteSlot: 1}))

	assert.Zero(t, g.Tracks[engine.TrackPink].Level)
	assert.True(t, logged(g, "Bioplastic Seal removes 1 μP"))
}

func TestSegmentRules(t *testing.T) {
	g := opsGame()
	ann := g.GetPlayer("a")
	require.NoError(t, g.BuildDistribution("a", "pipes-1", 0))
	ann.Water = []engine.WaterBatch{
		{Facility: "Glacial Tap", Tags: []string{"ARCTIC"}, Impact: engine.ImpactProfile{engine.TrackPink: 1, engine.TrackGrey: 1}, Quantity: 3},
		{Facility: "Aquifer Well", Impact: engine.ImpactProfile{engine.TrackBlue: 2}, Quantity: 2},
	}
	coin := ann.Coin

	g.CrowdPhase(sells(
		engine.Sale{Segment: "Eco-Elites", Quantity: 1, Batch: 0},
		engine.Sale{Segment: "Connoisseurs", Quantity: 1, Batch: 0},
		engine.Sale{Segment: "Eco-Elites", Quantity: 2, Batch: 1},
	))

	assert.Equal(t, coin+5+6, ann.Coin)
	assert.True(t, logged(g, "Eco-Elites reject water above μP limit"))
	assert.Equal(t, []string{"a"}, g.RoundSales["Connoisseurs"])
	assert.Equal(t, []string{"a"}, g.RoundSales["Eco-Elites"])
}

func TestDroneSaleEarnsExtraWhim(t *testing.T) {
	g := opsGame()
	ann := g.GetPlayer("a")
	require.NoError(t, g.BuildDistribution("a", "drones-1", 0))
	ann.Water = []engine.WaterBatch{{Facility: "Aquifer Well", Quantity: 2}}

	g.CrowdPhase(sells(engine.Sale{Segment: "Convenientists", Quantity: 2}))

	assert.True(t, ann.ExtraWhim)
	assert.Equal(t, 2, g.Tracks[engine.TrackGrey].Level)
}

func TestWhimsBracketSales(t *testing.T) {
	g := sellerGame(t)
	g.CrowdDeck.Return(engine.NewWhim("rush", "Rush Hour", "", "DemandSegment:Frugalists:current_demand:+2", "GlobalImpact:PINK:+2"))
	var seen []engine.DemandOpportunity
	d := script{sell: func(_ *engine.Player, _ []engine.WaterBatch, opps []engine.DemandOpportunity) []engine.Sale {
		seen = opps
		return nil
	}}

	g.CrowdPhase(d)

	require.NotEmpty(t, seen)
	assert.Equal(t, "Frugalists", seen[0].Segment)
	assert.Equal(t, 6, seen[0].Demand)
	assert.Equal(t, 2, g.Tracks[engine.TrackPink].Level)
	assert.Zero(t, g.CrowdDeck.Len())
	assert.Equal(t, []string{"rush"}, ids(g.WhimDiscard.Cards()))
	assert.True(t, logged(g, "Revealed whim: Rush Hour"))
}

func TestCrowdRevealsPlayersPlusOne(t *testing.T) {
	g := newTestGame(2)
	g.CrowdDeck.Return(testConfig().Whims...)

	g.CrowdPhase(engine.PassiveDecider{})

	assert.Equal(t, 3, g.CrowdDeck.Len())
	assert.Equal(t, 3, g.WhimDiscard.Len())
}

func TestFalloutRewardsBuyers(t *testing.T) {
	g := sellerGame(t)
	g.CrowdDeck.Return(engine.NewWhim("fair", "Farmers Market", "", "", "PlayerEffect:FrugalistBuyers:reputation:+1"))

	g.CrowdPhase(sells(engine.Sale{Segment: "Frugalists", Quantity: 1}))

	assert.Equal(t, 1, g.GetPlayer("a").Reputation)
	assert.Zero(t, g.GetPlayer("b").Reputation)
}

func TestSalesBlockedByMassRecall(t *testing.T) {
	g := sellerGame(t)
	g.AddGlobalImpact(engine.TrackGreen, 10, nil)
	require.True(t, g.EventActive("Mass Recall"))
	ann := g.GetPlayer("a")
	assert.Nil(t, ann.Water)

	ann.Water = []engine.WaterBatch{{Facility: "Aquifer Well", Quantity: 2}}
	asked := false
	g.CrowdPhase(script{sell: func(*engine.Player, []engine.WaterBatch, []engine.DemandOpportunity) []engine.Sale {
		asked = true
		return nil
	}})

	assert.False(t, asked)
	assert.True(t, logged(g, "No sales this round: Mass Recall"))
	assert.Nil(t, ann.Water)
}

func TestConsolidateBlamesCrossingStep(t *testing.T) {
	g := newTestGame(2)
	ann, bo := g.Players[0], g.Players[1]
	ann.Impact[engine.TrackGrey] = 4
	bo.Impact[engine.TrackGrey] = 4
	bo.Impact[engine.TrackPink] = 1

	g.Consolidate()

	assert.Equal(t, 8, g.Tracks[engine.TrackGrey].Level)
	assert.Equal(t, 1, g.Tracks[engine.TrackPink].Level)
	assert.Zero(t, ann.Blame)
	assert.Equal(t, 1, bo.Blame)
	assert.Equal(t, 4, ann.Emitted[engine.TrackGrey])
	assert.Zero(t, bo.Impact[engine.TrackGrey])
	assert.True(t, logged(g, "Bo is blamed for Energy Crisis"))
}
