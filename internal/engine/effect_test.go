package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterbarons/internal/engine"
)

func TestParseEffect(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Effect
	}{
		{
			"DemandSegment:Frugalists:current_demand:+2",
			engine.DemandShift{Segment: "Frugalists", Field: engine.FieldDemand, Delta: 2},
		},
		{
			"DemandSegment:Connoisseurs:current_price:-1",
			engine.DemandShift{Segment: "Connoisseurs", Field: engine.FieldPrice, Delta: -1},
		},
		{
			"AllSegments:current_demand:+1",
			engine.SegmentSweep{Field: engine.FieldDemand, Delta: 1},
		},
		{
			"GlobalImpact:TrackColor.PINK:+2",
			engine.GlobalImpact{Track: engine.TrackPink, Delta: 2},
		},
		{
			"PlayerEffect:EcoEliteBuyers:GainReputation:1",
			engine.PlayerEffect{Selector: engine.PlayerSelector{BuyersOf: "EcoElite"}, Field: engine.FieldReputation, Delta: 1},
		},
		{
			"PlayerEffect:AllPlayers:cred_coin:-2",
			engine.PlayerEffect{Field: engine.FieldCoin, Delta: -2},
		},
		{
			"Apply_to_facility: reduce_impact_per_flow(TrackColor.PINK, 1)",
			engine.FlowImpactReduction{Track: engine.TrackPink, Amount: 1},
		},
		{
			"Apply_to_route: on_sell_remove_impact(TrackColor.PINK, 1)",
			engine.SaleImpactRemoval{Track: engine.TrackPink, Amount: 1},
		},
		{
			"Passive_facility_effect: at_cleanup_reduce_global_impact(TrackColor.GREY, 1)",
			engine.CleanupReduction{Track: engine.TrackGrey, Amount: 1},
		},
		{
			"Global_player_passive: reduce_facility_impact_type('Well', TrackColor.BLUE, 1)",
			engine.TagImpactReduction{Tag: "Well", Track: engine.TrackBlue, Amount: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := engine.ParseEffect(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got.Text())
			assert.Equal(t, withRaw(tt.want, tt.in), got)
		})
	}
}

// withRaw fills in the authoring text, which every parsed effect keeps.
func withRaw(e engine.Effect, raw string) engine.Effect {
	switch e := e.(type) {
	case engine.DemandShift:
		e.Raw = raw
		return e
	case engine.SegmentSweep:
		e.Raw = raw
		return e
	case engine.GlobalImpact:
		e.Raw = raw
		return e
	case engine.PlayerEffect:
		e.Raw = raw
		return e
	case engine.FlowImpactReduction:
		e.Raw = raw
		return e
	case engine.SaleImpactRemoval:
		e.Raw = raw
		return e
	case engine.CleanupReduction:
		e.Raw = raw
		return e
	case engine.TagImpactReduction:
		e.Raw = raw
		return e
	}
	return e
}

func TestParseEffectMalformed(t *testing.T) {
	for _, in := range []string{
		"DemandSegment:Frugalists:current_demand",
		"DemandSegment:Frugalists:mood:+1",
		"AllSegments:current_demand:lots",
		"GlobalImpact:PURPLE:+1",
		"PlayerEffect:Aliens:coin:+1",
		"PlayerEffect:AllPlayers:karma:+1",
		"Rainfall:+3",
		"Apply_to_facility: reduce_impact_per_flow(TrackColor.PINK)",
		"Apply_to_facility: reduce_impact_per_flow(TrackColor.PINK, 1",
		"Apply_to_facility: teleport(TrackColor.PINK, 1)",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := engine.ParseEffect(in)
			assert.ErrorIs(t, err, engine.ErrMalformedEffect)

			e, err := engine.CompileEffect(in)
			assert.Error(t, err)
			noop, ok := e.(engine.Noop)
			require.True(t, ok)
			assert.Equal(t, in, noop.Raw)
			assert.NotEmpty(t, noop.Reason)
		})
	}
}

func TestParseEffectEmpty(t *testing.T) {
	e, err := engine.ParseEffect("  ")
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestNewWhimKeepsBadTextAsNoop(t *testing.T) {
	w := engine.NewWhim("w", "Odd", "", "Sunspots:+1", "GlobalImpact:BLUE:+1")
	assert.IsType(t, engine.Noop{}, w.Pre)
	assert.IsType(t, engine.GlobalImpact{}, w.Post)
}

func TestApplyEffectSegments(t *testing.T) {
	g := newTestGame(2)

	g.ApplyEffect(mustParse(t, "DemandSegment:Connoisseurs:current_price:+2"), "Spill Scandal")
	assert.Equal(t, 6, g.Segment("Connoisseurs").Price)
	assert.True(t, logged(g, "Spill Scandal: Connoisseurs price +2 (now 6)"))

	g.ApplyEffect(mustParse(t, "AllSegments:current_demand:-3"), "Drought")
	assert.Equal(t, 1, g.Segment("Frugalists").Demand)
	assert.Zero(t, g.Segment("Connoisseurs").Demand, "demand never goes negative")

	before := len(g.Log())
	g.ApplyEffect(mustParse(t, "DemandSegment:Tourists:current_demand:+1"), "Tour Bus")
	assert.Len(t, g.Log(), before+1)
	assert.True(t, logged(g, `Tour Bus: no segment named "Tourists"; ignored`))
}

func TestApplyEffectGlobalImpact(t *testing.T) {
	g := newTestGame(2)

	g.ApplyEffect(mustParse(t, "GlobalImpact:GREY:+7"), "Smog")
	assert.Equal(t, 7, g.Tracks[engine.TrackGrey].Level)
	assert.True(t, g.EventActive("Energy Crisis"))
	for _, p := range g.Players {
		assert.Zero(t, p.Blame, "whim fallout blames nobody")
	}

	g.ApplyEffect(mustParse(t, "GlobalImpact:GREY:-2"), "Rain")
	assert.Equal(t, 5, g.Tracks[engine.TrackGrey].Level)
}

func TestApplyEffectPlayers(t *testing.T) {
	g := newTestGame(2)

	g.ApplyEffect(mustParse(t, "PlayerEffect:AllPlayers:cred_coin:+2"), "Subsidy")
	for _, p := range g.Players {
		assert.Equal(t, 12, p.Coin)
	}

	g.RoundSales["Eco-Elites"] = []string{"b"}
	g.ApplyEffect(mustParse(t, "PlayerEffect:EcoEliteBuyers:GainReputation:1"), "Green Award")
	assert.Zero(t, g.GetPlayer("a").Reputation)
	assert.Equal(t, 1, g.GetPlayer("b").Reputation)

	g.ApplyEffect(mustParse(t, "PlayerEffect:FrugalistBuyers:reputation:+1"), "Coupon")
	assert.True(t, logged(g, "Coupon: no players matched"))
}

func TestApplyEffectIgnoresModifiersAndNoops(t *testing.T) {
	g := newTestGame(2)
	before := len(g.Log())

	g.ApplyEffect(nil, "Blank")
	assert.Len(t, g.Log(), before)

	g.ApplyEffect(mustParse(t, "Apply_to_facility: reduce_impact_per_flow(TrackColor.PINK, 1)"), "Filter")
	assert.True(t, logged(g, "is not a round effect; ignored"))

	noop, _ := engine.CompileEffect("Sunspots:+1")
	g.ApplyEffect(noop, "Sunspots")
	assert.True(t, logged(g, `Sunspots: unusable effect "Sunspots:+1" ignored`))
}

func mustParse(t *testing.T, text string) engine.Effect {
	t.Helper()
	e, err := engine.ParseEffect(text)
	require.NoError(t, err)
	return e
}
