package engine

// Rules are the numeric knobs of the base ruleset.
type Rules struct {
	StartingCoin     int    `yaml:"starting_coin" json:"starting_coin"`
	ActionsPerTurn   int    `yaml:"actions_per_turn" json:"actions_per_turn"`
	DraftPicks       int    `yaml:"draft_picks" json:"draft_picks"`
	DraftOptions     int    `yaml:"draft_options" json:"draft_options"`
	FuturesFee       int    `yaml:"futures_fee" json:"futures_fee"`
	FuturesPayout    int    `yaml:"futures_payout" json:"futures_payout"`
	FuturesThreshold int    `yaml:"futures_threshold" json:"futures_threshold"`
	MaxFutures       int    `yaml:"max_futures" json:"max_futures"`
	OptionFee        int    `yaml:"option_fee" json:"option_fee"`
	OptionPayout     int    `yaml:"option_payout" json:"option_payout"`
	MarketingFee     int    `yaml:"marketing_fee" json:"marketing_fee"`
	DiversityBonus   int    `yaml:"diversity_bonus" json:"diversity_bonus"`
	DiversityRoutes  int    `yaml:"diversity_routes" json:"diversity_routes"`
	EventPenalty     int    `yaml:"event_penalty" json:"event_penalty"`
	UninhabitableAt  int    `yaml:"uninhabitable_tracks" json:"uninhabitable_tracks"` // tracks at max that end the game
	WellKind         string `yaml:"well_kind" json:"well_kind"`
}

func DefaultRules() Rules {
	return Rules{
		StartingCoin:     10,
		ActionsPerTurn:   2,
		DraftPicks:       2,
		DraftOptions:     3,
		FuturesFee:       2,
		FuturesPayout:    5,
		FuturesThreshold: 2,
		MaxFutures:       3,
		OptionFee:        4,
		OptionPayout:     10,
		MarketingFee:     2,
		DiversityBonus:   3,
		DiversityRoutes:  3,
		EventPenalty:     2,
		UninhabitableAt:  3,
		WellKind:         "Well",
	}
}

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	Rules         Rules
	Tracks        []ImpactTrack
	Segments      []DemandSegment
	Facilities    []Facility // card pool, one entry per copy
	Distributions []Distribution
	Upgrades      []Upgrade
	Whims         []Whim
	Events        []GlobalEvent
	Seed          uint64 // 0 picks a random seed
}

// DefaultTracks returns the four tracks with their static threshold effects.
func DefaultTracks() []ImpactTrack {
	return []ImpactTrack{
		{Track: TrackPink, Name: "Microplastics", MaxLevel: 10, Thresholds: map[int]string{}},
		{Track: TrackGrey, Name: "Carbon Intensity", MaxLevel: 10, Thresholds: map[int]string{6: "CO2_Level_6_Effect"}},
		{Track: TrackBlue, Name: "Depletion", MaxLevel: 10, Thresholds: map[int]string{5: "DEP_Level_5_Effect"}},
		{Track: TrackGreen, Name: "Chemical Residue", MaxLevel: 10, Thresholds: map[int]string{7: "TOX_Level_7_Effect"}},
	}
}
