package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// SnapshotVersion is bumped whenever the Snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the persisted form of a Game. Effects travel as their
// authoring text and are parsed again on restore.
type Snapshot struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Seed    uint64 `json:"seed"`
	RNG     []byte `json:"rng"`

	Phase   GamePhase `json:"phase"`
	Round   int       `json:"round"`
	Current int       `json:"current"`

	Players      []Player               `json:"players"`
	Tracks       []ImpactTrack          `json:"tracks"`
	Segments     []DemandSegment        `json:"segments"`
	SegmentBases map[string]SegmentBase `json:"segment_bases"`

	FacilityDeck     []Facility     `json:"facility_deck"`
	DistributionDeck []Distribution `json:"distribution_deck"`
	UpgradeDeck      []Upgrade      `json:"upgrade_deck"`
	WhimSource       []Whim         `json:"whim_source"`
	CrowdDeck        []Whim         `json:"crowd_deck"`
	WhimDiscard      []Whim         `json:"whim_discard"`

	EventsAvailable []GlobalEvent `json:"events_available"`
	EventsActive    []GlobalEvent `json:"events_active"`

	Draft            *WhimDraft          `json:"draft,omitempty"`
	Counters         map[string]int      `json:"counters"`
	RoundSales       map[string][]string `json:"round_sales"`
	RoundStartLevels map[Track]int       `json:"round_start_levels"`
	ActiveEffects    []string            `json:"active_effects"`
	Uninhabitable    bool                `json:"uninhabitable"`
	Scores           []ScoreEntry        `json:"scores,omitempty"`
	Log              []LogEntry          `json:"log"`
}

// Snapshot captures the game. The result shares memory with g until it is
// marshalled.
func (g *Game) Snapshot() (Snapshot, error) {
	rng, err := g.pcg.MarshalBinary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("rng state: %w", err)
	}
	s := Snapshot{
		Version:          SnapshotVersion,
		ID:               g.ID,
		Seed:             g.Seed,
		RNG:              rng,
		Phase:            g.Phase,
		Round:            g.Round,
		Current:          g.Current,
		SegmentBases:     g.SegmentBases,
		FacilityDeck:     g.FacilityDeck.Cards(),
		DistributionDeck: g.DistributionDeck.Cards(),
		UpgradeDeck:      g.UpgradeDeck.Cards(),
		WhimSource:       g.WhimSource.Cards(),
		CrowdDeck:        g.CrowdDeck.Cards(),
		WhimDiscard:      g.WhimDiscard.Cards(),
		EventsAvailable:  g.EventsAvailable,
		EventsActive:     g.EventsActive,
		Draft:            g.Draft,
		Counters:         g.Counters,
		RoundSales:       g.RoundSales,
		RoundStartLevels: g.RoundStartLevels,
		ActiveEffects:    g.ActiveEffects,
		Uninhabitable:    g.Uninhabitable,
		Scores:           g.Scores,
		Log:              g.LogEntries(),
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, *p)
	}
	for _, t := range AllTracks() {
		if it, ok := g.Tracks[t]; ok {
			s.Tracks = append(s.Tracks, *it)
		}
	}
	for _, seg := range g.Segments {
		s.Segments = append(s.Segments, *seg)
	}
	return s, nil
}

// MarshalSnapshot encodes the game as JSON.
func (g *Game) MarshalSnapshot() ([]byte, error) {
	s, err := g.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes JSON produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Restore rebuilds a game from a snapshot. The config supplies rules only;
// cards come from the snapshot.
func Restore(s Snapshot, config GameConfig, hazards *HazardRegistry) (*Game, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	pcg := rand.NewPCG(0, 0)
	if err := pcg.UnmarshalBinary(s.RNG); err != nil {
		return nil, fmt.Errorf("rng state: %w", err)
	}

	g := &Game{
		ID:               s.ID,
		Config:           config,
		Hazards:          hazards,
		Seed:             s.Seed,
		pcg:              pcg,
		rng:              rand.New(pcg),
		Phase:            s.Phase,
		Round:            s.Round,
		Current:          s.Current,
		Tracks:           make(map[Track]*ImpactTrack),
		SegmentBases:     orEmpty(s.SegmentBases),
		FacilityDeck:     NewDeck(s.FacilityDeck),
		DistributionDeck: NewDeck(s.DistributionDeck),
		UpgradeDeck:      NewDeck(compileUpgrades(s.UpgradeDeck)),
		WhimSource:       NewDeck(compileWhims(s.WhimSource)),
		CrowdDeck:        NewDeck(compileWhims(s.CrowdDeck)),
		WhimDiscard:      NewDeck(compileWhims(s.WhimDiscard)),
		EventsAvailable:  s.EventsAvailable,
		EventsActive:     s.EventsActive,
		Draft:            s.Draft,
		Counters:         orEmpty(s.Counters),
		RoundSales:       orEmpty(s.RoundSales),
		RoundStartLevels: orEmpty(s.RoundStartLevels),
		ActiveEffects:    s.ActiveEffects,
		Uninhabitable:    s.Uninhabitable,
		Scores:           s.Scores,
		log:              s.Log,
	}
	for _, t := range s.Tracks {
		g.Tracks[t.Track] = &t
	}
	for _, seg := range s.Segments {
		g.Segments = append(g.Segments, &seg)
	}
	if g.Draft != nil {
		g.Draft.Options = compileWhims(g.Draft.Options)
	}
	for i := range s.Players {
		p := s.Players[i]
		p.Impact = orEmpty(p.Impact)
		p.Emitted = orEmpty(p.Emitted)
		p.RoutesUsed = orEmpty(p.RoutesUsed)
		p.Tech = compileUpgrades(p.Tech)
		for _, f := range p.Facilities {
			if f != nil {
				f.Upgrades = compileUpgrades(f.Upgrades)
			}
		}
		for _, r := range p.Routes {
			if r != nil {
				r.Upgrades = compileUpgrades(r.Upgrades)
			}
		}
		g.Players = append(g.Players, &p)
	}
	return g, nil
}

func compileUpgrades(us []Upgrade) []Upgrade {
	for i := range us {
		us[i].compile()
	}
	return us
}

func compileWhims(ws []Whim) []Whim {
	for i := range ws {
		ws[i].compile()
	}
	return ws
}

func orEmpty[M ~map[K]V, K comparable, V any](m M) M {
	if m == nil {
		return make(M)
	}
	return m
}
