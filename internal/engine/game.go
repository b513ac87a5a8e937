package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
)

var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrWrongPhase     = errors.New("wrong phase for this action")
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotEnoughCoin  = errors.New("not enough coin")
	ErrInvalidSlot    = errors.New("invalid slot")
	ErrSlotOccupied   = errors.New("slot occupied")
	ErrNoFacility     = errors.New("no facility in slot")
	ErrNoRoute        = errors.New("no route in slot")
	ErrCardNotFound   = errors.New("card not found")
	ErrBuildBlocked   = errors.New("building blocked by an active event")
	ErrLimitReached   = errors.New("build limit reached")
	ErrFuturesFull    = errors.New("futures limit reached")
	ErrUnknownEvent   = errors.New("unknown or already active event")
	ErrUnknownSegment = errors.New("unknown demand segment")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrGameOver       = errors.New("game is over")
)

// LogEntry is one line of the audit log.
type LogEntry struct {
	Round int       `json:"round"`
	Phase GamePhase `json:"phase"`
	Text  string    `json:"text"`
}

// Game holds the entire game state. A Game is mutated by one goroutine.
type Game struct {
	ID      string          `json:"id"`
	Players []*Player       `json:"players"`
	Config  GameConfig      `json:"-"`
	Hazards *HazardRegistry `json:"-"`

	Seed uint64     `json:"seed"`
	pcg  *rand.PCG
	rng  *rand.Rand

	Phase   GamePhase `json:"phase"`
	Round   int       `json:"round"`
	Current int       `json:"current"` // seat whose turn it is

	Tracks       map[Track]*ImpactTrack `json:"tracks"`
	Segments     []*DemandSegment       `json:"segments"`
	SegmentBases map[string]SegmentBase `json:"segment_bases"`

	FacilityDeck     *Deck[Facility]     `json:"-"`
	DistributionDeck *Deck[Distribution] `json:"-"`
	UpgradeDeck      *Deck[Upgrade]      `json:"-"`
	WhimSource       *Deck[Whim]         `json:"-"`
	CrowdDeck        *Deck[Whim]         `json:"-"`
	WhimDiscard      *Deck[Whim]         `json:"-"`

	EventsAvailable []GlobalEvent `json:"events_available"`
	EventsActive    []GlobalEvent `json:"events_active"`

	Draft *WhimDraft `json:"draft,omitempty"`

	Counters         map[string]int      `json:"counters"`    // copies built of limited cards
	RoundSales       map[string][]string `json:"round_sales"` // segment -> player IDs who sold there this round
	RoundStartLevels map[Track]int       `json:"round_start_levels"`
	ActiveEffects    []string            `json:"active_effects"` // static threshold effect keys
	Uninhabitable    bool                `json:"uninhabitable"`

	Scores []ScoreEntry `json:"scores,omitempty"`

	log []LogEntry
}

// NewGame creates a new game with given players and config. Decks are
// shuffled with the config seed.
func NewGame(players []*Player, config GameConfig, hazards *HazardRegistry) *Game {
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)

	g := &Game{
		ID:               uuid.NewString(),
		Players:          players,
		Config:           config,
		Hazards:          hazards,
		Seed:             seed,
		pcg:              pcg,
		rng:              rand.New(pcg),
		Phase:            PhaseSetup,
		Round:            1,
		Tracks:           make(map[Track]*ImpactTrack),
		SegmentBases:     make(map[string]SegmentBase),
		FacilityDeck:     NewDeck(config.Facilities),
		DistributionDeck: NewDeck(config.Distributions),
		UpgradeDeck:      NewDeck(config.Upgrades),
		WhimSource:       NewDeck(config.Whims),
		CrowdDeck:        NewDeck[Whim](nil),
		WhimDiscard:      NewDeck[Whim](nil),
		EventsAvailable:  append([]GlobalEvent(nil), config.Events...),
		Counters:         make(map[string]int),
		RoundSales:       make(map[string][]string),
		RoundStartLevels: make(map[Track]int),
	}

	tracks := config.Tracks
	if len(tracks) == 0 {
		tracks = DefaultTracks()
	}
	for _, t := range tracks {
		it := t
		it.Thresholds = make(map[int]string, len(t.Thresholds))
		for l, k := range t.Thresholds {
			it.Thresholds[l] = k
		}
		g.Tracks[it.Track] = &it
	}
	for _, s := range config.Segments {
		g.Segments = append(g.Segments, &s)
		g.SegmentBases[s.Name] = SegmentBase{Demand: s.Demand, Price: s.Price}
	}

	for _, p := range players {
		p.Coin = config.Rules.StartingCoin
	}

	g.FacilityDeck.Shuffle(g.rng)
	g.DistributionDeck.Shuffle(g.rng)
	g.UpgradeDeck.Shuffle(g.rng)
	g.WhimSource.Shuffle(g.rng)

	g.Logf("Game created with %d players (seed %d)", len(players), seed)
	return g
}

// Rules is shorthand for the configured ruleset.
func (g *Game) Rules() Rules {
	return g.Config.Rules
}

// GetPlayer returns the player with the given ID, or nil.
func (g *Game) GetPlayer(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Segment returns the named demand segment, or nil.
func (g *Game) Segment(name string) *DemandSegment {
	for _, s := range g.Segments {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// TrackLevels returns a copy of every track level.
func (g *Game) TrackLevels() map[Track]int {
	out := make(map[Track]int, len(g.Tracks))
	for t, it := range g.Tracks {
		out[t] = it.Level
	}
	return out
}

// Log returns a copy of the audit log.
func (g *Game) Log() []string {
	out := make([]string, len(g.log))
	for i, e := range g.log {
		out[i] = e.Text
	}
	return out
}

// LogEntries returns a copy of the audit log with round and phase.
func (g *Game) LogEntries() []LogEntry {
	return append([]LogEntry(nil), g.log...)
}

// Logf appends a line to the audit log and mirrors it to slog at debug level.
func (g *Game) Logf(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	g.log = append(g.log, LogEntry{Round: g.Round, Phase: g.Phase, Text: text})
	slog.Debug(text, "game", g.ID, "round", g.Round, "phase", g.Phase.String())
}

// AddGlobalImpact moves a global track. Any available event whose
// threshold the move crosses activates immediately and is blamed on by,
// when by is not nil.
func (g *Game) AddGlobalImpact(t Track, n int, by *Player) {
	track, ok := g.Tracks[t]
	if !ok || n == 0 {
		return
	}
	before := track.Level
	if n < 0 {
		track.Reduce(-n)
	} else if track.Add(n) {
		g.Logf("%s track crossed a threshold, now at %d", t, track.Level)
	}
	if track.Level == before {
		return
	}
	g.Logf("%s track %d -> %d", t, before, track.Level)
	if track.Level < before {
		return
	}

	var crossed []GlobalEvent
	for _, e := range g.EventsAvailable {
		if e.Track == t && before < e.Threshold && e.Threshold <= track.Level {
			crossed = append(crossed, e)
		}
	}
	for _, e := range crossed {
		g.activateEvent(e, by)
	}
}

func (g *Game) activateEvent(e GlobalEvent, by *Player) {
	idx := -1
	for i, a := range g.EventsAvailable {
		if a.ID == e.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	g.EventsAvailable = append(g.EventsAvailable[:idx], g.EventsAvailable[idx+1:]...)
	g.EventsActive = append(g.EventsActive, e)
	g.Logf("Global Event triggered: %s (%s at %d)", e.Name, e.Track, g.Tracks[e.Track].Level)

	if by != nil {
		by.Blame++
		g.Logf("%s is blamed for %s", by.Name, e.Name)
	}
	if g.Hazards != nil {
		if h, err := g.Hazards.Get(e.Name); err == nil {
			if a, ok := h.(Activator); ok {
				a.Activate(g)
			}
		} else {
			g.Logf("%s has no mechanical effect", e.Name)
		}
	}
	g.matureOptions(e.Name)
}

func (g *Game) deactivateEvent(e GlobalEvent) {
	for i, a := range g.EventsActive {
		if a.ID == e.ID {
			g.EventsActive = append(g.EventsActive[:i], g.EventsActive[i+1:]...)
			g.EventsAvailable = append(g.EventsAvailable, e)
			g.Logf("Global Event lifted: %s (%s at %d)", e.Name, e.Track, g.Tracks[e.Track].Level)
			return
		}
	}
}

// EventActive reports whether the named event is active.
func (g *Game) EventActive(name string) bool {
	for _, e := range g.EventsActive {
		if e.Name == name {
			return true
		}
	}
	return false
}
