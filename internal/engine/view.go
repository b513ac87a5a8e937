package engine

// MarketSize is how many cards of each build deck are shown face up.
const MarketSize = 5

// PublicPlayer is what everyone can see of a player.
type PublicPlayer struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Coin       int      `json:"coin"`
	Reputation int      `json:"reputation"`
	Facilities []string `json:"facilities"`
	Routes     []string `json:"routes"`
	Water      int      `json:"water"`
	Futures    int      `json:"futures"`
	Options    []string `json:"options,omitempty"`
	Blame      int      `json:"blame"`
}

// PublicView is the table state shown to every client.
type PublicView struct {
	ID            string          `json:"id"`
	Round         int             `json:"round"`
	Phase         string          `json:"phase"`
	CurrentPlayer string          `json:"current_player"`
	Tracks        []ImpactTrack   `json:"tracks"`
	Segments      []DemandSegment `json:"segments"`
	EventsActive  []GlobalEvent   `json:"events_active"`
	EventsPending []GlobalEvent   `json:"events_available"`
	ActiveEffects []string        `json:"active_effects"`
	Players       []PublicPlayer  `json:"players"`
	Facilities    []Facility      `json:"facility_market"`
	Distributions []Distribution  `json:"distribution_market"`
	Upgrades      []Upgrade       `json:"upgrade_market"`
	CrowdDeck     int             `json:"crowd_deck"`
	Discard       []string        `json:"whim_discard"`
	Uninhabitable bool            `json:"uninhabitable"`
	Scores        []ScoreEntry    `json:"scores,omitempty"`
}

// PlayerView adds a player's private state to the public view.
type PlayerView struct {
	PublicView
	Me          Player `json:"me"`
	DraftOffers []Whim `json:"draft_offers,omitempty"`
}

func (g *Game) PublicView() PublicView {
	v := PublicView{
		ID:            g.ID,
		Round:         g.Round,
		Phase:         g.Phase.String(),
		EventsActive:  append([]GlobalEvent(nil), g.EventsActive...),
		EventsPending: append([]GlobalEvent(nil), g.EventsAvailable...),
		ActiveEffects: append([]string(nil), g.ActiveEffects...),
		Facilities:    g.FacilityDeck.Peek(MarketSize),
		Distributions: g.DistributionDeck.Peek(MarketSize),
		Upgrades:      g.UpgradeDeck.Peek(MarketSize),
		CrowdDeck:     g.CrowdDeck.Len(),
		Uninhabitable: g.Uninhabitable,
		Scores:        g.Scores,
	}
	if g.Current < len(g.Players) {
		v.CurrentPlayer = g.Players[g.Current].ID
	}
	if g.Draft != nil && g.Draft.Active {
		v.CurrentPlayer = g.Draft.CurrentPickerID()
	}
	for _, t := range AllTracks() {
		if it, ok := g.Tracks[t]; ok {
			v.Tracks = append(v.Tracks, *it)
		}
	}
	for _, s := range g.Segments {
		v.Segments = append(v.Segments, *s)
	}
	for _, w := range g.WhimDiscard.Cards() {
		v.Discard = append(v.Discard, w.Name)
	}
	for _, p := range g.Players {
		pp := PublicPlayer{
			ID:         p.ID,
			Name:       p.Name,
			Coin:       p.Coin,
			Reputation: p.Reputation,
			Water:      p.WaterTotal(),
			Futures:    len(p.Futures),
			Blame:      p.Blame,
		}
		for _, f := range p.Facilities {
			if f != nil {
				pp.Facilities = append(pp.Facilities, f.Name)
			}
		}
		for _, r := range p.Routes {
			if r != nil {
				pp.Routes = append(pp.Routes, r.Name)
			}
		}
		for _, o := range p.Options {
			pp.Options = append(pp.Options, o.Event)
		}
		v.Players = append(v.Players, pp)
	}
	return v
}

// ViewFor returns the view for one player. Unknown IDs get the public view
// only.
func (g *Game) ViewFor(playerID string) PlayerView {
	v := PlayerView{PublicView: g.PublicView()}
	p := g.GetPlayer(playerID)
	if p == nil {
		return v
	}
	v.Me = *p
	if g.Draft != nil && g.Draft.Active && g.Draft.CurrentPickerID() == playerID {
		v.DraftOffers = append([]Whim(nil), g.Draft.Options...)
	}
	return v
}
