package engine

import "fmt"

// FutureToken is a bet on a track's movement over one round.
type FutureToken struct {
	Track     Track `json:"track"`
	Long      bool  `json:"long"`
	Price     int   `json:"price"`
	Threshold int   `json:"threshold"`
	Payout    int   `json:"payout"`
	Round     int   `json:"round"`
}

func (f FutureToken) direction() string {
	if f.Long {
		return "long"
	}
	return "short"
}

// EventOption pays out when the named event activates.
type EventOption struct {
	Event   string `json:"event"`
	Price   int    `json:"price"`
	Payout  int    `json:"payout"`
	Matured bool   `json:"matured"`
}

// Speculate buys a futures token on a track.
func (g *Game) Speculate(playerID string, track Track, long bool) error {
	const action = "speculate"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	if _, ok := g.Tracks[track]; !ok {
		return g.reject(p, action, fmt.Errorf("%w: track %s", ErrInvalidTarget, track))
	}
	r := g.Rules()
	if len(p.Futures) >= r.MaxFutures {
		return g.reject(p, action, fmt.Errorf("%w: holding %d", ErrFuturesFull, len(p.Futures)))
	}
	if err := g.pay(p, r.FuturesFee); err != nil {
		return g.reject(p, action, err)
	}
	tok := FutureToken{
		Track:     track,
		Long:      long,
		Price:     r.FuturesFee,
		Threshold: r.FuturesThreshold,
		Payout:    r.FuturesPayout,
		Round:     g.Round,
	}
	p.Futures = append(p.Futures, tok)
	g.Logf("%s bought a %s future on %s for %d", p.Name, tok.direction(), track, tok.Price)
	return nil
}

// BuyEventOption buys an option on a global event that has not yet
// activated.
func (g *Game) BuyEventOption(playerID, eventName string) error {
	const action = "buy event option"
	p, err := g.actor(playerID)
	if err != nil {
		return g.reject(p, action, err)
	}
	known := false
	for _, e := range g.EventsAvailable {
		if e.Name == eventName {
			known = true
			break
		}
	}
	if !known {
		return g.reject(p, action, fmt.Errorf("%w: %s", ErrUnknownEvent, eventName))
	}
	r := g.Rules()
	if err := g.pay(p, r.OptionFee); err != nil {
		return g.reject(p, action, err)
	}
	p.Options = append(p.Options, EventOption{Event: eventName, Price: r.OptionFee, Payout: r.OptionPayout})
	g.Logf("%s bought an event option on %s for %d", p.Name, eventName, r.OptionFee)
	return nil
}

// ResolveFutures settles every token against each track's net change
// since the round started. Tokens neither matured nor spoiled are kept.
func (g *Game) ResolveFutures() {
	change := make(map[Track]int, len(g.Tracks))
	for t, it := range g.Tracks {
		change[t] = it.Level - g.RoundStartLevels[t]
	}
	for _, p := range g.Players {
		var kept []FutureToken
		for _, f := range p.Futures {
			c := change[f.Track]
			matured, spoiled := false, false
			if f.Long {
				matured, spoiled = c >= f.Threshold, c < 0
			} else {
				matured, spoiled = c <= -f.Threshold, c > 0
			}
			switch {
			case matured:
				p.Coin += f.Payout
				g.Logf("%s's %s future on %s matured (%+d): +%d", p.Name, f.direction(), f.Track, c, f.Payout)
			case spoiled:
				g.Logf("%s's %s future on %s spoiled (%+d)", p.Name, f.direction(), f.Track, c)
			default:
				kept = append(kept, f)
			}
		}
		p.Futures = kept
	}
}

func (g *Game) matureOptions(event string) {
	for _, p := range g.Players {
		var kept []EventOption
		for _, o := range p.Options {
			if o.Event != event {
				kept = append(kept, o)
				continue
			}
			o.Matured = true
			p.Coin += o.Payout
			g.Logf("%s's option on %s matured: +%d", p.Name, event, o.Payout)
		}
		p.Options = kept
	}
}
