package engine

// WhimDraft holds the state of the whim draft phase.
type WhimDraft struct {
	Active  bool           `json:"active"`
	Picks   map[string]int `json:"picks"`   // picks allotted per player this round
	Order   []string       `json:"order"`   // player IDs in snake order
	Cursor  int            `json:"cursor"`  // index into Order
	Options []Whim         `json:"options"` // cards currently offered
}

// SnakeOrder builds the pick order: the first pass runs in seat order,
// each later pass reverses direction and skips players with no picks left.
func SnakeOrder(seats []string, picks map[string]int) []string {
	total := 0
	for _, id := range seats {
		total += picks[id]
	}
	left := make(map[string]int, len(picks))
	for k, v := range picks {
		left[k] = v
	}

	order := make([]string, 0, total)
	forward := true
	for len(order) < total {
		for i := range seats {
			idx := i
			if !forward {
				idx = len(seats) - 1 - i
			}
			id := seats[idx]
			if left[id] > 0 {
				order = append(order, id)
				left[id]--
			}
		}
		forward = !forward
	}
	return order
}

// CurrentPickerID returns who should pick now.
func (d *WhimDraft) CurrentPickerID() string {
	if d.Cursor >= len(d.Order) {
		return ""
	}
	return d.Order[d.Cursor]
}

// PickNumber is the 1-based count of the current picker's picks so far,
// including this one.
func (d *WhimDraft) PickNumber() int {
	id := d.CurrentPickerID()
	n := 0
	for _, o := range d.Order[:min(d.Cursor+1, len(d.Order))] {
		if o == id {
			n++
		}
	}
	return n
}

// IsDone returns true when all picks are made.
func (d *WhimDraft) IsDone() bool {
	return d.Cursor >= len(d.Order)
}

// BeginWhimDraft allots picks and builds the snake order. A player's extra
// pick flag is consumed here. Whims left unrevealed in the crowd deck go to
// the discard, so the crowd deck only ever holds this round's picks.
func (g *Game) BeginWhimDraft() {
	g.Phase = PhaseWhimDraft
	if left := g.CrowdDeck.Clear(); len(left) > 0 {
		g.WhimDiscard.Return(left...)
		g.Logf("Unrevealed whims discarded from the Crowd Deck: %d", len(left))
	}
	picks := make(map[string]int, len(g.Players))
	seats := make([]string, len(g.Players))
	for i, p := range g.Players {
		seats[i] = p.ID
		picks[p.ID] = g.Rules().DraftPicks
		if p.ExtraWhim {
			picks[p.ID]++
			p.ExtraWhim = false
			g.Logf("%s gets an extra whim pick", p.Name)
		}
	}
	g.Draft = &WhimDraft{
		Active: true,
		Picks:  picks,
		Order:  SnakeOrder(seats, picks),
	}
	g.Logf("Whim Draft started: %d picks", len(g.Draft.Order))
}

// NextDraftPick advances to the next pick that can be offered and returns
// the picker, the offered cards and the picker's pick number. ok is false
// once the draft is over, at which point the crowd deck is shuffled.
func (g *Game) NextDraftPick() (p *Player, options []Whim, pick int, ok bool) {
	d := g.Draft
	if d == nil || !d.Active {
		return nil, nil, 0, false
	}
	for !d.IsDone() {
		p = g.GetPlayer(d.CurrentPickerID())
		if g.WhimSource.Len() == 0 && g.WhimDiscard.Len() > 0 {
			g.WhimSource.Return(g.WhimDiscard.Clear()...)
			g.WhimSource.Shuffle(g.rng)
			g.Logf("Whim source empty; reshuffled %d discarded whims", g.WhimSource.Len())
		}
		if g.WhimSource.Len() == 0 || p == nil {
			g.Logf("No whims left to offer; pick skipped")
			d.Cursor++
			continue
		}
		d.Options = g.WhimSource.Peek(g.Rules().DraftOptions)
		return p, append([]Whim(nil), d.Options...), d.PickNumber(), true
	}
	g.finishDraft()
	return nil, nil, 0, false
}

// SubmitDraftPick resolves the current pick. An index outside the offered
// options, including -1, passes; the cursor advances either way.
func (g *Game) SubmitDraftPick(playerID string, choice int) error {
	d := g.Draft
	if d == nil || !d.Active {
		return ErrWrongPhase
	}
	if d.CurrentPickerID() != playerID {
		return ErrNotYourTurn
	}
	p := g.GetPlayer(playerID)
	if choice >= 0 && choice < len(d.Options) {
		card, _ := g.WhimSource.Take(d.Options[choice].ID)
		g.CrowdDeck.Return(card)
		g.Logf("%s drafted %s into the Crowd Deck", p.Name, card.Name)
	} else if choice == -1 {
		g.Logf("%s passed on a whim pick", p.Name)
	} else {
		g.Logf("%s made an invalid whim pick (%d); skipped", p.Name, choice)
	}
	d.Options = nil
	d.Cursor++
	return nil
}

func (g *Game) finishDraft() {
	g.Draft.Active = false
	g.Draft.Options = nil
	g.CrowdDeck.Shuffle(g.rng)
	g.Logf("Whim Draft Concluded. Crowd Deck has %d cards.", g.CrowdDeck.Len())
}

// WhimDraftPhase runs the whole draft, asking d for each pick.
func (g *Game) WhimDraftPhase(d DecisionProvider) {
	g.BeginWhimDraft()
	for {
		p, options, pick, ok := g.NextDraftPick()
		if !ok {
			return
		}
		choice := g.askDraftPick(d, p, options, pick)
		_ = g.SubmitDraftPick(p.ID, choice)
	}
}
