package engine

// ApplyEffect runs a round statement (a whim's pre-round effect or fallout)
// against the game. Modifier statements and no-ops are logged and ignored;
// nothing here fails the surrounding phase.
func (g *Game) ApplyEffect(e Effect, source string) {
	switch e := e.(type) {
	case nil:
		return

	case DemandShift:
		seg := g.Segment(e.Segment)
		if seg == nil {
			g.Logf("  %s: no segment named %q; ignored", source, e.Segment)
			return
		}
		g.shiftSegment(seg, e.Field, e.Delta, source)

	case SegmentSweep:
		for _, seg := range g.Segments {
			g.shiftSegment(seg, e.Field, e.Delta, source)
		}

	case GlobalImpact:
		g.Logf("  %s: %s %+d", source, e.Track, e.Delta)
		g.AddGlobalImpact(e.Track, e.Delta, nil)

	case PlayerEffect:
		targets := g.selectPlayers(e.Selector)
		if len(targets) == 0 {
			g.Logf("  %s: no players matched", source)
			return
		}
		field := playerFields[e.Field]
		for _, p := range targets {
			v := field(p)
			*v += e.Delta
			g.Logf("  %s: %s %s %+d (now %d)", source, p.Name, e.Field, e.Delta, *v)
		}

	case Noop:
		g.Logf("  %s: unusable effect %q ignored (%s)", source, e.Raw, e.Reason)

	default:
		g.Logf("  %s: %q is not a round effect; ignored", source, e.Text())
	}
}

func (g *Game) shiftSegment(seg *DemandSegment, field SegmentField, delta int, source string) {
	v := segmentFields[field](seg)
	*v = max(*v+delta, 0)
	g.Logf("  %s: %s %s %+d (now %d)", source, seg.Name, field, delta, *v)
}

func (g *Game) selectPlayers(sel PlayerSelector) []*Player {
	if sel.BuyersOf == "" {
		return append([]*Player(nil), g.Players...)
	}
	var out []*Player
	for _, seg := range g.Segments {
		if !sel.matchesSegment(seg.Name) {
			continue
		}
		for _, id := range g.RoundSales[seg.Name] {
			if p := g.GetPlayer(id); p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

func (g *Game) markSale(segment, playerID string) {
	for _, id := range g.RoundSales[segment] {
		if id == playerID {
			return
		}
	}
	g.RoundSales[segment] = append(g.RoundSales[segment], playerID)
}
