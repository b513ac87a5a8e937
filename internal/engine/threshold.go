package engine

import "slices"

// ThresholdCheckPhase runs cleanup effects, settles futures, activates and
// lifts global events, toggles static threshold effects and checks whether
// the world has become uninhabitable.
func (g *Game) ThresholdCheckPhase() {
	g.Phase = PhaseThresholdCheck

	for _, p := range g.Players {
		for _, f := range p.Facilities {
			if f == nil {
				continue
			}
			for _, u := range f.Upgrades {
				e, ok := u.Effect.(CleanupReduction)
				if !ok || g.Tracks[e.Track] == nil || g.Tracks[e.Track].Level == 0 {
					continue
				}
				g.Logf("%s on %s's %s cleans up %d %s", u.Name, p.Name, f.Name, e.Amount, e.Track)
				g.AddGlobalImpact(e.Track, -e.Amount, nil)
			}
		}
	}

	g.ResolveFutures()

	for _, t := range AllTracks() {
		track, ok := g.Tracks[t]
		if !ok {
			continue
		}
		var due []GlobalEvent
		for _, e := range g.EventsAvailable {
			if e.Track == t && track.Level >= e.Threshold {
				due = append(due, e)
			}
		}
		for _, e := range due {
			g.activateEvent(e, nil)
		}
	}

	for _, e := range append([]GlobalEvent(nil), g.EventsActive...) {
		if g.eventRecovered(e) {
			g.deactivateEvent(e)
		}
	}

	for _, t := range AllTracks() {
		track, ok := g.Tracks[t]
		if !ok {
			continue
		}
		for _, level := range track.ThresholdLevels() {
			key := track.Thresholds[level]
			active := slices.Contains(g.ActiveEffects, key)
			switch {
			case track.Level >= level && !active:
				g.ActiveEffects = append(g.ActiveEffects, key)
				g.Logf("Threshold effect on: %s (%s at %d)", key, t, track.Level)
			case track.Level < level && active:
				g.ActiveEffects = slices.DeleteFunc(g.ActiveEffects, func(k string) bool { return k == key })
				g.Logf("Threshold effect off: %s (%s at %d)", key, t, track.Level)
			}
		}
	}

	maxed := 0
	for _, track := range g.Tracks {
		if track.AtMax() {
			maxed++
		}
	}
	if maxed >= max(g.Rules().UninhabitableAt, 1) && !g.Uninhabitable {
		g.Uninhabitable = true
		g.Logf("The planet is uninhabitable: %d tracks at maximum", maxed)
	}
}

func (g *Game) eventRecovered(e GlobalEvent) bool {
	if g.Hazards != nil {
		if h, err := g.Hazards.Get(e.Name); err == nil {
			if r, ok := h.(Recoverer); ok {
				return r.Recovered(g, e)
			}
		}
	}
	return e.RecoverAt > 0 && g.Tracks[e.Track] != nil && g.Tracks[e.Track].Level <= e.RecoverAt
}
