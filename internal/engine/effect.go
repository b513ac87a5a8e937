package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedEffect = errors.New("malformed effect")

// Effect is a parsed card effect statement. Each operation kind is its own
// type; Text returns the authoring form used for serialization.
type Effect interface {
	Text() string
}

// SegmentField selects a mutable attribute of a demand segment.
type SegmentField int

const (
	FieldDemand SegmentField = iota
	FieldPrice
)

var segmentFieldNames = map[string]SegmentField{
	"current_demand": FieldDemand,
	"demand":         FieldDemand,
	"current_price":  FieldPrice,
	"price":          FieldPrice,
}

var segmentFields = map[SegmentField]func(*DemandSegment) *int{
	FieldDemand: func(s *DemandSegment) *int { return &s.Demand },
	FieldPrice:  func(s *DemandSegment) *int { return &s.Price },
}

func (f SegmentField) String() string {
	if f == FieldPrice {
		return "price"
	}
	return "demand"
}

// PlayerField selects a mutable attribute of a player.
type PlayerField int

const (
	FieldCoin PlayerField = iota
	FieldReputation
)

var playerFieldNames = map[string]PlayerField{
	"cred_coin":        FieldCoin,
	"currency":         FieldCoin,
	"coin":             FieldCoin,
	"GainCurrency":     FieldCoin,
	"reputation_stars": FieldReputation,
	"reputation":       FieldReputation,
	"GainReputation":   FieldReputation,
}

var playerFields = map[PlayerField]func(*Player) *int{
	FieldCoin:       func(p *Player) *int { return &p.Coin },
	FieldReputation: func(p *Player) *int { return &p.Reputation },
}

func (f PlayerField) String() string {
	if f == FieldReputation {
		return "reputation"
	}
	return "coin"
}

// PlayerSelector picks the players a PlayerEffect applies to. An empty
// BuyersOf means every player.
type PlayerSelector struct {
	BuyersOf string
}

// DemandShift changes one named segment's demand or price.
type DemandShift struct {
	Raw     string
	Segment string
	Field   SegmentField
	Delta   int
}

// SegmentSweep changes the same attribute on every segment.
type SegmentSweep struct {
	Raw   string
	Field SegmentField
	Delta int
}

// GlobalImpact moves a global track. Positive deltas go through the normal
// threshold and event-activation path.
type GlobalImpact struct {
	Raw   string
	Track Track
	Delta int
}

// PlayerEffect changes an attribute on a dynamic subset of players.
type PlayerEffect struct {
	Raw      string
	Selector PlayerSelector
	Field    PlayerField
	Delta    int
}

// FlowImpactReduction lowers the impact of every unit of flow at the
// facility it is attached to.
type FlowImpactReduction struct {
	Raw    string
	Track  Track
	Amount int
}

// SaleImpactRemoval removes stored impact from the seller when water moves
// through the route it is attached to.
type SaleImpactRemoval struct {
	Raw    string
	Track  Track
	Amount int
}

// CleanupReduction lowers a global track during the threshold check.
type CleanupReduction struct {
	Raw    string
	Track  Track
	Amount int
}

// TagImpactReduction lowers production impact at every owned facility
// carrying Tag.
type TagImpactReduction struct {
	Raw    string
	Tag    string
	Track  Track
	Amount int
}

// Noop stands in for text that could not be parsed.
type Noop struct {
	Raw    string
	Reason string
}

func (e DemandShift) Text() string         { return e.Raw }
func (e SegmentSweep) Text() string        { return e.Raw }
func (e GlobalImpact) Text() string        { return e.Raw }
func (e PlayerEffect) Text() string        { return e.Raw }
func (e FlowImpactReduction) Text() string { return e.Raw }
func (e SaleImpactRemoval) Text() string   { return e.Raw }
func (e CleanupReduction) Text() string    { return e.Raw }
func (e TagImpactReduction) Text() string  { return e.Raw }
func (e Noop) Text() string                { return e.Raw }

// ParseEffect parses either a colon-separated round statement
// ("GlobalImpact:PINK:+2") or a call-form modifier
// ("Apply_to_facility: reduce_impact_per_flow(TrackColor.PINK, 1)").
// Empty text parses to nil.
func ParseEffect(text string) (Effect, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, nil
	}
	if strings.Contains(s, "(") {
		return parseCall(s)
	}
	return parseStatement(s)
}

// CompileEffect parses text and never fails: bad text becomes a Noop.
func CompileEffect(text string) (Effect, error) {
	e, err := ParseEffect(text)
	if err != nil {
		return Noop{Raw: text, Reason: err.Error()}, err
	}
	return e, nil
}

func parseStatement(s string) (Effect, error) {
	parts := strings.Split(s, ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	bad := func(why string) error {
		return fmt.Errorf("%w: %q: %s", ErrMalformedEffect, s, why)
	}

	switch parts[0] {
	case "DemandSegment":
		if len(parts) != 4 {
			return nil, bad("want DemandSegment:<name>:<attribute>:<n>")
		}
		field, ok := segmentFieldNames[parts[2]]
		if !ok {
			return nil, bad("unknown segment attribute " + parts[2])
		}
		n, err := parseSigned(parts[3])
		if err != nil {
			return nil, bad(err.Error())
		}
		return DemandShift{Raw: s, Segment: parts[1], Field: field, Delta: n}, nil

	case "AllSegments":
		if len(parts) != 3 {
			return nil, bad("want AllSegments:<attribute>:<n>")
		}
		field, ok := segmentFieldNames[parts[1]]
		if !ok {
			return nil, bad("unknown segment attribute " + parts[1])
		}
		n, err := parseSigned(parts[2])
		if err != nil {
			return nil, bad(err.Error())
		}
		return SegmentSweep{Raw: s, Field: field, Delta: n}, nil

	case "GlobalImpact":
		if len(parts) != 3 {
			return nil, bad("want GlobalImpact:<track>:<n>")
		}
		track, err := ParseTrack(parts[1])
		if err != nil {
			return nil, bad(err.Error())
		}
		n, err := parseSigned(parts[2])
		if err != nil {
			return nil, bad(err.Error())
		}
		return GlobalImpact{Raw: s, Track: track, Delta: n}, nil

	case "PlayerEffect":
		if len(parts) != 4 {
			return nil, bad("want PlayerEffect:<selector>:<attribute>:<n>")
		}
		sel, err := parseSelector(parts[1])
		if err != nil {
			return nil, bad(err.Error())
		}
		field, ok := playerFieldNames[parts[2]]
		if !ok {
			return nil, bad("unknown player attribute " + parts[2])
		}
		n, err := parseSigned(parts[3])
		if err != nil {
			return nil, bad(err.Error())
		}
		return PlayerEffect{Raw: s, Selector: sel, Field: field, Delta: n}, nil
	}
	return nil, bad("unknown statement type " + parts[0])
}

func parseCall(s string) (Effect, error) {
	bad := func(why string) error {
		return fmt.Errorf("%w: %q: %s", ErrMalformedEffect, s, why)
	}
	call := s
	// Drop a scope prefix such as "Apply_to_facility:".
	if i := strings.Index(call, ":"); i >= 0 && i < strings.Index(call, "(") {
		call = strings.TrimSpace(call[i+1:])
	}
	open := strings.Index(call, "(")
	if !strings.HasSuffix(call, ")") {
		return nil, bad("unterminated call")
	}
	op := strings.TrimSpace(call[:open])
	var args []string
	for _, a := range strings.Split(call[open+1:len(call)-1], ",") {
		args = append(args, strings.Trim(strings.TrimSpace(a), `'"`))
	}

	trackAmount := func(trackArg, amountArg string) (Track, int, error) {
		t, err := ParseTrack(trackArg)
		if err != nil {
			return 0, 0, err
		}
		n, err := strconv.Atoi(amountArg)
		if err != nil {
			return 0, 0, fmt.Errorf("bad amount %q", amountArg)
		}
		return t, n, nil
	}

	switch op {
	case "reduce_impact_per_flow", "on_sell_remove_impact", "at_cleanup_reduce_global_impact":
		if len(args) != 2 {
			return nil, bad("want (track, amount)")
		}
		t, n, err := trackAmount(args[0], args[1])
		if err != nil {
			return nil, bad(err.Error())
		}
		switch op {
		case "reduce_impact_per_flow":
			return FlowImpactReduction{Raw: s, Track: t, Amount: n}, nil
		case "on_sell_remove_impact":
			return SaleImpactRemoval{Raw: s, Track: t, Amount: n}, nil
		default:
			return CleanupReduction{Raw: s, Track: t, Amount: n}, nil
		}
	case "reduce_facility_impact_type":
		if len(args) != 3 {
			return nil, bad("want (tag, track, amount)")
		}
		t, n, err := trackAmount(args[1], args[2])
		if err != nil {
			return nil, bad(err.Error())
		}
		return TagImpactReduction{Raw: s, Tag: args[0], Track: t, Amount: n}, nil
	}
	return nil, bad("unknown operation " + op)
}

func parseSigned(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	return n, nil
}

func parseSelector(s string) (PlayerSelector, error) {
	if s == "AllPlayers" || s == "All" {
		return PlayerSelector{}, nil
	}
	if name, ok := strings.CutSuffix(s, "Buyers"); ok && name != "" {
		return PlayerSelector{BuyersOf: name}, nil
	}
	return PlayerSelector{}, fmt.Errorf("unknown selector %q", s)
}

// matchesSegment reports whether a selector prefix such as "EcoElite"
// names the segment "Eco-Elites".
func (ps PlayerSelector) matchesSegment(segment string) bool {
	a, b := normalizeName(ps.BuyersOf), normalizeName(segment)
	return a == b || a+"s" == b
}

func normalizeName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
