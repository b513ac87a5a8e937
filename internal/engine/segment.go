package engine

import "strings"

// DemandSegment is a customer group in the crowd phase.
type DemandSegment struct {
	Name   string `json:"name"`
	Demand int    `json:"demand"`
	Price  int    `json:"price"`
	Rule   string `json:"rule,omitempty"`

	// Sale rules. Empty values impose nothing.
	RequiredRoutes []string      `json:"required_routes,omitempty"`
	MaxImpact      ImpactProfile `json:"max_impact,omitempty"` // per-track cap on the batch's base impact
	PremiumTag     string        `json:"premium_tag,omitempty"`
	Premium        int           `json:"premium,omitempty"`
}

// SegmentBase is the demand and price a segment returns to every round.
type SegmentBase struct {
	Demand int `json:"demand"`
	Price  int `json:"price"`
}

// UnitPrice returns the price per unit for water with the given source tags.
func (s *DemandSegment) UnitPrice(tags []string) int {
	price := s.Price
	if s.PremiumTag != "" {
		for _, t := range tags {
			if t == s.PremiumTag {
				price += s.Premium
				break
			}
		}
	}
	return price
}

// Accepts checks the segment's own rules against a batch and a route.
func (s *DemandSegment) Accepts(b WaterBatch, route *Distribution) (bool, string) {
	if len(s.RequiredRoutes) > 0 {
		ok := false
		for _, name := range s.RequiredRoutes {
			if route != nil && route.Name == name {
				ok = true
				break
			}
		}
		if !ok {
			return false, s.Name + " only buy through " + strings.Join(s.RequiredRoutes, " or ")
		}
	}
	for t, limit := range s.MaxImpact {
		if b.Impact[t] > limit {
			return false, s.Name + " reject water above " + t.Label() + " limit"
		}
	}
	return true, ""
}

// DemandOpportunity is what a seller sees of a segment during sales.
type DemandOpportunity struct {
	Segment    string        `json:"segment"`
	Demand     int           `json:"demand"`
	Price      int           `json:"price"`
	Rule       string        `json:"rule,omitempty"`
	PremiumTag string        `json:"premium_tag,omitempty"`
	Premium    int           `json:"premium,omitempty"`
	MaxImpact  ImpactProfile `json:"max_impact,omitempty"`
}
