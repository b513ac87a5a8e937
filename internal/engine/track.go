package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Track identifies one of the four global impact tracks.
type Track int

const (
	TrackPink  Track = iota // microplastics
	TrackGrey               // carbon intensity
	TrackBlue               // depletion
	TrackGreen              // chemical residue
)

var trackNames = map[Track]string{
	TrackPink:  "PINK",
	TrackGrey:  "GREY",
	TrackBlue:  "BLUE",
	TrackGreen: "GREEN",
}

var trackLabels = map[Track]string{
	TrackPink:  "μP",
	TrackGrey:  "CO₂e",
	TrackBlue:  "DEP",
	TrackGreen: "TOX",
}

// AllTracks returns every track in consolidation order.
func AllTracks() []Track {
	return []Track{TrackPink, TrackGrey, TrackBlue, TrackGreen}
}

func (t Track) String() string {
	if s, ok := trackNames[t]; ok {
		return s
	}
	return "Unknown"
}

// Label is the short in-game abbreviation, e.g. "TOX".
func (t Track) Label() string {
	return trackLabels[t]
}

func (t Track) MarshalText() ([]byte, error) {
	if _, ok := trackNames[t]; !ok {
		return nil, fmt.Errorf("unknown track %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Track) UnmarshalText(b []byte) error {
	v, err := ParseTrack(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTrack accepts "PINK", "TrackColor.PINK", "pink" or a short label like "μP".
func ParseTrack(s string) (Track, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "TrackColor.")
	for t, name := range trackNames {
		if strings.EqualFold(s, name) || s == trackLabels[t] {
			return t, nil
		}
	}
	switch strings.ToUpper(s) {
	case "CO2E", "CO2":
		return TrackGrey, nil
	case "UP", "MP":
		return TrackPink, nil
	}
	return 0, fmt.Errorf("unknown track %q", s)
}

// ImpactProfile maps tracks to impact amounts.
type ImpactProfile map[Track]int

// Clone returns an independent copy.
func (ip ImpactProfile) Clone() ImpactProfile {
	out := make(ImpactProfile, len(ip))
	for k, v := range ip {
		out[k] = v
	}
	return out
}

// Total sums every track.
func (ip ImpactProfile) Total() int {
	n := 0
	for _, v := range ip {
		n += v
	}
	return n
}

// ImpactTrack is one global track with its static threshold effects.
type ImpactTrack struct {
	Track      Track          `json:"track"`
	Name       string         `json:"name"`
	Flavor     string         `json:"flavor,omitempty"`
	Level      int            `json:"level"`
	MaxLevel   int            `json:"max_level"`
	Thresholds map[int]string `json:"thresholds,omitempty"` // level -> effect key
}

// Add moves the level by n, clamped to [0, MaxLevel]. It reports whether
// the move crossed a threshold upward: old < T <= new for some T.
func (t *ImpactTrack) Add(n int) bool {
	old := t.Level
	t.Level = clamp(t.Level+n, 0, t.MaxLevel)
	for level := range t.Thresholds {
		if old < level && level <= t.Level {
			return true
		}
	}
	return false
}

// Reduce lowers the level by n, never below zero.
func (t *ImpactTrack) Reduce(n int) {
	t.Level = clamp(t.Level-n, 0, t.MaxLevel)
}

// AtMax reports whether the track is saturated.
func (t *ImpactTrack) AtMax() bool {
	return t.Level >= t.MaxLevel
}

// ThresholdLevels returns the threshold levels in ascending order.
func (t *ImpactTrack) ThresholdLevels() []int {
	levels := make([]int, 0, len(t.Thresholds))
	for l := range t.Thresholds {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
