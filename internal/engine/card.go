package engine

import (
	"log/slog"
	"strconv"
	"strings"
)

// Card is anything that lives in a deck.
type Card interface {
	CardID() string
	CardName() string
}

// Facility produces water.
type Facility struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Cost        int           `json:"cost"`
	BaseOutput  int           `json:"base_output"`
	Impact      ImpactProfile `json:"impact"`
	Mitigation  ImpactProfile `json:"mitigation,omitempty"` // removed from the owner's store per production
	Tags        []string      `json:"tags,omitempty"`
	Description string        `json:"description,omitempty"`
	Upgrades    []Upgrade     `json:"upgrades,omitempty"`
}

func (f Facility) CardID() string   { return f.ID }
func (f Facility) CardName() string { return f.Name }

// HasTag compares case-insensitively.
func (f *Facility) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Matches reports whether the facility is of the given kind, either by
// tag or by a word in its name ("Well" matches "Aquifer Well").
func (f *Facility) Matches(kind string) bool {
	if f.HasTag(kind) {
		return true
	}
	for _, w := range strings.Fields(f.Name) {
		if strings.EqualFold(w, kind) {
			return true
		}
	}
	return false
}

// BuildLimit returns n for a "LIMITED n" tag, or 0 when unlimited.
func (f *Facility) BuildLimit() int {
	for _, t := range f.Tags {
		if rest, ok := strings.CutPrefix(strings.ToUpper(t), "LIMITED"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				return n
			}
		}
	}
	return 0
}

// RouteModifier adds Amount impact on Track per PerUnits units sold.
type RouteModifier struct {
	Track    Track `json:"track" yaml:"track"`
	Amount   int   `json:"amount" yaml:"amount"`
	PerUnits int   `json:"per_units" yaml:"per_units"`
}

// SpecialExtraWhim grants an extra draft pick next round after a sale.
const SpecialExtraWhim = "draw_extra_whim_next_round"

// Distribution is a route for selling water.
type Distribution struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Cost        int             `json:"cost"`
	Description string          `json:"description,omitempty"`
	Modifiers   []RouteModifier `json:"modifiers,omitempty"`
	Special     string          `json:"special,omitempty"`
	Active      bool            `json:"active"`
	Upgrades    []Upgrade       `json:"upgrades,omitempty"`
}

func (d Distribution) CardID() string   { return d.ID }
func (d Distribution) CardName() string { return d.Name }

// UpgradeKind says what an upgrade attaches to.
type UpgradeKind string

const (
	UpgradeFacility UpgradeKind = "FACILITY_UPGRADE"
	UpgradeTag      UpgradeKind = "FACILITY_TAG"
	UpgradeRoute    UpgradeKind = "ROUTE_UPGRADE"
	UpgradeTech     UpgradeKind = "R&D"
)

// Upgrade mitigates impact once attached.
type Upgrade struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Cost        int         `json:"cost"`
	Kind        UpgradeKind `json:"kind"`
	Description string      `json:"description,omitempty"`
	EffectText  string      `json:"effect"`
	Effect      Effect      `json:"-"`
}

func (u Upgrade) CardID() string   { return u.ID }
func (u Upgrade) CardName() string { return u.Name }

// NewUpgrade builds an upgrade and parses its effect text. Unparseable text
// is logged and kept as a no-op.
func NewUpgrade(id, name string, cost int, kind UpgradeKind, description, effect string) Upgrade {
	u := Upgrade{ID: id, Name: name, Cost: cost, Kind: kind, Description: description, EffectText: effect}
	u.compile()
	return u
}

func (u *Upgrade) compile() {
	e, err := CompileEffect(u.EffectText)
	if err != nil {
		slog.Warn("upgrade effect ignored", "card", u.Name, "err", err)
	}
	u.Effect = e
}

// Whim is a drafted crowd card with a pre-round effect and a post-round fallout.
type Whim struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Trigger  string `json:"trigger,omitempty"`
	PreText  string `json:"pre_effect"`
	PostText string `json:"post_effect"`
	Pre      Effect `json:"-"`
	Post     Effect `json:"-"`
}

func (w Whim) CardID() string   { return w.ID }
func (w Whim) CardName() string { return w.Name }

// NewWhim builds a whim card and parses both statements.
func NewWhim(id, name, trigger, pre, post string) Whim {
	w := Whim{ID: id, Name: name, Trigger: trigger, PreText: pre, PostText: post}
	w.compile()
	return w
}

func (w *Whim) compile() {
	var err error
	if w.Pre, err = CompileEffect(w.PreText); err != nil {
		slog.Warn("whim effect ignored", "card", w.Name, "err", err)
	}
	if w.Post, err = CompileEffect(w.PostText); err != nil {
		slog.Warn("whim effect ignored", "card", w.Name, "err", err)
	}
}

// GlobalEvent is a tile that activates when its track reaches Threshold.
// A non-zero RecoverAt deactivates it once the track falls to that level.
type GlobalEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Track       Track  `json:"track"`
	Threshold   int    `json:"threshold"`
	Description string `json:"description,omitempty"`
	RecoverAt   int    `json:"recover_at,omitempty"`
}

func (e GlobalEvent) CardID() string   { return e.ID }
func (e GlobalEvent) CardName() string { return e.Name }
