// Package catalog loads card and rules definitions from YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"waterbarons/internal/engine"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Action describes one ops action for decision providers.
type Action struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is a loaded card set plus rules.
type Catalog struct {
	Rules         engine.Rules
	Tracks        []engine.ImpactTrack
	Segments      []engine.DemandSegment
	Facilities    []engine.Facility
	Distributions []engine.Distribution
	Upgrades      []engine.Upgrade
	Whims         []engine.Whim
	Events        []engine.GlobalEvent
	Actions       []Action
}

type trackDef struct {
	Track      string         `yaml:"track"`
	Name       string         `yaml:"name"`
	Flavor     string         `yaml:"flavor"`
	MaxLevel   int            `yaml:"max_level"`
	Thresholds map[int]string `yaml:"thresholds"`
}

type segmentDef struct {
	Name           string         `yaml:"name"`
	Demand         int            `yaml:"demand"`
	Price          int            `yaml:"price"`
	Rule           string         `yaml:"rule"`
	RequiredRoutes []string       `yaml:"required_routes"`
	MaxImpact      map[string]int `yaml:"max_impact"`
	PremiumTag     string         `yaml:"premium_tag"`
	Premium        int            `yaml:"premium"`
}

type facilityDef struct {
	Name        string         `yaml:"name"`
	Copies      int            `yaml:"copies"`
	Cost        int            `yaml:"cost"`
	Output      int            `yaml:"output"`
	Impact      map[string]int `yaml:"impact"`
	Mitigation  map[string]int `yaml:"mitigation"`
	Tags        []string       `yaml:"tags"`
	Description string         `yaml:"description"`
}

type modifierDef struct {
	Track    string `yaml:"track"`
	Amount   int    `yaml:"amount"`
	PerUnits int    `yaml:"per_units"`
}

type distributionDef struct {
	Name        string        `yaml:"name"`
	Copies      int           `yaml:"copies"`
	Cost        int           `yaml:"cost"`
	Description string        `yaml:"description"`
	Modifiers   []modifierDef `yaml:"modifiers"`
	Special     string        `yaml:"special"`
}

type upgradeDef struct {
	Name        string `yaml:"name"`
	Copies      int    `yaml:"copies"`
	Cost        int    `yaml:"cost"`
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`
	Effect      string `yaml:"effect"`
}

type whimDef struct {
	Name    string `yaml:"name"`
	Copies  int    `yaml:"copies"`
	Trigger string `yaml:"trigger"`
	Pre     string `yaml:"pre"`
	Post    string `yaml:"post"`
}

type eventDef struct {
	Name        string `yaml:"name"`
	Track       string `yaml:"track"`
	Threshold   int    `yaml:"threshold"`
	RecoverAt   int    `yaml:"recover_at"`
	Description string `yaml:"description"`
}

type file struct {
	Rules         engine.Rules      `yaml:"rules"`
	Tracks        []trackDef        `yaml:"tracks"`
	Segments      []segmentDef      `yaml:"segments"`
	Facilities    []facilityDef     `yaml:"facilities"`
	Distributions []distributionDef `yaml:"distributions"`
	Upgrades      []upgradeDef      `yaml:"upgrades"`
	Whims         []whimDef         `yaml:"whims"`
	Events        []eventDef        `yaml:"events"`
	Actions       []Action          `yaml:"actions"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// LoadFile reads a catalog from path. An empty path loads the default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML. Rules missing from the document keep their defaults.
func Parse(data []byte) (*Catalog, error) {
	f := file{Rules: engine.DefaultRules()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return f.build()
}

// GameConfig returns a config for one game.
func (c *Catalog) GameConfig(seed uint64) engine.GameConfig {
	return engine.GameConfig{
		Rules:         c.Rules,
		Tracks:        c.Tracks,
		Segments:      c.Segments,
		Facilities:    c.Facilities,
		Distributions: c.Distributions,
		Upgrades:      c.Upgrades,
		Whims:         c.Whims,
		Events:        c.Events,
		Seed:          seed,
	}
}

func (f file) build() (*Catalog, error) {
	c := &Catalog{Rules: f.Rules, Actions: f.Actions}

	for _, d := range f.Tracks {
		t, err := engine.ParseTrack(d.Track)
		if err != nil {
			return nil, fmt.Errorf("%w: track: %v", ErrInvalidCatalog, err)
		}
		if d.MaxLevel <= 0 {
			d.MaxLevel = 10
		}
		c.Tracks = append(c.Tracks, engine.ImpactTrack{
			Track:      t,
			Name:       d.Name,
			Flavor:     d.Flavor,
			MaxLevel:   d.MaxLevel,
			Thresholds: d.Thresholds,
		})
	}
	if len(c.Tracks) == 0 {
		c.Tracks = engine.DefaultTracks()
	}

	for _, d := range f.Segments {
		maxImpact, err := profile(d.MaxImpact)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %s: %v", ErrInvalidCatalog, d.Name, err)
		}
		c.Segments = append(c.Segments, engine.DemandSegment{
			Name:           d.Name,
			Demand:         d.Demand,
			Price:          d.Price,
			Rule:           d.Rule,
			RequiredRoutes: d.RequiredRoutes,
			MaxImpact:      maxImpact,
			PremiumTag:     d.PremiumTag,
			Premium:        d.Premium,
		})
	}

	for _, d := range f.Facilities {
		impact, err := profile(d.Impact)
		if err != nil {
			return nil, fmt.Errorf("%w: facility %s: %v", ErrInvalidCatalog, d.Name, err)
		}
		mitigation, err := profile(d.Mitigation)
		if err != nil {
			return nil, fmt.Errorf("%w: facility %s: %v", ErrInvalidCatalog, d.Name, err)
		}
		for i := 1; i <= copies(d.Copies); i++ {
			c.Facilities = append(c.Facilities, engine.Facility{
				ID:          cardID("facility", d.Name, i),
				Name:        d.Name,
				Cost:        d.Cost,
				BaseOutput:  d.Output,
				Impact:      impact,
				Mitigation:  mitigation,
				Tags:        d.Tags,
				Description: d.Description,
			})
		}
	}

	for _, d := range f.Distributions {
		var mods []engine.RouteModifier
		for _, m := range d.Modifiers {
			t, err := engine.ParseTrack(m.Track)
			if err != nil {
				return nil, fmt.Errorf("%w: route %s: %v", ErrInvalidCatalog, d.Name, err)
			}
			mods = append(mods, engine.RouteModifier{Track: t, Amount: m.Amount, PerUnits: max(m.PerUnits, 1)})
		}
		for i := 1; i <= copies(d.Copies); i++ {
			c.Distributions = append(c.Distributions, engine.Distribution{
				ID:          cardID("route", d.Name, i),
				Name:        d.Name,
				Cost:        d.Cost,
				Description: d.Description,
				Modifiers:   mods,
				Special:     d.Special,
				Active:      true,
			})
		}
	}

	for _, d := range f.Upgrades {
		kind := engine.UpgradeKind(d.Kind)
		switch kind {
		case engine.UpgradeFacility, engine.UpgradeTag, engine.UpgradeRoute, engine.UpgradeTech:
		default:
			return nil, fmt.Errorf("%w: upgrade %s: unknown kind %q", ErrInvalidCatalog, d.Name, d.Kind)
		}
		for i := 1; i <= copies(d.Copies); i++ {
			c.Upgrades = append(c.Upgrades,
				engine.NewUpgrade(cardID("upgrade", d.Name, i), d.Name, d.Cost, kind, d.Description, d.Effect))
		}
	}

	for _, d := range f.Whims {
		for i := 1; i <= copies(d.Copies); i++ {
			c.Whims = append(c.Whims, engine.NewWhim(cardID("whim", d.Name, i), d.Name, d.Trigger, d.Pre, d.Post))
		}
	}

	for _, d := range f.Events {
		t, err := engine.ParseTrack(d.Track)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: %v", ErrInvalidCatalog, d.Name, err)
		}
		c.Events = append(c.Events, engine.GlobalEvent{
			ID:          cardID("event", d.Name, 1),
			Name:        d.Name,
			Track:       t,
			Threshold:   d.Threshold,
			RecoverAt:   d.RecoverAt,
			Description: d.Description,
		})
	}
	return c, nil
}

func profile(m map[string]int) (engine.ImpactProfile, error) {
	out := engine.ImpactProfile{}
	for k, v := range m {
		t, err := engine.ParseTrack(k)
		if err != nil {
			return nil, err
		}
		out[t] = v
	}
	return out, nil
}

func copies(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func cardID(kind, name string, n int) string {
	slug := strings.ToLower(strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}), "-"))
	return fmt.Sprintf("%s-%s-%d", kind, slug, n)
}
