package domain

import (
	"fmt"
	"sort"
)

// DiscoveryConfig is the optional manual configuration document. Zone
// boundaries are analysis boundaries, so a malformed document is fatal.
type DiscoveryConfig struct {
	Zones    map[string]ZoneEntry `yaml:"zones"    json:"zones,omitempty"`
	Layers   LayerRules           `yaml:"layers"   json:"layers,omitempty"`
	Settings Settings             `yaml:"settings" json:"settings,omitempty"`
}

// Settings are tool-level knobs, overridable via the settings block or the
// environment. Confidence boundaries are heuristics with no documented
// calibration, so they are configuration rather than constants.
type Settings struct {
	Thresholds  Thresholds `yaml:"thresholds"  json:"thresholds"`
	Parallelism int        `yaml:"parallelism" json:"parallelism,omitempty"`
	OutputDir   string     `yaml:"output_dir"  json:"output_dir,omitempty"`
}

// Thresholds carry the confidence and frequency boundaries used by the
// pattern extractor and convention inferrer.
type Thresholds struct {
	Detect       float64 `yaml:"detect"        json:"detect"`        // pattern counts as present
	AutoApply    float64 `yaml:"auto_apply"    json:"auto_apply"`    // safe for automatic downstream use
	AltFrequency float64 `yaml:"alt_frequency" json:"alt_frequency"` // alternative conventions below this are dropped
	Majority     float64 `yaml:"majority"      json:"majority"`      // statistical-majority signal cutoff
	MaxExamples  int     `yaml:"max_examples"  json:"max_examples"`  // code locations kept per detection
}

// DefaultThresholds returns the stock heuristic boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Detect:       0.3,
		AutoApply:    0.7,
		AltFrequency: 0.10,
		Majority:     0.70,
		MaxExamples:  5,
	}
}

// DefaultSettings returns stock settings: stock thresholds, one analysis task
// per zone bounded by four workers, output under .loam.
func DefaultSettings() Settings {
	return Settings{
		Thresholds:  DefaultThresholds(),
		Parallelism: 4,
		OutputDir:   ".loam",
	}
}

// LayerRules define the layer ordering (innermost first) and the
// allowed-reference table evaluated by the architecture mapper.
type LayerRules struct {
	Order   []string            `yaml:"order"   json:"order,omitempty"`
	Allowed map[string][]string `yaml:"allowed" json:"allowed,omitempty"`
	Aliases map[string]string   `yaml:"aliases" json:"aliases,omitempty"`
}

// DefaultLayerRules returns the classic onion table: inner layers may not
// depend on outer layers, each layer lists what it may reference.
func DefaultLayerRules() LayerRules {
	return LayerRules{
		Order: []string{"domain", "application", "infrastructure", "presentation"},
		Allowed: map[string][]string{
			"domain":         {},
			"application":    {"domain"},
			"infrastructure": {"domain", "application"},
			"presentation":   {"application", "infrastructure"},
		},
		Aliases: map[string]string{
			"domain":         "domain",
			"entities":       "domain",
			"model":          "domain",
			"models":         "domain",
			"application":    "application",
			"app":            "application",
			"services":       "application",
			"usecases":       "application",
			"use_cases":      "application",
			"infrastructure": "infrastructure",
			"infra":          "infrastructure",
			"adapters":       "infrastructure",
			"adapter":        "infrastructure",
			"persistence":    "infrastructure",
			"repositories":   "infrastructure",
			"data":           "infrastructure",
			"presentation":   "presentation",
			"api":            "presentation",
			"web":            "presentation",
			"ui":             "presentation",
			"http":           "presentation",
			"controllers":    "presentation",
			"handlers":       "presentation",
			"views":          "presentation",
		},
	}
}

// Canonical resolves a directory segment to its canonical layer name, or ""
// when the segment names no known layer.
func (r LayerRules) Canonical(segment string) string {
	return r.Aliases[segment]
}

// LayerIndex returns the position of a layer in the order, innermost = 0.
// Unknown layers return -1.
func (r LayerRules) LayerIndex(layer string) int {
	for i, l := range r.Order {
		if l == layer {
			return i
		}
	}
	return -1
}

// RefAllowed reports whether the from layer may reference the to layer.
// Same-layer references are always allowed.
func (r LayerRules) RefAllowed(from, to string) bool {
	if from == to {
		return true
	}
	for _, a := range r.Allowed[from] {
		if a == to {
			return true
		}
	}
	return false
}

// Severity classifies a disallowed edge: spanning the full stack from one end
// to the other is major, anything shorter is minor.
func (r LayerRules) Severity(from, to string) string {
	fi, ti := r.LayerIndex(from), r.LayerIndex(to)
	if fi < 0 || ti < 0 {
		return SeverityMinor
	}
	span := fi - ti
	if span < 0 {
		span = -span
	}
	if span >= len(r.Order)-1 {
		return SeverityMajor
	}
	return SeverityMinor
}

// Validate checks the configuration document. Zone paths must not be empty
// for non-excluded manual entries, and the layer table may only reference
// layers present in the order.
func (c DiscoveryConfig) Validate() error {
	for name, entry := range c.Zones {
		if name == "" {
			return fmt.Errorf("zone entry with empty name")
		}
		if !entry.Exclude && entry.Path == "" {
			return fmt.Errorf("zone %q: path is required unless exclude is set", name)
		}
	}

	if len(c.Layers.Order) > 0 {
		known := make(map[string]bool, len(c.Layers.Order))
		for _, l := range c.Layers.Order {
			if known[l] {
				return fmt.Errorf("layer %q listed twice in order", l)
			}
			known[l] = true
		}
		for from, refs := range c.Layers.Allowed {
			if !known[from] {
				return fmt.Errorf("allowed-reference table names unknown layer %q", from)
			}
			for _, to := range refs {
				if !known[to] {
					return fmt.Errorf("layer %q allows unknown layer %q", from, to)
				}
			}
		}
	}

	t := c.Settings.Thresholds
	for _, v := range []float64{t.Detect, t.AutoApply, t.AltFrequency, t.Majority} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %v outside [0,1]", v)
		}
	}
	if t.Detect > 0 && t.AutoApply > 0 && t.Detect > t.AutoApply {
		return fmt.Errorf("detect threshold %.2f above auto_apply threshold %.2f", t.Detect, t.AutoApply)
	}

	return nil
}

// EffectiveLayers returns the configured layer rules with defaults filled in
// for anything left unset.
func (c DiscoveryConfig) EffectiveLayers() LayerRules {
	def := DefaultLayerRules()
	rules := c.Layers
	if len(rules.Order) == 0 {
		rules.Order = def.Order
	}
	if len(rules.Allowed) == 0 {
		rules.Allowed = def.Allowed
	}
	if len(rules.Aliases) == 0 {
		rules.Aliases = def.Aliases
	}
	return rules
}

// EffectiveSettings returns the configured settings with defaults filled in.
func (c DiscoveryConfig) EffectiveSettings() Settings {
	def := DefaultSettings()
	s := c.Settings
	if s.Thresholds.Detect == 0 {
		s.Thresholds.Detect = def.Thresholds.Detect
	}
	if s.Thresholds.AutoApply == 0 {
		s.Thresholds.AutoApply = def.Thresholds.AutoApply
	}
	if s.Thresholds.AltFrequency == 0 {
		s.Thresholds.AltFrequency = def.Thresholds.AltFrequency
	}
	if s.Thresholds.Majority == 0 {
		s.Thresholds.Majority = def.Thresholds.Majority
	}
	if s.Thresholds.MaxExamples == 0 {
		s.Thresholds.MaxExamples = def.Thresholds.MaxExamples
	}
	if s.Parallelism <= 0 {
		s.Parallelism = def.Parallelism
	}
	if s.OutputDir == "" {
		s.OutputDir = def.OutputDir
	}
	return s
}

// SortedZoneNames returns manual zone names in stable order, for logs and
// deterministic merge reporting.
func (c DiscoveryConfig) SortedZoneNames() []string {
	names := make([]string, 0, len(c.Zones))
	for n := range c.Zones {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
