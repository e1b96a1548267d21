package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/glide/internal/physics"
)

// Presets holds the named overrides applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	// pseudo-orbital validation under constant reduced gravity
	"orbital_test": func(c *Config) {
		c.GravityMode = physics.GravityLocal
		c.LocalG = 8.70
		c.RestLength = 300
		c.Segments = 40
		c.Modulus = 40e9
		c.LinearDensity = 1.8
		c.Dt = 0.05
		c.MaxSubstep = 0.005
		c.ConstraintIterations = 4
		c.EDTMode = physics.EDTDrag
		c.BatteryCapacity = 1e6
	},
	"engineering": func(c *Config) {
		c.RestLength = 250
		c.Segments = 25
		c.Modulus = 5e9
		c.LinearDensity = 1.6
		c.EDTMode = physics.EDTBoost
		c.EDTMaxCurrent = 0.5
		c.MaxTorque = 8
		c.BatteryCapacity = 2e6
		c.Dt = 0.005
		c.MaxSubstep = 0.005
		c.ConstraintIterations = 3
	},
	"local_demo": func(c *Config) {
		c.RestLength = 100
		c.Segments = 15
		c.GravityMode = physics.GravityLocal
		c.LocalG = physics.DefaultLocalG
		c.EDTMode = physics.EDTOff
		c.Dt = 0.005
		c.MaxSubstep = 0.005
		c.ConstraintIterations = 2
	},
}

// DefaultPreset is used when no preset is named.
const DefaultPreset = "engineering"

// Preset returns DefaultConfig with the named overrides applied.
func Preset(name string) (*Config, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	apply, ok := Presets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	apply(cfg)
	cfg.Preset = key
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
