package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/glide/internal/physics"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	DefaultDt                   = 0.01
	DefaultMaxSubstep           = 0.005
	DefaultConstraintIterations = 3
	DefaultBatteryCapacity      = 5e5
	DefaultLogInterval          = 1.0
	DefaultDuration             = 60.0

	// MaxSubsteps bounds dt / tether_max_substep_dt.
	MaxSubsteps = 1_000_000
)

// Config is the flat engine parameter set. Keys follow the names used in
// GLIDE configuration files.
type Config struct {
	Preset string `yaml:"preset,omitempty"`

	Dt float64 `yaml:"dt"`

	Segments             int     `yaml:"N"`
	RestLength           float64 `yaml:"L0"`
	Modulus              float64 `yaml:"E"`
	Diameter             float64 `yaml:"d"`
	LinearDensity        float64 `yaml:"rho_l"`
	DampingRatio         float64 `yaml:"tether_damping_ratio"`
	MaxSubstep           float64 `yaml:"tether_max_substep_dt"`
	ConstraintIterations int     `yaml:"constraint_iterations"`
	VelocityDecay        float64 `yaml:"numerical_vel_decay_per_s"`
	VelocityLimit        float64 `yaml:"velocity_limit"`

	SpoolRadius  float64 `yaml:"R_spool"`
	RotorInertia float64 `yaml:"J_m"`
	MaxTorque    float64 `yaml:"tau_max"`
	MotorDamping float64 `yaml:"b_m"`
	Efficiency   float64 `yaml:"eta"`
	MotorGain    float64 `yaml:"motor_kp"`
	WinchLocked  bool    `yaml:"winch_locked"`

	GravityMode physics.GravityMode `yaml:"gravity_mode"`
	LocalG      float64             `yaml:"local_g"`
	Mu          float64             `yaml:"mu"`
	EarthRadius float64             `yaml:"R_earth"`

	EDTLength     float64         `yaml:"EDT_L"`
	BField        []float64       `yaml:"B_vec,flow"`
	EDTResistance float64         `yaml:"EDT_R"`
	EDTMaxCurrent float64         `yaml:"EDT_Imax"`
	EDTMode       physics.EDTMode `yaml:"EDT_mode"`

	BatteryCapacity   float64 `yaml:"battery_capacity_J"`
	BatteryInitialSoC float64 `yaml:"battery_initial_soc"`

	LogInterval   float64 `yaml:"log_interval"`
	SaveEnergyCSV bool    `yaml:"save_energy_csv"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt: DefaultDt,

		Segments:             physics.DefaultSegments,
		RestLength:           physics.DefaultRestLength,
		Modulus:              physics.DefaultModulus,
		Diameter:             physics.DefaultDiameter,
		LinearDensity:        physics.DefaultLinearDensity,
		DampingRatio:         physics.DefaultDampingRatio,
		MaxSubstep:           DefaultMaxSubstep,
		ConstraintIterations: DefaultConstraintIterations,

		SpoolRadius:  physics.DefaultSpoolRadius,
		RotorInertia: physics.DefaultInertia,
		MaxTorque:    physics.DefaultMaxTorque,
		MotorDamping: physics.DefaultMotorDamp,
		Efficiency:   physics.DefaultEfficiency,
		MotorGain:    physics.DefaultMotorGain,

		GravityMode: physics.GravityLocal,
		LocalG:      physics.DefaultLocalG,
		Mu:          physics.DefaultMu,
		EarthRadius: physics.DefaultRadius,

		EDTLength:     physics.DefaultEDTLength,
		BField:        []float64{0, 0, physics.DefaultFieldZ},
		EDTResistance: physics.DefaultEDTResistance,
		EDTMaxCurrent: physics.DefaultEDTMaxCurrent,
		EDTMode:       physics.EDTOff,

		BatteryCapacity:   DefaultBatteryCapacity,
		BatteryInitialSoC: 1,

		LogInterval:   DefaultLogInterval,
		SaveEnergyCSV: true,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.BField = append([]float64(nil), c.BField...)
	return &cp
}

// Validate reports the first out-of-range parameter wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Dt > 0, fmt.Sprintf("dt must be positive, got %g", c.Dt)},
		{c.Segments >= 1, fmt.Sprintf("N must be at least 1, got %d", c.Segments)},
		{c.RestLength > 0, fmt.Sprintf("L0 must be positive, got %g", c.RestLength)},
		{c.Modulus > 0, fmt.Sprintf("E must be positive, got %g", c.Modulus)},
		{c.Diameter > 0, fmt.Sprintf("d must be positive, got %g", c.Diameter)},
		{c.LinearDensity > 0, fmt.Sprintf("rho_l must be positive, got %g", c.LinearDensity)},
		{c.DampingRatio >= 0, fmt.Sprintf("tether_damping_ratio must be non-negative, got %g", c.DampingRatio)},
		{c.MaxSubstep >= 0, fmt.Sprintf("tether_max_substep_dt must be non-negative, got %g", c.MaxSubstep)},
		{c.MaxSubstep == 0 || c.Dt/c.MaxSubstep <= MaxSubsteps, fmt.Sprintf("dt / tether_max_substep_dt exceeds %d sub-steps", MaxSubsteps)},
		{c.ConstraintIterations >= 0, fmt.Sprintf("constraint_iterations must be non-negative, got %d", c.ConstraintIterations)},
		{c.VelocityDecay >= 0, fmt.Sprintf("numerical_vel_decay_per_s must be non-negative, got %g", c.VelocityDecay)},
		{c.VelocityLimit >= 0, fmt.Sprintf("velocity_limit must be non-negative, got %g", c.VelocityLimit)},
		{c.SpoolRadius >= 0, fmt.Sprintf("R_spool must be non-negative, got %g", c.SpoolRadius)},
		{c.RotorInertia > 0, fmt.Sprintf("J_m must be positive, got %g", c.RotorInertia)},
		{c.MaxTorque >= 0, fmt.Sprintf("tau_max must be non-negative, got %g", c.MaxTorque)},
		{c.Efficiency > 0 && c.Efficiency <= 1, fmt.Sprintf("eta must be in (0, 1], got %g", c.Efficiency)},
		{c.MotorGain >= 0, fmt.Sprintf("motor_kp must be non-negative, got %g", c.MotorGain)},
		{c.GravityMode == physics.GravityLocal || c.GravityMode == physics.GravityOrbital, fmt.Sprintf("gravity_mode %v", c.GravityMode)},
		{c.LocalG >= 0 && c.Mu >= 0, "local_g and mu must be non-negative"},
		{len(c.BField) == 2 || len(c.BField) == 3, fmt.Sprintf("B_vec must have 2 or 3 components, got %d", len(c.BField))},
		{c.EDTLength >= 0 && c.EDTResistance >= 0 && c.EDTMaxCurrent >= 0, "EDT_L, EDT_R and EDT_Imax must be non-negative"},
		{c.EDTMode >= physics.EDTOff && c.EDTMode <= physics.EDTDrag, fmt.Sprintf("EDT_mode %v", c.EDTMode)},
		{c.BatteryCapacity >= 0, fmt.Sprintf("battery_capacity_J must be non-negative, got %g", c.BatteryCapacity)},
		{c.BatteryInitialSoC >= 0 && c.BatteryInitialSoC <= 1, fmt.Sprintf("battery_initial_soc must be in [0, 1], got %g", c.BatteryInitialSoC)},
		{c.LogInterval >= 0, fmt.Sprintf("log_interval must be non-negative, got %g", c.LogInterval)},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, ch.msg)
		}
	}
	return nil
}

// Load reads a YAML file. A top-level preset key selects the base set that
// the file's remaining keys override.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if head.Preset != "" {
		p, err := Preset(head.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	preset := cfg.Preset
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Preset = preset
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) TetherConfig() physics.TetherConfig {
	return physics.TetherConfig{
		Segments:      c.Segments,
		RestLength:    c.RestLength,
		Modulus:       c.Modulus,
		Diameter:      c.Diameter,
		LinearDensity: c.LinearDensity,
		DampingRatio:  c.DampingRatio,
		VelocityDecay: c.VelocityDecay,
	}
}

func (c *Config) MotorConfig() physics.MotorConfig {
	return physics.MotorConfig{
		SpoolRadius: c.SpoolRadius,
		Inertia:     c.RotorInertia,
		MaxTorque:   c.MaxTorque,
		Damping:     c.MotorDamping,
		Efficiency:  c.Efficiency,
		Gain:        c.MotorGain,
		Locked:      c.WinchLocked,
	}
}

func (c *Config) EDTConfig() physics.EDTConfig {
	return physics.EDTConfig{
		Length:     c.EDTLength,
		Field:      append([]float64(nil), c.BField...),
		Resistance: c.EDTResistance,
		MaxCurrent: c.EDTMaxCurrent,
		Mode:       c.EDTMode,
	}
}

func (c *Config) GravityConfig() physics.GravityConfig {
	return physics.GravityConfig{
		Mode:            c.GravityMode,
		G0:              c.LocalG,
		Mu:              c.Mu,
		ReferenceRadius: c.EarthRadius,
	}
}
