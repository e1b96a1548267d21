package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/glide/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Segments != 25 || cfg.RestLength != 200 {
		t.Errorf("expected N=25 L0=200, got N=%d L0=%g", cfg.Segments, cfg.RestLength)
	}
	if cfg.EDTMode != physics.EDTOff {
		t.Errorf("expected EDT off, got %v", cfg.EDTMode)
	}
	if cfg.BatteryInitialSoC != 1 {
		t.Errorf("expected full battery, got %g", cfg.BatteryInitialSoC)
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		dt       float64
		edt      physics.EDTMode
		g        float64
	}{
		{"local_demo", 15, 0.005, physics.EDTOff, physics.DefaultLocalG},
		{"orbital_test", 40, 0.05, physics.EDTDrag, 8.70},
		{"engineering", 25, 0.005, physics.EDTBoost, physics.DefaultLocalG},
		{"  Engineering ", 25, 0.005, physics.EDTBoost, physics.DefaultLocalG},
	}

	for _, tt := range tests {
		cfg, err := Preset(tt.name)
		if err != nil {
			t.Fatalf("Preset(%q): %v", tt.name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: invalid: %v", tt.name, err)
		}
		if cfg.Segments != tt.segments || cfg.Dt != tt.dt || cfg.EDTMode != tt.edt || cfg.LocalG != tt.g {
			t.Errorf("%s: got N=%d dt=%g edt=%v g=%g", tt.name, cfg.Segments, cfg.Dt, cfg.EDTMode, cfg.LocalG)
		}
	}
}

func TestPresetNotFound(t *testing.T) {
	_, err := Preset("nonexistent")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresetsDoNotShareState(t *testing.T) {
	a, _ := Preset("engineering")
	a.BField[2] = 1
	b, _ := Preset("engineering")
	if b.BField[2] == 1 {
		t.Error("presets share the field slice")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"engineering", "local_demo", "orbital_test"}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"no segments", func(c *Config) { c.Segments = 0 }},
		{"negative length", func(c *Config) { c.RestLength = -1 }},
		{"zero diameter", func(c *Config) { c.Diameter = 0 }},
		{"zero density", func(c *Config) { c.LinearDensity = 0 }},
		{"negative damping", func(c *Config) { c.DampingRatio = -0.1 }},
		{"negative iterations", func(c *Config) { c.ConstraintIterations = -1 }},
		{"substep ratio", func(c *Config) { c.Dt = 1; c.MaxSubstep = 1e-12 }},
		{"zero inertia", func(c *Config) { c.RotorInertia = 0 }},
		{"efficiency above one", func(c *Config) { c.Efficiency = 1.2 }},
		{"zero efficiency", func(c *Config) { c.Efficiency = 0 }},
		{"field length", func(c *Config) { c.BField = []float64{1} }},
		{"soc", func(c *Config) { c.BatteryInitialSoC = 1.5 }},
		{"bad edt mode", func(c *Config) { c.EDTMode = physics.EDTMode(9) }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestLoadWithPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glide.yaml")
	data := []byte("preset: orbital_test\nN: 10\nEDT_mode: Boost\nB_vec: [0, 2.0e-5]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Segments != 10 {
		t.Errorf("file key should override preset, N=%d", cfg.Segments)
	}
	if cfg.RestLength != 300 || cfg.Dt != 0.05 {
		t.Errorf("preset values lost: L0=%g dt=%g", cfg.RestLength, cfg.Dt)
	}
	if cfg.EDTMode != physics.EDTBoost {
		t.Errorf("mode = %v", cfg.EDTMode)
	}
	if len(cfg.BField) != 2 {
		t.Errorf("B_vec = %v", cfg.BField)
	}
}

func TestParsePresetKeyNormalized(t *testing.T) {
	cfg, err := Parse([]byte("preset: '  Engineering '\nN: 4\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Preset != "engineering" {
		t.Errorf("Preset = %q, want engineering", cfg.Preset)
	}
	if cfg.Segments != 4 {
		t.Errorf("N = %d, want 4", cfg.Segments)
	}

	cfg, err = Parse([]byte("N: 4\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Preset != "" {
		t.Errorf("Preset = %q, want empty without a preset key", cfg.Preset)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		yaml string
		want error
	}{
		{"preset: lunar\n", ErrUnknownPreset},
		{"gravity_mode: flat\n", ErrInvalidConfig},
		{"dt: -1\n", ErrInvalidConfig},
		{"N: [1, 2]\n", ErrInvalidConfig},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.yaml, err, tt.want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg, _ := Preset("local_demo")
	cfg.WinchLocked = true
	cfg.GravityMode = physics.GravityOrbital

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.WinchLocked || got.GravityMode != physics.GravityOrbital || got.Segments != 15 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestDerivedSubsystemConfigs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WinchLocked = true

	if cfg.MotorConfig().Inertia != cfg.RotorInertia || !cfg.MotorConfig().Locked {
		t.Error("motor config not mapped")
	}
	edt := cfg.EDTConfig()
	edt.Field[2] = 0
	if cfg.BField[2] == 0 {
		t.Error("EDT config aliases B_vec")
	}
	if cfg.TetherConfig().Segments != cfg.Segments || cfg.GravityConfig().G0 != cfg.LocalG {
		t.Error("tether or gravity config not mapped")
	}
}
