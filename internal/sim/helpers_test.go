package sim

import (
	"math"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/physics"
)

// springConfig describes a chain with per-segment stiffness k and node mass
// m, no gravity, no EDT and a braked winch.
func springConfig(segments int, segLen, k, m, zeta float64) *config.Config {
	d := 0.01
	area := math.Pi * d * d / 4

	cfg := config.DefaultConfig()
	cfg.Segments = segments
	cfg.RestLength = segLen * float64(segments)
	cfg.Diameter = d
	cfg.Modulus = k * segLen / area
	cfg.LinearDensity = m / segLen
	cfg.DampingRatio = zeta
	cfg.VelocityDecay = 0
	cfg.ConstraintIterations = 0
	cfg.GravityMode = physics.GravityLocal
	cfg.LocalG = 0
	cfg.EDTMode = physics.EDTOff
	cfg.WinchLocked = true
	cfg.Dt = 0.01
	cfg.MaxSubstep = 1e-4
	return cfg
}
