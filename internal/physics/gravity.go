package physics

import (
	"fmt"

	"github.com/san-kum/glide/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultLocalG = 9.80665
	DefaultMu     = 3.986004418e14
	DefaultRadius = 6.371e6

	// inside this radius the orbital field is treated as zero
	minOrbitalRadius = 1.0
)

type GravityConfig struct {
	Mode GravityMode
	G0   float64
	Mu   float64
	// ReferenceRadius is carried for presets that place the origin at the
	// central body; the two-body field itself does not use it.
	ReferenceRadius float64
}

// GravityField is immutable after construction.
type GravityField struct {
	mode   GravityMode
	g0     float64
	mu     float64
	radius float64
}

func NewGravityField(cfg GravityConfig) (*GravityField, error) {
	if cfg.Mode != GravityLocal && cfg.Mode != GravityOrbital {
		return nil, fmt.Errorf("gravity mode %v: %w", cfg.Mode, dynamo.ErrParameterBounds)
	}
	if cfg.G0 < 0 || cfg.Mu < 0 {
		return nil, fmt.Errorf("gravity strength must be non-negative: %w", dynamo.ErrParameterBounds)
	}
	return &GravityField{
		mode:   cfg.Mode,
		g0:     cfg.G0,
		mu:     cfg.Mu,
		radius: cfg.ReferenceRadius,
	}, nil
}

func (g *GravityField) Mode() GravityMode        { return g.mode }
func (g *GravityField) G0() float64              { return g.g0 }
func (g *GravityField) Mu() float64              { return g.mu }
func (g *GravityField) ReferenceRadius() float64 { return g.radius }

// Acceleration returns the field at p.
func (g *GravityField) Acceleration(p dynamo.Vec) dynamo.Vec {
	if g.mode == GravityLocal {
		return dynamo.Vec{X: 0, Y: -g.g0}
	}

	r2sq := r2.Norm2(p)
	if r2sq < minOrbitalRadius*minOrbitalRadius {
		return dynamo.Vec{}
	}
	r := r2.Norm(p)
	return r2.Scale(-g.mu/(r*r*r), p)
}

// Potential returns the specific potential energy at p. The local mode uses
// g*y, so only differences are meaningful.
func (g *GravityField) Potential(p dynamo.Vec) float64 {
	if g.mode == GravityLocal {
		return g.g0 * p.Y
	}

	r2sq := r2.Norm2(p)
	if r2sq < minOrbitalRadius*minOrbitalRadius {
		return 0
	}
	return -g.mu / r2.Norm(p)
}

// AccelerationDifference returns a(p2) - a(p1), the tidal term between two points.
func (g *GravityField) AccelerationDifference(p1, p2 dynamo.Vec) dynamo.Vec {
	return r2.Sub(g.Acceleration(p2), g.Acceleration(p1))
}
