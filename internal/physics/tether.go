package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/glide/internal/dynamo"
	"github.com/san-kum/glide/internal/integrators"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultSegments      = 25
	DefaultRestLength    = 200.0
	DefaultModulus       = 30e9
	DefaultDiameter      = 0.005
	DefaultLinearDensity = 1.5
	DefaultDampingRatio  = 0.05

	// segments shorter than this carry no force and get no correction
	minSegmentLength = 1e-12
)

type TetherConfig struct {
	Segments      int     // N; the chain has N+1 nodes
	RestLength    float64 // L0, total
	Modulus       float64 // E, Pa
	Diameter      float64 // d, m
	LinearDensity float64 // kg/m
	DampingRatio  float64 // fraction of critical, per segment
	// VelocityDecay is a numerical stabilizer in 1/s. Zero keeps pure physics.
	VelocityDecay float64
}

// Tether is a chain of point masses joined by axial spring-dampers.
// Node 0 is the anchor: it is never integrated and its kinematics come only
// from AnchorUpdate. Node N is the payload tip.
type Tether struct {
	n      int
	segLen float64
	k      float64
	c      float64
	mass   float64
	decay  float64

	pos   []dynamo.Vec
	vel   []dynamo.Vec
	prev  []dynamo.Vec
	force []dynamo.Vec
}

func NewTether(cfg TetherConfig) (*Tether, error) {
	if cfg.Segments < 1 {
		return nil, fmt.Errorf("tether needs at least one segment, got %d: %w", cfg.Segments, dynamo.ErrParameterBounds)
	}
	if cfg.RestLength <= 0 || cfg.Diameter <= 0 || cfg.Modulus <= 0 || cfg.LinearDensity <= 0 {
		return nil, fmt.Errorf("tether length, diameter, modulus and density must be positive: %w", dynamo.ErrParameterBounds)
	}
	if cfg.DampingRatio < 0 {
		return nil, fmt.Errorf("damping ratio %g: %w", cfg.DampingRatio, dynamo.ErrParameterBounds)
	}

	segLen := cfg.RestLength / float64(cfg.Segments)
	area := math.Pi * (cfg.Diameter / 2) * (cfg.Diameter / 2)
	k := cfg.Modulus * area / segLen
	mass := cfg.LinearDensity * segLen

	t := &Tether{
		n:      cfg.Segments,
		segLen: segLen,
		k:      k,
		c:      2 * math.Sqrt(k*mass) * cfg.DampingRatio,
		mass:   mass,
		decay:  math.Max(0, cfg.VelocityDecay),
		pos:    make([]dynamo.Vec, cfg.Segments+1),
		vel:    make([]dynamo.Vec, cfg.Segments+1),
		prev:   make([]dynamo.Vec, cfg.Segments+1),
		force:  make([]dynamo.Vec, cfg.Segments+1),
	}

	// hanging straight down from the origin at rest length
	for i := range t.pos {
		t.pos[i] = dynamo.Vec{X: 0, Y: -float64(i) * segLen}
	}
	copy(t.prev, t.pos)
	return t, nil
}

// Place sets the node positions and zeroes all velocities.
func (t *Tether) Place(positions []dynamo.Vec) error {
	if len(positions) != len(t.pos) {
		return fmt.Errorf("got %d positions for %d nodes: %w", len(positions), len(t.pos), dynamo.ErrDimensionMismatch)
	}
	copy(t.pos, positions)
	copy(t.prev, positions)
	for i := range t.vel {
		t.vel[i] = dynamo.Vec{}
		t.force[i] = dynamo.Vec{}
	}
	return nil
}

// AnchorUpdate overwrites node 0's kinematics.
func (t *Tether) AnchorUpdate(pos, vel dynamo.Vec) {
	t.pos[0] = pos
	t.vel[0] = vel
}

// ComputeInternalForces resets the force buffer to the spring-damper forces
// of every segment and returns a copy of it.
func (t *Tether) ComputeInternalForces() []dynamo.Vec {
	for i := range t.force {
		t.force[i] = dynamo.Vec{}
	}

	for i := 0; i < t.n; i++ {
		r := r2.Sub(t.pos[i+1], t.pos[i])
		l := r2.Norm(r)
		if l < minSegmentLength {
			continue
		}

		u := r2.Scale(1/l, r)
		stretch := l - t.segLen
		relVel := r2.Dot(r2.Sub(t.vel[i+1], t.vel[i]), u)

		// force on node i+1; node i gets the reaction
		f := r2.Scale(-t.k*stretch-t.c*relVel, u)
		t.force[i] = r2.Sub(t.force[i], f)
		t.force[i+1] = r2.Add(t.force[i+1], f)
	}

	return t.Forces()
}

// AddExternalForces accumulates per-node forces onto the current buffer.
// Extra entries beyond the node count are ignored.
func (t *Tether) AddExternalForces(ext []dynamo.Vec) {
	for i := 0; i < len(ext) && i < len(t.force); i++ {
		t.force[i] = r2.Add(t.force[i], ext[i])
	}
}

// ApplyForceToPayload adds f to the tip node only.
func (t *Tether) ApplyForceToPayload(f dynamo.Vec) {
	t.force[t.n] = r2.Add(t.force[t.n], f)
}

// Integrate advances all free nodes by dt with semi-implicit Euler.
func (t *Tether) Integrate(dt float64) {
	if dt <= 0 {
		return
	}
	copy(t.prev, t.pos)
	integrators.SemiImplicitEuler(t.pos, t.vel, t.force, t.mass, dt, 1)
	integrators.Decay(t.vel, t.decay, dt, 1)
}

// EnforceConstraints runs Gauss-Seidel length projections and then derives
// free-node velocities from the net displacement since the last Integrate,
// so the projection cannot add kinetic energy on its own.
func (t *Tether) EnforceConstraints(dt float64, iterations int) {
	if dt <= 0 || iterations <= 0 {
		return
	}

	anchor := t.pos[0]
	for it := 0; it < iterations; it++ {
		for i := 0; i < t.n; i++ {
			delta := r2.Sub(t.pos[i+1], t.pos[i])
			dist := r2.Norm(delta)
			if dist < minSegmentLength {
				continue
			}

			diff := (dist - t.segLen) / dist
			if i == 0 {
				t.pos[1] = r2.Sub(t.pos[1], r2.Scale(diff, delta))
				continue
			}
			corr := r2.Scale(0.5*diff, delta)
			t.pos[i] = r2.Add(t.pos[i], corr)
			t.pos[i+1] = r2.Sub(t.pos[i+1], corr)
		}
		t.pos[0] = anchor
	}

	for i := 1; i < len(t.pos); i++ {
		t.vel[i] = r2.Scale(1/dt, r2.Sub(t.pos[i], t.prev[i]))
	}
}

// LimitVelocity clamps every node's speed to limit. Non-positive disables.
func (t *Tether) LimitVelocity(limit float64) {
	if limit <= 0 {
		return
	}
	for i := range t.vel {
		t.vel[i] = dynamo.ClampNorm(t.vel[i], limit)
	}
}

// Sanitize zeroes any non-finite position or velocity component and
// reports whether anything was replaced.
func (t *Tether) Sanitize() bool {
	dirty := false
	for i := range t.pos {
		if !dynamo.Finite(t.pos[i]) {
			t.pos[i] = dynamo.Sanitize(t.pos[i])
			dirty = true
		}
		if !dynamo.Finite(t.vel[i]) {
			t.vel[i] = dynamo.Sanitize(t.vel[i])
			dirty = true
		}
	}
	return dirty
}

// TensionProfile returns k*max(0, stretch) per segment; compression reads as zero.
func (t *Tether) TensionProfile() []float64 {
	tensions := make([]float64, t.n)
	for i := range tensions {
		tensions[i] = t.k * math.Max(0, t.segmentLength(i)-t.segLen)
	}
	return tensions
}

// TipTension is the tension in the last segment.
func (t *Tether) TipTension() float64 {
	return t.k * math.Max(0, t.segmentLength(t.n-1)-t.segLen)
}

// PayloadState returns the tip node's position and velocity.
func (t *Tether) PayloadState() (dynamo.Vec, dynamo.Vec) {
	return t.pos[t.n], t.vel[t.n]
}

func (t *Tether) KineticEnergy() float64 {
	sum := 0.0
	for i := 1; i < len(t.vel); i++ {
		sum += r2.Norm2(t.vel[i])
	}
	return 0.5 * t.mass * sum
}

func (t *Tether) ElasticEnergy() float64 {
	e := 0.0
	for i := 0; i < t.n; i++ {
		s := t.segmentLength(i) - t.segLen
		e += 0.5 * t.k * s * s
	}
	return e
}

// MechanicalEnergy is kinetic plus elastic energy.
func (t *Tether) MechanicalEnergy() float64 {
	return t.KineticEnergy() + t.ElasticEnergy()
}

func (t *Tether) segmentLength(i int) float64 {
	return r2.Norm(r2.Sub(t.pos[i+1], t.pos[i]))
}

func (t *Tether) Segments() int             { return t.n }
func (t *Tether) Nodes() int                { return t.n + 1 }
func (t *Tether) RestLength() float64       { return t.segLen }
func (t *Tether) Stiffness() float64        { return t.k }
func (t *Tether) DampingCoeff() float64     { return t.c }
func (t *Tether) SegmentMass() float64      { return t.mass }
func (t *Tether) Position(i int) dynamo.Vec { return t.pos[i] }
func (t *Tether) Velocity(i int) dynamo.Vec { return t.vel[i] }

// SegmentLength returns the current length of segment i.
func (t *Tether) SegmentLength(i int) float64 { return t.segmentLength(i) }

func (t *Tether) Positions() []dynamo.Vec  { return clone(t.pos) }
func (t *Tether) Velocities() []dynamo.Vec { return clone(t.vel) }
func (t *Tether) Forces() []dynamo.Vec     { return clone(t.force) }

func clone(v []dynamo.Vec) []dynamo.Vec {
	c := make([]dynamo.Vec, len(v))
	copy(c, v)
	return c
}
