package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/control"
	"github.com/san-kum/glide/internal/dynamo"
	"github.com/san-kum/glide/internal/metrics"
	"github.com/san-kum/glide/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Metric is a named observer whose value is reported after a run.
type Metric interface {
	metrics.Observer
	Name() string
	Value() float64
	Reset()
}

// TetherView is the read-only tether surface handed to callers.
type TetherView interface {
	Segments() int
	Nodes() int
	Position(i int) dynamo.Vec
	Velocity(i int) dynamo.Vec
	Positions() []dynamo.Vec
	Velocities() []dynamo.Vec
	TensionProfile() []float64
	TipTension() float64
	SegmentLength(i int) float64
	RestLength() float64
}

// Integrator owns one of each subsystem and advances them together.
type Integrator struct {
	cfg config.Config

	tether  *physics.Tether
	motor   *physics.Motor
	edt     *physics.EDT
	gravity *physics.GravityField
	energy  *metrics.EnergyTracker

	anchorPos dynamo.Vec
	anchorVel dynamo.Vec
	ext       []dynamo.Vec

	metrics    []Metric
	steps      int
	recoveries int
}

// New validates cfg and builds every subsystem from it. cfg is copied.
func New(cfg *config.Config) (*Integrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := cfg.Clone()

	tether, err := physics.NewTether(c.TetherConfig())
	if err != nil {
		return nil, fmt.Errorf("tether: %w", err)
	}
	motor, err := physics.NewMotor(c.MotorConfig())
	if err != nil {
		return nil, fmt.Errorf("motor: %w", err)
	}
	edt, err := physics.NewEDT(c.EDTConfig())
	if err != nil {
		return nil, fmt.Errorf("edt: %w", err)
	}
	gravity, err := physics.NewGravityField(c.GravityConfig())
	if err != nil {
		return nil, fmt.Errorf("gravity: %w", err)
	}

	return &Integrator{
		cfg:       *c,
		tether:    tether,
		motor:     motor,
		edt:       edt,
		gravity:   gravity,
		energy:    metrics.NewEnergyTracker(c.BatteryCapacity, c.BatteryInitialSoC),
		anchorPos: tether.Position(0),
		ext:       make([]dynamo.Vec, tether.Nodes()),
	}, nil
}

// AddObserver registers o for every ledger sample.
func (g *Integrator) AddObserver(o metrics.Observer) { g.energy.AddObserver(o) }

// AddMetric registers m as an observer and reports it from Metrics.
func (g *Integrator) AddMetric(m Metric) {
	g.metrics = append(g.metrics, m)
	g.energy.AddObserver(m)
}

// Place sets the tether geometry; node 0 becomes the anchor position and
// every node starts at rest.
func (g *Integrator) Place(positions []dynamo.Vec) error {
	if err := g.tether.Place(positions); err != nil {
		return err
	}
	g.anchorPos = positions[0]
	g.anchorVel = dynamo.Vec{}
	return nil
}

// Step advances one control step under a winch speed command (rad/s) and an
// EDT current fraction in [-1, 1].
func (g *Integrator) Step(omegaCmd, currentCmd float64) metrics.Sample {
	g.tether.AnchorUpdate(g.anchorPos, g.anchorVel)
	g.tether.ComputeInternalForces()

	// the winch only pays out along the vertical axis
	v := g.motor.Update(g.cfg.Dt, g.tether.TipTension(), omegaCmd)
	g.anchorVel = dynamo.Vec{Y: v}

	n, dtSub := substeps(g.cfg.Dt, g.cfg.MaxSubstep)
	for i := 0; i < n; i++ {
		g.substep(dtSub, currentCmd)
	}

	g.steps++
	return g.energy.Update(g.cfg.Dt, g.tether, g.motor, g.edt, g.gravity)
}

func (g *Integrator) substep(dt, currentCmd float64) {
	g.anchorPos = r2.Add(g.anchorPos, r2.Scale(dt, g.anchorVel))
	g.tether.AnchorUpdate(g.anchorPos, g.anchorVel)
	g.tether.ComputeInternalForces()

	m := g.tether.SegmentMass()
	g.ext[0] = dynamo.Vec{}
	for i := 1; i < len(g.ext); i++ {
		g.ext[i] = r2.Scale(m, g.gravity.Acceleration(g.tether.Position(i)))
	}
	g.tether.AddExternalForces(g.ext)
	payloadPos, payloadVel := g.tether.PayloadState()
	g.tether.ApplyForceToPayload(g.edt.Update(g.anchorPos, payloadPos, payloadVel, currentCmd))

	g.tether.Integrate(dt)
	g.tether.EnforceConstraints(dt, g.cfg.ConstraintIterations)
	g.tether.LimitVelocity(g.cfg.VelocityLimit)

	if g.tether.Sanitize() {
		g.recoveries++
	}
}

// substeps splits dt into n equal pieces no longer than maxSub, capped at
// config.MaxSubsteps. A non-positive maxSub disables sub-stepping.
func substeps(dt, maxSub float64) (int, float64) {
	if maxSub <= 0 || maxSub >= dt {
		return 1, dt
	}
	ratio := dt / maxSub
	if !(ratio <= config.MaxSubsteps) {
		return config.MaxSubsteps, dt / config.MaxSubsteps
	}
	n := int(math.Ceil(ratio - 1e-9))
	if n < 1 {
		n = 1
	}
	return n, dt / float64(n)
}

// Run calls Step floor(duration/dt) times, sampling both profiles at the start
// of each step. A nil profile commands zero. Cancellation is checked between
// steps; the summary collected so far is returned with the error.
func (g *Integrator) Run(ctx context.Context, duration float64, omega, current control.Profile) (metrics.Summary, error) {
	if omega == nil {
		omega = control.None()
	}
	if current == nil {
		current = control.None()
	}

	steps := int(math.Floor(duration/g.cfg.Dt + 1e-9))
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			sum, _ := g.energy.Summary()
			return sum, &dynamo.SimulationError{Step: g.steps, Time: g.Time(), Wrapped: err}
		}
		t := float64(i) * g.cfg.Dt
		g.Step(omega.Value(t), current.Value(t))
	}

	sum, _ := g.energy.Summary()
	return sum, nil
}

// Metrics reports every registered metric by name.
func (g *Integrator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(g.metrics))
	for _, m := range g.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// MechanicalEnergy is the tether's kinetic plus elastic energy.
func (g *Integrator) MechanicalEnergy() float64 { return g.tether.MechanicalEnergy() }

func (g *Integrator) Summary() (metrics.Summary, bool) { return g.energy.Summary() }
func (g *Integrator) Samples() []metrics.Sample        { return g.energy.Samples() }
func (g *Integrator) ExportRows() [][]string           { return g.energy.ExportRows() }
func (g *Integrator) StepCount() int                   { return g.steps }
func (g *Integrator) Time() float64                    { return float64(g.steps) * g.cfg.Dt }
func (g *Integrator) Recoveries() int                  { return g.recoveries }
func (g *Integrator) Tether() TetherView               { return g.tether }
func (g *Integrator) Motor() physics.MotorState        { return g.motor.State() }
func (g *Integrator) EDT() physics.EDTState            { return g.edt.State() }
func (g *Integrator) EDTRatedForce() float64           { return g.edt.RatedForce() }
func (g *Integrator) BatteryCapacity() float64         { return g.energy.Capacity() }
func (g *Integrator) Anchor() (dynamo.Vec, dynamo.Vec) { return g.anchorPos, g.anchorVel }

// Config returns a copy of the configuration the integrator was built from.
func (g *Integrator) Config() *config.Config { return g.cfg.Clone() }
