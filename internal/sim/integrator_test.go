package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/control"
	"github.com/san-kum/glide/internal/dynamo"
	"github.com/san-kum/glide/internal/metrics"
	"github.com/san-kum/glide/internal/physics"
)

func TestSubsteps(t *testing.T) {
	tests := []struct {
		dt, maxSub float64
		n          int
		h          float64
	}{
		{0.01, 0.005, 2, 0.005},
		{0.05, 0.005, 10, 0.005},
		{0.01, 0.003, 4, 0.0025},
		{0.01, 0, 1, 0.01},
		{0.01, 0.02, 1, 0.01},
		{0.005, 0.005, 1, 0.005},
		{1, 1e-300, config.MaxSubsteps, 1e-6},
		{1, math.SmallestNonzeroFloat64, config.MaxSubsteps, 1e-6},
	}
	for _, tt := range tests {
		n, h := substeps(tt.dt, tt.maxSub)
		if n != tt.n || math.Abs(h-tt.h) > 1e-15 {
			t.Errorf("substeps(%v, %v) = %d, %v; want %d, %v", tt.dt, tt.maxSub, n, h, tt.n, tt.h)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dt = -1
	if _, err := New(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("nil config: got %v", err)
	}
}

func TestNewCopiesConfig(t *testing.T) {
	cfg := springConfig(2, 1, 100, 1, 0)
	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Dt = 1
	cfg.BField[0] = 7
	if got := g.Config(); got.Dt != 0.01 || got.BField[0] != 0 {
		t.Errorf("integrator config changed through caller: dt=%v B=%v", got.Dt, got.BField)
	}
}

func TestConservativeEnergy(t *testing.T) {
	g, err := New(springConfig(1, 1, 100, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Place([]dynamo.Vec{{}, {X: 0, Y: -1.2}}); err != nil {
		t.Fatal(err)
	}

	e0 := g.MechanicalEnergy()
	for i := 0; i < 200; i++ {
		g.Step(0, 0)
		if rel := math.Abs(g.MechanicalEnergy()-e0) / e0; rel > 1e-3 {
			t.Fatalf("step %d: relative energy error %v", i, rel)
		}
	}
}

func TestRunStepsAndTime(t *testing.T) {
	cfg := springConfig(2, 1, 100, 1, 0.1)
	cfg.Dt = 0.005
	cfg.MaxSubstep = 0.001
	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	var calls int
	omega := control.ProfileFunc(func(t float64) float64 { calls++; return 0 })
	if _, err := g.Run(context.Background(), 1, omega, nil); err != nil {
		t.Fatal(err)
	}

	if g.StepCount() != 200 || calls != 200 {
		t.Errorf("steps=%d calls=%d, want 200", g.StepCount(), calls)
	}
	if math.Abs(g.Time()-1) > 1e-12 {
		t.Errorf("time = %v", g.Time())
	}
	if n := len(g.Samples()); n != 200 {
		t.Errorf("ledger has %d samples, want one per control step", n)
	}
}

func TestRunCancelled(t *testing.T) {
	g, err := New(springConfig(1, 1, 100, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Run(ctx, 1, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %v", err)
	}
	if g.StepCount() != 0 {
		t.Errorf("stepped %d times after cancel", g.StepCount())
	}
}

func TestLockedWinchHoldsAnchor(t *testing.T) {
	g, err := New(springConfig(3, 1, 100, 1, 0.1))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		g.Step(20, 0)
	}
	pos, vel := g.Anchor()
	if pos != (dynamo.Vec{}) || vel != (dynamo.Vec{}) {
		t.Errorf("anchor moved: pos=%v vel=%v", pos, vel)
	}
	if g.Motor().ElectricalPower != 0 {
		t.Error("braked winch drew power")
	}
}

func TestWinchReelsAnchorAndDrawsPower(t *testing.T) {
	cfg := springConfig(4, 5, 100, 1, 0.2)
	cfg.WinchLocked = false
	cfg.MaxSubstep = 0.001

	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Run(context.Background(), 1, control.Constant(5), control.None()); err != nil {
		t.Fatal(err)
	}

	pos, vel := g.Anchor()
	if pos.Y <= 0 || vel.Y <= 0 || pos.X != 0 || vel.X != 0 {
		t.Errorf("anchor should rise vertically: pos=%v vel=%v", pos, vel)
	}
	if g.Motor().EnergyUsed <= 0 {
		t.Errorf("energy used = %v", g.Motor().EnergyUsed)
	}
	sum, ok := g.Summary()
	if !ok || sum.Battery >= cfg.BatteryCapacity {
		t.Errorf("battery did not drain: %+v", sum)
	}
}

func TestEDTBoostDrainsBattery(t *testing.T) {
	cfg := springConfig(3, 5, 1e4, 2, 0.1)
	cfg.EDTMode = physics.EDTBoost
	cfg.MaxSubstep = 0.001
	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	prev := cfg.BatteryCapacity
	for i := 0; i < 100; i++ {
		s := g.Step(0, 0.8)
		if s.Battery > prev {
			t.Fatalf("step %d: boost charged the battery", i)
		}
		prev = s.Battery
	}
	st := g.EDT()
	if st.LossPower <= 0 || st.NetPower < st.LossPower {
		t.Errorf("boost net power %v below loss %v", st.NetPower, st.LossPower)
	}
}

func TestGravityEnergyRelativeToAnchor(t *testing.T) {
	cfg := springConfig(4, 5, 1e4, 1, 0.3)
	cfg.LocalG = physics.DefaultLocalG
	cfg.MaxSubstep = 0.001
	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	s := g.Step(0, 0)
	if s.Gravitational >= 0 {
		t.Errorf("hanging tether should sit below the anchor, E_grav=%v", s.Gravitational)
	}
	if payload := g.Tether().Positions()[4]; payload.Y >= 0 {
		t.Errorf("payload above anchor: %v", payload)
	}
}

func TestSanitizeRecoversNonFinite(t *testing.T) {
	g, err := New(springConfig(1, 1, 100, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	nan := math.NaN()
	if err := g.Place([]dynamo.Vec{{}, {X: nan, Y: nan}}); err != nil {
		t.Fatal(err)
	}

	s := g.Step(0, 0)
	if g.Recoveries() == 0 {
		t.Error("expected a recovery")
	}
	for i, p := range g.Tether().Positions() {
		if !dynamo.Finite(p) || !dynamo.Finite(g.Tether().Velocity(i)) {
			t.Errorf("node %d not finite after step", i)
		}
	}
	if math.IsNaN(s.Total) {
		t.Error("ledger sample is NaN")
	}
}

func TestPlaceDimensionMismatch(t *testing.T) {
	g, err := New(springConfig(2, 1, 100, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Place([]dynamo.Vec{{}}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMetricsAndObservers(t *testing.T) {
	g, err := New(springConfig(1, 1, 100, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Place([]dynamo.Vec{{}, {Y: -1.1}}); err != nil {
		t.Fatal(err)
	}

	var seen int
	g.AddObserver(metrics.ObserverFunc(func(metrics.Sample) { seen++ }))
	g.AddMetric(metrics.NewEnergyDrift())

	if _, err := g.Run(context.Background(), 0.5, nil, nil); err != nil {
		t.Fatal(err)
	}
	if seen != 50 {
		t.Errorf("observer saw %d samples, want 50", seen)
	}
	drift, ok := g.Metrics()["energy_drift"]
	if !ok || drift > 1e-3 {
		t.Errorf("energy drift = %v (ok=%v)", drift, ok)
	}
}
