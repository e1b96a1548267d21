package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/control"
	"github.com/san-kum/glide/internal/logging"
	"github.com/san-kum/glide/internal/metrics"
	"github.com/san-kum/glide/internal/physics"
	"github.com/san-kum/glide/internal/sim"
)

type Config struct {
	Name     string
	Sim      *config.Config
	Duration float64
	Winch    control.Profile
	Current  control.Profile
}

// Result is everything a finished run reports.
type Result struct {
	Name       string
	Config     *config.Config
	Duration   float64
	Steps      int
	Summary    metrics.Summary
	Samples    []metrics.Sample
	Metrics    map[string]float64
	Recoveries int
	Motor      physics.MotorState
	EDT        physics.EDTState
	RatedForce float64
	// Capacity is the battery capacity in joules.
	Capacity float64
}

type Experiment struct {
	cfg   Config
	integ *sim.Integrator
}

func New(cfg Config) (*Experiment, error) {
	if cfg.Sim == nil {
		cfg.Sim = config.DefaultConfig()
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Winch == nil {
		cfg.Winch = control.DefaultWinch()
	}
	if cfg.Current == nil {
		cfg.Current = control.DefaultCurrent()
	}

	integ, err := sim.New(cfg.Sim)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, integ: integ}, nil
}

// Setup attaches metrics and observers before Run.
func (e *Experiment) Setup(ms []sim.Metric, observers ...metrics.Observer) {
	for _, m := range ms {
		e.integ.AddMetric(m)
	}
	for _, o := range observers {
		e.integ.AddObserver(o)
	}
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	sum, err := e.integ.Run(ctx, e.cfg.Duration, e.cfg.Winch, e.cfg.Current)
	res := &Result{
		Name:       e.cfg.Name,
		Config:     e.integ.Config(),
		Duration:   e.integ.Time(),
		Steps:      e.integ.StepCount(),
		Summary:    sum,
		Samples:    e.integ.Samples(),
		Metrics:    e.integ.Metrics(),
		Recoveries: e.integ.Recoveries(),
		Motor:      e.integ.Motor(),
		EDT:        e.integ.EDT(),
		RatedForce: e.integ.EDTRatedForce(),
		Capacity:   e.integ.BatteryCapacity(),
	}
	logging.FromContext(ctx).Debug(ctx, "experiment finished",
		logging.String("name", res.Name),
		logging.Int("steps", res.Steps),
		logging.Float("soc", sum.SoC),
	)
	return res, err
}

// Integrator returns the underlying integrator for adding observers.
func (e *Experiment) Integrator() *sim.Integrator {
	return e.integ
}

// RunBatch runs every experiment on its own goroutine. Each experiment owns
// its integrator, so results match sequential runs. The first error wins.
func RunBatch(ctx context.Context, exps []*Experiment) ([]*Result, error) {
	results := make([]*Result, len(exps))
	errs := make([]error, len(exps))

	var wg sync.WaitGroup
	for i, exp := range exps {
		wg.Add(1)
		go func(idx int, exp *Experiment) {
			defer wg.Done()
			results[idx], errs[idx] = exp.Run(ctx)
		}(i, exp)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("%s: %w", exps[i].cfg.Name, err)
		}
	}
	return results, nil
}
