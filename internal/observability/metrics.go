// Package observability mirrors the energy ledger into Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/glide/internal/metrics"
)

// LedgerCollector bundles the ledger gauges and implements metrics.Observer
// so it can be attached directly to an integrator.
type LedgerCollector struct {
	gatherer prometheus.Gatherer

	Energy     *prometheus.GaugeVec
	SoC        prometheus.Gauge
	BusPower   prometheus.Gauge
	SimTime    prometheus.Gauge
	Samples    prometheus.Counter
	Recoveries prometheus.Counter

	mu             sync.Mutex
	seenRecoveries int
}

// NewLedgerCollector registers the ledger metrics against reg, defaulting to
// the global registry when nil. Registering twice returns the existing
// collectors.
func NewLedgerCollector(reg prometheus.Registerer) (*LedgerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	energy, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "glide_energy_joules",
		Help: "Latest ledger energy by bucket (kinetic, elastic, gravitational, battery, total).",
	}, []string{"bucket"}), "glide_energy_joules")
	if err != nil {
		return nil, err
	}
	soc, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "glide_battery_soc",
		Help: "Battery state of charge in [0, 1].",
	}), "glide_battery_soc")
	if err != nil {
		return nil, err
	}
	power, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "glide_bus_power_watts",
		Help: "Combined winch and EDT electrical power; negative while charging.",
	}), "glide_bus_power_watts")
	if err != nil {
		return nil, err
	}
	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "glide_sim_time_seconds",
		Help: "Simulation time of the latest ledger sample.",
	}), "glide_sim_time_seconds")
	if err != nil {
		return nil, err
	}
	samples, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "glide_ledger_samples_total",
		Help: "Number of ledger samples recorded.",
	}), "glide_ledger_samples_total")
	if err != nil {
		return nil, err
	}
	recoveries, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "glide_nonfinite_recoveries_total",
		Help: "Sub-steps in which non-finite node state was reset to zero.",
	}), "glide_nonfinite_recoveries_total")
	if err != nil {
		return nil, err
	}

	return &LedgerCollector{
		gatherer:   gatherer,
		Energy:     energy,
		SoC:        soc,
		BusPower:   power,
		SimTime:    simTime,
		Samples:    samples,
		Recoveries: recoveries,
	}, nil
}

func (c *LedgerCollector) OnSample(s metrics.Sample) {
	if c == nil {
		return
	}
	c.Energy.WithLabelValues("kinetic").Set(s.Kinetic)
	c.Energy.WithLabelValues("elastic").Set(s.Elastic)
	c.Energy.WithLabelValues("gravitational").Set(s.Gravitational)
	c.Energy.WithLabelValues("battery").Set(s.Battery)
	c.Energy.WithLabelValues("total").Set(s.Total)
	c.SoC.Set(s.SoC)
	c.BusPower.Set(s.Power)
	c.SimTime.Set(s.Time)
	c.Samples.Inc()
}

// RecordRecoveries advances the recoveries counter to a running total.
func (c *LedgerCollector) RecordRecoveries(total int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if total > c.seenRecoveries {
		c.Recoveries.Add(float64(total - c.seenRecoveries))
		c.seenRecoveries = total
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *LedgerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
