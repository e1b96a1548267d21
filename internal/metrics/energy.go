package metrics

import (
	"math"
	"strconv"

	"github.com/san-kum/glide/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// LedgerHeader is the column order of exported ledger rows.
var LedgerHeader = []string{"time", "E_kin", "E_elastic", "E_grav", "E_batt", "E_total", "SoC"}

// Chain is the read-only view of the tether the tracker samples.
type Chain interface {
	Nodes() int
	Segments() int
	Position(i int) dynamo.Vec
	Velocity(i int) dynamo.Vec
	SegmentMass() float64
	Stiffness() float64
	RestLength() float64
}

// PowerSource reports electrical power drawn from the battery (negative when
// it charges the battery).
type PowerSource interface {
	ElectricalPower() float64
}

// Field is a gravitational potential per unit mass.
type Field interface {
	Potential(p dynamo.Vec) float64
}

// Sample is one ledger row.
type Sample struct {
	Time          float64
	Kinetic       float64
	Elastic       float64
	Gravitational float64
	Battery       float64
	Total         float64
	SoC           float64
	// Power is the combined motor + EDT bus power for this step.
	Power float64
}

// Row formats s in LedgerHeader order.
func (s Sample) Row() []string {
	vals := []float64{s.Time, s.Kinetic, s.Elastic, s.Gravitational, s.Battery, s.Total, s.SoC}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}

// Summary is the latest sample's energy buckets.
type Summary struct {
	Kinetic       float64
	Elastic       float64
	Gravitational float64
	Battery       float64
	Total         float64
	SoC           float64
}

// Observer is notified once per appended sample.
type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

// EnergyTracker is an append-only energy ledger plus the battery state.
// It only reads the subsystems it samples.
type EnergyTracker struct {
	capacity  float64
	battery   float64
	samples   []Sample
	observers []Observer
}

// NewEnergyTracker starts with the battery at initialSoC of capacity.
func NewEnergyTracker(capacity, initialSoC float64) *EnergyTracker {
	capacity = math.Max(0, capacity)
	return &EnergyTracker{
		capacity: capacity,
		battery:  dynamo.Clamp(initialSoC, 0, 1) * capacity,
	}
}

func (e *EnergyTracker) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Update samples one ledger row. gravity may be nil.
func (e *EnergyTracker) Update(dt float64, tether Chain, motor, edt PowerSource, gravity Field) Sample {
	t := 0.0
	if n := len(e.samples); n > 0 {
		t = e.samples[n-1].Time + dt
	}

	n := tether.Nodes()
	m := tether.SegmentMass()

	speeds := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		speeds = append(speeds, r2.Norm2(tether.Velocity(i)))
	}
	kinetic := 0.5 * m * floats.Sum(speeds)

	k, rest := tether.Stiffness(), tether.RestLength()
	strain := make([]float64, tether.Segments())
	for i := range strain {
		s := r2.Norm(r2.Sub(tether.Position(i+1), tether.Position(i))) - rest
		strain[i] = 0.5 * k * s * s
	}
	elastic := floats.Sum(strain)

	// relative to the anchor
	grav := 0.0
	if gravity != nil {
		ref := gravity.Potential(tether.Position(0))
		for i := 1; i < n; i++ {
			grav += m * (gravity.Potential(tether.Position(i)) - ref)
		}
	}

	power := 0.0
	if motor != nil {
		power += motor.ElectricalPower()
	}
	if edt != nil {
		power += edt.ElectricalPower()
	}
	e.battery = dynamo.Clamp(e.battery-power*dt, 0, e.capacity)

	s := Sample{
		Time:          t,
		Kinetic:       kinetic,
		Elastic:       elastic,
		Gravitational: grav,
		Battery:       e.battery,
		Total:         kinetic + elastic + grav + e.battery,
		SoC:           e.soc(),
		Power:         power,
	}
	e.samples = append(e.samples, s)

	for _, o := range e.observers {
		o.OnSample(s)
	}
	return s
}

func (e *EnergyTracker) soc() float64 {
	if e.capacity <= 0 {
		return 0
	}
	return e.battery / e.capacity
}

// Summary returns the latest sample; ok is false before the first Update.
func (e *EnergyTracker) Summary() (Summary, bool) {
	if len(e.samples) == 0 {
		return Summary{}, false
	}
	s := e.samples[len(e.samples)-1]
	return Summary{
		Kinetic:       s.Kinetic,
		Elastic:       s.Elastic,
		Gravitational: s.Gravitational,
		Battery:       s.Battery,
		Total:         s.Total,
		SoC:           s.SoC,
	}, true
}

// Samples returns a copy of the ledger.
func (e *EnergyTracker) Samples() []Sample {
	c := make([]Sample, len(e.samples))
	copy(c, e.samples)
	return c
}

func (e *EnergyTracker) Len() int { return len(e.samples) }

// ExportRows returns the header followed by one row per sample.
func (e *EnergyTracker) ExportRows() [][]string {
	rows := make([][]string, 0, len(e.samples)+1)
	rows = append(rows, append([]string(nil), LedgerHeader...))
	for _, s := range e.samples {
		rows = append(rows, s.Row())
	}
	return rows
}

func (e *EnergyTracker) Battery() float64  { return e.battery }
func (e *EnergyTracker) Capacity() float64 { return e.capacity }

// EnergyDrift tracks the largest relative deviation of the ledger total from
// its first observed value.
type EnergyDrift struct {
	initial float64
	devs    []float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{}
}

func (d *EnergyDrift) Name() string { return "energy_drift" }

func (d *EnergyDrift) OnSample(s Sample) {
	if len(d.devs) == 0 {
		d.initial = s.Total
	}
	dev := 0.0
	if d.initial != 0 {
		dev = math.Abs(s.Total-d.initial) / math.Abs(d.initial)
	}
	d.devs = append(d.devs, dev)
}

func (d *EnergyDrift) Value() float64 {
	if len(d.devs) == 0 {
		return 0
	}
	return floats.Max(d.devs)
}

func (d *EnergyDrift) Reset() {
	d.initial = 0
	d.devs = d.devs[:0]
}
