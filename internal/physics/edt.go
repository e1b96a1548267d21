package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/glide/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrFieldVector is returned for a magnetic field vector that is not 2 or 3 long.
var ErrFieldVector = errors.New("glide: magnetic field vector must have 2 or 3 components")

const (
	DefaultEDTLength     = 100.0
	DefaultEDTResistance = 50.0
	DefaultEDTMaxCurrent = 2.5
	DefaultFieldZ        = 3.1e-5

	edtEpsilon = 1e-9
)

type EDTConfig struct {
	Length     float64   // nominal conductive length, m
	Field      []float64 // T; the last component is out-of-plane
	Resistance float64   // ohm
	MaxCurrent float64   // A
	Mode       EDTMode
}

// EDTState is recomputed on every Update.
type EDTState struct {
	Current      float64
	Force        dynamo.Vec
	LossPower    float64
	OrbitalPower float64
	NetPower     float64
}

// EDT is a planar electrodynamic tether. The field is taken as purely
// out-of-plane, so the force lies in-plane and perpendicular to the tether.
type EDT struct {
	length     float64
	bz         float64
	resistance float64
	maxCurrent float64
	mode       EDTMode
	state      EDTState
}

func NewEDT(cfg EDTConfig) (*EDT, error) {
	if n := len(cfg.Field); n != 2 && n != 3 {
		return nil, fmt.Errorf("got %d components: %w", n, ErrFieldVector)
	}
	if cfg.Mode < EDTOff || cfg.Mode > EDTDrag {
		return nil, fmt.Errorf("EDT mode %v: %w", cfg.Mode, dynamo.ErrParameterBounds)
	}
	if cfg.Resistance < 0 || cfg.MaxCurrent < 0 {
		return nil, fmt.Errorf("EDT resistance and current limit must be non-negative: %w", dynamo.ErrParameterBounds)
	}
	return &EDT{
		length:     cfg.Length,
		bz:         cfg.Field[len(cfg.Field)-1],
		resistance: cfg.Resistance,
		maxCurrent: cfg.MaxCurrent,
		mode:       cfg.Mode,
	}, nil
}

// Update computes the force on the payload for a commanded current fraction.
// nodePos is the near end of the tether, payloadPos the far end, vel the
// payload velocity.
func (e *EDT) Update(nodePos, payloadPos, vel dynamo.Vec, currentCmd float64) dynamo.Vec {
	if e.mode == EDTOff {
		e.state = EDTState{}
		return dynamo.Vec{}
	}

	current := dynamo.Clamp(currentCmd, -1, 1) * e.maxCurrent
	loss := current * current * e.resistance

	axis := r2.Sub(payloadPos, nodePos)
	length := r2.Norm(axis)
	if length < edtEpsilon {
		e.state = EDTState{Current: current, LossPower: loss, NetPower: loss}
		return dynamo.Vec{}
	}

	mag := math.Abs(current) * length * math.Abs(e.bz)
	candidate := r2.Scale(mag/length, dynamo.Perp(axis))

	sign := e.forceSign(r2.Dot(candidate, vel), r2.Norm(vel))
	force := r2.Scale(sign, candidate)
	orbital := r2.Dot(force, vel)

	net := loss
	if e.mode == EDTBoost {
		net += math.Max(0, orbital)
	} else {
		net += math.Min(0, orbital)
	}

	e.state = EDTState{
		Current:      current,
		Force:        force,
		LossPower:    loss,
		OrbitalPower: orbital,
		NetPower:     net,
	}
	return force
}

// forceSign makes boost push along the motion and drag oppose it.
func (e *EDT) forceSign(candidatePower, speed float64) float64 {
	if speed <= edtEpsilon {
		if e.mode == EDTBoost {
			return 1
		}
		return -1
	}
	if e.mode == EDTBoost {
		if candidatePower >= 0 {
			return 1
		}
		return -1
	}
	if candidatePower >= 0 {
		return -1
	}
	return 1
}

func (e *EDT) Force() dynamo.Vec { return e.state.Force }

// ElectricalPower is the net power drawn from the bus; negative means the
// tether is harvesting.
func (e *EDT) ElectricalPower() float64 { return e.state.NetPower }

func (e *EDT) State() EDTState { return e.state }
func (e *EDT) Mode() EDTMode   { return e.mode }
func (e *EDT) SetMode(m EDTMode) {
	e.mode = m
}

// RatedForce is the force at full current over the nominal length.
func (e *EDT) RatedForce() float64 {
	return e.maxCurrent * e.length * math.Abs(e.bz)
}
