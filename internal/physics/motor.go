package physics

import (
	"fmt"

	"github.com/san-kum/glide/internal/dynamo"
)

const (
	DefaultSpoolRadius = 0.25
	DefaultInertia     = 0.08
	DefaultMaxTorque   = 15.0
	DefaultMotorDamp   = 0.02
	DefaultEfficiency  = 0.87
	DefaultMotorGain   = 2.0

	maxAngularAccel    = 100.0 // rad/s^2
	maxAngularVelocity = 50.0  // rad/s
)

type MotorConfig struct {
	SpoolRadius float64 // m
	Inertia     float64 // kg m^2
	MaxTorque   float64 // N m
	Damping     float64 // viscous, N m s
	Efficiency  float64 // (0, 1]
	Gain        float64 // proportional speed gain, N m s
	// Locked engages the brake: the spool does not turn and draws no power.
	Locked bool
}

// MotorState is a snapshot of the winch.
type MotorState struct {
	Omega              float64
	Torque             float64
	MechanicalPower    float64
	ElectricalPower    float64
	EnergyUsed         float64
	AnchorDisplacement float64
}

// Motor is the winch actuator that reels the anchor.
type Motor struct {
	cfg   MotorConfig
	state MotorState
}

func NewMotor(cfg MotorConfig) (*Motor, error) {
	if cfg.Inertia <= 0 {
		return nil, fmt.Errorf("rotor inertia %g: %w", cfg.Inertia, dynamo.ErrParameterBounds)
	}
	if cfg.Efficiency <= 0 || cfg.Efficiency > 1 {
		return nil, fmt.Errorf("motor efficiency %g: %w", cfg.Efficiency, dynamo.ErrParameterBounds)
	}
	if cfg.MaxTorque < 0 || cfg.SpoolRadius < 0 {
		return nil, fmt.Errorf("motor limits must be non-negative: %w", dynamo.ErrParameterBounds)
	}
	return &Motor{cfg: cfg}, nil
}

// Update advances the winch by dt under the given tip tension and speed
// command and returns the anchor's linear velocity.
func (m *Motor) Update(dt, tension, omegaCmd float64) float64 {
	s := &m.state
	if m.cfg.Locked {
		s.Omega = 0
		s.Torque = 0
		s.MechanicalPower = 0
		s.ElectricalPower = 0
		return 0
	}

	loadTorque := tension * m.cfg.SpoolRadius

	torque := m.cfg.Gain * (omegaCmd - s.Omega)
	torque = dynamo.Clamp(torque, -m.cfg.MaxTorque, m.cfg.MaxTorque)

	accel := (torque - loadTorque - m.cfg.Damping*s.Omega) / m.cfg.Inertia
	accel = dynamo.Clamp(accel, -maxAngularAccel, maxAngularAccel)
	s.Omega = dynamo.Clamp(s.Omega+accel*dt, -maxAngularVelocity, maxAngularVelocity)
	s.Torque = torque

	v := s.Omega * m.cfg.SpoolRadius
	s.AnchorDisplacement += v * dt

	s.MechanicalPower = s.Torque * s.Omega
	s.ElectricalPower = ElectricalDemand(s.MechanicalPower, m.cfg.Efficiency)
	s.EnergyUsed += s.ElectricalPower * dt

	return v
}

// ElectricalDemand converts shaft power to bus power. Motoring draws
// mech/eta; regenerative braking returns only mech*eta.
func ElectricalDemand(mech, eta float64) float64 {
	if mech >= 0 {
		return mech / eta
	}
	return mech * eta
}

func (m *Motor) ElectricalPower() float64 { return m.state.ElectricalPower }
func (m *Motor) State() MotorState        { return m.state }
func (m *Motor) Config() MotorConfig      { return m.cfg }

func (m *Motor) Reset() {
	m.state = MotorState{}
}
