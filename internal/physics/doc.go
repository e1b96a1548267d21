// Package physics provides the subsystem models of the GLIDE tether engine.
//
//   - [Tether]: multi-segment spring-damper chain with a position-based
//     length constraint solver
//   - [Motor]: winch that reels the anchor under a speed command
//   - [EDT]: electrodynamic tether producing a Lorentz force on the payload
//   - [GravityField]: uniform or inverse-square field
//
// All models are planar. None of them raise for physical edge cases:
// degenerate geometry is skipped and actuator limits saturate.
//
// # Energy Conservation
//
// With damping, gravity and actuators disabled the tether conserves
// kinetic plus elastic energy up to the integrator's bounded error:
//
//	t, _ := physics.NewTether(cfg)
//	e0 := t.MechanicalEnergy()
package physics
