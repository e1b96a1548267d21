// Package dynamo provides the shared primitives of the GLIDE tether engine.
//
// The package defines the planar vector type used by every subsystem and a
// handful of numeric guards:
//
//   - [Vec]: planar vector (gonum r2)
//   - [Sanitize]: replaces non-finite components with zero
//   - [Clamp], [ClampNorm]: saturation helpers
//   - [Perp]: counter-clockwise perpendicular
//
// # Thread Safety
//
// Everything here is a pure function over values. Physical state lives in the
// owning subsystem (see package physics) and is never shared.
package dynamo
