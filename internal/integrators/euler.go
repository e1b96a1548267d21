package integrators

import (
	"math"

	"github.com/san-kum/glide/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// SemiImplicitEuler advances nodes from index `from` onward by one step of
// symplectic Euler: velocities first, then positions from the new velocities.
// Nodes below `from` are left untouched (boundary nodes driven elsewhere).
func SemiImplicitEuler(pos, vel, force []dynamo.Vec, mass, dt float64, from int) {
	if dt <= 0 || mass <= 0 {
		return
	}
	invMass := 1.0 / mass
	for i := from; i < len(pos); i++ {
		vel[i] = r2.Add(vel[i], r2.Scale(invMass*dt, force[i]))
		pos[i] = r2.Add(pos[i], r2.Scale(dt, vel[i]))
	}
}

// Decay applies exp(-rate*dt) to velocities from index `from` onward.
// A non-positive rate is a no-op.
func Decay(vel []dynamo.Vec, rate, dt float64, from int) {
	if rate <= 0 || dt <= 0 {
		return
	}
	f := math.Exp(-rate * dt)
	for i := from; i < len(vel); i++ {
		vel[i] = r2.Scale(f, vel[i])
	}
}
