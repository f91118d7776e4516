package integrators

import "github.com/san-kum/kinetics/internal/dynamo"

// IntegrateVelocity applies v += dt·F/m using the accumulated forces.
func IntegrateVelocity(e dynamo.Ensemble, dt float64) {
	for i := range e {
		p := &e[i]
		p.PreviousVelocity = p.Velocity
		p.Velocity = p.Velocity.Add(p.Acceleration().Mul(dt))
	}
}

// IntegratePosition applies x += dt·v.
func IntegratePosition(e dynamo.Ensemble, dt float64) {
	for i := range e {
		e[i].Position = e[i].Position.Add(e[i].Velocity.Mul(dt))
	}
}
