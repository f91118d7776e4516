package integrators

import (
	"math"

	"github.com/san-kum/kinetics/internal/dynamo"
)

// minParallelChunk keeps small ensembles on the calling goroutine.
const minParallelChunk = 256

// Boris advances velocities under a uniform field using an exact rotation for
// the magnetic part, so the speed is preserved in a pure magnetic field for any
// dt. The accumulated pair force of each particle joins the electric half
// kicks.
type Boris struct {
	// Workers > 1 pushes disjoint particle ranges concurrently.
	Workers int
}

func NewBoris() Boris { return Boris{} }

func (b Boris) Name() string { return "boris" }

func (b Boris) ApplyField(e dynamo.Ensemble, dt float64, f dynamo.Field) {
	dynamo.ParallelFor(len(e), b.Workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := &e[i]
			p.PreviousVelocity = p.Velocity
			p.Velocity = borisPush(p.Velocity, p.Force, p.Charge, p.Mass, 1, dt, f)
		}
	})
}

// BorisRelativistic pushes the proper velocity γv and recovers the ordinary
// velocity afterwards. The rotation angle is scaled by 1/γ.
type BorisRelativistic struct {
	Workers int
}

func NewBorisRelativistic() BorisRelativistic { return BorisRelativistic{} }

func (b BorisRelativistic) Name() string { return "boris_relativistic" }

func (b BorisRelativistic) ApplyField(e dynamo.Ensemble, dt float64, f dynamo.Field) {
	dynamo.ParallelFor(len(e), b.Workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := &e[i]
			gamma := dynamo.LorentzFactorProper(p.RelativisticVelocity.Len())

			p.PreviousVelocity = p.Velocity
			p.RelativisticVelocity = borisPush(p.RelativisticVelocity, p.Force, p.Charge, p.Mass, gamma, dt, f)

			gamma = dynamo.LorentzFactorProper(p.RelativisticVelocity.Len())
			p.Velocity = p.RelativisticVelocity.Mul(1 / gamma)
		}
	})
}

// borisPush applies half kick, magnetic rotation, half kick, where the kick is
// from qE plus the pair force. A zero magnetic field skips the rotation.
func borisPush(v, force dynamo.Vector, q, m, gamma, dt float64, f dynamo.Field) dynamo.Vector {
	kick := f.E.Mul(q).Add(force).Mul(dt / (2 * m))
	v1 := v.Add(kick)

	b := f.B.Len()
	if b == 0 {
		return v1.Add(kick)
	}

	f1 := math.Tan(q*dt*b/(2*m*gamma)) / b
	v2 := v1.Add(v1.Cross(f.B).Mul(f1))
	f2 := 2 * f1 / (1 + f1*f1*b*b)
	v3 := v1.Add(v2.Cross(f.B).Mul(f2))

	return v3.Add(kick)
}
