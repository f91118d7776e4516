package collision

import (
	"math"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/random"
)

// ScatterCold turns the planar velocity to a uniform random angle θ and
// shrinks it by the elastic recoil loss Δ = 2(m/M)(1-cos θ) against a
// background at rest. vz is left untouched.
func ScatterCold(p *dynamo.Particle, backgroundMass float64, rng *random.Stream) {
	angle := rng.Angle()
	sin, cos := math.Sincos(angle)

	delta := 2 * p.Mass / backgroundMass * (1 - cos)
	speed := (1 - math.Sqrt(delta)) * dynamo.PlanarSpeed(p.Velocity)

	p.Velocity[0] = cos * speed
	p.Velocity[1] = sin * speed
}

// ScatterHot collides p elastically with a background particle drawn from a
// Maxwellian at the given temperature. The relative velocity is rotated to an
// isotropic direction in the centre-of-mass frame, so pair momentum and
// energy are conserved.
func ScatterHot(p *dynamo.Particle, backgroundMass, temperature float64, rng *random.Stream) {
	partner := maxwellian(backgroundMass, temperature, rng)
	p.Velocity, _ = scatterPair(p.Mass, p.Velocity, backgroundMass, partner, rng)
}

func maxwellian(mass, temperature float64, rng *random.Stream) dynamo.Vector {
	dist := rng.Normal(0, ThermalSpeed(mass, temperature))
	return dynamo.Vec(dist.Rand(), dist.Rand(), dist.Rand())
}

// scatterPair returns the post-collision velocities of masses m and M.
func scatterPair(m float64, v dynamo.Vector, M float64, u dynamo.Vector, rng *random.Stream) (dynamo.Vector, dynamo.Vector) {
	total := m + M
	cm := v.Mul(m / total).Add(u.Mul(M / total))
	g := v.Sub(u).Len()

	x, y, z := rng.IsotropicDirection()
	rotated := dynamo.Vec(x, y, z).Mul(g)

	return cm.Add(rotated.Mul(M / total)), cm.Sub(rotated.Mul(m / total))
}
