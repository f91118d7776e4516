package physics

import "github.com/san-kum/kinetics/internal/dynamo"

// ForceLaw returns the force on a due to b. Antisymmetry F(b,a) = -F(a,b) is
// assumed, not enforced.
type ForceLaw interface {
	Force(a, b *dynamo.Particle) dynamo.Vector
}

type PotentialLaw interface {
	Energy(a, b *dynamo.Particle) float64
}

type ForceFunc func(a, b *dynamo.Particle) dynamo.Vector

func (f ForceFunc) Force(a, b *dynamo.Particle) dynamo.Vector { return f(a, b) }

type PotentialFunc func(a, b *dynamo.Particle) float64

func (f PotentialFunc) Energy(a, b *dynamo.Particle) float64 { return f(a, b) }

// SetForces overwrites every accumulator with f.
func SetForces(e dynamo.Ensemble, f dynamo.Vector) {
	for i := range e {
		e[i].Force = f
	}
}

func ClearForces(e dynamo.Ensemble) { SetForces(e, dynamo.Vector{}) }

// AccumulateForces adds the pair force to i and subtracts it from j for each
// pair (i, j>i).
func AccumulateForces(e dynamo.Ensemble, law ForceLaw) {
	n := len(e)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			f := law.Force(&e[i], &e[j])
			e[i].Force = e[i].Force.Add(f)
			e[j].Force = e[j].Force.Sub(f)
		}
	}
}

func TotalPotentialEnergy(e dynamo.Ensemble, law PotentialLaw) float64 {
	n := len(e)
	pe := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pe += law.Energy(&e[i], &e[j])
		}
	}
	return pe
}

// NetForce is the vector sum of all accumulators.
func NetForce(e dynamo.Ensemble) dynamo.Vector {
	var sum dynamo.Vector
	for i := range e {
		sum = sum.Add(e[i].Force)
	}
	return sum
}
