package collision

import (
	"math"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/random"
)

// SetThermalVelocities draws each velocity component from N(0, sqrt(kT/m)).
func SetThermalVelocities(e dynamo.Ensemble, temperature float64, rng *random.Stream) {
	for i := range e {
		p := &e[i]
		dist := rng.Normal(0, ThermalSpeed(p.Mass, temperature))
		p.Velocity = dynamo.Vec(dist.Rand(), dist.Rand(), dist.Rand())
		p.PreviousVelocity = p.Velocity
		p.RelativisticVelocity = p.Velocity.Mul(dynamo.LorentzFactor(p.Speed()))
	}
}

// ThermalSpeed is the per-axis standard deviation sqrt(kT/m).
func ThermalSpeed(mass, temperature float64) float64 {
	return math.Sqrt(dynamo.KBoltzmann * temperature / mass)
}
