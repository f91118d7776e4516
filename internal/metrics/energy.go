package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/physics"
)

// KineticEnergy sums ½m|v̄|² with v̄ the mean of the current and previous
// velocity, a leapfrog midpoint estimate.
func KineticEnergy(e dynamo.Ensemble) float64 {
	ke := 0.0
	for i := range e {
		mid := e[i].Velocity.Add(e[i].PreviousVelocity).Mul(0.5)
		ke += 0.5 * e[i].Mass * mid.Dot(mid)
	}
	return ke
}

// InstantKineticEnergy uses the current velocity only.
func InstantKineticEnergy(e dynamo.Ensemble) float64 {
	ke := 0.0
	for i := range e {
		ke += 0.5 * e[i].Mass * e[i].Velocity.Dot(e[i].Velocity)
	}
	return ke
}

// TotalEnergy is the midpoint kinetic energy plus the pair potential of law.
// A nil law contributes nothing.
func TotalEnergy(e dynamo.Ensemble, law physics.PotentialLaw) float64 {
	if law == nil {
		return KineticEnergy(e)
	}
	return KineticEnergy(e) + physics.TotalPotentialEnergy(e, law)
}

func Momentum(e dynamo.Ensemble) dynamo.Vector {
	var p dynamo.Vector
	for i := range e {
		p = p.Add(e[i].Velocity.Mul(e[i].Mass))
	}
	return p
}

// RelativeDrift returns (e-e0)/|e0|, or zero when e0 is zero.
func RelativeDrift(e0, e float64) float64 {
	if e0 == 0 {
		return 0
	}
	return (e - e0) / math.Abs(e0)
}

// Kinetic averages the midpoint kinetic energy over observations.
type Kinetic struct {
	name    string
	samples []float64
}

func NewKinetic() *Kinetic {
	return &Kinetic{name: "kinetic_energy"}
}

func (k *Kinetic) Name() string { return k.name }

func (k *Kinetic) Observe(e dynamo.Ensemble, t float64) {
	k.samples = append(k.samples, KineticEnergy(e))
}

func (k *Kinetic) Value() float64 {
	if len(k.samples) == 0 {
		return 0
	}
	return floats.Sum(k.samples) / float64(len(k.samples))
}

func (k *Kinetic) Reset() { k.samples = k.samples[:0] }

// EnergyDrift tracks the largest |E-E0|/|E0|. E0 is the baseline when one is
// set, otherwise the first observation.
type EnergyDrift struct {
	name          string
	law           physics.PotentialLaw
	initialEnergy float64
	hasBaseline   bool
	maxDrift      float64
}

func NewEnergyDrift(law physics.PotentialLaw) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		law:  law,
	}
}

func (d *EnergyDrift) Name() string { return d.name }

func (d *EnergyDrift) SetBaseline(e0 float64) {
	d.initialEnergy = e0
	d.hasBaseline = true
}

func (d *EnergyDrift) Observe(e dynamo.Ensemble, t float64) {
	d.ObserveEnergy(TotalEnergy(e, d.law))
}

// ObserveEnergy records an already computed total energy.
func (d *EnergyDrift) ObserveEnergy(energy float64) {
	if !d.hasBaseline {
		d.SetBaseline(energy)
	}
	d.maxDrift = math.Max(d.maxDrift, math.Abs(RelativeDrift(d.initialEnergy, energy)))
}

func (d *EnergyDrift) Value() float64 { return d.maxDrift }

func (d *EnergyDrift) Reset() {
	d.initialEnergy = 0
	d.hasBaseline = false
	d.maxDrift = 0
}
