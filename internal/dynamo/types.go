package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is a 3-component real vector. Add, Sub, Mul, Cross and Len never
// mutate their operands.
type Vector = mgl64.Vec3

func Vec(x, y, z float64) Vector { return Vector{x, y, z} }

// PlanarSpeed is the norm of the x/y components of v.
func PlanarSpeed(v Vector) float64 {
	return math.Hypot(v[0], v[1])
}

func IsFinite(v Vector) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// LorentzFactor returns 1/sqrt(1-(v/c)^2) for an ordinary speed v. It diverges
// as v approaches c and is NaN beyond it.
func LorentzFactor(speed float64) float64 {
	beta := speed / SpeedOfLight
	return 1 / math.Sqrt(1-beta*beta)
}

// LorentzFactorProper returns sqrt(1+(u/c)^2) for a proper speed u = γv.
func LorentzFactorProper(properSpeed float64) float64 {
	r := properSpeed / SpeedOfLight
	return math.Sqrt(1 + r*r)
}

type PhasePoint struct {
	X, Y, Z    float64
	VX, VY, VZ float64
	T          float64
}

type Particle struct {
	Mass   float64
	Charge float64

	Position         Vector
	Velocity         Vector
	PreviousVelocity Vector
	// RelativisticVelocity is the proper velocity γv, only advanced by the
	// relativistic field push.
	RelativisticVelocity Vector
	Force                Vector

	Trajectory        []PhasePoint
	NextCollisionTime float64
}

// NewParticle builds a particle whose trajectory is seeded with its state at
// t=0.
func NewParticle(mass, charge float64, position, velocity Vector) (Particle, error) {
	if !(mass > 0) {
		return Particle{}, fmt.Errorf("%w: %g", ErrInvalidMass, mass)
	}
	p := Particle{
		Mass:                 mass,
		Charge:               charge,
		Position:             position,
		Velocity:             velocity,
		PreviousVelocity:     velocity,
		RelativisticVelocity: velocity,
	}
	if speed := velocity.Len(); speed < SpeedOfLight {
		p.RelativisticVelocity = velocity.Mul(LorentzFactor(speed))
	}
	p.Trajectory = []PhasePoint{p.phasePoint(0)}
	return p, nil
}

func (p *Particle) Acceleration() Vector {
	return p.Force.Mul(1 / p.Mass)
}

func (p *Particle) Speed() float64 { return p.Velocity.Len() }

func (p *Particle) phasePoint(t float64) PhasePoint {
	return PhasePoint{
		X: p.Position[0], Y: p.Position[1], Z: p.Position[2],
		VX: p.Velocity[0], VY: p.Velocity[1], VZ: p.Velocity[2],
		T: t,
	}
}

// Record appends the current state stamped with t.
func (p *Particle) Record(t float64) error {
	if n := len(p.Trajectory); n > 0 && t < p.Trajectory[n-1].T {
		return fmt.Errorf("%w: %g after %g", ErrTimeReversal, t, p.Trajectory[n-1].T)
	}
	p.Trajectory = append(p.Trajectory, p.phasePoint(t))
	return nil
}

// Ensemble is an index-addressed arena of particles owned by the driver.
type Ensemble []Particle

// Uniform draws numbers uniformly from [0, 1).
type Uniform interface {
	Float64() float64
}

// Generate places count particles of the given mass uniformly in the x/y
// rectangle at z=0 with zero velocity.
func Generate(count int, x, y Interval, mass float64, rng Uniform) (Ensemble, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrParameterBounds, count)
	}
	e := make(Ensemble, 0, count)
	for i := 0; i < count; i++ {
		pos := Vec(x.Lerp(rng.Float64()), y.Lerp(rng.Float64()), 0)
		p, err := NewParticle(mass, 0, pos, Vector{})
		if err != nil {
			return nil, err
		}
		e = append(e, p)
	}
	return e, nil
}

// RecordSample appends one phase point per particle.
func (e Ensemble) RecordSample(t float64) error {
	for i := range e {
		if err := e[i].Record(t); err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
	}
	return nil
}

// CheckTrajectories verifies that all trajectory logs were recorded in
// lock-step and returns their common length.
func (e Ensemble) CheckTrajectories() (int, error) {
	if len(e) == 0 {
		return 0, nil
	}
	n := len(e[0].Trajectory)
	for i := range e {
		if len(e[i].Trajectory) != n {
			return 0, fmt.Errorf("%w: particle %d has %d samples, want %d",
				ErrTrajectoryMismatch, i, len(e[i].Trajectory), n)
		}
	}
	return n, nil
}

// SnapshotVelocities marks the current velocity as the pre-update velocity for
// stages that change velocity without an integrator.
func (e Ensemble) SnapshotVelocities() {
	for i := range e {
		e[i].PreviousVelocity = e[i].Velocity
	}
}

func (e Ensemble) Clone() Ensemble {
	c := make(Ensemble, len(e))
	copy(c, e)
	for i := range c {
		c[i].Trajectory = append([]PhasePoint(nil), e[i].Trajectory...)
	}
	return c
}

func (e Ensemble) IsValid() bool {
	for i := range e {
		if !IsFinite(e[i].Position) || !IsFinite(e[i].Velocity) {
			return false
		}
	}
	return true
}

type Interval struct {
	Begin float64
	End   float64
}

func (iv Interval) Contains(x float64) bool { return x >= iv.Begin && x <= iv.End }

func (iv Interval) Width() float64 { return iv.End - iv.Begin }

// Lerp maps u in [0, 1) onto the interval.
func (iv Interval) Lerp(u float64) float64 { return iv.Begin + u*(iv.End-iv.Begin) }

type Domain struct {
	X Interval
	Y Interval
}

func (d Domain) Contains(p Vector) bool {
	return d.X.Contains(p[0]) && d.Y.Contains(p[1])
}

// Field is a uniform electric/magnetic field pair, read-only during a step.
type Field struct {
	E Vector
	B Vector
}
