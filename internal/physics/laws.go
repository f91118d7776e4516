package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetics/internal/dynamo"
)

const (
	// GravitySI is G in m³/(kg·s²).
	GravitySI = 6.674e-11
	// GravityKm is G in km³/(kg·s²), used with km/s solar-system units.
	GravityKm = 6.674e-20
	// CoulombSI is 1/(4πε₀) in N·m²/C².
	CoulombSI = 8.9875517923e9
)

// Gravity is Newtonian attraction G·m₁·m₂/r² with optional Plummer softening.
type Gravity struct {
	G         float64
	Softening float64
}

func NewGravity(g float64) *Gravity { return &Gravity{G: g} }

func (g *Gravity) Force(a, b *dynamo.Particle) dynamo.Vector {
	r := b.Position.Sub(a.Position)
	return r.Mul(g.G * a.Mass * b.Mass * inverseCube(r, g.Softening))
}

func (g *Gravity) Energy(a, b *dynamo.Particle) float64 {
	r := b.Position.Sub(a.Position)
	return -g.G * a.Mass * b.Mass / softened(r, g.Softening)
}

// Coulomb is the electrostatic interaction k·q₁·q₂/r²; like charges repel.
type Coulomb struct {
	K         float64
	Softening float64
}

func NewCoulomb(k float64) *Coulomb { return &Coulomb{K: k} }

func (c *Coulomb) Force(a, b *dynamo.Particle) dynamo.Vector {
	r := b.Position.Sub(a.Position)
	return r.Mul(-c.K * a.Charge * b.Charge * inverseCube(r, c.Softening))
}

func (c *Coulomb) Energy(a, b *dynamo.Particle) float64 {
	r := b.Position.Sub(a.Position)
	return c.K * a.Charge * b.Charge / softened(r, c.Softening)
}

func softened(r dynamo.Vector, eps float64) float64 {
	return math.Sqrt(r.Dot(r) + eps*eps)
}

func inverseCube(r dynamo.Vector, eps float64) float64 {
	d := softened(r, eps)
	return 1 / (d * d * d)
}

// Law is a force law that also provides its pair potential.
type Law interface {
	ForceLaw
	PotentialLaw
}

// NewLaw returns the named interaction law with coupling constant k
// ("gravity": G, "coulomb": 1/(4πε₀)). Zero k selects the SI default.
func NewLaw(name string, k, softening float64) (Law, error) {
	switch name {
	case "gravity":
		if k == 0 {
			k = GravitySI
		}
		return &Gravity{G: k, Softening: softening}, nil
	case "coulomb":
		if k == 0 {
			k = CoulombSI
		}
		return &Coulomb{K: k, Softening: softening}, nil
	default:
		return nil, fmt.Errorf("unknown force law: %s", name)
	}
}
