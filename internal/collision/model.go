package collision

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/wildstyl3r/lxgata"
)

var (
	// ErrFrequencyBound indicates a collision rate above the model's maximum
	// frequency, which breaks the null-collision thinning.
	ErrFrequencyBound = errors.New("collision: rate exceeds maximum frequency")

	// ErrInvalidModel indicates a collision model with unusable parameters.
	ErrInvalidModel = errors.New("collision: invalid model")
)

// FrequencyError reports the particle whose rate broke the frequency bound.
type FrequencyError struct {
	Index int
	Speed float64
	Rate  float64
	Max   float64
}

func (e *FrequencyError) Error() string {
	return fmt.Sprintf("particle %d: rate %.4g at speed %.4g exceeds %.4g", e.Index, e.Rate, e.Speed, e.Max)
}

func (e *FrequencyError) Unwrap() error { return ErrFrequencyBound }

// Frequency maps a particle speed to its genuine collision rate.
type Frequency interface {
	Rate(speed float64) float64
}

type FrequencyFunc func(speed float64) float64

func (f FrequencyFunc) Rate(speed float64) float64 { return f(speed) }

// Constant is a speed-independent collision rate.
type Constant float64

func (c Constant) Rate(float64) float64 { return float64(c) }

// CrossSection derives the rate N·σ(E)·v from LXCat tables, with E the
// projectile kinetic energy in eV.
type CrossSection struct {
	Table   lxgata.Collisions
	Density float64
	Mass    float64
}

// LoadCrossSection reads an LXCat file for a projectile of the given mass
// moving through gas of number density (m⁻³).
func LoadCrossSection(path string, density, mass float64) (*CrossSection, error) {
	table, err := lxgata.LoadCrossSections(path)
	if err != nil {
		return nil, fmt.Errorf("invalid cross section file: %w", err)
	}
	return &CrossSection{Table: table, Density: density, Mass: mass}, nil
}

func (c *CrossSection) Rate(speed float64) float64 {
	energy := 0.5 * c.Mass * speed * speed / dynamo.ElectronVolt
	return c.Density * c.Table.TotalCrossSectionAt(energy) * speed
}

// Bound returns a frequency that dominates Rate for speeds up to maxSpeed.
func (c *CrossSection) Bound(maxSpeed float64) float64 {
	return c.Density * c.Table.SurplusCrossSection() * maxSpeed
}

// Model describes the background gas. Temperature zero selects the cold
// planar kernel, anything above it the Maxwellian one.
type Model struct {
	BackgroundMass float64
	MaxFrequency   float64
	Frequency      Frequency
	Temperature    float64

	// LegacyAcceptance collides when U > p instead of U < p.
	LegacyAcceptance bool
}

func (m Model) Validate() error {
	switch {
	case !(m.BackgroundMass > 0):
		return fmt.Errorf("%w: background mass %g", ErrInvalidModel, m.BackgroundMass)
	case !(m.MaxFrequency > 0) || math.IsInf(m.MaxFrequency, 0):
		return fmt.Errorf("%w: max frequency %g", ErrInvalidModel, m.MaxFrequency)
	case m.Frequency == nil:
		return fmt.Errorf("%w: no frequency", ErrInvalidModel)
	case m.Temperature < 0 || math.IsNaN(m.Temperature):
		return fmt.Errorf("%w: temperature %g", ErrInvalidModel, m.Temperature)
	}
	return nil
}

func (m Model) Hot() bool { return m.Temperature > 0 }
