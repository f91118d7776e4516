// Package random provides the seeded random-number stream threaded through
// every stochastic operation of a run.
package random

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is a single ordered sequence of draws. Two streams built from the
// same seed yield identical sequences.
type Stream struct {
	*rand.Rand
	seed uint64
}

func New(seed uint64) *Stream {
	return &Stream{
		Rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

func (s *Stream) Seed() uint64 { return s.seed }

// Exponential draws an inter-arrival time with the given rate from a single
// uniform number: -ln(1-U)/rate.
func (s *Stream) Exponential(rate float64) float64 {
	return -math.Log(1-s.Float64()) / rate
}

// Angle draws a uniform angle in [0, 2π).
func (s *Stream) Angle() float64 {
	return 2 * math.Pi * s.Float64()
}

// Normal returns a normal distribution drawing from this stream.
func (s *Stream) Normal(mu, sigma float64) distuv.Normal {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.Rand}
}

// IsotropicDirection draws a unit vector uniformly on the sphere.
func (s *Stream) IsotropicDirection() (x, y, z float64) {
	cosTheta := 1 - 2*s.Float64()
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	sinPhi, cosPhi := math.Sincos(s.Angle())
	return sinTheta * cosPhi, sinTheta * sinPhi, cosTheta
}
