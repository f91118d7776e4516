package boundary

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kinetics/internal/dynamo"
)

// SideSampler collects the speeds of particles found outside the domain.
// Sample must run before ApplyPeriodic in the same step.
type SideSampler struct {
	speeds []float64
}

func NewSideSampler() *SideSampler {
	return &SideSampler{}
}

func (s *SideSampler) Sample(e dynamo.Ensemble, d dynamo.Domain) {
	for i := range e {
		if !d.Contains(e[i].Position) {
			s.speeds = append(s.speeds, e[i].Speed())
		}
	}
}

// Speeds returns the recorded speeds in sampling order.
func (s *SideSampler) Speeds() []float64 { return s.speeds }

func (s *SideSampler) Len() int { return len(s.speeds) }

func (s *SideSampler) Reset() { s.speeds = nil }

// MeanSpeed is the average sampled speed, zero when nothing was sampled.
func (s *SideSampler) MeanSpeed() float64 {
	if len(s.speeds) == 0 {
		return 0
	}
	return floats.Sum(s.speeds) / float64(len(s.speeds))
}
