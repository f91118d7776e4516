package metrics

import "github.com/san-kum/kinetics/internal/dynamo"

// Stability is the fraction of observations in which every particle has a
// finite state and a speed no larger than the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(e dynamo.Ensemble, t float64) {
	s.samples++
	for i := range e {
		if !dynamo.IsFinite(e[i].Position) || !dynamo.IsFinite(e[i].Velocity) || e[i].Speed() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
