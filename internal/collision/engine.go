package collision

import (
	"math"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/random"
)

// Stats counts clock events since the engine was built.
type Stats struct {
	Events     int
	Collisions int
	Nulls      int
}

// AcceptanceRatio is the fraction of events that were genuine collisions.
func (s Stats) AcceptanceRatio() float64 {
	if s.Events == 0 {
		return 0
	}
	return float64(s.Collisions) / float64(s.Events)
}

// Engine runs the null-collision process. Every draw comes from rng in
// particle index order, so a seed fully determines a run.
type Engine struct {
	Model Model
	Stats Stats

	rng *random.Stream
}

func NewEngine(m Model, rng *random.Stream) (*Engine, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Engine{Model: m, rng: rng}, nil
}

// InitCollisionTimes advances every particle clock by one exponential
// interval at the maximum frequency.
func (en *Engine) InitCollisionTimes(e dynamo.Ensemble) {
	for i := range e {
		en.advance(&e[i])
	}
}

func (en *Engine) advance(p *dynamo.Particle) {
	p.NextCollisionTime += en.rng.Exponential(en.Model.MaxFrequency)
}

// Apply handles at most one event per particle whose clock is behind t. The
// event is a genuine collision with probability rate(|v|)/MaxFrequency and a
// null collision otherwise; either way the clock is redrawn.
//
// A rate above MaxFrequency stops the pass with a *FrequencyError and leaves
// that particle and the ones after it untouched.
func (en *Engine) Apply(e dynamo.Ensemble, t float64) error {
	for i := range e {
		p := &e[i]
		if !(t > p.NextCollisionTime) {
			continue
		}

		speed := p.Speed()
		rate := en.Model.Frequency.Rate(speed)
		prob := rate / en.Model.MaxFrequency
		if prob > 1 || math.IsNaN(prob) {
			return &FrequencyError{Index: i, Speed: speed, Rate: rate, Max: en.Model.MaxFrequency}
		}
		prob = math.Max(prob, 0)

		en.Stats.Events++
		if en.accept(en.rng.Float64(), prob) {
			en.Stats.Collisions++
			en.scatter(p)
		} else {
			en.Stats.Nulls++
		}
		en.advance(p)
	}
	return nil
}

func (en *Engine) accept(u, prob float64) bool {
	if en.Model.LegacyAcceptance {
		return u > prob
	}
	return u < prob
}

func (en *Engine) scatter(p *dynamo.Particle) {
	if en.Model.Hot() {
		ScatterHot(p, en.Model.BackgroundMass, en.Model.Temperature, en.rng)
		return
	}
	ScatterCold(p, en.Model.BackgroundMass, en.rng)
}
