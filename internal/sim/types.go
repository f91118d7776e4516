package sim

import (
	"time"

	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/dynamo"
)

// Metric observes the ensemble at every sampled step.
type Metric interface {
	Name() string
	Observe(e dynamo.Ensemble, t float64)
	Value() float64
	Reset()
}

// Metrics that track total energy take the run's own samples instead of
// recomputing them from the ensemble.
type baseliner interface {
	SetBaseline(e0 float64)
}

type energyObserver interface {
	ObserveEnergy(energy float64)
}

type Observer interface {
	OnStep(e dynamo.Ensemble, step int, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	// Samples is the number of trajectory and energy samples over the run,
	// both stamped step·Dt; zero disables recording.
	Samples       int
	ValidateState bool
}

// Steps is round(Duration/Dt).
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}

// SampleEvery is the step stride between samples.
func (c Config) SampleEvery() int {
	if c.Samples <= 0 {
		return 0
	}
	return max(1, c.Steps()/c.Samples)
}

type Result struct {
	// EnergyTimes and Energy hold the sampled total energy, Drift its
	// relative change from the initial value.
	EnergyTimes []float64
	Energy      []float64
	Drift       []float64

	InitialEnergy float64
	MaxDrift      float64
	SideSpeeds    []float64
	Collisions    collision.Stats
	Metrics       map[string]float64
	StepsTaken    int
	Elapsed       time.Duration
}
