package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/kinetics/internal/boundary"
	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/integrators"
	"github.com/san-kum/kinetics/internal/metrics"
	"github.com/san-kum/kinetics/internal/physics"
)

// Simulator owns an ensemble and advances it through the step pipeline:
// forces, velocity, collisions, position, boundary, record.
type Simulator struct {
	ensemble dynamo.Ensemble
	field    dynamo.Field
	pusher   integrators.FieldPusher
	law      physics.ForceLaw
	engine   *collision.Engine
	domain   *dynamo.Domain
	sampler  *boundary.SideSampler

	metrics   []Metric
	observers []Observer
}

func New(e dynamo.Ensemble) *Simulator {
	return &Simulator{
		ensemble:  e,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

// SetField selects a field push for the velocity stage.
func (s *Simulator) SetField(p integrators.FieldPusher, f dynamo.Field) {
	s.pusher = p
	s.field = f
}

// SetForceLaw enables pairwise forces. With a field push the forces enter the
// push, otherwise the velocity stage becomes a Newtonian kick.
func (s *Simulator) SetForceLaw(law physics.ForceLaw) { s.law = law }

func (s *Simulator) SetCollisions(en *collision.Engine) { s.engine = en }

// SetDomain enables side sampling and the periodic wrap.
func (s *Simulator) SetDomain(d dynamo.Domain) {
	s.domain = &d
	s.sampler = boundary.NewSideSampler()
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Ensemble() dynamo.Ensemble { return s.ensemble }

func (s *Simulator) Sampler() *boundary.SideSampler { return s.sampler }

// CollisionStats reports the engine counters, if collisions are enabled.
func (s *Simulator) CollisionStats() (collision.Stats, bool) {
	if s.engine == nil {
		return collision.Stats{}, false
	}
	return s.engine.Stats, true
}

// Domain reports the periodic box, if one is set.
func (s *Simulator) Domain() (dynamo.Domain, bool) {
	if s.domain == nil {
		return dynamo.Domain{}, false
	}
	return *s.domain, true
}

func (s *Simulator) potential() physics.PotentialLaw {
	if pl, ok := s.law.(physics.PotentialLaw); ok {
		return pl
	}
	return nil
}

// Energy is the current total energy: midpoint kinetic plus the pair
// potential when the force law provides one.
func (s *Simulator) Energy() float64 {
	return metrics.TotalEnergy(s.ensemble, s.potential())
}

// Step advances the ensemble by one dt. Collisions are tested at t = step·dt.
func (s *Simulator) Step(step int, dt float64) error {
	e := s.ensemble
	t := float64(step) * dt

	// the field push folds Force into its kicks
	if s.law != nil || s.pusher != nil {
		physics.ClearForces(e)
	}
	if s.law != nil {
		physics.AccumulateForces(e, s.law)
	}

	switch {
	case s.pusher != nil:
		s.pusher.ApplyField(e, dt, s.field)
	case s.law != nil:
		integrators.IntegrateVelocity(e, dt)
	default:
		e.SnapshotVelocities()
	}

	if s.engine != nil {
		if err := s.engine.Apply(e, t); err != nil {
			return &dynamo.SimulationError{Step: step, Time: t, Wrapped: err}
		}
	}

	integrators.IntegratePosition(e, dt)

	if s.domain != nil {
		s.sampler.Sample(e, *s.domain)
		boundary.ApplyPeriodic(e, *s.domain)
	}
	return nil
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := cfg.SampleEvery()
	result := &Result{
		Metrics: make(map[string]float64),
	}
	if every > 0 {
		n := steps/every + 1
		result.EnergyTimes = make([]float64, 0, n)
		result.Energy = make([]float64, 0, n)
		result.Drift = make([]float64, 0, n)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	potential := s.potential()
	result.InitialEnergy = s.Energy()
	for _, m := range s.metrics {
		if b, ok := m.(baseliner); ok {
			b.SetBaseline(result.InitialEnergy)
		}
	}
	start := time.Now()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, start)
			return result, ctx.Err()
		default:
		}

		sample := every > 0 && i%every == 0
		t := float64(i) * cfg.Dt

		// potential at x_i pairs with the midpoint kinetic energy after the kick
		pe := 0.0
		if sample && potential != nil {
			pe = physics.TotalPotentialEnergy(s.ensemble, potential)
		}
		// the state at t = 0 is the trajectory seed
		if sample && i > 0 {
			if err := s.ensemble.RecordSample(t); err != nil {
				s.finish(result, start)
				return result, &dynamo.SimulationError{Step: i, Time: t, Wrapped: err}
			}
		}

		if err := s.Step(i, cfg.Dt); err != nil {
			s.finish(result, start)
			return result, err
		}
		result.StepsTaken++

		if cfg.ValidateState && !s.ensemble.IsValid() {
			s.finish(result, start)
			return result, &dynamo.SimulationError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		if sample {
			energy := pe + metrics.KineticEnergy(s.ensemble)
			drift := metrics.RelativeDrift(result.InitialEnergy, energy)
			result.EnergyTimes = append(result.EnergyTimes, t)
			result.Energy = append(result.Energy, energy)
			result.Drift = append(result.Drift, drift)
			result.MaxDrift = math.Max(result.MaxDrift, math.Abs(drift))

			for _, m := range s.metrics {
				if eo, ok := m.(energyObserver); ok {
					eo.ObserveEnergy(energy)
					continue
				}
				m.Observe(s.ensemble, t)
			}
		}

		for _, obs := range s.observers {
			obs.OnStep(s.ensemble, i, t)
		}
	}

	if every > 0 {
		if err := s.ensemble.RecordSample(float64(steps) * cfg.Dt); err != nil {
			s.finish(result, start)
			return result, &dynamo.SimulationError{Step: steps, Time: float64(steps) * cfg.Dt, Wrapped: err}
		}
	}

	s.finish(result, start)
	return result, nil
}

func (s *Simulator) finish(result *Result, start time.Time) {
	result.Elapsed = time.Since(start)
	if s.engine != nil {
		result.Collisions = s.engine.Stats
	}
	if s.sampler != nil {
		result.SideSpeeds = append([]float64(nil), s.sampler.Speeds()...)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps until the duration elapses, the context is cancelled
// or the callback returns false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(e dynamo.Ensemble, step int, t float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	steps := cfg.Steps()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Step(i, cfg.Dt); err != nil {
			return err
		}
		t := float64(i+1) * cfg.Dt

		if cfg.ValidateState && !s.ensemble.IsValid() {
			return &dynamo.SimulationError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}
		if !callback(s.ensemble, i, t) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %g", cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", cfg.Duration)
	}
	if cfg.Samples < 0 {
		return fmt.Errorf("samples must not be negative, got %d", cfg.Samples)
	}
	return nil
}
