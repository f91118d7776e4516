package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/metrics"
	"github.com/san-kum/kinetics/internal/physics"
	"github.com/san-kum/kinetics/internal/random"
	"github.com/san-kum/kinetics/internal/sim"
)

// Builder creates the initial ensemble for a scenario kind.
type Builder func(cfg *config.Config, rng *random.Stream) (dynamo.Ensemble, error)

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{
		builders: make(map[string]Builder),
	}

	r.builders[config.KindParticle] = buildParticle
	r.builders[config.KindBox] = buildBox
	r.builders[config.KindBodies] = buildBodies

	return r
}

func (r *Registry) GetBuilder(kind string) (Builder, error) {
	fn, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind: %s", kind)
	}
	return fn, nil
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics observes mean kinetic energy, energy drift and, for the
// relativistic push, that no particle reaches c.
func (r *Registry) DefaultMetrics(cfg *config.Config, law physics.PotentialLaw) []sim.Metric {
	threshold := math.Inf(1)
	if cfg.Integrator == "boris_relativistic" {
		threshold = dynamo.SpeedOfLight
	}
	return []sim.Metric{
		metrics.NewKinetic(),
		metrics.NewEnergyDrift(law),
		metrics.NewStability(threshold),
	}
}

func vec(a [3]float64) dynamo.Vector { return dynamo.Vec(a[0], a[1], a[2]) }

func buildParticle(cfg *config.Config, _ *random.Stream) (dynamo.Ensemble, error) {
	pc := cfg.Particles
	p, err := dynamo.NewParticle(pc.Mass, pc.Charge, vec(pc.Position), vec(pc.Velocity))
	if err != nil {
		return nil, err
	}
	return dynamo.Ensemble{p}, nil
}

func domainOf(pc config.ParticlesConfig) dynamo.Domain {
	return dynamo.Domain{
		X: dynamo.Interval{Begin: pc.DomainX[0], End: pc.DomainX[1]},
		Y: dynamo.Interval{Begin: pc.DomainY[0], End: pc.DomainY[1]},
	}
}

// buildBox places the population uniformly in the domain and, for a positive
// temperature, draws Maxwellian velocities.
func buildBox(cfg *config.Config, rng *random.Stream) (dynamo.Ensemble, error) {
	pc := cfg.Particles
	d := domainOf(pc)
	e, err := dynamo.Generate(pc.Count, d.X, d.Y, pc.Mass, rng)
	if err != nil {
		return nil, err
	}
	for i := range e {
		e[i].Charge = pc.Charge
	}
	if pc.Temperature > 0 {
		collision.SetThermalVelocities(e, pc.Temperature, rng)
	}
	return e, nil
}

func buildBodies(cfg *config.Config, _ *random.Stream) (dynamo.Ensemble, error) {
	e := make(dynamo.Ensemble, 0, len(cfg.Bodies))
	for _, b := range cfg.Bodies {
		p, err := dynamo.NewParticle(b.Mass, b.Charge, vec(b.Position), vec(b.Velocity))
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
		e = append(e, p)
	}
	return e, nil
}
