package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/integrators"
	"github.com/san-kum/kinetics/internal/physics"
	"github.com/san-kum/kinetics/internal/random"
	"github.com/san-kum/kinetics/internal/sim"
)

// Experiment wires a config into a ready simulator. All randomness of the
// run comes from one stream seeded with cfg.Seed.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	rng       *random.Stream
	simulator *sim.Simulator
	law       physics.Law
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		rng:      random.New(cfg.Seed),
	}
}

func (x *Experiment) Setup() error {
	cfg := x.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	build, err := x.registry.GetBuilder(cfg.Kind)
	if err != nil {
		return err
	}
	e, err := build(cfg, x.rng)
	if err != nil {
		return err
	}
	s := sim.New(e)

	switch cfg.Integrator {
	case "", "newton":
	default:
		pusher, err := integrators.Get(cfg.Integrator, cfg.Workers)
		if err != nil {
			return err
		}
		s.SetField(pusher, dynamo.Field{E: vec(cfg.Field.E), B: vec(cfg.Field.B)})
	}

	if cfg.Force.Law != "" {
		law, err := physics.NewLaw(cfg.Force.Law, cfg.Force.Constant, cfg.Force.Softening)
		if err != nil {
			return err
		}
		x.law = law
		s.SetForceLaw(law)
	}

	if cfg.Collisions.Enabled {
		en, err := x.collisionEngine()
		if err != nil {
			return err
		}
		en.InitCollisionTimes(e)
		s.SetCollisions(en)
	}

	if cfg.Kind == config.KindBox && cfg.Particles.Periodic {
		s.SetDomain(domainOf(cfg.Particles))
	}

	var potential physics.PotentialLaw
	if x.law != nil {
		potential = x.law
	}
	for _, m := range x.registry.DefaultMetrics(cfg, potential) {
		s.AddMetric(m)
	}

	x.simulator = s
	return nil
}

func (x *Experiment) collisionEngine() (*collision.Engine, error) {
	cc := x.cfg.Collisions
	var freq collision.Frequency = collision.Constant(cc.Rate)
	if cc.CrossSections != "" {
		cs, err := collision.LoadCrossSection(cc.CrossSections, cc.GasDensity, x.cfg.Particles.Mass)
		if err != nil {
			return nil, err
		}
		freq = cs
	}
	return collision.NewEngine(collision.Model{
		BackgroundMass:   cc.BackgroundMass,
		MaxFrequency:     cc.MaxFrequency,
		Frequency:        freq,
		Temperature:      cc.Temperature,
		LegacyAcceptance: cc.LegacyAcceptance,
	}, x.rng)
}

func (x *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            x.cfg.Dt,
		Duration:      x.cfg.Duration,
		Samples:       x.cfg.Samples,
		ValidateState: x.cfg.ValidateState,
	}
}

func (x *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if x.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return x.simulator.Run(ctx, x.SimConfig())
}

func (x *Experiment) Config() *config.Config { return x.cfg }

// Simulator returns the underlying simulator for adding observers.
func (x *Experiment) Simulator() *sim.Simulator {
	return x.simulator
}

// Factory builds one experiment per replica seed for sim.Batch.
func Factory(cfg *config.Config) sim.Factory {
	return func(seed uint64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		x := New(c)
		if err := x.Setup(); err != nil {
			return nil, err
		}
		return x.Simulator(), nil
	}
}
