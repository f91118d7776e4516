package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1e-3
	DefaultDuration = 10.0
	DefaultSamples  = 1000
	DefaultSeed     = 1
)

// Scenario kinds.
const (
	KindParticle = "particle"
	KindBox      = "box"
	KindBodies   = "bodies"
)

type Config struct {
	Name          string          `yaml:"name" toml:"name"`
	Kind          string          `yaml:"kind" toml:"kind"`
	Integrator    string          `yaml:"integrator" toml:"integrator"`
	Dt            float64         `yaml:"dt" toml:"dt"`
	Duration      float64         `yaml:"duration" toml:"duration"`
	Samples       int             `yaml:"samples" toml:"samples"`
	Seed          uint64          `yaml:"seed" toml:"seed"`
	Workers       int             `yaml:"workers" toml:"workers"`
	ValidateState bool            `yaml:"validate_state" toml:"validate_state"`
	Field         FieldConfig     `yaml:"field" toml:"field"`
	Particles     ParticlesConfig `yaml:"particles" toml:"particles"`
	Bodies        []BodyConfig    `yaml:"bodies,omitempty" toml:"bodies,omitempty"`
	Force         ForceConfig     `yaml:"force" toml:"force"`
	Collisions    CollisionConfig `yaml:"collisions" toml:"collisions"`
}

type FieldConfig struct {
	E [3]float64 `yaml:"e,flow" toml:"e"`
	B [3]float64 `yaml:"b,flow" toml:"b"`
}

// ParticlesConfig describes a homogeneous population. Kind "particle" uses
// Position and Velocity for a single particle, kind "box" places Count
// particles uniformly in the domain.
type ParticlesConfig struct {
	Count       int        `yaml:"count" toml:"count"`
	Mass        float64    `yaml:"mass" toml:"mass"`
	Charge      float64    `yaml:"charge" toml:"charge"`
	Temperature float64    `yaml:"temperature" toml:"temperature"`
	Position    [3]float64 `yaml:"position,flow" toml:"position"`
	Velocity    [3]float64 `yaml:"velocity,flow" toml:"velocity"`
	DomainX     [2]float64 `yaml:"domain_x,flow" toml:"domain_x"`
	DomainY     [2]float64 `yaml:"domain_y,flow" toml:"domain_y"`
	Periodic    bool       `yaml:"periodic" toml:"periodic"`
}

type BodyConfig struct {
	Name     string     `yaml:"name" toml:"name"`
	Mass     float64    `yaml:"mass" toml:"mass"`
	Charge   float64    `yaml:"charge" toml:"charge"`
	Position [3]float64 `yaml:"position,flow" toml:"position"`
	Velocity [3]float64 `yaml:"velocity,flow" toml:"velocity"`
}

type ForceConfig struct {
	Law       string  `yaml:"law" toml:"law"`
	Constant  float64 `yaml:"constant" toml:"constant"`
	Softening float64 `yaml:"softening" toml:"softening"`
}

// CollisionConfig selects the background gas. Rate is a constant collision
// frequency; CrossSections names an LXCat file used instead when set.
type CollisionConfig struct {
	Enabled          bool    `yaml:"enabled" toml:"enabled"`
	BackgroundMass   float64 `yaml:"background_mass" toml:"background_mass"`
	MaxFrequency     float64 `yaml:"max_frequency" toml:"max_frequency"`
	Rate             float64 `yaml:"rate" toml:"rate"`
	Temperature      float64 `yaml:"temperature" toml:"temperature"`
	CrossSections    string  `yaml:"cross_sections,omitempty" toml:"cross_sections,omitempty"`
	GasDensity       float64 `yaml:"gas_density,omitempty" toml:"gas_density,omitempty"`
	LegacyAcceptance bool    `yaml:"legacy_acceptance,omitempty" toml:"legacy_acceptance,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "boris",
		Kind:       KindParticle,
		Integrator: "boris",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Samples:    DefaultSamples,
		Seed:       DefaultSeed,
		Particles: ParticlesConfig{
			Count:  1,
			Mass:   1,
			Charge: 1,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML config, or TOML when the file ends in .toml, on top of
// DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.Dt > 0):
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	case !(c.Duration > 0):
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	case c.Samples < 0:
		return fmt.Errorf("samples must not be negative, got %d", c.Samples)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	switch c.Kind {
	case KindParticle:
		if !(c.Particles.Mass > 0) {
			return fmt.Errorf("particle mass must be positive, got %g", c.Particles.Mass)
		}
	case KindBox:
		if c.Particles.Count <= 0 {
			return fmt.Errorf("particle count must be positive, got %d", c.Particles.Count)
		}
		if !(c.Particles.Mass > 0) {
			return fmt.Errorf("particle mass must be positive, got %g", c.Particles.Mass)
		}
		if !(c.Particles.DomainX[1] > c.Particles.DomainX[0]) || !(c.Particles.DomainY[1] > c.Particles.DomainY[0]) {
			return fmt.Errorf("empty domain %v x %v", c.Particles.DomainX, c.Particles.DomainY)
		}
	case KindBodies:
		if len(c.Bodies) == 0 {
			return fmt.Errorf("no bodies configured")
		}
		for _, b := range c.Bodies {
			if !(b.Mass > 0) {
				return fmt.Errorf("body %q: mass must be positive, got %g", b.Name, b.Mass)
			}
		}
	default:
		return fmt.Errorf("unknown kind: %s", c.Kind)
	}

	if c.Collisions.Enabled {
		cc := c.Collisions
		if !(cc.BackgroundMass > 0) || !(cc.MaxFrequency > 0) {
			return fmt.Errorf("collisions need positive background mass and max frequency")
		}
		if cc.CrossSections == "" && cc.Rate > cc.MaxFrequency {
			return fmt.Errorf("collision rate %g exceeds max frequency %g", cc.Rate, cc.MaxFrequency)
		}
		if cc.CrossSections != "" && !(cc.GasDensity > 0) {
			return fmt.Errorf("cross sections need a positive gas density")
		}
	}
	return nil
}

// Clone returns a deep copy, so presets can be modified by flags.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &cp
}
