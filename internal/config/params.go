package config

import (
	"fmt"
	"sort"
)

var params = map[string]func(c *Config, v float64){
	"dt":                     func(c *Config, v float64) { c.Dt = v },
	"duration":               func(c *Config, v float64) { c.Duration = v },
	"samples":                func(c *Config, v float64) { c.Samples = int(v) },
	"seed":                   func(c *Config, v float64) { c.Seed = uint64(v) },
	"workers":                func(c *Config, v float64) { c.Workers = int(v) },
	"e_x":                    func(c *Config, v float64) { c.Field.E[0] = v },
	"e_y":                    func(c *Config, v float64) { c.Field.E[1] = v },
	"e_z":                    func(c *Config, v float64) { c.Field.E[2] = v },
	"b_x":                    func(c *Config, v float64) { c.Field.B[0] = v },
	"b_y":                    func(c *Config, v float64) { c.Field.B[1] = v },
	"b_z":                    func(c *Config, v float64) { c.Field.B[2] = v },
	"count":                  func(c *Config, v float64) { c.Particles.Count = int(v) },
	"mass":                   func(c *Config, v float64) { c.Particles.Mass = v },
	"charge":                 func(c *Config, v float64) { c.Particles.Charge = v },
	"temperature":            func(c *Config, v float64) { c.Particles.Temperature = v },
	"force_constant":         func(c *Config, v float64) { c.Force.Constant = v },
	"softening":              func(c *Config, v float64) { c.Force.Softening = v },
	"rate":                   func(c *Config, v float64) { c.Collisions.Rate = v },
	"max_frequency":          func(c *Config, v float64) { c.Collisions.MaxFrequency = v },
	"background_mass":        func(c *Config, v float64) { c.Collisions.BackgroundMass = v },
	"background_temperature": func(c *Config, v float64) { c.Collisions.Temperature = v },
	"gas_density":            func(c *Config, v float64) { c.Collisions.GasDensity = v },
}

// SetParam sets a numeric field by its sweep name. Validation is left to
// Validate.
func (c *Config) SetParam(name string, v float64) error {
	set, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	set(c, v)
	return nil
}

// ParamNames lists the names accepted by SetParam.
func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
