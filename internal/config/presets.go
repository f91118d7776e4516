package config

import "sort"

const (
	electronMass   = 9.10938356e-31
	electronCharge = 1.60217662e-19
	argonMass      = 6.63352088e-26
)

func thermalBox(name string, count int, dt, duration float64) *Config {
	return &Config{
		Name: name, Kind: KindBox, Dt: dt, Duration: duration, Samples: 350, Seed: DefaultSeed,
		Particles: ParticlesConfig{
			Count: count, Mass: electronMass, Temperature: 11600,
			DomainX: [2]float64{0, 1}, DomainY: [2]float64{0, 1}, Periodic: true,
		},
	}
}

func collisional(name string, count int, dt, duration, temperature float64) *Config {
	cfg := thermalBox(name, count, dt, duration)
	cfg.Collisions = CollisionConfig{
		Enabled: true, BackgroundMass: argonMass, MaxFrequency: 1e7, Rate: 0.5e7, Temperature: temperature,
	}
	return cfg
}

// Presets holds the reference scenarios grouped by kind.
var Presets = map[string]map[string]*Config{
	KindParticle: {
		"boris": {
			Name: "boris", Kind: KindParticle, Integrator: "boris", Dt: 1e-3, Duration: 10, Samples: 1000, Seed: DefaultSeed,
			Field:     FieldConfig{E: [3]float64{1, 0, 0}, B: [3]float64{0, 0, 1}},
			Particles: ParticlesConfig{Count: 1, Mass: 1, Charge: 1, Velocity: [3]float64{1, 1, 0}},
		},
		"boris_relativistic": {
			Name: "boris_relativistic", Kind: KindParticle, Integrator: "boris_relativistic", Dt: 1e-13, Duration: 1e-10, Samples: 1000, Seed: DefaultSeed,
			Field:     FieldConfig{E: [3]float64{1e8, 0, 0}, B: [3]float64{0, 0, 1}},
			Particles: ParticlesConfig{Count: 1, Mass: electronMass, Charge: electronCharge, Velocity: [3]float64{0, 1e8, 0}},
		},
	},
	KindBox: {
		"collisionless": thermalBox("collisionless", 10000, 1e-9, 1e-5),
		"collisional":   collisional("collisional", 10000, 1e-9, 1e-5, 0),
		"hot":           collisional("hot", 1000, 1e-8, 1e-2, 11600),
	},
	KindBodies: {
		"solar": {
			Name: "solar", Kind: KindBodies, Dt: 3600, Duration: 365 * 24 * 3600, Samples: 5000, Seed: DefaultSeed,
			Force: ForceConfig{Law: "gravity", Constant: 6.674e-20},
			Bodies: []BodyConfig{
				{Name: "sun", Mass: 1988500e24},
				{Name: "earth", Mass: 5.9726e24, Position: [3]float64{147.09e6, 0, 0}, Velocity: [3]float64{0, 30.29, 0}},
				{Name: "moon", Mass: 0.07342e24, Position: [3]float64{147.09e6 + 0.3633e6, 0, 0}, Velocity: [3]float64{0, 30.29 + 1.076, 0}},
			},
		},
	},
}

func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// FindPreset looks a preset up by name across all kinds.
func FindPreset(name string) *Config {
	for _, kindPresets := range Presets {
		if cfg, ok := kindPresets[name]; ok {
			return cfg
		}
	}
	return nil
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Kinds() []string {
	kinds := make([]string, 0, len(Presets))
	for kind := range Presets {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
