package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/experiment"
	"github.com/san-kum/kinetics/internal/storage"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Script is a sequence of runs described in YAML.
type Script struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Steps       []ScriptStep `yaml:"steps"`
}

// ScriptStep starts from a preset or a config file, relative to the script,
// and applies Params on top.
type ScriptStep struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("script %s has no steps", path)
	}
	baseDir := filepath.Dir(path)
	for i := range script.Steps {
		if c := script.Steps[i].Config; c != "" && !filepath.IsAbs(c) {
			script.Steps[i].Config = filepath.Join(baseDir, c)
		}
	}
	return &script, nil
}

func (s ScriptStep) resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		preset := config.FindPreset(s.Preset)
		if preset == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		cfg = preset.Clone()
	default:
		return nil, fmt.Errorf("step needs a preset or a config")
	}
	for name, v := range s.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScript executes all steps in order and saves each run to the store.
// It returns the IDs of the runs saved before any failure.
func RunScript(ctx context.Context, script *Script, store *storage.Store, log io.Writer) ([]string, error) {
	if err := store.Init(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(script.Steps))

	for i, step := range script.Steps {
		cfg, err := step.resolve()
		if err != nil {
			return ids, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(log, "running step %d/%d: %s\n", i+1, len(script.Steps), cfg.Name)

		x := experiment.New(cfg)
		if err := x.Setup(); err != nil {
			return ids, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := x.Run(ctx)
		if err != nil {
			return ids, fmt.Errorf("step %d run: %w", i+1, err)
		}

		id, err := store.Save(cfg, x.Simulator().Ensemble(), result)
		if err != nil {
			return ids, fmt.Errorf("step %d save: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Sweep runs a base scenario across evenly spaced values of one parameter.
type Sweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
}

type SweepResult struct {
	Value         float64
	MaxDrift      float64
	Collisions    collision.Stats
	SideSpeedMean float64
	Metrics       map[string]float64
}

func (s *Sweep) values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	return floats.Span(make([]float64, s.NumSteps), s.Min, s.Max)
}

func RunSweep(ctx context.Context, sweep *Sweep, log io.Writer) ([]SweepResult, error) {
	values := sweep.values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.Param, v); err != nil {
			return nil, err
		}

		x := experiment.New(cfg)
		if err := x.Setup(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		result, err := x.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		r := SweepResult{
			Value:      v,
			MaxDrift:   result.MaxDrift,
			Collisions: result.Collisions,
			Metrics:    result.Metrics,
		}
		if len(result.SideSpeeds) > 0 {
			r.SideSpeedMean = stat.Mean(result.SideSpeeds, nil)
		}
		results = append(results, r)

		fmt.Fprintf(log, "sweep %d/%d: %s=%g\n", i+1, len(values), sweep.Param, v)
	}

	return results, nil
}
