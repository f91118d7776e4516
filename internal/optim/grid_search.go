package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/experiment"
	"github.com/san-kum/kinetics/internal/sim"
)

// MaxDrift names the run's maximum relative energy drift as an objective.
const MaxDrift = "max_drift"

// GridSearch tries every combination of parameter values on a base
// scenario and keeps the one with the smallest objective.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Objective reads metric from a result. MaxDrift selects Result.MaxDrift,
// other names select a registered metric.
func Objective(r *sim.Result, metric string) (float64, error) {
	if metric == MaxDrift {
		return r.MaxDrift, nil
	}
	v, ok := r.Metrics[metric]
	if !ok {
		return 0, fmt.Errorf("unknown metric: %s", metric)
	}
	return v, nil
}

// Search returns the best parameters and their objective. Combinations whose
// run fails are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metric, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no parameter combination completed")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metric string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		for name, v := range current {
			if err := cfg.SetParam(name, v); err != nil {
				return err
			}
		}

		x := experiment.New(cfg)
		if err := x.Setup(); err != nil {
			return nil
		}
		result, err := x.Run(ctx)
		if err != nil {
			return nil
		}

		val, err := Objective(result, metric)
		if err != nil {
			return err
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metric, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
