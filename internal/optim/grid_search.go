package optim

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/san-kum/wcsph/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no parameter combination completed")

// Builder makes a simulator for one point of the grid.
type Builder func(params map[string]float64) (*sim.Simulator, error)

// Trial is the outcome of one grid point. Err is set when the run failed,
// for example because it went unstable.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch runs every combination of parameter values and keeps the one
// with the lowest value of a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(ranges map[string][]float64) *GridSearch {
	g := &GridSearch{}
	for name := range ranges {
		g.paramNames = append(g.paramNames, name)
	}
	sort.Strings(g.paramNames)
	for _, name := range g.paramNames {
		g.ranges = append(g.ranges, ranges[name])
	}
	return g
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the best parameters, their metric value and every trial in
// grid order. Failed trials are recorded but never chosen.
func (g *GridSearch) Search(ctx context.Context, build Builder, cfg sim.Config, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	if g.Size() == 0 {
		return nil, best, trials, ErrNoCandidate
	}

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		t := Trial{Params: params}
		defer func() { trials = append(trials, t) }()

		s, err := build(params)
		if err != nil {
			t.Err = err
			return
		}
		result, err := s.Run(ctx, cfg)
		if err != nil {
			t.Err = err
			return
		}

		t.Value = result.Metrics[metricName]
		if t.Value < best {
			best = t.Value
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, ErrNoCandidate
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
