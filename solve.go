// Package lvlroute - the convenience entry point.
package lvlroute

import (
	"github.com/katalvlaran/lvlroute/genetic"
	"github.com/katalvlaran/lvlroute/stop"
	"github.com/katalvlaran/lvlroute/vrp"
)

// SolveOption tweaks a Solve call.
type SolveOption func(*solveConfig)

type solveConfig struct {
	params  genetic.Params
	options []genetic.Option
}

// WithParams replaces the default genetic parameters.
func WithParams(params genetic.Params) SolveOption {
	return func(c *solveConfig) { c.params = params }
}

// WithGeneticOptions forwards options (logger, statistics, metrics) to the
// genetic algorithm.
func WithGeneticOptions(opts ...genetic.Option) SolveOption {
	return func(c *solveConfig) { c.options = append(c.options, opts...) }
}

// Solve runs the hybrid genetic search over the instance until the
// criterion stops it, with all randomness derived from seed. It returns
// the best feasible solution found, or the best penalised one when no
// feasible solution was seen.
func Solve(data *vrp.ProblemData, seed int64, criterion stop.Criterion, opts ...SolveOption) (genetic.Result, error) {
	cfg := solveConfig{params: genetic.DefaultParams()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ga, err := genetic.NewGeneticAlgorithm(data, vrp.NewRNG(seed), cfg.params, cfg.options...)
	if err != nil {
		return genetic.Result{}, err
	}
	return ga.Run(criterion), nil
}
