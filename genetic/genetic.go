// Package genetic - the generation loop.
//
// Each iteration: select two parents by binary tournament over the union
// of both sub-populations, recombine, educate the offspring with local
// search under the current penalties, optionally run a boosted repair pass
// when the result is infeasible, insert it, register its feasibility with
// the penalty manager, and restart the population when the best solution
// has stagnated for too long. The stop criterion is polled once per
// generation; the loop is strictly single-threaded and deterministic for
// a fixed seed.
package genetic

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/lvlroute/search"
	"github.com/katalvlaran/lvlroute/stats"
	"github.com/katalvlaran/lvlroute/stop"
	"github.com/katalvlaran/lvlroute/vrp"
)

// Result is the outcome of a solver run.
type Result struct {
	// Best is the best feasible solution found, or the best penalised
	// solution when no feasible one was seen.
	Best *vrp.Solution

	// BestIsFeasible reports which of the two cases applies.
	BestIsFeasible bool

	// Iterations is the number of generations run.
	Iterations int

	// RunTime is the wall-clock duration of Run.
	RunTime time.Duration
}

// GeneticAlgorithm orchestrates the hybrid genetic search.
type GeneticAlgorithm struct {
	data   *vrp.ProblemData
	rng    *vrp.RNG
	params Params

	pm  *PenaltyManager
	pop *Population
	ls  *search.LocalSearch

	log       logrus.FieldLogger
	collector *stats.Statistics
	metrics   *stats.Metrics

	best         *vrp.Solution
	bestCost     int64
	bestFeasible bool
	stagnation   int
}

// Option configures a GeneticAlgorithm.
type Option func(*GeneticAlgorithm)

// WithLogger makes the loop log a debug summary per generation. A nil
// logger is ignored.
func WithLogger(log logrus.FieldLogger) Option {
	return func(ga *GeneticAlgorithm) {
		if log != nil {
			ga.log = log
		}
	}
}

// WithStatistics collects per-generation snapshots into s.
func WithStatistics(s *stats.Statistics) Option {
	return func(ga *GeneticAlgorithm) { ga.collector = s }
}

// WithMetrics publishes per-generation snapshots as Prometheus gauges.
func WithMetrics(m *stats.Metrics) Option {
	return func(ga *GeneticAlgorithm) { ga.metrics = m }
}

// NewGeneticAlgorithm assembles a solver over the instance. The RNG is the
// single source of randomness for the whole run.
func NewGeneticAlgorithm(
	data *vrp.ProblemData,
	rng *vrp.RNG,
	params Params,
	opts ...Option,
) (*GeneticAlgorithm, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	ga := &GeneticAlgorithm{
		data:     data,
		rng:      rng,
		params:   params,
		pm:       NewPenaltyManager(data, params.Penalty),
		pop:      NewPopulation(data, rng, params.Population),
		ls:       search.NewLocalSearch(data, rng, search.ComputeNeighbours(data, params.Neighbourhood)),
		log:      discard,
		bestCost: vrp.MaxValue,
	}
	for _, opt := range opts {
		opt(ga)
	}
	return ga, nil
}

// Run executes generations until the criterion stops the search.
func (ga *GeneticAlgorithm) Run(criterion stop.Criterion) Result {
	start := time.Now()
	ga.seedPopulation()

	iters := 0
	for !criterion.ShouldStop(ga.bestCost) {
		iters++
		ga.step()

		if ga.stagnation >= ga.params.RestartIterations {
			ga.restart()
		}
		ga.report(iters)
	}

	return Result{
		Best:           ga.best,
		BestIsFeasible: ga.bestFeasible,
		Iterations:     iters,
		RunTime:        time.Since(start),
	}
}

// step runs one generation.
func (ga *GeneticAlgorithm) step() {
	ce := ga.pm.CostEvaluator()

	first := ga.pop.Select()
	second := ga.pop.Select()

	offspring := Crossover(ga.data, first, second, ce, ga.rng)
	educated := ga.ls.Run(offspring, ce)

	if !educated.IsFeasible() && ga.rng.Float64() < ga.params.RepairProbability {
		repaired := ga.ls.Run(educated, ga.pm.BoosterCostEvaluator())
		if repaired.IsFeasible() {
			educated = repaired
		}
	}

	ga.pop.Insert(educated, ce)
	ga.pm.Register(educated)
	ga.observe(educated, ce)
}

// observe tracks the best solution. Feasible solutions always dominate
// infeasible ones; within the same class the penalised objective decides.
func (ga *GeneticAlgorithm) observe(sol *vrp.Solution, ce vrp.CostEvaluator) {
	feasible := sol.IsFeasible()
	cost := ce.PenalisedCost(sol)

	better := false
	switch {
	case ga.best == nil:
		better = true
	case feasible && !ga.bestFeasible:
		better = true
	case feasible == ga.bestFeasible && cost < ga.bestCost:
		better = true
	}

	if better {
		ga.best = sol
		ga.bestCost = cost
		ga.bestFeasible = feasible
		ga.stagnation = 0
		return
	}
	ga.stagnation++
}

// seedPopulation fills both sub-populations with educated random
// solutions, as in generation zero.
func (ga *GeneticAlgorithm) seedPopulation() {
	ce := ga.pm.CostEvaluator()
	for i := 0; i < ga.params.Population.MinPopSize; i++ {
		sol := ga.ls.Run(vrp.RandomSolution(ga.data, ga.rng), ce)
		ga.pop.Insert(sol, ce)
		ga.pm.Register(sol)
		ga.observe(sol, ce)
	}
}

// restart clears both sub-populations, resets the penalties to their
// data-scaled defaults and reseeds, keeping the best solution found.
func (ga *GeneticAlgorithm) restart() {
	ga.log.WithField("stagnation", ga.stagnation).Debug("restarting population")
	ga.pop.Clear()
	ga.pm.Reset(ga.data)
	ga.stagnation = 0
	ga.seedPopulation()
}

// report emits the per-generation summary to the logger and collectors.
func (ga *GeneticAlgorithm) report(iter int) {
	feasBest := ga.pop.BestCost(true)
	infeasBest := ga.pop.BestCost(false)
	size := ga.pop.Size()
	frac := 0.0
	if size > 0 {
		frac = float64(ga.pop.NumFeasible()) / float64(size)
	}

	ga.log.WithFields(logrus.Fields{
		"iter":       iter,
		"feasible":   ga.pop.NumFeasible(),
		"infeasible": ga.pop.NumInfeasible(),
		"best":       ga.bestCost,
	}).Debug("generation")

	if ga.collector == nil && ga.metrics == nil {
		return
	}
	snapshot := stats.Generation{
		Iteration:      iter,
		FeasibleSize:   ga.pop.NumFeasible(),
		InfeasibleSize: ga.pop.NumInfeasible(),
		FeasibleBest:   feasBest,
		InfeasibleBest: infeasBest,
		FeasibleFrac:   frac,
		Penalties:      ga.pm.Penalties(),
	}
	if ga.collector != nil {
		ga.collector.Collect(snapshot)
	}
	if ga.metrics != nil {
		ga.metrics.Observe(snapshot)
	}
}
