// Package stats collects per-generation solver statistics, optionally
// exported as Prometheus gauges on a dedicated registry.
//
// The collector is passive: the genetic loop pushes one Generation record
// per iteration; nothing here feeds back into the search. The Prometheus
// half follows the dedicated-registry pattern (no default-registry
// pollution) so embedding applications scrape exactly what they mount.
package stats

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation is one iteration's snapshot.
type Generation struct {
	Iteration      int
	FeasibleSize   int
	InfeasibleSize int
	FeasibleBest   int64 // best penalised cost among feasible, MaxValue when none
	InfeasibleBest int64
	FeasibleFrac   float64 // fraction of feasible individuals
	Penalties      []int64 // loads..., time warp, excess distance, excess duration
}

// Statistics accumulates generation snapshots.
type Statistics struct {
	Generations []Generation
}

// Collect appends one snapshot.
func (s *Statistics) Collect(g Generation) {
	s.Generations = append(s.Generations, g)
}

// NumIterations returns the number of collected snapshots.
func (s *Statistics) NumIterations() int { return len(s.Generations) }

// Metrics exports solver progress as Prometheus gauges.
type Metrics struct {
	// Registry is the dedicated registry all gauges live on.
	Registry *prometheus.Registry

	iterations     prometheus.Gauge
	feasibleSize   prometheus.Gauge
	infeasibleSize prometheus.Gauge
	feasibleBest   prometheus.Gauge
	feasibleFrac   prometheus.Gauge
	penalties      *prometheus.GaugeVec

	once sync.Once
}

// NewMetrics returns a Metrics with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		iterations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_iterations_total", Help: "Iterations run so far.",
		}),
		feasibleSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_population_feasible", Help: "Feasible sub-population size.",
		}),
		infeasibleSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_population_infeasible", Help: "Infeasible sub-population size.",
		}),
		feasibleBest: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_best_cost", Help: "Best cost in the feasible sub-population.",
		}),
		feasibleFrac: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_feasible_fraction", Help: "Fraction of feasible individuals.",
		}),
		penalties: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "solver_penalty", Help: "Current penalty coefficient per dimension.",
		}, []string{"dimension"}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	m.once.Do(func() {
		m.Registry.MustRegister(
			m.iterations, m.feasibleSize, m.infeasibleSize,
			m.feasibleBest, m.feasibleFrac, m.penalties,
		)
	})
}

// Observe publishes one generation snapshot.
func (m *Metrics) Observe(g Generation) {
	m.iterations.Set(float64(g.Iteration))
	m.feasibleSize.Set(float64(g.FeasibleSize))
	m.infeasibleSize.Set(float64(g.InfeasibleSize))
	m.feasibleBest.Set(float64(g.FeasibleBest))
	m.feasibleFrac.Set(g.FeasibleFrac)
	for i, p := range g.Penalties {
		m.penalties.WithLabelValues(dimensionName(i, len(g.Penalties))).Set(float64(p))
	}
}

func dimensionName(i, total int) string {
	switch total - i {
	case 1:
		return "excess_duration"
	case 2:
		return "excess_distance"
	case 3:
		return "time_warp"
	default:
		return "load_" + strconv.Itoa(i)
	}
}
