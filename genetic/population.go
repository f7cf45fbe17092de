// Package genetic - population management.
//
// Feasible and infeasible individuals live in separate sub-populations.
// Each individual's biased fitness blends its cost rank with its diversity
// rank (average broken-pairs distance to its NumElite closest peers):
//
//	fitness = rankCost/n + (1 − NumElite/n) · rankDiv/n
//
// Lower is better. When a sub-population exceeds MinPopSize +
// GenerationSize, the worst individual by biased fitness is removed and
// ranks recomputed, repeatedly, until MinPopSize remain.
package genetic

import (
	"sort"

	"github.com/katalvlaran/lvlroute/vrp"
)

type individual struct {
	sol     *vrp.Solution
	cost    int64
	fitness float64
}

type subPopulation struct {
	params  PopulationParams
	members []*individual
}

// Population holds the feasible and infeasible sub-populations.
type Population struct {
	data   *vrp.ProblemData
	rng    *vrp.RNG
	params PopulationParams

	feasible   subPopulation
	infeasible subPopulation
}

// NewPopulation returns an empty population.
func NewPopulation(data *vrp.ProblemData, rng *vrp.RNG, params PopulationParams) *Population {
	return &Population{
		data:       data,
		rng:        rng,
		params:     params,
		feasible:   subPopulation{params: params},
		infeasible: subPopulation{params: params},
	}
}

// Insert adds the solution to its matching sub-population and purges on
// overflow.
func (p *Population) Insert(sol *vrp.Solution, ce vrp.CostEvaluator) {
	sub := &p.infeasible
	if sol.IsFeasible() {
		sub = &p.feasible
	}
	sub.members = append(sub.members, &individual{sol: sol, cost: ce.PenalisedCost(sol)})
	p.updateFitness(sub)

	// On overflow, shrink back to the minimum size one worst-by-fitness
	// member at a time, recomputing ranks after each removal.
	capacity := p.params.MinPopSize + p.params.GenerationSize
	if len(sub.members) > capacity {
		for len(sub.members) > p.params.MinPopSize {
			p.purgeWorst(sub)
		}
	}
}

// purgeWorst removes the member with the worst biased fitness and
// recomputes fitness for the survivors.
func (p *Population) purgeWorst(sub *subPopulation) {
	worst := 0
	for i := 1; i < len(sub.members); i++ {
		if sub.members[i].fitness > sub.members[worst].fitness {
			worst = i
		}
	}
	sub.members = append(sub.members[:worst], sub.members[worst+1:]...)
	p.updateFitness(sub)
}

// updateFitness recomputes biased fitness for every member of sub.
func (p *Population) updateFitness(sub *subPopulation) {
	n := len(sub.members)
	if n == 0 {
		return
	}

	byCost := make([]int, n)
	for i := range byCost {
		byCost[i] = i
	}
	sort.SliceStable(byCost, func(a, b int) bool {
		return sub.members[byCost[a]].cost < sub.members[byCost[b]].cost
	})

	numElite := p.params.NumElite
	if numElite > n {
		numElite = n
	}

	// Average broken-pairs distance to the numElite closest peers; higher
	// average means more diverse, which ranks better.
	divScore := make([]float64, n)
	dists := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		dists = dists[:0]
		for j := 0; j < n; j++ {
			if i != j {
				dists = append(dists, BrokenPairsDistance(p.data, sub.members[i].sol, sub.members[j].sol))
			}
		}
		sort.Float64s(dists)
		k := numElite
		if k > len(dists) {
			k = len(dists)
		}
		var sum float64
		for _, d := range dists[:k] {
			sum += d
		}
		if k > 0 {
			divScore[i] = sum / float64(k)
		}
	}

	byDiv := make([]int, n)
	for i := range byDiv {
		byDiv[i] = i
	}
	sort.SliceStable(byDiv, func(a, b int) bool {
		return divScore[byDiv[a]] > divScore[byDiv[b]]
	})

	rankCost := make([]int, n)
	rankDiv := make([]int, n)
	for rank, i := range byCost {
		rankCost[i] = rank + 1
	}
	for rank, i := range byDiv {
		rankDiv[i] = rank + 1
	}

	eliteWeight := 1 - float64(numElite)/float64(n)
	for i, m := range sub.members {
		m.fitness = float64(rankCost[i])/float64(n) + eliteWeight*float64(rankDiv[i])/float64(n)
	}
}

// Select returns a parent by binary tournament over the union of both
// sub-populations: two uniformly drawn members, the one with the better
// biased fitness wins.
func (p *Population) Select() *vrp.Solution {
	first := p.tournamentPick()
	second := p.tournamentPick()
	if second.fitness < first.fitness {
		first = second
	}
	return first.sol
}

func (p *Population) tournamentPick() *individual {
	total := len(p.feasible.members) + len(p.infeasible.members)
	idx := p.rng.Intn(total)
	if idx < len(p.feasible.members) {
		return p.feasible.members[idx]
	}
	return p.infeasible.members[idx-len(p.feasible.members)]
}

// Size returns the total number of individuals.
func (p *Population) Size() int {
	return len(p.feasible.members) + len(p.infeasible.members)
}

// NumFeasible returns the size of the feasible sub-population.
func (p *Population) NumFeasible() int { return len(p.feasible.members) }

// NumInfeasible returns the size of the infeasible sub-population.
func (p *Population) NumInfeasible() int { return len(p.infeasible.members) }

// BestCost returns the best penalised cost in the given sub-population,
// or vrp.MaxValue when it is empty.
func (p *Population) BestCost(feasible bool) int64 {
	sub := &p.infeasible
	if feasible {
		sub = &p.feasible
	}
	best := vrp.MaxValue
	for _, m := range sub.members {
		if m.cost < best {
			best = m.cost
		}
	}
	return best
}

// Clear empties both sub-populations (restart).
func (p *Population) Clear() {
	p.feasible.members = p.feasible.members[:0]
	p.infeasible.members = p.infeasible.members[:0]
}
