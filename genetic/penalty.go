// SPDX-License-Identifier: MIT

// Package genetic - penalty self-adaptation.
//
// The PenaltyManager owns one integer coefficient per constraint
// dimension: one per load dimension, then time warp, excess distance and
// excess duration. Each dimension keeps its own sliding window of recent
// offspring feasibility; when a window fills, the coefficient moves
// multiplicatively towards the target feasible fraction and the window
// clears. Penalties only ever change at generation boundaries, never
// during local search.
//
// Initial values weigh an average unit of violation like an average edge
// cost, so differently scaled instances start balanced.
package genetic

import (
	"github.com/katalvlaran/lvlroute/vrp"
)

// PenaltyManager adapts penalty coefficients from offspring feasibility.
type PenaltyManager struct {
	params PenaltyParams

	loadPenalties []int64
	twPenalty     int64
	distPenalty   int64
	durPenalty    int64

	// One feasibility window per dimension: loads..., tw, dist, dur.
	windows [][]bool
}

// NewPenaltyManager returns a manager with initial penalties scaled from
// the instance: average best edge cost divided by average demand (per load
// dimension), average duration and average distance respectively.
func NewPenaltyManager(data *vrp.ProblemData, params PenaltyParams) *PenaltyManager {
	pm := &PenaltyManager{params: params}
	pm.Reset(data)
	return pm
}

// Reset recomputes the initial penalties from the instance and clears all
// feasibility windows. Called at construction and on restarts.
func (pm *PenaltyManager) Reset(data *vrp.ProblemData) {
	dims := data.NumLoadDimensions()
	n := data.NumLocations()

	// Average best edge cost, distance and duration over all profiles.
	var sumCost, sumDist, sumDur int64
	edges := int64(n) * int64(n-1)
	if edges == 0 {
		edges = 1
	}
	unitDist, unitDur := bestUnitCosts(data)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dist, dur := minProfileEdge(data, i, j)
			sumDist += clampAvg(dist)
			sumDur += clampAvg(dur)
			sumCost += clampAvg(unitDist*dist + unitDur*dur)
		}
	}
	avgCost := sumCost / edges
	avgDist := maxI64(sumDist/edges, 1)
	avgDur := maxI64(sumDur/edges, 1)

	pm.loadPenalties = make([]int64, dims)
	for d := 0; d < dims; d++ {
		var sumLoad int64
		for loc := data.NumDepots(); loc < n; loc++ {
			c := data.Client(loc)
			var del, pick int64
			if c.Delivery != nil {
				del = c.Delivery[d]
			}
			if c.Pickup != nil {
				pick = c.Pickup[d]
			}
			sumLoad += maxI64(del, pick)
		}
		avgLoad := maxI64(sumLoad/maxI64(int64(data.NumClients()), 1), 1)
		pm.loadPenalties[d] = pm.clamp(avgCost / avgLoad)
	}
	pm.twPenalty = pm.clamp(avgCost / avgDur)
	pm.distPenalty = pm.clamp(avgCost / avgDist)
	pm.durPenalty = pm.clamp(avgCost / avgDur)

	pm.windows = make([][]bool, dims+3)
	for i := range pm.windows {
		pm.windows[i] = make([]bool, 0, pm.params.SolutionsBetweenUpdates)
	}
}

// Register records the per-dimension feasibility of an offspring and, once
// a window fills, updates that dimension's penalty.
func (pm *PenaltyManager) Register(sol *vrp.Solution) {
	dims := len(pm.loadPenalties)
	excess := sol.ExcessLoad()
	for d := 0; d < dims; d++ {
		pm.loadPenalties[d] = pm.register(d, pm.loadPenalties[d], excess[d] == 0)
	}
	pm.twPenalty = pm.register(dims, pm.twPenalty, sol.TimeWarp() == 0)
	pm.distPenalty = pm.register(dims+1, pm.distPenalty, sol.ExcessDistance() == 0)
	pm.durPenalty = pm.register(dims+2, pm.durPenalty, sol.ExcessDuration() == 0)
}

func (pm *PenaltyManager) register(idx int, penalty int64, feasible bool) int64 {
	pm.windows[idx] = append(pm.windows[idx], feasible)
	if len(pm.windows[idx]) < pm.params.SolutionsBetweenUpdates {
		return penalty
	}

	feas := 0
	for _, ok := range pm.windows[idx] {
		if ok {
			feas++
		}
	}
	fraction := float64(feas) / float64(len(pm.windows[idx]))
	pm.windows[idx] = pm.windows[idx][:0]

	diff := pm.params.TargetFeasible - fraction
	switch {
	case diff > pm.params.FeasTolerance:
		// Too few feasible offspring: raise the pressure. The +1 keeps
		// small integer penalties moving.
		return pm.clamp(maxI64(int64(float64(penalty)*pm.params.IncreaseFactor), penalty+1))
	case diff < -pm.params.FeasTolerance:
		return pm.clamp(int64(float64(penalty) / pm.params.IncreaseFactor))
	default:
		return penalty
	}
}

func (pm *PenaltyManager) clamp(v int64) int64 {
	if v < pm.params.MinPenalty {
		return pm.params.MinPenalty
	}
	if v > pm.params.MaxPenalty {
		return pm.params.MaxPenalty
	}
	return v
}

// CostEvaluator returns an evaluator over the current penalties.
func (pm *PenaltyManager) CostEvaluator() vrp.CostEvaluator {
	return vrp.NewCostEvaluator(pm.loadPenalties, pm.twPenalty, pm.distPenalty, pm.durPenalty)
}

// BoosterCostEvaluator returns an evaluator with all penalties multiplied
// by the repair booster, used to force feasibility during repair passes.
func (pm *PenaltyManager) BoosterCostEvaluator() vrp.CostEvaluator {
	boost := func(v int64) int64 {
		b := v * pm.params.RepairBooster
		if b > pm.params.MaxPenalty*pm.params.RepairBooster {
			b = pm.params.MaxPenalty * pm.params.RepairBooster
		}
		return b
	}
	loads := make([]int64, len(pm.loadPenalties))
	for d, v := range pm.loadPenalties {
		loads[d] = boost(v)
	}
	return vrp.NewCostEvaluator(loads, boost(pm.twPenalty), boost(pm.distPenalty), boost(pm.durPenalty))
}

// Penalties returns the current coefficients: loads..., time warp, excess
// distance, excess duration.
func (pm *PenaltyManager) Penalties() []int64 {
	out := append([]int64(nil), pm.loadPenalties...)
	return append(out, pm.twPenalty, pm.distPenalty, pm.durPenalty)
}

func bestUnitCosts(data *vrp.ProblemData) (int64, int64) {
	unitDist, unitDur := int64(1), int64(0)
	for vt := 0; vt < data.NumVehicleTypes(); vt++ {
		t := data.VehicleType(vt)
		if vt == 0 || t.UnitDistanceCost < unitDist {
			unitDist = t.UnitDistanceCost
		}
		if vt == 0 || t.UnitDurationCost < unitDur {
			unitDur = t.UnitDurationCost
		}
	}
	return unitDist, unitDur
}

func minProfileEdge(data *vrp.ProblemData, i, j int) (int64, int64) {
	dist := data.Distance(0, i, j)
	dur := data.Duration(0, i, j)
	for p := 1; p < data.NumProfiles(); p++ {
		if d := data.Distance(p, i, j); d < dist {
			dist = d
		}
		if d := data.Duration(p, i, j); d < dur {
			dur = d
		}
	}
	return dist, dur
}

// clampAvg keeps sentinel-valued (forbidden) edges from dominating the
// averages used for initial penalties.
func clampAvg(v int64) int64 {
	const ceiling = 1 << 30
	if v > ceiling {
		return ceiling
	}
	return v
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
