// SPDX-License-Identifier: MIT

// Package vrp - penalised objective evaluation.
//
// CostEvaluator turns a Solution's aggregate attributes into one int64
// objective:
//
//	cost = Σ fixed vehicle cost
//	     + Σ unit-distance · distance + Σ unit-duration · duration
//	     + Σ prizes of unserved clients
//	     + λ_load · excess load (per dimension)
//	     + λ_tw   · time warp
//	     + λ_dist · excess distance
//	     + λ_dur  · excess duration
//
// Move deltas in the search engine use the same arithmetic, so a move's
// delta and the difference of evaluated solutions agree exactly. Ties are
// broken strictly: equal-cost moves are never applied.
package vrp

// CostEvaluator weighs constraint violations against routing cost. Penalty
// coefficients are non-negative integers owned by the penalty manager; the
// evaluator itself is an immutable value.
type CostEvaluator struct {
	loadPenalties []int64 // one per load dimension
	twPenalty     int64
	distPenalty   int64
	durPenalty    int64
}

// NewCostEvaluator returns an evaluator with the given penalty
// coefficients. loadPenalties must have one entry per load dimension of
// the instance it is used with; missing entries count as zero.
func NewCostEvaluator(loadPenalties []int64, twPenalty, distPenalty, durPenalty int64) CostEvaluator {
	cp := make([]int64, len(loadPenalties))
	copy(cp, loadPenalties)
	return CostEvaluator{
		loadPenalties: cp,
		twPenalty:     twPenalty,
		distPenalty:   distPenalty,
		durPenalty:    durPenalty,
	}
}

// LoadPenalty returns the penalty for the given per-dimension excess loads.
func (ce CostEvaluator) LoadPenalty(excess []int64) int64 {
	var total int64
	for d, e := range excess {
		if d < len(ce.loadPenalties) {
			total = addCap(total, mulCap(ce.loadPenalties[d], e))
		}
	}
	return total
}

// TimeWarpPenalty returns the penalty for the given time warp.
func (ce CostEvaluator) TimeWarpPenalty(timeWarp int64) int64 {
	return mulCap(ce.twPenalty, timeWarp)
}

// DistancePenalty returns the penalty for the given excess distance.
func (ce CostEvaluator) DistancePenalty(excessDistance int64) int64 {
	return mulCap(ce.distPenalty, excessDistance)
}

// DurationPenalty returns the penalty for the given excess duration.
func (ce CostEvaluator) DurationPenalty(excessDuration int64) int64 {
	return mulCap(ce.durPenalty, excessDuration)
}

// PenalisedCost returns the full penalised objective of the solution.
func (ce CostEvaluator) PenalisedCost(sol *Solution) int64 {
	cost := sol.FixedVehicleCost()
	cost = addCap(cost, sol.DistanceCost())
	cost = addCap(cost, sol.DurationCost())
	cost = addCap(cost, sol.UncollectedPrizes())
	cost = addCap(cost, ce.LoadPenalty(sol.ExcessLoad()))
	cost = addCap(cost, ce.TimeWarpPenalty(sol.TimeWarp()))
	cost = addCap(cost, ce.DistancePenalty(sol.ExcessDistance()))
	cost = addCap(cost, ce.DurationPenalty(sol.ExcessDuration()))
	return cost
}

// Cost returns the objective of a feasible solution, or MaxValue when the
// solution violates any constraint.
func (ce CostEvaluator) Cost(sol *Solution) int64 {
	if !sol.IsFeasible() {
		return MaxValue
	}
	return ce.PenalisedCost(sol)
}

// mulCap returns a*b saturated at MaxValue; both operands non-negative.
func mulCap(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > MaxValue/b {
		return MaxValue
	}
	return a * b
}
