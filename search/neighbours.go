// Package search - granular neighbour lists.
//
// For every client c we precompute an ordered list of the k other clients
// closest to c under a weighted proximity that blends travel distance,
// travel duration and time-window incompatibility (unavoidable waiting or
// time warp when travelling c → other). Restricting moves to these lists
// is what keeps a local search pass near-linear in practice.
//
// The relation is intentionally asymmetric: v ∈ N(u) does not imply
// u ∈ N(v). Ordering ties break on the lower location index so lists are
// deterministic.
package search

import (
	"sort"

	"github.com/katalvlaran/lvlroute/vrp"
)

// NeighbourhoodParams configures granular neighbour list construction.
type NeighbourhoodParams struct {
	// NumNeighbours is k, the list length per client.
	NumNeighbours int `yaml:"num_neighbours"`

	// WeightWaitTime scales the unavoidable-waiting term of the proximity.
	WeightWaitTime float64 `yaml:"weight_wait_time"`

	// WeightTimeWarp scales the unavoidable-time-warp term.
	WeightTimeWarp float64 `yaml:"weight_time_warp"`
}

// DefaultNeighbourhoodParams returns the default neighbourhood parameters.
func DefaultNeighbourhoodParams() NeighbourhoodParams {
	return NeighbourhoodParams{
		NumNeighbours:  20,
		WeightWaitTime: 0.2,
		WeightTimeWarp: 1.0,
	}
}

// ComputeNeighbours returns, per location, the granular neighbour list.
// Depot entries are empty; client entries hold up to params.NumNeighbours
// client locations ordered by increasing proximity score.
//
// Proximity uses the elementwise minimum over all routing profiles, so a
// pair that is close under any profile counts as close.
//
// Complexity: O(profiles · n² + n² log n) time, O(n · k) space.
func ComputeNeighbours(data *vrp.ProblemData, params NeighbourhoodParams) [][]int {
	n := data.NumLocations()
	k := params.NumNeighbours
	if k <= 0 {
		k = DefaultNeighbourhoodParams().NumNeighbours
	}

	out := make([][]int, n)

	type scored struct {
		loc   int
		score float64
	}

	cand := make([]scored, 0, data.NumClients())
	for u := data.NumDepots(); u < n; u++ {
		uc := data.Client(u)
		cand = cand[:0]

		for v := data.NumDepots(); v < n; v++ {
			if v == u {
				continue
			}
			vc := data.Client(v)

			dist, dur := minEdge(data, u, v)

			// Travelling u → v and serving u first: how much waiting or
			// lateness is unavoidable regardless of the rest of the route?
			var wait, warp int64
			if d := vc.TWEarly - dur - uc.ServiceDuration - uc.TWLate; d > 0 {
				wait = d
			}
			if d := uc.TWEarly + uc.ServiceDuration + dur - vc.TWLate; d > 0 {
				warp = d
			}

			score := float64(dist) + float64(dur) +
				params.WeightWaitTime*float64(wait) +
				params.WeightTimeWarp*float64(warp)
			cand = append(cand, scored{loc: v, score: score})
		}

		sort.Slice(cand, func(i, j int) bool {
			if cand[i].score != cand[j].score {
				return cand[i].score < cand[j].score
			}
			return cand[i].loc < cand[j].loc
		})

		take := k
		if take > len(cand) {
			take = len(cand)
		}
		list := make([]int, take)
		for i := 0; i < take; i++ {
			list[i] = cand[i].loc
		}
		out[u] = list
	}

	return out
}

// minEdge returns the elementwise minimum distance and duration from u to v
// over all routing profiles.
func minEdge(data *vrp.ProblemData, u, v int) (int64, int64) {
	dist := data.Distance(0, u, v)
	dur := data.Duration(0, u, v)
	for p := 1; p < data.NumProfiles(); p++ {
		if d := data.Distance(p, u, v); d < dist {
			dist = d
		}
		if d := data.Duration(p, u, v); d < dur {
			dur = d
		}
	}
	return dist, dur
}
