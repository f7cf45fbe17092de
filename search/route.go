// SPDX-License-Identifier: MIT

// Package search - the mutable route representation.
//
// A search Route owns a visit sequence (clients plus mid-route reload
// depots) for one vehicle and, after Update, cumulative caches over the
// node array [start depot, visits..., end depot]:
//
//	cumDist[p]        distance from the start depot through node p
//	durBefore[p]      duration segment of nodes 0..p
//	durAfter[p]       duration segment of nodes p..end
//	tripBefore[d][p]  load segment of p's trip, truncated at p
//	closedBefore[d][p] excess of trips fully closed at or before p
//	tripAfter[d][p]   load segment from p to the end of p's trip
//	closedAfter[d][p] excess of trips opening strictly after p's trip
//	reloadsBefore/After[p] reload-depot counts
//
// Every operator candidate is "prefix of one route + a few explicit
// visits + suffix of another route"; Candidate evaluates such a splice
// with O(pieces) segment merges, independent of route length, when both
// routes share a vehicle type (otherwise it prices the spliced visits in
// O(L)). Mutation is
// plain slice surgery followed by an O(L) Update.
package search

import (
	"github.com/katalvlaran/lvlroute/vrp"
)

// Route is a mutable visit sequence for one vehicle, with caches.
type Route struct {
	data    *vrp.ProblemData
	idx     int // slot index inside the engine
	vehType int
	vt      vrp.VehicleType
	visits  []int

	// Caches, valid while !dirty. Node positions: 0 is the start depot,
	// 1..len(visits) the visits, len(visits)+1 the end depot.
	locs          []int
	cumDist       []int64
	durBefore     []vrp.DurationSegment
	durAfter      []vrp.DurationSegment
	tripBefore    [][]vrp.LoadSegment
	closedBefore  [][]int64
	tripAfter     [][]vrp.LoadSegment
	closedAfter   [][]int64
	reloadsBefore []int
	reloadsAfter  []int

	numClients int
	excess     []int64
	dirty      bool
}

// NewRoute returns an empty route for the given vehicle type, ready for
// SetVisits/Update.
func NewRoute(data *vrp.ProblemData, idx, vehType int) *Route {
	r := &Route{
		data:    data,
		idx:     idx,
		vehType: vehType,
		vt:      data.VehicleType(vehType),
		dirty:   true,
	}
	r.Update()
	return r
}

// SetVisits replaces the visit sequence. Caches go stale until Update.
func (r *Route) SetVisits(visits []int) {
	r.visits = visits
	r.dirty = true
}

// Visits returns the current visit sequence.
func (r *Route) Visits() []int { return r.visits }

// VehicleType returns the route's vehicle type index.
func (r *Route) VehicleType() int { return r.vehType }

// Len returns the number of visits (excluding the depot endpoints).
func (r *Route) Len() int { return len(r.visits) }

// NumClients returns the number of client visits.
func (r *Route) NumClients() int { return r.numClients }

// Empty reports whether the route serves no client.
func (r *Route) Empty() bool { return r.numClients == 0 }

// LocAt returns the location at node position p (0..Len()+1).
func (r *Route) LocAt(p int) int { return r.locs[p] }

// IsReloadNode reports whether node position p is a mid-route reload stop.
func (r *Route) IsReloadNode(p int) bool {
	return p > 0 && p <= len(r.visits) && r.data.IsDepot(r.locs[p])
}

// Update rebuilds all caches in one forward and one backward walk.
// Complexity: O(len(visits) · load dimensions).
func (r *Route) Update() {
	data, vt := r.data, r.vt
	L := len(r.visits)
	n := L + 2
	dims := data.NumLoadDimensions()
	profile := vt.Profile

	r.locs = grow(r.locs, n)
	r.locs[0] = vt.StartDepot
	copy(r.locs[1:], r.visits)
	r.locs[n-1] = vt.EndDepot

	r.cumDist = growI64(r.cumDist, n)
	r.durBefore = growDS(r.durBefore, n)
	r.durAfter = growDS(r.durAfter, n)
	r.reloadsBefore = grow(r.reloadsBefore, n)
	r.reloadsAfter = grow(r.reloadsAfter, n)
	r.tripBefore = growLoad(r.tripBefore, dims, n)
	r.tripAfter = growLoad(r.tripAfter, dims, n)
	r.closedBefore = growI64s(r.closedBefore, dims, n)
	r.closedAfter = growI64s(r.closedAfter, dims, n)
	r.excess = growI64(r.excess, dims)

	// Forward walk: distance, duration prefix, trip loads, reload counts.
	r.cumDist[0] = 0
	r.durBefore[0] = data.ShiftSegment(vt.StartDepot, vt)
	r.reloadsBefore[0] = 0
	r.numClients = 0
	for d := 0; d < dims; d++ {
		r.tripBefore[d][0] = vrp.LoadSegment{Load: vt.InitialLoadOf(d)}
		r.closedBefore[d][0] = 0
	}

	for p := 1; p < n; p++ {
		prev, loc := r.locs[p-1], r.locs[p]
		r.cumDist[p] = capAdd(r.cumDist[p-1], data.Distance(profile, prev, loc))

		node := data.DurationSegmentOf(loc)
		if p == n-1 {
			node = data.ShiftSegment(vt.EndDepot, vt)
		}
		r.durBefore[p] = r.durBefore[p-1].Merge(data.Duration(profile, prev, loc), node)

		r.reloadsBefore[p] = r.reloadsBefore[p-1]
		switch {
		case p == n-1: // end depot: carry the open trip forward
			for d := 0; d < dims; d++ {
				r.tripBefore[d][p] = r.tripBefore[d][p-1]
				r.closedBefore[d][p] = r.closedBefore[d][p-1]
			}
		case data.IsDepot(loc): // reload: close the trip
			r.reloadsBefore[p]++
			for d := 0; d < dims; d++ {
				r.closedBefore[d][p] = r.closedBefore[d][p-1] +
					r.tripBefore[d][p-1].Excess(vt.CapacityOf(d))
				r.tripBefore[d][p] = vrp.LoadSegment{}
			}
		default:
			r.numClients++
			for d := 0; d < dims; d++ {
				r.tripBefore[d][p] = r.tripBefore[d][p-1].Merge(data.LoadSegmentOf(loc, d))
				r.closedBefore[d][p] = r.closedBefore[d][p-1]
			}
		}
	}

	// Backward walk: duration suffix, trip-suffix loads, reload counts.
	r.durAfter[n-1] = data.ShiftSegment(vt.EndDepot, vt)
	r.reloadsAfter[n-1] = 0
	for d := 0; d < dims; d++ {
		r.tripAfter[d][n-1] = vrp.LoadSegment{}
		r.closedAfter[d][n-1] = 0
	}
	for p := n - 2; p >= 0; p-- {
		loc, next := r.locs[p], r.locs[p+1]

		node := data.DurationSegmentOf(loc)
		if p == 0 {
			node = data.ShiftSegment(vt.StartDepot, vt)
		}
		r.durAfter[p] = node.Merge(data.Duration(profile, loc, next), r.durAfter[p+1])

		r.reloadsAfter[p] = r.reloadsAfter[p+1]
		switch {
		case p == 0:
			for d := 0; d < dims; d++ {
				init := vrp.LoadSegment{Load: vt.InitialLoadOf(d)}
				r.tripAfter[d][p] = init.Merge(r.tripAfter[d][p+1])
				r.closedAfter[d][p] = r.closedAfter[d][p+1]
			}
		case data.IsDepot(loc): // reload: the trip to its right is complete
			r.reloadsAfter[p]++
			for d := 0; d < dims; d++ {
				r.closedAfter[d][p] = r.closedAfter[d][p+1] +
					r.tripAfter[d][p+1].Excess(vt.CapacityOf(d))
				r.tripAfter[d][p] = vrp.LoadSegment{}
			}
		default:
			for d := 0; d < dims; d++ {
				r.tripAfter[d][p] = data.LoadSegmentOf(loc, d).Merge(r.tripAfter[d][p+1])
				r.closedAfter[d][p] = r.closedAfter[d][p+1]
			}
		}
	}

	for d := 0; d < dims; d++ {
		r.excess[d] = r.closedBefore[d][n-1] + r.tripBefore[d][n-1].Excess(vt.CapacityOf(d))
	}
	r.dirty = false
}

// Distance returns the route's total distance.
func (r *Route) Distance() int64 { return r.cumDist[len(r.locs)-1] }

// Segment returns the route's full duration segment.
func (r *Route) Segment() vrp.DurationSegment { return r.durBefore[len(r.locs)-1] }

// TimeWarp returns the route's time warp, release times included.
func (r *Route) TimeWarp() int64 { return r.Segment().RouteTimeWarp() }

// ExcessLoad returns the per-dimension excess load over all trips.
func (r *Route) ExcessLoad() []int64 { return r.excess }

// NumReloads returns the number of reload stops.
func (r *Route) NumReloads() int { return r.reloadsBefore[len(r.locs)-1] }

// Cost returns the route's current penalised cost under the evaluator.
func (r *Route) Cost(ce vrp.CostEvaluator) int64 {
	return routeCost(ce, r.vt, r.numClients, r.Distance(), r.Segment(), r.excess)
}

// routeCost prices one route: fixed cost when non-empty, unit costs, and
// the penalty terms. Prize terms are solution-level and handled by the
// operators that change the served-client set.
func routeCost(
	ce vrp.CostEvaluator,
	vt vrp.VehicleType,
	numClients int,
	dist int64,
	ds vrp.DurationSegment,
	excess []int64,
) int64 {
	var cost int64
	if numClients > 0 {
		cost = vt.FixedCost
	}
	cost = capAdd(cost, capMul(vt.UnitDistanceCost, dist))
	cost = capAdd(cost, capMul(vt.UnitDurationCost, ds.Duration))
	cost = capAdd(cost, ce.TimeWarpPenalty(ds.RouteTimeWarp()))
	if over := dist - vt.DistanceLimit(); over > 0 {
		cost = capAdd(cost, ce.DistancePenalty(over))
	}
	if over := ds.Duration - vt.DurationLimit(); over > 0 {
		cost = capAdd(cost, ce.DurationPenalty(over))
	}
	cost = capAdd(cost, ce.LoadPenalty(excess))
	return cost
}

// Candidate prices the route obtained by keeping nodes 0..i of pre, then
// visiting the explicit mid locations, then nodes j..end of suf. pre and
// suf may be the same route (then j > i is required). The result is
// rejected with vrp.MaxValue when the reload budget of pre's vehicle type
// would be exceeded.
//
// Complexity: O(len(mid) · load dimensions) segment merges when pre and
// suf share a vehicle type; O(L) otherwise.
func Candidate(ce vrp.CostEvaluator, pre *Route, i int, mid []int, suf *Route, j int) int64 {
	data, vt := pre.data, pre.vt
	profile := vt.Profile
	dims := data.NumLoadDimensions()
	last := len(suf.locs) - 1

	// Suffix caches bake in the suffix route's depots, shift window,
	// profile and capacity. Across vehicle types they do not transfer;
	// price those splices exactly instead.
	if pre != suf && pre.vehType != suf.vehType {
		return priceVisits(data, pre.vehType, spliceVisits(pre, i, mid, suf, j), ce)
	}

	// Reload budget and client count.
	reloads := pre.reloadsBefore[i] + suf.reloadsAfter[j]
	clients := 0
	for _, loc := range mid {
		if data.IsDepot(loc) {
			reloads++
		} else {
			clients++
		}
	}
	if reloads > vt.MaxReloads {
		return vrp.MaxValue
	}
	clients += prefixClients(pre, i) + suffixClients(suf, j)

	// Distance and duration: prefix caches, explicit middle, suffix caches.
	dist := pre.cumDist[i]
	ds := pre.durBefore[i]
	prev := pre.locs[i]
	for _, loc := range mid {
		dist = capAdd(dist, data.Distance(profile, prev, loc))
		ds = ds.Merge(data.Duration(profile, prev, loc), data.DurationSegmentOf(loc))
		prev = loc
	}
	dist = capAdd(dist, data.Distance(profile, prev, suf.locs[j]))
	dist = capAdd(dist, suf.cumDist[last]-suf.cumDist[j])
	ds = ds.Merge(data.Duration(profile, prev, suf.locs[j]), suf.durAfter[j])

	// Loads: walk the trip structure over the three parts.
	excess := excessBuf[:0]
	for d := 0; d < dims; d++ {
		closed := pre.closedBefore[d][i]
		trip := pre.tripBefore[d][i]
		for _, loc := range mid {
			if data.IsDepot(loc) {
				closed += trip.Excess(vt.CapacityOf(d))
				trip = vrp.LoadSegment{}
			} else {
				trip = trip.Merge(data.LoadSegmentOf(loc, d))
			}
		}
		if suf.IsReloadNode(j) {
			closed += trip.Excess(vt.CapacityOf(d))
			trip = vrp.LoadSegment{}
		}
		bridge := trip.Merge(suf.tripAfter[d][j])
		closed += bridge.Excess(vt.CapacityOf(d)) + suf.closedAfter[d][j]
		excess = append(excess, closed)
	}

	return routeCost(ce, vt, clients, dist, ds, excess)
}

// excessBuf is scratch space for Candidate; the engine is single-threaded.
var excessBuf = make([]int64, 0, 8)

// prefixClients counts client visits among nodes 1..i.
func prefixClients(r *Route, i int) int {
	// reloadsBefore gives depots; the rest of 1..i are clients.
	return i - r.reloadsBefore[i]
}

// suffixClients counts client visits among nodes j..Len().
func suffixClients(r *Route, j int) int {
	total := len(r.locs) - 1 - j // nodes j..end-1
	return total - r.reloadsAfter[j]
}

// priceVisits prices an arbitrary visit sequence by full evaluation.
// Invalid sequences (reload budget, permissions) price at vrp.MaxValue.
func priceVisits(data *vrp.ProblemData, vehType int, visits []int, ce vrp.CostEvaluator) int64 {
	r, err := vrp.NewRoute(data, vehType, visits)
	if err != nil {
		return vrp.MaxValue
	}
	vt := data.VehicleType(vehType)
	var cost int64
	if r.NumClients() > 0 {
		cost = vt.FixedCost
	}
	cost = capAdd(cost, capMul(vt.UnitDistanceCost, r.Distance()))
	cost = capAdd(cost, capMul(vt.UnitDurationCost, r.Duration()))
	cost = capAdd(cost, ce.TimeWarpPenalty(r.TimeWarp()))
	cost = capAdd(cost, ce.DistancePenalty(r.ExcessDistance()))
	cost = capAdd(cost, ce.DurationPenalty(r.ExcessDuration()))
	cost = capAdd(cost, ce.LoadPenalty(r.ExcessLoad()))
	return cost
}

// spliceVisits applies the Candidate splice to pre (and suf when
// distinct), returning the new visit slice for pre's route. Callers
// mutate via SetVisits and Update.
func spliceVisits(pre *Route, i int, mid []int, suf *Route, j int) []int {
	out := make([]int, 0, i+len(mid)+len(suf.visits)-(j-1)+1)
	out = append(out, pre.visits[:i]...)
	out = append(out, mid...)
	if j-1 <= len(suf.visits) {
		out = append(out, suf.visits[j-1:]...)
	}
	return out
}

func grow(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

func growI64(s []int64, n int) []int64 {
	if cap(s) < n {
		return make([]int64, n)
	}
	return s[:n]
}

func growDS(s []vrp.DurationSegment, n int) []vrp.DurationSegment {
	if cap(s) < n {
		return make([]vrp.DurationSegment, n)
	}
	return s[:n]
}

func growLoad(s [][]vrp.LoadSegment, dims, n int) [][]vrp.LoadSegment {
	if len(s) != dims {
		s = make([][]vrp.LoadSegment, dims)
	}
	for d := range s {
		if cap(s[d]) < n {
			s[d] = make([]vrp.LoadSegment, n)
		} else {
			s[d] = s[d][:n]
		}
	}
	return s
}

func growI64s(s [][]int64, dims, n int) [][]int64 {
	if len(s) != dims {
		s = make([][]int64, dims)
	}
	for d := range s {
		if cap(s[d]) < n {
			s[d] = make([]int64, n)
		} else {
			s[d] = s[d][:n]
		}
	}
	return s
}

// capAdd / capMul mirror the saturating arithmetic of package vrp so route
// costs cannot wrap when sentinel edges are involved.
func capAdd(a, b int64) int64 {
	if s := a + b; s < vrp.MaxValue {
		return s
	}
	return vrp.MaxValue
}

func capMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > vrp.MaxValue/b {
		return vrp.MaxValue
	}
	return a * b
}
