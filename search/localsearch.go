// Package search - the neighbourhood descent engine.
//
// LocalSearch repeatedly shuffles the clients, scans each client u against
// its granular neighbours v, and applies the first strictly improving move
// from the node operator set:
//
//  1. relocate u after v
//  2. relocate the pair (u, succ u) after v
//  3. relocate the reversed pair after v
//  4. swap u and v
//  5. swap (u, succ u) with v
//  6. swap (u, succ u) with (v, succ v)
//  7. 2-opt within the route (reverse u..v)
//  8. 2-opt* across routes (tail exchange)
//  9. relocate u after v together with a reload stop (best depot, before
//     or after u), when the vehicle type permits reloads
//
// When no neighbour move improves, the engine tries opening an empty
// route, inserting or removing reload stops around u, and removing u when
// it is optional. Unplanned optional clients are reinserted when strictly
// profitable. A pass over all clients with no applied move is a fixed
// point.
//
// Operator kinds are a closed enumeration; everything is evaluated through
// Route.Candidate so deltas and evaluated solutions agree exactly.
package search

import (
	"github.com/katalvlaran/lvlroute/vrp"
)

// LocalSearch is the local search engine. One instance serves one solver
// run; it is not goroutine-safe.
type LocalSearch struct {
	data       *vrp.ProblemData
	rng        *vrp.RNG
	neighbours [][]int

	routes  []*Route
	routeOf []int // per location: engine route slot, -1 when unplanned
	posOf   []int // per location: node position inside its route
}

// NewLocalSearch returns an engine over the given instance and granular
// neighbour lists (see ComputeNeighbours).
func NewLocalSearch(data *vrp.ProblemData, rng *vrp.RNG, neighbours [][]int) *LocalSearch {
	return &LocalSearch{
		data:       data,
		rng:        rng,
		neighbours: neighbours,
		routeOf:    make([]int, data.NumLocations()),
		posOf:      make([]int, data.NumLocations()),
	}
}

// Search runs the node-operator descent on the solution and returns the
// improved (locally optimal) solution.
func (ls *LocalSearch) Search(sol *vrp.Solution, ce vrp.CostEvaluator) *vrp.Solution {
	ls.load(sol)
	ls.descend(ce)
	return ls.toSolution()
}

// Intensify runs the route-operator stage (relocate-star, swap-star) on
// the solution and returns the result.
func (ls *LocalSearch) Intensify(sol *vrp.Solution, ce vrp.CostEvaluator) *vrp.Solution {
	ls.load(sol)
	ls.intensify(ce)
	return ls.toSolution()
}

// Run alternates Search and Intensify until neither improves the
// penalised objective.
func (ls *LocalSearch) Run(sol *vrp.Solution, ce vrp.CostEvaluator) *vrp.Solution {
	cur := sol
	curCost := ce.PenalisedCost(cur)
	for {
		next := ls.Intensify(ls.Search(cur, ce), ce)
		nextCost := ce.PenalisedCost(next)
		if nextCost >= curCost {
			return cur
		}
		cur, curCost = next, nextCost
	}
}

// load rebuilds engine state from an immutable solution: one mutable route
// per solution route plus one empty spare per vehicle type with vehicles
// left over.
func (ls *LocalSearch) load(sol *vrp.Solution) {
	ls.routes = ls.routes[:0]
	used := make([]int, ls.data.NumVehicleTypes())

	for _, r := range sol.Routes() {
		sr := NewRoute(ls.data, len(ls.routes), r.VehicleType())
		sr.SetVisits(append([]int(nil), r.Visits()...))
		sr.Update()
		ls.routes = append(ls.routes, sr)
		used[r.VehicleType()]++
	}
	for vt := 0; vt < ls.data.NumVehicleTypes(); vt++ {
		if used[vt] < ls.data.VehicleType(vt).NumAvailable {
			ls.routes = append(ls.routes, NewRoute(ls.data, len(ls.routes), vt))
		}
	}

	for loc := range ls.routeOf {
		ls.routeOf[loc], ls.posOf[loc] = -1, -1
	}
	for _, r := range ls.routes {
		ls.reindex(r)
	}
}

// toSolution snapshots the engine state into an immutable solution.
func (ls *LocalSearch) toSolution() *vrp.Solution {
	routes := make([]vrp.Route, 0, len(ls.routes))
	for _, r := range ls.routes {
		if r.Empty() {
			continue
		}
		vr, err := vrp.NewRoute(ls.data, r.vehType, r.visits)
		if err != nil {
			panic(err) // engine moves never create invalid routes
		}
		routes = append(routes, vr)
	}
	sol, err := vrp.NewSolution(ls.data, routes)
	if err != nil {
		panic(err)
	}
	return sol
}

// reindex refreshes the location → (route, position) maps for r.
func (ls *LocalSearch) reindex(r *Route) {
	for p := 1; p <= r.Len(); p++ {
		loc := r.locs[p]
		if !ls.data.IsDepot(loc) {
			ls.routeOf[loc] = r.idx
			ls.posOf[loc] = p
		}
	}
}

// descend runs node-operator passes until a full pass applies no move.
func (ls *LocalSearch) descend(ce vrp.CostEvaluator) {
	numDepots := ls.data.NumDepots()
	for {
		improved := false
		perm := ls.rng.Perm(ls.data.NumClients())
		for _, ci := range perm {
			u := numDepots + ci

			if ls.routeOf[u] == -1 {
				if ls.tryInsert(u, ce) {
					improved = true
				}
				continue
			}

			moved := false
			for _, v := range ls.neighbours[u] {
				if v == u || ls.routeOf[v] == -1 {
					continue
				}
				if ls.tryNodeMoves(u, v, ce) {
					improved, moved = true, true
					break
				}
			}
			if moved {
				continue
			}
			if ls.tryEmptyRouteMove(u, ce) || ls.tryReloadMoves(u, ce) || ls.tryRemove(u, ce) {
				improved = true
			}
		}
		if !improved {
			return
		}
	}
}

// tryNodeMoves evaluates the closed node-operator set for the directed
// pair (u, v) and applies the first strictly improving move.
func (ls *LocalSearch) tryNodeMoves(u, v int, ce vrp.CostEvaluator) bool {
	switch {
	case ls.tryRelocate(u, v, ce, false, false):
	case ls.tryRelocate(u, v, ce, true, false):
	case ls.tryRelocate(u, v, ce, true, true):
	case ls.trySwap(u, v, ce, 1, 1):
	case ls.trySwap(u, v, ce, 2, 1):
	case ls.trySwap(u, v, ce, 2, 2):
	case ls.tryTwoOpt(u, v, ce):
	case ls.tryRelocateWithDepot(u, v, ce):
	default:
		return false
	}
	return true
}

// segEnd returns the end position of the length-1 or length-2 client
// segment starting at p in r, or -1 when no such segment exists.
func (ls *LocalSearch) segEnd(r *Route, p, length int) int {
	end := p + length - 1
	if end > r.Len() {
		return -1
	}
	for q := p; q <= end; q++ {
		if ls.data.IsDepot(r.locs[q]) {
			return -1
		}
	}
	return end
}

// tryRelocate relocates u (or the pair u, succ u, optionally reversed)
// directly after v.
func (ls *LocalSearch) tryRelocate(u, v int, ce vrp.CostEvaluator, pair, reversed bool) bool {
	ru, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	rv, pv := ls.routes[ls.routeOf[v]], ls.posOf[v]

	length := 1
	if pair {
		length = 2
	}
	end := ls.segEnd(ru, pu, length)
	if end == -1 {
		return false
	}
	if rv == ru && pv >= pu-1 && pv <= end {
		return false // no-op or segment overlaps the anchor
	}
	if rv != ru && !ls.data.ClientAllowed(u, rv.vehType) {
		return false
	}
	if pair {
		x := ru.locs[pu+1]
		if x == v || (rv != ru && !ls.data.ClientAllowed(x, rv.vehType)) {
			return false
		}
	}

	seg := nodeLocs(ru, pu, end)
	if reversed {
		seg[0], seg[len(seg)-1] = seg[len(seg)-1], seg[0]
	}

	if ru == rv {
		var i, j int
		var mid []int
		if pv > end {
			i, j = pu-1, pv+1
			mid = append(nodeLocs(ru, end+1, pv), seg...)
		} else {
			i, j = pv, end+1
			mid = append(seg, nodeLocs(ru, pv+1, pu-1)...)
		}
		if Candidate(ce, ru, i, mid, ru, j)-ru.Cost(ce) < 0 {
			ls.applyOne(ru, i, mid, j)
			return true
		}
		return false
	}

	c1 := Candidate(ce, ru, pu-1, nil, ru, end+1)
	c2 := Candidate(ce, rv, pv, seg, rv, pv+1)
	if c1+c2-ru.Cost(ce)-rv.Cost(ce) < 0 {
		ls.applyTwo(ru, pu-1, nil, ru, end+1, rv, pv, seg, rv, pv+1)
		return true
	}
	return false
}

// trySwap exchanges the length-uLen segment at u with the length-vLen
// segment at v.
func (ls *LocalSearch) trySwap(u, v int, ce vrp.CostEvaluator, uLen, vLen int) bool {
	ru, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	rv, pv := ls.routes[ls.routeOf[v]], ls.posOf[v]

	uEnd := ls.segEnd(ru, pu, uLen)
	vEnd := ls.segEnd(rv, pv, vLen)
	if uEnd == -1 || vEnd == -1 {
		return false
	}
	if ru == rv && pv <= uEnd && vEnd >= pu {
		return false // overlapping segments
	}

	uSeg := nodeLocs(ru, pu, uEnd)
	vSeg := nodeLocs(rv, pv, vEnd)
	if ru != rv {
		if !ls.segAllowed(vSeg, ru.vehType) || !ls.segAllowed(uSeg, rv.vehType) {
			return false
		}
		c1 := Candidate(ce, ru, pu-1, vSeg, ru, uEnd+1)
		c2 := Candidate(ce, rv, pv-1, uSeg, rv, vEnd+1)
		if c1+c2-ru.Cost(ce)-rv.Cost(ce) < 0 {
			ls.applyTwo(ru, pu-1, vSeg, ru, uEnd+1, rv, pv-1, uSeg, rv, vEnd+1)
			return true
		}
		return false
	}

	// Same route: replace the window spanning both segments.
	var i, j int
	var mid []int
	if pu < pv {
		i, j = pu-1, vEnd+1
		mid = append(append(append([]int(nil), vSeg...), nodeLocs(ru, uEnd+1, pv-1)...), uSeg...)
	} else {
		i, j = pv-1, uEnd+1
		mid = append(append(append([]int(nil), uSeg...), nodeLocs(ru, vEnd+1, pu-1)...), vSeg...)
	}
	if Candidate(ce, ru, i, mid, ru, j)-ru.Cost(ce) < 0 {
		ls.applyOne(ru, i, mid, j)
		return true
	}
	return false
}

// tryTwoOpt reverses the segment u..v within one route, or exchanges the
// tails after u and after v across two routes (2-opt*).
func (ls *LocalSearch) tryTwoOpt(u, v int, ce vrp.CostEvaluator) bool {
	ru, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	rv, pv := ls.routes[ls.routeOf[v]], ls.posOf[v]

	if ru == rv {
		a, b := pu, pv
		if a > b {
			a, b = b, a
		}
		if b-a < 1 {
			return false
		}
		// Reversal across a trip boundary is rejected, never applied.
		if ru.reloadsBefore[b]-ru.reloadsBefore[a-1] > 0 {
			return false
		}
		mid := nodeLocs(ru, a, b)
		for l, rr := 0, len(mid)-1; l < rr; l, rr = l+1, rr-1 {
			mid[l], mid[rr] = mid[rr], mid[l]
		}
		if Candidate(ce, ru, a-1, mid, ru, b+1)-ru.Cost(ce) < 0 {
			ls.applyOne(ru, a-1, mid, b+1)
			return true
		}
		return false
	}

	// 2-opt*: the tail segments change vehicle type; verify permissions.
	if !ls.tailAllowed(rv, pv+1, ru.vehType) || !ls.tailAllowed(ru, pu+1, rv.vehType) {
		return false
	}
	c1 := Candidate(ce, ru, pu, nil, rv, pv+1)
	c2 := Candidate(ce, rv, pv, nil, ru, pu+1)
	if c1+c2-ru.Cost(ce)-rv.Cost(ce) < 0 {
		ls.applyTwo(ru, pu, nil, rv, pv+1, rv, pv, nil, ru, pu+1)
		return true
	}
	return false
}

// tryRelocateWithDepot relocates u after v together with a reload stop
// placed either before or after u, choosing the best reload depot. Only
// evaluated when v's vehicle type permits reloads.
func (ls *LocalSearch) tryRelocateWithDepot(u, v int, ce vrp.CostEvaluator) bool {
	ru, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	rv, pv := ls.routes[ls.routeOf[v]], ls.posOf[v]

	if len(rv.vt.ReloadDepots) == 0 || rv.vt.MaxReloads == 0 {
		return false
	}
	if ls.data.IsDepot(ru.locs[pu]) || (rv != ru && !ls.data.ClientAllowed(u, rv.vehType)) {
		return false
	}

	if ru == rv {
		// Relocate u after v within the route, with the reload stop on
		// either side of u.
		if pv == pu || pv == pu-1 {
			return false // plain reload insertion around u covers these
		}
		var i, j int
		var base []int
		if pv > pu {
			i, j = pu-1, pv+1
			base = nodeLocs(ru, pu+1, pv)
		} else {
			i, j = pv, pu+1
			base = nil
		}
		cur := ru.Cost(ce)
		bestDelta := int64(0)
		var bestMid []int
		for _, dep := range rv.vt.ReloadDepots {
			for _, pair := range [][]int{{dep, u}, {u, dep}} {
				var mid []int
				if pv > pu {
					mid = append(append([]int(nil), base...), pair...)
				} else {
					mid = append(append([]int(nil), pair...), nodeLocs(ru, pv+1, pu-1)...)
				}
				if delta := Candidate(ce, ru, i, mid, ru, j) - cur; delta < bestDelta {
					bestDelta = delta
					bestMid = mid
				}
			}
		}
		if bestMid == nil {
			return false
		}
		ls.applyOne(ru, i, bestMid, j)
		return true
	}

	cur := ru.Cost(ce) + rv.Cost(ce)
	c1 := Candidate(ce, ru, pu-1, nil, ru, pu+1)

	bestDelta := int64(0)
	var bestMid []int
	for _, dep := range rv.vt.ReloadDepots {
		for _, mid := range [][]int{{dep, u}, {u, dep}} {
			c2 := Candidate(ce, rv, pv, mid, rv, pv+1)
			if delta := c1 + c2 - cur; delta < bestDelta {
				bestDelta = delta
				bestMid = append([]int(nil), mid...)
			}
		}
	}
	if bestMid == nil {
		return false
	}
	ls.applyTwo(ru, pu-1, nil, ru, pu+1, rv, pv, bestMid, rv, pv+1)
	return true
}

// tryEmptyRouteMove relocates u into an empty route when that pays off
// (including the fixed cost of opening the route).
func (ls *LocalSearch) tryEmptyRouteMove(u int, ce vrp.CostEvaluator) bool {
	ru, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	if ru.NumClients() == 1 {
		return false // already alone on a route
	}
	c1 := Candidate(ce, ru, pu-1, nil, ru, pu+1)

	for _, r := range ls.routes {
		if !r.Empty() || !ls.data.ClientAllowed(u, r.vehType) || !ls.canOpen(r) {
			continue
		}
		c2 := Candidate(ce, r, 0, []int{u}, r, 1)
		if c1+c2-ru.Cost(ce)-r.Cost(ce) < 0 {
			ls.applyTwo(ru, pu-1, nil, ru, pu+1, r, 0, []int{u}, r, 1)
			return true
		}
	}
	return false
}

// tryReloadMoves inserts the best reload stop adjacent to u, or removes a
// reload stop adjacent to u, when strictly improving.
func (ls *LocalSearch) tryReloadMoves(u int, ce vrp.CostEvaluator) bool {
	r, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	vt := r.vt
	cur := r.Cost(ce)

	if len(vt.ReloadDepots) > 0 && r.NumReloads() < vt.MaxReloads {
		bestDelta := int64(0)
		bestPos, bestDep := -1, -1
		for _, pos := range []int{pu - 1, pu} {
			for _, dep := range vt.ReloadDepots {
				if delta := Candidate(ce, r, pos, []int{dep}, r, pos+1) - cur; delta < bestDelta {
					bestDelta, bestPos, bestDep = delta, pos, dep
				}
			}
		}
		if bestPos >= 0 {
			ls.applyOne(r, bestPos, []int{bestDep}, bestPos+1)
			return true
		}
	}

	for _, p := range []int{pu - 1, pu + 1} {
		if !r.IsReloadNode(p) {
			continue
		}
		if Candidate(ce, r, p-1, nil, r, p+1)-cur < 0 {
			ls.applyOne(r, p-1, nil, p+1)
			return true
		}
	}
	return false
}

// tryInsert plans an unplanned client at its best position when strictly
// profitable (the prize outweighs the detour), respecting group
// exclusivity and vehicle permissions. Unplanned required clients are
// inserted at their best position unconditionally.
func (ls *LocalSearch) tryInsert(u int, ce vrp.CostEvaluator) bool {
	client := ls.data.Client(u)
	if g := client.Group; g >= 0 {
		for _, m := range ls.data.Group(g).Members {
			if m != u && ls.routeOf[m] != -1 {
				return false // group already represented
			}
		}
	}

	bestDelta := vrp.MaxValue
	var bestRoute *Route
	bestPos := -1

	consider := func(r *Route, p int) {
		delta := Candidate(ce, r, p, []int{u}, r, p+1) - r.Cost(ce)
		if delta < bestDelta {
			bestDelta, bestRoute, bestPos = delta, r, p
		}
	}

	for _, v := range ls.neighbours[u] {
		if ls.routeOf[v] == -1 {
			continue
		}
		r := ls.routes[ls.routeOf[v]]
		if !ls.data.ClientAllowed(u, r.vehType) {
			continue
		}
		consider(r, ls.posOf[v]-1)
		consider(r, ls.posOf[v])
	}
	for _, r := range ls.routes {
		if r.Empty() && ls.data.ClientAllowed(u, r.vehType) && ls.canOpen(r) {
			consider(r, 0)
		}
	}

	if bestRoute == nil {
		return false
	}
	if !client.Required && bestDelta-client.Prize >= 0 {
		return false
	}
	ls.applyOne(bestRoute, bestPos, []int{u}, bestPos+1)
	return true
}

// tryRemove unplans an optional client when the saved detour exceeds its
// prize.
func (ls *LocalSearch) tryRemove(u int, ce vrp.CostEvaluator) bool {
	client := ls.data.Client(u)
	if client.Required {
		return false
	}
	r, pu := ls.routes[ls.routeOf[u]], ls.posOf[u]
	delta := Candidate(ce, r, pu-1, nil, r, pu+1) - r.Cost(ce) + client.Prize
	if delta >= 0 {
		return false
	}
	ls.routeOf[u], ls.posOf[u] = -1, -1
	ls.applyOne(r, pu-1, nil, pu+1)
	return true
}

// canOpen reports whether filling the empty route r keeps its vehicle
// type within its available count.
func (ls *LocalSearch) canOpen(r *Route) bool {
	used := 0
	for _, other := range ls.routes {
		if other.vehType == r.vehType && !other.Empty() {
			used++
		}
	}
	return used < ls.data.VehicleType(r.vehType).NumAvailable
}

// segAllowed reports whether every client in seg may be served by the
// vehicle type.
func (ls *LocalSearch) segAllowed(seg []int, vehType int) bool {
	for _, loc := range seg {
		if !ls.data.IsDepot(loc) && !ls.data.ClientAllowed(loc, vehType) {
			return false
		}
	}
	return true
}

// tailAllowed reports whether every client from node position p onwards
// may be served by the vehicle type.
func (ls *LocalSearch) tailAllowed(r *Route, p int, vehType int) bool {
	for q := p; q <= r.Len(); q++ {
		loc := r.locs[q]
		if !ls.data.IsDepot(loc) && !ls.data.ClientAllowed(loc, vehType) {
			return false
		}
	}
	return true
}

// applyOne replaces nodes i+1..j-1 of r with mid.
func (ls *LocalSearch) applyOne(r *Route, i int, mid []int, j int) {
	r.SetVisits(spliceVisits(r, i, mid, r, j))
	r.Update()
	ls.reindex(r)
	ls.addSpare(r)
}

// applyTwo applies a cross-route move: both new visit slices are built
// before either route mutates.
func (ls *LocalSearch) applyTwo(
	r1 *Route, i1 int, mid1 []int, s1 *Route, j1 int,
	r2 *Route, i2 int, mid2 []int, s2 *Route, j2 int,
) {
	v1 := spliceVisits(r1, i1, mid1, s1, j1)
	v2 := spliceVisits(r2, i2, mid2, s2, j2)
	r1.SetVisits(v1)
	r2.SetVisits(v2)
	r1.Update()
	r2.Update()
	ls.reindex(r1)
	ls.reindex(r2)
	ls.addSpare(r1)
	ls.addSpare(r2)
}

// addSpare appends a fresh empty route of r's type when r just consumed
// the last spare and vehicles remain.
func (ls *LocalSearch) addSpare(r *Route) {
	if r.Empty() {
		return
	}
	for _, other := range ls.routes {
		if other.vehType == r.vehType && other.Empty() {
			return
		}
	}
	if ls.canOpenType(r.vehType) {
		ls.routes = append(ls.routes, NewRoute(ls.data, len(ls.routes), r.vehType))
	}
}

func (ls *LocalSearch) canOpenType(vehType int) bool {
	used := 0
	for _, other := range ls.routes {
		if other.vehType == vehType && !other.Empty() {
			used++
		}
	}
	return used < ls.data.VehicleType(vehType).NumAvailable
}

// nodeLocs copies the locations of node positions a..b (inclusive).
func nodeLocs(r *Route, a, b int) []int {
	if a > b {
		return nil
	}
	cp := make([]int, b-a+1)
	copy(cp, r.locs[a:b+1])
	return cp
}
