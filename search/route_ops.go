// Package search - route operators.
//
// The intensification stage works on pairs of routes whose clients appear
// in each other's neighbour lists:
//
//	RELOCATE_STAR — the single best client relocation between the pair,
//	                over all insertion positions in the partner route.
//	SWAP_STAR     — exchange one client from each route, each reinserted
//	                at one of the three best positions computed for its
//	                target route (Vidal's swap*).
//
// Tail exchanges (SWAP_TAILS) are the grouped form of the 2-opt* node
// operator and are already covered by the node stage; the pair loop here
// re-runs them once per pair so a pure intensification call also reaches
// them.
package search

import (
	"sort"

	"github.com/katalvlaran/lvlroute/vrp"
)

// intensify runs route-operator passes until none improves.
func (ls *LocalSearch) intensify(ce vrp.CostEvaluator) {
	for {
		improved := false
		for ai := 0; ai < len(ls.routes); ai++ {
			a := ls.routes[ai]
			if a.Empty() {
				continue
			}
			for bi := ai + 1; bi < len(ls.routes); bi++ {
				b := ls.routes[bi]
				if b.Empty() || !ls.overlaps(a, b) {
					continue
				}
				if ls.relocateStar(a, b, ce) || ls.swapStar(a, b, ce) || ls.swapTails(a, b, ce) {
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

// overlaps reports whether some client of a has a granular neighbour in b
// (or vice versa); only such pairs are worth intensifying.
func (ls *LocalSearch) overlaps(a, b *Route) bool {
	for p := 1; p <= a.Len(); p++ {
		u := a.locs[p]
		if ls.data.IsDepot(u) {
			continue
		}
		for _, v := range ls.neighbours[u] {
			if ls.routeOf[v] == b.idx {
				return true
			}
		}
	}
	for p := 1; p <= b.Len(); p++ {
		u := b.locs[p]
		if ls.data.IsDepot(u) {
			continue
		}
		for _, v := range ls.neighbours[u] {
			if ls.routeOf[v] == a.idx {
				return true
			}
		}
	}
	return false
}

// relocateStar applies the best improving single-client relocation
// between a and b, in either direction, over all insertion positions.
func (ls *LocalSearch) relocateStar(a, b *Route, ce vrp.CostEvaluator) bool {
	type move struct {
		from, to *Route
		pu, pos  int
	}
	bestDelta := int64(0)
	var best *move

	scan := func(from, to *Route) {
		curFrom, curTo := from.Cost(ce), to.Cost(ce)
		for pu := 1; pu <= from.Len(); pu++ {
			u := from.locs[pu]
			if ls.data.IsDepot(u) || !ls.data.ClientAllowed(u, to.vehType) {
				continue
			}
			c1 := Candidate(ce, from, pu-1, nil, from, pu+1)
			for pos := 0; pos <= to.Len(); pos++ {
				c2 := Candidate(ce, to, pos, []int{u}, to, pos+1)
				if delta := c1 + c2 - curFrom - curTo; delta < bestDelta {
					bestDelta = delta
					best = &move{from: from, to: to, pu: pu, pos: pos}
				}
			}
		}
	}
	scan(a, b)
	scan(b, a)

	if best == nil {
		return false
	}
	u := best.from.locs[best.pu]
	ls.applyTwo(
		best.from, best.pu-1, nil, best.from, best.pu+1,
		best.to, best.pos, []int{u}, best.to, best.pos+1,
	)
	return true
}

// swapTails re-evaluates tail exchanges for the pair, covering splits the
// node scan may have missed after earlier intensification moves.
func (ls *LocalSearch) swapTails(a, b *Route, ce vrp.CostEvaluator) bool {
	if !ls.tailAllowed(b, 1, a.vehType) || !ls.tailAllowed(a, 1, b.vehType) {
		return false
	}
	curA, curB := a.Cost(ce), b.Cost(ce)
	for pa := 0; pa <= a.Len(); pa++ {
		for pb := 0; pb <= b.Len(); pb++ {
			c1 := Candidate(ce, a, pa, nil, b, pb+1)
			c2 := Candidate(ce, b, pb, nil, a, pa+1)
			if c1+c2-curA-curB < 0 {
				ls.applyTwo(a, pa, nil, b, pb+1, b, pb, nil, a, pa+1)
				return true
			}
		}
	}
	return false
}

// insertionPoint is a cached cheap insertion position: the node position
// the insertion follows, with its delta cost.
type insertionPoint struct {
	afterPos int
	cost     int64
}

// bestInsertions returns the (up to) three cheapest positions to insert
// client u into r, by insertion cost alone.
func (ls *LocalSearch) bestInsertions(u int, r *Route, ce vrp.CostEvaluator) []insertionPoint {
	cur := r.Cost(ce)
	points := make([]insertionPoint, 0, r.Len()+1)
	for pos := 0; pos <= r.Len(); pos++ {
		c := Candidate(ce, r, pos, []int{u}, r, pos+1) - cur
		points = append(points, insertionPoint{afterPos: pos, cost: c})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].cost < points[j].cost })
	if len(points) > 3 {
		points = points[:3]
	}
	return points
}

// swapStar exchanges one client of a with one client of b, reinserting
// each at one of its three best cached positions in the other route. The
// final candidates are evaluated exactly on the spliced visit sequences.
func (ls *LocalSearch) swapStar(a, b *Route, ce vrp.CostEvaluator) bool {
	cur := a.Cost(ce) + b.Cost(ce)

	type swap struct {
		visitsA, visitsB []int
	}
	bestDelta := int64(0)
	var best *swap

	for pa := 1; pa <= a.Len(); pa++ {
		u := a.locs[pa]
		if ls.data.IsDepot(u) || !ls.data.ClientAllowed(u, b.vehType) {
			continue
		}
		intoB := ls.bestInsertions(u, b, ce)

		for pb := 1; pb <= b.Len(); pb++ {
			v := b.locs[pb]
			if ls.data.IsDepot(v) || !ls.data.ClientAllowed(v, a.vehType) {
				continue
			}
			intoA := ls.bestInsertions(v, a, ce)

			for _, ipA := range intoA {
				visitsA, okA := spliceSwap(a, pa, v, ipA.afterPos)
				if !okA {
					continue
				}
				for _, ipB := range intoB {
					visitsB, okB := spliceSwap(b, pb, u, ipB.afterPos)
					if !okB {
						continue
					}
					delta := priceVisits(ls.data, a.vehType, visitsA, ce) +
						priceVisits(ls.data, b.vehType, visitsB, ce) - cur
					if delta < bestDelta {
						bestDelta = delta
						best = &swap{visitsA: visitsA, visitsB: visitsB}
					}
				}
			}
		}
	}

	if best == nil {
		return false
	}
	a.SetVisits(best.visitsA)
	b.SetVisits(best.visitsB)
	a.Update()
	b.Update()
	ls.reindex(a)
	ls.reindex(b)
	return true
}

// spliceSwap builds the visit sequence of r with the client at node
// position rm removed and loc inserted after node position afterPos.
// Fails when the anchor is the removed node itself.
func spliceSwap(r *Route, rm int, loc int, afterPos int) ([]int, bool) {
	if afterPos == rm {
		return nil, false
	}
	out := make([]int, 0, len(r.visits)+1)
	if afterPos == 0 {
		out = append(out, loc)
	}
	for p := 1; p <= r.Len(); p++ {
		if p == rm {
			continue
		}
		out = append(out, r.locs[p])
		if p == afterPos {
			out = append(out, loc)
		}
	}
	return out, true
}
