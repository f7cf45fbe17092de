// Package genetic - crossover operators.
//
// SREX (selective route exchange) copies one parent, carves out a random
// block of its routes, removes duplicates of the partner's chosen routes,
// grafts those routes in, and greedily reinserts every unassigned required
// client at its cheapest position. Insertions may be infeasible; the
// penalised evaluator prices them and education cleans up afterwards.
//
// OX (ordered crossover) works on the giant-tour representation and is
// used for plain instances: a single vehicle type, a single depot and no
// reloads. A random slice of the first parent keeps its positions, the
// remainder follows in the second parent's order, and the tour is split
// into routes by capacity.
package genetic

import (
	"github.com/katalvlaran/lvlroute/vrp"
)

// Crossover recombines two parents, choosing the operator from instance
// characteristics: OX for plain single-type instances with equally many
// routes, SREX otherwise.
func Crossover(
	data *vrp.ProblemData,
	a, b *vrp.Solution,
	ce vrp.CostEvaluator,
	rng *vrp.RNG,
) *vrp.Solution {
	plain := data.NumVehicleTypes() == 1 && data.NumDepots() == 1 &&
		!data.HasReloads() && data.NumGroups() == 0
	if plain && a.NumRoutes() == b.NumRoutes() && a.NumRoutes() > 0 {
		return OrderedCrossover(data, a, b, ce, rng)
	}
	return SelectiveRouteExchange(data, a, b, ce, rng)
}

// SelectiveRouteExchange implements SREX. The offspring is always a valid
// solution: required clients are reinserted greedily, group exclusivity
// and vehicle counts are respected.
func SelectiveRouteExchange(
	data *vrp.ProblemData,
	a, b *vrp.Solution,
	ce vrp.CostEvaluator,
	rng *vrp.RNG,
) *vrp.Solution {
	if a.NumRoutes() == 0 {
		return b
	}
	if b.NumRoutes() == 0 {
		return a
	}

	half := minInt(a.NumRoutes(), b.NumRoutes()) / 2
	k := 1 + rng.Intn(maxInt(half, 1))
	startA := rng.Intn(a.NumRoutes())
	startB := rng.Intn(b.NumRoutes())

	chosenA := make(map[int]bool, k)
	chosenB := make(map[int]bool, k)
	for i := 0; i < k; i++ {
		chosenA[(startA+i)%a.NumRoutes()] = true
		chosenB[(startB+i)%b.NumRoutes()] = true
	}

	// Clients of B's chosen routes must not be duplicated by kept A routes.
	fromB := make(map[int]bool)
	for ri, r := range b.Routes() {
		if !chosenB[ri] {
			continue
		}
		for _, loc := range r.Visits() {
			if !data.IsDepot(loc) {
				fromB[loc] = true
			}
		}
	}

	child := newBuilder(data, ce)
	for ri, r := range a.Routes() {
		if chosenA[ri] {
			continue
		}
		visits := make([]int, 0, len(r.Visits()))
		for _, loc := range r.Visits() {
			if data.IsDepot(loc) || !fromB[loc] {
				visits = append(visits, loc)
			}
		}
		child.addRoute(r.VehicleType(), visits)
	}
	for ri, r := range b.Routes() {
		if chosenB[ri] {
			child.graftRoute(r.VehicleType(), r.Visits())
		}
	}

	child.reinsertRequired()
	return child.toSolution()
}

// OrderedCrossover implements OX over the giant tour.
func OrderedCrossover(
	data *vrp.ProblemData,
	a, b *vrp.Solution,
	ce vrp.CostEvaluator,
	rng *vrp.RNG,
) *vrp.Solution {
	tourA := giantTour(data, a)
	tourB := giantTour(data, b)
	if len(tourA) == 0 {
		return b
	}

	i := rng.Intn(len(tourA))
	j := rng.Intn(len(tourA))
	if i > j {
		i, j = j, i
	}

	taken := make(map[int]bool, j-i+1)
	childTour := make([]int, 0, len(tourA))
	for p := i; p <= j; p++ {
		childTour = append(childTour, tourA[p])
		taken[tourA[p]] = true
	}
	for _, loc := range tourB {
		if !taken[loc] {
			childTour = append(childTour, loc)
			taken[loc] = true
		}
	}
	for _, loc := range tourA {
		if !taken[loc] {
			childTour = append(childTour, loc)
			taken[loc] = true
		}
	}

	// Split the tour into routes by capacity, one vehicle at a time.
	vt := data.VehicleType(0)
	dims := data.NumLoadDimensions()
	child := newBuilder(data, ce)

	var visits []int
	used := 0
	carried := make([]int64, dims)
	flush := func() {
		if len(visits) > 0 && used < vt.NumAvailable {
			child.addRoute(0, visits)
			used++
		}
		visits = nil
		for d := range carried {
			carried[d] = 0
		}
	}
	for _, loc := range childTour {
		over := false
		for d := 0; d < dims; d++ {
			ls := data.LoadSegmentOf(loc, d)
			if carried[d]+maxI64(ls.Delivery, ls.Pickup) > vt.CapacityOf(d) {
				over = true
				break
			}
		}
		if over && used < vt.NumAvailable-1 {
			flush()
		}
		for d := 0; d < dims; d++ {
			ls := data.LoadSegmentOf(loc, d)
			carried[d] += maxI64(ls.Delivery, ls.Pickup)
		}
		visits = append(visits, loc)
	}
	flush()

	child.reinsertRequired()
	return child.toSolution()
}

// giantTour flattens a solution's client visits into one sequence.
func giantTour(data *vrp.ProblemData, s *vrp.Solution) []int {
	var tour []int
	for _, r := range s.Routes() {
		for _, loc := range r.Visits() {
			if !data.IsDepot(loc) {
				tour = append(tour, loc)
			}
		}
	}
	return tour
}

// builder assembles an offspring while tracking vehicle counts, served
// clients and group usage.
type builder struct {
	data *vrp.ProblemData
	ce   vrp.CostEvaluator

	types    []int
	visits   [][]int
	typeUsed []int
	served   map[int]bool
	groupUse []bool
}

func newBuilder(data *vrp.ProblemData, ce vrp.CostEvaluator) *builder {
	return &builder{
		data:     data,
		ce:       ce,
		typeUsed: make([]int, data.NumVehicleTypes()),
		served:   make(map[int]bool),
		groupUse: make([]bool, data.NumGroups()),
	}
}

// addRoute appends a route of the given type, dropping clients that are
// already served, conflict on a group, or are not permitted for the type.
func (bd *builder) addRoute(vehType int, visits []int) {
	vt := bd.data.VehicleType(vehType)
	if bd.typeUsed[vehType] >= vt.NumAvailable {
		vehType = bd.spareType(visits)
		if vehType == -1 {
			return // no vehicle left; clients go unassigned
		}
		vt = bd.data.VehicleType(vehType)
	}

	kept := make([]int, 0, len(visits))
	reloads := 0
	for _, loc := range visits {
		if bd.data.IsDepot(loc) {
			if vt.IsReloadDepot(loc) && reloads < vt.MaxReloads {
				kept = append(kept, loc)
				reloads++
			}
			continue
		}
		if bd.served[loc] || !bd.data.ClientAllowed(loc, vehType) {
			continue
		}
		if g := bd.data.Client(loc).Group; g >= 0 && bd.groupUse[g] {
			continue
		}
		kept = append(kept, loc)
		bd.markServed(loc)
	}
	if len(kept) == 0 {
		return
	}
	bd.types = append(bd.types, vehType)
	bd.visits = append(bd.visits, kept)
	bd.typeUsed[vehType]++
}

// graftRoute is addRoute for routes taken from the partner parent.
func (bd *builder) graftRoute(vehType int, visits []int) { bd.addRoute(vehType, visits) }

func (bd *builder) markServed(loc int) {
	bd.served[loc] = true
	if g := bd.data.Client(loc).Group; g >= 0 {
		bd.groupUse[g] = true
	}
}

// spareType finds a vehicle type with an unused vehicle that permits every
// client in visits, or -1.
func (bd *builder) spareType(visits []int) int {
	for vt := 0; vt < bd.data.NumVehicleTypes(); vt++ {
		if bd.typeUsed[vt] >= bd.data.VehicleType(vt).NumAvailable {
			continue
		}
		ok := true
		for _, loc := range visits {
			if !bd.data.IsDepot(loc) && !bd.data.ClientAllowed(loc, vt) {
				ok = false
				break
			}
		}
		if ok {
			return vt
		}
	}
	return -1
}

// reinsertRequired places every unserved required client at its cheapest
// position over all routes (and fresh empty routes while vehicles remain).
// Infeasible placements are allowed; penalties price them.
func (bd *builder) reinsertRequired() {
	for loc := bd.data.NumDepots(); loc < bd.data.NumLocations(); loc++ {
		if bd.served[loc] || !bd.data.Client(loc).Required {
			continue
		}
		if g := bd.data.Client(loc).Group; g >= 0 && bd.groupUse[g] {
			continue
		}
		bd.insertBest(loc)
	}
}

// insertBest performs one greedy cheapest-position insertion.
func (bd *builder) insertBest(loc int) {
	bestCost := vrp.MaxValue
	bestRoute, bestPos := -1, -1

	for ri := range bd.visits {
		if !bd.data.ClientAllowed(loc, bd.types[ri]) {
			continue
		}
		base := bd.routeCost(bd.types[ri], bd.visits[ri])
		for pos := 0; pos <= len(bd.visits[ri]); pos++ {
			cand := insertAt(bd.visits[ri], pos, loc)
			if c := bd.routeCost(bd.types[ri], cand) - base; c < bestCost {
				bestCost = c
				bestRoute, bestPos = ri, pos
			}
		}
	}

	// A fresh route may beat any insertion (or be the only option).
	for vt := 0; vt < bd.data.NumVehicleTypes(); vt++ {
		if bd.typeUsed[vt] >= bd.data.VehicleType(vt).NumAvailable {
			continue
		}
		if !bd.data.ClientAllowed(loc, vt) {
			continue
		}
		if c := bd.routeCost(vt, []int{loc}); c < bestCost {
			bestCost = c
			bestRoute, bestPos = -vt-2, 0 // encoded "new route of type vt"
		}
	}

	switch {
	case bestRoute <= -2:
		vt := -bestRoute - 2
		bd.types = append(bd.types, vt)
		bd.visits = append(bd.visits, []int{loc})
		bd.typeUsed[vt]++
		bd.markServed(loc)
	case bestRoute >= 0:
		bd.visits[bestRoute] = insertAt(bd.visits[bestRoute], bestPos, loc)
		bd.markServed(loc)
	}
}

func (bd *builder) routeCost(vehType int, visits []int) int64 {
	r, err := vrp.NewRoute(bd.data, vehType, visits)
	if err != nil {
		return vrp.MaxValue
	}
	vt := bd.data.VehicleType(vehType)
	cost := vt.FixedCost
	cost += vt.UnitDistanceCost * r.Distance()
	cost += vt.UnitDurationCost * r.Duration()
	cost += bd.ce.TimeWarpPenalty(r.TimeWarp())
	cost += bd.ce.DistancePenalty(r.ExcessDistance())
	cost += bd.ce.DurationPenalty(r.ExcessDuration())
	cost += bd.ce.LoadPenalty(r.ExcessLoad())
	return cost
}

func (bd *builder) toSolution() *vrp.Solution {
	routes := make([]vrp.Route, 0, len(bd.visits))
	for ri := range bd.visits {
		r, err := vrp.NewRoute(bd.data, bd.types[ri], bd.visits[ri])
		if err != nil {
			continue
		}
		routes = append(routes, r)
	}
	sol, err := vrp.NewSolution(bd.data, routes)
	if err != nil {
		panic(err) // the builder never duplicates clients or groups
	}
	return sol
}

func insertAt(visits []int, pos, loc int) []int {
	out := make([]int, 0, len(visits)+1)
	out = append(out, visits[:pos]...)
	out = append(out, loc)
	return append(out, visits[pos:]...)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
