// Package vrp - immutable routing snapshots.
//
// Route evaluates a visit sequence for one vehicle from scratch in O(L):
// one forward walk accumulates distance, the merged duration segment and
// the per-trip load summaries. Solution aggregates routes, records which
// clients are unassigned, and exposes the per-client (route, predecessor,
// successor) table that operators and the diversity measure read in O(1).
//
// Both types are immutable once constructed: the search engine works on its
// own mutable representation and converts back via NewRoute and NewSolution.
package vrp

import (
	"sort"
	"strconv"
	"strings"
)

// Route is an evaluated, immutable visit sequence for one vehicle.
// Visits hold location indices of clients and mid-route reload depots; the
// start and end depots of the vehicle type are implicit.
type Route struct {
	vehicleType int
	numDepots   int
	visits      []int

	distance       int64
	duration       int64
	timeWarp       int64
	excessLoad     []int64
	excessDistance int64
	excessDuration int64
	prizes         int64
	numClients     int
	numReloads     int
	tripLoads      [][]int64 // per trip, per dimension: maximum load carried
}

// NewRoute validates the visit sequence against the instance and evaluates
// it. Depot visits must be reload depots of the vehicle type, and at most
// vt.MaxReloads of them may occur; clients must be permitted for the type.
//
// Errors: ErrLocationIndex, ErrRouteVisit.
//
// Complexity: O(len(visits) · load dimensions).
func NewRoute(data *ProblemData, vehicleType int, visits []int) (Route, error) {
	if vehicleType < 0 || vehicleType >= data.NumVehicleTypes() {
		return Route{}, ErrLocationIndex
	}
	vt := data.VehicleType(vehicleType)

	numClients, numReloads := 0, 0
	for _, loc := range visits {
		if loc < 0 || loc >= data.NumLocations() {
			return Route{}, ErrLocationIndex
		}
		if data.IsDepot(loc) {
			if !vt.IsReloadDepot(loc) {
				return Route{}, ErrRouteVisit
			}
			numReloads++
		} else {
			if !data.ClientAllowed(loc, vehicleType) {
				return Route{}, ErrRouteVisit
			}
			numClients++
		}
	}
	if numReloads > vt.MaxReloads {
		return Route{}, ErrRouteVisit
	}

	r := Route{
		vehicleType: vehicleType,
		numDepots:   data.NumDepots(),
		visits:      append([]int(nil), visits...),
		numClients:  numClients,
		numReloads:  numReloads,
	}
	r.evaluate(data, vt)
	return r, nil
}

// evaluate performs the single forward walk computing all aggregates.
func (r *Route) evaluate(data *ProblemData, vt VehicleType) {
	profile := vt.Profile
	dims := data.NumLoadDimensions()

	ds := data.ShiftSegment(vt.StartDepot, vt)
	prev := vt.StartDepot
	var dist int64

	// Trip-resetting load walk, one running segment per dimension.
	trip := make([]LoadSegment, dims)
	for d := 0; d < dims; d++ {
		trip[d] = LoadSegment{Load: vt.InitialLoadOf(d)}
	}
	excess := make([]int64, dims)
	closeTrip := func() {
		loads := make([]int64, dims)
		for d := 0; d < dims; d++ {
			loads[d] = trip[d].Load
			excess[d] += trip[d].Excess(vt.CapacityOf(d))
			trip[d] = LoadSegment{}
		}
		r.tripLoads = append(r.tripLoads, loads)
	}

	for _, loc := range r.visits {
		dist = addCap(dist, data.Distance(profile, prev, loc))
		ds = ds.Merge(data.Duration(profile, prev, loc), data.DurationSegmentOf(loc))
		prev = loc

		if data.IsDepot(loc) {
			closeTrip()
		} else {
			for d := 0; d < dims; d++ {
				trip[d] = trip[d].Merge(data.LoadSegmentOf(loc, d))
			}
			r.prizes += data.Client(loc).Prize
		}
	}
	dist = addCap(dist, data.Distance(profile, prev, vt.EndDepot))
	ds = ds.Merge(data.Duration(profile, prev, vt.EndDepot), data.ShiftSegment(vt.EndDepot, vt))
	closeTrip()

	r.distance = dist
	r.duration = ds.Duration
	r.timeWarp = ds.RouteTimeWarp()
	r.excessLoad = excess
	if dist > vt.DistanceLimit() {
		r.excessDistance = dist - vt.DistanceLimit()
	}
	if r.duration > vt.DurationLimit() {
		r.excessDuration = r.duration - vt.DurationLimit()
	}
}

// VehicleType returns the route's vehicle type index.
func (r Route) VehicleType() int { return r.vehicleType }

// Visits returns the visit sequence (clients and reload depots).
func (r Route) Visits() []int { return r.visits }

// NumClients returns the number of client visits.
func (r Route) NumClients() int { return r.numClients }

// NumReloads returns the number of reload depot visits.
func (r Route) NumReloads() int { return r.numReloads }

// NumTrips returns the number of trips the route is partitioned into.
func (r Route) NumTrips() int { return r.numReloads + 1 }

// Distance returns the total travel distance.
func (r Route) Distance() int64 { return r.distance }

// Duration returns the total route duration, waits included.
func (r Route) Duration() int64 { return r.duration }

// TimeWarp returns the route's time warp, release times included.
func (r Route) TimeWarp() int64 { return r.timeWarp }

// ExcessLoad returns the per-dimension load excess summed over trips.
func (r Route) ExcessLoad() []int64 { return r.excessLoad }

// ExcessDistance returns the distance above the vehicle's ceiling.
func (r Route) ExcessDistance() int64 { return r.excessDistance }

// ExcessDuration returns the duration above the vehicle's ceiling.
func (r Route) ExcessDuration() int64 { return r.excessDuration }

// TripLoads returns, per trip and load dimension, the maximum load carried.
func (r Route) TripLoads() [][]int64 { return r.tripLoads }

// IsFeasible reports whether the route violates no constraint.
func (r Route) IsFeasible() bool {
	if r.timeWarp > 0 || r.excessDistance > 0 || r.excessDuration > 0 {
		return false
	}
	for _, e := range r.excessLoad {
		if e > 0 {
			return false
		}
	}
	return true
}

// String renders the visit sequence with "|" marking reload stops, e.g.
// "1 3 | 2 4".
func (r Route) String() string {
	var b strings.Builder
	for i, loc := range r.visits {
		if i > 0 {
			b.WriteByte(' ')
		}
		if loc < r.numDepots {
			b.WriteByte('|')
		} else {
			b.WriteString(strconv.Itoa(loc))
		}
	}
	return b.String()
}

// Solution is an immutable multiset of routes plus the unassigned clients.
type Solution struct {
	routes     []Route
	unassigned []int

	distance       int64
	duration       int64
	distanceCost   int64
	durationCost   int64
	fixedCost      int64
	timeWarp       int64
	excessLoad     []int64
	excessDistance int64
	excessDuration int64
	prizes         int64
	uncollected    int64
	complete       bool

	routeOf []int // per location; -1 when unassigned or depot
	predOf  []int // preceding location in the route; -1 when unassigned
	succOf  []int
}

// NewSolution assembles and validates a solution from evaluated routes.
//
// Structural invariants (violations return ErrSolutionInvariant, they
// indicate a solver bug): no client appears twice, at most one client per
// mutually exclusive group, and no vehicle type is used more often than it
// has vehicles. A missing required client is NOT an error: the solution is
// marked incomplete and therefore infeasible.
//
// Complexity: O(total visits + clients).
func NewSolution(data *ProblemData, routes []Route) (*Solution, error) {
	numLocs := data.NumLocations()
	dims := data.NumLoadDimensions()

	s := &Solution{
		routes:     routes,
		excessLoad: make([]int64, dims),
		routeOf:    make([]int, numLocs),
		predOf:     make([]int, numLocs),
		succOf:     make([]int, numLocs),
		complete:   true,
	}
	for i := range s.routeOf {
		s.routeOf[i], s.predOf[i], s.succOf[i] = -1, -1, -1
	}

	typeUse := make([]int, data.NumVehicleTypes())
	groupUse := make([]int, data.NumGroups())

	for ri := range routes {
		r := &routes[ri]
		vt := data.VehicleType(r.vehicleType)
		typeUse[r.vehicleType]++
		if typeUse[r.vehicleType] > vt.NumAvailable {
			return nil, ErrSolutionInvariant
		}

		prev := vt.StartDepot
		for _, loc := range r.visits {
			if !data.IsDepot(loc) {
				if s.routeOf[loc] != -1 {
					return nil, ErrSolutionInvariant
				}
				s.routeOf[loc] = ri
				s.predOf[loc] = prev
				if g := data.Client(loc).Group; g >= 0 {
					groupUse[g]++
					if groupUse[g] > 1 {
						return nil, ErrSolutionInvariant
					}
				}
			}
			if !data.IsDepot(prev) {
				s.succOf[prev] = loc
			}
			prev = loc
		}
		if !data.IsDepot(prev) {
			s.succOf[prev] = vt.EndDepot
		}

		if r.numClients > 0 {
			s.fixedCost = addCap(s.fixedCost, vt.FixedCost)
		}
		s.distance = addCap(s.distance, r.distance)
		s.duration = addCap(s.duration, r.duration)
		s.distanceCost = addCap(s.distanceCost, mulCap(vt.UnitDistanceCost, r.distance))
		s.durationCost = addCap(s.durationCost, mulCap(vt.UnitDurationCost, r.duration))
		s.timeWarp = addCap(s.timeWarp, r.timeWarp)
		s.excessDistance = addCap(s.excessDistance, r.excessDistance)
		s.excessDuration = addCap(s.excessDuration, r.excessDuration)
		s.prizes += r.prizes
		for d := 0; d < dims; d++ {
			s.excessLoad[d] += r.excessLoad[d]
		}
	}

	for loc := data.NumDepots(); loc < numLocs; loc++ {
		if s.routeOf[loc] != -1 {
			continue
		}
		s.unassigned = append(s.unassigned, loc)
		c := data.Client(loc)
		if c.Required {
			s.complete = false
		}
		s.uncollected += c.Prize
	}
	sort.Ints(s.unassigned)

	return s, nil
}

// Routes returns the solution's routes.
func (s *Solution) Routes() []Route { return s.routes }

// NumRoutes returns the number of routes.
func (s *Solution) NumRoutes() int { return len(s.routes) }

// Unassigned returns the sorted locations of unserved clients.
func (s *Solution) Unassigned() []int { return s.unassigned }

// Distance returns the total travel distance over all routes.
func (s *Solution) Distance() int64 { return s.distance }

// Duration returns the total duration over all routes.
func (s *Solution) Duration() int64 { return s.duration }

// DistanceCost returns Σ unit-distance-cost · route distance.
func (s *Solution) DistanceCost() int64 { return s.distanceCost }

// DurationCost returns Σ unit-duration-cost · route duration.
func (s *Solution) DurationCost() int64 { return s.durationCost }

// FixedVehicleCost returns the fixed cost of all non-empty routes.
func (s *Solution) FixedVehicleCost() int64 { return s.fixedCost }

// UncollectedPrizes returns the prizes of all unserved clients.
func (s *Solution) UncollectedPrizes() int64 { return s.uncollected }

// CollectedPrizes returns the prizes of all served clients.
func (s *Solution) CollectedPrizes() int64 { return s.prizes }

// TimeWarp returns the total time warp over all routes.
func (s *Solution) TimeWarp() int64 { return s.timeWarp }

// ExcessLoad returns the per-dimension excess load over all routes.
func (s *Solution) ExcessLoad() []int64 { return s.excessLoad }

// ExcessDistance returns the total excess distance over all routes.
func (s *Solution) ExcessDistance() int64 { return s.excessDistance }

// ExcessDuration returns the total excess duration over all routes.
func (s *Solution) ExcessDuration() int64 { return s.excessDuration }

// IsComplete reports whether every required client is served.
func (s *Solution) IsComplete() bool { return s.complete }

// IsFeasible reports whether the solution is complete and violates no
// constraint.
func (s *Solution) IsFeasible() bool {
	if !s.complete || s.timeWarp > 0 || s.excessDistance > 0 || s.excessDuration > 0 {
		return false
	}
	for _, e := range s.excessLoad {
		if e > 0 {
			return false
		}
	}
	return true
}

// RouteOf returns the route index serving the client at loc, or -1.
func (s *Solution) RouteOf(loc int) int { return s.routeOf[loc] }

// PredOf returns the location preceding loc in its route, or -1.
func (s *Solution) PredOf(loc int) int { return s.predOf[loc] }

// SuccOf returns the location following loc in its route, or -1.
func (s *Solution) SuccOf(loc int) int { return s.succOf[loc] }

// RandomSolution builds a random complete solution: one client per group,
// every other client included, each assigned to a random permitted vehicle
// in shuffled order. Used to seed generation zero and restarts.
//
// Complexity: O(clients · vehicle types + vehicles).
func RandomSolution(data *ProblemData, rng *RNG) *Solution {
	numDepots := data.NumDepots()

	// Pick group representatives first; groups are mutually exclusive.
	skip := make(map[int]bool)
	for g := 0; g < data.NumGroups(); g++ {
		members := data.Group(g).Members
		if len(members) == 0 {
			continue
		}
		keep := members[rng.Intn(len(members))]
		for _, m := range members {
			if m != keep {
				skip[m] = true
			}
		}
	}

	clients := make([]int, 0, data.NumClients())
	for loc := numDepots; loc < data.NumLocations(); loc++ {
		if !skip[loc] {
			clients = append(clients, loc)
		}
	}
	rng.Shuffle(len(clients), func(i, j int) { clients[i], clients[j] = clients[j], clients[i] })

	// One bucket per concrete vehicle.
	type bucket struct {
		vehicleType int
		visits      []int
	}
	buckets := make([]bucket, 0, data.NumVehicles())
	for vt := 0; vt < data.NumVehicleTypes(); vt++ {
		for k := 0; k < data.VehicleType(vt).NumAvailable; k++ {
			buckets = append(buckets, bucket{vehicleType: vt})
		}
	}

	for _, loc := range clients {
		permitted := make([]int, 0, len(buckets))
		for b := range buckets {
			if data.ClientAllowed(loc, buckets[b].vehicleType) {
				permitted = append(permitted, b)
			}
		}
		if len(permitted) == 0 {
			continue // no vehicle may serve this client; stays unassigned
		}
		b := permitted[rng.Intn(len(permitted))]
		buckets[b].visits = append(buckets[b].visits, loc)
	}

	routes := make([]Route, 0, len(buckets))
	for b := range buckets {
		if len(buckets[b].visits) == 0 {
			continue
		}
		r, err := NewRoute(data, buckets[b].vehicleType, buckets[b].visits)
		if err != nil {
			continue // cannot happen with permitted clients only
		}
		routes = append(routes, r)
	}

	sol, err := NewSolution(data, routes)
	if err != nil {
		// Construction assigns each client once; invariants hold by build.
		panic(err)
	}
	return sol
}
