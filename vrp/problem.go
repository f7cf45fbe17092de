// Package vrp - instance construction and validation.
//
// ProblemData is built once from plain slices and never mutated afterwards,
// so it may be shared freely. Construction is staged the usual way: shape
// checks first, then per-field value checks, then cross-references
// (profiles, depots, groups, load dimensions). Only sentinel errors from
// types.go are returned; a constructed instance never fails at query time.
package vrp

// Depot describes a depot location. Depots have a time window but neither
// demand nor service duration; reload stops at a depot are instantaneous.
type Depot struct {
	X, Y    int64 // coordinates, informational only
	TWEarly int64 // earliest departure/arrival
	TWLate  int64 // latest departure/arrival
}

// Client describes a client location.
type Client struct {
	X, Y            int64
	Delivery        []int64 // one entry per load dimension; nil means all-zero
	Pickup          []int64
	ServiceDuration int64
	TWEarly         int64
	TWLate          int64
	ReleaseTime     int64
	Prize           int64
	Required        bool
	Group           int   // index into the instance's groups; -1 when none
	AllowedVehicles []int // vehicle type indices; nil or empty means all
}

// ClientGroup is a set of mutually exclusive clients: at most one member
// may be visited in any solution. Members are location indices.
type ClientGroup struct {
	Members []int
}

// VehicleType describes a number of identical vehicles.
type VehicleType struct {
	NumAvailable     int
	Capacity         []int64 // one entry per load dimension; nil means none
	StartDepot       int     // depot index
	EndDepot         int     // depot index
	TWEarly          int64   // shift start
	TWLate           int64   // shift end
	MaxDuration      int64   // route duration ceiling; 0 means unlimited
	MaxDistance      int64   // route distance ceiling; 0 means unlimited
	FixedCost        int64
	UnitDistanceCost int64 // cost per distance unit
	UnitDurationCost int64 // cost per duration unit
	Profile          int   // routing profile index
	ReloadDepots     []int // depot indices usable for mid-route reloads
	MaxReloads       int   // maximum reload visits per route
	InitialLoad      []int64
}

// ProblemData is the immutable problem instance.
type ProblemData struct {
	depots       []Depot
	clients      []Client
	groups       []ClientGroup
	vehicleTypes []VehicleType
	distances    []*Matrix // one per profile
	durations    []*Matrix

	numVehicles int
	numLoadDims int
	maxReload   bool // any vehicle type permits reloads
}

// NewProblemData validates and assembles an instance. Locations are indexed
// depots first (0..len(depots)-1), then clients. distances and durations
// carry one square matrix per routing profile, each of order
// len(depots)+len(clients).
//
// Errors: ErrEmptyVehicles, ErrMatrixShape, ErrNegativeValue, ErrTimeWindow,
// ErrLocationIndex, ErrLoadDimension, ErrGroupMember.
//
// Complexity: O(profiles·n² + clients + vehicle types).
func NewProblemData(
	depots []Depot,
	clients []Client,
	vehicleTypes []VehicleType,
	distances []*Matrix,
	durations []*Matrix,
	groups []ClientGroup,
) (*ProblemData, error) {
	if len(vehicleTypes) == 0 {
		return nil, ErrEmptyVehicles
	}
	if len(depots) == 0 {
		return nil, ErrLocationIndex
	}

	numLocs := len(depots) + len(clients)

	// Stage 1: matrices. One distance and one duration matrix per profile,
	// all square of order numLocs.
	if len(distances) == 0 || len(distances) != len(durations) {
		return nil, ErrMatrixShape
	}
	for p := range distances {
		if distances[p] == nil || durations[p] == nil {
			return nil, ErrMatrixShape
		}
		if distances[p].Order() != numLocs || durations[p].Order() != numLocs {
			return nil, ErrMatrixShape
		}
	}

	// Stage 2: the number of load dimensions, fixed by the first non-nil
	// capacity/demand vector and enforced everywhere after that.
	numDims := -1
	observe := func(v []int64) bool {
		if v == nil {
			return true
		}
		if numDims == -1 {
			numDims = len(v)
		}
		return len(v) == numDims
	}
	for i := range vehicleTypes {
		if !observe(vehicleTypes[i].Capacity) || !observe(vehicleTypes[i].InitialLoad) {
			return nil, ErrLoadDimension
		}
	}
	for i := range clients {
		if !observe(clients[i].Delivery) || !observe(clients[i].Pickup) {
			return nil, ErrLoadDimension
		}
	}
	if numDims == -1 {
		numDims = 0
	}

	// Stage 3: per-depot and per-client value checks.
	for i := range depots {
		if depots[i].TWEarly > depots[i].TWLate {
			return nil, ErrTimeWindow
		}
		if depots[i].TWEarly < 0 {
			return nil, ErrNegativeValue
		}
	}
	for i := range clients {
		c := &clients[i]
		if c.TWEarly > c.TWLate {
			return nil, ErrTimeWindow
		}
		if c.TWEarly < 0 || c.ServiceDuration < 0 || c.ReleaseTime < 0 || c.Prize < 0 {
			return nil, ErrNegativeValue
		}
		if err := nonNegative(c.Delivery); err != nil {
			return nil, err
		}
		if err := nonNegative(c.Pickup); err != nil {
			return nil, err
		}
		if c.Group < -1 || c.Group >= len(groups) {
			return nil, ErrGroupMember
		}
		for _, vt := range c.AllowedVehicles {
			if vt < 0 || vt >= len(vehicleTypes) {
				return nil, ErrLocationIndex
			}
		}
	}

	// Stage 4: vehicle types.
	numVehicles := 0
	anyReload := false
	for i := range vehicleTypes {
		vt := &vehicleTypes[i]
		if vt.NumAvailable <= 0 {
			return nil, ErrEmptyVehicles
		}
		if vt.StartDepot < 0 || vt.StartDepot >= len(depots) ||
			vt.EndDepot < 0 || vt.EndDepot >= len(depots) {
			return nil, ErrLocationIndex
		}
		if vt.Profile < 0 || vt.Profile >= len(distances) {
			return nil, ErrLocationIndex
		}
		if vt.TWEarly > vt.TWLate {
			return nil, ErrTimeWindow
		}
		if vt.TWEarly < 0 || vt.MaxDuration < 0 || vt.MaxDistance < 0 ||
			vt.FixedCost < 0 || vt.UnitDistanceCost < 0 || vt.UnitDurationCost < 0 ||
			vt.MaxReloads < 0 {
			return nil, ErrNegativeValue
		}
		if err := nonNegative(vt.Capacity); err != nil {
			return nil, err
		}
		if err := nonNegative(vt.InitialLoad); err != nil {
			return nil, err
		}
		for _, d := range vt.ReloadDepots {
			if d < 0 || d >= len(depots) {
				return nil, ErrLocationIndex
			}
		}
		if len(vt.ReloadDepots) > 0 && vt.MaxReloads > 0 {
			anyReload = true
		}
		numVehicles += vt.NumAvailable
	}

	// Stage 5: groups reference known clients, and memberships agree.
	for g := range groups {
		for _, loc := range groups[g].Members {
			ci := loc - len(depots)
			if ci < 0 || ci >= len(clients) {
				return nil, ErrGroupMember
			}
			if clients[ci].Group != g {
				return nil, ErrGroupMember
			}
		}
	}

	return &ProblemData{
		depots:       depots,
		clients:      clients,
		groups:       groups,
		vehicleTypes: vehicleTypes,
		distances:    distances,
		durations:    durations,
		numVehicles:  numVehicles,
		numLoadDims:  numDims,
		maxReload:    anyReload,
	}, nil
}

func nonNegative(vs []int64) error {
	for _, v := range vs {
		if v < 0 {
			return ErrNegativeValue
		}
	}
	return nil
}

// NumDepots returns the number of depot locations.
func (d *ProblemData) NumDepots() int { return len(d.depots) }

// NumClients returns the number of client locations.
func (d *ProblemData) NumClients() int { return len(d.clients) }

// NumLocations returns depots + clients.
func (d *ProblemData) NumLocations() int { return len(d.depots) + len(d.clients) }

// NumVehicleTypes returns the number of vehicle types.
func (d *ProblemData) NumVehicleTypes() int { return len(d.vehicleTypes) }

// NumVehicles returns the total number of vehicles over all types.
func (d *ProblemData) NumVehicles() int { return d.numVehicles }

// NumProfiles returns the number of routing profiles.
func (d *ProblemData) NumProfiles() int { return len(d.distances) }

// NumLoadDimensions returns the number of load dimensions.
func (d *ProblemData) NumLoadDimensions() int { return d.numLoadDims }

// NumGroups returns the number of mutually exclusive client groups.
func (d *ProblemData) NumGroups() int { return len(d.groups) }

// HasReloads reports whether any vehicle type permits mid-route reloads.
func (d *ProblemData) HasReloads() bool { return d.maxReload }

// IsDepot reports whether location loc is a depot.
func (d *ProblemData) IsDepot(loc int) bool { return loc < len(d.depots) }

// Depot returns the depot at the given depot index.
func (d *ProblemData) Depot(idx int) Depot { return d.depots[idx] }

// Client returns the client at the given location index. loc must address a
// client, i.e. loc >= NumDepots().
func (d *ProblemData) Client(loc int) Client { return d.clients[loc-len(d.depots)] }

// Group returns the client group at the given index.
func (d *ProblemData) Group(idx int) ClientGroup { return d.groups[idx] }

// VehicleType returns the vehicle type at the given index.
func (d *ProblemData) VehicleType(idx int) VehicleType { return d.vehicleTypes[idx] }

// Distance returns the distance from i to j under the given profile.
func (d *ProblemData) Distance(profile, i, j int) int64 {
	return d.distances[profile].At(i, j)
}

// Duration returns the travel duration from i to j under the given profile.
func (d *ProblemData) Duration(profile, i, j int) int64 {
	return d.durations[profile].At(i, j)
}

// DistanceMatrix returns the distance matrix of the given profile.
func (d *ProblemData) DistanceMatrix(profile int) *Matrix { return d.distances[profile] }

// DurationMatrix returns the duration matrix of the given profile.
func (d *ProblemData) DurationMatrix(profile int) *Matrix { return d.durations[profile] }

// ClientAllowed reports whether the client at location loc may be served by
// the given vehicle type.
func (d *ProblemData) ClientAllowed(loc, vehicleType int) bool {
	allowed := d.Client(loc).AllowedVehicles
	if len(allowed) == 0 {
		return true
	}
	for _, vt := range allowed {
		if vt == vehicleType {
			return true
		}
	}
	return false
}

// DurationSegmentOf returns the single-visit duration summary of loc: the
// client's service duration, window and release time, or the depot's window
// with zero service for depot locations.
func (d *ProblemData) DurationSegmentOf(loc int) DurationSegment {
	if d.IsDepot(loc) {
		dep := d.depots[loc]
		return NewDurationSegment(0, dep.TWEarly, dep.TWLate, 0)
	}
	c := d.Client(loc)
	return NewDurationSegment(c.ServiceDuration, c.TWEarly, c.TWLate, c.ReleaseTime)
}

// LoadSegmentOf returns the single-visit load summary of loc in the given
// dimension. Depot locations carry no demand.
func (d *ProblemData) LoadSegmentOf(loc, dim int) LoadSegment {
	if d.IsDepot(loc) {
		return LoadSegment{}
	}
	c := d.Client(loc)
	var delivery, pickup int64
	if c.Delivery != nil {
		delivery = c.Delivery[dim]
	}
	if c.Pickup != nil {
		pickup = c.Pickup[dim]
	}
	return NewLoadSegment(delivery, pickup)
}

// ShiftSegment returns the duration summary of the given depot restricted
// to the vehicle type's shift window.
func (d *ProblemData) ShiftSegment(depot int, vt VehicleType) DurationSegment {
	dep := d.depots[depot]
	early := maxInt64(dep.TWEarly, vt.TWEarly)
	late := minInt64(dep.TWLate, vt.TWLate)
	if vt.TWLate == 0 && vt.TWEarly == 0 {
		// Unset shift window: the depot window governs alone.
		early, late = dep.TWEarly, dep.TWLate
	}
	if late < early {
		late = early
	}
	return NewDurationSegment(0, early, late, 0)
}

// CapacityOf returns the vehicle type's capacity in the given dimension,
// or MaxValue when unconstrained.
func (vt VehicleType) CapacityOf(dim int) int64 {
	if vt.Capacity == nil {
		return MaxValue
	}
	return vt.Capacity[dim]
}

// InitialLoadOf returns the vehicle type's initial load in the given
// dimension.
func (vt VehicleType) InitialLoadOf(dim int) int64 {
	if vt.InitialLoad == nil {
		return 0
	}
	return vt.InitialLoad[dim]
}

// DurationLimit returns the route duration ceiling, or MaxValue when the
// vehicle type declares none.
func (vt VehicleType) DurationLimit() int64 {
	if vt.MaxDuration == 0 {
		return MaxValue
	}
	return vt.MaxDuration
}

// DistanceLimit returns the route distance ceiling, or MaxValue when the
// vehicle type declares none.
func (vt VehicleType) DistanceLimit() int64 {
	if vt.MaxDistance == 0 {
		return MaxValue
	}
	return vt.MaxDistance
}

// IsReloadDepot reports whether depot index dep may serve as a reload stop
// for the vehicle type.
func (vt VehicleType) IsReloadDepot(dep int) bool {
	for _, r := range vt.ReloadDepots {
		if r == dep {
			return true
		}
	}
	return false
}
