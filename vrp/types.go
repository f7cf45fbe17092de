package vrp

import (
	"errors"
	"math"
)

// MaxValue is the sentinel for forbidden traversals and infeasible costs.
// Keeping it at a quarter of the int64 range leaves headroom so that a
// handful of sentinel-valued terms can be added without wrapping around.
const MaxValue int64 = math.MaxInt64 / 4

// ErrEmptyVehicles is returned when an instance declares no vehicle types.
var ErrEmptyVehicles = errors.New("vrp: instance has no vehicle types")

// ErrMatrixShape is returned when a distance or duration matrix is not
// square over all locations, or when profile matrix counts disagree.
var ErrMatrixShape = errors.New("vrp: matrix shape does not match locations")

// ErrNegativeValue is returned when a distance, duration, demand, capacity
// or service time is negative.
var ErrNegativeValue = errors.New("vrp: negative value")

// ErrTimeWindow is returned when a time window has early > late.
var ErrTimeWindow = errors.New("vrp: time window early exceeds late")

// ErrLocationIndex is returned when a depot, client or profile index is out
// of range for the instance.
var ErrLocationIndex = errors.New("vrp: location index out of range")

// ErrLoadDimension is returned when delivery, pickup, capacity or initial
// load vectors disagree on the number of load dimensions.
var ErrLoadDimension = errors.New("vrp: inconsistent load dimensions")

// ErrGroupMember is returned when a client group references an unknown
// client, or a client references an unknown group.
var ErrGroupMember = errors.New("vrp: invalid client group membership")

// ErrRouteVisit is returned when a route visits an unknown location, a
// client not permitted for its vehicle type, or an illegal reload depot.
var ErrRouteVisit = errors.New("vrp: invalid route visit")

// ErrSolutionInvariant is returned when a constructed solution violates a
// structural invariant (duplicate client, group used twice, vehicle type
// over-used). This indicates a solver bug, not a user error. A missing
// required client is not a violation: the solution is only incomplete.
var ErrSolutionInvariant = errors.New("vrp: solution invariant violated")

// minInt64 returns the smaller of a and b.
func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// maxInt64 returns the larger of a and b.
func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// addCap returns a+b saturated at MaxValue. Segment merges and cumulative
// sums use it so that routes crossing several forbidden edges cannot wrap
// around the int64 range.
func addCap(a, b int64) int64 {
	if s := a + b; s < MaxValue {
		return s
	}
	return MaxValue
}
